package config

import (
	"time"

	"github.com/duolog/duolog-server/pkg/capture"
)

// CaptureSettings tunes the continuous capture controller. Zero timing
// values fall back to capture.DefaultTiming.
type CaptureSettings struct {
	RestartDelay             time.Duration `yaml:"restart_delay"`
	MaxRestartDelay          time.Duration `yaml:"max_restart_delay"`
	NoSpeechRestartDelay     time.Duration `yaml:"no_speech_restart_delay"`
	AudioCaptureRestartDelay time.Duration `yaml:"audio_capture_restart_delay"`
	RefreshStartDelay        time.Duration `yaml:"refresh_start_delay"`
	RefreshInterval          time.Duration `yaml:"refresh_interval"`
	StaleAfter               time.Duration `yaml:"stale_after"`
	MaxConsecutiveErrors     int           `yaml:"max_consecutive_errors"`
	InterimTranslationDelay  time.Duration `yaml:"interim_translation_delay"`
	InterimResults           *bool         `yaml:"interim_results"`
	// ResetErrorsOnStart clears the error count whenever the recognizer
	// reports a start, not only on a final result.
	ResetErrorsOnStart bool `yaml:"reset_errors_on_start"`
}

func (c *CaptureSettings) setDefaults() {
	d := capture.DefaultTiming()
	if c.RestartDelay <= 0 {
		c.RestartDelay = d.RestartDelay
	}
	if c.MaxRestartDelay <= 0 {
		c.MaxRestartDelay = d.MaxRestartDelay
	}
	if c.NoSpeechRestartDelay <= 0 {
		c.NoSpeechRestartDelay = d.NoSpeechRestartDelay
	}
	if c.AudioCaptureRestartDelay <= 0 {
		c.AudioCaptureRestartDelay = d.AudioCaptureRestartDelay
	}
	if c.RefreshStartDelay <= 0 {
		c.RefreshStartDelay = d.RefreshStartDelay
	}
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = d.RefreshInterval
	}
	if c.StaleAfter <= 0 {
		c.StaleAfter = d.StaleAfter
	}
	if c.MaxConsecutiveErrors <= 0 {
		c.MaxConsecutiveErrors = d.MaxConsecutiveErrors
	}
	if c.InterimTranslationDelay <= 0 {
		c.InterimTranslationDelay = DefaultInterimTranslationDelay
	}
	if c.InterimResults == nil {
		v := true
		c.InterimResults = &v
	}
}
