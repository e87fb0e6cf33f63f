package capture

import "time"

type Timing struct {
	RestartDelay             time.Duration
	MaxRestartDelay          time.Duration
	NoSpeechRestartDelay     time.Duration
	AudioCaptureRestartDelay time.Duration
	RefreshStartDelay        time.Duration
	RefreshInterval          time.Duration
	StaleAfter               time.Duration
	MaxConsecutiveErrors     int
}

func DefaultTiming() Timing {
	return Timing{
		RestartDelay:             300 * time.Millisecond,
		MaxRestartDelay:          5 * time.Second,
		NoSpeechRestartDelay:     500 * time.Millisecond,
		AudioCaptureRestartDelay: time.Second,
		RefreshStartDelay:        100 * time.Millisecond,
		RefreshInterval:          time.Minute,
		StaleAfter:               30 * time.Second,
		MaxConsecutiveErrors:     5,
	}
}

func (t Timing) withDefaults() Timing {
	d := DefaultTiming()
	if t.RestartDelay <= 0 {
		t.RestartDelay = d.RestartDelay
	}
	if t.MaxRestartDelay <= 0 {
		t.MaxRestartDelay = d.MaxRestartDelay
	}
	if t.NoSpeechRestartDelay <= 0 {
		t.NoSpeechRestartDelay = d.NoSpeechRestartDelay
	}
	if t.AudioCaptureRestartDelay <= 0 {
		t.AudioCaptureRestartDelay = d.AudioCaptureRestartDelay
	}
	if t.RefreshStartDelay <= 0 {
		t.RefreshStartDelay = d.RefreshStartDelay
	}
	if t.RefreshInterval <= 0 {
		t.RefreshInterval = d.RefreshInterval
	}
	if t.StaleAfter <= 0 {
		t.StaleAfter = d.StaleAfter
	}
	if t.MaxConsecutiveErrors <= 0 {
		t.MaxConsecutiveErrors = d.MaxConsecutiveErrors
	}
	return t
}

// Backoff returns min(RestartDelay * 2^previousErrors, MaxRestartDelay).
func (t Timing) Backoff(previousErrors int) time.Duration {
	delay := t.RestartDelay
	for i := 0; i < previousErrors; i++ {
		delay *= 2
		if delay >= t.MaxRestartDelay {
			return t.MaxRestartDelay
		}
	}
	if delay > t.MaxRestartDelay {
		return t.MaxRestartDelay
	}
	return delay
}
