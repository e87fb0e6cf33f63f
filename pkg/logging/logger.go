package logging

import (
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/DeRuina/timberjack"
	"github.com/duolog/duolog-server/pkg/config"
	"github.com/sirupsen/logrus"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// NewLogger builds the server logger from log_settings. Entries always go to
// stdout, and to a rotated file when one is configured.
func NewLogger(cfg *config.LogSettings) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetLevel(parseLevel(cfg.LogLevel))
	logger.SetOutput(newOutput(cfg))
	logger.SetFormatter(&SourceFormatter{
		Underlying: newFormatter(cfg.Format),
		AddSpace:   !strings.EqualFold(cfg.Format, FormatJSON),
	})
	logger.SetReportCaller(true)

	if cfg.LogFile != "" {
		logger.WithField("file", cfg.LogFile).Debugln("file logging enabled")
	}
	return logger, nil
}

func parseLevel(level *string) logrus.Level {
	if level == nil || *level == "" {
		return logrus.InfoLevel
	}
	lv, err := logrus.ParseLevel(strings.ToLower(*level))
	if err != nil {
		return logrus.InfoLevel
	}
	return lv
}

func newOutput(cfg *config.LogSettings) io.Writer {
	if cfg.LogFile == "" {
		return os.Stdout
	}
	return io.MultiWriter(os.Stdout, &timberjack.Logger{
		Filename:         cfg.LogFile,
		MaxSize:          cfg.MaxSize,
		MaxBackups:       cfg.MaxBackups,
		MaxAge:           cfg.MaxAge,
		LocalTime:        true,
		RotationInterval: cfg.RotateEvery,
	})
}

func newFormatter(format string) logrus.Formatter {
	// the caller is added by SourceFormatter
	noCaller := func(*runtime.Frame) (string, string) {
		return "", ""
	}
	if strings.EqualFold(format, FormatJSON) {
		return &logrus.JSONFormatter{
			CallerPrettyfier: noCaller,
		}
	}
	return &logrus.TextFormatter{
		FullTimestamp:    true,
		CallerPrettyfier: noCaller,
		ForceColors:      true,
	}
}
