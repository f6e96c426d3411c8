package internal

import (
	"io"
	"os"
	"strings"

	"abstats/internal/errors"

	"github.com/sirupsen/logrus"
)

// NewLogger creates a logrus logger writing to w at the named level
// ("error", "warn", "info", "debug", "trace") in text or json format.
func NewLogger(w io.Writer, level, format string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, errors.Newf(errors.CodeConfigInvalid, "unknown log level %q", level)
	}

	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, errors.Newf(errors.CodeConfigInvalid, "unknown log format %q", format)
	}

	return logger, nil
}

// NewDefaultLogger creates an info-level text logger on stderr
func NewDefaultLogger() *logrus.Logger {
	logger, _ := NewLogger(os.Stderr, "info", "text")
	return logger
}
