// Package logging builds the process logger. Logs go to stderr; stdout is
// reserved for metric lines.
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// New returns a logger at the given level. format "console" selects the
// human-readable development encoder; anything else uses JSON.
func New(level, format string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}

	var cfg zap.Config
	if format == "console" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Sampling = nil
	}
	cfg.Level = lvl
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	return cfg.Build()
}

// Must is New for process start-up: on error it falls back to a production
// logger so that the error itself can still be reported.
func Must(level, format string) *zap.Logger {
	l, err := New(level, format)
	if err == nil {
		return l
	}
	fallback, ferr := zap.NewProduction()
	if ferr != nil {
		return zap.NewNop()
	}
	fallback.Warn("invalid logging settings, using defaults", zap.Error(err))
	return fallback
}
