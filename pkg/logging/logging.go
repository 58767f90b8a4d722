// Package logging builds the zap loggers used across the module.
package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/chack-ai/chack-tools/pkg/errors"
)

// New builds a logger. level is one of debug/info/warn/error; format is
// "console" or "json".
func New(level, format string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		zapLevel = zapcore.InfoLevel
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, errors.WithFields(
			errors.New(errors.InvalidInput, "unknown log level"),
			errors.Fields{"level": level},
		)
	}

	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "console":
		cfg = zap.NewDevelopmentConfig()
		cfg.Encoding = "console"
	case "json":
		cfg = zap.NewProductionConfig()
	default:
		return nil, errors.WithFields(
			errors.New(errors.InvalidInput, "unknown log format"),
			errors.Fields{"format": format},
		)
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	return cfg.Build()
}

// Nop returns a logger that discards everything. Handy default for library
// callers and tests.
func Nop() *zap.Logger {
	return zap.NewNop()
}
