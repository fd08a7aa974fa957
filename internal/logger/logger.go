package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production JSON logger writing to stdout at the given level.
// Accepted levels are the zap level names (debug, info, warn, error, ...).
func New(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stdout"}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

// Must is like New but falls back to info when the level is invalid.
func Must(level string) *zap.Logger {
	l, err := New(level)
	if err == nil {
		return l
	}
	if l, err = New("info"); err != nil {
		return zap.NewNop()
	}
	l.Warn("invalid log level, using info", zap.String("level", level))
	return l
}
