// Package logging constructs the daemon's zap logger from a repeatable
// -v verbosity count.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production-style zap logger at the level implied by
// verbosity (clamped to [0,4]):
//
//	0 - error
//	1 - warn
//	2 - info
//	3 - debug
//	4 - debug (zap has no finer level; repeated -v beyond 3 is a no-op)
func New(verbosity int) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(levelFor(verbosity))
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

func levelFor(verbosity int) zapcore.Level {
	switch {
	case verbosity <= 0:
		return zapcore.ErrorLevel
	case verbosity == 1:
		return zapcore.WarnLevel
	case verbosity == 2:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}
