package xlog

import (
	"go.uber.org/zap/zapcore"
)

// AntsXLogger adapts XLogger to ants.Logger. Pool messages are mostly
// recovered worker panics, so they are logged at error level.
type AntsXLogger struct {
	logger XLogger
}

func (l *AntsXLogger) Printf(format string, args ...any) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Logf(zapcore.ErrorLevel, format, args...)
}

func NewAntsXLogger(logger XLogger, opts ...ComponentLoggerOption) *AntsXLogger {
	return &AntsXLogger{
		logger: componentLogger(logger, "Ants", opts...),
	}
}
