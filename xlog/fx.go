package xlog

import (
	"time"

	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// FxXLogger adapts XLogger to fxevent.Logger. Wiring events are logged at
// debug level, lifecycle hooks at info level and every failure at error
// level.
type FxXLogger struct {
	logger XLogger
}

func hookFields(function, caller string) []zap.Field {
	return []zap.Field{
		zap.String("function", function),
		zap.String("caller", caller),
	}
}

func moduleField(module string) zap.Field {
	if module == "" {
		return zap.Skip()
	}
	return zap.String("module", module)
}

// outcome logs msg as failed when err is set and at lvl otherwise.
func (l *FxXLogger) outcome(err error, lvl func(msg string, fields ...zap.Field), msg string, fields ...zap.Field) {
	if err != nil {
		l.logger.Error(err, "fx "+msg+" failed", fields...)
		return
	}
	if lvl != nil {
		lvl("fx "+msg, fields...)
	}
}

func (l *FxXLogger) hookDone(err error, hook, function, caller string, runtime time.Duration, lvl func(string, ...zap.Field)) {
	l.outcome(err, lvl, hook+" hook",
		append(hookFields(function, caller), zap.Duration("runtime", runtime))...)
}

// wired logs one line per output type, then the error if any.
func (l *FxXLogger) wired(msg string, types []string, err error, stack []string, fields ...zap.Field) {
	for _, typ := range types {
		l.logger.Debug("fx "+msg, append([]zap.Field{zap.String("type", typ)}, fields...)...)
	}
	if err != nil {
		l.logger.Error(err, "fx "+msg+" failed", zap.Strings("stack", stack))
	}
}

func (l *FxXLogger) LogEvent(event fxevent.Event) {
	if l == nil || l.logger == nil {
		return
	}

	switch e := event.(type) {
	case *fxevent.OnStartExecuting:
		l.logger.Debug("fx start hook running", hookFields(e.FunctionName, e.CallerName)...)
	case *fxevent.OnStartExecuted:
		l.hookDone(e.Err, "start", e.FunctionName, e.CallerName, e.Runtime, l.logger.Debug)
	case *fxevent.OnStopExecuting:
		l.logger.Info("fx stop hook running", hookFields(e.FunctionName, e.CallerName)...)
	case *fxevent.OnStopExecuted:
		l.hookDone(e.Err, "stop", e.FunctionName, e.CallerName, e.Runtime, l.logger.Info)
	case *fxevent.Supplied:
		if e.Err != nil {
			l.logger.Error(e.Err, "fx supply failed", zap.String("type", e.TypeName), zap.Strings("stack", e.StackTrace))
			return
		}
		l.logger.Debug("fx supplied", zap.String("type", e.TypeName), moduleField(e.ModuleName))
	case *fxevent.Provided:
		l.wired("provided", e.OutputTypeNames, e.Err, e.StackTrace,
			zap.String("constructor", e.ConstructorName),
			zap.Bool("private", e.Private),
			moduleField(e.ModuleName),
		)
	case *fxevent.Replaced:
		l.wired("replaced", e.OutputTypeNames, e.Err, e.StackTrace, moduleField(e.ModuleName))
	case *fxevent.Decorated:
		l.wired("decorated", e.OutputTypeNames, e.Err, e.StackTrace,
			zap.String("decorator", e.DecoratorName),
			moduleField(e.ModuleName),
		)
	case *fxevent.Invoking:
		l.logger.Debug("fx invoking", zap.String("function", e.FunctionName), moduleField(e.ModuleName))
	case *fxevent.Invoked:
		if e.Err != nil {
			l.logger.Error(e.Err, "fx invoke failed", zap.String("function", e.FunctionName), zap.String("trace", e.Trace))
		}
	case *fxevent.Stopping:
		l.logger.Info("fx stopping", zap.String("signal", e.Signal.String()))
	case *fxevent.Stopped:
		l.outcome(e.Err, nil, "stop")
	case *fxevent.RollingBack:
		l.logger.Warn("fx start failed, rolling back", zap.Error(e.StartErr))
	case *fxevent.RolledBack:
		l.outcome(e.Err, nil, "rollback")
	case *fxevent.Started:
		l.outcome(e.Err, l.logger.Debug, "start")
	case *fxevent.LoggerInitialized:
		l.outcome(e.Err, l.logger.Debug, "logger init", zap.String("constructor", e.ConstructorName))
	}
}

// NewFxXLogger names the logger "Fx". Pass WithComponentLevel to quiet the
// container wiring without touching the parent level.
func NewFxXLogger(logger XLogger, opts ...ComponentLoggerOption) *FxXLogger {
	return &FxXLogger{logger: componentLogger(logger, "Fx", opts...)}
}
