package xlog

import (
	"context"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ xLogCore = (xLogMultiCore)(nil)

// xLogMultiCore fans every entry out to its members. The encoder
// accessors are empty, each member keeps its own.
type xLogMultiCore []xLogCore

func (mc xLogMultiCore) context() context.Context                                    { return nil }
func (mc xLogMultiCore) levelEncoder() zapcore.LevelEncoder                          { return nil }
func (mc xLogMultiCore) outEncoder() func(cfg zapcore.EncoderConfig) zapcore.Encoder { return nil }
func (mc xLogMultiCore) timeEncoder() zapcore.TimeEncoder                            { return nil }
func (mc xLogMultiCore) writeSyncer() zapcore.WriteSyncer                            { return nil }

func (mc xLogMultiCore) With(fields []zap.Field) zapcore.Core {
	clone := make([]zapcore.Core, 0, len(mc))
	for _, core := range mc {
		clone = append(clone, core.With(fields))
	}
	return zapcore.NewTee(clone...)
}

// Level is the most verbose level among the members.
func (mc xLogMultiCore) Level() zapcore.Level {
	lvl := zapcore.InvalidLevel
	for _, core := range mc {
		lvl = min(lvl, zapcore.LevelOf(core))
	}
	return lvl
}

func (mc xLogMultiCore) Enabled(lvl zapcore.Level) bool {
	for _, core := range mc {
		if core.Enabled(lvl) {
			return true
		}
	}
	return false
}

func (mc xLogMultiCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	for _, core := range mc {
		ce = core.Check(ent, ce)
	}
	return ce
}

func (mc xLogMultiCore) Write(ent zapcore.Entry, fields []zap.Field) error {
	var err error
	for _, core := range mc {
		err = multierr.Append(err, core.Write(ent, fields))
	}
	return err
}

func (mc xLogMultiCore) Sync() error {
	var err error
	for _, core := range mc {
		err = multierr.Append(err, core.Sync())
	}
	return err
}

func XLogTeeCore(cores ...xLogCore) xLogCore {
	return xLogMultiCore(cores)
}

func wrapEach(cores []xLogCore, wrap func(core xLogCore) (xLogCore, error)) (xLogCore, error) {
	wrapped := make(xLogMultiCore, 0, len(cores))
	for _, core := range cores {
		newCore, err := wrap(core)
		if err != nil {
			return nil, err
		}
		wrapped = append(wrapped, newCore)
	}
	return wrapped, nil
}

func WrapCores(cores []xLogCore, cfg *zapcore.EncoderConfig) (xLogCore, error) {
	return wrapEach(cores, func(core xLogCore) (xLogCore, error) {
		return WrapCore(core, cfg)
	})
}

// WrapCoresNewLevelEnabler rebuilds every member behind one shared level
// enabler, overriding the members' own.
func WrapCoresNewLevelEnabler(cores []xLogCore, lvlEnabler zapcore.LevelEnabler, cfg *zapcore.EncoderConfig) (xLogCore, error) {
	return wrapEach(cores, func(core xLogCore) (xLogCore, error) {
		return WrapCoreNewLevelEnabler(core, lvlEnabler, cfg)
	})
}

// rewrapCore rebuilds a single core or every member of a tee with cfg.
// A nil lvlEnabler keeps the level enablers already in place.
func rewrapCore(core xLogCore, lvlEnabler zapcore.LevelEnabler, cfg *zapcore.EncoderConfig) (xLogCore, error) {
	mc, isTee := core.(xLogMultiCore)
	switch {
	case isTee && lvlEnabler == nil:
		return WrapCores(mc, cfg)
	case isTee:
		return WrapCoresNewLevelEnabler(mc, lvlEnabler, cfg)
	case lvlEnabler == nil:
		return WrapCore(core, cfg)
	default:
	}
	return WrapCoreNewLevelEnabler(core, lvlEnabler, cfg)
}
