package xlog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestCommonCore(t *testing.T) {
	var cc xLogCore = &commonCore{}
	require.Nil(t, cc.outEncoder())
	require.Nil(t, cc.writeSyncer())
	require.Nil(t, cc.levelEncoder())
	require.Nil(t, cc.timeEncoder())
	require.Nil(t, cc.context())
	require.Nil(t, cc.(*commonCore).lvlEnabler)
	require.Nil(t, cc.(*commonCore).core)

	lvlEnabler := zap.NewAtomicLevelAt(LogLevelDebug.zapLevel())
	cc = &commonCore{
		ctx:        context.TODO(),
		lvlEnabler: &lvlEnabler,
		lvlEnc:     zapcore.CapitalLevelEncoder,
		tsEnc:      zapcore.ISO8601TimeEncoder,
		ws:         getOutWriterByType(logOutWriterType(5)),
		enc:        getEncoderByType(logEncoderType(6)),
	}

	config := defaultCoreEncoderCfg()
	config.EncodeLevel = cc.(*commonCore).lvlEnc
	config.EncodeTime = cc.(*commonCore).tsEnc
	cc.(*commonCore).core = zapcore.NewCore(cc.(*commonCore).enc(config), cc.(*commonCore).ws, cc.(*commonCore).lvlEnabler)
	require.NotNil(t, cc.outEncoder())
	require.NotNil(t, cc.writeSyncer())
	require.NotNil(t, cc.levelEncoder())
	require.NotNil(t, cc.timeEncoder())
	require.NotNil(t, cc.context())

	require.True(t, cc.Enabled(zapcore.DebugLevel))
	require.True(t, cc.Enabled(zapcore.ErrorLevel))

	lvlEnabler.SetLevel(zapcore.ErrorLevel)
	require.False(t, cc.Enabled(zapcore.DebugLevel))
	require.False(t, cc.Enabled(zapcore.InfoLevel))
	require.False(t, cc.Enabled(zapcore.WarnLevel))
	require.True(t, cc.Enabled(zapcore.ErrorLevel))

	lvlEnabler.SetLevel(zapcore.DebugLevel)

	core := cc.With([]zap.Field{zap.String("key", "value")})
	require.NotNil(t, core)

	ent := cc.Check(zapcore.Entry{Level: zapcore.DebugLevel}, nil)
	err := cc.Write(ent.Entry, []zap.Field{zap.String("key", "value")})
	require.NoError(t, err)
	_ = cc.Sync()

	_, err = WrapCore(cc, nil)
	require.Error(t, err)
	_, err = WrapCore(nil, componentCoreEncoderCfg())
	require.Error(t, err)

	cc, err = WrapCore(cc, componentCoreEncoderCfg())
	require.NoError(t, err)
	require.NotNil(t, cc)
	// The wrapped core follows the original level enabler.
	lvlEnabler.SetLevel(zapcore.WarnLevel)
	require.False(t, cc.Enabled(zapcore.InfoLevel))
	lvlEnabler.SetLevel(zapcore.DebugLevel)
	require.True(t, cc.Enabled(zapcore.InfoLevel))
	err = cc.Write(zapcore.Entry{Level: zapcore.DebugLevel, LoggerName: "commonCore"}, []zap.Field{zap.String("key", "value")})
	require.NoError(t, err)
	_ = cc.Sync()
}

func TestWrapCoreNewLevelEnabler(t *testing.T) {
	testMemOut.Reset()
	lvlEnabler := zap.NewAtomicLevelAt(zapcore.DebugLevel)
	cc := newWriterCore(testMemAsOut)(
		context.TODO(),
		&lvlEnabler,
		JSON,
		zapcore.CapitalLevelEncoder,
		zapcore.ISO8601TimeEncoder,
	)
	require.NotNil(t, cc)

	wrapped, err := WrapCoreNewLevelEnabler(cc, zapcore.ErrorLevel, componentCoreEncoderCfg())
	require.NoError(t, err)
	require.False(t, wrapped.Enabled(zapcore.WarnLevel))
	require.True(t, wrapped.Enabled(zapcore.ErrorLevel))

	l := zap.New(wrapped).Named("Component")
	l.Warn("dropped")
	l.Error("kept")
	require.NoError(t, l.Sync())
	lines := testMemOut.Lines()
	require.Len(t, lines, 1)
	require.Contains(t, lines[0], `"component":"Component"`)
	require.NotContains(t, lines[0], "callAt")
	testMemOut.Reset()
}
