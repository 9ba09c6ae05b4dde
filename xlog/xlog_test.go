package xlog

import (
	"context"
	"encoding/json"
	"errors"
	randv2 "math/rand/v2"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xctl/lib/infra"
)

type testMemOutWriter struct {
	lock sync.Mutex
	data []byte
}

func (w *testMemOutWriter) Write(p []byte) (n int, err error) {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.data = append(w.data, p...)
	return len(p), nil
}

func (w *testMemOutWriter) Reset() {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.data = make([]byte, 0, 4096)
}

func (w *testMemOutWriter) Lines() []string {
	w.lock.Lock()
	defer w.lock.Unlock()
	return strings.Split(strings.TrimSpace(string(w.data)), "\n")
}

var testMemOut = &testMemOutWriter{data: make([]byte, 0, 4096)}

func init() {
	_ = writerMap.Put(testMemAsOut, zapcore.AddSync(testMemOut))
}

func TestLogLevelString(t *testing.T) {
	require.Equal(t, "DEBUG", LogLevelDebug.String())
	require.Equal(t, "INFO", LogLevelInfo.String())
	require.Equal(t, "WARN", LogLevelWarn.String())
	require.Equal(t, "ERROR", LogLevelError.String())
	require.Equal(t, zapcore.DebugLevel, LogLevelDebug.zapLevel())
	require.Equal(t, zapcore.InfoLevel, LogLevelInfo.zapLevel())
	require.Equal(t, zapcore.WarnLevel, LogLevelWarn.zapLevel())
	require.Equal(t, zapcore.ErrorLevel, LogLevelError.zapLevel())

	require.Equal(t, LogLevelInfo, ParseLogLevel(" info "))
	require.Equal(t, LogLevelWarn, ParseLogLevel("Warn"))
	require.Equal(t, LogLevelError, ParseLogLevel("ERROR"))
	require.Equal(t, LogLevelDebug, ParseLogLevel(""))
	require.Equal(t, LogLevelDebug, ParseLogLevel("verbose"))
}

type testBanner struct{}

func (b testBanner) JSON() string {
	return "{\"app\":\"xsoak\"}"
}

func (b *testBanner) PlainText() string {
	return "xsoak\n"
}

func TestLoggerPrintBanner(t *testing.T) {
	testMemOut.Reset()

	logger := NewXLogger(withXLoggerWriter(testMemAsOut), WithXLoggerEncoder(JSON)).(*xLogger)
	printBanner = sync.Once{}
	logger.Banner(&testBanner{})
	require.Equal(t, "{\"banner\":\"{\\\"app\\\":\\\"xsoak\\\"}\"}\n", string(testMemOut.data))
	testMemOut.Reset()

	// Printed once only.
	logger.Banner(&testBanner{})
	require.Empty(t, testMemOut.data)

	printBanner = sync.Once{}
	logger = NewXLogger(withXLoggerWriter(testMemAsOut), WithXLoggerEncoder(PlainText)).(*xLogger)
	logger.Banner(&testBanner{})
	require.Equal(t, "xsoak\n\n", string(testMemOut.data))
	testMemOut.Reset()
}

func TestXLoggerOptionErrors(t *testing.T) {
	require.Panics(t, func() {
		NewXLogger(WithXLoggerEncoder(_encMax))
	})
	require.Panics(t, func() {
		NewXLogger(withXLoggerWriter(_writerMax))
	})
}

func TestXLogger_ContextFields(t *testing.T) {
	testMemOut.Reset()
	logger := NewXLogger(
		withXLoggerWriter(testMemAsOut),
		WithXLoggerLevel(LogLevelDebug),
		WithXLoggerContextFieldExtract("runId", "run"),
		WithXLoggerContextFieldExtract("workload"),
		WithXLoggerContextFieldExtract("secret", ContextKeyMapToOmitempty),
		WithXLoggerContextFieldExtract(""),
	)

	ctx := context.WithValue(context.Background(), ContextKey("runId"), "r-1")
	ctx = context.WithValue(ctx, ContextKey("secret"), "hidden")
	logger.InfoContext(ctx, "soak started", zap.Int("workers", 4))
	require.NoError(t, logger.Sync())

	lines := testMemOut.Lines()
	require.Len(t, lines, 1)
	entry := map[string]any{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	require.Equal(t, "soak started", entry["msg"])
	require.Equal(t, "INFO", entry["lvl"])
	require.Equal(t, "r-1", entry["run"])
	require.Equal(t, "nil", entry["workload"])
	require.Equal(t, float64(4), entry["workers"])
	require.NotContains(t, entry, "secret")
	testMemOut.Reset()
}

func TestXLogger_ErrorStack(t *testing.T) {
	testMemOut.Reset()
	logger := NewXLogger(withXLoggerWriter(testMemAsOut), WithXLoggerLevel(LogLevelInfo))

	logger.ErrorStack(infra.NewErrorStack("rbtree red violation"), "verify failed")
	logger.ErrorStack(multierr.Combine(errors.New("a"), errors.New("b")), "verify failed")
	logger.ErrorStack(nil, "verify failed")
	logger.Debug("filtered")
	require.NoError(t, logger.Sync())

	lines := testMemOut.Lines()
	require.Len(t, lines, 3)

	entry := map[string]any{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	require.Equal(t, "rbtree red violation", entry["error"])
	require.NotEmpty(t, entry["errorStack"])

	entry = map[string]any{}
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &entry))
	require.Equal(t, "a; b", entry["error"])
	require.NotContains(t, entry, "errorStack")

	entry = map[string]any{}
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &entry))
	require.NotContains(t, entry, "error")
	testMemOut.Reset()
}

func TestXLogger_Zap_AllAPIs(t *testing.T) {
	testcases := []struct {
		name          string
		encoder       logEncoderType
		stdout        bool
		defaultLogger bool
		ctxM          map[string]string
	}{
		{
			name:    "console json",
			encoder: JSON,
			ctxM: map[string]string{
				"runId":    "RunID",
				"workload": "Workload",
			},
		},
		{
			name:    "console plaintext",
			encoder: PlainText,
			stdout:  true,
			ctxM: map[string]string{
				"runId":    "runID",
				"workload": "workload",
				"abc":      "",
			},
		},
		{
			name:          "console default json",
			defaultLogger: true,
		},
		{
			name:          "console default json2",
			defaultLogger: true,
			ctxM: map[string]string{
				"runId":    "",
				"workload": "",
				"":         "",
				"abc":      "_",
			},
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			var opts []XLoggerOption
			if !tc.defaultLogger {
				opts = append(opts,
					WithXLoggerLevel(LogLevelDebug),
					WithXLoggerEncoder(tc.encoder),
				)
			}
			for k, v := range tc.ctxM {
				opts = append(opts, WithXLoggerContextFieldExtract(k, v))
			}
			if tc.stdout {
				opts = append(opts, WithXLoggerStdOutWriter())
			}
			logger := NewXLogger(opts...)

			ctx := context.TODO()
			ctx = context.WithValue(ctx, ContextKey("runId"), "1234567890")
			ctx = context.WithValue(ctx, ContextKey("workload"), 7)

			logger.Debug("debug message 1")
			logger.DebugContext(ctx, "debug message 2")
			logger.Info("info message 1")
			logger.InfoContext(ctx, "info message 2")
			logger.Warn("warn message 1")
			logger.WarnContext(ctx, "warn message 2")
			err1 := infra.WrapErrorStack(errors.New("error 1"))
			logger.Error(err1, "error message 1")
			logger.ErrorContext(ctx, err1, "error message 2")
			logger.ErrorStack(err1, "error message 1")
			logger.ErrorStackContext(ctx, err1, "error message 2")

			logger.IncreaseLogLevel(zapcore.WarnLevel)
			require.Equal(t, zapcore.WarnLevel.String(), logger.Level())
			logger.Logf(getLogLevelOrDefault(""), "unprintable debug message 3")
			logger.Logf(getLogLevelOrDefault(LogLevelInfo.String()), "unprintable info message 5")
			logger.Logf(getLogLevelOrDefault(LogLevelWarn.String()), "printable warn message 3")
			logger.ErrorStackf(err1, "error message 4")

			logger.IncreaseLogLevel(zapcore.DebugLevel)
			require.Equal(t, zapcore.DebugLevel.String(), logger.Level())
			logger.Logf(getLogLevelOrDefault(LogLevelDebug.String()), "dynamic printable debug message 5")
			logger.Logf(getLogLevelOrDefault(LogLevelError.String()), "dynamic printable error message 4")
			logger.ErrorStackf(err1, "error message 5")

			err := logger.Sync()
			if err != nil {
				t.Log(err)
			}
		})
	}
}

func TestXLogger_Zap_DataRace(t *testing.T) {
	logger := NewXLogger()
	lvls := []zapcore.Level{
		zapcore.DebugLevel,
		zapcore.InfoLevel,
		zapcore.WarnLevel,
		zapcore.ErrorLevel,
	}
	n := int32(len(lvls))
	var wg sync.WaitGroup
	total := 10
	wg.Add(total)
	for i := 0; i < total; i++ {
		go func(i int) {
			for j := 0; j < 100; j++ {
				rng := randv2.Int32N(n)
				if i*total+j == 666 {
					logger.IncreaseLogLevel(lvls[rng])
				}
				logger.Logf(lvls[rng], "message i: %d; j: %d", i, j)
			}
			wg.Done()
		}(i)
	}
	wg.Wait()
	_ = logger.Sync()
}

func BenchmarkXLogger_Zap(b *testing.B) {
	logger := NewXLogger()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("message")
	}
	b.ReportAllocs()
}
