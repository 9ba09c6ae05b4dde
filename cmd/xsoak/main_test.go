package main

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/benz9527/xctl/soak"
)

func mapLookup(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		val, ok := env[key]
		return val, ok
	}
}

func TestEnvKey(t *testing.T) {
	require.Equal(t, "XSOAK_KEY_SPACE", envKey("key-space"))
	require.Equal(t, "XSOAK_OPS", envKey("ops"))
}

func TestParseOptions(t *testing.T) {
	testcases := []struct {
		name    string
		args    []string
		env     map[string]string
		check   func(t *testing.T, opts *options)
		wantErr error
	}{
		{
			name: "defaults",
			check: func(t *testing.T, opts *options) {
				def := soak.DefaultConfig()
				require.Equal(t, def.Workloads, opts.soak.Workloads)
				require.Equal(t, def.KeySpace, opts.soak.KeySpace)
				require.Equal(t, "none", opts.metrics)
				require.Equal(t, 10*time.Second, opts.metricsInterval)
				require.Equal(t, "WARN", opts.fxLogLevel)
			},
		},
		{
			name: "fx log level from env",
			env:  map[string]string{"XSOAK_FX_LOG_LEVEL": "debug"},
			check: func(t *testing.T, opts *options) {
				require.Equal(t, "debug", opts.fxLogLevel)
			},
		},
		{
			name:    "help",
			args:    []string{"--help"},
			wantErr: pflag.ErrHelp,
		},
		{
			name: "flags",
			args: []string{"-w", "3", "--ops=100", "--tie-mode", "--seed", "42", "--metrics", "stdout"},
			check: func(t *testing.T, opts *options) {
				require.Equal(t, 3, opts.soak.Workers)
				require.Equal(t, 100, opts.soak.Ops)
				require.True(t, opts.soak.TieMode)
				require.Equal(t, uint64(42), opts.soak.Seed)
				require.Equal(t, "stdout", opts.metrics)
			},
		},
		{
			name: "env fallback",
			env:  map[string]string{"XSOAK_KEY_SPACE": "77", "XSOAK_ERASE_RATIO": "0.5", "XSOAK_OPS": "9"},
			args: []string{"--ops", "11"},
			check: func(t *testing.T, opts *options) {
				require.Equal(t, 77, opts.soak.KeySpace)
				require.Equal(t, 0.5, opts.soak.EraseRatio)
				// Flags win over the environment.
				require.Equal(t, 11, opts.soak.Ops)
			},
		},
		{
			name:    "invalid config",
			args:    []string{"--key-space", "1"},
			wantErr: soak.ErrSoakInvalidKeySpace,
		},
		{
			name: "invalid metrics exporter",
			args: []string{"--metrics", "otlp"},
		},
		{
			name:    "invalid env",
			env:     map[string]string{"XSOAK_WORKERS": "many"},
			wantErr: nil,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			opts, err := parseOptions(tc.args, mapLookup(tc.env))
			if tc.check == nil {
				require.Error(t, err)
				if tc.wantErr != nil {
					require.ErrorIs(t, err, tc.wantErr)
				}
				return
			}
			require.NoError(t, err)
			tc.check(t, opts)
		})
	}
}

func TestRun(t *testing.T) {
	require.Equal(t, 0, run([]string{
		"--workers", "2",
		"--workloads", "4",
		"--ops", "500",
		"--key-space", "64",
		"--verify-every", "50",
		"--log-level", "ERROR",
	}))
	require.Equal(t, 0, run([]string{"--help"}))
	require.Equal(t, 0, run([]string{"-h"}))
	require.Equal(t, 2, run([]string{"--ops", "0"}))
	require.Equal(t, 2, run([]string{"--unknown"}))
	require.Equal(t, 2, run([]string{"--metrics", "otlp"}))
}
