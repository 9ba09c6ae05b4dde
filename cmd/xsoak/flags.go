package main

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/benz9527/xctl/observability"
	"github.com/benz9527/xctl/soak"
)

const envPrefix = "XSOAK_"

type options struct {
	soak            soak.Config
	logLevel        string
	fxLogLevel      string
	logEncoder      string
	metrics         string
	metricsAddr     string
	metricsInterval time.Duration
}

func envKey(flag string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}

// applyEnv sets every flag left unset on the command line from its
// XSOAK_ variable.
func applyEnv(fs *pflag.FlagSet, lookup func(string) (string, bool)) error {
	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		if err != nil || f.Changed {
			return
		}
		if val, ok := lookup(envKey(f.Name)); ok {
			err = fs.Set(f.Name, val)
		}
	})
	return err
}

func parseOptions(args []string, lookup func(string) (string, bool)) (*options, error) {
	def := soak.DefaultConfig()
	opts := &options{}
	fs := pflag.NewFlagSet("xsoak", pflag.ContinueOnError)
	fs.IntVarP(&opts.soak.Workers, "workers", "w", def.Workers, "workload pool size")
	fs.IntVarP(&opts.soak.Workloads, "workloads", "n", def.Workloads, "number of independent workloads")
	fs.IntVar(&opts.soak.Ops, "ops", def.Ops, "operations per workload")
	fs.IntVar(&opts.soak.KeySpace, "key-space", def.KeySpace, "keys are drawn from [0, key-space)")
	fs.Float64Var(&opts.soak.EraseRatio, "erase-ratio", def.EraseRatio, "share of erase operations")
	fs.IntVar(&opts.soak.VerifyEvery, "verify-every", def.VerifyEvery, "verify the tree every n operations, 0 at the end only")
	fs.Uint64Var(&opts.soak.Seed, "seed", uint64(time.Now().UnixNano()), "random seed")
	fs.BoolVar(&opts.soak.TieMode, "tie-mode", false, "order keys by bucket and tell ties apart by equality")
	fs.StringVar(&opts.logLevel, "log-level", "INFO", "DEBUG, INFO, WARN or ERROR")
	fs.StringVar(&opts.fxLogLevel, "fx-log-level", "WARN", "level of the container wiring logs")
	fs.StringVar(&opts.logEncoder, "log-encoder", "json", "json or text")
	fs.StringVar(&opts.metrics, "metrics", "none", "none, stdout or prometheus")
	fs.StringVar(&opts.metricsAddr, "metrics-addr", ":9464", "prometheus scrape address")
	fs.DurationVar(&opts.metricsInterval, "metrics-interval", 10*time.Second, "stdout metrics interval")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := applyEnv(fs, lookup); err != nil {
		return nil, err
	}
	if err := opts.soak.Validate(); err != nil {
		return nil, err
	}
	if _, err := observability.ParseMetricsExporterType(opts.metrics); err != nil {
		return nil, err
	}
	return opts, nil
}

func osLookup(key string) (string, bool) {
	return os.LookupEnv(key)
}
