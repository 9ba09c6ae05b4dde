package soak

import (
	"errors"
	"runtime"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/multierr"

	"github.com/benz9527/xctl/xlog"
)

const (
	defaultWorkloads   = 64
	defaultOps         = 10_000
	defaultKeySpace    = 4096
	defaultEraseRatio  = 0.35
	defaultVerifyEvery = 512
	// Lookups take this share of the non-erase operations.
	findShare = 0.25
	// Keys in the same bucket of this width compare as tied.
	tieBucketWidth = 4
)

var (
	ErrSoakInvalidWorkers    = errors.New("[xsoak] workers must be positive")
	ErrSoakInvalidWorkloads  = errors.New("[xsoak] workloads must be positive")
	ErrSoakInvalidOps        = errors.New("[xsoak] ops must be positive")
	ErrSoakInvalidKeySpace   = errors.New("[xsoak] key space must be at least 2")
	ErrSoakInvalidEraseRatio = errors.New("[xsoak] erase ratio must be in [0, 1)")
	ErrSoakInvalidVerify     = errors.New("[xsoak] verify interval must not be negative")
)

// Config drives a soak run. Every workload owns its own set and model.
type Config struct {
	Workers     int
	Workloads   int
	Ops         int
	KeySpace    int
	EraseRatio  float64
	VerifyEvery int // 0 only verifies at the end
	Seed        uint64
	TieMode     bool // order by bucket and tell ties apart by equality
}

func DefaultConfig() Config {
	return Config{
		Workers:     runtime.GOMAXPROCS(0),
		Workloads:   defaultWorkloads,
		Ops:         defaultOps,
		KeySpace:    defaultKeySpace,
		EraseRatio:  defaultEraseRatio,
		VerifyEvery: defaultVerifyEvery,
	}
}

func (cfg Config) Validate() error {
	var merr error
	if cfg.Workers <= 0 {
		merr = multierr.Append(merr, ErrSoakInvalidWorkers)
	}
	if cfg.Workloads <= 0 {
		merr = multierr.Append(merr, ErrSoakInvalidWorkloads)
	}
	if cfg.Ops <= 0 {
		merr = multierr.Append(merr, ErrSoakInvalidOps)
	}
	if cfg.KeySpace < 2 {
		merr = multierr.Append(merr, ErrSoakInvalidKeySpace)
	}
	if cfg.EraseRatio < 0 || cfg.EraseRatio >= 1 {
		merr = multierr.Append(merr, ErrSoakInvalidEraseRatio)
	}
	if cfg.VerifyEvery < 0 {
		merr = multierr.Append(merr, ErrSoakInvalidVerify)
	}
	return merr
}

type RunnerOption func(*Runner)

func WithRunnerLogger(logger xlog.XLogger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithRunnerPool shares an external pool. The runner never releases it.
func WithRunnerPool(pool *ants.Pool) RunnerOption {
	return func(r *Runner) {
		r.pool = pool
	}
}

// WithRunnerStats records the run and every workload set under name.
func WithRunnerStats(name string) RunnerOption {
	return func(r *Runner) {
		r.statsName = name
		r.stats = newSoakStats(name)
	}
}
