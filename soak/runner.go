package soak

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xctl/lib/id"
	"github.com/benz9527/xctl/lib/infra"
	"github.com/benz9527/xctl/observability"
	"github.com/benz9527/xctl/xlog"
)

// RunIDContextKey carries the run ID in the run context. Loggers built
// with xlog.WithXLoggerContextFieldExtract(RunIDContextKey) print it.
const RunIDContextKey = "runID"

// Report sums up a soak run.
type Report struct {
	RunID     string
	Workloads int64
	Ops       int64
	Inserts   int64
	Erases    int64
	Failures  int64
	RSSBytes  uint64
	Elapsed   time.Duration
}

func (r Report) Fields() []zap.Field {
	return []zap.Field{
		zap.String(RunIDContextKey, r.RunID),
		zap.Int64("workloads", r.Workloads),
		zap.Int64("ops", r.Ops),
		zap.Int64("inserts", r.Inserts),
		zap.Int64("erases", r.Erases),
		zap.Int64("failures", r.Failures),
		zap.Uint64("rssBytes", r.RSSBytes),
		zap.Duration("elapsed", r.Elapsed),
	}
}

// Runner fans the workloads out to an ants pool.
type Runner struct {
	cfg       Config
	logger    xlog.XLogger
	pool      *ants.Pool
	ownPool   bool
	runID     id.NanoIDGen
	statsName string
	stats     *soakStats
}

func NewRunner(cfg Config, opts ...RunnerOption) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Runner{
		cfg: cfg,
	}
	for _, o := range opts {
		if o != nil {
			o(r)
		}
	}
	if r.logger == nil {
		r.logger = xlog.NewXLogger(
			xlog.WithXLoggerLevel(xlog.LogLevelInfo),
			xlog.WithXLoggerStdOutWriter(),
			xlog.WithXLoggerContextFieldExtract(RunIDContextKey),
		)
	}
	runID, err := id.ClassicNanoID(12)
	if err != nil {
		return nil, err
	}
	r.runID = runID
	if r.pool == nil {
		p, err := ants.NewPool(cfg.Workers,
			ants.WithPreAlloc(true),
			ants.WithLogger(xlog.NewAntsXLogger(r.logger)),
		)
		if err != nil {
			return nil, infra.WrapErrorStackWithMessage(err, "[xsoak] unable to create workload pool")
		}
		r.pool, r.ownPool = p, true
	}
	return r, nil
}

func (r *Runner) Config() Config {
	return r.cfg
}

// Release frees the pool owned by the runner.
func (r *Runner) Release() {
	if r == nil || !r.ownPool {
		return
	}
	r.pool.Release()
}

// Run blocks until every submitted workload is done. Workloads stop
// between two operations once ctx is done. All failures are combined.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	var (
		report             Report
		ops, ins, ers      atomic.Int64
		finished, failures atomic.Int64
		wg                 sync.WaitGroup
		lock               sync.Mutex
		merr               error
		start              = time.Now()
	)
	report.RunID = r.runID()
	ctx = context.WithValue(ctx, xlog.ContextKey(RunIDContextKey), report.RunID)
	appendErr := func(err error) {
		lock.Lock()
		defer lock.Unlock()
		merr = multierr.Append(merr, err)
	}

	r.logger.InfoContext(ctx, "soak run started",
		zap.Int("workers", r.cfg.Workers),
		zap.Int("workloads", r.cfg.Workloads),
		zap.Int("ops", r.cfg.Ops),
		zap.Int("keySpace", r.cfg.KeySpace),
		zap.Uint64("seed", r.cfg.Seed),
		zap.Bool("tieMode", r.cfg.TieMode),
	)
	for wid := 0; wid < r.cfg.Workloads; wid++ {
		if ctx.Err() != nil {
			appendErr(infra.WrapErrorStackWithMessage(ctx.Err(), "[xsoak] run interrupted"))
			break
		}
		w := newWorkload(wid, r.cfg, r.statsName, r.stats)
		wg.Add(1)
		err := r.pool.Submit(func() {
			defer wg.Done()
			begin := time.Now()
			err := w.run(ctx)
			ops.Add(w.result.ops)
			ins.Add(w.result.inserts)
			ers.Add(w.result.erases)
			finished.Add(1)
			r.stats.RecordWorkload(time.Since(begin).Milliseconds(), err != nil)
			if err != nil {
				failures.Add(1)
				r.logger.ErrorStackContext(ctx, err, "soak workload failed", zap.Int("workload", w.id))
				appendErr(err)
			}
		})
		if err != nil {
			wg.Done()
			failures.Add(1)
			appendErr(infra.WrapErrorStackWithMessage(err, "[xsoak] unable to submit workload"))
		}
	}
	wg.Wait()

	report.Workloads = finished.Load()
	report.Ops = ops.Load()
	report.Inserts = ins.Load()
	report.Erases = ers.Load()
	report.Failures = failures.Load()
	report.Elapsed = time.Since(start)
	// The run context may already be done.
	if rss, err := observability.ProcessRSS(context.Background()); err == nil {
		report.RSSBytes = rss
	} else {
		r.logger.WarnContext(ctx, "unable to read process rss", zap.Error(err))
	}
	return report, merr
}
