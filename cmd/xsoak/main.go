package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/benz9527/xctl/observability"
	"github.com/benz9527/xctl/soak"
	"github.com/benz9527/xctl/xlog"
)

const appName = "xsoak"

type banner struct{}

func (banner) JSON() string {
	return `{"app":"` + appName + `","desc":"red-black ordered set soak runner"}`
}

func (banner) PlainText() string {
	return appName + " - red-black ordered set soak runner"
}

func newLogger(lc fx.Lifecycle, opts *options) xlog.XLogger {
	enc := xlog.JSON
	if strings.EqualFold(opts.logEncoder, "text") {
		enc = xlog.PlainText
	}
	logger := xlog.NewXLogger(
		xlog.WithXLoggerLevel(xlog.ParseLogLevel(opts.logLevel)),
		xlog.WithXLoggerEncoder(enc),
		xlog.WithXLoggerStdOutWriter(),
		xlog.WithXLoggerContextFieldExtract(soak.RunIDContextKey),
	)
	logger.Banner(banner{})
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return logger.Sync()
		},
	})
	return logger
}

func newMetrics(lc fx.Lifecycle, opts *options, logger xlog.XLogger) (observability.ShutdownFunc, error) {
	typ, err := observability.ParseMetricsExporterType(opts.metrics)
	if err != nil {
		return nil, err
	}
	shutdown, err := observability.NewMetricsExporter(typ, os.Stdout, opts.metricsInterval, opts.metricsInterval)
	if err != nil {
		return nil, err
	}
	var srv *http.Server
	if typ == observability.PrometheusMetricsExporter {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv = &http.Server{Addr: opts.metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	}
	statsCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if typ != observability.NoopMetricsExporter {
				if err := observability.InitAppStats(statsCtx, appName, nil); err != nil {
					return err
				}
			}
			if srv != nil {
				go func() {
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						logger.ErrorStack(err, "metrics server stopped", zap.String("addr", opts.metricsAddr))
					}
				}()
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			if srv != nil {
				_ = srv.Shutdown(ctx)
			}
			return shutdown(ctx)
		},
	})
	return shutdown, nil
}

func newPool(lc fx.Lifecycle, opts *options, logger xlog.XLogger) (*ants.Pool, error) {
	pool, err := ants.NewPool(opts.soak.Workers,
		ants.WithPreAlloc(true),
		ants.WithLogger(xlog.NewAntsXLogger(logger)),
	)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			pool.Release()
			return nil
		},
	})
	return pool, nil
}

// The exporter must be installed before the runner creates its instruments.
func newRunner(opts *options, logger xlog.XLogger, pool *ants.Pool, _ observability.ShutdownFunc) (*soak.Runner, error) {
	runnerOpts := []soak.RunnerOption{
		soak.WithRunnerLogger(logger),
		soak.WithRunnerPool(pool),
	}
	if typ, _ := observability.ParseMetricsExporterType(opts.metrics); typ != observability.NoopMetricsExporter {
		runnerOpts = append(runnerOpts, soak.WithRunnerStats(appName))
	}
	return soak.NewRunner(opts.soak, runnerOpts...)
}

func registerRun(lc fx.Lifecycle, sd fx.Shutdowner, runner *soak.Runner, logger xlog.XLogger) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				report, err := runner.Run(ctx)
				code := 0
				if err != nil {
					code = 1
					logger.ErrorStack(err, "soak run failed", report.Fields()...)
				} else {
					logger.Info("soak run finished", report.Fields()...)
				}
				_ = sd.Shutdown(fx.ExitCode(code))
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
			return nil
		},
	})
}

func run(args []string) int {
	undo, err := maxprocs.Set()
	defer undo()
	if err != nil {
		fmt.Fprintf(os.Stderr, "xsoak: unable to set GOMAXPROCS: %v\n", err)
	}

	opts, err := parseOptions(args, osLookup)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	} else if err != nil {
		fmt.Fprintf(os.Stderr, "xsoak: %v\n", err)
		return 2
	}

	app := fx.New(
		fx.Supply(opts),
		fx.Provide(newLogger, newMetrics, newPool, newRunner),
		fx.WithLogger(func(logger xlog.XLogger) fxevent.Logger {
			return xlog.NewFxXLogger(logger, xlog.WithComponentLevel(xlog.ParseLogLevel(opts.fxLogLevel)))
		}),
		fx.Invoke(registerRun),
	)
	startCtx, cancel := context.WithTimeout(context.Background(), fx.DefaultTimeout)
	defer cancel()
	if err = app.Start(startCtx); err != nil {
		fmt.Fprintf(os.Stderr, "xsoak: %v\n", err)
		return 1
	}
	sig := <-app.Wait()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), fx.DefaultTimeout)
	defer stopCancel()
	if err = app.Stop(stopCtx); err != nil {
		fmt.Fprintf(os.Stderr, "xsoak: %v\n", err)
		if sig.ExitCode == 0 {
			return 1
		}
	}
	return sig.ExitCode
}

func main() {
	os.Exit(run(os.Args[1:]))
}
