package observability

// https://opentelemetry.io/docs/languages/go/exporters/

import (
	"context"
	"io"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/sdk/metric"

	"github.com/benz9527/xctl/lib/infra"
)

type MetricsExporterType string

const (
	NoopMetricsExporter       MetricsExporterType = "none"
	ConsoleMetricsExporter    MetricsExporterType = "stdout"
	PrometheusMetricsExporter MetricsExporterType = "prometheus"
)

func ParseMetricsExporterType(typ string) (MetricsExporterType, error) {
	switch t := MetricsExporterType(strings.ToLower(strings.TrimSpace(typ))); t {
	case NoopMetricsExporter, ConsoleMetricsExporter, PrometheusMetricsExporter:
		return t, nil
	case "":
		return NoopMetricsExporter, nil
	default:
	}
	return NoopMetricsExporter, infra.NewErrorStackf("unknown metrics exporter %q", typ)
}

// ShutdownFunc flushes and stops the installed meter provider.
type ShutdownFunc func(ctx context.Context) error

func noopShutdown(context.Context) error {
	return nil
}

// NewMetricsExporter installs the global meter provider of the given type.
// The console exporter writes to w every interval.
func NewMetricsExporter(typ MetricsExporterType, w io.Writer, interval, timeout time.Duration) (ShutdownFunc, error) {
	switch typ {
	case ConsoleMetricsExporter:
		return NewConsoleMetricsExporter(interval, timeout, stdoutmetric.WithWriter(w))
	case PrometheusMetricsExporter:
		return NewPrometheusMetricsExporter()
	case NoopMetricsExporter:
		return noopShutdown, nil
	default:
	}
	return nil, infra.NewErrorStackf("unknown metrics exporter %q", typ)
}

// Serves for test/dev environment.
func NewConsoleMetricsExporter(interval, timeout time.Duration, opts ...stdoutmetric.Option) (ShutdownFunc, error) {
	exporter, err := stdoutmetric.New(opts...)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "stdout metrics exporter")
	}
	mp := metric.NewMeterProvider(metric.WithReader(metric.NewPeriodicReader(
		exporter,
		metric.WithInterval(interval),
		metric.WithTimeout(timeout),
	)))
	otel.SetMeterProvider(mp)
	return mp.Shutdown, nil
}

// Serves for the product environment and fetch stats metrics by HTTP.
func NewPrometheusMetricsExporter() (ShutdownFunc, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "prometheus metrics exporter")
	}
	mp := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(mp)
	return mp.Shutdown, nil
}
