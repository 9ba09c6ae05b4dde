package soak

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	SoakStatsName = "xctl/xsoak"
)

type opKind uint8

const (
	opInsert opKind = iota
	opErase
	opFind
)

func (op opKind) String() string {
	switch op {
	case opInsert:
		return "insert"
	case opErase:
		return "erase"
	case opFind:
		return "find"
	default:
	}
	return "unknown"
}

type soakStats struct {
	workloadCount     metric.Int64Counter
	workloadFailures  metric.Int64Counter
	opCount           metric.Int64Counter
	workloadDurations metric.Int64Histogram
}

func (stats *soakStats) RecordOp(op opKind) {
	if stats == nil {
		return
	}
	stats.opCount.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("op", op.String())),
	)
}

func (stats *soakStats) RecordWorkload(durationMs int64, failed bool) {
	if stats == nil {
		return
	}
	stats.workloadCount.Add(context.Background(), 1)
	stats.workloadDurations.Record(context.Background(), durationMs)
	if failed {
		stats.workloadFailures.Add(context.Background(), 1)
	}
}

func newSoakStats(name string) *soakStats {
	meter := otel.Meter(fmt.Sprintf("%s/%s", SoakStatsName, name))
	return &soakStats{
		workloadCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"xsoak.workload.count",
			metric.WithDescription("The number of finished soak workloads."),
		)),
		workloadFailures: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"xsoak.workload.failures",
			metric.WithDescription("The number of soak workloads that found a divergence."),
		)),
		opCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"xsoak.op.count",
			metric.WithDescription("The number of set operations driven by the soak run."),
		)),
		workloadDurations: lo.Must[metric.Int64Histogram](meter.Int64Histogram(
			"xsoak.workload.duration",
			metric.WithDescription("The duration of a soak workload. In milliseconds."),
			metric.WithUnit("ms"),
		)),
	}
}
