package tree

import (
	"context"
	"fmt"
	"strconv"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	RBTreeStatsName = "xctl/rbtree"
)

type fixupOp uint8

const (
	insertFixup fixupOp = iota
	eraseFixup
)

func (op fixupOp) String() string {
	if op == insertFixup {
		return "insert"
	}
	return "erase"
}

var (
	rotateLeftAttrs  = metric.WithAttributeSet(attribute.NewSet(attribute.String("rbtree.rotate.dir", Left.String())))
	rotateRightAttrs = metric.WithAttributeSet(attribute.NewSet(attribute.String("rbtree.rotate.dir", Right.String())))
)

// rbTreeStats is optional. All of its methods accept a nil receiver.
type rbTreeStats struct {
	size        metric.Int64UpDownCounter
	insertCount metric.Int64Counter
	eraseCount  metric.Int64Counter
	rotateCount metric.Int64Counter
	fixupCount  metric.Int64Counter
}

func (stats *rbTreeStats) RecordInsert() {
	if stats == nil {
		return
	}
	stats.insertCount.Add(context.Background(), 1)
	stats.size.Add(context.Background(), 1)
}

func (stats *rbTreeStats) RecordErase(n int64) {
	if stats == nil || n <= 0 {
		return
	}
	stats.eraseCount.Add(context.Background(), n)
	stats.size.Add(context.Background(), -n)
}

func (stats *rbTreeStats) RecordRotate(dir RBDirection) {
	if stats == nil {
		return
	}
	if dir == Left {
		stats.rotateCount.Add(context.Background(), 1, rotateLeftAttrs)
		return
	}
	stats.rotateCount.Add(context.Background(), 1, rotateRightAttrs)
}

func (stats *rbTreeStats) RecordFixupCase(op fixupOp, c int) {
	if stats == nil {
		return
	}
	as := attribute.NewSet(
		attribute.String("rbtree.fixup.op", op.String()),
		attribute.String("rbtree.fixup.case", strconv.Itoa(c)),
	)
	stats.fixupCount.Add(context.Background(), 1, metric.WithAttributeSet(as))
}

func newRBTreeStats(name string) *rbTreeStats {
	meterName := RBTreeStatsName
	if len(name) > 0 {
		meterName = fmt.Sprintf("%s/%s", RBTreeStatsName, name)
	}
	meter := otel.Meter(meterName)
	return &rbTreeStats{
		size: lo.Must[metric.Int64UpDownCounter](meter.Int64UpDownCounter(
			"rbtree.size",
			metric.WithDescription("The number of live nodes in the tree."),
		)),
		insertCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"rbtree.insert.count",
			metric.WithDescription("The number of genuine insertions."),
		)),
		eraseCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"rbtree.erase.count",
			metric.WithDescription("The number of erased nodes, teardown included."),
		)),
		rotateCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"rbtree.rotate.count",
			metric.WithDescription("The number of rotations run by rebalancing."),
		)),
		fixupCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"rbtree.fixup.case",
			metric.WithDescription("The number of hits per rebalancing case."),
		)),
	}
}
