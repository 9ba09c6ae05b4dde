package soak

import (
	"context"
	"math/rand/v2"
	"slices"

	"github.com/samber/lo"
	"go.uber.org/multierr"

	"github.com/benz9527/xctl/lib/infra"
	"github.com/benz9527/xctl/lib/tree"
)

type workloadResult struct {
	ops     int64
	inserts int64
	erases  int64
}

// workload drives one private set against a map model.
type workload struct {
	id        int
	cfg       Config
	rnd       *rand.Rand
	statsName string
	stats     *soakStats
	set       tree.OrderedSet[int]
	model     map[int]struct{}
	rejected  int64
	destroyed int64
	result    workloadResult
}

func bucketComparator(i, j int) int64 {
	return infra.OrderedKeyComparator(i/tieBucketWidth, j/tieBucketWidth)
}

func exactEqual(i, j int) bool {
	return i == j
}

func (w *workload) cmp(i, j int) int64 {
	if w.cfg.TieMode {
		return bucketComparator(i, j)
	}
	return infra.OrderedKeyComparator(i, j)
}

func (w *workload) newSet(destroy func(int), withStats bool) tree.OrderedSet[int] {
	opts := []tree.OrderedSetOption[int]{
		tree.WithSetDestroy[int](destroy),
	}
	if withStats && len(w.statsName) > 0 {
		opts = append(opts, tree.WithSetStats[int](w.statsName))
	}
	if w.cfg.TieMode {
		opts = append(opts, tree.WithSetEqual[int](exactEqual))
		return tree.NewOrderedSet[int](bucketComparator, opts...)
	}
	return tree.NewOrderedKeySet[int](opts...)
}

func newWorkload(wid int, cfg Config, statsName string, stats *soakStats) *workload {
	w := &workload{
		id:        wid,
		cfg:       cfg,
		rnd:       rand.New(rand.NewPCG(cfg.Seed, uint64(wid))),
		statsName: statsName,
		stats:     stats,
		model:     make(map[int]struct{}, cfg.KeySpace),
	}
	w.set = w.newSet(func(int) { w.destroyed++ }, true)
	return w
}

func (w *workload) run(ctx context.Context) error {
	defer w.set.Free()

	var (
		findUpTo = w.cfg.EraseRatio + (1-w.cfg.EraseRatio)*findShare
		err      error
	)
	for op := 1; op <= w.cfg.Ops; op++ {
		if err = ctx.Err(); err != nil {
			return infra.WrapErrorStackWithMessage(err, "[xsoak] workload interrupted")
		}
		key := w.rnd.IntN(w.cfg.KeySpace)
		switch r := w.rnd.Float64(); {
		case r < w.cfg.EraseRatio:
			err = w.erase(op, key)
		case r < findUpTo:
			err = w.find(op, key)
		default:
			err = w.insert(op, key)
		}
		w.result.ops++
		if err != nil {
			return err
		}
		if w.set.Len() != int64(len(w.model)) {
			return infra.NewErrorStackf("[xsoak] workload %d op %d: len %d, model %d",
				w.id, op, w.set.Len(), len(w.model))
		}
		if w.cfg.VerifyEvery > 0 && op%w.cfg.VerifyEvery == 0 {
			if err = tree.Verify(w.set); err != nil {
				return infra.WrapErrorStackWithMessage(err, "[xsoak] workload verify failed")
			}
		}
	}
	if err = w.checkContents(); err != nil {
		return err
	}
	if err = w.checkSetLaws(); err != nil {
		return err
	}
	return w.checkReleased()
}

func (w *workload) insert(op, key int) error {
	w.stats.RecordOp(opInsert)
	_, inModel := w.model[key]
	if _, ok := w.set.Insert(key); ok == inModel {
		return infra.NewErrorStackf("[xsoak] workload %d op %d: insert %d reported %v, model has %v",
			w.id, op, key, ok, inModel)
	} else if !ok {
		w.rejected++
		return nil
	}
	w.model[key] = struct{}{}
	w.result.inserts++
	return nil
}

func (w *workload) erase(op, key int) error {
	w.stats.RecordOp(opErase)
	_, inModel := w.model[key]
	if ok := w.set.Erase(key); ok != inModel {
		return infra.NewErrorStackf("[xsoak] workload %d op %d: erase %d reported %v, model has %v",
			w.id, op, key, ok, inModel)
	} else if ok {
		delete(w.model, key)
		w.result.erases++
	}
	return nil
}

func (w *workload) find(op, key int) error {
	w.stats.RecordOp(opFind)
	_, inModel := w.model[key]
	it := w.set.Find(key)
	if found := !it.Done(); found != inModel || (found && it.Val() != key) {
		return infra.NewErrorStackf("[xsoak] workload %d op %d: find %d got %v, model has %v",
			w.id, op, key, found, inModel)
	}
	if count := w.set.Count(key); count != lo.Ternary(inModel, 1, 0) {
		return infra.NewErrorStackf("[xsoak] workload %d op %d: count %d got %d, model has %v",
			w.id, op, key, count, inModel)
	}
	return nil
}

func (w *workload) checkContents() error {
	forward := slices.Collect(w.set.All())
	backward := slices.Collect(w.set.Backward())
	slices.Reverse(backward)

	var merr error
	if !sameMembers(forward, lo.Keys(w.model)) {
		merr = multierr.Append(merr, infra.NewErrorStackf(
			"[xsoak] workload %d: final contents diverged, %d values, model %d",
			w.id, len(forward), len(w.model)))
	}
	if !slices.Equal(forward, backward) {
		merr = multierr.Append(merr, infra.NewErrorStackf(
			"[xsoak] workload %d: backward walk diverged from forward walk", w.id))
	}
	for i := 1; i < len(forward); i++ {
		res := w.cmp(forward[i-1], forward[i])
		if res > 0 || (res == 0 && !w.cfg.TieMode) {
			merr = multierr.Append(merr, infra.NewErrorStackf(
				"[xsoak] workload %d: %d before %d is out of order", w.id, forward[i-1], forward[i]))
			break
		}
	}
	return merr
}

func (w *workload) randomSet(size int) tree.OrderedSet[int] {
	set := w.newSet(nil, false)
	for range size {
		set.Insert(w.rnd.IntN(w.cfg.KeySpace))
	}
	return set
}

// checkSetLaws checks the results of the set algebra against the same
// operations on plain slices.
func (w *workload) checkSetLaws() error {
	a, b := w.randomSet(w.cfg.KeySpace/2), w.randomSet(w.cfg.KeySpace/2)
	union, inter := a.Union(b), a.Intersection(b)
	diff, symDiff := a.Difference(b), a.SymmetricDifference(b)
	defer func() {
		for _, set := range []tree.OrderedSet[int]{a, b, union, inter, diff, symDiff} {
			set.Free()
		}
	}()

	av, bv := slices.Collect(a.All()), slices.Collect(b.All())
	onlyA, onlyB := lo.Difference(av, bv)
	laws := []struct {
		name string
		got  tree.OrderedSet[int]
		want []int
	}{
		{"union", union, lo.Uniq(append(slices.Clone(av), bv...))},
		{"intersection", inter, lo.Intersect(av, bv)},
		{"difference", diff, onlyA},
		{"symmetric difference", symDiff, append(slices.Clone(onlyA), onlyB...)},
	}

	var merr error
	for _, law := range laws {
		if err := tree.Verify(law.got); err != nil {
			merr = multierr.Append(merr, infra.WrapErrorStackWithMessage(err, "[xsoak] "+law.name+" verify failed"))
			continue
		}
		if got := slices.Collect(law.got.All()); !sameMembers(got, law.want) {
			merr = multierr.Append(merr, infra.NewErrorStackf(
				"[xsoak] workload %d: %s has %d values, want %d", w.id, law.name, len(got), len(law.want)))
		}
	}
	if union.Len()+inter.Len() != a.Len()+b.Len() {
		merr = multierr.Append(merr, infra.NewErrorStackf(
			"[xsoak] workload %d: |A∪B|+|A∩B| = %d, |A|+|B| = %d",
			w.id, union.Len()+inter.Len(), a.Len()+b.Len()))
	}
	return merr
}

// checkReleased frees the set. Every rejected duplicate, every erased
// value and every freed value goes through the destroy hook exactly once.
func (w *workload) checkReleased() error {
	remaining := w.set.Len()
	w.set.Free()
	if w.destroyed != w.rejected+w.result.erases+remaining {
		return infra.NewErrorStackf("[xsoak] workload %d: %d values released, want %d rejected + %d erased + %d freed",
			w.id, w.destroyed, w.rejected, w.result.erases, remaining)
	}
	return nil
}

func sameMembers(got, want []int) bool {
	if len(got) != len(want) {
		return false
	}
	return slices.Equal(slices.Sorted(slices.Values(got)), slices.Sorted(slices.Values(want)))
}
