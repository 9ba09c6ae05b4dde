package soak

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func testConfig(tieMode bool) Config {
	return Config{
		Workers:     4,
		Workloads:   8,
		Ops:         3000,
		KeySpace:    256,
		EraseRatio:  0.4,
		VerifyEvery: 100,
		Seed:        20241018,
		TieMode:     tieMode,
	}
}

func TestBucketComparator(t *testing.T) {
	require.Equal(t, int64(0), bucketComparator(0, tieBucketWidth-1))
	require.Equal(t, int64(-1), bucketComparator(tieBucketWidth-1, tieBucketWidth))
	require.Equal(t, int64(1), bucketComparator(3*tieBucketWidth, 2*tieBucketWidth+1))
}

func TestSameMembers(t *testing.T) {
	require.True(t, sameMembers([]int{3, 1, 2}, []int{1, 2, 3}))
	require.True(t, sameMembers(nil, []int{}))
	require.False(t, sameMembers([]int{1, 2}, []int{1, 2, 3}))
	require.False(t, sameMembers([]int{1, 2, 4}, []int{1, 2, 3}))
}

func TestWorkloadRun(t *testing.T) {
	for _, tieMode := range []bool{false, true} {
		name := "ordered"
		if tieMode {
			name = "tied"
		}
		t.Run(name, func(t *testing.T) {
			cfg := testConfig(tieMode)
			w := newWorkload(1, cfg, "", nil)
			require.NoError(t, w.run(context.Background()))
			require.Equal(t, int64(cfg.Ops), w.result.ops)
			require.Positive(t, w.result.inserts)
			require.Positive(t, w.result.erases)
			require.Positive(t, w.rejected)
			require.Equal(t, int64(0), w.set.Len())
		})
	}
}

func TestWorkloadDeterministic(t *testing.T) {
	cfg := testConfig(true)
	w1 := newWorkload(7, cfg, "", nil)
	require.NoError(t, w1.run(context.Background()))
	w2 := newWorkload(7, cfg, "", nil)
	require.NoError(t, w2.run(context.Background()))
	require.Equal(t, w1.result, w2.result)
	require.Equal(t, w1.rejected, w2.rejected)

	w3 := newWorkload(8, cfg, "", nil)
	require.NoError(t, w3.run(context.Background()))
	require.NotEqual(t, w1.result, w3.result)
}

func TestWorkloadInterrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := newWorkload(1, testConfig(false), "", nil)
	err := w.run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, int64(0), w.result.ops)
}

func TestWorkloadCheckContentsDetectsDivergence(t *testing.T) {
	w := newWorkload(1, testConfig(false), "", nil)
	for _, k := range []int{5, 1, 3} {
		require.NoError(t, w.insert(0, k))
	}
	require.NoError(t, w.checkContents())

	// The model learns of a value the set never saw.
	w.model[9] = struct{}{}
	require.Error(t, w.checkContents())
	delete(w.model, 9)

	require.NoError(t, w.insert(0, 3))
	require.Equal(t, int64(1), w.rejected)
	require.Equal(t, int64(1), w.destroyed)

	// The model forgets a value the set still holds.
	delete(w.model, 5)
	require.Error(t, w.insert(0, 5))
	require.Error(t, w.find(0, 5))
	require.Error(t, w.erase(0, 5))
}

func TestWorkloadCheckReleasedCountsErased(t *testing.T) {
	w := newWorkload(1, testConfig(false), "", nil)
	for _, k := range []int{1, 2, 3, 4, 5} {
		require.NoError(t, w.insert(0, k))
	}
	require.NoError(t, w.insert(0, 2))
	require.NoError(t, w.erase(0, 4))
	require.NoError(t, w.erase(0, 1))
	require.Equal(t, int64(2), w.result.erases)
	require.Equal(t, int64(1), w.rejected)
	// 1 rejected + 2 erased so far, 3 more once freed.
	require.Equal(t, int64(3), w.destroyed)
	require.NoError(t, w.checkReleased())
	require.Equal(t, int64(6), w.destroyed)

	// A release that bypasses the hook is reported.
	w = newWorkload(2, testConfig(false), "", nil)
	require.NoError(t, w.insert(0, 7))
	require.NoError(t, w.erase(0, 7))
	w.destroyed--
	require.Error(t, w.checkReleased())
}
