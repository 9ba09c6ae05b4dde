package tree

import (
	"slices"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func newRangeSet(t *testing.T, n int) OrderedSet[int] {
	set := NewOrderedKeySet[int]()
	for _, v := range lo.Shuffle(lo.RangeFrom(1, n)) {
		set.Insert(v)
	}
	require.Equal(t, int64(n), set.Len())
	return set
}

func TestIteratorForwardAndBackward(t *testing.T) {
	set := newRangeSet(t, 7)

	forward := make([]int, 0, 7)
	for it := set.Begin(); !it.Done(); it.Next() {
		forward = append(forward, it.Val())
	}
	require.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, forward)

	backward := make([]int, 0, 7)
	for it := set.Last(); !it.Done(); it.Prev() {
		backward = append(backward, it.Val())
	}
	require.Equal(t, []int{7, 6, 5, 4, 3, 2, 1}, backward)
	require.Equal(t, backward, slices.Collect(set.Backward()))

	end := set.End()
	require.True(t, end.Done())
	require.Nil(t, end.Node())
	require.Nil(t, end.Ref())
	require.Equal(t, 0, end.Val())
	end.Prev()
	require.Equal(t, 7, end.Val())

	first := set.First()
	require.Equal(t, 1, first.Val())
	require.Equal(t, 1, first.Node().Val())
}

func TestIteratorEmptySet(t *testing.T) {
	set := NewOrderedKeySet[int]()
	begin, end := set.Begin(), set.End()
	require.True(t, begin.IsEnd(&end))
	require.True(t, begin.Done())
	require.Equal(t, int64(0), begin.Distance(&end))
	require.Empty(t, slices.Collect(set.All()))
	end.Prev()
	require.True(t, end.Done())
}

func TestIteratorAdvance(t *testing.T) {
	set := newRangeSet(t, 10)

	testcases := []struct {
		name  string
		i     int64
		ok    bool
		val   int
		isEnd bool
	}{
		{name: "zero", i: 0, ok: true, val: 1},
		{name: "forward", i: 4, ok: true, val: 5},
		{name: "to end", i: 10, ok: true, isEnd: true},
		{name: "past end", i: 100, ok: true, isEnd: true},
		{name: "tail", i: -1, ok: true, val: 10},
		{name: "from tail", i: -3, ok: true, val: 8},
		{name: "head from tail", i: -10, ok: true, val: 1},
		{name: "beyond size", i: -11, ok: false, val: 1},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			it := set.Begin()
			require.Equal(tt, tc.ok, it.Advance(tc.i))
			if tc.isEnd {
				require.True(tt, it.Done())
				return
			}
			require.Equal(tt, tc.val, it.Val())
		})
	}

	// A negative offset counts from the tail wherever the iterator is.
	it := set.Find(7)
	require.True(t, it.Advance(-2))
	require.Equal(t, 9, it.Val())
}

func TestIteratorDistance(t *testing.T) {
	set := newRangeSet(t, 10)
	begin, end := set.Begin(), set.End()
	require.Equal(t, int64(10), begin.Distance(&end))
	require.Equal(t, int64(-10), end.Distance(&begin))

	a, b := set.Find(3), set.Find(8)
	require.Equal(t, int64(5), a.Distance(&b))
	require.Equal(t, int64(-5), b.Distance(&a))
	require.Equal(t, int64(0), a.Distance(&a))

	other := newRangeSet(t, 10)
	c := other.Find(3)
	require.Equal(t, UnrelatedDistance, a.Distance(&c))
}

func TestIteratorRange(t *testing.T) {
	set := newRangeSet(t, 10)
	first, last := set.LowerBound(3), set.UpperBound(6)
	first.Range(&last)

	got := make([]int, 0, 4)
	for ; !first.Done(); first.Next() {
		got = append(got, first.Val())
	}
	require.Equal(t, []int{3, 4, 5, 6}, got)
	require.True(t, first.IsEnd(&last))
	require.True(t, last.Done())
}

func TestIteratorBounds(t *testing.T) {
	set := NewOrderedKeySet[int]()
	for _, v := range []int{10, 20, 30} {
		set.Insert(v)
	}

	testcases := []struct {
		val   int
		lower int
		upper int
	}{
		{val: 5, lower: 10, upper: 10},
		{val: 10, lower: 10, upper: 20},
		{val: 15, lower: 20, upper: 20},
		{val: 30, lower: 30, upper: 0},
		{val: 35, lower: 0, upper: 0},
	}
	for _, tc := range testcases {
		lower, upper := set.LowerBound(tc.val), set.UpperBound(tc.val)
		require.Equal(t, tc.lower, lower.Val())
		require.Equal(t, tc.upper, upper.Val())
	}
}

func TestIteratorRef(t *testing.T) {
	type item struct {
		key   int
		count int
	}
	set := NewOrderedSet[item](func(i, j item) int64 {
		return int64(i.key - j.key)
	})
	set.Insert(item{key: 1})
	set.Insert(item{key: 2})

	it := set.Find(item{key: 2})
	it.Ref().count = 42
	require.Equal(t, 42, it.Val().count)
	require.Equal(t, []item{{1, 0}, {2, 42}}, slices.Collect(set.All()))
}

func TestIteratorStableAcrossMutations(t *testing.T) {
	set := newRangeSet(t, 100)
	it := set.Find(50)
	for v := 101; v <= 200; v++ {
		set.Insert(v)
	}
	for v := 1; v <= 40; v++ {
		set.Erase(v)
	}
	require.Equal(t, 50, it.Val())
	it.Next()
	require.Equal(t, 51, it.Val())
}

func TestEraseIter(t *testing.T) {
	set := newRangeSet(t, 5)
	it := set.Find(3)
	require.True(t, set.EraseIter(&it))
	require.Equal(t, 4, it.Val())
	require.Equal(t, []int{1, 2, 4, 5}, slices.Collect(set.All()))
	require.NoError(t, Verify(set))

	end := set.End()
	require.False(t, set.EraseIter(&end))

	other := newRangeSet(t, 5)
	foreign := other.Find(1)
	require.False(t, set.EraseIter(&foreign))
	require.Equal(t, int64(4), set.Len())

	// Drain from the head.
	for it = set.Begin(); !it.Done(); {
		require.True(t, set.EraseIter(&it))
		require.NoError(t, Verify(set))
	}
	require.True(t, set.Empty())
}

func TestEraseRange(t *testing.T) {
	t.Run("middle", func(tt *testing.T) {
		set := newRangeSet(tt, 7)
		first, last := set.LowerBound(2), set.UpperBound(4)
		require.Equal(tt, int64(3), set.EraseRange(&first, &last))
		require.True(tt, first.IsEnd(&last))
		require.Equal(tt, 5, first.Val())
		require.Equal(tt, []int{1, 5, 6, 7}, slices.Collect(set.All()))
		require.NoError(tt, Verify(set))
	})
	t.Run("to end", func(tt *testing.T) {
		set := newRangeSet(tt, 7)
		first, last := set.Find(5), set.End()
		require.Equal(tt, int64(3), set.EraseRange(&first, &last))
		require.Equal(tt, []int{1, 2, 3, 4}, slices.Collect(set.All()))
		require.NoError(tt, Verify(set))
	})
	t.Run("all", func(tt *testing.T) {
		set := newRangeSet(tt, 200)
		first, last := set.Begin(), set.End()
		require.Equal(tt, int64(200), set.EraseRange(&first, &last))
		require.True(tt, set.Empty())
		require.NoError(tt, Verify(set))
	})
	t.Run("empty range", func(tt *testing.T) {
		set := newRangeSet(tt, 7)
		first, last := set.Find(3), set.Find(3)
		require.Equal(tt, int64(0), set.EraseRange(&first, &last))
		require.Equal(tt, int64(7), set.Len())
	})
}

func TestRemoveIf(t *testing.T) {
	set := newRangeSet(t, 1000)
	erased := set.RemoveIf(func(val int) bool {
		return val%2 == 0
	})
	require.Equal(t, int64(500), erased)
	require.NoError(t, Verify(set))
	for val := range set.All() {
		require.Equal(t, 1, val%2)
	}
	require.Equal(t, int64(0), set.RemoveIf(nil))
}

func TestAllEarlyBreak(t *testing.T) {
	set := newRangeSet(t, 10)
	got := make([]int, 0, 3)
	for val := range set.All() {
		if val > 3 {
			break
		}
		got = append(got, val)
	}
	require.Equal(t, []int{1, 2, 3}, got)

	visited := int64(0)
	set.Foreach(func(idx int64, _ RBColor, _ int) bool {
		visited = idx + 1
		return idx < 4
	})
	require.Equal(t, int64(5), visited)
}
