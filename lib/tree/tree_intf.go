package tree

import (
	"iter"

	"github.com/benz9527/xctl/lib/infra"
)

type RBColor uint8

const (
	Black RBColor = iota
	Red
)

func (c RBColor) String() string {
	switch c {
	case Black:
		return "Black"
	case Red:
		return "Red"
	default:
	}
	return "RBColor(invalid)"
}

type RBDirection int8

const (
	Left RBDirection = -1 + iota
	Root
	Right
)

func (d RBDirection) String() string {
	switch d {
	case Left:
		return "Left"
	case Root:
		return "Root"
	case Right:
		return "Right"
	default:
	}
	return "RBDirection(invalid)"
}

// RBNode is a read-only view of a tree cell.
type RBNode[T any] interface {
	Val() T
	Color() RBColor
	Left() RBNode[T]
	Right() RBNode[T]
	Parent() RBNode[T]
}

// Element is the capability set a value type may carry instead of
// passing hooks one by one. An Element may also implement
// Equal(T) bool to tell apart values that compare as tied.
type Element[T any] interface {
	Compare(that T) int64
	Clone() T
	Release()
}

type equaler[T any] interface {
	Equal(that T) bool
}

// OrderedSet is an ordered container of unique values backed by a
// red-black tree.
//
// The set takes ownership of a value passed to Insert. Values passed
// to lookups (Find, Count, Contains, Erase, bounds) are only borrowed.
// The set is not safe for concurrent mutation.
type OrderedSet[T any] interface {
	Len() int64
	Empty() bool
	Root() RBNode[T]

	// Insert places val and returns its node with true. If an exact
	// match already exists, the existing node is returned untouched with
	// false and val is released through the destroy hook.
	Insert(val T) (RBNode[T], bool)
	// Erase removes the element matching val. Absent values are a no-op.
	Erase(val T) bool
	// EraseIter removes the element under it and moves it to the
	// in-order successor.
	EraseIter(it *Iterator[T]) bool
	// EraseRange removes [first, last) and returns the erased count.
	EraseRange(first, last *Iterator[T]) int64
	RemoveIf(match func(val T) bool) int64

	Find(val T) Iterator[T]
	Count(val T) int
	Contains(val T) bool
	LowerBound(val T) Iterator[T]
	UpperBound(val T) Iterator[T]

	Begin() Iterator[T]
	End() Iterator[T]
	First() Iterator[T]
	Last() Iterator[T]
	All() iter.Seq[T]
	Backward() iter.Seq[T]
	Foreach(action func(idx int64, color RBColor, val T) bool)

	Clear()
	Free()
	Copy() OrderedSet[T]
	Swap(that OrderedSet[T])

	Union(that OrderedSet[T]) OrderedSet[T]
	Intersection(that OrderedSet[T]) OrderedSet[T]
	Difference(that OrderedSet[T]) OrderedSet[T]
	SymmetricDifference(that OrderedSet[T]) OrderedSet[T]

	impl() *rbTree[T]
}

type OrderedSetOption[T any] func(*rbTree[T])

// OrderedMap is an ordered key/value store sharing the set core.
type OrderedMap[K infra.OrderedKey, V any] interface {
	Len() int64
	Put(key K, val V, ifNotPresent ...bool) error
	Get(key K) (V, bool)
	Contains(key K) bool
	Remove(key K) (V, error)
	RemoveMin() (K, V, error)
	Foreach(action func(idx int64, key K, val V) bool)
	Keys() []K
	Release()
}
