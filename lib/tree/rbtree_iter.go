package tree

import (
	"iter"
	"math"
)

// UnrelatedDistance is returned by Distance when neither iterator can
// reach the other.
const UnrelatedDistance = int64(math.MaxInt64)

// Iterator is an in-order cursor. It stays valid across mutations
// of other nodes. Erasing a node with two children moves the in-order
// predecessor's value into it, so an iterator held there observes the
// new value while an iterator held on the predecessor is invalidated.
//
// A zero end bound means the cursor is done at the end sentinel.
type Iterator[T any] struct {
	node  *rbNode[T]
	end   *rbNode[T]
	owner *rbOwner[T]
}

func newIterator[T any](tree *rbTree[T], node *rbNode[T]) Iterator[T] {
	return Iterator[T]{
		node:  node,
		owner: tree.ownerRef(),
	}
}

// set is the set holding the node, nil for a zero iterator.
func (it *Iterator[T]) set() *rbTree[T] {
	if it.owner == nil {
		return nil
	}
	return it.owner.tree
}

func (tree *rbTree[T]) Begin() Iterator[T] {
	return newIterator(tree, tree.root.minimum())
}

func (tree *rbTree[T]) End() Iterator[T] {
	return newIterator[T](tree, nil)
}

func (tree *rbTree[T]) First() Iterator[T] {
	return tree.Begin()
}

func (tree *rbTree[T]) Last() Iterator[T] {
	return newIterator(tree, tree.root.maximum())
}

func (it *Iterator[T]) Done() bool {
	return it.node == it.end
}

func (it *Iterator[T]) IsEnd(last *Iterator[T]) bool {
	return it.node == last.node
}

func (it *Iterator[T]) Node() RBNode[T] {
	if it.node == nil {
		return nil
	}
	return it.node
}

// Val returns the zero value at the end sentinel.
func (it *Iterator[T]) Val() T {
	if it.node == nil {
		var zero T
		return zero
	}
	return it.node.val
}

// Ref points into the node. Writes through it must not change the
// value's position under the set's comparator.
func (it *Iterator[T]) Ref() *T {
	if it.node == nil {
		return nil
	}
	return &it.node.val
}

func (it *Iterator[T]) Next() *Iterator[T] {
	if it.node != nil {
		it.node = it.node.succ()
	}
	return it
}

// Prev steps backward. From the end sentinel it moves to the maximum.
func (it *Iterator[T]) Prev() *Iterator[T] {
	if it.node == nil {
		if tree := it.set(); tree != nil {
			it.node = tree.root.maximum()
		}
		return it
	}
	it.node = it.node.pred()
	return it
}

// Advance walks i steps forward. A negative i counts from the tail,
// -1 being the maximum. Tree iterators have no random access, so this
// costs O(n). It reports false if -i exceeds the size.
func (it *Iterator[T]) Advance(i int64) bool {
	if i < 0 {
		tree := it.set()
		if tree == nil || -i > tree.count {
			return false
		}
		i += tree.count
		it.node = tree.root.minimum()
	}
	for j := int64(0); it.node != nil && j < i; j++ {
		it.node = it.node.succ()
	}
	return true
}

// Distance counts the Next steps from it to that. If that comes first
// the result is negative. Iterators of different sets are unrelated.
func (it *Iterator[T]) Distance(that *Iterator[T]) int64 {
	if it == that || it.node == that.node && it.owner == that.owner {
		return 0
	}
	if it.owner != that.owner {
		return UnrelatedDistance
	}

	d := int64(0)
	n := it.node
	for ; n != nil && n != that.node; d++ {
		n = n.succ()
	}
	if n == that.node {
		return d
	}

	d = 0
	for n = that.node; n != nil && n != it.node; d++ {
		n = n.succ()
	}
	if n == it.node {
		return -d
	}
	return UnrelatedDistance
}

// Range bounds it and last by last's node, so Done is a pointer test.
func (it *Iterator[T]) Range(last *Iterator[T]) {
	it.end = last.node
	last.end = last.node
}

func (tree *rbTree[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for node := tree.root.minimum(); node != nil; {
			next := node.succ()
			if !yield(node.val) {
				return
			}
			node = next
		}
	}
}

func (tree *rbTree[T]) Backward() iter.Seq[T] {
	return func(yield func(T) bool) {
		for node := tree.root.maximum(); node != nil; {
			prev := node.pred()
			if !yield(node.val) {
				return
			}
			node = prev
		}
	}
}

// Inorder traversal to implement the DFS.
func (tree *rbTree[T]) Foreach(action func(idx int64, color RBColor, val T) bool) {
	size := tree.count
	aux := tree.root
	if size <= 0 || aux == nil || action == nil {
		return
	}

	stack := make([]*rbNode[T], 0, size>>1+1)
	defer func() {
		clear(stack)
	}()

	for ; aux != nil; aux = aux.left {
		stack = append(stack, aux)
	}

	idx := int64(0)
	for size = int64(len(stack)); size > 0; size = int64(len(stack)) {
		if aux = stack[size-1]; !action(idx, aux.color, aux.val) {
			return
		}
		idx++
		stack = stack[:size-1]
		for aux = aux.right; aux != nil; aux = aux.left {
			stack = append(stack, aux)
		}
	}
}
