package tree

import (
	"go.uber.org/multierr"

	"github.com/benz9527/xctl/lib/infra"
)

func blackDepthTo[T any](target, to *rbNode[T]) int {
	depth := 0
	for aux := target; aux != to; aux = aux.parent {
		if aux.isBlack() {
			depth++
		}
	}
	return depth
}

// rbtree rule validation utilities. They are the testing oracle and are
// never called by the container operations, unless the package is built
// with the xctl_rbdebug tag.

// References:
// https://github1s.com/minghu6/rust-minghu6/blob/master/coll_st/src/bst/rb.rs

// RedViolationValidate walks in order and reports a red node with a red
// parent or child.
func RedViolationValidate[T any](set OrderedSet[T]) error {
	tree := implOf(set)
	if tree == nil || tree.root == nil {
		return nil
	}
	aux := tree.root

	stack := make([]*rbNode[T], 0, tree.count>>1+1)
	defer func() {
		clear(stack)
	}()

	for ; aux != nil; aux = aux.left {
		stack = append(stack, aux)
	}

	for size := len(stack); size > 0; size = len(stack) {
		if aux = stack[size-1]; aux.isRed() {
			if aux.parent.isRed() || aux.left.isRed() || aux.right.isRed() {
				return infra.NewErrorStack("rbtree red violation")
			}
		}

		stack = stack[:size-1]
		for aux = aux.right; aux != nil; aux = aux.left {
			stack = append(stack, aux)
		}
	}
	return nil
}

// BFS traversal to load all nodes hanging a nil leaf.
func bfsLeaves[T any](tree *rbTree[T]) []*rbNode[T] {
	aux := tree.root
	if aux == nil {
		return nil
	}

	leaves := make([]*rbNode[T], 0, tree.count>>1+1)
	queue := make([]*rbNode[T], 0, tree.count>>1+1)
	defer func() {
		clear(queue)
	}()
	queue = append(queue, aux)

	for len(queue) > 0 {
		aux = queue[0]
		l, r := aux.left, aux.right
		if /* nil leaves, keep one */ l == nil || r == nil {
			leaves = append(leaves, aux)
		}
		if l != nil {
			queue = append(queue, l)
		}
		if r != nil {
			queue = append(queue, r)
		}
		queue = queue[1:]
	}
	return leaves
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).

	        [13]
			/  \
		 <8>    [15]
		 / \    /  \
	  [6] [11] [14] [17]
	  /              /
	<1>            [16]

2-3-4 tree like:

	       <8> --- [13] --- <15>
		  /  \             /    \
		 /    \           /      \
	  <1>-[6][11]      [14] <16>-[17]

Each leaf node to root node black depth are equal.
*/
func BlackViolationValidate[T any](set OrderedSet[T]) error {
	tree := implOf(set)
	if tree == nil {
		return nil
	}
	leaves := bfsLeaves[T](tree)
	if leaves == nil {
		return nil
	}

	blackDepth := blackDepthTo[T](leaves[0], nil)
	for i := 1; i < len(leaves); i++ {
		if depth := blackDepthTo[T](leaves[i], nil); depth != blackDepth {
			return infra.NewErrorStackf("rbtree black violation, black depth %d != %d", depth, blackDepth)
		}
	}
	return nil
}

// Verify checks every red-black property together with the parent
// links, the size and the in-order ordering. All violations are
// combined into the returned error.
func Verify[T any](set OrderedSet[T]) error {
	tree := implOf(set)
	if tree == nil {
		return nil
	}
	return tree.verify()
}

func (tree *rbTree[T]) verify() error {
	var merr error
	if tree.root == nil {
		if tree.count != 0 {
			merr = multierr.Append(merr, infra.NewErrorStackf("rbtree empty root with size %d", tree.count))
		}
		return merr
	}

	if /* p2 */ tree.root.color != Black {
		merr = multierr.Append(merr, infra.NewErrorStack("rbtree root is not black"))
	}
	if tree.root.parent != nil {
		merr = multierr.Append(merr, infra.NewErrorStack("rbtree root has a parent"))
	}

	// Walk at most count+1 nodes, a corrupted graph may contain cycles.
	var (
		reached int64
		prev    *rbNode[T]
	)
	for node := tree.root.minimum(); node != nil; node = node.succ() {
		if reached++; reached > tree.count {
			merr = multierr.Append(merr, infra.NewErrorStackf("rbtree reaches more nodes than size %d", tree.count))
			break
		}
		if /* p1 */ node.color != Black && node.color != Red {
			merr = multierr.Append(merr, infra.NewErrorStackf("rbtree invalid color %d", node.color))
		}
		if (node.left != nil && node.left.parent != node) || (node.right != nil && node.right.parent != node) {
			merr = multierr.Append(merr, infra.NewErrorStack("rbtree broken parent link"))
		}
		if prev != nil {
			if res := tree.cmp(prev.val, node.val); res > 0 {
				merr = multierr.Append(merr, infra.NewErrorStack("rbtree in-order sequence is not sorted"))
			} else if res == 0 && (tree.equal == nil || tree.equal(prev.val, node.val)) {
				merr = multierr.Append(merr, infra.NewErrorStack("rbtree holds duplicated values"))
			}
		}
		prev = node
	}
	if reached != tree.count && reached <= tree.count {
		merr = multierr.Append(merr, infra.NewErrorStackf("rbtree reaches %d nodes, size %d", reached, tree.count))
	}
	if merr != nil {
		// Shape checks below assume a sane graph.
		return merr
	}

	/* p4 */
	merr = multierr.Append(merr, RedViolationValidate[T](tree))
	/* p5 */
	merr = multierr.Append(merr, BlackViolationValidate[T](tree))
	return merr
}
