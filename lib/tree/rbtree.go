package tree

import (
	"github.com/benz9527/xctl/lib/infra"
)

// rbNode owns its left and right subtrees. The parent link is only a
// back-reference for traversal and rebalancing.
type rbNode[T any] struct {
	parent *rbNode[T]
	left   *rbNode[T]
	right  *rbNode[T]
	val    T
	color  RBColor
}

func (node *rbNode[T]) Val() T {
	return node.val
}

func (node *rbNode[T]) Color() RBColor {
	return node.color
}

func (node *rbNode[T]) Left() RBNode[T] {
	if node == nil || node.left == nil {
		return nil
	}
	return node.left
}

func (node *rbNode[T]) Right() RBNode[T] {
	if node == nil || node.right == nil {
		return nil
	}
	return node.right
}

func (node *rbNode[T]) Parent() RBNode[T] {
	if node == nil || node.parent == nil {
		return nil
	}
	return node.parent
}

// Nil leaves are black.
func (node *rbNode[T]) isBlack() bool {
	return node == nil || node.color == Black
}

func (node *rbNode[T]) isRed() bool {
	return node != nil && node.color == Red
}

func (node *rbNode[T]) isRoot() bool {
	return node != nil && node.parent == nil
}

func (node *rbNode[T]) Direction() RBDirection {
	if node == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] nil leaf node without direction")
	}

	if node.isRoot() {
		return Root
	}
	if node == node.parent.left {
		return Left
	}
	return Right
}

func (node *rbNode[T]) sibling() *rbNode[T] {
	switch node.Direction() {
	case Left:
		return node.parent.right
	case Right:
		return node.parent.left
	default:
	}
	return nil
}

func (node *rbNode[T]) uncle() *rbNode[T] {
	return node.parent.sibling()
}

func (node *rbNode[T]) grandpa() *rbNode[T] {
	return node.parent.parent
}

func (node *rbNode[T]) fixLink() {
	if node.left != nil {
		node.left.parent = node
	}
	if node.right != nil {
		node.right.parent = node
	}
}

func (node *rbNode[T]) minimum() *rbNode[T] {
	aux := node
	for ; aux != nil && aux.left != nil; aux = aux.left {
	}
	return aux
}

func (node *rbNode[T]) maximum() *rbNode[T] {
	aux := node
	for ; aux != nil && aux.right != nil; aux = aux.right {
	}
	return aux
}

// The pred node of the current node is its previous node in sorted order.
func (node *rbNode[T]) pred() *rbNode[T] {
	x := node
	if x == nil {
		return nil
	}
	if x.left != nil {
		return x.left.maximum()
	}

	aux := x.parent
	// Backtrack to the first ancestor that x hangs off on the right.
	for aux != nil && x == aux.left {
		x = aux
		aux = aux.parent
	}
	return aux
}

// The succ node of the current node is its next node in sorted order.
func (node *rbNode[T]) succ() *rbNode[T] {
	x := node
	if x == nil {
		return nil
	}
	if x.right != nil {
		return x.right.minimum()
	}

	aux := x.parent
	// Backtrack to the first ancestor that x hangs off on the left.
	for aux != nil && x == aux.right {
		x = aux
		aux = aux.parent
	}
	return aux
}

type rbTree[T any] struct {
	root     *rbNode[T]
	count    int64
	cmp      infra.Comparator[T]
	equal    func(i, j T) bool
	copy     func(val T) T
	destroy  func(val T)
	stats    *rbTreeStats
	caseHook func(op fixupOp, c int)
	owner    *rbOwner[T]
}

// rbOwner moves with the nodes on Swap, so an iterator always resolves
// to the set that currently holds its node.
type rbOwner[T any] struct {
	tree *rbTree[T]
}

func (tree *rbTree[T]) ownerRef() *rbOwner[T] {
	if tree.owner == nil {
		tree.owner = &rbOwner[T]{tree: tree}
	}
	return tree.owner
}

func (tree *rbTree[T]) impl() *rbTree[T] {
	return tree
}

func (tree *rbTree[T]) Len() int64 {
	return tree.count
}

func (tree *rbTree[T]) Empty() bool {
	return tree.count == 0
}

func (tree *rbTree[T]) Root() RBNode[T] {
	if tree.root == nil {
		return nil
	}
	return tree.root
}

func (tree *rbTree[T]) copyVal(val T) T {
	if tree.copy == nil {
		return val
	}
	return tree.copy(val)
}

func (tree *rbTree[T]) destroyVal(val T) {
	if tree.destroy != nil {
		tree.destroy(val)
	}
}

func (tree *rbTree[T]) fixupCase(op fixupOp, c int) {
	tree.stats.RecordFixupCase(op, c)
	if tree.caseHook != nil {
		tree.caseHook(op, c)
	}
}

// emptyClone returns an empty tree bound to the same ordering and hooks.
// Stats are not carried over.
func (tree *rbTree[T]) emptyClone() *rbTree[T] {
	return &rbTree[T]{
		cmp:     tree.cmp,
		equal:   tree.equal,
		copy:    tree.copy,
		destroy: tree.destroy,
	}
}

// replace hangs b where a was. a keeps its own links.
func (tree *rbTree[T]) replace(a, b *rbNode[T]) {
	switch a.Direction() {
	case Root:
		tree.root = b
	case Left:
		a.parent.left = b
	case Right:
		a.parent.right = b
	default:
	}
	if b != nil {
		b.parent = a.parent
	}
}

/*
		 |                         |
		 X                         S
		/ \     leftRotate(X)     / \
	   L   S    ============>    X   Sd
		  / \                   / \
		Sc   Sd                L   Sc
*/
func (tree *rbTree[T]) leftRotate(x *rbNode[T]) {
	if x == nil || x.right == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] left rotate node x is nil or x.right is nil")
	}

	y := x.right
	tree.replace(x, y)
	x.right, y.left = y.left, x
	x.fixLink()
	y.fixLink()
	tree.stats.RecordRotate(Left)
}

/*
			 |                         |
			 X                         S
			/ \     rightRotate(S)    / \
	       L   S    <============    X   R
			  / \                   / \
			Sc   Sd               Sc   Sd
*/
func (tree *rbTree[T]) rightRotate(x *rbNode[T]) {
	if x == nil || x.left == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] right rotate node x is nil or x.left is nil")
	}

	y := x.left
	tree.replace(x, y)
	x.left, y.right = y.right, x
	x.fixLink()
	y.fixLink()
	tree.stats.RecordRotate(Right)
}

// findNode walks down by cmp. Without an equal predicate the first tie
// is the match. With one, tied values form a contiguous in-order run,
// so the run is scanned from its first member.
// It costs O(log n + k), where k is the number of values tied with val.
func (tree *rbTree[T]) findNode(val T) *rbNode[T] {
	for aux := tree.root; aux != nil; {
		res := tree.cmp(val, aux.val)
		if /* equal */ res == 0 {
			if tree.equal == nil {
				return aux
			}
			return tree.findEqual(val, tree.lowerBoundNode(val))
		} else /* less */ if res < 0 {
			aux = aux.left
		} else /* greater */ {
			aux = aux.right
		}
	}
	return nil
}

func (tree *rbTree[T]) findEqual(val T, from *rbNode[T]) *rbNode[T] {
	for aux := from; aux != nil && tree.cmp(val, aux.val) == 0; aux = aux.succ() {
		if tree.equal(val, aux.val) {
			return aux
		}
	}
	return nil
}

// lowerBoundNode returns the first node not less than val.
func (tree *rbTree[T]) lowerBoundNode(val T) *rbNode[T] {
	var res *rbNode[T]
	for aux := tree.root; aux != nil; {
		if tree.cmp(val, aux.val) <= 0 {
			res = aux
			aux = aux.left
		} else {
			aux = aux.right
		}
	}
	return res
}

// upperBoundNode returns the first node greater than val.
func (tree *rbTree[T]) upperBoundNode(val T) *rbNode[T] {
	var res *rbNode[T]
	for aux := tree.root; aux != nil; {
		if tree.cmp(val, aux.val) < 0 {
			res = aux
			aux = aux.left
		} else {
			aux = aux.right
		}
	}
	return res
}

func (tree *rbTree[T]) Find(val T) Iterator[T] {
	return newIterator(tree, tree.findNode(val))
}

func (tree *rbTree[T]) Count(val T) int {
	if tree.findNode(val) != nil {
		return 1
	}
	return 0
}

func (tree *rbTree[T]) Contains(val T) bool {
	return tree.Count(val) == 1
}

func (tree *rbTree[T]) LowerBound(val T) Iterator[T] {
	return newIterator(tree, tree.lowerBoundNode(val))
}

func (tree *rbTree[T]) UpperBound(val T) Iterator[T] {
	return newIterator(tree, tree.upperBoundNode(val))
}

// cloneNode deep copies a subtree keeping its shape and colors.
func (tree *rbTree[T]) cloneNode(src, parent *rbNode[T]) *rbNode[T] {
	if src == nil {
		return nil
	}
	dst := &rbNode[T]{
		parent: parent,
		color:  src.color,
		val:    tree.copyVal(src.val),
	}
	dst.left = tree.cloneNode(src.left, dst)
	dst.right = tree.cloneNode(src.right, dst)
	return dst
}

func (tree *rbTree[T]) copyTree() *rbTree[T] {
	dst := tree.emptyClone()
	dst.root = tree.cloneNode(tree.root, nil)
	dst.count = tree.count
	return dst
}

func (tree *rbTree[T]) Copy() OrderedSet[T] {
	return tree.copyTree()
}

// Swap exchanges the whole state of two sets, hooks included. Iterators
// follow their nodes into the other set.
func (tree *rbTree[T]) Swap(that OrderedSet[T]) {
	if that == nil {
		return
	}
	other := that.impl()
	if other == nil || other == tree {
		return
	}
	*tree, *other = *other, *tree
	if tree.owner != nil {
		tree.owner.tree = tree
	}
	if other.owner != nil {
		other.owner.tree = other
	}
}

// eraseFast frees a subtree without rebalancing. Only for teardown.
func (tree *rbTree[T]) eraseFast(root *rbNode[T]) int64 {
	if root == nil {
		return 0
	}
	var (
		zero  T
		freed int64
	)
	stack := make([]*rbNode[T], 0, 64)
	defer func() {
		clear(stack)
	}()
	stack = append(stack, root)
	for size := len(stack); size > 0; size = len(stack) {
		aux := stack[size-1]
		stack = stack[:size-1]
		if aux.left != nil {
			stack = append(stack, aux.left)
		}
		if aux.right != nil {
			stack = append(stack, aux.right)
		}
		tree.destroyVal(aux.val)
		aux.parent, aux.left, aux.right, aux.val = nil, nil, nil, zero
		freed++
	}
	return freed
}

// Clear destroys every value. The set stays usable.
func (tree *rbTree[T]) Clear() {
	root := tree.root
	tree.root = nil
	freed := tree.eraseFast(root)
	tree.count = 0
	tree.stats.RecordErase(freed)
}

// Free releases every node and detaches the stats. The set stays bound
// to its comparator and hooks.
func (tree *rbTree[T]) Free() {
	tree.Clear()
	tree.stats = nil
}

func (tree *rbTree[T]) debugVerify() {
	if !rbDebugVerify {
		return
	}
	if err := tree.verify(); err != nil {
		panic(err)
	}
}

func WithSetEqual[T any](equal func(i, j T) bool) OrderedSetOption[T] {
	return func(tree *rbTree[T]) {
		tree.equal = equal
	}
}

func WithSetCopy[T any](copy func(val T) T) OrderedSetOption[T] {
	return func(tree *rbTree[T]) {
		tree.copy = copy
	}
}

func WithSetDestroy[T any](destroy func(val T)) OrderedSetOption[T] {
	return func(tree *rbTree[T]) {
		tree.destroy = destroy
	}
}

func WithSetStats[T any](name string) OrderedSetOption[T] {
	return func(tree *rbTree[T]) {
		tree.stats = newRBTreeStats(name)
	}
}

func newRBTree[T any](cmp infra.Comparator[T], opts ...OrderedSetOption[T]) *rbTree[T] {
	if cmp == nil {
		panic( /* debug assertion */ "[rbtree] nil comparator")
	}
	tree := &rbTree[T]{
		cmp: cmp,
	}
	for _, o := range opts {
		if o != nil {
			o(tree)
		}
	}
	return tree
}

func NewOrderedSet[T any](cmp infra.Comparator[T], opts ...OrderedSetOption[T]) OrderedSet[T] {
	return newRBTree[T](cmp, opts...)
}

func NewOrderedKeySet[K infra.OrderedKey](opts ...OrderedSetOption[K]) OrderedSet[K] {
	return newRBTree[K](infra.OrderedKeyComparator[K], opts...)
}

// NewElementSet binds the hooks to the methods of T. Options given by
// the caller override them.
func NewElementSet[T Element[T]](opts ...OrderedSetOption[T]) OrderedSet[T] {
	base := make([]OrderedSetOption[T], 0, 3+len(opts))
	base = append(base,
		WithSetCopy[T](func(val T) T { return val.Clone() }),
		WithSetDestroy[T](func(val T) { val.Release() }),
	)
	var zero T
	if _, ok := any(zero).(equaler[T]); ok {
		base = append(base, WithSetEqual[T](func(i, j T) bool {
			return any(i).(equaler[T]).Equal(j)
		}))
	}
	base = append(base, opts...)
	return newRBTree[T](func(i, j T) int64 { return i.Compare(j) }, base...)
}
