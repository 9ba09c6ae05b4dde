package tree

// References:
// https://elixir.bootlin.com/linux/latest/source/lib/rbtree.c
// rbtree properties:
// https://en.wikipedia.org/wiki/Red%E2%80%93black_tree#Properties
// p1. Every node is either red or black.
// p2. The root is black.
// p3. All NIL nodes are considered black.
// p4. A red node does not have a red child. (red-violation)
// p5. Every path from a given node to any of its descendant
//   NIL nodes goes through the same number of black nodes. (black-violation)
// (Conclusion) If a node X has exactly one child, it must be a red child,
//   because if it were black, its NIL descendants would sit at a different
//   black depth than X's NIL child, violating p5.
// The longest path nodes' number is 2 * shortest path nodes' number.

func (tree *rbTree[T]) Insert(val T) (RBNode[T], bool) {
	if tree.equal != nil {
		if x := tree.findNode(val); x != nil {
			tree.destroyVal(val)
			return x, false
		}
	}

	var (
		x, y *rbNode[T] = tree.root, nil
		res  int64
	)
	for x != nil {
		y = x
		res = tree.cmp(val, x.val)
		if /* equal */ res == 0 && tree.equal == nil {
			tree.destroyVal(val)
			return x, false
		} else /* less */ if res < 0 {
			x = x.left
		} else /* greater, or tied but distinct */ {
			x = x.right
		}
	}

	z := &rbNode[T]{
		val:    val,
		color:  Red,
		parent: y,
	}
	if y == nil {
		tree.root = z
	} else if res < 0 {
		y.left = z
	} else {
		y.right = z
	}

	tree.count++
	tree.insertRebalance(z)
	tree.stats.RecordInsert()
	tree.debugVerify()
	return z, true
}

/*
New node X is red by default.

<X> is a RED node.
[X] is a BLACK node (or NIL).

i1: X has no parent, it is the root. Repaint it into black.

i2: X's parent P is black. Nothing is violated.

i3: Both the parent P and the uncle U are red, grandpa G is black.
(red-violation)
After G is repainted into red it may be red-violation again.
Loop to fix grandpa.

	    [G]             <G>
	    / \             / \
	  <P> <U>  ====>  [P] [U]
	  /               /
	<X>             <X>

i4: P is red but U is black, X is an inner grandchild. (red-violation)
Rotate P to the opposite direction of X, then X and P are aligned.
Here must enter i5 to fix.

	  [G]                 [G]
	  / \    rotate(P)    / \
	<P> [U]  ========>  <X> [U]
	  \                 /
	  <X>             <P>

i5: X is an outer grandchild, the same direction as P.

	    [G]                 <P>               [P]
	    / \    rotate(G)    / \    repaint    / \
	  <P> [U]  ========>  <X> [G]  ======>  <X> <G>
	  /                         \                 \
	<X>                         [U]               [U]
*/
func (tree *rbTree[T]) insertRebalance(x *rbNode[T]) {
	for {
		if /* i1 */ x.isRoot() {
			tree.fixupCase(insertFixup, 1)
			x.color = Black
			return
		}

		if /* i2 */ x.parent.isBlack() {
			tree.fixupCase(insertFixup, 2)
			return
		}

		// A red parent is never the root, so grandpa exists.
		gp := x.grandpa()
		if u := x.uncle(); /* i3 */ u.isRed() {
			tree.fixupCase(insertFixup, 3)
			x.parent.color = Black
			u.color = Black
			gp.color = Red
			x = gp
			continue
		}

		p := x.parent
		if dir := x.Direction(); /* i4 */ dir != p.Direction() {
			tree.fixupCase(insertFixup, 4)
			switch dir {
			case Left:
				tree.rightRotate(p)
			case Right:
				tree.leftRotate(p)
			default:
				// impossible run to here
				panic( /* debug assertion */ "[rbtree] insert violate (i4)")
			}
			x = p
		}

		/* i5 */
		tree.fixupCase(insertFixup, 5)
		x.parent.color = Black
		gp.color = Red
		switch x.Direction() {
		case Left:
			tree.rightRotate(gp)
		case Right:
			tree.leftRotate(gp)
		default:
			// impossible run to here
			panic( /* debug assertion */ "[rbtree] insert violate (i5)")
		}
		return
	}
}
