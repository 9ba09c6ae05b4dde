package tree

/*
r1: Current node Z has left and right node.
Find Z's pred to replace it to be removed. Swap the value only, the
pred has no right child.

	  |                    |
	  Z                    L
	 / \                  / \
	L  ..   swap(Z, L)   Z  ..
		|   =========>       |
		P                    P
	   / \                  / \
	  S  ..                S  ..

r2: Current node Y is red, it holds at most a NIL child. Unlink directly.

r3: Current node Y is black with a child. The child must be red (See
conclusion). Repaint the child into black and hang it at Y's place.

r4: Current node Y is a black leaf. Rebalance while Y is still linked,
then unlink it. (black-violation)
*/
func (tree *rbTree[T]) eraseNode(z *rbNode[T]) {
	y := z
	if /* r1 */ z.left != nil && z.right != nil {
		y = z.left.maximum()
		z.val, y.val = y.val, z.val
	}

	child := y.left
	if child == nil {
		child = y.right
	}

	if y.isBlack() {
		if /* r3 */ child.isRed() {
			child.color = Black
		} else /* r4 */ {
			tree.eraseRebalance(y)
		}
	}
	tree.replace(y, child)

	var zero T
	val := y.val
	y.parent, y.left, y.right, y.val = nil, nil, nil, zero
	tree.count--
	tree.destroyVal(val)
	tree.stats.RecordErase(1)
	tree.debugVerify()
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).
{X} is either a RED node or a BLACK node.

Sc is the same direction to X and it is X's sibling's child node.
Sd is the opposite direction to X and it is X's sibling's child node.

e1: X is the root. Nothing to fix.

e2: X's sibling S is red, so P, Sc and Sd must be black.
Repaint P into red and S into black, rotate P toward X.
X gets a black sibling, continue.

	  [P]                   <S>               [S]
	  / \    l-rotate(P)    / \    repaint    / \
	[X] <S>  ==========>  [P] [Sd]  ======>  <P> [Sd]
	    / \               / \               / \
	 [Sc] [Sd]          [X] [Sc]          [X] [Sc]

e3: P, S, Sc and Sd are all black.
Paint S into red to hold p5 locally, the whole subtree of P is short of
one black now. Loop to fix P.

	  [P]             [P]
	  / \             / \
	[X] [S]  ====>  [X] <S>
	    / \             / \
	 [Sc] [Sd]       [Sc] [Sd]

e4: P is red, S, Sc and Sd are black.
Swap the colors of P and S.

	  <P>             [P]
	  / \             / \
	[X] [S]  ====>  [X] <S>
	    / \             / \
	 [Sc] [Sd]       [Sc] [Sd]

e5: S is black, Sc is red and Sd is black.
Rotate S away from X, repaint. Sd of the new S is red, enter e6.

	  {P}                   {P}                {P}
	  / \    r-rotate(S)    / \     repaint    / \
	[X] [S]  ==========>  [X] <Sc>  ======>  [X] [Sc]
	    / \                     \                  \
	  <Sc> [Sd]                 [S]                <S>
	                              \                  \
	                              [Sd]               [Sd]

e6: S is black and Sd is red.
Rotate P toward X, S takes P's color, P and Sd are painted into black.

	  {P}                   [S]                {S}
	  / \    l-rotate(P)    / \     repaint    / \
	[X] [S]  ==========>  {P} <Sd>  ======>  [P] [Sd]
	    / \               / \                / \
	 [Sc] <Sd>          [X] [Sc]           [X] [Sc]
*/
func (tree *rbTree[T]) eraseRebalance(x *rbNode[T]) {
	for {
		if /* e1 */ x.isRoot() {
			tree.fixupCase(eraseFixup, 1)
			return
		}

		p, s := x.parent, x.sibling()
		dir := x.Direction()
		if s == nil {
			// impossible run to here
			panic( /* debug assertion */ "[rbtree] double black node without sibling")
		}

		if /* e2 */ s.isRed() {
			tree.fixupCase(eraseFixup, 2)
			p.color = Red
			s.color = Black
			switch dir {
			case Left:
				tree.leftRotate(p)
			case Right:
				tree.rightRotate(p)
			default:
				// impossible run to here
				panic( /* debug assertion */ "[rbtree] erase violate (e2)")
			}
			s = x.sibling()
		}

		var sc, sd *rbNode[T]
		if dir == Left {
			sc, sd = s.left, s.right
		} else {
			sc, sd = s.right, s.left
		}

		if sc.isBlack() && sd.isBlack() {
			if /* e3 */ p.isBlack() {
				tree.fixupCase(eraseFixup, 3)
				s.color = Red
				x = p
				continue
			}
			/* e4 */
			tree.fixupCase(eraseFixup, 4)
			s.color = Red
			p.color = Black
			return
		}

		if /* e5 */ sd.isBlack() {
			tree.fixupCase(eraseFixup, 5)
			s.color = Red
			sc.color = Black
			if dir == Left {
				tree.rightRotate(s)
			} else {
				tree.leftRotate(s)
			}
			s = x.sibling()
			if dir == Left {
				sd = s.right
			} else {
				sd = s.left
			}
		}

		/* e6 */
		tree.fixupCase(eraseFixup, 6)
		s.color = p.color
		p.color = Black
		sd.color = Black
		if dir == Left {
			tree.leftRotate(p)
		} else {
			tree.rightRotate(p)
		}
		return
	}
}

func (tree *rbTree[T]) Erase(val T) bool {
	z := tree.findNode(val)
	if z == nil {
		return false
	}
	tree.eraseNode(z)
	return true
}

func (tree *rbTree[T]) EraseIter(it *Iterator[T]) bool {
	if it == nil || it.node == nil || it.set() != tree {
		return false
	}
	next := it.node.succ()
	tree.eraseNode(it.node)
	it.node = next
	return true
}

// EraseRange walks successor-first so the next position is taken
// before the current node is erased. first ends up at last.
func (tree *rbTree[T]) EraseRange(first, last *Iterator[T]) int64 {
	if first == nil || first.set() != tree || first.Done() {
		return 0
	}
	var stop *rbNode[T]
	if last != nil {
		stop = last.node
	}

	erased := int64(0)
	for node := first.node; node != nil && node != stop; {
		next := node.succ()
		tree.eraseNode(node)
		erased++
		node = next
	}
	first.node = stop
	return erased
}

func (tree *rbTree[T]) RemoveIf(match func(val T) bool) int64 {
	if match == nil {
		return 0
	}
	erased := int64(0)
	for node := tree.root.minimum(); node != nil; {
		next := node.succ()
		if match(node.val) {
			tree.eraseNode(node)
			erased++
		}
		node = next
	}
	return erased
}
