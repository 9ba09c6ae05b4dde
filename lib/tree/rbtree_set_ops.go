package tree

// Set algebra is composed from traversal, copy, insert and erase only.
// The result is bound to the receiver's comparator and hooks, and every
// element crossing into it goes through the receiver's copy hook.
// Both operands are expected to share the same ordering.
// All of them run in O((|A|+|B|) log(|A|+|B|)).

func implOf[T any](set OrderedSet[T]) *rbTree[T] {
	if set == nil {
		return nil
	}
	return set.impl()
}

func (tree *rbTree[T]) insertCopies(src *rbTree[T]) {
	if src == nil {
		return
	}
	for node := src.root.minimum(); node != nil; node = node.succ() {
		tree.Insert(tree.copyVal(node.val))
	}
}

func (tree *rbTree[T]) union(that *rbTree[T]) *rbTree[T] {
	res := tree.emptyClone()
	res.insertCopies(tree)
	// Duplicates are absorbed by the upsert rule of Insert.
	res.insertCopies(that)
	return res
}

func (tree *rbTree[T]) intersection(that *rbTree[T]) *rbTree[T] {
	res := tree.emptyClone()
	if that == nil {
		return res
	}
	for node := tree.root.minimum(); node != nil; node = node.succ() {
		if that.findNode(node.val) != nil {
			res.Insert(res.copyVal(node.val))
		}
	}
	return res
}

func (tree *rbTree[T]) difference(that *rbTree[T]) *rbTree[T] {
	res := tree.copyTree()
	if that == nil {
		return res
	}
	for node := that.root.minimum(); node != nil; node = node.succ() {
		res.Erase(node.val)
	}
	return res
}

func (tree *rbTree[T]) symmetricDifference(that *rbTree[T]) *rbTree[T] {
	res := tree.union(that)
	common := tree.intersection(that)
	for node := common.root.minimum(); node != nil; node = node.succ() {
		res.Erase(node.val)
	}
	common.Free()
	return res
}

func (tree *rbTree[T]) Union(that OrderedSet[T]) OrderedSet[T] {
	return tree.union(implOf(that))
}

func (tree *rbTree[T]) Intersection(that OrderedSet[T]) OrderedSet[T] {
	return tree.intersection(implOf(that))
}

func (tree *rbTree[T]) Difference(that OrderedSet[T]) OrderedSet[T] {
	return tree.difference(implOf(that))
}

func (tree *rbTree[T]) SymmetricDifference(that OrderedSet[T]) OrderedSet[T] {
	return tree.symmetricDifference(implOf(that))
}

func Union[T any](a, b OrderedSet[T]) OrderedSet[T] {
	return a.Union(b)
}

func Intersection[T any](a, b OrderedSet[T]) OrderedSet[T] {
	return a.Intersection(b)
}

func Difference[T any](a, b OrderedSet[T]) OrderedSet[T] {
	return a.Difference(b)
}

func SymmetricDifference[T any](a, b OrderedSet[T]) OrderedSet[T] {
	return a.SymmetricDifference(b)
}
