package tree

import (
	"errors"

	"github.com/benz9527/xctl/lib/infra"
)

var (
	ErrMapKeyNotFound     = errors.New("[rbtree-map] key not found")
	ErrMapEmpty           = errors.New("[rbtree-map] there is no element")
	ErrMapReplaceDisabled = errors.New("[rbtree-map] value replace is disabled")
)

var insertReplaceDisabled = []bool{false}

type mapEntry[K infra.OrderedKey, V any] struct {
	key K
	val V
}

// rbMap stores key/value entries in the set core, ordered by key only.
type rbMap[K infra.OrderedKey, V any] struct {
	tree *rbTree[mapEntry[K, V]]
	desc bool
}

type OrderedMapOption[K infra.OrderedKey, V any] func(*rbMap[K, V])

func WithMapDesc[K infra.OrderedKey, V any]() OrderedMapOption[K, V] {
	return func(m *rbMap[K, V]) {
		m.desc = true
	}
}

func (m *rbMap[K, V]) Len() int64 {
	return m.tree.Len()
}

// Put replaces the value of an existing key in place, unless
// ifNotPresent is set.
func (m *rbMap[K, V]) Put(key K, val V, ifNotPresent ...bool) error {
	if len(ifNotPresent) <= 0 {
		ifNotPresent = insertReplaceDisabled
	}
	if node := m.tree.findNode(mapEntry[K, V]{key: key}); node != nil {
		if ifNotPresent[0] {
			return ErrMapReplaceDisabled
		}
		node.val.val = val
		return nil
	}
	m.tree.Insert(mapEntry[K, V]{key: key, val: val})
	return nil
}

func (m *rbMap[K, V]) Get(key K) (V, bool) {
	if node := m.tree.findNode(mapEntry[K, V]{key: key}); node != nil {
		return node.val.val, true
	}
	var zero V
	return zero, false
}

func (m *rbMap[K, V]) Contains(key K) bool {
	return m.tree.findNode(mapEntry[K, V]{key: key}) != nil
}

func (m *rbMap[K, V]) Remove(key K) (V, error) {
	var zero V
	if m.tree.Empty() {
		return zero, ErrMapEmpty
	}
	node := m.tree.findNode(mapEntry[K, V]{key: key})
	if node == nil {
		return zero, ErrMapKeyNotFound
	}
	val := node.val.val
	m.tree.eraseNode(node)
	return val, nil
}

// RemoveMin pops the first entry in the map's order.
func (m *rbMap[K, V]) RemoveMin() (K, V, error) {
	var (
		key K
		val V
	)
	node := m.tree.root.minimum()
	if node == nil {
		return key, val, ErrMapEmpty
	}
	key, val = node.val.key, node.val.val
	m.tree.eraseNode(node)
	return key, val, nil
}

func (m *rbMap[K, V]) Foreach(action func(idx int64, key K, val V) bool) {
	if action == nil {
		return
	}
	m.tree.Foreach(func(idx int64, _ RBColor, e mapEntry[K, V]) bool {
		return action(idx, e.key, e.val)
	})
}

func (m *rbMap[K, V]) Keys() []K {
	keys := make([]K, 0, m.tree.Len())
	for e := range m.tree.All() {
		keys = append(keys, e.key)
	}
	return keys
}

func (m *rbMap[K, V]) Release() {
	m.tree.Free()
}

func NewOrderedMap[K infra.OrderedKey, V any](opts ...OrderedMapOption[K, V]) OrderedMap[K, V] {
	m := &rbMap[K, V]{}
	for _, o := range opts {
		if o != nil {
			o(m)
		}
	}
	var cmp infra.Comparator[mapEntry[K, V]] = func(i, j mapEntry[K, V]) int64 {
		return infra.OrderedKeyComparator[K](i.key, j.key)
	}
	if m.desc {
		cmp = infra.ReverseComparator[mapEntry[K, V]](cmp)
	}
	m.tree = newRBTree[mapEntry[K, V]](cmp)
	return m
}
