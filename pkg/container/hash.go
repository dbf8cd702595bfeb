package container

import "github.com/perfwave/phoenix-go/pkg/combiner"

// HashFunc computes a 64-bit hash for a key, standing in for
// container.h's std::tr1::hash<K> template parameter.
type HashFunc[K comparable] func(key K) uint64

type hashEntry[K comparable, V any] struct {
	key K
	val combiner.Combiner[V]
}

// hashTable is an open-addressing table with linear probing and
// power-of-two capacity, resized at 50% load. Ported verbatim (as an
// algorithm) from container.h's hash_table::rehash and operator[].
type hashTable[K comparable, V any] struct {
	hash     HashFunc[K]
	factory  Factory[V]
	table    []hashEntry[K, V]
	occupied []bool
	size     uint64
	load     uint64
}

func newHashTable[K comparable, V any](hash HashFunc[K], factory Factory[V]) *hashTable[K, V] {
	t := &hashTable[K, V]{hash: hash, factory: factory}
	t.rehash(256)
	return t
}

func (t *hashTable[K, V]) rehash(newSize uint64) {
	newTable := make([]hashEntry[K, V], newSize)
	newOccupied := make([]bool, newSize)
	for i, occ := range t.occupied {
		if !occ {
			continue
		}
		idx := t.hash(t.table[i].key) & (newSize - 1)
		for newOccupied[idx] {
			idx = (idx + 1) & (newSize - 1)
		}
		newTable[idx] = t.table[i]
		newOccupied[idx] = true
	}
	t.table = newTable
	t.occupied = newOccupied
	t.size = newSize
}

// get returns the combiner for key, creating it (and rehashing at 50%
// load) if this is the first time key is seen by this table.
func (t *hashTable[K, V]) get(key K) combiner.Combiner[V] {
	idx := t.hash(key) & (t.size - 1)
	for t.occupied[idx] && t.table[idx].key != key {
		idx = (idx + 1) & (t.size - 1)
	}
	if t.occupied[idx] {
		return t.table[idx].val
	}

	t.load++
	if t.load >= t.size>>1 {
		t.rehash(t.size << 1)
		idx = t.hash(key) & (t.size - 1)
		for t.occupied[idx] && t.table[idx].key != key {
			idx = (idx + 1) & (t.size - 1)
		}
	}
	t.table[idx].key = key
	t.table[idx].val = t.factory()
	t.occupied[idx] = true
	return t.table[idx].val
}

func (t *hashTable[K, V]) entries(fn func(key K, val combiner.Combiner[V])) {
	for i, occ := range t.occupied {
		if occ {
			fn(t.table[i].key, t.table[i].val)
		}
	}
}

type hashWriteView[K comparable, V any] struct {
	table *hashTable[K, V]
}

func (v *hashWriteView[K, V]) Emit(key K, value V) {
	v.table.get(key).Add(value)
}

// Hash is storage for flexible-cardinality keys: each lane writes into
// its own open-addressing table, then commits scatter non-empty entries
// into an R x M grid keyed by hash(k) mod R, ported from container.h's
// hash_container.
type Hash[K comparable, V any] struct {
	hash                   HashFunc[K]
	factory                Factory[V]
	mapLanes, reduceParts  int
	grid                   [][]hashEntry[K, V]
}

// NewHash builds a Hash container. hash must be stable across the
// lifetime of the container; factory must return a fresh, empty
// combiner on every call.
func NewHash[K comparable, V any](hash HashFunc[K], factory Factory[V]) *Hash[K, V] {
	return &Hash[K, V]{hash: hash, factory: factory}
}

func (h *Hash[K, V]) Init(mapLanes, reduceParts int) {
	h.mapLanes = mapLanes
	h.reduceParts = reduceParts
	h.grid = make([][]hashEntry[K, V], mapLanes*reduceParts)
}

func (h *Hash[K, V]) Get(lane int) WriteView[K, V] {
	return &hashWriteView[K, V]{table: newHashTable[K, V](h.hash, h.factory)}
}

func (h *Hash[K, V]) Add(lane int, view WriteView[K, V]) {
	wv := view.(*hashWriteView[K, V])
	wv.table.entries(func(key K, val combiner.Combiner[V]) {
		if val.Empty() {
			return
		}
		idx := (h.hash(key)%uint64(h.reduceParts))*uint64(h.mapLanes) + uint64(lane)
		h.grid[idx] = append(h.grid[idx], hashEntry[K, V]{key: key, val: val})
	})
}

func (h *Hash[K, V]) Begin(partition int) ReadIterator[K, V] {
	merged := make(map[K]combiner.Combiner[V])
	var order []K
	for lane := 0; lane < h.mapLanes; lane++ {
		idx := partition*h.mapLanes + lane
		for _, entry := range h.grid[idx] {
			acc, ok := merged[entry.key]
			if !ok {
				acc = h.factory()
				merged[entry.key] = acc
				order = append(order, entry.key)
			}
			acc.Combine(entry.val)
		}
	}
	return &hashIterator[K, V]{merged: merged, order: order}
}

type hashIterator[K comparable, V any] struct {
	merged map[K]combiner.Combiner[V]
	order  []K
	pos    int
}

func (it *hashIterator[K, V]) Next(key *K, values *combiner.Combined[V]) bool {
	if it.pos >= len(it.order) {
		return false
	}
	k := it.order[it.pos]
	it.pos++
	*key = k
	*values = it.merged[k].Iterator()
	return true
}

func (it *hashIterator[K, V]) Close() {}
