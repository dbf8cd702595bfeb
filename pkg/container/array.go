package container

import "github.com/perfwave/phoenix-go/pkg/combiner"

type arrayWriteView[V any] struct {
	cells []combiner.Combiner[V]
}

func (v *arrayWriteView[V]) Emit(key int, value V) {
	v.cells[key].Add(value)
}

// Array is storage for a fixed cardinality of N integer keys: every lane
// owns a private N-cell array of combiners during the map phase, and
// Add transfers that lane's column into a shared N x mapLanes grid.
// Ported from container.h's array_container.
type Array[V any] struct {
	n                     int
	factory               Factory[V]
	mapLanes, reduceParts int
	grid                  []combiner.Combiner[V] // row-major: grid[key*mapLanes+lane]
}

// NewArray builds an Array container with n integer keys in [0, n).
func NewArray[V any](n int, factory Factory[V]) *Array[V] {
	return &Array[V]{n: n, factory: factory}
}

func (a *Array[V]) Init(mapLanes, reduceParts int) {
	a.mapLanes = mapLanes
	a.reduceParts = reduceParts
	a.grid = make([]combiner.Combiner[V], a.n*mapLanes)
}

func (a *Array[V]) Get(lane int) WriteView[int, V] {
	cells := make([]combiner.Combiner[V], a.n)
	for i := range cells {
		cells[i] = a.factory()
	}
	return &arrayWriteView[V]{cells: cells}
}

func (a *Array[V]) Add(lane int, view WriteView[int, V]) {
	wv := view.(*arrayWriteView[V])
	for key := 0; key < a.n; key++ {
		a.grid[key*a.mapLanes+lane] = wv.cells[key]
	}
}

// Begin returns partition's iterator, which walks keys
// partition, partition+mapLanes, partition+2*mapLanes, ... exactly as
// array_container::iterator::next strides by in_size.
func (a *Array[V]) Begin(partition int) ReadIterator[int, V] {
	return &arrayIterator[V]{array: a, i: partition}
}

type arrayIterator[V any] struct {
	array *Array[V]
	i     int
}

func (it *arrayIterator[V]) Next(key *int, values *combiner.Combined[V]) bool {
	if it.i >= it.array.n {
		return false
	}
	merged := it.array.factory()
	for lane := 0; lane < it.array.mapLanes; lane++ {
		cell := it.array.grid[it.i*it.array.mapLanes+lane]
		if cell != nil && !cell.Empty() {
			merged.Combine(cell)
		}
	}
	*key = it.i
	*values = merged.Iterator()
	it.i += it.array.mapLanes
	return true
}

func (it *arrayIterator[V]) Close() {}
