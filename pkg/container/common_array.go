package container

import "github.com/perfwave/phoenix-go/pkg/combiner"

type commonArrayWriteView[V any] struct {
	cells []combiner.Combiner[V]
}

func (v *commonArrayWriteView[V]) Emit(key int, value V) {
	v.cells[key].Add(value)
}

// CommonArray is unlocked storage shared by every lane: Get hands out
// the same N-cell array to every caller with no per-lane copy, so it is
// correct only when the caller's map function guarantees disjoint
// writers per key (e.g. matrix-multiply assigning one output row per
// task). Ported from container.h's common_array_container.
type CommonArray[V any] struct {
	n           int
	factory     Factory[V]
	mapLanes    int
	reduceParts int
	cells       []combiner.Combiner[V]
}

// NewCommonArray builds a CommonArray container with n integer keys.
func NewCommonArray[V any](n int, factory Factory[V]) *CommonArray[V] {
	return &CommonArray[V]{n: n, factory: factory}
}

func (c *CommonArray[V]) Init(mapLanes, reduceParts int) {
	c.mapLanes = mapLanes
	c.reduceParts = reduceParts
	c.cells = make([]combiner.Combiner[V], c.n)
	for i := range c.cells {
		c.cells[i] = c.factory()
	}
}

func (c *CommonArray[V]) Get(lane int) WriteView[int, V] {
	return &commonArrayWriteView[V]{cells: c.cells}
}

// Add is a no-op: every lane already wrote directly into the shared
// cells via the handle Get returned, mirroring common_array_container's
// empty add().
func (c *CommonArray[V]) Add(lane int, view WriteView[int, V]) {}

func (c *CommonArray[V]) Begin(partition int) ReadIterator[int, V] {
	return &commonArrayIterator[V]{container: c, i: partition}
}

type commonArrayIterator[V any] struct {
	container *CommonArray[V]
	i         int
}

func (it *commonArrayIterator[V]) Next(key *int, values *combiner.Combined[V]) bool {
	if it.i >= it.container.n {
		return false
	}
	*key = it.i
	*values = it.container.cells[it.i].Iterator()
	it.i += it.container.reduceParts
	return true
}

func (it *commonArrayIterator[V]) Close() {}
