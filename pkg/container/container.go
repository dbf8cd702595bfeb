// Package container implements the four storage strategies a reduce
// partition reads from, ported from container.h's hash_container,
// array_container, common_array_container, and fixed_hash_container.
//
// Every container is written by M map lanes and read by R reduce
// partitions. Get(lane) hands the map phase a lane-private WriteView;
// Add(lane, view) commits that view into the shared structure once the
// lane's map task finishes; Begin(partition) returns the merged,
// lazily-iterated view a reduce task drains.
package container

import "github.com/perfwave/phoenix-go/pkg/combiner"

// Factory builds a fresh, empty combiner for one key's accumulation.
type Factory[V any] func() combiner.Combiner[V]

// WriteView is the lane-private handle a map task emits key/value pairs
// into, ported from container.h's per-container "input_type".
type WriteView[K comparable, V any] interface {
	Emit(key K, value V)
}

// ReadIterator is the lazy, single-pass view a reduce task drains,
// ported from each container's nested "iterator" class. Close releases
// any resources the iterator is the sole owner of (FixedHash's bucket
// chains); containers whose storage outlives the iterator implement it
// as a no-op.
type ReadIterator[K comparable, V any] interface {
	Next(key *K, values *combiner.Combined[V]) bool
	Close()
}

// Container is the common shape every storage strategy below satisfies.
type Container[K comparable, V any] interface {
	// Init sizes the container for mapLanes producers and
	// reducePartitions consumers.
	Init(mapLanes, reducePartitions int)
	// Get returns lane's private write handle for the current map round.
	Get(lane int) WriteView[K, V]
	// Add commits lane's view into the shared structure.
	Add(lane int, view WriteView[K, V])
	// Begin returns partition's merged read iterator.
	Begin(partition int) ReadIterator[K, V]
}
