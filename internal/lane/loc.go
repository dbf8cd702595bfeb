// Package lane defines the per-worker locality and randomness context
// passed down through every round function, porting the source's
// thread_loc struct (thread_pool.h, task_queue.h).
package lane

import "math/rand/v2"

// Loc describes where a worker lane is running and carries its private
// RNG, used by the task queue's lock-free steal-target fallback.
type Loc struct {
	// Thread is the lane index, stable for the lifetime of the pool.
	Thread int
	// CPU is the OS CPU the lane is pinned to, -1 if unknown or unpinned.
	CPU int
	// LGrp is the NUMA locality group the lane observed itself running in
	// after binding, -1 if unavailable.
	LGrp int
	// Rand is a per-lane random source, seeded once at pool construction
	// so it can be read without locking or contending with other lanes.
	Rand *rand.Rand
}
