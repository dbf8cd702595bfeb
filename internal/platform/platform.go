// Package platform adapts the runtime to the underlying machine: CPU
// count, thread affinity, and NUMA locality groups. Every query has a
// sensible single-locality-group default so the runtime degrades
// gracefully on platforms without NUMA facilities, the way the source's
// locality.h falls back to "no NUMA support" branches.
package platform

// Platform queries and manipulates processor topology.
type Platform interface {
	// CPUCount returns the number of logical CPUs available to the
	// process.
	CPUCount() int
	// BindCurrentThreadToCPU pins the calling OS thread to the given CPU.
	// The caller must have called runtime.LockOSThread first. Returns nil
	// on platforms where binding isn't supported; binding is an
	// optimization, not a correctness requirement.
	BindCurrentThreadToCPU(cpu int) error
	// LocalityGroupCount returns the number of NUMA locality groups, 1 if
	// the platform has none or locality information is unavailable.
	LocalityGroupCount() int
	// LocalityGroupOfCurrentThread returns the locality group the calling
	// thread is currently running in, or -1 if unknown.
	LocalityGroupOfCurrentThread() int
}

// Default returns the platform adapter for the running GOOS.
func Default() Platform {
	return newPlatform()
}
