//go:build !linux

package platform

import "runtime"

// otherPlatform is the fallback used on platforms without NUMA facilities,
// mirroring the source's #else branches: one locality group, no affinity
// binding, CPU count from the runtime.
type otherPlatform struct{}

func newPlatform() Platform {
	return &otherPlatform{}
}

func (otherPlatform) CPUCount() int { return runtime.NumCPU() }

func (otherPlatform) BindCurrentThreadToCPU(int) error { return nil }

func (otherPlatform) LocalityGroupCount() int { return 1 }

func (otherPlatform) LocalityGroupOfCurrentThread() int { return -1 }
