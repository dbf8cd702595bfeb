//go:build linux

package platform

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

type linuxPlatform struct {
	lgrpCount int
}

func newPlatform() Platform {
	return &linuxPlatform{lgrpCount: -1}
}

func (p *linuxPlatform) CPUCount() int {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err == nil {
		return set.Count()
	}
	return runtime.NumCPU()
}

func (p *linuxPlatform) BindCurrentThreadToCPU(cpu int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	return unix.SchedSetaffinity(0, &set)
}

// LocalityGroupCount enumerates /sys/devices/system/node, the sysfs
// analogue of numa_max_node()+1 used when libnuma isn't linked in.
func (p *linuxPlatform) LocalityGroupCount() int {
	if p.lgrpCount > 0 {
		return p.lgrpCount
	}

	entries, err := os.ReadDir("/sys/devices/system/node")
	if err != nil {
		p.lgrpCount = 1
		return 1
	}

	count := 0
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "node") {
			if _, err := strconv.Atoi(strings.TrimPrefix(e.Name(), "node")); err == nil {
				count++
			}
		}
	}
	if count == 0 {
		count = 1
	}
	p.lgrpCount = count
	return count
}

// LocalityGroupOfCurrentThread assumes locality groups are adjacent and
// evenly sized, the same assumption the source's loc_get_lgrp makes on
// Linux: cpuid / (num_cpus / num_lgrps).
func (p *linuxPlatform) LocalityGroupOfCurrentThread() int {
	lgrps := p.LocalityGroupCount()
	if lgrps <= 1 {
		return 0
	}

	cpu, err := currentCPU()
	if err != nil {
		return -1
	}

	cpus := p.CPUCount()
	if cpus < lgrps {
		return 0
	}
	return cpu / (cpus / lgrps)
}

// currentCPU reads the "processor" field (39) of /proc/thread-self/stat,
// the portable-enough way to learn which CPU the calling thread last ran
// on without a direct getcpu(2) binding.
func currentCPU() (int, error) {
	data, err := os.ReadFile("/proc/thread-self/stat")
	if err != nil {
		return 0, err
	}

	// Fields after the command name (which may itself contain spaces and
	// is parenthesized) are space separated; processor is field 39 overall,
	// i.e. index 36 counting from the field after the closing paren.
	end := strings.LastIndexByte(string(data), ')')
	if end < 0 || end+2 >= len(data) {
		return 0, fmt.Errorf("unexpected /proc/thread-self/stat format")
	}
	fields := strings.Fields(string(data[end+2:]))
	const processorField = 36
	if len(fields) <= processorField {
		return 0, fmt.Errorf("unexpected /proc/thread-self/stat field count")
	}
	return strconv.Atoi(fields[processorField])
}
