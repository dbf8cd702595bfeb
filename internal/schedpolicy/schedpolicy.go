// Package schedpolicy maps worker lanes onto CPUs. The three policies
// port scheduler.h's thr_to_cpu variants; chip/core topology constants
// that header only had under Solaris fall back to strand-fill math here
// too, exactly as the header's #else branch does.
package schedpolicy

// Policy computes the CPU a lane should be pinned to.
type Policy interface {
	LaneToCPU(lane int) int
}

// Topology carries the machine facts a policy needs. CoresPerChip and
// StrandsPerCore are optional; zero means "topology unknown", which
// degrades core-fill and chip-fill to strand-fill behavior.
type Topology struct {
	CPUs           int
	Chips          int
	CoresPerChip   int
	StrandsPerCore int
	Offset         int
}

// StrandFill fills CPUs in round-robin lane order: (lane+offset) % cpus.
type StrandFill struct {
	topo Topology
}

func NewStrandFill(topo Topology) StrandFill { return StrandFill{topo: topo} }

func (p StrandFill) LaneToCPU(lane int) int {
	if p.topo.CPUs <= 0 {
		return 0
	}
	return (lane + p.topo.Offset) % p.topo.CPUs
}

// CoreFill packs lanes onto distinct cores before filling sibling strands,
// ported from sched_policy_core_fill::thr_to_cpu.
type CoreFill struct {
	topo Topology
}

func NewCoreFill(topo Topology) CoreFill { return CoreFill{topo: topo} }

func (p CoreFill) LaneToCPU(lane int) int {
	if p.topo.CoresPerChip <= 0 || p.topo.StrandsPerCore <= 0 || p.topo.CPUs <= 0 {
		return StrandFill{topo: p.topo}.LaneToCPU(lane)
	}

	thr := (lane + p.topo.Offset) % p.topo.CPUs
	coresTotal := p.topo.CoresPerChip * max(p.topo.Chips, 1)
	core := thr % coresTotal
	strand := (thr / coresTotal) % p.topo.StrandsPerCore
	return core*p.topo.StrandsPerCore + strand
}

// ChipFill spreads lanes across chips before packing cores within a chip,
// ported from sched_policy_chip_fill::thr_to_cpu.
type ChipFill struct {
	topo Topology
}

func NewChipFill(topo Topology) ChipFill { return ChipFill{topo: topo} }

func (p ChipFill) LaneToCPU(lane int) int {
	if p.topo.CoresPerChip <= 0 || p.topo.StrandsPerCore <= 0 || p.topo.Chips <= 0 || p.topo.CPUs <= 0 {
		return StrandFill{topo: p.topo}.LaneToCPU(lane)
	}

	thr := (lane + p.topo.Offset) % p.topo.CPUs
	chip := thr % p.topo.Chips
	core := (thr / p.topo.Chips) % p.topo.CoresPerChip
	strand := thr / (p.topo.CoresPerChip * p.topo.StrandsPerCore)
	strand %= p.topo.StrandsPerCore

	return chip*(p.topo.CoresPerChip*p.topo.StrandsPerCore) + core*p.topo.StrandsPerCore + strand
}

// New builds the named policy ("strand-fill", "core-fill", "chip-fill")
// over the given topology, defaulting unknown names to strand-fill.
func New(name string, topo Topology) Policy {
	switch name {
	case "core-fill":
		return NewCoreFill(topo)
	case "chip-fill":
		return NewChipFill(topo)
	default:
		return NewStrandFill(topo)
	}
}
