package schedpolicy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrandFill_WrapsAroundCPUCount(t *testing.T) {
	p := NewStrandFill(Topology{CPUs: 4})
	assert.Equal(t, 0, p.LaneToCPU(0))
	assert.Equal(t, 3, p.LaneToCPU(3))
	assert.Equal(t, 0, p.LaneToCPU(4))
	assert.Equal(t, 1, p.LaneToCPU(5))
}

func TestStrandFill_Offset(t *testing.T) {
	p := NewStrandFill(Topology{CPUs: 4, Offset: 2})
	assert.Equal(t, 2, p.LaneToCPU(0))
	assert.Equal(t, 0, p.LaneToCPU(2))
}

func TestCoreFill_FallsBackWithoutTopology(t *testing.T) {
	p := NewCoreFill(Topology{CPUs: 4})
	assert.Equal(t, 0, p.LaneToCPU(0))
	assert.Equal(t, 3, p.LaneToCPU(3))
}

func TestCoreFill_PacksCoresBeforeStrands(t *testing.T) {
	p := NewCoreFill(Topology{CPUs: 8, Chips: 1, CoresPerChip: 4, StrandsPerCore: 2})
	seen := make(map[int]bool)
	for lane := 0; lane < 8; lane++ {
		cpu := p.LaneToCPU(lane)
		assert.False(t, seen[cpu], "cpu %d assigned twice", cpu)
		seen[cpu] = true
	}
}

func TestChipFill_FallsBackWithoutTopology(t *testing.T) {
	p := NewChipFill(Topology{CPUs: 4})
	assert.Equal(t, 0, p.LaneToCPU(0))
}

func TestNew_SelectsByName(t *testing.T) {
	topo := Topology{CPUs: 4, Chips: 1, CoresPerChip: 2, StrandsPerCore: 2}
	assert.IsType(t, StrandFill{}, New("strand-fill", topo))
	assert.IsType(t, CoreFill{}, New("core-fill", topo))
	assert.IsType(t, ChipFill{}, New("chip-fill", topo))
	assert.IsType(t, StrandFill{}, New("unknown", topo))
}
