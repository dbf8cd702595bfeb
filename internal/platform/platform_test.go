package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefault_CPUCountPositive(t *testing.T) {
	p := Default()
	assert.Positive(t, p.CPUCount())
}

func TestDefault_LocalityGroupCountAtLeastOne(t *testing.T) {
	p := Default()
	assert.GreaterOrEqual(t, p.LocalityGroupCount(), 1)
}

func TestDefault_BindCurrentThreadToCPUDoesNotPanic(t *testing.T) {
	p := Default()
	assert.NotPanics(t, func() {
		_ = p.BindCurrentThreadToCPU(0)
	})
}
