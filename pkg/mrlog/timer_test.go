package mrlog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimer_PhaseDurations(t *testing.T) {
	clock := NewMockClock(time.Unix(0, 0))
	timer := NewTimer("run", WithClock(clock))

	mapPhase := timer.Start("map")
	clock.Advance(10 * time.Millisecond)
	mapPhase.Stop()

	reducePhase := timer.Start("reduce")
	clock.Advance(5 * time.Millisecond)
	reducePhase.Stop()

	assert.Equal(t, 10*time.Millisecond, timer.Duration("map"))
	assert.Equal(t, 5*time.Millisecond, timer.Duration("reduce"))
	assert.Equal(t, 15*time.Millisecond, timer.TotalDuration())
	require.Len(t, timer.Phases(), 2)
}

func TestTimer_StopIsIdempotent(t *testing.T) {
	clock := NewMockClock(time.Unix(0, 0))
	timer := NewTimer("run", WithClock(clock))

	pt := timer.Start("split")
	clock.Advance(time.Second)
	first := pt.Stop()
	clock.Advance(time.Second)
	second := pt.Stop()

	assert.Equal(t, first, second)
}

func TestTimer_Disabled(t *testing.T) {
	timer := NewTimer("run", WithEnabled(false))
	pt := timer.Start("map")
	pt.Stop()
	assert.Equal(t, time.Duration(0), timer.Duration("map"))
	assert.Empty(t, timer.Summary())
}
