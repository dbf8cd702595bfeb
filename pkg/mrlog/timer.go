package mrlog

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Phase records one named interval of the driver's lifecycle: splitter,
// map, reduce, or merge, ported from the original measurement points
// around each run_* step.
type Phase struct {
	Name      string
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	completed bool
}

// PhaseTimer provides a fluent Start/Stop pairing for one phase.
type PhaseTimer struct {
	timer *Timer
	name  string
}

// Stop stops the phase and records its duration. Safe to call more than
// once; only the first call has effect.
func (pt *PhaseTimer) Stop() time.Duration {
	return pt.timer.StopPhase(pt.name)
}

// Timer records the wall-clock duration of each phase of a MapReduce run.
type Timer struct {
	mu         sync.RWMutex
	name       string
	startTime  time.Time
	phases     map[string]*Phase
	phaseOrder []string
	logger     Logger
	enabled    bool
	clock      Clock
}

// Option configures a Timer.
type Option func(*Timer)

// WithLogger routes Summary() output through a Logger.
func WithLogger(logger Logger) Option {
	return func(t *Timer) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithEnabled toggles whether the timer records anything. Disabled timers
// are zero-overhead no-ops.
func WithEnabled(enabled bool) Option {
	return func(t *Timer) { t.enabled = enabled }
}

// WithClock injects a Clock, used by tests to make phase durations
// deterministic.
func WithClock(clock Clock) Option {
	return func(t *Timer) { t.clock = clock }
}

// NewTimer creates a Timer for one named run.
func NewTimer(name string, opts ...Option) *Timer {
	t := &Timer{
		name:       name,
		phases:     make(map[string]*Phase),
		phaseOrder: make([]string, 0, 4),
		enabled:    true,
		clock:      NewRealClock(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.startTime = t.clock.Now()
	return t
}

// Start begins timing a phase.
func (t *Timer) Start(name string) *PhaseTimer {
	if !t.enabled {
		return &PhaseTimer{timer: t, name: name}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.phases[name] = &Phase{Name: name, StartTime: t.clock.Now()}
	t.phaseOrder = append(t.phaseOrder, name)
	return &PhaseTimer{timer: t, name: name}
}

// StopPhase stops a phase and returns its duration.
func (t *Timer) StopPhase(name string) time.Duration {
	if !t.enabled {
		return 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	phase, ok := t.phases[name]
	if !ok || phase.completed {
		if ok {
			return phase.Duration
		}
		return 0
	}

	phase.EndTime = t.clock.Now()
	phase.Duration = phase.EndTime.Sub(phase.StartTime)
	phase.completed = true
	return phase.Duration
}

// Duration returns the recorded duration of a phase, zero if unknown.
func (t *Timer) Duration(name string) time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if phase, ok := t.phases[name]; ok {
		return phase.Duration
	}
	return 0
}

// TotalDuration returns the elapsed time since the timer was created.
func (t *Timer) TotalDuration() time.Duration {
	return t.clock.Since(t.startTime)
}

// Phases returns all recorded phases in start order.
func (t *Timer) Phases() []*Phase {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]*Phase, 0, len(t.phaseOrder))
	for _, name := range t.phaseOrder {
		if phase, ok := t.phases[name]; ok {
			cp := *phase
			out = append(out, &cp)
		}
	}
	return out
}

// Summary renders a human-readable report of every phase.
func (t *Timer) Summary() string {
	if !t.enabled {
		return ""
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("=== %s timing ===\n", t.name))
	for i, name := range t.phaseOrder {
		phase := t.phases[name]
		sb.WriteString(fmt.Sprintf("phase %d - %s: %v\n", i+1, phase.Name, phase.Duration))
	}
	sb.WriteString(fmt.Sprintf("total: %v\n", t.TotalDuration()))
	return sb.String()
}

// LogSummary writes the summary through the configured logger, if any.
func (t *Timer) LogSummary() {
	if !t.enabled || t.logger == nil {
		return
	}
	t.logger.Info("%s", t.Summary())
}

// TimeFunc times fn as a named phase.
func (t *Timer) TimeFunc(name string, fn func()) time.Duration {
	pt := t.Start(name)
	fn()
	return pt.Stop()
}

// TimeFuncWithError times fn as a named phase and passes through its error.
func (t *Timer) TimeFuncWithError(name string, fn func() error) (time.Duration, error) {
	pt := t.Start(name)
	err := fn()
	return pt.Stop(), err
}

// NullTimer is a disabled timer, used when a caller doesn't want timing
// overhead.
var NullTimer = &Timer{enabled: false, phases: make(map[string]*Phase), clock: NewRealClock()}
