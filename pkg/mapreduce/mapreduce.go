// Package mapreduce implements the phase sequencer that drives a
// user-supplied (map, combine, reduce) computation across a worker pool,
// ported from map_reduce.h's MapReduce/MapReduceSort driver classes.
package mapreduce

import (
	"math/rand/v2"

	"github.com/perfwave/phoenix-go/internal/lane"
	"github.com/perfwave/phoenix-go/internal/platform"
	"github.com/perfwave/phoenix-go/internal/schedpolicy"
	"github.com/perfwave/phoenix-go/internal/synch"
	"github.com/perfwave/phoenix-go/internal/taskqueue"
	"github.com/perfwave/phoenix-go/internal/workerpool"
	"github.com/perfwave/phoenix-go/pkg/combiner"
	"github.com/perfwave/phoenix-go/pkg/config"
	"github.com/perfwave/phoenix-go/pkg/container"
	"github.com/perfwave/phoenix-go/pkg/mrerrors"
	"github.com/perfwave/phoenix-go/pkg/mrlog"
)

// KeyValue is one emitted result pair.
type KeyValue[K any, V any] struct {
	Key   K
	Value V
}

// MapFunc is called once per input element; emit may be called any
// number of times (zero or more) to produce key/value pairs.
type MapFunc[D any, K comparable, V any] func(item D, emit func(key K, value V))

// ReduceFunc is called once per distinct key routed to a reduce
// partition, draining values and returning the emissions for that key.
// DefaultReduce implements the "emit every V unchanged" fallback used
// when a driver is built without an explicit reduce function.
type ReduceFunc[K comparable, V any] func(key K, values combiner.Combined[V]) []KeyValue[K, V]

// DefaultReduce emits every combined value unchanged as (key, value).
func DefaultReduce[K comparable, V any](key K, values combiner.Combined[V]) []KeyValue[K, V] {
	out := make([]KeyValue[K, V], 0, values.Size())
	var v V
	for values.Next(&v) {
		out = append(out, KeyValue[K, V]{Key: key, Value: v})
	}
	return out
}

// Locator derives a NUMA locality hint for a chunk of input data, or
// returns a negative hint when locality is unknown. A user-supplied
// locator may fail (e.g. an address-based lookup), in which case the
// error is wrapped and returned to the caller rather than panicked,
// the same as any other user-callback failure.
type Locator[D any] func(chunk []D) (locality int, err error)

// SplitFunc produces the next chunk of input data; more reports whether
// another call will yield further data. Called repeatedly by RunSplit
// until more is false.
type SplitFunc[D any] func() (chunk []D, more bool)

// Comparator reports whether a orders strictly before b, used by the
// sorted-merge phase. A nil Comparator selects the unsorted merge.
type Comparator[K any, V any] func(a, b KeyValue[K, V]) bool

type mapChunk[D any] struct {
	id       int
	items    []D
	locality int
}

// Driver sequences the splitter/map/reduce/merge phases of one
// MapReduce invocation over input element D, key K, and value V. Ported
// from map_reduce.h's MapReduce template class.
type Driver[D any, K comparable, V any] struct {
	container container.Container[K, V]
	mapFn     MapFunc[D, K, V]
	reduceFn  ReduceFunc[K, V]
	locator   Locator[D]
	splitFn   SplitFunc[D]
	comparator Comparator[K, V]

	cfg    config.RuntimeConfig
	cfgSet bool
	logger mrlog.Logger
	timer  *mrlog.Timer

	plat        platform.Platform
	policy      schedpolicy.Policy
	pool        *workerpool.Pool
	queue       *taskqueue.Queue
	workerCount int
}

// Option configures a Driver at construction time.
type Option[D any, K comparable, V any] func(*Driver[D, K, V])

// WithReduce overrides the default "emit every value" reduce function.
func WithReduce[D any, K comparable, V any](fn ReduceFunc[K, V]) Option[D, K, V] {
	return func(d *Driver[D, K, V]) { d.reduceFn = fn }
}

// WithLocator supplies a NUMA locality hint function for map chunks.
func WithLocator[D any, K comparable, V any](fn Locator[D]) Option[D, K, V] {
	return func(d *Driver[D, K, V]) { d.locator = fn }
}

// WithSplitter supplies the generator RunSplit drives instead of a
// caller-provided data slice.
func WithSplitter[D any, K comparable, V any](fn SplitFunc[D]) Option[D, K, V] {
	return func(d *Driver[D, K, V]) { d.splitFn = fn }
}

// WithComparator selects the sorted-merge phase, ordering output by cmp.
// Without it, Run performs the unsorted (concatenating) merge.
func WithComparator[D any, K comparable, V any](cmp Comparator[K, V]) Option[D, K, V] {
	return func(d *Driver[D, K, V]) { d.comparator = cmp }
}

// WithLogger overrides the default stderr text logger.
func WithLogger[D any, K comparable, V any](logger mrlog.Logger) Option[D, K, V] {
	return func(d *Driver[D, K, V]) { d.logger = logger }
}

// WithConfig overrides the configuration the driver would otherwise load
// via pkg/config.
func WithConfig[D any, K comparable, V any](cfg config.RuntimeConfig) Option[D, K, V] {
	return func(d *Driver[D, K, V]) { d.cfg = cfg; d.cfgSet = true }
}

// New builds a Driver over container c using mapFn as the map step.
// Construction mirrors MapReduce's constructor: absent an explicit
// WithConfig, MR_NUMTHREADS (via pkg/config) sizes the worker pool,
// defaulting to the platform's CPU count.
func New[D any, K comparable, V any](c container.Container[K, V], mapFn MapFunc[D, K, V], opts ...Option[D, K, V]) (*Driver[D, K, V], error) {
	if c == nil || mapFn == nil {
		return nil, mrerrors.ErrInvalidConfig
	}

	d := &Driver[D, K, V]{
		container: c,
		mapFn:     mapFn,
		reduceFn:  DefaultReduce[K, V],
		logger:    mrlog.Default(),
		plat:      platform.Default(),
	}

	for _, opt := range opts {
		opt(d)
	}

	if !d.cfgSet {
		if cfg, err := config.Load(""); err == nil {
			d.cfg = cfg.Runtime
		} else {
			d.cfg = config.RuntimeConfig{
				NumThreads:      d.plat.CPUCount(),
				SchedPolicy:     "strand-fill",
				TaskMultiplier:  16,
				LoadFactor:      0.5,
				InitialCapacity: 64,
			}
		}
	}

	d.timer = mrlog.NewTimer("mapreduce", mrlog.WithLogger(d.logger))

	d.SetThreads(d.cfg.NumThreads, d.cfg.SchedPolicy)
	return d, nil
}

// SetThreads replaces the worker pool and task queue, sized to n lanes
// scheduled by the named policy ("strand-fill", "core-fill",
// "chip-fill"). Returns the driver for chaining, ported from
// setThreads's "return *this".
func (d *Driver[D, K, V]) SetThreads(n int, policyName string) *Driver[D, K, V] {
	if n <= 0 {
		n = d.plat.CPUCount()
	}
	if policyName == "" {
		policyName = "strand-fill"
	}

	if d.pool != nil {
		d.pool.Close()
	}

	topo := schedpolicy.Topology{CPUs: d.plat.CPUCount(), Chips: d.plat.LocalityGroupCount()}
	d.policy = schedpolicy.New(policyName, topo)
	d.pool = workerpool.New(d.plat, d.policy, n)
	d.queue = taskqueue.New(n, synch.KindMutex)
	d.workerCount = n
	return d
}

// WorkerCount reports the current worker lane count.
func (d *Driver[D, K, V]) WorkerCount() int { return d.workerCount }

// Close tears down the worker pool. Safe to call more than once.
func (d *Driver[D, K, V]) Close() {
	if d.pool != nil {
		d.pool.Close()
	}
}

func newSubmitterLoc() lane.Loc {
	return lane.Loc{Thread: -1, CPU: -1, LGrp: -1, Rand: rand.New(rand.NewPCG(1, 2))}
}
