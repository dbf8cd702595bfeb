// Package workerpool implements a fixed pool of OS-thread-pinned
// goroutines driven through rounds (splitter/map/reduce/merge), ported
// from thread_pool.h / thread_pool.cpp. Workers persist across rounds so
// pinning happens once, not per phase.
package workerpool

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/sourcegraph/conc/panics"

	"github.com/perfwave/phoenix-go/internal/lane"
	"github.com/perfwave/phoenix-go/internal/platform"
	"github.com/perfwave/phoenix-go/internal/schedpolicy"
)

// RoundFunc is the work a worker performs once per round. arg is the
// per-lane argument handed to Set; loc describes the calling lane.
type RoundFunc func(arg interface{}, loc lane.Loc)

// Pool is a fixed set of pinned worker goroutines awaiting rounds of
// work, the Go analogue of thread_pool.
type Pool struct {
	plat   platform.Platform
	policy schedpolicy.Policy

	numThreads int
	lanes      []*workerLane

	mu         sync.Mutex
	fn         RoundFunc
	args       []interface{}
	numWorkers int
	activeIdx  []int // lane indices actually signaled this round

	doneCount atomic.Int32
	allDone   chan struct{}
	catcher   *panics.Catcher

	die       atomic.Bool
	closeOnce sync.Once
	exited    sync.WaitGroup
}

type workerLane struct {
	loc    lane.Loc
	runSem *semaphore.Weighted
}

// New builds a pool of numThreads pinned lanes, assigning CPUs via
// policy. A nil policy leaves lanes unpinned (loc.CPU == -1), matching
// thread_pool's "policy != NULL ? ... : -1" default.
func New(plat platform.Platform, policy schedpolicy.Policy, numThreads int) *Pool {
	p := &Pool{
		plat:       plat,
		policy:     policy,
		numThreads: numThreads,
		lanes:      make([]*workerLane, numThreads),
		allDone:    make(chan struct{}, 1),
	}

	for i := 0; i < numThreads; i++ {
		cpu := -1
		if policy != nil {
			cpu = policy.LaneToCPU(i)
		}
		sem := semaphore.NewWeighted(1)
		_ = sem.Acquire(context.Background(), 1) // drain the initial permit; workers block until Begin releases it
		p.lanes[i] = &workerLane{
			loc: lane.Loc{
				Thread: i,
				CPU:    cpu,
				LGrp:   -1,
				Rand:   rand.New(rand.NewPCG(uint64(i), uint64(i)*0x9E3779B97F4A7C15)),
			},
			runSem: sem,
		}
	}

	p.exited.Add(numThreads)
	for i := 0; i < numThreads; i++ {
		go p.loop(i)
	}

	return p
}

// Set assigns the round function and per-worker arguments, activating
// numWorkers lanes spread evenly across the pool, mirroring
// thread_pool::set's "j = i * num_threads / num_workers" formula.
func (p *Pool) Set(fn RoundFunc, args []interface{}, numWorkers int) error {
	if numWorkers > p.numThreads {
		return fmt.Errorf("workerpool: numWorkers %d exceeds pool size %d", numWorkers, p.numThreads)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.fn = fn
	p.numWorkers = numWorkers
	p.activeIdx = make([]int, numWorkers)
	p.args = make([]interface{}, p.numThreads)

	for i := 0; i < numWorkers; i++ {
		j := i * p.numThreads / numWorkers
		p.args[j] = args[i]
		p.activeIdx[i] = j
	}

	return nil
}

// Begin releases every active lane to run the current round function.
func (p *Pool) Begin() {
	p.mu.Lock()
	numWorkers := p.numWorkers
	active := p.activeIdx
	p.mu.Unlock()

	if numWorkers == 0 {
		return
	}

	p.doneCount.Store(0)
	p.catcher = &panics.Catcher{}

	for _, j := range active {
		p.lanes[j].runSem.Release(1)
	}
}

// Wait blocks until every active lane has finished the current round,
// then repanics if any lane's round function panicked.
func (p *Pool) Wait() {
	p.mu.Lock()
	numWorkers := p.numWorkers
	p.mu.Unlock()

	if numWorkers == 0 {
		return
	}

	<-p.allDone
	p.catcher.Repanic()
}

// Close stops every lane, waits for their goroutines to exit, and
// releases pool resources. Safe to call more than once.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.die.Store(true)
		for _, l := range p.lanes {
			l.runSem.Release(1)
		}
		p.exited.Wait()
	})
}

func (p *Pool) loop(i int) {
	defer p.exited.Done()

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	l := p.lanes[i]
	if l.loc.CPU >= 0 {
		_ = p.plat.BindCurrentThreadToCPU(l.loc.CPU)
	}
	l.loc.LGrp = p.plat.LocalityGroupOfCurrentThread()

	for {
		_ = l.runSem.Acquire(context.Background(), 1)
		if p.die.Load() {
			return
		}

		p.mu.Lock()
		fn := p.fn
		arg := p.args[i]
		numWorkers := p.numWorkers
		catcher := p.catcher
		p.mu.Unlock()

		catcher.Try(func() {
			fn(arg, l.loc)
		})

		if int(p.doneCount.Add(1)) == numWorkers {
			p.allDone <- struct{}{}
		}
	}
}
