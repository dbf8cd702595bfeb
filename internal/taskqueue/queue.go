// Package taskqueue implements the per-locality sub-queues that feed
// worker lanes: FIFO pop from a lane's home queue, LIFO steal from
// others, ported line-for-line from task_queue.h / task_queue.cpp.
package taskqueue

import (
	"github.com/perfwave/phoenix-go/internal/lane"
	"github.com/perfwave/phoenix-go/internal/synch"
)

// Task is an opaque unit of map or reduce work. Data is the task's
// payload, interpreted by the caller; ID is used for total-tasks-based
// routing hints.
type Task struct {
	ID   uint64
	Data interface{}
}

// Queue holds one deque per sub-queue, each independently locked,
// mirroring task_queue's queues[]/locks[] arrays.
type Queue struct {
	subQueues []subQueue
}

type subQueue struct {
	lock  synch.Lock
	tasks []Task
}

// New builds a Queue with numSubQueues independently locked sub-queues,
// one typically per worker lane.
func New(numSubQueues int, lockKind synch.Kind) *Queue {
	q := &Queue{subQueues: make([]subQueue, numSubQueues)}
	for i := range q.subQueues {
		q.subQueues[i].lock = synch.New(lockKind, numSubQueues)
	}
	return q
}

func (q *Queue) numQueues() int { return len(q.subQueues) }

// Enqueue locks the target sub-queue and appends task, routed by locality
// hint if lgrp >= 0, else by id*numQueues/totalTasks if totalTasks > 0,
// else by the caller's per-lane random source — task_queue::enqueue.
func (q *Queue) Enqueue(task Task, loc lane.Loc, totalTasks int, lgrp int) {
	index := q.routeIndex(task, loc, totalTasks, lgrp)

	sub := &q.subQueues[index]
	sub.lock.Acquire(loc.Thread)
	sub.tasks = append(sub.tasks, task)
	sub.lock.Release(loc.Thread)
}

// EnqueueSeq appends task without locking, for use when only a single
// driver goroutine is generating tasks (e.g. building the initial map
// task list) — task_queue::enqueue_seq.
func (q *Queue) EnqueueSeq(task Task, totalTasks int, lgrp int) {
	index := lgrp
	if index < 0 {
		if totalTasks > 0 {
			index = int(task.ID) * q.numQueues() / totalTasks
		} else {
			index = pseudoRandomFallback()
		}
	}
	index %= q.numQueues()

	q.subQueues[index].tasks = append(q.subQueues[index].tasks, task)
}

func (q *Queue) routeIndex(task Task, loc lane.Loc, totalTasks int, lgrp int) int {
	index := lgrp
	if index < 0 {
		if totalTasks > 0 {
			index = int(task.ID) * q.numQueues() / totalTasks
		} else {
			index = int(loc.Rand.Uint64() % uint64(q.numQueues()))
		}
	}
	index %= q.numQueues()
	return index
}

// pseudoRandomFallback backs EnqueueSeq's "no per-lane RNG available"
// path; callers of EnqueueSeq are expected to always know totalTasks or
// pass an explicit lgrp in practice, exactly as the driver does when
// pre-populating the map/reduce task lists.
func pseudoRandomFallback() int { return 0 }

// Dequeue tries the caller's home sub-queue first (FIFO pop from the
// front), then cycles through every other sub-queue stealing from the
// back (LIFO), mirroring task_queue::dequeue's scan order exactly.
func (q *Queue) Dequeue(loc lane.Loc) (Task, bool) {
	home := loc.LGrp
	if home < 0 {
		home = loc.CPU
	}
	if home < 0 {
		home = loc.Thread
	}
	home %= q.numQueues()

	n := q.numQueues()
	for i := home; i < home+n; i++ {
		idx := i % n
		sub := &q.subQueues[idx]

		sub.lock.Acquire(loc.Thread)
		if len(sub.tasks) > 0 {
			var task Task
			if idx == home {
				task = sub.tasks[0]
				sub.tasks = sub.tasks[1:]
			} else {
				last := len(sub.tasks) - 1
				task = sub.tasks[last]
				sub.tasks = sub.tasks[:last]
			}
			sub.lock.Release(loc.Thread)
			return task, true
		}
		sub.lock.Release(loc.Thread)
	}

	return Task{}, false
}
