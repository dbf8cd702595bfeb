package taskqueue

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perfwave/phoenix-go/internal/lane"
	"github.com/perfwave/phoenix-go/internal/synch"
)

func testLoc(thread int) lane.Loc {
	return lane.Loc{Thread: thread, CPU: thread, LGrp: -1, Rand: rand.New(rand.NewPCG(uint64(thread), 1))}
}

func TestEnqueueDequeue_HomeQueueIsFIFO(t *testing.T) {
	q := New(2, synch.KindMutex)
	loc := testLoc(0)

	q.EnqueueSeq(Task{ID: 1}, 0, 0)
	q.EnqueueSeq(Task{ID: 2}, 0, 0)
	q.EnqueueSeq(Task{ID: 3}, 0, 0)

	first, ok := q.Dequeue(loc)
	require.True(t, ok)
	assert.EqualValues(t, 1, first.ID)

	second, ok := q.Dequeue(loc)
	require.True(t, ok)
	assert.EqualValues(t, 2, second.ID)
}

func TestDequeue_StealsFromOtherQueueLIFO(t *testing.T) {
	q := New(2, synch.KindMutex)

	// All tasks land on sub-queue 1 via an explicit lgrp hint.
	q.EnqueueSeq(Task{ID: 10}, 0, 1)
	q.EnqueueSeq(Task{ID: 11}, 0, 1)

	// Lane 0's home queue (0) is empty, so it must steal from queue 1,
	// taking from the back (LIFO): task 11 first, then 10.
	loc := testLoc(0)

	stolen, ok := q.Dequeue(loc)
	require.True(t, ok)
	assert.EqualValues(t, 11, stolen.ID)

	stolen, ok = q.Dequeue(loc)
	require.True(t, ok)
	assert.EqualValues(t, 10, stolen.ID)

	_, ok = q.Dequeue(loc)
	assert.False(t, ok)
}

func TestEnqueue_RoutesByTotalTasksHint(t *testing.T) {
	q := New(4, synch.KindMutex)
	loc := testLoc(0)

	// id=6 of total=8 across 4 queues routes to index 3.
	q.Enqueue(Task{ID: 6}, loc, 8, -1)

	task, ok := q.Dequeue(testLoc(3))
	require.True(t, ok)
	assert.EqualValues(t, 6, task.ID)
}

func TestDequeue_EmptyReturnsFalse(t *testing.T) {
	q := New(3, synch.KindTicket)
	_, ok := q.Dequeue(testLoc(0))
	assert.False(t, ok)
}
