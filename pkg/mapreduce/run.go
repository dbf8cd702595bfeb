package mapreduce

import (
	"golang.org/x/sync/errgroup"

	"github.com/perfwave/phoenix-go/internal/lane"
	"github.com/perfwave/phoenix-go/internal/taskqueue"
	"github.com/perfwave/phoenix-go/pkg/combiner"
	"github.com/perfwave/phoenix-go/pkg/mrerrors"
)

// Run executes one MapReduce pass over data: map-task sizing, the map
// phase, the reduce phase, and the final merge.
func (d *Driver[D, K, V]) Run(data []D) ([]KeyValue[K, V], error) {
	return d.execute(data)
}

// RunSplit drives the configured splitter to produce input instead of
// taking a caller-supplied slice, for drivers built with WithSplitter.
func (d *Driver[D, K, V]) RunSplit() ([]KeyValue[K, V], error) {
	if d.splitFn == nil {
		return nil, mrerrors.New(mrerrors.CodeInvalidConfig, "no splitter configured")
	}

	var data []D
	for {
		chunk, more := d.splitFn()
		data = append(data, chunk...)
		if !more {
			break
		}
	}
	return d.execute(data)
}

func (d *Driver[D, K, V]) execute(data []D) ([]KeyValue[K, V], error) {
	d.container.Init(d.workerCount, d.workerCount)

	if len(data) > 0 {
		tMap := min(len(data), d.workerCount) * d.cfg.TaskMultiplier

		pt := d.timer.Start("split")
		chunks, err := d.buildMapChunks(data, tMap)
		pt.Stop()
		if err != nil {
			return nil, err
		}

		submitter := newSubmitterLoc()
		for _, c := range chunks {
			d.queue.Enqueue(taskqueue.Task{ID: uint64(c.id), Data: c}, submitter, len(chunks), c.locality)
		}
	}

	pt := d.timer.Start("map")
	err := d.runMapPhase()
	pt.Stop()
	if err != nil {
		return nil, err
	}

	for r := 0; r < d.workerCount; r++ {
		d.queue.EnqueueSeq(taskqueue.Task{ID: uint64(r)}, d.workerCount, -1)
	}

	pt = d.timer.Start("reduce")
	results, err := d.runReducePhase()
	pt.Stop()
	if err != nil {
		return nil, err
	}

	pt = d.timer.Start("merge")
	out := d.mergeResults(results)
	pt.Stop()

	d.timer.LogSummary()
	return out, nil
}

// buildMapChunks splits data into ceil(len(data)/tMap)-sized pieces and
// resolves each chunk's locality hint through the configured Locator.
// Locator calls fan out concurrently via errgroup.Group, whose first
// returned error aborts the whole build and surfaces on the caller's
// goroutine — ported in spirit from the source's per-chunk
// "loc_hint(splitter output)" call, made concurrent since independent
// chunks have no ordering dependency on one another.
func (d *Driver[D, K, V]) buildMapChunks(data []D, tMap int) ([]mapChunk[D], error) {
	chunkSize := (len(data) + tMap - 1) / tMap
	n := (len(data) + chunkSize - 1) / chunkSize
	chunks := make([]mapChunk[D], n)
	for i := 0; i < n; i++ {
		start := i * chunkSize
		end := min(start+chunkSize, len(data))
		chunks[i] = mapChunk[D]{id: i, items: data[start:end], locality: -1}
	}

	if d.locator == nil {
		return chunks, nil
	}

	g := new(errgroup.Group)
	for i := range chunks {
		i := i
		g.Go(func() error {
			loc, err := d.locator(chunks[i].items)
			if err != nil {
				return mrerrors.Wrap(mrerrors.CodeUserFunc, "locator failed", err)
			}
			chunks[i].locality = loc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return chunks, nil
}

// runMapPhase releases the pool against the map round function. Each
// worker obtains its lane's write view once, drains its sub-queue
// (stealing from siblings when empty), and commits the view once the
// queue is exhausted, ported from map_worker's loop.
func (d *Driver[D, K, V]) runMapPhase() error {
	mapWorker := func(_ interface{}, loc lane.Loc) {
		view := d.container.Get(loc.Thread)
		emit := func(key K, value V) { view.Emit(key, value) }

		for {
			task, ok := d.queue.Dequeue(loc)
			if !ok {
				break
			}
			chunk := task.Data.(mapChunk[D])
			for _, item := range chunk.items {
				d.mapFn(item, emit)
			}
		}

		d.container.Add(loc.Thread, view)
	}

	if err := d.pool.Set(mapWorker, make([]interface{}, d.workerCount), d.workerCount); err != nil {
		return mrerrors.Wrap(mrerrors.CodePoolCreation, "map phase setup failed", err)
	}
	d.pool.Begin()
	d.pool.Wait()
	return nil
}

// runReducePhase releases the pool against the reduce round function.
// Each worker dequeues partition tasks, iterates the container for that
// partition, and calls the reduce function for every distinct key,
// appending emissions to its own per-lane output buffer — ported from
// reduce_worker's loop.
func (d *Driver[D, K, V]) runReducePhase() ([][]KeyValue[K, V], error) {
	results := make([][]KeyValue[K, V], d.workerCount)

	reduceWorker := func(_ interface{}, loc lane.Loc) {
		var out []KeyValue[K, V]
		for {
			task, ok := d.queue.Dequeue(loc)
			if !ok {
				break
			}
			partition := int(task.ID)
			it := d.container.Begin(partition)

			var key K
			var values combiner.Combined[V]
			for it.Next(&key, &values) {
				out = append(out, d.reduceFn(key, values)...)
			}
			it.Close()
		}
		results[loc.Thread] = out
	}

	if err := d.pool.Set(reduceWorker, make([]interface{}, d.workerCount), d.workerCount); err != nil {
		return nil, mrerrors.Wrap(mrerrors.CodePoolCreation, "reduce phase setup failed", err)
	}
	d.pool.Begin()
	d.pool.Wait()
	return results, nil
}
