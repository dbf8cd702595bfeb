package mapreduce

import (
	"sort"

	"github.com/perfwave/phoenix-go/pkg/mrerrors"
)

// mergeResults combines each reduce lane's output buffer into the final
// result slice. Without a Comparator the unsorted (concatenating) merge
// runs; WithComparator selects the sorted, pairwise binary-tree merge,
// ported from map_reduce.h's MapReduce::run_merge /
// MapReduceSort::run_merge.
func (d *Driver[D, K, V]) mergeResults(lanes [][]KeyValue[K, V]) []KeyValue[K, V] {
	if d.comparator == nil {
		return unsortedMerge(lanes)
	}
	return sortedMerge(lanes, d.comparator)
}

// unsortedMerge concatenates every lane's output in lane order, the
// merge_worker behavior when no comparator was configured.
func unsortedMerge[K comparable, V any](lanes [][]KeyValue[K, V]) []KeyValue[K, V] {
	total := 0
	for _, l := range lanes {
		total += len(l)
	}
	out := make([]KeyValue[K, V], 0, total)
	for _, l := range lanes {
		out = append(out, l...)
	}
	return out
}

// sortedMerge sorts each lane independently, then folds the lanes
// together with a balanced binary-tree pairwise merge (merge_factor=2),
// ported from MapReduceSort::run_merge.
func sortedMerge[K comparable, V any](lanes [][]KeyValue[K, V], cmp Comparator[K, V]) []KeyValue[K, V] {
	queues := make([][]KeyValue[K, V], 0, len(lanes))
	for _, l := range lanes {
		if len(l) == 0 {
			continue
		}
		sorted := make([]KeyValue[K, V], len(l))
		copy(sorted, l)
		sort.SliceStable(sorted, func(i, j int) bool { return cmp(sorted[i], sorted[j]) })
		queues = append(queues, sorted)
	}

	for len(queues) > 1 {
		next := make([][]KeyValue[K, V], 0, (len(queues)+1)/2)
		for i := 0; i < len(queues); i += 2 {
			if i+1 < len(queues) {
				next = append(next, mergeTask(queues[i:i+2], cmp))
			} else {
				next = append(next, queues[i])
			}
		}
		queues = next
	}

	if len(queues) == 0 {
		return nil
	}
	return queues[0]
}

// mergeTask merges the queues handed to one merge task. Phoenix's merge
// tree is strictly binary (merge_factor=2); receiving anything else is
// an internal scheduling bug, not a recoverable condition, matching
// MapReduceSort::run_merge's "assert(0)" else-branch.
func mergeTask[K comparable, V any](queues [][]KeyValue[K, V], cmp Comparator[K, V]) []KeyValue[K, V] {
	switch len(queues) {
	case 0:
		return nil
	case 1:
		return queues[0]
	case 2:
		return mergeTwo(queues[0], queues[1], cmp)
	default:
		panic(mrerrors.Invariant("merge: more than 2-way merge requested"))
	}
}

// mergeTwo performs a stable two-way merge of two already-sorted slices.
// Ties favor a, preserving each lane's original relative order.
func mergeTwo[K comparable, V any](a, b []KeyValue[K, V], cmp Comparator[K, V]) []KeyValue[K, V] {
	out := make([]KeyValue[K, V], 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if cmp(b[j], a[i]) {
			out = append(out, b[j])
			j++
		} else {
			out = append(out, a[i])
			i++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}
