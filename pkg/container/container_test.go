package container

import (
	"hash/fnv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perfwave/phoenix-go/pkg/combiner"
)

func stringHash(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

func intHash(i int) uint64 { return uint64(i) }

func drainSum(t *testing.T, c combiner.Combined[int]) int {
	t.Helper()
	var v, total int
	for c.Next(&v) {
		total += v
	}
	return total
}

func TestHash_MergesAcrossLanesIntoCorrectPartition(t *testing.T) {
	const mapLanes, reduceParts = 2, 2
	h := NewHash[string, int](stringHash, func() combiner.Combiner[int] { return combiner.Sum[int]() })
	h.Init(mapLanes, reduceParts)

	v0 := h.Get(0)
	v0.Emit("a", 1)
	v0.Emit("a", 1)
	v0.Emit("b", 10)
	h.Add(0, v0)

	v1 := h.Get(1)
	v1.Emit("a", 1)
	h.Add(1, v1)

	totals := map[string]int{}
	for partition := 0; partition < reduceParts; partition++ {
		it := h.Begin(partition)
		var key string
		var values combiner.Combined[int]
		for it.Next(&key, &values) {
			totals[key] = drainSum(t, values)
		}
		it.Close()
	}

	assert.Equal(t, 3, totals["a"])
	assert.Equal(t, 10, totals["b"])
}

func TestArray_WalksStridedKeysAcrossPartitions(t *testing.T) {
	const n, mapLanes, reduceParts = 4, 2, 2
	a := NewArray[int](n, func() combiner.Combiner[int] { return combiner.Sum[int]() })
	a.Init(mapLanes, reduceParts)

	v0 := a.Get(0)
	v0.Emit(0, 5)
	v0.Emit(2, 7)
	a.Add(0, v0)

	v1 := a.Get(1)
	v1.Emit(0, 1)
	v1.Emit(3, 9)
	a.Add(1, v1)

	it := a.Begin(0)
	var key int
	var values combiner.Combined[int]
	require.True(t, it.Next(&key, &values))
	assert.Equal(t, 0, key)
	assert.Equal(t, 6, drainSum(t, values))

	require.True(t, it.Next(&key, &values))
	assert.Equal(t, 2, key)
	assert.Equal(t, 7, drainSum(t, values))

	assert.False(t, it.Next(&key, &values))

	it = a.Begin(1)
	require.True(t, it.Next(&key, &values))
	assert.Equal(t, 1, key)
	require.True(t, it.Next(&key, &values))
	assert.Equal(t, 3, key)
	assert.Equal(t, 9, drainSum(t, values))
}

func TestCommonArray_SharesOneHandleAcrossLanes(t *testing.T) {
	const n, mapLanes = 3, 2
	c := NewCommonArray[int](n, func() combiner.Combiner[int] { return combiner.Sum[int]() })
	c.Init(mapLanes, 1)

	v0 := c.Get(0)
	v1 := c.Get(1)
	v0.Emit(1, 4)
	v1.Emit(1, 6)
	c.Add(0, v0)
	c.Add(1, v1)

	it := c.Begin(0)
	var key int
	var values combiner.Combined[int]
	require.True(t, it.Next(&key, &values))
	assert.Equal(t, 0, key)
	assert.Equal(t, 0, drainSum(t, values))

	require.True(t, it.Next(&key, &values))
	assert.Equal(t, 1, key)
	assert.Equal(t, 10, drainSum(t, values))
}

func TestFixedHash_PartitionsBucketsWithRemainderToLowIndices(t *testing.T) {
	const n, mapLanes, reduceParts = 5, 1, 3
	fh := NewFixedHash[int, int](intHash, func() combiner.Combiner[int] { return combiner.Sum[int]() }, n)
	fh.Init(mapLanes, reduceParts)

	view := fh.Get(0)
	for bucket := 0; bucket < n; bucket++ {
		view.Emit(bucket, bucket*10)
	}
	fh.Add(0, view)

	b0, e0 := fh.bucketRange(0)
	b1, e1 := fh.bucketRange(1)
	b2, e2 := fh.bucketRange(2)
	assert.Equal(t, [2]int{0, 2}, [2]int{b0, e0})
	assert.Equal(t, [2]int{2, 4}, [2]int{b1, e1})
	assert.Equal(t, [2]int{4, 5}, [2]int{b2, e2})

	it := fh.Begin(2)
	var key int
	var values combiner.Combined[int]
	require.True(t, it.Next(&key, &values))
	assert.Equal(t, 4, key)
	assert.Equal(t, 40, drainSum(t, values))
	assert.False(t, it.Next(&key, &values))
	it.Close()

	// Closed partition's buckets are released; re-iterating finds nothing.
	it2 := fh.Begin(2)
	assert.False(t, it2.Next(&key, &values))
}

func TestFixedHash_EmptyPartitionWhenOutOfRange(t *testing.T) {
	fh := NewFixedHash[int, int](intHash, func() combiner.Combiner[int] { return combiner.Sum[int]() }, 2)
	fh.Init(1, 4)

	it := fh.Begin(10)
	var key int
	var values combiner.Combined[int]
	assert.False(t, it.Next(&key, &values))
}
