package mapreduce

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perfwave/phoenix-go/pkg/combiner"
	"github.com/perfwave/phoenix-go/pkg/config"
	"github.com/perfwave/phoenix-go/pkg/container"
	"github.com/perfwave/phoenix-go/pkg/mrerrors"
	"github.com/perfwave/phoenix-go/pkg/mrlog"
)

func testConfig(numThreads int) config.RuntimeConfig {
	return config.RuntimeConfig{
		NumThreads:      numThreads,
		SchedPolicy:     "strand-fill",
		TaskMultiplier:  4,
		LoadFactor:      0.5,
		InitialCapacity: 16,
	}
}

func wordHash(s string) uint64 {
	var h uint64 = 14695981039346656037
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 1099511628211
	}
	return h
}

func sumFactory() combiner.Combiner[int] { return combiner.Sum[int]() }

func TestDriver_WordCount(t *testing.T) {
	words := strings.Fields("a a b")
	c := container.NewHash[string, int](wordHash, sumFactory)

	mapFn := func(w string, emit func(key string, value int)) {
		emit(w, 1)
	}

	d, err := New[string, string, int](c, mapFn,
		WithConfig[string, string, int](testConfig(2)),
		WithLogger[string, string, int](mrlog.NullLogger{}),
	)
	require.NoError(t, err)
	defer d.Close()

	out, err := d.Run(words)
	require.NoError(t, err)

	totals := map[string]int{}
	for _, kv := range out {
		totals[kv.Key] += kv.Value
	}
	assert.Equal(t, 2, totals["a"])
	assert.Equal(t, 1, totals["b"])
}

func TestDriver_Histogram24Bit(t *testing.T) {
	type pixel struct{ r, g, b int }
	pixels := []pixel{{1, 2, 3}, {1, 250, 3}}

	c := container.NewArray[int](768, sumFactory)
	mapFn := func(p pixel, emit func(key int, value int)) {
		emit(p.r, 1)
		emit(256+p.g, 1)
		emit(512+p.b, 1)
	}

	d, err := New[pixel, int, int](c, mapFn,
		WithConfig[pixel, int, int](testConfig(2)),
		WithLogger[pixel, int, int](mrlog.NullLogger{}),
	)
	require.NoError(t, err)
	defer d.Close()

	out, err := d.Run(pixels)
	require.NoError(t, err)

	counts := map[int]int{}
	for _, kv := range out {
		counts[kv.Key] += kv.Value
	}
	assert.Equal(t, 2, counts[1])
	assert.Equal(t, 2, counts[512+3])
	assert.Equal(t, 1, counts[256+2])
	assert.Equal(t, 1, counts[256+250])
}

func TestDriver_LinearRegressionPartials(t *testing.T) {
	type point struct{ x, y float64 }
	points := []point{{1, 2}, {2, 4}, {3, 5}}

	c := container.NewArray[float64](5, func() combiner.Combiner[float64] { return combiner.Sum[float64]() })
	mapFn := func(p point, emit func(key int, value float64)) {
		emit(0, p.x*p.x)
		emit(1, p.x)
		emit(2, p.x*p.y)
		emit(3, p.y)
		emit(4, 1)
	}

	d, err := New[point, int, float64](c, mapFn,
		WithConfig[point, int, float64](testConfig(2)),
		WithLogger[point, int, float64](mrlog.NullLogger{}),
	)
	require.NoError(t, err)
	defer d.Close()

	out, err := d.Run(points)
	require.NoError(t, err)

	sums := map[int]float64{}
	for _, kv := range out {
		sums[kv.Key] += kv.Value
	}
	assert.Equal(t, float64(14), sums[0])
	assert.Equal(t, float64(6), sums[1])
	assert.Equal(t, float64(25), sums[2])
	assert.Equal(t, float64(11), sums[3])
	assert.Equal(t, float64(3), sums[4])
}

func TestDriver_MatrixMultiplyPartialSums(t *testing.T) {
	type cellContribution struct {
		row, col int
		product  float64
	}
	contributions := []cellContribution{
		{0, 0, 1}, {0, 0, 2}, {0, 1, 3}, {1, 0, 4}, {1, 1, 5}, {1, 1, 6},
	}

	const dim = 2
	c := container.NewCommonArray[float64](dim*dim, func() combiner.Combiner[float64] { return combiner.Sum[float64]() })
	mapFn := func(cc cellContribution, emit func(key int, value float64)) {
		emit(cc.row*dim+cc.col, cc.product)
	}

	// CommonArray hands every lane the same shared cell slice with no
	// per-lane copy, so it is only safe when writers to a given key are
	// serialized; a single worker lane keeps this deterministic here.
	d, err := New[cellContribution, int, float64](c, mapFn,
		WithConfig[cellContribution, int, float64](testConfig(1)),
		WithLogger[cellContribution, int, float64](mrlog.NullLogger{}),
	)
	require.NoError(t, err)
	defer d.Close()

	out, err := d.Run(contributions)
	require.NoError(t, err)
	require.Len(t, out, dim*dim)

	sums := map[int]float64{}
	for _, kv := range out {
		sums[kv.Key] += kv.Value
	}
	assert.Equal(t, float64(3), sums[0])
	assert.Equal(t, float64(3), sums[1])
	assert.Equal(t, float64(4), sums[2])
	assert.Equal(t, float64(11), sums[3])
}

func TestDriver_KMeansOneStep(t *testing.T) {
	type point struct{ x float64 }
	type accum struct {
		count int
		sum   float64
	}
	points := []point{{1}, {2}, {9}}
	means := []float64{0, 10}

	nearest := func(x float64) int {
		best, bestDist := 0, -1.0
		for i, m := range means {
			d := x - m
			if d < 0 {
				d = -d
			}
			if bestDist < 0 || d < bestDist {
				best, bestDist = i, d
			}
		}
		return best
	}

	factory := func() combiner.Combiner[accum] {
		return combiner.NewAssociative(func(a, b accum) accum {
			return accum{count: a.count + b.count, sum: a.sum + b.sum}
		}, func() accum { return accum{} })
	}

	c := container.NewArray[accum](len(means), factory)
	mapFn := func(p point, emit func(key int, value accum)) {
		emit(nearest(p.x), accum{count: 1, sum: p.x})
	}

	d, err := New[point, int, accum](c, mapFn,
		WithConfig[point, int, accum](testConfig(2)),
		WithLogger[point, int, accum](mrlog.NullLogger{}),
	)
	require.NoError(t, err)
	defer d.Close()

	out, err := d.Run(points)
	require.NoError(t, err)

	byCluster := map[int]accum{}
	for _, kv := range out {
		byCluster[kv.Key] = kv.Value
	}
	assert.Equal(t, accum{count: 2, sum: 3}, byCluster[0])
	assert.Equal(t, accum{count: 1, sum: 9}, byCluster[1])
}

func TestDriver_EmptyInputStillSchedulesEmptyPartitions(t *testing.T) {
	c := container.NewHash[string, int](wordHash, sumFactory)
	mapFn := func(w string, emit func(key string, value int)) {
		emit(w, 1)
	}

	d, err := New[string, string, int](c, mapFn,
		WithConfig[string, string, int](testConfig(4)),
		WithLogger[string, string, int](mrlog.NullLogger{}),
	)
	require.NoError(t, err)
	defer d.Close()

	out, err := d.Run(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestDriver_SortedMergeOrdersOutput(t *testing.T) {
	c := container.NewArray[int](4, sumFactory)
	mapFn := func(n int, emit func(key int, value int)) {
		emit(n%4, n)
	}

	cmp := func(a, b KeyValue[int, int]) bool { return a.Key < b.Key }

	d, err := New[int, int, int](c, mapFn,
		WithConfig[int, int, int](testConfig(4)),
		WithLogger[int, int, int](mrlog.NullLogger{}),
		WithComparator[int, int, int](cmp),
	)
	require.NoError(t, err)
	defer d.Close()

	out, err := d.Run([]int{7, 1, 6, 2, 5, 3, 4, 0})
	require.NoError(t, err)
	require.Len(t, out, 4)
	for i := 1; i < len(out); i++ {
		assert.LessOrEqual(t, out[i-1].Key, out[i].Key)
	}
}

func TestMergeTask_PanicsOnMoreThanTwoQueues(t *testing.T) {
	cmp := func(a, b KeyValue[int, int]) bool { return a.Key < b.Key }
	queues := [][]KeyValue[int, int]{{{Key: 1}}, {{Key: 2}}, {{Key: 3}}}

	assert.Panics(t, func() {
		mergeTask(queues, cmp)
	})
}

func TestDriver_LocatorFailurePropagatesAsUserFuncError(t *testing.T) {
	c := container.NewArray[int](1, sumFactory)
	mapFn := func(n int, emit func(key int, value int)) { emit(0, n) }

	locator := func(chunk []int) (int, error) {
		return 0, assert.AnError
	}

	d, err := New[int, int, int](c, mapFn,
		WithConfig[int, int, int](testConfig(2)),
		WithLogger[int, int, int](mrlog.NullLogger{}),
		WithLocator[int, int, int](locator),
	)
	require.NoError(t, err)
	defer d.Close()

	_, err = d.Run([]int{1, 2, 3, 4})
	require.Error(t, err)
	assert.True(t, mrerrors.IsUserFuncError(err))
}
