package chartdata_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distributed-system-analysis/jschart/internal/chartdata"
)

func histogramPoints(buckets map[float64]float64) []chartdata.Datapoint {
	var points []chartdata.Datapoint
	for _, x := range []float64{1, 2, 4, 8, 16, 32} {
		if count, ok := buckets[x]; ok {
			points = append(points, chartdata.NewDatapoint(x, count))
		}
	}
	return points
}

func TestComputeHistogram(t *testing.T) {
	// 100 samples: 50 at 1, 40 at 2, 9 at 4, 1 at 8.
	h := chartdata.ComputeHistogram(histogramPoints(map[float64]float64{
		1: 50, 2: 40, 4: 9, 8: 1,
	}))
	require.NotNil(t, h)

	assert.Equal(t, 100.0, h.Samples)
	assert.Equal(t, 174.0, h.Sum)
	assert.Equal(t, 1.74, h.Mean)
	assert.Equal(t, 1.0, h.Median)
	assert.Equal(t, 2.0, h.P90)
	assert.Equal(t, 4.0, h.P95)
	assert.Equal(t, 4.0, h.P99)
	assert.Equal(t, 8.0, h.P9999)
	assert.Equal(t, 1.0, h.Min)
	assert.Equal(t, 8.0, h.Max)
}

func TestComputeHistogram_PercentilesMonotonic(t *testing.T) {
	inputs := []map[float64]float64{
		{1: 1},
		{1: 1, 32: 1},
		{1: 10000, 2: 1},
		{1: 1, 2: 2, 4: 3, 8: 4, 16: 5, 32: 6},
	}
	for _, buckets := range inputs {
		h := chartdata.ComputeHistogram(histogramPoints(buckets))
		require.NotNil(t, h)
		assert.LessOrEqual(t, h.Min, h.Median)
		assert.LessOrEqual(t, h.Median, h.P90)
		assert.LessOrEqual(t, h.P90, h.P95)
		assert.LessOrEqual(t, h.P95, h.P99)
		assert.LessOrEqual(t, h.P99, h.P9999)
		assert.LessOrEqual(t, h.P9999, h.Max)
	}
}

func TestComputeHistogram_Empty(t *testing.T) {
	assert.Nil(t, chartdata.ComputeHistogram(nil))
}

func TestComputeHistogram_SingleBucket(t *testing.T) {
	h := chartdata.ComputeHistogram([]chartdata.Datapoint{
		chartdata.NewDatapoint(7, 3),
	})
	require.NotNil(t, h)
	assert.Equal(t, 7.0, h.Median)
	assert.Equal(t, 7.0, h.P9999)
	assert.Equal(t, 7.0, h.Mean)
}
