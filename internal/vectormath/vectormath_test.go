package vectormath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kenjiroe/lufykms-go/internal/core/domain"
)

func TestCosineSimilarity_SelfIsOne(t *testing.T) {
	vectors := [][]float32{
		{1, 0, 0},
		{0.5, -0.25, 3},
		{1e-3, 2e-3, -5e-3, 4},
	}
	for _, v := range vectors {
		sim, err := CosineSimilarity(v, v)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, sim, 1e-9)
	}
}

func TestCosineSimilarity_Symmetric(t *testing.T) {
	a := []float32{0.3, -1.2, 4.5, 0}
	b := []float32{2.1, 0.7, -0.4, 1}

	ab, err := CosineSimilarity(a, b)
	require.NoError(t, err)
	ba, err := CosineSimilarity(b, a)
	require.NoError(t, err)
	assert.InDelta(t, ab, ba, 1e-12)
}

func TestCosineSimilarity_Orthogonal(t *testing.T) {
	sim, err := CosineSimilarity([]float32{1, 0}, []float32{0, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0, sim, 1e-12)
}

func TestCosineSimilarity_Opposite(t *testing.T) {
	sim, err := CosineSimilarity([]float32{1, 2}, []float32{-1, -2})
	require.NoError(t, err)
	assert.InDelta(t, -1, sim, 1e-9)
}

func TestCosineSimilarity_DimensionMismatch(t *testing.T) {
	_, err := CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestCosineSimilarity_ZeroVector(t *testing.T) {
	// Zero norm must yield the 0 sentinel, never NaN.
	sim, err := CosineSimilarity([]float32{0, 0, 0}, []float32{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 0.0, sim)
	assert.False(t, math.IsNaN(sim))
}

func TestEuclideanDistance(t *testing.T) {
	d, err := EuclideanDistance([]float32{0, 0}, []float32{3, 4})
	require.NoError(t, err)
	assert.InDelta(t, 5.0, d, 1e-9)

	_, err = EuclideanDistance([]float32{1}, []float32{1, 2})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestManhattanDistance(t *testing.T) {
	d, err := ManhattanDistance([]float32{1, -1}, []float32{4, 3})
	require.NoError(t, err)
	assert.InDelta(t, 7.0, d, 1e-9)

	_, err = ManhattanDistance([]float32{1}, []float32{1, 2})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestNormalize_UnitNorm(t *testing.T) {
	v := Normalize([]float32{3, 4})

	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-6)
}

func TestNormalize_ZeroVectorUnchanged(t *testing.T) {
	zero := []float32{0, 0, 0}
	assert.Equal(t, zero, Normalize(zero))
}

func TestAverage_SingleElement(t *testing.T) {
	v := []float32{1, 2, 3}
	avg, err := Average([][]float32{v})
	require.NoError(t, err)
	assert.Equal(t, v, avg)

	// The returned vector is a copy, not an alias.
	avg[0] = 99
	assert.Equal(t, float32(1), v[0])
}

func TestAverage_Empty(t *testing.T) {
	_, err := Average(nil)
	assert.ErrorIs(t, err, domain.ErrEmptyInput)
}

func TestAverage_Mean(t *testing.T) {
	avg, err := Average([][]float32{
		{1, 2, 3},
		{3, 4, 5},
	})
	require.NoError(t, err)
	assert.Equal(t, []float32{2, 3, 4}, avg)
}

func TestAverage_DimensionMismatch(t *testing.T) {
	_, err := Average([][]float32{
		{1, 2, 3},
		{1, 2},
	})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestWeightedAverage(t *testing.T) {
	avg, err := WeightedAverage([][]float32{
		{1, 1},
		{3, 5},
	}, []float64{3, 1})
	require.NoError(t, err)
	assert.InDelta(t, 1.5, float64(avg[0]), 1e-6)
	assert.InDelta(t, 2.0, float64(avg[1]), 1e-6)
}

func TestWeightedAverage_Errors(t *testing.T) {
	_, err := WeightedAverage(nil, nil)
	assert.ErrorIs(t, err, domain.ErrEmptyInput)

	_, err = WeightedAverage([][]float32{{1}}, []float64{1, 2})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	_, err = WeightedAverage([][]float32{{1}, {2}}, []float64{1, -1})
	assert.ErrorIs(t, err, domain.ErrZeroWeight)

	_, err = WeightedAverage([][]float32{{1, 2}, {3}}, []float64{1, 1})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}
