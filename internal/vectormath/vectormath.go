// Package vectormath provides the similarity and aggregation primitives
// used by the embedding engine and the search service. Vectors are
// []float32 to match backend output; accumulation happens in float64.
package vectormath

import (
	"fmt"
	"math"

	"github.com/kenjiroe/lufykms-go/internal/core/domain"
)

// CosineSimilarity returns the normalised dot product of a and b,
// conceptually in [-1, 1]. When either vector has zero norm the result
// is 0 rather than NaN, so a degenerate embedding never poisons ranking.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("cosine similarity: %d vs %d: %w", len(a), len(b), domain.ErrDimensionMismatch)
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// EuclideanDistance returns the L2 distance between a and b.
func EuclideanDistance(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("euclidean distance: %d vs %d: %w", len(a), len(b), domain.ErrDimensionMismatch)
	}

	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

// ManhattanDistance returns the L1 distance between a and b.
func ManhattanDistance(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("manhattan distance: %d vs %d: %w", len(a), len(b), domain.ErrDimensionMismatch)
	}

	var sum float64
	for i := range a {
		sum += math.Abs(float64(a[i]) - float64(b[i]))
	}
	return sum, nil
}

// Normalize returns v scaled to unit length. A zero vector is returned
// unchanged; that is a documented special case, not an error.
func Normalize(v []float32) []float32 {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		return v
	}

	norm = math.Sqrt(norm)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

// Average returns the element-wise mean of the given vectors. A single
// vector is returned as a copy. Every vector must share the first
// vector's dimension.
func Average(vectors [][]float32) ([]float32, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("average embeddings: %w", domain.ErrEmptyInput)
	}

	dim := len(vectors[0])
	if len(vectors) == 1 {
		out := make([]float32, dim)
		copy(out, vectors[0])
		return out, nil
	}

	sums := make([]float64, dim)
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("average embeddings: vector %d has %d dims, want %d: %w",
				i, len(v), dim, domain.ErrDimensionMismatch)
		}
		for j, x := range v {
			sums[j] += float64(x)
		}
	}

	out := make([]float32, dim)
	n := float64(len(vectors))
	for j, s := range sums {
		out[j] = float32(s / n)
	}
	return out, nil
}

// WeightedAverage returns the element-wise weighted mean of the given
// vectors. It fails when the vector and weight counts differ, when the
// input is empty, when the weights sum to zero, or on any dimension
// mismatch.
func WeightedAverage(vectors [][]float32, weights []float64) ([]float32, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("weighted average embeddings: %w", domain.ErrEmptyInput)
	}
	if len(vectors) != len(weights) {
		return nil, fmt.Errorf("weighted average embeddings: %d vectors, %d weights: %w",
			len(vectors), len(weights), domain.ErrDimensionMismatch)
	}

	var total float64
	for _, w := range weights {
		total += w
	}
	if total == 0 {
		return nil, fmt.Errorf("weighted average embeddings: %w", domain.ErrZeroWeight)
	}

	dim := len(vectors[0])
	sums := make([]float64, dim)
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("weighted average embeddings: vector %d has %d dims, want %d: %w",
				i, len(v), dim, domain.ErrDimensionMismatch)
		}
		for j, x := range v {
			sums[j] += float64(x) * weights[i]
		}
	}

	out := make([]float32, dim)
	for j, s := range sums {
		out[j] = float32(s / total)
	}
	return out, nil
}
