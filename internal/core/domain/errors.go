package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrEmptyContent indicates ingestion was attempted with blank content.
	ErrEmptyContent = errors.New("empty content")

	// ErrInvalidQuery indicates a search query is empty or too long.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrInvalidOptions indicates search options are out of range.
	ErrInvalidOptions = errors.New("invalid options")

	// Vector math errors.

	// ErrDimensionMismatch indicates two vectors have different lengths.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrEmptyInput indicates a vector aggregate was requested over no vectors.
	ErrEmptyInput = errors.New("empty input")

	// ErrZeroWeight indicates a weighted aggregate whose weights sum to zero.
	ErrZeroWeight = errors.New("total weight is zero")

	// Embedding backend errors.

	// ErrEmbeddingBackend indicates the embedding backend failed after
	// all retries were exhausted.
	ErrEmbeddingBackend = errors.New("embedding backend failed")

	// ErrTimeout indicates the final embedding attempt exceeded its deadline.
	ErrTimeout = errors.New("embedding backend timed out")

	// ErrStorage indicates the external document store failed.
	ErrStorage = errors.New("storage failure")
)
