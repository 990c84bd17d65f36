package domain

import "time"

// Document is the canonical stored representation of a piece of knowledge.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Content is the full text content.
	Content string

	// Metadata contains arbitrary key-value pairs supplied at ingestion.
	Metadata map[string]any

	// Embedding is the vector representation for semantic search.
	// A document without an embedding is excluded from similarity search.
	Embedding []float32

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time

	// UpdatedAt is when the document was last updated.
	UpdatedAt time.Time
}

// HasEmbedding reports whether the document carries an embedding vector.
func (d *Document) HasEmbedding() bool {
	return len(d.Embedding) > 0
}

// Chunk is a bounded substring of a document, produced only while
// embedding oversized content. Chunks are never persisted.
type Chunk struct {
	// Content is the trimmed text of this chunk.
	Content string

	// Index is the zero-based ordinal position within the document.
	Index int

	// Start is the raw (pre-trim) start offset into the original text.
	Start int

	// End is the raw (pre-trim) end offset into the original text.
	End int
}

// SearchOptions configures a similarity query.
type SearchOptions struct {
	// Limit is the maximum number of results, 1-100. Zero means the
	// engine default.
	Limit int

	// MinSimilarity drops results scoring below this value, 0-1. It
	// only tightens the engine's base threshold, never loosens it.
	MinSimilarity float64

	// IncludeMetadata controls whether results carry document metadata.
	IncludeMetadata bool
}

// SearchResult is a single similarity hit. Produced transiently per
// query, never persisted.
type SearchResult struct {
	// ID is the matched document's identifier.
	ID string

	// Content is the matched document's full text.
	Content string

	// Metadata is the document metadata, nil when not requested.
	Metadata map[string]any

	// Similarity is the cosine similarity to the query, conceptually
	// in [-1, 1]; results below the configured floor are never returned.
	Similarity float64
}

// HealthStatus reports subsystem connectivity. Probe failures downgrade
// to false rather than propagating.
type HealthStatus struct {
	// StoreHealthy is true when the document store answered the probe.
	StoreHealthy bool

	// BackendHealthy is true when the embedding backend answered the probe.
	BackendHealthy bool

	// DocumentCount is the best-effort corpus size, 0 on probe failure.
	DocumentCount int
}
