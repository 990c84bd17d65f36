// Package domain defines the core business entities for the knowledge store.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An ingested document with metadata and an optional embedding
//   - Chunk: A transient bounded substring produced while embedding long text
//   - SearchResult: A single similarity hit, never persisted
//   - SearchOptions: Per-query limit and filtering knobs
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
