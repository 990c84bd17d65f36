// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - DocumentStore: Document persistence (memory or SQLite)
//   - EmbeddingBackend: Converts text into embedding vectors
//
// # Optional Interfaces
//
//   - Logger: Observability sink. When nil, services stay silent.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
