package driven

import (
	"context"

	"github.com/kenjiroe/lufykms-go/internal/core/domain"
)

// DocumentStore persists documents. No transactional guarantees are
// assumed beyond per-call atomicity.
type DocumentStore interface {
	// Save stores or updates a document and returns its ID.
	Save(ctx context.Context, doc *domain.Document) (string, error)

	// Get retrieves a document by ID.
	// Returns domain.ErrNotFound when the ID is unknown.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// ListAll returns every stored document.
	ListAll(ctx context.Context) ([]domain.Document, error)

	// Delete removes a document by ID.
	// Returns domain.ErrNotFound when the ID is unknown.
	Delete(ctx context.Context, id string) error

	// ClearAll removes every document and returns the count removed.
	ClearAll(ctx context.Context) (int, error)

	// Ping validates the store is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
