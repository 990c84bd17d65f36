package driving

import (
	"context"

	"github.com/kenjiroe/lufykms-go/internal/core/domain"
)

// KnowledgeService is the ingestion and mutation entry point. Every
// mutation invalidates both retrieval cache levels before returning.
type KnowledgeService interface {
	// AddDocument embeds and persists new content, returning the new ID.
	AddDocument(ctx context.Context, content string, metadata map[string]any) (string, error)

	// UpdateDocument replaces content and/or merges metadata. Content is
	// re-embedded only when it actually changed. A nil content pointer
	// leaves content untouched.
	UpdateDocument(ctx context.Context, id string, content *string, metadata map[string]any) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns every stored document.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// DeleteDocument removes a document by ID.
	DeleteDocument(ctx context.Context, id string) error

	// ClearAllDocuments removes everything and returns the count removed.
	ClearAllDocuments(ctx context.Context) (int, error)

	// GetHealthStatus probes store and backend connectivity. It never
	// fails; probe errors downgrade to false.
	GetHealthStatus(ctx context.Context) domain.HealthStatus
}
