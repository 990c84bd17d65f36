package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kenjiroe/lufykms-go/internal/core/domain"
	"github.com/kenjiroe/lufykms-go/internal/core/ports/driven"
	"github.com/kenjiroe/lufykms-go/internal/core/ports/driving"
	"github.com/kenjiroe/lufykms-go/internal/embeddings"
)

// Ensure KnowledgeService implements the interface.
var _ driving.KnowledgeService = (*KnowledgeService)(nil)

// KnowledgeService is the ingestion facade. It owns cache invalidation:
// every mutation clears both retrieval cache levels before returning, so
// a search issued strictly after a mutation always observes it.
type KnowledgeService struct {
	engine   *embeddings.Engine
	search   driving.SearchService
	docStore driven.DocumentStore
	log      driven.Logger

	now func() time.Time
}

// NewKnowledgeService creates the ingestion facade. The logger may be nil.
func NewKnowledgeService(
	engine *embeddings.Engine,
	search driving.SearchService,
	docStore driven.DocumentStore,
	log driven.Logger,
) *KnowledgeService {
	return &KnowledgeService{
		engine:   engine,
		search:   search,
		docStore: docStore,
		log:      log,
		now:      time.Now,
	}
}

// AddDocument embeds content synchronously, persists the document and
// invalidates both cache levels. Returns the new document's ID.
func (s *KnowledgeService) AddDocument(
	ctx context.Context, content string, metadata map[string]any,
) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("add document: %w", domain.ErrEmptyContent)
	}

	embedding, err := s.engine.GenerateEmbedding(ctx, content)
	if err != nil {
		return "", fmt.Errorf("add document: %w", err)
	}

	now := s.now()
	doc := &domain.Document{
		ID:        uuid.New().String(),
		Content:   content,
		Metadata:  copyMetadata(metadata),
		Embedding: embedding,
		CreatedAt: now,
		UpdatedAt: now,
	}

	id, err := s.docStore.Save(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("add document: %w", err)
	}

	s.search.InvalidateCaches()
	s.infof("document %s added (%d chars)", id, len(content))
	return id, nil
}

// UpdateDocument replaces content and/or merges metadata for an existing
// document. Content is re-embedded only when it actually changed; a
// metadata-only update keeps the stored embedding.
func (s *KnowledgeService) UpdateDocument(
	ctx context.Context, id string, content *string, metadata map[string]any,
) error {
	doc, err := s.docStore.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("update document %s: %w", id, err)
	}

	if content != nil && *content != doc.Content {
		if strings.TrimSpace(*content) == "" {
			return fmt.Errorf("update document %s: %w", id, domain.ErrEmptyContent)
		}
		embedding, err := s.engine.GenerateEmbedding(ctx, *content)
		if err != nil {
			return fmt.Errorf("update document %s: %w", id, err)
		}
		doc.Content = *content
		doc.Embedding = embedding
	}

	if len(metadata) > 0 {
		// Merge into a fresh map: the stored map may be aliased by the
		// corpus snapshot and read by a concurrent search.
		merged := copyMetadata(doc.Metadata)
		if merged == nil {
			merged = make(map[string]any, len(metadata))
		}
		for k, v := range metadata {
			merged[k] = v
		}
		doc.Metadata = merged
	}

	doc.UpdatedAt = s.now()
	if _, err := s.docStore.Save(ctx, doc); err != nil {
		return fmt.Errorf("update document %s: %w", id, err)
	}

	s.search.InvalidateCaches()
	s.infof("document %s updated", id)
	return nil
}

// GetDocument retrieves a document by ID.
func (s *KnowledgeService) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	return s.docStore.Get(ctx, id)
}

// ListDocuments returns every stored document.
func (s *KnowledgeService) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	return s.docStore.ListAll(ctx)
}

// DeleteDocument removes a document and invalidates both cache levels.
func (s *KnowledgeService) DeleteDocument(ctx context.Context, id string) error {
	if err := s.docStore.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}

	s.search.InvalidateCaches()
	s.infof("document %s deleted", id)
	return nil
}

// ClearAllDocuments removes every document, invalidates both cache
// levels and returns the count removed.
func (s *KnowledgeService) ClearAllDocuments(ctx context.Context) (int, error) {
	count, err := s.docStore.ClearAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear documents: %w", err)
	}

	s.search.InvalidateCaches()
	s.infof("%d documents cleared", count)
	return count, nil
}

// GetHealthStatus probes store and backend connectivity. Probe failures
// downgrade to false; this method never fails.
func (s *KnowledgeService) GetHealthStatus(ctx context.Context) domain.HealthStatus {
	status := domain.HealthStatus{}

	if err := s.docStore.Ping(ctx); err == nil {
		status.StoreHealthy = true
	} else {
		s.warnf("store health probe failed: %v", err)
	}

	if err := s.engine.Ping(ctx); err == nil {
		status.BackendHealthy = true
	} else {
		s.warnf("backend health probe failed: %v", err)
	}

	// Best effort: a failing count leaves 0 rather than failing the probe.
	if docs, err := s.docStore.ListAll(ctx); err == nil {
		status.DocumentCount = len(docs)
	}

	return status
}

func (s *KnowledgeService) infof(format string, args ...any) {
	if s.log != nil {
		s.log.Info(format, args...)
	}
}

func (s *KnowledgeService) warnf(format string, args ...any) {
	if s.log != nil {
		s.log.Warn(format, args...)
	}
}
