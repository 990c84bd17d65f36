// Package memory provides an in-memory document store, used in tests and
// for ephemeral deployments.
package memory

import (
	"context"
	"sync"

	"github.com/kenjiroe/lufykms-go/internal/core/domain"
	"github.com/kenjiroe/lufykms-go/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	order     []string
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
	}
}

// Save stores or updates a document and returns its ID.
func (s *DocumentStore) Save(_ context.Context, doc *domain.Document) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.documents[doc.ID]; !exists {
		s.order = append(s.order, doc.ID)
	}
	s.documents[doc.ID] = *doc
	return doc.ID, nil
}

// Get retrieves a document by ID.
func (s *DocumentStore) Get(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// ListAll returns every stored document in insertion order.
func (s *DocumentStore) ListAll(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Document, 0, len(s.documents))
	for _, id := range s.order {
		result = append(result, s.documents[id])
	}
	return result, nil
}

// Delete removes a document by ID.
func (s *DocumentStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.documents, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// ClearAll removes every document and returns the count removed.
func (s *DocumentStore) ClearAll(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := len(s.documents)
	s.documents = make(map[string]domain.Document)
	s.order = nil
	return count, nil
}

// Ping always succeeds for the in-memory store.
func (s *DocumentStore) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (s *DocumentStore) Close() error {
	return nil
}
