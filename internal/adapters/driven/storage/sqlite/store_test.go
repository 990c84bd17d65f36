package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kenjiroe/lufykms-go/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func TestStore_SaveAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	now := time.Now()
	doc := &domain.Document{
		ID:        "doc-1",
		Content:   "hello world",
		Metadata:  map[string]any{"author": "Jane Doe", "priority": float64(3)},
		Embedding: []float32{0.25, -1.5, 3},
		CreatedAt: now,
		UpdatedAt: now,
	}

	id, err := store.Save(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, "doc-1", id)

	saved, err := store.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "hello world", saved.Content)
	assert.Equal(t, "Jane Doe", saved.Metadata["author"])
	assert.Equal(t, float64(3), saved.Metadata["priority"])
	assert.Equal(t, []float32{0.25, -1.5, 3}, saved.Embedding)
	assert.Equal(t, now.UnixNano(), saved.CreatedAt.UnixNano())
}

func TestStore_Get_NotFound(t *testing.T) {
	store := setupTestStore(t)
	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_Save_Upsert(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	now := time.Now()

	_, err := store.Save(ctx, &domain.Document{
		ID: "doc-1", Content: "original", CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)

	later := now.Add(time.Minute)
	_, err = store.Save(ctx, &domain.Document{
		ID: "doc-1", Content: "updated", CreatedAt: now, UpdatedAt: later,
	})
	require.NoError(t, err)

	saved, err := store.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "updated", saved.Content)
	assert.Equal(t, later.UnixNano(), saved.UpdatedAt.UnixNano())

	docs, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestStore_DocumentWithoutEmbedding(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.Save(ctx, &domain.Document{ID: "plain", Content: "no vector"})
	require.NoError(t, err)

	saved, err := store.Get(ctx, "plain")
	require.NoError(t, err)
	assert.Nil(t, saved.Embedding)
	assert.False(t, saved.HasEmbedding())
}

func TestStore_ListAll_InsertionOrder(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		_, err := store.Save(ctx, &domain.Document{ID: id})
		require.NoError(t, err)
	}

	docs, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "a", docs[0].ID)
	assert.Equal(t, "c", docs[2].ID)
}

func TestStore_Delete(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.Save(ctx, &domain.Document{ID: "doc-1"})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "doc-1"))
	assert.ErrorIs(t, store.Delete(ctx, "doc-1"), domain.ErrNotFound)
}

func TestStore_ClearAll(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		_, err := store.Save(ctx, &domain.Document{ID: id})
		require.NoError(t, err)
	}

	count, err := store.ClearAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	docs, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestStore_Ping(t *testing.T) {
	store := setupTestStore(t)
	assert.NoError(t, store.Ping(context.Background()))
}

func TestFloat32Roundtrip(t *testing.T) {
	in := []float32{0, 1.5, -2.25, 3.14159}
	out := bytesToFloat32Slice(float32SliceToBytes(in))
	assert.Equal(t, in, out)

	assert.Nil(t, float32SliceToBytes(nil))
	assert.Nil(t, bytesToFloat32Slice(nil))
}
