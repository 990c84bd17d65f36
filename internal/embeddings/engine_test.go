package embeddings

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kenjiroe/lufykms-go/internal/core/domain"
)

// fakeBackend implements driven.EmbeddingBackend with call counting and
// scriptable failures.
type fakeBackend struct {
	mu        sync.Mutex
	calls     int
	failFirst int  // fail this many leading calls
	block     bool // block until the call context is done
	embedding []float32
}

func (b *fakeBackend) Embed(ctx context.Context, text string) ([]float32, error) {
	b.mu.Lock()
	b.calls++
	n := b.calls
	b.mu.Unlock()

	if b.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if n <= b.failFirst {
		return nil, errors.New("backend unavailable")
	}
	if b.embedding != nil {
		return b.embedding, nil
	}
	// Deterministic per-text vector so aggregates are checkable.
	return []float32{float32(len(text)), 1}, nil
}

func (b *fakeBackend) Dimensions() int              { return 2 }
func (b *fakeBackend) ModelName() string            { return "fake-embed" }
func (b *fakeBackend) Ping(_ context.Context) error { return nil }
func (b *fakeBackend) Close() error                 { return nil }

func (b *fakeBackend) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

// fastConfig keeps retry and pacing delays negligible for tests.
func fastConfig() Config {
	return Config{
		MaxCharsPerChunk: 100,
		RetryBaseDelay:   time.Millisecond,
		ChunkInterval:    time.Millisecond,
	}
}

func TestNew_RequiresBackend(t *testing.T) {
	_, err := New(nil, Config{})
	assert.Error(t, err)
}

func TestGenerateEmbedding_SingleChunk(t *testing.T) {
	backend := &fakeBackend{embedding: []float32{1, 2, 3}}
	engine, err := New(backend, fastConfig())
	require.NoError(t, err)

	vec, err := engine.GenerateEmbedding(context.Background(), "short text")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, vec)
	assert.Equal(t, 1, backend.callCount())
}

func TestGenerateEmbedding_CacheHit(t *testing.T) {
	backend := &fakeBackend{embedding: []float32{1, 2}}
	engine, err := New(backend, fastConfig())
	require.NoError(t, err)

	ctx := context.Background()
	first, err := engine.GenerateEmbedding(ctx, "same text")
	require.NoError(t, err)
	second, err := engine.GenerateEmbedding(ctx, "same text")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, backend.callCount(), "second call must be served from cache")

	stats := engine.CacheStats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, 1, stats.Size)
}

func TestGenerateEmbedding_DistinctTextsMiss(t *testing.T) {
	backend := &fakeBackend{embedding: []float32{1}}
	engine, err := New(backend, fastConfig())
	require.NoError(t, err)

	ctx := context.Background()
	_, err = engine.GenerateEmbedding(ctx, "first")
	require.NoError(t, err)
	_, err = engine.GenerateEmbedding(ctx, "second")
	require.NoError(t, err)

	assert.Equal(t, 2, backend.callCount())
}

func TestGenerateEmbedding_ChunkedAndAveraged(t *testing.T) {
	backend := &fakeBackend{embedding: []float32{4, 8}}
	engine, err := New(backend, fastConfig())
	require.NoError(t, err)

	// 250 unbroken chars with MaxCharsPerChunk 100 gives 3 chunks.
	text := strings.Repeat("x", 250)
	vec, err := engine.GenerateEmbedding(context.Background(), text)
	require.NoError(t, err)

	assert.Equal(t, 3, backend.callCount())
	assert.Equal(t, []float32{4, 8}, vec, "average of identical chunk vectors")

	// The aggregate, not the chunk vectors, is cached.
	_, err = engine.GenerateEmbedding(context.Background(), text)
	require.NoError(t, err)
	assert.Equal(t, 3, backend.callCount())
}

func TestGenerateEmbedding_RetriesThenSucceeds(t *testing.T) {
	backend := &fakeBackend{failFirst: 2, embedding: []float32{1}}
	engine, err := New(backend, fastConfig())
	require.NoError(t, err)

	vec, err := engine.GenerateEmbedding(context.Background(), "flaky")
	require.NoError(t, err)
	assert.Equal(t, []float32{1}, vec)
	assert.Equal(t, 3, backend.callCount())
}

func TestGenerateEmbedding_RetriesExhausted(t *testing.T) {
	backend := &fakeBackend{failFirst: 100}
	engine, err := New(backend, fastConfig())
	require.NoError(t, err)

	_, err = engine.GenerateEmbedding(context.Background(), "doomed")
	assert.ErrorIs(t, err, domain.ErrEmbeddingBackend)
	assert.Equal(t, 3, backend.callCount())

	// Failures are never cached; the next call goes to the backend again.
	_, err = engine.GenerateEmbedding(context.Background(), "doomed")
	assert.ErrorIs(t, err, domain.ErrEmbeddingBackend)
	assert.Equal(t, 6, backend.callCount())
}

func TestGenerateEmbedding_TimeoutSurfaces(t *testing.T) {
	backend := &fakeBackend{block: true}
	cfg := fastConfig()
	cfg.MaxAttempts = 1
	cfg.CallTimeout = 10 * time.Millisecond
	engine, err := New(backend, cfg)
	require.NoError(t, err)

	_, err = engine.GenerateEmbedding(context.Background(), "slow")
	assert.ErrorIs(t, err, domain.ErrTimeout)
}

func TestGenerateEmbedding_ChunkFailureAborts(t *testing.T) {
	// First chunk succeeds; every later call fails, so the second chunk
	// exhausts its retries and the generation aborts.
	cfg := fastConfig()
	cfg.MaxAttempts = 1
	scripted := &scriptedBackend{succeedFirst: 1}
	engine, err := New(scripted, cfg)
	require.NoError(t, err)

	text := strings.Repeat("y", 250)
	_, err = engine.GenerateEmbedding(context.Background(), text)
	assert.ErrorIs(t, err, domain.ErrEmbeddingBackend)

	// Nothing was cached for the failed generation.
	stats := engine.CacheStats()
	assert.Equal(t, 0, stats.Size)
}

// scriptedBackend succeeds for the first succeedFirst calls, then fails.
type scriptedBackend struct {
	mu           sync.Mutex
	calls        int
	succeedFirst int
}

func (b *scriptedBackend) Embed(_ context.Context, _ string) ([]float32, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.calls <= b.succeedFirst {
		return []float32{1, 2}, nil
	}
	return nil, errors.New("backend unavailable")
}

func (b *scriptedBackend) Dimensions() int              { return 2 }
func (b *scriptedBackend) ModelName() string            { return "scripted" }
func (b *scriptedBackend) Ping(_ context.Context) error { return nil }
func (b *scriptedBackend) Close() error                 { return nil }

func TestGenerateEmbedding_ContextCancelled(t *testing.T) {
	backend := &fakeBackend{failFirst: 100}
	engine, err := New(backend, fastConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = engine.GenerateEmbedding(ctx, "cancelled")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCache_LRUEviction(t *testing.T) {
	backend := &fakeBackend{embedding: []float32{1}}
	cfg := fastConfig()
	cfg.CacheSize = 2
	engine, err := New(backend, cfg)
	require.NoError(t, err)

	ctx := context.Background()
	for _, text := range []string{"a", "b", "c"} {
		_, err = engine.GenerateEmbedding(ctx, text)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, backend.callCount())

	// "a" was evicted as least recently used; "c" is still cached.
	_, err = engine.GenerateEmbedding(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, 3, backend.callCount())

	_, err = engine.GenerateEmbedding(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 4, backend.callCount())
}

func TestClearCache(t *testing.T) {
	backend := &fakeBackend{embedding: []float32{1}}
	engine, err := New(backend, fastConfig())
	require.NoError(t, err)

	ctx := context.Background()
	_, err = engine.GenerateEmbedding(ctx, "text")
	require.NoError(t, err)

	engine.ClearCache()
	assert.Equal(t, 0, engine.CacheStats().Size)

	_, err = engine.GenerateEmbedding(ctx, "text")
	require.NoError(t, err)
	assert.Equal(t, 2, backend.callCount())
}
