// Package embeddings converts text into fixed-dimension vectors. The
// engine fronts an external backend with a content-hash LRU cache,
// chunking for oversized text, sequential rate-limited chunk calls, and a
// per-call retry policy with exponential backoff.
package embeddings

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/kenjiroe/lufykms-go/internal/chunker"
	"github.com/kenjiroe/lufykms-go/internal/core/domain"
	"github.com/kenjiroe/lufykms-go/internal/core/ports/driven"
	"github.com/kenjiroe/lufykms-go/internal/vectormath"
)

// Default configuration values.
const (
	DefaultMaxCharsPerChunk = 8000
	DefaultCacheSize        = 100
	DefaultMaxAttempts      = 3
	DefaultRetryBaseDelay   = 1000 * time.Millisecond
	DefaultBackoffFactor    = 1.5
	DefaultCallTimeout      = 30 * time.Second
	DefaultChunkInterval    = 100 * time.Millisecond
)

// Config holds configuration for the embedding engine.
type Config struct {
	// MaxCharsPerChunk is the largest text passed to the backend in one
	// call; longer text is chunked (default: 8000).
	MaxCharsPerChunk int

	// CacheSize is the maximum number of cached content vectors
	// (default: 100). Eviction is least-recently-used.
	CacheSize int

	// MaxAttempts is the number of tries per backend call (default: 3).
	MaxAttempts int

	// RetryBaseDelay is the wait after the first failed attempt
	// (default: 1s). Each further failure multiplies it by BackoffFactor.
	RetryBaseDelay time.Duration

	// BackoffFactor grows the retry delay (default: 1.5).
	BackoffFactor float64

	// CallTimeout bounds each individual backend call (default: 30s).
	CallTimeout time.Duration

	// ChunkInterval is the minimum spacing between successive chunk
	// calls within one generation (default: 100ms).
	ChunkInterval time.Duration

	// Logger receives pipeline diagnostics. May be nil.
	Logger driven.Logger
}

// Stats reports cache effectiveness counters.
type Stats struct {
	Hits   uint64
	Misses uint64
	Size   int
}

// Engine generates embeddings with caching, chunking and retry.
// Chunk calls within one generation are strictly sequential; independent
// generations may run concurrently.
type Engine struct {
	backend driven.EmbeddingBackend
	cache   *lru.Cache[string, []float32]
	limiter *rate.Limiter
	cfg     Config
	log     driven.Logger

	hits   atomic.Uint64
	misses atomic.Uint64
}

// New creates an embedding engine in front of backend.
func New(backend driven.EmbeddingBackend, cfg Config) (*Engine, error) {
	if backend == nil {
		return nil, errors.New("embeddings: backend is required")
	}
	if cfg.MaxCharsPerChunk <= 0 {
		cfg.MaxCharsPerChunk = DefaultMaxCharsPerChunk
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultCacheSize
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = DefaultRetryBaseDelay
	}
	if cfg.BackoffFactor <= 1 {
		cfg.BackoffFactor = DefaultBackoffFactor
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = DefaultCallTimeout
	}
	if cfg.ChunkInterval <= 0 {
		cfg.ChunkInterval = DefaultChunkInterval
	}

	cache, err := lru.New[string, []float32](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}

	return &Engine{
		backend: backend,
		cache:   cache,
		limiter: rate.NewLimiter(rate.Every(cfg.ChunkInterval), 1),
		cfg:     cfg,
		log:     cfg.Logger,
	}, nil
}

// GenerateEmbedding returns the embedding for text, serving repeats from
// the content-hash cache. Text longer than MaxCharsPerChunk is chunked,
// each chunk embedded sequentially, and the chunk vectors averaged; any
// chunk failure aborts the whole operation with nothing cached.
func (e *Engine) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	key := contentHash(text)

	if vec, ok := e.cache.Get(key); ok {
		e.hits.Add(1)
		e.debugf("embedding cache hit (%d dims)", len(vec))
		return vec, nil
	}
	e.misses.Add(1)

	var (
		vec []float32
		err error
	)
	if len(text) <= e.cfg.MaxCharsPerChunk {
		vec, err = e.embedWithRetry(ctx, text)
	} else {
		vec, err = e.embedChunked(ctx, text)
	}
	if err != nil {
		return nil, err
	}

	e.cache.Add(key, vec)
	return vec, nil
}

// embedChunked splits text, embeds every chunk in order with rate-limit
// spacing, and averages the chunk vectors.
func (e *Engine) embedChunked(ctx context.Context, text string) ([]float32, error) {
	chunks := chunker.Split(text, e.cfg.MaxCharsPerChunk)
	e.debugf("embedding %d chars in %d chunks", len(text), len(chunks))

	vectors := make([][]float32, 0, len(chunks))
	for i, chunk := range chunks {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
		vec, err := e.embedWithRetry(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("chunk %d of %d: %w", i, len(chunks), err)
		}
		vectors = append(vectors, vec)
	}

	avg, err := vectormath.Average(vectors)
	if err != nil {
		return nil, fmt.Errorf("aggregate chunk embeddings: %w", err)
	}
	return avg, nil
}

// embedWithRetry performs one logical backend call under the retry
// policy: MaxAttempts tries, each bounded by CallTimeout, with
// exponentially growing waits between failures.
func (e *Engine) embedWithRetry(ctx context.Context, text string) ([]float32, error) {
	delay := e.cfg.RetryBaseDelay

	var lastErr error
	for attempt := 1; attempt <= e.cfg.MaxAttempts; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, e.cfg.CallTimeout)
		vec, err := e.backend.Embed(callCtx, text)
		cancel()
		if err == nil {
			return vec, nil
		}
		lastErr = err

		// A cancelled parent means the caller is gone; do not retry.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if attempt < e.cfg.MaxAttempts {
			e.warnf("embed attempt %d/%d failed: %v (retrying in %s)",
				attempt, e.cfg.MaxAttempts, err, delay)
			if err := sleep(ctx, delay); err != nil {
				return nil, err
			}
			delay = time.Duration(float64(delay) * e.cfg.BackoffFactor)
		}
	}

	if errors.Is(lastErr, context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w after %d attempts: %v",
			domain.ErrTimeout, e.cfg.MaxAttempts, lastErr)
	}
	return nil, fmt.Errorf("%w after %d attempts: %v",
		domain.ErrEmbeddingBackend, e.cfg.MaxAttempts, lastErr)
}

// Ping validates the underlying backend is reachable.
func (e *Engine) Ping(ctx context.Context) error {
	return e.backend.Ping(ctx)
}

// ModelName returns the backend's embedding model identifier.
func (e *Engine) ModelName() string {
	return e.backend.ModelName()
}

// CacheStats returns hit/miss counters and the current cache size.
func (e *Engine) CacheStats() Stats {
	return Stats{
		Hits:   e.hits.Load(),
		Misses: e.misses.Load(),
		Size:   e.cache.Len(),
	}
}

// ClearCache drops every cached vector.
func (e *Engine) ClearCache() {
	e.cache.Purge()
}

// contentHash returns the stable cache key for text.
func contentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (e *Engine) debugf(format string, args ...any) {
	if e.log != nil {
		e.log.Debug(format, args...)
	}
}

func (e *Engine) warnf(format string, args ...any) {
	if e.log != nil {
		e.log.Warn(format, args...)
	}
}
