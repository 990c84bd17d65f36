package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kenjiroe/lufykms-go/internal/core/domain"
	"github.com/kenjiroe/lufykms-go/internal/core/ports/driven"
	"github.com/kenjiroe/lufykms-go/internal/core/ports/driving"
	"github.com/kenjiroe/lufykms-go/internal/embeddings"
	"github.com/kenjiroe/lufykms-go/internal/ttlcache"
	"github.com/kenjiroe/lufykms-go/internal/vectormath"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// Query validation bounds.
const (
	MaxQueryLength = 10000
	MinResultLimit = 1
	MaxResultLimit = 100
)

// Default search configuration values.
const (
	DefaultDocumentCacheTTL = 3600 * time.Second
	DefaultQueryCacheTTL    = 1800 * time.Second
	DefaultMinSimilarity    = 0.1
	DefaultResultLimit      = 5
)

// SearchConfig holds configuration for the search service.
type SearchConfig struct {
	// DocumentCacheTTL bounds the corpus snapshot's lifetime (default: 1h).
	DocumentCacheTTL time.Duration

	// QueryCacheTTL bounds each cached result list's lifetime (default: 30m).
	QueryCacheTTL time.Duration

	// MinSimilarity is the base score floor applied to every query.
	// Nil selects the default 0.1; point at 0 to disable the floor.
	// Request options can only raise the effective floor.
	MinSimilarity *float64

	// DefaultLimit is used when a query specifies no limit (default: 5).
	DefaultLimit int

	// Logger receives pipeline diagnostics. May be nil.
	Logger driven.Logger
}

// SearchService answers similarity queries with two cache levels: a
// single corpus snapshot of embedded documents and a per-key query
// result cache.
type SearchService struct {
	engine   *embeddings.Engine
	docStore driven.DocumentStore

	docCache   *ttlcache.Snapshot[[]domain.Document]
	queryCache *ttlcache.Cache[[]domain.SearchResult]

	minSimilarity float64
	defaultLimit  int
	log           driven.Logger
}

// NewSearchService creates a search service over the given engine and store.
func NewSearchService(engine *embeddings.Engine, docStore driven.DocumentStore, cfg SearchConfig) *SearchService {
	if cfg.DocumentCacheTTL <= 0 {
		cfg.DocumentCacheTTL = DefaultDocumentCacheTTL
	}
	if cfg.QueryCacheTTL <= 0 {
		cfg.QueryCacheTTL = DefaultQueryCacheTTL
	}
	minSimilarity := DefaultMinSimilarity
	if cfg.MinSimilarity != nil {
		minSimilarity = *cfg.MinSimilarity
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = DefaultResultLimit
	}

	return &SearchService{
		engine:        engine,
		docStore:      docStore,
		docCache:      ttlcache.NewSnapshot[[]domain.Document](cfg.DocumentCacheTTL),
		queryCache:    ttlcache.New[[]domain.SearchResult](cfg.QueryCacheTTL),
		minSimilarity: minSimilarity,
		defaultLimit:  cfg.DefaultLimit,
		log:           cfg.Logger,
	}
}

// SearchSimilar embeds the query, scores it against every embedded
// document, and returns the ranked matches. Results are served from the
// query cache when a live entry exists for the same query and options.
func (s *SearchService) SearchSimilar(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	if err := validateQuery(query, opts); err != nil {
		return nil, err
	}

	limit := opts.Limit
	if limit == 0 {
		limit = s.defaultLimit
	}

	key := cacheKey(query, limit, opts.MinSimilarity, opts.IncludeMetadata)
	if cached, ok := s.queryCache.Get(key); ok {
		s.debugf("query cache hit for %q", query)
		return cached, nil
	}

	queryVec, err := s.engine.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	corpus, err := s.loadCorpus(ctx)
	if err != nil {
		return nil, err
	}
	s.debugf("scoring %d embedded documents", len(corpus))

	// The request floor only ever tightens the engine's base floor.
	floor := s.minSimilarity
	if opts.MinSimilarity > floor {
		floor = opts.MinSimilarity
	}

	results := make([]domain.SearchResult, 0, len(corpus))
	for i := range corpus {
		doc := &corpus[i]
		sim, err := vectormath.CosineSimilarity(queryVec, doc.Embedding)
		if err != nil {
			// One corrupt embedding must not fail the whole search.
			s.warnf("skipping document %s: %v", doc.ID, err)
			continue
		}
		if sim < floor {
			continue
		}

		result := domain.SearchResult{
			ID:         doc.ID,
			Content:    doc.Content,
			Similarity: sim,
		}
		if opts.IncludeMetadata {
			result.Metadata = copyMetadata(doc.Metadata)
		}
		results = append(results, result)
	}

	// Stable: ties keep their original retrieval order.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if len(results) > limit {
		results = results[:limit]
	}

	s.queryCache.Set(key, results)
	return results, nil
}

// InvalidateCaches clears the corpus snapshot and every cached query
// result. Called by the knowledge facade on every mutation.
func (s *SearchService) InvalidateCaches() {
	s.docCache.Invalidate()
	s.queryCache.Invalidate()
}

// loadCorpus returns the documents that currently carry an embedding,
// refreshing the snapshot from the store on miss or expiry.
func (s *SearchService) loadCorpus(ctx context.Context) ([]domain.Document, error) {
	if docs, ok := s.docCache.Get(); ok {
		return docs, nil
	}

	all, err := s.docStore.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}

	embedded := make([]domain.Document, 0, len(all))
	for i := range all {
		if all[i].HasEmbedding() {
			embedded = append(embedded, all[i])
		}
	}

	s.docCache.Set(embedded)
	s.debugf("corpus snapshot refreshed: %d of %d documents embedded", len(embedded), len(all))
	return embedded, nil
}

// validateQuery fails fast on malformed input before any I/O happens.
func validateQuery(query string, opts domain.SearchOptions) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("query is empty: %w", domain.ErrInvalidQuery)
	}
	if utf8.RuneCountInString(query) > MaxQueryLength {
		return fmt.Errorf("query exceeds %d characters: %w", MaxQueryLength, domain.ErrInvalidQuery)
	}
	if opts.Limit != 0 && (opts.Limit < MinResultLimit || opts.Limit > MaxResultLimit) {
		return fmt.Errorf("limit %d outside [%d, %d]: %w",
			opts.Limit, MinResultLimit, MaxResultLimit, domain.ErrInvalidOptions)
	}
	if opts.MinSimilarity < 0 || opts.MinSimilarity > 1 {
		return fmt.Errorf("minSimilarity %g outside [0, 1]: %w",
			opts.MinSimilarity, domain.ErrInvalidOptions)
	}
	return nil
}

// cacheKey derives the query cache key from the normalised query text
// and the serialised option set.
func cacheKey(query string, limit int, minSimilarity float64, includeMetadata bool) string {
	normalised := strings.ToLower(strings.TrimSpace(query))
	return fmt.Sprintf("%s|%d|%g|%t", normalised, limit, minSimilarity, includeMetadata)
}

func copyMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return nil
	}
	out := make(map[string]any, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	return out
}

func (s *SearchService) debugf(format string, args ...any) {
	if s.log != nil {
		s.log.Debug(format, args...)
	}
}

func (s *SearchService) warnf(format string, args ...any) {
	if s.log != nil {
		s.log.Warn(format, args...)
	}
}
