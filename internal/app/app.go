// Package app composes the service graph: configuration, logger,
// embedding backend, document store, engine and the two services.
package app

import (
	"context"
	"fmt"

	"github.com/kenjiroe/lufykms-go/internal/adapters/driven/config/file"
	"github.com/kenjiroe/lufykms-go/internal/adapters/driven/embedding/ollama"
	"github.com/kenjiroe/lufykms-go/internal/adapters/driven/embedding/openai"
	"github.com/kenjiroe/lufykms-go/internal/adapters/driven/storage/memory"
	"github.com/kenjiroe/lufykms-go/internal/adapters/driven/storage/sqlite"
	"github.com/kenjiroe/lufykms-go/internal/core/ports/driven"
	"github.com/kenjiroe/lufykms-go/internal/core/ports/driving"
	"github.com/kenjiroe/lufykms-go/internal/core/services"
	"github.com/kenjiroe/lufykms-go/internal/embeddings"
	"github.com/kenjiroe/lufykms-go/internal/logger"
)

// Supported embedding backends.
const (
	BackendOllama = "ollama"
	BackendOpenAI = "openai"
)

// Options selects the adapters the graph is built from.
type Options struct {
	// ConfigDir holds config.toml. Required.
	ConfigDir string

	// DataDir holds the SQLite database. Empty selects the in-memory store.
	DataDir string

	// Backend names the embedding backend (default: ollama).
	Backend string

	// OpenAI configures the OpenAI backend when selected.
	OpenAI openai.Config

	// Ollama configures the Ollama backend when selected.
	Ollama ollama.Config

	// Verbose enables debug logging.
	Verbose bool
}

// App is the assembled application graph.
type App struct {
	Knowledge driving.KnowledgeService
	Search    driving.SearchService
	Log       *logger.Logger

	config  *file.ConfigStore
	store   driven.DocumentStore
	backend driven.EmbeddingBackend
}

// New builds the graph from opts and the persisted settings.
func New(opts Options) (*App, error) {
	log := logger.New()
	log.SetVerbose(opts.Verbose)

	cfg, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	settings := cfg.Settings()

	backend, err := newBackend(opts, settings)
	if err != nil {
		return nil, err
	}

	var store driven.DocumentStore
	if opts.DataDir != "" {
		store, err = sqlite.NewStore(opts.DataDir)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
	} else {
		store = memory.NewDocumentStore()
	}

	engine, err := embeddings.New(backend, embeddings.Config{
		MaxCharsPerChunk: settings.MaxCharsPerChunk,
		CacheSize:        settings.CacheSize,
		Logger:           log,
	})
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}

	search := services.NewSearchService(engine, store, services.SearchConfig{
		DocumentCacheTTL: settings.DocumentCacheTTL(),
		QueryCacheTTL:    settings.SearchCacheTTL(),
		MinSimilarity:    &settings.MinSimilarityThreshold,
		DefaultLimit:     settings.SearchResultLimit,
		Logger:           log,
	})
	knowledge := services.NewKnowledgeService(engine, search, store, log)

	return &App{
		Knowledge: knowledge,
		Search:    search,
		Log:       log,
		config:    cfg,
		store:     store,
		backend:   backend,
	}, nil
}

// newBackend constructs the selected embedding backend. For OpenAI an
// unset model name falls back to the persisted embedding_model setting.
func newBackend(opts Options, settings file.Settings) (driven.EmbeddingBackend, error) {
	name := opts.Backend
	if name == "" {
		name = BackendOllama
	}

	switch name {
	case BackendOllama:
		return ollama.NewBackend(opts.Ollama), nil
	case BackendOpenAI:
		cfg := opts.OpenAI
		if cfg.Model == "" {
			cfg.Model = settings.EmbeddingModel
		}
		backend, err := openai.NewBackend(cfg)
		if err != nil {
			return nil, fmt.Errorf("create backend: %w", err)
		}
		return backend, nil
	default:
		return nil, fmt.Errorf("unknown embedding backend %q", name)
	}
}

// Settings returns the current persisted settings.
func (a *App) Settings() file.Settings {
	return a.config.Settings()
}

// WatchConfig applies config file edits at runtime: caches are dropped
// so the next search runs under the new settings. Blocks until ctx is
// cancelled.
func (a *App) WatchConfig(ctx context.Context) error {
	return a.config.Watch(ctx, func(s file.Settings) {
		a.Log.Info("configuration reloaded from %s", a.config.Path())
		a.Search.InvalidateCaches()
	})
}

// Close releases the store and backend.
func (a *App) Close() error {
	var firstErr error
	if err := a.store.Close(); err != nil {
		firstErr = err
	}
	if err := a.backend.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
