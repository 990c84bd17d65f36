// Package file provides a TOML-backed configuration store for the
// retrieval core's recognized options, with optional hot reload.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"
)

// Settings holds the recognized configuration options.
type Settings struct {
	// EmbeddingModel is the backend model identifier (informational).
	EmbeddingModel string `toml:"embedding_model"`

	// MaxCharsPerChunk is the largest text sent to the backend per call.
	MaxCharsPerChunk int `toml:"max_chars_per_chunk"`

	// CacheSize is the maximum number of embedding-cache entries.
	CacheSize int `toml:"cache_size"`

	// DocumentCacheTTLSeconds bounds the corpus snapshot's lifetime.
	DocumentCacheTTLSeconds int `toml:"document_cache_ttl_seconds"`

	// SearchCacheTTLSeconds bounds each cached query result's lifetime.
	SearchCacheTTLSeconds int `toml:"search_cache_ttl_seconds"`

	// MinSimilarityThreshold is the base score floor for search results.
	MinSimilarityThreshold float64 `toml:"min_similarity_threshold"`

	// SearchResultLimit is the default number of search results, 1-100.
	SearchResultLimit int `toml:"search_result_limit"`
}

// DefaultSettings returns the documented defaults.
func DefaultSettings() Settings {
	return Settings{
		EmbeddingModel:          "text-embedding-3-small",
		MaxCharsPerChunk:        8000,
		CacheSize:               100,
		DocumentCacheTTLSeconds: 3600,
		SearchCacheTTLSeconds:   1800,
		MinSimilarityThreshold:  0.1,
		SearchResultLimit:       5,
	}
}

// DocumentCacheTTL returns the snapshot TTL as a duration.
func (s Settings) DocumentCacheTTL() time.Duration {
	return time.Duration(s.DocumentCacheTTLSeconds) * time.Second
}

// SearchCacheTTL returns the query cache TTL as a duration.
func (s Settings) SearchCacheTTL() time.Duration {
	return time.Duration(s.SearchCacheTTLSeconds) * time.Second
}

// ConfigStore is a file-based settings store using TOML.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	settings Settings
}

// NewConfigStore creates a TOML-based config store.
// If configDir is empty, defaults to ~/.lufykms/config.toml. A missing
// file yields the defaults; it is written on first Save.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".lufykms")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	s := &ConfigStore{
		filePath: filepath.Join(configDir, "config.toml"),
		settings: DefaultSettings(),
	}

	if err := s.Load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	return s, nil
}

// Settings returns a copy of the current settings.
func (s *ConfigStore) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Update applies fn to the settings and persists the result.
func (s *ConfigStore) Update(fn func(*Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.settings)
	return s.save()
}

// Save persists the current settings to disk.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// save writes settings to the TOML file (caller must hold lock).
func (s *ConfigStore) save() error {
	data, err := toml.Marshal(s.settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	return os.WriteFile(s.filePath, data, 0600)
}

// Load reads settings from disk, replacing the in-memory copy. Unset
// keys keep their defaults.
func (s *ConfigStore) Load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	settings := DefaultSettings()
	if err := toml.Unmarshal(data, &settings); err != nil {
		return fmt.Errorf("parse %s: %w", s.filePath, err)
	}

	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
	return nil
}

// Path returns the config file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}

// Watch reloads settings whenever the config file changes on disk and
// reports each new snapshot to onChange. It blocks until ctx is done.
func (s *ConfigStore) Watch(ctx context.Context, onChange func(Settings)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors often replace the file rather than
	// write it in place, which would drop a file-level watch.
	if err := watcher.Add(filepath.Dir(s.filePath)); err != nil {
		return fmt.Errorf("watch config dir: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != s.filePath {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			if err := s.Load(); err != nil {
				continue
			}
			if onChange != nil {
				onChange(s.Settings())
			}
		case _, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
		}
	}
}
