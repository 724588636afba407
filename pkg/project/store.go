// Package project stores per-project defaults consumed by the config
// resolver: which provider and model a project prefers when the request
// carries no explicit choice.
package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Metadata is the durable per-project record. One record per project path;
// mutated only through explicit settings updates.
type Metadata struct {
	DefaultProviderID string    `json:"defaultProviderId,omitempty"`
	DefaultModel      string    `json:"defaultModel,omitempty"`
	LastAccessed      time.Time `json:"lastAccessed"`
}

// Store is the project metadata collaborator contract.
type Store interface {
	// Get returns the metadata for a project path, or nil when the project
	// has no record.
	Get(ctx context.Context, projectPath string) (*Metadata, error)

	// Set replaces the metadata for a project path.
	Set(ctx context.Context, projectPath string, meta Metadata) error
}

// FileStore keeps all project records in a single JSON document, written
// atomically via a temp file rename.
type FileStore struct {
	path   string
	mu     sync.RWMutex
	logger zerolog.Logger
}

// NewFileStore creates a store backed by the JSON document at path.
func NewFileStore(path string, logger zerolog.Logger) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("project store path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create project store directory: %w", err)
	}
	return &FileStore{
		path:   path,
		logger: logger.With().Str("component", "project-store").Logger(),
	}, nil
}

// Get returns the metadata for projectPath, or nil when absent.
func (s *FileStore) Get(ctx context.Context, projectPath string) (*Metadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, err := s.load()
	if err != nil {
		return nil, err
	}

	meta, ok := records[projectPath]
	if !ok {
		return nil, nil
	}
	return &meta, nil
}

// Set replaces the metadata for projectPath, stamping LastAccessed.
func (s *FileStore) Set(ctx context.Context, projectPath string, meta Metadata) error {
	if projectPath == "" {
		return errors.New("project path is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}

	meta.LastAccessed = time.Now()
	records[projectPath] = meta

	if err := s.save(records); err != nil {
		return err
	}

	s.logger.Debug().
		Str("projectPath", projectPath).
		Str("defaultProviderId", meta.DefaultProviderID).
		Str("defaultModel", meta.DefaultModel).
		Msg("Project metadata updated")

	return nil
}

func (s *FileStore) load() (map[string]Metadata, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]Metadata{}, nil
		}
		return nil, fmt.Errorf("failed to read project store: %w", err)
	}

	var records map[string]Metadata
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse project store: %w", err)
	}
	if records == nil {
		records = map[string]Metadata{}
	}
	return records, nil
}

func (s *FileStore) save(records map[string]Metadata) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal project store: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write project store: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace project store: %w", err)
	}
	return nil
}
