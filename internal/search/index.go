// Package search maintains a Bleve full-text index over library entries so
// the list endpoint can answer title and author queries.
package search

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/tinykiri/readiculous/internal/domain"
)

// Index wraps a Bleve index over library entries.
//
// All public methods are safe for concurrent use.
type Index struct {
	index   bleve.Index
	path    string
	rebuilt bool
	logger  *slog.Logger
	mu      sync.RWMutex
}

// Options configures the search index.
type Options struct {
	DataPath string       // Directory for index storage
	Logger   *slog.Logger // Logger for operations (uses stderr if nil)
}

// mappingVersion is incremented whenever the index mapping changes,
// triggering a rebuild on startup.
const mappingVersion = "1"

// New creates or opens the search index under opts.DataPath. A corrupted or
// outdated index is removed and recreated.
func New(opts Options) (*Index, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	indexPath := filepath.Join(opts.DataPath, "library.bleve")
	versionPath := filepath.Join(opts.DataPath, "library.version")

	var index bleve.Index
	var err error
	needsRebuild := false

	indexExists := false
	if _, statErr := os.Stat(indexPath); statErr == nil {
		indexExists = true
	}

	if indexExists {
		existingVersion, readErr := os.ReadFile(versionPath)
		if readErr != nil || string(existingVersion) != mappingVersion {
			logger.Info("search index mapping outdated, will rebuild",
				"new_version", mappingVersion,
			)
			needsRebuild = true
		}
	}

	if !needsRebuild && indexExists {
		index, err = bleve.Open(indexPath)
		if err != nil {
			logger.Warn("failed to open existing index, will recreate",
				"path", indexPath,
				"error", err,
			)
			needsRebuild = true
		}
	}

	if needsRebuild {
		if removeErr := os.RemoveAll(indexPath); removeErr != nil {
			return nil, fmt.Errorf("remove old index: %w", removeErr)
		}
		index = nil
	}

	if index == nil {
		index, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
		if writeErr := os.WriteFile(versionPath, []byte(mappingVersion), 0644); writeErr != nil {
			logger.Warn("failed to write search version file", "error", writeErr)
		}
		logger.Info("created new search index", "path", indexPath)
	} else {
		logger.Info("opened existing search index", "path", indexPath)
	}

	return &Index{
		index:   index,
		path:    indexPath,
		rebuilt: needsRebuild,
		logger:  logger,
	}, nil
}

// Rebuilt reports whether New discarded an existing index. The caller is
// expected to backfill documents from the store when this is true.
func (s *Index) Rebuilt() bool {
	return s.rebuilt
}

// Close closes the index and releases resources.
func (s *Index) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexEntry adds or updates an entry in the index.
func (s *Index) IndexEntry(e *domain.LibraryEntry) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.index.Index(e.ID, map[string]any{
		"id":      e.ID,
		"user_id": e.UserID,
		"title":   e.Title,
		"author":  e.Author,
	})
}

// IndexEntries indexes multiple entries in a batch. Used when rebuilding the
// index from the store on startup.
func (s *Index) IndexEntries(entries []domain.LibraryEntry) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	batch := s.index.NewBatch()
	for i := range entries {
		e := &entries[i]
		err := batch.Index(e.ID, map[string]any{
			"id":      e.ID,
			"user_id": e.UserID,
			"title":   e.Title,
			"author":  e.Author,
		})
		if err != nil {
			return fmt.Errorf("batch index %s: %w", e.ID, err)
		}
	}

	return s.index.Batch(batch)
}

// DeleteEntry removes an entry from the index.
func (s *Index) DeleteEntry(id string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(id)
}

// DocumentCount returns the total number of indexed entries.
func (s *Index) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}
