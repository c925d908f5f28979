package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/tinykiri/readiculous/internal/config"
	"github.com/tinykiri/readiculous/internal/logger"
	"github.com/tinykiri/readiculous/internal/search"
)

// SearchIndexHandle wraps the bleve index with shutdown capability.
type SearchIndexHandle struct {
	*search.Index
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the full-text search index. A fresh or rebuilt
// index is backfilled from the store so existing entries stay searchable.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	idx, err := search.New(search.Options{
		DataPath: cfg.Data.BasePath,
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	if idx.Rebuilt() {
		st := do.MustInvoke[*StoreHandle](i)
		entries, err := st.AllEntries(context.Background())
		if err != nil {
			return nil, err
		}
		if err := idx.IndexEntries(entries); err != nil {
			return nil, err
		}
		log.Info("Search index rebuilt from store", "entries", len(entries))
	}

	count, err := idx.DocumentCount()
	if err == nil {
		log.Info("Search index ready", "documents", count)
	}

	return &SearchIndexHandle{Index: idx}, nil
}
