package providers

import (
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/tinykiri/readiculous/internal/cache"
	"github.com/tinykiri/readiculous/internal/config"
	"github.com/tinykiri/readiculous/internal/logger"
	"github.com/tinykiri/readiculous/internal/store/sqlite"
)

// StoreHandle wraps the sqlite store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the sqlite store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := filepath.Join(cfg.Data.BasePath, "readiculous.db")
	st, err := sqlite.Open(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database opened", "path", dbPath)

	return &StoreHandle{Store: st}, nil
}

// CacheHandle wraps the recommendation cache with shutdown capability.
type CacheHandle struct {
	*cache.Cache
}

// Shutdown implements do.Shutdownable.
func (h *CacheHandle) Shutdown() error {
	return h.Close()
}

// ProvideCache provides the badger-backed recommendation cache.
func ProvideCache(i do.Injector) (*CacheHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	cachePath := filepath.Join(cfg.Data.BasePath, "cache")
	ca, err := cache.Open(cachePath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Recommendation cache opened", "path", cachePath)

	return &CacheHandle{Cache: ca}, nil
}
