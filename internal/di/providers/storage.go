package providers

import (
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/tinykiri/readiculous/internal/config"
	"github.com/tinykiri/readiculous/internal/logger"
	"github.com/tinykiri/readiculous/internal/storage"
)

// ProvideStorage provides the local object storage for uploaded images.
func ProvideStorage(i do.Injector) (*storage.Storage, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	basePath := filepath.Join(cfg.Data.BasePath, "files")
	blobs, err := storage.New(basePath, cfg.Storage.PublicBaseURL)
	if err != nil {
		return nil, err
	}

	log.Info("Object storage ready", "path", basePath, "public_url", cfg.Storage.PublicBaseURL)

	return blobs, nil
}
