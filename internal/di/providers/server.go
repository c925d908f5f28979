package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/tinykiri/readiculous/internal/api"
	"github.com/tinykiri/readiculous/internal/config"
	"github.com/tinykiri/readiculous/internal/identity"
	"github.com/tinykiri/readiculous/internal/logger"
	"github.com/tinykiri/readiculous/internal/service"
	"github.com/tinykiri/readiculous/internal/storage"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server and starts it in the background.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	searchHandle := do.MustInvoke[*SearchIndexHandle](i)
	blobs := do.MustInvoke[*storage.Storage](i)
	ident := do.MustInvoke[*identity.Client](i)

	services := &api.Services{
		Library:        do.MustInvoke[*service.LibraryService](i),
		Quote:          do.MustInvoke[*service.QuoteService](i),
		Profile:        do.MustInvoke[*service.ProfileService](i),
		Recommendation: do.MustInvoke[*service.RecommendationService](i),
	}

	handler := api.NewServer(storeHandle.Store, searchHandle.Index, services, ident, blobs, cfg.Server.CORSOrigins, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
