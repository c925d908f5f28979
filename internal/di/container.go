// Package di provides dependency injection configuration for the readiculous server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/tinykiri/readiculous/internal/catalog"
	"github.com/tinykiri/readiculous/internal/config"
	"github.com/tinykiri/readiculous/internal/di/providers"
	"github.com/tinykiri/readiculous/internal/identity"
	"github.com/tinykiri/readiculous/internal/logger"
	"github.com/tinykiri/readiculous/internal/recommend"
	"github.com/tinykiri/readiculous/internal/service"
	"github.com/tinykiri/readiculous/internal/storage"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Persistence layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideCache)
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideStorage)

	// External clients
	do.Provide(injector, providers.ProvideIdentityClient)
	do.Provide(injector, providers.ProvideCatalogClient)
	do.Provide(injector, providers.ProvideAggregator)

	// Business services
	do.Provide(injector, providers.ProvideLibraryService)
	do.Provide(injector, providers.ProvideQuoteService)
	do.Provide(injector, providers.ProvideProfileService)
	do.Provide(injector, providers.ProvideRecommendationService)

	// HTTP server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap invokes all providers in dependency order, starting the server.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.CacheHandle](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*storage.Storage](injector)
	_ = do.MustInvoke[*identity.Client](injector)
	_ = do.MustInvoke[*catalog.Client](injector)
	_ = do.MustInvoke[*recommend.Aggregator](injector)

	_ = do.MustInvoke[*service.LibraryService](injector)
	_ = do.MustInvoke[*service.QuoteService](injector)
	_ = do.MustInvoke[*service.ProfileService](injector)
	_ = do.MustInvoke[*service.RecommendationService](injector)

	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
