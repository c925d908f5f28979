package providers

import (
	"github.com/samber/do/v2"

	"github.com/tinykiri/readiculous/internal/catalog"
	"github.com/tinykiri/readiculous/internal/config"
	"github.com/tinykiri/readiculous/internal/identity"
	"github.com/tinykiri/readiculous/internal/logger"
	"github.com/tinykiri/readiculous/internal/recommend"
)

// ProvideIdentityClient provides the auth provider client.
func ProvideIdentityClient(i do.Injector) (*identity.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return identity.NewClient(identity.Options{
		ProviderURL: cfg.Auth.ProviderURL,
		ServiceKey:  cfg.Auth.ServiceKey,
		Timeout:     cfg.Auth.Timeout,
		Logger:      log.Logger,
	}), nil
}

// ProvideCatalogClient provides the external book catalog client.
func ProvideCatalogClient(i do.Injector) (*catalog.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Catalog.APIKey == "" {
		log.Warn("No catalog API key configured; recommendations will be empty")
	}

	return catalog.NewClient(catalog.Options{
		BaseURL: cfg.Catalog.BaseURL,
		APIKey:  cfg.Catalog.APIKey,
		Timeout: cfg.Catalog.Timeout,
		Logger:  log.Logger,
	}), nil
}

// ProvideAggregator provides the recommendation aggregator.
func ProvideAggregator(i do.Injector) (*recommend.Aggregator, error) {
	catalogClient := do.MustInvoke[*catalog.Client](i)
	log := do.MustInvoke[*logger.Logger](i)

	return recommend.NewAggregator(catalogClient, log.Logger), nil
}
