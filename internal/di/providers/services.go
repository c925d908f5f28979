package providers

import (
	"github.com/samber/do/v2"

	"github.com/tinykiri/readiculous/internal/logger"
	"github.com/tinykiri/readiculous/internal/recommend"
	"github.com/tinykiri/readiculous/internal/service"
	"github.com/tinykiri/readiculous/internal/storage"
)

// ProvideLibraryService provides the library service.
func ProvideLibraryService(i do.Injector) (*service.LibraryService, error) {
	st := do.MustInvoke[*StoreHandle](i)
	idx := do.MustInvoke[*SearchIndexHandle](i)
	ca := do.MustInvoke[*CacheHandle](i)
	blobs := do.MustInvoke[*storage.Storage](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewLibraryService(st.Store, idx.Index, ca.Cache, blobs, log.Logger), nil
}

// ProvideQuoteService provides the quote service.
func ProvideQuoteService(i do.Injector) (*service.QuoteService, error) {
	st := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewQuoteService(st.Store, log.Logger), nil
}

// ProvideProfileService provides the profile service.
func ProvideProfileService(i do.Injector) (*service.ProfileService, error) {
	st := do.MustInvoke[*StoreHandle](i)
	blobs := do.MustInvoke[*storage.Storage](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewProfileService(st.Store, blobs, log.Logger), nil
}

// ProvideRecommendationService provides the recommendation service.
func ProvideRecommendationService(i do.Injector) (*service.RecommendationService, error) {
	st := do.MustInvoke[*StoreHandle](i)
	ca := do.MustInvoke[*CacheHandle](i)
	agg := do.MustInvoke[*recommend.Aggregator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewRecommendationService(st.Store, ca.Cache, agg, log.Logger), nil
}
