package api

import (
	"github.com/tinykiri/readiculous/internal/service"
)

// Services groups the business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Library        *service.LibraryService
	Quote          *service.QuoteService
	Profile        *service.ProfileService
	Recommendation *service.RecommendationService
}
