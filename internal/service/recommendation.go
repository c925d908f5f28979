package service

import (
	"context"
	"log/slog"

	"github.com/tinykiri/readiculous/internal/cache"
	"github.com/tinykiri/readiculous/internal/domain"
	"github.com/tinykiri/readiculous/internal/errors"
	"github.com/tinykiri/readiculous/internal/recommend"
	"github.com/tinykiri/readiculous/internal/store/sqlite"
)

// RecommendationService derives and caches book recommendations.
type RecommendationService struct {
	store      *sqlite.Store
	cache      *cache.Cache
	aggregator *recommend.Aggregator
	logger     *slog.Logger
}

// NewRecommendationService creates a new recommendation service.
func NewRecommendationService(st *sqlite.Store, ca *cache.Cache, agg *recommend.Aggregator, logger *slog.Logger) *RecommendationService {
	return &RecommendationService{
		store:      st,
		cache:      ca,
		aggregator: agg,
		logger:     logger,
	}
}

// Recommendations holds a recommendation response: the derived preference
// profile plus the ranked candidates.
type Recommendations struct {
	Profile    domain.PreferenceProfile         `json:"profile"`
	Candidates []domain.RecommendationCandidate `json:"candidates"`
}

// GetRecommendations returns recommendations for a user's current library,
// serving from cache when a fresh result exists.
func (s *RecommendationService) GetRecommendations(ctx context.Context, userID string) (*Recommendations, error) {
	if cached, err := s.cachedRecommendations(userID); cached != nil {
		return cached, nil
	} else if err != nil {
		s.logger.Warn("recommendation cache read failed", "user_id", userID, "error", err)
	}

	entries, err := s.store.ListAllEntries(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "load library for recommendations")
	}

	profile := recommend.Analyze(entries)
	candidates := s.aggregator.Recommend(ctx, entries, profile)

	if err := s.cache.SetProfile(userID, &profile); err != nil {
		s.logger.Warn("failed to cache preference profile", "user_id", userID, "error", err)
	}
	if err := s.cache.SetRecommendations(userID, candidates); err != nil {
		s.logger.Warn("failed to cache recommendations", "user_id", userID, "error", err)
	}

	s.logger.Info("recommendations computed",
		"user_id", userID,
		"entries", len(entries),
		"candidates", len(candidates),
	)
	return &Recommendations{Profile: profile, Candidates: candidates}, nil
}

// cachedRecommendations returns a complete cached result or nil. A miss on
// either key forces a full recompute so profile and candidates never drift
// apart.
func (s *RecommendationService) cachedRecommendations(userID string) (*Recommendations, error) {
	profile, err := s.cache.GetProfile(userID)
	if err == cache.ErrMiss {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	candidates, err := s.cache.GetRecommendations(userID)
	if err == cache.ErrMiss {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &Recommendations{Profile: *profile, Candidates: candidates}, nil
}
