package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/tinykiri/readiculous/internal/domain"
)

func (s *Server) registerRecommendationRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getRecommendations",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{userID}/recommendations",
		Summary:     "Get recommendations",
		Description: "Returns book recommendations derived from the user's library",
		Tags:        []string{"Recommendations"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetRecommendations)
}

// === DTOs ===

// GetRecommendationsInput contains parameters for getting recommendations.
type GetRecommendationsInput struct {
	Authorization string `header:"Authorization"`
	UserID        string `path:"userID" doc:"User ID"`
}

// RecommendationsResponse contains the derived preference profile plus the
// ranked candidates.
type RecommendationsResponse struct {
	Profile    domain.PreferenceProfile         `json:"profile" doc:"Derived taste profile"`
	Candidates []domain.RecommendationCandidate `json:"candidates" doc:"Recommended books, best rated first"`
}

// RecommendationsOutput wraps the recommendations response for Huma.
type RecommendationsOutput struct {
	Body RecommendationsResponse
}

// === Handlers ===

func (s *Server) handleGetRecommendations(ctx context.Context, input *GetRecommendationsInput) (*RecommendationsOutput, error) {
	userID, err := s.requireOwner(ctx, input.Authorization, input.UserID)
	if err != nil {
		return nil, err
	}

	recs, err := s.services.Recommendation.GetRecommendations(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &RecommendationsOutput{Body: RecommendationsResponse{
		Profile:    recs.Profile,
		Candidates: recs.Candidates,
	}}, nil
}
