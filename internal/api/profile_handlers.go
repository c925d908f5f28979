package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/tinykiri/readiculous/internal/color"
	"github.com/tinykiri/readiculous/internal/domain"
	"github.com/tinykiri/readiculous/internal/service"
)

func (s *Server) registerProfileRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getProfile",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{userID}/profile",
		Summary:     "Get profile",
		Description: "Returns the user's profile",
		Tags:        []string{"Profile"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateProfile",
		Method:      http.MethodPut,
		Path:        "/api/v1/users/{userID}/profile",
		Summary:     "Update profile",
		Description: "Creates or updates the user's profile",
		Tags:        []string{"Profile"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "uploadAvatar",
		Method:      http.MethodPost,
		Path:        "/api/v1/users/{userID}/profile/avatar",
		Summary:     "Upload avatar",
		Description: "Uploads a profile avatar image",
		Tags:        []string{"Profile"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUploadAvatar)
}

// === DTOs ===

// ProfileResponse contains profile data in API responses.
type ProfileResponse struct {
	UserID         string    `json:"user_id" doc:"User ID"`
	Username       string    `json:"username" doc:"Display name"`
	AvatarURL      string    `json:"avatar_url,omitempty" doc:"Public avatar image URL"`
	AvatarBlurhash string    `json:"avatar_blurhash,omitempty" doc:"BlurHash placeholder for the avatar"`
	AvatarColor    string    `json:"avatar_color" doc:"Fallback color for clients rendering an initial instead of an image"`
	TotalBooks     int       `json:"total_books" doc:"Number of books in the library"`
	CreatedAt      time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt      time.Time `json:"updated_at" doc:"Last update time"`
}

func profileResponse(p *domain.UserProfile) ProfileResponse {
	return ProfileResponse{
		UserID:         p.UserID,
		Username:       p.Username,
		AvatarURL:      p.AvatarURL,
		AvatarBlurhash: p.AvatarBlurhash,
		AvatarColor:    color.ForUser(p.UserID),
		TotalBooks:     p.TotalBooks,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// ProfileOutput wraps a profile response for Huma.
type ProfileOutput struct {
	Body ProfileResponse
}

// GetProfileInput contains parameters for getting a profile.
type GetProfileInput struct {
	Authorization string `header:"Authorization"`
	UserID        string `path:"userID" doc:"User ID"`
}

// UpdateProfileRequest is the request body for updating a profile.
type UpdateProfileRequest struct {
	Username  *string `json:"username,omitempty" validate:"omitempty,min=1,max=50" doc:"Display name"`
	AvatarURL *string `json:"avatar_url,omitempty" validate:"omitempty,url,max=500" doc:"Avatar image URL"`
}

// UpdateProfileInput wraps the update profile request for Huma.
type UpdateProfileInput struct {
	Authorization string `header:"Authorization"`
	UserID        string `path:"userID" doc:"User ID"`
	Body          UpdateProfileRequest
}

// UploadAvatarInput contains the raw image bytes for an avatar upload.
type UploadAvatarInput struct {
	Authorization string `header:"Authorization"`
	UserID        string `path:"userID" doc:"User ID"`
	RawBody       []byte
}

// === Handlers ===

func (s *Server) handleGetProfile(ctx context.Context, input *GetProfileInput) (*ProfileOutput, error) {
	userID, err := s.requireOwner(ctx, input.Authorization, input.UserID)
	if err != nil {
		return nil, err
	}

	profile, err := s.services.Profile.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ProfileOutput{Body: profileResponse(profile)}, nil
}

func (s *Server) handleUpdateProfile(ctx context.Context, input *UpdateProfileInput) (*ProfileOutput, error) {
	userID, err := s.requireOwner(ctx, input.Authorization, input.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	profile, err := s.services.Profile.UpdateProfile(ctx, userID, service.UpdateProfileInput{
		Username:  input.Body.Username,
		AvatarURL: input.Body.AvatarURL,
	})
	if err != nil {
		return nil, err
	}

	return &ProfileOutput{Body: profileResponse(profile)}, nil
}

func (s *Server) handleUploadAvatar(ctx context.Context, input *UploadAvatarInput) (*ProfileOutput, error) {
	userID, err := s.requireOwner(ctx, input.Authorization, input.UserID)
	if err != nil {
		return nil, err
	}

	profile, err := s.services.Profile.UploadAvatar(ctx, userID, input.RawBody)
	if err != nil {
		return nil, err
	}

	return &ProfileOutput{Body: profileResponse(profile)}, nil
}
