package api

import (
	"context"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/tinykiri/readiculous/internal/domain"
	domainerrors "github.com/tinykiri/readiculous/internal/errors"
)

// MessageResponse carries a human-readable confirmation message.
type MessageResponse struct {
	Message string `json:"message" doc:"Confirmation message"`
}

// MessageOutput wraps a message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// authenticateRequest validates the Authorization header against the identity
// provider and returns the verified identity.
func (s *Server) authenticateRequest(ctx context.Context, authHeader string) (*domain.Identity, error) {
	if authHeader == "" {
		return nil, huma.Error401Unauthorized("Missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, huma.Error401Unauthorized("Invalid authorization header format")
	}

	ident, err := s.identity.Verify(ctx, parts[1])
	if err != nil {
		// A provider outage is the server's problem, not the caller's.
		if domainerrors.Is(err, domainerrors.ErrUnavailable) {
			return nil, err
		}
		return nil, huma.Error401Unauthorized("Invalid or expired token")
	}

	return ident, nil
}

// requireOwner authenticates the request and checks that the path user is the
// caller. Every query below this is additionally scoped by user id, so a
// forged path can at worst see an empty result.
func (s *Server) requireOwner(ctx context.Context, authHeader, pathUserID string) (string, error) {
	ident, err := s.authenticateRequest(ctx, authHeader)
	if err != nil {
		return "", err
	}

	if ident.ID != pathUserID {
		return "", domainerrors.Forbidden("You do not have access to this user's library")
	}

	return ident.ID, nil
}
