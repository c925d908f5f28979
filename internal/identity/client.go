// Package identity wraps the external auth provider. The API never mints or
// inspects tokens itself; every request's Bearer token is verified against
// the provider's user endpoint.
package identity

import (
	"context"
	"encoding/json/v2"
	"log/slog"
	"net/http"
	"time"

	"github.com/tinykiri/readiculous/internal/domain"
	"github.com/tinykiri/readiculous/internal/errors"
)

// Client verifies access tokens against the auth provider.
type Client struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
	logger     *slog.Logger
}

// Options configures the identity client.
type Options struct {
	ProviderURL string        // Auth provider base URL
	ServiceKey  string        // Service key sent as the apikey header
	Timeout     time.Duration // HTTP request timeout (default 10s)
	Logger      *slog.Logger
}

// NewClient creates a new identity client.
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:    opts.ProviderURL,
		serviceKey: opts.ServiceKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: opts.Logger,
	}
}

// userResponse is the provider's user payload. Only the fields the API
// needs are decoded.
type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Verify resolves a Bearer token to an identity.
// Provider rejections yield an unauthorized error; callers cannot
// distinguish an expired token from an invalid one. A provider that cannot
// be reached at all yields an unavailable error instead, so an outage is
// not reported to clients as a bad token.
func (c *Client) Verify(ctx context.Context, token string) (*domain.Identity, error) {
	if token == "" {
		return nil, errors.Unauthorized("missing access token")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "build provider request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", c.serviceKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("auth provider unreachable", "error", err)
		return nil, errors.Unavailable("authentication service unavailable").WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Unauthorized("invalid or expired token")
	}

	var user userResponse
	if err := json.UnmarshalRead(resp.Body, &user); err != nil {
		c.logger.Warn("auth provider response parse failed", "error", err)
		return nil, errors.Unauthorized("authentication failed")
	}
	if user.ID == "" {
		return nil, errors.Unauthorized("invalid or expired token")
	}

	return &domain.Identity{ID: user.ID, Email: user.Email}, nil
}
