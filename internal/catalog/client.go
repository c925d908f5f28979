package catalog

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Client provides access to the volume-search catalog API.
//
// Every search degrades to an empty result on failure so a catalog outage
// never breaks recommendations.
type Client struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *slog.Logger
}

// Options configures the catalog client.
type Options struct {
	BaseURL string        // Catalog API base URL
	APIKey  string        // Optional API key; searches return empty without one
	Timeout time.Duration // HTTP request timeout (default 30s)
	Logger  *slog.Logger
}

// NewClient creates a new catalog client.
// Rate limited to 1 request per second with a small burst, which keeps a
// full recommendation fan-out (up to 8 queries) under the catalog's quota.
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: opts.BaseURL,
		apiKey:  opts.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		rateLimiter: rate.NewLimiter(rate.Every(time.Second), 8),
		logger:      opts.Logger,
	}
}

// wait blocks until the rate limiter allows a request.
func (c *Client) wait(ctx context.Context) error {
	return c.rateLimiter.Wait(ctx)
}
