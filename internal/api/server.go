// Package api provides the HTTP API server and handlers for the readiculous server.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/tinykiri/readiculous/internal/http/response"
	"github.com/tinykiri/readiculous/internal/identity"
	"github.com/tinykiri/readiculous/internal/ratelimit"
	"github.com/tinykiri/readiculous/internal/search"
	"github.com/tinykiri/readiculous/internal/storage"
	"github.com/tinykiri/readiculous/internal/store/sqlite"
	"github.com/tinykiri/readiculous/internal/validation"
)

// Per-client inbound rate limits, keyed by IP.
const (
	requestsPerSecond = 50
	requestBurst      = 100
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store       *sqlite.Store
	search      *search.Index
	services    *Services
	identity    *identity.Client
	storage     *storage.Storage
	validator   *validation.Validator
	limiter     *ratelimit.KeyedRateLimiter
	corsOrigins []string
	router      *chi.Mux
	api         huma.API
	logger      *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st *sqlite.Store, idx *search.Index, services *Services, ident *identity.Client, blobs *storage.Storage, corsOrigins []string, logger *slog.Logger) *Server {
	s := &Server{
		store:       st,
		search:      idx,
		services:    services,
		identity:    ident,
		storage:     blobs,
		validator:   validation.New(),
		limiter:     ratelimit.New(requestsPerSecond, requestBurst),
		corsOrigins: corsOrigins,
		router:      chi.NewRouter(),
		logger:      logger,
	}

	s.setupMiddleware()
	s.api = newHumaAPI(s.router)
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	s.router.Use(s.rateLimit)
}

// rateLimit rejects clients that exceed the per-IP request budget.
// Runs after RealIP so RemoteAddr reflects the true client.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow(r.RemoteAddr) {
			response.Error(w, http.StatusTooManyRequests, "Too many requests", s.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// newHumaAPI builds the huma API on top of the chi router.
func newHumaAPI(router *chi.Mux) huma.API {
	config := huma.DefaultConfig("readiculous API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
		},
	}
	config.Transformers = append(config.Transformers, EnvelopeTransformer)

	api := humachi.New(router, config)
	RegisterErrorHandler()

	return api
}

// setupRoutes registers all HTTP routes.
func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerLibraryRoutes()
	s.registerQuoteRoutes()
	s.registerProfileRoutes()
	s.registerRecommendationRoutes()

	// Uploaded images are served as plain files, outside huma.
	s.router.Handle("/files/covers/*", http.StripPrefix("/files/covers/",
		http.FileServer(http.Dir(s.storage.Dir(storage.BucketCovers)))))
	s.router.Handle("/files/avatars/*", http.StripPrefix("/files/avatars/",
		http.FileServer(http.Dir(s.storage.Dir(storage.BucketAvatars)))))
}
