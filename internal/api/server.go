package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/mattjoyce/sapwebhooks/internal/auth"
	"github.com/rs/cors"
)

//go:generate mockgen -destination=mocks/mock_request_logger.go -package=mocks github.com/mattjoyce/sapwebhooks/internal/api RequestLogger

// RequestLogger records inbound webhook requests. Implementations must be
// safe for concurrent use and must not fail the request.
type RequestLogger interface {
	Log(ctx context.Context, method, path string, query map[string]string, body any)
}

type nopRequestLogger struct{}

func (nopRequestLogger) Log(context.Context, string, string, map[string]string, any) {}

// Config holds API server configuration
type Config struct {
	Listen string
	// MaxBodySize is the request body limit in bytes (default: 1MB).
	MaxBodySize int64
}

// DefaultMaxBodySize applies when Config.MaxBodySize is zero.
const DefaultMaxBodySize = 1048576

// Server represents the HTTP API server
type Server struct {
	config    Config
	authn     *auth.Authenticator
	signer    *auth.Signer
	requests  RequestLogger
	logger    *slog.Logger
	server    *http.Server
	validate  *validator.Validate
	startedAt time.Time
	now       func() time.Time
}

// New creates a new API server instance. signer may be nil.
func New(config Config, authn *auth.Authenticator, signer *auth.Signer, requests RequestLogger, logger *slog.Logger) *Server {
	if config.MaxBodySize <= 0 {
		config.MaxBodySize = DefaultMaxBodySize
	}
	if authn == nil {
		authn = auth.New(false, "")
	}
	if requests == nil {
		requests = nopRequestLogger{}
	}
	return &Server{
		config:    config,
		authn:     authn,
		signer:    signer,
		requests:  requests,
		logger:    logger,
		validate:  newValidator(),
		startedAt: time.Now(),
		now:       time.Now,
	}
}

// Handler returns the fully wired router.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// Start starts the HTTP server (blocking)
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         s.config.Listen,
		Handler:      s.setupRoutes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("API server starting", "listen", s.config.Listen, "auth_enabled", s.authn.Enabled())

	// Run server in a goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for context cancellation or server error
	select {
	case <-ctx.Done():
		s.logger.Info("API server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}
}

// setupRoutes configures the HTTP router
func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)

	// Must be registered before Route so the subrouter inherits them.
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	// Unauthenticated endpoints.
	r.Get("/", s.handleRoot)
	r.Get("/docs", s.handleDocs)
	r.Get("/healthz", s.handleHealthz)

	r.Route("/api/webhooks", func(r chi.Router) {
		r.Use(augmentHeaders)
		r.Use(s.recoverMiddleware)
		r.Use(s.authMiddleware)

		r.Post("/", s.handleCreate)
		r.Get("/", s.handleList)
		r.Get("/{webhook_id}", s.handleGet)
		r.Put("/{webhook_id}", s.handleUpdate)
		r.Patch("/{webhook_id}", s.handlePatch)
		r.Delete("/{webhook_id}", s.handleDelete)
	})

	return r
}

// handleRoot handles GET / (no auth).
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, WelcomeResponse{
		Message: "Welcome to SAP Webhooks API",
		DocsURL: "/docs",
	})
}

// handleDocs handles GET /docs (no auth).
func (s *Server) handleDocs(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, buildOpenAPIDoc(s.authn.Enabled()))
}

// handleHealthz handles GET /healthz (no auth).
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthzResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
		AuthEnabled:   s.authn.Enabled(),
	})
}
