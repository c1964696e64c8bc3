// Package http exposes the engagement API: relation toggles, relation status,
// feeds and video detail, plus health and metrics endpoints.
package http

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/streamhub/engagement-hub/config"
	"github.com/streamhub/engagement-hub/internal/application/command"
	"github.com/streamhub/engagement-hub/internal/application/query"
	"github.com/streamhub/engagement-hub/internal/interface/http/handlers"
	"github.com/streamhub/engagement-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SERVER CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config contains HTTP server configuration.
type Config struct {
	// Host - address to bind (default: "0.0.0.0").
	Host string

	// Port - port to listen on (default: 8080).
	Port int

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// AllowedOrigins - allowed origins for CORS. Empty disables CORS.
	AllowedOrigins []string

	// EnableMetrics - expose Prometheus metrics on /metrics.
	EnableMetrics bool

	// RateLimitRequests per RateLimitWindow per client IP (0 = disabled).
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64

	// Version is reported by the health endpoints.
	Version string
}

// DefaultConfig returns default server configuration.
func DefaultConfig() Config {
	return Config{
		Host:              "0.0.0.0",
		Port:              8080,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		AllowedOrigins:    []string{"*"},
		EnableMetrics:     true,
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
		MaxBodyBytes:      1 << 20,
	}
}

// ConfigFrom builds a server Config from the application config.
func ConfigFrom(cfg *config.Config) Config {
	c := DefaultConfig()
	c.Host = cfg.HTTP.Host
	c.Port = cfg.HTTP.Port
	c.ReadTimeout = cfg.HTTP.ReadTimeout
	c.WriteTimeout = cfg.HTTP.WriteTimeout
	c.IdleTimeout = cfg.HTTP.IdleTimeout
	c.AllowedOrigins = cfg.HTTP.CORSOrigins
	c.RateLimitRequests = cfg.HTTP.RateLimitReqs
	c.RateLimitWindow = cfg.HTTP.RateLimitWindow
	c.EnableMetrics = cfg.Observability.MetricsEnabled
	c.Version = cfg.App.Version
	return c
}

// Address returns the server address string.
func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES
// ══════════════════════════════════════════════════════════════════════════════

// Dependencies contains all dependencies required by HTTP handlers.
type Dependencies struct {
	// Commands (CQRS Write Side)
	ToggleRelation *command.ToggleRelationHandler

	// Queries (CQRS Read Side)
	RelationStatus *query.RelationStatusHandler
	AssembleFeed   *query.AssembleFeedHandler
	GetVideo       *query.GetVideoHandler

	Logger *logger.Logger

	// HealthChecker backs /health and /ready. Nil means always healthy.
	HealthChecker handlers.HealthChecker
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVER
// ══════════════════════════════════════════════════════════════════════════════

// Server represents the HTTP server.
type Server struct {
	config     Config
	deps       Dependencies
	httpServer *http.Server
	router     chi.Router
	logger     *logger.Logger

	mu        sync.RWMutex
	running   bool
	startedAt time.Time
}

// NewServer creates a new HTTP server with the given configuration and dependencies.
func NewServer(cfg Config, deps Dependencies) *Server {
	if deps.Logger == nil {
		deps.Logger = logger.Default()
	}
	if deps.HealthChecker == nil {
		deps.HealthChecker = handlers.NewNoopHealthChecker()
	}

	s := &Server{
		config: cfg,
		deps:   deps,
		router: chi.NewRouter(),
		logger: deps.Logger.With(logger.Component("http")),
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         cfg.Address(),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ══════════════════════════════════════════════════════════════════════════════
// MIDDLEWARE & ROUTING
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(handlers.RequestLogger(s.logger))
	s.router.Use(s.recoverer)
	s.router.Use(handlers.SecurityHeadersMiddleware)

	if len(s.config.AllowedOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.config.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", handlers.ActorHeader, middleware.RequestIDHeader},
			ExposedHeaders: []string{middleware.RequestIDHeader},
			MaxAge:         300,
		}))
	}
	if s.config.RateLimitRequests > 0 && s.config.RateLimitWindow > 0 {
		s.router.Use(httprate.Limit(
			s.config.RateLimitRequests,
			s.config.RateLimitWindow,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				writeJSONError(w, r, http.StatusTooManyRequests, "rate_limit_exceeded", "Too many requests, please try again later")
			}),
		))
	}
	if s.config.MaxBodyBytes > 0 {
		s.router.Use(handlers.RequestSizeLimitMiddleware(s.config.MaxBodyBytes))
	}
}

func (s *Server) setupRoutes() {
	// ─────────────────────────────────────────────────────────────────────────
	// Health & Status Endpoints
	// ─────────────────────────────────────────────────────────────────────────
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/healthz", s.handleHealth) // Kubernetes alias
	s.router.Get("/ready", s.handleReady)
	s.router.Get("/live", s.handleLive)

	if s.config.EnableMetrics {
		s.router.Handle("/metrics", promhttp.Handler())
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Engagement API
	// ─────────────────────────────────────────────────────────────────────────
	s.router.Group(func(r chi.Router) {
		r.Use(handlers.ActorMiddleware(s.writeError))
		r.Use(handlers.NoCacheMiddleware)

		r.Post("/relations/{kind}/{targetId}/toggle", s.handleToggleRelation)
		r.Get("/relations/{kind}/{targetId}", s.handleRelationStatus)
		r.Get("/feed/{kind}", s.handleFeed)
		r.Get("/videos/{id}", s.handleGetVideo)
	})

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, r, http.StatusNotFound, "not_found", "Resource not found")
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
	})
}

// recoverer turns a handler panic into a 500 envelope.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.logger.Error("panic recovered",
					logger.Any("error", rec),
					logger.String("path", r.URL.Path),
					logger.String(logger.RequestIDKey, middleware.GetReqID(r.Context())),
				)
				writeJSONError(w, r, http.StatusInternalServerError, "internal_server_error", "An unexpected error occurred")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVER LIFECYCLE
// ══════════════════════════════════════════════════════════════════════════════

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.running = true
	s.startedAt = time.Now()
	s.mu.Unlock()

	s.logger.Info("starting HTTP server", logger.String("address", s.config.Address()))

	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// StartAsync starts the server in a goroutine.
func (s *Server) StartAsync() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil {
			errCh <- err
		}
		close(errCh)
	}()
	return errCh
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Uptime returns the server uptime.
func (s *Server) Uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.running {
		return 0
	}
	return time.Since(s.startedAt)
}

// ══════════════════════════════════════════════════════════════════════════════
// RESPONSE HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// JSONResponse represents a standard JSON response.
type JSONResponse struct {
	Success   bool          `json:"success"`
	Data      any           `json:"data,omitempty"`
	Error     *APIError     `json:"error,omitempty"`
	Meta      *ResponseMeta `json:"meta,omitempty"`
	RequestID string        `json:"request_id,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ResponseMeta contains response metadata.
type ResponseMeta struct {
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version,omitempty"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	write(w, status, JSONResponse{
		Success:   status >= 200 && status < 300,
		Data:      data,
		Meta:      &ResponseMeta{Timestamp: time.Now().UTC(), Version: "v1"},
		RequestID: middleware.GetReqID(r.Context()),
	})
}

func writeJSONError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSONErrorWithDetails(w, r, status, code, message, "")
}

func writeJSONErrorWithDetails(w http.ResponseWriter, r *http.Request, status int, code, message, details string) {
	write(w, status, JSONResponse{
		Success:   false,
		Error:     &APIError{Code: code, Message: message, Details: details},
		Meta:      &ResponseMeta{Timestamp: time.Now().UTC()},
		RequestID: middleware.GetReqID(r.Context()),
	})
}

func write(w http.ResponseWriter, status int, body JSONResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
