// Package api provides the HTTP surface of the planner service.
//
// Endpoints:
//
//	POST /chat                              - one conversational turn
//	GET  /health                            - liveness probe
//	GET  /sessions/{user_id}/{session_id}   - session state snapshot
//
// File structure:
//   - server.go: HTTP server setup and lifecycle
//   - middleware.go: recovery, request ID, logging, CORS
//   - ratelimit.go: per-IP token bucket
//   - chat.go: chat endpoint
//   - session.go: session state endpoint
//   - health.go: health check endpoint
//   - response.go: JSON response helpers
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/plannerai/planner/internal/agent"
	"github.com/plannerai/planner/internal/log"
	"github.com/plannerai/planner/internal/session"
)

const (
	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout bounds header reads (Slowloris protection).
	ReadHeaderTimeout = 10 * time.Second

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout = 30 * time.Second

	// WriteTimeout is the maximum duration for writing the response.
	// Orchestrator turns can chain several hosted-model calls.
	WriteTimeout = 2 * time.Minute

	// IdleTimeout is the keep-alive idle limit.
	IdleTimeout = 2 * time.Minute
)

// ServerConfig contains configuration for creating the API server.
type ServerConfig struct {
	Logger       log.Logger
	Sessions     *session.Manager   // required
	Orchestrator agent.Orchestrator // required
	CORSOrigins  []string           // allowed origins (the Next.js frontend)
	TrustProxy   bool               // trust X-Real-IP/X-Forwarded-For
	RateBurst    int                // per-IP burst size (0 = default 60)
}

// Server is the HTTP server for the planner API.
type Server struct {
	mux    *http.ServeMux
	logger log.Logger

	corsOrigins []string
	trustProxy  bool
	rateBurst   int
}

// NewServer creates a new HTTP server with all routes registered.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Sessions == nil {
		return nil, errors.New("session manager is required")
	}
	if cfg.Orchestrator == nil {
		return nil, errors.New("orchestrator is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	mux := http.NewServeMux()

	NewHealthHandler(logger).RegisterRoutes(mux)
	NewSessionHandler(cfg.Sessions, logger).RegisterRoutes(mux)
	NewChatHandler(cfg.Orchestrator, cfg.Sessions, logger).RegisterRoutes(mux)

	return &Server{
		mux:         mux,
		logger:      logger,
		corsOrigins: cfg.CORSOrigins,
		trustProxy:  cfg.TrustProxy,
		rateBurst:   cfg.RateBurst,
	}, nil
}

// Handler returns the HTTP handler with middleware applied.
// Order (outermost first): recovery → request ID → logging → CORS → rate limit.
func (s *Server) Handler() http.Handler {
	burst := s.rateBurst
	if burst <= 0 {
		burst = 60
	}
	rl := newRateLimiter(1.0, burst)

	c := cors.New(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	})

	return chain(s.mux,
		recoveryMiddleware(s.logger),
		requestIDMiddleware,
		loggingMiddleware(s.logger),
		c.Handler,
		rateLimitMiddleware(rl, s.trustProxy, s.logger),
	)
}

// Run starts the HTTP server and blocks until the context is cancelled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
