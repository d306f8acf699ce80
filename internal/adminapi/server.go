// Package adminapi exposes the admin HTTP control surface described in
// spec.md §6: reload_config, list processes, inspect per-worker stats,
// and a health check. Reload, processes and workers require a bearer
// token; login and health do not. It is
// adapted from the teacher's internal/httpapi, trimmed to the admin-only
// endpoints this surface needs — the client-facing publish/subscribe/SSE
// endpoints belong to the outward channel layer, which is out of scope
// per spec.md §1.
package adminapi

import (
	"context"
	"net/http"
	"time"

	"github.com/eventfilter-go/eventfilter/internal/filtersupervisor"
)

// Config holds the admin server's listen settings.
type Config struct {
	Addr      string
	SecretKey string
}

// Server is the admin surface's HTTP server.
type Server struct {
	handlers   *Handlers
	middleware *Middleware
	httpServer *http.Server
}

// NewServer creates an admin Server fronting supervisor.
func NewServer(supervisor *filtersupervisor.Supervisor, config Config) *Server {
	secretKey := config.SecretKey
	if secretKey == "" {
		secretKey = "eventfilter-dev-secret-change-in-production"
	}

	jwtAuth := NewJWTAuth(secretKey)
	handlers := NewHandlers(supervisor, jwtAuth)
	middleware := NewMiddleware(jwtAuth)

	s := &Server{
		handlers:   handlers,
		middleware: middleware,
	}

	s.httpServer = &http.Server{
		Addr:           config.Addr,
		Handler:        s.routes(),
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	return s
}

// Start begins serving, blocking until the server stops or errors.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	wrap := func(handler http.HandlerFunc) http.Handler {
		return s.middleware.Recovery(s.middleware.CORS(handler))
	}

	mux.Handle("/api/v1/admin/login", wrap(s.handlers.Login))
	mux.Handle("/api/v1/admin/reload", wrap(s.middleware.AuthRequired(s.handlers.Reload)))
	mux.Handle("/api/v1/admin/processes", wrap(s.middleware.AuthRequired(s.handlers.Processes)))
	mux.Handle("/api/v1/admin/workers", wrap(s.middleware.AuthRequired(s.handlers.Workers)))
	mux.Handle("/api/v1/admin/health", wrap(s.handlers.Health))

	return mux
}
