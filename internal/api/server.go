package api

import (
	"context"
	"net/http"
	"time"

	"github.com/ignite/campaign-intel/internal/cache"
	"github.com/ignite/campaign-intel/internal/config"
	"github.com/ignite/campaign-intel/internal/insight"
	"github.com/ignite/campaign-intel/internal/warehouse"
)

// Server is the console API server.
type Server struct {
	config   config.ServerConfig
	handler  http.Handler
	handlers *Handlers
	server   *http.Server
}

// NewServer creates the console server. The results cache and warehouse
// client may be nil when those features are disabled.
func NewServer(cfg config.ServerConfig, client *insight.Client, resultsCache *cache.ResultsCache, wh *warehouse.Client) *Server {
	handlers := NewHandlers(client, resultsCache, wh)
	router := SetupRoutes(handlers, cfg.AllowedOrigins)

	return &Server{
		config:   cfg,
		handler:  router,
		handlers: handlers,
	}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadTimeout:       2 * time.Minute,
		ReadHeaderTimeout: 15 * time.Second,
		// Experiment submissions can hold a response open for up to a
		// minute; leave headroom beyond the submission deadline.
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.handler
}
