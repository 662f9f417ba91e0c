// Package preview serves a read-only HTTP view of the store: JSON listings
// for documents and versions, rendered HTML previews and the Prometheus
// metrics endpoint.
package preview

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/textkeeper/internal/logging"
	"github.com/dmitrijs2005/textkeeper/internal/store"
)

const shutdownTimeout = 5 * time.Second

// Recorder receives request and render observations.
type Recorder interface {
	ObserveHTTPRequest(route string, code int, d time.Duration)
	ObserveRender(n int, d time.Duration)
}

type Server struct {
	address string
	store   store.Store
	rec     Recorder
	metrics http.Handler
	logger  logging.Logger
}

// NewServer builds a preview server. rec and metricsHandler may be nil.
func NewServer(address string, st store.Store, rec Recorder, metricsHandler http.Handler, l logging.Logger) *Server {
	if l == nil {
		l = logging.Nop()
	}
	return &Server{
		address: address,
		store:   st,
		rec:     rec,
		metrics: metricsHandler,
		logger:  l.With("module", "preview_server"),
	}
}

// Handler returns the router with every route mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Route("/api", func(r chi.Router) {
		r.Get("/documents", s.listDocuments)
		r.Get("/documents/{id}", s.getDocument)
		r.Get("/documents/{id}/versions", s.listVersions)
		r.Post("/render", s.render)
	})
	r.Get("/documents/{id}/preview", s.previewDocument)

	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	return r
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve serves on l until ctx is cancelled, then shuts down gracefully. It
// returns only after in-flight requests have drained or the shutdown timeout
// has passed.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveDone := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		select {
		case <-ctx.Done():
		case <-serveDone:
			return
		}
		s.logger.Info(ctx, "Stopping preview server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "preview server shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting preview server", "address", l.Addr().String())

	err := srv.Serve(l)
	close(serveDone)
	<-stopped

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
