// Package api serves read-only queries over a loaded network via HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/patrickmn/go-cache"
	"github.com/rs/cors"

	"github.com/transport-catalogue/internal/common/logger"
	"github.com/transport-catalogue/internal/requests"
)

type Options struct {
	AllowedOrigins []string
	// CacheTTL bounds how long route and map answers are reused. Zero disables caching.
	CacheTTL     time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server never mutates the network, so handlers run concurrently without locks.
type Server struct {
	handler *requests.Handler
	cache   *cache.Cache
	log     logger.Logger
	router  *mux.Router
	opts    Options
}

func NewServer(handler *requests.Handler, opts Options, log logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{
		handler: handler,
		log:     log,
		router:  mux.NewRouter(),
		opts:    opts,
	}
	if opts.CacheTTL > 0 {
		s.cache = cache.New(opts.CacheTTL, 2*opts.CacheTTL)
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.NotFoundHandler = http.HandlerFunc(s.notFound)
	s.router.MethodNotAllowedHandler = http.HandlerFunc(s.methodNotAllowed)
	s.router.Use(recoveryMiddleware(s.log))
	s.router.Use(loggingMiddleware(s.log))

	s.router.HandleFunc("/health", s.health).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/stops/{name}", s.stop).Methods(http.MethodGet)
	api.HandleFunc("/buses/{name}", s.bus).Methods(http.MethodGet)
	api.HandleFunc("/route", s.route).Methods(http.MethodGet).Queries("from", "{from}", "to", "{to}")
	api.HandleFunc("/map", s.drawMap).Methods(http.MethodGet)
}

// Handler returns the routes wrapped in CORS handling.
func (s *Server) Handler() http.Handler {
	origins := s.opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Origin"},
		MaxAge:         86400,
	})
	return c.Handler(s.router)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		Addr:              addr,
		ReadTimeout:       s.opts.ReadTimeout,
		WriteTimeout:      s.opts.WriteTimeout,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.log.Info("Starting HTTP server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
		close(serverErrors)
	}()

	select {
	case err, ok := <-serverErrors:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	s.log.Info("HTTP server shutdown completed")
	return nil
}
