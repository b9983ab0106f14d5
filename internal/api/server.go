// Package api serves the placement engine over HTTP.
//
// Two styles of use are supported. POST /v1/place is stateless: the client
// sends the full geometry, preference list and, optionally, the state
// returned by a previous call. The /v1/overlays routes keep that state on
// the server in a [store.Store] so clients only report what changed:
//
//	POST   /v1/place
//	POST   /v1/overlays
//	GET    /v1/overlays/{id}
//	POST   /v1/overlays/{id}/apply
//	POST   /v1/overlays/{id}/reapply
//	POST   /v1/overlays/{id}/resize
//	POST   /v1/overlays/{id}/attach
//	PUT    /v1/overlays/{id}/positions
//	PUT    /v1/overlays/{id}/config
//	DELETE /v1/overlays/{id}
//	GET    /healthz
//
// Errors are returned as {"error": {"code": ..., "message": ...}} with a
// status derived from the error code.
package api

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/flexpos/pkg/store"
)

// Defaults for [Config].
const (
	DefaultAddr            = "127.0.0.1:8080"
	DefaultCleanupInterval = 5 * time.Minute
	DefaultShutdownTimeout = 10 * time.Second

	maxBodyBytes = 1 << 20
)

// Config holds server settings. Zero values select the defaults.
type Config struct {
	Addr            string
	SessionTTL      time.Duration
	CleanupInterval time.Duration
	ShutdownTimeout time.Duration
}

func (c *Config) setDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = store.DefaultTTL
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = DefaultCleanupInterval
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
}

// Server is the placement API.
type Server struct {
	cfg    Config
	store  store.Store
	logger *log.Logger
	locks  *keyedMutex
	router chi.Router
}

// New returns a server backed by st. A nil logger discards output.
func New(st store.Store, cfg Config, logger *log.Logger) *Server {
	cfg.setDefaults()
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{
		cfg:    cfg,
		store:  st,
		logger: logger,
		locks:  newKeyedMutex(),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handle(s.health))

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Post("/place", s.handle(s.place))

		r.Route("/overlays", func(r chi.Router) {
			r.Post("/", s.handle(s.createOverlay))
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handle(s.getOverlay))
				r.Delete("/", s.handle(s.detachOverlay))
				r.Post("/apply", s.handle(s.applyOverlay))
				r.Post("/reapply", s.handle(s.reapplyOverlay))
				r.Post("/resize", s.handle(s.resizeOverlay))
				r.Post("/attach", s.handle(s.attachOverlay))
				r.Put("/positions", s.handle(s.setPositions))
				r.Put("/config", s.handle(s.setConfig))
			})
		})
	})
	return r
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
// Expired sessions are swept every CleanupInterval.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := context.WithCancel(ctx)
	defer stop()
	go s.cleanupLoop(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanup(ctx)
		}
	}
}

func (s *Server) cleanup(ctx context.Context) int {
	n, err := s.store.Cleanup(ctx)
	if err != nil {
		s.logger.Warn("session cleanup failed", "error", err)
		return 0
	}
	if n > 0 {
		s.logger.Debug("removed expired sessions", "count", n)
	}
	return n
}
