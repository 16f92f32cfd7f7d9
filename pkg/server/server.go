// Package server exposes a grid engine over a JSON HTTP API.
//
// # Routes
//
//	GET    /health                 liveness probe with build info
//	GET    /stats                  engine statistics
//	GET    /groups                 group hierarchy with open/closed state
//	GET    /display                flattened display sequence
//	POST   /groups/toggle          {"path": [...]} opens or closes a group
//	GET    /layout?width=&mode=    column widths for a viewport
//	GET    /export                 grouped-data export
//	POST   /records                adds a record; responds with its id
//	PATCH  /records/{id}           updates fields of a record
//	DELETE /records/{id}           removes a record
//	POST   /records/{id}/move      {"anchor": id, "after": bool}
//
// Errors are returned as {"error": message, "code": CODE} with a status
// derived from the error code.
//
// # Concurrency
//
// The engine is single-writer; the server serialises every request that
// touches it with one mutex.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/gridkit/pkg/grid"
	"github.com/matzehuels/gridkit/pkg/observability"
)

// DefaultAddr is the listen address used when none is given.
const DefaultAddr = "127.0.0.1:8080"

// Options configures a Server.
type Options struct {
	Logger *log.Logger
	// IDField names the record field holding row IDs for POST /records.
	IDField string
	// ShutdownTimeout bounds graceful shutdown. Defaults to 5s.
	ShutdownTimeout time.Duration
}

// Server serves one engine.
type Server struct {
	mu      sync.Mutex
	engine  *grid.Engine
	logger  *log.Logger
	idField string
	timeout time.Duration
	router  chi.Router
}

// New creates a server for engine.
func New(engine *grid.Engine, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 5 * time.Second
	}
	s := &Server{
		engine:  engine,
		logger:  opts.Logger,
		idField: opts.IDField,
		timeout: opts.ShutdownTimeout,
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/health", s.handleHealth)
	r.Get("/stats", s.handleStats)
	r.Get("/groups", s.handleGroups)
	r.Post("/groups/toggle", s.handleToggle)
	r.Get("/display", s.handleDisplay)
	r.Get("/layout", s.handleLayout)
	r.Get("/export", s.handleExport)

	r.Route("/records", func(r chi.Router) {
		r.Post("/", s.handleAddRecord)
		r.Route("/{id}", func(r chi.Router) {
			r.Patch("/", s.handleUpdateRecord)
			r.Delete("/", s.handleRemoveRecord)
			r.Post("/move", s.handleMoveRecord)
		})
	})
	return r
}

// observe logs requests and reports them to the HTTP hooks.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		d := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), d)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", d,
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
