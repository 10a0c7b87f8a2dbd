package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dshills/jsongraph/pkg/document"
	"github.com/dshills/jsongraph/pkg/graph"
	"github.com/dshills/jsongraph/pkg/storage"
)

// Config holds the HTTP server configuration.
type Config struct {
	Addr  string // listen address, e.g. "127.0.0.1:7333"
	Token string // optional bearer token; empty disables auth
}

// Server serves the open document and its graph over HTTP.
type Server struct {
	store  *document.Store
	guard  *storage.PathGuard
	logger *log.Logger
	config Config
	router chi.Router
	http   *http.Server

	// graph cache, rebuilt when the document revision moves
	gmu      sync.Mutex
	graph    *graph.Graph
	graphRev uint64
}

// New creates a server around a document store. The guard, when non-nil,
// scopes which files the /api/file endpoint may read; a nil guard disables
// the endpoint. A nil logger falls back to the package default.
func New(store *document.Store, guard *storage.PathGuard, logger *log.Logger, config Config) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		store:  store,
		guard:  guard,
		logger: logger,
		config: config,
	}
	s.router = s.buildRouter()
	return s
}

// Handler returns the fully assembled HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(s.authMiddleware)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/document", s.handleGetDocument)
		r.Put("/document", s.handlePutDocument)
		r.Get("/graph", s.handleGetGraph)
		r.Get("/nodes/{id}", s.handleGetNode)
		r.Put("/nodes/{id}", s.handlePutNode)
		r.Delete("/nodes/{id}", s.handleDeleteNode)
		r.Get("/search", s.handleSearch)
		r.Get("/filter", s.handleFilter)
		r.Get("/file", s.handleReadFile)
	})

	r.Get("/graph.dot", s.handleGraphDOT)
	r.Get("/graph.svg", s.handleGraphSVG)
	r.Get("/graph.png", s.handleGraphPNG)

	return r
}

// ListenAndServe starts the HTTP server and handles graceful shutdown when
// the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.config.Addr, err)
	}

	s.http = &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	s.logger.Info("serving document", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		if err := s.http.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the HTTP server. If the server has not been
// started, this is a no-op.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// currentGraph returns the graph for the store's current contents, rebuilding
// only when the revision has moved since the last build.
func (s *Server) currentGraph() (*graph.Graph, error) {
	rev := s.store.Revision()

	s.gmu.Lock()
	defer s.gmu.Unlock()
	if s.graph != nil && s.graphRev == rev {
		return s.graph, nil
	}

	g, err := graph.Build(s.store.Contents())
	if err != nil {
		return nil, err
	}
	s.graph = g
	s.graphRev = rev
	return g, nil
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.code = code
	sr.ResponseWriter.WriteHeader(code)
}

// requestLogger logs each request with method, path, status, and duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sr := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sr, r)
		s.logger.Info("req",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sr.code,
			"dur", time.Since(start).String(),
			"id", middleware.GetReqID(r.Context()),
		)
	})
}

// authMiddleware validates the bearer token when one is configured.
// GET /healthz is always exempt.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.config.Token == "" {
			next.ServeHTTP(w, r)
			return
		}
		if r.Method == http.MethodGet && r.URL.Path == "/healthz" {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			WriteError(w, ErrUnauthorized, "missing authorization header", http.StatusUnauthorized)
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			WriteError(w, ErrUnauthorized, "invalid authorization format", http.StatusUnauthorized)
			return
		}
		if strings.TrimPrefix(authHeader, "Bearer ") != s.config.Token {
			WriteError(w, ErrUnauthorized, "invalid token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}
