package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/qtpi-bonding/folio/internal/buildcache"
	"github.com/qtpi-bonding/folio/internal/site"
)

// LiveReloadPath is the websocket endpoint pages connect to in development.
const LiveReloadPath = "/__livereload"

// Config holds server configuration.
type Config struct {
	Port      int
	OutputDir string // directory containing the built site
	AllowAll  bool   // allow all CORS origins
}

// Server is the development server for a built site.
type Server struct {
	cfg        Config
	logger     *zap.Logger
	builds     *buildcache.Store
	hub        *Hub
	router     chi.Router
	httpServer *http.Server
}

// New creates a Server. builds may be nil, in which case the build history
// API is not mounted.
func New(cfg Config, logger *zap.Logger, builds *buildcache.Store) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		cfg:    cfg,
		logger: logger,
		builds: builds,
		hub:    NewHub(logger, cfg.AllowAll),
	}
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Long-lived, so kept out of the request timeout.
	r.Get(LiveReloadPath, s.hub.ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		})
		r.Get("/api/search", s.handleSearch)
		if s.builds != nil {
			buildcache.RegisterRoutes(r, s.builds)
		}
		r.Handle("/*", staticHandler(s.cfg.OutputDir))
	})

	return r
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

// Hub returns the live reload hub.
func (s *Server) Hub() *Hub { return s.hub }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info("dev server listening", zap.String("addr", addr), zap.String("dir", s.cfg.OutputDir))
	return s.httpServer.ListenAndServe()
}

// Shutdown closes live reload connections and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		http.Error(w, `{"error":"q is required"}`, http.StatusBadRequest)
		return
	}
	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n <= 0 {
			http.Error(w, `{"error":"limit must be a positive integer"}`, http.StatusBadRequest)
			return
		}
		limit = n
	}

	data, err := os.ReadFile(filepath.Join(s.cfg.OutputDir, site.SearchIndexFile))
	if err != nil {
		http.Error(w, `{"error":"search index not built"}`, http.StatusServiceUnavailable)
		return
	}
	entries, err := site.LoadSearchIndex(data)
	if err != nil {
		s.logger.Error("decoding search index", zap.Error(err))
		http.Error(w, `{"error":"search index unreadable"}`, http.StatusInternalServerError)
		return
	}

	results := site.Search(entries, q, limit)
	if results == nil {
		results = []site.SearchEntry{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

// requestLogger logs one line per request through zap.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
