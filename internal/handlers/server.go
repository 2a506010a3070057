package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/smartnotes/note-analyzer/internal/analysis"
	"github.com/smartnotes/note-analyzer/internal/cache"
	"github.com/smartnotes/note-analyzer/internal/config"
	"github.com/smartnotes/note-analyzer/internal/metrics"
	"github.com/smartnotes/note-analyzer/internal/runner"
	"github.com/smartnotes/note-analyzer/internal/transport/response"
)

// Version is reported by the health endpoint
const Version = "v1.0.0"

// maxBodyBytes bounds the summarize request body
const maxBodyBytes = 1 << 20

// Server holds the HTTP server and its dependencies
type Server struct {
	config       *config.Config
	analyzer     runner.Analyzer
	cacheManager *cache.Manager
	metrics      *metrics.Metrics
	startedAt    time.Time
}

// NewServer creates a new HTTP server from configuration
func NewServer(cfg *config.Config) (*Server, error) {
	cacheManager, err := cache.NewManager(cfg.CacheType, cfg.CacheTTL())
	if err != nil {
		return nil, fmt.Errorf("creating cache manager: %w", err)
	}

	var analyzer runner.Analyzer
	switch cfg.AnalyzerMode {
	case config.ModeSubprocess:
		analyzer = runner.NewSubprocess(cfg.AnalyzerPath, cfg.AnalyzerTimeout)
	default:
		opts := analysis.DefaultOptions()
		opts.Language = cfg.SummaryLanguage
		opts.SentenceCount = cfg.SummarySentences
		opts.MaxSentences = cfg.SummaryMaxSentences
		analyzer = runner.NewLocal(opts)
	}

	return NewServerWith(cfg, analyzer, cacheManager, metrics.New()), nil
}

// NewServerWith creates a server from already built dependencies
func NewServerWith(cfg *config.Config, analyzer runner.Analyzer, cacheManager *cache.Manager, m *metrics.Metrics) *Server {
	return &Server{
		config:       cfg,
		analyzer:     analyzer,
		cacheManager: cacheManager,
		metrics:      m,
		startedAt:    time.Now(),
	}
}

// CacheManager returns the result cache
func (s *Server) CacheManager() *cache.Manager {
	return s.cacheManager
}

// SetupRoutes configures HTTP routes
func (s *Server) SetupRoutes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.requestIDMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.loggingMiddleware)

	r.HandleFunc("/", s.rootHandler).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	// API routes
	api := r.PathPrefix("/api").Subrouter()

	// Health check
	api.HandleFunc("/health", s.healthHandler).Methods(http.MethodGet)

	// Analysis
	api.HandleFunc("/summarize", s.summarizeHandler).Methods(http.MethodPost, http.MethodOptions)

	// Cache operations
	api.HandleFunc("/cache/stats", s.cacheStatsHandler).Methods(http.MethodGet)
	api.HandleFunc("/cache/clear", s.cacheClearHandler).Methods(http.MethodDelete, http.MethodOptions)

	// Status and configuration
	api.HandleFunc("/status", s.statusHandler).Methods(http.MethodGet)
	api.HandleFunc("/config", s.configHandler).Methods(http.MethodGet)

	// Subrouters answer their own misses, so both levels get the handlers.
	for _, router := range []*mux.Router{r, api} {
		router.NotFoundHandler = http.HandlerFunc(notFoundHandler)
		router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowedHandler)
	}

	return r
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	response.WriteNotFound(w, "Not found")
}

func methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	response.WriteMethodNotAllowed(w, "Method not allowed")
}
