package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/smartnotes/note-analyzer/internal/analysis"
	"github.com/smartnotes/note-analyzer/internal/cache"
	"github.com/smartnotes/note-analyzer/internal/logging"
	"github.com/smartnotes/note-analyzer/internal/transport/response"
)

// SummarizeRequest is the body of POST /api/summarize
type SummarizeRequest struct {
	Text string `json:"text"`
}

// rootHandler answers a plain liveness string
func (s *Server) rootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, "Backend is running")
}

// healthHandler provides health check endpoint
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
		"version":   Version,
	})
}

// summarizeHandler analyzes one note and answers the summary and keywords
func (s *Server) summarizeHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req SummarizeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		response.WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.Text == "" {
		response.WriteBadRequest(w, analysis.NoTextSummary)
		return
	}

	cached, err := s.cacheManager.GetResult(ctx, req.Text)
	switch {
	case err == nil:
		s.metrics.CacheLookup(true)
		w.Header().Set("X-Cache", "HIT")
		response.WriteJSON(w, http.StatusOK, cached)
		return
	case !errors.Is(err, cache.ErrCacheMiss):
		logger.Warn().Err(err).Msg("Cache lookup failed")
	}
	s.metrics.CacheLookup(false)

	start := time.Now()
	result, err := s.analyzer.Analyze(ctx, req.Text)
	elapsed := time.Since(start)
	if err != nil {
		s.metrics.ObserveAnalysis(s.analyzer.Mode(), "error", elapsed)
		logger.Error().Err(err).Str("mode", s.analyzer.Mode()).Msg("Error processing text")
		response.WriteInternalError(w, "Error processing text")
		return
	}
	s.metrics.ObserveAnalysis(s.analyzer.Mode(), result.Outcome.String(), elapsed)

	if result.Failed() {
		logger.Warn().Err(result.Err()).Msg("Analysis failed")
	} else {
		logger.Debug().
			Int("text_length", len(req.Text)).
			Int("keywords", len(result.Keywords)).
			Dur("elapsed", elapsed).
			Msg("Analyzed note")
	}

	if err := s.cacheManager.SetResult(ctx, req.Text, result); err != nil {
		logger.Warn().Err(err).Msg("Error caching result")
	}

	w.Header().Set("X-Cache", "MISS")
	response.WriteJSON(w, http.StatusOK, result)
}

// cacheStatsHandler returns cache statistics
func (s *Server) cacheStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := s.cacheManager.GetStats(r.Context())
	if err != nil {
		response.WriteInternalError(w, fmt.Sprintf("Error getting cache stats: %v", err))
		return
	}

	response.WriteJSON(w, http.StatusOK, stats)
}

// cacheClearHandler clears the cache
func (s *Server) cacheClearHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.cacheManager.Clear(r.Context()); err != nil {
		response.WriteInternalError(w, fmt.Sprintf("Error clearing cache: %v", err))
		return
	}

	response.WriteSuccess(w, "Cache cleared successfully", nil)
}

// statusHandler returns system status
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":         "running",
		"version":        Version,
		"uptime_seconds": int64(time.Since(s.startedAt).Seconds()),
		"analyzer_mode":  s.analyzer.Mode(),
	}

	cacheStats, err := s.cacheManager.GetStats(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Warn().Err(err).Msg("Error getting cache stats")
		status["status"] = "degraded"
		status["cache_error"] = err.Error()
	} else {
		status["cache"] = cacheStats
	}

	response.WriteJSON(w, http.StatusOK, status)
}

// configHandler returns configuration (sanitized)
func (s *Server) configHandler(w http.ResponseWriter, r *http.Request) {
	// LogFile is tagged json:"-" and never leaves the process.
	response.WriteJSON(w, http.StatusOK, s.config)
}
