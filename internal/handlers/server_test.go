package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartnotes/note-analyzer/internal/analysis"
	"github.com/smartnotes/note-analyzer/internal/cache"
	"github.com/smartnotes/note-analyzer/internal/config"
	"github.com/smartnotes/note-analyzer/internal/metrics"
	"github.com/smartnotes/note-analyzer/internal/runner"
)

// mockAnalyzer counts calls and answers a fixed result
type mockAnalyzer struct {
	result analysis.Result
	err    error
	calls  int
}

func (m *mockAnalyzer) Analyze(ctx context.Context, text string) (analysis.Result, error) {
	m.calls++
	return m.result, m.err
}

func (m *mockAnalyzer) Mode() string { return "mock" }

func testConfig() *config.Config {
	return &config.Config{
		Port:               "5001",
		Host:               "127.0.0.1",
		AllowedOrigins:     []string{"*"},
		AnalyzerMode:       config.ModeInProcess,
		SummaryLanguage:    "english",
		SummarySentences:   2,
		CacheType:          "memory",
		CacheDuration:      60,
		CacheSweepSchedule: "@every 10m",
		LogLevel:           "info",
		LogFile:            "/var/log/secret-path.log",
	}
}

func newTestServer(t *testing.T, analyzer runner.Analyzer) *Server {
	t.Helper()
	manager, err := cache.NewManager("memory", time.Hour)
	require.NoError(t, err)
	return NewServerWith(testConfig(), analyzer, manager, metrics.New())
}

func doRequest(s *Server, method, path string, body string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	s.SetupRoutes().ServeHTTP(w, req)
	return w
}

func TestRootHandler(t *testing.T) {
	s := newTestServer(t, &mockAnalyzer{})

	w := doRequest(s, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Backend is running", w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestHealthHandler(t *testing.T) {
	s := newTestServer(t, &mockAnalyzer{})

	w := doRequest(s, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, Version, body["version"])
}

func TestSummarizeHandler(t *testing.T) {
	mock := &mockAnalyzer{result: analysis.Success("First. Second.", []string{"keyword1"})}
	s := newTestServer(t, mock)

	w := doRequest(s, http.MethodPost, "/api/summarize", `{"text": "First. Second. Third."}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body, 2)
	assert.Equal(t, "First. Second.", body["summary"])
	assert.Equal(t, []interface{}{"keyword1"}, body["keywords"])
}

func TestSummarizeHandlerUsesCache(t *testing.T) {
	mock := &mockAnalyzer{result: analysis.Success("Cached.", []string{})}
	s := newTestServer(t, mock)
	router := s.SetupRoutes()

	for i, expected := range []string{"MISS", "HIT"} {
		req := httptest.NewRequest(http.MethodPost, "/api/summarize", strings.NewReader(`{"text": "same text"}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, "request %d", i)
		assert.Equal(t, expected, w.Header().Get("X-Cache"), "request %d", i)
	}
	assert.Equal(t, 1, mock.calls)
}

func TestSummarizeHandlerDoesNotCacheFailures(t *testing.T) {
	mock := &mockAnalyzer{result: analysis.Failure(errors.New("tokenizer data missing"))}
	s := newTestServer(t, mock)
	router := s.SetupRoutes()

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/summarize", strings.NewReader(`{"text": "text"}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var body analysis.Result
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, analysis.ErrorSummary, body.Summary)
		assert.Equal(t, []string{"tokenizer data missing"}, body.Keywords)
	}
	assert.Equal(t, 2, mock.calls)
}

func TestSummarizeHandlerBadRequests(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"empty text", `{"text": ""}`, "No text provided"},
		{"missing text", `{}`, "No text provided"},
		{"invalid json", `{"text":`, "Invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockAnalyzer{}
			s := newTestServer(t, mock)

			w := doRequest(s, http.MethodPost, "/api/summarize", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.message, body["error"])
			assert.Equal(t, 0, mock.calls)
		})
	}
}

func TestSummarizeHandlerAnalyzerError(t *testing.T) {
	mock := &mockAnalyzer{err: runner.ErrProcessingText}
	s := newTestServer(t, mock)

	w := doRequest(s, http.MethodPost, "/api/summarize", `{"text": "text"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Error processing text")
}

func TestSummarizeHandlerInProcess(t *testing.T) {
	s := newTestServer(t, runner.NewLocal(analysis.DefaultOptions()))

	w := doRequest(s, http.MethodPost, "/api/summarize", `{"text": "A short note about gardening."}`)
	require.Equal(t, http.StatusOK, w.Code)

	var body analysis.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "A short note about gardening.", body.Summary)
	assert.Equal(t, []string{"gardening."}, body.Keywords)
}

func TestSummarizeHandlerSentenceLimit(t *testing.T) {
	opts := analysis.DefaultOptions()
	opts.MaxSentences = 5
	s := newTestServer(t, runner.NewLocal(opts))

	payload, err := json.Marshal(SummarizeRequest{Text: strings.Repeat("Notes pile up quickly. ", 6)})
	require.NoError(t, err)

	w := doRequest(s, http.MethodPost, "/api/summarize", string(payload))
	require.Equal(t, http.StatusOK, w.Code)

	var body analysis.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, analysis.ErrorSummary, body.Summary)
	require.Len(t, body.Keywords, 1)
	assert.Contains(t, body.Keywords[0], analysis.ErrTooManySentences.Error())

	ok, err := s.CacheManager().IsCached(context.Background(), strings.Repeat("Notes pile up quickly. ", 6))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewServerAppliesSentenceLimit(t *testing.T) {
	cfg := testConfig()
	cfg.SummaryMaxSentences = 3
	s, err := NewServer(cfg)
	require.NoError(t, err)

	result, err := s.analyzer.Analyze(context.Background(), strings.Repeat("Notes pile up quickly. ", 4))
	require.NoError(t, err)
	assert.True(t, result.Failed())
}

func TestCacheEndpoints(t *testing.T) {
	mock := &mockAnalyzer{result: analysis.Success("s", nil)}
	s := newTestServer(t, mock)
	router := s.SetupRoutes()

	req := httptest.NewRequest(http.MethodPost, "/api/summarize", strings.NewReader(`{"text": "note"}`))
	router.ServeHTTP(httptest.NewRecorder(), req)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/cache/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var stats map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 1.0, stats["total_entries"])
	assert.Contains(t, stats, "hit_count")
	assert.Contains(t, stats, "miss_count")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/cache/clear", nil))
	require.Equal(t, http.StatusOK, w.Code)

	ok, err := s.CacheManager().IsCached(context.Background(), "note")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConfigHandlerIsSanitized(t *testing.T) {
	s := newTestServer(t, &mockAnalyzer{})

	w := doRequest(s, http.MethodGet, "/api/config", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"analyzer_mode":"inprocess"`)
	assert.NotContains(t, w.Body.String(), "secret-path")
}

func TestStatusHandler(t *testing.T) {
	s := newTestServer(t, &mockAnalyzer{})

	w := doRequest(s, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "running", body["status"])
	assert.Equal(t, "mock", body["analyzer_mode"])
}

// brokenCache fails every operation
type brokenCache struct{}

var errCacheDown = errors.New("cache unavailable")

func (brokenCache) Get(ctx context.Context, key string) (*cache.CacheEntry, error) {
	return nil, errCacheDown
}
func (brokenCache) Set(ctx context.Context, key string, entry *cache.CacheEntry) error {
	return errCacheDown
}
func (brokenCache) Delete(ctx context.Context, key string) error { return errCacheDown }
func (brokenCache) Exists(ctx context.Context, key string) (bool, error) { return false, errCacheDown }
func (brokenCache) Clear(ctx context.Context) error { return errCacheDown }
func (brokenCache) Purge(ctx context.Context) (int, error) { return 0, errCacheDown }
func (brokenCache) GetStats(ctx context.Context) (*cache.Stats, error) { return nil, errCacheDown }

func TestStatusHandlerReportsCacheError(t *testing.T) {
	s := NewServerWith(testConfig(), &mockAnalyzer{}, cache.NewManagerWithCache(brokenCache{}), metrics.New())

	w := doRequest(s, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "cache unavailable", body["cache_error"])
	assert.NotContains(t, body, "cache")
}

func TestSummarizeHandlerSurvivesCacheErrors(t *testing.T) {
	mock := &mockAnalyzer{result: analysis.Success("s", nil)}
	s := NewServerWith(testConfig(), mock, cache.NewManagerWithCache(brokenCache{}), metrics.New())

	w := doRequest(s, http.MethodPost, "/api/summarize", `{"text": "note"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	assert.Equal(t, 1, mock.calls)
}

func TestMetricsEndpoint(t *testing.T) {
	mock := &mockAnalyzer{result: analysis.Success("s", nil)}
	s := newTestServer(t, mock)
	router := s.SetupRoutes()

	router.ServeHTTP(httptest.NewRecorder(),
		httptest.NewRequest(http.MethodPost, "/api/summarize", strings.NewReader(`{"text": "note"}`)))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `notes_analyses_total{outcome="success"} 1`)
	assert.Contains(t, w.Body.String(), `notes_http_requests_total{code="200",route="/api/summarize"} 1`)
}

func TestInvalidRoute(t *testing.T) {
	s := newTestServer(t, &mockAnalyzer{})

	w := doRequest(s, http.MethodGet, "/invalid/route", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	tests := []struct {
		method   string
		path     string
		expected int
	}{
		{http.MethodGet, "/api/summarize", http.StatusMethodNotAllowed},
		{http.MethodPost, "/api/health", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/cache/clear", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/unknown", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := doRequest(s, tt.method, tt.path, "")
			require.Equal(t, tt.expected, w.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "error", body["status"])
		})
	}
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, &mockAnalyzer{})

	w := doRequest(s, http.MethodOptions, "/api/summarize", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	s.config.AllowedOrigins = []string{"http://localhost:5173"}
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w = httptest.NewRecorder()
	s.SetupRoutes().ServeHTTP(w, req)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	s.SetupRoutes().ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDIsPropagated(t *testing.T) {
	s := newTestServer(t, &mockAnalyzer{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	s.SetupRoutes().ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestNewServerModes(t *testing.T) {
	cfg := testConfig()
	s, err := NewServer(cfg)
	require.NoError(t, err)
	assert.Equal(t, "inprocess", s.analyzer.Mode())

	cfg.AnalyzerMode = config.ModeSubprocess
	cfg.AnalyzerPath = "note-analyze"
	cfg.AnalyzerTimeout = time.Second
	s, err = NewServer(cfg)
	require.NoError(t, err)
	assert.Equal(t, "subprocess", s.analyzer.Mode())

	cfg.CacheType = "redis"
	_, err = NewServer(cfg)
	assert.Error(t, err)
}
