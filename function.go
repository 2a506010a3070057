package cloudfunctions

import (
	"net/http"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/rs/zerolog/log"

	"github.com/smartnotes/note-analyzer/internal/config"
	"github.com/smartnotes/note-analyzer/internal/handlers"
	"github.com/smartnotes/note-analyzer/internal/logging"
)

func init() {
	// Register HTTP function serving the note analyzer API
	functions.HTTP("AnalyzeNote", AnalyzeNote)
}

var (
	routerOnce sync.Once
	router     http.Handler
	routerErr  error
)

// buildRouter creates the server once per instance so the result cache
// survives across invocations.
func buildRouter() (http.Handler, error) {
	routerOnce.Do(func() {
		cfg, err := config.Load()
		if err != nil {
			routerErr = err
			return
		}
		logging.Setup(cfg.LogLevel, "")

		server, err := handlers.NewServer(cfg)
		if err != nil {
			routerErr = err
			return
		}
		router = server.SetupRoutes()
	})
	return router, routerErr
}

// AnalyzeNote is the HTTP function entry point
func AnalyzeNote(w http.ResponseWriter, r *http.Request) {
	h, err := buildRouter()
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize analyzer")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.ServeHTTP(w, r)
}
