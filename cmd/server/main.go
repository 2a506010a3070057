package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/smartnotes/note-analyzer/internal/cache"
	"github.com/smartnotes/note-analyzer/internal/config"
	"github.com/smartnotes/note-analyzer/internal/handlers"
	"github.com/smartnotes/note-analyzer/internal/logging"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	closer := logging.Setup(cfg.LogLevel, cfg.LogFile)
	defer closer.Close()

	// Create server
	server, err := handlers.NewServer(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create server")
	}

	// Expired cache entries are purged on a schedule
	sweeper, err := cache.NewSweeper(server.CacheManager(), cfg.CacheSweepSchedule)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule cache sweep")
	}
	sweeper.Start()

	httpServer := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      server.SetupRoutes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.AnalyzerTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().
			Str("addr", cfg.Addr()).
			Str("analyzer_mode", cfg.AnalyzerMode).
			Msg("Starting server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	<-sigChan
	log.Info().Msg("Shutting down server...")

	sweeper.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}

	log.Info().Msg("Server stopped")
}
