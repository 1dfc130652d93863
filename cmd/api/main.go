package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mvvmshift/mvvmshift/internal/api"
	"github.com/mvvmshift/mvvmshift/internal/config"
	"github.com/mvvmshift/mvvmshift/internal/engine"
	"github.com/mvvmshift/mvvmshift/internal/gitrepo"
	"github.com/mvvmshift/mvvmshift/internal/history"
)

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	eng, err := engine.New(engine.Options{Workers: cfg.ScanWorkers})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create engine")
	}

	repos := gitrepo.NewRepoService(filepath.Join(os.TempDir(), "mvvmshift-repos"), cfg.GitHubToken)

	// Scan history is optional; without a database the API still scans
	// and fixes, it just records nothing.
	var store *history.Store
	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		store, err = history.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			cancel()
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer store.Close()

		if err := store.Migrate(ctx); err != nil {
			cancel()
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
		cancel()
	} else {
		log.Warn().Msg("DATABASE_URL not set, scan history disabled")
	}

	// Create server
	srv, err := api.NewServer(cfg, eng, repos, store)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create server")
	}

	// Start server. The write timeout must stay above the router's
	// 120s handler budget or repository scans get cut off mid-response.
	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 150 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan bool)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info().Msg("server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(ctx); err != nil {
			log.Fatal().Err(err).Msg("could not gracefully shutdown the server")
		}
		close(done)
	}()

	log.Info().Int("port", cfg.Port).Msg("starting API server")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("could not listen on port")
	}

	<-done
	log.Info().Msg("server stopped")
}
