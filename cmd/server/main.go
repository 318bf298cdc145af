package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Brunogomez94/siciap-cloud/config"
	"github.com/Brunogomez94/siciap-cloud/logging"
	"github.com/Brunogomez94/siciap-cloud/server"
	"github.com/Brunogomez94/siciap-cloud/store"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Service.Name, cfg.Service.LogLevel)
	logger.Info().Int("port", cfg.Service.Port).Msg("Starting ingestion service")

	st, err := store.Open(cfg.Postgres, cfg.Ingest.BatchSize, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer st.Close()
	logger.Info().Str("host", cfg.Postgres.Host).Str("database", cfg.Postgres.Database).Msg("Connected to PostgreSQL")

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Service.Port),
		Handler:      server.New(st, cfg.Ingest, logger).Router(),
		ReadTimeout:  time.Duration(cfg.Service.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Service.WriteTimeoutSeconds) * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	logger.Info().Msg("Server exited")
}
