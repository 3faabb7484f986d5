package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/courtloop/challenge-engine/internal/api"
	"github.com/courtloop/challenge-engine/internal/config"
	"github.com/courtloop/challenge-engine/internal/leaderboard"
	"github.com/courtloop/challenge-engine/internal/rewards"
	"github.com/courtloop/challenge-engine/internal/store"
)

func main() {
	configPath := flag.String("config", "config.yml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("failed to load config")
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	epoch, err := cfg.EpochTime()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid challenge epoch")
	}

	db, err := store.NewSQLite(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.Database.Path).Msg("failed to open database")
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	rewardSystem := rewards.NewSystem(db, logger)
	server := api.NewServer(epoch, rewardSystem, db, logger)
	if cfg.Leaderboard.Enabled {
		server.WithSubmitter(leaderboard.NewClient(leaderboard.Config{
			BaseURL:   cfg.Leaderboard.BaseURL,
			APIKey:    cfg.Leaderboard.APIKey,
			UserAgent: "challenge-engine/" + api.Version,
		}))
	}

	httpServer := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: server.Routes(),
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTP.Addr).Str("version", api.Version).Msg("starting challenge engine")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
