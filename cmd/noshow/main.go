package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"hotel_pms/internal/adapters/observability"
	"hotel_pms/internal/adapters/pmsclient"
	"hotel_pms/internal/app"
	"hotel_pms/internal/shared"
)

func main() {
	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(cfg.NoShowHotels) == 0 {
		log.Fatal().Msg("NOSHOW_HOTEL_IDS is empty")
	}
	log.Info().
		Str("base", cfg.APIBaseURL).
		Int("workers", cfg.NoShowWorkers).
		Strs("hotels", cfg.NoShowHotels).
		Msg("no-show sweep starting")

	client, err := pmsclient.New(cfg.APIBaseURL, cfg.APIKey, cfg.NoShowRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize API client")
	}

	res, err := app.NewNoShowSweeper(client, cfg.NoShowWorkers).Sweep(ctx, cfg.NoShowHotels)
	ev := log.Info()
	if err != nil || res.Failed > 0 {
		ev = log.Warn().Err(err)
	}
	ev.Int("marked", res.Marked).Int("failed", res.Failed).Msg("no-show sweep completed")
	if err != nil {
		os.Exit(1)
	}
}
