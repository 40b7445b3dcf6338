package main

import (
	"context"

	"ralli/internal/config"
	"ralli/internal/db"
	"ralli/internal/logger"
	"ralli/internal/seed"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New("seed", cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, cfg.DBStatementTO)
	if err != nil {
		log.Fatal().Err(err).Msg("connect db")
	}
	defer pool.Close()

	opts := seed.Options{AdminEmails: cfg.AdminEmails, DemoOwnerEmail: cfg.SeedOwnerEmail}
	if err := seed.Apply(ctx, pool, opts, log); err != nil {
		log.Fatal().Err(err).Msg("seed apply")
	}

	log.Info().Msg("seed applied")
}
