package main

import (
	"context"

	"ralli/internal/config"
	"ralli/internal/db"
	"ralli/internal/logger"
	"ralli/internal/migrate"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New("migrate", cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()
	// DDL can outlive the request statement timeout.
	pool, err := db.Connect(ctx, cfg.DBConnString, 0)
	if err != nil {
		log.Fatal().Err(err).Msg("connect db")
	}
	defer pool.Close()

	if err := migrate.Apply(ctx, pool, log); err != nil {
		log.Fatal().Err(err).Msg("apply migrations")
	}

	log.Info().Msg("migrations applied")
}
