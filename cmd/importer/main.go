package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"ralli/internal/config"
	"ralli/internal/db"
	"ralli/internal/domain"
	"ralli/internal/importer"
	"ralli/internal/logger"
	"ralli/internal/repository/customer"
	"ralli/internal/repository/store"
	"github.com/google/uuid"
)

func main() {
	var (
		filePath string
		storeRef string
	)
	flag.StringVar(&filePath, "file", "", "Path to customer CSV (name, phone, email, language columns)")
	flag.StringVar(&storeRef, "store", "", "Store id or slug to import into")
	flag.Parse()

	if filePath == "" || storeRef == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	log := logger.New("importer", cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DBConnString, cfg.DBStatementTO)
	if err != nil {
		log.Fatal().Err(err).Msg("connect db")
	}
	defer pool.Close()

	st, err := findStore(ctx, store.NewPostgres(pool, log), storeRef)
	if err != nil {
		log.Fatal().Err(err).Str("store", storeRef).Msg("find store")
	}

	f, err := os.Open(filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("open file")
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, customer.NewPostgres(pool, log), st.ID, log)

	start := time.Now()
	res, err := imp.Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Int("imported", res.Imported).Msg("import failed")
	}

	for _, skipped := range res.Skipped {
		fmt.Fprintln(os.Stderr, "skipped", skipped.Error())
	}
	fmt.Printf("Imported %d customers into store %s in %s (%d skipped)\n",
		res.Imported, st.Slug, time.Since(start).Truncate(time.Millisecond), len(res.Skipped))
}

func findStore(ctx context.Context, repo store.Repository, ref string) (*domain.Store, error) {
	if _, err := uuid.Parse(ref); err == nil {
		st, err := repo.GetByID(ctx, ref)
		if err == nil || !errors.Is(err, domain.ErrNotFound) {
			return st, err
		}
	}
	return repo.GetBySlug(ctx, ref)
}
