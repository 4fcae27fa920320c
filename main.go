package main

import (
	"context"
	"log"
	"os"

	"bioeq/adapters/artifact"
	"bioeq/adapters/dataset"
	"bioeq/adapters/postgres"
	"bioeq/app"
	"bioeq/internal"
	"bioeq/internal/config"
	"bioeq/ports"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	logger := internal.NewDefaultLogger()
	ctx := context.Background()

	archive, err := initArchive(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("archive setup failed: %v", err)
	}

	sink := artifact.NewFSSink(cfg.Output.Dir)
	svc := app.NewReportService(logger, dataset.NewCourseSource(), sink, archive,
		cfg.Simulation.Seed, cfg.Simulation.NSim)

	run, err := svc.Run(ctx)
	if err != nil {
		logger.Error("analysis failed: %v", err)
		os.Exit(1)
	}

	logger.Info("run %s complete; artifacts in %s", run.RunID, sink.Dir())
}

// initArchive connects the optional Postgres run archive. An unset
// DATABASE_URL simply disables it.
func initArchive(ctx context.Context, cfg *config.Config, logger *internal.Logger) (ports.RunArchive, error) {
	if cfg.Database.URL == "" {
		logger.Debug("DATABASE_URL not set; run archiving disabled")
		return nil, nil
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	archive := postgres.NewRunArchive(db)
	if err := archive.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	logger.Info("run archive enabled")
	return archive, nil
}
