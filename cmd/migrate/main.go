package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/dvloznov/expense-tracker/internal/config"
	"github.com/dvloznov/expense-tracker/internal/infra/bigquery"
	"github.com/dvloznov/expense-tracker/internal/infra/postgres"
	"github.com/dvloznov/expense-tracker/internal/logger"
)

var (
	configPath = flag.String("config", "", "path to a TOML or YAML config file")
	timeout    = flag.Duration("timeout", 2*time.Minute, "maximum time to spend applying the schema")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.New().Fatal().Err(err).Msg("Failed to load config")
	}

	log := logger.NewWithOptions(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	ctx, cancel := context.WithTimeout(logger.WithContext(context.Background(), log), *timeout)
	defer cancel()

	if err := run(ctx, cfg.Storage); err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("Migration failed")
	}
}

// run creates or upgrades the transaction schema of the configured driver.
func run(ctx context.Context, storage config.StorageConfig) error {
	log := logger.FromContext(ctx).With().Str("driver", storage.Driver).Logger()

	switch storage.Driver {
	case config.DriverPostgres:
		applied, err := postgres.Migrate(ctx, storage.DatabaseURL)
		if err != nil {
			return err
		}
		if applied {
			log.Info().Msg("Schema upgraded")
		} else {
			log.Info().Msg("Schema is up to date")
		}
		return nil

	case config.DriverBigQuery:
		if err := bigquery.EnsureTable(ctx, storage.BigQueryProject, storage.BigQueryDataset); err != nil {
			return err
		}
		log.Info().
			Str("project", storage.BigQueryProject).
			Str("dataset", storage.BigQueryDataset).
			Msg("Transactions table is ready")
		return nil

	case config.DriverMemory:
		log.Info().Msg("In-memory storage has no schema, nothing to do")
		return nil

	default:
		return fmt.Errorf("run: unknown storage driver %q", storage.Driver)
	}
}
