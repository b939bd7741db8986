package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvloznov/expense-tracker/internal/assistant"
	"github.com/dvloznov/expense-tracker/internal/backup"
	"github.com/dvloznov/expense-tracker/internal/config"
	"github.com/dvloznov/expense-tracker/internal/infra/bigquery"
	"github.com/dvloznov/expense-tracker/internal/infra/memory"
	"github.com/dvloznov/expense-tracker/internal/infra/postgres"
	"github.com/dvloznov/expense-tracker/internal/ledger"
	"github.com/dvloznov/expense-tracker/internal/logger"
	"github.com/dvloznov/expense-tracker/internal/mirror"
	"github.com/dvloznov/expense-tracker/internal/mirror/notion"
	"github.com/dvloznov/expense-tracker/internal/mirror/sheets"
)

// App holds the wired components shared by the command-line and HTTP front ends.
type App struct {
	Store *ledger.Store
	// Assistant is nil when no Gemini API key is configured.
	Assistant *assistant.Assistant
	Exporter  *backup.Exporter

	dispatcher *mirror.Dispatcher
}

// New opens storage, starts the mirror (if enabled) and builds the assistant
// (if configured). The logger is taken from ctx.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.FromContext(ctx)

	repo, err := OpenRepository(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("New: %w", err)
	}

	var opts []ledger.Option
	var dispatcher *mirror.Dispatcher
	if cfg.MirrorEnabled() {
		m, err := newMirror(ctx, cfg)
		if err != nil {
			_ = repo.Close()
			return nil, fmt.Errorf("New: %w", err)
		}

		ensureCtx, cancel := context.WithTimeout(ctx, cfg.Mirror.Timeout)
		if err := m.EnsureSchema(ensureCtx); err != nil {
			// Mirroring is best effort; the store keeps working without it.
			log.Warn().Err(err).Str("mirror_target", cfg.Mirror.Target).Msg("Failed to prepare mirror schema")
		}
		cancel()

		dispatcher = mirror.NewDispatcher(m, mirror.DispatcherOptions{
			QueueSize: cfg.Mirror.QueueSize,
			Timeout:   cfg.Mirror.Timeout,
		})
		opts = append(opts, ledger.WithNotifier(dispatcher))
		log.Info().Str("mirror_target", cfg.Mirror.Target).Msg("Mirroring enabled")
	}

	a := &App{
		Store:      ledger.NewStore(repo, opts...),
		Exporter:   backup.NewExporter(backup.NewGCSStore(0)),
		dispatcher: dispatcher,
	}

	if cfg.AssistantEnabled() {
		gen, err := assistant.NewGeminiGenerator(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			_ = a.Close(ctx)
			return nil, fmt.Errorf("New: %w", err)
		}
		a.Assistant = assistant.New(gen, assistant.WithTimeout(cfg.Gemini.Timeout))
	} else {
		log.Info().Msg("No Gemini API key configured, assistant commands are disabled")
	}

	return a, nil
}

// Close drains pending mirror rows, then closes the store.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.dispatcher != nil {
		if err := a.dispatcher.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("Close: draining mirror: %w", err))
		}
	}
	if err := a.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("Close: closing store: %w", err))
	}
	return errors.Join(errs...)
}

// OpenRepository opens the repository selected by cfg.Driver. Postgres
// migrations and the BigQuery table are applied before the repository is returned.
func OpenRepository(ctx context.Context, cfg config.StorageConfig) (ledger.Repository, error) {
	log := logger.FromContext(ctx)

	switch cfg.Driver {
	case config.DriverMemory:
		log.Warn().Msg("Using in-memory storage, transactions are lost on exit")
		return memory.NewRepository(), nil

	case config.DriverPostgres:
		applied, err := postgres.Migrate(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("OpenRepository: %w", err)
		}
		if applied {
			log.Info().Msg("Applied database migrations")
		}
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("OpenRepository: %w", err)
		}
		return postgres.NewRepository(pool), nil

	case config.DriverBigQuery:
		if err := bigquery.EnsureTable(ctx, cfg.BigQueryProject, cfg.BigQueryDataset); err != nil {
			return nil, fmt.Errorf("OpenRepository: %w", err)
		}
		repo, err := bigquery.NewRepository(ctx, cfg.BigQueryProject, cfg.BigQueryDataset)
		if err != nil {
			return nil, fmt.Errorf("OpenRepository: %w", err)
		}
		return repo, nil

	default:
		return nil, fmt.Errorf("OpenRepository: unknown storage driver %q", cfg.Driver)
	}
}

func newMirror(ctx context.Context, cfg *config.Config) (mirror.Mirror, error) {
	switch cfg.Mirror.Target {
	case config.MirrorSheets:
		m, err := sheets.New(ctx, cfg.Sheets.SpreadsheetID, cfg.Sheets.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("newMirror: %w", err)
		}
		return m, nil
	case config.MirrorNotion:
		return notion.New(notion.NewClient(cfg.Notion.Token), cfg.Notion.DatabaseID), nil
	default:
		return nil, fmt.Errorf("newMirror: unknown mirror target %q", cfg.Mirror.Target)
	}
}
