package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"PoolScanner/internal/config"
	"PoolScanner/internal/httpx"
	"PoolScanner/internal/infrastructure/opendata"
	"PoolScanner/internal/infrastructure/parksjson"
	"PoolScanner/internal/infrastructure/scheduler"
	"PoolScanner/internal/infrastructure/storage"
	"PoolScanner/internal/infrastructure/webpage"
	"PoolScanner/internal/logging"
	"PoolScanner/internal/match"
	"PoolScanner/internal/report"
	"PoolScanner/internal/source"
	"PoolScanner/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	db       *sql.DB
}

// New builds a runnable application instance. A missing database DSN
// disables persistence but keeps the reporting pipeline functional.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	var db *sql.DB
	if cfg.Database.DSN != "" {
		var err error
		db, err = storage.Open(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("connect storage: %w", err)
		}
		if err := storage.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate storage: %w", err)
		}
	}

	client := httpx.New(0)
	registry := source.NewRegistry()

	if cfg.Sources.OpenData.ProgramsURL != "" {
		registry.Register(opendata.New(
			cfg.Sources.OpenData.ProgramsURL,
			cfg.Sources.OpenData.LocationsURL,
			client,
			baseLogger.With("component", "source.open_data")))
	}

	if cfg.Sources.ParksJSON.BaseURL != "" {
		locations := make([]parksjson.Location, 0, len(cfg.Sources.ParksJSON.Locations))
		for _, entry := range cfg.Sources.ParksJSON.Locations {
			locations = append(locations, parksjson.Location{LocationID: entry.ID, Name: entry.Name})
		}
		registry.Register(parksjson.New(
			cfg.Sources.ParksJSON.BaseURL,
			locations,
			client,
			baseLogger.With("component", "source.parks_json")))
	}

	if len(cfg.Sources.WebPages) > 0 {
		pages := make([]webpage.Page, 0, len(cfg.Sources.WebPages))
		for _, entry := range cfg.Sources.WebPages {
			pages = append(pages, webpage.Page{FacilityName: entry.Facility, URL: entry.URL})
		}
		registry.Register(webpage.New(pages, client,
			baseLogger.With("component", "source.web_page")))
	}

	resolver := match.New(cfg.Pipeline.MatchThreshold)
	if len(cfg.Sources.Overrides) > 0 {
		overrides := make(match.Overrides, len(cfg.Sources.Overrides))
		for name, id := range cfg.Sources.Overrides {
			overrides[strings.ToLower(strings.TrimSpace(name))] = id
		}
		resolver.Fallback = overrides
	}

	deps := usecase.PipelineDeps{
		Sources:      registry,
		Resolver:     resolver,
		Logger:       baseLogger.With("component", "pipeline"),
		HorizonWeeks: cfg.Pipeline.WeeksAhead,
		Optimize:     cfg.Pipeline.Optimize,
		FetchWorkers: cfg.Pipeline.FetchWorkers,
	}
	if db != nil {
		deps.Directory = storage.NewFacilityRepository(db)
		deps.Store = storage.NewSessionRepository(db)
	}
	if cfg.Pipeline.ReportDir != "" {
		deps.Exporter = report.NewFileExporter(cfg.Pipeline.ReportDir)
	}

	return &Application{
		cfg:      cfg,
		logger:   baseLogger,
		pipeline: usecase.NewPipeline(deps),
		db:       db,
	}, nil
}

// Run performs a single reconciliation pass.
func (a *Application) Run(ctx context.Context) error {
	if a.pipeline == nil {
		return nil
	}

	today := time.Now().In(a.cfg.Scheduler.Location())
	_, err := a.pipeline.Run(ctx, today)
	return err
}

// RunScheduled drives recurring passes from the configured cron
// expression until the context is cancelled.
func (a *Application) RunScheduled(ctx context.Context) error {
	driver, err := scheduler.NewCronScheduler(
		a.cfg.Scheduler.CronExpression,
		a.cfg.Scheduler.Timezone)
	if err != nil {
		return fmt.Errorf("build scheduler: %w", err)
	}

	runner := usecase.NewScheduler(driver, a.pipeline, a.logger.With("component", "scheduler"))
	if err := runner.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return runner.Stop(stopCtx)
}

// Close releases held resources.
func (a *Application) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
