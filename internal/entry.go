// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/jarifuri/org-sql/internal/mapper"
	"github.com/jarifuri/org-sql/internal/org"
	"github.com/jarifuri/org-sql/internal/schema"
	"github.com/jarifuri/org-sql/internal/sqlgen"
	"github.com/jarifuri/org-sql/internal/storage"
	"github.com/jarifuri/org-sql/internal/store"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("source_path", cfg.Source.Path),
		slog.String("dialect", cfg.Database.Dialect),
		slog.String("log_level", cfg.App.LogLevel.String()))

	source, err := storage.NewFS(cfg.Source.Path, cfg.Source.Extension)
	if err != nil {
		return fmt.Errorf("init source: %w", err)
	}

	compiler := sqlgen.New(schema.Default(), cfg.Database.SQLDialect())

	db, err := store.Open(compiler, cfg.Database.DataSource())
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer db.Close()

	if err := db.InitSchema(); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}

	m, err := mapper.New(cfg.MapperConfig())
	if err != nil {
		return fmt.Errorf("init mapper: %w", err)
	}

	parseOpts := org.DefaultOptions()
	if len(cfg.Source.TodoKeywords) > 0 {
		parseOpts.TodoKeywords = cfg.Source.TodoKeywords
	}
	if cfg.Source.LogDrawer != "" {
		parseOpts.LogDrawer = cfg.Source.LogDrawer
	}

	pipeline := NewPipeline(source, db, m, compiler, parseOpts, logger)

	if !app.watch {
		if err := pipeline.Sync(ctx); err != nil {
			logger.Error("Sync failed", slog.String("error", err.Error()))
			return err
		}
		logger.Info("Sync complete")
		return nil
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return Watch(gCtx, pipeline, source.Root(), source.Ext(), logger)
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
			return context.Canceled
		case <-gCtx.Done():
			return nil
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Stopped successfully")
	return nil
}
