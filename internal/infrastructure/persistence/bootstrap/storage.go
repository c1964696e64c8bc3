// Package bootstrap opens the relation and content stores for the configured
// storage driver.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/streamhub/engagement-hub/config"
	"github.com/streamhub/engagement-hub/internal/domain/content"
	"github.com/streamhub/engagement-hub/internal/domain/relation"
	"github.com/streamhub/engagement-hub/internal/infrastructure/persistence/memory"
	"github.com/streamhub/engagement-hub/internal/infrastructure/persistence/postgres"
	"github.com/streamhub/engagement-hub/internal/infrastructure/persistence/sqlite"
	"github.com/streamhub/engagement-hub/pkg/logger"
	"github.com/streamhub/engagement-hub/pkg/retry"
)

// Storage is the opened backend for the configured driver.
type Storage struct {
	Relations relation.Store
	Contents  content.Store
	Writer    content.Writer
	Pinger    interface{ Ping(context.Context) error }
	close     func()
}

// Close releases the backend.
func (s *Storage) Close() {
	if s.close != nil {
		s.close()
	}
}

// Open connects to the backend named by cfg.Storage.Driver. Postgres
// connections are retried and migrated when database.auto_migrate is set.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		return openPostgres(ctx, cfg, log)

	case config.DriverSQLite:
		store, err := sqlite.Open(cfg.SQLite.Path, cfg.SQLite.BusyTimeout)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
		log.Info("sqlite store opened", logger.String("path", cfg.SQLite.Path))
		contents := store.Contents()
		return &Storage{
			Relations: store.Relations(),
			Contents:  contents,
			Writer:    contents,
			Pinger:    store,
			close: func() {
				log.Info("closing sqlite store...")
				_ = store.Close()
			},
		}, nil

	case config.DriverMemory:
		log.Warn("using in-memory storage, state is lost on restart")
		relations := memory.NewRelationStore()
		contents := memory.NewContentStore(relations)
		return &Storage{Relations: relations, Contents: contents, Writer: contents}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Storage, error) {
	log.Info("connecting to database...")

	retrier := retry.ConnectRetrier(cfg.Resilience.ConnectAttempts, func(attempt int, err error, delay time.Duration) {
		log.Warn("database not ready, retrying",
			logger.Int("attempt", attempt),
			logger.Duration("delay", delay),
			logger.Err(err),
		)
	})
	conn, err := retry.DoWithData(ctx, retrier, func(ctx context.Context) (*postgres.Connection, error) {
		return postgres.NewConnection(ctx, postgres.ConfigFrom(cfg.Database))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("database connection established")

	if cfg.Database.AutoMigrate {
		if err := postgres.NewMigrator(conn).Migrate(ctx); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("database schema is up to date")
	}

	contents := postgres.NewContentRepository(conn)
	return &Storage{
		Relations: postgres.NewRelationRepository(conn),
		Contents:  contents,
		Writer:    contents,
		Pinger:    conn,
		close: func() {
			log.Info("closing database connection...")
			conn.Close()
		},
	}, nil
}
