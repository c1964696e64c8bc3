// Package main is the entry point of the engagement API server.
//
// Startup order: configuration, logging, storage (with migrations), the
// optional Redis content cache, circuit breakers, the event bus with optional
// NATS forwarding, application handlers and finally the HTTP server.
// SIGINT/SIGTERM trigger a graceful shutdown bounded by app.shutdown_timeout.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/streamhub/engagement-hub/config"
	"github.com/streamhub/engagement-hub/internal/application/command"
	"github.com/streamhub/engagement-hub/internal/application/eventhandler"
	"github.com/streamhub/engagement-hub/internal/application/query"
	"github.com/streamhub/engagement-hub/internal/infrastructure/asset"
	"github.com/streamhub/engagement-hub/internal/infrastructure/messaging"
	"github.com/streamhub/engagement-hub/internal/infrastructure/persistence/bootstrap"
	"github.com/streamhub/engagement-hub/internal/infrastructure/persistence/redis"
	"github.com/streamhub/engagement-hub/internal/infrastructure/persistence/resilient"
	httpapi "github.com/streamhub/engagement-hub/internal/interface/http"
	"github.com/streamhub/engagement-hub/internal/interface/http/handlers"
	"github.com/streamhub/engagement-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION & LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := setupLogger(cfg)
	log.Info("starting engagement API",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
		logger.String("storage", cfg.Storage.Driver),
	)

	health := handlers.NewCompositeHealthChecker(cfg.App.Version)

	// ─────────────────────────────────────────────────────────────────────────
	// 2. STORAGE
	// ─────────────────────────────────────────────────────────────────────────
	stores, err := bootstrap.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer stores.Close()
	if stores.Pinger != nil {
		health.AddCheck("database", handlers.NewPingCheck(stores.Pinger))
	}

	contents := stores.Contents

	// ─────────────────────────────────────────────────────────────────────────
	// 3. REDIS CONTENT CACHE (optional)
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Redis.Enabled {
		cache, err := redis.NewCache(redis.ConfigFrom(cfg.Redis))
		if err != nil {
			log.Warn("redis unavailable, content cache disabled", logger.Err(err))
		} else {
			defer cache.Close()
			contents = redis.NewContentCache(contents, cache, cfg.Redis.ContentTTL, log)
			health.AddCheck("redis", handlers.NewPingCheck(cache))
			log.Info("content cache enabled", logger.Duration("ttl", cfg.Redis.ContentTTL))
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. CIRCUIT BREAKERS
	// ─────────────────────────────────────────────────────────────────────────
	breakerOpts := resilient.Options{
		Failures:    cfg.Resilience.BreakerFailures,
		OpenTimeout: cfg.Resilience.BreakerTimeout,
		Logger:      log,
	}
	guardedRelations := resilient.NewRelationStore(stores.Relations, breakerOpts)
	guardedContents := resilient.NewContentStore(contents, breakerOpts)
	health.AddCheck("relation_breaker", handlers.NewBreakerCheck(guardedRelations.Breaker()))
	health.AddCheck("content_breaker", handlers.NewBreakerCheck(guardedContents.Breaker()))

	// ─────────────────────────────────────────────────────────────────────────
	// 5. EVENT BUS & NATS
	// ─────────────────────────────────────────────────────────────────────────
	busCfg := messaging.DefaultInMemoryEventBusConfig()
	busCfg.Logger = log
	bus := messaging.NewInMemoryEventBus(busCfg)
	defer func() {
		log.Info("closing event bus...")
		_ = bus.Close()
	}()

	toggled := eventhandler.NewOnRelationToggledHandler(log)
	if err := bus.Subscribe(toggled.EventType(), toggled.Handle); err != nil {
		return fmt.Errorf("subscribe toggle handler: %w", err)
	}

	if cfg.NATS.Enabled {
		nc, err := messaging.ConnectNATS(cfg.NATS, cfg.App.Name, log)
		if err != nil {
			log.Warn("nats unavailable, event forwarding disabled", logger.Err(err))
		} else {
			defer func() {
				if err := nc.Drain(); err != nil {
					log.Warn("nats drain failed", logger.Err(err))
				}
			}()
			publisher := messaging.NewNATSPublisher(nc, cfg.NATS.SubjectPrefix, log)
			if err := bus.SubscribeAll(publisher.Handle); err != nil {
				return fmt.Errorf("subscribe nats publisher: %w", err)
			}
			log.Info("forwarding events to nats", logger.String("url", nc.ConnectedUrl()))
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. APPLICATION HANDLERS
	// ─────────────────────────────────────────────────────────────────────────
	assets := asset.NewBaseURLResolver(cfg.Asset.BaseURL)
	views := query.NewViewBuilder(guardedRelations)

	deps := httpapi.Dependencies{
		ToggleRelation: command.NewToggleRelationHandler(guardedRelations, guardedContents, bus, log),
		RelationStatus: query.NewRelationStatusHandler(guardedRelations, guardedContents),
		AssembleFeed:   query.NewAssembleFeedHandler(guardedContents, views, assets, log),
		GetVideo:       query.NewGetVideoHandler(guardedContents, views, assets),
		Logger:         log,
		HealthChecker:  health,
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 7. HTTP SERVER & GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	server := httpapi.NewServer(httpapi.ConfigFrom(cfg), deps)
	errCh := server.StartAsync()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
		return nil
	case <-ctx.Done():
		log.Info("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	log.Info("shutdown completed successfully")
	return nil
}

// setupLogger builds the logger from the observability settings.
func setupLogger(cfg *config.Config) *logger.Logger {
	opts := logger.DefaultOptions()
	opts.Level = logger.ParseLevel(cfg.Observability.LogLevel)
	opts.Format = cfg.Observability.LogFormat
	if opts.Format == "" && cfg.IsDevelopment() {
		opts.Format = "console"
	}
	return logger.New(opts).With(logger.String("service", cfg.App.Name))
}
