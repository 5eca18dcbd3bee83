// Package app wires the search service together and owns its lifecycle.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/internal/cache"
	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/internal/catalog"
	fscatalog "github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/internal/catalog/firestore"
	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/internal/config"
	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/internal/engine"
	esengine "github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/internal/engine/elasticsearch"
	memengine "github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/internal/engine/memory"
	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/internal/event"
	httphandler "github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/internal/handler/http"
	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/internal/service"
	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/pkg/health"
	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/pkg/kafka"
	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/pkg/middleware"
)

// App holds the assembled service and its shutdown hooks.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	server   *http.Server
	cleanups []func() error

	cancelBackground context.CancelFunc
}

// New builds the application from configuration. Startup is fail-fast:
// a missing required dependency aborts instead of serving degraded.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: log}

	backgroundCtx, cancel := context.WithCancel(context.Background())
	a.cancelBackground = cancel

	eng, err := a.buildEngine(log)
	if err != nil {
		return nil, err
	}
	if err := eng.EnsureIndex(ctx); err != nil {
		return nil, fmt.Errorf("ensure index: %w", err)
	}

	var resultCache *cache.Cache
	if cfg.Redis.Enabled() {
		resultCache, err = cache.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL, log)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.cleanups = append(a.cleanups, resultCache.Close)
		log.Info("result cache enabled", slog.String("addr", cfg.Redis.Addr))
	}

	var store catalog.Store
	if cfg.Catalog.Enabled() {
		fs, err := fscatalog.New(ctx, cfg.Catalog.ProjectID, cfg.Catalog.Collection, log)
		if err != nil {
			return nil, fmt.Errorf("connect catalog: %w", err)
		}
		a.cleanups = append(a.cleanups, fs.Close)
		store = fs
		log.Info("catalog connected",
			slog.String("project", cfg.Catalog.ProjectID),
			slog.String("collection", cfg.Catalog.Collection),
		)
	}

	searchSvc := service.NewSearchService(eng, resultCache, log)
	syncSvc := service.NewSyncService(eng, store, resultCache, cfg.SyncChunkSize, log)

	if store != nil && cfg.Catalog.Watch {
		changes, err := store.Subscribe(backgroundCtx)
		if err != nil {
			return nil, fmt.Errorf("subscribe catalog: %w", err)
		}
		go syncSvc.RunSubscription(backgroundCtx, changes)
		log.Info("catalog change feed running")
	}

	if cfg.Kafka.Enabled() {
		if err := kafka.PingBrokers(ctx, cfg.Kafka.Brokers); err != nil {
			return nil, fmt.Errorf("kafka brokers unreachable: %w", err)
		}
		consumer := event.NewProductConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, syncSvc, log)
		a.cleanups = append(a.cleanups, consumer.Close)
		go func() {
			if err := consumer.Start(backgroundCtx); err != nil && backgroundCtx.Err() == nil {
				log.Error("product consumer stopped", slog.String("error", err.Error()))
			}
		}()
		log.Info("product event consumers running", slog.String("group", cfg.Kafka.GroupID))
	}

	healthHandler := health.NewHandler()
	healthHandler.Register("engine", eng.Ping)
	if cfg.Kafka.Enabled() {
		brokers := cfg.Kafka.Brokers
		healthHandler.Register("kafka", func(ctx context.Context) error {
			return kafka.PingBrokers(ctx, brokers)
		})
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORS.AllowedOrigins

	router := httphandler.NewRouter(searchSvc, syncSvc, healthHandler, corsCfg, log)
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return a, nil
}

func (a *App) buildEngine(log *slog.Logger) (engine.SearchEngine, error) {
	switch a.cfg.Engine {
	case config.EngineMemory:
		log.Warn("using in-memory search engine, data is not persistent")
		return memengine.New(), nil
	default:
		return esengine.New(esengine.Config{
			Addresses:     a.cfg.Elasticsearch.Addresses,
			Username:      a.cfg.Elasticsearch.Username,
			Password:      a.cfg.Elasticsearch.Password,
			CloudID:       a.cfg.Elasticsearch.CloudID,
			APIKey:        a.cfg.Elasticsearch.APIKey,
			DiscoverNodes: a.cfg.Elasticsearch.DiscoverNodes,
			IndexName:     a.cfg.Elasticsearch.IndexName,
			BulkRefresh:   a.cfg.Elasticsearch.BulkRefresh,
		}, log)
	}
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", slog.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http shutdown failed", slog.String("error", err.Error()))
	}
	a.cancelBackground()

	for _, cleanup := range a.cleanups {
		if err := cleanup(); err != nil {
			a.logger.Error("cleanup failed", slog.String("error", err.Error()))
		}
	}
	a.logger.Info("shutdown complete")
	return nil
}
