package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/rx-interaction-engine/internal/api"
	"github.com/rx-interaction-engine/internal/config"
	"github.com/rx-interaction-engine/internal/domain"
	"github.com/rx-interaction-engine/internal/service"
	"github.com/rx-interaction-engine/internal/store"
	"github.com/rx-interaction-engine/pkg/external"
)

func main() {
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}
	cfg := configManager.GetConfig()

	logger := newLogger(cfg.Logging)

	curatedStore, closeStore, err := newCuratedStore(cfg.Database, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open curated store")
	}
	defer closeStore()

	cache, closeCache, err := newResultCache(cfg.Cache, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create result cache")
	}
	defer closeCache()

	adapters := []domain.SourceAdapter{external.NewLocalStoreAdapter(curatedStore)}
	for _, ref := range cfg.References {
		adapters = append(adapters, external.NewReferenceClient(ref, logger))
		logger.WithField("source", ref.Name).Info("Registered external reference service")
	}

	engine := service.NewEngine(curatedStore, adapters, cache, cfg.Engine, cfg.Cache.DefaultTTL, logger)
	server := api.NewServer(configManager, engine, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down")
		cancel()
	}()

	logger.WithFields(logrus.Fields{
		"host":    cfg.Server.Host,
		"port":    cfg.Server.Port,
		"driver":  cfg.Database.Driver,
		"sources": len(adapters),
	}).Info("Starting interaction engine server")

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}
	logger.Info("Server stopped")
}

func newLogger(cfg domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

// newCuratedStore opens the configured curated store backend. The memory and
// sqlite drivers ship with the built-in seed dataset; the postgres schema is
// owned by the hosting platform.
func newCuratedStore(cfg domain.DatabaseConfig, logger *logrus.Logger) (domain.CuratedStore, func(), error) {
	switch cfg.Driver {
	case "memory":
		return store.NewMemoryStore(), func() {}, nil

	case "sqlite":
		s, err := store.NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		if err := s.Seed(context.Background(), store.SeedDataset()); err != nil {
			s.Close()
			return nil, nil, err
		}
		logger.WithField("path", cfg.Path).Info("Curated store opened (sqlite)")
		return s, func() { s.Close() }, nil

	case "postgres":
		s, err := store.NewPostgresStoreFromURL(cfg.URL, cfg)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Curated store opened (postgres)")
		return s, func() { s.Close() }, nil

	default:
		return nil, nil, domain.NewValidationError("UnknownDriver", "unknown database driver: "+cfg.Driver)
	}
}

// newResultCache prefers Redis when configured and falls back to the
// in-process LRU otherwise.
func newResultCache(cfg domain.CacheConfig, logger *logrus.Logger) (domain.ResultCache, func(), error) {
	if cfg.RedisURL != "" {
		c, err := external.NewRedisResultCache(cfg)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Result cache: redis")
		return c, func() { c.Close() }, nil
	}

	c, err := external.NewMemoryResultCache(cfg.MaxEntries, cfg.DefaultTTL)
	if err != nil {
		return nil, nil, err
	}
	logger.WithField("max_entries", cfg.MaxEntries).Info("Result cache: in-process LRU")
	return c, func() {}, nil
}
