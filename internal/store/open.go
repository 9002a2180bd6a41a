package store

import (
	"context"
	"fmt"

	"github.com/limaJavier/scheduler/internal/platform/cache"
	"github.com/limaJavier/scheduler/internal/platform/config"
	"github.com/limaJavier/scheduler/internal/platform/database"
	"github.com/limaJavier/scheduler/internal/platform/mongodb"
	"github.com/limaJavier/scheduler/pkg/model"
	"go.uber.org/zap"
)

// Open connects the configured backend. The returned close function releases its connections.
func Open(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (*Store, func(), error) {
	switch cfg.Backend {
	case "", "memory":
		return New(NewMemoryBackend()), func() {}, nil

	case "postgres":
		db, err := database.Connect(ctx, cfg.PostgresURL, cfg.MaxConns, cfg.MinConns)
		if err != nil {
			return nil, nil, err
		}
		backend := NewPostgresBackend(db.Pool, cfg.Namespace)
		if err := backend.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		logger.Info("connected to postgres", zap.String("namespace", cfg.Namespace))
		return New(backend), db.Close, nil

	case "mongodb":
		mongo, err := mongodb.Connect(ctx, cfg.MongoURL, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("connected to mongodb", zap.String("database", cfg.MongoDatabase), zap.String("namespace", cfg.Namespace))
		closer := func() {
			if err := mongo.Close(context.Background()); err != nil {
				logger.Warn("closing mongodb", zap.Error(err))
			}
		}
		return New(NewMongoBackend(mongo.Database, cfg.Namespace)), closer, nil

	case "redis":
		redis, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("connected to redis", zap.String("namespace", cfg.Namespace))
		closer := func() {
			if err := redis.Close(); err != nil {
				logger.Warn("closing redis", zap.Error(err))
			}
		}
		return New(NewRedisBackend(redis.Client, cfg.Namespace)), closer, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// Seed saves the dataset and scheduling config read from files; empty paths are skipped
func Seed(ctx context.Context, store *Store, datasetFile, configFile string) error {
	if datasetFile != "" {
		dataset, err := model.DatasetFromJson(datasetFile)
		if err != nil {
			return err
		}
		if err := store.SaveDataset(ctx, dataset); err != nil {
			return err
		}
	}
	if configFile != "" {
		config, err := model.ConfigFromFile(configFile)
		if err != nil {
			return err
		}
		if err := store.SaveConfig(ctx, config); err != nil {
			return err
		}
	}
	return nil
}
