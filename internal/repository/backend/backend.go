// Package backend opens the repository.Store selected by configuration.
package backend

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"alcyxob/ecofit/internal/config"
	"alcyxob/ecofit/internal/repository"
	"alcyxob/ecofit/internal/repository/memory"
	"alcyxob/ecofit/internal/repository/mongo"
	"alcyxob/ecofit/internal/repository/postgres"
)

// Open connects to the configured database. Mongo indexes are ensured in the
// background; Postgres migrations run first when cfg.AutoMigrate is set.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*repository.Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		if cfg.AutoMigrate {
			version, err := postgres.Migrate(cfg.URL)
			if err != nil {
				return nil, err
			}
			logger.Info("schema migrated", "version", version)
		}
		pool, err := postgres.Connect(ctx, cfg.URL, cfg.MaxConns)
		if err != nil {
			return nil, err
		}
		return postgres.NewStore(pool), nil

	case config.DriverMongo:
		client, err := mongo.ConnectDB(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("connect to MongoDB: %w", err)
		}
		db := client.Database(cfg.Name)
		go func() {
			indexCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if err := mongo.EnsureIndexes(indexCtx, db); err != nil {
				logger.Error("failed to ensure indexes", "error", err)
				return
			}
			logger.Info("index creation completed")
		}()
		return mongo.NewStore(client, db, mongo.Options{Transactions: cfg.MongoTransactions}), nil

	case config.DriverMemory:
		logger.Warn("using in-memory store, data is lost on restart")
		return memory.NewStore(), nil
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}
