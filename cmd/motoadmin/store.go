package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/youssefsiam38/motoadmin/driver"
	"github.com/youssefsiam38/motoadmin/driver/databasesql"
	"github.com/youssefsiam38/motoadmin/driver/pgxv5"
	"github.com/youssefsiam38/motoadmin/internal/config"
	"github.com/youssefsiam38/motoadmin/storage"
	"github.com/youssefsiam38/motoadmin/storage/redisstore"
)

// connectTimeout bounds the initial ping of a store.
const connectTimeout = 10 * time.Second

// backend is an opened session and audit store.
type backend struct {
	storage.Store

	// migrate creates the tables; nil for stores without a schema.
	migrate func(ctx context.Context) error
	close   func() error
}

// openStore connects to the store selected by MOTOADMIN_STORE.
func openStore(ctx context.Context, cfg *config.Config) (*backend, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	switch cfg.Store {
	case config.StorePostgres:
		drv, err := pgxv5.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := drv.Ping(ctx); err != nil {
			drv.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		return &backend{
			Store: drv.GetStore(),
			migrate: func(ctx context.Context) error {
				return driver.Migrate(ctx, drv.GetExecutor())
			},
			close: func() error {
				drv.Close()
				return nil
			},
		}, nil

	case config.StoreSQL:
		drv, err := databasesql.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := drv.Ping(ctx); err != nil {
			_ = drv.Close()
			return nil, fmt.Errorf("ping database: %w", err)
		}
		return &backend{
			Store: drv.GetStore(),
			migrate: func(ctx context.Context) error {
				return driver.Migrate(ctx, drv.GetExecutor())
			},
			close: drv.Close,
		}, nil

	case config.StoreRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		return &backend{
			Store: redisstore.New(rdb, nil),
			close: rdb.Close,
		}, nil

	default:
		return &backend{
			Store: storage.NewMemoryStore(),
			close: func() error { return nil },
		}, nil
	}
}
