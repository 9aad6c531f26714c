package main

import (
	"context"

	"github.com/turtacn/VitalGuard/internal/config"
	"github.com/turtacn/VitalGuard/internal/infrastructure/database/postgres"
	"github.com/turtacn/VitalGuard/internal/infrastructure/database/redis"
	"github.com/turtacn/VitalGuard/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/VitalGuard/internal/interfaces/cli"
)

func redisConfig(c config.RedisConfig) *redis.RedisConfig {
	return &redis.RedisConfig{
		Mode:          c.Mode,
		Addr:          c.Addr,
		MasterName:    c.MasterName,
		SentinelAddrs: c.SentinelAddrs,
		ClusterAddrs:  c.ClusterAddrs,
		Username:      c.Username,
		Password:      c.Password,
		DB:            c.DB,
		PoolSize:      c.PoolSize,
		DialTimeout:   c.DialTimeout,
		ReadTimeout:   c.ReadTimeout,
		WriteTimeout:  c.WriteTimeout,
	}
}

func postgresConfig(c config.PostgresConfig) postgres.PostgresConfig {
	return postgres.PostgresConfig{
		Host:            c.Host,
		Port:            c.Port,
		Database:        c.DBName,
		Username:        c.User,
		Password:        c.Password,
		SSLMode:         c.SSLMode,
		MaxConns:        c.MaxConns,
		MinConns:        c.MinConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
		ConnMaxIdleTime: c.ConnMaxIdleTime,
	}
}

// postgresStore adapts the global_config repository to cli.OverrideStore.
type postgresStore struct {
	*postgres.GlobalConfigRepository
}

func (s postgresStore) Set(ctx context.Context, key string, value float64) error {
	return s.Upsert(ctx, key, value)
}

func (s postgresStore) Unset(ctx context.Context, key string) error {
	_, err := s.Delete(ctx, key)
	return err
}

// overrideValidator checks a store's override set against the thresholds
// file the engine would load.
func overrideValidator(cfg *config.Config) func(map[string]float64) error {
	return func(overrides map[string]float64) error {
		base, err := config.LoadThresholds(cfg.Engine.ThresholdsFile)
		if err != nil {
			return err
		}
		_, err = base.ApplyOverrides(overrides)
		return err
	}
}

// openStores connects to every enabled override store. Postgres comes first
// so that Redis, the faster-moving operator store, wins on conflicts.
func openStores(ctx context.Context, cfg *config.Config, log logging.Logger) ([]cli.OverrideStore, func(), error) {
	var (
		stores  []cli.OverrideStore
		closers []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	validate := overrideValidator(cfg)

	if cfg.Postgres.Enabled {
		pool, err := postgres.NewConnectionPool(ctx, postgresConfig(cfg.Postgres), log.Named("postgres"))
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() { postgres.Close(pool) })
		repo := postgres.NewGlobalConfigRepository(pool, log.Named("postgres")).WithValidator(validate)
		stores = append(stores, postgresStore{repo})
	}

	if cfg.Redis.Enabled {
		client, err := redis.NewClient(redisConfig(cfg.Redis), log.Named("redis"))
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, func() {
			if err := client.Close(); err != nil {
				log.Warn("redis close failed", logging.Err(err))
			}
		})
		stores = append(stores, redis.NewThresholdStore(client,
			redis.WithKey(cfg.Redis.ThresholdsKey),
			redis.WithValidator(validate),
			redis.WithStoreLogger(log.Named("redis")),
		))
	}

	return stores, closeAll, nil
}

func migrate(ctx context.Context, cfg *config.Config, log logging.Logger) error {
	dsn := postgres.BuildConnString(postgresConfig(cfg.Postgres))
	if err := postgres.RunMigrations(dsn, cfg.Postgres.MigrationsDir); err != nil {
		return err
	}
	version, dirty, err := postgres.MigrationStatus(dsn, cfg.Postgres.MigrationsDir)
	if err != nil {
		return err
	}
	log.Info("global_config schema migrated", logging.Uint64("version", uint64(version)), logging.Bool("dirty", dirty))
	return nil
}
