package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/VitalGuard/internal/config"
	"github.com/turtacn/VitalGuard/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/VitalGuard/pkg/errors"
)

func TestPostgresConfig_Mapping(t *testing.T) {
	pc := postgresConfig(config.PostgresConfig{
		Host: "db", Port: 5433, User: "vg", Password: "pw", DBName: "clinic",
		SSLMode: "require", MaxConns: 6, MinConns: 1, ConnMaxLifetime: time.Hour,
	})
	assert.Equal(t, "db", pc.Host)
	assert.Equal(t, 5433, pc.Port)
	assert.Equal(t, "clinic", pc.Database)
	assert.Equal(t, "vg", pc.Username)
	assert.Equal(t, "require", pc.SSLMode)
	assert.Equal(t, 6, pc.MaxConns)
	assert.Equal(t, time.Hour, pc.ConnMaxLifetime)
}

func TestRedisConfig_Mapping(t *testing.T) {
	rc := redisConfig(config.RedisConfig{
		Mode: "sentinel", MasterName: "mymaster", SentinelAddrs: []string{"s1:26379"}, DB: 2,
	})
	assert.Equal(t, "sentinel", rc.Mode)
	assert.Equal(t, "mymaster", rc.MasterName)
	assert.Equal(t, []string{"s1:26379"}, rc.SentinelAddrs)
	assert.Equal(t, 2, rc.DB)
}

func TestOpenStores_NoneEnabled(t *testing.T) {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)

	stores, closeAll, err := openStores(context.Background(), cfg, logging.NewNopLogger())
	require.NoError(t, err)
	assert.Empty(t, stores)
	closeAll()
}

func TestOpenStores_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{Redis: config.RedisConfig{Enabled: true, Addr: mr.Addr(), ThresholdsKey: "vg:test"}}
	config.ApplyDefaults(cfg)

	stores, closeAll, err := openStores(context.Background(), cfg, logging.NewNopLogger())
	require.NoError(t, err)
	defer closeAll()
	require.Len(t, stores, 1)
	assert.Equal(t, "redis", stores[0].Name())

	ctx := context.Background()
	require.NoError(t, stores[0].Set(ctx, "alerts.spo2_severe", 86))
	assert.Equal(t, "86", mr.HGet("vg:test", "alerts.spo2_severe"))

	err = stores[0].Set(ctx, "stability.weights.bmi", 50)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeWeightsSum, errors.GetCode(err))
}

func TestOpenStores_ValidatorUsesThresholdsFile(t *testing.T) {
	mr := miniredis.RunT(t)
	th := filepath.Join(t.TempDir(), "thresholds.yaml")
	require.NoError(t, os.WriteFile(th, []byte("stability:\n  weights:\n    glucose: 15\n    spo2: 25\n"), 0o600))
	cfg := &config.Config{
		Engine: config.EngineConfig{ThresholdsFile: th},
		Redis:  config.RedisConfig{Enabled: true, Addr: mr.Addr()},
	}
	config.ApplyDefaults(cfg)

	stores, closeAll, err := openStores(context.Background(), cfg, logging.NewNopLogger())
	require.NoError(t, err)
	defer closeAll()

	// spo2 25 matches the file, so the weights still sum to 100.
	require.NoError(t, stores[0].Set(context.Background(), "stability.weights.spo2", 25))
	err = stores[0].Set(context.Background(), "stability.weights.glucose", 25)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeWeightsSum, errors.GetCode(err))
}

func TestOpenStores_RedisUnavailable(t *testing.T) {
	cfg := &config.Config{Redis: config.RedisConfig{Enabled: true, Addr: "localhost:1", DialTimeout: 100 * time.Millisecond}}
	config.ApplyDefaults(cfg)

	_, _, err := openStores(context.Background(), cfg, logging.NewNopLogger())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCacheError))
}
