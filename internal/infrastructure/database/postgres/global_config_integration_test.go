//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/turtacn/VitalGuard/internal/domain/scoring"
	"github.com/turtacn/VitalGuard/internal/infrastructure/database/postgres"
	"github.com/turtacn/VitalGuard/internal/infrastructure/monitoring/logging"
)

// startPostgres launches a PostgreSQL 16 container and returns its settings.
func startPostgres(t *testing.T) postgres.PostgresConfig {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "vitalguard_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return postgres.PostgresConfig{
		Host:     host,
		Port:     port.Int(),
		Database: "vitalguard_test",
		Username: "test",
		Password: "test",
		SSLMode:  "disable",
	}
}

func TestMigrations_UpStatusDown(t *testing.T) {
	cfg := startPostgres(t)
	dsn := postgres.BuildConnString(cfg)

	version, dirty, err := postgres.MigrationStatus(dsn, "")
	require.NoError(t, err)
	assert.Zero(t, version)
	assert.False(t, dirty)

	require.NoError(t, postgres.RunMigrations(dsn, ""))
	require.NoError(t, postgres.RunMigrations(dsn, ""), "second run is a no-op")

	version, dirty, err = postgres.MigrationStatus(dsn, "")
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	require.NoError(t, postgres.RollbackMigration(dsn, "", 1))
	version, _, err = postgres.MigrationStatus(dsn, "")
	require.NoError(t, err)
	assert.Zero(t, version)

	assert.Error(t, postgres.RollbackMigration(dsn, "", 1))
}

func TestGlobalConfigRepository_RoundTrip(t *testing.T) {
	cfg := startPostgres(t)
	ctx := context.Background()
	require.NoError(t, postgres.RunMigrations(postgres.BuildConnString(cfg), ""))

	pool, err := postgres.NewConnectionPool(ctx, cfg, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { postgres.Close(pool) })

	repo := postgres.NewGlobalConfigRepository(pool, nil).WithValidator(func(o map[string]float64) error {
		_, err := scoring.DefaultThresholds().ApplyOverrides(o)
		return err
	})

	_, err = pool.Exec(ctx, `INSERT INTO global_config (key, value) VALUES ('ui.theme', 'dark')`)
	require.NoError(t, err)

	require.NoError(t, repo.Upsert(ctx, "alerts.spo2_severe", 86))
	require.NoError(t, repo.Upsert(ctx, "alerts.spo2_severe", 87))
	require.NoError(t, repo.Upsert(ctx, "alerts.crisis_systolic", 175))
	assert.Error(t, repo.Upsert(ctx, "alerts.unknown", 1))

	got, err := repo.Overrides(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{
		"alerts.spo2_severe":     87,
		"alerts.crisis_systolic": 175,
	}, got)

	removed, err := repo.Delete(ctx, "alerts.spo2_severe")
	require.NoError(t, err)
	assert.True(t, removed)

	got, err = repo.Overrides(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"alerts.crisis_systolic": 175}, got)
}
