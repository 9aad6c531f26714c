package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplyDefaults_EmptyConfig(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, DefaultLogFormat, cfg.Log.Format)
	assert.Equal(t, DefaultMetricsNamespace, cfg.Metrics.Namespace)
	assert.Equal(t, DefaultRegion, cfg.Engine.Region)
	assert.Equal(t, DefaultCountry, cfg.Engine.Country)
	assert.Equal(t, DefaultMethodologyVersion, cfg.Engine.MethodologyVersion)
	assert.Equal(t, DefaultRefreshInterval, cfg.Engine.RefreshInterval)
	assert.Equal(t, DefaultBatchConcurrency, cfg.Engine.BatchConcurrency)
	assert.Equal(t, DefaultRedisMode, cfg.Redis.Mode)
	assert.Equal(t, DefaultRedisThresholdsKey, cfg.Redis.ThresholdsKey)
	assert.Equal(t, DefaultDBPort, cfg.Postgres.Port)
	assert.Equal(t, DefaultDBSSLMode, cfg.Postgres.SSLMode)
	assert.NoError(t, cfg.Validate())
}

func TestApplyDefaults_PreserveExistingValues(t *testing.T) {
	cfg := &Config{}
	cfg.Engine.BatchConcurrency = 2
	cfg.Engine.RefreshInterval = time.Minute
	cfg.Log.Level = "debug"
	ApplyDefaults(cfg)

	assert.Equal(t, 2, cfg.Engine.BatchConcurrency)
	assert.Equal(t, time.Minute, cfg.Engine.RefreshInterval)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestApplyDefaults_Nil(t *testing.T) {
	assert.NotPanics(t, func() { ApplyDefaults(nil) })
}
