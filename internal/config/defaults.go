package config

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsNamespace = "vitalguard"

	DefaultRegion             = "SEAR-D"
	DefaultCountry            = "India"
	DefaultMethodologyVersion = "2019"
	DefaultRefreshInterval    = 30 * time.Second
	DefaultBatchConcurrency   = 8

	DefaultRedisMode          = "standalone"
	DefaultRedisAddr          = "localhost:6379"
	DefaultRedisThresholdsKey = "vitalguard:thresholds"

	DefaultDBHost     = "localhost"
	DefaultDBPort     = 5432
	DefaultDBName     = "vitalguard"
	DefaultDBSSLMode  = "disable"
	DefaultDBMaxConns = 4
)

// ApplyDefaults fills every zero-value field in cfg with its default.
// Fields already set are left unchanged so explicit configuration wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}

	if cfg.Engine.Region == "" {
		cfg.Engine.Region = DefaultRegion
	}
	if cfg.Engine.Country == "" {
		cfg.Engine.Country = DefaultCountry
	}
	if cfg.Engine.MethodologyVersion == "" {
		cfg.Engine.MethodologyVersion = DefaultMethodologyVersion
	}
	if cfg.Engine.RefreshInterval == 0 {
		cfg.Engine.RefreshInterval = DefaultRefreshInterval
	}
	if cfg.Engine.BatchConcurrency == 0 {
		cfg.Engine.BatchConcurrency = DefaultBatchConcurrency
	}

	if cfg.Redis.Mode == "" {
		cfg.Redis.Mode = DefaultRedisMode
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.ThresholdsKey == "" {
		cfg.Redis.ThresholdsKey = DefaultRedisThresholdsKey
	}

	if cfg.Postgres.Host == "" {
		cfg.Postgres.Host = DefaultDBHost
	}
	if cfg.Postgres.Port == 0 {
		cfg.Postgres.Port = DefaultDBPort
	}
	if cfg.Postgres.DBName == "" {
		cfg.Postgres.DBName = DefaultDBName
	}
	if cfg.Postgres.SSLMode == "" {
		cfg.Postgres.SSLMode = DefaultDBSSLMode
	}
	if cfg.Postgres.MaxConns == 0 {
		cfg.Postgres.MaxConns = DefaultDBMaxConns
	}
}

// registerKeys declares every configuration key to v. Viper only consults
// the environment for keys it knows about, so each key is registered with
// its default even when that default is the zero value.
func registerKeys(v *viper.Viper) {
	defaults := map[string]interface{}{
		"log.level":              DefaultLogLevel,
		"log.format":             DefaultLogFormat,
		"log.output_paths":       []string{},
		"log.error_output_paths": []string{},

		"metrics.enabled":       false,
		"metrics.namespace":     DefaultMetricsNamespace,
		"metrics.textfile_path": "",

		"engine.thresholds_file":     "",
		"engine.region":              DefaultRegion,
		"engine.country":             DefaultCountry,
		"engine.methodology_version": DefaultMethodologyVersion,
		"engine.refresh_interval":    DefaultRefreshInterval,
		"engine.batch_concurrency":   DefaultBatchConcurrency,

		"redis.enabled":        false,
		"redis.mode":           DefaultRedisMode,
		"redis.addr":           DefaultRedisAddr,
		"redis.master_name":    "",
		"redis.sentinel_addrs": []string{},
		"redis.cluster_addrs":  []string{},
		"redis.username":       "",
		"redis.password":       "",
		"redis.db":             0,
		"redis.pool_size":      0,
		"redis.dial_timeout":   time.Duration(0),
		"redis.read_timeout":   time.Duration(0),
		"redis.write_timeout":  time.Duration(0),
		"redis.thresholds_key": DefaultRedisThresholdsKey,

		"postgres.enabled":            false,
		"postgres.host":               DefaultDBHost,
		"postgres.port":               DefaultDBPort,
		"postgres.user":               "",
		"postgres.password":           "",
		"postgres.db_name":            DefaultDBName,
		"postgres.ssl_mode":           DefaultDBSSLMode,
		"postgres.max_conns":          DefaultDBMaxConns,
		"postgres.min_conns":          0,
		"postgres.conn_max_lifetime":  time.Duration(0),
		"postgres.conn_max_idle_time": time.Duration(0),
		"postgres.migrations_dir":     "",
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}
