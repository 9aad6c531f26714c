package config

import (
	stderrors "errors"
	"io/fs"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/turtacn/VitalGuard/pkg/errors"
)

// envPrefix is the environment variable prefix for every setting.
const envPrefix = "VITALGUARD"

// newViper builds a Viper instance with YAML files, VITALGUARD_ env binding
// and a "." → "_" key replacer, so "redis.addr" resolves to
// VITALGUARD_REDIS_ADDR.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	registerKeys(v)
	return v
}

type loadOptions struct {
	path string
}

// LoadOption tunes Load.
type LoadOption func(*loadOptions)

// WithConfigPath reads the YAML file at path before applying environment
// overrides. An empty path means environment and defaults only.
func WithConfigPath(path string) LoadOption {
	return func(o *loadOptions) { o.path = path }
}

// Load builds a Config from an optional YAML file, VITALGUARD_* environment
// variables and defaults, in increasing order of precedence for the first
// two, and validates it.
func Load(opts ...LoadOption) (*Config, error) {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}

	v := newViper()
	if o.path != "" {
		if err := readFile(v, o.path); err != nil {
			return nil, err
		}
	}
	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config from VITALGUARD_* environment variables and
// defaults only.
func LoadFromEnv() (*Config, error) {
	return Load()
}

// MustLoad is Load that panics on error. Only main should call it.
func MustLoad(opts ...LoadOption) *Config {
	cfg, err := Load(opts...)
	if err != nil {
		panic("config: MustLoad failed: " + err.Error())
	}
	return cfg
}

func readFile(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return errors.Wrap(err, errors.ErrCodeConfigFile, "config file not found").WithDetail(path)
		}
		return errors.Wrap(err, errors.ErrCodeConfigFile, "config file unreadable").WithDetail(path)
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigFile, "config file could not be parsed").WithDetail(path)
	}
	return nil
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "config: failed to unmarshal configuration")
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Watch re-reads the file at path whenever it changes on disk and hands
// every valid result to onChange. A change that fails to parse or validate
// goes to onError instead, when set, and onChange is not called.
func Watch(path string, onChange func(*Config), onError func(error)) error {
	v := newViper()
	if err := readFile(v, path); err != nil {
		return err
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}
