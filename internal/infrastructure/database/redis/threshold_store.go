package redis

import (
	"context"
	"math"
	"strconv"

	"github.com/turtacn/VitalGuard/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/VitalGuard/pkg/errors"
)

// DefaultThresholdKey is the hash holding operator overrides.
const DefaultThresholdKey = "vitalguard:thresholds"

// OverrideValidator rejects an override set that would not produce a valid
// threshold snapshot.
type OverrideValidator func(overrides map[string]float64) error

// ThresholdStore keeps threshold overrides in a Redis hash: one field per
// override key, the value formatted as a decimal number.
type ThresholdStore struct {
	client   *Client
	key      string
	validate OverrideValidator
	logger   logging.Logger
}

type StoreOption func(*ThresholdStore)

// WithKey overrides DefaultThresholdKey.
func WithKey(key string) StoreOption {
	return func(s *ThresholdStore) {
		if key != "" {
			s.key = key
		}
	}
}

// WithValidator makes Set and Unset check the resulting override set before
// writing it.
func WithValidator(v OverrideValidator) StoreOption {
	return func(s *ThresholdStore) { s.validate = v }
}

func WithStoreLogger(l logging.Logger) StoreOption {
	return func(s *ThresholdStore) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewThresholdStore(client *Client, opts ...StoreOption) *ThresholdStore {
	s := &ThresholdStore{
		client: client,
		key:    DefaultThresholdKey,
		logger: logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name identifies the store in reload logs.
func (s *ThresholdStore) Name() string { return "redis" }

// Key is the hash the store reads and writes.
func (s *ThresholdStore) Key() string { return s.key }

// Overrides returns every override in the hash. A missing hash yields an
// empty map. A field that does not parse as a finite number is an error
// naming the field.
func (s *ThresholdStore) Overrides(ctx context.Context) (map[string]float64, error) {
	raw, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "read threshold overrides")
	}
	out := make(map[string]float64, len(raw))
	for field, text := range raw {
		v, err := strconv.ParseFloat(text, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.Newf(errors.ErrCodeOverrideValue, "override %s: %q is not a number", field, text)
		}
		out[field] = v
	}
	return out, nil
}

// Set writes one override. With a validator configured, the write happens
// only if the hash plus the new value still validates; a Redis lock
// serializes concurrent editors.
func (s *ThresholdStore) Set(ctx context.Context, key string, value float64) error {
	return s.edit(ctx, func(current map[string]float64) (map[string]float64, error) {
		current[key] = value
		return current, nil
	}, func() error {
		return s.client.HSet(ctx, s.key, key, strconv.FormatFloat(value, 'g', -1, 64)).Err()
	}, logging.String("key", key), logging.Float64("value", value))
}

// Unset removes one override. Removing an absent key is not an error.
func (s *ThresholdStore) Unset(ctx context.Context, key string) error {
	return s.edit(ctx, func(current map[string]float64) (map[string]float64, error) {
		delete(current, key)
		return current, nil
	}, func() error {
		return s.client.HDel(ctx, s.key, key).Err()
	}, logging.String("key", key))
}

// Clear drops every override.
func (s *ThresholdStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "clear threshold overrides")
	}
	s.logger.Info("threshold overrides cleared", logging.String("hash", s.key))
	return nil
}

func (s *ThresholdStore) edit(ctx context.Context, apply func(map[string]float64) (map[string]float64, error), write func() error, fields ...logging.Field) error {
	lock := NewMutex(s.client, s.key)
	if err := lock.Lock(ctx); err != nil {
		return err
	}
	defer func() {
		if err := lock.Unlock(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("threshold store unlock failed", logging.Err(err))
		}
	}()

	if s.validate != nil {
		current, err := s.Overrides(ctx)
		if err != nil {
			return err
		}
		next, err := apply(current)
		if err != nil {
			return err
		}
		if err := s.validate(next); err != nil {
			return err
		}
	}
	if err := write(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "write threshold override")
	}
	s.logger.Info("threshold override updated", append(fields, logging.String("hash", s.key))...)
	return nil
}
