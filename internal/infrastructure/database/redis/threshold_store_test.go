package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/VitalGuard/internal/domain/scoring"
	"github.com/turtacn/VitalGuard/internal/testutil"
	"github.com/turtacn/VitalGuard/pkg/errors"
)

func validateAgainstDefaults(overrides map[string]float64) error {
	_, err := scoring.DefaultThresholds().ApplyOverrides(overrides)
	return err
}

func TestThresholdStore_EmptyHash(t *testing.T) {
	client, _ := newTestClient(t)
	store := NewThresholdStore(client)

	got, err := store.Overrides(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, "redis", store.Name())
	assert.Equal(t, DefaultThresholdKey, store.Key())
}

func TestThresholdStore_SetAndRead(t *testing.T) {
	client, mr := newTestClient(t)
	log := testutil.NewMockLogger()
	store := NewThresholdStore(client, WithKey("test:thresholds"), WithValidator(validateAgainstDefaults), WithStoreLogger(log))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "alerts.spo2_severe", 86))
	require.NoError(t, store.Set(ctx, "alerts.glucose_severe_low", 55.5))

	assert.Equal(t, "86", mr.HGet("test:thresholds", "alerts.spo2_severe"))
	got, err := store.Overrides(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{
		"alerts.spo2_severe":        86,
		"alerts.glucose_severe_low": 55.5,
	}, got)

	assert.False(t, mr.Exists("vitalguard:lock:test:thresholds"), "lock released after edit")
	assert.True(t, log.HasMessage("info", "threshold override updated"))
}

func TestThresholdStore_SetRejectedByValidator(t *testing.T) {
	client, mr := newTestClient(t)
	store := NewThresholdStore(client, WithValidator(validateAgainstDefaults))
	ctx := context.Background()

	err := store.Set(ctx, "alerts.no_such_key", 1)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeUnknownOverrideKey, errors.GetCode(err))
	assert.False(t, mr.Exists(DefaultThresholdKey))

	err = store.Set(ctx, "stability.weights.glucose", 90)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeWeightsSum, errors.GetCode(err))
	assert.False(t, mr.Exists(DefaultThresholdKey))
}

func TestThresholdStore_WithoutValidatorWritesBlindly(t *testing.T) {
	client, mr := newTestClient(t)
	store := NewThresholdStore(client)

	require.NoError(t, store.Set(context.Background(), "alerts.no_such_key", 1))
	assert.Equal(t, "1", mr.HGet(DefaultThresholdKey, "alerts.no_such_key"))
}

func TestThresholdStore_NonNumericField(t *testing.T) {
	client, mr := newTestClient(t)
	store := NewThresholdStore(client)
	mr.HSet(DefaultThresholdKey, "alerts.spo2_severe", "eighty")

	_, err := store.Overrides(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeOverrideValue, errors.GetCode(err))
	assert.Contains(t, err.Error(), "alerts.spo2_severe")
}

func TestThresholdStore_NonFiniteField(t *testing.T) {
	client, mr := newTestClient(t)
	store := NewThresholdStore(client)
	mr.HSet(DefaultThresholdKey, "alerts.spo2_severe", "NaN")

	_, err := store.Overrides(context.Background())
	assert.Equal(t, errors.ErrCodeOverrideValue, errors.GetCode(err))
}

func TestThresholdStore_UnsetAndClear(t *testing.T) {
	client, mr := newTestClient(t)
	store := NewThresholdStore(client, WithValidator(validateAgainstDefaults))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "alerts.spo2_severe", 86))
	require.NoError(t, store.Set(ctx, "alerts.crisis_systolic", 175))

	require.NoError(t, store.Unset(ctx, "alerts.spo2_severe"))
	require.NoError(t, store.Unset(ctx, "alerts.spo2_severe"))
	got, err := store.Overrides(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"alerts.crisis_systolic": 175}, got)

	require.NoError(t, store.Clear(ctx))
	assert.False(t, mr.Exists(DefaultThresholdKey))
}

func TestThresholdStore_EditBlockedByHeldLock(t *testing.T) {
	client, _ := newTestClient(t)
	store := NewThresholdStore(client)
	ctx := context.Background()

	holder := NewMutex(client, DefaultThresholdKey)
	require.NoError(t, holder.Lock(ctx))
	defer holder.Unlock(ctx)

	short, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, store.Set(short, "alerts.spo2_severe", 86), context.Canceled)
}

func TestThresholdStore_ClosedClient(t *testing.T) {
	client, _ := newTestClient(t)
	store := NewThresholdStore(client)
	require.NoError(t, client.Close())

	_, err := store.Overrides(context.Background())
	assert.Equal(t, errors.ErrCodeCacheError, errors.GetCode(err))
}
