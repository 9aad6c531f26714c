package testutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/VitalGuard/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/VitalGuard/internal/testutil"
)

func TestMockLogger(t *testing.T) {
	logger := testutil.NewMockLogger()

	logger.Info("test info", logging.String("key", "value"))

	messages := logger.GetMessages()
	assert.Len(t, messages, 1)
	assert.Equal(t, "info", messages[0].Level)
	assert.Equal(t, "test info", messages[0].Message)

	logger.Clear()
	assert.Len(t, logger.GetMessages(), 0)

	logger.Error("test error")
	assert.True(t, logger.HasMessage("error", "test error"))
	assert.False(t, logger.HasMessage("info", "test info"))
}

func TestMockLogger_ChildrenShareRecord(t *testing.T) {
	root := testutil.NewMockLogger()
	child := root.Named("engine").Named("reload").With(logging.String("run_id", "abc"))

	child.Warn("rejected", logging.Int("keys", 2))

	warns := root.ByLevel("warn")
	require.Len(t, warns, 1)
	assert.Equal(t, "engine.reload", warns[0].Logger)

	v, ok := warns[0].Field("run_id")
	assert.True(t, ok)
	assert.Equal(t, "abc", v)
	v, ok = warns[0].Field("keys")
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	_, ok = warns[0].Field("missing")
	assert.False(t, ok)
}
