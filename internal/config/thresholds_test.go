package config

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/VitalGuard/internal/domain/scoring"
	"github.com/turtacn/VitalGuard/pkg/errors"
)

const thresholdOverlayYAML = `
alerts:
  spo2_severe: 86
  glucose_severe_low: 60
stability:
  weights:
    glucose: 20
    spo2: 20
  bmi:
    - name: underweight
      upper: 18.5
      score: 60
      status: fair
      message: Underweight
    - name: normal
      upper: 25
      score: 100
      status: normal
      message: Healthy weight
    - name: overweight
      score: 70
      status: fair
      message: Overweight
`

func writeThresholds(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadThresholds_EmptyPathIsDefaults(t *testing.T) {
	th, err := LoadThresholds("")
	require.NoError(t, err)
	assert.Equal(t, scoring.DefaultThresholds(), th)
}

func TestLoadThresholds_Overlay(t *testing.T) {
	th, err := LoadThresholds(writeThresholds(t, thresholdOverlayYAML))
	require.NoError(t, err)
	def := scoring.DefaultThresholds()

	assert.Equal(t, 86.0, th.Alerts.SpO2Severe)
	assert.Equal(t, 60.0, th.Alerts.GlucoseSevereLow)
	assert.Equal(t, def.Alerts.CrisisSystolic, th.Alerts.CrisisSystolic, "omitted keys keep defaults")

	assert.Equal(t, 20, th.Stability.Weights.Glucose)
	assert.Equal(t, 20, th.Stability.Weights.SpO2)
	assert.Equal(t, def.Stability.Weights.BloodPressure, th.Stability.Weights.BloodPressure)

	require.Len(t, th.Stability.BMI, 3, "a table in the file replaces the default table")
	assert.Equal(t, []string{"underweight", "normal", "overweight"}, th.Stability.BMI.Names())
	assert.Equal(t, 60, th.Stability.BMI[0].Outcome.Score)
	assert.Equal(t, "Overweight", th.Stability.BMI.Lookup(31).Outcome.Message)

	assert.Equal(t, def.Stability.BloodPressure.Systolic, th.Stability.BloodPressure.Systolic)
}

func TestLoadThresholds_Errors(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		code errors.ErrorCode
	}{
		{"unknown key", "alerts:\n  spo2_critical: 80\n", errors.ErrCodeInvalidThresholdTable},
		{"weights do not sum", "stability:\n  weights:\n    glucose: 50\n", errors.ErrCodeWeightsSum},
		{"descending bounds", "stability:\n  bmi:\n    - {name: a, upper: 30}\n    - {name: b, upper: 20}\n    - {name: c}\n", errors.ErrCodeInvalidThresholdTable},
		{"not yaml", "alerts: [", errors.ErrCodeConfigFile},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadThresholds(writeThresholds(t, tc.yaml))
			require.Error(t, err)
			assert.Equal(t, tc.code, errors.GetCode(err))
		})
	}
}

func TestLoadThresholds_MissingFile(t *testing.T) {
	_, err := LoadThresholds(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Equal(t, errors.ErrCodeConfigFile, errors.GetCode(err))
}

func TestThresholdLoader_RereadsFile(t *testing.T) {
	path := writeThresholds(t, "alerts:\n  spo2_severe: 86\n")
	load := ThresholdLoader(path)

	th, err := load()
	require.NoError(t, err)
	assert.Equal(t, 86.0, th.Alerts.SpO2Severe)

	require.NoError(t, os.WriteFile(path, []byte("alerts:\n  spo2_severe: 84\n"), 0o644))
	th, err = load()
	require.NoError(t, err)
	assert.Equal(t, 84.0, th.Alerts.SpO2Severe)
}

func TestWatchThresholds_FiresOnWrite(t *testing.T) {
	path := writeThresholds(t, "alerts:\n  spo2_severe: 86\n")
	other := filepath.Join(filepath.Dir(path), "unrelated.yaml")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var fired atomic.Int32
	require.NoError(t, WatchThresholds(ctx, path, func() { fired.Add(1) }, nil))

	require.NoError(t, os.WriteFile(other, []byte("x: 1\n"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("alerts:\n  spo2_severe: 85\n"), 0o644))

	assert.Eventually(t, func() bool { return fired.Load() > 0 }, 5*time.Second, 20*time.Millisecond)
}

func TestWatchThresholds_MissingDirectory(t *testing.T) {
	err := WatchThresholds(context.Background(), "/nonexistent/dir/thresholds.yaml", func() {}, nil)
	assert.Equal(t, errors.ErrCodeConfigFile, errors.GetCode(err))
}
