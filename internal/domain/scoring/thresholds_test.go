package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/VitalGuard/pkg/errors"
	"github.com/turtacn/VitalGuard/pkg/types/clinical"
)

func TestDefaultThresholds_Valid(t *testing.T) {
	th := DefaultThresholds()
	require.NoError(t, th.Validate())
	assert.Equal(t, 100, th.Stability.Weights.Sum())
}

func TestDefaultThresholds_Independent(t *testing.T) {
	a, b := DefaultThresholds(), DefaultThresholds()
	a.Stability.SpO2[0].Upper = 1
	assert.Equal(t, 85.0, b.Stability.SpO2[0].Upper)
}

func TestDefaultThresholds_BloodPressureBoundaries(t *testing.T) {
	bp := DefaultThresholds().Stability.BloodPressure

	assert.Equal(t, "stage2", bp.Systolic.Lookup(179).Name)
	assert.Equal(t, "stage2", bp.Diastolic.Lookup(109).Name)
	assert.Equal(t, "crisis", bp.Systolic.Lookup(180).Name)
	assert.Equal(t, "crisis", bp.Diastolic.Lookup(110).Name)
	assert.True(t, bp.Systolic.Lookup(180).Outcome.Critical)
}

func TestDefaultThresholds_RiskBreakpoints(t *testing.T) {
	bp := DefaultThresholds().Risk.Breakpoints
	tests := []struct {
		score float64
		want  clinical.RiskCategory
	}{
		{0, clinical.RiskLow},
		{9, clinical.RiskLow},
		{10, clinical.RiskModerate},
		{19, clinical.RiskModerate},
		{20, clinical.RiskHigh},
		{21, clinical.RiskHigh},
		{29, clinical.RiskHigh},
		{30, clinical.RiskVeryHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, bp.Lookup(tt.score).Outcome.Category, "score %v", tt.score)
	}
	assert.Equal(t, "20% to <30%", bp.Lookup(21).Outcome.TenYearRisk)
}

func TestThresholds_Validate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(th *Thresholds)
		code   errors.ErrorCode
	}{
		{"weights off by one", func(th *Thresholds) { th.Stability.Weights.BMI = 11 }, errors.ErrCodeWeightsSum},
		{"grade score above 100", func(th *Thresholds) { th.Stability.SpO2[4].Outcome.Score = 101 }, errors.ErrCodeInvalidThresholdTable},
		{"unpaired bp tiers", func(th *Thresholds) { th.Stability.BloodPressure.Diastolic[1].Name = "fine" }, errors.ErrCodeInvalidThresholdTable},
		{"risk points exceed max", func(th *Thresholds) { th.Risk.Flags.Smoker = 10 }, errors.ErrCodeInvalidThresholdTable},
		{"empty bmi table", func(th *Thresholds) { th.Stability.BMI = nil }, errors.ErrCodeInvalidThresholdTable},
		{"confidence weights", func(th *Thresholds) { th.Stability.FreshnessWeight = 0.5 }, errors.ErrCodeInvalidThresholdTable},
		{"inverted bounds", func(th *Thresholds) { th.Bounds.SpO2.Min = 100 }, errors.ErrCodeInvalidThresholdTable},
		{"unordered buckets", func(th *Thresholds) { th.Stability.Buckets[1].Upper = 10 }, errors.ErrCodeInvalidThresholdTable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := DefaultThresholds()
			tt.mutate(th)
			err := th.Validate()
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err))
		})
	}
}

func TestThresholds_Clone_Deep(t *testing.T) {
	orig := DefaultThresholds()
	c := orig.Clone()

	c.Stability.BloodPressure.Systolic[0].Upper = 1
	c.Risk.Breakpoints[0].Upper = 1
	c.ConfidenceLevels[0].Upper = 1
	c.Stability.Weights.BMI = 0

	assert.Equal(t, 120.0, orig.Stability.BloodPressure.Systolic[0].Upper)
	assert.Equal(t, 9.0, orig.Risk.Breakpoints[0].Upper)
	assert.Equal(t, 60.0, orig.ConfidenceLevels[0].Upper)
	assert.Equal(t, 10, orig.Stability.Weights.BMI)
}

func TestThresholds_ApplyOverrides(t *testing.T) {
	base := DefaultThresholds()

	next, err := base.ApplyOverrides(map[string]float64{
		"stability.blood_pressure.systolic.stage2": 175,
		"alerts.glucose_severe_low":                50,
		"stability.weights.glucose":                20,
		"stability.weights.bmi":                    15,
	})
	require.NoError(t, err)

	assert.Equal(t, 175.0, next.Stability.BloodPressure.Systolic[4].Upper)
	assert.Equal(t, 50.0, next.Alerts.GlucoseSevereLow)
	assert.Equal(t, 20, next.Stability.Weights.Glucose)
	assert.Equal(t, 15, next.Stability.Weights.BMI)

	// The receiver is untouched.
	assert.Equal(t, 180.0, base.Stability.BloodPressure.Systolic[4].Upper)
	assert.Equal(t, 25, base.Stability.Weights.Glucose)
}

func TestThresholds_ApplyOverrides_Errors(t *testing.T) {
	base := DefaultThresholds()
	tests := []struct {
		name      string
		overrides map[string]float64
		code      errors.ErrorCode
	}{
		{"unknown scalar", map[string]float64{"stability.nope": 1}, errors.ErrCodeUnknownOverrideKey},
		{"unknown band", map[string]float64{"stability.spo2.fine": 1}, errors.ErrCodeUnknownOverrideKey},
		{"catch-all band", map[string]float64{"stability.spo2.normal": 99}, errors.ErrCodeUnknownOverrideKey},
		{"no dot", map[string]float64{"weights": 1}, errors.ErrCodeUnknownOverrideKey},
		{"fractional int", map[string]float64{"stability.weights.bmi": 10.5}, errors.ErrCodeOverrideValue},
		{"weights no longer sum", map[string]float64{"stability.weights.bmi": 20}, errors.ErrCodeWeightsSum},
		{"bounds out of order", map[string]float64{"stability.spo2.severe": 90}, errors.ErrCodeInvalidThresholdTable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := base.ApplyOverrides(tt.overrides)
			require.Error(t, err)
			assert.Nil(t, next)
			assert.Equal(t, tt.code, errors.GetCode(err))
		})
	}
}

func TestThresholds_OverrideKeys(t *testing.T) {
	th := DefaultThresholds()
	keys := th.OverrideKeys()

	assert.Contains(t, keys, "stability.blood_pressure.systolic.stage2")
	assert.Contains(t, keys, "risk.breakpoints.high")
	assert.Contains(t, keys, "stability.weights.glucose")
	assert.NotContains(t, keys, "risk.breakpoints.very_high")
	assert.IsNonDecreasing(t, keys)

	for _, k := range keys {
		assert.True(t, th.IsOverrideKey(k), k)
	}
	assert.False(t, th.IsOverrideKey("stability.spo2.normal"))
	assert.False(t, th.IsOverrideKey("nothing"))
}

func TestThresholds_OverrideValues(t *testing.T) {
	th := DefaultThresholds()
	values := th.OverrideValues()

	assert.Len(t, values, len(th.OverrideKeys()))
	assert.Equal(t, th.Alerts.SpO2Severe, values["alerts.spo2_severe"])
	assert.Equal(t, float64(th.Stability.Weights.Glucose), values["stability.weights.glucose"])

	same, err := th.ApplyOverrides(values)
	require.NoError(t, err)
	assert.Equal(t, th, same)
}

func TestStages_Run(t *testing.T) {
	var order []string
	s := Stages[int, int, int, string]{
		Score: func(in int) int { order = append(order, "score"); return in * 2 },
		Aggregate: func(in, b int) int {
			order = append(order, "aggregate")
			return b + 1
		},
		Confidence: func(in, b int) clinical.Confidence {
			order = append(order, "confidence")
			return clinical.Confidence{Score: b}
		},
		Recommend: func(in, b, a int) []clinical.Recommendation {
			order = append(order, "recommend")
			return nil
		},
		Build: func(in, b, a int, c clinical.Confidence, recs []clinical.Recommendation) string {
			order = append(order, "build")
			assert.NotNil(t, recs)
			assert.Equal(t, 6, c.Score)
			return "done"
		},
	}
	assert.Equal(t, "done", s.Run(3))
	assert.Equal(t, []string{"score", "aggregate", "confidence", "recommend", "build"}, order)
}

func TestThresholds_LevelFor(t *testing.T) {
	th := DefaultThresholds()
	assert.Equal(t, "low", th.LevelFor(59.9))
	assert.Equal(t, "medium", th.LevelFor(60))
	assert.Equal(t, "medium", th.LevelFor(79))
	assert.Equal(t, "high", th.LevelFor(80))
}
