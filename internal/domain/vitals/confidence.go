package vitals

import (
	"time"

	"github.com/turtacn/VitalGuard/internal/domain/scoring"
	"github.com/turtacn/VitalGuard/pkg/types/clinical"
)

const (
	msgHighConfidence = "High confidence in assessment"
	msgIncomplete     = "Some vital signs missing - complete profile for better assessment"
	msgOutdated       = "Vital signs are outdated - please log recent measurements"
	msgModerate       = "Moderate confidence - consider updating vital signs"
)

// Present counts the stability vitals that were supplied.
func Present(v clinical.Vitals) int {
	n := 0
	if v.BloodPressure != nil {
		n++
	}
	if v.HeartRate != nil {
		n++
	}
	if v.Glucose != nil {
		n++
	}
	if v.SpO2 != nil {
		n++
	}
	if v.BMI != nil {
		n++
	}
	return n
}

// Freshness scores the age of the measurement. Without a timestamp, or with
// one in the future, the data counts as fresh.
func Freshness(measuredAt *time.Time, now time.Time, s scoring.StabilityThresholds) int {
	if measuredAt == nil {
		return 100
	}
	hours := now.Sub(*measuredAt).Hours()
	if hours <= 0 {
		return 100
	}
	return s.Freshness.Lookup(hours).Outcome.Score
}

// Confidence blends completeness and freshness into a 0–100 figure.
func Confidence(v clinical.Vitals, now time.Time, t *scoring.Thresholds) clinical.Confidence {
	s := t.Stability
	completeness := float64(Present(v)) / float64(len(clinical.StabilityFactors)) * 100
	freshness := float64(Freshness(v.MeasuredAt, now, s))
	overall := completeness*s.CompletenessWeight + freshness*s.FreshnessWeight

	level := t.LevelFor(overall)
	var msg string
	switch {
	case level == "high":
		msg = msgHighConfidence
	case completeness < 70:
		msg = msgIncomplete
	case freshness < 70:
		msg = msgOutdated
	default:
		msg = msgModerate
	}

	return clinical.Confidence{
		Score:   scoring.Clamp(scoring.Round(overall), 0, 100),
		Level:   level,
		Message: msg,
	}
}
