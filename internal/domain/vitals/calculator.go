package vitals

import (
	"time"

	"github.com/turtacn/VitalGuard/internal/domain/patient"
	"github.com/turtacn/VitalGuard/internal/domain/scoring"
	"github.com/turtacn/VitalGuard/pkg/types/clinical"
)

type input struct {
	p   patient.Patient
	t   *scoring.Thresholds
	now time.Time
}

type scored struct {
	breakdown clinical.Breakdown
	alerts    []clinical.Alert
}

var pipeline = scoring.Stages[input, scored, Aggregate, clinical.StabilityResult]{
	Score:      score,
	Aggregate:  func(in input, s scored) Aggregate { return Aggregated(s.breakdown, s.alerts, in.t.Stability) },
	Confidence: func(in input, _ scored) clinical.Confidence { return Confidence(in.p.Vitals, in.now, in.t) },
	Recommend: func(in input, s scored, a Aggregate) []clinical.Recommendation {
		return Recommend(s.breakdown, a.Total, in.t.Stability)
	},
	Build: build,
}

// Assess runs the stability pipeline over a normalized patient. It is pure:
// the same patient, thresholds and instant always give the same result.
func Assess(p patient.Patient, t *scoring.Thresholds, now time.Time) clinical.StabilityResult {
	return pipeline.Run(input{p: p, t: t, now: now})
}

func score(in input) scored {
	v, s := in.p.Vitals, in.t.Stability
	return scored{
		breakdown: clinical.Breakdown{
			clinical.FactorBloodPressure: ScoreBloodPressure(v.BloodPressure, s),
			clinical.FactorHeartRate:     ScoreHeartRate(v.HeartRate, v.Activity, in.p.Flags.Athlete, s),
			clinical.FactorGlucose:       ScoreGlucose(v.Glucose, v.GlucoseTiming, in.p.Flags.Diabetic, s),
			clinical.FactorSpO2:          ScoreSpO2(v.SpO2, s),
			clinical.FactorBMI:           ScoreBMI(v.BMI, s),
		},
		alerts: Alerts(v, in.t.Alerts),
	}
}

func build(in input, s scored, a Aggregate, c clinical.Confidence, recs []clinical.Recommendation) clinical.StabilityResult {
	return clinical.StabilityResult{
		Score:           a.Total,
		Status:          a.Bucket,
		Critical:        a.Critical,
		Breakdown:       s.breakdown,
		CriticalAlerts:  s.alerts,
		Confidence:      c,
		Recommendations: recs,
		AssessedAt:      in.now,
	}
}
