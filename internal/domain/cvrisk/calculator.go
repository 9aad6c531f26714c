package cvrisk

import (
	"time"

	"github.com/turtacn/VitalGuard/internal/domain/patient"
	"github.com/turtacn/VitalGuard/internal/domain/scoring"
	"github.com/turtacn/VitalGuard/pkg/types/clinical"
)

type input struct {
	p    patient.Patient
	t    *scoring.Thresholds
	meta Meta
	now  time.Time
}

var pipeline = scoring.Stages[input, tally, Aggregate, clinical.RiskResult]{
	Score: func(in input) tally {
		outcomes := make([]factorOutcome, 0, len(factorScorers))
		for _, score := range factorScorers {
			outcomes = append(outcomes, score(in.p, in.t.Risk))
		}
		return fold(outcomes)
	},
	Aggregate:  func(in input, t tally) Aggregate { return aggregate(t, in.t.Risk) },
	Confidence: func(in input, t tally) clinical.Confidence { return confidence(t, in.t) },
	Recommend: func(in input, t tally, a Aggregate) []clinical.Recommendation {
		return recommend(in.p, t.breakdown, a.Band.Urgency, in.t.Risk)
	},
	Build: build,
}

// Assess runs the risk pipeline over a normalized patient. A known age below
// the adult minimum is a DOM_001 error and no result is produced.
func Assess(p patient.Patient, t *scoring.Thresholds, meta Meta, now time.Time) (clinical.RiskResult, error) {
	if err := patient.RequireAdult(p, t.Risk.MinAdultAge); err != nil {
		return clinical.RiskResult{}, err
	}
	return pipeline.Run(input{p: p, t: t, meta: meta, now: now}), nil
}

func build(in input, t tally, a Aggregate, c clinical.Confidence, recs []clinical.Recommendation) clinical.RiskResult {
	return clinical.RiskResult{
		Score:           a.Score,
		MaxScore:        in.t.Risk.MaxScore,
		Category:        a.Band.Category,
		TenYearRisk:     a.Band.TenYearRisk,
		ColorCode:       a.Band.Color,
		Urgency:         a.Band.Urgency,
		Breakdown:       t.breakdown,
		Confidence:      c,
		DataGaps:        t.gaps,
		Warnings:        t.warnings,
		Recommendations: recs,
		NextSteps:       NextSteps(a.Band.Urgency),
		Disclaimer:      Disclaimer(c.Score, t.gaps),
		Limitations:     Limitations(),
		RecalculateWhen: RecalculateWhen(),
		Methodology:     Methodology(in.meta.MethodologyVersion),
		Region:          in.meta.Region,
		Country:         in.meta.Country,
		CalculatedAt:    in.now,
	}
}
