// Package vitals implements the vital stability assessment: five component
// scorers over the stability tables, the weighted aggregate, the raw-value
// emergency alert pass, confidence from completeness and freshness, and the
// stability recommendations.
package vitals

import (
	"fmt"
	"math"

	"github.com/turtacn/VitalGuard/internal/domain/scoring"
	"github.com/turtacn/VitalGuard/pkg/types/clinical"
)

func fromBand(band scoring.Band[scoring.Grade], detail string) clinical.ComponentResult {
	g := band.Outcome
	return clinical.ComponentResult{
		Score:    g.Score,
		MaxScore: 100,
		Status:   g.Status,
		Tier:     band.Name,
		Message:  g.Message,
		Detail:   detail,
		Action:   g.Action,
		Critical: g.Critical,
	}
}

func missing(score int, what string) clinical.ComponentResult {
	return clinical.ComponentResult{
		Score:    score,
		MaxScore: 100,
		Status:   "unknown",
		Message:  what + " data missing",
	}
}

// ScoreBloodPressure grades a cuff reading. Systolic and diastolic are
// classified separately and the more severe tier wins. The crisis tier is
// checked first, then hypotension, then the ladder.
func ScoreBloodPressure(bp *clinical.BloodPressure, s scoring.StabilityThresholds) clinical.ComponentResult {
	if bp == nil {
		return missing(s.MissingScore, "BP")
	}
	t := s.BloodPressure
	detail := fmt.Sprintf("%s/%s mmHg", scoring.FormatValue(bp.Systolic), scoring.FormatValue(bp.Diastolic))

	idx := t.Systolic.Index(bp.Systolic)
	if d := t.Diastolic.Index(bp.Diastolic); d > idx {
		idx = d
	}
	if idx == len(t.Systolic)-1 {
		return fromBand(t.Systolic[idx], detail)
	}

	if bp.Systolic < t.HypotensionSystolic || bp.Diastolic < t.HypotensionDiastolic {
		return fromBand(scoring.Band[scoring.Grade]{Name: "hypotension", Outcome: t.Hypotension}, detail)
	}
	return fromBand(t.Systolic[idx], detail)
}

// ScoreHeartRate grades a pulse reading in its activity context. Without an
// activity only the overrides can lower the score.
func ScoreHeartRate(hr *float64, activity clinical.Activity, athlete bool, s scoring.StabilityThresholds) clinical.ComponentResult {
	if hr == nil {
		return missing(s.MissingScore, "Heart rate")
	}
	t := s.HeartRate
	detail := scoring.FormatValue(*hr) + " bpm"

	overrides := t.Overrides
	if athlete {
		overrides = t.AthleteOverrides
	}
	if band := overrides.Lookup(*hr); !band.Outcome.Defer {
		return fromBand(band, detail)
	}

	var ladder scoring.RangeTable[scoring.Grade]
	ctx := "unknown"
	switch {
	case activity == clinical.ActivityPostExercise:
		ladder, ctx = t.PostExercise, string(activity)
	case activity == clinical.ActivityResting && athlete:
		ladder, ctx = t.RestingAthlete, string(activity)
	case activity == clinical.ActivityResting:
		ladder, ctx = t.Resting, string(activity)
	default:
		ladder = t.Unspecified
	}
	res := fromBand(ladder.Lookup(*hr), detail)
	res.Context = ctx
	return res
}

// ScoreGlucose grades a glucose reading. The override table decides severe
// and moderate hypo- and hyperglycemia; in between, the timing ladder does.
// Diabetics meeting the relaxed fasting target are lifted to the diabetic
// floor.
func ScoreGlucose(glucose *float64, timing clinical.GlucoseTiming, diabetic bool, s scoring.StabilityThresholds) clinical.ComponentResult {
	if glucose == nil {
		return missing(s.MissingScore, "Glucose")
	}
	t := s.Glucose
	g := *glucose
	detail := scoring.FormatValue(g) + " mg/dL"

	if band := t.Overrides.Lookup(g); !band.Outcome.Defer {
		return fromBand(band, detail)
	}

	var ladder scoring.RangeTable[scoring.Grade]
	ctx := "unknown"
	switch timing {
	case clinical.TimingFasting:
		ladder, ctx = t.Fasting, string(timing)
	case clinical.TimingPostMeal:
		ladder, ctx = t.PostMeal, string(timing)
	default:
		ladder = t.Unspecified
	}
	res := fromBand(ladder.Lookup(g), detail)
	res.Context = ctx

	if diabetic && timing == clinical.TimingFasting && g < t.DiabeticFastingTarget {
		if res.Score < t.DiabeticFloor {
			res.Score = t.DiabeticFloor
		}
		res.Message += t.DiabeticSuffix
	}
	return res
}

// ScoreSpO2 grades an oxygen saturation reading.
func ScoreSpO2(spo2 *float64, s scoring.StabilityThresholds) clinical.ComponentResult {
	if spo2 == nil {
		return missing(s.MissingScore, "SpO2")
	}
	return fromBand(s.SpO2.Lookup(*spo2), scoring.FormatValue(*spo2)+"%")
}

// ScoreBMI grades a body-mass index with the Asian cutoffs of the table.
func ScoreBMI(bmi *float64, s scoring.StabilityThresholds) clinical.ComponentResult {
	if bmi == nil {
		return missing(s.MissingScore, "BMI")
	}
	return fromBand(s.BMI.Lookup(*bmi), fmt.Sprintf("%.1f kg/m²", math.Round(*bmi*10)/10))
}
