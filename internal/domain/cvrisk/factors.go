// Package cvrisk implements the WHO/ISH SEAR-D ten-year cardiovascular risk
// assessment: six point-awarding factor scorers, the point accumulator and
// category breakpoints, data-gap confidence, recommendations, triage next
// steps and the compliance block every result carries.
package cvrisk

import (
	"fmt"

	"github.com/turtacn/VitalGuard/internal/domain/patient"
	"github.com/turtacn/VitalGuard/internal/domain/scoring"
	"github.com/turtacn/VitalGuard/pkg/types/clinical"
)

// factorOutcome is what one factor contributes to the accumulator. A nil
// result means the factor could not be scored and gap says why.
type factorOutcome struct {
	factor   clinical.Factor
	result   *clinical.ComponentResult
	gap      string
	penalty  int
	warnings []string
}

func (o factorOutcome) points() int {
	if o.result == nil {
		return 0
	}
	return o.result.Score
}

func scoredBand(band scoring.Band[scoring.Points], max int, detail string) *clinical.ComponentResult {
	p := band.Outcome
	r := &clinical.ComponentResult{
		Score:    p.Points,
		MaxScore: max,
		Status:   p.Category,
		Tier:     band.Name,
		Category: p.Category,
		Message:  p.Note,
		Detail:   detail,
		Critical: p.Critical,
	}
	if p.Critical {
		r.Action = clinical.ActionEmergency
	}
	return r
}

func withWarning(ws []string, w string) []string {
	if w == "" {
		return ws
	}
	return append(ws, w)
}

func scoreAge(p patient.Patient, r scoring.RiskThresholds) factorOutcome {
	out := factorOutcome{factor: clinical.FactorAge}
	if p.Age == nil {
		out.gap = "Age could not be calculated"
		out.penalty = r.Penalties.Age
		return out
	}
	band := r.Age.Lookup(float64(*p.Age))
	out.result = scoredBand(band, scoring.MaxPoints(r.Age), fmt.Sprintf("%d years", *p.Age))
	out.warnings = withWarning(out.warnings, band.Outcome.Warning)
	return out
}

func scoreSex(p patient.Patient, r scoring.RiskThresholds) factorOutcome {
	out := factorOutcome{factor: clinical.FactorSex}
	max := r.Flags.Male
	if r.Flags.Female > max {
		max = r.Flags.Female
	}

	switch p.Sex {
	case clinical.SexMale:
		out.result = &clinical.ComponentResult{
			Score: r.Flags.Male, MaxScore: max, Status: "Male",
			Message: "Males have 2-3x higher CVD risk in India (lifestyle factors)",
		}
	case clinical.SexFemale:
		out.result = &clinical.ComponentResult{
			Score: r.Flags.Female, MaxScore: max, Status: "Female", Message: "Female",
		}
		if p.Age != nil && float64(*p.Age) >= r.PostMenopausalAge {
			out.warnings = append(out.warnings,
				"Post-menopausal women (age 50+) have increased CVD risk. Estrogen loss affects cardiovascular protection.")
		}
		if p.Flags.PregnancyComplications {
			out.warnings = append(out.warnings,
				"History of pregnancy complications (gestational diabetes, preeclampsia) increases future CVD risk. Clinical evaluation needed.")
		}
	case clinical.SexOther:
		out.result = &clinical.ComponentResult{
			Score: 0, MaxScore: max, Status: "Other", Message: "No sex-specific points applied",
		}
	default:
		out.gap = "Gender not specified"
		out.penalty = r.Penalties.Sex
	}
	return out
}

func scoreSmoking(p patient.Patient, r scoring.RiskThresholds) factorOutcome {
	out := factorOutcome{factor: clinical.FactorSmoking}
	if p.Flags.Smoker == nil {
		out.gap = "Smoking status not recorded"
		out.penalty = r.Penalties.Smoking
		return out
	}
	if *p.Flags.Smoker {
		out.result = &clinical.ComponentResult{
			Score: r.Flags.Smoker, MaxScore: r.Flags.Smoker, Status: "Current Smoker",
			Message:  "Smoking increases CVD risk by 2-4x",
			Detail:   "URGENT: Smoking cessation is single most important intervention",
			Critical: true,
		}
		out.warnings = append(out.warnings,
			"CRITICAL: Smoking cessation reduces CVD risk by 50% within 1 year. Enroll in cessation program immediately.")
		return out
	}
	out.result = &clinical.ComponentResult{
		Score: 0, MaxScore: r.Flags.Smoker, Status: "Non-Smoker", Message: "Good - no smoking risk factor",
	}
	if p.Flags.SecondHandSmoke {
		out.warnings = append(out.warnings,
			"Second-hand smoke exposure increases CVD risk by 25-30%. Avoid smoke exposure.")
	}
	return out
}

func scoreDiabetes(p patient.Patient, r scoring.RiskThresholds) factorOutcome {
	out := factorOutcome{factor: clinical.FactorDiabetes}
	if p.Flags.Diabetic {
		out.result = &clinical.ComponentResult{
			Score: r.Flags.Diabetes, MaxScore: r.Flags.Diabetes, Status: "Diabetic",
			Message: "Diabetes increases CVD risk by 2-4x in Indian population",
			Detail:  "Strict glucose control essential (HbA1c <7%)",
		}
		out.warnings = append(out.warnings,
			"HIGH RISK: Diabetes significantly increases CVD risk in Indians. Target HbA1c <7%, regular monitoring, endocrinologist consultation required.")
		if p.Flags.DiabeticComplications {
			out.warnings = append(out.warnings,
				"Diabetic complications (nephropathy, retinopathy, neuropathy) indicate higher CVD risk. Comprehensive evaluation needed.")
		}
		return out
	}
	out.result = &clinical.ComponentResult{
		Score: 0, MaxScore: r.Flags.Diabetes, Status: "Non-Diabetic", Message: "No diabetes detected",
	}
	if g := p.Vitals.Glucose; g != nil && *g >= r.PreDiabetesLow && *g < r.PreDiabetesHigh {
		out.warnings = append(out.warnings,
			"Pre-diabetic glucose levels detected. High risk of developing diabetes. Lifestyle intervention and annual screening essential.")
	}
	return out
}

// scoreBloodPressure classifies systolic and diastolic separately on the
// risk chart; the more severe tier wins and its outcome is read from the
// systolic table.
func scoreBloodPressure(p patient.Patient, r scoring.RiskThresholds) factorOutcome {
	out := factorOutcome{factor: clinical.FactorBloodPressure}
	bp := p.Vitals.BloodPressure
	if bp == nil {
		out.gap = "Blood pressure data not available"
		out.penalty = r.Penalties.BloodPressure
		out.warnings = append(out.warnings,
			"Blood pressure measurement required for accurate risk assessment. Schedule BP check immediately.")
		return out
	}
	idx := r.BloodPressureSystolic.Index(bp.Systolic)
	if d := r.BloodPressureDiastolic.Index(bp.Diastolic); d > idx {
		idx = d
	}
	band := r.BloodPressureSystolic[idx]
	detail := fmt.Sprintf("%s/%s mmHg", scoring.FormatValue(bp.Systolic), scoring.FormatValue(bp.Diastolic))
	out.result = scoredBand(band, scoring.MaxPoints(r.BloodPressureSystolic), detail)
	out.warnings = withWarning(out.warnings, band.Outcome.Warning)
	return out
}

func scoreCholesterol(p patient.Patient, r scoring.RiskThresholds) factorOutcome {
	out := factorOutcome{factor: clinical.FactorCholesterol}
	tc := p.Labs.TotalCholesterol
	if tc == nil {
		out.gap = "Cholesterol levels not recorded"
		out.penalty = r.Penalties.Cholesterol
		out.warnings = append(out.warnings,
			"Lipid profile (cholesterol) test recommended for complete risk assessment.")
		return out
	}
	band := r.Cholesterol.Lookup(*tc)
	out.result = scoredBand(band, scoring.MaxPoints(r.Cholesterol), scoring.FormatValue(*tc)+" mg/dL")
	out.warnings = withWarning(out.warnings, band.Outcome.Warning)

	if hdl := p.Labs.HDL; hdl != nil && *hdl < r.LowHDL {
		out.warnings = append(out.warnings,
			"Low HDL cholesterol (<40 mg/dL) increases risk. Exercise, omega-3, and niacin can help increase HDL.")
	}
	return out
}

// factorScorers run in the order warnings and gaps are reported.
var factorScorers = []func(patient.Patient, scoring.RiskThresholds) factorOutcome{
	scoreAge,
	scoreSex,
	scoreSmoking,
	scoreDiabetes,
	scoreBloodPressure,
	scoreCholesterol,
}
