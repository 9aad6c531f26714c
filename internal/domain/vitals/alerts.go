package vitals

import (
	"github.com/turtacn/VitalGuard/internal/domain/scoring"
	"github.com/turtacn/VitalGuard/pkg/types/clinical"
)

// Alert types.
const (
	AlertHypertensiveCrisis  = "hypertensive_crisis"
	AlertSevereHypoglycemia  = "severe_hypoglycemia"
	AlertSevereHyperglycemia = "severe_hyperglycemia"
	AlertSevereHypoxia       = "severe_hypoxia"
)

// Alerts checks the raw vitals against the absolute emergency limits. It
// never looks at component scores or the bucket.
func Alerts(v clinical.Vitals, a scoring.AlertThresholds) []clinical.Alert {
	alerts := []clinical.Alert{}

	if bp := v.BloodPressure; bp != nil && (bp.Systolic >= a.CrisisSystolic || bp.Diastolic >= a.CrisisDiastolic) {
		alerts = append(alerts, clinical.Alert{
			Severity: "critical",
			Type:     AlertHypertensiveCrisis,
			Message:  "Hypertensive Crisis Detected",
			Action:   "Call emergency services (102) immediately",
			Vital:    "Blood Pressure",
			Value:    scoring.FormatValue(bp.Systolic) + "/" + scoring.FormatValue(bp.Diastolic),
		})
	}

	if g := v.Glucose; g != nil {
		switch {
		case *g < a.GlucoseSevereLow:
			alerts = append(alerts, clinical.Alert{
				Severity: "critical",
				Type:     AlertSevereHypoglycemia,
				Message:  "Severe Low Blood Sugar",
				Action:   "Consume 15-20g fast-acting carbs NOW. Call someone to be with you.",
				Vital:    "Blood Glucose",
				Value:    scoring.FormatValue(*g) + " mg/dL",
			})
		case *g > a.GlucoseSevereHigh:
			alerts = append(alerts, clinical.Alert{
				Severity: "critical",
				Type:     AlertSevereHyperglycemia,
				Message:  "Dangerously High Blood Sugar",
				Action:   "Seek immediate medical care. Risk of DKA.",
				Vital:    "Blood Glucose",
				Value:    scoring.FormatValue(*g) + " mg/dL",
			})
		}
	}

	if o := v.SpO2; o != nil && *o < a.SpO2Severe {
		alerts = append(alerts, clinical.Alert{
			Severity: "critical",
			Type:     AlertSevereHypoxia,
			Message:  "Critical Low Oxygen Level",
			Action:   "Seek emergency medical care immediately",
			Vital:    "SpO2",
			Value:    scoring.FormatValue(*o) + "%",
		})
	}

	return alerts
}
