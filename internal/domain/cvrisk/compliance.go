package cvrisk

import (
	"fmt"
	"strings"

	"github.com/turtacn/VitalGuard/pkg/types/clinical"
)

// NextSteps returns the immediate triage list for an urgency tier. Every
// tier yields at least one step.
func NextSteps(u clinical.Urgency) []clinical.NextStep {
	switch u {
	case clinical.UrgencyCritical:
		return []clinical.NextStep{
			{Priority: 1, Action: "Schedule URGENT cardiology consultation within 3-7 days", Reason: "Very high CVD risk requires immediate medical evaluation"},
			{Priority: 2, Action: "Do not ignore symptoms: chest pain, shortness of breath, palpitations, dizziness", Reason: "Warning signs of cardiac events - seek emergency care if present"},
			{Priority: 3, Action: "Emergency care if experiencing acute symptoms RIGHT NOW", Reason: "Call 108/102 for ambulance immediately"},
			{Priority: 4, Action: "Comprehensive cardiovascular evaluation: ECG, Echo, stress test, angiography", Reason: "Complete assessment needed to guide treatment"},
			{Priority: 5, Action: "Consider cardiac imaging and advanced diagnostics", Reason: "Identify underlying heart disease"},
		}
	case clinical.UrgencyConcerning:
		return []clinical.NextStep{
			{Priority: 1, Action: "Schedule cardiology consultation within 2-4 weeks", Reason: "High CVD risk requires professional management"},
			{Priority: 2, Action: "Strict adherence to prescribed medications", Reason: "Medication compliance is crucial for risk reduction"},
		}
	case clinical.UrgencyElevated:
		return []clinical.NextStep{
			{Priority: 1, Action: "Schedule a doctor visit within 1-3 months to review risk factors", Reason: "Moderate CVD risk benefits from professional review"},
			{Priority: 2, Action: "Start the recommended lifestyle changes now", Reason: "Early lifestyle changes slow progression to higher risk"},
		}
	default:
		return []clinical.NextStep{
			{Priority: 1, Action: "Continue annual health check-ups", Reason: "Regular check-ups keep risk low"},
			{Priority: 2, Action: "Recalculate risk when your health data changes", Reason: "New readings can change the estimate"},
		}
	}
}

// Disclaimer returns the compliance block. It is attached to every risk
// result without exception.
func Disclaimer(confidence int, gaps []string) clinical.Disclaimer {
	dataLimitations := "All required data points available."
	if len(gaps) > 0 {
		dataLimitations = "Missing data affects accuracy: " + strings.Join(gaps, "; ")
	}
	return clinical.Disclaimer{
		Primary: "MEDICAL DISCLAIMER: This is an ESTIMATED 10-year cardiovascular disease risk based on WHO/ISH guidelines " +
			"for South-East Asia Region D (India). This is NOT a clinical diagnosis and must NOT be used as the sole basis for medical decisions.",
		Accuracy: fmt.Sprintf("Risk estimate confidence: %d%%. Accuracy depends on data quality and completeness. "+
			"Individual risk may vary significantly.", confidence),
		Validation: "Always consult a qualified cardiologist or physician for accurate assessment, diagnosis, and treatment. " +
			"This tool is for educational and screening purposes ONLY.",
		Legal: "This platform does not provide medical advice, diagnosis, or treatment. Always seek the advice of your physician " +
			"or other qualified health provider with any questions regarding a medical condition. Never disregard professional " +
			"medical advice or delay seeking it because of information from this platform.",
		DataLimitations: dataLimitations,
		Emergency: "If experiencing chest pain, shortness of breath, sudden weakness, or other emergency symptoms, " +
			"call emergency services (108/102) IMMEDIATELY. Do not wait.",
		Liability: "Use of this calculator does not establish a doctor-patient relationship. Platform, developers, and affiliated " +
			"organizations are not liable for medical outcomes or decisions based on this estimate.",
	}
}

// Limitations lists what the model does not account for.
func Limitations() []string {
	return []string{
		"Does not account for family history of CVD (increases risk 2-4x)",
		"HDL cholesterol ratio not included (protective factor)",
		"May underestimate risk in young patients with strong family history",
		"Regional variations within India not captured",
		"Does not account for ethnic sub-populations",
		"Lifestyle factors (diet quality, stress, sleep) not fully captured",
		"Previous cardiovascular events not factored into score",
		"Kidney function (eGFR) not included",
		"Inflammatory markers (CRP) not assessed",
		"Advanced lipid markers not included",
		"Genetic risk factors not considered",
	}
}

// RecalculateWhen lists the events that make a result stale.
func RecalculateWhen() []string {
	return []string{
		"New blood pressure reading (if BP was elevated)",
		"Updated cholesterol levels (every 3-6 months)",
		"Change in smoking status",
		"New diabetes diagnosis",
		"Weight change > 5 kg or BMI change",
		"New cardiovascular symptoms",
		"Change in medications",
		"After 6-12 months for high-risk individuals",
		"Annually for moderate-risk individuals",
	}
}

// Meta is the deployment metadata stamped on risk results.
type Meta struct {
	Region             string
	Country            string
	MethodologyVersion string
}

// Methodology describes the chart a result was computed with.
func Methodology(version string) clinical.Methodology {
	if version == "" {
		version = "2019"
	}
	return clinical.Methodology{
		Name:        "WHO/ISH Cardiovascular Risk Prediction Charts",
		Version:     version,
		Region:      "South-East Asia Region D (SEAR-D)",
		Countries:   []string{"India", "Bangladesh", "Bhutan", "Nepal", "Sri Lanka"},
		Validated:   true,
		LastUpdated: "2019",
		Reference:   "WHO Technical Report Series on Prevention of Cardiovascular Disease",
	}
}
