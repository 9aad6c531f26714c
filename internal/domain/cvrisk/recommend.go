package cvrisk

import (
	"github.com/turtacn/VitalGuard/internal/domain/patient"
	"github.com/turtacn/VitalGuard/internal/domain/scoring"
	"github.com/turtacn/VitalGuard/pkg/types/clinical"
)

// CategorySmokingCessation always heads the list when it applies.
const CategorySmokingCessation = "Smoking Cessation"

var (
	recMedicalConsultation = clinical.Recommendation{
		Priority:  clinical.PriorityCritical,
		Category:  "Medical Consultation",
		Action:    "Schedule cardiology appointment within 7 days",
		Rationale: "High cardiovascular risk requires immediate medical evaluation",
		Timeline:  "Within 1 week",
	}
	recComprehensiveEvaluation = clinical.Recommendation{
		Priority:  clinical.PriorityHigh,
		Category:  "Comprehensive Evaluation",
		Action:    "Complete cardiovascular workup: ECG, Echo, stress test, lipid profile",
		Rationale: "Detailed assessment needed for high-risk patients",
		Timeline:  "Within 2 weeks",
	}
	recPharmacological = clinical.Recommendation{
		Priority:  clinical.PriorityHigh,
		Category:  "Pharmacological Intervention",
		Action:    "Discuss statin therapy and antihypertensive medications with doctor",
		Rationale: "Medication often necessary for high-risk CVD prevention",
		Timeline:  "As prescribed",
	}
	recRegularMonitoring = clinical.Recommendation{
		Priority:  clinical.PriorityMedium,
		Category:  "Regular Monitoring",
		Action:    "BP check monthly, lipid profile every 6 months, HbA1c if diabetic",
		Rationale: "Close monitoring essential for risk management",
		Timeline:  "Ongoing",
	}
	recLifestyle = clinical.Recommendation{
		Priority:  clinical.PriorityMedium,
		Category:  "Lifestyle Modifications",
		Action:    "DASH diet, 150 min/week exercise, stress management, sleep 7-8 hours",
		Rationale: "Lifestyle changes can reduce CVD risk by 20-30%",
		Timeline:  "Start immediately",
	}
	recSmoking = clinical.Recommendation{
		Priority:  clinical.PriorityCritical,
		Category:  CategorySmokingCessation,
		Action:    "Enroll in smoking cessation program immediately. Consider nicotine replacement.",
		Rationale: "Smoking cessation reduces CVD risk by 50% within 1 year - MOST IMPORTANT intervention",
		Timeline:  "Immediate",
		Resource:  "National Tobacco Quitline: 1800-11-2356",
	}
	recDiabetes = clinical.Recommendation{
		Priority:  clinical.PriorityHigh,
		Category:  "Diabetes Control",
		Action:    "Target HbA1c <7%, monitor blood glucose 3x daily, endocrinologist consultation",
		Rationale: "Optimal glucose control reduces cardiovascular complications by 40%",
		Timeline:  "Ongoing",
	}
	recBloodPressure = clinical.Recommendation{
		Priority:  clinical.PriorityHigh,
		Category:  "Blood Pressure Control",
		Action:    "Reduce salt to <5g/day, DASH diet, monitor BP daily, medication if BP ≥140/90",
		Rationale: "BP control is THE most important factor in CVD prevention",
		Timeline:  "Immediate and ongoing",
	}
	recCholesterol = clinical.Recommendation{
		Priority:  clinical.PriorityMedium,
		Category:  "Cholesterol Management",
		Action:    "Low saturated fat diet (<7% calories), increase fiber (25-30g/day), omega-3",
		Rationale: "Dietary interventions can lower cholesterol by 10-20%",
		Timeline:  "3-6 months trial, then reassess",
	}
	recPreventive = clinical.Recommendation{
		Priority:  clinical.PriorityLow,
		Category:  "Preventive Care",
		Action:    "Maintain healthy lifestyle, annual health check-up, BP check every 6 months",
		Rationale: "Prevention is key to maintaining low risk status",
		Timeline:  "Ongoing",
	}
	recOptimization = clinical.Recommendation{
		Priority:  clinical.PriorityLow,
		Category:  "Health Optimization",
		Action:    "Mediterranean/DASH diet, 30min daily exercise, stress management, healthy BMI",
		Rationale: "Healthy habits prevent progression to higher risk",
		Timeline:  "Lifestyle integration",
	}
	recScreening = clinical.Recommendation{
		Priority:  clinical.PriorityMedium,
		Category:  "Age-Related Screening",
		Action:    "Annual ECG, calcium score assessment (if high risk), carotid ultrasound",
		Rationale: "Enhanced screening recommended for age 50+",
		Timeline:  "Annually",
	}
)

// recommend builds the clinical guidance for a risk result. Smoking
// cessation, when it applies, is placed first whatever else is computed.
func recommend(p patient.Patient, b clinical.Breakdown, urgency clinical.Urgency, r scoring.RiskThresholds) []clinical.Recommendation {
	var recs []clinical.Recommendation

	if urgency == clinical.UrgencyCritical || urgency == clinical.UrgencyConcerning {
		recs = append(recs, recMedicalConsultation, recComprehensiveEvaluation, recPharmacological)
	}
	if urgency == clinical.UrgencyElevated || urgency == clinical.UrgencyConcerning {
		recs = append(recs, recRegularMonitoring, recLifestyle)
	}
	if b[clinical.FactorDiabetes].Score > 0 {
		recs = append(recs, recDiabetes)
	}
	if b[clinical.FactorBloodPressure].Score > 0 {
		recs = append(recs, recBloodPressure)
	}
	if b[clinical.FactorCholesterol].Score > 0 {
		recs = append(recs, recCholesterol)
	}
	if urgency == clinical.UrgencyRoutine {
		recs = append(recs, recPreventive, recOptimization)
	}
	if p.Age != nil && float64(*p.Age) >= r.ScreeningAge {
		recs = append(recs, recScreening)
	}

	if b[clinical.FactorSmoking].Score > 0 {
		recs = append([]clinical.Recommendation{recSmoking}, recs...)
	}
	if recs == nil {
		recs = []clinical.Recommendation{}
	}
	return recs
}
