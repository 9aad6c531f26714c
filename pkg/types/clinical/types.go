// Package clinical holds the public input and output contracts of the
// VitalGuard scoring engine: the PatientSnapshot a caller assembles from its
// own storage and the StabilityResult / RiskResult records it receives back.
// Every type here is plain data and JSON/YAML serializable.
package clinical

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Enumerations
// ─────────────────────────────────────────────────────────────────────────────

// Sex is the biological sex recorded in the patient profile.
type Sex string

const (
	SexUnspecified Sex = ""
	SexMale        Sex = "male"
	SexFemale      Sex = "female"
	SexOther       Sex = "other"
)

// IsValid checks if the Sex is one of the known values.
func (s Sex) IsValid() bool {
	switch s {
	case SexUnspecified, SexMale, SexFemale, SexOther:
		return true
	default:
		return false
	}
}

// Activity is the context a heart-rate reading was taken in.
type Activity string

const (
	ActivityUnspecified  Activity = ""
	ActivityResting      Activity = "resting"
	ActivityPostExercise Activity = "post-exercise"
)

// IsValid checks if the Activity is one of the known values.
func (a Activity) IsValid() bool {
	switch a {
	case ActivityUnspecified, ActivityResting, ActivityPostExercise:
		return true
	default:
		return false
	}
}

// GlucoseTiming is the context a glucose reading was taken in.
type GlucoseTiming string

const (
	TimingUnspecified GlucoseTiming = ""
	TimingFasting     GlucoseTiming = "fasting"
	TimingPostMeal    GlucoseTiming = "post-meal"
)

// IsValid checks if the GlucoseTiming is one of the known values.
func (g GlucoseTiming) IsValid() bool {
	switch g {
	case TimingUnspecified, TimingFasting, TimingPostMeal:
		return true
	default:
		return false
	}
}

// Factor names a scored component in a result breakdown.
type Factor string

const (
	FactorBloodPressure Factor = "bloodPressure"
	FactorHeartRate     Factor = "heartRate"
	FactorGlucose       Factor = "glucose"
	FactorSpO2          Factor = "spo2"
	FactorBMI           Factor = "bmi"

	FactorAge         Factor = "age"
	FactorSex         Factor = "sex"
	FactorSmoking     Factor = "smoking"
	FactorDiabetes    Factor = "diabetes"
	FactorCholesterol Factor = "cholesterol"
)

// StabilityFactors lists the stability components in reporting order.
var StabilityFactors = []Factor{FactorBloodPressure, FactorHeartRate, FactorGlucose, FactorSpO2, FactorBMI}

// RiskFactors lists the cardiovascular components in scoring order.
var RiskFactors = []Factor{FactorAge, FactorSex, FactorSmoking, FactorDiabetes, FactorBloodPressure, FactorCholesterol}

// Action is the severity tag attached to a component or alert.
type Action string

const (
	ActionNone      Action = ""
	ActionImmediate Action = "immediate"
	ActionUrgent    Action = "urgent"
	ActionEmergency Action = "emergency"
)

// Priority orders recommendations.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Rank returns 0 for critical through 3 for low; unknown priorities sort last.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// RiskCategory is the ten-year cardiovascular risk bucket.
type RiskCategory string

const (
	RiskLow      RiskCategory = "low"
	RiskModerate RiskCategory = "moderate"
	RiskHigh     RiskCategory = "high"
	RiskVeryHigh RiskCategory = "very_high"
)

// Urgency is the triage tier derived from a RiskCategory.
type Urgency string

const (
	UrgencyRoutine    Urgency = "routine"
	UrgencyElevated   Urgency = "elevated"
	UrgencyConcerning Urgency = "concerning"
	UrgencyCritical   Urgency = "critical"
)

// ─────────────────────────────────────────────────────────────────────────────
// PatientSnapshot
// ─────────────────────────────────────────────────────────────────────────────

// BloodPressure is a single cuff reading in mmHg.
type BloodPressure struct {
	Systolic  float64 `json:"systolic" yaml:"systolic"`
	Diastolic float64 `json:"diastolic" yaml:"diastolic"`
}

// Flags are the yes/no facts of the patient history. Smoker is tri-state:
// nil means the status was never recorded.
type Flags struct {
	Smoker                 *bool `json:"smoker,omitempty" yaml:"smoker,omitempty"`
	Diabetic               bool  `json:"diabetic,omitempty" yaml:"diabetic,omitempty"`
	DiabeticComplications  bool  `json:"diabeticComplications,omitempty" yaml:"diabeticComplications,omitempty"`
	PregnancyComplications bool  `json:"pregnancyComplications,omitempty" yaml:"pregnancyComplications,omitempty"`
	SecondHandSmoke        bool  `json:"secondHandSmoke,omitempty" yaml:"secondHandSmoke,omitempty"`
	Athlete                bool  `json:"athlete,omitempty" yaml:"athlete,omitempty"`
}

// Vitals are the latest measurements. A nil pointer means absent.
type Vitals struct {
	BloodPressure *BloodPressure `json:"bloodPressure,omitempty" yaml:"bloodPressure,omitempty"`
	HeartRate     *float64       `json:"heartRate,omitempty" yaml:"heartRate,omitempty"`
	Activity      Activity       `json:"activity,omitempty" yaml:"activity,omitempty"`
	Glucose       *float64       `json:"glucose,omitempty" yaml:"glucose,omitempty"`
	GlucoseTiming GlucoseTiming  `json:"glucoseTiming,omitempty" yaml:"glucoseTiming,omitempty"`
	SpO2          *float64       `json:"spo2,omitempty" yaml:"spo2,omitempty"`
	BMI           *float64       `json:"bmi,omitempty" yaml:"bmi,omitempty"`
	WeightKg      *float64       `json:"weightKg,omitempty" yaml:"weightKg,omitempty"`
	HeightCm      *float64       `json:"heightCm,omitempty" yaml:"heightCm,omitempty"`
	MeasuredAt    *time.Time     `json:"measuredAt,omitempty" yaml:"measuredAt,omitempty"`
}

// Labs are the latest lipid results in mg/dL.
type Labs struct {
	TotalCholesterol *float64 `json:"totalCholesterol,omitempty" yaml:"totalCholesterol,omitempty"`
	HDL              *float64 `json:"hdl,omitempty" yaml:"hdl,omitempty"`
}

// Snapshot is the PatientSnapshot: everything the engine needs for one
// assessment, built fresh by the caller for every call.
type Snapshot struct {
	BirthDate *time.Time `json:"birthDate,omitempty" yaml:"birthDate,omitempty"`
	Sex       Sex        `json:"sex,omitempty" yaml:"sex,omitempty"`
	Flags     Flags      `json:"flags" yaml:"flags"`
	Vitals    Vitals     `json:"vitals" yaml:"vitals"`
	Labs      Labs       `json:"labs" yaml:"labs"`
}

// Float returns a pointer to v. It keeps snapshot literals short.
func Float(v float64) *float64 { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// ─────────────────────────────────────────────────────────────────────────────
// Results
// ─────────────────────────────────────────────────────────────────────────────

// ComponentResult is the outcome of one component scorer. Score is 0–100 on
// the stability path and 0..MaxScore points on the risk path.
type ComponentResult struct {
	Score    int    `json:"score"`
	MaxScore int    `json:"maxScore"`
	Status   string `json:"status"`
	Tier     string `json:"tier,omitempty"`
	Category string `json:"category,omitempty"`
	Message  string `json:"message"`
	Detail   string `json:"detail,omitempty"`
	Action   Action `json:"action,omitempty"`
	Critical bool   `json:"critical"`
	Context  string `json:"context,omitempty"`
}

// Breakdown maps each scored factor to its result.
type Breakdown map[Factor]ComponentResult

// Bucket is the presentation of the stability total.
type Bucket struct {
	Level string `json:"level"`
	Color string `json:"color"`
	Label string `json:"label"`
}

// Alert is an emergency condition detected on a raw value.
type Alert struct {
	Severity string `json:"severity"`
	Type     string `json:"type"`
	Message  string `json:"message"`
	Action   string `json:"action"`
	Vital    string `json:"vital"`
	Value    string `json:"value"`
}

// Confidence is a 0–100 reliability estimate of a result.
type Confidence struct {
	Score   int    `json:"score"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Recommendation is one prioritized piece of guidance.
type Recommendation struct {
	Priority  Priority `json:"priority"`
	Category  string   `json:"category"`
	Action    string   `json:"action"`
	Rationale string   `json:"rationale"`
	Timeline  string   `json:"timeline"`
	Resource  string   `json:"resource,omitempty"`
	Steps     []string `json:"steps,omitempty"`
}

// StabilityResult is the vital stability assessment.
type StabilityResult struct {
	Score           int              `json:"score"`
	Status          Bucket           `json:"status"`
	Critical        bool             `json:"critical"`
	Breakdown       Breakdown        `json:"breakdown"`
	CriticalAlerts  []Alert          `json:"criticalAlerts"`
	Confidence      Confidence       `json:"confidence"`
	Recommendations []Recommendation `json:"recommendations"`
	AssessedAt      time.Time        `json:"assessedAt"`
}

// NextStep is one entry of the immediate triage list.
type NextStep struct {
	Priority int    `json:"priority"`
	Action   string `json:"action"`
	Reason   string `json:"reason"`
}

// Disclaimer is the compliance block attached to every risk result.
type Disclaimer struct {
	Primary         string `json:"primary"`
	Accuracy        string `json:"accuracy"`
	Validation      string `json:"validation"`
	Legal           string `json:"legal"`
	DataLimitations string `json:"dataLimitations"`
	Emergency       string `json:"emergency"`
	Liability       string `json:"liability"`
}

// Methodology describes the risk model a result was computed with.
type Methodology struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Region      string   `json:"region"`
	Countries   []string `json:"countries"`
	Validated   bool     `json:"validated"`
	LastUpdated string   `json:"lastUpdated"`
	Reference   string   `json:"reference"`
}

// RiskResult is the CardiovascularRiskResult.
type RiskResult struct {
	Score           int              `json:"score"`
	MaxScore        int              `json:"maxScore"`
	Category        RiskCategory     `json:"category"`
	TenYearRisk     string           `json:"tenYearRisk"`
	ColorCode       string           `json:"colorCode"`
	Urgency         Urgency          `json:"urgency"`
	Breakdown       Breakdown        `json:"breakdown"`
	Confidence      Confidence       `json:"confidence"`
	DataGaps        []string         `json:"dataGaps"`
	Warnings        []string         `json:"warnings"`
	Recommendations []Recommendation `json:"recommendations"`
	NextSteps       []NextStep       `json:"nextSteps"`
	Disclaimer      Disclaimer       `json:"disclaimer"`
	Limitations     []string         `json:"limitations"`
	RecalculateWhen []string         `json:"recalculateWhen"`
	Methodology     Methodology      `json:"methodology"`
	Region          string           `json:"region"`
	Country         string           `json:"country"`
	CalculatedAt    time.Time        `json:"calculatedAt"`
}
