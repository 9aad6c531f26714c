package scoring

import (
	"math"

	"github.com/turtacn/VitalGuard/pkg/errors"
	"github.com/turtacn/VitalGuard/pkg/types/clinical"
)

// ─────────────────────────────────────────────────────────────────────────────
// Band outcomes
// ─────────────────────────────────────────────────────────────────────────────

// Grade is the outcome of a stability band.
type Grade struct {
	Score    int             `mapstructure:"score" json:"score"`
	Status   string          `mapstructure:"status" json:"status"`
	Message  string          `mapstructure:"message" json:"message"`
	Action   clinical.Action `mapstructure:"action" json:"action,omitempty"`
	Critical bool            `mapstructure:"critical" json:"critical,omitempty"`

	// Defer marks a band of an override table that does not decide the
	// result; the contextual ladder does.
	Defer bool `mapstructure:"defer" json:"defer,omitempty"`
}

// Points is the outcome of a risk band.
type Points struct {
	Points   int    `mapstructure:"points" json:"points"`
	Category string `mapstructure:"category" json:"category"`
	Note     string `mapstructure:"note" json:"note"`
	Warning  string `mapstructure:"warning" json:"warning,omitempty"`
	Critical bool   `mapstructure:"critical" json:"critical,omitempty"`
}

// RiskBand is the outcome of a risk category breakpoint.
type RiskBand struct {
	Category    clinical.RiskCategory `mapstructure:"category" json:"category"`
	TenYearRisk string                `mapstructure:"ten_year_risk" json:"tenYearRisk"`
	Color       string                `mapstructure:"color" json:"color"`
	Urgency     clinical.Urgency      `mapstructure:"urgency" json:"urgency"`
}

// Level is the outcome of a confidence level band.
type Level struct {
	Level string `mapstructure:"level" json:"level"`
}

// Freshness is the outcome of a measurement-age band.
type Freshness struct {
	Score int `mapstructure:"score" json:"score"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Stability thresholds
// ─────────────────────────────────────────────────────────────────────────────

// Weights are the stability component weights in percent.
type Weights struct {
	BloodPressure int `mapstructure:"blood_pressure" json:"bloodPressure"`
	HeartRate     int `mapstructure:"heart_rate" json:"heartRate"`
	Glucose       int `mapstructure:"glucose" json:"glucose"`
	SpO2          int `mapstructure:"spo2" json:"spo2"`
	BMI           int `mapstructure:"bmi" json:"bmi"`
}

// Sum returns the total of all weights.
func (w Weights) Sum() int {
	return w.BloodPressure + w.HeartRate + w.Glucose + w.SpO2 + w.BMI
}

// For returns the weight of a stability factor.
func (w Weights) For(f clinical.Factor) int {
	switch f {
	case clinical.FactorBloodPressure:
		return w.BloodPressure
	case clinical.FactorHeartRate:
		return w.HeartRate
	case clinical.FactorGlucose:
		return w.Glucose
	case clinical.FactorSpO2:
		return w.SpO2
	case clinical.FactorBMI:
		return w.BMI
	default:
		return 0
	}
}

// BloodPressureTables classify systolic and diastolic readings separately;
// the more severe tier wins. The terminal band of both tables is the crisis
// override. Hypotension is checked after crisis and before the ladder.
type BloodPressureTables struct {
	Systolic             RangeTable[Grade] `mapstructure:"systolic" json:"systolic"`
	Diastolic            RangeTable[Grade] `mapstructure:"diastolic" json:"diastolic"`
	HypotensionSystolic  float64           `mapstructure:"hypotension_systolic" json:"hypotensionSystolic"`
	HypotensionDiastolic float64           `mapstructure:"hypotension_diastolic" json:"hypotensionDiastolic"`
	Hypotension          Grade             `mapstructure:"hypotension" json:"hypotension"`
}

// HeartRateTables hold the override tables (checked first) and the
// context ladders. Unspecified grades readings taken without an activity.
type HeartRateTables struct {
	Overrides        RangeTable[Grade] `mapstructure:"overrides" json:"overrides"`
	AthleteOverrides RangeTable[Grade] `mapstructure:"athlete_overrides" json:"athleteOverrides"`
	Resting          RangeTable[Grade] `mapstructure:"resting" json:"resting"`
	RestingAthlete   RangeTable[Grade] `mapstructure:"resting_athlete" json:"restingAthlete"`
	PostExercise     RangeTable[Grade] `mapstructure:"post_exercise" json:"postExercise"`
	Unspecified      RangeTable[Grade] `mapstructure:"unspecified" json:"unspecified"`
}

// GlucoseTables hold the override table (severe and moderate hypo/hyper),
// the timing ladders and the relaxed fasting target for diabetics.
type GlucoseTables struct {
	Overrides             RangeTable[Grade] `mapstructure:"overrides" json:"overrides"`
	Fasting               RangeTable[Grade] `mapstructure:"fasting" json:"fasting"`
	PostMeal              RangeTable[Grade] `mapstructure:"post_meal" json:"postMeal"`
	Unspecified           RangeTable[Grade] `mapstructure:"unspecified" json:"unspecified"`
	DiabeticFastingTarget float64           `mapstructure:"diabetic_fasting_target" json:"diabeticFastingTarget"`
	DiabeticFloor         int               `mapstructure:"diabetic_floor" json:"diabeticFloor"`
	DiabeticSuffix        string            `mapstructure:"diabetic_suffix" json:"diabeticSuffix"`
}

// StabilityThresholds parameterize the vital stability path.
type StabilityThresholds struct {
	Weights       Weights             `mapstructure:"weights" json:"weights"`
	MissingScore  int                 `mapstructure:"missing_score" json:"missingScore"`
	BloodPressure BloodPressureTables `mapstructure:"blood_pressure" json:"bloodPressure"`
	HeartRate     HeartRateTables     `mapstructure:"heart_rate" json:"heartRate"`
	Glucose       GlucoseTables       `mapstructure:"glucose" json:"glucose"`
	SpO2          RangeTable[Grade]   `mapstructure:"spo2" json:"spo2"`
	BMI           RangeTable[Grade]   `mapstructure:"bmi" json:"bmi"`

	Buckets RangeTable[clinical.Bucket] `mapstructure:"buckets" json:"buckets"`

	// CriticalBelow triggers the immediate-attention recommendation,
	// WeakBelow marks a component for targeted advice and StrongFrom earns
	// positive reinforcement.
	CriticalBelow int `mapstructure:"critical_below" json:"criticalBelow"`
	WeakBelow     int `mapstructure:"weak_below" json:"weakBelow"`
	StrongFrom    int `mapstructure:"strong_from" json:"strongFrom"`

	// Freshness is keyed by measurement age in hours.
	Freshness          RangeTable[Freshness] `mapstructure:"freshness" json:"freshness"`
	CompletenessWeight float64               `mapstructure:"completeness_weight" json:"completenessWeight"`
	FreshnessWeight    float64               `mapstructure:"freshness_weight" json:"freshnessWeight"`
}

// AlertThresholds are the absolute raw-value limits of the emergency pass.
type AlertThresholds struct {
	CrisisSystolic    float64 `mapstructure:"crisis_systolic" json:"crisisSystolic"`
	CrisisDiastolic   float64 `mapstructure:"crisis_diastolic" json:"crisisDiastolic"`
	GlucoseSevereLow  float64 `mapstructure:"glucose_severe_low" json:"glucoseSevereLow"`
	GlucoseSevereHigh float64 `mapstructure:"glucose_severe_high" json:"glucoseSevereHigh"`
	SpO2Severe        float64 `mapstructure:"spo2_severe" json:"spo2Severe"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Risk thresholds
// ─────────────────────────────────────────────────────────────────────────────

// Penalties are the confidence deductions per missing risk datum.
type Penalties struct {
	Age           int `mapstructure:"age" json:"age"`
	Sex           int `mapstructure:"sex" json:"sex"`
	Smoking       int `mapstructure:"smoking" json:"smoking"`
	BloodPressure int `mapstructure:"blood_pressure" json:"bloodPressure"`
	Cholesterol   int `mapstructure:"cholesterol" json:"cholesterol"`
}

// FlagPoints are the points of the yes/no risk factors.
type FlagPoints struct {
	Male     int `mapstructure:"male" json:"male"`
	Female   int `mapstructure:"female" json:"female"`
	Smoker   int `mapstructure:"smoker" json:"smoker"`
	Diabetes int `mapstructure:"diabetes" json:"diabetes"`
}

// RiskThresholds parameterize the cardiovascular risk path.
type RiskThresholds struct {
	MinAdultAge float64 `mapstructure:"min_adult_age" json:"minAdultAge"`
	MaxScore    int     `mapstructure:"max_score" json:"maxScore"`

	Age                    RangeTable[Points] `mapstructure:"age" json:"age"`
	Flags                  FlagPoints         `mapstructure:"flags" json:"flags"`
	BloodPressureSystolic  RangeTable[Points] `mapstructure:"blood_pressure_systolic" json:"bloodPressureSystolic"`
	BloodPressureDiastolic RangeTable[Points] `mapstructure:"blood_pressure_diastolic" json:"bloodPressureDiastolic"`
	Cholesterol            RangeTable[Points] `mapstructure:"cholesterol" json:"cholesterol"`

	LowHDL            float64 `mapstructure:"low_hdl" json:"lowHdl"`
	PreDiabetesLow    float64 `mapstructure:"pre_diabetes_low" json:"preDiabetesLow"`
	PreDiabetesHigh   float64 `mapstructure:"pre_diabetes_high" json:"preDiabetesHigh"`
	PostMenopausalAge float64 `mapstructure:"post_menopausal_age" json:"postMenopausalAge"`
	ScreeningAge      float64 `mapstructure:"screening_age" json:"screeningAge"`

	Penalties   Penalties            `mapstructure:"penalties" json:"penalties"`
	Breakpoints RangeTable[RiskBand] `mapstructure:"breakpoints" json:"breakpoints"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation bounds
// ─────────────────────────────────────────────────────────────────────────────

// Bounds is an inclusive physiological range.
type Bounds struct {
	Min float64 `mapstructure:"min" json:"min"`
	Max float64 `mapstructure:"max" json:"max"`
}

// Contains reports whether v lies in [Min, Max].
func (b Bounds) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// ValidationBounds are the hard limits outside of which a value is a
// data-entry error.
type ValidationBounds struct {
	Systolic         Bounds  `mapstructure:"systolic" json:"systolic"`
	Diastolic        Bounds  `mapstructure:"diastolic" json:"diastolic"`
	HeartRate        Bounds  `mapstructure:"heart_rate" json:"heartRate"`
	Glucose          Bounds  `mapstructure:"glucose" json:"glucose"`
	SpO2             Bounds  `mapstructure:"spo2" json:"spo2"`
	BMI              Bounds  `mapstructure:"bmi" json:"bmi"`
	WeightKg         Bounds  `mapstructure:"weight_kg" json:"weightKg"`
	HeightCm         Bounds  `mapstructure:"height_cm" json:"heightCm"`
	TotalCholesterol Bounds  `mapstructure:"total_cholesterol" json:"totalCholesterol"`
	HDL              Bounds  `mapstructure:"hdl" json:"hdl"`
	MaxAgeYears      float64 `mapstructure:"max_age_years" json:"maxAgeYears"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Thresholds snapshot
// ─────────────────────────────────────────────────────────────────────────────

// Thresholds is the complete, immutable configuration of both assessment
// paths. A published snapshot is never modified; changes go through Clone
// or ApplyOverrides and a new snapshot replaces the old one as a whole.
type Thresholds struct {
	Stability StabilityThresholds `mapstructure:"stability" json:"stability"`
	Alerts    AlertThresholds     `mapstructure:"alerts" json:"alerts"`
	Risk      RiskThresholds      `mapstructure:"risk" json:"risk"`
	Bounds    ValidationBounds    `mapstructure:"bounds" json:"bounds"`

	// ConfidenceLevels label a 0–100 confidence score on both paths.
	ConfidenceLevels RangeTable[Level] `mapstructure:"confidence_levels" json:"confidenceLevels"`
}

// Clone returns a deep copy of t.
func (t *Thresholds) Clone() *Thresholds {
	c := *t

	s := &c.Stability
	s.BloodPressure.Systolic = t.Stability.BloodPressure.Systolic.Clone()
	s.BloodPressure.Diastolic = t.Stability.BloodPressure.Diastolic.Clone()
	s.HeartRate.Overrides = t.Stability.HeartRate.Overrides.Clone()
	s.HeartRate.AthleteOverrides = t.Stability.HeartRate.AthleteOverrides.Clone()
	s.HeartRate.Resting = t.Stability.HeartRate.Resting.Clone()
	s.HeartRate.RestingAthlete = t.Stability.HeartRate.RestingAthlete.Clone()
	s.HeartRate.PostExercise = t.Stability.HeartRate.PostExercise.Clone()
	s.HeartRate.Unspecified = t.Stability.HeartRate.Unspecified.Clone()
	s.Glucose.Overrides = t.Stability.Glucose.Overrides.Clone()
	s.Glucose.Fasting = t.Stability.Glucose.Fasting.Clone()
	s.Glucose.PostMeal = t.Stability.Glucose.PostMeal.Clone()
	s.Glucose.Unspecified = t.Stability.Glucose.Unspecified.Clone()
	s.SpO2 = t.Stability.SpO2.Clone()
	s.BMI = t.Stability.BMI.Clone()
	s.Buckets = t.Stability.Buckets.Clone()
	s.Freshness = t.Stability.Freshness.Clone()

	r := &c.Risk
	r.Age = t.Risk.Age.Clone()
	r.BloodPressureSystolic = t.Risk.BloodPressureSystolic.Clone()
	r.BloodPressureDiastolic = t.Risk.BloodPressureDiastolic.Clone()
	r.Cholesterol = t.Risk.Cholesterol.Clone()
	r.Breakpoints = t.Risk.Breakpoints.Clone()

	c.ConfidenceLevels = t.ConfidenceLevels.Clone()
	return &c
}

// gradeTables lists every stability table by override path.
func (t *Thresholds) gradeTables() map[string]*RangeTable[Grade] {
	s := &t.Stability
	return map[string]*RangeTable[Grade]{
		"stability.blood_pressure.systolic":       &s.BloodPressure.Systolic,
		"stability.blood_pressure.diastolic":      &s.BloodPressure.Diastolic,
		"stability.heart_rate.overrides":          &s.HeartRate.Overrides,
		"stability.heart_rate.athlete_overrides":  &s.HeartRate.AthleteOverrides,
		"stability.heart_rate.resting":            &s.HeartRate.Resting,
		"stability.heart_rate.resting_athlete":    &s.HeartRate.RestingAthlete,
		"stability.heart_rate.post_exercise":      &s.HeartRate.PostExercise,
		"stability.heart_rate.unspecified":        &s.HeartRate.Unspecified,
		"stability.glucose.overrides":             &s.Glucose.Overrides,
		"stability.glucose.fasting":               &s.Glucose.Fasting,
		"stability.glucose.post_meal":             &s.Glucose.PostMeal,
		"stability.glucose.unspecified":           &s.Glucose.Unspecified,
		"stability.spo2":                          &s.SpO2,
		"stability.bmi":                           &s.BMI,
	}
}

// pointTables lists every risk points table by override path.
func (t *Thresholds) pointTables() map[string]*RangeTable[Points] {
	r := &t.Risk
	return map[string]*RangeTable[Points]{
		"risk.age":                      &r.Age,
		"risk.blood_pressure_systolic":  &r.BloodPressureSystolic,
		"risk.blood_pressure_diastolic": &r.BloodPressureDiastolic,
		"risk.cholesterol":              &r.Cholesterol,
	}
}

// Validate checks every invariant a snapshot must hold before it may be
// published: well-formed tables, bounded outcomes, weights summing to 100,
// paired blood-pressure tables and a risk range the breakpoints cover.
func (t *Thresholds) Validate() error {
	for path, tbl := range t.gradeTables() {
		if err := tbl.Validate(path); err != nil {
			return err
		}
		for _, b := range *tbl {
			if b.Outcome.Score < 0 || b.Outcome.Score > 100 {
				return errors.Newf(errors.ErrCodeInvalidThresholdTable,
					"%s.%s: score %d outside [0, 100]", path, b.Name, b.Outcome.Score)
			}
		}
	}
	for path, tbl := range t.pointTables() {
		if err := tbl.Validate(path); err != nil {
			return err
		}
		for _, b := range *tbl {
			if b.Outcome.Points < 0 {
				return errors.Newf(errors.ErrCodeInvalidThresholdTable, "%s.%s: negative points", path, b.Name)
			}
		}
	}
	if err := t.Stability.Buckets.Validate("stability.buckets"); err != nil {
		return err
	}
	if err := t.Stability.Freshness.Validate("stability.freshness"); err != nil {
		return err
	}
	if err := t.Risk.Breakpoints.Validate("risk.breakpoints"); err != nil {
		return err
	}
	if err := t.ConfidenceLevels.Validate("confidence_levels"); err != nil {
		return err
	}

	if err := t.validateStability(); err != nil {
		return err
	}
	if err := t.validateRisk(); err != nil {
		return err
	}
	return t.validateBounds()
}

func (t *Thresholds) validateStability() error {
	s := t.Stability
	if sum := s.Weights.Sum(); sum != 100 {
		return errors.Newf(errors.ErrCodeWeightsSum, "stability weights sum to %d", sum)
	}
	for _, f := range clinical.StabilityFactors {
		if s.Weights.For(f) < 0 {
			return errors.Newf(errors.ErrCodeWeightsSum, "negative weight for %s", f)
		}
	}
	if s.MissingScore < 0 || s.MissingScore > 100 {
		return errors.Newf(errors.ErrCodeInvalidThresholdTable, "missing score %d outside [0, 100]", s.MissingScore)
	}
	if !sameNames(s.BloodPressure.Systolic, s.BloodPressure.Diastolic) {
		return errors.New(errors.ErrCodeInvalidThresholdTable,
			"stability.blood_pressure: systolic and diastolic tables must list the same tiers")
	}
	if hypo := s.BloodPressure.Hypotension.Score; hypo < 0 || hypo > 100 {
		return errors.Newf(errors.ErrCodeInvalidThresholdTable, "hypotension score %d outside [0, 100]", hypo)
	}
	if s.Glucose.DiabeticFloor < 0 || s.Glucose.DiabeticFloor > 100 {
		return errors.Newf(errors.ErrCodeInvalidThresholdTable, "diabetic floor %d outside [0, 100]", s.Glucose.DiabeticFloor)
	}
	if s.CompletenessWeight < 0 || s.FreshnessWeight < 0 || math.Abs(s.CompletenessWeight+s.FreshnessWeight-1) > 1e-9 {
		return errors.New(errors.ErrCodeInvalidThresholdTable, "confidence weights must be non-negative and sum to 1")
	}
	for _, b := range s.Freshness {
		if b.Outcome.Score < 0 || b.Outcome.Score > 100 {
			return errors.Newf(errors.ErrCodeInvalidThresholdTable, "stability.freshness.%s: score outside [0, 100]", b.Name)
		}
	}
	return nil
}

func (t *Thresholds) validateRisk() error {
	r := t.Risk
	if !sameNames(r.BloodPressureSystolic, r.BloodPressureDiastolic) {
		return errors.New(errors.ErrCodeInvalidThresholdTable,
			"risk.blood_pressure: systolic and diastolic tables must list the same tiers")
	}
	if r.Flags.Male < 0 || r.Flags.Female < 0 || r.Flags.Smoker < 0 || r.Flags.Diabetes < 0 {
		return errors.New(errors.ErrCodeInvalidThresholdTable, "risk.flags: negative points")
	}
	for _, p := range []int{r.Penalties.Age, r.Penalties.Sex, r.Penalties.Smoking, r.Penalties.BloodPressure, r.Penalties.Cholesterol} {
		if p < 0 || p > 100 {
			return errors.New(errors.ErrCodeInvalidThresholdTable, "risk.penalties: penalty outside [0, 100]")
		}
	}

	reachable := MaxPoints(r.Age) +
		maxInt(r.Flags.Male, r.Flags.Female) +
		r.Flags.Smoker +
		r.Flags.Diabetes +
		MaxPoints(r.BloodPressureSystolic) +
		MaxPoints(r.Cholesterol)
	if reachable > r.MaxScore {
		return errors.Newf(errors.ErrCodeInvalidThresholdTable,
			"risk tables reach %d points, above the %d maximum", reachable, r.MaxScore)
	}
	if len(r.Breakpoints) > 1 && r.Breakpoints[0].Upper < 0 {
		return errors.New(errors.ErrCodeInvalidThresholdTable, "risk.breakpoints: first breakpoint below zero")
	}
	return nil
}

func (t *Thresholds) validateBounds() error {
	b := t.Bounds
	named := map[string]Bounds{
		"systolic":          b.Systolic,
		"diastolic":         b.Diastolic,
		"heart_rate":        b.HeartRate,
		"glucose":           b.Glucose,
		"spo2":              b.SpO2,
		"bmi":               b.BMI,
		"weight_kg":         b.WeightKg,
		"height_cm":         b.HeightCm,
		"total_cholesterol": b.TotalCholesterol,
		"hdl":               b.HDL,
	}
	for name, r := range named {
		if r.Min >= r.Max {
			return errors.Newf(errors.ErrCodeInvalidThresholdTable, "bounds.%s: min %g not below max %g", name, r.Min, r.Max)
		}
	}
	if b.MaxAgeYears <= t.Risk.MinAdultAge {
		return errors.New(errors.ErrCodeInvalidThresholdTable, "bounds.max_age_years must exceed risk.min_adult_age")
	}
	return nil
}

// MaxPoints returns the highest points any band of tbl awards.
func MaxPoints(tbl RangeTable[Points]) int {
	m := 0
	for _, b := range tbl {
		m = maxInt(m, b.Outcome.Points)
	}
	return m
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
