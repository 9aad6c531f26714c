package scoring

import (
	"math"
	"sort"
	"strings"

	"github.com/turtacn/VitalGuard/pkg/errors"
)

// Override keys address either a scalar ("stability.weights.glucose",
// "alerts.glucose_severe_low") or the upper bound of a named band
// ("stability.blood_pressure.systolic.stage2"). Key names follow the
// mapstructure tags so a file overlay and an operator override read alike.

func (t *Thresholds) floatFields() map[string]*float64 {
	s, r, b := &t.Stability, &t.Risk, &t.Bounds
	return map[string]*float64{
		"stability.blood_pressure.hypotension_systolic":  &s.BloodPressure.HypotensionSystolic,
		"stability.blood_pressure.hypotension_diastolic": &s.BloodPressure.HypotensionDiastolic,
		"stability.glucose.diabetic_fasting_target":      &s.Glucose.DiabeticFastingTarget,
		"stability.completeness_weight":                  &s.CompletenessWeight,
		"stability.freshness_weight":                     &s.FreshnessWeight,

		"alerts.crisis_systolic":     &t.Alerts.CrisisSystolic,
		"alerts.crisis_diastolic":    &t.Alerts.CrisisDiastolic,
		"alerts.glucose_severe_low":  &t.Alerts.GlucoseSevereLow,
		"alerts.glucose_severe_high": &t.Alerts.GlucoseSevereHigh,
		"alerts.spo2_severe":         &t.Alerts.SpO2Severe,

		"risk.min_adult_age":       &r.MinAdultAge,
		"risk.low_hdl":             &r.LowHDL,
		"risk.pre_diabetes_low":    &r.PreDiabetesLow,
		"risk.pre_diabetes_high":   &r.PreDiabetesHigh,
		"risk.post_menopausal_age": &r.PostMenopausalAge,
		"risk.screening_age":       &r.ScreeningAge,

		"bounds.systolic.min":          &b.Systolic.Min,
		"bounds.systolic.max":          &b.Systolic.Max,
		"bounds.diastolic.min":         &b.Diastolic.Min,
		"bounds.diastolic.max":         &b.Diastolic.Max,
		"bounds.heart_rate.min":        &b.HeartRate.Min,
		"bounds.heart_rate.max":        &b.HeartRate.Max,
		"bounds.glucose.min":           &b.Glucose.Min,
		"bounds.glucose.max":           &b.Glucose.Max,
		"bounds.spo2.min":              &b.SpO2.Min,
		"bounds.spo2.max":              &b.SpO2.Max,
		"bounds.bmi.min":               &b.BMI.Min,
		"bounds.bmi.max":               &b.BMI.Max,
		"bounds.weight_kg.min":         &b.WeightKg.Min,
		"bounds.weight_kg.max":         &b.WeightKg.Max,
		"bounds.height_cm.min":         &b.HeightCm.Min,
		"bounds.height_cm.max":         &b.HeightCm.Max,
		"bounds.total_cholesterol.min": &b.TotalCholesterol.Min,
		"bounds.total_cholesterol.max": &b.TotalCholesterol.Max,
		"bounds.hdl.min":               &b.HDL.Min,
		"bounds.hdl.max":               &b.HDL.Max,
		"bounds.max_age_years":         &b.MaxAgeYears,
	}
}

func (t *Thresholds) intFields() map[string]*int {
	s, r := &t.Stability, &t.Risk
	return map[string]*int{
		"stability.weights.blood_pressure":     &s.Weights.BloodPressure,
		"stability.weights.heart_rate":         &s.Weights.HeartRate,
		"stability.weights.glucose":            &s.Weights.Glucose,
		"stability.weights.spo2":               &s.Weights.SpO2,
		"stability.weights.bmi":                &s.Weights.BMI,
		"stability.missing_score":              &s.MissingScore,
		"stability.blood_pressure.hypotension": &s.BloodPressure.Hypotension.Score,
		"stability.glucose.diabetic_floor":     &s.Glucose.DiabeticFloor,
		"stability.critical_below":             &s.CriticalBelow,
		"stability.weak_below":                 &s.WeakBelow,
		"stability.strong_from":                &s.StrongFrom,

		"risk.max_score":                &r.MaxScore,
		"risk.flags.male":               &r.Flags.Male,
		"risk.flags.female":             &r.Flags.Female,
		"risk.flags.smoker":             &r.Flags.Smoker,
		"risk.flags.diabetes":           &r.Flags.Diabetes,
		"risk.penalties.age":            &r.Penalties.Age,
		"risk.penalties.sex":            &r.Penalties.Sex,
		"risk.penalties.smoking":        &r.Penalties.Smoking,
		"risk.penalties.blood_pressure": &r.Penalties.BloodPressure,
		"risk.penalties.cholesterol":    &r.Penalties.Cholesterol,
	}
}

// tables lists every range table whose band bounds can be overridden.
func (t *Thresholds) tables() map[string]boundSetter {
	out := make(map[string]boundSetter)
	for path, tbl := range t.gradeTables() {
		out[path] = tbl
	}
	for path, tbl := range t.pointTables() {
		out[path] = tbl
	}
	out["stability.buckets"] = &t.Stability.Buckets
	out["stability.freshness"] = &t.Stability.Freshness
	out["risk.breakpoints"] = &t.Risk.Breakpoints
	out["confidence_levels"] = &t.ConfidenceLevels
	return out
}

// OverrideKeys returns every key ApplyOverrides accepts for this snapshot,
// sorted.
func (t *Thresholds) OverrideKeys() []string {
	var keys []string
	for k := range t.floatFields() {
		keys = append(keys, k)
	}
	for k := range t.intFields() {
		keys = append(keys, k)
	}
	for path, tbl := range t.tables() {
		for _, name := range bandNames(tbl) {
			keys = append(keys, path+"."+name)
		}
	}
	sort.Strings(keys)
	return keys
}

// OverrideValues returns the current value of every override key.
func (t *Thresholds) OverrideValues() map[string]float64 {
	out := make(map[string]float64)
	for k, p := range t.floatFields() {
		out[k] = *p
	}
	for k, p := range t.intFields() {
		out[k] = float64(*p)
	}
	for path, tbl := range t.tables() {
		for _, name := range bandNames(tbl) {
			if v, ok := tbl.Upper(name); ok {
				out[path+"."+name] = v
			}
		}
	}
	return out
}

// IsOverrideKey reports whether key addresses a value of this snapshot.
func (t *Thresholds) IsOverrideKey(key string) bool {
	if _, ok := t.floatFields()[key]; ok {
		return true
	}
	if _, ok := t.intFields()[key]; ok {
		return true
	}
	path, band, ok := splitBandKey(key)
	if !ok {
		return false
	}
	tbl, ok := t.tables()[path]
	if !ok {
		return false
	}
	for _, name := range bandNames(tbl) {
		if name == band {
			return true
		}
	}
	return false
}

// ApplyOverrides returns a validated copy of t with every override applied.
// Keys are applied in sorted order so the outcome does not depend on map
// iteration. The receiver is never modified.
func (t *Thresholds) ApplyOverrides(overrides map[string]float64) (*Thresholds, error) {
	next := t.Clone()

	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	floats, ints, tables := next.floatFields(), next.intFields(), next.tables()
	for _, key := range keys {
		v := overrides[key]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.New(errors.ErrCodeOverrideValue, "override value must be finite").WithDetail(key)
		}

		if p, ok := floats[key]; ok {
			*p = v
			continue
		}
		if p, ok := ints[key]; ok {
			if v != math.Trunc(v) {
				return nil, errors.Newf(errors.ErrCodeOverrideValue, "override %s expects an integer, got %g", key, v)
			}
			*p = int(v)
			continue
		}

		path, band, ok := splitBandKey(key)
		if !ok {
			return nil, errors.New(errors.ErrCodeUnknownOverrideKey, "unknown override key").WithDetail(key)
		}
		tbl, ok := tables[path]
		if !ok {
			return nil, errors.New(errors.ErrCodeUnknownOverrideKey, "unknown override key").WithDetail(key)
		}
		if err := tbl.SetUpper(band, v); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeUnknownOverrideKey, "unknown override key").WithDetail(key)
		}
	}

	if err := next.Validate(); err != nil {
		return nil, err
	}
	return next, nil
}

// splitBandKey splits "<table path>.<band>" at the last dot.
func splitBandKey(key string) (path, band string, ok bool) {
	i := strings.LastIndex(key, ".")
	if i <= 0 || i == len(key)-1 {
		return "", "", false
	}
	return key[:i], key[i+1:], true
}

// bandNames lists the bands of tbl that carry a bound, i.e. all but the
// catch-all.
func bandNames(tbl boundSetter) []string {
	names := tbl.Names()
	if len(names) == 0 {
		return nil
	}
	return names[:len(names)-1]
}
