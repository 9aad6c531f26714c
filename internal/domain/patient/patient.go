// Package patient validates and normalizes a PatientSnapshot before any
// scorer sees it: physiological bounds, enumeration values, age derived from
// the birth date and BMI derived from weight and height.
package patient

import (
	"fmt"
	"math"
	"time"

	"github.com/turtacn/VitalGuard/internal/domain/scoring"
	"github.com/turtacn/VitalGuard/pkg/errors"
	"github.com/turtacn/VitalGuard/pkg/types/clinical"
)

// Patient is a snapshot that passed validation. Absent fields stay nil.
type Patient struct {
	clinical.Snapshot

	// Age in completed years, nil when no birth date was supplied.
	Age *int

	// BMIDerived is set when BMI was computed from weight and height.
	BMIDerived bool
}

// HasAge reports whether the age is known.
func (p Patient) HasAge() bool { return p.Age != nil }

// Normalize validates snap against bounds and returns the normalized
// patient. now is the reference instant for age.
//
// Every present value must be finite and inside its bounds; a violation is a
// VAL_* error. Absent values are never an error.
func Normalize(snap clinical.Snapshot, bounds scoring.ValidationBounds, now time.Time) (Patient, error) {
	p := Patient{Snapshot: snap}

	if !snap.Sex.IsValid() {
		return Patient{}, errors.Newf(errors.ErrCodeUnknownEnum, "unknown sex %q", snap.Sex)
	}
	if !snap.Vitals.Activity.IsValid() {
		return Patient{}, errors.Newf(errors.ErrCodeUnknownEnum, "unknown activity %q", snap.Vitals.Activity)
	}
	if !snap.Vitals.GlucoseTiming.IsValid() {
		return Patient{}, errors.Newf(errors.ErrCodeUnknownEnum, "unknown glucose timing %q", snap.Vitals.GlucoseTiming)
	}

	v := snap.Vitals
	if v.BloodPressure != nil {
		if err := check("systolic", &v.BloodPressure.Systolic, bounds.Systolic); err != nil {
			return Patient{}, err
		}
		if err := check("diastolic", &v.BloodPressure.Diastolic, bounds.Diastolic); err != nil {
			return Patient{}, err
		}
	}
	fields := []struct {
		name  string
		value *float64
		b     scoring.Bounds
	}{
		{"heart rate", v.HeartRate, bounds.HeartRate},
		{"glucose", v.Glucose, bounds.Glucose},
		{"spo2", v.SpO2, bounds.SpO2},
		{"bmi", v.BMI, bounds.BMI},
		{"weight", v.WeightKg, bounds.WeightKg},
		{"height", v.HeightCm, bounds.HeightCm},
		{"total cholesterol", snap.Labs.TotalCholesterol, bounds.TotalCholesterol},
		{"hdl", snap.Labs.HDL, bounds.HDL},
	}
	for _, f := range fields {
		if err := check(f.name, f.value, f.b); err != nil {
			return Patient{}, err
		}
	}

	if v.BMI == nil && v.WeightKg != nil && v.HeightCm != nil {
		bmi := DeriveBMI(*v.WeightKg, *v.HeightCm)
		if !bounds.BMI.Contains(bmi) {
			return Patient{}, errors.OutOfRange("derived bmi", bmi, bounds.BMI.Min, bounds.BMI.Max)
		}
		p.Vitals.BMI = &bmi
		p.BMIDerived = true
	}

	if snap.BirthDate != nil {
		if snap.BirthDate.After(now) {
			return Patient{}, errors.Malformed("birth date is in the future")
		}
		age := AgeAt(*snap.BirthDate, now)
		if float64(age) > bounds.MaxAgeYears {
			return Patient{}, errors.OutOfRange("age", float64(age), 0, bounds.MaxAgeYears)
		}
		p.Age = &age
	}

	return p, nil
}

// RequireAdult returns a DOM_001 error when the age is known and below
// minAge. An unknown age is a data gap, not a rule violation.
func RequireAdult(p Patient, minAge float64) error {
	if p.Age != nil && float64(*p.Age) < minAge {
		return errors.New(errors.ErrCodeUnderage, "assessment requires an adult").
			WithDetail(fmt.Sprintf("patient must be %g or older for WHO risk assessment", minAge))
	}
	return nil
}

// AgeAt returns the number of completed years between birth and now, both
// compared as UTC calendar dates.
func AgeAt(birth, now time.Time) int {
	birth, now = birth.UTC(), now.UTC()
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}

// DeriveBMI computes kg/m² from weight in kg and height in cm, rounded to one
// decimal.
func DeriveBMI(weightKg, heightCm float64) float64 {
	m := heightCm / 100
	return math.Round(weightKg/(m*m)*10) / 10
}

func check(field string, v *float64, b scoring.Bounds) error {
	if v == nil {
		return nil
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		return errors.Malformed(field + " is not a finite number")
	}
	if !b.Contains(*v) {
		return errors.OutOfRange(field, *v, b.Min, b.Max)
	}
	return nil
}
