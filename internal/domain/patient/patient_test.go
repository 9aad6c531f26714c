package patient

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/VitalGuard/internal/domain/scoring"
	"github.com/turtacn/VitalGuard/pkg/errors"
	"github.com/turtacn/VitalGuard/pkg/types/clinical"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func bounds() scoring.ValidationBounds {
	return scoring.DefaultThresholds().Bounds
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestNormalize_Valid(t *testing.T) {
	snap := clinical.Snapshot{
		BirthDate: date(1969, time.March, 1),
		Sex:       clinical.SexMale,
		Vitals: clinical.Vitals{
			BloodPressure: &clinical.BloodPressure{Systolic: 125, Diastolic: 82},
			HeartRate:     clinical.Float(72),
			SpO2:          clinical.Float(98),
		},
	}
	p, err := Normalize(snap, bounds(), now)
	require.NoError(t, err)
	require.True(t, p.HasAge())
	assert.Equal(t, 55, *p.Age)
	assert.Nil(t, p.Vitals.Glucose)
	assert.Nil(t, p.Vitals.BMI)
}

func TestNormalize_OutOfRange(t *testing.T) {
	tests := []struct {
		name string
		snap clinical.Snapshot
	}{
		{"systolic high", clinical.Snapshot{Vitals: clinical.Vitals{BloodPressure: &clinical.BloodPressure{Systolic: 301, Diastolic: 80}}}},
		{"diastolic low", clinical.Snapshot{Vitals: clinical.Vitals{BloodPressure: &clinical.BloodPressure{Systolic: 120, Diastolic: 29}}}},
		{"heart rate", clinical.Snapshot{Vitals: clinical.Vitals{HeartRate: clinical.Float(251)}}},
		{"glucose", clinical.Snapshot{Vitals: clinical.Vitals{Glucose: clinical.Float(19)}}},
		{"spo2", clinical.Snapshot{Vitals: clinical.Vitals{SpO2: clinical.Float(101)}}},
		{"bmi", clinical.Snapshot{Vitals: clinical.Vitals{BMI: clinical.Float(9)}}},
		{"cholesterol", clinical.Snapshot{Labs: clinical.Labs{TotalCholesterol: clinical.Float(700)}}},
		{"hdl", clinical.Snapshot{Labs: clinical.Labs{HDL: clinical.Float(1)}}},
		{"too old", clinical.Snapshot{BirthDate: date(1880, time.January, 1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.snap, bounds(), now)
			require.Error(t, err)
			assert.True(t, errors.IsValidation(err))
			assert.Equal(t, errors.ErrCodeOutOfRange, errors.GetCode(err))
		})
	}
}

func TestNormalize_BoundsInclusive(t *testing.T) {
	snap := clinical.Snapshot{Vitals: clinical.Vitals{
		BloodPressure: &clinical.BloodPressure{Systolic: 300, Diastolic: 30},
		SpO2:          clinical.Float(50),
	}}
	_, err := Normalize(snap, bounds(), now)
	assert.NoError(t, err)
}

func TestNormalize_Malformed(t *testing.T) {
	_, err := Normalize(clinical.Snapshot{Vitals: clinical.Vitals{HeartRate: clinical.Float(math.NaN())}}, bounds(), now)
	assert.Equal(t, errors.ErrCodeMalformedInput, errors.GetCode(err))

	_, err = Normalize(clinical.Snapshot{BirthDate: date(2030, time.January, 1)}, bounds(), now)
	assert.Equal(t, errors.ErrCodeMalformedInput, errors.GetCode(err))
}

func TestNormalize_UnknownEnums(t *testing.T) {
	tests := []clinical.Snapshot{
		{Sex: "robot"},
		{Vitals: clinical.Vitals{Activity: "sleeping"}},
		{Vitals: clinical.Vitals{GlucoseTiming: "random"}},
	}
	for _, snap := range tests {
		_, err := Normalize(snap, bounds(), now)
		assert.Equal(t, errors.ErrCodeUnknownEnum, errors.GetCode(err))
		assert.True(t, errors.IsValidation(err))
	}
}

func TestNormalize_DerivesBMI(t *testing.T) {
	snap := clinical.Snapshot{Vitals: clinical.Vitals{
		WeightKg: clinical.Float(70),
		HeightCm: clinical.Float(175),
	}}
	p, err := Normalize(snap, bounds(), now)
	require.NoError(t, err)
	require.NotNil(t, p.Vitals.BMI)
	assert.Equal(t, 22.9, *p.Vitals.BMI)
	assert.True(t, p.BMIDerived)

	// The caller's snapshot is left alone.
	assert.Nil(t, snap.Vitals.BMI)
}

func TestNormalize_ExplicitBMIWins(t *testing.T) {
	snap := clinical.Snapshot{Vitals: clinical.Vitals{
		BMI:      clinical.Float(31),
		WeightKg: clinical.Float(70),
		HeightCm: clinical.Float(175),
	}}
	p, err := Normalize(snap, bounds(), now)
	require.NoError(t, err)
	assert.Equal(t, 31.0, *p.Vitals.BMI)
	assert.False(t, p.BMIDerived)
}

func TestNormalize_DerivedBMIOutOfRange(t *testing.T) {
	snap := clinical.Snapshot{Vitals: clinical.Vitals{
		WeightKg: clinical.Float(400),
		HeightCm: clinical.Float(150),
	}}
	_, err := Normalize(snap, bounds(), now)
	assert.Equal(t, errors.ErrCodeOutOfRange, errors.GetCode(err))
}

func TestAgeAt(t *testing.T) {
	assert.Equal(t, 17, AgeAt(*date(2006, time.June, 16), now))
	assert.Equal(t, 18, AgeAt(*date(2006, time.June, 15), now))
	assert.Equal(t, 18, AgeAt(*date(2006, time.January, 1), now))
	assert.Equal(t, 0, AgeAt(*date(2024, time.June, 1), now))
}

func TestRequireAdult(t *testing.T) {
	seventeen, eighteen := 17, 18

	err := RequireAdult(Patient{Age: &seventeen}, 18)
	require.Error(t, err)
	assert.True(t, errors.IsDomain(err))
	assert.Equal(t, errors.ErrCodeUnderage, errors.GetCode(err))

	assert.NoError(t, RequireAdult(Patient{Age: &eighteen}, 18))
	assert.NoError(t, RequireAdult(Patient{}, 18))
}
