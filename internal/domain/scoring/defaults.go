package scoring

import "github.com/turtacn/VitalGuard/pkg/types/clinical"

// DefaultThresholds returns the clinical defaults: WHO-derived stability
// ladders with Asian BMI cutoffs and the WHO/ISH SEAR-D risk chart points.
// Every call returns a fresh, independent snapshot.
func DefaultThresholds() *Thresholds {
	return &Thresholds{
		Stability:        defaultStability(),
		Alerts:           defaultAlerts(),
		Risk:             defaultRisk(),
		Bounds:           defaultBounds(),
		ConfidenceLevels: defaultConfidenceLevels(),
	}
}

func defaultStability() StabilityThresholds {
	return StabilityThresholds{
		Weights: Weights{
			BloodPressure: 30,
			HeartRate:     20,
			Glucose:       25,
			SpO2:          15,
			BMI:           10,
		},
		MissingScore: 50,

		BloodPressure: BloodPressureTables{
			Systolic:             bpTiers(120, 130, 140, 160, 180),
			Diastolic:            bpTiers(80, 85, 90, 100, 110),
			HypotensionSystolic:  90,
			HypotensionDiastolic: 60,
			Hypotension: Grade{
				Score:    30,
				Status:   "critical",
				Message:  "Hypotension - Low blood pressure detected",
				Action:   clinical.ActionUrgent,
				Critical: true,
			},
		},

		HeartRate: HeartRateTables{
			Overrides: RangeTable[Grade]{
				{Name: "severe_bradycardia", Upper: 45, Outcome: Grade{
					Score: 30, Status: "critical", Message: "Severe bradycardia - Medical evaluation required",
					Action: clinical.ActionUrgent, Critical: true,
				}},
				{Name: "contextual", Upper: 150, Inclusive: true, Outcome: Grade{Defer: true}},
				{Name: "severe_tachycardia", Outcome: severeTachycardia},
			},
			AthleteOverrides: RangeTable[Grade]{
				{Name: "contextual", Upper: 150, Inclusive: true, Outcome: Grade{Defer: true}},
				{Name: "severe_tachycardia", Outcome: severeTachycardia},
			},
			Resting: RangeTable[Grade]{
				{Name: "low", Upper: 60, Outcome: Grade{Score: 70, Status: "fair", Message: "Low heart rate - Monitor for symptoms"}},
				{Name: "normal", Upper: 100, Inclusive: true, Outcome: Grade{Score: 100, Status: "normal", Message: "Normal resting heart rate"}},
				{Name: "elevated", Outcome: Grade{Score: 60, Status: "fair", Message: "Elevated resting heart rate"}},
			},
			RestingAthlete: RangeTable[Grade]{
				{Name: "athletic", Upper: 60, Outcome: Grade{Score: 100, Status: "excellent", Message: "Athletic heart rate"}},
				{Name: "normal", Upper: 100, Inclusive: true, Outcome: Grade{Score: 100, Status: "normal", Message: "Normal resting heart rate"}},
				{Name: "elevated", Outcome: Grade{Score: 60, Status: "fair", Message: "Elevated resting heart rate"}},
			},
			PostExercise: RangeTable[Grade]{
				{Name: "recovering", Upper: 120, Inclusive: true, Outcome: Grade{Score: 100, Status: "normal", Message: "Heart rate recovering well after exercise"}},
				{Name: "elevated", Outcome: Grade{Score: 80, Status: "normal", Message: "Normal post-exercise heart rate"}},
			},
			Unspecified: RangeTable[Grade]{
				{Name: "in_range", Outcome: Grade{Score: 100, Status: "normal", Message: "Heart rate within safe range"}},
			},
		},

		Glucose: GlucoseTables{
			Overrides: RangeTable[Grade]{
				{Name: "severe_hypoglycemia", Upper: 54, Outcome: Grade{
					Score: 0, Status: "critical", Message: "SEVERE HYPOGLYCEMIA - Emergency glucose needed",
					Action: clinical.ActionEmergency, Critical: true,
				}},
				{Name: "hypoglycemia", Upper: 70, Outcome: Grade{
					Score: 30, Status: "critical", Message: "Hypoglycemia - Consume fast-acting carbs immediately",
					Action: clinical.ActionImmediate,
				}},
				{Name: "contextual", Upper: 250, Inclusive: true, Outcome: Grade{Defer: true}},
				{Name: "hyperglycemia", Upper: 400, Inclusive: true, Outcome: Grade{
					Score: 40, Status: "poor", Message: "High blood sugar - Contact doctor today",
					Action: clinical.ActionUrgent,
				}},
				{Name: "severe_hyperglycemia", Outcome: Grade{
					Score: 10, Status: "critical", Message: "SEVERE HYPERGLYCEMIA - Medical attention required NOW",
					Action: clinical.ActionEmergency, Critical: true,
				}},
			},
			Fasting: RangeTable[Grade]{
				{Name: "normal", Upper: 100, Outcome: Grade{Score: 100, Status: "normal", Message: "Normal fasting glucose"}},
				{Name: "pre_diabetes", Upper: 125, Inclusive: true, Outcome: Grade{Score: 70, Status: "fair", Message: "Pre-diabetes range - Prevention program recommended"}},
				{Name: "diabetes", Outcome: Grade{Score: 50, Status: "poor", Message: "Diabetes range - Doctor consultation needed"}},
			},
			PostMeal: RangeTable[Grade]{
				{Name: "normal", Upper: 140, Outcome: Grade{Score: 100, Status: "normal", Message: "Normal post-meal glucose"}},
				{Name: "elevated", Upper: 199, Inclusive: true, Outcome: Grade{Score: 70, Status: "fair", Message: "Elevated post-meal glucose"}},
				{Name: "high", Outcome: Grade{Score: 50, Status: "poor", Message: "High post-meal glucose - Medical evaluation needed"}},
			},
			Unspecified: RangeTable[Grade]{
				{Name: "in_range", Outcome: Grade{Score: 100, Status: "normal", Message: "Glucose within safe range"}},
			},
			DiabeticFastingTarget: 130,
			DiabeticFloor:         80,
			DiabeticSuffix:        " (Good control for diabetes)",
		},

		SpO2: RangeTable[Grade]{
			{Name: "severe", Upper: 85, Outcome: Grade{
				Score: 0, Status: "critical", Message: "SEVERE HYPOXIA - Call emergency services NOW",
				Action: clinical.ActionEmergency, Critical: true,
			}},
			{Name: "critical", Upper: 88, Outcome: Grade{
				Score: 20, Status: "critical", Message: "Critical oxygen level - Hospital oxygen needed",
				Action: clinical.ActionEmergency, Critical: true,
			}},
			{Name: "concern", Upper: 92, Outcome: Grade{Score: 50, Status: "poor", Message: "Low oxygen saturation - Doctor evaluation today"}},
			{Name: "below_normal", Upper: 95, Outcome: Grade{Score: 75, Status: "fair", Message: "Oxygen slightly low - Monitor closely"}},
			{Name: "normal", Outcome: Grade{Score: 100, Status: "normal", Message: "Normal oxygen saturation"}},
		},

		BMI: RangeTable[Grade]{
			{Name: "severe_underweight", Upper: 16, Outcome: Grade{Score: 40, Status: "poor", Message: "Severely underweight - Nutritional support needed"}},
			{Name: "underweight", Upper: 18.5, Outcome: Grade{Score: 70, Status: "fair", Message: "Underweight - Consider weight gain program"}},
			{Name: "normal", Upper: 24.9, Inclusive: true, Outcome: Grade{Score: 100, Status: "normal", Message: "Healthy weight"}},
			{Name: "overweight", Upper: 27.4, Inclusive: true, Outcome: Grade{Score: 80, Status: "good", Message: "Slightly overweight - Weight management beneficial"}},
			{Name: "pre_obese", Upper: 30, Outcome: Grade{Score: 60, Status: "fair", Message: "Overweight - Weight loss recommended"}},
			{Name: "obese", Outcome: Grade{Score: 40, Status: "poor", Message: "Obese - Medical weight management program needed"}},
		},

		Buckets: RangeTable[clinical.Bucket]{
			{Name: "poor", Upper: 55, Outcome: clinical.Bucket{Level: "poor", Color: "red", Label: "Poor"}},
			{Name: "fair", Upper: 70, Outcome: clinical.Bucket{Level: "fair", Color: "yellow", Label: "Fair"}},
			{Name: "good", Upper: 85, Outcome: clinical.Bucket{Level: "good", Color: "blue", Label: "Good"}},
			{Name: "excellent", Outcome: clinical.Bucket{Level: "excellent", Color: "green", Label: "Excellent"}},
		},

		CriticalBelow: 55,
		WeakBelow:     70,
		StrongFrom:    85,

		Freshness: RangeTable[Freshness]{
			{Name: "recent", Upper: 24, Inclusive: true, Outcome: Freshness{Score: 100}},
			{Name: "day_old", Upper: 48, Inclusive: true, Outcome: Freshness{Score: 75}},
			{Name: "stale", Outcome: Freshness{Score: 50}},
		},
		CompletenessWeight: 0.7,
		FreshnessWeight:    0.3,
	}
}

var severeTachycardia = Grade{
	Score:    20,
	Status:   "critical",
	Message:  "Severe tachycardia - Immediate attention needed",
	Action:   clinical.ActionEmergency,
	Critical: true,
}

// bpTiers builds one side of the stability blood-pressure ladder. Both sides
// share names and outcomes; only the bounds differ.
func bpTiers(optimal, normal, highNormal, stage1, stage2 float64) RangeTable[Grade] {
	return RangeTable[Grade]{
		{Name: "optimal", Upper: optimal, Outcome: Grade{Score: 100, Status: "excellent", Message: "Optimal blood pressure"}},
		{Name: "normal", Upper: normal, Outcome: Grade{Score: 85, Status: "good", Message: "Normal blood pressure"}},
		{Name: "high_normal", Upper: highNormal, Outcome: Grade{Score: 75, Status: "good", Message: "High Normal - Monitor regularly"}},
		{Name: "stage1", Upper: stage1, Outcome: Grade{Score: 60, Status: "fair", Message: "Grade 1 Hypertension - Lifestyle changes needed"}},
		{Name: "stage2", Upper: stage2, Outcome: Grade{Score: 40, Status: "poor", Message: "Grade 2 Hypertension - Doctor consultation required"}},
		{Name: "crisis", Outcome: Grade{
			Score: 0, Status: "critical", Message: "HYPERTENSIVE CRISIS - Immediate medical attention required",
			Action: clinical.ActionEmergency, Critical: true,
		}},
	}
}

func defaultAlerts() AlertThresholds {
	return AlertThresholds{
		CrisisSystolic:    180,
		CrisisDiastolic:   110,
		GlucoseSevereLow:  54,
		GlucoseSevereHigh: 400,
		SpO2Severe:        88,
	}
}

func defaultRisk() RiskThresholds {
	return RiskThresholds{
		MinAdultAge: 18,
		MaxScore:    30,

		Age: RangeTable[Points]{
			{Name: "under_40", Upper: 40, Outcome: Points{
				Points: 0, Category: "<40 years", Note: "WHO risk assessment is most accurate for ages 40+",
				Warning: "WHO risk charts are optimized for ages 40-70. Younger patients may have underestimated risk with strong family history.",
			}},
			{Name: "forties", Upper: 50, Outcome: Points{Points: 3, Category: "40-49 years", Note: "Moderate age-related risk"}},
			{Name: "fifties", Upper: 60, Outcome: Points{Points: 6, Category: "50-59 years", Note: "Increased age-related risk"}},
			{Name: "sixties", Upper: 70, Outcome: Points{Points: 10, Category: "60-69 years", Note: "High age-related risk"}},
			{Name: "seventy_plus", Outcome: Points{
				Points: 10, Category: "≥70 years", Note: "Very high age-related risk",
				Warning: "For patients 70+, clinical judgment is essential. Comprehensive geriatric assessment recommended.",
			}},
		},

		Flags: FlagPoints{
			Male:     2,
			Female:   0,
			Smoker:   3,
			Diabetes: 4,
		},

		BloodPressureSystolic:  riskBPTiers(120, 140, 160, 180),
		BloodPressureDiastolic: riskBPTiers(80, 90, 100, 120),

		Cholesterol: RangeTable[Points]{
			{Name: "desirable", Upper: 200, Outcome: Points{Points: 0, Category: "Desirable", Note: "Optimal cholesterol level"}},
			{Name: "borderline", Upper: 240, Outcome: Points{
				Points: 2, Category: "Borderline High", Note: "Dietary modifications advised",
				Warning: "Borderline high cholesterol. Dietary changes can lower by 10-20%. Repeat test in 6 months.",
			}},
			{Name: "high", Outcome: Points{
				Points: 4, Category: "High", Note: "Medical consultation for statin therapy",
				Warning: "High cholesterol. Doctor consultation essential. Statin therapy may be required. Target LDL <100 mg/dL.",
			}},
		},

		LowHDL:            40,
		PreDiabetesLow:    100,
		PreDiabetesHigh:   126,
		PostMenopausalAge: 50,
		ScreeningAge:      50,

		Penalties: Penalties{
			Age:           20,
			Sex:           10,
			Smoking:       15,
			BloodPressure: 25,
			Cholesterol:   20,
		},

		Breakpoints: RangeTable[RiskBand]{
			{Name: "low", Upper: 9, Inclusive: true, Outcome: RiskBand{
				Category: clinical.RiskLow, TenYearRisk: "<10%", Color: "green", Urgency: clinical.UrgencyRoutine,
			}},
			{Name: "moderate", Upper: 19, Inclusive: true, Outcome: RiskBand{
				Category: clinical.RiskModerate, TenYearRisk: "10% to <20%", Color: "yellow", Urgency: clinical.UrgencyElevated,
			}},
			{Name: "high", Upper: 29, Inclusive: true, Outcome: RiskBand{
				Category: clinical.RiskHigh, TenYearRisk: "20% to <30%", Color: "orange", Urgency: clinical.UrgencyConcerning,
			}},
			{Name: "very_high", Outcome: RiskBand{
				Category: clinical.RiskVeryHigh, TenYearRisk: "≥30%", Color: "red", Urgency: clinical.UrgencyCritical,
			}},
		},
	}
}

// riskBPTiers builds one side of the risk-chart blood-pressure ladder.
func riskBPTiers(optimal, elevated, stage1, stage2 float64) RangeTable[Points] {
	return RangeTable[Points]{
		{Name: "optimal", Upper: optimal, Outcome: Points{Points: 0, Category: "Normal", Note: "Excellent - maintain healthy lifestyle"}},
		{Name: "elevated", Upper: elevated, Outcome: Points{
			Points: 0, Category: "Elevated/Pre-Hypertension", Note: "Borderline - lifestyle modifications recommended",
			Warning: "Pre-hypertension detected. High risk of progression to hypertension. Lifestyle changes can prevent 50% of cases.",
		}},
		{Name: "stage1", Upper: stage1, Outcome: Points{
			Points: 2, Category: "Hypertension Stage 1", Note: "Medical consultation recommended",
			Warning: "Stage 1 Hypertension. Doctor consultation within 1 month. May require antihypertensive medication.",
		}},
		{Name: "stage2", Upper: stage2, Outcome: Points{
			Points: 4, Category: "Hypertension Stage 2", Note: "Medical attention required",
			Warning: "Stage 2 Hypertension. Urgent doctor consultation required. Antihypertensive medication essential.",
		}},
		{Name: "crisis", Outcome: Points{
			Points: 6, Category: "Hypertensive Crisis", Note: "EMERGENCY - Immediate medical attention required",
			Warning:  "HYPERTENSIVE CRISIS - MEDICAL EMERGENCY. Risk of stroke, heart attack, organ damage. Go to emergency room or call ambulance IMMEDIATELY.",
			Critical: true,
		}},
	}
}

func defaultBounds() ValidationBounds {
	return ValidationBounds{
		Systolic:         Bounds{Min: 50, Max: 300},
		Diastolic:        Bounds{Min: 30, Max: 200},
		HeartRate:        Bounds{Min: 30, Max: 250},
		Glucose:          Bounds{Min: 20, Max: 700},
		SpO2:             Bounds{Min: 50, Max: 100},
		BMI:              Bounds{Min: 10, Max: 80},
		WeightKg:         Bounds{Min: 2, Max: 500},
		HeightCm:         Bounds{Min: 40, Max: 272},
		TotalCholesterol: Bounds{Min: 50, Max: 600},
		HDL:              Bounds{Min: 5, Max: 200},
		MaxAgeYears:      130,
	}
}

func defaultConfidenceLevels() RangeTable[Level] {
	return RangeTable[Level]{
		{Name: "low", Upper: 60, Outcome: Level{Level: "low"}},
		{Name: "medium", Upper: 80, Outcome: Level{Level: "medium"}},
		{Name: "high", Outcome: Level{Level: "high"}},
	}
}
