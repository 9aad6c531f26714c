package vitals

import (
	"fmt"
	"sort"
	"strings"

	"github.com/turtacn/VitalGuard/internal/domain/scoring"
	"github.com/turtacn/VitalGuard/pkg/types/clinical"
)

type advice struct {
	priority clinical.Priority
	category string
	action   string
	timeline string
	steps    []string
}

var weakAreaAdvice = map[clinical.Factor]advice{
	clinical.FactorBloodPressure: {
		priority: clinical.PriorityHigh,
		category: "Blood Pressure",
		action:   "Your blood pressure needs attention",
		timeline: "Start today, review in 1 week",
		steps: []string{
			"Reduce salt intake (< 5g per day)",
			"Practice stress-reduction techniques",
			"Monitor BP 2x daily",
			"Consider doctor consultation if elevated for >1 week",
		},
	},
	clinical.FactorGlucose: {
		priority: clinical.PriorityHigh,
		category: "Blood Sugar",
		action:   "Your blood sugar control needs improvement",
		timeline: "Start today, review in 1 week",
		steps: []string{
			"Follow diabetes-friendly diet",
			"Check glucose before/after meals",
			"Increase physical activity gradually",
			"Review medications with doctor",
		},
	},
	clinical.FactorBMI: {
		priority: clinical.PriorityMedium,
		category: "Weight Management",
		action:   "Weight optimization recommended",
		timeline: "Ongoing",
		steps: []string{
			"Set realistic weight goal (lose 0.5-1 kg per week)",
			"Track daily food intake",
			"Aim for 150 minutes moderate exercise per week",
			"Consider nutritionist consultation",
		},
	},
	clinical.FactorHeartRate: {
		priority: clinical.PriorityMedium,
		category: "Heart Rate",
		action:   "Your heart rate needs attention",
		timeline: "Within 1 week",
		steps: []string{
			"Recheck after 10 minutes of seated rest",
			"Limit caffeine and stimulants",
			"Stay hydrated",
			"Consult a doctor if the rate stays abnormal or feels irregular",
		},
	},
	clinical.FactorSpO2: {
		priority: clinical.PriorityHigh,
		category: "Oxygen Saturation",
		action:   "Your oxygen saturation is below normal",
		timeline: "Today",
		steps: []string{
			"Recheck at rest with a warm hand",
			"Practice slow deep-breathing exercises",
			"Avoid strenuous activity until levels improve",
			"See a doctor today if readings stay below 92%",
		},
	},
}

var factorLabels = map[clinical.Factor]string{
	clinical.FactorBloodPressure: "blood pressure",
	clinical.FactorHeartRate:     "heart rate",
	clinical.FactorGlucose:       "glucose",
	clinical.FactorSpO2:          "SpO2",
	clinical.FactorBMI:           "BMI",
}

// Recommend derives the stability recommendations: an immediate-attention
// block when the total is critically low, targeted advice for each weak
// component (weakest first) and positive reinforcement for strong ones.
// Components without data are neither weak nor strong.
func Recommend(b clinical.Breakdown, total int, s scoring.StabilityThresholds) []clinical.Recommendation {
	recs := []clinical.Recommendation{}

	if total < s.CriticalBelow {
		recs = append(recs, clinical.Recommendation{
			Priority:  clinical.PriorityCritical,
			Category:  "Immediate Attention",
			Action:    "Your vital signs indicate significant health stress",
			Rationale: fmt.Sprintf("Overall stability score %d is below %d", total, s.CriticalBelow),
			Timeline:  "Today",
			Steps: []string{
				"Contact your doctor TODAY",
				"Do NOT start any new exercise programs",
				"Rest and monitor vitals every 4 hours",
				"Keep emergency contacts informed",
			},
		})
	}

	var weak, strong []clinical.Factor
	for _, f := range clinical.StabilityFactors {
		r, ok := b[f]
		if !ok || r.Status == "unknown" {
			continue
		}
		switch {
		case r.Score < s.WeakBelow:
			weak = append(weak, f)
		case r.Score >= s.StrongFrom:
			strong = append(strong, f)
		}
	}
	sort.SliceStable(weak, func(i, j int) bool {
		return b[weak[i]].Score < b[weak[j]].Score
	})

	for _, f := range weak {
		a := weakAreaAdvice[f]
		recs = append(recs, clinical.Recommendation{
			Priority:  a.priority,
			Category:  a.category,
			Action:    a.action,
			Rationale: b[f].Message,
			Timeline:  a.timeline,
			Steps:     append([]string(nil), a.steps...),
		})
	}

	if len(strong) > 0 {
		labels := make([]string, len(strong))
		for i, f := range strong {
			labels[i] = factorLabels[f]
		}
		verb := "is"
		if len(labels) > 1 {
			verb = "are"
		}
		praise := fmt.Sprintf("Your %s %s excellent", strings.Join(labels, ", "), verb)
		recs = append(recs, clinical.Recommendation{
			Priority:  clinical.PriorityLow,
			Category:  "Positive",
			Action:    "Keep up the good work!",
			Rationale: praise,
			Timeline:  "Ongoing",
			Steps: []string{
				praise,
				"Continue current lifestyle habits",
				"Maintain regular monitoring",
			},
		})
	}

	return recs
}
