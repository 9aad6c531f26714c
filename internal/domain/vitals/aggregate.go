package vitals

import (
	"github.com/turtacn/VitalGuard/internal/domain/scoring"
	"github.com/turtacn/VitalGuard/pkg/types/clinical"
)

// Aggregate is the weighted stability total and its bucket.
type Aggregate struct {
	Total    int
	Bucket   clinical.Bucket
	Critical bool
}

// Total returns round(Σ score_i × weight_i / 100) over the stability
// factors. A factor absent from the breakdown contributes nothing.
func Total(b clinical.Breakdown, w scoring.Weights) int {
	sum := 0
	for _, f := range clinical.StabilityFactors {
		if r, ok := b[f]; ok {
			sum += r.Score * w.For(f)
		}
	}
	return scoring.Clamp(scoring.Round(float64(sum)/100), 0, 100)
}

// Aggregated combines the breakdown into the total, its bucket and the
// critical flag. The flag is raised by any hard override in the breakdown
// or any raw-value alert, whatever the weighted total says.
func Aggregated(b clinical.Breakdown, alerts []clinical.Alert, s scoring.StabilityThresholds) Aggregate {
	total := Total(b, s.Weights)
	agg := Aggregate{
		Total:    total,
		Bucket:   s.Buckets.Lookup(float64(total)).Outcome,
		Critical: len(alerts) > 0,
	}
	for _, r := range b {
		if r.Critical {
			agg.Critical = true
		}
	}
	return agg
}
