package cvrisk

import (
	"fmt"

	"github.com/turtacn/VitalGuard/internal/domain/scoring"
	"github.com/turtacn/VitalGuard/pkg/types/clinical"
)

// tally is the fold of every factor outcome.
type tally struct {
	breakdown clinical.Breakdown
	points    int
	penalty   int
	gaps      []string
	warnings  []string
}

func fold(outcomes []factorOutcome) tally {
	t := tally{
		breakdown: clinical.Breakdown{},
		gaps:      []string{},
		warnings:  []string{},
	}
	for _, o := range outcomes {
		if o.result != nil {
			t.breakdown[o.factor] = *o.result
		}
		if o.gap != "" {
			t.gaps = append(t.gaps, o.gap)
		}
		t.points += o.points()
		t.penalty += o.penalty
		t.warnings = append(t.warnings, o.warnings...)
	}
	return t
}

// Aggregate is the point total and the breakpoint it falls into.
type Aggregate struct {
	Score int
	Band  scoring.RiskBand
}

func aggregate(t tally, r scoring.RiskThresholds) Aggregate {
	score := scoring.Clamp(t.points, 0, r.MaxScore)
	return Aggregate{
		Score: score,
		Band:  r.Breakpoints.Lookup(float64(score)).Outcome,
	}
}

// confidence starts at 100 and loses the fixed penalty of every data gap.
func confidence(t tally, th *scoring.Thresholds) clinical.Confidence {
	score := scoring.Clamp(100-t.penalty, 0, 100)
	level := th.LevelFor(float64(score))

	msg := "High confidence in assessment"
	if len(t.gaps) > 0 {
		msg = fmt.Sprintf("Missing data affects accuracy - %d data gap(s) recorded", len(t.gaps))
	}
	return clinical.Confidence{Score: score, Level: level, Message: msg}
}
