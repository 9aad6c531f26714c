package scoring

import "github.com/turtacn/VitalGuard/pkg/types/clinical"

// Stages is the assessment pipeline shared by both paths:
// score → aggregate → confidence → recommend → build.
//
// I is the normalized input, B the per-factor breakdown, A the aggregate and
// R the final result. Each stage is a pure function; the pipeline only fixes
// their order and what each one can see.
type Stages[I, B, A, R any] struct {
	Score      func(in I) B
	Aggregate  func(in I, b B) A
	Confidence func(in I, b B) clinical.Confidence
	Recommend  func(in I, b B, a A) []clinical.Recommendation
	Build      func(in I, b B, a A, c clinical.Confidence, recs []clinical.Recommendation) R
}

// Run executes the stages in order.
func (s Stages[I, B, A, R]) Run(in I) R {
	b := s.Score(in)
	a := s.Aggregate(in, b)
	c := s.Confidence(in, b)
	recs := s.Recommend(in, b, a)
	if recs == nil {
		recs = []clinical.Recommendation{}
	}
	return s.Build(in, b, a, c, recs)
}

// LevelFor labels a confidence value with the snapshot's level table.
func (t *Thresholds) LevelFor(confidence float64) string {
	return t.ConfidenceLevels.Lookup(confidence).Outcome.Level
}
