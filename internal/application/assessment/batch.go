package assessment

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/turtacn/VitalGuard/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/VitalGuard/pkg/errors"
	"github.com/turtacn/VitalGuard/pkg/types/clinical"
)

// Kind selects the scoring path of a batch request.
type Kind string

const (
	KindStability Kind = "stability"
	KindRisk      Kind = "risk"
)

// Request is one item of a batch.
type Request struct {
	ID       string            `json:"id,omitempty" yaml:"id,omitempty"`
	Kind     Kind              `json:"kind" yaml:"kind"`
	Snapshot clinical.Snapshot `json:"snapshot" yaml:"snapshot"`
}

// Result is the outcome of one batch item. Exactly one of Stability, Risk
// or Err is set.
type Result struct {
	ID        string                    `json:"id,omitempty"`
	Kind      Kind                      `json:"kind"`
	Stability *clinical.StabilityResult `json:"stability,omitempty"`
	Risk      *clinical.RiskResult      `json:"risk,omitempty"`
	Err       error                     `json:"-"`
}

// AssessBatch scores requests with at most concurrency in flight (the engine
// default when concurrency <= 0). Results keep the input order; a failing
// item records its error and does not stop the others. The returned error is
// non-nil only when ctx ends before every item ran.
func (e *Engine) AssessBatch(ctx context.Context, requests []Request, concurrency int) ([]Result, error) {
	if concurrency <= 0 {
		concurrency = e.concurrency
	}
	runID := uuid.NewString()
	log := e.logger.With(logging.String("run_id", runID))

	results := make([]Result, len(requests))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i := range requests {
		i, req := i, requests[i]
		g.Go(func() error {
			results[i] = e.assessOne(gctx, req)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	log.Info("batch assessed",
		logging.Int("items", len(requests)),
		logging.Int("failed", failed),
		logging.Int("concurrency", concurrency))

	if err := ctx.Err(); err != nil {
		return results, errors.Wrap(err, errors.ErrCodeTimeout, "batch interrupted")
	}
	return results, nil
}

func (e *Engine) assessOne(ctx context.Context, req Request) Result {
	res := Result{ID: req.ID, Kind: req.Kind}
	switch req.Kind {
	case KindStability:
		r, err := e.AssessStability(ctx, req.Snapshot)
		if err != nil {
			res.Err = err
			return res
		}
		res.Stability = &r
	case KindRisk:
		r, err := e.AssessRisk(ctx, req.Snapshot)
		if err != nil {
			res.Err = err
			return res
		}
		res.Risk = &r
	default:
		res.Err = errors.New(errors.ErrCodeUnsupportedAssessment, "unsupported assessment kind").
			WithDetail(string(req.Kind))
	}
	return res
}
