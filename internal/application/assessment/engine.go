// Package assessment is the application entry point for both scoring paths.
// It owns the published threshold snapshot, normalizes snapshots, runs the
// domain calculators and turns every internal panic into a typed error.
package assessment

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/turtacn/VitalGuard/internal/domain/cvrisk"
	"github.com/turtacn/VitalGuard/internal/domain/patient"
	"github.com/turtacn/VitalGuard/internal/domain/scoring"
	"github.com/turtacn/VitalGuard/internal/domain/vitals"
	"github.com/turtacn/VitalGuard/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/VitalGuard/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/VitalGuard/pkg/errors"
	"github.com/turtacn/VitalGuard/pkg/types/clinical"
)

// DefaultBatchConcurrency bounds AssessBatch when no limit is given.
const DefaultBatchConcurrency = 8

// OverrideSource supplies operator threshold overrides keyed by override
// path (see scoring.Thresholds.OverrideKeys).
type OverrideSource interface {
	Name() string
	Overrides(ctx context.Context) (map[string]float64, error)
}

// BaseLoader builds the snapshot that overrides are applied on top of.
type BaseLoader func() (*scoring.Thresholds, error)

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the time source stamped on results and used for age and
// freshness.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithMetrics(m *prom.EngineMetrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithMeta sets the region metadata stamped on risk results.
func WithMeta(m cvrisk.Meta) Option {
	return func(e *Engine) { e.meta = m }
}

func WithBaseLoader(b BaseLoader) Option {
	return func(e *Engine) {
		if b != nil {
			e.base = b
		}
	}
}

// WithOverrideSources sets the sources consulted by Reload. Later sources
// win on conflicting keys.
func WithOverrideSources(sources ...OverrideSource) Option {
	return func(e *Engine) { e.sources = append(e.sources, sources...) }
}

func WithBatchConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// Engine scores patient snapshots against the currently published threshold
// snapshot. It is safe for concurrent use.
type Engine struct {
	thresholds atomic.Pointer[scoring.Thresholds]
	revision   atomic.Uint64
	reloadMu   sync.Mutex

	now         func() time.Time
	logger      logging.Logger
	metrics     *prom.EngineMetrics
	meta        cvrisk.Meta
	base        BaseLoader
	sources     []OverrideSource
	concurrency int

	stability func(patient.Patient, *scoring.Thresholds, time.Time) clinical.StabilityResult
	risk      func(patient.Patient, *scoring.Thresholds, cvrisk.Meta, time.Time) (clinical.RiskResult, error)
}

// NewEngine builds an Engine and publishes the base snapshot. Override
// sources are not consulted until the first Reload.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		now:         time.Now,
		logger:      logging.NewNopLogger(),
		base:        func() (*scoring.Thresholds, error) { return scoring.DefaultThresholds(), nil },
		concurrency: DefaultBatchConcurrency,
		stability:   vitals.Assess,
		risk:        cvrisk.Assess,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.Named("engine")

	base, err := e.base()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnknown, "load base thresholds")
	}
	if err := base.Validate(); err != nil {
		return nil, err
	}
	e.publish(base)
	return e, nil
}

func (e *Engine) publish(t *scoring.Thresholds) uint64 {
	e.thresholds.Store(t)
	return e.revision.Add(1)
}

// Thresholds returns the published snapshot. It is shared and must not be
// mutated; Clone it first.
func (e *Engine) Thresholds() *scoring.Thresholds {
	return e.thresholds.Load()
}

// Revision counts published snapshots, starting at 1.
func (e *Engine) Revision() uint64 {
	return e.revision.Load()
}

// AssessStability validates snap and computes its vital stability score.
func (e *Engine) AssessStability(ctx context.Context, snap clinical.Snapshot) (clinical.StabilityResult, error) {
	return guarded(e, ctx, prom.PathStability, func(t *scoring.Thresholds, now time.Time) (clinical.StabilityResult, error) {
		p, err := patient.Normalize(snap, t.Bounds, now)
		if err != nil {
			return clinical.StabilityResult{}, err
		}
		r := e.stability(p, t, now)

		types := make([]string, 0, len(r.CriticalAlerts))
		for _, a := range r.CriticalAlerts {
			types = append(types, a.Type)
			e.logger.Warn("critical alert",
				logging.String("type", a.Type),
				logging.String("vital", a.Vital),
				logging.String("value", a.Value))
		}
		prom.RecordStabilityScore(e.metrics, r.Score, types)
		e.logger.Debug("stability assessed",
			logging.Int("score", r.Score),
			logging.String("status", r.Status.Level),
			logging.Bool("critical", r.Critical))
		return r, nil
	})
}

// AssessRisk validates snap and computes its WHO/ISH cardiovascular risk.
// Patients younger than the adult minimum yield a DOM_001 error.
func (e *Engine) AssessRisk(ctx context.Context, snap clinical.Snapshot) (clinical.RiskResult, error) {
	return guarded(e, ctx, prom.PathRisk, func(t *scoring.Thresholds, now time.Time) (clinical.RiskResult, error) {
		p, err := patient.Normalize(snap, t.Bounds, now)
		if err != nil {
			return clinical.RiskResult{}, err
		}
		r, err := e.risk(p, t, e.meta, now)
		if err != nil {
			return clinical.RiskResult{}, err
		}
		prom.RecordRiskScore(e.metrics, r.Score)
		e.logger.Debug("risk assessed",
			logging.Int("score", r.Score),
			logging.String("category", string(r.Category)),
			logging.Int("confidence", r.Confidence.Score))
		return r, nil
	})
}

// guarded loads the snapshot once, runs fn and converts a panic into
// COMMON_001. The caller gets a complete result or an error, never both.
func guarded[R any](e *Engine, ctx context.Context, path string, fn func(*scoring.Thresholds, time.Time) (R, error)) (res R, err error) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			var zero R
			res = zero
			err = errors.Internal(fmt.Sprintf("%s assessment failed", path)).
				WithDetail(fmt.Sprint(rec))
			e.logger.Error("assessment panicked",
				logging.String("path", path),
				logging.Any("panic", rec))
		}
		prom.RecordAssessment(e.metrics, path, outcome(err), time.Since(start))
	}()

	if err := ctx.Err(); err != nil {
		var zero R
		return zero, errors.Wrap(err, errors.ErrCodeTimeout, "assessment cancelled")
	}
	return fn(e.thresholds.Load(), e.now())
}

func outcome(err error) string {
	switch {
	case err == nil:
		return prom.OutcomeOK
	case errors.IsValidation(err):
		return prom.OutcomeValidation
	case errors.IsDomain(err):
		return prom.OutcomeDomain
	default:
		return prom.OutcomeInternal
	}
}
