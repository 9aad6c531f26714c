package assessment

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/VitalGuard/internal/domain/cvrisk"
	"github.com/turtacn/VitalGuard/internal/domain/patient"
	"github.com/turtacn/VitalGuard/internal/domain/scoring"
	prom "github.com/turtacn/VitalGuard/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/VitalGuard/internal/testutil"
	"github.com/turtacn/VitalGuard/pkg/errors"
	"github.com/turtacn/VitalGuard/pkg/types/clinical"
)

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func born(years int) *time.Time {
	t := fixedNow.AddDate(-years, 0, -1)
	return &t
}

func riskSnapshot() clinical.Snapshot {
	return clinical.Snapshot{
		BirthDate: born(55),
		Sex:       clinical.SexMale,
		Flags:     clinical.Flags{Smoker: clinical.Bool(true), Diabetic: true},
		Vitals: clinical.Vitals{
			BloodPressure: &clinical.BloodPressure{Systolic: 165, Diastolic: 95},
		},
		Labs: clinical.Labs{TotalCholesterol: clinical.Float(210)},
	}
}

func stableSnapshot() clinical.Snapshot {
	return clinical.Snapshot{
		Vitals: clinical.Vitals{
			BloodPressure: &clinical.BloodPressure{Systolic: 115, Diastolic: 75},
			HeartRate:     clinical.Float(72),
			Activity:      clinical.ActivityResting,
			Glucose:       clinical.Float(90),
			GlucoseTiming: clinical.TimingFasting,
			SpO2:          clinical.Float(98),
			BMI:           clinical.Float(22),
		},
	}
}

type staticSource struct {
	name   string
	values map[string]float64
	err    error
	mu     sync.Mutex
}

func (s *staticSource) Name() string { return s.name }

func (s *staticSource) Overrides(context.Context) (map[string]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make(map[string]float64, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out, nil
}

func (s *staticSource) set(values map[string]float64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values, s.err = values, err
}

type fixture struct {
	engine    *Engine
	logger    *testutil.MockLogger
	collector prom.MetricsCollector
}

func newFixture(t *testing.T, opts ...Option) fixture {
	t.Helper()
	logger := testutil.NewMockLogger()
	collector, err := prom.NewMetricsCollector(prom.CollectorConfig{Namespace: "vitalguard"}, logger)
	require.NoError(t, err)

	base := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithLogger(logger),
		WithMetrics(prom.NewEngineMetrics(collector)),
		WithMeta(cvrisk.Meta{Region: "SEAR-D", Country: "India", MethodologyVersion: "2019"}),
	}
	e, err := NewEngine(append(base, opts...)...)
	require.NoError(t, err)
	return fixture{engine: e, logger: logger, collector: collector}
}

func (f fixture) metrics(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engine.prom")
	require.NoError(t, f.collector.WriteTextfile(path))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestNewEngine_PublishesDefaults(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, uint64(1), f.engine.Revision())
	assert.Equal(t, scoring.DefaultThresholds(), f.engine.Thresholds())
}

func TestNewEngine_InvalidBase(t *testing.T) {
	_, err := NewEngine(WithBaseLoader(func() (*scoring.Thresholds, error) {
		th := scoring.DefaultThresholds()
		th.Stability.Weights.BMI = 11
		return th, nil
	}))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeWeightsSum, errors.GetCode(err))
}

func TestAssessRisk_EndToEnd(t *testing.T) {
	f := newFixture(t)
	r, err := f.engine.AssessRisk(context.Background(), riskSnapshot())
	require.NoError(t, err)

	assert.Equal(t, 21, r.Score)
	assert.Equal(t, clinical.RiskHigh, r.Category)
	assert.Equal(t, "India", r.Country)
	assert.Equal(t, fixedNow, r.CalculatedAt)
	assert.True(t, f.logger.HasMessage("debug", "risk assessed"))
	assert.Contains(t, f.metrics(t), `vitalguard_assessments_total{outcome="ok",path="risk"} 1`)
}

func TestAssessRisk_Underage(t *testing.T) {
	f := newFixture(t)
	snap := riskSnapshot()
	snap.BirthDate = born(17)

	r, err := f.engine.AssessRisk(context.Background(), snap)
	require.Error(t, err)
	assert.True(t, errors.IsDomain(err))
	assert.Equal(t, clinical.RiskResult{}, r)
	assert.Contains(t, f.metrics(t), `vitalguard_assessments_total{outcome="domain_error",path="risk"} 1`)
}

func TestAssessStability_ValidationError(t *testing.T) {
	f := newFixture(t)
	snap := stableSnapshot()
	snap.Vitals.SpO2 = clinical.Float(40)

	_, err := f.engine.AssessStability(context.Background(), snap)
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.Equal(t, errors.ErrCodeOutOfRange, errors.GetCode(err))
	assert.Contains(t, f.metrics(t), `outcome="validation_error",path="stability"`)
}

func TestAssessStability_CriticalAlertsLoggedAndCounted(t *testing.T) {
	f := newFixture(t)
	snap := stableSnapshot()
	snap.Vitals.SpO2 = clinical.Float(84)

	r, err := f.engine.AssessStability(context.Background(), snap)
	require.NoError(t, err)
	assert.True(t, r.Critical)
	require.Len(t, r.CriticalAlerts, 1)

	warns := f.logger.ByLevel("warn")
	require.Len(t, warns, 1)
	assert.Equal(t, "engine", warns[0].Logger)
	v, _ := warns[0].Field("type")
	assert.Equal(t, "severe_hypoxia", v)
	assert.Contains(t, f.metrics(t), `vitalguard_critical_alerts_total{type="severe_hypoxia"} 1`)
}

func TestAssess_RecoversPanic(t *testing.T) {
	f := newFixture(t)
	f.engine.stability = func(patient.Patient, *scoring.Thresholds, time.Time) clinical.StabilityResult {
		panic("table exhausted")
	}

	r, err := f.engine.AssessStability(context.Background(), stableSnapshot())
	require.Error(t, err)
	assert.Equal(t, errors.CodeInternal, errors.GetCode(err))
	assert.Contains(t, err.Error(), "table exhausted")
	assert.Equal(t, clinical.StabilityResult{}, r)
	assert.True(t, f.logger.HasMessage("error", "assessment panicked"))
	assert.Contains(t, f.metrics(t), `outcome="internal_error",path="stability"`)
}

func TestAssess_CancelledContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.engine.AssessRisk(ctx, riskSnapshot())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAssess_Idempotent(t *testing.T) {
	f := newFixture(t)
	a, err := f.engine.AssessStability(context.Background(), stableSnapshot())
	require.NoError(t, err)
	b, err := f.engine.AssessStability(context.Background(), stableSnapshot())
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, 100, a.Score)
}

func TestReload_AppliesSourcesInOrder(t *testing.T) {
	pg := &staticSource{name: "postgres", values: map[string]float64{
		"alerts.spo2_severe":        90,
		"alerts.glucose_severe_low": 60,
	}}
	rd := &staticSource{name: "redis", values: map[string]float64{
		"alerts.spo2_severe": 89,
	}}
	f := newFixture(t, WithOverrideSources(pg, rd))
	before := f.engine.Thresholds()

	require.NoError(t, f.engine.Reload(context.Background()))

	th := f.engine.Thresholds()
	assert.Equal(t, 89.0, th.Alerts.SpO2Severe)
	assert.Equal(t, 60.0, th.Alerts.GlucoseSevereLow)
	assert.Equal(t, uint64(2), f.engine.Revision())
	assert.Equal(t, 88.0, before.Alerts.SpO2Severe, "published snapshots are never mutated")
	assert.Contains(t, f.metrics(t), `vitalguard_active_threshold_version 2`)
}

func TestReload_InvalidOverlayKeepsPrevious(t *testing.T) {
	src := &staticSource{name: "redis", values: map[string]float64{"stability.weights.glucose": 40}}
	f := newFixture(t, WithOverrideSources(src))
	before := f.engine.Thresholds()

	err := f.engine.Reload(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeWeightsSum, errors.GetCode(err))
	assert.Same(t, before, f.engine.Thresholds())
	assert.Equal(t, uint64(1), f.engine.Revision())
	assert.True(t, f.logger.HasMessage("warn", "threshold overlay rejected, keeping previous snapshot"))
	assert.Contains(t, f.metrics(t), `vitalguard_threshold_reloads_total{result="rejected"} 1`)
}

func TestReload_UnknownKey(t *testing.T) {
	src := &staticSource{name: "redis", values: map[string]float64{"stability.weights.steps": 1}}
	f := newFixture(t, WithOverrideSources(src))

	err := f.engine.Reload(context.Background())
	assert.Equal(t, errors.ErrCodeUnknownOverrideKey, errors.GetCode(err))
}

func TestReload_SourceError(t *testing.T) {
	src := &staticSource{name: "postgres", err: fmt.Errorf("connection refused")}
	f := newFixture(t, WithOverrideSources(src))

	err := f.engine.Reload(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeServiceUnavailable, errors.GetCode(err))
	assert.Contains(t, err.Error(), "postgres")
	assert.Equal(t, uint64(1), f.engine.Revision())
}

func TestReload_InFlightKeepsSnapshot(t *testing.T) {
	src := &staticSource{name: "redis"}
	f := newFixture(t, WithOverrideSources(src))

	held := f.engine.Thresholds()
	src.set(map[string]float64{"alerts.crisis_systolic": 170}, nil)
	require.NoError(t, f.engine.Reload(context.Background()))

	assert.Equal(t, 180.0, held.Alerts.CrisisSystolic)
	assert.Equal(t, 170.0, f.engine.Thresholds().Alerts.CrisisSystolic)
}

func TestWatch_ReloadsUntilCancelled(t *testing.T) {
	src := &staticSource{name: "redis"}
	f := newFixture(t, WithOverrideSources(src))
	src.set(map[string]float64{"alerts.spo2_severe": 87}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.engine.Watch(ctx, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return f.engine.Thresholds().Alerts.SpO2Severe == 87
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestConcurrentAssessAndReload(t *testing.T) {
	src := &staticSource{name: "redis"}
	f := newFixture(t, WithOverrideSources(src))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			src.set(map[string]float64{"alerts.spo2_severe": float64(85 + i%5)}, nil)
			_ = f.engine.Reload(context.Background())
		}(i)
		go func() {
			defer wg.Done()
			r, err := f.engine.AssessRisk(context.Background(), riskSnapshot())
			assert.NoError(t, err)
			assert.Equal(t, 21, r.Score)
		}()
	}
	wg.Wait()
	assert.Equal(t, uint64(21), f.engine.Revision())
}
