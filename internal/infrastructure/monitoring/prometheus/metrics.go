package prometheus

import (
	"time"
)

// Assessment paths and outcomes used as label values.
const (
	PathStability = "stability"
	PathRisk      = "risk"

	OutcomeOK         = "ok"
	OutcomeValidation = "validation_error"
	OutcomeDomain     = "domain_error"
	OutcomeInternal   = "internal_error"

	ReloadApplied  = "applied"
	ReloadRejected = "rejected"
	ReloadFailed   = "source_error"
)

// EngineMetrics holds the assessment engine's metrics.
type EngineMetrics struct {
	AssessmentsTotal       CounterVec
	AssessmentDuration     HistogramVec
	StabilityScore         HistogramVec
	RiskScore              HistogramVec
	CriticalAlertsTotal    CounterVec
	ThresholdReloadsTotal  CounterVec
	ActiveThresholdVersion GaugeVec
}

var (
	// DefaultAssessmentDurationBuckets spans pure in-memory scoring times.
	DefaultAssessmentDurationBuckets = []float64{.00001, .000025, .00005, .0001, .00025, .0005, .001, .005, .01}
	StabilityScoreBuckets            = []float64{10, 20, 30, 40, 55, 70, 85, 100}
	RiskScoreBuckets                 = []float64{3, 6, 9, 12, 15, 19, 24, 29, 30}
)

// NewEngineMetrics registers all engine metrics on collector.
func NewEngineMetrics(collector MetricsCollector) *EngineMetrics {
	return &EngineMetrics{
		AssessmentsTotal:       collector.RegisterCounter("assessments_total", "Assessments by path and outcome", "path", "outcome"),
		AssessmentDuration:     collector.RegisterHistogram("assessment_duration_seconds", "Assessment duration", DefaultAssessmentDurationBuckets, "path"),
		StabilityScore:         collector.RegisterHistogram("stability_score", "Distribution of vital stability scores", StabilityScoreBuckets),
		RiskScore:              collector.RegisterHistogram("risk_score", "Distribution of cardiovascular risk points", RiskScoreBuckets),
		CriticalAlertsTotal:    collector.RegisterCounter("critical_alerts_total", "Critical alerts raised", "type"),
		ThresholdReloadsTotal:  collector.RegisterCounter("threshold_reloads_total", "Threshold snapshot reloads", "result"),
		ActiveThresholdVersion: collector.RegisterGauge("active_threshold_version", "Revision of the published threshold snapshot"),
	}
}

// RecordAssessment records one finished assessment. Nil metrics are ignored.
func RecordAssessment(m *EngineMetrics, path, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.AssessmentsTotal.WithLabelValues(path, outcome).Inc()
	m.AssessmentDuration.WithLabelValues(path).Observe(duration.Seconds())
}

func RecordStabilityScore(m *EngineMetrics, score int, alertTypes []string) {
	if m == nil {
		return
	}
	m.StabilityScore.WithLabelValues().Observe(float64(score))
	for _, typ := range alertTypes {
		m.CriticalAlertsTotal.WithLabelValues(typ).Inc()
	}
}

func RecordRiskScore(m *EngineMetrics, score int) {
	if m == nil {
		return
	}
	m.RiskScore.WithLabelValues().Observe(float64(score))
}

// RecordReload counts a reload attempt and, when applied, publishes the new
// revision.
func RecordReload(m *EngineMetrics, result string, revision uint64) {
	if m == nil {
		return
	}
	m.ThresholdReloadsTotal.WithLabelValues(result).Inc()
	if result == ReloadApplied {
		m.ActiveThresholdVersion.WithLabelValues().Set(float64(revision))
	}
}
