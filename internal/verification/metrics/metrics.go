package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the verification module: scored record
// counts by tier, degraded scores, batch row outcomes, and scoring latency.
type Metrics struct {
	VerificationsTotal *prometheus.CounterVec
	DegradedScores     prometheus.Counter
	BatchRows          *prometheus.CounterVec
	ScoreDuration      prometheus.Histogram
}

// New creates a new Metrics instance with all verification metrics registered.
func New() *Metrics {
	return &Metrics{
		VerificationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "kycgate_verifications_total",
			Help: "Total scored verification records by risk level",
		}, []string{"risk_level"}),
		DegradedScores: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kycgate_degraded_scores_total",
			Help: "Scores resolved through the fallback path instead of the classifier",
		}),
		BatchRows: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "kycgate_batch_rows_total",
			Help: "Batch rows processed by outcome",
		}, []string{"outcome"}),
		ScoreDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "kycgate_score_duration_seconds",
			Help:    "Duration of the single-record scoring pipeline",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// ObserveVerification records one completed verification.
func (m *Metrics) ObserveVerification(riskLevel string, degraded bool, start time.Time) {
	m.VerificationsTotal.WithLabelValues(riskLevel).Inc()
	if degraded {
		m.DegradedScores.Inc()
	}
	m.ScoreDuration.Observe(time.Since(start).Seconds())
}

// ObserveBatchRow records one batch row outcome ("success" or "failed").
func (m *Metrics) ObserveBatchRow(outcome string) {
	m.BatchRows.WithLabelValues(outcome).Inc()
}
