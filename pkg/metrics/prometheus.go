package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	scansTotal *prometheus.CounterVec
	rows       *prometheus.HistogramVec
	clauses    *prometheus.GaugeVec
	latency    *prometheus.HistogramVec
}

// New registers the screener collectors on reg (prometheus.DefaultRegisterer
// in production, a fresh registry in tests).
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		scansTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "screener_scans_total",
				Help: "Scans by profile and outcome (ok, no_match, rejected, unexpected, busy)",
			},
			[]string{"profile", "outcome"},
		),
		rows: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "screener_scan_rows",
				Help:    "Rows returned per scan",
				Buckets: []float64{0, 10, 25, 50, 100, 150, 200},
			},
			[]string{"profile"},
		),
		clauses: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "screener_last_query_clauses",
				Help: "Predicate count of the most recent query",
			},
			[]string{"profile"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "screener_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
			},
			[]string{"operation"},
		),
	}
}

// RecordScan counts a finished (or refused) scan.
func (r *Recorder) RecordScan(profile, outcome string) {
	r.scansTotal.WithLabelValues(profile, outcome).Inc()
}

// RecordRows observes the row count of a scan.
func (r *Recorder) RecordRows(profile string, n int) {
	r.rows.WithLabelValues(profile).Observe(float64(n))
}

// RecordClauses sets the clause count of the latest query.
func (r *Recorder) RecordClauses(profile string, n int) {
	r.clauses.WithLabelValues(profile).Set(float64(n))
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
