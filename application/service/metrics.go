package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// outcomeAdded labels successfully ingested URLs; failures are labelled
// "<kind>_error".
const outcomeAdded = "added"

// Metrics holds Prometheus metrics for ingestion and catalog maintenance.
//
// Metrics:
//   - gitsearch_urls_processed_total{outcome} - URLs handled by Add
//   - gitsearch_files_added_total - catalog entries appended
//   - gitsearch_clone_duration_seconds{outcome} - time spent fetching
//   - gitsearch_catalog_resets_total{result} - Reset calls
type Metrics struct {
	URLsProcessed *prometheus.CounterVec
	FilesAdded    prometheus.Counter
	CloneDuration *prometheus.HistogramVec
	Resets        *prometheus.CounterVec
}

// NewMetrics creates metrics registered with reg. A nil reg creates
// unregistered collectors, which keeps independent clients from colliding.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		URLsProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gitsearch_urls_processed_total",
				Help: "Total number of repository URLs processed by ingestion",
			},
			[]string{"outcome"},
		),
		FilesAdded: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "gitsearch_files_added_total",
				Help: "Total number of catalog entries appended by ingestion",
			},
		),
		CloneDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gitsearch_clone_duration_seconds",
				Help:    "Duration of repository clones in seconds",
				Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
			[]string{"outcome"},
		),
		Resets: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gitsearch_catalog_resets_total",
				Help: "Total number of catalog resets",
			},
			[]string{"result"},
		),
	}
}

func (m *Metrics) recordURL(outcome string) {
	if m == nil {
		return
	}
	m.URLsProcessed.WithLabelValues(outcome).Inc()
}

func (m *Metrics) recordFiles(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.FilesAdded.Add(float64(n))
}

func (m *Metrics) recordClone(start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.CloneDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}

func (m *Metrics) recordReset(ok bool) {
	if m == nil {
		return
	}
	result := "success"
	if !ok {
		result = "failure"
	}
	m.Resets.WithLabelValues(result).Inc()
}
