// Package metrics provides Prometheus metrics for the guest-transport
// service.  All metrics live on a custom registry so /metrics exposes
// only what the service itself records.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager holds every Prometheus metric the service records.
type Manager struct {
	importsApplied prometheus.Counter
	importRows     *prometheus.CounterVec
	applyFailures  *prometheus.CounterVec
	reassignments  prometheus.Counter
	suggestions    prometheus.Counter
	diffDuration   prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry()

func init() {
	globalManager = NewManager(customRegistry)
}

// NewManager creates all metrics registered on the given registerer.
func NewManager(reg prometheus.Registerer) *Manager {
	auto := promauto.With(reg)
	const ns = "guest_transport"
	return &Manager{
		importsApplied: auto.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "imports_applied_total",
			Help:      "Total number of import diffs applied to the guest store",
		}),
		importRows: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "import_rows_total",
			Help:      "Total number of import rows by diff outcome",
		}, []string{"outcome"}),
		applyFailures: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "apply_failures_total",
			Help:      "Total number of failed diff applications by reason",
		}, []string{"reason"}),
		reassignments: auto.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "reassignments_total",
			Help:      "Total number of guests moved between transport schedules",
		}),
		suggestions: auto.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "reallocation_suggestions_total",
			Help:      "Total number of reallocation suggestions produced for flight status changes",
		}),
		diffDuration: auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "diff_duration_milliseconds",
			Help:      "Histogram of diff computation duration in milliseconds",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// RecordImportApplied increments the applied imports counter.
func RecordImportApplied() {
	globalManager.importsApplied.Inc()
}

// RecordImportRows adds n rows for one diff outcome
// (added, modified, removed, unchanged or error).
func RecordImportRows(outcome string, n int) {
	globalManager.importRows.WithLabelValues(outcome).Add(float64(n))
}

// RecordApplyFailure increments the apply failure counter for one
// reason (version_conflict or duplicate_email).
func RecordApplyFailure(reason string) {
	globalManager.applyFailures.WithLabelValues(reason).Inc()
}

// RecordReassignment increments the reassignment counter.
func RecordReassignment() {
	globalManager.reassignments.Inc()
}

// RecordSuggestion increments the reallocation suggestion counter.
func RecordSuggestion() {
	globalManager.suggestions.Inc()
}

// RecordDiffDuration records one diff computation in milliseconds.
func RecordDiffDuration(ms float64) {
	globalManager.diffDuration.Observe(ms)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
