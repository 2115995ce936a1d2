// Package metrics exposes Prometheus instrumentation for the ledger
// service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTPRequestsTotal counts handled HTTP requests.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency per route.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	// MovementsRecorded counts committed stock movements by kind.
	MovementsRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_movements_recorded_total",
			Help: "Stock movements recorded, by kind (in/out)",
		},
		[]string{"kind"},
	)

	// ReturnsProcessed counts committed returns.
	ReturnsProcessed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_returns_processed_total",
			Help: "Returns processed",
		},
	)

	// BalancesSaved counts finalized daily balance rows.
	BalancesSaved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_balances_saved_total",
			Help: "Daily balances finalized",
		},
	)

	// TxConflicts counts optimistic-concurrency conflicts surfaced to
	// callers or absorbed by retries.
	TxConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_tx_conflicts_total",
			Help: "Optimistic locking conflicts",
		},
	)
)

// Init registers all collectors with the default registry.
func Init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		MovementsRecorded,
		ReturnsProcessed,
		BalancesSaved,
		TxConflicts,
	)
}
