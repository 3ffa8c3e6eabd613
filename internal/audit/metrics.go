package audit

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	auditRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edgeaudit_audit_runs_total",
			Help: "Audit runs started, by kind (full or single)",
		},
		[]string{"kind"},
	)

	batchFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "edgeaudit_audit_batch_failures_total",
			Help: "Batches that failed during an audit run",
		},
	)

	rowsInserted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "edgeaudit_audit_rows_inserted_total",
			Help: "Audit log rows committed to the store",
		},
	)

	registerOnce sync.Once
)

// RegisterMetrics registers orchestrator collectors with reg.
func RegisterMetrics(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		reg.MustRegister(auditRuns, batchFailures, rowsInserted)
	})
}
