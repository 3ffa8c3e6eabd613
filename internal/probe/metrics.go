package probe

import (
	"sync"

	"edgeaudit/internal/model"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	probesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edgeaudit_probes_total",
			Help: "Probes executed, by region and outcome",
		},
		[]string{"region", "outcome"},
	)

	probeTTFB = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "edgeaudit_probe_ttfb_milliseconds",
			Help:    "Observed time to first byte of successful probes",
			Buckets: []float64{25, 50, 100, 200, 400, 800, 1600, 3200, 6400},
		},
		[]string{"region"},
	)

	registerOnce sync.Once
)

// RegisterMetrics registers probe collectors with reg. Safe to call more than once.
func RegisterMetrics(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		reg.MustRegister(probesTotal, probeTTFB)
	})
}

func observe(r model.ProbeResult) {
	outcome := "ok"
	if r.Failed() {
		outcome = "error"
	}
	probesTotal.WithLabelValues(r.Region, outcome).Inc()
	if !r.Failed() {
		probeTTFB.WithLabelValues(r.Region).Observe(float64(r.TTFB))
	}
}
