package execpool

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	poolRunning = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "arena",
			Subsystem: "execpool",
			Name:      "running",
			Help:      "Currently running sandbox executions.",
		},
	)
	poolWaiting = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "arena",
			Subsystem: "execpool",
			Name:      "waiting",
			Help:      "Currently queued sandbox executions.",
		},
	)
	poolStartedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "arena",
			Subsystem: "execpool",
			Name:      "started_total",
			Help:      "Sandbox executions started total.",
		},
	)
	poolCompletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "arena",
			Subsystem: "execpool",
			Name:      "completed_total",
			Help:      "Sandbox executions completed total.",
		},
	)
	poolRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "arena",
			Subsystem: "execpool",
			Name:      "rejected_total",
			Help:      "Sandbox executions rejected at capacity total.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		poolRunning,
		poolWaiting,
		poolStartedTotal,
		poolCompletedTotal,
		poolRejectedTotal,
	)
}
