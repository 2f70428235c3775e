package web

import "github.com/prometheus/client_golang/prometheus"

var (
	getLeaderboardRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "arena",
			Subsystem: "web",
			Name:      "get_leaderboard_requests_total",
			Help:      "GetLeaderboard requests total.",
		},
		[]string{"code", "reason"},
	)
	getLeaderboardDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "arena",
			Subsystem: "web",
			Name:      "get_leaderboard_duration_seconds",
			Help:      "GetLeaderboard duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"code", "reason"},
	)
	exportCompetitionDataRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "arena",
			Subsystem: "web",
			Name:      "export_competition_data_requests_total",
			Help:      "ExportCompetitionData requests total.",
		},
		[]string{"code", "reason"},
	)
	exportCompetitionDataDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "arena",
			Subsystem: "web",
			Name:      "export_competition_data_duration_seconds",
			Help:      "ExportCompetitionData duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"code", "reason"},
	)
	wsConnectionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "arena",
			Subsystem: "web",
			Name:      "ws_connections_total",
			Help:      "WebSocket connections accepted total.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		getLeaderboardRequestsTotal,
		getLeaderboardDurationSeconds,
		exportCompetitionDataRequestsTotal,
		exportCompetitionDataDurationSeconds,
		wsConnectionsTotal,
	)
}
