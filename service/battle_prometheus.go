package service

import "github.com/prometheus/client_golang/prometheus"

var (
	battleRoomsCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "arena",
		Subsystem: "battle",
		Name:      "rooms_created_total",
		Help:      "Total number of battle rooms created by the matchmaker.",
	})
	battleRoomsFinishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "arena",
		Subsystem: "battle",
		Name:      "rooms_finished_total",
		Help:      "Total number of battle rooms reaching a terminal state, by reason.",
	}, []string{"reason"})
	matchmakerQueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "arena",
		Subsystem: "matchmaker",
		Name:      "queue_depth",
		Help:      "Number of players currently waiting in the matchmaking queue.",
	})
	competitionRoomsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "arena",
		Subsystem: "competition",
		Name:      "rooms_active",
		Help:      "Number of competition rooms currently held in memory.",
	})
)

func init() {
	prometheus.MustRegister(battleRoomsCreatedTotal)
	prometheus.MustRegister(battleRoomsFinishedTotal)
	prometheus.MustRegister(matchmakerQueueDepth)
	prometheus.MustRegister(competitionRoomsActive)
}
