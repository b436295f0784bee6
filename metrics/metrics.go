package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ActiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wombokombo_active_rooms",
		Help: "Number of rooms currently registered.",
	})

	ConnectedPlayers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wombokombo_connected_players",
		Help: "Number of live player connections.",
	})

	MatchesFinished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wombokombo_matches_finished_total",
		Help: "Matches that reached the finished state and were reaped.",
	})
)

// Handler exposes Prometheus metrics at /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
