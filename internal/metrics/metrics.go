// Package metrics declares the Prometheus counters of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	InjectionsLogged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shot_tracker_injections_logged_total",
		Help: "Total number of injections logged",
	})

	Exports = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shot_tracker_exports_total",
		Help: "Export jobs by format and final status",
	}, []string{"format", "status"})

	StatsCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shot_tracker_stats_cache_total",
		Help: "Stats cache lookups by result",
	}, []string{"result"})
)
