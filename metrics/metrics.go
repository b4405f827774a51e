package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	StopAdjustments = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gotx_stop_adjustments_total",
			Help: "Total number of stop-price tightenings (by symbol).",
		},
		[]string{"symbol"},
	)

	PartialCloses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gotx_partial_closes_total",
			Help: "Total number of partial-exit tiers triggered (by symbol).",
		},
		[]string{"symbol"},
	)

	FullCloses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gotx_full_closes_total",
			Help: "Total number of full position closes (by exit reason).",
		},
		[]string{"reason"},
	)

	PositionsOpen = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gotx_positions_open",
			Help: "Current number of positions under exit management.",
		},
	)

	RCaptured = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gotx_r_captured",
			Help:    "Realized R-multiple per close event.",
			Buckets: prometheus.LinearBuckets(-2, 0.5, 13), // -2R .. +4R
		},
	)
)

func init() {
	prometheus.MustRegister(StopAdjustments, PartialCloses, FullCloses, PositionsOpen, RCaptured)
}
