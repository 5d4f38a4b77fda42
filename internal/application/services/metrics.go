package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "indexer_cycles_total",
		Help: "Total number of sync cycles attempted",
	})

	cycleErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "indexer_cycle_errors_total",
		Help: "Total number of failed sync cycles",
	})

	eventsLedgeredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "indexer_events_ledgered_total",
		Help: "Total number of events submitted to the event ledger",
	})

	eventsHandledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "projector_events_handled_total",
		Help: "Total number of ledger events applied by the projector",
	})

	eventsSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "projector_events_skipped_total",
		Help: "Total number of events handled without effect because the owning token is unknown",
	})

	lastSyncedBlock = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "indexer_last_synced_block",
		Help: "Upper bound of the most recently completed block range",
	})

	cycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "indexer_cycle_duration_seconds",
		Help:    "Time taken to run one full sync cycle",
		Buckets: []float64{.1, .5, 1, 2.5, 5, 10, 30, 60},
	})
)
