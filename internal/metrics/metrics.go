// Package metrics exposes prometheus counters for engine activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricPrefix = "oiltrading_"

var (
	// EvaluationsTotal counts formula evaluations by aggregation method.
	EvaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metricPrefix + "formula_evaluations_total",
			Help: "Formula evaluations by aggregation method",
		},
		[]string{"method"},
	)

	// EvaluationFailuresTotal counts evaluations that returned an error.
	EvaluationFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metricPrefix + "formula_evaluation_failures_total",
			Help: "Failed formula evaluations by error type",
		},
		[]string{"error_type"},
	)

	// RecalculationsTotal counts settlement recalculations.
	RecalculationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: metricPrefix + "settlement_recalculations_total",
			Help: "Settlement recalculations performed",
		},
	)

	// StoreConflictsTotal counts optimistic-concurrency conflicts on writes.
	StoreConflictsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: metricPrefix + "settlement_store_conflicts_total",
			Help: "Settlement store writes rejected as stale",
		},
	)
)

func init() {
	prometheus.MustRegister(
		EvaluationsTotal,
		EvaluationFailuresTotal,
		RecalculationsTotal,
		StoreConflictsTotal,
	)
}
