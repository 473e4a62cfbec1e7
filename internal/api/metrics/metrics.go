// Package metrics defines and registers all custom Prometheus metrics for
// the fuel facts platform. It is the single source of truth for metric
// names, labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fuelfacts"

// ── Pipeline metrics ──────────────────────────────────────────────────────────

// PipelineRunsTotal counts pipeline executions by outcome.
// Label:
//   - result: "success", "empty_input", "locked", or "error"
var PipelineRunsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pipeline_runs_total",
		Help:      "Total number of pipeline runs, labelled by result.",
	},
	[]string{"result"},
)

// PipelineRunDuration measures how long a full pipeline run takes from
// source load to fact write.
var PipelineRunDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "pipeline_run_duration_seconds",
		Help:      "Duration of a complete pipeline run.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12), // 0.1s … ~3.4m
	},
)

// ShipmentsProcessedTotal counts shipment records seen by the pipeline.
// Label:
//   - outcome: "matched", "unmatched", or "skipped"
var ShipmentsProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "shipments_processed_total",
		Help:      "Total shipment records processed, labelled by match outcome.",
	},
	[]string{"outcome"},
)

// FactRows tracks the number of rows in the fact table after the most
// recent successful run.
var FactRows = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "fact_rows",
		Help:      "Number of temperature-range rows written by the last run.",
	},
)

// ── Collector metrics ─────────────────────────────────────────────────────────

// CollectorCitiesTotal counts cities handled per collection pass.
// Label:
//   - outcome: "collected", "skipped", or "failed"
var CollectorCitiesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "collector_cities_total",
		Help:      "Total cities handled by weather collection, labelled by outcome.",
	},
	[]string{"outcome"},
)
