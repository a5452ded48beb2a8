// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "footbuddy_pipeline_runs_total",
			Help: "Total number of questions answered by outcome",
		},
		[]string{"outcome"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "footbuddy_stage_duration_seconds",
			Help: "Duration of each pipeline stage in seconds",
		},
		[]string{"stage"},
	)

	ToolCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "footbuddy_tool_calls_total",
			Help: "Total number of sports-data tool invocations",
		},
		[]string{"tool", "outcome"},
	)

	RunsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "footbuddy_pipeline_runs_active",
			Help: "Number of pipeline runs in progress",
		},
	)
)
