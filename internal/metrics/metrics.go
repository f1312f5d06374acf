// Package metrics provides Prometheus metrics for upload sessions.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// No session ids in labels.

var (
	// UploadsTotal counts upload attempts by result (accepted/rejected/refused).
	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vid2scene_uploads_total",
		Help: "Total number of upload attempts, by result.",
	}, []string{"result"})

	// RejectionsTotal counts validation rejections by reason.
	RejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vid2scene_validation_rejections_total",
		Help: "Total number of uploads rejected by the validation gate, by reason.",
	}, []string{"reason"})

	// SimulationRunsTotal counts finished simulation runs by outcome.
	SimulationRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vid2scene_simulation_runs_total",
		Help: "Total number of processing simulation runs, by outcome.",
	}, []string{"outcome"})

	// StageCompletionsTotal counts completed processing stages.
	StageCompletionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vid2scene_stage_completions_total",
		Help: "Total number of completed processing stages, by stage.",
	}, []string{"stage"})

	// DatasetLoadsTotal counts reconstruction dataset loads by result.
	DatasetLoadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vid2scene_dataset_loads_total",
		Help: "Total number of reconstruction dataset loads, by result.",
	}, []string{"result"})

	// IncidentsTotal counts faults converted into incidents.
	IncidentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vid2scene_incidents_total",
		Help: "Total number of recovered faults, by operation.",
	}, []string{"operation"})

	// ActiveSessions tracks the number of live sessions.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vid2scene_active_sessions",
		Help: "Current number of in-memory sessions.",
	})
)

// Upload results
const (
	UploadAccepted = "accepted"
	UploadRejected = "rejected"
	UploadRefused  = "refused"
)

// Dataset load results
const (
	LoadSuccess = "success"
	LoadFailure = "failure"
)
