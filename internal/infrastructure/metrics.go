package infrastructure

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "adarecon"

// PipelineMetrics records reconciliation runs on a private registry.
type PipelineMetrics struct {
	registry *prometheus.Registry

	Runs                *prometheus.CounterVec
	StageDuration       *prometheus.HistogramVec
	BoundariesResolved  prometheus.Gauge
	BoundariesTotal     prometheus.Gauge
	RecordsExtracted    prometheus.Gauge
	RecordsConsolidated prometheus.Gauge
	CellsWritten        prometheus.Gauge
	UnmappedKeys        prometheus.Gauge
}

// NewPipelineMetrics creates and registers the pipeline collectors.
func NewPipelineMetrics() *PipelineMetrics {
	m := &PipelineMetrics{
		registry: prometheus.NewRegistry(),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "runs_total",
			Help:      "Reconciliation runs by mode and outcome.",
		}, []string{"mode", "outcome"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"stage"}),
		BoundariesResolved: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "boundaries_resolved",
			Help:      "Programs with a usable interval in the last run.",
		}),
		BoundariesTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "boundaries_total",
			Help:      "Programs in the catalog of the last run.",
		}),
		RecordsExtracted: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "records_extracted",
			Help:      "Records extracted in the last run.",
		}),
		RecordsConsolidated: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "records_consolidated",
			Help:      "Consolidated records in the last run.",
		}),
		CellsWritten: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "cells_written",
			Help:      "Workbook cells written in the last audit run.",
		}),
		UnmappedKeys: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "unmapped_keys",
			Help:      "Consolidated keys without a cell in the layout.",
		}),
	}

	m.registry.MustRegister(
		m.Runs, m.StageDuration,
		m.BoundariesResolved, m.BoundariesTotal,
		m.RecordsExtracted, m.RecordsConsolidated,
		m.CellsWritten, m.UnmappedKeys,
	)
	return m
}

// ObserveStage records the duration of a stage started at start.
func (m *PipelineMetrics) ObserveStage(stage string, start time.Time) {
	m.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// RecordRun counts a finished run.
func (m *PipelineMetrics) RecordRun(mode string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.Runs.WithLabelValues(mode, outcome).Inc()
}

// Registry exposes the underlying registry for gathering.
func (m *PipelineMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *PipelineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// WriteToTextfile dumps the registry for the node exporter textfile collector.
func (m *PipelineMetrics) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
