// Package metrics exposes per-frame detection metrics for Prometheus.
package metrics

import (
	"time"

	"cellscope/internal/report"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Collector holds every metric of one process on its own registry.
type Collector struct {
	registry *prometheus.Registry

	Frames        prometheus.Counter
	Cells         prometheus.Histogram
	Reports       *prometheus.CounterVec
	FrameDuration prometheus.Histogram
	LogFailures   prometheus.Counter
	State         *prometheus.GaugeVec
}

// NewCollector creates and registers the metrics under namespace.
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		Frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_processed_total",
			Help:      "Frames that completed the detection loop.",
		}),
		Cells: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cells_per_frame",
			Help:      "External contours found per frame.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100, 200, 500},
		}),
		Reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_total",
			Help:      "Reports by selected microbe and risk.",
		}, []string{"microbe", "risk"}),
		FrameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_duration_seconds",
			Help:      "Time from capture to display for one frame.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		LogFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "log_write_failures_total",
			Help:      "Failed report log writes.",
		}),
		State: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_state",
			Help:      "1 for the current pipeline state, 0 otherwise.",
		}, []string{"state"}),
	}
	c.registry.MustRegister(
		c.Frames, c.Cells, c.Reports, c.FrameDuration, c.LogFailures, c.State,
		collectors.NewGoCollector(),
	)
	return c
}

// Registry returns the registry holding the collector's metrics.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// FrameProcessed records one completed frame.
func (c *Collector) FrameProcessed(r report.Record, d time.Duration) {
	c.Frames.Inc()
	c.Cells.Observe(float64(r.Cells))
	c.Reports.WithLabelValues(r.Microbe, string(r.Risk)).Inc()
	c.FrameDuration.Observe(d.Seconds())
}

// LogFailed counts a failed log append.
func (c *Collector) LogFailed() { c.LogFailures.Inc() }

// StateChanged marks state as current.
func (c *Collector) StateChanged(from, to string) {
	if from != "" {
		c.State.WithLabelValues(from).Set(0)
	}
	c.State.WithLabelValues(to).Set(1)
}
