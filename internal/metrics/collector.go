// Package metrics exports the economy's state as Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/talgya/hive-economy/internal/engine"
)

const (
	// Namespace for all metrics
	namespace = "hive"
	// Subsystem for HTTP API metrics
	apiSubsystem = "api"
)

// NewRegistry creates a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// Collector is an engine.Observer that mirrors cycle reports, building
// changes and scheduler frames into Prometheus metrics.
type Collector struct {
	cycles          prometheus.Counter
	upgrades        prometheus.Counter
	activeProducers prometheus.Gauge
	producers       prometheus.Gauge
	workers         *prometheus.GaugeVec
	resourceAmount  *prometheus.GaugeVec
	resourceRate    *prometheus.GaugeVec
	buildings       *prometheus.GaugeVec
	changes         *prometheus.CounterVec
	framePhase      *prometheus.CounterVec
	frameDuration   *prometheus.HistogramVec

	apiRequestsTotal   *prometheus.CounterVec
	apiRequestDuration *prometheus.HistogramVec
}

// NewCollector creates the economy metrics.
func NewCollector() *Collector {
	return &Collector{
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Completed economy cycles",
		}),
		upgrades: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upgrades_total",
			Help:      "Building upgrades paid for",
		}),
		activeProducers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_producers",
			Help:      "Producers that ran in the last cycle",
		}),
		producers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "producers",
			Help:      "Producers resolved in the last cycle",
		}),
		workers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "workers",
			Help:      "Worker pool size by state",
		}, []string{"state"}),
		resourceAmount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "resource_amount",
			Help:      "Ledger stock at the end of the last cycle",
		}, []string{"resource"}),
		resourceRate: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "resource_rate",
			Help:      "Resource flow over the last cycle",
		}, []string{"resource", "direction"}),
		buildings: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "buildings",
			Help:      "Placed buildings by kind",
		}, []string{"kind"}),
		changes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "building_changes_total",
			Help:      "Building change notifications by kind",
		}, []string{"kind"}),
		framePhase: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frame_phase_total",
			Help:      "Scheduler frames stepped by phase",
		}, []string{"phase"}),
		frameDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_duration_seconds",
			Help:      "Time spent in one scheduler frame by phase",
			Buckets:   []float64{0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}, []string{"phase"}),

		apiRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: apiSubsystem,
			Name:      "requests_total",
			Help:      "Total number of API requests by method, endpoint, and status code",
		}, []string{"method", "endpoint", "status_code"}),
		apiRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: apiSubsystem,
			Name:      "request_duration_seconds",
			Help:      "API request duration distribution",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		}, []string{"method", "endpoint"}),
	}
}

// Register registers every metric with reg.
func (c *Collector) Register(reg prometheus.Registerer) error {
	metrics := []prometheus.Collector{
		c.cycles,
		c.upgrades,
		c.activeProducers,
		c.producers,
		c.workers,
		c.resourceAmount,
		c.resourceRate,
		c.buildings,
		c.changes,
		c.framePhase,
		c.frameDuration,
		c.apiRequestsTotal,
		c.apiRequestDuration,
	}
	for _, metric := range metrics {
		if err := reg.Register(metric); err != nil {
			return err
		}
	}
	return nil
}

// CycleCompleted records a cycle report.
func (c *Collector) CycleCompleted(r engine.Report) {
	c.cycles.Inc()
	c.upgrades.Add(float64(r.Upgrades))
	c.activeProducers.Set(float64(r.ActiveProducers))
	c.producers.Set(float64(r.Producers))
	c.workers.WithLabelValues("total").Set(float64(r.Workers))
	c.workers.WithLabelValues("assigned").Set(float64(r.AssignedWorkers))

	for _, rr := range r.Resources {
		res := string(rr.Resource)
		c.resourceAmount.WithLabelValues(res).Set(rr.Amount)
		c.resourceRate.WithLabelValues(res, "produced").Set(rr.Produced)
		c.resourceRate.WithLabelValues(res, "consumed").Set(rr.Consumed)
	}
}

// BuildingChanged tracks per-kind building counts.
func (c *Collector) BuildingChanged(ch engine.Change) {
	c.changes.WithLabelValues(string(ch.Kind)).Inc()
	switch ch.Kind {
	case engine.ChangePlaced:
		c.buildings.WithLabelValues(string(ch.Category)).Inc()
	case engine.ChangeRemoved:
		c.buildings.WithLabelValues(string(ch.Category)).Dec()
	}
}

// FrameStepped records one scheduler frame.
func (c *Collector) FrameStepped(phase engine.Phase, elapsed time.Duration) {
	c.framePhase.WithLabelValues(phase.String()).Inc()
	c.frameDuration.WithLabelValues(phase.String()).Observe(elapsed.Seconds())
}

// RecordAPIRequest records an API request completion.
func (c *Collector) RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	c.apiRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	c.apiRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
