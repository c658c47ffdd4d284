// Package telemetry implements the telemetry snapshot schema and command
// surface exposed to the UI collaborator (spec.md §6), plus a set of
// internal Prometheus metrics for the tick loop; the controller does not
// create or update a Metrics itself. Grounded on
// 99souls-ariadne's engine/telemetry/metrics package, which wraps
// github.com/prometheus/client_golang behind a small typed provider rather
// than scattering prom.New* calls through business logic.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the tick-loop gauges/counters; whoever constructs one
// updates it, and nothing in the control core does.
type Metrics struct {
	registry *prometheus.Registry

	TickDuration      prometheus.Histogram
	BatteryPercent    prometheus.Gauge
	ObstacleCount     prometheus.Gauge
	StateTransitions  *prometheus.CounterVec
	SafetyEmergencies prometheus.Counter
	StuckCounter      prometheus.Gauge
}

// NewMetrics builds and registers every gauge/counter against a private
// registry (spec.md's Non-goals exclude a network metrics endpoint, but the
// ambient stack still carries structured internal metrics — see
// SPEC_FULL.md ambient-stack note).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "robot_tick_duration_seconds",
			Help:    "wall-clock duration of one controller tick",
			Buckets: prometheus.DefBuckets,
		}),
		BatteryPercent: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "robot_battery_percent",
			Help: "most recent battery state-of-charge percentage",
		}),
		ObstacleCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "robot_tracked_obstacle_count",
			Help: "number of dynamic obstacles currently tracked",
		}),
		StateTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "robot_state_transitions_total",
			Help: "count of top-level state machine transitions by destination state",
		}, []string{"state"}),
		SafetyEmergencies: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "robot_safety_emergencies_total",
			Help: "count of ticks where the safety gate reported EMERGENCY",
		}),
		StuckCounter: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "robot_stuck_counter",
			Help: "consecutive ticks the avoider has returned no feasible twist",
		}),
	}

	reg.MustRegister(
		m.TickDuration, m.BatteryPercent, m.ObstacleCount,
		m.StateTransitions, m.SafetyEmergencies, m.StuckCounter,
	)
	return m
}

// Registry exposes the backing registry, e.g. for an on-demand diagnostic
// dump; the core does not expose an HTTP /metrics endpoint (out of scope).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
