// Package telemetry exposes mission observability: Prometheus
// collectors fed by engine lifecycle hooks, scraped through the ground
// status server.
package telemetry

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nimbus-hab/nimbus/pkg/domain"
)

// Metrics holds the mission collectors.
type Metrics struct {
	phase       *prometheus.GaugeVec
	phaseSince  prometheus.Gauge
	dwell       *prometheus.HistogramVec
	transitions *prometheus.CounterVec
	escalations *prometheus.CounterVec

	// enteredAt is the enter timestamp of the current phase, used to
	// observe dwell on leave. Hooks run on the engine goroutine only.
	enteredAt time.Time
}

// NewMetrics builds and registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		phase: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "nimbus",
			Name:      "mission_phase",
			Help:      "Current mission phase (1 for the active phase, 0 otherwise).",
		}, []string{"phase"}),
		phaseSince: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "nimbus",
			Name:      "mission_phase_entered_timestamp_seconds",
			Help:      "Unix time the current phase was entered.",
		}),
		dwell: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "nimbus",
			Name:      "mission_phase_dwell_seconds",
			Help:      "Time spent in each phase before transitioning out.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}, []string{"phase"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nimbus",
			Name:      "mission_transitions_total",
			Help:      "Committed phase transitions by edge.",
		}, []string{"from", "to"}),
		escalations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nimbus",
			Name:      "mission_escalations_total",
			Help:      "Forced escalations into safe mode by failing phase.",
		}, []string{"phase"}),
	}
	reg.MustRegister(m.phase, m.phaseSince, m.dwell, m.transitions, m.escalations)
	return m
}

// Hooks adapts the collectors to engine lifecycle hooks. Chain wraps an
// existing hook set so the status server and metrics can share the
// engine's single hook slot.
func (m *Metrics) Hooks(next domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPhaseEnter: func(ctx context.Context, ev *domain.PhaseEvent) {
			m.setPhase(ev.To, ev.Timestamp)
			if next.OnPhaseEnter != nil {
				next.OnPhaseEnter(ctx, ev)
			}
		},
		OnPhaseLeave: func(ctx context.Context, ev *domain.PhaseEvent) {
			m.transitions.WithLabelValues(string(ev.From), string(ev.To)).Inc()
			if !m.enteredAt.IsZero() {
				m.dwell.WithLabelValues(string(ev.From)).Observe(ev.Timestamp.Sub(m.enteredAt).Seconds())
			}
			if next.OnPhaseLeave != nil {
				next.OnPhaseLeave(ctx, ev)
			}
		},
		OnEscalation: func(ctx context.Context, ev *domain.PhaseEvent) {
			m.escalations.WithLabelValues(string(ev.From)).Inc()
			if next.OnEscalation != nil {
				next.OnEscalation(ctx, ev)
			}
		},
	}
}

func (m *Metrics) setPhase(p domain.Phase, at time.Time) {
	m.enteredAt = at
	for _, ph := range domain.Phases {
		v := 0.0
		if ph == p {
			v = 1.0
		}
		m.phase.WithLabelValues(string(ph)).Set(v)
	}
	m.phaseSince.Set(float64(at.Unix()))
}
