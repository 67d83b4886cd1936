package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbus-hab/nimbus/internal/telemetry"
	"github.com/nimbus-hab/nimbus/pkg/domain"
)

func TestMetricsTrackLifecycle(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	m := telemetry.NewMetrics(reg)
	hooks := m.Hooks(domain.LifecycleHooks{})

	now := time.Now().UTC()
	hooks.OnPhaseEnter(ctx, &domain.PhaseEvent{Timestamp: now, Type: domain.EventPhaseEnter, To: domain.PhaseInit})
	hooks.OnPhaseLeave(ctx, &domain.PhaseEvent{Timestamp: now, Type: domain.EventPhaseLeave, From: domain.PhaseInit, To: domain.PhaseWaitingLaunch})
	hooks.OnPhaseEnter(ctx, &domain.PhaseEvent{Timestamp: now, Type: domain.EventPhaseEnter, From: domain.PhaseInit, To: domain.PhaseWaitingLaunch})
	hooks.OnEscalation(ctx, &domain.PhaseEvent{Timestamp: now, Type: domain.EventEscalation, From: domain.PhaseWaitingLaunch, To: domain.PhaseSafeMode})

	families, err := reg.Gather()
	require.NoError(t, err)

	phaseValues := map[string]float64{}
	counters := map[string]float64{}
	for _, f := range families {
		for _, metric := range f.GetMetric() {
			switch f.GetName() {
			case "nimbus_mission_phase":
				for _, l := range metric.GetLabel() {
					if l.GetName() == "phase" {
						phaseValues[l.GetValue()] = metric.GetGauge().GetValue()
					}
				}
			case "nimbus_mission_transitions_total", "nimbus_mission_escalations_total":
				counters[f.GetName()] += metric.GetCounter().GetValue()
			}
		}
	}

	// Exactly one phase gauge is high, and it is the current one.
	assert.Equal(t, 1.0, phaseValues[string(domain.PhaseWaitingLaunch)])
	var high int
	for _, v := range phaseValues {
		if v == 1.0 {
			high++
		}
	}
	assert.Equal(t, 1, high)

	assert.Equal(t, 1.0, counters["nimbus_mission_transitions_total"])
	assert.Equal(t, 1.0, counters["nimbus_mission_escalations_total"])
}

func TestHooksChain(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := telemetry.NewMetrics(reg)

	var forwarded []domain.EventType
	hooks := m.Hooks(domain.LifecycleHooks{
		OnPhaseEnter: func(_ context.Context, ev *domain.PhaseEvent) { forwarded = append(forwarded, ev.Type) },
		OnPhaseLeave: func(_ context.Context, ev *domain.PhaseEvent) { forwarded = append(forwarded, ev.Type) },
		OnEscalation: func(_ context.Context, ev *domain.PhaseEvent) { forwarded = append(forwarded, ev.Type) },
	})

	ctx := context.Background()
	now := time.Now().UTC()
	hooks.OnPhaseEnter(ctx, &domain.PhaseEvent{Timestamp: now, Type: domain.EventPhaseEnter, To: domain.PhaseInit})
	hooks.OnPhaseLeave(ctx, &domain.PhaseEvent{Timestamp: now, Type: domain.EventPhaseLeave, From: domain.PhaseInit, To: domain.PhaseSafeMode})
	hooks.OnEscalation(ctx, &domain.PhaseEvent{Timestamp: now, Type: domain.EventEscalation, From: domain.PhaseInit, To: domain.PhaseSafeMode})

	assert.Equal(t, []domain.EventType{domain.EventPhaseEnter, domain.EventPhaseLeave, domain.EventEscalation}, forwarded)
}
