package handlers

import (
	"context"
	"fmt"

	"github.com/nimbus-hab/nimbus/pkg/domain"
	"github.com/nimbus-hab/nimbus/pkg/mission"
	"github.com/nimbus-hab/nimbus/pkg/ports"
)

// WaitingLaunch holds the probe on the pad until the batteries are
// above their launch thresholds. Airframes without a battery monitor
// pass straight through.
type WaitingLaunch struct {
	// belowSince counts consecutive below-threshold polls, for logging
	// cadence only.
	belowPolls int
}

// NewWaitingLaunch creates the WaitingLaunch handler.
func NewWaitingLaunch() *WaitingLaunch { return &WaitingLaunch{} }

func (h *WaitingLaunch) Phase() domain.Phase { return domain.PhaseWaitingLaunch }

func (h *WaitingLaunch) Tick(ctx context.Context, m *mission.Context) domain.Outcome {
	logger := m.Logger.With("phase", "waiting_launch")

	if m.Hardware.Battery == nil || !m.Config.ModuleEnabled(ports.ModuleModem) {
		logger.Info("no battery monitor, launch gate open")
		return domain.Continue(domain.PhaseAcquiringFix)
	}

	mainPc, err := m.Hardware.Battery.MainPercent(ctx)
	if err != nil {
		return domain.Fail(domain.HardwareError(domain.PhaseWaitingLaunch,
			fmt.Errorf("reading main battery: %w", err)))
	}
	modemPc, err := m.Hardware.Battery.ModemPercent(ctx)
	if err != nil {
		return domain.Fail(domain.HardwareError(domain.PhaseWaitingLaunch,
			fmt.Errorf("reading modem battery: %w", err)))
	}

	mainOK := mainPc < 0 || mainPc >= m.Config.Battery.MainMinPercent
	modemOK := modemPc >= m.Config.Battery.ModemMinPercent
	if mainOK && modemOK {
		logger.Info("launch thresholds satisfied", "main", batteryString(mainPc), "modem", batteryString(modemPc))
		return domain.Continue(domain.PhaseAcquiringFix)
	}

	h.belowPolls++
	if h.belowPolls%60 == 1 {
		logger.Info("waiting for charge", "main", batteryString(mainPc), "modem", batteryString(modemPc))
	}
	return domain.Stay(m.Config.Flight.PollInterval)
}
