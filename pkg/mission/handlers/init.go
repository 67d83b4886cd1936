package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sys/unix"

	"github.com/nimbus-hab/nimbus/pkg/domain"
	"github.com/nimbus-hab/nimbus/pkg/mission"
	"github.com/nimbus-hab/nimbus/pkg/ports"
)

// minDiskSpaceNoVideo is the floor when no camera is flying: 2 GiB for
// logs and telemetry dumps.
const minDiskSpaceNoVideo = 2 << 30

// Init runs the power-up hardware self-test across the configured
// module set. Any mandatory module failing its check fails the phase;
// optional modules log and fly without.
type Init struct{}

// NewInit creates the Init handler.
func NewInit() *Init { return &Init{} }

func (h *Init) Phase() domain.Phase { return domain.PhaseInit }

func (h *Init) Tick(ctx context.Context, m *mission.Context) domain.Outcome {
	logger := m.Logger.With("phase", "init")

	if err := checkDiskSpace(m); err != nil {
		return domain.Fail(domain.HardwareError(domain.PhaseInit, err))
	}

	for mod, hc := range healthCheckers(m) {
		logger.Info("checking module", "module", mod)
		err := checkWithTimeout(ctx, hc, m.Config.Flight.ModuleCheckTimeout)
		if err == nil {
			logger.Info("module ok", "module", mod)
			continue
		}
		if m.Config.ModuleMandatory(mod) {
			return domain.Fail(domain.HardwareError(domain.PhaseInit,
				fmt.Errorf("mandatory module %s failed self-test: %w", mod, err)))
		}
		logger.Warn("optional module failed self-test, flying without", "module", mod, "error", err)
	}

	if m.Config.ModuleEnabled(ports.ModuleModem) && m.Hardware.Modem != nil {
		if err := waitForGSM(ctx, m); err != nil {
			if m.Config.ModuleMandatory(ports.ModuleModem) {
				return domain.Fail(domain.HardwareError(domain.PhaseInit, err))
			}
			logger.Warn("gsm connectivity not reached, flying without", "error", err)
		} else {
			logger.Info("gsm connected")
		}
	}

	if err := checkBatteries(ctx, m); err != nil {
		return domain.Fail(domain.HardwareError(domain.PhaseInit, err))
	}

	return domain.Continue(domain.PhaseWaitingLaunch)
}

// checkDiskSpace verifies the data directory can hold the expected
// flight's video plus margin. 1.2 times the flight length, just in
// case.
func checkDiskSpace(m *mission.Context) error {
	var stat unix.Statfs_t
	if err := unix.Statfs(m.Config.DataDir, &stat); err != nil {
		return fmt.Errorf("reading disk space of %s: %w", m.Config.DataDir, err)
	}
	avail := stat.Bavail * uint64(stat.Bsize)
	m.Logger.Info("available disk space", "gib", float64(avail)/(1<<30))

	var need uint64 = minDiskSpaceNoVideo
	if m.Config.ModuleEnabled(ports.ModuleCamera) {
		bytesPerSec := uint64(m.Config.Video.BitrateKbps) * 1000 / 8
		need = uint64(m.Config.Flight.Length.Seconds()*1.2) * bytesPerSec
	}
	if avail < need {
		return fmt.Errorf("not enough disk space: %d bytes available, %d required", avail, need)
	}
	return nil
}

// checkWithTimeout bounds a module self-test.
func checkWithTimeout(ctx context.Context, hc ports.HealthChecker, timeout time.Duration) error {
	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return hc.Check(checkCtx)
}

// waitForGSM polls the modem for network connectivity, with exponential
// backoff bounded by the module check timeout.
func waitForGSM(ctx context.Context, m *mission.Context) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second
	bo.MaxElapsedTime = m.Config.Flight.ModuleCheckTimeout
	return backoff.Retry(func() error {
		ok, err := m.Hardware.Modem.HasConnectivity(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no gsm connectivity yet")
		}
		return nil
	}, backoff.WithContext(bo, ctx))
}

// checkBatteries reads both batteries through the modem ADC. A negative
// percentage means disconnected, which is tolerated for the main
// battery (some airframes power the computer separately) but not a
// below-minimum reading.
func checkBatteries(ctx context.Context, m *mission.Context) error {
	if m.Hardware.Battery == nil || !m.Config.ModuleEnabled(ports.ModuleModem) {
		return nil
	}
	mainPc, err := m.Hardware.Battery.MainPercent(ctx)
	if err != nil {
		return fmt.Errorf("reading main battery: %w", err)
	}
	modemPc, err := m.Hardware.Battery.ModemPercent(ctx)
	if err != nil {
		return fmt.Errorf("reading modem battery: %w", err)
	}
	m.Logger.Info("batteries checked", "main", batteryString(mainPc), "modem", batteryString(modemPc))

	if (mainPc >= 0 && mainPc < m.Config.Battery.MainMinPercent) || modemPc < m.Config.Battery.ModemMinPercent {
		return fmt.Errorf("not enough battery: main %s, modem %s", batteryString(mainPc), batteryString(modemPc))
	}
	return nil
}

func batteryString(pc float64) string {
	if pc < 0 {
		return "disconnected"
	}
	return fmt.Sprintf("%.0f%%", pc*100)
}
