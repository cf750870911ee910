package app

import (
	"github.com/nordfrost-se/controller/pkg/status"
)

// Status assembles the telemetry snapshot from the last completed tick.
func (a *App) Status() status.Status {
	st := *a.st

	s := status.Status{
		Mode:   string(a.lastDecision.Status),
		Reason: string(a.lastDecision.Reason),
		Detail: a.lastDecision.Detail,
		Alarms: a.alarms.Active(),
	}

	if st.AirHealth.LastReadTime > 0 {
		raw := st.AirHealth.LastRaw
		s.AirRaw = &raw
		smoothed := st.AirSmooth.EMA
		s.AirTemp = &smoothed
	}
	if st.EvapHealth.LastReadTime > 0 {
		raw := st.EvapHealth.LastRaw
		s.EvapRaw = &raw
		smoothed := st.EvapSmooth.EMA
		s.EvapTemp = &smoothed
	}

	on := st.ConfirmedOn
	s.CompressorOn = &on

	duty := st.DutyPercent()
	s.DutyPercent = &duty
	shift := st.AdaptiveShift
	s.AdaptiveShift = &shift

	locked := st.Freeze.Locked
	s.FreezeLocked = &locked
	locks := st.Freeze.LockCount
	s.FreezeLocks = &locks

	turbo := st.TurboActive(a.now())
	s.TurboActive = &turbo
	limp := st.LimpMode
	s.LimpMode = &limp

	if a.lastExec.Blocked {
		wait := a.lastExec.WaitSec
		s.WaitSeconds = &wait
	}

	if a.lastMeter != nil {
		power := a.lastMeter.Current_W
		s.MeterPowerW = &power
		current := a.lastMeter.L1_A
		s.MeterCurrentA = &current
	}

	return s
}
