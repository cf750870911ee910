package compressor

import (
	"fmt"

	"github.com/nordfrost-se/controller/pkg/config"
)

// Status reflects both the decision and whether the relay already matches it.
type Status string

const (
	StatusCooling     Status = "COOLING"
	StatusIdle        Status = "IDLE"
	StatusWantCooling Status = "WANT_COOLING"
	StatusWantIdle    Status = "WANT_IDLE"
)

// Reason names the rule that governed the tick.
type Reason string

const (
	ReasonNone           Reason = "NONE"
	ReasonLimp           Reason = "LIMP"
	ReasonTurbo          Reason = "TURBO"
	ReasonDoorOpen       Reason = "DOOR_OPEN"
	ReasonDefrost        Reason = "DEFROST"
	ReasonFreeze         Reason = "FREEZE"
	ReasonMaxRun         Reason = "MAX_RUN"
	ReasonDynamicDefrost Reason = "DYNAMIC_DEFROST"
	ReasonThermostat     Reason = "THERMOSTAT"
	ReasonMinOn          Reason = "MIN_ON"
	ReasonMinOff         Reason = "MIN_OFF"
)

// Input carries the smoothed readings for one tick.
type Input struct {
	Now      int64
	AirTemp  *float64
	EvapTemp *float64
}

// Decision is recomputed every tick and never persisted.
type Decision struct {
	WantOn bool
	Status Status
	Reason Reason
	Detail string
}

// Rule is one entry of the priority chain: a predicate+result pair. The first
// rule that applies governs the tick and evaluation stops.
type Rule struct {
	Name string
	Eval func(in Input, st *State, cfg *config.ControlConfig) (Decision, bool)
}

// Rules returns the total priority order. The slice is rebuilt per call so
// callers cannot corrupt the shared order.
func Rules() []Rule {
	return []Rule{
		{"fatal-alarm", ruleFatalAlarm},
		{"limp-mode", ruleLimpMode},
		{"turbo", ruleTurbo},
		{"door-open", ruleDoorOpen},
		{"scheduled-defrost", ruleScheduledDefrost},
		{"freeze-protection", ruleFreezeProtection},
		{"max-run", ruleMaxRun},
		{"dynamic-defrost", ruleDynamicDefrost},
		{"thermostat", ruleThermostat},
	}
}

// Decide runs the priority chain and returns the governing decision together
// with the (possibly updated) state. Exactly one rule governs any tick.
func Decide(in Input, st State, cfg *config.ControlConfig) (Decision, State) {
	for _, r := range Rules() {
		if d, ok := r.Eval(in, &st, cfg); ok {
			d.Status = statusFor(d.WantOn, st.ConfirmedOn)
			return d, st
		}
	}
	// unreachable: the thermostat rule always applies
	return Decision{Status: statusFor(false, st.ConfirmedOn), Reason: ReasonNone}, st
}

func statusFor(wantOn, confirmedOn bool) Status {
	switch {
	case wantOn && confirmedOn:
		return StatusCooling
	case wantOn:
		return StatusWantCooling
	case confirmedOn:
		return StatusWantIdle
	default:
		return StatusIdle
	}
}

func ruleFatalAlarm(in Input, st *State, cfg *config.ControlConfig) (Decision, bool) {
	if st.FatalAlarm == AlarmNone {
		return Decision{}, false
	}
	return Decision{
		WantOn: false,
		Reason: ReasonNone,
		Detail: "FATAL: " + string(st.FatalAlarm),
	}, true
}

// ruleLimpMode blind-cycles the compressor on a fixed duty schedule when
// temperature cannot be trusted.
func ruleLimpMode(in Input, st *State, cfg *config.ControlConfig) (Decision, bool) {
	if !st.LimpMode {
		return Decision{}, false
	}
	want := st.IntendedOn
	if st.IntendedOn && in.Now-st.Timing.LastOnTime >= cfg.LimpOnSeconds {
		want = false
	} else if !st.IntendedOn && in.Now-st.Timing.LastOffTime >= cfg.LimpOffSeconds {
		want = true
	}
	return Decision{
		WantOn: want,
		Reason: ReasonLimp,
		Detail: fmt.Sprintf("blind cycle %d/%ds", cfg.LimpOnSeconds, cfg.LimpOffSeconds),
	}, true
}

func ruleTurbo(in Input, st *State, cfg *config.ControlConfig) (Decision, bool) {
	if !st.TurboActive(in.Now) {
		return Decision{}, false
	}
	band := cfg.BandFor(st.AdaptiveShift, true)
	return Decision{
		WantOn: DecideThermostat(in.AirTemp, st.IntendedOn, band),
		Reason: ReasonTurbo,
		Detail: fmt.Sprintf("boost until %d", st.TurboUntil),
	}, true
}

func ruleDoorOpen(in Input, st *State, cfg *config.ControlConfig) (Decision, bool) {
	if !st.DoorOpen {
		return Decision{}, false
	}
	return Decision{WantOn: false, Reason: ReasonDoorOpen, Detail: "door open"}, true
}

// ruleScheduledDefrost also clears a dynamic defrost in progress: the
// scheduled window takes precedence and resynchronizes state.
func ruleScheduledDefrost(in Input, st *State, cfg *config.ControlConfig) (Decision, bool) {
	if !inDefrostWindow(in.Now, cfg) {
		return Decision{}, false
	}
	st.DynamicDefrost = false
	return Decision{WantOn: false, Reason: ReasonDefrost, Detail: "scheduled defrost"}, true
}

func inDefrostWindow(now int64, cfg *config.ControlConfig) bool {
	if cfg.DefrostIntervalSeconds <= 0 || cfg.DefrostDurationSeconds <= 0 {
		return false
	}
	return now%cfg.DefrostIntervalSeconds < cfg.DefrostDurationSeconds
}

func ruleFreezeProtection(in Input, st *State, cfg *config.ControlConfig) (Decision, bool) {
	if !st.Freeze.Locked {
		return Decision{}, false
	}
	return Decision{
		WantOn: false,
		Reason: ReasonFreeze,
		Detail: fmt.Sprintf("evaporator freeze lock (count %d)", st.Freeze.LockCount),
	}, true
}

func ruleMaxRun(in Input, st *State, cfg *config.ControlConfig) (Decision, bool) {
	if !st.IntendedOn || in.Now-st.Timing.LastOnTime <= cfg.MaxRunSeconds {
		return Decision{}, false
	}
	return Decision{
		WantOn: false,
		Reason: ReasonMaxRun,
		Detail: fmt.Sprintf("continuous run over %ds, suspected cooling failure", cfg.MaxRunSeconds),
	}, true
}

// ruleDynamicDefrost maintains the evaporator-triggered defrost flag and
// forces OFF while it is set.
func ruleDynamicDefrost(in Input, st *State, cfg *config.ControlConfig) (Decision, bool) {
	if in.EvapTemp != nil {
		if *in.EvapTemp <= cfg.DynamicDefrostTriggerC {
			st.DynamicDefrost = true
		} else if *in.EvapTemp >= cfg.DynamicDefrostReleaseC {
			st.DynamicDefrost = false
		}
	}
	if !st.DynamicDefrost {
		return Decision{}, false
	}
	return Decision{WantOn: false, Reason: ReasonDynamicDefrost, Detail: "dynamic defrost"}, true
}

func ruleThermostat(in Input, st *State, cfg *config.ControlConfig) (Decision, bool) {
	band := cfg.BandFor(st.AdaptiveShift, false)
	want := DecideThermostat(in.AirTemp, st.IntendedOn, band)
	return Decision{
		WantOn: want,
		Reason: ReasonThermostat,
		Detail: fmt.Sprintf("band %.1f..%.1f", band.OffBelow, band.OnAbove),
	}, true
}
