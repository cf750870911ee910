package compressor

import (
	"testing"

	"github.com/nordfrost-se/controller/pkg/config"
	"github.com/stretchr/testify/assert"
)

// nowOutsideDefrost is a tick timestamp that does not fall into the scheduled
// defrost window of the default config (interval 21600s, duration 1200s).
const nowOutsideDefrost int64 = 10000

func modeConfig() *config.ControlConfig {
	cfg := config.DefaultControlConfig()
	return &cfg
}

func TestFatalAlarmBeatsEverything(t *testing.T) {
	cfg := modeConfig()
	st := State{
		FatalAlarm: AlarmWeld,
		Freeze:     FreezeState{Locked: true},
		IntendedOn: true,
		Timing:     TimingState{LastOnTime: 1}, // run time over max
	}

	d, _ := Decide(Input{Now: nowOutsideDefrost + cfg.MaxRunSeconds, AirTemp: f(10.0)}, st, cfg)
	assert.False(t, d.WantOn)
	assert.Equal(t, ReasonNone, d.Reason)
	assert.Equal(t, "FATAL: WELD", d.Detail)
}

func TestFatalAlarmStatusIdleWhenRelayOff(t *testing.T) {
	cfg := modeConfig()
	st := State{FatalAlarm: AlarmWeld}

	d, _ := Decide(Input{Now: nowOutsideDefrost}, st, cfg)
	assert.Equal(t, StatusIdle, d.Status)
}

func TestLimpModeBlindCycle(t *testing.T) {
	cfg := modeConfig() // limp on 1200s, off 600s

	// running, schedule not yet elapsed: hold
	st := State{LimpMode: true, IntendedOn: true, Timing: TimingState{LastOnTime: nowOutsideDefrost - 100}}
	d, _ := Decide(Input{Now: nowOutsideDefrost}, st, cfg)
	assert.True(t, d.WantOn)
	assert.Equal(t, ReasonLimp, d.Reason)

	// running past the ON leg: switch off
	st.Timing.LastOnTime = nowOutsideDefrost - cfg.LimpOnSeconds
	d, _ = Decide(Input{Now: nowOutsideDefrost}, st, cfg)
	assert.False(t, d.WantOn)

	// off past the OFF leg: switch on, temperature ignored entirely
	st = State{LimpMode: true, Timing: TimingState{LastOffTime: nowOutsideDefrost - cfg.LimpOffSeconds}}
	d, _ = Decide(Input{Now: nowOutsideDefrost, AirTemp: f(-20.0)}, st, cfg)
	assert.True(t, d.WantOn)
}

func TestTurboUsesTightBand(t *testing.T) {
	cfg := modeConfig() // setpoint 4.0, turbo offset 2.0, hysteresis 0.5

	st := State{TurboUntil: nowOutsideDefrost + 600}
	// 3.0 is inside the normal band but at turbo onAbove (2.0+0.5)
	d, _ := Decide(Input{Now: nowOutsideDefrost, AirTemp: f(3.0)}, st, cfg)
	assert.True(t, d.WantOn)
	assert.Equal(t, ReasonTurbo, d.Reason)

	// expired boost falls through to the thermostat
	st.TurboUntil = nowOutsideDefrost - 1
	d, _ = Decide(Input{Now: nowOutsideDefrost, AirTemp: f(3.0)}, st, cfg)
	assert.False(t, d.WantOn)
	assert.Equal(t, ReasonThermostat, d.Reason)
}

func TestDoorOpenForcesOff(t *testing.T) {
	cfg := modeConfig()
	st := State{DoorOpen: true, IntendedOn: true}

	d, _ := Decide(Input{Now: nowOutsideDefrost, AirTemp: f(10.0)}, st, cfg)
	assert.False(t, d.WantOn)
	assert.Equal(t, ReasonDoorOpen, d.Reason)
}

func TestScheduledDefrostClearsDynamicDefrost(t *testing.T) {
	cfg := modeConfig()
	st := State{DynamicDefrost: true}

	// now inside the window: interval 21600, duration 1200
	d, st2 := Decide(Input{Now: 21600 + 100, AirTemp: f(10.0)}, st, cfg)
	assert.False(t, d.WantOn)
	assert.Equal(t, ReasonDefrost, d.Reason)
	assert.False(t, st2.DynamicDefrost)
}

func TestFreezeLockForcesOffForAnyTemperature(t *testing.T) {
	cfg := modeConfig()

	for _, temp := range []float64{-30, 0, 10, 50} {
		for _, on := range []bool{true, false} {
			st := State{Freeze: FreezeState{Locked: true}, IntendedOn: on, ConfirmedOn: on}
			d, _ := Decide(Input{Now: nowOutsideDefrost, AirTemp: f(temp)}, st, cfg)
			assert.False(t, d.WantOn, "temp %v on %v", temp, on)
			assert.Equal(t, ReasonFreeze, d.Reason)
		}
	}
}

func TestMaxRunProtection(t *testing.T) {
	cfg := modeConfig()
	st := State{
		IntendedOn:  true,
		ConfirmedOn: true,
		Timing:      TimingState{LastOnTime: nowOutsideDefrost},
	}

	// at the ceiling: still allowed
	d, _ := Decide(Input{Now: nowOutsideDefrost + cfg.MaxRunSeconds, AirTemp: f(10.0)}, st, cfg)
	assert.True(t, d.WantOn)

	d, _ = Decide(Input{Now: nowOutsideDefrost + cfg.MaxRunSeconds + 1, AirTemp: f(10.0)}, st, cfg)
	assert.False(t, d.WantOn)
	assert.Equal(t, ReasonMaxRun, d.Reason)
}

func TestDynamicDefrostTriggerAndRelease(t *testing.T) {
	cfg := modeConfig() // trigger -20, release -5

	st := State{IntendedOn: true, ConfirmedOn: true, Timing: TimingState{LastOnTime: nowOutsideDefrost}}
	d, st2 := Decide(Input{Now: nowOutsideDefrost, AirTemp: f(10.0), EvapTemp: f(-21.0)}, st, cfg)
	assert.False(t, d.WantOn)
	assert.Equal(t, ReasonDynamicDefrost, d.Reason)
	assert.True(t, st2.DynamicDefrost)

	// stays triggered until release threshold
	d, st2 = Decide(Input{Now: nowOutsideDefrost + 10, AirTemp: f(10.0), EvapTemp: f(-10.0)}, st2, cfg)
	assert.False(t, d.WantOn)
	assert.True(t, st2.DynamicDefrost)

	d, st2 = Decide(Input{Now: nowOutsideDefrost + 20, AirTemp: f(10.0), EvapTemp: f(-4.0)}, st2, cfg)
	assert.True(t, d.WantOn)
	assert.False(t, st2.DynamicDefrost)
	assert.Equal(t, ReasonThermostat, d.Reason)
}

func TestThermostatIsDefaultPath(t *testing.T) {
	cfg := modeConfig()
	st := State{}

	d, _ := Decide(Input{Now: nowOutsideDefrost, AirTemp: f(6.0)}, st, cfg)
	assert.True(t, d.WantOn)
	assert.Equal(t, ReasonThermostat, d.Reason)
	assert.Equal(t, StatusWantCooling, d.Status)

	st = State{IntendedOn: true, ConfirmedOn: true}
	d, _ = Decide(Input{Now: nowOutsideDefrost, AirTemp: f(3.0)}, st, cfg)
	assert.False(t, d.WantOn)
	assert.Equal(t, StatusWantIdle, d.Status)
}

func TestAdaptiveShiftWidensBand(t *testing.T) {
	cfg := modeConfig()

	// 4.7 would start cooling with no shift (onAbove 4.5) but not with 0.5
	st := State{AdaptiveShift: 0.5}
	d, _ := Decide(Input{Now: nowOutsideDefrost, AirTemp: f(4.7)}, st, cfg)
	assert.False(t, d.WantOn)

	st.AdaptiveShift = 0
	d, _ = Decide(Input{Now: nowOutsideDefrost, AirTemp: f(4.7)}, st, cfg)
	assert.True(t, d.WantOn)
}

func TestRuleOrderIsTotal(t *testing.T) {
	names := []string{}
	for _, r := range Rules() {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{
		"fatal-alarm",
		"limp-mode",
		"turbo",
		"door-open",
		"scheduled-defrost",
		"freeze-protection",
		"max-run",
		"dynamic-defrost",
		"thermostat",
	}, names)
}
