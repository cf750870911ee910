package compressor

import (
	"errors"
	"testing"

	"github.com/nordfrost-se/controller/pkg/hardware"
	"github.com/stretchr/testify/assert"
)

func noPersist(*State) error { return nil }

func TestExecuteNoTransitionIsNoop(t *testing.T) {
	cfg := modeConfig()
	hw := hardware.NewFake()
	st := State{IntendedOn: true, ConfirmedOn: true}

	d := Decision{WantOn: true, Reason: ReasonThermostat}
	_, _, res, err := Execute(d, st, f(4.0), 1000, hw, cfg, noPersist)
	assert.NoError(t, err)
	assert.False(t, res.Switched)
	assert.Empty(t, hw.SetCalls)
}

func TestExecuteBlockedByMinOff(t *testing.T) {
	cfg := modeConfig() // min off 300
	hw := hardware.NewFake()
	st := State{Timing: TimingState{LastOffTime: 900}}

	d := Decision{WantOn: true, Status: StatusWantCooling, Reason: ReasonThermostat}
	d2, st2, res, err := Execute(d, st, f(6.0), 1000, hw, cfg, noPersist)
	assert.NoError(t, err)
	assert.True(t, res.Blocked)
	assert.Equal(t, ReasonMinOff, res.BlockReason)
	assert.Equal(t, int64(200), res.WaitSec)
	assert.Equal(t, int64(1200), res.ClearsAt)
	assert.Contains(t, d2.Detail, "min-off")
	assert.False(t, st2.IntendedOn)
	assert.Empty(t, hw.SetCalls)
}

func TestExecuteSwitchOnSnapshotsBaseline(t *testing.T) {
	cfg := modeConfig()
	hw := hardware.NewFake()
	st := State{Timing: TimingState{LastOffTime: 100}}

	persisted := 0
	persist := func(*State) error { persisted++; return nil }

	d := Decision{WantOn: true, Reason: ReasonThermostat}
	_, st2, res, err := Execute(d, st, f(7.5), 1000, hw, cfg, persist)
	assert.NoError(t, err)
	assert.True(t, res.Switched)
	assert.Equal(t, []bool{true}, hw.SetCalls)
	assert.True(t, st2.IntendedOn)
	assert.True(t, st2.ConfirmedOn)
	assert.Equal(t, int64(1000), st2.Timing.LastOnTime)
	assert.Equal(t, 7.5, *st2.OnStartAirTemp)
	// transitions persist synchronously
	assert.Equal(t, 1, persisted)
}

func TestExecuteSwitchOffComputesHealthScore(t *testing.T) {
	cfg := modeConfig() // health score needs >= 300s runs
	hw := hardware.NewFake()
	hw.RelayOn = true
	st := State{
		IntendedOn:     true,
		ConfirmedOn:    true,
		Timing:         TimingState{LastOnTime: 1000},
		OnStartAirTemp: f(8.0),
	}

	d := Decision{WantOn: false, Reason: ReasonThermostat}
	_, st2, res, err := Execute(d, st, f(4.0), 1600, hw, cfg, noPersist)
	assert.NoError(t, err)
	assert.True(t, res.Switched)
	assert.NotNil(t, res.HealthScore)
	// 4 degrees over 10 minutes
	assert.InDelta(t, 0.4, *res.HealthScore, 1e-9)
	assert.Equal(t, 4.0, *st2.OffStartAirTemp)
	assert.Equal(t, int64(1600), st2.Timing.LastOffTime)
}

func TestExecuteNoHealthScoreForShortRunOrWarming(t *testing.T) {
	cfg := modeConfig()
	hw := hardware.NewFake()
	hw.RelayOn = true

	// short run
	st := State{IntendedOn: true, ConfirmedOn: true, Timing: TimingState{LastOnTime: 1000}, OnStartAirTemp: f(8.0)}
	_, _, res, _ := Execute(Decision{WantOn: false, Reason: ReasonThermostat}, st, f(4.0), 1200, hw, cfg, noPersist)
	assert.Nil(t, res.HealthScore)

	// negative delta
	hw2 := hardware.NewFake()
	hw2.RelayOn = true
	st = State{IntendedOn: true, ConfirmedOn: true, Timing: TimingState{LastOnTime: 1000}, OnStartAirTemp: f(4.0)}
	_, _, res, _ = Execute(Decision{WantOn: false, Reason: ReasonThermostat}, st, f(6.0), 1600, hw2, cfg, noPersist)
	assert.Nil(t, res.HealthScore)
}

func TestExecuteLimpBypassesGuard(t *testing.T) {
	cfg := modeConfig()
	hw := hardware.NewFake()
	// min off would block a normal switch at now=1000
	st := State{LimpMode: true, Timing: TimingState{LastOffTime: 900}}

	d := Decision{WantOn: true, Reason: ReasonLimp}
	_, st2, res, err := Execute(d, st, nil, 1000, hw, cfg, noPersist)
	assert.NoError(t, err)
	assert.True(t, res.Switched)
	assert.True(t, st2.ConfirmedOn)
}

func TestExecuteHoldsWhileFatalAlarm(t *testing.T) {
	cfg := modeConfig()
	hw := hardware.NewFake()
	hw.RelayOn = true
	st := State{IntendedOn: true, ConfirmedOn: true, FatalAlarm: AlarmWeld, Timing: TimingState{LastOnTime: 100}}

	d := Decision{WantOn: false, Reason: ReasonNone, Detail: "FATAL: WELD"}
	_, st2, res, err := Execute(d, st, f(4.0), 1000, hw, cfg, noPersist)
	assert.NoError(t, err)
	assert.False(t, res.Switched)
	assert.Empty(t, hw.SetCalls)
	assert.True(t, st2.ConfirmedOn)
}

func TestExecuteEmergencyOffRetriesOnce(t *testing.T) {
	cfg := modeConfig()
	hw := hardware.NewFake()
	hw.RelayOn = true
	hw.SetErr = errors.New("nack")
	hw.SetErrOnce = true
	st := State{IntendedOn: true, ConfirmedOn: true, Timing: TimingState{LastOnTime: 100}}

	d := Decision{WantOn: false, Reason: ReasonFreeze}
	_, st2, res, err := Execute(d, st, f(4.0), 1000, hw, cfg, noPersist)
	assert.NoError(t, err)
	assert.True(t, res.EmergencyRetried)
	assert.True(t, res.Switched)
	assert.Equal(t, []bool{false, false}, hw.SetCalls)
	assert.False(t, st2.ConfirmedOn)
}

func TestExecuteOnFailureNotRetried(t *testing.T) {
	cfg := modeConfig()
	hw := hardware.NewFake()
	hw.SetErr = errors.New("nack")
	st := State{Timing: TimingState{LastOffTime: 100}}

	d := Decision{WantOn: true, Reason: ReasonThermostat}
	_, st2, res, err := Execute(d, st, f(6.0), 1000, hw, cfg, noPersist)
	assert.NoError(t, err)
	assert.False(t, res.Switched)
	assert.Equal(t, []bool{true}, hw.SetCalls)
	assert.False(t, st2.IntendedOn)
}

func TestCheckWeld(t *testing.T) {
	cfg := modeConfig() // weld delta 1.0, delay 600

	st := State{Timing: TimingState{LastOffTime: 1000}, OffStartAirTemp: f(5.0)}

	// too early after switch off
	assert.False(t, CheckWeld(st, f(3.0), 1100, cfg))

	// late enough and still falling well past the delta
	assert.True(t, CheckWeld(st, f(3.9), 1700, cfg))

	// falling but within the delta: no weld
	assert.False(t, CheckWeld(st, f(4.2), 1700, cfg))

	// compressor intentionally on: not applicable
	st.IntendedOn = true
	assert.False(t, CheckWeld(st, f(3.0), 1700, cfg))

	// no baseline or no reading: no diagnosis
	assert.False(t, CheckWeld(State{Timing: TimingState{LastOffTime: 1000}}, f(3.0), 1700, cfg))
	assert.False(t, CheckWeld(st, nil, 1700, cfg))
}
