package compressor

import "github.com/nordfrost-se/controller/pkg/sensor"

// Alarm identifies a fatal hardware condition. Fatal alarms are never cleared
// automatically, only by an explicit reset command.
type Alarm string

const (
	AlarmNone        Alarm = ""
	AlarmWeld        Alarm = "WELD"
	AlarmLockedRotor Alarm = "LOCKED_ROTOR"
	AlarmGhostRun    Alarm = "GHOST_RUN"
)

// FreezeState tracks the evaporator freeze protection machine. Locked with
// RecoveryStart == 0 is LOCKED, Locked with RecoveryStart != 0 is
// LOCKED_RECOVERING.
type FreezeState struct {
	Locked        bool  `json:"locked"`
	RecoveryStart int64 `json:"recoveryStart"`
	LockCount     int64 `json:"lockCount"`
}

// TimingState carries the short-cycle guard history.
type TimingState struct {
	LastOnTime  int64 `json:"lastOnTime"`
	LastOffTime int64 `json:"lastOffTime"`
}

// State is the single controller aggregate. It is owned by the control loop,
// constructed once at boot and passed explicitly into every component.
type State struct {
	IntendedOn  bool `json:"intendedOn"`
	ConfirmedOn bool `json:"confirmedOn"`

	Timing TimingState `json:"timing"`
	Freeze FreezeState `json:"freeze"`

	AirHealth  sensor.HealthRecord `json:"airHealth"`
	EvapHealth sensor.HealthRecord `json:"evapHealth"`
	AirSmooth  sensor.Smoother     `json:"-"`
	EvapSmooth sensor.Smoother     `json:"-"`

	AdaptiveShift  float64 `json:"adaptiveShift"`
	TurboUntil     int64   `json:"turboUntil"`
	DoorOpen       bool    `json:"-"`
	LimpMode       bool    `json:"-"`
	DynamicDefrost bool    `json:"dynamicDefrost"`

	FatalAlarm Alarm `json:"fatalAlarm"`
	GhostRun   bool  `json:"ghostRun"`

	// temperature snapshots taken on relay transitions
	OnStartAirTemp  *float64 `json:"onStartAirTemp,omitempty"`
	OffStartAirTemp *float64 `json:"offStartAirTemp,omitempty"`

	// duty-cycle accumulators for the current adaptive window
	WindowOnSeconds    int64 `json:"windowOnSeconds"`
	WindowTotalSeconds int64 `json:"windowTotalSeconds"`
}

// NewState builds the boot-time aggregate from the hardware-reported relay
// state. Initialization is pessimistic: a relay reported OFF gets
// lastOffTime=now so a cold start waits out a full MIN_OFF, a relay reported
// ON gets lastOnTime backdated by MIN_ON so the already-running compressor is
// not forced through an artificial extra wait.
func NewState(relayOn bool, now, minOnSec int64) *State {
	st := &State{
		IntendedOn:  relayOn,
		ConfirmedOn: relayOn,
	}
	if relayOn {
		st.Timing.LastOnTime = now - minOnSec
	} else {
		st.Timing.LastOffTime = now
	}
	return st
}

// DutyPercent returns the ON share of the current adaptive window.
func (s *State) DutyPercent() float64 {
	if s.WindowTotalSeconds == 0 {
		return 0
	}
	return float64(s.WindowOnSeconds) / float64(s.WindowTotalSeconds) * 100
}

// ResetWindow starts a fresh duty-cycle window.
func (s *State) ResetWindow() {
	s.WindowOnSeconds = 0
	s.WindowTotalSeconds = 0
}

// TurboActive reports whether an operator boost is running and not expired.
func (s *State) TurboActive(now int64) bool {
	return s.TurboUntil != 0 && now < s.TurboUntil
}
