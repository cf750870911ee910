package compressor

import "fmt"

// GuardResult is the outcome of a short-cycle guard check. When the
// transition is blocked, RemainingSec and ClearsAt describe when the guard
// will allow it.
type GuardResult struct {
	Allow        bool
	RemainingSec int64
	ClearsAt     int64
}

// GuardReason names which guard blocked a transition.
type GuardReason string

const (
	GuardNone   GuardReason = ""
	GuardMinOn  GuardReason = "min-on"
	GuardMinOff GuardReason = "min-off"
)

func validateGuardInput(now, last, minDuration int64) error {
	if now < 0 || last < 0 {
		return fmt.Errorf("timing guard: negative timestamp now=%d last=%d", now, last)
	}
	if last > now {
		return fmt.Errorf("timing guard: last transition %d is after now %d", last, now)
	}
	if minDuration <= 0 {
		return fmt.Errorf("timing guard: minimum duration %d must be > 0", minDuration)
	}
	return nil
}

// CheckMinOn guards turning OFF while currently ON. Any other combination
// trivially allows. The boundary is inclusive: elapsed == minOn allows.
func CheckMinOn(relayOn, wantOff bool, now, lastOnTime, minOnSec int64) (GuardResult, error) {
	if !relayOn || !wantOff {
		return GuardResult{Allow: true}, nil
	}
	if err := validateGuardInput(now, lastOnTime, minOnSec); err != nil {
		return GuardResult{}, err
	}
	elapsed := now - lastOnTime
	if elapsed >= minOnSec {
		return GuardResult{Allow: true}, nil
	}
	return GuardResult{
		Allow:        false,
		RemainingSec: minOnSec - elapsed,
		ClearsAt:     lastOnTime + minOnSec,
	}, nil
}

// CheckMinOff guards turning ON while currently OFF.
func CheckMinOff(relayOn, wantOn bool, now, lastOffTime, minOffSec int64) (GuardResult, error) {
	if relayOn || !wantOn {
		return GuardResult{Allow: true}, nil
	}
	if err := validateGuardInput(now, lastOffTime, minOffSec); err != nil {
		return GuardResult{}, err
	}
	elapsed := now - lastOffTime
	if elapsed >= minOffSec {
		return GuardResult{Allow: true}, nil
	}
	return GuardResult{
		Allow:        false,
		RemainingSec: minOffSec - elapsed,
		ClearsAt:     lastOffTime + minOffSec,
	}, nil
}

// ApplyTimingConstraints runs both guards for the desired state. MIN_ON is
// evaluated first; the guards are mutually exclusive but the order is the
// defined tie-break.
func ApplyTimingConstraints(relayOn, wantOn bool, now int64, timing TimingState, minOnSec, minOffSec int64) (GuardResult, GuardReason, error) {
	res, err := CheckMinOn(relayOn, !wantOn, now, timing.LastOnTime, minOnSec)
	if err != nil {
		return GuardResult{}, GuardNone, err
	}
	if !res.Allow {
		return res, GuardMinOn, nil
	}

	res, err = CheckMinOff(relayOn, wantOn, now, timing.LastOffTime, minOffSec)
	if err != nil {
		return GuardResult{}, GuardNone, err
	}
	if !res.Allow {
		return res, GuardMinOff, nil
	}
	return GuardResult{Allow: true}, GuardNone, nil
}
