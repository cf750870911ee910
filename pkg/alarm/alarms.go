package alarm

import "sync"

const (
	Weld        = "WELD"
	LockedRotor = "LOCKED_ROTOR"
	GhostRun    = "GHOST_RUN"
)

// Fatal alarms latch until an explicit operator reset.
func Fatal(alarm string) bool {
	return alarm == Weld || alarm == LockedRotor
}

type ActiveAlarms struct {
	activeAlarms []string
	sync.RWMutex
}

// Add adds string to alarm list and returns true if it was added. returns false if it already exists.
func (a *ActiveAlarms) Add(alarm string) bool {
	a.Lock()
	defer a.Unlock()
	for _, activeAlarm := range a.activeAlarms {
		if activeAlarm == alarm {
			return false
		}
	}

	a.activeAlarms = append(a.activeAlarms, alarm)
	return true
}

func (a *ActiveAlarms) Has(alarm string) bool {
	a.RLock()
	defer a.RUnlock()
	for _, activeAlarm := range a.activeAlarms {
		if activeAlarm == alarm {
			return true
		}
	}
	return false
}

// FirstFatal returns the highest-priority latched fatal alarm, or "".
func (a *ActiveAlarms) FirstFatal() string {
	a.RLock()
	defer a.RUnlock()
	for _, activeAlarm := range a.activeAlarms {
		if Fatal(activeAlarm) {
			return activeAlarm
		}
	}
	return ""
}

func (a *ActiveAlarms) Active() []string {
	a.RLock()
	defer a.RUnlock()
	out := make([]string, len(a.activeAlarms))
	copy(out, a.activeAlarms)
	return out
}

// Remove drops one alarm, used for conditions that clear themselves.
func (a *ActiveAlarms) Remove(alarm string) bool {
	a.Lock()
	defer a.Unlock()
	for i, activeAlarm := range a.activeAlarms {
		if activeAlarm == alarm {
			a.activeAlarms = append(a.activeAlarms[:i], a.activeAlarms[i+1:]...)
			return true
		}
	}
	return false
}

func (a *ActiveAlarms) Clear() bool {
	hasActive := false
	a.Lock()
	if len(a.activeAlarms) > 0 {
		hasActive = true
		a.activeAlarms = nil
	}
	a.Unlock()
	return hasActive
}
