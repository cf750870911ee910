package meter

// Diagnosis from one meter sample against the commanded relay state.
type Diagnosis struct {
	LockedRotor bool
	GhostRun    bool
}

// Diagnose compares measured draw against the commanded state. A stalled
// rotor pulls locked-rotor current while commanded ON; ghost run is real
// power draw while commanded OFF (relay stuck or miswired).
func Diagnose(d *Data, commandedOn bool, lockedRotorA, ghostRunW float64) Diagnosis {
	if d == nil {
		return Diagnosis{}
	}
	if commandedOn {
		return Diagnosis{LockedRotor: d.L1_A >= lockedRotorA}
	}
	return Diagnosis{GhostRun: d.Current_W >= ghostRunW}
}
