package compressor

import "github.com/nordfrost-se/controller/pkg/config"

// FreezeEvent reports a freeze machine transition for logging.
type FreezeEvent string

const (
	FreezeNoChange          FreezeEvent = ""
	FreezeEngaged           FreezeEvent = "engaged"
	FreezeRecoveryStarted   FreezeEvent = "recovery-started"
	FreezeRecoveryCancelled FreezeEvent = "recovery-cancelled"
	FreezeReleased          FreezeEvent = "released"
)

// EvaluateFreeze advances the evaporator freeze protection machine one tick.
// A nil evaporator reading holds the current state; freeze protection never
// acts on missing data.
func EvaluateFreeze(evapTemp *float64, now int64, st FreezeState, cfg *config.ControlConfig) (FreezeState, FreezeEvent) {
	if evapTemp == nil {
		return st, FreezeNoChange
	}
	temp := *evapTemp

	if !st.Locked {
		if temp <= cfg.FreezeStartC-cfg.FreezeLockHysteresisC {
			st.Locked = true
			st.RecoveryStart = 0
			st.LockCount++
			return st, FreezeEngaged
		}
		return st, FreezeNoChange
	}

	if st.RecoveryStart == 0 {
		if temp >= cfg.FreezeStopC+cfg.FreezeRecoverHystC {
			st.RecoveryStart = now
			return st, FreezeRecoveryStarted
		}
		return st, FreezeNoChange
	}

	// recovering: dropping back below the stop threshold cancels, recovery
	// must be earned again from scratch
	if temp < cfg.FreezeStopC {
		st.RecoveryStart = 0
		return st, FreezeRecoveryCancelled
	}
	if now-st.RecoveryStart >= cfg.FreezeRecoverDelaySec {
		st.Locked = false
		st.RecoveryStart = 0
		return st, FreezeReleased
	}
	return st, FreezeNoChange
}
