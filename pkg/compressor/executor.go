package compressor

import (
	"fmt"

	"github.com/nordfrost-se/controller/pkg/config"
	"github.com/nordfrost-se/controller/pkg/hardware"
	"github.com/sirupsen/logrus"
)

// ExecResult describes what the executor did with a decision.
type ExecResult struct {
	Switched         bool
	Blocked          bool
	BlockReason      Reason
	WaitSec          int64
	ClearsAt         int64
	HealthScore      *float64
	EmergencyRetried bool
}

// Execute applies the mode decision to the relay. The limp path switches
// immediately, bypassing the short-cycle guard; the normal path holds while a
// fatal or ghost-run alarm is active, consults the timing guard and persists
// state synchronously on every transition.
func Execute(d Decision, st State, air *float64, now int64, relay hardware.RelayDriver, cfg *config.ControlConfig, persist func(*State) error) (Decision, State, ExecResult, error) {
	var res ExecResult

	if d.WantOn == st.IntendedOn && d.WantOn == st.ConfirmedOn {
		return d, st, res, nil
	}

	if st.LimpMode {
		return switchRelay(d, st, air, now, relay, cfg, persist, &res)
	}

	// an alarmed relay cannot be trusted to follow commands; hold and let
	// the operator reset
	if st.FatalAlarm != AlarmNone || st.GhostRun {
		logrus.WithFields(logrus.Fields{
			"alarm":    st.FatalAlarm,
			"ghostRun": st.GhostRun,
			"wantOn":   d.WantOn,
		}).Warn("executor: holding relay while alarm active")
		return d, st, res, nil
	}

	guard, reason, err := ApplyTimingConstraints(st.ConfirmedOn, d.WantOn, now, st.Timing, cfg.MinOnSeconds, cfg.MinOffSeconds)
	if err != nil {
		return d, st, res, err
	}
	if !guard.Allow {
		res.Blocked = true
		res.WaitSec = guard.RemainingSec
		res.ClearsAt = guard.ClearsAt
		if reason == GuardMinOn {
			res.BlockReason = ReasonMinOn
		} else {
			res.BlockReason = ReasonMinOff
		}
		d.Detail = fmt.Sprintf("%s, %s blocks %ds", d.Detail, reason, guard.RemainingSec)
		return d, st, res, nil
	}

	return switchRelay(d, st, air, now, relay, cfg, persist, &res)
}

func switchRelay(d Decision, st State, air *float64, now int64, relay hardware.RelayDriver, cfg *config.ControlConfig, persist func(*State) error, res *ExecResult) (Decision, State, ExecResult, error) {
	err := relay.SetRelay(d.WantOn)
	if err != nil {
		if !d.WantOn {
			// emergency shutdown gets exactly one retry
			logrus.WithField("error", err).Warn("executor: relay off failed, retrying once")
			res.EmergencyRetried = true
			err = relay.SetRelay(false)
		}
		if err != nil {
			// next tick re-evaluates from scratch
			logrus.WithFields(logrus.Fields{"wantOn": d.WantOn, "error": err}).Error("executor: relay command failed")
			return d, st, *res, nil
		}
	}

	res.Switched = true
	st.IntendedOn = d.WantOn
	st.ConfirmedOn = d.WantOn

	if d.WantOn {
		st.Timing.LastOnTime = now
		// baseline for the cooling health score
		st.OnStartAirTemp = air
	} else {
		st.Timing.LastOffTime = now
		// baseline for weld detection
		st.OffStartAirTemp = air
		res.HealthScore = healthScore(st, air, now, cfg)
	}
	d.Status = statusFor(d.WantOn, st.ConfirmedOn)

	logrus.WithFields(logrus.Fields{
		"on":     d.WantOn,
		"reason": d.Reason,
		"detail": d.Detail,
	}).Info("executor: relay switched")

	if perr := persist(&st); perr != nil {
		return d, st, *res, fmt.Errorf("error persisting state after switch: %w", perr)
	}
	return d, st, *res, nil
}

// healthScore rates the finished ON run in degrees cooled per minute. Runs
// shorter than the configured minimum or with no measurable cooling produce
// no score.
func healthScore(st State, endTemp *float64, now int64, cfg *config.ControlConfig) *float64 {
	if st.OnStartAirTemp == nil || endTemp == nil {
		return nil
	}
	runSec := now - st.Timing.LastOnTime
	if runSec < cfg.HealthScoreMinRunSec {
		return nil
	}
	delta := *st.OnStartAirTemp - *endTemp
	if delta <= 0 {
		return nil
	}
	score := delta / (float64(runSec) / 60.0)
	return &score
}

// CheckWeld diagnoses a relay stuck closed: the compressor was commanded OFF
// long enough ago and the cabinet keeps getting colder anyway.
func CheckWeld(st State, air *float64, now int64, cfg *config.ControlConfig) bool {
	if st.IntendedOn || st.OffStartAirTemp == nil || air == nil {
		return false
	}
	if now-st.Timing.LastOffTime < cfg.WeldCheckDelaySeconds {
		return false
	}
	return *air < *st.OffStartAirTemp-cfg.WeldDeltaC
}
