package sensor

import "math"

// HealthConfig holds the detection thresholds for one monitored sensor.
// CriticalSeconds must be greater than NoReadingSeconds, enforced by
// config.ControlConfig.Validate.
type HealthConfig struct {
	NoReadingSeconds int64
	CriticalSeconds  int64
	StuckSeconds     int64
	EpsilonC         float64
}

// HealthRecord is the per-sensor failure tracking state. LastReadTime == 0
// means the sensor has never produced a reading; absence is then a grace
// period and raises no alerts.
type HealthRecord struct {
	LastRaw        float64 `json:"lastRaw"`
	LastReadTime   int64   `json:"lastReadTime"`
	LastChangeTime int64   `json:"lastChangeTime"`
	NoReadingFired bool    `json:"noReadingFired"`
	StuckFired     bool    `json:"stuckFired"`
	Critical       bool    `json:"critical"`
}

// HealthEvents reports what changed during a single Update, for the caller to
// log and publish. Updating itself has no side effects.
type HealthEvents struct {
	WentOffline  bool
	WentCritical bool
	Recovered    bool
	WentStuck    bool
	Unstuck      bool
	OfflineFor   int64
}

// UpdateHealth advances the failure tracking state with one reading (nil when
// the sensor produced no value this tick).
func UpdateHealth(raw *float64, now int64, rec HealthRecord, cfg HealthConfig) (HealthRecord, HealthEvents) {
	var ev HealthEvents

	if raw != nil {
		if rec.NoReadingFired || rec.Critical {
			ev.Recovered = true
		}
		rec.NoReadingFired = false
		rec.Critical = false

		if rec.LastReadTime == 0 || math.Abs(*raw-rec.LastRaw) > cfg.EpsilonC {
			if rec.StuckFired {
				ev.Unstuck = true
			}
			rec.StuckFired = false
			rec.LastChangeTime = now
		} else if now-rec.LastChangeTime > cfg.StuckSeconds && !rec.StuckFired {
			rec.StuckFired = true
			ev.WentStuck = true
		}

		rec.LastRaw = *raw
		rec.LastReadTime = now
		return rec, ev
	}

	// no reading: before the first ever read there is nothing to measure
	// silence against
	if rec.LastReadTime == 0 {
		return rec, ev
	}

	duration := now - rec.LastReadTime
	if duration > cfg.NoReadingSeconds && !rec.NoReadingFired {
		rec.NoReadingFired = true
		ev.WentOffline = true
		ev.OfflineFor = duration
	}
	if duration > cfg.CriticalSeconds && !rec.Critical {
		rec.Critical = true
		ev.WentCritical = true
		ev.OfflineFor = duration
	}
	return rec, ev
}
