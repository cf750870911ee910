package stats

import (
	"math"
	"time"
)

// Daily accumulates one calendar day of runtime statistics. At local midnight
// the accumulator rolls over: the finished day is returned and a fresh one
// starts counting.
type Daily struct {
	Day string `json:"day"`

	OnSeconds    int64 `json:"onSeconds"`
	TotalSeconds int64 `json:"totalSeconds"`
	CycleCount   int64 `json:"cycleCount"`
	FreezeLocks  int64 `json:"freezeLocks"`

	MinAirC float64 `json:"minAirC"`
	MaxAirC float64 `json:"maxAirC"`
	hasAir  bool
}

func dayKey(now int64) string {
	return time.Unix(now, 0).Local().Format("2006-01-02")
}

// NewDaily starts an empty accumulator for the day containing now.
func NewDaily(now int64) Daily {
	return Daily{
		Day:     dayKey(now),
		MinAirC: math.Inf(1),
		MaxAirC: math.Inf(-1),
	}
}

// DutyPercent is the share of accounted time the compressor ran.
func (d Daily) DutyPercent() float64 {
	if d.TotalSeconds <= 0 {
		return 0
	}
	return 100 * float64(d.OnSeconds) / float64(d.TotalSeconds)
}

// Tick accounts elapsed seconds of compressor state and the current air
// reading. switched marks an off-to-on transition this tick, locked marks a
// freeze lock engagement. When now has crossed local midnight the completed
// day is returned with done=true and the accumulator restarts.
func (d Daily) Tick(now, elapsed int64, on bool, air *float64, switched, locked bool) (cur Daily, completed Daily, done bool) {
	if dayKey(now) != d.Day {
		completed, done = d, true
		d = NewDaily(now)
	}

	d.TotalSeconds += elapsed
	if on {
		d.OnSeconds += elapsed
	}
	if switched {
		d.CycleCount++
	}
	if locked {
		d.FreezeLocks++
	}
	if air != nil {
		if !d.hasAir {
			d.MinAirC = *air
			d.MaxAirC = *air
			d.hasAir = true
		} else {
			if *air < d.MinAirC {
				d.MinAirC = *air
			}
			if *air > d.MaxAirC {
				d.MaxAirC = *air
			}
		}
	}
	return d, completed, done
}
