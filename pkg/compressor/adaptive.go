package compressor

import (
	"math"

	"github.com/nordfrost-se/controller/pkg/config"
)

// AdjustShift nudges the adaptive band shift by one step based on the
// observed duty cycle, clamped to [min,max]. The result is rounded to one
// decimal so repeated step accumulation cannot drift. Non-finite inputs are a
// no-op: duty telemetry noise must never perturb control.
func AdjustShift(dutyPercent, currentShift float64, cfg *config.ControlConfig) (float64, bool) {
	if math.IsNaN(dutyPercent) || math.IsInf(dutyPercent, 0) ||
		math.IsNaN(currentShift) || math.IsInf(currentShift, 0) {
		return currentShift, false
	}

	shift := currentShift
	switch {
	case dutyPercent > cfg.AdaptiveHighDutyPercent && currentShift < cfg.AdaptiveMaxShiftC:
		shift = math.Min(currentShift+cfg.AdaptiveStepC, cfg.AdaptiveMaxShiftC)
	case dutyPercent < cfg.AdaptiveLowDutyPercent && currentShift > cfg.AdaptiveMinShiftC:
		shift = math.Max(currentShift-cfg.AdaptiveStepC, cfg.AdaptiveMinShiftC)
	default:
		return currentShift, false
	}

	shift = math.Round(shift*10) / 10
	return shift, shift != currentShift
}
