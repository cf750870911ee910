package config

import (
	"fmt"
	"math"
)

// ControlConfig holds every control tunable. Out-of-range fields are reverted
// to their default by Validate so the controller never runs with an
// inconsistent threshold set.
type ControlConfig struct {
	SetpointC    float64 `json:"setpointC"`
	SetpointMinC float64 `json:"setpointMinC"`
	SetpointMaxC float64 `json:"setpointMaxC"`
	HysteresisC  float64 `json:"hysteresisC"`

	MinOnSeconds  int64 `json:"minOnSeconds"`
	MinOffSeconds int64 `json:"minOffSeconds"`
	MaxRunSeconds int64 `json:"maxRunSeconds"`

	FreezeStartC            float64 `json:"freezeStartC"`
	FreezeStopC             float64 `json:"freezeStopC"`
	FreezeLockHysteresisC   float64 `json:"freezeLockHysteresisC"`
	FreezeRecoverHystC      float64 `json:"freezeRecoverHystC"`
	FreezeRecoverDelaySec   int64   `json:"freezeRecoverDelaySec"`
	DynamicDefrostTriggerC  float64 `json:"dynamicDefrostTriggerC"`
	DynamicDefrostReleaseC  float64 `json:"dynamicDefrostReleaseC"`
	DefrostIntervalSeconds  int64   `json:"defrostIntervalSeconds"`
	DefrostDurationSeconds  int64   `json:"defrostDurationSeconds"`
	TurboTargetOffsetC      float64 `json:"turboTargetOffsetC"`
	TurboMaxSeconds         int64   `json:"turboMaxSeconds"`
	LimpOnSeconds           int64   `json:"limpOnSeconds"`
	LimpOffSeconds          int64   `json:"limpOffSeconds"`
	WeldDeltaC              float64 `json:"weldDeltaC"`
	WeldCheckDelaySeconds   int64   `json:"weldCheckDelaySeconds"`
	HealthScoreMinRunSec    int64   `json:"healthScoreMinRunSec"`
	LockedRotorCurrentA     float64 `json:"lockedRotorCurrentA"`
	GhostRunPowerW          float64 `json:"ghostRunPowerW"`
	AdaptiveHighDutyPercent float64 `json:"adaptiveHighDutyPercent"`
	AdaptiveLowDutyPercent  float64 `json:"adaptiveLowDutyPercent"`
	AdaptiveStepC           float64 `json:"adaptiveStepC"`
	AdaptiveMinShiftC       float64 `json:"adaptiveMinShiftC"`
	AdaptiveMaxShiftC       float64 `json:"adaptiveMaxShiftC"`
	AdaptiveIntervalSeconds int64   `json:"adaptiveIntervalSeconds"`

	SensorNoReadingSeconds int64   `json:"sensorNoReadingSeconds"`
	SensorCriticalSeconds  int64   `json:"sensorCriticalSeconds"`
	SensorStuckSeconds     int64   `json:"sensorStuckSeconds"`
	SensorEpsilonC         float64 `json:"sensorEpsilonC"`
	SmootherAlpha          float64 `json:"smootherAlpha"`
}

// DefaultControlConfig returns the shipped defaults for a single compressor
// cabinet fridge.
func DefaultControlConfig() ControlConfig {
	return ControlConfig{
		SetpointC:    4.0,
		SetpointMinC: -30.0,
		SetpointMaxC: 15.0,
		HysteresisC:  0.5,

		MinOnSeconds:  180,
		MinOffSeconds: 300,
		MaxRunSeconds: 3 * 3600,

		FreezeStartC:           -16.0,
		FreezeStopC:            -12.0,
		FreezeLockHysteresisC:  0.3,
		FreezeRecoverHystC:     0.5,
		FreezeRecoverDelaySec:  300,
		DynamicDefrostTriggerC: -20.0,
		DynamicDefrostReleaseC: -5.0,
		DefrostIntervalSeconds: 6 * 3600,
		DefrostDurationSeconds: 20 * 60,
		TurboTargetOffsetC:     2.0,
		TurboMaxSeconds:        2 * 3600,
		LimpOnSeconds:          20 * 60,
		LimpOffSeconds:         10 * 60,
		WeldDeltaC:             1.0,
		WeldCheckDelaySeconds:  600,
		HealthScoreMinRunSec:   300,
		LockedRotorCurrentA:    8.0,
		GhostRunPowerW:         30.0,

		AdaptiveHighDutyPercent: 70.0,
		AdaptiveLowDutyPercent:  30.0,
		AdaptiveStepC:           0.1,
		AdaptiveMinShiftC:       0.0,
		AdaptiveMaxShiftC:       1.0,
		AdaptiveIntervalSeconds: 3600,

		SensorNoReadingSeconds: 30,
		SensorCriticalSeconds:  300,
		SensorStuckSeconds:     3600,
		SensorEpsilonC:         0.05,
		SmootherAlpha:          0.2,
	}
}

// Validate reverts every out-of-range or inconsistent field to its default and
// returns a description per rejected field. An empty slice means the config
// was accepted as-is.
func (c *ControlConfig) Validate() []string {
	def := DefaultControlConfig()
	var rejected []string

	reject := func(field string, reset func()) {
		rejected = append(rejected, field)
		reset()
	}

	if !finite(c.SetpointC) || c.SetpointC < c.SetpointMinC || c.SetpointC > c.SetpointMaxC {
		reject(fmt.Sprintf("setpointC=%v outside [%v,%v]", c.SetpointC, c.SetpointMinC, c.SetpointMaxC), func() { c.SetpointC = def.SetpointC })
	}
	if !finite(c.HysteresisC) || c.HysteresisC <= 0 {
		reject(fmt.Sprintf("hysteresisC=%v must be > 0", c.HysteresisC), func() { c.HysteresisC = def.HysteresisC })
	}
	if c.MinOnSeconds <= 0 {
		reject(fmt.Sprintf("minOnSeconds=%d must be > 0", c.MinOnSeconds), func() { c.MinOnSeconds = def.MinOnSeconds })
	}
	if c.MinOffSeconds <= 0 {
		reject(fmt.Sprintf("minOffSeconds=%d must be > 0", c.MinOffSeconds), func() { c.MinOffSeconds = def.MinOffSeconds })
	}
	if c.MaxRunSeconds <= 0 {
		reject(fmt.Sprintf("maxRunSeconds=%d must be > 0", c.MaxRunSeconds), func() { c.MaxRunSeconds = def.MaxRunSeconds })
	}
	if !finite(c.FreezeStartC) || !finite(c.FreezeStopC) || c.FreezeStartC >= c.FreezeStopC {
		reject(fmt.Sprintf("freeze thresholds start=%v stop=%v require start < stop", c.FreezeStartC, c.FreezeStopC), func() {
			c.FreezeStartC = def.FreezeStartC
			c.FreezeStopC = def.FreezeStopC
		})
	}
	if !finite(c.FreezeLockHysteresisC) || c.FreezeLockHysteresisC < 0 {
		reject(fmt.Sprintf("freezeLockHysteresisC=%v must be >= 0", c.FreezeLockHysteresisC), func() { c.FreezeLockHysteresisC = def.FreezeLockHysteresisC })
	}
	if !finite(c.FreezeRecoverHystC) || c.FreezeRecoverHystC < 0 {
		reject(fmt.Sprintf("freezeRecoverHystC=%v must be >= 0", c.FreezeRecoverHystC), func() { c.FreezeRecoverHystC = def.FreezeRecoverHystC })
	}
	if c.FreezeRecoverDelaySec <= 0 {
		reject(fmt.Sprintf("freezeRecoverDelaySec=%d must be > 0", c.FreezeRecoverDelaySec), func() { c.FreezeRecoverDelaySec = def.FreezeRecoverDelaySec })
	}
	if c.LimpOnSeconds <= 0 || c.LimpOffSeconds <= 0 {
		reject(fmt.Sprintf("limp cycle on=%d off=%d must be > 0", c.LimpOnSeconds, c.LimpOffSeconds), func() {
			c.LimpOnSeconds = def.LimpOnSeconds
			c.LimpOffSeconds = def.LimpOffSeconds
		})
	}
	if !finite(c.AdaptiveHighDutyPercent) || !finite(c.AdaptiveLowDutyPercent) || c.AdaptiveLowDutyPercent >= c.AdaptiveHighDutyPercent {
		reject(fmt.Sprintf("adaptive duty thresholds low=%v high=%v require low < high", c.AdaptiveLowDutyPercent, c.AdaptiveHighDutyPercent), func() {
			c.AdaptiveHighDutyPercent = def.AdaptiveHighDutyPercent
			c.AdaptiveLowDutyPercent = def.AdaptiveLowDutyPercent
		})
	}
	if !finite(c.AdaptiveStepC) || c.AdaptiveStepC <= 0 {
		reject(fmt.Sprintf("adaptiveStepC=%v must be > 0", c.AdaptiveStepC), func() { c.AdaptiveStepC = def.AdaptiveStepC })
	}
	if !finite(c.AdaptiveMinShiftC) || !finite(c.AdaptiveMaxShiftC) || c.AdaptiveMinShiftC > c.AdaptiveMaxShiftC {
		reject(fmt.Sprintf("adaptive shift range min=%v max=%v invalid", c.AdaptiveMinShiftC, c.AdaptiveMaxShiftC), func() {
			c.AdaptiveMinShiftC = def.AdaptiveMinShiftC
			c.AdaptiveMaxShiftC = def.AdaptiveMaxShiftC
		})
	}
	if c.SensorNoReadingSeconds <= 0 {
		reject(fmt.Sprintf("sensorNoReadingSeconds=%d must be > 0", c.SensorNoReadingSeconds), func() { c.SensorNoReadingSeconds = def.SensorNoReadingSeconds })
	}
	if c.SensorStuckSeconds <= 0 {
		reject(fmt.Sprintf("sensorStuckSeconds=%d must be > 0", c.SensorStuckSeconds), func() { c.SensorStuckSeconds = def.SensorStuckSeconds })
	}
	if !finite(c.SensorEpsilonC) || c.SensorEpsilonC < 0 {
		reject(fmt.Sprintf("sensorEpsilonC=%v must be >= 0", c.SensorEpsilonC), func() { c.SensorEpsilonC = def.SensorEpsilonC })
	}
	if c.SensorCriticalSeconds <= c.SensorNoReadingSeconds {
		reject(fmt.Sprintf("sensorCriticalSeconds=%d must be > sensorNoReadingSeconds=%d", c.SensorCriticalSeconds, c.SensorNoReadingSeconds), func() { c.SensorCriticalSeconds = def.SensorCriticalSeconds })
	}
	if !finite(c.SmootherAlpha) || c.SmootherAlpha <= 0 || c.SmootherAlpha > 1 {
		reject(fmt.Sprintf("smootherAlpha=%v must be in (0,1]", c.SmootherAlpha), func() { c.SmootherAlpha = def.SmootherAlpha })
	}

	return rejected
}

// Band is the thermostat hysteresis window derived from setpoint, configured
// hysteresis and the adaptive shift. OnAbove is always strictly greater than
// OffBelow because HysteresisC > 0 and shift >= 0 after Validate.
type Band struct {
	OnAbove  float64
	OffBelow float64
}

// BandFor derives the active thermostat band. Turbo substitutes a lower
// target, the adaptive shift widens the band symmetrically.
func (c *ControlConfig) BandFor(adaptiveShift float64, turbo bool) Band {
	target := c.SetpointC
	if turbo {
		target -= c.TurboTargetOffsetC
	}
	half := c.HysteresisC + adaptiveShift
	return Band{
		OnAbove:  target + half,
		OffBelow: target - half,
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
