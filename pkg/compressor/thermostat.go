package compressor

import "github.com/nordfrost-se/controller/pkg/config"

// DecideThermostat is the base hysteresis decision. A nil temperature holds
// the current relay state rather than oscillating on missing data.
func DecideThermostat(airTemp *float64, relayOn bool, band config.Band) bool {
	if airTemp == nil {
		return relayOn
	}
	if relayOn {
		return *airTemp > band.OffBelow
	}
	return *airTemp >= band.OnAbove
}
