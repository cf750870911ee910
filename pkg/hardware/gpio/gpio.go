// Package gpio drives the compressor relay through the Linux GPIO character
// device and reads DS18B20 probes from the w1 sysfs tree. The real
// implementation only builds on Linux.
package gpio

// Config locates the relay line and the two 1-wire probes.
type Config struct {
	Chip     string
	RelayPin int

	// sysfs temperature files, millidegrees, e.g.
	// /sys/bus/w1/devices/28-xxxx/temperature
	AirSensorPath  string
	EvapSensorPath string
}
