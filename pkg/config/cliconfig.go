package config

import (
	"bytes"
	"fmt"
	"os"
	"sync"
)

// CliConfig is loaded by multiconfig from flags/env at startup.
type CliConfig struct {
	LogLevel string `default:"info"`

	// HardwareType selects the relay/sensor driver: modbus, gpio or fake.
	HardwareType string `default:"fake"`
	// Address is the modbus TCP address when HardwareType is modbus.
	Address  string
	GpioChip string `default:"gpiochip0"`
	RelayPin int    `default:"17"`
	// w1 sysfs temperature files when HardwareType is gpio.
	AirSensorFile  string
	EvapSensorFile string

	Broker   string `default:"tcp://127.0.0.1:1883"`
	ClientID string `default:"fridgecontroller"`

	StatePath  string `default:"/var/lib/fridgecontroller/state.db"`
	SerialFile string `default:"/sys/firmware/devicetree/base/serial-number"`

	TickSeconds    int `default:"5"`
	PublishSeconds int `default:"30"`
	SaveSeconds    int `default:"300"`

	MeterEnabled   bool
	MeterDevice    string `default:"/dev/ttyAMA0"`
	MeterPrimaryID int    `default:"1"`
	MeterModel     string `default:"garo-GNM3D-MBUS"`

	Serial string

	mutex sync.RWMutex
}

func (c *CliConfig) SerialID() string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.Serial
}

func (c *CliConfig) LoadSerial() error {
	id, err := os.ReadFile(c.SerialFile)
	if err != nil {
		return fmt.Errorf("error reading serialfile: %w", err)
	}
	c.mutex.Lock()
	c.Serial = string(bytes.TrimSpace(bytes.Trim(id, "\x00")))
	c.mutex.Unlock()
	return nil
}
