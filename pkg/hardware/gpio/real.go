//go:build linux

package gpio

import (
	"bytes"
	"fmt"
	"os"
	"strconv"

	"github.com/nordfrost-se/controller/pkg/hardware"
	"github.com/warthog618/go-gpiocdev"
)

type Device struct {
	cfg   Config
	relay *gpiocdev.Line
	on    bool
}

func New(cfg Config) (*Device, error) {
	line, err := gpiocdev.RequestLine(cfg.Chip, cfg.RelayPin, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request relay pin %d: %w", cfg.RelayPin, err)
	}
	return &Device{cfg: cfg, relay: line}, nil
}

func (d *Device) ReadTemperature(ch hardware.Channel) (*float64, error) {
	path := d.cfg.AirSensorPath
	if ch == hardware.ChannelEvaporator {
		path = d.cfg.EvapSensorPath
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading sensor %s: %w", ch, err)
	}
	milli, err := strconv.Atoi(string(bytes.TrimSpace(b)))
	if err != nil {
		// the kernel returns an empty file on a failed conversion
		return nil, nil
	}
	f := float64(milli) / 1000.0
	if f < -55 || f > 125 {
		return nil, nil
	}
	return &f, nil
}

func (d *Device) SetRelay(on bool) error {
	v := 0
	if on {
		v = 1
	}
	if err := d.relay.SetValue(v); err != nil {
		return fmt.Errorf("set relay: %w", err)
	}
	d.on = on
	return nil
}

func (d *Device) RelayState() (bool, error) {
	return d.on, nil
}

func (d *Device) Close() error {
	return d.relay.Close()
}
