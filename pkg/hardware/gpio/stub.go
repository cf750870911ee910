//go:build !linux

package gpio

import (
	"errors"

	"github.com/nordfrost-se/controller/pkg/hardware"
)

// Device is not available on non-Linux platforms.
type Device struct{}

func New(cfg Config) (*Device, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

func (d *Device) ReadTemperature(ch hardware.Channel) (*float64, error) {
	return nil, errors.New("gpio: not supported")
}

func (d *Device) SetRelay(on bool) error {
	return errors.New("gpio: not supported")
}

func (d *Device) RelayState() (bool, error) {
	return false, errors.New("gpio: not supported")
}

func (d *Device) Close() error {
	return nil
}
