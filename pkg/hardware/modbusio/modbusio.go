// Package modbusio drives a modbus TCP I/O module carrying the two
// temperature probes and the compressor relay coil.
package modbusio

import (
	"math"

	"github.com/nordfrost-se/controller/pkg/hardware"
	"github.com/nordfrost-se/controller/pkg/modbusclient"
)

// Register map of the I/O module. Temperatures are input registers scaled by
// 100, the relay is a single coil.
const (
	RegAirTemp  uint16 = 0
	RegEvapTemp uint16 = 1
	CoilRelay   uint16 = 0

	// the module reports an open/shorted probe as this sentinel
	noReadingSentinel = -32768
)

type IO struct {
	client modbusclient.Client
}

func New(client modbusclient.Client) *IO {
	return &IO{client: client}
}

func (io *IO) ReadTemperature(ch hardware.Channel) (*float64, error) {
	reg := RegAirTemp
	if ch == hardware.ChannelEvaporator {
		reg = RegEvapTemp
	}
	raw, err := io.client.ReadInputRegister(reg)
	if err != nil {
		return nil, err
	}
	if raw == noReadingSentinel {
		return nil, nil
	}
	f := float64(raw) / 100.0
	if math.IsNaN(f) || f < -55 || f > 125 {
		// outside the probe's physical range, treat as no reading
		return nil, nil
	}
	return &f, nil
}

func (io *IO) SetRelay(on bool) error {
	_, err := io.client.WriteSingleCoil(CoilRelay, modbusclient.CoilValue(on))
	return err
}

func (io *IO) RelayState() (bool, error) {
	return io.client.ReadCoil(CoilRelay)
}

func (io *IO) Close() error {
	return nil
}
