// Package hardware is the narrow abstraction over the appliance I/O: two
// temperature channels in, one relay out. Implementations exist for modbus
// I/O modules, raspberry pi GPIO and a scripted fake for tests.
package hardware

// Channel identifies a temperature input.
type Channel string

const (
	ChannelAir        Channel = "air"
	ChannelEvaporator Channel = "evaporator"
)

// SensorReader reads one temperature channel. A nil value with nil error
// means the sensor produced no reading this poll; that is a first-class state
// for the decision logic, not an error.
type SensorReader interface {
	ReadTemperature(ch Channel) (*float64, error)
}

// RelayDriver commands the compressor relay. SetRelay returns when the
// hardware has acknowledged the command; a non-nil error is the negative
// acknowledgment. At most one command is ever in flight.
type RelayDriver interface {
	SetRelay(on bool) error
	RelayState() (bool, error)
}

// Interface is the full hardware surface the control loop needs.
type Interface interface {
	SensorReader
	RelayDriver
	Close() error
}
