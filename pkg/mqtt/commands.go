package mqtt

import (
	"encoding/json"
	"fmt"
)

// MaxCommandBytes caps inbound payloads; anything larger is rejected before
// parsing.
const MaxCommandBytes = 256

const (
	CmdBoostOn    = "boost-on"
	CmdBoostOff   = "boost-off"
	CmdStatus     = "status"
	CmdAlarmReset = "alarm-reset"
	CmdSetpoint   = "setpoint"
)

var allowedCommands = map[string]bool{
	CmdBoostOn:    true,
	CmdBoostOff:   true,
	CmdStatus:     true,
	CmdAlarmReset: true,
	CmdSetpoint:   true,
}

// Command is one whitelisted inbound operation. Value is only meaningful for
// setpoint.
type Command struct {
	Cmd   string   `json:"cmd"`
	Value *float64 `json:"value,omitempty"`
}

// ParseCommand validates size, shape and whitelist membership. A rejected
// command is an error to log, never a reason to crash the loop.
func ParseCommand(payload []byte) (Command, error) {
	var cmd Command
	if len(payload) > MaxCommandBytes {
		return cmd, fmt.Errorf("command payload %d bytes exceeds cap of %d", len(payload), MaxCommandBytes)
	}
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return cmd, fmt.Errorf("malformed command payload: %w", err)
	}
	if !allowedCommands[cmd.Cmd] {
		return cmd, fmt.Errorf("unknown command %q", cmd.Cmd)
	}
	if cmd.Cmd == CmdSetpoint && cmd.Value == nil {
		return cmd, fmt.Errorf("setpoint command without value")
	}
	return cmd, nil
}
