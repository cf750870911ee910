package mqtt

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommandValid(t *testing.T) {
	cmd, err := ParseCommand([]byte(`{"cmd":"boost-on"}`))
	assert.NoError(t, err)
	assert.Equal(t, CmdBoostOn, cmd.Cmd)
	assert.Nil(t, cmd.Value)

	cmd, err = ParseCommand([]byte(`{"cmd":"setpoint","value":5.5}`))
	assert.NoError(t, err)
	assert.Equal(t, CmdSetpoint, cmd.Cmd)
	if assert.NotNil(t, cmd.Value) {
		assert.Equal(t, 5.5, *cmd.Value)
	}
}

func TestParseCommandOversized(t *testing.T) {
	payload := bytes.Repeat([]byte("a"), MaxCommandBytes+1)
	_, err := ParseCommand(payload)
	assert.ErrorContains(t, err, "exceeds cap")
}

func TestParseCommandMalformed(t *testing.T) {
	_, err := ParseCommand([]byte(`{"cmd":`))
	assert.ErrorContains(t, err, "malformed")
}

func TestParseCommandUnknown(t *testing.T) {
	_, err := ParseCommand([]byte(`{"cmd":"reboot"}`))
	assert.ErrorContains(t, err, "unknown command")
}

func TestParseCommandSetpointWithoutValue(t *testing.T) {
	_, err := ParseCommand([]byte(`{"cmd":"setpoint"}`))
	assert.ErrorContains(t, err, "without value")
}
