package compressor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewStatePessimisticWhenOff(t *testing.T) {
	st := NewState(false, 5000, 180)

	assert.False(t, st.IntendedOn)
	// a cold start waits out a full MIN_OFF
	assert.Equal(t, int64(5000), st.Timing.LastOffTime)
	assert.Equal(t, int64(0), st.Timing.LastOnTime)
}

func TestNewStateBackdatesWhenOn(t *testing.T) {
	st := NewState(true, 5000, 180)

	assert.True(t, st.IntendedOn)
	assert.True(t, st.ConfirmedOn)
	// MIN_ON is already satisfied for the running compressor
	assert.Equal(t, int64(4820), st.Timing.LastOnTime)

	res, err := CheckMinOn(true, true, 5000, st.Timing.LastOnTime, 180)
	assert.NoError(t, err)
	assert.True(t, res.Allow)
}

func TestDutyPercent(t *testing.T) {
	st := State{WindowOnSeconds: 30, WindowTotalSeconds: 120}
	assert.Equal(t, 25.0, st.DutyPercent())

	st.ResetWindow()
	assert.Equal(t, 0.0, st.DutyPercent())
}

func TestTurboActive(t *testing.T) {
	st := State{}
	assert.False(t, st.TurboActive(100))

	st.TurboUntil = 200
	assert.True(t, st.TurboActive(100))
	assert.False(t, st.TurboActive(200))
}
