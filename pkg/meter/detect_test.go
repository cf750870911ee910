package meter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDiagnoseLockedRotor(t *testing.T) {
	d := &Data{L1_A: 9.0}
	assert.True(t, Diagnose(d, true, 8.0, 30.0).LockedRotor)
	assert.False(t, Diagnose(d, true, 8.0, 30.0).GhostRun)

	d.L1_A = 4.0
	assert.False(t, Diagnose(d, true, 8.0, 30.0).LockedRotor)
}

func TestDiagnoseGhostRun(t *testing.T) {
	d := &Data{Current_W: 120.0}
	assert.True(t, Diagnose(d, false, 8.0, 30.0).GhostRun)
	assert.False(t, Diagnose(d, false, 8.0, 30.0).LockedRotor)

	// standby draw below the threshold is fine
	d.Current_W = 5.0
	assert.False(t, Diagnose(d, false, 8.0, 30.0).GhostRun)
}

func TestDiagnoseNilSample(t *testing.T) {
	assert.Equal(t, Diagnosis{}, Diagnose(nil, true, 8.0, 30.0))
}

func TestCacheFresh(t *testing.T) {
	c := &Cache{}
	now := time.Now()
	assert.False(t, c.Fresh(now, time.Minute))

	c.Set(&Data{Time: now.Add(-30 * time.Second)})
	assert.True(t, c.Fresh(now, time.Minute))

	c.Set(&Data{Time: now.Add(-2 * time.Minute)})
	assert.False(t, c.Fresh(now, time.Minute))
}
