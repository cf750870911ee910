package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func f(v float64) *float64 { return &v }

func localDay(year int, month time.Month, day, hour int) int64 {
	return time.Date(year, month, day, hour, 0, 0, 0, time.Local).Unix()
}

func TestDailyAccumulates(t *testing.T) {
	now := localDay(2026, time.March, 10, 12)
	d := NewDaily(now)

	d, _, done := d.Tick(now, 5, true, f(4.2), true, false)
	assert.False(t, done)
	d, _, done = d.Tick(now+5, 5, false, f(3.8), false, true)
	assert.False(t, done)

	assert.Equal(t, int64(5), d.OnSeconds)
	assert.Equal(t, int64(10), d.TotalSeconds)
	assert.Equal(t, int64(1), d.CycleCount)
	assert.Equal(t, int64(1), d.FreezeLocks)
	assert.Equal(t, 3.8, d.MinAirC)
	assert.Equal(t, 4.2, d.MaxAirC)
	assert.Equal(t, 50.0, d.DutyPercent())
}

func TestDailyNilAirIgnored(t *testing.T) {
	now := localDay(2026, time.March, 10, 12)
	d := NewDaily(now)
	d, _, _ = d.Tick(now, 5, false, nil, false, false)
	assert.Equal(t, int64(5), d.TotalSeconds)
	assert.False(t, d.hasAir)
}

func TestDailyRollover(t *testing.T) {
	before := localDay(2026, time.March, 10, 23)
	d := NewDaily(before)
	d, _, _ = d.Tick(before, 5, true, f(4.0), false, false)

	after := localDay(2026, time.March, 11, 0)
	d, completed, done := d.Tick(after, 5, true, f(3.0), false, false)

	assert.True(t, done)
	assert.Equal(t, "2026-03-10", completed.Day)
	assert.Equal(t, int64(5), completed.OnSeconds)
	assert.Equal(t, 4.0, completed.MaxAirC)

	assert.Equal(t, "2026-03-11", d.Day)
	assert.Equal(t, int64(5), d.TotalSeconds)
	assert.Equal(t, 3.0, d.MinAirC)
}

func TestDutyPercentEmpty(t *testing.T) {
	d := NewDaily(localDay(2026, time.March, 10, 12))
	assert.Equal(t, 0.0, d.DutyPercent())
}
