// Package meter reads the compressor energy meter over M-Bus. Current draw
// backs the locked-rotor and ghost-run diagnoses: temperature alone cannot
// tell a stalled motor from a cooling one.
package meter

import (
	"sync"
	"time"
)

type Data struct {
	Id        string    `json:"id"`
	Model     string    `json:"model"`
	Time      time.Time `json:"time"`
	Current_W float64   `json:"w,omitempty"`
	Total_WH  float64   `json:"wh,omitempty"`
	L1_A      float64   `json:"l1_a,omitempty"`
	L1_V      float64   `json:"l1_v,omitempty"`
}

type Cache struct {
	data *Data
	sync.RWMutex
}

func (c *Cache) Get() *Data {
	c.RLock()
	defer c.RUnlock()
	return c.data
}

func (c *Cache) Set(d *Data) {
	c.Lock()
	c.data = d
	c.Unlock()
}

// Fresh reports whether the cached sample is recent enough to act on.
func (c *Cache) Fresh(now time.Time, maxAge time.Duration) bool {
	d := c.Get()
	return d != nil && now.Sub(d.Time) <= maxAge
}
