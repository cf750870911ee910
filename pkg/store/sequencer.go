package store

import (
	"errors"
	"sync/atomic"
)

// ErrBusy is returned when a second storage operation is attempted while one
// is already in flight.
var ErrBusy = errors.New("store: operation already in flight")

// Sequencer structurally enforces the at-most-one-in-flight rule for storage
// operations instead of leaving it as a convention.
type Sequencer struct {
	inflight atomic.Bool
}

func NewSequencer() *Sequencer {
	return &Sequencer{}
}

// Do runs fn if no other operation is in flight, otherwise returns ErrBusy
// without running it.
func (q *Sequencer) Do(fn func() error) error {
	if !q.inflight.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer q.inflight.Store(false)
	return fn()
}
