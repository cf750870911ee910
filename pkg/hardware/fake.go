package hardware

import "sync"

// Fake is a scripted hardware double for tests and the bench hardware type.
type Fake struct {
	mu sync.Mutex

	Air  *float64
	Evap *float64

	RelayOn    bool
	SetCalls   []bool
	SetErr     error
	SetErrOnce bool
	ReadErr    error
	Closed     bool
}

func NewFake() *Fake {
	return &Fake{}
}

func (h *Fake) ReadTemperature(ch Channel) (*float64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.ReadErr != nil {
		return nil, h.ReadErr
	}
	var v *float64
	switch ch {
	case ChannelAir:
		v = h.Air
	case ChannelEvaporator:
		v = h.Evap
	}
	if v == nil {
		return nil, nil
	}
	cp := *v
	return &cp, nil
}

func (h *Fake) SetRelay(on bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.SetCalls = append(h.SetCalls, on)
	if h.SetErr != nil {
		err := h.SetErr
		if h.SetErrOnce {
			h.SetErr = nil
		}
		return err
	}
	h.RelayOn = on
	return nil
}

func (h *Fake) RelayState() (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.RelayOn, nil
}

func (h *Fake) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Closed = true
	return nil
}

// SetAir scripts the air channel; nil means no reading.
func (h *Fake) SetAir(v *float64) {
	h.mu.Lock()
	h.Air = v
	h.mu.Unlock()
}

// SetEvap scripts the evaporator channel; nil means no reading.
func (h *Fake) SetEvap(v *float64) {
	h.mu.Lock()
	h.Evap = v
	h.mu.Unlock()
}
