package sensor

// Smoother rejects single-sample spikes with a median-of-3 window and
// low-passes the median with an exponential moving average. The buffer is
// fixed-capacity, indices wrap, nothing is allocated after construction.
type Smoother struct {
	Buf   [3]float64
	Count int
	Next  int
	EMA   float64
	Ready bool
}

// Update feeds one raw reading and returns the smoothed value together with
// the advanced smoother state.
func (s Smoother) Update(raw, alpha float64) (float64, Smoother) {
	s.Buf[s.Next] = raw
	s.Next = (s.Next + 1) % len(s.Buf)
	if s.Count < len(s.Buf) {
		s.Count++
	}

	m := s.median()
	if !s.Ready {
		// first sample seeds the average directly, no warm-up bias
		s.EMA = m
		s.Ready = true
	} else {
		s.EMA = m*alpha + s.EMA*(1-alpha)
	}
	return s.EMA, s
}

func (s Smoother) median() float64 {
	switch s.Count {
	case 1:
		return s.Buf[0]
	case 2:
		return (s.Buf[0] + s.Buf[1]) / 2
	}
	a, b, c := s.Buf[0], s.Buf[1], s.Buf[2]
	if a > b {
		a, b = b, a
	}
	if b > c {
		b = c
		if a > b {
			b = a
		}
	}
	return b
}
