package entropy

import "sync"

// Scripted replays a fixed list of float draws in order, cycling when exhausted.
// Intn maps the next float onto [0, n).
type Scripted struct {
	mu     sync.Mutex
	values []float64
	next   int
}

// NewScripted returns a Source that replays values. With no values it always yields 0.
func NewScripted(values ...float64) *Scripted {
	return &Scripted{values: values}
}

func (s *Scripted) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

func (s *Scripted) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	i := int(s.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// Drawn reports how many draws have been consumed.
func (s *Scripted) Drawn() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}
