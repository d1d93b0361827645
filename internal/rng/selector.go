package rng

import (
	"math/rand/v2"
	"sync"

	"github.com/ArowuTest/promo-lottery/internal/models"
)

// Selector picks winners from a candidate pool. It is safe for concurrent use.
type Selector struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSelector builds a Selector on top of any math/rand/v2 source.
func NewSelector(src rand.Source) *Selector {
	return &Selector{rnd: rand.New(src)}
}

// NewSeededSelector returns a reproducible Selector backed by PCG.
func NewSeededSelector(seed uint64) *Selector {
	return NewSelector(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewSecureSelector returns a Selector backed by the AES-CTR CSPRNG.
func NewSecureSelector() (*Selector, error) {
	src, err := NewCSPRNG()
	if err != nil {
		return nil, err
	}
	return NewSelector(src), nil
}

// IntN returns a uniform integer in [0, n). n must be > 0.
func (s *Selector) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.IntN(n)
}

func (s *Selector) float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Float64()
}

// SelectIndex returns the index of the winning candidate for tierKey, or
// (-1, false) when every candidate has zero weight for that tier.
//
// Locked candidates with a positive weight take precedence: when any exist the
// pick is uniform among them and the weighted pool is ignored.
func (s *Selector) SelectIndex(pool []models.Candidate, tierKey string) (int, bool) {
	var locked []int
	for i, c := range pool {
		if c.Locked && c.Weight(tierKey) > 0 {
			locked = append(locked, i)
		}
	}
	if len(locked) > 0 {
		return locked[s.IntN(len(locked))], true
	}

	total := 0.0
	last := -1
	for i, c := range pool {
		w := c.Weight(tierKey)
		if w > 0 {
			total += w
			last = i
		}
	}
	if total <= 0 {
		return -1, false
	}

	r := s.float64() * total
	cum := 0.0
	for i, c := range pool {
		w := c.Weight(tierKey)
		if w <= 0 {
			continue
		}
		cum += w
		if r < cum {
			return i, true
		}
	}
	// r landed on the upper boundary through rounding
	return last, true
}
