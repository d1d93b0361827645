package lottery

import "github.com/ArowuTest/promo-lottery/internal/models"

// CandidatePool owns the candidates that have not won yet. It is not safe for
// concurrent use on its own; the Engine serialises access.
type CandidatePool struct {
	candidates []models.Candidate
}

// NewCandidatePool copies cs into a new pool. Duplicate ids keep the first occurrence.
func NewCandidatePool(cs []models.Candidate) *CandidatePool {
	p := &CandidatePool{candidates: make([]models.Candidate, 0, len(cs))}
	seen := make(map[string]struct{}, len(cs))
	for _, c := range cs {
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		p.candidates = append(p.candidates, c.Clone())
	}
	return p
}

// Len returns the number of pending candidates.
func (p *CandidatePool) Len() int { return len(p.candidates) }

// IsEmpty reports whether no candidates are pending.
func (p *CandidatePool) IsEmpty() bool { return len(p.candidates) == 0 }

// IndexOf returns the position of id, or -1.
func (p *CandidatePool) IndexOf(id string) int {
	for i := range p.candidates {
		if p.candidates[i].ID == id {
			return i
		}
	}
	return -1
}

// Get returns a copy of the candidate with id.
func (p *CandidatePool) Get(id string) (models.Candidate, bool) {
	i := p.IndexOf(id)
	if i < 0 {
		return models.Candidate{}, false
	}
	return p.candidates[i].Clone(), true
}

// At returns a copy of the candidate at index i.
func (p *CandidatePool) At(i int) (models.Candidate, bool) {
	if i < 0 || i >= len(p.candidates) {
		return models.Candidate{}, false
	}
	return p.candidates[i].Clone(), true
}

// ListForTier returns every pending candidate, including those whose weight
// for the tier is zero.
func (p *CandidatePool) ListForTier(_ string) []models.Candidate {
	return p.List()
}

// List returns a deep copy of the pending candidates in pool order.
func (p *CandidatePool) List() []models.Candidate {
	out := make([]models.Candidate, len(p.candidates))
	for i, c := range p.candidates {
		out[i] = c.Clone()
	}
	return out
}

// view exposes the backing slice to the selector without copying. Callers must not mutate it.
func (p *CandidatePool) view() []models.Candidate { return p.candidates }

// Remove drops the candidate with id. Removing a missing id is a no-op.
func (p *CandidatePool) Remove(id string) bool {
	i := p.IndexOf(id)
	if i < 0 {
		return false
	}
	p.candidates = append(p.candidates[:i], p.candidates[i+1:]...)
	return true
}

// Insert puts c back at position at (clamped to the pool bounds). It is a
// no-op when a candidate with the same id is already pending.
func (p *CandidatePool) Insert(c models.Candidate, at int) bool {
	if p.IndexOf(c.ID) >= 0 {
		return false
	}
	if at < 0 || at > len(p.candidates) {
		at = len(p.candidates)
	}
	p.candidates = append(p.candidates, models.Candidate{})
	copy(p.candidates[at+1:], p.candidates[at:])
	p.candidates[at] = c.Clone()
	return true
}

// Update replaces the weights and locked flag of a pending candidate. A nil
// weights map leaves the weights unchanged.
func (p *CandidatePool) Update(id string, weights map[string]float64, locked bool) error {
	i := p.IndexOf(id)
	if i < 0 {
		return ErrCandidateNotFound
	}
	if weights != nil {
		w := make(map[string]float64, len(weights))
		for k, v := range weights {
			w[k] = v
		}
		p.candidates[i].Weights = w
	}
	p.candidates[i].Locked = locked
	return nil
}
