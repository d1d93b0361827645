package lottery

import "github.com/ArowuTest/promo-lottery/internal/models"

// WinnerRegistry keeps the announced winners of every tier in draw order.
type WinnerRegistry struct {
	winners map[string][]models.WinnerRecord
}

// NewWinnerRegistry creates an empty list for each tier key.
func NewWinnerRegistry(tierKeys []string) *WinnerRegistry {
	r := &WinnerRegistry{winners: make(map[string][]models.WinnerRecord, len(tierKeys))}
	for _, k := range tierKeys {
		r.winners[k] = []models.WinnerRecord{}
	}
	return r
}

// Add appends rec to the tier's winners.
func (r *WinnerRegistry) Add(tierKey string, rec models.WinnerRecord) {
	r.winners[tierKey] = append(r.winners[tierKey], rec.Clone())
}

// Remove drops the winner record with recordID from the tier.
func (r *WinnerRegistry) Remove(tierKey, recordID string) bool {
	list, ok := r.winners[tierKey]
	if !ok {
		return false
	}
	kept := make([]models.WinnerRecord, 0, len(list))
	removed := false
	for _, w := range list {
		if !removed && w.ID == recordID {
			removed = true
			continue
		}
		kept = append(kept, w)
	}
	r.winners[tierKey] = kept
	return removed
}

// ListByTier returns a copy of the tier's winners.
func (r *WinnerRegistry) ListByTier(tierKey string) []models.WinnerRecord {
	list := r.winners[tierKey]
	out := make([]models.WinnerRecord, len(list))
	for i, w := range list {
		out[i] = w.Clone()
	}
	return out
}

// Count returns how many winners the tier has.
func (r *WinnerRegistry) Count(tierKey string) int { return len(r.winners[tierKey]) }

// Counts returns the number of winners per tier.
func (r *WinnerRegistry) Counts() map[string]int {
	out := make(map[string]int, len(r.winners))
	for k, v := range r.winners {
		out[k] = len(v)
	}
	return out
}

// HasAnyWinners reports whether any tier has a winner.
func (r *WinnerRegistry) HasAnyWinners() bool {
	for _, v := range r.winners {
		if len(v) > 0 {
			return true
		}
	}
	return false
}

// All returns a deep copy of every tier's winners.
func (r *WinnerRegistry) All() map[string][]models.WinnerRecord {
	out := make(map[string][]models.WinnerRecord, len(r.winners))
	for k := range r.winners {
		out[k] = r.ListByTier(k)
	}
	return out
}

// Sync reshapes the keyspace to tierKeys: surviving tiers keep their winners,
// new tiers start empty and removed tiers are discarded.
func (r *WinnerRegistry) Sync(tierKeys []string) {
	next := make(map[string][]models.WinnerRecord, len(tierKeys))
	for _, k := range tierKeys {
		if list, ok := r.winners[k]; ok {
			next[k] = list
		} else {
			next[k] = []models.WinnerRecord{}
		}
	}
	r.winners = next
}

// Clear empties every tier's list.
func (r *WinnerRegistry) Clear() {
	for k := range r.winners {
		r.winners[k] = []models.WinnerRecord{}
	}
}

// restoreState loads persisted winners for known tiers.
func (r *WinnerRegistry) restoreState(winners map[string][]models.WinnerRecord) {
	for k := range r.winners {
		if list, ok := winners[k]; ok && list != nil {
			r.winners[k] = list
		}
	}
}
