package lottery

import (
	"sort"

	"github.com/ArowuTest/promo-lottery/internal/models"
)

// HistoryLedger is the append-only log of completed draws. Entries leave the
// ledger only through UndoLast, Delete, Clear or the length cap.
type HistoryLedger struct {
	entries []models.HistoryEntry
	limit   int
}

// NewHistoryLedger keeps at most limit entries; limit <= 0 means unbounded.
func NewHistoryLedger(limit int) *HistoryLedger {
	return &HistoryLedger{limit: limit}
}

// Len returns the number of entries.
func (h *HistoryLedger) Len() int { return len(h.entries) }

// Record appends e, trimming the oldest entries past the cap.
func (h *HistoryLedger) Record(e models.HistoryEntry) {
	h.entries = append(h.entries, e)
	if h.limit > 0 && len(h.entries) > h.limit {
		h.entries = append([]models.HistoryEntry(nil), h.entries[len(h.entries)-h.limit:]...)
	}
}

// latestIndex finds the entry with the newest timestamp; later appends win ties.
func (h *HistoryLedger) latestIndex() int {
	idx := -1
	for i, e := range h.entries {
		if idx < 0 || !e.Timestamp.Before(h.entries[idx].Timestamp) {
			idx = i
		}
	}
	return idx
}

// Latest returns the most recent entry.
func (h *HistoryLedger) Latest() (models.HistoryEntry, bool) {
	i := h.latestIndex()
	if i < 0 {
		return models.HistoryEntry{}, false
	}
	return h.entries[i], true
}

// UndoLast removes the most recent entry and hands it to apply, which reverses
// its effects on the drawing aggregates. It reports false when the ledger is empty.
func (h *HistoryLedger) UndoLast(apply func(models.HistoryEntry)) (models.HistoryEntry, bool) {
	i := h.latestIndex()
	if i < 0 {
		return models.HistoryEntry{}, false
	}
	e := h.entries[i]
	h.entries = append(h.entries[:i:i], h.entries[i+1:]...)
	if apply != nil {
		apply(e)
	}
	return e, true
}

// Delete prunes an entry from the log without touching any drawing state.
// The draw it describes stays in effect and can no longer be undone.
func (h *HistoryLedger) Delete(id string) bool {
	for i, e := range h.entries {
		if e.ID == id {
			h.entries = append(h.entries[:i:i], h.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Clear drops every entry.
func (h *HistoryLedger) Clear() { h.entries = nil }

// Entries returns the log in append order.
func (h *HistoryLedger) Entries() []models.HistoryEntry {
	return append([]models.HistoryEntry(nil), h.entries...)
}

// Recent returns up to limit entries, newest first. limit <= 0 returns all.
func (h *HistoryLedger) Recent(limit int) []models.HistoryEntry {
	out := h.Entries()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// TierStats summarises the draws recorded for one tier.
type TierStats struct {
	TierLabel string   `json:"awardName"`
	Count     int      `json:"count"`
	Winners   []string `json:"winners"`
}

// HistoryStats summarises the whole ledger.
type HistoryStats struct {
	Total  int                   `json:"totalLotteries"`
	ByTier map[string]TierStats  `json:"awardStats"`
	Recent []models.HistoryEntry `json:"recentActivity"`
}

// Stats counts the recorded draws per tier.
func (h *HistoryLedger) Stats() HistoryStats {
	stats := HistoryStats{
		Total:  len(h.entries),
		ByTier: make(map[string]TierStats),
		Recent: h.Recent(5),
	}
	for _, e := range h.entries {
		s := stats.ByTier[e.TierKey]
		s.TierLabel = e.TierLabel
		s.Count++
		s.Winners = append(s.Winners, e.Winner.NameLocal)
		stats.ByTier[e.TierKey] = s
	}
	return stats
}

// restoreState replaces the log with persisted entries.
func (h *HistoryLedger) restoreState(entries []models.HistoryEntry) {
	h.entries = nil
	for _, e := range entries {
		h.Record(e)
	}
}
