package lottery

import (
	"context"

	"github.com/ArowuTest/promo-lottery/internal/models"
	"github.com/ArowuTest/promo-lottery/internal/storage"
	"github.com/google/logger"
)

func (e *Engine) valueFor(key string) any {
	switch key {
	case storage.KeyAwards:
		return e.inventory.Tiers()
	case storage.KeyAwardLog:
		return e.inventory.RemainingAll()
	case storage.KeyWinnerMap:
		return e.registry.All()
	case storage.KeyHistory:
		return e.history.Entries()
	case storage.KeySelectAward:
		return e.selectedTier
	case storage.KeyPrizeList:
		return e.inventory.Gifts()
	case storage.KeyLotteryData:
		return e.pool.List()
	case storage.KeyRosterBackup:
		return e.rosterBackup
	}
	return nil
}

// persist writes the named keys. A failed write is logged and the in-memory
// state stays authoritative.
func (e *Engine) persist(keys ...string) {
	if e.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), e.persistTimeout)
	defer cancel()
	for _, k := range keys {
		if err := e.store.Set(ctx, k, e.valueFor(k)); err != nil {
			logger.Warningf("lottery: persisting %s failed, keeping in-memory state: %v", k, err)
		}
	}
}

// Load restores the drawing state saved by a previous run. Missing keys keep
// the values the engine was built with; a key that cannot be read is logged
// and skipped.
func (e *Engine) Load(ctx context.Context) error {
	if e.store == nil {
		return nil
	}
	e.mu.Lock()
	defer e.unlock()
	if e.busy() {
		return ErrDrawInProgress
	}

	get := func(key string, dst any) bool {
		ok, err := e.store.Get(ctx, key, dst)
		if err != nil {
			logger.Warningf("lottery: loading %s: %v", key, err)
			return false
		}
		return ok
	}

	var tiers []models.Tier
	if get(storage.KeyAwards, &tiers) {
		if err := ValidateTiers(tiers); err != nil {
			logger.Warningf("lottery: ignoring stored tiers: %v", err)
		} else {
			e.inventory = NewTierInventory(tiers, e.inventory.Gifts(), e.selector)
			e.registry = NewWinnerRegistry(e.inventory.Keys())
		}
	}

	var remaining map[string]int
	var gifts []models.Gift
	hasRemaining := get(storage.KeyAwardLog, &remaining)
	hasGifts := get(storage.KeyPrizeList, &gifts)
	if !hasRemaining {
		remaining = nil
	}
	if !hasGifts {
		gifts = nil
	}
	e.inventory.restoreState(remaining, gifts)

	var winners map[string][]models.WinnerRecord
	if get(storage.KeyWinnerMap, &winners) {
		e.registry.restoreState(winners)
	}

	var pool []models.Candidate
	if get(storage.KeyLotteryData, &pool) {
		e.pool = NewCandidatePool(pool)
	}
	var backup []models.Candidate
	if get(storage.KeyRosterBackup, &backup) {
		e.rosterBackup = NewCandidatePool(backup).List()
	}

	var entries []models.HistoryEntry
	if get(storage.KeyHistory, &entries) {
		e.history.restoreState(entries)
	}

	var selected string
	if get(storage.KeySelectAward, &selected) {
		if _, ok := e.inventory.Tier(selected); ok {
			e.selectedTier = selected
		}
	}
	e.giftBackup = e.inventory.Gifts()
	for i := range e.giftBackup {
		e.giftBackup[i].RemainingQuantity = e.giftBackup[i].TotalQuantity
	}

	logger.Infof("lottery: loaded %d candidates, %d history entries", e.pool.Len(), e.history.Len())
	e.emit(Event{Type: EventRosterChanged})
	return nil
}
