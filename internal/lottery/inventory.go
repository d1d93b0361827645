package lottery

import (
	"fmt"

	"github.com/ArowuTest/promo-lottery/internal/models"
)

// IntNer returns a uniform integer in [0, n).
type IntNer interface {
	IntN(n int) int
}

// TierInventory owns the remaining draw count of every tier and the gift
// catalog handed out with each win.
type TierInventory struct {
	tiers     []models.Tier
	remaining map[string]int
	gifts     []models.Gift
	rnd       IntNer
}

// NewTierInventory starts every tier at its full quota.
func NewTierInventory(tiers []models.Tier, gifts []models.Gift, rnd IntNer) *TierInventory {
	inv := &TierInventory{
		tiers:     append([]models.Tier(nil), tiers...),
		remaining: make(map[string]int, len(tiers)),
		rnd:       rnd,
	}
	for _, t := range tiers {
		inv.remaining[t.Key] = max(t.Quota, 0)
	}
	inv.SetGifts(gifts)
	return inv
}

// DefaultTiers is the tier set a fresh stage starts with.
func DefaultTiers() []models.Tier {
	return []models.Tier{
		{Key: "award1", Label: "First Prize", Quota: 1},
		{Key: "award2", Label: "Second Prize", Quota: 3},
		{Key: "award3", Label: "Third Prize", Quota: 3},
		{Key: "award4", Label: "Souvenir Prize", Quota: 5},
	}
}

// ValidateTiers checks keys are present and unique and quotas are not negative.
func ValidateTiers(tiers []models.Tier) error {
	seen := make(map[string]struct{}, len(tiers))
	for _, t := range tiers {
		if t.Key == "" {
			return fmt.Errorf("%w: empty tier key", ErrInvalidTiers)
		}
		if t.Quota < 0 {
			return fmt.Errorf("%w: tier %q has negative quota", ErrInvalidTiers, t.Key)
		}
		if _, dup := seen[t.Key]; dup {
			return fmt.Errorf("%w: duplicate tier key %q", ErrInvalidTiers, t.Key)
		}
		seen[t.Key] = struct{}{}
	}
	return nil
}

// Tiers returns the configured tiers in display order.
func (inv *TierInventory) Tiers() []models.Tier {
	return append([]models.Tier(nil), inv.tiers...)
}

// Tier looks up a tier by key.
func (inv *TierInventory) Tier(key string) (models.Tier, bool) {
	for _, t := range inv.tiers {
		if t.Key == key {
			return t, true
		}
	}
	return models.Tier{}, false
}

// Keys returns the tier keys in display order.
func (inv *TierInventory) Keys() []string {
	keys := make([]string, len(inv.tiers))
	for i, t := range inv.tiers {
		keys[i] = t.Key
	}
	return keys
}

// Remaining returns how many draws are left for key. Unknown tiers have none.
func (inv *TierInventory) Remaining(key string) int {
	return inv.remaining[key]
}

// RemainingAll returns a copy of the remaining counts.
func (inv *TierInventory) RemainingAll() map[string]int {
	out := make(map[string]int, len(inv.remaining))
	for k, v := range inv.remaining {
		out[k] = v
	}
	return out
}

// Decrement consumes one draw of key.
func (inv *TierInventory) Decrement(key string) error {
	if _, ok := inv.Tier(key); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTier, key)
	}
	if inv.remaining[key] <= 0 {
		return ErrQuotaExhausted
	}
	inv.remaining[key]--
	return nil
}

// Restore gives back one draw of key, never above the tier quota.
func (inv *TierInventory) Restore(key string) {
	t, ok := inv.Tier(key)
	if !ok {
		return
	}
	if inv.remaining[key] < t.Quota {
		inv.remaining[key]++
	}
}

// Gifts returns a copy of the gift catalog.
func (inv *TierInventory) Gifts() []models.Gift {
	return append([]models.Gift(nil), inv.gifts...)
}

// SetGifts replaces the catalog. Gifts of unknown tiers are dropped, a zero
// total quantity counts as one, and a remaining quantity outside [0, total]
// is reset to the total.
func (inv *TierInventory) SetGifts(gifts []models.Gift) {
	inv.gifts = make([]models.Gift, 0, len(gifts))
	for _, g := range gifts {
		if _, ok := inv.Tier(g.TierKey); !ok {
			continue
		}
		if g.TotalQuantity <= 0 {
			g.TotalQuantity = 1
		}
		if g.RemainingQuantity < 0 || g.RemainingQuantity > g.TotalQuantity {
			g.RemainingQuantity = g.TotalQuantity
		}
		inv.gifts = append(inv.gifts, g)
	}
}

// RestockGifts resets every gift to its total quantity.
func (inv *TierInventory) RestockGifts() {
	for i := range inv.gifts {
		inv.gifts[i].RemainingQuantity = inv.gifts[i].TotalQuantity
	}
}

func (inv *TierInventory) giftIndex(name, tierKey string) int {
	for i, g := range inv.gifts {
		if g.Name == name && g.TierKey == tierKey {
			return i
		}
	}
	return -1
}

// PickGift chooses uniformly among the tier's gifts that still have stock.
// Tiers with no catalog, or whose gifts are all gone, get a placeholder
// carrying the tier label.
func (inv *TierInventory) PickGift(tierKey string) *models.Gift {
	t, ok := inv.Tier(tierKey)
	if !ok {
		return nil
	}
	var stocked []int
	for i, g := range inv.gifts {
		if g.TierKey == tierKey && g.RemainingQuantity > 0 {
			stocked = append(stocked, i)
		}
	}
	if len(stocked) == 0 {
		return &models.Gift{
			Name:        t.Label,
			TierKey:     t.Key,
			Description: t.Label,
			Placeholder: true,
		}
	}
	g := inv.gifts[stocked[inv.rnd.IntN(len(stocked))]]
	return &g
}

// ConsumeGift takes one unit of the named gift. It does nothing when the gift
// is unknown or already out of stock.
func (inv *TierInventory) ConsumeGift(name, tierKey string) bool {
	i := inv.giftIndex(name, tierKey)
	if i < 0 || inv.gifts[i].RemainingQuantity <= 0 {
		return false
	}
	inv.gifts[i].RemainingQuantity--
	return true
}

// RestoreGift returns one unit of the named gift, never above its total.
func (inv *TierInventory) RestoreGift(name, tierKey string) bool {
	i := inv.giftIndex(name, tierKey)
	if i < 0 || inv.gifts[i].RemainingQuantity >= inv.gifts[i].TotalQuantity {
		return false
	}
	inv.gifts[i].RemainingQuantity++
	return true
}

// Reconfigure swaps in a new tier list. winnerCounts is the number of winners
// already recorded per tier. Tiers whose quota is unchanged keep their
// remaining count, new tiers start full, tiers with a new quota get whatever
// the quota leaves after existing winners, and removed tiers lose their
// counts and gifts.
func (inv *TierInventory) Reconfigure(tiers []models.Tier, winnerCounts map[string]int) error {
	if err := ValidateTiers(tiers); err != nil {
		return err
	}
	old := make(map[string]models.Tier, len(inv.tiers))
	for _, t := range inv.tiers {
		old[t.Key] = t
	}

	remaining := make(map[string]int, len(tiers))
	for _, t := range tiers {
		prev, existed := old[t.Key]
		switch {
		case !existed:
			remaining[t.Key] = t.Quota
		case prev.Quota == t.Quota:
			remaining[t.Key] = inv.remaining[t.Key]
		default:
			remaining[t.Key] = max(t.Quota-winnerCounts[t.Key], 0)
		}
	}
	inv.tiers = append([]models.Tier(nil), tiers...)
	inv.remaining = remaining
	inv.SetGifts(inv.gifts)
	return nil
}

// restoreState overwrites remaining counts and gifts, used when loading persisted state.
func (inv *TierInventory) restoreState(remaining map[string]int, gifts []models.Gift) {
	for _, t := range inv.tiers {
		if v, ok := remaining[t.Key]; ok {
			inv.remaining[t.Key] = min(max(v, 0), t.Quota)
		}
	}
	if gifts != nil {
		inv.SetGifts(gifts)
	}
}
