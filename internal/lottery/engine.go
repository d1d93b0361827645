package lottery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ArowuTest/promo-lottery/internal/models"
	"github.com/ArowuTest/promo-lottery/internal/storage"
	"github.com/google/logger"
	"github.com/google/uuid"
)

// State is the phase of the current draw.
type State string

const (
	StateIdle      State = "idle"
	StateArmed     State = "armed"
	StateSpinning  State = "spinning"
	StateLocked    State = "locked"
	StateRevealing State = "revealing"
	StateSettled   State = "settled"
)

// Selector picks a winner index from the pool and serves uniform integers.
type Selector interface {
	SelectIndex(pool []models.Candidate, tierKey string) (int, bool)
	IntN(n int) int
}

// Timings drives the visual ramp, the countdown and the pause between rounds.
type Timings struct {
	// RampOffsets are measured from the start of the spin; RampSpeeds[i]
	// applies at RampOffsets[i]. The last step unlocks stopping.
	RampOffsets  []time.Duration
	RampSpeeds   []int
	InitialSpeed int
	RevealSpeed  int
	SettledSpeed int
	// Countdown holds how long each countdown number stays on screen.
	Countdown   []time.Duration
	SettleDelay time.Duration
}

// DefaultTimings matches the stage show: five speed-ups over four seconds,
// a three-two-one countdown and a three second pause between rounds.
func DefaultTimings() Timings {
	return Timings{
		RampOffsets: []time.Duration{
			1000 * time.Millisecond,
			1500 * time.Millisecond,
			3000 * time.Millisecond,
			3500 * time.Millisecond,
			4000 * time.Millisecond,
		},
		RampSpeeds:   []int{15, 20, 30, 50, 90},
		InitialSpeed: 6,
		RevealSpeed:  15,
		SettledSpeed: 8,
		Countdown:    []time.Duration{800 * time.Millisecond, 800 * time.Millisecond, 600 * time.Millisecond},
		SettleDelay:  3 * time.Second,
	}
}

// Options configures an Engine.
type Options struct {
	Tiers      []models.Tier
	Candidates []models.Candidate
	Gifts      []models.Gift

	Selector Selector
	Store    storage.Store
	Animator Animator
	Notifier Notifier
	Clock    Clock
	Timings  *Timings

	HistoryLimit   int
	MaxRounds      int
	PersistTimeout time.Duration
	NewID          func() string
}

// Result is the outcome of a stop request.
type Result struct {
	Winner  models.WinnerRecord `json:"winner"`
	Gift    *models.Gift        `json:"gift,omitempty"`
	Invalid bool                `json:"invalid,omitempty"`
}

type pendingDraw struct {
	tierKey   string
	candidate models.Candidate
	gift      *models.Gift
	record    models.WinnerRecord
}

// Engine runs draws one at a time and owns every piece of drawing state. All
// exported methods are safe for concurrent use; timer callbacks and API calls
// are serialised by one mutex.
type Engine struct {
	mu sync.Mutex

	state        State
	processing   bool
	selectedTier string
	speed        int
	// gen invalidates timer callbacks that belong to an abandoned draw.
	gen uint64

	pool      *CandidatePool
	inventory *TierInventory
	registry  *WinnerRegistry
	history   *HistoryLedger
	rounds    *MultiRoundCoordinator

	rosterBackup []models.Candidate
	giftBackup   []models.Gift

	pending   *pendingDraw
	ramp      *Sequence
	countdown *Sequence

	selector       Selector
	store          storage.Store
	animator       Animator
	notifier       Notifier
	clock          Clock
	timings        Timings
	persistTimeout time.Duration
	newID          func() string

	outbox []Event
}

// New builds an Engine in the idle state.
func New(opts Options) (*Engine, error) {
	if opts.Selector == nil {
		return nil, fmt.Errorf("lottery: a selector is required")
	}
	if err := ValidateTiers(opts.Tiers); err != nil {
		return nil, err
	}
	e := &Engine{
		state:          StateIdle,
		selector:       opts.Selector,
		store:          opts.Store,
		animator:       opts.Animator,
		notifier:       opts.Notifier,
		clock:          opts.Clock,
		timings:        DefaultTimings(),
		persistTimeout: opts.PersistTimeout,
		newID:          opts.NewID,
	}
	if opts.Timings != nil {
		e.timings = *opts.Timings
	}
	if e.animator == nil {
		e.animator = nopAnimator{}
	}
	if e.notifier == nil {
		e.notifier = Notifiers(nil)
	}
	if e.clock == nil {
		e.clock = SystemClock
	}
	if e.persistTimeout <= 0 {
		e.persistTimeout = 5 * time.Second
	}
	if e.newID == nil {
		e.newID = uuid.NewString
	}
	if len(e.timings.RampOffsets) != len(e.timings.RampSpeeds) || len(e.timings.RampOffsets) == 0 {
		return nil, fmt.Errorf("lottery: ramp offsets and speeds must be non-empty and the same length")
	}

	e.pool = NewCandidatePool(opts.Candidates)
	e.rosterBackup = e.pool.List()
	e.inventory = NewTierInventory(opts.Tiers, opts.Gifts, opts.Selector)
	e.giftBackup = e.inventory.Gifts()
	e.registry = NewWinnerRegistry(e.inventory.Keys())
	e.history = NewHistoryLedger(opts.HistoryLimit)
	e.rounds = &MultiRoundCoordinator{e: e, maxRounds: opts.MaxRounds, settleDelay: e.timings.SettleDelay}
	if len(opts.Tiers) > 0 {
		e.selectedTier = opts.Tiers[len(opts.Tiers)-1].Key
	}
	return e, nil
}

// unlock releases the engine and then publishes the events queued while it was held.
func (e *Engine) unlock() {
	events := e.outbox
	e.outbox = nil
	e.mu.Unlock()
	for _, ev := range events {
		e.notifier.Publish(ev)
	}
}

func (e *Engine) emit(ev Event) {
	ev.State = e.state
	if ev.TierKey == "" {
		ev.TierKey = e.selectedTier
	}
	ev.Remaining = e.inventory.Remaining(ev.TierKey)
	ev.PoolSize = e.pool.Len()
	ev.Time = e.clock.Now()
	e.outbox = append(e.outbox, ev)
}

func (e *Engine) setState(s State) {
	if e.state == s {
		return
	}
	e.state = s
	e.emit(Event{Type: EventStateChanged})
}

func (e *Engine) setSpeed(speed int) {
	e.speed = speed
	e.animator.SetSpeed(speed)
}

// busy reports whether a draw is between ARMED and REVEALING.
func (e *Engine) busy() bool {
	switch e.state {
	case StateArmed, StateSpinning, StateLocked, StateRevealing:
		return true
	}
	return false
}

// idleLocked returns to IDLE and clears the processing guard.
func (e *Engine) idleLocked() {
	e.pending = nil
	e.processing = false
	e.setState(StateIdle)
}

// SelectTier chooses the tier the next draw is for.
func (e *Engine) SelectTier(key string) error {
	e.mu.Lock()
	defer e.unlock()
	if e.busy() || e.rounds.activeLocked() {
		return ErrDrawInProgress
	}
	if _, ok := e.inventory.Tier(key); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTier, key)
	}
	e.selectedTier = key
	e.persist(storage.KeySelectAward)
	e.emit(Event{Type: EventTiersChanged})
	return nil
}

// Start arms a draw for tierKey (or the selected tier when empty) and starts
// the spin. A settled result still on screen is closed first.
func (e *Engine) Start(tierKey string) error {
	e.mu.Lock()
	defer e.unlock()
	return e.startLocked(tierKey)
}

func (e *Engine) startLocked(tierKey string) error {
	if e.busy() || e.rounds.pendingLocked() {
		return ErrDrawInProgress
	}
	if tierKey == "" {
		tierKey = e.selectedTier
	}
	if tierKey == "" {
		return ErrNoTierSelected
	}
	if _, ok := e.inventory.Tier(tierKey); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTier, tierKey)
	}
	if e.state == StateSettled {
		e.idleLocked()
	}
	if e.processing {
		return ErrDrawInProgress
	}
	if e.pool.IsEmpty() {
		return ErrEmptyPool
	}
	if e.inventory.Remaining(tierKey) <= 0 {
		return ErrQuotaExhausted
	}

	// check and set happen under the same lock
	e.processing = true
	if e.selectedTier != tierKey {
		e.selectedTier = tierKey
		e.persist(storage.KeySelectAward)
	}
	e.gen++
	e.setState(StateArmed)
	e.spinLocked()
	return nil
}

func (e *Engine) spinLocked() {
	gen := e.gen
	e.setSpeed(e.timings.InitialSpeed)
	e.animator.Start()
	e.setState(StateSpinning)

	last := len(e.timings.RampOffsets) - 1
	effects := make([]func(), len(e.timings.RampOffsets))
	for i := range effects {
		speed := e.timings.RampSpeeds[i]
		unlock := i == last
		effects[i] = func() { e.onRamp(gen, speed, unlock) }
	}
	e.ramp = RunSequence(e.clock, StepsAt(e.timings.RampOffsets, effects), nil)
}

func (e *Engine) onRamp(gen uint64, speed int, unlock bool) {
	e.mu.Lock()
	defer e.unlock()
	if e.gen != gen || e.state != StateSpinning {
		return
	}
	e.setSpeed(speed)
	e.emit(Event{Type: EventSpeed, Speed: speed})
	if !unlock {
		return
	}
	e.ramp = nil
	e.setState(StateLocked)
	if e.rounds.autoStopLocked() {
		if _, err := e.stopLocked(); err != nil {
			e.rounds.endLocked(EventMultiRoundPartial, err.Error())
		}
	}
}

// Stop commits the spin: the winner is selected now and revealed once the
// countdown finishes. It fails with ErrNotReady while the spin is still
// ramping up and with ErrAllWeightsZero, leaving the draw LOCKED, when nobody
// can win the tier.
func (e *Engine) Stop() (Result, error) {
	e.mu.Lock()
	defer e.unlock()
	switch e.state {
	case StateLocked:
		return e.stopLocked()
	case StateRevealing:
		return Result{}, ErrDrawInProgress
	default:
		return Result{}, ErrNotReady
	}
}

func (e *Engine) stopLocked() (Result, error) {
	tierKey := e.selectedTier
	idx, ok := e.selector.SelectIndex(e.pool.view(), tierKey)
	if !ok {
		e.emit(Event{Type: EventDrawFailed, Message: ErrAllWeightsZero.Error()})
		return Result{}, ErrAllWeightsZero
	}
	tier, _ := e.inventory.Tier(tierKey)

	cand, valid := e.pool.At(idx)
	if !valid {
		logger.Errorf("lottery: selector returned index %d for a pool of %d", idx, e.pool.Len())
		rec := models.WinnerRecord{
			NameLocal:   "Invalid Winner",
			NameForeign: "Invalid Winner",
			AvatarChar:  "Invalid Winner",
			TierKey:     tierKey,
			TierLabel:   tier.Label,
			Timestamp:   e.clock.Now(),
		}
		e.animator.Cancel()
		e.setSpeed(e.timings.SettledSpeed)
		e.setState(StateSettled)
		e.emit(Event{Type: EventDrawFailed, Winner: &rec, Message: ErrInvalidWinnerIndex.Error()})
		e.rounds.endLocked(EventMultiRoundPartial, ErrInvalidWinnerIndex.Error())
		return Result{Winner: rec, Invalid: true}, ErrInvalidWinnerIndex
	}

	gift := e.inventory.PickGift(tierKey)
	rec := models.WinnerRecord{
		ID:          e.newID(),
		CandidateID: cand.ID,
		NameLocal:   cand.NameLocal,
		NameForeign: cand.NameForeign,
		AvatarChar:  cand.AvatarChar,
		Portrait:    cand.Portrait,
		TierKey:     tierKey,
		TierLabel:   tier.Label,
		Gift:        gift.Clone(),
	}
	e.pending = &pendingDraw{tierKey: tierKey, candidate: cand, gift: gift, record: rec}
	e.setSpeed(e.timings.RevealSpeed)
	e.setState(StateRevealing)

	gen := e.gen
	e.countdown = RunSequence(e.clock, e.countdownSteps(gen), func() { e.onCountdownDone(gen) })
	return Result{Winner: rec, Gift: gift.Clone()}, nil
}

// countdownSteps shows n, n-1 … 1; each number stays up for its configured duration.
func (e *Engine) countdownSteps(gen uint64) []Step {
	n := len(e.timings.Countdown)
	steps := make([]Step, 0, n+1)
	var prev time.Duration
	for i, d := range e.timings.Countdown {
		value := n - i
		steps = append(steps, Step{Delay: prev, Effect: func() { e.onCountdown(gen, value) }})
		prev = d
	}
	return append(steps, Step{Delay: prev})
}

func (e *Engine) onCountdown(gen uint64, value int) {
	e.mu.Lock()
	defer e.unlock()
	if e.gen != gen || e.state != StateRevealing {
		return
	}
	e.emit(Event{Type: EventCountdown, Countdown: value})
}

func (e *Engine) onCountdownDone(gen uint64) {
	e.mu.Lock()
	defer e.unlock()
	if e.gen != gen || e.state != StateRevealing {
		return
	}
	e.countdown = nil
	e.settleLocked()
}

// settleLocked applies the pending result to every aggregate and records it.
func (e *Engine) settleLocked() {
	p := e.pending
	e.pending = nil
	if p == nil {
		e.idleLocked()
		return
	}

	snap := e.snapshotLocked()
	if err := e.inventory.Decrement(p.tierKey); err != nil {
		logger.Errorf("lottery: settling %s for %s: %v", p.candidate.ID, p.tierKey, err)
		e.animator.Cancel()
		e.emit(Event{Type: EventDrawFailed, Message: err.Error()})
		e.idleLocked()
		e.rounds.endLocked(EventMultiRoundPartial, err.Error())
		return
	}
	e.pool.Remove(p.candidate.ID)
	if p.gift != nil && !p.gift.Placeholder {
		e.inventory.ConsumeGift(p.gift.Name, p.tierKey)
	}
	now := e.clock.Now()
	p.record.Timestamp = now
	e.registry.Add(p.tierKey, p.record)
	e.history.Record(models.HistoryEntry{
		ID:         e.newID(),
		Timestamp:  now,
		TierKey:    p.tierKey,
		TierLabel:  p.record.TierLabel,
		Winner:     p.candidate,
		Record:     p.record.Clone(),
		Gift:       p.gift.Clone(),
		Snapshot:   snap,
		MultiRound: e.rounds.markerLocked(),
	})

	e.animator.Cancel()
	e.setSpeed(e.timings.SettledSpeed)
	e.setState(StateSettled)
	rec := p.record.Clone()
	e.emit(Event{Type: EventDrawSettled, TierKey: p.tierKey, Winner: &rec})
	logger.Infof("lottery: %s (%s) won %s", p.record.NameLocal, p.candidate.ID, p.record.TierLabel)
	e.persist(storage.KeyAwardLog, storage.KeyWinnerMap, storage.KeyHistory, storage.KeyPrizeList, storage.KeyLotteryData)

	e.rounds.advanceLocked(p.record)
}

// Close dismisses a settled result and returns to IDLE.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.unlock()
	switch e.state {
	case StateSettled:
		e.idleLocked()
		return nil
	case StateIdle:
		return nil
	default:
		return ErrDrawInProgress
	}
}

// Abort cancels a draw that has not reached the countdown yet. The countdown
// itself cannot be interrupted. An active multi-round session is cancelled too.
func (e *Engine) Abort() error {
	e.mu.Lock()
	defer e.unlock()
	switch e.state {
	case StateRevealing:
		return ErrDrawInProgress
	case StateArmed, StateSpinning, StateLocked:
		e.gen++
		e.ramp.Cancel()
		e.ramp = nil
		e.animator.Cancel()
		e.setSpeed(e.timings.SettledSpeed)
		e.rounds.endLocked(EventMultiRoundCancel, "draw aborted")
		e.idleLocked()
	case StateSettled:
		e.rounds.endLocked(EventMultiRoundCancel, "draw aborted")
		e.idleLocked()
	}
	return nil
}

// Undo reverses the most recent draw. It is refused while a draw is in
// flight and reports ErrNothingToUndo when the history is empty.
func (e *Engine) Undo() (models.HistoryEntry, error) {
	e.mu.Lock()
	defer e.unlock()
	if e.busy() {
		return models.HistoryEntry{}, ErrDrawInProgress
	}
	entry, ok := e.history.UndoLast(e.reverseLocked)
	if !ok {
		return models.HistoryEntry{}, ErrNothingToUndo
	}
	e.rounds.undoLocked(entry)
	if e.state == StateSettled {
		e.idleLocked()
	}
	rec := entry.Record.Clone()
	e.emit(Event{Type: EventUndo, TierKey: entry.TierKey, Winner: &rec})
	logger.Infof("lottery: undid %s for %s", entry.Winner.ID, entry.TierKey)
	e.persist(storage.KeyAwardLog, storage.KeyWinnerMap, storage.KeyHistory, storage.KeyPrizeList, storage.KeyLotteryData)
	return entry, nil
}

// reverseLocked puts the winner back where it was in the pool and gives back
// the quota, the gift and the registry slot.
func (e *Engine) reverseLocked(entry models.HistoryEntry) {
	at := -1
	for i, c := range entry.Snapshot.Pool {
		if c.ID == entry.Winner.ID {
			at = i
			break
		}
	}
	e.pool.Insert(entry.Winner, at)
	e.inventory.Restore(entry.TierKey)
	if entry.Gift != nil && !entry.Gift.Placeholder {
		e.inventory.RestoreGift(entry.Gift.Name, entry.TierKey)
	}
	e.registry.Remove(entry.TierKey, entry.Record.ID)
}

// DeleteHistory prunes one entry from the history without reversing the
// draw it describes; that draw can no longer be undone.
func (e *Engine) DeleteHistory(id string) error {
	e.mu.Lock()
	defer e.unlock()
	if !e.history.Delete(id) {
		return ErrHistoryNotFound
	}
	e.persist(storage.KeyHistory)
	return nil
}

// ClearHistory drops the whole history. Past draws stay in effect.
func (e *Engine) ClearHistory() {
	e.mu.Lock()
	defer e.unlock()
	e.history.Clear()
	if e.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), e.persistTimeout)
		defer cancel()
		if err := e.store.Remove(ctx, storage.KeyHistory); err != nil {
			logger.Warningf("lottery: removing history failed: %v", err)
		}
	}
}

// ConfigureTiers replaces the tier list, reconciling quotas, gifts and winners.
func (e *Engine) ConfigureTiers(tiers []models.Tier) error {
	e.mu.Lock()
	defer e.unlock()
	if e.busy() || e.rounds.activeLocked() {
		return ErrDrawInProgress
	}
	if err := e.inventory.Reconfigure(tiers, e.registry.Counts()); err != nil {
		return err
	}
	e.registry.Sync(e.inventory.Keys())
	e.giftBackup = e.inventory.Gifts()
	if _, ok := e.inventory.Tier(e.selectedTier); !ok {
		e.selectedTier = ""
		if len(tiers) > 0 {
			e.selectedTier = tiers[len(tiers)-1].Key
		}
	}
	e.emit(Event{Type: EventTiersChanged})
	e.persist(storage.KeyAwards, storage.KeyAwardLog, storage.KeyWinnerMap, storage.KeyPrizeList, storage.KeySelectAward)
	return nil
}

// LoadCandidates replaces the pool with an imported roster and keeps a backup for Reset.
func (e *Engine) LoadCandidates(cs []models.Candidate) error {
	e.mu.Lock()
	defer e.unlock()
	if e.busy() || e.rounds.activeLocked() {
		return ErrDrawInProgress
	}
	e.pool = NewCandidatePool(cs)
	e.rosterBackup = e.pool.List()
	e.emit(Event{Type: EventRosterChanged})
	e.persist(storage.KeyLotteryData, storage.KeyRosterBackup)
	return nil
}

// SetGifts replaces the gift catalog.
func (e *Engine) SetGifts(gifts []models.Gift) error {
	e.mu.Lock()
	defer e.unlock()
	if e.busy() || e.rounds.activeLocked() {
		return ErrDrawInProgress
	}
	e.inventory.SetGifts(gifts)
	e.giftBackup = e.inventory.Gifts()
	e.persist(storage.KeyPrizeList)
	return nil
}

// UpdateCandidate edits the weights and locked flag of a pending candidate.
func (e *Engine) UpdateCandidate(id string, weights map[string]float64, locked bool) error {
	e.mu.Lock()
	defer e.unlock()
	if e.busy() {
		return ErrDrawInProgress
	}
	if err := e.pool.Update(id, weights, locked); err != nil {
		return err
	}
	e.emit(Event{Type: EventRosterChanged})
	e.persist(storage.KeyLotteryData)
	return nil
}

// Reset returns to the state right after the last import: the imported
// roster, full quotas, restocked gifts and no winners or history. A spin in
// progress is abandoned; a running countdown blocks the reset.
func (e *Engine) Reset() error {
	e.mu.Lock()
	defer e.unlock()
	if e.state == StateRevealing {
		return ErrDrawInProgress
	}
	if len(e.rosterBackup) == 0 {
		return ErrNoBackup
	}
	e.gen++
	e.ramp.Cancel()
	e.ramp = nil
	e.animator.Cancel()
	e.rounds.endLocked(EventMultiRoundCancel, "reset")

	e.pool = NewCandidatePool(e.rosterBackup)
	gifts := append([]models.Gift(nil), e.giftBackup...)
	for i := range gifts {
		gifts[i].RemainingQuantity = gifts[i].TotalQuantity
	}
	e.inventory = NewTierInventory(e.inventory.Tiers(), gifts, e.selector)
	e.registry = NewWinnerRegistry(e.inventory.Keys())
	e.history.Clear()
	e.idleLocked()
	e.emit(Event{Type: EventRosterChanged})
	logger.Infof("lottery: reset to imported roster of %d candidates", e.pool.Len())
	e.persist(storage.KeyAwards, storage.KeyAwardLog, storage.KeyWinnerMap, storage.KeyHistory,
		storage.KeyPrizeList, storage.KeyLotteryData)
	return nil
}

// Rounds returns the multi-round coordinator bound to this engine.
func (e *Engine) Rounds() *MultiRoundCoordinator { return e.rounds }

func (e *Engine) snapshotLocked() models.Snapshot {
	return models.Snapshot{
		Pool:      e.pool.List(),
		Remaining: e.inventory.RemainingAll(),
		Winners:   e.registry.All(),
		Gifts:     e.inventory.Gifts(),
	}
}

// Snapshot returns a deep copy of the pool, quotas, winners and gifts.
func (e *Engine) Snapshot() models.Snapshot {
	e.mu.Lock()
	defer e.unlock()
	return e.snapshotLocked()
}

// TierStatus is a tier with its live counters.
type TierStatus struct {
	models.Tier
	Remaining int `json:"remaining"`
	Winners   int `json:"winners"`
}

// Status is a read-only view of the engine.
type Status struct {
	State        State        `json:"state"`
	Processing   bool         `json:"processing"`
	SelectedTier string       `json:"selectedTier"`
	Speed        int          `json:"speed"`
	PoolSize     int          `json:"poolSize"`
	Tiers        []TierStatus `json:"tiers"`
	HistoryCount int          `json:"historyCount"`
	CanUndo      bool         `json:"canUndo"`
	MultiRound   *Session     `json:"multiRound,omitempty"`
}

// Status reports the current state of the stage.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.unlock()
	st := Status{
		State:        e.state,
		Processing:   e.processing,
		SelectedTier: e.selectedTier,
		Speed:        e.speed,
		PoolSize:     e.pool.Len(),
		HistoryCount: e.history.Len(),
		CanUndo:      e.history.Len() > 0 && !e.busy(),
	}
	for _, t := range e.inventory.Tiers() {
		st.Tiers = append(st.Tiers, TierStatus{
			Tier:      t,
			Remaining: e.inventory.Remaining(t.Key),
			Winners:   e.registry.Count(t.Key),
		})
	}
	if s, ok := e.rounds.sessionLocked(); ok {
		st.MultiRound = &s
	}
	return st
}

// Tiers returns the configured tiers.
func (e *Engine) Tiers() []models.Tier {
	e.mu.Lock()
	defer e.unlock()
	return e.inventory.Tiers()
}

// Candidates returns the pending candidates.
func (e *Engine) Candidates() []models.Candidate {
	e.mu.Lock()
	defer e.unlock()
	return e.pool.List()
}

// Gifts returns the gift catalog with live quantities.
func (e *Engine) Gifts() []models.Gift {
	e.mu.Lock()
	defer e.unlock()
	return e.inventory.Gifts()
}

// Winners returns every tier's winners.
func (e *Engine) Winners() map[string][]models.WinnerRecord {
	e.mu.Lock()
	defer e.unlock()
	return e.registry.All()
}

// History returns up to limit history entries, newest first.
func (e *Engine) History(limit int) []models.HistoryEntry {
	e.mu.Lock()
	defer e.unlock()
	return e.history.Recent(limit)
}

// HistoryStats summarises the history per tier.
func (e *Engine) HistoryStats() HistoryStats {
	e.mu.Lock()
	defer e.unlock()
	return e.history.Stats()
}
