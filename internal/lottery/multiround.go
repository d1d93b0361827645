package lottery

import (
	"fmt"
	"time"

	"github.com/ArowuTest/promo-lottery/internal/models"
	"github.com/google/logger"
)

// Session is a batch of consecutive draws for one tier.
type Session struct {
	ID         string                `json:"id"`
	TierKey    string                `json:"awardKey"`
	RoundCount int                   `json:"roundCount"`
	Completed  int                   `json:"completed"`
	Active     bool                  `json:"active"`
	AutoStop   bool                  `json:"autoStop"`
	Results    []models.WinnerRecord `json:"results"`
}

func (s *Session) clone() Session {
	out := *s
	out.Results = make([]models.WinnerRecord, len(s.Results))
	for i, r := range s.Results {
		out.Results[i] = r.Clone()
	}
	return out
}

// MultiRoundCoordinator runs a session of draws back to back: after each
// settle it waits SettleDelay and arms the next round, until the session is
// complete or the tier or pool runs dry. It shares the engine lock.
type MultiRoundCoordinator struct {
	e           *Engine
	session     *Session
	last        *Session
	timer       Timer
	gen         uint64
	maxRounds   int
	settleDelay time.Duration
}

// Start begins a session of rounds draws for tierKey (or the selected tier).
// With autoStop the coordinator also stops each spin as soon as it locks.
func (m *MultiRoundCoordinator) Start(tierKey string, rounds int, autoStop bool) error {
	e := m.e
	e.mu.Lock()
	defer e.unlock()
	if m.activeLocked() || e.busy() {
		return ErrDrawInProgress
	}
	if tierKey == "" {
		tierKey = e.selectedTier
	}
	if _, ok := e.inventory.Tier(tierKey); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTier, tierKey)
	}
	if rounds < 1 || (m.maxRounds > 0 && rounds > m.maxRounds) {
		return fmt.Errorf("%w: %d", ErrInvalidRoundCount, rounds)
	}
	if left := e.inventory.Remaining(tierKey); rounds > left {
		return fmt.Errorf("%w: %d requested, %d left", ErrInsufficientQuota, rounds, left)
	}

	m.session = &Session{
		ID:         e.newID(),
		TierKey:    tierKey,
		RoundCount: rounds,
		Active:     true,
		AutoStop:   autoStop,
		Results:    []models.WinnerRecord{},
	}
	if err := e.startLocked(tierKey); err != nil {
		m.session = nil
		return err
	}
	e.emit(Event{Type: EventMultiRoundStarted, TierKey: tierKey, Round: 1, Rounds: rounds})
	logger.Infof("lottery: multi-round session of %d for %s started", rounds, tierKey)
	return nil
}

// Cancel ends the active session. A draw already in flight finishes normally.
func (m *MultiRoundCoordinator) Cancel() bool {
	e := m.e
	e.mu.Lock()
	defer e.unlock()
	if !m.activeLocked() {
		return false
	}
	m.endLocked(EventMultiRoundCancel, "cancelled")
	return true
}

// Session returns the active session or, failing that, the last one to end.
func (m *MultiRoundCoordinator) Session() (Session, bool) {
	m.e.mu.Lock()
	defer m.e.unlock()
	return m.sessionLocked()
}

func (m *MultiRoundCoordinator) sessionLocked() (Session, bool) {
	switch {
	case m.session != nil:
		return m.session.clone(), true
	case m.last != nil:
		return m.last.clone(), true
	}
	return Session{}, false
}

func (m *MultiRoundCoordinator) activeLocked() bool {
	return m.session != nil && m.session.Active
}

// pendingLocked reports whether the next round is scheduled.
func (m *MultiRoundCoordinator) pendingLocked() bool {
	return m.activeLocked() && m.timer != nil
}

func (m *MultiRoundCoordinator) autoStopLocked() bool {
	return m.activeLocked() && m.session.AutoStop
}

func (m *MultiRoundCoordinator) markerLocked() *models.RoundMarker {
	if !m.activeLocked() {
		return nil
	}
	return &models.RoundMarker{
		IsMultiRound: true,
		SessionID:    m.session.ID,
		RoundIndex:   m.session.Completed + 1,
		TotalRounds:  m.session.RoundCount,
	}
}

// advanceLocked counts a settled round and schedules the next one.
func (m *MultiRoundCoordinator) advanceLocked(rec models.WinnerRecord) {
	if !m.activeLocked() || rec.TierKey != m.session.TierKey {
		return
	}
	e := m.e
	s := m.session
	s.Completed++
	s.Results = append(s.Results, rec.Clone())
	e.emit(Event{Type: EventMultiRoundAdvance, TierKey: s.TierKey, Round: s.Completed, Rounds: s.RoundCount})

	if s.Completed >= s.RoundCount {
		m.endLocked(EventMultiRoundDone, "")
		return
	}
	if e.inventory.Remaining(s.TierKey) <= 0 {
		m.endLocked(EventMultiRoundPartial, ErrQuotaExhausted.Error())
		return
	}
	if e.pool.IsEmpty() {
		m.endLocked(EventMultiRoundPartial, ErrEmptyPool.Error())
		return
	}
	m.gen++
	gen := m.gen
	m.timer = e.clock.AfterFunc(m.settleDelay, func() { m.rearm(gen) })
}

func (m *MultiRoundCoordinator) rearm(gen uint64) {
	e := m.e
	e.mu.Lock()
	defer e.unlock()
	if m.gen != gen || !m.activeLocked() {
		return
	}
	m.timer = nil
	if err := e.startLocked(m.session.TierKey); err != nil {
		logger.Warningf("lottery: multi-round stopped after %d of %d rounds: %v",
			m.session.Completed, m.session.RoundCount, err)
		m.endLocked(EventMultiRoundPartial, err.Error())
	}
}

// undoLocked takes an undone round of the active session off its tally.
// Rounds of earlier sessions leave it alone.
func (m *MultiRoundCoordinator) undoLocked(entry models.HistoryEntry) {
	if !m.activeLocked() || entry.MultiRound == nil || entry.MultiRound.SessionID != m.session.ID {
		return
	}
	s := m.session
	if s.Completed > 0 {
		s.Completed--
	}
	for i, r := range s.Results {
		if r.ID == entry.Record.ID {
			s.Results = append(s.Results[:i:i], s.Results[i+1:]...)
			break
		}
	}
}

// endLocked closes the active session, if any, and publishes why.
func (m *MultiRoundCoordinator) endLocked(t EventType, msg string) {
	if !m.activeLocked() {
		return
	}
	m.gen++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	s := m.session
	s.Active = false
	m.session = nil
	m.last = s
	m.e.emit(Event{Type: t, TierKey: s.TierKey, Round: s.Completed, Rounds: s.RoundCount, Message: msg})
	if t != EventMultiRoundDone {
		logger.Infof("lottery: multi-round for %s ended after %d of %d rounds: %s",
			s.TierKey, s.Completed, s.RoundCount, msg)
	}
}
