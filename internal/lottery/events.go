package lottery

import (
	"time"

	"github.com/ArowuTest/promo-lottery/internal/models"
)

// EventType names something that happened on the drawing stage.
type EventType string

const (
	EventStateChanged      EventType = "state"
	EventSpeed             EventType = "speed"
	EventCountdown         EventType = "countdown"
	EventDrawSettled       EventType = "settled"
	EventDrawFailed        EventType = "failed"
	EventUndo              EventType = "undo"
	EventTiersChanged      EventType = "tiers"
	EventRosterChanged     EventType = "roster"
	EventMultiRoundStarted EventType = "multi_round_started"
	EventMultiRoundAdvance EventType = "multi_round_advance"
	EventMultiRoundDone    EventType = "multi_round_finished"
	EventMultiRoundPartial EventType = "multi_round_partial"
	EventMultiRoundCancel  EventType = "multi_round_cancelled"
)

// Event is published to subscribers after the engine state changed.
type Event struct {
	Type      EventType            `json:"type"`
	State     State                `json:"state"`
	TierKey   string               `json:"tierKey,omitempty"`
	Winner    *models.WinnerRecord `json:"winner,omitempty"`
	Speed     int                  `json:"speed,omitempty"`
	Countdown int                  `json:"countdown,omitempty"`
	Round     int                  `json:"round,omitempty"`
	Rounds    int                  `json:"rounds,omitempty"`
	Remaining int                  `json:"remaining"`
	PoolSize  int                  `json:"poolSize"`
	Message   string               `json:"message,omitempty"`
	Time      time.Time            `json:"time"`
}

// Notifier receives engine events. Publish is called without the engine lock
// held and must not block for long.
type Notifier interface {
	Publish(Event)
}

// Notifiers fans an event out to several subscribers.
type Notifiers []Notifier

func (ns Notifiers) Publish(e Event) {
	for _, n := range ns {
		if n != nil {
			n.Publish(e)
		}
	}
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Event)

func (f NotifierFunc) Publish(e Event) { f(e) }

// Animator is the visual spin of the candidate list. The engine only starts,
// stops and retunes it; frame timing is the animator's business. Cancel must
// be idempotent.
type Animator interface {
	Start()
	Cancel()
	SetSpeed(speed int)
}

type nopAnimator struct{}

func (nopAnimator) Start()       {}
func (nopAnimator) Cancel()      {}
func (nopAnimator) SetSpeed(int) {}
