package lottery

import (
	"sync"
	"time"
)

// Timer is the handle returned by Clock.AfterFunc.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks. The engine never sleeps; every suspension point
// goes through a Clock so tests can drive time by hand.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

// Step is one entry of a timed sequence: Effect runs Delay after the previous step.
type Step struct {
	Delay  time.Duration
	Effect func()
}

// StepsAt converts absolute offsets from the sequence start into relative steps.
func StepsAt(offsets []time.Duration, effects []func()) []Step {
	steps := make([]Step, len(offsets))
	var prev time.Duration
	for i, at := range offsets {
		steps[i] = Step{Delay: at - prev, Effect: effects[i]}
		prev = at
	}
	return steps
}

// Sequence runs steps one after another and can be cancelled at any step boundary.
type Sequence struct {
	mu        sync.Mutex
	clock     Clock
	steps     []Step
	next      int
	timer     Timer
	cancelled bool
	done      func()
}

// RunSequence starts steps on clock. done runs after the last step unless the
// sequence was cancelled first. Nothing runs synchronously inside RunSequence.
func RunSequence(clock Clock, steps []Step, done func()) *Sequence {
	s := &Sequence{clock: clock, steps: steps, done: done}
	var first time.Duration
	if len(steps) > 0 {
		first = steps[0].Delay
	}
	s.mu.Lock()
	s.timer = clock.AfterFunc(first, s.fire)
	s.mu.Unlock()
	return s
}

func (s *Sequence) fire() {
	s.mu.Lock()
	if s.cancelled {
		s.mu.Unlock()
		return
	}
	var effect func()
	if s.next < len(s.steps) {
		effect = s.steps[s.next].Effect
		s.next++
	}
	s.mu.Unlock()

	if effect != nil {
		effect()
	}

	s.mu.Lock()
	if s.cancelled {
		s.mu.Unlock()
		return
	}
	if s.next < len(s.steps) {
		s.timer = s.clock.AfterFunc(s.steps[s.next].Delay, s.fire)
		s.mu.Unlock()
		return
	}
	s.timer = nil
	done := s.done
	s.done = nil
	s.mu.Unlock()
	if done != nil {
		done()
	}
}

// Cancel stops the sequence. It is idempotent and safe on a nil Sequence.
func (s *Sequence) Cancel() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled {
		return
	}
	s.cancelled = true
	s.done = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Finished reports whether every step ran.
func (s *Sequence) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.cancelled && s.next >= len(s.steps)
}
