package events

import "sync"

// AnimationType tags animation frames on the wire.
const AnimationType = "animation"

// Animation tells stage screens whether the name carousel is spinning and how fast.
type Animation struct {
	Type    string `json:"type"`
	Running bool   `json:"running"`
	Speed   int    `json:"speed"`
}

// Animator drives the carousel on every connected screen. It implements
// lottery.Animator; screens render frames themselves.
type Animator struct {
	hub *Hub

	mu      sync.Mutex
	running bool
	speed   int
}

// NewAnimator returns an Animator broadcasting through hub.
func NewAnimator(hub *Hub) *Animator {
	return &Animator{hub: hub}
}

func (a *Animator) Start() {
	a.mu.Lock()
	a.running = true
	msg := a.frame()
	a.mu.Unlock()
	a.hub.broadcast(msg)
}

// Cancel stops the carousel. Cancelling a stopped carousel sends nothing.
func (a *Animator) Cancel() {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return
	}
	a.running = false
	msg := a.frame()
	a.mu.Unlock()
	a.hub.broadcast(msg)
}

func (a *Animator) SetSpeed(speed int) {
	a.mu.Lock()
	if a.speed == speed {
		a.mu.Unlock()
		return
	}
	a.speed = speed
	msg := a.frame()
	a.mu.Unlock()
	a.hub.broadcast(msg)
}

// Current returns the carousel state.
func (a *Animator) Current() Animation {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frame()
}

func (a *Animator) frame() Animation {
	return Animation{Type: AnimationType, Running: a.running, Speed: a.speed}
}
