// Copyright 2026 The Canopy Authors
// SPDX-License-Identifier: Apache-2.0

package collapse

import (
	"sync"
	"time"

	"github.com/canopy-ui/canopy/lib/clock"
)

// DefaultDuration is how long a collapse or expand transition runs
// when the panel is not configured otherwise.
const DefaultDuration = 350 * time.Millisecond

// State describes where a panel is in its collapse lifecycle. Exactly
// one state holds at any instant; Collapsing covers both directions of
// travel, with the direction tracked by which command started the
// transition.
type State int

const (
	// Expanded means the panel content is fully visible.
	Expanded State = iota

	// Collapsed means the panel content is fully hidden.
	Collapsed

	// Collapsing means a transition is in flight, in either direction.
	Collapsing
)

// String returns the lowercase state name, matching the style flags an
// embedding layer exposes for presentation.
func (state State) String() string {
	switch state {
	case Expanded:
		return "expanded"
	case Collapsed:
		return "collapsed"
	case Collapsing:
		return "collapsing"
	default:
		return "unknown"
	}
}

// Status is the read-only view of a panel. Embedding layers bind their
// presentation (style classes, glyphs, clipping) to these accessors
// instead of reaching into the state machine.
type Status interface {
	// State returns the current lifecycle state.
	State() State

	// Collapsed reports whether the panel has settled closed.
	Collapsed() bool

	// Transitioning reports whether an animation is in flight.
	Transitioning() bool

	// Opening reports the direction of the current or most recent
	// transition: true when it is (or was) expanding the panel.
	Opening() bool

	// Clipped reports whether content overflow must be clipped.
	// Forced on when a hide starts and released when a show settles.
	Clipped() bool

	// Pristine reports whether no transition has started yet.
	Pristine() bool
}

// Panel is the collapse state machine for a single panel. Commands
// start a height transition; a timer on the injected clock performs
// the completion bookkeeping after exactly the transition duration.
// The timer is deliberately independent of whether any rendered
// animation has caught up; completion time is a contract, not an
// observation.
//
// A new command supersedes an in-flight transition: the pending
// completion is cancelled and the new transition starts from wherever
// the panel currently is.
//
// The zero value is not usable; call NewPanel.
type Panel struct {
	mu    sync.Mutex
	clock clock.Clock

	duration time.Duration
	state    State
	opening  bool
	pristine bool
	clipped  bool

	// generation identifies the current transition. A completion
	// callback carrying a stale generation is ignored, which makes
	// superseded timers harmless even when Stop loses the race.
	generation uint64
	timer      *clock.Timer

	transitionStart    time.Time
	transitionDuration time.Duration
}

// NewPanel creates an expanded, pristine panel with DefaultDuration.
// Callers wanting an initially collapsed panel should follow up with
// SetCollapsed(true): the pristine rule makes that first transition
// instantaneous.
func NewPanel(clk clock.Clock) *Panel {
	return &Panel{
		clock:    clk,
		duration: DefaultDuration,
		state:    Expanded,
		pristine: true,
	}
}

// SetDuration changes the transition duration for future commands. An
// in-flight transition keeps the duration it started with.
func (panel *Panel) SetDuration(duration time.Duration) {
	panel.mu.Lock()
	defer panel.mu.Unlock()
	panel.duration = duration
}

// Duration returns the configured transition duration.
func (panel *Panel) Duration() time.Duration {
	panel.mu.Lock()
	defer panel.mu.Unlock()
	return panel.duration
}

// SetCollapsed commands the panel toward the given position. There is
// deliberately no idempotence guard: commanding the position the panel
// already holds re-runs the transition, matching the contract that a
// repeated input re-triggers its animation.
func (panel *Panel) SetCollapsed(collapsed bool) {
	if collapsed {
		panel.Hide()
	} else {
		panel.Show()
	}
}

// Hide starts a collapse transition. Overflow clipping is forced on
// immediately; the panel lands in Collapsed when the transition timer
// fires.
func (panel *Panel) Hide() {
	panel.begin(false)
}

// Show starts an expand transition. The panel lands in Expanded when
// the transition timer fires, and only then releases overflow
// clipping.
func (panel *Panel) Show() {
	panel.begin(true)
}

func (panel *Panel) begin(opening bool) {
	panel.mu.Lock()
	if panel.timer != nil {
		panel.timer.Stop()
		panel.timer = nil
	}

	duration := panel.duration
	if panel.pristine {
		// The first transition of a panel's life is instantaneous.
		duration = 0
		panel.pristine = false
	}

	panel.state = Collapsing
	panel.opening = opening
	if !opening {
		panel.clipped = true
	}

	panel.generation++
	generation := panel.generation
	panel.transitionStart = panel.clock.Now()
	panel.transitionDuration = duration
	panel.mu.Unlock()

	// Scheduled outside the lock: a zero-duration timer on a test
	// clock fires the callback synchronously.
	timer := panel.clock.AfterFunc(duration, func() {
		panel.complete(generation)
	})

	panel.mu.Lock()
	if panel.generation == generation && panel.state == Collapsing {
		panel.timer = timer
	}
	panel.mu.Unlock()
}

// complete performs the post-transition bookkeeping for the given
// generation. Stale generations were superseded and do nothing.
func (panel *Panel) complete(generation uint64) {
	panel.mu.Lock()
	defer panel.mu.Unlock()
	if panel.generation != generation {
		return
	}
	panel.timer = nil
	if panel.opening {
		panel.state = Expanded
		panel.clipped = false
	} else {
		panel.state = Collapsed
	}
}

// State implements Status.
func (panel *Panel) State() State {
	panel.mu.Lock()
	defer panel.mu.Unlock()
	return panel.state
}

// Collapsed implements Status.
func (panel *Panel) Collapsed() bool {
	return panel.State() == Collapsed
}

// Transitioning implements Status.
func (panel *Panel) Transitioning() bool {
	return panel.State() == Collapsing
}

// Opening implements Status.
func (panel *Panel) Opening() bool {
	panel.mu.Lock()
	defer panel.mu.Unlock()
	return panel.opening
}

// Clipped implements Status.
func (panel *Panel) Clipped() bool {
	panel.mu.Lock()
	defer panel.mu.Unlock()
	return panel.clipped
}

// Pristine implements Status.
func (panel *Panel) Pristine() bool {
	panel.mu.Lock()
	defer panel.mu.Unlock()
	return panel.pristine
}

// Progress returns how far the current transition has advanced at the
// given time, from 0 to 1. Settled panels report 1. Renderers use this
// to interpolate the visible height.
func (panel *Panel) Progress(now time.Time) float64 {
	panel.mu.Lock()
	defer panel.mu.Unlock()
	if panel.state != Collapsing || panel.transitionDuration <= 0 {
		return 1
	}
	fraction := float64(now.Sub(panel.transitionStart)) / float64(panel.transitionDuration)
	if fraction < 0 {
		return 0
	}
	if fraction > 1 {
		return 1
	}
	return fraction
}
