// Copyright 2026 The Canopy Authors
// SPDX-License-Identifier: Apache-2.0

package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/junegunn/fzf/src/util"

	"github.com/canopy-ui/canopy/lib/clock"
	"github.com/canopy-ui/canopy/lib/tui"
)

// DefaultDelay is the debounce window between a delayed query edit and
// its recomputation.
const DefaultDelay = 200 * time.Millisecond

// eventBuffer sizes the settlement event channel. Settlements arrive
// at keystroke cadence; a consumer that falls this far behind is not
// rendering anyway, so further events are dropped rather than blocking
// the pipeline.
const eventBuffer = 16

// Lookup produces the option collection for a query. It runs on its
// own goroutine; the context is cancelled when a newer query
// supersedes this one. A lookup that ignores the context is fine, its
// late response is discarded by sequence.
type Lookup[T any] func(ctx context.Context, query string) ([]T, error)

// MatchMode selects how static options are filtered against the query.
type MatchMode int

const (
	// MatchSubstring keeps options whose display text contains the
	// query, case-insensitively. The default.
	MatchSubstring MatchMode = iota

	// MatchFuzzy keeps options the query fuzzy-matches, using the
	// same scoring engine as interactive finders. Result order still
	// follows the option collection, not match score.
	MatchFuzzy
)

// EventKind labels a pipeline event.
type EventKind int

const (
	// EventSettled reports that the result set was recomputed for
	// Event.Query.
	EventSettled EventKind = iota

	// EventLookupError reports that a lookup failed for Event.Query.
	// The previous results remain displayed.
	EventLookupError
)

// Event is a pipeline settlement notice, delivered on [Pipeline.Events].
type Event struct {
	Kind  EventKind
	Query string

	// Delayed is true when the settlement resolves a delayed
	// (debounced) update. Only delayed settlements drive the widget's
	// dropdown open/close policy; immediate updates (selection,
	// clearing) refresh results without touching the dropdown.
	Delayed bool

	// Err is set for EventLookupError.
	Err error
}

// Pipeline transforms a free-text query plus an option source into an
// ordered result list. It is the state core of the search widget but
// has no rendering of its own, so it can back any frontend.
//
// All methods are safe for concurrent use. Work that completes off the
// caller's goroutine (the debounce timer, lookup goroutines) announces
// itself on [Pipeline.Events].
type Pipeline[T any] struct {
	mu    sync.Mutex
	clock clock.Clock
	read  Reader[T]

	delay     time.Duration
	matchMode MatchMode
	retain    bool

	query     string
	options   []T
	results   []T
	searching bool
	selected  *T

	// lookup is non-nil in dynamic mode. Exactly one of static
	// options / dynamic lookup feeds the pipeline, decided by which
	// was configured last.
	lookup       Lookup[T]
	lookupSeq    uint64
	lookupCancel context.CancelFunc

	// debounceGen identifies the newest delayed edit. A debounce
	// timer carrying a stale generation was superseded and does
	// nothing, so at most one pending recomputation is ever honored.
	debounceGen   uint64
	debounceTimer *clock.Timer

	slab   *util.Slab
	events chan Event
}

// NewPipeline creates an empty static-mode pipeline. Display text is
// extracted with read; results are recomputed as [DefaultDelay]-
// debounced edits settle.
func NewPipeline[T any](clk clock.Clock, read Reader[T]) *Pipeline[T] {
	return &Pipeline[T]{
		clock:  clk,
		read:   read,
		delay:  DefaultDelay,
		retain: true,
		slab:   tui.NewFuzzySlab(),
		events: make(chan Event, eventBuffer),
	}
}

// Events returns the settlement event channel. Events are dropped,
// not queued, once the buffer is full.
func (pipeline *Pipeline[T]) Events() <-chan Event {
	return pipeline.events
}

// Read returns the display text for an option, using the pipeline's
// reader.
func (pipeline *Pipeline[T]) Read(option T) string {
	return pipeline.read(option)
}

// SetDelay changes the debounce window for future delayed edits.
func (pipeline *Pipeline[T]) SetDelay(delay time.Duration) {
	pipeline.mu.Lock()
	defer pipeline.mu.Unlock()
	pipeline.delay = delay
}

// SetMatchMode changes how static options are filtered.
func (pipeline *Pipeline[T]) SetMatchMode(mode MatchMode) {
	pipeline.mu.Lock()
	defer pipeline.mu.Unlock()
	pipeline.matchMode = mode
}

// SetRetain controls what selection does to the query: when true (the
// default), selecting an option sets the query to its display text
// and records it; when false, selecting clears the query.
func (pipeline *Pipeline[T]) SetRetain(retain bool) {
	pipeline.mu.Lock()
	defer pipeline.mu.Unlock()
	pipeline.retain = retain
}

// SetOptions switches the pipeline to static mode with the given
// option collection and recomputes results for the current query.
// An in-flight lookup from a previous dynamic configuration is
// abandoned.
func (pipeline *Pipeline[T]) SetOptions(options []T) {
	pipeline.mu.Lock()
	pipeline.options = append([]T(nil), options...)
	pipeline.lookup = nil
	pipeline.abandonLookupLocked()
	query := pipeline.query
	pipeline.results = pipeline.filterLocked(query)
	// Still searching only if a delayed edit has not settled yet; it
	// will refilter against the new collection when it does.
	pipeline.searching = pipeline.debounceTimer != nil
	pipeline.mu.Unlock()

	pipeline.emit(Event{Kind: EventSettled, Query: query})
}

// SetLookup switches the pipeline to dynamic mode. Nothing is fetched
// until the next query update; the current results are cleared.
func (pipeline *Pipeline[T]) SetLookup(lookup Lookup[T]) {
	pipeline.mu.Lock()
	pipeline.lookup = lookup
	pipeline.options = nil
	pipeline.results = nil
	pipeline.abandonLookupLocked()
	pipeline.searching = pipeline.debounceTimer != nil
	query := pipeline.query
	pipeline.mu.Unlock()

	pipeline.emit(Event{Kind: EventSettled, Query: query})
}

// Query returns the current query text.
func (pipeline *Pipeline[T]) Query() string {
	pipeline.mu.Lock()
	defer pipeline.mu.Unlock()
	return pipeline.query
}

// Results returns the full current result set, in option order. The
// consuming widget truncates for display; the pipeline never does.
// Callers must not mutate the returned slice.
func (pipeline *Pipeline[T]) Results() []T {
	pipeline.mu.Lock()
	defer pipeline.mu.Unlock()
	return pipeline.results
}

// Searching reports whether a query's recomputation has not yet
// settled: a debounce window is open or a lookup is in flight.
func (pipeline *Pipeline[T]) Searching() bool {
	pipeline.mu.Lock()
	defer pipeline.mu.Unlock()
	return pipeline.searching
}

// SelectedResult returns the most recently retained selection.
func (pipeline *Pipeline[T]) SelectedResult() (T, bool) {
	pipeline.mu.Lock()
	defer pipeline.mu.Unlock()
	if pipeline.selected == nil {
		var zero T
		return zero, false
	}
	return *pipeline.selected, true
}

// UpdateQuery sets the query and recomputes results immediately, with
// no debounce. Used on explicit selection and clearing, where waiting
// out a window would feel broken. A pending delayed recomputation is
// superseded.
func (pipeline *Pipeline[T]) UpdateQuery(query string) {
	pipeline.mu.Lock()
	pipeline.query = query
	pipeline.cancelDebounceLocked()
	if pipeline.lookup == nil {
		pipeline.results = pipeline.filterLocked(query)
		pipeline.searching = false
		pipeline.mu.Unlock()
		pipeline.emit(Event{Kind: EventSettled, Query: query})
		return
	}
	pipeline.searching = true
	pipeline.mu.Unlock()

	pipeline.beginLookup(query, false, nil)
}

// UpdateQueryDelayed sets the query and schedules recomputation after
// the debounce window. Editing again before the window elapses cancels
// and supersedes the pending recomputation, so a typing burst settles
// exactly once, with its final query.
//
// onSettled, if non-nil, runs after the recomputation completes, even
// when the query is empty. It runs on whichever goroutine settles the
// query (the timer or a lookup), never the caller's. Superseded edits
// never settle, and a failed lookup reports on [Pipeline.Events]
// instead.
func (pipeline *Pipeline[T]) UpdateQueryDelayed(query string, onSettled func()) {
	pipeline.mu.Lock()
	pipeline.query = query
	pipeline.searching = true
	pipeline.cancelDebounceLocked()
	generation := pipeline.debounceGen
	delay := pipeline.delay
	pipeline.mu.Unlock()

	// Scheduled outside the lock: a zero-delay timer on a test clock
	// fires the callback synchronously.
	timer := pipeline.clock.AfterFunc(delay, func() {
		pipeline.settleDelayed(generation, query, onSettled)
	})

	pipeline.mu.Lock()
	if pipeline.debounceGen == generation {
		pipeline.debounceTimer = timer
	}
	pipeline.mu.Unlock()
}

// Select records the choice per the retain policy and recomputes
// results for the resulting query. The widget layers its own behavior
// (closing the dropdown, emitting the selection) on top.
func (pipeline *Pipeline[T]) Select(option T) {
	pipeline.mu.Lock()
	retain := pipeline.retain
	if retain {
		selected := option
		pipeline.selected = &selected
	}
	pipeline.mu.Unlock()

	if retain {
		pipeline.UpdateQuery(pipeline.read(option))
	} else {
		pipeline.UpdateQuery("")
	}
}

// Close stops the pending debounce timer and abandons any in-flight
// lookup. The pipeline stays usable afterwards; Close just guarantees
// nothing fires later on behalf of work issued before it.
func (pipeline *Pipeline[T]) Close() {
	pipeline.mu.Lock()
	defer pipeline.mu.Unlock()
	pipeline.cancelDebounceLocked()
	pipeline.abandonLookupLocked()
	pipeline.searching = false
}

// cancelDebounceLocked supersedes any pending delayed recomputation.
// Callers hold pipeline.mu.
func (pipeline *Pipeline[T]) cancelDebounceLocked() {
	if pipeline.debounceTimer != nil {
		pipeline.debounceTimer.Stop()
		pipeline.debounceTimer = nil
	}
	pipeline.debounceGen++
}

// abandonLookupLocked invalidates any in-flight lookup so its response
// is discarded on arrival. Callers hold pipeline.mu.
func (pipeline *Pipeline[T]) abandonLookupLocked() {
	pipeline.lookupSeq++
	if pipeline.lookupCancel != nil {
		pipeline.lookupCancel()
		pipeline.lookupCancel = nil
	}
}

// settleDelayed is the debounce timer callback for one delayed edit.
func (pipeline *Pipeline[T]) settleDelayed(generation uint64, query string, onSettled func()) {
	pipeline.mu.Lock()
	if pipeline.debounceGen != generation {
		// Superseded by a newer edit or an immediate update.
		pipeline.mu.Unlock()
		return
	}
	// Consume the generation: UpdateQueryDelayed must not record this
	// timer as still pending when it fired before the scheduling call
	// returned (a zero delay on a test clock fires synchronously).
	pipeline.debounceGen++
	pipeline.debounceTimer = nil
	if query == "" {
		// An empty query settles to an empty result list without
		// consulting the source in either mode.
		pipeline.results = nil
		pipeline.searching = false
		pipeline.mu.Unlock()
		pipeline.emit(Event{Kind: EventSettled, Query: query, Delayed: true})
		if onSettled != nil {
			onSettled()
		}
		return
	}
	if pipeline.lookup == nil {
		pipeline.results = pipeline.filterLocked(query)
		pipeline.searching = false
		pipeline.mu.Unlock()
		pipeline.emit(Event{Kind: EventSettled, Query: query, Delayed: true})
		if onSettled != nil {
			onSettled()
		}
		return
	}
	pipeline.mu.Unlock()

	pipeline.beginLookup(query, true, onSettled)
}

// beginLookup issues the lookup for query on a new goroutine, tagged
// with the next sequence number. On arrival the response is applied
// only if its sequence still matches the latest issued, which is what
// keeps a slow response for an old query from overwriting results for
// a newer one.
func (pipeline *Pipeline[T]) beginLookup(query string, delayed bool, onSettled func()) {
	pipeline.mu.Lock()
	pipeline.abandonLookupLocked()
	sequence := pipeline.lookupSeq
	lookup := pipeline.lookup
	ctx, cancel := context.WithCancel(context.Background())
	pipeline.lookupCancel = cancel
	pipeline.mu.Unlock()

	go func() {
		defer cancel()
		items, err := lookup(ctx, query)

		pipeline.mu.Lock()
		if sequence != pipeline.lookupSeq {
			pipeline.mu.Unlock()
			return
		}
		if err != nil {
			pipeline.searching = false
			pipeline.mu.Unlock()
			pipeline.emit(Event{Kind: EventLookupError, Query: query, Delayed: delayed, Err: err})
			return
		}
		pipeline.options = items
		pipeline.results = items
		pipeline.searching = false
		pipeline.mu.Unlock()

		pipeline.emit(Event{Kind: EventSettled, Query: query, Delayed: delayed})
		if onSettled != nil {
			onSettled()
		}
	}()
}

// filterLocked computes the static-mode result list for query,
// preserving option order. An empty query keeps every option. Callers
// hold pipeline.mu.
func (pipeline *Pipeline[T]) filterLocked(query string) []T {
	if query == "" {
		return append([]T(nil), pipeline.options...)
	}

	var matched []T
	switch pipeline.matchMode {
	case MatchFuzzy:
		pattern := []rune(query)
		for _, option := range pipeline.options {
			if tui.FuzzyMatch(pipeline.read(option), pattern, pipeline.slab).Matched {
				matched = append(matched, option)
			}
		}
	default:
		lowered := strings.ToLower(query)
		for _, option := range pipeline.options {
			if strings.Contains(strings.ToLower(pipeline.read(option)), lowered) {
				matched = append(matched, option)
			}
		}
	}
	return matched
}

// emit delivers an event without blocking; a full buffer drops it.
func (pipeline *Pipeline[T]) emit(event Event) {
	select {
	case pipeline.events <- event:
	default:
	}
}
