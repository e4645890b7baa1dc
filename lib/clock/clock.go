// Copyright 2026 The Canopy Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source for the widget
// library. Every timer a widget schedules (search debounce windows,
// collapse completion timers) goes through a Clock so tests can drive
// time deterministically.
//
// Production code injects Real(); tests inject Fake() and call Advance
// to fire timers. Widgets that take no explicit clock default to Real().
//
//	panel := collapse.NewPanel(clock.Real())
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	panel := collapse.NewPanel(fake)
//	panel.Hide()
//	fake.Advance(350 * time.Millisecond) // completion fires here
package clock

import "time"

// Clock abstracts the time operations the widget library performs.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel that receives the current time once
	// duration d has elapsed. If d <= 0 the channel receives
	// immediately.
	After(d time.Duration) <-chan time.Time

	// AfterFunc waits for duration d, then calls f. The returned
	// Timer cancels the pending call via Stop. If d <= 0, f runs
	// immediately: synchronously on a fake clock, on a timer
	// goroutine with the real one.
	AfterFunc(d time.Duration, f func()) *Timer
}

// Timer is a handle to a scheduled AfterFunc call.
type Timer struct {
	stopFunc  func() bool
	resetFunc func(time.Duration) bool
}

// Stop prevents the timer from firing. Returns true if the call
// stopped the timer, false if it already fired or was stopped.
func (timer *Timer) Stop() bool { return timer.stopFunc() }

// Reset reschedules the timer to fire after duration d, reviving it
// if it already fired. Returns true if the timer was active before
// the call.
func (timer *Timer) Reset(d time.Duration) bool { return timer.resetFunc(d) }

// Real returns a Clock backed by the standard time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

func (realClock) AfterFunc(d time.Duration, f func()) *Timer {
	timer := time.AfterFunc(d, f)
	return &Timer{
		stopFunc:  timer.Stop,
		resetFunc: timer.Reset,
	}
}
