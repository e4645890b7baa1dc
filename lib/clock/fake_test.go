// Copyright 2026 The Canopy Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sync/atomic"
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeClockNow(t *testing.T) {
	fake := Fake(epoch)
	if got := fake.Now(); !got.Equal(epoch) {
		t.Fatalf("Now() = %v, want %v", got, epoch)
	}
	fake.Advance(5 * time.Second)
	want := epoch.Add(5 * time.Second)
	if got := fake.Now(); !got.Equal(want) {
		t.Fatalf("Now() after Advance = %v, want %v", got, want)
	}
}

func TestFakeClockAfterFiresOnAdvance(t *testing.T) {
	fake := Fake(epoch)
	channel := fake.After(3 * time.Second)

	select {
	case <-channel:
		t.Fatal("After fired before Advance")
	default:
	}

	fake.Advance(3 * time.Second)

	select {
	case <-channel:
	default:
		t.Fatal("After did not fire after Advance")
	}
}

func TestFakeClockAfterNonPositiveDuration(t *testing.T) {
	fake := Fake(epoch)
	for _, d := range []time.Duration{0, -time.Second} {
		select {
		case <-fake.After(d):
		default:
			t.Fatalf("After(%v) should deliver immediately", d)
		}
	}
}

func TestFakeClockAfterFuncFiresAtDeadline(t *testing.T) {
	fake := Fake(epoch)
	var called atomic.Bool
	fake.AfterFunc(2*time.Second, func() { called.Store(true) })

	fake.Advance(1 * time.Second)
	if called.Load() {
		t.Fatal("AfterFunc fired before deadline")
	}
	fake.Advance(1 * time.Second)
	if !called.Load() {
		t.Fatal("AfterFunc did not fire at deadline")
	}
}

func TestFakeClockAfterFuncZeroDelayRunsSynchronously(t *testing.T) {
	fake := Fake(epoch)
	called := false
	fake.AfterFunc(0, func() { called = true })
	if !called {
		t.Fatal("AfterFunc(0) should run before returning")
	}
	if got := fake.PendingCount(); got != 0 {
		t.Fatalf("PendingCount after synchronous fire = %d, want 0", got)
	}
}

func TestFakeClockFiresInDeadlineOrder(t *testing.T) {
	fake := Fake(epoch)
	var order []int
	fake.AfterFunc(3*time.Second, func() { order = append(order, 3) })
	fake.AfterFunc(1*time.Second, func() { order = append(order, 1) })
	fake.AfterFunc(2*time.Second, func() { order = append(order, 2) })

	fake.Advance(5 * time.Second)

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Fatalf("fire order = %v, want [1 2 3]", order)
	}
}

func TestFakeClockEqualDeadlinesFireInScheduleOrder(t *testing.T) {
	fake := Fake(epoch)
	var order []string
	fake.AfterFunc(time.Second, func() { order = append(order, "first") })
	fake.AfterFunc(time.Second, func() { order = append(order, "second") })
	fake.AfterFunc(time.Second, func() { order = append(order, "third") })

	fake.Advance(time.Second)

	want := []string{"first", "second", "third"}
	for index, name := range want {
		if index >= len(order) || order[index] != name {
			t.Fatalf("fire order = %v, want %v", order, want)
		}
	}
}

func TestFakeClockCallbackSchedulingInsideAdvanceWindow(t *testing.T) {
	fake := Fake(epoch)
	var fired []string
	fake.AfterFunc(time.Second, func() {
		fired = append(fired, "outer")
		fake.AfterFunc(time.Second, func() {
			fired = append(fired, "inner")
		})
	})

	// Single advance spans both deadlines: the timer registered by
	// the outer callback lands at +2s, inside the window.
	fake.Advance(3 * time.Second)

	if len(fired) != 2 || fired[0] != "outer" || fired[1] != "inner" {
		t.Fatalf("fired = %v, want [outer inner]", fired)
	}
}

func TestFakeClockNowStepsToDeadlineWhileFiring(t *testing.T) {
	fake := Fake(epoch)
	var observed time.Time
	fake.AfterFunc(time.Second, func() { observed = fake.Now() })

	fake.Advance(5 * time.Second)

	// A firing callback sees its own deadline, not the advance target;
	// that is what lets relative timers it schedules land inside the
	// same window.
	if want := epoch.Add(time.Second); !observed.Equal(want) {
		t.Errorf("Now() during fire = %v, want the deadline %v", observed, want)
	}
	if want := epoch.Add(5 * time.Second); !fake.Now().Equal(want) {
		t.Errorf("Now() after Advance = %v, want the target %v", fake.Now(), want)
	}
}

func TestFakeClockTimerStop(t *testing.T) {
	fake := Fake(epoch)
	var called atomic.Bool
	timer := fake.AfterFunc(2*time.Second, func() { called.Store(true) })

	if !timer.Stop() {
		t.Fatal("Stop on an active timer should return true")
	}
	if timer.Stop() {
		t.Fatal("second Stop should return false")
	}

	fake.Advance(5 * time.Second)
	if called.Load() {
		t.Fatal("stopped timer fired")
	}
	if got := fake.PendingCount(); got != 0 {
		t.Fatalf("PendingCount after stopped timer expired = %d, want 0", got)
	}
}

func TestFakeClockTimerResetPostpones(t *testing.T) {
	fake := Fake(epoch)
	var calls atomic.Int32
	timer := fake.AfterFunc(2*time.Second, func() { calls.Add(1) })

	fake.Advance(1 * time.Second)
	if !timer.Reset(2 * time.Second) {
		t.Fatal("Reset on an active timer should return true")
	}

	// Original deadline passes without firing.
	fake.Advance(1 * time.Second)
	if calls.Load() != 0 {
		t.Fatal("timer fired at superseded deadline")
	}

	fake.Advance(1 * time.Second)
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1 after reset deadline", calls.Load())
	}
}

func TestFakeClockTimerResetRevivesFiredTimer(t *testing.T) {
	fake := Fake(epoch)
	var calls atomic.Int32
	timer := fake.AfterFunc(time.Second, func() { calls.Add(1) })

	fake.Advance(time.Second)
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}

	if timer.Reset(time.Second) {
		t.Fatal("Reset on a fired timer should return false")
	}
	fake.Advance(time.Second)
	if calls.Load() != 2 {
		t.Fatalf("calls = %d, want 2 after revival", calls.Load())
	}
}

func TestFakeClockWaitForTimers(t *testing.T) {
	fake := Fake(epoch)
	done := make(chan struct{})
	go func() {
		fake.After(time.Second)
		close(done)
	}()

	fake.WaitForTimers(1)
	<-done
	if got := fake.PendingCount(); got != 1 {
		t.Fatalf("PendingCount = %d, want 1", got)
	}
}

func TestFakeClockPendingCountSkipsStopped(t *testing.T) {
	fake := Fake(epoch)
	fake.AfterFunc(time.Second, func() {})
	timer := fake.AfterFunc(2*time.Second, func() {})
	timer.Stop()

	if got := fake.PendingCount(); got != 1 {
		t.Fatalf("PendingCount = %d, want 1", got)
	}
}

func TestRealClockAfterFunc(t *testing.T) {
	real := Real()
	fired := make(chan struct{})
	real.AfterFunc(time.Millisecond, func() { close(fired) })
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("real AfterFunc did not fire")
	}
}
