// Copyright 2026 The Canopy Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"container/heap"
	"sync"
	"time"
)

// Fake returns a FakeClock frozen at the given time. The clock only
// moves when Advance is called.
func Fake(initial time.Time) *FakeClock {
	fake := &FakeClock{now: initial}
	fake.changed = sync.NewCond(&fake.mu)
	return fake
}

// FakeClock is a deterministic Clock for tests. Pending timers are
// kept in a deadline-ordered queue; timers sharing a deadline fire in
// the order they were scheduled. Advance fires AfterFunc callbacks
// synchronously on the advancing goroutine, so a callback must not
// call Advance itself.
//
// Safe for concurrent use by multiple goroutines.
type FakeClock struct {
	mu      sync.Mutex
	now     time.Time
	queue   waiterQueue
	seq     uint64
	changed *sync.Cond
}

// waiter is one pending After channel or AfterFunc callback.
type waiter struct {
	when time.Time
	seq  uint64

	// Exactly one of channel/callback is set.
	channel  chan time.Time
	callback func()

	stopped bool
	fired   bool

	// Position in the queue, -1 once popped. Maintained by the
	// heap bookkeeping so Reset can Fix in place.
	index int
}

// waiterQueue is a min-heap ordered by (deadline, schedule order).
type waiterQueue []*waiter

func (queue waiterQueue) Len() int { return len(queue) }

func (queue waiterQueue) Less(i, j int) bool {
	if queue[i].when.Equal(queue[j].when) {
		return queue[i].seq < queue[j].seq
	}
	return queue[i].when.Before(queue[j].when)
}

func (queue waiterQueue) Swap(i, j int) {
	queue[i], queue[j] = queue[j], queue[i]
	queue[i].index = i
	queue[j].index = j
}

func (queue *waiterQueue) Push(x any) {
	entry := x.(*waiter)
	entry.index = len(*queue)
	*queue = append(*queue, entry)
}

func (queue *waiterQueue) Pop() any {
	old := *queue
	last := len(old) - 1
	entry := old[last]
	old[last] = nil
	entry.index = -1
	*queue = old[:last]
	return entry
}

// Now returns the current fake time.
func (fake *FakeClock) Now() time.Time {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	return fake.now
}

// After returns a channel that receives once the clock advances past
// the deadline. A non-positive duration delivers immediately.
func (fake *FakeClock) After(d time.Duration) <-chan time.Time {
	fake.mu.Lock()
	defer fake.mu.Unlock()

	channel := make(chan time.Time, 1)
	if d <= 0 {
		channel <- fake.now
		return channel
	}
	fake.schedule(&waiter{when: fake.now.Add(d), channel: channel})
	return channel
}

// AfterFunc schedules f to run when the clock advances past the
// deadline. A non-positive duration runs f synchronously before
// AfterFunc returns.
func (fake *FakeClock) AfterFunc(d time.Duration, f func()) *Timer {
	fake.mu.Lock()
	if d <= 0 {
		fake.mu.Unlock()
		f()
		return &Timer{
			stopFunc:  func() bool { return false },
			resetFunc: func(time.Duration) bool { return false },
		}
	}

	entry := &waiter{when: fake.now.Add(d), callback: f}
	fake.schedule(entry)
	fake.mu.Unlock()

	return &Timer{
		stopFunc: func() bool {
			fake.mu.Lock()
			defer fake.mu.Unlock()
			if entry.stopped || entry.fired {
				return false
			}
			entry.stopped = true
			return true
		},
		resetFunc: func(d time.Duration) bool {
			fake.mu.Lock()
			defer fake.mu.Unlock()
			wasActive := !entry.stopped && !entry.fired
			entry.stopped = false
			entry.fired = false
			entry.when = fake.now.Add(d)
			if entry.index >= 0 {
				heap.Fix(&fake.queue, entry.index)
			} else {
				fake.schedule(entry)
			}
			return wasActive
		},
	}
}

// schedule inserts a waiter and wakes WaitForTimers callers. Callers
// hold fake.mu.
func (fake *FakeClock) schedule(entry *waiter) {
	fake.seq++
	entry.seq = fake.seq
	heap.Push(&fake.queue, entry)
	fake.changed.Broadcast()
}

// Advance moves the clock forward by d, firing every timer whose
// deadline falls within the new time in deadline order. Callbacks run
// on the calling goroutine; timers a callback schedules also fire if
// their deadlines land inside the same advance window.
func (fake *FakeClock) Advance(d time.Duration) {
	fake.mu.Lock()
	target := fake.now.Add(d)

	for fake.queue.Len() > 0 {
		next := fake.queue[0]
		if next.when.After(target) {
			break
		}
		heap.Pop(&fake.queue)
		if next.stopped {
			continue
		}
		// The clock reads as the waiter's deadline while it fires, so
		// a relative timer scheduled by a callback lands inside the
		// window when the remaining span covers it.
		if next.when.After(fake.now) {
			fake.now = next.when
		}
		next.fired = true
		if next.callback != nil {
			fake.mu.Unlock()
			next.callback()
			fake.mu.Lock()
		} else {
			// Non-blocking: an unread After channel keeps its
			// first delivery rather than queueing more.
			select {
			case next.channel <- next.when:
			default:
			}
		}
	}
	fake.now = target
	fake.mu.Unlock()
}

// WaitForTimers blocks until at least n timers are pending. Closes
// the race between a goroutine scheduling a timer and the test
// advancing the clock.
func (fake *FakeClock) WaitForTimers(n int) {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	for fake.activeCount() < n {
		fake.changed.Wait()
	}
}

// PendingCount returns the number of timers that are scheduled and
// neither stopped nor fired.
func (fake *FakeClock) PendingCount() int {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	return fake.activeCount()
}

func (fake *FakeClock) activeCount() int {
	count := 0
	for _, entry := range fake.queue {
		if !entry.stopped {
			count++
		}
	}
	return count
}
