// Copyright 2026 The Canopy Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"sort"
	"sync"
)

// ClickRouter fans screen-level mouse clicks out to subscribed
// widgets. Widgets that dismiss themselves on clicks outside their
// bounds (the search widget's open menu) subscribe here instead of
// inspecting every mouse event the application receives; the
// application calls Dispatch once per click.
//
// A subscription is a leak until cancelled: widgets cancel in their
// Close method, and tests assert the count drops.
type ClickRouter struct {
	mu          sync.Mutex
	nextID      int
	subscribers map[int]func(x, y int)
}

// NewClickRouter returns an empty router.
func NewClickRouter() *ClickRouter {
	return &ClickRouter{subscribers: make(map[int]func(x, y int))}
}

// Subscribe registers fn to receive every dispatched click. The
// returned cancel function removes the subscription; calling it more
// than once is harmless.
func (router *ClickRouter) Subscribe(fn func(x, y int)) (cancel func()) {
	router.mu.Lock()
	defer router.mu.Unlock()

	id := router.nextID
	router.nextID++
	router.subscribers[id] = fn

	return func() {
		router.mu.Lock()
		defer router.mu.Unlock()
		delete(router.subscribers, id)
	}
}

// Dispatch delivers a click at screen coordinates (x, y) to every
// subscriber in subscription order.
func (router *ClickRouter) Dispatch(x, y int) {
	router.mu.Lock()
	ids := make([]int, 0, len(router.subscribers))
	for id := range router.subscribers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	handlers := make([]func(x, y int), 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, router.subscribers[id])
	}
	router.mu.Unlock()

	for _, handler := range handlers {
		handler(x, y)
	}
}

// SubscriberCount returns the number of live subscriptions.
func (router *ClickRouter) SubscriberCount() int {
	router.mu.Lock()
	defer router.mu.Unlock()
	return len(router.subscribers)
}
