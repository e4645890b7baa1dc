// Copyright 2026 The Canopy Authors
// SPDX-License-Identifier: Apache-2.0

package cardui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the browser's key bindings. The search widget has
// its own bindings for the open dropdown; these cover everything
// around it.
type KeyMap struct {
	Search     key.Binding // Focus the search input.
	Down       key.Binding // Focus the next card.
	Up         key.Binding // Focus the previous card.
	Toggle     key.Binding // Collapse or expand the focused card.
	ScrollDown key.Binding // Scroll the card area down.
	ScrollUp   key.Binding // Scroll the card area up.
	Quit       key.Binding
}

// DefaultKeyMap is the built-in binding set.
var DefaultKeyMap = KeyMap{
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j", "next card"),
	),
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k", "previous card"),
	),
	Toggle: key.NewBinding(
		key.WithKeys("enter", " "),
		key.WithHelp("enter", "toggle card"),
	),
	ScrollDown: key.NewBinding(
		key.WithKeys("ctrl+d", "pgdown"),
		key.WithHelp("ctrl+d", "scroll down"),
	),
	ScrollUp: key.NewBinding(
		key.WithKeys("ctrl+u", "pgup"),
		key.WithHelp("ctrl+u", "scroll up"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
