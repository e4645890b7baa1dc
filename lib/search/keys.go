// Copyright 2026 The Canopy Authors
// SPDX-License-Identifier: Apache-2.0

package search

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings the widget intercepts before text
// editing keys reach the input.
type KeyMap struct {
	Up     key.Binding // Previous result in the open dropdown.
	Down   key.Binding // Next result in the open dropdown.
	Select key.Binding // Choose the highlighted result.
	Close  key.Binding // Dismiss the dropdown.
}

// DefaultKeyMap is the built-in binding set. Arrow keys alongside
// emacs-style ctrl+p/ctrl+n, which stay usable while typing.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "ctrl+p"),
		key.WithHelp("↑", "previous result"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "ctrl+n"),
		key.WithHelp("↓", "next result"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "select"),
	),
	Close: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "close"),
	),
}
