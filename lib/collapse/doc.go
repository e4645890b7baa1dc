// Copyright 2026 The Canopy Authors
// SPDX-License-Identifier: Apache-2.0

// Package collapse implements an animated collapse/expand panel: a
// state machine tracking the panel lifecycle and a bubbletea component
// rendering it as a titled, height-animated block of lines.
//
// The [Panel] state machine is UI-framework-free. It holds one of
// three states (Expanded, Collapsed, Collapsing), accepts Show/Hide
// commands (or the boolean [Panel.SetCollapsed] form), and performs
// its completion bookkeeping on a timer scheduled for exactly the
// transition duration. Completion is a scheduled deadline, not an
// animation-finished observation: if a renderer's animation ever runs
// at a different speed, the state machine still settles on time.
//
// Two behaviors are deliberate parts of the contract:
//
//   - Commands carry no idempotence guard. Hiding an already-collapsed
//     panel re-runs the collapse transition.
//   - The first transition of a panel's life is instantaneous (the
//     pristine rule), so panels constructed into a non-default
//     position snap there without a visible animation.
//
// [Model] wraps a Panel for bubbletea embedding: it owns the panel's
// title line and content lines, interpolates the visible line count
// from [Panel.Progress] while a transition runs, and drives re-renders
// with a frame tick that stops itself once the panel settles.
//
// Timing is injected via [clock.Clock] so tests advance transitions
// deterministically.
package collapse
