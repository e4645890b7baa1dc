// Copyright 2026 The Canopy Authors
// SPDX-License-Identifier: Apache-2.0

// Package search implements a type-ahead search box: a query/result
// pipeline with debounced recomputation, and a bubbletea widget
// composing that pipeline with a text input, a loading spinner, and a
// dropdown menu.
//
// [Pipeline] is the core. It holds the current query and an option
// source, and recomputes the ordered result list either immediately
// ([Pipeline.UpdateQuery]) or after a debounce window
// ([Pipeline.UpdateQueryDelayed]). Options come from one of two
// sources, selected by whichever was configured last:
//
//   - Static: [Pipeline.SetOptions] supplies an in-memory slice,
//     filtered per keystroke by case-insensitive substring match (or
//     fuzzy match, see [Pipeline.SetMatchMode]) against each option's
//     display text.
//   - Dynamic: [Pipeline.SetLookup] supplies a producer called with
//     the settled query. Responses are sequence-tagged; a response
//     arriving for a superseded query is dropped, so displayed
//     results always belong to the most recently issued query.
//
// Display text is extracted by a [Reader]; [FieldReader] builds one
// from a dotted field path for callers that don't want to write a
// function.
//
// Settlements are announced on [Pipeline.Events] so a bubbletea
// program can react to work that finishes off the update loop (the
// debounce timer, lookup goroutines). [Widget] consumes those events
// and implements the dropdown open/close policy, result highlighting,
// selection, and the outside-click subscription.
//
// Timing is injected via [clock.Clock]; tests drive the debounce
// window deterministically with a fake clock.
package search
