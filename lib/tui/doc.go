// Copyright 2026 The Canopy Authors
// SPDX-License-Identifier: Apache-2.0

// Package tui provides the shared primitives under Canopy's widgets:
// the color theme, the dropdown menu collaborator, match highlighting,
// fuzzy matching, ANSI-aware text manipulation, outside-click routing,
// and a slog handler that forwards records into a running bubbletea
// program.
//
// The widget packages (lib/collapse, lib/search) compose these
// primitives; applications normally touch only Theme and, when they
// need mouse dismissal semantics, ClickRouter.
package tui
