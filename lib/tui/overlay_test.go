// Copyright 2026 The Canopy Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestSpliceOverlayReplacesCoveredSpan(t *testing.T) {
	view := strings.Join([]string{
		"aaaaaaaaaa",
		"bbbbbbbbbb",
		"cccccccccc",
	}, "\n")

	out := SpliceOverlay(view, []string{"XXXX"}, 3, 1)
	lines := strings.Split(out, "\n")

	if got := ansi.Strip(lines[0]); got != "aaaaaaaaaa" {
		t.Errorf("line above overlay changed: %q", got)
	}
	if got := ansi.Strip(lines[1]); got != "bbbXXXXbbb" {
		t.Errorf("overlay line = %q, want bbbXXXXbbb", got)
	}
	if got := ansi.Strip(lines[2]); got != "cccccccccc" {
		t.Errorf("line below overlay changed: %q", got)
	}
}

func TestSpliceOverlayPadsShortFrameLines(t *testing.T) {
	out := SpliceOverlay("ab", []string{"XX"}, 5, 0)
	if got := ansi.Strip(out); got != "ab   XX" {
		t.Errorf("spliced line = %q, want the overlay at column 5", got)
	}
}

func TestSpliceOverlayDropsOutOfFrameLines(t *testing.T) {
	view := "only line"
	out := SpliceOverlay(view, []string{"X", "Y", "Z"}, 0, 0)
	lines := strings.Split(out, "\n")
	if len(lines) != 1 {
		t.Fatalf("frame grew to %d lines, want 1", len(lines))
	}
	if got := ansi.Strip(lines[0]); got != "Xnly line" {
		t.Errorf("line = %q, want Xnly line", got)
	}
}

func TestSpliceOverlayEmptyOverlayIsIdentity(t *testing.T) {
	view := "unchanged"
	if got := SpliceOverlay(view, nil, 2, 0); got != view {
		t.Errorf("empty overlay changed the view: %q", got)
	}
}
