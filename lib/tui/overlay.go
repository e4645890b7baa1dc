// Copyright 2026 The Canopy Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// SpliceOverlay composites overlay lines (a dropdown menu, a tooltip)
// over a rendered frame at screen position (anchorX, anchorY). Frame
// content to the left and right of the overlay survives; the covered
// span is replaced. Widths are measured ANSI-aware, and the overlay is
// bracketed with SGR resets so frame styling cannot bleed into it.
//
// Overlay lines are assumed uniform in width, which is what Menu
// renders. Lines falling outside the frame are dropped.
func SpliceOverlay(view string, overlayLines []string, anchorX, anchorY int) string {
	if len(overlayLines) == 0 {
		return view
	}

	viewLines := strings.Split(view, "\n")
	overlayWidth := ansi.StringWidth(overlayLines[0])

	for index, overlayLine := range overlayLines {
		row := anchorY + index
		if row < 0 || row >= len(viewLines) {
			continue
		}

		viewLine := viewLines[row]
		viewWidth := ansi.StringWidth(viewLine)

		var spliced strings.Builder
		if anchorX > 0 {
			prefix := ansi.Truncate(viewLine, anchorX, "")
			spliced.WriteString(prefix)
			// A short frame line still anchors the overlay at the
			// same column.
			if gap := anchorX - ansi.StringWidth(prefix); gap > 0 {
				spliced.WriteString(strings.Repeat(" ", gap))
			}
		}
		spliced.WriteString("\x1b[0m")
		spliced.WriteString(overlayLine)
		spliced.WriteString("\x1b[0m")

		if suffixStart := anchorX + overlayWidth; suffixStart < viewWidth {
			spliced.WriteString(ansi.TruncateLeft(viewLine, suffixStart, ""))
		}

		viewLines[row] = spliced.String()
	}

	return strings.Join(viewLines, "\n")
}
