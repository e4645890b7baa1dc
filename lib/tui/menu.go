// Copyright 2026 The Canopy Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Menu transition kinds. Anything else renders instantly.
const (
	// TransitionNone shows the full menu the moment it opens.
	TransitionNone = ""

	// TransitionSlideDown reveals rows top-to-bottom over the
	// configured duration.
	TransitionSlideDown = "slide down"
)

// Menu is a floating option list anchored at a screen position. It is
// the dropdown collaborator for the search widget: the widget decides
// when to open and close it and feeds it pre-rendered rows; the menu
// owns cursor movement, hit-testing, and its reveal animation.
//
// Rows may carry ANSI styling (match highlighting). The menu measures
// them with ANSI-aware width functions.
type Menu struct {
	// Rows are the selectable lines, already styled and truncated by
	// the owner.
	Rows []string

	// Header and Message render above and instead of rows when set.
	// The search widget uses them for the localized no-results state.
	Header  string
	Message string

	// Cursor is the highlighted row index.
	Cursor int

	// AnchorX, AnchorY position the menu's top-left corner on screen.
	AnchorX int
	AnchorY int

	// Transition selects the reveal animation; TransitionDuration is
	// how long the reveal runs. Zero duration renders instantly.
	Transition         string
	TransitionDuration time.Duration

	open        bool
	revealStart time.Time
}

// Open marks the menu visible and starts the reveal animation clock.
// The cursor resets to the first row.
func (menu *Menu) Open(now time.Time) {
	menu.open = true
	menu.revealStart = now
	menu.Cursor = 0
}

// Close hides the menu.
func (menu *Menu) Close() {
	menu.open = false
}

// IsOpen reports whether the menu is visible.
func (menu *Menu) IsOpen() bool {
	return menu.open
}

// Revealing reports whether the reveal window of the most recent Open
// is still running at the given time. Deliberately not gated on the
// menu being open: a menu dismissed mid-reveal is still "animating"
// for focus-policy purposes until the window elapses.
func (menu *Menu) Revealing(now time.Time) bool {
	if menu.Transition != TransitionSlideDown || menu.TransitionDuration <= 0 {
		return false
	}
	if menu.revealStart.IsZero() {
		return false
	}
	return now.Sub(menu.revealStart) < menu.TransitionDuration
}

// SetRows replaces the menu rows, clamping the cursor into range.
func (menu *Menu) SetRows(rows []string) {
	menu.Rows = rows
	if menu.Cursor >= len(rows) {
		menu.Cursor = len(rows) - 1
	}
	if menu.Cursor < 0 {
		menu.Cursor = 0
	}
}

// MoveUp moves the cursor up by one, wrapping to the bottom.
func (menu *Menu) MoveUp() {
	if len(menu.Rows) == 0 {
		return
	}
	menu.Cursor--
	if menu.Cursor < 0 {
		menu.Cursor = len(menu.Rows) - 1
	}
}

// MoveDown moves the cursor down by one, wrapping to the top.
func (menu *Menu) MoveDown() {
	if len(menu.Rows) == 0 {
		return
	}
	menu.Cursor++
	if menu.Cursor >= len(menu.Rows) {
		menu.Cursor = 0
	}
}

// headerLines counts the lines rendered above the rows.
func (menu *Menu) headerLines() int {
	if menu.Header != "" {
		return 1
	}
	return 0
}

// contentLines counts every rendered line: header, then rows or the
// message fallback.
func (menu *Menu) contentLines() int {
	lines := menu.headerLines()
	if len(menu.Rows) > 0 {
		lines += len(menu.Rows)
	} else if menu.Message != "" {
		lines++
	}
	return lines
}

// revealedLines returns how many lines are visible at the given time.
// Outside a reveal animation this is every line; during one, lines
// appear top-to-bottom, at least one from the start.
func (menu *Menu) revealedLines(now time.Time) int {
	total := menu.contentLines()
	if !menu.Revealing(now) {
		return total
	}
	elapsed := now.Sub(menu.revealStart)
	visible := int(float64(total) * float64(elapsed) / float64(menu.TransitionDuration))
	if visible < 1 {
		visible = 1
	}
	if visible > total {
		visible = total
	}
	return visible
}

// Width returns the visible width of the rendered menu in columns,
// matching Render's output. Needed for mouse hit-testing.
func (menu *Menu) Width() int {
	maxContent := 0
	measure := func(text string) {
		if width := ansi.StringWidth(text); width > maxContent {
			maxContent = width
		}
	}
	measure(menu.Header)
	measure(menu.Message)
	for _, row := range menu.Rows {
		measure(row)
	}
	// " > ROW " layout: marker column plus one space of padding on
	// each side.
	return 3 + maxContent + 2
}

// Contains reports whether the screen coordinate falls inside the
// menu's current bounding rectangle. During a reveal only the visible
// lines count.
func (menu *Menu) Contains(x, y int, now time.Time) bool {
	if !menu.open {
		return false
	}
	height := menu.revealedLines(now)
	if y < menu.AnchorY || y >= menu.AnchorY+height {
		return false
	}
	return x >= menu.AnchorX && x < menu.AnchorX+menu.Width()
}

// RowAt maps a screen Y coordinate to a row index, or -1 when the
// coordinate is the header, the message, or outside the menu.
func (menu *Menu) RowAt(y int) int {
	index := y - menu.AnchorY - menu.headerLines()
	if index < 0 || index >= len(menu.Rows) {
		return -1
	}
	return index
}

// Render produces the menu lines for splicing over the frame. Every
// line has the same visible width and a solid background; the cursor
// row uses the selection colors.
func (menu *Menu) Render(theme Theme, now time.Time) []string {
	if !menu.open {
		return nil
	}

	totalWidth := menu.Width()
	background := lipgloss.NewStyle().
		Background(theme.MenuBackground).
		Foreground(theme.NormalText)
	headerStyle := lipgloss.NewStyle().
		Background(theme.MenuBackground).
		Foreground(theme.HeaderForeground).
		Bold(true)
	messageStyle := lipgloss.NewStyle().
		Background(theme.MenuBackground).
		Foreground(theme.FaintText)
	selected := lipgloss.NewStyle().
		Background(theme.SelectedBackground).
		Foreground(theme.SelectedForeground)

	fill := func(style lipgloss.Style, marker, text string) string {
		content := " " + marker + " " + text
		pad := totalWidth - ansi.StringWidth(content) - 1
		if pad < 0 {
			pad = 0
		}
		return style.Render(content + strings.Repeat(" ", pad) + " ")
	}

	var lines []string
	if menu.Header != "" {
		lines = append(lines, fill(headerStyle, " ", menu.Header))
	}
	if len(menu.Rows) == 0 {
		if menu.Message != "" {
			lines = append(lines, fill(messageStyle, " ", menu.Message))
		}
	} else {
		for index, row := range menu.Rows {
			if index == menu.Cursor {
				lines = append(lines, fill(selected, ">", row))
			} else {
				lines = append(lines, fill(background, " ", row))
			}
		}
	}

	visible := menu.revealedLines(now)
	if visible < len(lines) {
		lines = lines[:visible]
	}
	return lines
}
