// Copyright 2026 The Canopy Authors
// SPDX-License-Identifier: Apache-2.0

package collapse

import (
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/canopy-ui/canopy/lib/clock"
	"github.com/canopy-ui/canopy/lib/tui"
)

// frameInterval is the re-render cadence while a transition runs.
// 33ms gives ~30fps, comfortably finer than the default 350ms
// transition.
const frameInterval = 33 * time.Millisecond

// Disclosure glyphs for the panel header.
const (
	glyphExpanded  = "▾"
	glyphCollapsed = "▸"
)

// FrameMsg drives re-renders while a panel's transition is in flight.
// Each Model only reacts to frames carrying its own ID, so multiple
// panels can animate independently in one program.
type FrameMsg struct {
	ID int
}

// lastID issues process-unique model IDs for frame routing.
var lastID int64

func nextID() int {
	return int(atomic.AddInt64(&lastID, 1))
}

// Model is a bubbletea component wrapping a [Panel]: a one-line header
// with a disclosure glyph and title, above content lines whose visible
// count animates between zero and full as the panel transitions.
//
// The embedding model issues commands through [Model.SetCollapsed] or
// [Model.Toggle] and routes every message through [Model.Update] so
// frame ticks keep flowing while a transition runs.
type Model struct {
	panel *Panel
	clock clock.Clock

	id      int
	title   string
	content []string
	width   int
	theme   tui.Theme

	// fromExtent is the visible-height fraction the in-flight
	// transition started from, captured when the command was issued.
	// Superseded transitions therefore continue from wherever the
	// panel visually was, not from a settled endpoint.
	fromExtent float64

	// frameRunning is true while a frame tick is scheduled, so
	// overlapping commands don't stack multiple tick loops.
	frameRunning bool
}

// NewModel creates an expanded panel model with the given title and
// content lines, using the default theme and transition duration.
func NewModel(clk clock.Clock, title string, content []string) Model {
	return Model{
		panel:      NewPanel(clk),
		clock:      clk,
		id:         nextID(),
		title:      title,
		content:    content,
		theme:      tui.DefaultTheme,
		fromExtent: 1,
	}
}

// Status returns the read-only view of the underlying state machine.
func (model Model) Status() Status {
	return model.panel
}

// SetTitle replaces the header title.
func (model *Model) SetTitle(title string) {
	model.title = title
}

// SetContent replaces the content lines shown when expanded.
func (model *Model) SetContent(content []string) {
	model.content = content
}

// SetWidth sets the width content is clipped to while clipping is
// active. Zero disables clipping regardless of panel state.
func (model *Model) SetWidth(width int) {
	model.width = width
}

// SetTheme replaces the color theme.
func (model *Model) SetTheme(theme tui.Theme) {
	model.theme = theme
}

// SetDuration adjusts the transition duration for future commands.
func (model *Model) SetDuration(duration time.Duration) {
	model.panel.SetDuration(duration)
}

// SetCollapsed commands the panel toward the given position and
// returns the command that keeps frames flowing while it animates.
func (model *Model) SetCollapsed(collapsed bool) tea.Cmd {
	model.fromExtent = model.extent(model.clock.Now())
	model.panel.SetCollapsed(collapsed)
	if !model.panel.Transitioning() {
		// The pristine instant transition settles before a frame
		// could render it; the embedding update's own re-render is
		// enough.
		return nil
	}
	if model.frameRunning {
		return nil
	}
	model.frameRunning = true
	return model.scheduleFrame()
}

// Toggle flips the panel: collapse when visible, expand when hidden.
// A transition in flight is reversed.
func (model *Model) Toggle() tea.Cmd {
	target := !model.panel.Collapsed()
	if model.panel.Transitioning() {
		target = model.panel.Opening()
	}
	return model.SetCollapsed(target)
}

// Update implements the bubbletea component contract. It consumes
// FrameMsg values for this model and reschedules them until the
// transition settles.
func (model Model) Update(message tea.Msg) (Model, tea.Cmd) {
	frame, isFrame := message.(FrameMsg)
	if !isFrame || frame.ID != model.id {
		return model, nil
	}
	if model.panel.Transitioning() {
		return model, model.scheduleFrame()
	}
	model.frameRunning = false
	return model, nil
}

// scheduleFrame returns a command delivering the next FrameMsg for
// this model after the frame interval.
func (model Model) scheduleFrame() tea.Cmd {
	id := model.id
	return tea.Tick(frameInterval, func(time.Time) tea.Msg {
		return FrameMsg{ID: id}
	})
}

// extent returns the fraction of content height visible at the given
// time: 1 fully expanded, 0 fully collapsed, interpolated while a
// transition runs.
func (model Model) extent(now time.Time) float64 {
	switch model.panel.State() {
	case Expanded:
		return 1
	case Collapsed:
		return 0
	}
	target := 0.0
	if model.panel.Opening() {
		target = 1
	}
	return model.fromExtent + (target-model.fromExtent)*model.panel.Progress(now)
}

// visibleLines converts the current extent into a content line count.
func (model Model) visibleLines(now time.Time) int {
	count := int(model.extent(now)*float64(len(model.content)) + 0.5)
	if count < 0 {
		count = 0
	}
	if count > len(model.content) {
		count = len(model.content)
	}
	return count
}

// Height returns the total rendered height in lines right now: the
// header plus however much content is currently visible. Embedding
// layouts use this to place panels below one another.
func (model Model) Height() int {
	return 1 + model.visibleLines(model.clock.Now())
}

// View renders the header and the currently visible content lines.
func (model Model) View() string {
	now := model.clock.Now()

	glyph := glyphExpanded
	status := model.panel
	if status.Collapsed() || (status.Transitioning() && !status.Opening()) {
		glyph = glyphCollapsed
	}

	glyphStyle := lipgloss.NewStyle().Foreground(model.theme.DisclosureGlyph)
	titleStyle := lipgloss.NewStyle().Foreground(model.theme.PanelTitle).Bold(true)

	header := glyphStyle.Render(glyph) + " " + titleStyle.Render(model.title)
	if model.width > 0 {
		header = tui.Truncate(header, model.width)
	}

	lines := make([]string, 0, 1+len(model.content))
	lines = append(lines, header)
	for _, line := range model.content[:model.visibleLines(now)] {
		if status.Clipped() && model.width > 0 {
			line = tui.Truncate(line, model.width)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
