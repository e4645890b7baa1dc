// Copyright 2026 The Canopy Authors
// SPDX-License-Identifier: Apache-2.0

package search

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/canopy-ui/canopy/lib/clock"
	"github.com/canopy-ui/canopy/lib/locale"
	"github.com/canopy-ui/canopy/lib/tui"
)

// DefaultMaxResults caps how many result rows the dropdown displays.
// Purely presentational; the pipeline's result list is never cut.
const DefaultMaxResults = 7

// searchGlyph prefixes the input row when the icon is enabled.
const searchGlyph = "⌕"

// EventMsg carries a pipeline event into the bubbletea update loop.
// Each Widget only reacts to events carrying its own ID, so several
// widgets can coexist in one program.
type EventMsg struct {
	ID    int
	Event Event
}

// lastWidgetID issues process-unique widget IDs for event routing.
var lastWidgetID int64

func nextWidgetID() int {
	return int(atomic.AddInt64(&lastWidgetID, 1))
}

// ResultRenderer renders one dropdown row for an option. Implement it
// when a row needs more than restyled display text (icons, secondary
// columns); for plain text tweaks a formatter function is enough.
type ResultRenderer[T any] interface {
	Render(option T, query string) string
}

// Widget is the interactive typeahead search box: a text input whose
// edits feed a [Pipeline] through the debounce window, a dropdown menu
// showing the settled results with match highlighting, and a spinner
// while a recomputation is in flight.
//
// The widget renders only its input row from View; the open menu is
// returned by [Widget.MenuLines] for the embedding model to splice
// over its frame at the menu's anchor, the way floating elements are
// composited in this library.
//
// Methods must be called from the program's update loop; the widget is
// not goroutine-safe. Use a pointer; the zero value is not usable.
type Widget[T any] struct {
	pipeline *Pipeline[T]
	clock    clock.Clock
	locale   locale.Provider
	logger   *slog.Logger

	id    int
	input textinput.Model
	spin  spinner.Model
	menu  *tui.Menu
	theme tui.Theme
	keys  KeyMap

	hasIcon    bool
	maxResults int
	formatter  func(option T, query string) string
	renderer   ResultRenderer[T]
	onSelect   func(option T)

	// Screen geometry for click handling: the input row occupies
	// (anchorX..anchorX+width) at row anchorY, the menu hangs one
	// row below.
	anchorX int
	anchorY int
	width   int

	routerCancel func()
	closed       bool
}

// NewWidget creates a typeahead widget reading display text with read
// and localized strings from provider. It starts in static mode with
// no options; configure with SetOptions or SetLookup.
func NewWidget[T any](clk clock.Clock, read Reader[T], provider locale.Provider) *Widget[T] {
	input := textinput.New()
	input.Placeholder = provider.Get(locale.KeySearchPlaceholder)
	input.Prompt = ""

	spin := spinner.New()
	spin.Spinner = spinner.MiniDot

	widget := &Widget[T]{
		pipeline:   NewPipeline[T](clk, read),
		clock:      clk,
		locale:     provider,
		id:         nextWidgetID(),
		input:      input,
		spin:       spin,
		menu:       &tui.Menu{},
		theme:      tui.DefaultTheme,
		keys:       DefaultKeyMap,
		maxResults: DefaultMaxResults,
		width:      30,
	}
	widget.applyTheme()
	return widget
}

// applyTheme pushes the current theme into the owned components.
func (widget *Widget[T]) applyTheme() {
	widget.input.PlaceholderStyle = lipgloss.NewStyle().Foreground(widget.theme.PlaceholderText)
	widget.input.TextStyle = lipgloss.NewStyle().Foreground(widget.theme.NormalText)
	widget.spin.Style = lipgloss.NewStyle().Foreground(widget.theme.LoadingAccent)
}

// Pipeline exposes the underlying query/result pipeline, mostly for
// tests and for embedding models that want the untruncated results.
func (widget *Widget[T]) Pipeline() *Pipeline[T] {
	return widget.pipeline
}

// SetOptions switches to static mode with the given option collection.
func (widget *Widget[T]) SetOptions(options []T) {
	widget.pipeline.SetOptions(options)
}

// SetLookup switches to dynamic mode with the given producer.
func (widget *Widget[T]) SetLookup(lookup Lookup[T]) {
	widget.pipeline.SetLookup(lookup)
}

// SetDelay changes the debounce window.
func (widget *Widget[T]) SetDelay(delay time.Duration) {
	widget.pipeline.SetDelay(delay)
}

// SetRetain controls whether selecting keeps the option's text as the
// query (true, the default) or clears the input.
func (widget *Widget[T]) SetRetain(retain bool) {
	widget.pipeline.SetRetain(retain)
}

// SetMatchMode changes how static options are filtered.
func (widget *Widget[T]) SetMatchMode(mode MatchMode) {
	widget.pipeline.SetMatchMode(mode)
}

// SetMaxResults caps the dropdown row count. Values below one fall
// back to the default.
func (widget *Widget[T]) SetMaxResults(limit int) {
	if limit < 1 {
		limit = DefaultMaxResults
	}
	widget.maxResults = limit
}

// SetHasIcon toggles the search glyph before the input.
func (widget *Widget[T]) SetHasIcon(hasIcon bool) {
	widget.hasIcon = hasIcon
}

// SetPlaceholder overrides the localized placeholder. An empty string
// restores the localized default.
func (widget *Widget[T]) SetPlaceholder(placeholder string) {
	if placeholder == "" {
		placeholder = widget.locale.Get(locale.KeySearchPlaceholder)
	}
	widget.input.Placeholder = placeholder
}

// SetTheme replaces the color theme.
func (widget *Widget[T]) SetTheme(theme tui.Theme) {
	widget.theme = theme
	widget.applyTheme()
}

// SetKeyMap replaces the dropdown key bindings.
func (widget *Widget[T]) SetKeyMap(keys KeyMap) {
	widget.keys = keys
}

// KeyMap returns the active dropdown key bindings, for embedding
// models that layer behavior on the same keys.
func (widget *Widget[T]) KeyMap() KeyMap {
	return widget.keys
}

// SetTransition passes a reveal animation through to the dropdown
// menu. An empty name or zero duration renders the menu instantly.
func (widget *Widget[T]) SetTransition(name string, duration time.Duration) {
	widget.menu.Transition = name
	widget.menu.TransitionDuration = duration
}

// SetFormatter overrides the default match-highlight row text. The
// formatter receives the option and the query it matched.
func (widget *Widget[T]) SetFormatter(formatter func(option T, query string) string) {
	widget.formatter = formatter
}

// SetRenderer installs a custom row renderer. A renderer takes
// precedence over a formatter.
func (widget *Widget[T]) SetRenderer(renderer ResultRenderer[T]) {
	widget.renderer = renderer
}

// SetLogger directs lookup failures somewhere visible. A nil logger
// silences them.
func (widget *Widget[T]) SetLogger(logger *slog.Logger) {
	widget.logger = logger
}

// OnSelect registers the observer invoked with each chosen option.
func (widget *Widget[T]) OnSelect(observer func(option T)) {
	widget.onSelect = observer
}

// SetPosition places the input row's left edge at screen coordinates
// (x, y). The menu anchors directly below.
func (widget *Widget[T]) SetPosition(x, y int) {
	widget.anchorX = x
	widget.anchorY = y
	widget.menu.AnchorX = x
	widget.menu.AnchorY = y + 1
}

// SetWidth sets the input row width in columns.
func (widget *Widget[T]) SetWidth(width int) {
	widget.width = width
	widget.input.Width = width - 4 // room for icon/spinner chrome
}

// Attach subscribes the widget to the application's click router. The
// subscription handles both inside clicks (open, cursor, select) and
// outside clicks (dismiss); it lives until [Widget.Close].
func (widget *Widget[T]) Attach(router *tui.ClickRouter) {
	if widget.routerCancel != nil {
		widget.routerCancel()
	}
	widget.routerCancel = router.Subscribe(widget.handleClick)
}

// Close tears the widget down: the click-router subscription is
// removed and any pending debounce timer or in-flight lookup is
// stopped. The widget must not be used afterwards.
func (widget *Widget[T]) Close() {
	if widget.closed {
		return
	}
	widget.closed = true
	if widget.routerCancel != nil {
		widget.routerCancel()
		widget.routerCancel = nil
	}
	widget.pipeline.Close()
}

// Active reports whether the dropdown is open. Exposed for styling by
// the embedding layer.
func (widget *Widget[T]) Active() bool {
	return widget.menu.IsOpen()
}

// Loading reports whether a search is in flight. Exposed for styling.
func (widget *Widget[T]) Loading() bool {
	return widget.pipeline.Searching()
}

// Query returns the current input text.
func (widget *Widget[T]) Query() string {
	return widget.pipeline.Query()
}

// Focused reports whether the input has keyboard focus.
func (widget *Widget[T]) Focused() bool {
	return widget.input.Focused()
}

// Init arms the pipeline event listener. The embedding model includes
// the returned command in its own Init batch.
func (widget *Widget[T]) Init() tea.Cmd {
	return widget.listenForPipeline()
}

// listenForPipeline returns a command that blocks until the pipeline
// settles something, then delivers it as an EventMsg. Re-armed from
// Update after each delivery.
func (widget *Widget[T]) listenForPipeline() tea.Cmd {
	events := widget.pipeline.Events()
	id := widget.id
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return EventMsg{ID: id, Event: event}
	}
}

// Focus gives the input keyboard focus and opens the dropdown when
// the query is non-empty. The exception is a menu mid-reveal, where
// re-opening would restart the animation under the user.
func (widget *Widget[T]) Focus() tea.Cmd {
	command := widget.input.Focus()
	if widget.menu.Revealing(widget.clock.Now()) {
		return command
	}
	widget.syncMenu(widget.pipeline.Query() != "")
	return command
}

// Blur removes keyboard focus and closes the dropdown.
func (widget *Widget[T]) Blur() {
	widget.input.Blur()
	widget.menu.Close()
}

// Update routes one bubbletea message through the widget. The
// embedding model forwards every message here while the widget is on
// screen and batches the returned command with its own.
func (widget *Widget[T]) Update(message tea.Msg) tea.Cmd {
	switch message := message.(type) {
	case EventMsg:
		if message.ID != widget.id {
			return nil
		}
		return tea.Batch(widget.handleEvent(message.Event), widget.listenForPipeline())

	case spinner.TickMsg:
		if !widget.pipeline.Searching() {
			return nil
		}
		var command tea.Cmd
		widget.spin, command = widget.spin.Update(message)
		return command

	case tea.KeyMsg:
		return widget.handleKey(message)
	}
	return nil
}

// handleKey processes a keystroke: dropdown navigation when the menu
// is open, text editing otherwise.
func (widget *Widget[T]) handleKey(message tea.KeyMsg) tea.Cmd {
	if widget.menu.IsOpen() {
		switch {
		case key.Matches(message, widget.keys.Up):
			widget.menu.MoveUp()
			return nil
		case key.Matches(message, widget.keys.Down):
			widget.menu.MoveDown()
			return nil
		case key.Matches(message, widget.keys.Select):
			widget.selectCursor()
			return nil
		case key.Matches(message, widget.keys.Close):
			widget.menu.Close()
			return nil
		}
	}

	if !widget.input.Focused() {
		return nil
	}

	before := widget.input.Value()
	var command tea.Cmd
	widget.input, command = widget.input.Update(message)
	after := widget.input.Value()
	if after == before {
		return command
	}

	widget.pipeline.UpdateQueryDelayed(after, nil)
	// The settle event re-renders; the spinner needs its own ticks
	// while the window is open.
	return tea.Batch(command, widget.spin.Tick)
}

// handleEvent applies one pipeline settlement.
func (widget *Widget[T]) handleEvent(event Event) tea.Cmd {
	if event.Kind == EventLookupError {
		if widget.logger != nil {
			widget.logger.Warn("search lookup failed",
				"query", event.Query, "error", event.Err)
		}
		return nil
	}

	if event.Delayed {
		// Delayed settlements drive the open/close policy: open on a
		// non-empty query (zero results show the localized no-results
		// state), close on an empty one.
		widget.syncMenu(event.Query != "")
	} else if widget.menu.IsOpen() {
		widget.refreshRows()
	}
	return nil
}

// syncMenu opens or closes the dropdown and, when opening, rebuilds
// its rows from the current results.
func (widget *Widget[T]) syncMenu(open bool) {
	if !open {
		widget.menu.Close()
		return
	}
	widget.refreshRows()
	if !widget.menu.IsOpen() {
		widget.menu.Open(widget.clock.Now())
	}
}

// refreshRows rebuilds the menu rows from the pipeline's results,
// truncated to the display cap, and sets the no-results state when
// the list is empty.
func (widget *Widget[T]) refreshRows() {
	results := widget.pipeline.Results()
	query := widget.pipeline.Query()

	limit := len(results)
	if limit > widget.maxResults {
		limit = widget.maxResults
	}

	rows := make([]string, 0, limit)
	for _, option := range results[:limit] {
		rows = append(rows, widget.renderRow(option, query))
	}
	widget.menu.SetRows(rows)

	if len(rows) == 0 {
		widget.menu.Header = widget.locale.Get(locale.KeyNoResultsTitle)
		widget.menu.Message = widget.locale.Get(locale.KeyNoResultsMessage)
	} else {
		widget.menu.Header = ""
		widget.menu.Message = ""
	}
}

// renderRow produces the display text for one result row: the custom
// renderer if installed, else the formatter, else the display text
// with query matches emphasized.
func (widget *Widget[T]) renderRow(option T, query string) string {
	if widget.renderer != nil {
		return widget.renderer.Render(option, query)
	}
	if widget.formatter != nil {
		return widget.formatter(option, query)
	}
	emphasis := lipgloss.NewStyle().Background(widget.theme.MatchHighlight)
	return tui.HighlightMatches(widget.pipeline.Read(option), query, func(match string) string {
		return emphasis.Render(match)
	})
}

// selectCursor chooses the result under the menu cursor.
func (widget *Widget[T]) selectCursor() {
	results := widget.pipeline.Results()
	index := widget.menu.Cursor
	if index < 0 || index >= len(results) || index >= widget.maxResults {
		return
	}
	widget.choose(results[index])
}

// choose applies a selection: the pipeline records it per the retain
// policy, the input mirrors the resulting query, the menu closes, and
// the observer hears about it.
func (widget *Widget[T]) choose(option T) {
	widget.pipeline.Select(option)
	widget.input.SetValue(widget.pipeline.Query())
	widget.input.CursorEnd()
	widget.menu.Close()
	if widget.onSelect != nil {
		widget.onSelect(option)
	}
}

// handleClick is the click-router subscription: clicks on the input
// row open the menu (non-empty query only), clicks on a menu row
// select it, and clicks anywhere else dismiss the menu.
func (widget *Widget[T]) handleClick(x, y int) {
	now := widget.clock.Now()

	if widget.inputContains(x, y) {
		if widget.pipeline.Query() != "" && !widget.menu.Revealing(now) {
			widget.syncMenu(true)
		}
		return
	}

	if widget.menu.IsOpen() && widget.menu.Contains(x, y, now) {
		if row := widget.menu.RowAt(y); row >= 0 {
			widget.menu.Cursor = row
			widget.selectCursor()
		}
		return
	}

	widget.menu.Close()
}

// inputContains reports whether a screen coordinate falls on the
// input row.
func (widget *Widget[T]) inputContains(x, y int) bool {
	return y == widget.anchorY && x >= widget.anchorX && x < widget.anchorX+widget.width
}

// View renders the input row: optional icon, the text input, and a
// spinner while a search is in flight.
func (widget *Widget[T]) View() string {
	row := ""
	if widget.hasIcon {
		row += lipgloss.NewStyle().
			Foreground(widget.theme.FaintText).
			Render(searchGlyph) + " "
	}
	row += widget.input.View()
	if widget.pipeline.Searching() {
		row += " " + widget.spin.View()
	}
	return tui.Truncate(row, widget.width)
}

// MenuLines returns the rendered dropdown lines for the embedding
// model to splice over its frame at [Widget.MenuAnchor], or nil when
// the menu is closed.
func (widget *Widget[T]) MenuLines() []string {
	return widget.menu.Render(widget.theme, widget.clock.Now())
}

// MenuAnchor returns the screen position of the dropdown's top-left
// corner.
func (widget *Widget[T]) MenuAnchor() (x, y int) {
	return widget.menu.AnchorX, widget.menu.AnchorY
}
