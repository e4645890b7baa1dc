// Copyright 2026 The Canopy Authors
// SPDX-License-Identifier: Apache-2.0

package search

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/canopy-ui/canopy/lib/clock"
	"github.com/canopy-ui/canopy/lib/locale"
	"github.com/canopy-ui/canopy/lib/tui"
)

// fruitWidget builds a focused static widget at the screen origin.
func fruitWidget(fake *clock.FakeClock) *Widget[string] {
	widget := NewWidget(fake, identity, locale.Default())
	widget.SetOptions([]string{"Apple", "Banana", "Grape"})
	widget.SetPosition(0, 0)
	widget.SetWidth(30)
	widget.Focus()
	drainEvents(widget.pipeline)
	return widget
}

// typeText feeds each rune through the widget as a keystroke.
func typeText[T any](widget *Widget[T], text string) {
	for _, r := range text {
		widget.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// deliverEvent pumps the next pipeline event through the widget the
// way the program's update loop would.
func deliverEvent[T any](t *testing.T, widget *Widget[T]) {
	t.Helper()
	listen := widget.listenForPipeline()
	done := make(chan tea.Msg, 1)
	go func() { done <- listen() }()
	select {
	case message := <-done:
		widget.Update(message)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a pipeline event")
	}
}

// settleTyping types text and advances past the debounce window,
// delivering the settlement.
func settleTyping(t *testing.T, fake *clock.FakeClock, widget *Widget[string], text string) {
	t.Helper()
	typeText(widget, text)
	fake.Advance(DefaultDelay)
	deliverEvent(t, widget)
}

func plainRows[T any](widget *Widget[T]) []string {
	rows := make([]string, len(widget.menu.Rows))
	for index, row := range widget.menu.Rows {
		rows[index] = ansi.Strip(row)
	}
	return rows
}

func TestTypingSettlesAndOpensMenu(t *testing.T) {
	fake := clock.Fake(epoch)
	widget := fruitWidget(fake)

	typeText(widget, "an")
	if widget.Active() {
		t.Fatal("menu must stay closed until the debounce window settles")
	}
	if !widget.Loading() {
		t.Error("widget should report loading while the window is open")
	}

	fake.Advance(DefaultDelay)
	deliverEvent(t, widget)

	if !widget.Active() {
		t.Fatal("menu should open once a non-empty query settles")
	}
	if widget.Loading() {
		t.Error("loading should clear after settlement")
	}
	if got := plainRows(widget); len(got) != 1 || got[0] != "Banana" {
		t.Errorf("menu rows = %v, want [Banana]", got)
	}
}

func TestEmptyQuerySettleClosesMenu(t *testing.T) {
	fake := clock.Fake(epoch)
	widget := fruitWidget(fake)
	settleTyping(t, fake, widget, "an")
	if !widget.Active() {
		t.Fatal("precondition: menu open")
	}

	// Clear the input with backspaces; the empty query settles and
	// closes the menu. The dropdown intercepts none of these keys.
	widget.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	widget.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	fake.Advance(DefaultDelay)
	deliverEvent(t, widget)

	if widget.Active() {
		t.Error("menu should close when an empty query settles")
	}
}

func TestZeroResultsShowLocalizedNoResultsState(t *testing.T) {
	fake := clock.Fake(epoch)
	widget := fruitWidget(fake)

	settleTyping(t, fake, widget, "zzz")

	if !widget.Active() {
		t.Fatal("menu should open for a non-empty query even with no matches")
	}
	if got := widget.menu.Header; got != "No Results" {
		t.Errorf("no-results header = %q, want the localized default", got)
	}
	if got := widget.menu.Message; got != "Your search returned no results." {
		t.Errorf("no-results message = %q, want the localized default", got)
	}
}

func TestDisplayTruncationKeepsFullResultSet(t *testing.T) {
	fake := clock.Fake(epoch)
	widget := NewWidget(fake, identity, locale.Default())
	options := []string{
		"match 1", "match 2", "match 3", "match 4", "match 5",
		"match 6", "match 7", "match 8", "match 9", "match 10",
	}
	widget.SetOptions(options)
	widget.SetPosition(0, 0)
	widget.Focus()
	drainEvents(widget.pipeline)

	settleTyping(t, fake, widget, "match")

	if got := len(widget.menu.Rows); got != DefaultMaxResults {
		t.Errorf("displayed rows = %d, want %d", got, DefaultMaxResults)
	}
	if got := len(widget.Pipeline().Results()); got != len(options) {
		t.Errorf("pipeline results = %d, want all %d matches", got, len(options))
	}
}

func TestEnterSelectsCursorRowAndRetains(t *testing.T) {
	fake := clock.Fake(epoch)
	widget := fruitWidget(fake)

	var chosen string
	widget.OnSelect(func(option string) { chosen = option })

	settleTyping(t, fake, widget, "an")
	widget.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if chosen != "Banana" {
		t.Errorf("observer received %q, want Banana", chosen)
	}
	if widget.Active() {
		t.Error("selection must close the menu")
	}
	if got := widget.input.Value(); got != "Banana" {
		t.Errorf("input text = %q, want the retained display value", got)
	}
	if got := widget.Query(); got != "Banana" {
		t.Errorf("query = %q, want Banana", got)
	}
}

func TestSelectionWithoutRetainClearsInput(t *testing.T) {
	fake := clock.Fake(epoch)
	widget := fruitWidget(fake)
	widget.SetRetain(false)

	settleTyping(t, fake, widget, "an")
	widget.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if got := widget.input.Value(); got != "" {
		t.Errorf("input text = %q, want empty", got)
	}
	if got := widget.Query(); got != "" {
		t.Errorf("query = %q, want empty", got)
	}
}

func TestArrowKeysMoveCursorWithWrap(t *testing.T) {
	fake := clock.Fake(epoch)
	widget := fruitWidget(fake)

	settleTyping(t, fake, widget, "a") // all three fruits match

	widget.Update(tea.KeyMsg{Type: tea.KeyDown})
	widget.Update(tea.KeyMsg{Type: tea.KeyDown})
	if got := widget.menu.Cursor; got != 2 {
		t.Fatalf("cursor after two downs = %d, want 2", got)
	}
	widget.Update(tea.KeyMsg{Type: tea.KeyDown})
	if got := widget.menu.Cursor; got != 0 {
		t.Errorf("cursor should wrap to 0, got %d", got)
	}
	widget.Update(tea.KeyMsg{Type: tea.KeyUp})
	if got := widget.menu.Cursor; got != 2 {
		t.Errorf("cursor should wrap to the bottom, got %d", got)
	}
}

func TestEscapeClosesMenu(t *testing.T) {
	fake := clock.Fake(epoch)
	widget := fruitWidget(fake)

	settleTyping(t, fake, widget, "an")
	widget.Update(tea.KeyMsg{Type: tea.KeyEsc})

	if widget.Active() {
		t.Error("escape should close the menu")
	}
}

func TestBlurClosesAndFocusReopensWithQuery(t *testing.T) {
	fake := clock.Fake(epoch)
	widget := fruitWidget(fake)

	// An empty query never opens on focus.
	widget.Blur()
	widget.Focus()
	if widget.Active() {
		t.Fatal("focus with an empty query must not open the menu")
	}

	settleTyping(t, fake, widget, "an")
	widget.Blur()
	if widget.Active() {
		t.Fatal("blur must close the menu")
	}
	if widget.Focused() {
		t.Fatal("blur must drop input focus")
	}

	widget.Focus()
	if !widget.Active() {
		t.Error("focus with a non-empty query should reopen the menu")
	}
}

func TestFocusDuringRevealDoesNotReopen(t *testing.T) {
	fake := clock.Fake(epoch)
	widget := fruitWidget(fake)
	widget.SetTransition(tui.TransitionSlideDown, 200*time.Millisecond)

	settleTyping(t, fake, widget, "an")
	if !widget.Active() {
		t.Fatal("precondition: menu open and revealing")
	}

	// Dismiss mid-reveal, then focus again while the reveal window is
	// still running: the menu must stay closed.
	fake.Advance(50 * time.Millisecond)
	widget.Blur()
	widget.Focus()
	if widget.Active() {
		t.Error("focus during the reveal window must not reopen the menu")
	}

	// After the window elapses focus opens normally.
	fake.Advance(200 * time.Millisecond)
	widget.Focus()
	if !widget.Active() {
		t.Error("focus after the reveal window should open the menu")
	}
}

func TestClickPolicy(t *testing.T) {
	fake := clock.Fake(epoch)
	widget := fruitWidget(fake)
	router := tui.NewClickRouter()
	widget.Attach(router)

	// Input-row click with an empty query does nothing.
	router.Dispatch(5, 0)
	if widget.Active() {
		t.Fatal("input click with empty query must not open the menu")
	}

	settleTyping(t, fake, widget, "an")
	if !widget.Active() {
		t.Fatal("precondition: menu open")
	}

	// A click far outside the widget dismisses the menu.
	router.Dispatch(70, 20)
	if widget.Active() {
		t.Fatal("outside click must close the menu")
	}

	// An input-row click with a non-empty query reopens it.
	router.Dispatch(5, 0)
	if !widget.Active() {
		t.Fatal("input click with non-empty query should open the menu")
	}

	// Clicking the only menu row selects it.
	var chosen string
	widget.OnSelect(func(option string) { chosen = option })
	router.Dispatch(2, 1)
	if chosen != "Banana" {
		t.Errorf("row click chose %q, want Banana", chosen)
	}
	if widget.Active() {
		t.Error("row click selection must close the menu")
	}
}

func TestCloseRemovesRouterSubscription(t *testing.T) {
	fake := clock.Fake(epoch)
	widget := fruitWidget(fake)
	router := tui.NewClickRouter()
	widget.Attach(router)

	if got := router.SubscriberCount(); got != 1 {
		t.Fatalf("subscriber count after attach = %d, want 1", got)
	}

	typeText(widget, "a") // leave a debounce timer pending
	widget.Close()

	if got := router.SubscriberCount(); got != 0 {
		t.Errorf("subscriber count after Close = %d, want 0", got)
	}
	if got := fake.PendingCount(); got != 0 {
		t.Errorf("%d timers still pending after Close, want 0", got)
	}

	// Close is idempotent.
	widget.Close()
}

func TestPlaceholderFallsBackToLocale(t *testing.T) {
	widget := NewWidget(clock.Fake(epoch), identity, locale.Default())

	if got := widget.input.Placeholder; got != "Search..." {
		t.Errorf("default placeholder = %q, want the localized default", got)
	}

	widget.SetPlaceholder("Find a card")
	if got := widget.input.Placeholder; got != "Find a card" {
		t.Errorf("placeholder = %q, want the override", got)
	}

	widget.SetPlaceholder("")
	if got := widget.input.Placeholder; got != "Search..." {
		t.Errorf("placeholder after reset = %q, want the localized default", got)
	}
}

func TestCustomFormatterOverridesHighlighting(t *testing.T) {
	fake := clock.Fake(epoch)
	widget := fruitWidget(fake)
	widget.SetFormatter(func(option, query string) string {
		return "[" + option + "]"
	})

	settleTyping(t, fake, widget, "an")

	if got := plainRows(widget); len(got) != 1 || got[0] != "[Banana]" {
		t.Errorf("formatted rows = %v, want [[Banana]]", got)
	}
}

// prefixRenderer is a trivial ResultRenderer for tests.
type prefixRenderer struct{ prefix string }

func (renderer prefixRenderer) Render(option, _ string) string {
	return renderer.prefix + option
}

func TestRendererTakesPrecedenceOverFormatter(t *testing.T) {
	fake := clock.Fake(epoch)
	widget := fruitWidget(fake)
	widget.SetFormatter(func(option, query string) string { return "formatted" })
	widget.SetRenderer(prefixRenderer{prefix: "* "})

	settleTyping(t, fake, widget, "an")

	if got := plainRows(widget); len(got) != 1 || got[0] != "* Banana" {
		t.Errorf("rendered rows = %v, want [* Banana]", got)
	}
}
