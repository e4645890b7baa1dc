// Copyright 2026 The Canopy Authors
// SPDX-License-Identifier: Apache-2.0

package cardui

import (
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/canopy-ui/canopy/lib/clock"
	"github.com/canopy-ui/canopy/lib/collapse"
	"github.com/canopy-ui/canopy/lib/locale"
	"github.com/canopy-ui/canopy/lib/search"
	"github.com/canopy-ui/canopy/lib/tui"
)

// Screen layout constants: the search row sits at the top, the card
// area starts below a separator row, and the status bar takes the
// bottom row.
const (
	searchRow  = 0
	contentTop = 2
)

// searchWidth caps the input row; the dropdown hangs below it.
const searchWidth = 40

// catalogMsg delivers a catalog reload into the update loop.
type catalogMsg struct {
	cards []Card
}

// Model is the card browser: a typeahead search over card titles and
// tags above a scrollable stack of collapse panels, one per card.
// Selecting a search result expands that card and collapses the rest.
type Model struct {
	source *CatalogSource
	clock  clock.Clock
	theme  tui.Theme
	locale locale.Provider
	keys   KeyMap
	router *tui.ClickRouter

	searchWidget *search.Widget[Card]

	// chosen is the box the search widget's selection observer writes
	// into; Update drains it after routing messages to the widget.
	chosen *string

	cards  []Card
	panels []collapse.Model
	focus  int

	viewport viewport.Model
	width    int
	height   int

	statusText  string
	statusError bool

	events <-chan ChangeEvent
}

// NewModel builds a browser over the given catalog source.
func NewModel(source *CatalogSource, clk clock.Clock, provider locale.Provider, theme tui.Theme) Model {
	router := tui.NewClickRouter()
	chosen := new(string)

	widget := search.NewWidget(clk, Card.SearchText, provider)
	widget.SetTheme(theme)
	widget.SetHasIcon(true)
	widget.SetPosition(0, searchRow)
	widget.SetWidth(searchWidth)
	// Selection jumps to a card; keeping the matched text in the
	// input would just filter the next search, so clear it.
	widget.SetRetain(false)
	widget.SetFormatter(func(card Card, query string) string {
		emphasis := lipgloss.NewStyle().Background(theme.MatchHighlight)
		return tui.HighlightMatches(card.Title, query, func(match string) string {
			return emphasis.Render(match)
		})
	})
	widget.OnSelect(func(card Card) { *chosen = card.Name })
	widget.Attach(router)

	model := Model{
		source:       source,
		clock:        clk,
		theme:        theme,
		locale:       provider,
		keys:         DefaultKeyMap,
		router:       router,
		searchWidget: widget,
		chosen:       chosen,
		viewport:     viewport.New(80, 24),
		width:        80,
		height:       24,
		events:       source.Subscribe(),
	}
	model.setCards(source.Cards())
	return model
}

// SetKeyMap replaces the browser key bindings.
func (model *Model) SetKeyMap(keys KeyMap) {
	model.keys = keys
}

// setCards rebuilds the panel stack and the search options for a new
// catalog snapshot. Panels start collapsed; the pristine rule makes
// that initial position instantaneous.
func (model *Model) setCards(cards []Card) {
	model.cards = cards
	model.searchWidget.SetOptions(cards)

	model.panels = make([]collapse.Model, len(cards))
	for index, card := range cards {
		panel := collapse.NewModel(model.clock, card.Title, model.renderBody(card))
		panel.SetTheme(model.theme)
		panel.SetWidth(model.width)
		panel.SetCollapsed(true)
		model.panels[index] = panel
	}
	if model.focus >= len(cards) {
		model.focus = 0
	}
}

// renderBody renders a card's markdown body into content lines.
func (model *Model) renderBody(card Card) []string {
	rendered := RenderMarkdown(card.Body, model.theme, model.width)
	if rendered == "" {
		return nil
	}
	lines := strings.Split(rendered, "\n")
	if len(card.Tags) > 0 {
		tagStyle := lipgloss.NewStyle().Foreground(model.theme.TagForeground)
		lines = append([]string{tagStyle.Render("[" + strings.Join(card.Tags, "] [") + "]")}, lines...)
	}
	return lines
}

// Init implements tea.Model.
func (model Model) Init() tea.Cmd {
	return tea.Batch(model.searchWidget.Init(), model.listenForCatalog())
}

// listenForCatalog blocks on the source's change channel and delivers
// the next reload.
func (model Model) listenForCatalog() tea.Cmd {
	events := model.events
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return catalogMsg{cards: event.Cards}
	}
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	var commands []tea.Cmd

	switch message := message.(type) {
	case tea.WindowSizeMsg:
		model.resize(message.Width, message.Height)
		return model, nil

	case tea.KeyMsg:
		return model.handleKey(message)

	case tea.MouseMsg:
		return model, model.handleMouse(message)

	case catalogMsg:
		model.setCards(message.cards)
		return model, model.listenForCatalog()

	case collapse.FrameMsg:
		for index := range model.panels {
			var command tea.Cmd
			model.panels[index], command = model.panels[index].Update(message)
			commands = append(commands, command)
		}
		return model, tea.Batch(commands...)

	case tui.LogMsg:
		model.statusText = message.Text
		model.statusError = message.Level >= slog.LevelError
		return model, nil
	}

	// Everything else (pipeline events, spinner ticks) belongs to the
	// search widget.
	commands = append(commands, model.searchWidget.Update(message))
	commands = append(commands, model.applySelection()...)
	return model, tea.Batch(commands...)
}

// resize recomputes the layout for new terminal dimensions and
// re-renders card bodies at the new width.
func (model *Model) resize(width, height int) {
	model.width = width
	model.height = height

	inputWidth := searchWidth
	if inputWidth > width {
		inputWidth = width
	}
	model.searchWidget.SetWidth(inputWidth)

	model.viewport.Width = width
	model.viewport.Height = height - contentTop - 1
	if model.viewport.Height < 1 {
		model.viewport.Height = 1
	}

	for index, card := range model.cards {
		model.panels[index].SetWidth(width)
		model.panels[index].SetContent(model.renderBody(card))
	}
}

// handleKey routes a keystroke: the focused search widget sees it
// first, then the browser bindings apply.
func (model Model) handleKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	if model.searchWidget.Focused() {
		if key.Matches(message, model.searchWidget.KeyMap().Close) && !model.searchWidget.Active() {
			// The close key with the dropdown already closed leaves
			// the input.
			model.searchWidget.Blur()
			return model, nil
		}
		commands := []tea.Cmd{model.searchWidget.Update(message)}
		commands = append(commands, model.applySelection()...)
		return model, tea.Batch(commands...)
	}

	switch {
	case key.Matches(message, model.keys.Quit):
		model.searchWidget.Close()
		return model, tea.Quit

	case key.Matches(message, model.keys.Search):
		return model, model.searchWidget.Focus()

	case key.Matches(message, model.keys.Down):
		if model.focus < len(model.panels)-1 {
			model.focus++
			model.scrollFocusIntoView()
		}
		return model, nil

	case key.Matches(message, model.keys.Up):
		if model.focus > 0 {
			model.focus--
			model.scrollFocusIntoView()
		}
		return model, nil

	case key.Matches(message, model.keys.Toggle):
		if model.focus < len(model.panels) {
			return model, model.panels[model.focus].Toggle()
		}
		return model, nil

	case key.Matches(message, model.keys.ScrollDown):
		model.viewport.HalfViewDown()
		return model, nil

	case key.Matches(message, model.keys.ScrollUp):
		model.viewport.HalfViewUp()
		return model, nil
	}

	return model, nil
}

// handleMouse dispatches clicks to the router (which the search
// widget's open/close policy hangs off) and toggles panels on header
// clicks.
func (model *Model) handleMouse(message tea.MouseMsg) tea.Cmd {
	if message.Action != tea.MouseActionPress || message.Button != tea.MouseButtonLeft {
		return nil
	}

	menuWasOpen := model.searchWidget.Active()
	model.router.Dispatch(message.X, message.Y)

	commands := model.applySelection()
	if menuWasOpen || message.Y < contentTop {
		// The click belonged to the menu or the search row; don't
		// also toggle whatever panel sits underneath.
		return tea.Batch(commands...)
	}

	contentY := message.Y - contentTop + model.viewport.YOffset
	offset := 0
	for index := range model.panels {
		if contentY == offset {
			model.focus = index
			commands = append(commands, model.panels[index].Toggle())
			break
		}
		offset += model.panels[index].Height() + 1
	}
	return tea.Batch(commands...)
}

// applySelection drains the search widget's selection box: the chosen
// card expands, every other open panel collapses, and the focus moves.
func (model *Model) applySelection() []tea.Cmd {
	name := *model.chosen
	if name == "" {
		return nil
	}
	*model.chosen = ""

	var commands []tea.Cmd
	for index := range model.cards {
		panel := &model.panels[index]
		if model.cards[index].Name == name {
			model.focus = index
			commands = append(commands, panel.SetCollapsed(false))
		} else if !panel.Status().Collapsed() {
			commands = append(commands, panel.SetCollapsed(true))
		}
	}
	model.scrollFocusIntoView()
	return commands
}

// scrollFocusIntoView adjusts the viewport so the focused card's
// header row is visible.
func (model *Model) scrollFocusIntoView() {
	offset := 0
	for index := 0; index < model.focus; index++ {
		offset += model.panels[index].Height() + 1
	}
	if offset < model.viewport.YOffset {
		model.viewport.SetYOffset(offset)
	} else if bottom := model.viewport.YOffset + model.viewport.Height; offset >= bottom {
		model.viewport.SetYOffset(offset - model.viewport.Height + 1)
	}
}

// contentView renders the panel stack.
func (model Model) contentView() string {
	if len(model.panels) == 0 {
		return lipgloss.NewStyle().
			Foreground(model.theme.FaintText).
			Render(model.locale.Get(locale.KeyBrowserEmpty))
	}
	views := make([]string, len(model.panels))
	for index := range model.panels {
		views[index] = model.panels[index].View()
	}
	return strings.Join(views, "\n\n")
}

// statusView renders the bottom bar: the browser title, a log line
// when one arrived, otherwise the help text.
func (model Model) statusView() string {
	text := model.statusText
	foreground := model.theme.StatusBarForeground
	if text == "" {
		text = model.locale.Get(locale.KeyBrowserTitle) + "  ·  " + model.locale.Get(locale.KeyBrowserHelp)
	} else if model.statusError {
		foreground = model.theme.ErrorForeground
	}
	return lipgloss.NewStyle().
		Foreground(foreground).
		Background(model.theme.StatusBarBackground).
		Width(model.width).
		Render(" " + tui.Truncate(text, model.width-2))
}

// View implements tea.Model.
func (model Model) View() string {
	// The viewport is updated on a copy: View must not mutate the
	// stored model, and scroll state lives in Update.
	paging := model.viewport
	paging.SetContent(model.contentView())

	frame := model.searchWidget.View() + "\n\n" + paging.View() + "\n" + model.statusView()

	if lines := model.searchWidget.MenuLines(); len(lines) > 0 {
		x, y := model.searchWidget.MenuAnchor()
		frame = tui.SpliceOverlay(frame, lines, x, y)
	}
	return frame
}
