// Copyright 2026 The Canopy Authors
// SPDX-License-Identifier: Apache-2.0

package cardui

import (
	"os"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/canopy-ui/canopy/lib/tui"
)

// wrapBreakpoints are the characters ansi.Wrap may break a long word
// at, matching the rest of the library's prose rendering.
const wrapBreakpoints = " ,.;-+|"

// markdownParser is built once; goldmark parsers are shareable and
// per-call state lives in the reader.
var (
	markdownParser     goldmark.Markdown
	markdownParserOnce sync.Once
)

func getMarkdownParser() goldmark.Markdown {
	markdownParserOnce.Do(func() {
		markdownParser = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		)
	})
	return markdownParser
}

// RenderMarkdown renders a card body as styled terminal text wrapped
// to width. It is a reduced renderer: paragraphs (soft breaks reflow),
// headings, emphasis, strikethrough, code spans, fenced code blocks
// with syntax highlighting, bullet and ordered lists, blockquotes,
// and links as "text (url)". Anything else passes through as its
// inline text.
func RenderMarkdown(input string, theme tui.Theme, width int) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}
	if width < 10 {
		width = 10
	}

	source := []byte(input)
	document := getMarkdownParser().Parser().Parse(text.NewReader(source))

	// Forced ANSI256 profile: output always targets a terminal frame,
	// and auto-detection yields bare text under tests with no TTY.
	lipRenderer := lipgloss.NewRenderer(os.Stderr, termenv.WithProfile(termenv.ANSI256))
	lipRenderer.SetColorProfile(termenv.ANSI256)

	renderer := &markdownRenderer{
		source:      source,
		theme:       theme,
		width:       width,
		lipRenderer: lipRenderer,
	}
	ast.Walk(document, renderer.walk)

	return strings.TrimRight(renderer.output.String(), "\n")
}

// markdownRenderer walks a goldmark AST accumulating inline content
// per block, then word-wraps each block as a unit when it closes.
type markdownRenderer struct {
	source []byte
	theme  tui.Theme
	width  int

	output strings.Builder
	inline strings.Builder

	// Inline style counters; counters rather than booleans so nested
	// emphasis unwinds correctly.
	boldCount   int
	italicCount int
	strikeCount int

	headingLevel int
	quoteDepth   int

	// pendingBullet replaces the line prefix for the next flushed
	// block's first line.
	pendingBullet string

	listStack []listState

	lipRenderer      *lipgloss.Renderer
	trailingNewlines int
}

// listState tracks one level of list nesting.
type listState struct {
	ordered bool
	next    int
}

func (renderer *markdownRenderer) newStyle() lipgloss.Style {
	return renderer.lipRenderer.NewStyle()
}

func (renderer *markdownRenderer) write(text string) {
	if text == "" {
		return
	}
	renderer.output.WriteString(text)

	trailing := 0
	for index := len(text) - 1; index >= 0 && text[index] == '\n'; index-- {
		trailing++
	}
	if trailing == len(text) {
		renderer.trailingNewlines += trailing
	} else {
		renderer.trailingNewlines = trailing
	}
}

func (renderer *markdownRenderer) ensureNewline() {
	if renderer.output.Len() > 0 && renderer.trailingNewlines < 1 {
		renderer.write("\n")
	}
}

func (renderer *markdownRenderer) ensureBlankLine() {
	if renderer.output.Len() == 0 {
		return
	}
	for renderer.trailingNewlines < 2 {
		renderer.write("\n")
	}
}

// linePrefix is the prefix every wrapped line of the current block
// carries: blockquote bars plus list indentation.
func (renderer *markdownRenderer) linePrefix() string {
	prefix := strings.Repeat("│ ", renderer.quoteDepth)
	if depth := len(renderer.listStack); depth > 0 {
		// Continuation lines align under the bullet text.
		indent := depth*2 + 2
		prefix += strings.Repeat(" ", indent)
	}
	return prefix
}

// flushBlock word-wraps the accumulated inline content and writes it
// with prefixes: the pending bullet (if any) on the first line, the
// regular prefix on the rest.
func (renderer *markdownRenderer) flushBlock() {
	content := renderer.inline.String()
	renderer.inline.Reset()
	if content == "" {
		renderer.pendingBullet = ""
		return
	}

	prefix := renderer.linePrefix()
	wrapWidth := renderer.width - ansi.StringWidth(prefix)
	if wrapWidth < 10 {
		wrapWidth = 10
	}
	wrapped := ansi.Wrap(content, wrapWidth, wrapBreakpoints)

	for index, line := range strings.Split(wrapped, "\n") {
		if index == 0 && renderer.pendingBullet != "" {
			renderer.write(strings.Repeat("│ ", renderer.quoteDepth) + renderer.pendingBullet)
		} else {
			renderer.write(prefix)
		}
		renderer.write(line)
		renderer.write("\n")
	}
	renderer.pendingBullet = ""
}

// styledText applies the current inline style state to a fragment.
func (renderer *markdownRenderer) styledText(content string) string {
	style := renderer.newStyle().Foreground(renderer.theme.NormalText)
	if renderer.headingLevel > 0 {
		style = style.Foreground(renderer.theme.HeaderForeground).Bold(true)
	}
	if renderer.boldCount > 0 {
		style = style.Bold(true)
	}
	if renderer.italicCount > 0 {
		style = style.Italic(true)
	}
	if renderer.strikeCount > 0 {
		style = style.Strikethrough(true)
	}
	return style.Render(content)
}

// inlineText collects the raw text of a node's inline children.
func (renderer *markdownRenderer) inlineText(node ast.Node) string {
	var collected strings.Builder
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		if textNode, ok := child.(*ast.Text); ok {
			collected.Write(textNode.Segment.Value(renderer.source))
		}
	}
	return collected.String()
}

// blockLines collects the raw source lines of a code block.
func (renderer *markdownRenderer) blockLines(node ast.Node) string {
	var collected strings.Builder
	lines := node.Lines()
	for index := 0; index < lines.Len(); index++ {
		segment := lines.At(index)
		collected.Write(segment.Value(renderer.source))
	}
	return collected.String()
}

// highlightCode syntax-highlights fenced code via chroma, falling
// back to faint plain text for unknown languages.
func (renderer *markdownRenderer) highlightCode(code, language string) string {
	if language != "" {
		var highlighted strings.Builder
		if err := quick.Highlight(&highlighted, code, language, "terminal256", "monokai"); err == nil {
			return highlighted.String()
		}
	}
	return renderer.newStyle().Foreground(renderer.theme.CodeForeground).Render(code)
}

// writeCodeBlock emits a code block indented two columns.
func (renderer *markdownRenderer) writeCodeBlock(code, language string) {
	renderer.ensureBlankLine()
	highlighted := strings.TrimRight(renderer.highlightCode(code, language), "\n")
	prefix := strings.Repeat("│ ", renderer.quoteDepth) + "  "
	for _, line := range strings.Split(highlighted, "\n") {
		renderer.write(prefix + line + "\n")
	}
	renderer.write("\n")
}

func (renderer *markdownRenderer) walk(node ast.Node, entering bool) (ast.WalkStatus, error) {
	switch typed := node.(type) {
	case *ast.Document:
		return ast.WalkContinue, nil

	case *ast.Heading:
		if entering {
			renderer.ensureBlankLine()
			renderer.headingLevel = typed.Level
		} else {
			renderer.flushBlock()
			renderer.headingLevel = 0
		}
		return ast.WalkContinue, nil

	case *ast.Paragraph:
		if !entering {
			renderer.ensureBlankLine()
			renderer.flushBlock()
			renderer.write("\n")
		}
		return ast.WalkContinue, nil

	case *ast.TextBlock:
		// Tight list items hold their text in a TextBlock; flush
		// without the paragraph's surrounding blank lines.
		if !entering {
			renderer.flushBlock()
		}
		return ast.WalkContinue, nil

	case *ast.Text:
		if entering {
			renderer.inline.WriteString(renderer.styledText(string(typed.Segment.Value(renderer.source))))
			if typed.HardLineBreak() {
				renderer.inline.WriteString("\n")
			} else if typed.SoftLineBreak() {
				// Reflow: hard-wrapped source joins into one line.
				renderer.inline.WriteString(" ")
			}
		}
		return ast.WalkContinue, nil

	case *ast.Emphasis:
		if typed.Level >= 2 {
			renderer.adjust(&renderer.boldCount, entering)
		} else {
			renderer.adjust(&renderer.italicCount, entering)
		}
		return ast.WalkContinue, nil

	case *extast.Strikethrough:
		renderer.adjust(&renderer.strikeCount, entering)
		return ast.WalkContinue, nil

	case *ast.CodeSpan:
		if entering {
			code := renderer.inlineText(typed)
			renderer.inline.WriteString(
				renderer.newStyle().Foreground(renderer.theme.CodeForeground).Render(code))
		}
		return ast.WalkSkipChildren, nil

	case *ast.Link:
		if !entering {
			renderer.inline.WriteString(
				renderer.newStyle().Foreground(renderer.theme.LinkForeground).
					Render(" (" + string(typed.Destination) + ")"))
		}
		return ast.WalkContinue, nil

	case *ast.AutoLink:
		if entering {
			renderer.inline.WriteString(
				renderer.newStyle().Foreground(renderer.theme.LinkForeground).
					Render(string(typed.URL(renderer.source))))
		}
		return ast.WalkSkipChildren, nil

	case *ast.FencedCodeBlock:
		if entering {
			renderer.writeCodeBlock(renderer.blockLines(typed), string(typed.Language(renderer.source)))
		}
		return ast.WalkSkipChildren, nil

	case *ast.CodeBlock:
		if entering {
			renderer.writeCodeBlock(renderer.blockLines(typed), "")
		}
		return ast.WalkSkipChildren, nil

	case *ast.List:
		if entering {
			renderer.ensureNewline()
			if len(renderer.listStack) == 0 {
				renderer.ensureBlankLine()
			}
			start := typed.Start
			if start == 0 {
				start = 1
			}
			renderer.listStack = append(renderer.listStack, listState{
				ordered: typed.IsOrdered(),
				next:    start,
			})
		} else {
			renderer.listStack = renderer.listStack[:len(renderer.listStack)-1]
			if len(renderer.listStack) == 0 {
				renderer.ensureBlankLine()
			}
		}
		return ast.WalkContinue, nil

	case *ast.ListItem:
		if entering {
			depth := len(renderer.listStack)
			state := &renderer.listStack[depth-1]
			indent := strings.Repeat(" ", depth*2)
			if state.ordered {
				renderer.pendingBullet = indent + intToString(state.next) + ". "
				state.next++
			} else {
				renderer.pendingBullet = indent + "• "
			}
		} else {
			renderer.ensureNewline()
		}
		return ast.WalkContinue, nil

	case *ast.Blockquote:
		if entering {
			renderer.ensureBlankLine()
			renderer.quoteDepth++
		} else {
			renderer.quoteDepth--
			renderer.ensureBlankLine()
		}
		return ast.WalkContinue, nil

	case *ast.ThematicBreak:
		if entering {
			renderer.ensureBlankLine()
			rule := strings.Repeat("─", renderer.width/2)
			renderer.write(renderer.newStyle().Foreground(renderer.theme.FaintText).Render(rule))
			renderer.write("\n\n")
		}
		return ast.WalkSkipChildren, nil
	}

	return ast.WalkContinue, nil
}

// adjust bumps an inline style counter in the walk direction.
func (renderer *markdownRenderer) adjust(counter *int, entering bool) {
	if entering {
		*counter++
	} else if *counter > 0 {
		*counter--
	}
}

// intToString formats a small positive int without pulling strconv
// into the hot path of a render.
func intToString(value int) string {
	if value <= 0 {
		return "0"
	}
	var digits [20]byte
	position := len(digits)
	for value > 0 {
		position--
		digits[position] = byte('0' + value%10)
		value /= 10
	}
	return string(digits[position:])
}
