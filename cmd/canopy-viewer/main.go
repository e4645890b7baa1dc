// Copyright 2026 The Canopy Authors
// SPDX-License-Identifier: Apache-2.0

// canopy-viewer is a terminal browser over a JSONC card catalog. It
// composes the Canopy widgets: a typeahead search box over the card
// titles and tags, and one animated collapse panel per card.
//
// By default the catalog file is watched for changes via inotify and
// the browser reloads in place; --no-watch loads it once.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/canopy-ui/canopy/lib/cardui"
	"github.com/canopy-ui/canopy/lib/clock"
	"github.com/canopy-ui/canopy/lib/locale"
	"github.com/canopy-ui/canopy/lib/tui"
	"github.com/canopy-ui/canopy/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var catalogPath string
	var themePath string
	var localePath string
	var noWatch bool
	var logOutput string

	flagSet := pflag.NewFlagSet("canopy-viewer", pflag.ContinueOnError)
	flagSet.StringVar(&catalogPath, "catalog", "cards.jsonc", "path to the JSONC card catalog")
	flagSet.StringVar(&themePath, "theme", "", "YAML theme overlay file")
	flagSet.StringVar(&localePath, "locale", "", "YAML string catalog overriding the built-in text")
	flagSet.BoolVar(&noWatch, "no-watch", false, "load the catalog once instead of watching it")
	flagSet.StringVar(&logOutput, "log-output", "", "write JSON log records to this file (in addition to TUI display)")
	flagSet.BoolP("help", "h", false, "show help")

	// Handle --version before flag parsing so it works regardless of
	// other arguments.
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Println("canopy-viewer " + version.Info())
		return nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("stdout is not a terminal")
	}

	theme := tui.DefaultTheme
	if themePath != "" {
		loaded, err := tui.LoadThemeFile(themePath)
		if err != nil {
			return err
		}
		theme = loaded
	}

	provider := locale.Default()
	if localePath != "" {
		catalog, err := locale.LoadCatalogFile(localePath)
		if err != nil {
			return err
		}
		provider = locale.Chain(catalog, locale.Default())
	}

	// Startup errors go to stderr; once the program runs, background
	// logging routes into the status bar instead (stderr would corrupt
	// the alt-screen display).
	tuiHandler := tui.NewLogHandler(slog.LevelWarn)
	var backgroundLogger *slog.Logger
	if logOutput != "" {
		fileHandler, fileCloser, err := openFileLogHandler(logOutput)
		if err != nil {
			return fmt.Errorf("cannot open log file %s: %w", logOutput, err)
		}
		defer fileCloser()
		backgroundLogger = slog.New(fanoutHandler{tuiHandler, fileHandler})
	} else {
		backgroundLogger = slog.New(tuiHandler)
	}

	var source *cardui.CatalogSource
	if noWatch {
		cards, err := cardui.LoadCatalogFile(catalogPath)
		if err != nil {
			return err
		}
		source = cardui.NewCatalogSource(cards)
	} else {
		watched, cleanup, err := cardui.WatchCatalogFile(catalogPath, backgroundLogger)
		if err != nil {
			return err
		}
		defer cleanup()
		source = watched
	}

	model := cardui.NewModel(source, clock.Real(), provider, theme)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion())
	tuiHandler.SetProgram(program)

	_, err := program.Run()
	return err
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `Canopy card viewer — interactive terminal browser for a card catalog.

Loads cards from a JSONC catalog file and presents them as collapse
panels under a typeahead search box. The catalog is watched for
changes unless --no-watch is given.

Usage:
  canopy-viewer [flags]

Examples:
  # Browse the default catalog in the current directory
  canopy-viewer

  # A specific catalog, loaded once
  canopy-viewer --catalog docs/cards.jsonc --no-watch

  # Custom colors and strings
  canopy-viewer --theme theme.yaml --locale de.yaml

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}

// openFileLogHandler creates a slog.JSONHandler that writes to the
// given file path. Returns the handler, a cleanup function to close
// the file, and any error. The file is created or truncated.
func openFileLogHandler(path string) (slog.Handler, func(), error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	handler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug})
	return handler, func() { file.Close() }, nil
}

// fanoutHandler is a slog.Handler that sends each record to multiple
// underlying handlers. A record is enabled if any sub-handler is
// enabled for that level.
type fanoutHandler []slog.Handler

func (handlers fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (handlers fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, handler := range handlers {
		if handler.Enabled(ctx, record.Level) {
			if err := handler.Handle(ctx, record); err != nil {
				return err
			}
		}
	}
	return nil
}

func (handlers fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	derived := make(fanoutHandler, len(handlers))
	for index, handler := range handlers {
		derived[index] = handler.WithAttrs(attrs)
	}
	return derived
}

func (handlers fanoutHandler) WithGroup(name string) slog.Handler {
	derived := make(fanoutHandler, len(handlers))
	for index, handler := range handlers {
		derived[index] = handler.WithGroup(name)
	}
	return derived
}
