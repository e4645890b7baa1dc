// Copyright 2026 The Canopy Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// Theme defines the color palette for Canopy widgets. All colors use
// lipgloss ANSI 256-color codes for broad terminal compatibility.
//
// The fields cover the chrome every widget shares (text, selection,
// borders) plus the widget-specific accents: query match highlighting
// for the search menu, the disclosure glyph for collapse panels, and
// the status line used by embedding applications.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Selected menu row.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// UI chrome.
	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color

	// Search widget accents.
	MatchHighlight  lipgloss.Color // Background tint for query matches in menu rows.
	MenuBackground  lipgloss.Color // Background fill behind open menus.
	LoadingAccent   lipgloss.Color // Spinner and in-flight query indicator.
	PlaceholderText lipgloss.Color // Input placeholder foreground.

	// Collapse panel accents.
	PanelTitle      lipgloss.Color // Panel header title text.
	DisclosureGlyph lipgloss.Color // The expand/collapse marker.

	// Markdown body rendering.
	LinkForeground lipgloss.Color // Inline link URLs.
	CodeForeground lipgloss.Color // Code spans and unhighlighted blocks.

	// Embedding application chrome.
	TagForeground       lipgloss.Color // Card tag labels.
	StatusBarForeground lipgloss.Color
	StatusBarBackground lipgloss.Color
	ErrorForeground     lipgloss.Color // Error text in the status line.
}

// DefaultTheme is the built-in dark-terminal color scheme. Designed
// for 256-color terminals with a dark background.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),

	MatchHighlight:  lipgloss.Color("58"),  // dark amber
	MenuBackground:  lipgloss.Color("237"), // slightly lighter than terminal background
	LoadingAccent:   lipgloss.Color("220"), // amber
	PlaceholderText: lipgloss.Color("240"),

	PanelTitle:      lipgloss.Color("255"),
	DisclosureGlyph: lipgloss.Color("75"), // blue

	LinkForeground: lipgloss.Color("75"),
	CodeForeground: lipgloss.Color("245"),

	TagForeground:       lipgloss.Color("141"), // light purple
	StatusBarForeground: lipgloss.Color("252"),
	StatusBarBackground: lipgloss.Color("236"),
	ErrorForeground:     lipgloss.Color("196"), // red
}

// themeFile is the YAML shape of a theme override file. Every field is
// optional; empty values keep the default. Color values are lipgloss
// color strings: ANSI 256 codes ("75") or hex ("#5f87ff").
type themeFile struct {
	NormalText          string `yaml:"normal_text"`
	FaintText           string `yaml:"faint_text"`
	SelectedBackground  string `yaml:"selected_background"`
	SelectedForeground  string `yaml:"selected_foreground"`
	HeaderForeground    string `yaml:"header_foreground"`
	BorderColor         string `yaml:"border_color"`
	HelpText            string `yaml:"help_text"`
	MatchHighlight      string `yaml:"match_highlight"`
	MenuBackground      string `yaml:"menu_background"`
	LoadingAccent       string `yaml:"loading_accent"`
	PlaceholderText     string `yaml:"placeholder_text"`
	PanelTitle          string `yaml:"panel_title"`
	DisclosureGlyph     string `yaml:"disclosure_glyph"`
	LinkForeground      string `yaml:"link_foreground"`
	CodeForeground      string `yaml:"code_foreground"`
	TagForeground       string `yaml:"tag_foreground"`
	StatusBarForeground string `yaml:"status_bar_foreground"`
	StatusBarBackground string `yaml:"status_bar_background"`
	ErrorForeground     string `yaml:"error_foreground"`
}

// LoadThemeFile reads a YAML theme file and overlays it onto
// DefaultTheme. Fields absent from the file keep their defaults.
func LoadThemeFile(path string) (Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, fmt.Errorf("reading theme file: %w", err)
	}
	return ParseTheme(data)
}

// ParseTheme overlays YAML theme data onto DefaultTheme.
func ParseTheme(data []byte) (Theme, error) {
	var file themeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Theme{}, fmt.Errorf("parsing theme: %w", err)
	}

	theme := DefaultTheme
	overlay := func(target *lipgloss.Color, value string) {
		if value != "" {
			*target = lipgloss.Color(value)
		}
	}
	overlay(&theme.NormalText, file.NormalText)
	overlay(&theme.FaintText, file.FaintText)
	overlay(&theme.SelectedBackground, file.SelectedBackground)
	overlay(&theme.SelectedForeground, file.SelectedForeground)
	overlay(&theme.HeaderForeground, file.HeaderForeground)
	overlay(&theme.BorderColor, file.BorderColor)
	overlay(&theme.HelpText, file.HelpText)
	overlay(&theme.MatchHighlight, file.MatchHighlight)
	overlay(&theme.MenuBackground, file.MenuBackground)
	overlay(&theme.LoadingAccent, file.LoadingAccent)
	overlay(&theme.PlaceholderText, file.PlaceholderText)
	overlay(&theme.PanelTitle, file.PanelTitle)
	overlay(&theme.DisclosureGlyph, file.DisclosureGlyph)
	overlay(&theme.LinkForeground, file.LinkForeground)
	overlay(&theme.CodeForeground, file.CodeForeground)
	overlay(&theme.TagForeground, file.TagForeground)
	overlay(&theme.StatusBarForeground, file.StatusBarForeground)
	overlay(&theme.StatusBarBackground, file.StatusBarBackground)
	overlay(&theme.ErrorForeground, file.ErrorForeground)
	return theme, nil
}
