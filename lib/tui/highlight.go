// Copyright 2026 The Canopy Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"
	"unicode"
)

// HighlightMatches wraps every case-insensitive occurrence of query
// in text with the mark function and returns the reassembled string.
// Non-matching spans pass through untouched, occurrences do not
// overlap, and an empty query returns text unchanged.
//
// The mark function is typically a themed lipgloss style's Render;
// tests pass plain string markers.
func HighlightMatches(text, query string, mark func(string) string) string {
	if query == "" || text == "" {
		return text
	}

	textRunes := []rune(text)
	queryRunes := []rune(query)
	if len(queryRunes) > len(textRunes) {
		return text
	}

	loweredText := lowerRunes(textRunes)
	loweredQuery := lowerRunes(queryRunes)

	var out strings.Builder
	plainStart := 0
	index := 0
	for index <= len(loweredText)-len(loweredQuery) {
		if !runesHavePrefix(loweredText[index:], loweredQuery) {
			index++
			continue
		}
		if plainStart < index {
			out.WriteString(string(textRunes[plainStart:index]))
		}
		out.WriteString(mark(string(textRunes[index : index+len(queryRunes)])))
		index += len(queryRunes)
		plainStart = index
	}
	if plainStart == 0 {
		return text
	}
	if plainStart < len(textRunes) {
		out.WriteString(string(textRunes[plainStart:]))
	}
	return out.String()
}

// lowerRunes lower-cases runes one-for-one. Per-rune mapping keeps
// indices aligned with the original text, which strings.ToLower does
// not guarantee for every script.
func lowerRunes(runes []rune) []rune {
	lowered := make([]rune, len(runes))
	for index, r := range runes {
		lowered[index] = unicode.ToLower(r)
	}
	return lowered
}

func runesHavePrefix(runes, prefix []rune) bool {
	if len(runes) < len(prefix) {
		return false
	}
	for index, r := range prefix {
		if runes[index] != r {
			return false
		}
	}
	return true
}
