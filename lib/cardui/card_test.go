// Copyright 2026 The Canopy Authors
// SPDX-License-Identifier: Apache-2.0

package cardui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleCatalog = `{
	// The demo deck.
	"cards": [
		{
			"name": "collapse",
			"title": "Collapse Panel",
			"tags": ["widget", "animation"],
			"body": "Animated disclosure panel.",
		},
		{
			"name": "search",
			"tags": ["widget"],
			"body": "Typeahead search box.",
		},
	],
}`

func TestParseCatalogAcceptsJSONC(t *testing.T) {
	cards, err := ParseCatalog([]byte(sampleCatalog))
	if err != nil {
		t.Fatalf("ParseCatalog: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("parsed %d cards, want 2", len(cards))
	}
	if cards[0].Title != "Collapse Panel" {
		t.Errorf("title = %q, want Collapse Panel", cards[0].Title)
	}
	if got := cards[1].Title; got != "search" {
		t.Errorf("missing title should fall back to the name, got %q", got)
	}
}

func TestParseCatalogRejectsMissingName(t *testing.T) {
	_, err := ParseCatalog([]byte(`{"cards": [{"title": "Anonymous"}]}`))
	if err == nil || !strings.Contains(err.Error(), "missing name") {
		t.Errorf("err = %v, want a missing-name error", err)
	}
}

func TestParseCatalogRejectsDuplicateNames(t *testing.T) {
	_, err := ParseCatalog([]byte(`{"cards": [{"name": "a"}, {"name": "a"}]}`))
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("err = %v, want a duplicate-name error", err)
	}
}

func TestSearchTextJoinsTitleAndTags(t *testing.T) {
	card := Card{Title: "Collapse Panel", Tags: []string{"widget", "animation"}}
	if got := card.SearchText(); got != "Collapse Panel widget animation" {
		t.Errorf("SearchText = %q", got)
	}
}

func TestLoadCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.jsonc")
	if err := os.WriteFile(path, []byte(sampleCatalog), 0o644); err != nil {
		t.Fatal(err)
	}
	cards, err := LoadCatalogFile(path)
	if err != nil {
		t.Fatalf("LoadCatalogFile: %v", err)
	}
	if len(cards) != 2 {
		t.Errorf("loaded %d cards, want 2", len(cards))
	}

	if _, err := LoadCatalogFile(filepath.Join(t.TempDir(), "absent.jsonc")); err == nil {
		t.Error("missing file should return an error")
	}
}
