// Copyright 2026 The Canopy Authors
// SPDX-License-Identifier: Apache-2.0

package cardui

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"
)

// Card is one entry in the browser's catalog: a short name for
// selection, a display title, optional tags the search also matches
// against, and a markdown body shown inside the card's panel.
type Card struct {
	Name  string   `json:"name"`
	Title string   `json:"title"`
	Tags  []string `json:"tags,omitempty"`
	Body  string   `json:"body"`
}

// SearchText returns the text the search widget matches a query
// against: the title plus every tag.
func (card Card) SearchText() string {
	text := card.Title
	for _, tag := range card.Tags {
		text += " " + tag
	}
	return text
}

// catalogFile is the JSONC shape of a catalog file.
type catalogFile struct {
	Cards []Card `json:"cards"`
}

// ParseCatalog strips JSONC comments and trailing commas from data,
// then unmarshals the card list. Cards must have unique, non-empty
// names; a missing title falls back to the name.
func ParseCatalog(data []byte) ([]Card, error) {
	stripped := jsonc.ToJSON(data)

	var file catalogFile
	if err := json.Unmarshal(stripped, &file); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	seen := make(map[string]bool, len(file.Cards))
	for index := range file.Cards {
		card := &file.Cards[index]
		if card.Name == "" {
			return nil, fmt.Errorf("card %d: missing name", index)
		}
		if seen[card.Name] {
			return nil, fmt.Errorf("duplicate card name %q", card.Name)
		}
		seen[card.Name] = true
		if card.Title == "" {
			card.Title = card.Name
		}
	}
	return file.Cards, nil
}

// LoadCatalogFile reads and parses a JSONC catalog from disk.
func LoadCatalogFile(path string) ([]Card, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	cards, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cards, nil
}
