// Copyright 2026 The Canopy Authors
// SPDX-License-Identifier: Apache-2.0

package locale

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Keys the built-in widgets look up. Catalogs override them by
// defining the same dotted path.
const (
	KeySearchPlaceholder = "search.placeholder"
	KeyNoResultsTitle    = "search.no_results_title"
	KeyNoResultsMessage  = "search.no_results_message"
	KeyBrowserTitle      = "browser.title"
	KeyBrowserHelp       = "browser.help"
	KeyBrowserEmpty      = "browser.empty"
)

// Provider resolves a dotted string key to display text. A provider
// returns "" for keys it does not define; callers either fall back
// themselves or wrap providers with [Chain].
type Provider interface {
	Get(key string) string
}

// defaults holds the built-in English strings.
var defaults = map[string]string{
	KeySearchPlaceholder: "Search...",
	KeyNoResultsTitle:    "No Results",
	KeyNoResultsMessage:  "Your search returned no results.",
	KeyBrowserTitle:      "Cards",
	KeyBrowserHelp:       "/ search · j/k move · enter toggle · q quit",
	KeyBrowserEmpty:      "The catalog has no cards.",
}

// defaultProvider serves the built-in English strings.
type defaultProvider struct{}

func (defaultProvider) Get(key string) string {
	return defaults[key]
}

// Default returns the built-in English provider.
func Default() Provider {
	return defaultProvider{}
}

// Catalog is a flat key-to-text table, usually loaded from a YAML
// file. It defines only the keys present in its source; missing keys
// resolve to "".
type Catalog map[string]string

// Get implements Provider.
func (catalog Catalog) Get(key string) string {
	return catalog[key]
}

// Keys returns the defined keys in sorted order.
func (catalog Catalog) Keys() []string {
	keys := make([]string, 0, len(catalog))
	for key := range catalog {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// LoadCatalogFile reads a YAML string catalog from disk.
func LoadCatalogFile(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	catalog, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return catalog, nil
}

// ParseCatalog parses YAML catalog data. Nested mappings flatten into
// dotted keys; scalar values become their string form.
func ParseCatalog(data []byte) (Catalog, error) {
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	catalog := make(Catalog)
	flatten("", tree, catalog)
	return catalog, nil
}

// flatten walks a parsed YAML tree, joining nested keys with dots.
func flatten(prefix string, tree map[string]any, into Catalog) {
	for key, value := range tree {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		switch value := value.(type) {
		case map[string]any:
			flatten(path, value, into)
		case string:
			into[path] = value
		case nil:
			// An empty value defines nothing.
		default:
			into[path] = fmt.Sprint(value)
		}
	}
}

// chain resolves keys against an ordered provider list.
type chain []Provider

func (providers chain) Get(key string) string {
	for _, provider := range providers {
		if text := provider.Get(key); text != "" {
			return text
		}
	}
	return ""
}

// Chain returns a provider that tries each given provider in order
// and returns the first non-empty answer.
func Chain(providers ...Provider) Provider {
	return chain(providers)
}
