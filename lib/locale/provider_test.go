// Copyright 2026 The Canopy Authors
// SPDX-License-Identifier: Apache-2.0

package locale

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultStrings(t *testing.T) {
	provider := Default()
	tests := []struct {
		key  string
		want string
	}{
		{KeySearchPlaceholder, "Search..."},
		{KeyNoResultsTitle, "No Results"},
		{KeyNoResultsMessage, "Your search returned no results."},
	}
	for _, test := range tests {
		if got := provider.Get(test.key); got != test.want {
			t.Errorf("Get(%q) = %q, want %q", test.key, got, test.want)
		}
	}
	if got := provider.Get("no.such.key"); got != "" {
		t.Errorf("unknown key resolved to %q, want empty", got)
	}
}

func TestParseCatalogFlattensNesting(t *testing.T) {
	catalog, err := ParseCatalog([]byte(`
search:
  placeholder: "Suchen..."
  no_results_title: "Keine Ergebnisse"
app:
  title: Canopy
`))
	if err != nil {
		t.Fatalf("ParseCatalog: %v", err)
	}
	if got := catalog.Get(KeySearchPlaceholder); got != "Suchen..." {
		t.Errorf("placeholder = %q, want %q", got, "Suchen...")
	}
	if got := catalog.Get("app.title"); got != "Canopy" {
		t.Errorf("app.title = %q, want Canopy", got)
	}
	if got := catalog.Get(KeyNoResultsMessage); got != "" {
		t.Errorf("undefined key = %q, want empty", got)
	}
}

func TestParseCatalogScalarCoercion(t *testing.T) {
	catalog, err := ParseCatalog([]byte("count: 7\nenabled: true\nempty:\n"))
	if err != nil {
		t.Fatalf("ParseCatalog: %v", err)
	}
	if got := catalog.Get("count"); got != "7" {
		t.Errorf("count = %q, want 7", got)
	}
	if got := catalog.Get("enabled"); got != "true" {
		t.Errorf("enabled = %q, want true", got)
	}
	if got := catalog.Get("empty"); got != "" {
		t.Errorf("empty value = %q, want empty", got)
	}
}

func TestParseCatalogRejectsMalformedYAML(t *testing.T) {
	if _, err := ParseCatalog([]byte("search: [oops\n")); err == nil {
		t.Error("malformed YAML should return an error")
	}
}

func TestChainFallsThrough(t *testing.T) {
	override := Catalog{KeySearchPlaceholder: "Find things"}
	provider := Chain(override, Default())

	if got := provider.Get(KeySearchPlaceholder); got != "Find things" {
		t.Errorf("overridden key = %q, want %q", got, "Find things")
	}
	if got := provider.Get(KeyNoResultsTitle); got != "No Results" {
		t.Errorf("fallthrough key = %q, want %q", got, "No Results")
	}
	if got := provider.Get("no.such.key"); got != "" {
		t.Errorf("unknown key = %q, want empty", got)
	}
}

func TestLoadCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strings.yaml")
	if err := os.WriteFile(path, []byte("search:\n  placeholder: Chercher...\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	catalog, err := LoadCatalogFile(path)
	if err != nil {
		t.Fatalf("LoadCatalogFile: %v", err)
	}
	if got := catalog.Get(KeySearchPlaceholder); got != "Chercher..." {
		t.Errorf("placeholder = %q, want %q", got, "Chercher...")
	}

	if _, err := LoadCatalogFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("missing file should return an error")
	}

	keys := catalog.Keys()
	if len(keys) != 1 || keys[0] != KeySearchPlaceholder {
		t.Errorf("Keys() = %v, want [%s]", keys, KeySearchPlaceholder)
	}
}
