// Copyright 2026 The Canopy Authors
// SPDX-License-Identifier: Apache-2.0

// Package locale supplies user-visible strings to Canopy widgets.
//
// Widgets never hard-code display text. They ask a [Provider] for it
// by key, so embedding applications can swap languages or override
// individual strings. [Default] returns the built-in English strings.
// [Catalog] loads overrides from a YAML file, and [Chain] stacks
// providers so a partial catalog falls back to the defaults for
// anything it does not define:
//
//	catalog, err := locale.LoadCatalogFile("de.yaml")
//	if err != nil { ... }
//	provider := locale.Chain(catalog, locale.Default())
//
// Catalog files nest keys; nesting flattens with dots, so
//
//	search:
//	  placeholder: "Suchen..."
//
// defines the key "search.placeholder".
package locale
