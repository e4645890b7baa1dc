// Copyright 2026 The Canopy Authors
// SPDX-License-Identifier: Apache-2.0

// Package cardui is the demo application for the Canopy widgets: a
// terminal browser over a JSONC card catalog.
//
// A [Card] has a name, a title, tags, and a markdown body. The
// catalog file is watched for changes ([WatchCatalogFile]), with a
// content digest suppressing reloads when the bytes are unchanged.
// [Model] composes a typeahead search widget over the card titles and
// tags with one collapse panel per card; selecting a search result
// expands that card and collapses the rest. Card bodies render
// through [RenderMarkdown], a reduced terminal markdown renderer.
//
// The cmd/canopy-viewer binary wires this model into a full-screen
// bubbletea program.
package cardui
