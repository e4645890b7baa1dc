// Copyright 2026 The Canopy Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"sort"
	"sync"
	"unicode"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

// Slab sizes matching fzf's own matcher defaults.
const (
	fuzzySlab16Size = 100 * 1024
	fuzzySlab32Size = 2048
)

// fuzzyInit configures fzf's scoring tables once. Init is idempotent
// but not documented as goroutine-safe.
var fuzzyInit sync.Once

// FuzzyResult describes the outcome of one fuzzy match attempt.
type FuzzyResult struct {
	// Matched reports whether every pattern rune was found in order.
	Matched bool

	// Score ranks match quality; higher is better. Zero when not
	// matched.
	Score int

	// Positions lists the matched rune indices in the candidate
	// text, ascending. Used for per-rune highlight rendering.
	Positions []int
}

// NewFuzzySlab allocates the scratch memory fzf's matcher reuses
// across calls. Callers matching in a loop should allocate one slab
// and pass it to every FuzzyMatch call; a nil slab also works, at the
// cost of per-call allocation.
func NewFuzzySlab() *util.Slab {
	return util.MakeSlab(fuzzySlab16Size, fuzzySlab32Size)
}

// FuzzyMatch runs fzf's V2 fuzzy algorithm for pattern against text,
// case-insensitively. An empty pattern matches vacuously with zero
// score and no positions.
func FuzzyMatch(text string, pattern []rune, slab *util.Slab) FuzzyResult {
	if len(pattern) == 0 {
		return FuzzyResult{Matched: true}
	}
	fuzzyInit.Do(func() { algo.Init("default") })

	// The algorithm expects a lowercase pattern when running
	// case-insensitively.
	lowered := make([]rune, len(pattern))
	for index, r := range pattern {
		lowered[index] = unicode.ToLower(r)
	}

	chars := util.ToChars([]byte(text))
	result, positions := algo.FuzzyMatchV2(false, true, true, &chars, lowered, true, slab)
	if result.Start < 0 {
		return FuzzyResult{}
	}

	var positionList []int
	if positions != nil {
		positionList = *positions
		sort.Ints(positionList)
	}
	return FuzzyResult{
		Matched:   true,
		Score:     result.Score,
		Positions: positionList,
	}
}
