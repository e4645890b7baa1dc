// Copyright 2026 The Canopy Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"sort"
	"testing"
)

func TestFuzzyMatchSubstring(t *testing.T) {
	slab := NewFuzzySlab()
	result := FuzzyMatch("production deploy", []rune("deploy"), slab)
	if !result.Matched {
		t.Fatal("substring pattern should match")
	}
	if result.Score <= 0 {
		t.Errorf("score = %d, want > 0", result.Score)
	}
	if len(result.Positions) != 6 {
		t.Errorf("got %d positions, want 6", len(result.Positions))
	}
}

func TestFuzzyMatchNonContiguous(t *testing.T) {
	result := FuzzyMatch("production deploy", []rune("pdep"), nil)
	if !result.Matched {
		t.Fatal("scattered pattern should match")
	}
	if len(result.Positions) != 4 {
		t.Fatalf("got %d positions, want 4", len(result.Positions))
	}
	if !sort.IntsAreSorted(result.Positions) {
		t.Errorf("positions not ascending: %v", result.Positions)
	}
}

func TestFuzzyMatchCaseInsensitive(t *testing.T) {
	result := FuzzyMatch("Production Deploy", []rune("DEPLOY"), nil)
	if !result.Matched {
		t.Error("uppercase pattern should match mixed-case text")
	}
}

func TestFuzzyMatchRejectsOutOfOrder(t *testing.T) {
	result := FuzzyMatch("abc", []rune("ca"), nil)
	if result.Matched {
		t.Error("out-of-order pattern should not match")
	}
	if result.Score != 0 || result.Positions != nil {
		t.Errorf("non-match should be zero valued, got %+v", result)
	}
}

func TestFuzzyMatchEmptyPattern(t *testing.T) {
	result := FuzzyMatch("anything", nil, nil)
	if !result.Matched {
		t.Error("empty pattern should match vacuously")
	}
	if result.Score != 0 || len(result.Positions) != 0 {
		t.Errorf("vacuous match should carry no score or positions, got %+v", result)
	}
}

func TestFuzzyMatchPrefersWordBoundary(t *testing.T) {
	slab := NewFuzzySlab()
	boundary := FuzzyMatch("deep-learning", []rune("dl"), slab)
	interior := FuzzyMatch("middle", []rune("dl"), slab)
	if !boundary.Matched || !interior.Matched {
		t.Fatal("both candidates should match")
	}
	if boundary.Score <= interior.Score {
		t.Errorf("boundary score %d should beat interior score %d",
			boundary.Score, interior.Score)
	}
}

func TestFuzzyMatchNilSlab(t *testing.T) {
	result := FuzzyMatch("production deploy", []rune("deploy"), nil)
	if !result.Matched {
		t.Error("nil slab should still match")
	}
}
