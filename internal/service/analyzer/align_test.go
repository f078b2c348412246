package analyzer

import (
	"reflect"
	"testing"
)

func TestMatchingBlocksSingleRun(t *testing.T) {
	a := []string{"x", "a", "b", "c"}
	b := []string{"a", "b", "c", "y"}

	got := matchingBlocks(a, b)
	want := []MatchBlock{{APos: 1, BPos: 0, Size: 3}}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("matchingBlocks = %+v, want %+v", got, want)
	}
}

func TestMatchingBlocksOrdered(t *testing.T) {
	a := []string{"head", "mid", "x", "tail"}
	b := []string{"head", "y", "mid", "tail"}

	blocks := matchingBlocks(a, b)

	prevA, prevB := -1, -1
	matched := 0
	for _, block := range blocks {
		if block.APos <= prevA || block.BPos <= prevB {
			t.Fatalf("blocks out of order: %+v", blocks)
		}
		prevA = block.APos + block.Size - 1
		prevB = block.BPos + block.Size - 1
		matched += block.Size
	}

	if matched != 3 {
		t.Errorf("matched %d tokens, want 3", matched)
	}
}

func TestMatchingBlocksNoCommon(t *testing.T) {
	a := []string{"a", "b"}
	b := []string{"c", "d"}

	if got := matchingBlocks(a, b); len(got) != 0 {
		t.Errorf("matchingBlocks(disjoint) = %+v, want none", got)
	}
}

func TestLongestBlockEarliestTieBreak(t *testing.T) {
	// "a" occurs twice on the b side; the earliest occurrence must win.
	a := []string{"a"}
	b := []string{"a", "z", "a"}

	got := longestBlock(a, b, 0, len(a), 0, len(b))
	want := MatchBlock{APos: 0, BPos: 0, Size: 1}

	if got != want {
		t.Errorf("longestBlock = %+v, want %+v", got, want)
	}
}

func TestLongestBlockPrefersLongerRun(t *testing.T) {
	a := []string{"a", "b", "c"}
	b := []string{"a", "x", "b", "c"}

	got := longestBlock(a, b, 0, len(a), 0, len(b))
	want := MatchBlock{APos: 1, BPos: 2, Size: 2}

	if got != want {
		t.Errorf("longestBlock = %+v, want %+v", got, want)
	}
}

func TestMatchingBlocksDeterministic(t *testing.T) {
	a := []string{"one", "two", "one", "three", "two"}
	b := []string{"two", "one", "three", "one", "two"}

	first := matchingBlocks(a, b)
	for i := 0; i < 10; i++ {
		if got := matchingBlocks(a, b); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d produced %+v, first run produced %+v", i, got, first)
		}
	}
}
