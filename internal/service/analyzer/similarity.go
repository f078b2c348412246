package analyzer

import (
	"math"
	"strings"
)

// splitLines tokenizes text at line granularity for alignment. A trailing
// newline does not produce a phantom empty token.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

// lineTokenMin is the minimum line count on both sides for scoring at line
// granularity. Below it a single edit would flip a whole token, so short
// texts score over words instead.
const lineTokenMin = 3

// tokenize picks the scoring granularity for a pair of texts. Lines are the
// default token; a document that extracts to only a line or two (short
// submissions, much PDF text) falls back to word tokens so that a one-word
// edit to a one-sentence document still scores as a near copy rather
// than 0.
func tokenize(a, b string) (tokensA, tokensB []string) {
	linesA := splitLines(a)
	linesB := splitLines(b)
	if len(linesA) >= lineTokenMin && len(linesB) >= lineTokenMin {
		return linesA, linesB
	}
	return strings.Fields(a), strings.Fields(b)
}

// Compare returns a similarity percentage in [0, 100] for two extracted
// texts: 2 * matched / (lenA + lenB), where matched is the total size of
// the longest-matching-block alignment over the tokenized texts. The
// measure is symmetric (argument order is canonicalized before matching)
// and 100.0 for identical non-empty texts. Comparison against empty text
// is always 0.0.
func Compare(a, b string) float64 {
	if len(b) < len(a) || (len(b) == len(a) && b < a) {
		a, b = b, a
	}

	tokensA, tokensB := tokenize(a, b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0.0
	}

	matched := 0
	for _, block := range matchingBlocks(tokensA, tokensB) {
		matched += block.Size
	}

	ratio := 2.0 * float64(matched) / float64(len(tokensA)+len(tokensB))
	return roundScore(ratio * 100.0)
}

// roundScore bounds score precision to two decimals so persisted and
// reported values compare exactly.
func roundScore(score float64) float64 {
	return math.Round(score*100.0) / 100.0
}
