package analyzer

// MatchBlock is a run of identical tokens shared by two sequences:
// a[APos:APos+Size] == b[BPos:BPos+Size].
type MatchBlock struct {
	APos int
	BPos int
	Size int
}

// matchingBlocks finds the single longest common contiguous block, then
// recurses on the unmatched left and right remainders. The result is ordered
// by position on both sides, which lets the evidence renderer walk it as an
// alignment and the scorer sum it as a matched length. Both views come from
// the same computation, so displayed evidence always agrees with the score.
func matchingBlocks(a, b []string) []MatchBlock {
	var blocks []MatchBlock

	var recurse func(aLo, aHi, bLo, bHi int)
	recurse = func(aLo, aHi, bLo, bHi int) {
		best := longestBlock(a, b, aLo, aHi, bLo, bHi)
		if best.Size == 0 {
			return
		}
		recurse(aLo, best.APos, bLo, best.BPos)
		blocks = append(blocks, best)
		recurse(best.APos+best.Size, aHi, best.BPos+best.Size, bHi)
	}

	recurse(0, len(a), 0, len(b))
	return blocks
}

// longestBlock finds the longest run of tokens common to a[aLo:aHi] and
// b[bLo:bHi]. Ties resolve to the earliest position in a, then in b, so
// repeated runs always produce the same alignment.
func longestBlock(a, b []string, aLo, aHi, bLo, bHi int) MatchBlock {
	b2j := make(map[string][]int)
	for j := bLo; j < bHi; j++ {
		b2j[b[j]] = append(b2j[b[j]], j)
	}

	best := MatchBlock{APos: aLo, BPos: bLo, Size: 0}
	runLengths := make(map[int]int)

	for i := aLo; i < aHi; i++ {
		newRuns := make(map[int]int)
		for _, j := range b2j[a[i]] {
			k := runLengths[j-1] + 1
			newRuns[j] = k
			if k > best.Size {
				best = MatchBlock{APos: i - k + 1, BPos: j - k + 1, Size: k}
			}
		}
		runLengths = newRuns
	}

	return best
}
