package popularity

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Similarity returns a Levenshtein similarity ratio in [0,1] between two
// canonical title strings: 1 - distance/maxLen. Lengths are counted in
// runes to match the rune-based edit distance, so accented titles are not
// inflated. Inputs whose lengths differ by more than half the shorter
// length are rejected outright, a cheap pre-filter that skips the
// edit-distance computation for pairs that cannot clear any sensible
// threshold.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	lenA, lenB := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	shorter := min(lenA, lenB)
	if abs(lenA-lenB)*2 > shorter {
		return 0
	}

	dist := levenshtein.ComputeDistance(a, b)
	longer := max(lenA, lenB)
	return 1 - float64(dist)/float64(longer)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
