package usecase

import (
	"strings"

	"github.com/neuralsearch/backend/internal/domain"
)

// FuzzyScore computes the lexical similarity between a query and a product
// in [0,1]. It takes the best partial-ratio score across the name, model and
// description fields, so a query only has to resemble one of them.
func FuzzyScore(query string, p domain.Product) float64 {
	q := strings.ToLower(query)

	best := PartialRatio(q, strings.ToLower(p.Name))
	if s := PartialRatio(q, strings.ToLower(p.Model)); s > best {
		best = s
	}
	if s := PartialRatio(q, strings.ToLower(p.Description)); s > best {
		best = s
	}
	return best
}

// PartialRatio computes a typo-tolerant similarity score in [0,1] between two
// strings. The shorter string is slid across every equal-length window of the
// longer one and the best window ratio wins, so a query that appears inside a
// longer field scores as if it matched the whole field.
func PartialRatio(a, b string) float64 {
	needle := []rune(a)
	hay := []rune(b)
	if len(needle) > len(hay) {
		needle, hay = hay, needle
	}
	if len(needle) == 0 {
		if len(hay) == 0 {
			return 1
		}
		return 0
	}

	best := 0.0
	for start := 0; start+len(needle) <= len(hay); start++ {
		window := hay[start : start+len(needle)]
		if r := ratio(needle, window); r > best {
			best = r
			if best == 1 {
				return 1
			}
		}
	}
	return best
}

// ratio is the normalized Levenshtein similarity between two rune slices:
// 1 - distance/maxLen.
func ratio(r1, r2 []rune) float64 {
	maxLen := len(r1)
	if len(r2) > maxLen {
		maxLen = len(r2)
	}
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(levenshteinDistance(r1, r2))/float64(maxLen)
}

// levenshteinDistance calculates the edit distance between two rune slices
func levenshteinDistance(r1, r2 []rune) int {
	if len(r1) == 0 {
		return len(r2)
	}
	if len(r2) == 0 {
		return len(r1)
	}

	m := len(r1)
	n := len(r2)

	// Use two rows instead of full matrix for space efficiency
	prev := make([]int, n+1)
	curr := make([]int, n+1)

	// Initialize first row
	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	// Fill matrix
	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[n]
}
