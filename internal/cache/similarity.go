// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import "strings"

// combinedSimilarity scores how alike two queries are, in [0, 1]. The score
// weights character-level alignment (0.6) against keyword overlap (0.4);
// identical normalized strings score 1.0.
func combinedSimilarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))

	if a == b {
		return 1.0
	}

	seq := sequenceRatio(a, b)
	kw := jaccard(strings.Fields(a), strings.Fields(b))
	return 0.6*seq + 0.4*kw
}

// sequenceRatio is a normalized edit-distance ratio: 1 minus the Levenshtein
// distance divided by the longer length.
func sequenceRatio(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)

	longer := len(ra)
	if len(rb) > longer {
		longer = len(rb)
	}
	if longer == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshtein(ra, rb))/float64(longer)
}

// levenshtein computes the edit distance with a two-row DP table.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// jaccard is set-intersection-over-union of two token lists. Two empty
// token sets score 0, not 1.
func jaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0.0
	}

	set := make(map[string]bool, len(a))
	for _, w := range a {
		set[w] = true
	}

	union := len(set)
	overlap := 0
	seen := make(map[string]bool, len(b))
	for _, w := range b {
		if seen[w] {
			continue
		}
		seen[w] = true
		if set[w] {
			overlap++
		} else {
			union++
		}
	}

	if union == 0 {
		return 0.0
	}
	return float64(overlap) / float64(union)
}
