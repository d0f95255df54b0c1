// Package suggest offers close matches for mistyped names using
// Levenshtein distance.
package suggest

import (
	"sort"
	"strings"
)

// levenshtein calculates the edit distance between two strings
func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(
				prev[j]+1,      // deletion
				cur[j-1]+1,     // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

// Closest returns up to three options within a few edits of word, best
// first. Matching ignores case. Prefix matches always qualify.
func Closest(word string, options []string) []string {
	w := strings.ToLower(strings.TrimSpace(word))
	if w == "" {
		return nil
	}

	type scored struct {
		option string
		score  int
	}
	var candidates []scored
	maxDist := max(2, len(w)/3)
	for _, opt := range options {
		o := strings.ToLower(opt)
		dist := levenshtein(w, o)
		if strings.HasPrefix(o, w) {
			dist = 0
		}
		if dist <= maxDist {
			candidates = append(candidates, scored{opt, dist})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score < candidates[j].score
	})

	var result []string
	for i := 0; i < len(candidates) && i < 3; i++ {
		result = append(result, candidates[i].option)
	}
	return result
}

// Hint renders suggestions as a trailing "did you mean" clause, or "" when
// there are none.
func Hint(word string, options []string) string {
	matches := Closest(word, options)
	if len(matches) == 0 {
		return ""
	}
	return "did you mean " + strings.Join(matches, " or ") + "?"
}
