// Package suggest picks the closest schema field name for an unrecognized
// key, powering "Did you mean ...?" hints in validation warnings.
package suggest

import "strings"

// Threshold is the minimum similarity for a candidate to be offered.
const Threshold = 0.6

// Ratio returns the similarity of two strings in [0, 1], computed as
// 2*LCS(a,b) / (len(a)+len(b)) over runes. Unlike a plain edit-distance
// ratio this does not credit substitutions, so "telephon" scores higher
// against "phone" (0.615) than against "homepage" (0.25).
func Ratio(a, b string) float64 {
	ar, br := []rune(a), []rune(b)
	if len(ar)+len(br) == 0 {
		return 1
	}
	return 2 * float64(lcsLength(ar, br)) / float64(len(ar)+len(br))
}

// Best returns the candidate most similar to name, case-insensitively,
// together with its score. Ties keep the earliest candidate so schema
// declaration order decides. The second result is -1 when candidates is
// empty.
func Best(name string, candidates []string) (string, float64) {
	lowered := strings.ToLower(name)
	best := ""
	bestScore := -1.0
	for _, c := range candidates {
		score := Ratio(lowered, strings.ToLower(c))
		if score > bestScore {
			best = c
			bestScore = score
		}
	}
	return best, bestScore
}

// Suggest returns the best candidate if it clears Threshold.
func Suggest(name string, candidates []string) (string, bool) {
	best, score := Best(name, candidates)
	if score < Threshold {
		return "", false
	}
	return best, true
}

func lcsLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				curr[j] = prev[j-1] + 1
			case prev[j] >= curr[j-1]:
				curr[j] = prev[j]
			default:
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
