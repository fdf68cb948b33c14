// Package match implements the name-reconciliation heuristics the pipeline
// uses to join datasets that disagree on constituency spelling: a
// Ratcliff/Obershelp similarity ratio for near-identical names, and a
// word-overlap matcher for reconciling 2011 boundaries with their 2024
// successors.
package match

import "strings"

// DefaultThreshold is the minimum ratio accepted as a fuzzy match.
const DefaultThreshold = 0.80

// Normalize prepares a constituency name for comparison: lowercase,
// ampersands expanded, commas dropped, smart quotes straightened.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "&", "and")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "’", "'")
	s = strings.ReplaceAll(s, "‘", "'")
	return strings.TrimSpace(s)
}

// Ratio returns the Ratcliff/Obershelp similarity of a and b in [0, 1]:
// twice the number of matching characters over the total length, where
// matches are found by recursing around the longest common substring.
func Ratio(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	m := matchingChars([]rune(a), []rune(b))
	return 2 * float64(m) / float64(len([]rune(a))+len([]rune(b)))
}

func matchingChars(a, b []rune) int {
	ai, bi, size := longestCommonSubstring(a, b)
	if size == 0 {
		return 0
	}
	total := size
	total += matchingChars(a[:ai], b[:bi])
	total += matchingChars(a[ai+size:], b[bi+size:])
	return total
}

func longestCommonSubstring(a, b []rune) (ai, bi, size int) {
	// prev[j] holds the run length ending at a[i-1], b[j-1].
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > size {
					size = cur[j]
					ai = i - size
					bi = j - size
				}
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
	}
	return ai, bi, size
}

// BestMatch finds the candidate most similar to name. It returns the
// original (un-normalized) candidate and its score; ok is false when no
// candidate reaches threshold.
func BestMatch(name string, candidates []string, threshold float64) (best string, score float64, ok bool) {
	norm := Normalize(name)
	for _, c := range candidates {
		s := Ratio(norm, Normalize(c))
		if s > score {
			score = s
			best = c
		}
	}
	if score < threshold {
		return "", score, false
	}
	return best, score, true
}
