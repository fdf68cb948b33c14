package match

import "strings"

// boundary matching: the 2024 review renamed and re-cut most seats, so
// census data published on 2011 boundaries has to be carried over by name.
// Token overlap works better than character similarity here because renames
// usually keep the place words and change the connectives
// ("Normanton, Pontefract and Castleford" -> "Pontefract, Castleford and
// Knottingley").

// stopwords are connective tokens that carry no place information.
var stopwords = map[string]bool{
	"and": true, "the": true, "of": true, "upon": true,
	"on": true, "in": true, "under": true,
}

// Tokens splits a normalized name into its place-word set.
func Tokens(name string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(Normalize(name)) {
		if !stopwords[tok] {
			set[tok] = true
		}
	}
	return set
}

// Overlap returns the Jaccard overlap of the token sets of a and b.
func Overlap(a, b string) float64 {
	ta, tb := Tokens(a), Tokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	inter := 0
	for tok := range ta {
		if tb[tok] {
			inter++
		}
	}
	union := len(ta) + len(tb) - inter
	return float64(inter) / float64(union)
}

// BoundaryMatch maps an old-boundary constituency name onto its most likely
// successor in candidates. A match requires a minimum overlap and a unique
// best candidate; ties are reported as no-match, never guessed.
func BoundaryMatch(oldName string, candidates []string, minOverlap float64) (best string, score float64, ok bool) {
	var runnerUp float64
	for _, c := range candidates {
		s := Overlap(oldName, c)
		switch {
		case s > score:
			runnerUp = score
			score = s
			best = c
		case s > runnerUp:
			runnerUp = s
		}
	}
	if score < minOverlap || score == runnerUp {
		return "", score, false
	}
	return best, score, true
}
