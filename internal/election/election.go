// Package election merges 2024 general election results with the 2016
// referendum Leave estimates and classifies constituencies into the four
// fixed quadrants the maps color by.
package election

import (
	"powermap/internal/dataset"
	"powermap/internal/logging"
)

// Quadrant labels. Classification is a lookup over two thresholded axes:
// Reform vote share (Leave share when Reform is absent) and non-white
// population share.
const (
	QuadrantHighReformDiverse     = "high-reform-diverse"
	QuadrantHighReformHomogeneous = "high-reform-homogeneous"
	QuadrantLowReformDiverse      = "low-reform-diverse"
	QuadrantLowReformHomogeneous  = "low-reform-homogeneous"
)

// Quadrants lists all four labels.
var Quadrants = []string{
	QuadrantHighReformDiverse,
	QuadrantHighReformHomogeneous,
	QuadrantLowReformDiverse,
	QuadrantLowReformHomogeneous,
}

// Classify returns the quadrant for the given Reform/Leave share and
// non-white share. It is total: every pair of floats maps to exactly one
// label, with values on a threshold classified as high.
func Classify(reformPct, nonwhitePct, reformThreshold, nonwhiteThreshold float64) string {
	high := reformPct >= reformThreshold
	diverse := nonwhitePct >= nonwhiteThreshold
	switch {
	case high && diverse:
		return QuadrantHighReformDiverse
	case high:
		return QuadrantHighReformHomogeneous
	case diverse:
		return QuadrantLowReformDiverse
	default:
		return QuadrantLowReformHomogeneous
	}
}

// Axis picks the classification value for the first quadrant axis: the
// Reform 2024 share when recorded, otherwise the estimated Leave share.
// ok is false when neither is recorded.
func Axis(r *dataset.ElectionResult) (value float64, ok bool) {
	if r == nil {
		return 0, false
	}
	if r.ReformPct != nil {
		return *r.ReformPct, true
	}
	if r.LeavePct != nil {
		return *r.LeavePct, true
	}
	return 0, false
}

// Merge overlays the Leave estimates onto the election results by GSS
// code. Results win on conflicts; Leave entries for GSS codes without a
// result are kept as partial records so the map can still shade them.
func Merge(results, leave map[string]*dataset.ElectionResult) map[string]*dataset.ElectionResult {
	log := logging.Get(logging.CategoryElections)

	merged := make(map[string]*dataset.ElectionResult, len(results))
	for gss, r := range results {
		cp := *r
		cp.GSSCode = gss
		merged[gss] = &cp
	}

	overlaid, added := 0, 0
	for gss, l := range leave {
		if existing, ok := merged[gss]; ok {
			if existing.LeavePct == nil && l.LeavePct != nil {
				existing.LeavePct = l.LeavePct
				overlaid++
			}
			continue
		}
		cp := *l
		cp.GSSCode = gss
		merged[gss] = &cp
		added++
	}

	log.Info("merge: %d results, %d leave overlays, %d leave-only entries", len(results), overlaid, added)
	return merged
}
