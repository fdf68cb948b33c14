// Package join builds map-data.json, the consolidated per-constituency
// artifact the Leaflet front-end fetches. It reconciles demographics
// (keyed by constituency name, GSS code when the source carries one),
// election results (keyed by GSS code), MP and minister info (keyed by
// name/parlId) and ethnicity records into one record per constituency.
//
// Merge policy: explicit precedence, not last-write-wins. Election results
// are authoritative for electoral fields, census data for demographic
// fields, mp-info for ministerial fields. A dataset missing for a
// constituency is flagged on the record, never silently dropped.
package join

import (
	"fmt"
	"sort"
	"time"

	"powermap/internal/dataset"
	"powermap/internal/election"
	"powermap/internal/ethnicity"
	"powermap/internal/logging"
	"powermap/internal/match"
)

// Inputs collects everything the join consumes. Elections and Ethnicity
// may be nil; the output then carries partial records with Missing flags.
type Inputs struct {
	Demographics *dataset.DemographicsFile
	Elections    map[string]*dataset.ElectionResult
	MPInfo       dataset.MPInfo
	Ethnicity    *ethnicity.File
	Departments  []dataset.Department
}

// Thresholds are the fixed classification and matching parameters.
type Thresholds struct {
	ReformPct       float64
	NonWhitePct     float64
	FuzzyRatio      float64
	BoundaryOverlap float64
}

// Build produces the merged map data.
func Build(in Inputs, th Thresholds) (*dataset.MapData, error) {
	log := logging.Get(logging.CategoryJoin)

	if in.Demographics == nil {
		return nil, fmt.Errorf("demographics dataset required")
	}

	// Index election results by normalized constituency name for the
	// demographics entries that arrive without a GSS code.
	electionNames := make([]string, 0, len(in.Elections))
	gssByName := make(map[string]string, len(in.Elections))
	for gss, r := range in.Elections {
		if r.Name != "" {
			electionNames = append(electionNames, r.Name)
			gssByName[match.Normalize(r.Name)] = gss
		}
	}

	// Ministerial lookup: constituency -> MP record and name.
	type ministerInfo struct {
		name string
		mp   dataset.MP
	}
	ministersByCon := make(map[string]ministerInfo, len(in.MPInfo))
	for name, mp := range in.MPInfo {
		if mp.Constituency != "" {
			ministersByCon[match.Normalize(mp.Constituency)] = ministerInfo{name: name, mp: mp}
		}
	}

	out := &dataset.MapData{
		Constituencies: make(map[string]*dataset.ConstituencyRecord),
	}

	unmapped := 0
	for name, demo := range in.Demographics.Constituencies {
		rec := &dataset.ConstituencyRecord{Name: name}

		// Resolve the GSS code: source-supplied, exact name match against
		// election results, fuzzy, then word overlap for pre-2024
		// boundary names that were split or merged.
		gss := demo.GSSCode
		if gss == "" {
			if g, ok := gssByName[match.Normalize(name)]; ok {
				gss = g
			} else if best, score, ok := match.BestMatch(name, electionNames, th.FuzzyRatio); ok {
				gss = gssByName[match.Normalize(best)]
				log.Info("gss via fuzzy name: %q -> %q (%.2f)", name, best, score)
			} else if best, score, ok := match.BoundaryMatch(name, electionNames, th.BoundaryOverlap); ok {
				gss = gssByName[match.Normalize(best)]
				log.Info("gss via boundary overlap: %q -> %q (%.2f)", name, best, score)
			}
		}

		if gss == "" {
			// No boundary identity; keep the record under a name key so
			// the org chart can still use it, and flag it for validate.
			gss = "name:" + match.Normalize(name)
			rec.Missing = append(rec.Missing, "gss_code")
			unmapped++
		}
		rec.GSSCode = gss

		rec.WhitePct = demo.WhitePct
		rec.AsianPct = demo.AsianPct
		rec.BlackPct = demo.BlackPct
		rec.MixedPct = demo.MixedPct
		rec.OtherPct = demo.OtherPct
		rec.NonWhitePct = demo.NonWhitePct

		// Electoral overlay.
		res := in.Elections[gss]
		if res != nil {
			rec.Winner = res.Winner
			rec.Majority = res.Majority
			rec.TurnoutPct = res.TurnoutPct
			rec.LeavePct = res.LeavePct
			rec.ReformPct = res.ReformPct
			rec.Shares = res.Shares
			if rec.MPName == "" {
				rec.MPName = res.MPName
			}
		} else {
			rec.Missing = append(rec.Missing, "election")
		}

		// Ministerial overlay.
		if mi, ok := ministersByCon[match.Normalize(name)]; ok {
			rec.MPName = mi.name
			rec.Party = mi.mp.Party
			rec.MinisterRank = mi.mp.Rank
			rec.Department = mi.mp.Department
		}

		// Ethnicity overlay, by the resolved MP name.
		if in.Ethnicity != nil && rec.MPName != "" {
			if er, ok := in.Ethnicity.Records[rec.MPName]; ok {
				rec.MPEthnicity = er.Broad
			}
		}

		// Quadrant needs both axes.
		axis, axisOK := election.Axis(res)
		if axisOK && rec.NonWhitePct != nil {
			rec.Quadrant = election.Classify(axis, *rec.NonWhitePct, th.ReformPct, th.NonWhitePct)
		} else {
			rec.Missing = append(rec.Missing, "quadrant")
		}

		sort.Strings(rec.Missing)
		out.Constituencies[rec.GSSCode] = rec
	}

	// Election-only constituencies (no census entry) still get a shaded
	// record so the electoral layers cover the whole map.
	electionOnly := 0
	for gss, res := range in.Elections {
		if _, ok := out.Constituencies[gss]; ok {
			continue
		}
		rec := &dataset.ConstituencyRecord{
			GSSCode:    gss,
			Name:       res.Name,
			Winner:     res.Winner,
			MPName:     res.MPName,
			Majority:   res.Majority,
			TurnoutPct: res.TurnoutPct,
			LeavePct:   res.LeavePct,
			ReformPct:  res.ReformPct,
			Shares:     res.Shares,
			Missing:    []string{"demographics", "quadrant"},
		}
		out.Constituencies[gss] = rec
		electionOnly++
	}

	out.Metadata = dataset.Metadata{
		Description: "Consolidated constituency records: Census 2021/2022 demographics, 2024 general election results, 2016 referendum Leave estimates, ministerial posts and MP ethnicity",
		Generated:   time.Now().UTC().Format(time.RFC3339),
		Coverage:    fmt.Sprintf("%d constituencies", len(out.Constituencies)),
	}
	if unmapped > 0 {
		out.Metadata.Notes = append(out.Metadata.Notes,
			fmt.Sprintf("%d constituencies lack a GSS code and are keyed by name", unmapped))
	}
	if electionOnly > 0 {
		out.Metadata.Notes = append(out.Metadata.Notes,
			fmt.Sprintf("%d constituencies carry election data only", electionOnly))
	}

	log.Info("join: %d records (%d unmapped, %d election-only)",
		len(out.Constituencies), unmapped, electionOnly)
	return out, nil
}
