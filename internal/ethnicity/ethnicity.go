// Package ethnicity builds ethnicity-mps.json by joining the curated
// British Future records of minority-ethnic MPs with mp-info.json. The
// join key is the MNIS parlId; records arriving without one are resolved
// by fuzzy name match as a fallback.
package ethnicity

import (
	"fmt"
	"sort"
	"time"

	"powermap/internal/dataset"
	"powermap/internal/logging"
	"powermap/internal/match"
)

// File is the ethnicity-mps.json artifact.
type File struct {
	Metadata dataset.Metadata                    `json:"_metadata"`
	Records  map[string]*dataset.EthnicityRecord `json:"records"` // keyed by MP name
}

// JoinReport summarizes the outcome of one join run.
type JoinReport struct {
	Total        int
	ByParlID     int
	ByName       int
	Unresolved   []string
	InvalidBroad []string
}

// Join resolves each source record against mpInfo. Records joined by
// parlId take the canonical MP name from mp-info; name-only records keep
// their source spelling. Records whose broad category is not in the fixed
// set are reported, not dropped, so the validator can fail the build.
func Join(records []*dataset.EthnicityRecord, mpInfo dataset.MPInfo, fuzzyThreshold float64) (*File, *JoinReport) {
	log := logging.Get(logging.CategoryEthnicity)

	byParlID := make(map[int]string, len(mpInfo))
	names := make([]string, 0, len(mpInfo))
	for name, mp := range mpInfo {
		names = append(names, name)
		if mp.ParlID != 0 {
			byParlID[mp.ParlID] = name
		}
	}

	out := &File{
		Records: make(map[string]*dataset.EthnicityRecord, len(records)),
	}
	rep := &JoinReport{Total: len(records)}

	for _, r := range records {
		rec := *r
		if !dataset.ValidBroadCategory(rec.Broad) {
			rep.InvalidBroad = append(rep.InvalidBroad, fmt.Sprintf("%s: %q", rec.Name, rec.Broad))
		}

		if rec.ParlID != 0 {
			if canonical, ok := byParlID[rec.ParlID]; ok {
				out.Records[canonical] = &rec
				rep.ByParlID++
				continue
			}
			log.Warn("parlId %d (%s) not in mp-info", rec.ParlID, rec.Name)
		}

		if best, score, ok := match.BestMatch(rec.Name, names, fuzzyThreshold); ok {
			log.Info("name match: %q -> %q (%.2f)", rec.Name, best, score)
			if mp, exists := mpInfo[best]; exists && rec.ParlID == 0 {
				rec.ParlID = mp.ParlID
			}
			out.Records[best] = &rec
			rep.ByName++
			continue
		}

		rep.Unresolved = append(rep.Unresolved, rec.Name)
		out.Records[rec.Name] = &rec
	}
	sort.Strings(rep.Unresolved)
	sort.Strings(rep.InvalidBroad)

	out.Metadata = dataset.Metadata{
		Description: "Minority-ethnic MPs holding ministerial office, cross-referenced with MNIS parliamentary IDs",
		Source:      "British Future 2024 election analysis, manually curated",
		Generated:   time.Now().UTC().Format(time.RFC3339),
		Coverage:    fmt.Sprintf("%d MPs", len(out.Records)),
	}
	if len(rep.Unresolved) > 0 {
		out.Metadata.Notes = append(out.Metadata.Notes,
			fmt.Sprintf("%d records could not be matched to mp-info and keep their source names", len(rep.Unresolved)))
	}

	log.Info("join: %d records, %d by parlId, %d by name, %d unresolved",
		rep.Total, rep.ByParlID, rep.ByName, len(rep.Unresolved))
	return out, rep
}
