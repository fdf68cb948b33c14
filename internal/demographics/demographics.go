// Package demographics builds constituency-demographics.json from Census
// ethnic-group data. Two sources are supported: a CSV export of the
// Commons Library constituency ethnicity table (preferred when present
// under data/sources/), and the built-in curated table covering the
// ministerial constituencies.
package demographics

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"powermap/internal/dataset"
	"powermap/internal/logging"
	"powermap/internal/match"
)

// UKAverage is the Census 2021 England & Wales reference distribution.
var UKAverage = map[string]any{
	"white_pct":    81.7,
	"asian_pct":    9.3,
	"black_pct":    4.0,
	"mixed_pct":    2.9,
	"other_pct":    2.1,
	"nonwhite_pct": 18.3,
	"source":       "Census 2021 England & Wales (UK-wide including Scotland ~16% non-White)",
}

// ReadCSV parses a Commons Library ethnicity export. Column positions are
// sniffed from the header row, so reordered exports still load.
func ReadCSV(r io.Reader) ([]*dataset.Demographics, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := mapColumns(header)
	if _, ok := cols["name"]; !ok {
		return nil, fmt.Errorf("no constituency name column in header %v", header)
	}

	var out []*dataset.Demographics
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		name := strings.TrimSpace(field(row, cols["name"]))
		if name == "" {
			continue
		}

		d := &dataset.Demographics{Name: name}
		if i, ok := cols["gss"]; ok {
			d.GSSCode = strings.TrimSpace(field(row, i))
		}
		d.WhitePct = pctField(row, cols, "white")
		d.AsianPct = pctField(row, cols, "asian")
		d.BlackPct = pctField(row, cols, "black")
		d.MixedPct = pctField(row, cols, "mixed")
		d.OtherPct = pctField(row, cols, "other")
		derive(d)
		out = append(out, d)
	}
	return out, nil
}

// mapColumns finds the relevant column indexes by header keywords,
// following the patterns the Commons Library uses (PCON24NM, PCON24CD,
// "White (%)" and so on).
func mapColumns(header []string) map[string]int {
	cols := make(map[string]int)
	for i, h := range header {
		hl := strings.ToLower(strings.TrimSpace(h))
		switch {
		// Code patterns first: a "Constituency Code" header must land on
		// the gss column, not the name fallback below.
		case strings.Contains(hl, "pcon24cd"), strings.Contains(hl, "gss"), strings.Contains(hl, "code"):
			if _, ok := cols["gss"]; !ok {
				cols["gss"] = i
			}
		case strings.Contains(hl, "pcon24nm"),
			strings.Contains(hl, "constituency") && !strings.Contains(hl, "code"):
			if _, ok := cols["name"]; !ok {
				cols["name"] = i
			}
		case strings.Contains(hl, "white"):
			cols["white"] = i
		case strings.Contains(hl, "asian"):
			cols["asian"] = i
		case strings.Contains(hl, "black"):
			cols["black"] = i
		case strings.Contains(hl, "mixed"):
			cols["mixed"] = i
		case strings.Contains(hl, "other") && !strings.Contains(hl, "ethnic group"):
			cols["other"] = i
		}
	}
	return cols
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func pctField(row []string, cols map[string]int, key string) *float64 {
	i, ok := cols[key]
	if !ok {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(field(row, i)), 64)
	if err != nil {
		return nil
	}
	return dataset.Float(dataset.Round1(v))
}

// derive fills NonWhitePct: 100 minus white when white is recorded,
// otherwise the sum of the four minority groups when all are present.
func derive(d *dataset.Demographics) {
	if d.WhitePct != nil {
		d.NonWhitePct = dataset.Float(dataset.Round1(100 - *d.WhitePct))
		return
	}
	if d.AsianPct != nil && d.BlackPct != nil && d.MixedPct != nil && d.OtherPct != nil {
		d.NonWhitePct = dataset.Float(dataset.Round1(*d.AsianPct + *d.BlackPct + *d.MixedPct + *d.OtherPct))
	}
}

// ValidationReport summarizes how well the demographics entries cover the
// constituencies held by MPs in mp-info.json.
type ValidationReport struct {
	MPConstituencies int
	Entries          int
	ExactMatches     int
	FuzzyMatches     map[string]string // MP constituency -> demographics name
	Missing          []string
}

// Validate cross-references the demographics entries with the MP records.
// Unmatched constituencies are retried with fuzzy matching before being
// reported missing.
func Validate(entries []*dataset.Demographics, mpInfo dataset.MPInfo, fuzzyThreshold float64) *ValidationReport {
	log := logging.Get(logging.CategoryDemographics)

	mpCons := make(map[string]bool)
	for _, mp := range mpInfo {
		if mp.Constituency != "" {
			mpCons[mp.Constituency] = true
		}
	}

	names := make([]string, 0, len(entries))
	nameSet := make(map[string]bool, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
		nameSet[e.Name] = true
	}

	rep := &ValidationReport{
		MPConstituencies: len(mpCons),
		Entries:          len(entries),
		FuzzyMatches:     make(map[string]string),
	}

	for con := range mpCons {
		if nameSet[con] {
			rep.ExactMatches++
			continue
		}
		if best, score, ok := match.BestMatch(con, names, fuzzyThreshold); ok {
			rep.FuzzyMatches[con] = best
			log.Info("fuzzy match: %q -> %q (%.2f)", con, best, score)
			continue
		}
		rep.Missing = append(rep.Missing, con)
	}
	sort.Strings(rep.Missing)

	log.Info("validation: %d MP constituencies, %d entries, %d exact, %d fuzzy, %d missing",
		rep.MPConstituencies, rep.Entries, rep.ExactMatches, len(rep.FuzzyMatches), len(rep.Missing))
	return rep
}

// normalizeName straightens the smart quotes some sources use, so
// "Queen's Park" matches whichever variant mp-info carries.
func normalizeName(s string) string {
	s = strings.ReplaceAll(s, "’", "'")
	s = strings.ReplaceAll(s, "‘", "'")
	return s
}

// Build assembles the constituency-demographics.json artifact, linking
// each constituency to the ministers who hold it.
func Build(entries []*dataset.Demographics, mpInfo dataset.MPInfo) *dataset.DemographicsFile {
	conToMinisters := make(map[string][]string)
	for name, mp := range mpInfo {
		if mp.Constituency != "" {
			norm := normalizeName(mp.Constituency)
			conToMinisters[norm] = append(conToMinisters[norm], name)
		}
	}
	for _, ms := range conToMinisters {
		sort.Strings(ms)
	}

	out := &dataset.DemographicsFile{
		Metadata: dataset.Metadata{
			Description: "Constituency demographics from Census 2021 (England, Wales, NI) and Census 2022 (Scotland), mapped to 2024 parliamentary constituency boundaries",
			Source:      "ONS Census 2021 table TS021, NRS Census 2022 table UV201, NISRA Census 2021 table MS-B01, via House of Commons Library",
			Generated:   time.Now().UTC().Format(time.RFC3339),
			Coverage:    fmt.Sprintf("%d constituencies", len(entries)),
			Notes: []string{
				"Percentages re-mapped to 2024 constituency boundaries by House of Commons Library",
				"Scotland census was conducted in 2022 (one year later than rest of UK)",
				"Northern Ireland uses different census categories, aggregated to match E&W broad groups",
				"Minor rounding means percentages may not sum to exactly 100%",
			},
		},
		UKAverage:      UKAverage,
		Constituencies: make(map[string]*dataset.Demographics, len(entries)),
	}

	for _, e := range entries {
		entry := *e
		entry.Name = "" // the map key carries the name
		if ministers, ok := conToMinisters[normalizeName(e.Name)]; ok {
			entry.Ministers = ministers
		}
		out.Constituencies[e.Name] = &entry
	}
	return out
}

// LoadSource returns the demographics entries, preferring a CSV under
// sourcesPath and falling back to the curated ministerial table.
func LoadSource(csvPath string) ([]*dataset.Demographics, bool, error) {
	if csvPath != "" {
		if f, err := os.Open(csvPath); err == nil {
			defer f.Close()
			entries, err := ReadCSV(f)
			if err != nil {
				return nil, true, fmt.Errorf("process %s: %w", csvPath, err)
			}
			return entries, true, nil
		}
	}
	return Curated(), false, nil
}
