// Package dataset defines the record types shared across the pipeline and
// the JSON load/save helpers for the data/ artifacts.
//
// All records are flat and immutable once emitted: the pipeline regenerates
// whole files, it never patches them in place. Join keys are the ONS GSS
// code for constituency-level data and the MNIS parlId for MP-level data.
package dataset

// MP describes one member as recorded in mp-info.json. The map key is the
// display name used by the org chart; ParlID is the cross-dataset join key.
type MP struct {
	Constituency string `json:"con,omitempty"`
	ParlID       int    `json:"parlId,omitempty"`
	Party        string `json:"party,omitempty"`
	Majority     int    `json:"maj,omitempty"`
	Department   string `json:"dept,omitempty"`
	Rank         string `json:"rank,omitempty"` // secretary, mos, puss
}

// MPInfo is the full mp-info.json mapping, keyed by display name.
type MPInfo map[string]MP

// Minister is one ministerial post inside a department block.
type Minister struct {
	Name  string `json:"name"`
	Title string `json:"title,omitempty"`
	Lords bool   `json:"lords,omitempty"`
}

// Department is one block of the ministerial org chart.
type Department struct {
	Name      string     `json:"name"`
	Short     string     `json:"short,omitempty"`
	Budget    float64    `json:"budget,omitempty"` // GBP billions, day-to-day spend
	Secretary Minister   `json:"secretary"`
	MoS       []Minister `json:"mos,omitempty"`
	PUSS      []Minister `json:"puss,omitempty"`
}

// EthnicityRecord links an MP to their recorded ethnicity. Broad must be
// one of BroadCategories; Detail is free text from the source.
type EthnicityRecord struct {
	ParlID int    `json:"parlId,omitempty"`
	Name   string `json:"name"`
	Broad  string `json:"broad"`
	Detail string `json:"detail,omitempty"`
	Source string `json:"source,omitempty"`
}

// BroadCategories is the fixed set of valid broad ethnicity categories,
// following the Commons Library aggregation of census groups.
var BroadCategories = []string{"Asian", "Black", "Mixed", "White", "Other"}

// ValidBroadCategory reports whether s is a member of BroadCategories.
func ValidBroadCategory(s string) bool {
	for _, c := range BroadCategories {
		if s == c {
			return true
		}
	}
	return false
}

// Demographics holds the census ethnic-group percentages for one
// constituency. Pointer fields distinguish "not recorded" from zero.
type Demographics struct {
	Name        string   `json:"constituency_name,omitempty"`
	GSSCode     string   `json:"gss_code,omitempty"`
	WhitePct    *float64 `json:"white_pct"`
	AsianPct    *float64 `json:"asian_pct"`
	BlackPct    *float64 `json:"black_pct"`
	MixedPct    *float64 `json:"mixed_pct"`
	OtherPct    *float64 `json:"other_pct"`
	NonWhitePct *float64 `json:"nonwhite_pct,omitempty"`
	Ministers   []string `json:"ministers,omitempty"`
}

// DemographicsFile is the constituency-demographics.json artifact.
type DemographicsFile struct {
	Metadata       Metadata                 `json:"_metadata"`
	UKAverage      map[string]any           `json:"uk_average,omitempty"`
	Constituencies map[string]*Demographics `json:"constituencies"`
}

// ElectionResult holds the 2024 general election fields plus the estimated
// 2016 Leave share for one constituency, keyed by GSS code.
type ElectionResult struct {
	GSSCode    string             `json:"gss_code"`
	Name       string             `json:"constituency_name,omitempty"`
	Winner     string             `json:"winner,omitempty"`
	MPName     string             `json:"mp_name,omitempty"`
	Majority   int                `json:"majority,omitempty"`
	TurnoutPct float64            `json:"turnout_pct,omitempty"`
	LeavePct   *float64           `json:"leave_pct,omitempty"`
	ReformPct  *float64           `json:"reform_pct,omitempty"`
	Shares     map[string]float64 `json:"shares,omitempty"` // party -> vote share %
}

// ConstituencyRecord is one merged entry of map-data.json: everything the
// choropleth front-end needs for a single constituency.
type ConstituencyRecord struct {
	GSSCode     string   `json:"gss_code"`
	Name        string   `json:"name"`
	WhitePct    *float64 `json:"white_pct,omitempty"`
	AsianPct    *float64 `json:"asian_pct,omitempty"`
	BlackPct    *float64 `json:"black_pct,omitempty"`
	MixedPct    *float64 `json:"mixed_pct,omitempty"`
	OtherPct    *float64 `json:"other_pct,omitempty"`
	NonWhitePct *float64 `json:"nonwhite_pct,omitempty"`

	MPName       string `json:"mp_name,omitempty"`
	Party        string `json:"party,omitempty"`
	MPEthnicity  string `json:"mp_ethnicity,omitempty"`
	MinisterRank string `json:"minister_rank,omitempty"`
	Department   string `json:"department,omitempty"`

	Winner     string             `json:"winner,omitempty"`
	Majority   int                `json:"majority,omitempty"`
	TurnoutPct float64            `json:"turnout_pct,omitempty"`
	LeavePct   *float64           `json:"leave_pct,omitempty"`
	ReformPct  *float64           `json:"reform_pct,omitempty"`
	Shares     map[string]float64 `json:"shares,omitempty"`

	Quadrant string   `json:"quadrant,omitempty"`
	Missing  []string `json:"missing,omitempty"` // datasets absent for this entry
}

// MapData is the consolidated map-data.json artifact consumed by the
// Leaflet front-end.
type MapData struct {
	Metadata       Metadata                       `json:"_metadata"`
	Constituencies map[string]*ConstituencyRecord `json:"constituencies"`
}

// Appointment is one row of the IfG Ministers Database export.
type Appointment struct {
	ParlID     int    `json:"parlId,omitempty"`
	Person     string `json:"person"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
	Start      string `json:"start"` // ISO date
	End        string `json:"end,omitempty"`
	Current    bool   `json:"current,omitempty"`
	Ethnicity  string `json:"ethnicity,omitempty"`
}

// IssueRecord summarizes one MP's recorded position on a tracked issue.
type IssueRecord struct {
	ParlID   int    `json:"parlId,omitempty"`
	Name     string `json:"name"`
	VotesFor int    `json:"votes_for"`
	VotesAgn int    `json:"votes_against"`
	Absent   int    `json:"absent"`
	Meetings int    `json:"meetings,omitempty"`
	Stance   string `json:"stance,omitempty"` // for, against, mixed, none
}

// IssueFile is one data/issues/<key>.json artifact.
type IssueFile struct {
	Metadata Metadata                `json:"_metadata"`
	Issue    string                  `json:"issue"`
	Records  map[string]*IssueRecord `json:"records"` // keyed by MP name
}

// Metadata is the provenance block every emitted artifact carries.
type Metadata struct {
	Description string   `json:"description,omitempty"`
	Source      string   `json:"source,omitempty"`
	Generated   string   `json:"generated,omitempty"` // RFC 3339
	Coverage    string   `json:"coverage,omitempty"`
	Notes       []string `json:"notes,omitempty"`
}

// GeoJSON is the minimal shape of the boundary file the validator needs:
// feature properties carrying the GSS code and constituency name.
type GeoJSON struct {
	Type     string `json:"type"`
	Features []struct {
		Properties map[string]any `json:"properties"`
	} `json:"features"`
}

// GSSCodes returns the GSS code of every feature, trying the property
// names used by the 2024 and 2011 boundary releases.
func (g *GeoJSON) GSSCodes() []string {
	codes := make([]string, 0, len(g.Features))
	for _, f := range g.Features {
		for _, key := range []string{"PCON24CD", "PCON11CD", "gss_code", "code"} {
			if v, ok := f.Properties[key].(string); ok && v != "" {
				codes = append(codes, v)
				break
			}
		}
	}
	return codes
}
