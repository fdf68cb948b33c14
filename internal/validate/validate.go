// Package validate runs the dataset integrity checks over the emitted
// artifacts: JSON Schema validation of the file shapes, plus the
// cross-file properties the front-end depends on (GeoJSON coverage,
// percentage sums, quadrant determinism, ethnicity categories).
package validate

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"powermap/internal/dataset"
	"powermap/internal/election"
	"powermap/internal/ethnicity"
	"powermap/internal/logging"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Severity of a finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is one validation result.
type Finding struct {
	Severity Severity
	Check    string
	Detail   string
}

func (f Finding) String() string {
	return fmt.Sprintf("[%s] %s: %s", f.Severity, f.Check, f.Detail)
}

// Report collects findings from one validation run.
type Report struct {
	Findings []Finding
}

func (r *Report) add(sev Severity, check, format string, args ...any) {
	r.Findings = append(r.Findings, Finding{
		Severity: sev,
		Check:    check,
		Detail:   fmt.Sprintf(format, args...),
	})
}

// Errors returns only the error-severity findings.
func (r *Report) Errors() []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			out = append(out, f)
		}
	}
	return out
}

// OK reports whether the run produced no errors (warnings allowed).
func (r *Report) OK() bool { return len(r.Errors()) == 0 }

// Thresholds carries the parameters checks recompute against.
type Thresholds struct {
	ReformPct       float64
	NonWhitePct     float64
	PctSumTolerance float64
}

// compiledSchema loads one embedded schema by file name.
func compiledSchema(name string) (*jsonschema.Schema, error) {
	data, err := schemaFS.ReadFile("schemas/" + name)
	if err != nil {
		return nil, fmt.Errorf("embedded schema %s: %w", name, err)
	}
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	url := "https://powermap.local/schemas/" + name
	if err := c.AddResource(url, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("load schema %s: %w", name, err)
	}
	return c.Compile(url)
}

// Schema validates the JSON document at path against the named embedded
// schema, adding a finding per failure.
func (r *Report) Schema(path, schemaName string) {
	sch, err := compiledSchema(schemaName)
	if err != nil {
		r.add(SeverityError, "schema", "%v", err)
		return
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		r.add(SeverityError, "schema", "read %s: %v", path, err)
		return
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		r.add(SeverityError, "schema", "parse %s: %v", path, err)
		return
	}
	if err := sch.Validate(doc); err != nil {
		r.add(SeverityError, "schema", "%s: %v", path, err)
	}
}

// GeoCoverage checks that every GSS code in the boundary file has a
// map-data entry. Missing entries break the choropleth (unshaded
// polygons), so they are errors.
func (r *Report) GeoCoverage(geo *dataset.GeoJSON, md *dataset.MapData) {
	var missing []string
	for _, code := range geo.GSSCodes() {
		if _, ok := md.Constituencies[code]; !ok {
			missing = append(missing, code)
		}
	}
	sort.Strings(missing)
	for _, code := range missing {
		r.add(SeverityError, "geo-coverage", "GSS %s has no map-data entry", code)
	}
}

// PercentageSums checks that each record's five group percentages sum to
// 100 within tolerance. Records with incomplete percentages are skipped;
// the census tables round to one decimal so small drift is expected.
func (r *Report) PercentageSums(md *dataset.MapData, tolerance float64) {
	for gss, rec := range md.Constituencies {
		parts := []*float64{rec.WhitePct, rec.AsianPct, rec.BlackPct, rec.MixedPct, rec.OtherPct}
		sum := 0.0
		complete := true
		for _, p := range parts {
			if p == nil {
				complete = false
				break
			}
			sum += *p
		}
		if !complete {
			continue
		}
		if diff := sum - 100; diff > tolerance || diff < -tolerance {
			r.add(SeverityError, "pct-sum", "%s (%s): percentages sum to %.1f", gss, rec.Name, sum)
		}
	}
}

// Ethnicity checks that every record carries a valid broad category.
func (r *Report) Ethnicity(f *ethnicity.File) {
	for name, rec := range f.Records {
		if !dataset.ValidBroadCategory(rec.Broad) {
			r.add(SeverityError, "ethnicity", "%s: invalid broad category %q", name, rec.Broad)
		}
	}
}

// Quadrants recomputes each record's quadrant from its inputs and checks
// the stored label matches: the classification must be a deterministic
// function of the two axes.
func (r *Report) Quadrants(md *dataset.MapData, th Thresholds) {
	for gss, rec := range md.Constituencies {
		if rec.Quadrant == "" {
			continue
		}
		var axis float64
		switch {
		case rec.ReformPct != nil:
			axis = *rec.ReformPct
		case rec.LeavePct != nil:
			axis = *rec.LeavePct
		default:
			r.add(SeverityError, "quadrant", "%s: quadrant set without reform or leave share", gss)
			continue
		}
		if rec.NonWhitePct == nil {
			r.add(SeverityError, "quadrant", "%s: quadrant set without nonwhite share", gss)
			continue
		}
		want := election.Classify(axis, *rec.NonWhitePct, th.ReformPct, th.NonWhitePct)
		if rec.Quadrant != want {
			r.add(SeverityError, "quadrant", "%s: stored %q, recomputed %q", gss, rec.Quadrant, want)
		}
	}
}

// NameKeyed flags the constituencies that the join could not anchor to a
// GSS code. The org chart can still use them, the map cannot.
func (r *Report) NameKeyed(md *dataset.MapData) {
	for gss, rec := range md.Constituencies {
		for _, m := range rec.Missing {
			if m == "gss_code" {
				r.add(SeverityWarning, "gss-code", "%s (%s) is keyed by name, not GSS code", gss, rec.Name)
			}
		}
	}
}

// Paths names the artifacts one validation run reads.
type Paths struct {
	MapData      string
	Demographics string
	Ethnicity    string
	GeoJSON      string // optional
}

// Run executes every applicable check. Artifacts that do not exist yet
// are reported as warnings so `powermap validate` is useful mid-build.
func Run(p Paths, th Thresholds) *Report {
	log := logging.Get(logging.CategoryValidate)
	rep := &Report{}

	if !dataset.Exists(p.MapData) {
		rep.add(SeverityWarning, "artifacts", "%s not built yet", p.MapData)
		return rep
	}

	rep.Schema(p.MapData, "map-data.schema.json")
	if dataset.Exists(p.Demographics) {
		rep.Schema(p.Demographics, "demographics.schema.json")
	}

	var md dataset.MapData
	if err := dataset.Load(p.MapData, &md); err != nil {
		rep.add(SeverityError, "artifacts", "%v", err)
		return rep
	}

	rep.PercentageSums(&md, th.PctSumTolerance)
	rep.Quadrants(&md, th)
	rep.NameKeyed(&md)

	if dataset.Exists(p.Ethnicity) {
		rep.Schema(p.Ethnicity, "ethnicity.schema.json")
		var eth ethnicity.File
		if err := dataset.Load(p.Ethnicity, &eth); err != nil {
			rep.add(SeverityError, "artifacts", "%v", err)
		} else {
			rep.Ethnicity(&eth)
		}
	}

	if p.GeoJSON != "" && dataset.Exists(p.GeoJSON) {
		var geo dataset.GeoJSON
		if err := dataset.Load(p.GeoJSON, &geo); err != nil {
			rep.add(SeverityError, "artifacts", "%v", err)
		} else {
			rep.GeoCoverage(&geo, &md)
		}
	}

	log.Info("validate: %d findings (%d errors)", len(rep.Findings), len(rep.Errors()))
	return rep
}
