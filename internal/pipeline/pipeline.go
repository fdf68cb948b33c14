// Package pipeline orchestrates the build phases in dependency order:
// extract, ethnicity, demographics, elections (the map-data join), issues,
// timeline, validate, dist. Each phase reads data/ and sources, writes its
// artifact, and returns a one-line summary for the CLI.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"powermap/internal/config"
	"powermap/internal/dataset"
	"powermap/internal/demographics"
	"powermap/internal/dist"
	"powermap/internal/election"
	"powermap/internal/ethnicity"
	"powermap/internal/extract"
	"powermap/internal/issues"
	"powermap/internal/join"
	"powermap/internal/snapshot"
	"powermap/internal/store"
	"powermap/internal/timeline"
	"powermap/internal/validate"
)

// Pipeline holds the resolved paths and thresholds for one workspace.
type Pipeline struct {
	Workspace string
	Config    *config.Config
}

// New creates a pipeline for the workspace.
func New(workspace string, cfg *config.Config) *Pipeline {
	return &Pipeline{Workspace: workspace, Config: cfg}
}

func (p *Pipeline) path(rel string) string {
	return p.Config.Resolve(p.Workspace, rel)
}

// DataPath returns the path of a file under the data directory.
func (p *Pipeline) DataPath(name string) string {
	return filepath.Join(p.path(p.Config.Paths.DataDir), name)
}

// SourcePath returns the path of a raw input under data/sources.
func (p *Pipeline) SourcePath(name string) string {
	return filepath.Join(p.path(p.Config.Paths.SourcesDir), name)
}

// Phase names, in build order.
const (
	PhaseExtract      = "extract"
	PhaseEthnicity    = "ethnicity"
	PhaseDemographics = "demographics"
	PhaseElections    = "elections"
	PhaseIssues       = "issues"
	PhaseTimeline     = "timeline"
	PhaseValidate     = "validate"
	PhaseDist         = "dist"
)

// Summary is one phase's outcome line.
type Summary struct {
	Phase   string
	Detail  string
	Skipped bool
}

// RunAll executes the full build. It stops at the first failing phase and
// reports which phase failed. Phases whose inputs are absent are skipped,
// not failed, so a partially populated workspace still builds.
func (p *Pipeline) RunAll(ctx context.Context) ([]Summary, error) {
	phases := []func(context.Context) (Summary, error){
		p.Extract,
		p.Ethnicity,
		p.Demographics,
		p.Elections,
		p.Issues,
		p.Timeline,
		p.Validate,
		p.Dist,
	}
	var out []Summary
	for _, phase := range phases {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		s, err := phase(ctx)
		out = append(out, s)
		if err != nil {
			return out, fmt.Errorf("phase %s: %w", s.Phase, err)
		}
	}
	return out, nil
}

// Extract scrapes the embedded page variables out of the source HTML.
func (p *Pipeline) Extract(ctx context.Context) (Summary, error) {
	src := p.path(p.Config.Paths.SourceHTML)
	if !dataset.Exists(src) {
		return Summary{Phase: PhaseExtract, Detail: "no source html, skipped", Skipped: true}, nil
	}

	results, err := extract.Run(src, p.path(p.Config.Paths.DataDir))
	if err != nil {
		return Summary{Phase: PhaseExtract}, err
	}

	ok, failed := 0, 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		} else {
			ok++
		}
	}
	if failed > 0 {
		return Summary{Phase: PhaseExtract},
			fmt.Errorf("%d of %d variables failed to extract", failed, len(results))
	}

	// Cross-check minister coverage; missing names are a data-quality
	// warning, not a build failure.
	detail := fmt.Sprintf("%d variables extracted", ok)
	var deps []dataset.Department
	var mpInfo dataset.MPInfo
	if dataset.Load(p.DataPath("departments.json"), &deps) == nil &&
		dataset.Load(p.DataPath("mp-info.json"), &mpInfo) == nil {
		missing, withID := extract.CrossCheck(deps, mpInfo)
		detail = fmt.Sprintf("%s, %d ministers missing from mp-info, %d with parlId", detail, len(missing), withID)
	}
	return Summary{Phase: PhaseExtract, Detail: detail}, nil
}

// Ethnicity joins the MP ethnicity records against mp-info.
func (p *Pipeline) Ethnicity(ctx context.Context) (Summary, error) {
	src := p.SourcePath("british-future-2024.json")
	if !dataset.Exists(src) || !dataset.Exists(p.DataPath("mp-info.json")) {
		return Summary{Phase: PhaseEthnicity, Detail: "sources absent, skipped", Skipped: true}, nil
	}

	var records []*dataset.EthnicityRecord
	var mpInfo dataset.MPInfo
	if err := dataset.LoadAll(map[string]any{
		src:                        &records,
		p.DataPath("mp-info.json"): &mpInfo,
	}); err != nil {
		return Summary{Phase: PhaseEthnicity}, err
	}

	out, rep := ethnicity.Join(records, mpInfo, p.Config.Thresholds.FuzzyRatio)
	if len(rep.InvalidBroad) > 0 {
		return Summary{Phase: PhaseEthnicity},
			fmt.Errorf("invalid broad categories: %v", rep.InvalidBroad)
	}
	if err := dataset.Save(p.DataPath("ethnicity-mps.json"), out); err != nil {
		return Summary{Phase: PhaseEthnicity}, err
	}
	return Summary{
		Phase:  PhaseEthnicity,
		Detail: fmt.Sprintf("%d records (%d by parlId, %d by name)", rep.Total, rep.ByParlID, rep.ByName),
	}, nil
}

// Demographics builds the constituency demographics artifact.
func (p *Pipeline) Demographics(ctx context.Context) (Summary, error) {
	mpPath := p.DataPath("mp-info.json")
	if !dataset.Exists(mpPath) {
		return Summary{Phase: PhaseDemographics, Detail: "mp-info absent, skipped", Skipped: true}, nil
	}

	var mpInfo dataset.MPInfo
	if err := dataset.Load(mpPath, &mpInfo); err != nil {
		return Summary{Phase: PhaseDemographics}, err
	}

	entries, fromCSV, err := demographics.LoadSource(p.SourcePath("constituency-ethnicity.csv"))
	if err != nil {
		return Summary{Phase: PhaseDemographics}, err
	}

	rep := demographics.Validate(entries, mpInfo, p.Config.Thresholds.FuzzyRatio)
	out := demographics.Build(entries, mpInfo)
	if err := dataset.Save(p.DataPath("constituency-demographics.json"), out); err != nil {
		return Summary{Phase: PhaseDemographics}, err
	}

	source := "curated"
	if fromCSV {
		source = "csv"
	}
	return Summary{
		Phase: PhaseDemographics,
		Detail: fmt.Sprintf("%d constituencies (%s), %d exact, %d fuzzy, %d missing",
			rep.Entries, source, rep.ExactMatches, len(rep.FuzzyMatches), len(rep.Missing)),
	}, nil
}

// Elections runs the map-data join and refreshes the SQLite store.
func (p *Pipeline) Elections(ctx context.Context) (Summary, error) {
	demoPath := p.DataPath("constituency-demographics.json")
	if !dataset.Exists(demoPath) {
		return Summary{Phase: PhaseElections, Detail: "demographics absent, skipped", Skipped: true}, nil
	}

	var demo dataset.DemographicsFile
	if err := dataset.Load(demoPath, &demo); err != nil {
		return Summary{Phase: PhaseElections}, err
	}

	results := make(map[string]*dataset.ElectionResult)
	leave := make(map[string]*dataset.ElectionResult)
	if path := p.SourcePath("election-results-2024.json"); dataset.Exists(path) {
		if err := dataset.Load(path, &results); err != nil {
			return Summary{Phase: PhaseElections}, err
		}
	}
	if path := p.SourcePath("leave-estimates.json"); dataset.Exists(path) {
		if err := dataset.Load(path, &leave); err != nil {
			return Summary{Phase: PhaseElections}, err
		}
	}

	in := join.Inputs{
		Demographics: &demo,
		Elections:    election.Merge(results, leave),
	}
	if path := p.DataPath("mp-info.json"); dataset.Exists(path) {
		var mpInfo dataset.MPInfo
		if err := dataset.Load(path, &mpInfo); err != nil {
			return Summary{Phase: PhaseElections}, err
		}
		in.MPInfo = mpInfo
	}
	if path := p.DataPath("ethnicity-mps.json"); dataset.Exists(path) {
		var eth ethnicity.File
		if err := dataset.Load(path, &eth); err != nil {
			return Summary{Phase: PhaseElections}, err
		}
		in.Ethnicity = &eth
	}

	md, err := join.Build(in, join.Thresholds{
		ReformPct:       p.Config.Thresholds.ReformPct,
		NonWhitePct:     p.Config.Thresholds.NonWhitePct,
		FuzzyRatio:      p.Config.Thresholds.FuzzyRatio,
		BoundaryOverlap: p.Config.Thresholds.BoundaryOverlap,
	})
	if err != nil {
		return Summary{Phase: PhaseElections}, err
	}
	if err := dataset.Save(p.DataPath("map-data.json"), md); err != nil {
		return Summary{Phase: PhaseElections}, err
	}

	if err := p.refreshStore(md); err != nil {
		return Summary{Phase: PhaseElections}, err
	}
	return Summary{
		Phase:  PhaseElections,
		Detail: fmt.Sprintf("%d constituencies merged", len(md.Constituencies)),
	}, nil
}

func (p *Pipeline) refreshStore(md *dataset.MapData) error {
	st, err := store.Open(p.path(p.Config.Paths.StorePath))
	if err != nil {
		return err
	}
	defer st.Close()
	return st.Rebuild(md)
}

// Issues processes vote and meeting sources into per-issue artifacts.
func (p *Pipeline) Issues(ctx context.Context) (Summary, error) {
	sourcesDir := filepath.Join(p.path(p.Config.Paths.SourcesDir), "issues")
	found, err := issues.Discover(sourcesDir)
	if err != nil {
		return Summary{Phase: PhaseIssues}, err
	}
	if len(found) == 0 {
		return Summary{Phase: PhaseIssues, Detail: "no issue sources, skipped", Skipped: true}, nil
	}

	var mpInfo dataset.MPInfo
	if path := p.DataPath("mp-info.json"); dataset.Exists(path) {
		if err := dataset.Load(path, &mpInfo); err != nil {
			return Summary{Phase: PhaseIssues}, err
		}
	}

	for _, iss := range found {
		out, err := issues.Process(iss, mpInfo)
		if err != nil {
			return Summary{Phase: PhaseIssues}, err
		}
		path := filepath.Join(p.path(p.Config.Paths.DataDir), "issues", iss.Key+".json")
		if err := dataset.Save(path, out); err != nil {
			return Summary{Phase: PhaseIssues}, err
		}
	}
	return Summary{
		Phase:  PhaseIssues,
		Detail: fmt.Sprintf("%d issues processed", len(found)),
	}, nil
}

// Timeline builds the ministerial appointments artifact from the IfG export.
func (p *Pipeline) Timeline(ctx context.Context) (Summary, error) {
	src := p.SourcePath("ifg-ministers.csv")
	if !dataset.Exists(src) {
		return Summary{Phase: PhaseTimeline, Detail: "no IfG export, skipped", Skipped: true}, nil
	}

	f, err := os.Open(src)
	if err != nil {
		return Summary{Phase: PhaseTimeline}, err
	}
	defer f.Close()

	appointments, err := timeline.Read(f, time.Now())
	if err != nil {
		return Summary{Phase: PhaseTimeline}, err
	}

	var eth *ethnicity.File
	if path := p.DataPath("ethnicity-mps.json"); dataset.Exists(path) {
		eth = &ethnicity.File{}
		if err := dataset.Load(path, eth); err != nil {
			return Summary{Phase: PhaseTimeline}, err
		}
	}

	out := timeline.Build(appointments, eth)
	if err := dataset.Save(p.DataPath("ifg-appointments.json"), out); err != nil {
		return Summary{Phase: PhaseTimeline}, err
	}
	return Summary{
		Phase:  PhaseTimeline,
		Detail: fmt.Sprintf("%d appointments", len(appointments)),
	}, nil
}

// Validate runs the integrity checks. Error findings fail the build.
func (p *Pipeline) Validate(ctx context.Context) (Summary, error) {
	rep := p.ValidateReport()
	if !rep.OK() {
		for _, f := range rep.Errors() {
			fmt.Fprintln(os.Stderr, f)
		}
		return Summary{Phase: PhaseValidate},
			fmt.Errorf("%d validation errors", len(rep.Errors()))
	}
	return Summary{
		Phase:  PhaseValidate,
		Detail: fmt.Sprintf("%d findings, no errors", len(rep.Findings)),
	}, nil
}

// ValidateReport runs the checks and returns the full report.
func (p *Pipeline) ValidateReport() *validate.Report {
	return validate.Run(validate.Paths{
		MapData:      p.DataPath("map-data.json"),
		Demographics: p.DataPath("constituency-demographics.json"),
		Ethnicity:    p.DataPath("ethnicity-mps.json"),
		GeoJSON:      p.path(p.Config.Paths.GeoJSON),
	}, validate.Thresholds{
		ReformPct:       p.Config.Thresholds.ReformPct,
		NonWhitePct:     p.Config.Thresholds.NonWhitePct,
		PctSumTolerance: p.Config.Thresholds.PctSumTolerance,
	})
}

// Dist builds the deployable tree.
func (p *Pipeline) Dist(ctx context.Context) (Summary, error) {
	m, err := dist.Build(dist.Options{
		Workspace: p.Workspace,
		WebDir:    p.path(p.Config.Paths.WebDir),
		DataDir:   p.path(p.Config.Paths.DataDir),
		MapsDir:   p.path(p.Config.Paths.MapsDir),
		DistDir:   p.path(p.Config.Paths.DistDir),
	})
	if err != nil {
		return Summary{Phase: PhaseDist}, err
	}
	return Summary{
		Phase:  PhaseDist,
		Detail: fmt.Sprintf("%d files, build %s", len(m.Files), m.BuildID),
	}, nil
}

// Snapshot renders the static map images against a served base URL.
func (p *Pipeline) Snapshot(ctx context.Context, baseURL string) (Summary, error) {
	timeout, err := time.ParseDuration(p.Config.Snapshot.Timeout)
	if err != nil {
		timeout = 60 * time.Second
	}
	results, err := snapshot.Run(ctx, snapshot.Options{
		BaseURL: baseURL,
		Pages:   p.Config.Snapshot.Pages,
		OutDir:  p.path(p.Config.Paths.MapsDir),
		Timeout: timeout,
	})
	if err != nil {
		return Summary{Phase: "maps"}, err
	}
	return Summary{
		Phase:  "maps",
		Detail: fmt.Sprintf("%d pages captured", len(results)),
	}, nil
}

// RebuildJoin is the watch-mode hook: re-run only the join so a source
// edit refreshes map-data.json without a full build.
func (p *Pipeline) RebuildJoin(ctx context.Context) error {
	_, err := p.Elections(ctx)
	return err
}
