package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"powermap/cmd/powermap/ui"
	"powermap/internal/pipeline"
)

// buildContext returns a context with the global timeout that is cancelled
// on SIGINT/SIGTERM.
func buildContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

// runPhase wraps a single pipeline phase as a cobra RunE.
func runPhase(phase func(*pipeline.Pipeline, context.Context) (pipeline.Summary, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, cancel := buildContext()
		defer cancel()

		s, err := phase(newPipeline(), ctx)
		if err != nil {
			return err
		}
		printSummaries([]pipeline.Summary{s})
		return nil
	}
}

func printSummaries(summaries []pipeline.Summary) {
	styles := ui.DefaultStyles()
	for _, s := range summaries {
		label := styles.Bold.Render(fmt.Sprintf("%-13s", s.Phase))
		detail := s.Detail
		if s.Skipped {
			detail = styles.Muted.Render(detail)
		}
		fmt.Printf("%s %s\n", label, detail)
	}
}

func runFullBuild(cmd *cobra.Command) error {
	ctx, cancel := buildContext()
	defer cancel()

	logger.Info("Starting full build", zap.String("workspace", workspace))
	summaries, err := newPipeline().RunAll(ctx)
	printSummaries(summaries)
	if err != nil {
		return err
	}

	styles := ui.DefaultStyles()
	if cfg.Snapshot.Enabled {
		// Snapshot failures degrade the build instead of failing it.
		if err := runSnapshot(ctx); err != nil {
			logger.Warn("Map snapshots skipped", zap.Error(err))
			fmt.Println(styles.Warning.Render("maps: skipped (" + err.Error() + ")"))
		}
	}
	fmt.Println(styles.Success.Render("build complete"))
	return nil
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract datasets from the monolithic source page",
	Long: `Parses the original single-file page, locates the inline script, and
converts each embedded JS data variable (departments, MP info, budgets,
whips, changelog) to its own JSON file under data/.

Variables that fail to convert leave a _debug_* file next to the output
for inspection.`,
	RunE: runPhase((*pipeline.Pipeline).Extract),
}

var ethnicityCmd = &cobra.Command{
	Use:   "ethnicity",
	Short: "Join MP ethnicity records against mp-info",
	Long: `Joins the British Future MP ethnicity records to the MP roster, by
parlId where present, falling back to fuzzy name matching. Writes
data/ethnicity-mps.json keyed by MP name.`,
	RunE: runPhase((*pipeline.Pipeline).Ethnicity),
}

var demographicsCmd = &cobra.Command{
	Use:   "demographics",
	Short: "Build constituency demographics from the census export",
	Long: `Reads the Census 2021 constituency ethnicity export (CSV) if present,
otherwise falls back to the curated table, cross-references names
against the MP roster, and writes data/constituency-demographics.json.`,
	RunE: runPhase((*pipeline.Pipeline).Demographics),
}

var electionsCmd = &cobra.Command{
	Use:   "elections",
	Short: "Merge demographics, election results and ethnicity into map-data",
	Long: `Runs the dataset join: demographics, 2024 election results, Leave
estimates, minister roles and MP ethnicity are merged per constituency,
each record gets its quadrant classification, and data/map-data.json is
written. The SQLite store is rebuilt from the result.`,
	RunE: runPhase((*pipeline.Pipeline).Elections),
}

var issuesCmd = &cobra.Command{
	Use:   "issues",
	Short: "Process per-issue vote and meeting records",
	RunE:  runPhase((*pipeline.Pipeline).Issues),
}

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Build the ministerial appointment timeline from the IfG export",
	RunE:  runPhase((*pipeline.Pipeline).Timeline),
}

var distCmd = &cobra.Command{
	Use:   "dist",
	Short: "Assemble the deployable site under dist/",
	Long: `Copies the static site, the built data files (excluding raw sources and
debug droppings) and any rendered maps into dist/, and writes a
manifest with content digests and a build id.`,
	RunE: runPhase((*pipeline.Pipeline).Dist),
}
