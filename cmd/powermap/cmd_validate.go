package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"powermap/cmd/powermap/ui"
	"powermap/internal/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run integrity checks over the built datasets",
	Long: `Checks the built artifacts without rebuilding them:
  - map-data.json, demographics and ethnicity validate against their schemas
  - every GSS code in map-data exists in the boundary GeoJSON
  - ethnicity percentages sum to ~100 where complete
  - every stored quadrant matches a recomputation from its inputs
  - broad ethnicity categories are from the known set

Warnings are informational; any error finding exits non-zero.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rep := newPipeline().ValidateReport()
		styles := ui.DefaultStyles()

		table := ui.NewTable("Validation findings", []string{"Severity", "Check", "Detail"})
		for _, f := range rep.Findings {
			sev := string(f.Severity)
			switch f.Severity {
			case validate.SeverityError:
				sev = styles.Error.Render(sev)
			case validate.SeverityWarning:
				sev = styles.Warning.Render(sev)
			}
			table.AddRow(sev, f.Check, f.Detail)
		}
		if out := table.View(styles); out != "" {
			fmt.Print(out)
		}

		if !rep.OK() {
			return fmt.Errorf("%d validation errors", len(rep.Errors()))
		}
		fmt.Println(styles.Success.Render("all checks passed"))
		return nil
	},
}
