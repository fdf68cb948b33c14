package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"powermap/cmd/powermap/ui"
	"powermap/internal/store"
)

var queryStats bool

var queryCmd = &cobra.Command{
	Use:   "query [gss-code or name]",
	Short: "Look up constituencies in the dataset store",
	Long: `Queries the SQLite store built by the elections phase.

With an argument, looks up by exact GSS code first, then by
case-insensitive name substring. With --stats, prints aggregates
instead.

Examples:
  powermap query E14001171
  powermap query "clacton"
  powermap query --stats`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(cfg.Resolve(workspace, cfg.Paths.StorePath))
		if err != nil {
			return err
		}
		defer st.Close()

		styles := ui.DefaultStyles()

		if queryStats {
			return printStats(st, styles)
		}
		if len(args) == 0 {
			return fmt.Errorf("a query term or --stats is required")
		}

		rows, err := st.Lookup(args[0])
		if err != nil {
			if err == store.ErrNotFound {
				return fmt.Errorf("no constituency matches %q", args[0])
			}
			return err
		}

		table := ui.NewTable("", []string{"GSS", "Constituency", "Winner", "Majority", "Non-white %", "Reform %", "Quadrant"})
		for _, r := range rows {
			table.AddRow(
				r.GSSCode,
				r.Name,
				r.Winner,
				fmt.Sprintf("%d", r.Majority),
				nullPct(r.NonWhitePct.Float64, r.NonWhitePct.Valid),
				nullPct(r.ReformPct.Float64, r.ReformPct.Valid),
				styles.QuadrantStyle(r.Quadrant).Render(orDash(r.Quadrant)),
			)
		}
		fmt.Print(table.View(styles))
		return nil
	},
}

func printStats(st *store.Store, styles ui.Styles) error {
	stats, err := st.Stats()
	if err != nil {
		return err
	}

	table := ui.NewTable("Dataset store", []string{"Metric", "Value"})
	table.AddRow("Constituencies", fmt.Sprintf("%d", stats.Constituencies))
	table.AddRow("Ministers", fmt.Sprintf("%d", stats.Ministers))
	table.AddRow("Avg non-white %", fmt.Sprintf("%.1f", stats.AvgNonWhite))
	table.AddRow("Most diverse", orDash(stats.MostDiverse))
	table.AddRow("Least diverse", orDash(stats.LeastDiverse))
	fmt.Print(table.View(styles))

	if len(stats.ByQuadrant) > 0 {
		qt := ui.NewTable("By quadrant", []string{"Quadrant", "Constituencies"})
		for _, q := range quadrantOrder {
			if n, ok := stats.ByQuadrant[q]; ok {
				qt.AddRow(styles.QuadrantStyle(q).Render(q), fmt.Sprintf("%d", n))
			}
		}
		fmt.Print(qt.View(styles))
	}
	return nil
}

var quadrantOrder = []string{
	"high-reform-diverse",
	"high-reform-homogeneous",
	"low-reform-diverse",
	"low-reform-homogeneous",
}

func nullPct(v float64, ok bool) string {
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%.1f", v)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func init() {
	queryCmd.Flags().BoolVar(&queryStats, "stats", false, "Print aggregate statistics")
}
