package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"powermap/cmd/powermap/ui"
	"powermap/internal/dataset"
	"powermap/internal/dist"
	"powermap/internal/ethnicity"
	"powermap/internal/timeline"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what has been built in this workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		styles := ui.DefaultStyles()
		p := newPipeline()

		fmt.Println(styles.Title.Render("powermap workspace: " + workspace))

		artifacts := []struct {
			label string
			path  string
			count func(path string) (int, bool)
		}{
			{"departments", p.DataPath("departments.json"), countDepartments},
			{"mp-info", p.DataPath("mp-info.json"), countMPInfo},
			{"ethnicity", p.DataPath("ethnicity-mps.json"), countEthnicity},
			{"demographics", p.DataPath("constituency-demographics.json"), countDemographics},
			{"map-data", p.DataPath("map-data.json"), countMapData},
			{"appointments", p.DataPath("ifg-appointments.json"), countAppointments},
			{"boundaries", cfg.Resolve(workspace, cfg.Paths.GeoJSON), nil},
			{"store", cfg.Resolve(workspace, cfg.Paths.StorePath), nil},
		}

		table := ui.NewTable("Artifacts", []string{"Artifact", "Status", "Records", "Modified"})
		for _, a := range artifacts {
			info, err := os.Stat(a.path)
			if err != nil {
				table.AddRow(a.label, styles.Muted.Render("missing"), "-", "-")
				continue
			}
			records := "-"
			if a.count != nil {
				if n, ok := a.count(a.path); ok {
					records = strconv.Itoa(n)
				}
			}
			table.AddRow(a.label,
				styles.Success.Render("built"),
				records,
				info.ModTime().Format("2006-01-02 15:04"))
		}
		fmt.Print(table.View(styles))

		manifestPath := filepath.Join(cfg.Resolve(workspace, cfg.Paths.DistDir), "manifest.json")
		if dataset.Exists(manifestPath) {
			var m dist.Manifest
			if err := dataset.Load(manifestPath, &m); err == nil {
				fmt.Printf("%s %s (%d files, %s)\n",
					styles.Bold.Render("dist:"),
					m.BuildID, len(m.Files), m.Generated)
			}
		} else {
			fmt.Println(styles.Muted.Render("dist: not built"))
		}
		return nil
	},
}

func countDepartments(path string) (int, bool) {
	var deps []dataset.Department
	if err := dataset.Load(path, &deps); err != nil {
		return 0, false
	}
	return len(deps), true
}

func countMPInfo(path string) (int, bool) {
	var mpInfo dataset.MPInfo
	if err := dataset.Load(path, &mpInfo); err != nil {
		return 0, false
	}
	return len(mpInfo), true
}

func countAppointments(path string) (int, bool) {
	var f timeline.File
	if err := dataset.Load(path, &f); err != nil {
		return 0, false
	}
	return len(f.Appointments), true
}

func countEthnicity(path string) (int, bool) {
	var f ethnicity.File
	if err := dataset.Load(path, &f); err != nil {
		return 0, false
	}
	return len(f.Records), true
}

func countDemographics(path string) (int, bool) {
	var f dataset.DemographicsFile
	if err := dataset.Load(path, &f); err != nil {
		return 0, false
	}
	return len(f.Constituencies), true
}

func countMapData(path string) (int, bool) {
	var f dataset.MapData
	if err := dataset.Load(path, &f); err != nil {
		return 0, false
	}
	return len(f.Constituencies), true
}
