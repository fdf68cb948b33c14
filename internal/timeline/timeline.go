// Package timeline processes the Institute for Government Ministers
// Database export into ifg-appointments.json: one record per ministerial
// appointment, linked to ethnicity records by parlId where possible.
package timeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"powermap/internal/dataset"
	"powermap/internal/ethnicity"
	"powermap/internal/logging"
)

// File is the ifg-appointments.json artifact.
type File struct {
	Metadata     dataset.Metadata       `json:"_metadata"`
	Appointments []*dataset.Appointment `json:"appointments"`
}

// dateLayouts are the formats seen in IfG exports.
var dateLayouts = []string{"2006-01-02", "02/01/2006", "2 January 2006"}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Read parses an IfG export with columns
// parlId,person,role,department,start,end. An empty end date marks a
// current appointment.
func Read(r io.Reader, now time.Time) ([]*dataset.Appointment, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	if _, err := cr.Read(); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var out []*dataset.Appointment
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) < 5 || strings.TrimSpace(row[1]) == "" {
			continue
		}

		id, _ := strconv.Atoi(strings.TrimSpace(row[0]))
		a := &dataset.Appointment{
			ParlID:     id,
			Person:     strings.TrimSpace(row[1]),
			Role:       strings.TrimSpace(row[2]),
			Department: strings.TrimSpace(row[3]),
		}

		start, ok := parseDate(row[4])
		if !ok {
			continue // an appointment without a start date is unusable
		}
		a.Start = start.Format("2006-01-02")

		if len(row) > 5 {
			if end, ok := parseDate(row[5]); ok {
				a.End = end.Format("2006-01-02")
				a.Current = end.After(now)
			} else {
				a.Current = true
			}
		} else {
			a.Current = true
		}
		out = append(out, a)
	}
	return out, nil
}

// Build links appointments to ethnicity records and orders them by start
// date (newest first) for the timeline view.
func Build(appointments []*dataset.Appointment, eth *ethnicity.File) *File {
	log := logging.Get(logging.CategoryTimeline)

	byParlID := make(map[int]string)
	if eth != nil {
		for _, rec := range eth.Records {
			if rec.ParlID != 0 {
				byParlID[rec.ParlID] = rec.Broad
			}
		}
	}

	linked := 0
	for _, a := range appointments {
		if broad, ok := byParlID[a.ParlID]; ok {
			a.Ethnicity = broad
			linked++
		}
	}

	sort.Slice(appointments, func(i, j int) bool {
		if appointments[i].Start != appointments[j].Start {
			return appointments[i].Start > appointments[j].Start
		}
		return appointments[i].Person < appointments[j].Person
	})

	out := &File{
		Metadata: dataset.Metadata{
			Description: "Ministerial appointments over time, linked to MP ethnicity records",
			Source:      "Institute for Government Ministers Database",
			Generated:   time.Now().UTC().Format(time.RFC3339),
			Coverage:    fmt.Sprintf("%d appointments", len(appointments)),
		},
		Appointments: appointments,
	}
	log.Info("timeline: %d appointments, %d linked to ethnicity", len(appointments), linked)
	return out
}
