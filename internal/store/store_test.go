package store

import (
	"path/filepath"
	"testing"

	"powermap/internal/dataset"
)

func testMapData() *dataset.MapData {
	return &dataset.MapData{
		Constituencies: map[string]*dataset.ConstituencyRecord{
			"E14001171": {
				GSSCode:     "E14001171",
				Name:        "Clacton",
				NonWhitePct: dataset.Float(4.1),
				Winner:      "RUK",
				MPName:      "Nigel Farage",
				Majority:    8405,
				ReformPct:   dataset.Float(46.2),
				Quadrant:    "high-reform-homogeneous",
			},
			"E14001101": {
				GSSCode:      "E14001101",
				Name:         "Tottenham",
				NonWhitePct:  dataset.Float(62.9),
				Winner:       "Lab",
				MPName:       "David Lammy",
				MinisterRank: "secretary",
				Department:   "FCDO",
				MPEthnicity:  "Black",
				Majority:     15434,
				ReformPct:    dataset.Float(7.6),
				Quadrant:     "low-reform-diverse",
			},
			"name:somewhere": {
				GSSCode: "name:somewhere",
				Name:    "Somewhere",
				Missing: []string{"gss_code"},
			},
		},
	}
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "powermap.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.Rebuild(testMapData()); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	return s
}

func TestLookupByGSS(t *testing.T) {
	s := openTestStore(t)

	rows, err := s.Lookup("E14001171")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "Clacton" {
		t.Fatalf("rows = %+v", rows)
	}
	r := rows[0]
	if r.Winner != "RUK" || r.Majority != 8405 {
		t.Errorf("row = %+v", r)
	}
	if !r.ReformPct.Valid || r.ReformPct.Float64 != 46.2 {
		t.Errorf("ReformPct = %+v", r.ReformPct)
	}
	if r.LeavePct.Valid {
		t.Errorf("LeavePct should be null: %+v", r.LeavePct)
	}
}

func TestLookupByNameSubstring(t *testing.T) {
	s := openTestStore(t)

	rows, err := s.Lookup("tott")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(rows) != 1 || rows[0].GSSCode != "E14001101" {
		t.Fatalf("rows = %+v", rows)
	}
	if rows[0].Quadrant != "low-reform-diverse" {
		t.Errorf("Quadrant = %q", rows[0].Quadrant)
	}
}

func TestLookupNotFound(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.Lookup("zzz-no-such-place"); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestStats(t *testing.T) {
	s := openTestStore(t)

	stats, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Constituencies != 3 {
		t.Errorf("Constituencies = %d", stats.Constituencies)
	}
	// Only Tottenham has a minister rank.
	if stats.Ministers != 1 {
		t.Errorf("Ministers = %d", stats.Ministers)
	}
	if stats.MostDiverse != "Tottenham" || stats.LeastDiverse != "Clacton" {
		t.Errorf("extremes = %q / %q", stats.MostDiverse, stats.LeastDiverse)
	}
	if stats.ByQuadrant["high-reform-homogeneous"] != 1 || stats.ByQuadrant["low-reform-diverse"] != 1 {
		t.Errorf("ByQuadrant = %v", stats.ByQuadrant)
	}
}

func TestRebuildReplacesContents(t *testing.T) {
	s := openTestStore(t)

	md := &dataset.MapData{
		Constituencies: map[string]*dataset.ConstituencyRecord{
			"E14001211": {GSSCode: "E14001211", Name: "East Ham"},
		},
	}
	if err := s.Rebuild(md); err != nil {
		t.Fatalf("second Rebuild: %v", err)
	}

	if _, err := s.Lookup("E14001171"); err != ErrNotFound {
		t.Errorf("old row survived rebuild: %v", err)
	}
	stats, err := s.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Constituencies != 1 || stats.Ministers != 0 {
		t.Errorf("stats after rebuild = %+v", stats)
	}
}
