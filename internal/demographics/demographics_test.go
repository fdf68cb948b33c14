package demographics

import (
	"strings"
	"testing"

	"powermap/internal/dataset"
	"powermap/internal/match"
)

const sampleCSV = `PCON24CD,PCON24NM,White (%),Asian (%),Black (%),Mixed (%),Other (%)
E14001170,Cities of London and Westminster,61.1,15.5,7.5,6.3,9.6
E14001171,Clacton,95.9,1.3,0.9,1.5,0.4
E14001211,East Ham,17.4,59.5,14.3,3.7,5.1
`

func TestReadCSV(t *testing.T) {
	entries, err := ReadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}

	clacton := entries[1]
	if clacton.Name != "Clacton" || clacton.GSSCode != "E14001171" {
		t.Errorf("unexpected entry: %+v", clacton)
	}
	if clacton.WhitePct == nil || *clacton.WhitePct != 95.9 {
		t.Errorf("WhitePct = %v, want 95.9", clacton.WhitePct)
	}
	if clacton.NonWhitePct == nil || *clacton.NonWhitePct != 4.1 {
		t.Errorf("NonWhitePct = %v, want 4.1", clacton.NonWhitePct)
	}
}

func TestReadCSVReorderedColumns(t *testing.T) {
	csv := `Constituency,Other (%),White (%),Asian (%),Black (%),Mixed (%),ONS code
East Ham,5.1,17.4,59.5,14.3,3.7,E14001211
`
	entries, err := ReadCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries", len(entries))
	}
	e := entries[0]
	if e.GSSCode != "E14001211" {
		t.Errorf("GSSCode = %q", e.GSSCode)
	}
	if e.AsianPct == nil || *e.AsianPct != 59.5 {
		t.Errorf("AsianPct = %v", e.AsianPct)
	}
}

func TestReadCSVConstituencyCodeHeader(t *testing.T) {
	csv := `Constituency Name,Constituency Code,White (%)
Clacton,E14001171,95.9
`
	entries, err := ReadCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries", len(entries))
	}
	e := entries[0]
	if e.Name != "Clacton" {
		t.Errorf("Name = %q", e.Name)
	}
	if e.GSSCode != "E14001171" {
		t.Errorf("GSSCode = %q, want E14001171", e.GSSCode)
	}
}

func TestReadCSVNoNameColumn(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader("a,b\n1,2\n")); err == nil {
		t.Fatal("expected error for missing name column")
	}
}

func TestReadCSVSkipsBlankRowsAndBadValues(t *testing.T) {
	csv := `Constituency,White (%)
Clacton,95.9
,12.0
East Ham,n/a
`
	entries, err := ReadCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[1].WhitePct != nil {
		t.Errorf("unparseable percentage should be nil, got %v", *entries[1].WhitePct)
	}
	if entries[1].NonWhitePct != nil {
		t.Errorf("NonWhitePct derived from missing white: %v", *entries[1].NonWhitePct)
	}
}

func TestDeriveFromMinorityGroups(t *testing.T) {
	d := &dataset.Demographics{
		AsianPct: dataset.Float(59.5),
		BlackPct: dataset.Float(14.3),
		MixedPct: dataset.Float(3.7),
		OtherPct: dataset.Float(5.1),
	}
	derive(d)
	if d.NonWhitePct == nil || *d.NonWhitePct != 82.6 {
		t.Errorf("NonWhitePct = %v, want 82.6", d.NonWhitePct)
	}
}

func TestValidate(t *testing.T) {
	entries, err := ReadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatal(err)
	}
	mpInfo := dataset.MPInfo{
		"Nigel Farage":  {Constituency: "Clacton"},
		"Rachel Reeves": {Constituency: "Leeds West and Pudsey"},
		// Ampersand variant should fuzzy-match the CSV spelling.
		"Someone": {Constituency: "Cities of London & Westminster"},
	}

	rep := Validate(entries, mpInfo, match.DefaultThreshold)
	if rep.ExactMatches != 1 {
		t.Errorf("ExactMatches = %d, want 1", rep.ExactMatches)
	}
	if got := rep.FuzzyMatches["Cities of London & Westminster"]; got != "Cities of London and Westminster" {
		t.Errorf("fuzzy match = %q", got)
	}
	if len(rep.Missing) != 1 || rep.Missing[0] != "Leeds West and Pudsey" {
		t.Errorf("Missing = %v", rep.Missing)
	}
}

func TestBuild(t *testing.T) {
	entries, err := ReadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatal(err)
	}
	mpInfo := dataset.MPInfo{
		"Nigel Farage": {Constituency: "Clacton", Party: "RUK"},
	}

	out := Build(entries, mpInfo)
	if len(out.Constituencies) != 3 {
		t.Fatalf("got %d constituencies", len(out.Constituencies))
	}
	clacton, ok := out.Constituencies["Clacton"]
	if !ok {
		t.Fatal("Clacton missing from output")
	}
	if clacton.Name != "" {
		t.Errorf("entry name should be cleared, got %q", clacton.Name)
	}
	if len(clacton.Ministers) != 1 || clacton.Ministers[0] != "Nigel Farage" {
		t.Errorf("Ministers = %v", clacton.Ministers)
	}
	if out.UKAverage["nonwhite_pct"] != 18.3 {
		t.Errorf("UKAverage nonwhite = %v", out.UKAverage["nonwhite_pct"])
	}
}

func TestCurated(t *testing.T) {
	entries := Curated()
	if len(entries) == 0 {
		t.Fatal("curated table is empty")
	}
	seen := make(map[string]bool)
	for _, e := range entries {
		if e.Name == "" {
			t.Fatal("curated entry with empty name")
		}
		if seen[e.Name] {
			t.Errorf("duplicate curated entry %q", e.Name)
		}
		seen[e.Name] = true
		if e.WhitePct == nil || e.NonWhitePct == nil {
			t.Errorf("%s: incomplete percentages", e.Name)
			continue
		}
		sum := *e.WhitePct + *e.AsianPct + *e.BlackPct + *e.MixedPct + *e.OtherPct
		if sum < 99.0 || sum > 101.0 {
			t.Errorf("%s: percentages sum to %.1f", e.Name, sum)
		}
	}
}
