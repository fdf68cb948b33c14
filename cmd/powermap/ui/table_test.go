package ui

import (
	"fmt"
	"strings"
	"testing"
)

func TestTableViewEmpty(t *testing.T) {
	tbl := NewTable("Constituencies", []string{"GSS", "Name"})
	if got := tbl.View(DefaultStyles()); got != "" {
		t.Errorf("empty table rendered %q", got)
	}
}

func TestTableViewContents(t *testing.T) {
	tbl := NewTable("Constituencies", []string{"GSS", "Name", "Quadrant"})
	tbl.AddRow("E14001170", "Clacton", "high-reform-homogeneous")
	tbl.AddRow("E14001305", "Tottenham", "low-reform-diverse")

	out := tbl.View(DefaultStyles())
	for _, want := range []string{"Constituencies", "GSS", "Clacton", "Tottenham", "low-reform-diverse"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if lines := strings.Split(strings.TrimRight(out, "\n"), "\n"); len(lines) < 4 {
		t.Errorf("got %d lines, want title, header, separator and rows", len(lines))
	}
}

func TestTableRaggedRow(t *testing.T) {
	tbl := NewTable("", []string{"A", "B"})
	tbl.AddRow("only-one-cell")
	out := tbl.View(DefaultStyles())
	if !strings.Contains(out, "only-one-cell") {
		t.Error("short row dropped")
	}
}

func TestQuadrantStyleCoversAllQuadrants(t *testing.T) {
	styles := DefaultStyles()
	quadrants := []string{
		"high-reform-diverse",
		"high-reform-homogeneous",
		"low-reform-diverse",
		"low-reform-homogeneous",
	}
	seen := map[string]bool{}
	for _, q := range quadrants {
		seen[fmt.Sprintf("%v", styles.QuadrantStyle(q).GetForeground())] = true
	}
	if len(seen) != len(quadrants) {
		t.Errorf("quadrant colors not distinct: %d unique of %d", len(seen), len(quadrants))
	}
}

func TestDetectThemeRespectsCOLORFGBG(t *testing.T) {
	t.Setenv("POWERMAP_DARK_MODE", "")
	t.Setenv("COLORFGBG", "15;0")
	if !DetectTheme().IsDark {
		t.Error("black background not detected as dark")
	}
	t.Setenv("COLORFGBG", "0;15")
	if DetectTheme().IsDark {
		t.Error("white background detected as dark")
	}
}
