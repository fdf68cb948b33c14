package logging

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func writeConfig(t *testing.T, ws, content string) {
	t.Helper()
	dir := filepath.Join(ws, ".powermap")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func readLogs(t *testing.T, ws string) string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(ws, ".powermap", "logs"))
	if err != nil {
		return ""
	}
	var sb strings.Builder
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(ws, ".powermap", "logs", e.Name()))
		if err != nil {
			t.Fatal(err)
		}
		sb.Write(data)
	}
	return sb.String()
}

func TestInitializeRequiresWorkspace(t *testing.T) {
	if err := Initialize(""); err == nil {
		t.Fatal("expected error for empty workspace")
	}
}

func TestDisabledByDefault(t *testing.T) {
	t.Cleanup(CloseAll)
	ws := t.TempDir()

	if err := Initialize(ws); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	Get(CategoryExtract).Info("should not be written")

	if _, err := os.Stat(filepath.Join(ws, ".powermap", "logs")); !os.IsNotExist(err) {
		t.Error("logs dir created without debug mode")
	}
}

func TestDebugModeWritesCategoryFiles(t *testing.T) {
	t.Cleanup(CloseAll)
	ws := t.TempDir()
	writeConfig(t, ws, "logging:\n  debug_mode: true\n  level: debug\n")

	if err := Initialize(ws); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	Get(CategoryExtract).Info("extracted %d variables", 8)
	Get(CategoryJoin).Warn("unmatched constituency")
	CloseAll()

	logs := readLogs(t, ws)
	if !strings.Contains(logs, "[INFO] extracted 8 variables") {
		t.Errorf("info line missing:\n%s", logs)
	}
	if !strings.Contains(logs, "[WARN] unmatched constituency") {
		t.Errorf("warn line missing:\n%s", logs)
	}

	entries, err := os.ReadDir(filepath.Join(ws, ".powermap", "logs"))
	if err != nil {
		t.Fatal(err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	var haveExtract, haveJoin bool
	for _, n := range names {
		if strings.Contains(n, "_extract.log") {
			haveExtract = true
		}
		if strings.Contains(n, "_join.log") {
			haveJoin = true
		}
	}
	if !haveExtract || !haveJoin {
		t.Errorf("per-category files missing: %v", names)
	}
}

func TestConcurrentLoggingDuringReload(t *testing.T) {
	t.Cleanup(CloseAll)
	ws := t.TempDir()
	writeConfig(t, ws, "logging:\n  debug_mode: true\n  level: debug\n")
	if err := Initialize(ws); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				Get(CategoryJoin).Debug("round %d", j)
				Get(CategoryJoin).Info("round %d", j)
			}
		}()
	}
	cfgPath := filepath.Join(ws, ".powermap", "config.yaml")
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 20; j++ {
			if err := os.WriteFile(cfgPath, []byte("logging:\n  debug_mode: true\n  level: warn\n"), 0644); err != nil {
				t.Error(err)
				return
			}
			if err := Initialize(ws); err != nil {
				t.Error(err)
				return
			}
		}
	}()
	wg.Wait()
}

func TestCategoryFilter(t *testing.T) {
	t.Cleanup(CloseAll)
	ws := t.TempDir()
	writeConfig(t, ws, `logging:
  debug_mode: true
  categories:
    extract: true
    join: false
`)

	if err := Initialize(ws); err != nil {
		t.Fatal(err)
	}
	Get(CategoryExtract).Info("kept")
	Get(CategoryJoin).Info("filtered")
	CloseAll()

	logs := readLogs(t, ws)
	if !strings.Contains(logs, "kept") {
		t.Errorf("enabled category missing:\n%s", logs)
	}
	if strings.Contains(logs, "filtered") {
		t.Errorf("disabled category written:\n%s", logs)
	}
}

func TestLevelFilter(t *testing.T) {
	t.Cleanup(CloseAll)
	ws := t.TempDir()
	writeConfig(t, ws, "logging:\n  debug_mode: true\n  level: warn\n")

	if err := Initialize(ws); err != nil {
		t.Fatal(err)
	}
	log := Get(CategoryValidate)
	log.Debug("debug line")
	log.Info("info line")
	log.Warn("warn line")
	log.Error("error line")
	CloseAll()

	logs := readLogs(t, ws)
	if strings.Contains(logs, "debug line") || strings.Contains(logs, "info line") {
		t.Errorf("low-severity lines written at warn level:\n%s", logs)
	}
	if !strings.Contains(logs, "warn line") || !strings.Contains(logs, "error line") {
		t.Errorf("high-severity lines missing:\n%s", logs)
	}
}
