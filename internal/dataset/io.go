package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// Load reads a JSON file into out.
func Load(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// Save writes v to path as two-space-indented UTF-8 JSON. HTML escaping is
// disabled so constituency names with ampersands survive round-trips
// byte-identical. The parent directory is created if needed.
func Save(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create dir for %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Exists reports whether path is a readable regular file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// LoadAll loads several JSON files concurrently. Each entry maps a path to
// the destination it should be unmarshalled into. Missing optional files
// are tolerated by the caller checking Exists first; here any error fails
// the whole batch.
func LoadAll(files map[string]any) error {
	var g errgroup.Group
	for path, out := range files {
		path, out := path, out
		g.Go(func() error {
			return Load(path, out)
		})
	}
	return g.Wait()
}

// Float returns a pointer to v, for populating the optional percentage
// fields.
func Float(v float64) *float64 { return &v }

// Round1 rounds v to one decimal place, matching the precision the source
// census tables publish at.
func Round1(v float64) float64 {
	if v < 0 {
		return float64(int(v*10-0.5)) / 10
	}
	return float64(int(v*10+0.5)) / 10
}
