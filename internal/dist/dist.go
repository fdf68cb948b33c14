// Package dist assembles the deployable tree: index.html, the data/
// artifacts (excluding raw sources and debug files) and the static maps,
// plus a manifest recording a build id and a content digest per file.
//
// JSON artifacts are digested over their JCS canonical form, so a rebuild
// that only reorders keys produces identical hashes and deploy tooling
// can skip the upload.
package dist

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gowebpki/jcs"

	"powermap/internal/dataset"
	"powermap/internal/logging"
)

// Manifest is dist/manifest.json.
type Manifest struct {
	BuildID   string            `json:"build_id"`
	Generated string            `json:"generated"`
	Files     map[string]string `json:"files"` // dist-relative path -> sha256 hex
}

// Options configures one dist build.
type Options struct {
	Workspace string
	WebDir    string // static assets (index.html, js, css, maps page)
	DataDir   string
	MapsDir   string // rendered snapshots, optional
	DistDir   string
}

// Build populates DistDir and returns the manifest.
func Build(opts Options) (*Manifest, error) {
	log := logging.Get(logging.CategoryDist)

	m := &Manifest{
		BuildID:   uuid.NewString(),
		Generated: time.Now().UTC().Format(time.RFC3339),
		Files:     make(map[string]string),
	}

	// dist/data and dist/maps are rebuilt from scratch each run.
	for _, sub := range []string{"data", "maps"} {
		if err := os.RemoveAll(filepath.Join(opts.DistDir, sub)); err != nil {
			return nil, fmt.Errorf("clear dist %s: %w", sub, err)
		}
	}

	if err := copyTree(opts.WebDir, opts.DistDir, m, keepAll); err != nil {
		return nil, fmt.Errorf("copy web assets: %w", err)
	}
	if err := copyTree(opts.DataDir, filepath.Join(opts.DistDir, "data"), m, keepData); err != nil {
		return nil, fmt.Errorf("copy data: %w", err)
	}
	if opts.MapsDir != "" && dirHasFiles(opts.MapsDir) {
		if err := copyTree(opts.MapsDir, filepath.Join(opts.DistDir, "maps"), m, keepAll); err != nil {
			return nil, fmt.Errorf("copy maps: %w", err)
		}
	}

	if err := dataset.Save(filepath.Join(opts.DistDir, "manifest.json"), m); err != nil {
		return nil, err
	}

	log.Info("dist built: %d files, build %s", len(m.Files), m.BuildID)
	return m, nil
}

// keepData excludes raw sources and extraction debug output from dist.
func keepData(rel string) bool {
	if rel == "sources" || strings.HasPrefix(rel, "sources"+string(filepath.Separator)) {
		return false
	}
	return !strings.HasPrefix(filepath.Base(rel), "_debug_")
}

func keepAll(string) bool { return true }

func dirHasFiles(dir string) bool {
	entries, err := os.ReadDir(dir)
	return err == nil && len(entries) > 0
}

// copyTree copies src into dst, recording each copied file's digest in m
// under its dst-relative path prefixed appropriately by the caller.
func copyTree(src, dst string, m *Manifest, keep func(rel string) bool) error {
	if !dirExists(src) {
		return fmt.Errorf("source dir %s does not exist", src)
	}
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if !keep(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}

		if err := copyFile(path, target); err != nil {
			return err
		}
		digest, err := fileDigest(path)
		if err != nil {
			return err
		}
		base := filepath.Base(dst)
		manifestKey := filepath.ToSlash(rel)
		if base == "data" || base == "maps" {
			manifestKey = base + "/" + manifestKey
		}
		m.Files[manifestKey] = digest
		return nil
	})
}

func dirExists(dir string) bool {
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

// fileDigest hashes a file: JSON files over their JCS canonical form,
// everything else over the raw bytes.
func fileDigest(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") && json.Valid(raw) {
		canonical, err := jcs.Transform(raw)
		if err == nil {
			raw = canonical
		}
		// A transform failure falls back to hashing the raw bytes.
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
