// Package store maintains the SQLite dataset store under .powermap/. It is
// a derived cache: Rebuild drops and repopulates it from map-data.json
// after each successful build, and the query command reads from it.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"powermap/internal/dataset"
	"powermap/internal/logging"
)

// ErrNotFound is returned by lookups that match no constituency.
var ErrNotFound = fmt.Errorf("constituency not found")

// Store wraps the SQLite handle.
type Store struct {
	db   *sql.DB
	mu   sync.RWMutex
	path string
}

// Open initializes the store at path, creating the schema if needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	s := &Store{db: db, path: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS constituencies (
		gss_code TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		white_pct REAL,
		asian_pct REAL,
		black_pct REAL,
		mixed_pct REAL,
		other_pct REAL,
		nonwhite_pct REAL,
		winner TEXT,
		majority INTEGER,
		turnout_pct REAL,
		leave_pct REAL,
		reform_pct REAL,
		quadrant TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_constituencies_name ON constituencies(name);
	CREATE INDEX IF NOT EXISTS idx_constituencies_quadrant ON constituencies(quadrant);

	CREATE TABLE IF NOT EXISTS ministers (
		parl_id INTEGER,
		name TEXT NOT NULL,
		gss_code TEXT,
		department TEXT,
		rank TEXT,
		ethnicity TEXT,
		PRIMARY KEY (name)
	);
	CREATE INDEX IF NOT EXISTS idx_ministers_gss ON ministers(gss_code);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Rebuild replaces the store contents with the given map data.
func (s *Store) Rebuild(md *dataset.MapData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := logging.Get(logging.CategoryStore)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin rebuild: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM constituencies`); err != nil {
		return fmt.Errorf("clear constituencies: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM ministers`); err != nil {
		return fmt.Errorf("clear ministers: %w", err)
	}

	conStmt, err := tx.Prepare(`
		INSERT INTO constituencies
		(gss_code, name, white_pct, asian_pct, black_pct, mixed_pct, other_pct,
		 nonwhite_pct, winner, majority, turnout_pct, leave_pct, reform_pct, quadrant)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer conStmt.Close()

	minStmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO ministers (parl_id, name, gss_code, department, rank, ethnicity)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare minister insert: %w", err)
	}
	defer minStmt.Close()

	for gss, rec := range md.Constituencies {
		_, err := conStmt.Exec(gss, rec.Name,
			nullable(rec.WhitePct), nullable(rec.AsianPct), nullable(rec.BlackPct),
			nullable(rec.MixedPct), nullable(rec.OtherPct), nullable(rec.NonWhitePct),
			rec.Winner, rec.Majority, rec.TurnoutPct,
			nullable(rec.LeavePct), nullable(rec.ReformPct), rec.Quadrant)
		if err != nil {
			return fmt.Errorf("insert %s: %w", gss, err)
		}
		if rec.MPName != "" && rec.MinisterRank != "" {
			if _, err := minStmt.Exec(0, rec.MPName, gss, rec.Department, rec.MinisterRank, rec.MPEthnicity); err != nil {
				return fmt.Errorf("insert minister %s: %w", rec.MPName, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rebuild: %w", err)
	}
	log.Info("rebuilt store with %d constituencies", len(md.Constituencies))
	return nil
}

func nullable(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

// Row is one constituency as returned by lookups.
type Row struct {
	GSSCode     string
	Name        string
	NonWhitePct sql.NullFloat64
	Winner      string
	Majority    int
	LeavePct    sql.NullFloat64
	ReformPct   sql.NullFloat64
	Quadrant    string
}

const rowCols = `gss_code, name, nonwhite_pct, winner, majority, leave_pct, reform_pct, quadrant`

func scanRow(sc interface{ Scan(...any) error }) (*Row, error) {
	var r Row
	err := sc.Scan(&r.GSSCode, &r.Name, &r.NonWhitePct, &r.Winner, &r.Majority,
		&r.LeavePct, &r.ReformPct, &r.Quadrant)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Lookup finds constituencies by exact GSS code or case-insensitive name
// substring, in that order.
func (s *Store) Lookup(q string) ([]*Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`SELECT `+rowCols+` FROM constituencies WHERE gss_code = ?`, q)
	if r, err := scanRow(row); err == nil {
		return []*Row{r}, nil
	} else if err != sql.ErrNoRows {
		return nil, fmt.Errorf("lookup by gss: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT `+rowCols+` FROM constituencies WHERE name LIKE ? COLLATE NOCASE ORDER BY name`,
		"%"+strings.TrimSpace(q)+"%")
	if err != nil {
		return nil, fmt.Errorf("lookup by name: %w", err)
	}
	defer rows.Close()

	var out []*Row
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

// Stats are the aggregates the query --stats flag prints.
type Stats struct {
	Constituencies int
	Ministers      int
	AvgNonWhite    float64
	MostDiverse    string
	LeastDiverse   string
	ByQuadrant     map[string]int
}

// Stats computes aggregate figures over the store.
func (s *Store) Stats() (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := &Stats{ByQuadrant: make(map[string]int)}

	err := s.db.QueryRow(`SELECT COUNT(*), COALESCE(AVG(nonwhite_pct), 0) FROM constituencies`).
		Scan(&st.Constituencies, &st.AvgNonWhite)
	if err != nil {
		return nil, fmt.Errorf("count constituencies: %w", err)
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM ministers`).Scan(&st.Ministers); err != nil {
		return nil, fmt.Errorf("count ministers: %w", err)
	}

	// Extremes only make sense when demographics exist.
	_ = s.db.QueryRow(`SELECT name FROM constituencies WHERE nonwhite_pct IS NOT NULL
		ORDER BY nonwhite_pct DESC LIMIT 1`).Scan(&st.MostDiverse)
	_ = s.db.QueryRow(`SELECT name FROM constituencies WHERE nonwhite_pct IS NOT NULL
		ORDER BY nonwhite_pct ASC LIMIT 1`).Scan(&st.LeastDiverse)

	rows, err := s.db.Query(`SELECT quadrant, COUNT(*) FROM constituencies
		WHERE quadrant != '' GROUP BY quadrant`)
	if err != nil {
		return nil, fmt.Errorf("quadrant counts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var q string
		var n int
		if err := rows.Scan(&q, &n); err != nil {
			return nil, err
		}
		st.ByQuadrant[q] = n
	}
	return st, rows.Err()
}
