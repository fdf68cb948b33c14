// Package issues processes the per-issue voting and meetings data into the
// badge files under data/issues/. Inputs are CSV exports: division votes
// from TheyWorkForYou and the departmental ministerial-meetings registers.
package issues

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"powermap/internal/dataset"
	"powermap/internal/logging"
)

// Issue names one tracked issue and where its source files live.
type Issue struct {
	Key         string // file stem, e.g. "palestine", "arms-trade"
	Description string
	VotesCSV    string
	MeetingsCSV string
}

// Discover finds the tracked issues by scanning sourcesDir for
// <key>-votes.csv files; a matching <key>-meetings.csv is optional.
func Discover(sourcesDir string) ([]Issue, error) {
	matches, err := filepath.Glob(filepath.Join(sourcesDir, "*-votes.csv"))
	if err != nil {
		return nil, err
	}
	issues := make([]Issue, 0, len(matches))
	for _, votes := range matches {
		key := strings.TrimSuffix(filepath.Base(votes), "-votes.csv")
		iss := Issue{Key: key, VotesCSV: votes}
		meetings := filepath.Join(sourcesDir, key+"-meetings.csv")
		if dataset.Exists(meetings) {
			iss.MeetingsCSV = meetings
		}
		issues = append(issues, iss)
	}
	return issues, nil
}

// Process builds the badge file for one issue.
func Process(iss Issue, mpInfo dataset.MPInfo) (*dataset.IssueFile, error) {
	log := logging.Get(logging.CategoryIssues)

	byParlID := make(map[int]string, len(mpInfo))
	for name, mp := range mpInfo {
		if mp.ParlID != 0 {
			byParlID[mp.ParlID] = name
		}
	}

	out := &dataset.IssueFile{
		Issue:   iss.Key,
		Records: make(map[string]*dataset.IssueRecord),
	}

	f, err := os.Open(iss.VotesCSV)
	if err != nil {
		return nil, fmt.Errorf("open votes: %w", err)
	}
	defer f.Close()

	rows, skipped, err := readVotes(f)
	if err != nil {
		return nil, fmt.Errorf("process %s: %w", iss.VotesCSV, err)
	}
	if skipped > 0 {
		log.Warn("%s: skipped %d malformed vote rows", iss.Key, skipped)
	}

	for _, row := range rows {
		name := row.name
		if canonical, ok := byParlID[row.parlID]; ok {
			name = canonical
		}
		rec, ok := out.Records[name]
		if !ok {
			rec = &dataset.IssueRecord{ParlID: row.parlID, Name: name}
			out.Records[name] = rec
		}
		switch row.vote {
		case "aye", "for", "yes":
			rec.VotesFor++
		case "no", "against":
			rec.VotesAgn++
		default:
			rec.Absent++
		}
	}

	if iss.MeetingsCSV != "" {
		if err := overlayMeetings(iss.MeetingsCSV, out); err != nil {
			return nil, err
		}
	}

	for _, rec := range out.Records {
		rec.Stance = stance(rec)
	}

	out.Metadata = dataset.Metadata{
		Description: fmt.Sprintf("Voting and meetings record on %s", iss.Key),
		Source:      "TheyWorkForYou division data; departmental transparency returns",
		Generated:   time.Now().UTC().Format(time.RFC3339),
		Coverage:    fmt.Sprintf("%d MPs", len(out.Records)),
	}

	log.Info("%s: %d MPs", iss.Key, len(out.Records))
	return out, nil
}

type voteRow struct {
	parlID int
	name   string
	vote   string
}

// readVotes expects columns parlId,name,vote (header row required).
// Malformed rows are counted and skipped rather than failing the file.
func readVotes(r io.Reader) (rows []voteRow, skipped int, err error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	if _, err := cr.Read(); err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, err
		}
		if len(row) < 3 || strings.TrimSpace(row[1]) == "" {
			skipped++
			continue
		}
		id, _ := strconv.Atoi(strings.TrimSpace(row[0]))
		rows = append(rows, voteRow{
			parlID: id,
			name:   strings.TrimSpace(row[1]),
			vote:   strings.ToLower(strings.TrimSpace(row[2])),
		})
	}
	return rows, skipped, nil
}

// overlayMeetings adds meeting counts from a name,meetings CSV.
func overlayMeetings(path string, out *dataset.IssueFile) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open meetings: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	if _, err := cr.Read(); err != nil {
		return fmt.Errorf("read meetings header: %w", err)
	}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if len(row) < 2 {
			continue
		}
		name := strings.TrimSpace(row[0])
		n, _ := strconv.Atoi(strings.TrimSpace(row[1]))
		rec, ok := out.Records[name]
		if !ok {
			rec = &dataset.IssueRecord{Name: name}
			out.Records[name] = rec
		}
		rec.Meetings += n
	}
}

// stance derives the badge label from the vote counts.
func stance(r *dataset.IssueRecord) string {
	switch {
	case r.VotesFor == 0 && r.VotesAgn == 0:
		return "none"
	case r.VotesAgn == 0:
		return "for"
	case r.VotesFor == 0:
		return "against"
	default:
		return "mixed"
	}
}
