package issues

import (
	"os"
	"path/filepath"
	"testing"

	"powermap/internal/dataset"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "palestine-votes.csv"), "parlId,name,vote\n")
	writeFile(t, filepath.Join(dir, "palestine-meetings.csv"), "name,meetings\n")
	writeFile(t, filepath.Join(dir, "arms-trade-votes.csv"), "parlId,name,vote\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "not an issue")

	issues, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(issues) != 2 {
		t.Fatalf("got %d issues: %v", len(issues), issues)
	}

	byKey := make(map[string]Issue)
	for _, iss := range issues {
		byKey[iss.Key] = iss
	}
	if byKey["palestine"].MeetingsCSV == "" {
		t.Error("palestine meetings file not picked up")
	}
	if byKey["arms-trade"].MeetingsCSV != "" {
		t.Error("arms-trade should have no meetings file")
	}
}

func TestDiscoverEmptyDir(t *testing.T) {
	issues, err := Discover(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(issues) != 0 {
		t.Fatalf("got %v", issues)
	}
}

func TestProcess(t *testing.T) {
	dir := t.TempDir()
	votes := filepath.Join(dir, "palestine-votes.csv")
	writeFile(t, votes, `parlId,name,vote
206,David Lammy,aye
206,David Lammy,no
4621,Darren Jones,against
0,Someone Else,aye
4031,,aye
malformed
`)
	meetings := filepath.Join(dir, "palestine-meetings.csv")
	writeFile(t, meetings, `name,meetings
David Lammy,3
New Person,1
`)

	mpInfo := dataset.MPInfo{
		// Canonical spelling differs from nothing here, but the parlId
		// mapping must still canonicalize names.
		"David Lammy":  {ParlID: 206},
		"Darren Jones": {ParlID: 4621},
	}

	out, err := Process(Issue{Key: "palestine", VotesCSV: votes, MeetingsCSV: meetings}, mpInfo)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	lammy := out.Records["David Lammy"]
	if lammy == nil {
		t.Fatalf("records = %v", out.Records)
	}
	if lammy.VotesFor != 1 || lammy.VotesAgn != 1 || lammy.Meetings != 3 {
		t.Errorf("lammy = %+v", lammy)
	}
	if lammy.Stance != "mixed" {
		t.Errorf("Stance = %q, want mixed", lammy.Stance)
	}

	jones := out.Records["Darren Jones"]
	if jones == nil || jones.VotesAgn != 1 || jones.Stance != "against" {
		t.Errorf("jones = %+v", jones)
	}

	// Unmatched parlId keeps the source name.
	if out.Records["Someone Else"] == nil {
		t.Error("unmatched voter dropped")
	}

	// Meetings-only MP gets a record with stance none.
	newPerson := out.Records["New Person"]
	if newPerson == nil || newPerson.Meetings != 1 || newPerson.Stance != "none" {
		t.Errorf("newPerson = %+v", newPerson)
	}

	// Rows with no name are skipped, not recorded.
	if len(out.Records) != 4 {
		t.Errorf("got %d records: %v", len(out.Records), out.Records)
	}
}

func TestStance(t *testing.T) {
	tests := []struct {
		rec  dataset.IssueRecord
		want string
	}{
		{dataset.IssueRecord{}, "none"},
		{dataset.IssueRecord{VotesFor: 2}, "for"},
		{dataset.IssueRecord{VotesAgn: 1}, "against"},
		{dataset.IssueRecord{VotesFor: 1, VotesAgn: 1}, "mixed"},
		{dataset.IssueRecord{Absent: 5}, "none"},
	}
	for _, tt := range tests {
		if got := stance(&tt.rec); got != tt.want {
			t.Errorf("stance(%+v) = %q, want %q", tt.rec, got, tt.want)
		}
	}
}
