package timeline

import (
	"strings"
	"testing"
	"time"

	"powermap/internal/dataset"
	"powermap/internal/ethnicity"
)

var testNow = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

func TestRead(t *testing.T) {
	csv := `parlId,person,role,department,start,end
206,David Lammy,Foreign Secretary,FCDO,2024-07-05,
4031,Rachel Reeves,Chancellor of the Exchequer,HMT,05/07/2024,
1587,Jeremy Hunt,Chancellor of the Exchequer,HMT,14 October 2022,2024-07-05
4597,Kemi Badenoch,Business Secretary,DBT,,2024-07-05
,No Name,Whip,,2024-07-05,
`
	appointments, err := Read(strings.NewReader(csv), testNow)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	// Kemi Badenoch has no start date; the blank-name row is kept (person
	// column is "No Name").
	if len(appointments) != 4 {
		t.Fatalf("got %d appointments: %+v", len(appointments), appointments)
	}

	lammy := appointments[0]
	if lammy.Person != "David Lammy" || lammy.Start != "2024-07-05" {
		t.Errorf("lammy = %+v", lammy)
	}
	if !lammy.Current {
		t.Error("open-ended appointment should be current")
	}

	reeves := appointments[1]
	if reeves.Start != "2024-07-05" {
		t.Errorf("dd/mm/yyyy start = %q", reeves.Start)
	}

	hunt := appointments[2]
	if hunt.Start != "2022-10-14" || hunt.End != "2024-07-05" {
		t.Errorf("hunt = %+v", hunt)
	}
	if hunt.Current {
		t.Error("ended appointment marked current")
	}
}

func TestReadFutureEndIsCurrent(t *testing.T) {
	csv := "parlId,person,role,department,start,end\n206,David Lammy,Foreign Secretary,FCDO,2024-07-05,2030-01-01\n"
	appointments, err := Read(strings.NewReader(csv), testNow)
	if err != nil {
		t.Fatal(err)
	}
	if len(appointments) != 1 || !appointments[0].Current {
		t.Errorf("appointments = %+v", appointments)
	}
}

func TestBuild(t *testing.T) {
	appointments := []*dataset.Appointment{
		{ParlID: 4031, Person: "Rachel Reeves", Start: "2024-07-05"},
		{ParlID: 206, Person: "David Lammy", Start: "2024-07-05"},
		{ParlID: 1587, Person: "Jeremy Hunt", Start: "2022-10-14"},
	}
	eth := &ethnicity.File{
		Records: map[string]*dataset.EthnicityRecord{
			"David Lammy": {ParlID: 206, Name: "David Lammy", Broad: "Black"},
		},
	}

	out := Build(appointments, eth)

	// Newest first, ties broken by person.
	order := []string{"David Lammy", "Rachel Reeves", "Jeremy Hunt"}
	for i, want := range order {
		if out.Appointments[i].Person != want {
			t.Errorf("position %d = %q, want %q", i, out.Appointments[i].Person, want)
		}
	}

	if out.Appointments[0].Ethnicity != "Black" {
		t.Errorf("ethnicity link missing: %+v", out.Appointments[0])
	}
	if out.Appointments[1].Ethnicity != "" {
		t.Errorf("unexpected ethnicity: %+v", out.Appointments[1])
	}
}

func TestBuildNilEthnicity(t *testing.T) {
	out := Build([]*dataset.Appointment{{Person: "A", Start: "2024-01-01"}}, nil)
	if len(out.Appointments) != 1 {
		t.Fatalf("appointments = %+v", out.Appointments)
	}
}
