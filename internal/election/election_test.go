package election

import (
	"testing"

	"powermap/internal/dataset"
)

const (
	reformThreshold   = 20.0
	nonwhiteThreshold = 18.3
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name             string
		reform, nonwhite float64
		want             string
	}{
		{"both high", 35.0, 40.0, QuadrantHighReformDiverse},
		{"reform only", 35.0, 5.0, QuadrantHighReformHomogeneous},
		{"diverse only", 10.0, 40.0, QuadrantLowReformDiverse},
		{"both low", 10.0, 5.0, QuadrantLowReformHomogeneous},
		{"on both thresholds", 20.0, 18.3, QuadrantHighReformDiverse},
		{"just under reform threshold", 19.9, 18.3, QuadrantLowReformDiverse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.reform, tt.nonwhite, reformThreshold, nonwhiteThreshold)
			if got != tt.want {
				t.Errorf("Classify(%v, %v) = %q, want %q", tt.reform, tt.nonwhite, got, tt.want)
			}
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	for i := 0; i < 5; i++ {
		if got := Classify(22.5, 30.1, reformThreshold, nonwhiteThreshold); got != QuadrantHighReformDiverse {
			t.Fatalf("run %d: %q", i, got)
		}
	}
}

func TestAxis(t *testing.T) {
	reform := dataset.Float(28.0)
	leave := dataset.Float(69.7)

	if v, ok := Axis(&dataset.ElectionResult{ReformPct: reform, LeavePct: leave}); !ok || v != 28.0 {
		t.Errorf("Axis with both = %v, %v; want reform share", v, ok)
	}
	if v, ok := Axis(&dataset.ElectionResult{LeavePct: leave}); !ok || v != 69.7 {
		t.Errorf("Axis with leave only = %v, %v", v, ok)
	}
	if _, ok := Axis(&dataset.ElectionResult{}); ok {
		t.Error("Axis with neither should not be ok")
	}
	if _, ok := Axis(nil); ok {
		t.Error("Axis(nil) should not be ok")
	}
}

func TestMerge(t *testing.T) {
	results := map[string]*dataset.ElectionResult{
		"E14001171": {Name: "Clacton", Winner: "RUK", ReformPct: dataset.Float(46.2)},
		"E14001211": {Name: "East Ham", Winner: "Lab", LeavePct: dataset.Float(47.0)},
	}
	leave := map[string]*dataset.ElectionResult{
		"E14001171": {LeavePct: dataset.Float(69.7)},
		// Conflicting estimate must not overwrite the result's own figure.
		"E14001211": {LeavePct: dataset.Float(40.0)},
		// Leave-only constituency is kept as a partial record.
		"E14001999": {Name: "Somewhere", LeavePct: dataset.Float(55.0)},
	}

	merged := Merge(results, leave)
	if len(merged) != 3 {
		t.Fatalf("got %d entries, want 3", len(merged))
	}

	clacton := merged["E14001171"]
	if clacton.GSSCode != "E14001171" || clacton.Winner != "RUK" {
		t.Errorf("clacton = %+v", clacton)
	}
	if clacton.LeavePct == nil || *clacton.LeavePct != 69.7 {
		t.Errorf("leave overlay missing: %v", clacton.LeavePct)
	}

	if got := *merged["E14001211"].LeavePct; got != 47.0 {
		t.Errorf("existing leave figure overwritten: %v", got)
	}

	partial := merged["E14001999"]
	if partial == nil || partial.Winner != "" || *partial.LeavePct != 55.0 {
		t.Errorf("leave-only entry = %+v", partial)
	}
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	results := map[string]*dataset.ElectionResult{
		"E14001171": {Name: "Clacton"},
	}
	leave := map[string]*dataset.ElectionResult{
		"E14001171": {LeavePct: dataset.Float(69.7)},
	}

	Merge(results, leave)
	if results["E14001171"].LeavePct != nil {
		t.Error("Merge wrote through to the input map")
	}
}
