package match

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Weston-super-Mare", "weston-super-mare"},
		{"Rochford & Southend East", "rochford and southend east"},
		{"Normanton, Pontefract and Castleford", "normanton pontefract and castleford"},
		{"Bishop’s Stortford", "bishop's stortford"},
		{"  Clacton  ", "clacton"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"", "", 1},
		{"clacton", "", 0},
		{"clacton", "clacton", 1},
		// difflib's canonical example.
		{"abcd", "bcde", 0.75},
	}
	for _, tt := range tests {
		if got := Ratio(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Ratio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestRatioSymmetricOrdering(t *testing.T) {
	// Near-identical names must score higher than unrelated ones.
	near := Ratio("ashton under lyne", "ashton-under-lyne")
	far := Ratio("ashton under lyne", "na h-eileanan an iar")
	if near <= far {
		t.Errorf("near = %v, far = %v; want near > far", near, far)
	}
	if near < 0.8 {
		t.Errorf("near-identical names scored %v, want >= 0.8", near)
	}
}

func TestBestMatch(t *testing.T) {
	candidates := []string{
		"Clacton",
		"Colchester",
		"Castle Point",
		"Chelmsford",
	}

	got, score, ok := BestMatch("clacton", candidates, DefaultThreshold)
	if !ok || got != "Clacton" {
		t.Fatalf("BestMatch = %q, %v, %v; want Clacton", got, score, ok)
	}

	if got, score, ok := BestMatch("Wythenshawe", candidates, DefaultThreshold); ok {
		t.Fatalf("BestMatch for unrelated name = %q (%v), want no match", got, score)
	}
}

func TestBestMatchNormalizesBothSides(t *testing.T) {
	got, _, ok := BestMatch("Rochford and Southend East", []string{"Rochford & Southend East"}, DefaultThreshold)
	if !ok || got != "Rochford & Southend East" {
		t.Fatalf("ampersand variant not matched: got %q, ok=%v", got, ok)
	}
}
