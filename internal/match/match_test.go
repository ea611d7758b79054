package match

import (
	"math"
	"testing"

	"github.com/face-sentry/face-sentry/internal/gallery"
)

func TestSimilarityIdenticalUnitVector(t *testing.T) {
	v := []float32{0.6, 0.8}
	got := Similarity(v, v)
	if math.Abs(got-1.0) > 1e-6 {
		t.Errorf("Similarity(v, v) = %f; want 1.0", got)
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a        []float32
		b        []float32
		expected float64
	}{
		{"length mismatch", []float32{1, 0}, []float32{1, 0, 0}, 0},
		{"both empty", []float32{}, []float32{}, 0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite clamped to zero", []float32{1, 0}, []float32{-1, 0}, 0},
		{"partial overlap", []float32{1, 0}, []float32{0.6, 0.8}, 0.6},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Similarity(tc.a, tc.b)
			if math.Abs(got-tc.expected) > 1e-6 {
				t.Errorf("Similarity(%v, %v) = %f; want %f", tc.a, tc.b, got, tc.expected)
			}
		})
	}
}

func records(pairs ...any) []gallery.Record {
	var recs []gallery.Record
	for i := 0; i < len(pairs); i += 2 {
		recs = append(recs, gallery.Record{
			ID:     pairs[i].(string) + "-id",
			Name:   pairs[i].(string),
			Vector: pairs[i+1].([]float32),
		})
	}
	return recs
}

func TestFindBestMatchEmptyGallery(t *testing.T) {
	if got := FindBestMatch([]float32{1, 0}, nil, 0.55); got != nil {
		t.Errorf("expected no match on empty gallery, got %+v", got)
	}
}

func TestFindBestMatchBelowThreshold(t *testing.T) {
	recs := records("Alice", []float32{0.3, float32(math.Sqrt(1 - 0.09))})
	// Similarity to the query is 0.3, below the threshold.
	if got := FindBestMatch([]float32{1, 0}, recs, 0.55); got != nil {
		t.Errorf("expected no match below threshold, got %+v", got)
	}
}

func TestFindBestMatchExactThresholdRejected(t *testing.T) {
	recs := records("Alice", []float32{0.55, float32(math.Sqrt(1 - 0.55*0.55))})
	// Score equals the threshold: acceptance requires strictly greater.
	got := FindBestMatch([]float32{1, 0}, recs, 0.55)
	if got != nil {
		t.Errorf("score equal to threshold must not match, got %+v", got)
	}
}

func TestFindBestMatchPicksHighest(t *testing.T) {
	v1 := []float32{1, 0}
	v2 := []float32{0.2, float32(math.Sqrt(1 - 0.04))}
	recs := records("Alice", v1, "Bob", v2)

	got := FindBestMatch(v1, recs, 0.55)
	if got == nil {
		t.Fatal("expected a match")
	}
	if got.Name != "Alice" {
		t.Errorf("expected Alice, got %s", got.Name)
	}
	if math.Abs(got.Score-1.0) > 1e-6 {
		t.Errorf("expected score 1.0, got %f", got.Score)
	}
}

func TestFindBestMatchTieKeepsFirst(t *testing.T) {
	v := []float32{1, 0}
	recs := records("Alice", v, "Bob", v)

	got := FindBestMatch(v, recs, 0.55)
	if got == nil {
		t.Fatal("expected a match")
	}
	if got.Name != "Alice" {
		t.Errorf("tie should keep first record encountered, got %s", got.Name)
	}
}

func TestFindBestMatchSkipsMismatchedDimensions(t *testing.T) {
	recs := records("Alice", []float32{1, 0, 0}, "Bob", []float32{1, 0})

	got := FindBestMatch([]float32{1, 0}, recs, 0.55)
	if got == nil {
		t.Fatal("expected a match")
	}
	if got.Name != "Bob" {
		t.Errorf("mismatched-dimension record must score 0, got match %s", got.Name)
	}
}

func TestHighestSimilarity(t *testing.T) {
	recs := records(
		"Alice", []float32{0.2, float32(math.Sqrt(1 - 0.04))},
		"Bob", []float32{0.5, float32(math.Sqrt(1 - 0.25))},
	)
	got := HighestSimilarity([]float32{1, 0}, recs)
	if math.Abs(got-0.5) > 1e-6 {
		t.Errorf("HighestSimilarity = %f; want 0.5", got)
	}

	if got := HighestSimilarity([]float32{1, 0}, nil); got != 0 {
		t.Errorf("HighestSimilarity on empty gallery = %f; want 0", got)
	}
}
