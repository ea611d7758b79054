// Package match implements similarity scoring and nearest-match lookup over
// gallery records.
package match

import "github.com/face-sentry/face-sentry/internal/gallery"

// Similarity computes the similarity score between two equal-length
// embedding vectors. Both vectors are expected to be unit-normalized, so the
// dot product equals the cosine similarity; the result is clamped to
// non-negative, mapping [-1, 1] onto [0, 1] for simpler threshold reasoning.
// Vectors of differing lengths cannot usefully be compared and score 0.
func Similarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	if dot < 0 {
		return 0
	}
	return dot
}

// Match is the best gallery candidate for a query vector.
type Match struct {
	RecordID string
	Name     string
	Score    float64
}

// FindBestMatch scans all records and returns the single record with the
// strictly greatest similarity to the query, provided that score is strictly
// above the threshold. Ties keep the first record encountered, so the result
// is deterministic for a given record order. Returns nil when the gallery is
// empty or nothing exceeds the threshold. The scan is O(n·D), which is fine
// at expected gallery sizes.
func FindBestMatch(query []float32, records []gallery.Record, threshold float64) *Match {
	var best *Match
	for i := range records {
		score := Similarity(query, records[i].Vector)
		if score <= threshold {
			continue
		}
		if best == nil || score > best.Score {
			best = &Match{
				RecordID: records[i].ID,
				Name:     records[i].Name,
				Score:    score,
			}
		}
	}
	return best
}

// HighestSimilarity returns the maximum similarity across all records,
// regardless of threshold. Used by diagnostics to suggest a workable
// threshold when nothing matched. Returns 0 for an empty gallery.
func HighestSimilarity(query []float32, records []gallery.Record) float64 {
	var highest float64
	for i := range records {
		if score := Similarity(query, records[i].Vector); score > highest {
			highest = score
		}
	}
	return highest
}
