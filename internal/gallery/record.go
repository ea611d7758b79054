// Package gallery implements the persistent identity gallery: named face
// embedding records stored in a human-readable JSON file.
package gallery

import (
	"math"
	"time"
)

// SchemaVersion tags the persisted gallery format for forward compatibility.
const SchemaVersion = "1.0"

// DefaultThreshold is the minimum similarity score required to accept a match.
const DefaultThreshold = 0.55

// Metadata holds derived statistics computed from the stored vector at save
// time. Advisory only, never used for matching.
type Metadata struct {
	Magnitude float64 `json:"magnitude,omitempty"`
	Mean      float64 `json:"mean,omitempty"`
}

// Record is one enrolled identity sample. Names are not unique: a person may
// have multiple records, one per enrollment.
type Record struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Vector    []float32 `json:"vector"`
	CreatedAt time.Time `json:"createdAt"`
	Metadata  *Metadata `json:"metadata,omitempty"`
}

// Settings holds the gallery-wide recognition parameters.
type Settings struct {
	RecognitionThreshold float64 `json:"recognitionThreshold"`
	EmbeddingDimension   int     `json:"embeddingDimension"`
}

// galleryFile is the on-disk representation.
type galleryFile struct {
	Faces       []Record  `json:"faces"`
	LastUpdated time.Time `json:"lastUpdated"`
	Version     string    `json:"version"`
	Settings    Settings  `json:"settings"`
}

// ComputeMetadata derives magnitude and mean from a vector.
func ComputeMetadata(vector []float32) *Metadata {
	if len(vector) == 0 {
		return &Metadata{}
	}
	var sum, sumSq float64
	for _, v := range vector {
		f := float64(v)
		sum += f
		sumSq += f * f
	}
	return &Metadata{
		Magnitude: math.Sqrt(sumSq),
		Mean:      sum / float64(len(vector)),
	}
}
