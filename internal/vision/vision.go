// Package vision holds the narrow interfaces to the external face detection
// and embedding collaborators, plus the image-space helpers (region
// extraction, quality rules, position description) built on top of them.
package vision

import (
	"context"
	"image"
)

// Detection is one face found by the detector. The bounding box is in image
// pixel space.
type Detection struct {
	Box   image.Rectangle
	Score float64
}

// Area returns the bounding-box area in pixels.
func (d Detection) Area() int {
	return d.Box.Dx() * d.Box.Dy()
}

// Detector finds faces in an image. It may return zero detections; ordering
// across calls on an unchanged image is assumed stable but not guaranteed.
type Detector interface {
	Detect(ctx context.Context, img image.Image) ([]Detection, error)
}

// Embedder produces a fixed-length, approximately unit-normalized embedding
// vector for a cropped face image.
type Embedder interface {
	Embed(ctx context.Context, face image.Image) ([]float32, error)
}

// LargestFace returns the detection with the largest bounding-box area.
// Ties keep the first detection in detector-report order. Returns -1 for an
// empty slice.
func LargestFace(detections []Detection) int {
	best := -1
	bestArea := -1
	for i, d := range detections {
		if a := d.Area(); a > bestArea {
			best = i
			bestArea = a
		}
	}
	return best
}
