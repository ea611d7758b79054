package vision

import (
	"fmt"
	"image"

	"github.com/face-sentry/face-sentry/internal/config"
)

// Quality is the advisory quality verdict for a detected face region.
// Failures are reported to the operator but never block enrollment.
type Quality struct {
	Good    bool
	Reasons []string
}

// CheckQuality applies the face quality rules: minimum size, distance from
// the image edges, and aspect ratio.
func CheckQuality(box image.Rectangle, frame image.Rectangle, rules config.QualityRules) Quality {
	q := Quality{Good: true}
	w, h := box.Dx(), box.Dy()

	if w < rules.MinWidth || h < rules.MinHeight {
		q.Good = false
		q.Reasons = append(q.Reasons, fmt.Sprintf("face too small (%dx%d, need %dx%d)",
			w, h, rules.MinWidth, rules.MinHeight))
	}

	m := rules.EdgeMargin
	if box.Min.X < frame.Min.X+m || box.Min.Y < frame.Min.Y+m ||
		box.Max.X > frame.Max.X-m || box.Max.Y > frame.Max.Y-m {
		q.Good = false
		q.Reasons = append(q.Reasons, fmt.Sprintf("face within %dpx of image edge", m))
	}

	if h > 0 {
		aspect := float64(w) / float64(h)
		if aspect < rules.MinAspectRatio || aspect > rules.MaxAspectRatio {
			q.Good = false
			q.Reasons = append(q.Reasons, fmt.Sprintf("unusual aspect ratio %.2f (want %.1f-%.1f)",
				aspect, rules.MinAspectRatio, rules.MaxAspectRatio))
		}
	}

	return q
}

// Relative size buckets by share of frame area.
const (
	largeFaceShare  = 0.08
	mediumFaceShare = 0.03
)

// DescribePosition returns a human-readable descriptor of a face within the
// frame: relative size bucket plus quadrant, e.g. "Medium, Left-Top".
func DescribePosition(box image.Rectangle, frame image.Rectangle) string {
	frameArea := frame.Dx() * frame.Dy()
	size := "Small"
	if frameArea > 0 {
		share := float64(box.Dx()*box.Dy()) / float64(frameArea)
		switch {
		case share >= largeFaceShare:
			size = "Large"
		case share >= mediumFaceShare:
			size = "Medium"
		}
	}

	cx := box.Min.X + box.Dx()/2 - frame.Min.X
	cy := box.Min.Y + box.Dy()/2 - frame.Min.Y

	horizontal := "Center"
	switch {
	case cx < frame.Dx()/3:
		horizontal = "Left"
	case cx >= 2*frame.Dx()/3:
		horizontal = "Right"
	}

	vertical := "Middle"
	switch {
	case cy < frame.Dy()/3:
		vertical = "Top"
	case cy >= 2*frame.Dy()/3:
		vertical = "Bottom"
	}

	return fmt.Sprintf("%s, %s-%s", size, horizontal, vertical)
}
