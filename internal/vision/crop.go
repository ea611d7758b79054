package vision

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/face-sentry/face-sentry/internal/config"
)

// CropPadding is the default padding in pixels added on all sides when
// extracting a face region, used when no crop rules are configured.
const CropPadding = 20

// EmbedSize is the default square input size expected by the face embedder.
const EmbedSize = 112

// CropFace extracts the face region from the image: the bounding box grown
// by padding on all sides, clamped to the image bounds.
func CropFace(img image.Image, box image.Rectangle, padding int) image.Image {
	region := box.Inset(-padding).Intersect(img.Bounds())
	if region.Empty() {
		region = box.Intersect(img.Bounds())
	}

	dst := image.NewRGBA(image.Rect(0, 0, region.Dx(), region.Dy()))
	draw.Copy(dst, image.Point{}, img, region, draw.Src, nil)
	return dst
}

// ScaleForEmbedding resizes a face crop to the square embedder input size.
func ScaleForEmbedding(face image.Image, size int) image.Image {
	bounds := face.Bounds()
	if bounds.Dx() == size && bounds.Dy() == size {
		return face
	}
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), face, bounds, draw.Src, nil)
	return dst
}

// ExtractFace crops the padded face region and scales it to the embedder
// input size in one step, per the configured crop rules.
func ExtractFace(img image.Image, box image.Rectangle, rules config.CropRules) image.Image {
	padding, size := rules.Padding, rules.EmbedSize
	if padding <= 0 {
		padding = CropPadding
	}
	if size <= 0 {
		size = EmbedSize
	}
	return ScaleForEmbedding(CropFace(img, box, padding), size)
}
