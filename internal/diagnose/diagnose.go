// Package diagnose produces read-only embedding quality statistics and a
// full similarity report against the gallery.
package diagnose

import (
	"context"
	"fmt"
	"image"
	"math"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/face-sentry/face-sentry/internal/config"
	"github.com/face-sentry/face-sentry/internal/gallery"
	"github.com/face-sentry/face-sentry/internal/match"
	"github.com/face-sentry/face-sentry/internal/vision"
)

// Verdict buckets a similarity score qualitatively.
type Verdict string

const (
	VerdictMatch   Verdict = "match" // above the recognition threshold
	VerdictWeak    Verdict = "weak"
	VerdictMaybe   Verdict = "maybe"
	VerdictNoMatch Verdict = "no match"
)

// verdictFor buckets a similarity score.
func verdictFor(score float64) Verdict {
	switch {
	case score > 0.55:
		return VerdictMatch
	case score > 0.45:
		return VerdictWeak
	case score > 0.35:
		return VerdictMaybe
	default:
		return VerdictNoMatch
	}
}

// NameSimilarity aggregates similarity of one probe face against all
// records sharing a name.
type NameSimilarity struct {
	Name    string  `json:"name"`
	Max     float64 `json:"max"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
	Verdict Verdict `json:"verdict"`
}

// FaceReport is the diagnostic result for one detected face.
type FaceReport struct {
	Index    int      `json:"index"`
	Width    int      `json:"width"`
	Height   int      `json:"height"`
	Position string   `json:"position"`
	Quality  []string `json:"qualityIssues,omitempty"`

	Magnitude float64  `json:"magnitude"`
	Mean      float64  `json:"mean"`
	StdDev    float64  `json:"stdDev"`
	Concerns  []string `json:"concerns,omitempty"`

	PerName            []NameSimilarity `json:"perName,omitempty"`
	Best               *match.Match     `json:"best,omitempty"`
	HighestSimilarity  float64          `json:"highestSimilarity,omitempty"`
	SuggestedThreshold float64          `json:"suggestedThreshold,omitempty"`

	EmbedError string `json:"embedError,omitempty"`
}

// Report is the full diagnostic output for one captured frame.
type Report struct {
	FaceCount   int          `json:"faceCount"`
	GallerySize int          `json:"gallerySize"`
	Threshold   float64      `json:"threshold"`
	Faces       []FaceReport `json:"faces"`
}

// Analyzer runs diagnostics against the gallery. It never mutates it.
type Analyzer struct {
	Store    *gallery.Store
	Detector vision.Detector
	Embedder vision.Embedder
	Rules    config.DiagnosticsRules
	Quality  config.QualityRules
	Crop     config.CropRules
}

// Analyze detects faces in the frozen frame and reports per-face embedding
// statistics and gallery similarity.
func (a *Analyzer) Analyze(ctx context.Context, frame image.Image) (*Report, error) {
	detections, err := a.Detector.Detect(ctx, frame)
	if err != nil {
		return nil, fmt.Errorf("face detection failed: %w", err)
	}

	settings := a.Store.Settings()
	report := &Report{
		FaceCount:   len(detections),
		GallerySize: a.Store.Count(),
		Threshold:   settings.RecognitionThreshold,
	}

	records := a.Store.Records()
	for i, det := range detections {
		report.Faces = append(report.Faces, a.analyzeFace(ctx, frame, i, det, records, settings))
	}
	return report, nil
}

func (a *Analyzer) analyzeFace(ctx context.Context, frame image.Image, i int, det vision.Detection, records []gallery.Record, settings gallery.Settings) FaceReport {
	fr := FaceReport{
		Index:    i,
		Width:    det.Box.Dx(),
		Height:   det.Box.Dy(),
		Position: vision.DescribePosition(det.Box, frame.Bounds()),
		Quality:  vision.CheckQuality(det.Box, frame.Bounds(), a.Quality).Reasons,
	}

	vec, err := a.Embedder.Embed(ctx, vision.ExtractFace(frame, det.Box, a.Crop))
	if err != nil {
		log.WithError(err).WithField("face", i).Warn("embedding failed during diagnostics")
		fr.EmbedError = err.Error()
		return fr
	}

	fr.Magnitude, fr.Mean, fr.StdDev = vectorStats(vec)
	if math.Abs(fr.Magnitude-1.0) > a.Rules.MagnitudeTolerance {
		fr.Concerns = append(fr.Concerns,
			fmt.Sprintf("magnitude %.3f far from 1.0 (vector may not be normalized)", fr.Magnitude))
	}
	if fr.StdDev <= a.Rules.StdDevFloor {
		fr.Concerns = append(fr.Concerns,
			fmt.Sprintf("low component spread (stddev %.4f), embedding may be degenerate", fr.StdDev))
	}

	if len(records) == 0 {
		return fr
	}

	fr.PerName = similarityByName(vec, records)
	fr.Best = match.FindBestMatch(vec, records, settings.RecognitionThreshold)
	if fr.Best == nil {
		fr.HighestSimilarity = match.HighestSimilarity(vec, records)
		fr.SuggestedThreshold = math.Max(a.Rules.SuggestedThresholdFloor,
			fr.HighestSimilarity-a.Rules.SuggestedThresholdGap)
	}
	return fr
}

// similarityByName computes per-name max/average/count of similarity scores.
func similarityByName(vec []float32, records []gallery.Record) []NameSimilarity {
	type agg struct {
		max   float64
		sum   float64
		count int
	}
	byName := make(map[string]*agg)
	for i := range records {
		score := match.Similarity(vec, records[i].Vector)
		a, ok := byName[records[i].Name]
		if !ok {
			a = &agg{}
			byName[records[i].Name] = a
		}
		a.sum += score
		a.count++
		if score > a.max {
			a.max = score
		}
	}

	result := make([]NameSimilarity, 0, len(byName))
	for name, a := range byName {
		result = append(result, NameSimilarity{
			Name:    name,
			Max:     a.max,
			Average: a.sum / float64(a.count),
			Count:   a.count,
			Verdict: verdictFor(a.max),
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Max > result[j].Max })
	return result
}

// vectorStats computes magnitude, mean and standard deviation of the
// embedding components.
func vectorStats(vec []float32) (magnitude, mean, stdDev float64) {
	if len(vec) == 0 {
		return 0, 0, 0
	}
	var sum, sumSq float64
	for _, v := range vec {
		f := float64(v)
		sum += f
		sumSq += f * f
	}
	n := float64(len(vec))
	magnitude = math.Sqrt(sumSq)
	mean = sum / n

	var varSum float64
	for _, v := range vec {
		d := float64(v) - mean
		varSum += d * d
	}
	stdDev = math.Sqrt(varSum / n)
	return magnitude, mean, stdDev
}
