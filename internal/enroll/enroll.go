// Package enroll implements the enrollment workflow: session-scoped capture
// of one or all faces from a frozen frame into the gallery.
package enroll

import (
	"context"
	"errors"
	"fmt"
	"image"

	log "github.com/sirupsen/logrus"

	"github.com/face-sentry/face-sentry/internal/config"
	"github.com/face-sentry/face-sentry/internal/gallery"
	"github.com/face-sentry/face-sentry/internal/vision"
)

// ErrNoFaces is returned when the frozen frame contains no detectable faces.
// The session aborts with no gallery mutation.
var ErrNoFaces = errors.New("no faces detected")

// SkipKeyword skips a face during multi-face enrollment.
const SkipKeyword = "skip"

// Prompter supplies the decoded operator intents the workflow needs. The
// console is one driver; a scripted test harness is another.
type Prompter interface {
	// Name asks for a name. An empty answer means "don't enroll".
	Name(prompt string) (string, error)
	// Confirm asks a yes/no question.
	Confirm(prompt string) (bool, error)
}

// Status classifies the outcome for a single face in a session.
type Status string

const (
	StatusEnrolled Status = "enrolled"
	StatusSkipped  Status = "skipped"  // empty name or skip keyword
	StatusDeclined Status = "declined" // duplicate name, operator declined
	StatusFailed   Status = "failed"   // embedding failed
)

// FaceResult is the explicit per-face outcome accumulated into the batch
// summary, so the continuation policy is visible rather than buried in
// control flow.
type FaceResult struct {
	Index    int
	Name     string
	Position string
	Quality  vision.Quality
	Status   Status
	Reason   string
}

// Summary reports an enrollment session: per-face results plus gallery
// counts before and after.
type Summary struct {
	Results     []FaceResult
	Succeeded   int
	Total       int
	CountBefore int
	CountAfter  int
	Saved       bool
	SaveErr     error
}

// Workflow drives enrollment sessions against a gallery store using the
// external detector and embedder.
type Workflow struct {
	Store    *gallery.Store
	Detector vision.Detector
	Embedder vision.Embedder
	Prompter Prompter
	Rules    config.RulesConfig
}

// EnrollSingle enrolls the largest face in the frozen frame. The name comes
// from the prompter; an empty name aborts with no mutation. A successful
// enrollment is persisted immediately.
func (w *Workflow) EnrollSingle(ctx context.Context, frame image.Image) (*Summary, error) {
	detections, err := w.Detector.Detect(ctx, frame)
	if err != nil {
		return nil, fmt.Errorf("face detection failed: %w", err)
	}
	if len(detections) == 0 {
		return nil, ErrNoFaces
	}

	summary := &Summary{Total: 1, CountBefore: w.Store.Count()}
	idx := vision.LargestFace(detections)
	det := detections[idx]

	result := FaceResult{
		Index:    idx,
		Position: vision.DescribePosition(det.Box, frame.Bounds()),
		Quality:  vision.CheckQuality(det.Box, frame.Bounds(), w.Rules.Quality),
	}

	name, err := w.Prompter.Name("Name for the detected face (empty to cancel): ")
	if err != nil {
		return nil, fmt.Errorf("prompt failed: %w", err)
	}
	if name == "" {
		result.Status = StatusSkipped
		result.Reason = "empty name"
		summary.Results = append(summary.Results, result)
		summary.CountAfter = w.Store.Count()
		return summary, nil
	}
	result.Name = name

	w.warnSimilarNames(name)

	vec, err := w.Embedder.Embed(ctx, vision.ExtractFace(frame, det.Box, w.Rules.Crop))
	if err != nil {
		result.Status = StatusFailed
		result.Reason = err.Error()
		summary.Results = append(summary.Results, result)
		summary.CountAfter = w.Store.Count()
		return summary, nil
	}

	w.Store.Append(name, vec)
	result.Status = StatusEnrolled
	summary.Results = append(summary.Results, result)
	summary.Succeeded = 1
	summary.CountAfter = w.Store.Count()

	// Every successful single enrollment persists immediately.
	if err := w.Store.Save(); err != nil {
		log.WithError(err).Warn("failed to persist gallery after enrollment")
		summary.SaveErr = err
	} else {
		summary.Saved = true
	}
	return summary, nil
}

// EnrollAll walks all faces in the frozen frame in detector-report order,
// prompting per face. Faces can be skipped (empty name or skip keyword) and
// exact duplicate names need explicit confirmation. A per-face embedding
// failure skips only that face. The gallery is persisted once at the end iff
// at least one face was enrolled; earlier successes survive later failures.
func (w *Workflow) EnrollAll(ctx context.Context, frame image.Image) (*Summary, error) {
	detections, err := w.Detector.Detect(ctx, frame)
	if err != nil {
		return nil, fmt.Errorf("face detection failed: %w", err)
	}
	if len(detections) == 0 {
		return nil, ErrNoFaces
	}

	summary := &Summary{Total: len(detections), CountBefore: w.Store.Count()}

	for i, det := range detections {
		result := w.enrollFace(ctx, frame, i, len(detections), det)
		if result.Status == StatusEnrolled {
			summary.Succeeded++
		}
		summary.Results = append(summary.Results, result)
	}

	summary.CountAfter = w.Store.Count()
	if summary.Succeeded > 0 {
		if err := w.Store.Save(); err != nil {
			log.WithError(err).Warn("failed to persist gallery after batch enrollment")
			summary.SaveErr = err
		} else {
			summary.Saved = true
		}
	}
	return summary, nil
}

// enrollFace handles one face of a multi-face session.
func (w *Workflow) enrollFace(ctx context.Context, frame image.Image, i, total int, det vision.Detection) FaceResult {
	result := FaceResult{
		Index:    i,
		Position: vision.DescribePosition(det.Box, frame.Bounds()),
		Quality:  vision.CheckQuality(det.Box, frame.Bounds(), w.Rules.Quality),
	}

	prompt := fmt.Sprintf("Face %d/%d (%s%s). Name (empty or %q to skip): ",
		i+1, total, result.Position, qualityNote(result.Quality), SkipKeyword)
	name, err := w.Prompter.Name(prompt)
	if err != nil {
		result.Status = StatusFailed
		result.Reason = fmt.Sprintf("prompt failed: %v", err)
		return result
	}
	if name == "" || name == SkipKeyword {
		result.Status = StatusSkipped
		result.Reason = "skipped by operator"
		return result
	}
	result.Name = name

	if w.Store.HasName(name) {
		ok, err := w.Prompter.Confirm(fmt.Sprintf("%q already exists in the gallery. Add another sample?", name))
		if err != nil || !ok {
			result.Status = StatusDeclined
			result.Reason = "duplicate name declined"
			return result
		}
	} else {
		w.warnSimilarNames(name)
	}

	vec, err := w.Embedder.Embed(ctx, vision.ExtractFace(frame, det.Box, w.Rules.Crop))
	if err != nil {
		log.WithError(err).WithField("face", i).Warn("embedding failed, skipping face")
		result.Status = StatusFailed
		result.Reason = err.Error()
		return result
	}

	w.Store.Append(name, vec)
	result.Status = StatusEnrolled
	return result
}

// warnSimilarNames logs an advisory warning when the new name collides with
// an enrolled name only after normalization (case or diacritic variants).
// Matching semantics stay exact-string.
func (w *Workflow) warnSimilarNames(name string) {
	for _, group := range w.Store.Query() {
		if gallery.SimilarName(name, group.Name) {
			log.WithFields(log.Fields{"new": name, "existing": group.Name}).
				Warn("name differs only in case or diacritics from an enrolled name")
		}
	}
}

func qualityNote(q vision.Quality) string {
	if q.Good {
		return "; good quality"
	}
	return "; quality: " + q.Reasons[0]
}
