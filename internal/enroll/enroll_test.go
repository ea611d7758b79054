package enroll

import (
	"context"
	"errors"
	"image"
	"path/filepath"
	"testing"

	"github.com/face-sentry/face-sentry/internal/config"
	"github.com/face-sentry/face-sentry/internal/gallery"
	"github.com/face-sentry/face-sentry/internal/vision"
)

type fakeDetector struct {
	detections []vision.Detection
	err        error
}

func (f *fakeDetector) Detect(ctx context.Context, img image.Image) ([]vision.Detection, error) {
	return f.detections, f.err
}

// fakeEmbedder returns canned vectors in call order and can fail specific calls.
type fakeEmbedder struct {
	vectors [][]float32
	failAt  map[int]error
	calls   int
}

func (f *fakeEmbedder) Embed(ctx context.Context, face image.Image) ([]float32, error) {
	call := f.calls
	f.calls++
	if err, ok := f.failAt[call]; ok {
		return nil, err
	}
	if call < len(f.vectors) {
		return f.vectors[call], nil
	}
	return []float32{1, 0}, nil
}

// scriptPrompter plays back canned intents, standing in for the console.
type scriptPrompter struct {
	names    []string
	confirms []bool
	nameIdx  int
	confIdx  int
}

func (p *scriptPrompter) Name(string) (string, error) {
	if p.nameIdx >= len(p.names) {
		return "", nil
	}
	name := p.names[p.nameIdx]
	p.nameIdx++
	return name, nil
}

func (p *scriptPrompter) Confirm(string) (bool, error) {
	if p.confIdx >= len(p.confirms) {
		return false, nil
	}
	ok := p.confirms[p.confIdx]
	p.confIdx++
	return ok, nil
}

func testFrame() image.Image {
	return image.NewRGBA(image.Rect(0, 0, 640, 480))
}

func testRules() config.RulesConfig {
	return config.RulesConfig{
		Quality: config.QualityRules{
			MinWidth: 80, MinHeight: 80, EdgeMargin: 20,
			MinAspectRatio: 0.6, MaxAspectRatio: 1.6,
		},
	}
}

func newTestWorkflow(t *testing.T, detections []vision.Detection, embedder *fakeEmbedder, prompter Prompter) (*Workflow, *gallery.Store) {
	t.Helper()
	store := gallery.Load(filepath.Join(t.TempDir(), "gallery.json"), gallery.Settings{EmbeddingDimension: 2})
	return &Workflow{
		Store:    store,
		Detector: &fakeDetector{detections: detections},
		Embedder: embedder,
		Prompter: prompter,
		Rules:    testRules(),
	}, store
}

func threeFaces() []vision.Detection {
	return []vision.Detection{
		{Box: image.Rect(100, 100, 200, 200)},
		{Box: image.Rect(250, 100, 350, 200)},
		{Box: image.Rect(400, 100, 500, 200)},
	}
}

func TestEnrollAllSkipsAndEnrolls(t *testing.T) {
	wf, store := newTestWorkflow(t, threeFaces(), &fakeEmbedder{}, &scriptPrompter{
		names: []string{"Alice", "skip", ""},
	})

	summary, err := wf.EnrollAll(context.Background(), testFrame())
	if err != nil {
		t.Fatalf("EnrollAll failed: %v", err)
	}

	if summary.Succeeded != 1 || summary.Total != 3 {
		t.Errorf("summary = %d/%d; want 1/3", summary.Succeeded, summary.Total)
	}
	if summary.CountBefore != 0 || summary.CountAfter != 1 {
		t.Errorf("counts = %d -> %d; want 0 -> 1", summary.CountBefore, summary.CountAfter)
	}
	if !summary.Saved {
		t.Error("expected gallery to be saved after a successful batch")
	}

	records := store.Records()
	if len(records) != 1 || records[0].Name != "Alice" {
		t.Fatalf("expected exactly one Alice record, got %+v", records)
	}

	if summary.Results[1].Status != StatusSkipped || summary.Results[2].Status != StatusSkipped {
		t.Errorf("expected faces 2 and 3 skipped, got %+v", summary.Results)
	}
}

func TestEnrollAllZeroSuccessesDoesNotSave(t *testing.T) {
	wf, store := newTestWorkflow(t, threeFaces(), &fakeEmbedder{}, &scriptPrompter{
		names: []string{"", "skip", "skip"},
	})
	beforeSave := store.LastUpdated()

	summary, err := wf.EnrollAll(context.Background(), testFrame())
	if err != nil {
		t.Fatalf("EnrollAll failed: %v", err)
	}

	if summary.Succeeded != 0 {
		t.Errorf("expected zero successes, got %d", summary.Succeeded)
	}
	if summary.Saved {
		t.Error("batch with zero successes must not save")
	}
	if !store.LastUpdated().Equal(beforeSave) {
		t.Error("lastUpdated must not change when nothing was enrolled")
	}
	if store.Count() != 0 {
		t.Errorf("expected empty gallery, got %d records", store.Count())
	}
}

func TestEnrollAllDuplicateNameDeclined(t *testing.T) {
	wf, store := newTestWorkflow(t,
		[]vision.Detection{{Box: image.Rect(100, 100, 200, 200)}},
		&fakeEmbedder{},
		&scriptPrompter{names: []string{"Alice"}, confirms: []bool{false}},
	)
	store.Append("Alice", []float32{1, 0})

	summary, err := wf.EnrollAll(context.Background(), testFrame())
	if err != nil {
		t.Fatalf("EnrollAll failed: %v", err)
	}

	if summary.Succeeded != 0 {
		t.Errorf("declined duplicate must not enroll, got %d successes", summary.Succeeded)
	}
	if summary.Results[0].Status != StatusDeclined {
		t.Errorf("status = %s; want %s", summary.Results[0].Status, StatusDeclined)
	}
	if store.Count() != 1 {
		t.Errorf("expected gallery unchanged, got %d records", store.Count())
	}
}

func TestEnrollAllDuplicateNameConfirmed(t *testing.T) {
	wf, store := newTestWorkflow(t,
		[]vision.Detection{{Box: image.Rect(100, 100, 200, 200)}},
		&fakeEmbedder{},
		&scriptPrompter{names: []string{"Alice"}, confirms: []bool{true}},
	)
	store.Append("Alice", []float32{1, 0})

	summary, err := wf.EnrollAll(context.Background(), testFrame())
	if err != nil {
		t.Fatalf("EnrollAll failed: %v", err)
	}

	if summary.Succeeded != 1 {
		t.Errorf("confirmed duplicate should enroll, got %d successes", summary.Succeeded)
	}
	if store.Count() != 2 {
		t.Errorf("expected a second Alice sample, got %d records", store.Count())
	}
}

func TestEnrollAllPerFaceFailureContinues(t *testing.T) {
	embedder := &fakeEmbedder{failAt: map[int]error{0: errors.New("service unavailable")}}
	wf, store := newTestWorkflow(t, threeFaces(), embedder, &scriptPrompter{
		names: []string{"Alice", "Bob", "Carol"},
	})

	summary, err := wf.EnrollAll(context.Background(), testFrame())
	if err != nil {
		t.Fatalf("EnrollAll failed: %v", err)
	}

	if summary.Results[0].Status != StatusFailed {
		t.Errorf("face 1 status = %s; want %s", summary.Results[0].Status, StatusFailed)
	}
	if summary.Succeeded != 2 {
		t.Errorf("expected the batch to continue past the failure, got %d successes", summary.Succeeded)
	}
	// Successes around a failure are retained and persisted.
	if !summary.Saved {
		t.Error("partial batch must still be saved")
	}
	if store.Count() != 2 {
		t.Errorf("expected 2 records, got %d", store.Count())
	}
}

func TestEnrollAllNoFaces(t *testing.T) {
	wf, store := newTestWorkflow(t, nil, &fakeEmbedder{}, &scriptPrompter{})

	_, err := wf.EnrollAll(context.Background(), testFrame())
	if !errors.Is(err, ErrNoFaces) {
		t.Errorf("expected ErrNoFaces, got %v", err)
	}
	if store.Count() != 0 {
		t.Error("no-faces session must not mutate the gallery")
	}
}

func TestEnrollSinglePicksLargestFace(t *testing.T) {
	detections := []vision.Detection{
		{Box: image.Rect(100, 100, 180, 180)}, // 80x80
		{Box: image.Rect(250, 100, 400, 250)}, // 150x150, largest
		{Box: image.Rect(450, 100, 550, 200)}, // 100x100
	}
	wf, store := newTestWorkflow(t, detections, &fakeEmbedder{}, &scriptPrompter{names: []string{"Alice"}})

	summary, err := wf.EnrollSingle(context.Background(), testFrame())
	if err != nil {
		t.Fatalf("EnrollSingle failed: %v", err)
	}

	if summary.Results[0].Index != 1 {
		t.Errorf("selected face index = %d; want 1 (largest area)", summary.Results[0].Index)
	}
	if !summary.Saved {
		t.Error("single enrollment must save immediately")
	}
	if store.Count() != 1 {
		t.Errorf("expected 1 record, got %d", store.Count())
	}
}

func TestEnrollSingleEmptyNameAborts(t *testing.T) {
	wf, store := newTestWorkflow(t,
		[]vision.Detection{{Box: image.Rect(100, 100, 200, 200)}},
		&fakeEmbedder{},
		&scriptPrompter{names: []string{""}},
	)
	beforeSave := store.LastUpdated()

	summary, err := wf.EnrollSingle(context.Background(), testFrame())
	if err != nil {
		t.Fatalf("EnrollSingle failed: %v", err)
	}

	if summary.Succeeded != 0 || store.Count() != 0 {
		t.Error("empty name must abort with no mutation")
	}
	if summary.Saved || !store.LastUpdated().Equal(beforeSave) {
		t.Error("aborted session must not save")
	}
}

func TestSessionStateMachine(t *testing.T) {
	wf, _ := newTestWorkflow(t,
		[]vision.Detection{{Box: image.Rect(100, 100, 200, 200)}},
		&fakeEmbedder{},
		&scriptPrompter{names: []string{"Alice"}},
	)
	session := NewSession(wf)

	if _, err := session.Capture(context.Background(), testFrame()); !errors.Is(err, ErrNoModeSelected) {
		t.Errorf("capture without mode: expected ErrNoModeSelected, got %v", err)
	}

	if err := session.BeginSingleEnroll(); err != nil {
		t.Fatalf("BeginSingleEnroll failed: %v", err)
	}
	if err := session.BeginMultiEnroll(); !errors.Is(err, ErrSessionBusy) {
		t.Errorf("expected ErrSessionBusy, got %v", err)
	}
	if session.State() != StateSingleCapture {
		t.Errorf("state = %v; want StateSingleCapture", session.State())
	}

	if _, err := session.Capture(context.Background(), testFrame()); err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if session.State() != StateIdle {
		t.Errorf("session must return to idle after capture, state = %v", session.State())
	}

	session.Cancel()
	if session.State() != StateIdle {
		t.Error("cancel must leave the session idle")
	}
}
