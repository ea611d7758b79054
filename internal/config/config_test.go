package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("VISION_URL", "")
	t.Setenv("EMBEDDING_DIM", "")
	t.Setenv("GALLERY_PATH", "")
	t.Setenv("RECOGNITION_THRESHOLD", "")

	cfg := Load()

	if cfg.Vision.URL != "http://localhost:8000" {
		t.Errorf("expected default vision URL, got %q", cfg.Vision.URL)
	}
	if cfg.Vision.Dim != 512 {
		t.Errorf("expected default embedding dim 512, got %d", cfg.Vision.Dim)
	}
	if cfg.Gallery.Path != "gallery.json" {
		t.Errorf("expected default gallery path, got %q", cfg.Gallery.Path)
	}
	if cfg.Gallery.Threshold != 0.55 {
		t.Errorf("expected default threshold 0.55, got %f", cfg.Gallery.Threshold)
	}
}

func TestLoadEmbeddedRules(t *testing.T) {
	cfg := Load()

	if cfg.Rules.Quality.MinWidth != 80 || cfg.Rules.Quality.MinHeight != 80 {
		t.Errorf("expected 80x80 minimum face size, got %dx%d",
			cfg.Rules.Quality.MinWidth, cfg.Rules.Quality.MinHeight)
	}
	if cfg.Rules.Quality.EdgeMargin != 20 {
		t.Errorf("expected edge margin 20, got %d", cfg.Rules.Quality.EdgeMargin)
	}
	if cfg.Rules.Crop.Padding != 20 {
		t.Errorf("expected crop padding 20, got %d", cfg.Rules.Crop.Padding)
	}
	if cfg.Rules.Diagnostics.StdDevFloor != 0.03 {
		t.Errorf("expected stddev floor 0.03, got %f", cfg.Rules.Diagnostics.StdDevFloor)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("EMBEDDING_DIM", "768")
	t.Setenv("RECOGNITION_THRESHOLD", "0.42")
	t.Setenv("GALLERY_PATH", "/tmp/faces.json")

	cfg := Load()

	if cfg.Vision.Dim != 768 {
		t.Errorf("expected dim 768, got %d", cfg.Vision.Dim)
	}
	if cfg.Gallery.Threshold != 0.42 {
		t.Errorf("expected threshold 0.42, got %f", cfg.Gallery.Threshold)
	}
	if cfg.Gallery.Path != "/tmp/faces.json" {
		t.Errorf("expected overridden path, got %q", cfg.Gallery.Path)
	}
}

func TestEnvIntInvalid(t *testing.T) {
	t.Setenv("EMBEDDING_DIM", "not-a-number")

	cfg := Load()
	if cfg.Vision.Dim != 512 {
		t.Errorf("invalid env value should fall back to default, got %d", cfg.Vision.Dim)
	}
}
