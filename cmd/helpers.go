package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/face-sentry/face-sentry/internal/config"
	"github.com/face-sentry/face-sentry/internal/gallery"
	"github.com/face-sentry/face-sentry/internal/vision"
)

// deps holds the initialized dependencies shared by the commands.
type deps struct {
	cfg    *config.Config
	store  *gallery.Store
	client *vision.ServiceClient
}

// initDeps loads configuration, opens the gallery and builds the vision
// service client. Opening the gallery never fails: a missing or corrupt file
// degrades to an empty gallery.
func initDeps() *deps {
	cfg := config.Load()
	store := gallery.Load(cfg.Gallery.Path, gallery.Settings{
		RecognitionThreshold: cfg.Gallery.Threshold,
		EmbeddingDimension:   cfg.Vision.Dim,
	})
	return &deps{
		cfg:    cfg,
		store:  store,
		client: vision.NewServiceClient(cfg.Vision.URL, cfg.Vision.Model),
	}
}

func outputJSON(data any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}
	return nil
}
