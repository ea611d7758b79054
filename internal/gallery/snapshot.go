package gallery

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Snapshot is a parsed gallery file independent of any live store. Restore
// reads backup files through it; unlike Load, a malformed snapshot is a hard
// error because importing garbage would corrupt the gallery.
type Snapshot struct {
	Faces       []Record
	LastUpdated time.Time
	Version     string
	Settings    Settings
}

// ReadSnapshot parses a persisted gallery file.
func ReadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is operator input
	if err != nil {
		return nil, fmt.Errorf("failed to read gallery file: %w", err)
	}

	var file galleryFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse gallery file %s: %w", path, err)
	}

	return &Snapshot{
		Faces:       file.Faces,
		LastUpdated: file.LastUpdated,
		Version:     file.Version,
		Settings:    file.Settings,
	}, nil
}
