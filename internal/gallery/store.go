package gallery

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Store owns the in-memory gallery and its persistence. The in-memory record
// slice is the single source of truth; the file and memory converge only at
// explicit Load/Save points. All mutation goes through the store so a future
// multi-threaded caller stays serialized behind the mutex.
type Store struct {
	mu          sync.RWMutex
	path        string
	records     []Record
	lastUpdated time.Time
	settings    Settings
}

// Load reads the gallery from path. A missing file initializes an empty
// gallery and persists it immediately so a fresh deployment always has a
// readable store on disk. A malformed file is logged and replaced by an empty
// in-memory gallery; loading never fails.
func Load(path string, defaults Settings) *Store {
	if defaults.RecognitionThreshold == 0 {
		defaults.RecognitionThreshold = DefaultThreshold
	}
	s := &Store{path: path, settings: defaults}

	data, err := os.ReadFile(path) //nolint:gosec // path comes from configuration
	if os.IsNotExist(err) {
		log.WithField("path", path).Info("gallery file not found, creating empty gallery")
		if saveErr := s.Save(); saveErr != nil {
			log.WithError(saveErr).Warn("could not persist initial empty gallery")
		}
		return s
	}
	if err != nil {
		log.WithError(err).WithField("path", path).Warn("could not read gallery file, starting empty")
		return s
	}

	var file galleryFile
	if err := json.Unmarshal(data, &file); err != nil {
		log.WithError(err).WithField("path", path).Warn("malformed gallery file, starting empty")
		return s
	}

	s.records = file.Faces
	s.lastUpdated = file.LastUpdated
	if file.Settings.RecognitionThreshold > 0 {
		s.settings.RecognitionThreshold = file.Settings.RecognitionThreshold
	}
	if file.Settings.EmbeddingDimension > 0 {
		s.settings.EmbeddingDimension = file.Settings.EmbeddingDimension
	}
	log.WithFields(log.Fields{"path": path, "records": len(s.records)}).Debug("gallery loaded")
	return s
}

// Save serializes the full gallery to its file, recomputing per-record
// metadata and the lastUpdated timestamp. The in-memory timestamp is only
// advanced on a successful write.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	now := time.Now().UTC()
	for i := range s.records {
		s.records[i].Metadata = ComputeMetadata(s.records[i].Vector)
	}

	file := galleryFile{
		Faces:       s.records,
		LastUpdated: now,
		Version:     SchemaVersion,
		Settings:    s.settings,
	}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal gallery: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil { //nolint:gosec // gallery is not secret
		return fmt.Errorf("failed to write gallery file: %w", err)
	}
	s.lastUpdated = now
	return nil
}

// Append adds one record with a fresh ID and the current UTC timestamp.
// Duplicate names are permitted: multi-sample enrollment stores one record
// per sample. The caller persists explicitly via Save.
func (s *Store) Append(name string, vector []float32) Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.settings.EmbeddingDimension > 0 && len(vector) != s.settings.EmbeddingDimension {
		log.WithFields(log.Fields{
			"name": name,
			"got":  len(vector),
			"want": s.settings.EmbeddingDimension,
		}).Warn("embedding dimension differs from gallery settings")
	}

	rec := Record{
		ID:        uuid.NewString(),
		Name:      name,
		Vector:    vector,
		CreatedAt: time.Now().UTC(),
		Metadata:  ComputeMetadata(vector),
	}
	s.records = append(s.records, rec)
	return rec
}

// Import adds an existing record as-is, preserving its ID and timestamp.
// Used by restore to carry records between galleries.
func (s *Store) Import(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
}

// ReplaceAll swaps the full record set. Used by restore in replace mode.
func (s *Store) ReplaceAll(records []Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append([]Record(nil), records...)
}

// Clear empties the in-memory gallery and returns the number of records
// removed. Callers are responsible for backing up the persisted file first.
func (s *Store) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.records)
	s.records = nil
	return n
}

// Records returns a snapshot copy of all records in insertion order.
func (s *Store) Records() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Record(nil), s.records...)
}

// Count returns the number of stored records.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// HasName reports whether any record carries exactly the given name.
func (s *Store) HasName(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.records {
		if s.records[i].Name == name {
			return true
		}
	}
	return false
}

// NameGroup is a read-only per-name view of the gallery.
type NameGroup struct {
	Name    string
	Count   int
	Records []Record
}

// Query returns all records grouped by name, sorted by name for stable
// listing output.
func (s *Store) Query() []NameGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byName := make(map[string][]Record)
	for _, rec := range s.records {
		byName[rec.Name] = append(byName[rec.Name], rec)
	}

	groups := make([]NameGroup, 0, len(byName))
	for name, recs := range byName {
		groups = append(groups, NameGroup{Name: name, Count: len(recs), Records: recs})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups
}

// LastUpdated returns the timestamp of the last successful persistence.
func (s *Store) LastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdated
}

// Settings returns the gallery recognition settings.
func (s *Store) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Path returns the location of the persisted gallery file.
func (s *Store) Path() string {
	return s.path
}
