// Package backup implements gallery snapshots and merge/replace imports.
package backup

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	log "github.com/sirupsen/logrus"

	"github.com/face-sentry/face-sentry/internal/gallery"
)

// Mode selects how restore treats existing records.
type Mode string

const (
	// ModeReplace clears the gallery before importing.
	ModeReplace Mode = "replace"
	// ModeMerge imports a record only if no existing record shares its
	// exact name.
	ModeMerge Mode = "merge"
)

// ErrBackupExists is returned when a backup file for the current second
// already exists. Backups are never overwritten; the caller retries later.
var ErrBackupExists = errors.New("backup file already exists")

// backupTimeLayout produces the YYYYMMDD_HHMMSS suffix embedded in backup
// filenames. Second resolution: two backups in the same second collide and
// the second one is rejected.
const backupTimeLayout = "20060102_150405"

// Manager snapshots and restores the gallery's persisted representation.
// Backups live alongside the primary file unless a directory is configured.
type Manager struct {
	galleryPath string
	dir         string
}

// NewManager creates a manager for the given gallery file. An empty dir
// places backups next to the gallery file.
func NewManager(galleryPath, dir string) *Manager {
	if dir == "" {
		dir = filepath.Dir(galleryPath)
	}
	return &Manager{galleryPath: galleryPath, dir: dir}
}

// stem returns the gallery filename without extension, used as the backup
// filename prefix.
func (m *Manager) stem() string {
	base := filepath.Base(m.galleryPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// backupPath builds the backup filename for the given time.
func (m *Manager) backupPath(t time.Time) string {
	name := fmt.Sprintf("%s_backup_%s.json", m.stem(), t.Format(backupTimeLayout))
	return filepath.Join(m.dir, name)
}

// Backup copies the persisted gallery file to a timestamped backup file.
// Returns the backup path, or empty string without error when there is no
// gallery file to back up yet.
func (m *Manager) Backup() (string, error) {
	src, err := os.Open(m.galleryPath)
	if os.IsNotExist(err) {
		log.WithField("path", m.galleryPath).Debug("no gallery file yet, nothing to back up")
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to open gallery file: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(m.dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	path := m.backupPath(time.Now())
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%w: %s", ErrBackupExists, path)
	}

	dst, err := os.Create(path) //nolint:gosec // path is built from config + timestamp
	if err != nil {
		return "", fmt.Errorf("failed to create backup file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to copy gallery to backup: %w", err)
	}
	log.WithField("backup", path).Info("gallery backed up")
	return path, nil
}

// Info describes one backup file.
type Info struct {
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modTime"`
}

// List enumerates backup files, most recent first.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	prefix := m.stem() + "_backup_"
	var backups []Info
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		backups = append(backups, Info{
			Path:    filepath.Join(m.dir, e.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	sort.Slice(backups, func(i, j int) bool { return backups[i].ModTime.After(backups[j].ModTime) })
	return backups, nil
}

// RestoreReport summarizes an import.
type RestoreReport struct {
	Total        int      `json:"total"`
	Imported     int      `json:"imported"`
	Skipped      int      `json:"skipped"`
	SkippedNames []string `json:"skippedNames,omitempty"`
}

// Restore imports records from a backup file into the store. Replace mode
// clears the gallery first; merge mode skips records whose exact name is
// already enrolled, reporting each skip. A successful restore is persisted
// immediately.
func (m *Manager) Restore(store *gallery.Store, path string, mode Mode) (*RestoreReport, error) {
	snap, err := gallery.ReadSnapshot(path)
	if err != nil {
		return nil, err
	}

	report := &RestoreReport{Total: len(snap.Faces)}

	switch mode {
	case ModeReplace:
		store.Clear()
	case ModeMerge:
	default:
		return nil, fmt.Errorf("unknown restore mode %q", mode)
	}

	bar := progressbar.Default(int64(len(snap.Faces)), "importing")
	for _, rec := range snap.Faces {
		_ = bar.Add(1)
		if mode == ModeMerge && store.HasName(rec.Name) {
			report.Skipped++
			report.SkippedNames = append(report.SkippedNames, rec.Name)
			log.WithField("name", rec.Name).Info("merge skipped record, name already enrolled")
			continue
		}
		store.Import(rec)
		report.Imported++
	}
	_ = bar.Finish()

	if err := store.Save(); err != nil {
		return report, fmt.Errorf("restore imported %d records but saving failed: %w", report.Imported, err)
	}
	return report, nil
}

// ClearWithBackup attempts a backup of the persisted gallery before
// emptying the in-memory store, then persists the now-empty gallery. The
// backup attempt always happens first; its failure is logged but does not
// block the clear.
func (m *Manager) ClearWithBackup(store *gallery.Store) (backupPath string, removed int, err error) {
	backupPath, backupErr := m.Backup()
	if backupErr != nil {
		log.WithError(backupErr).Warn("backup before clear failed")
	}

	removed = store.Clear()
	if err := store.Save(); err != nil {
		return backupPath, removed, fmt.Errorf("gallery cleared in memory but saving failed: %w", err)
	}
	return backupPath, removed, nil
}
