package vision

import (
	"fmt"
	"image"
	_ "image/jpeg" // frame decoding
	_ "image/png"  // frame decoding
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FrameSource yields frames for the live recognition loop. Next returns
// io.EOF when the source is exhausted.
type FrameSource interface {
	Next() (image.Image, error)
	Close() error
}

// LoadFrame decodes a single image file. The result is the frozen frame used
// as the sole source of face positions for an enrollment or diagnostic
// session.
func LoadFrame(path string) (image.Image, error) {
	f, err := os.Open(path) //nolint:gosec // path is operator input
	if err != nil {
		return nil, fmt.Errorf("failed to open frame: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame %s: %w", path, err)
	}
	return img, nil
}

// FileSource serves a single image file once.
type FileSource struct {
	path string
	done bool
}

// NewFileSource creates a source over one image file. The file must exist:
// an unavailable capture source at startup is fatal.
func NewFileSource(path string) (*FileSource, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("frame file unavailable: %w", err)
	}
	return &FileSource{path: path}, nil
}

func (s *FileSource) Next() (image.Image, error) {
	if s.done {
		return nil, io.EOF
	}
	s.done = true
	return LoadFrame(s.path)
}

func (s *FileSource) Close() error { return nil }

// DirSource serves the image files of a directory in name order, which
// stands in for a camera in environments that dump frames to disk.
type DirSource struct {
	paths []string
	next  int
}

// NewDirSource creates a source over the images in dir. An empty or missing
// directory is an error: the capture surface must be available at startup.
func NewDirSource(dir string) (*DirSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("frame directory unavailable: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg", ".png":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no frames found in %s", dir)
	}
	sort.Strings(paths)
	return &DirSource{paths: paths}, nil
}

func (s *DirSource) Next() (image.Image, error) {
	if s.next >= len(s.paths) {
		return nil, io.EOF
	}
	path := s.paths[s.next]
	s.next++
	return LoadFrame(path)
}

func (s *DirSource) Close() error { return nil }
