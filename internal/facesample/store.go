// Package facesample normalizes face regions and stores them as per-identity
// JPEG samples under a faces root directory:
//
//	<root>/<id>/face_<n>.jpg
package facesample

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const (
	filePrefix = "face_"
	fileExt    = ".jpg"

	jpegQuality = 95
)

// Sample is a stored face image on disk.
type Sample struct {
	ID       int
	Sequence int
	Path     string
}

// Store manages the faces root directory.
type Store struct {
	root string
}

// NewStore returns a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{root: dir}
}

// Root returns the faces root directory.
func (s *Store) Root() string {
	return s.root
}

// EnsureRoot creates the faces root and any missing parents.
func (s *Store) EnsureRoot() error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("failed to create faces directory: %w", err)
	}
	return nil
}

// Dir returns the directory holding samples for id.
func (s *Store) Dir(id int) string {
	return filepath.Join(s.root, strconv.Itoa(id))
}

// CreateIdentityDir creates the per-identity sample directory. An existing
// directory is not an error.
func (s *Store) CreateIdentityDir(id int) error {
	if err := os.MkdirAll(s.Dir(id), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for ID %d: %w", id, err)
	}
	return nil
}

// Path returns the file path of sample n for id.
func (s *Store) Path(id, n int) string {
	return filepath.Join(s.Dir(id), filePrefix+strconv.Itoa(n)+fileExt)
}

// Save writes a normalized face as sample n for id, overwriting any existing
// file with the same sequence number.
func (s *Store) Save(id, n int, face *image.Gray) (string, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, face, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", fmt.Errorf("failed to encode face: %w", err)
	}

	path := s.Path(id, n)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write face %s: %w", path, err)
	}
	return path, nil
}

// parseSequence extracts n from "face_<n>.jpg".
func parseSequence(name string) (int, bool) {
	if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileExt) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileExt))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// NextSequence returns one past the highest sample number stored for id, or
// 0 when there are none.
func (s *Store) NextSequence(id int) (int, error) {
	entries, err := os.ReadDir(s.Dir(id))
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read directory for ID %d: %w", id, err)
	}

	next := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if n, ok := parseSequence(e.Name()); ok && n >= next {
			next = n + 1
		}
	}
	return next, nil
}

// List returns every sample under the root, ordered by ID then sequence.
// Directories whose name is not an integer and files not matching the
// sample naming pattern are ignored.
func (s *Store) List() ([]Sample, error) {
	dirs, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read faces directory: %w", err)
	}

	var samples []Sample
	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}
		id, err := strconv.Atoi(d.Name())
		if err != nil {
			continue
		}
		files, err := os.ReadDir(filepath.Join(s.root, d.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read directory for ID %d: %w", id, err)
		}
		for _, f := range files {
			if f.IsDir() {
				continue
			}
			n, ok := parseSequence(f.Name())
			if !ok {
				continue
			}
			samples = append(samples, Sample{ID: id, Sequence: n, Path: filepath.Join(s.root, d.Name(), f.Name())})
		}
	}

	sort.Slice(samples, func(i, j int) bool {
		if samples[i].ID != samples[j].ID {
			return samples[i].ID < samples[j].ID
		}
		return samples[i].Sequence < samples[j].Sequence
	})
	return samples, nil
}

// Load decodes a stored sample as a normalized grayscale face.
func Load(path string) (*image.Gray, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read face %s: %w", path, err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode face %s: %w", path, err)
	}
	return Resize(ToGray(img)), nil
}
