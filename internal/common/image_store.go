package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"platewatch/internal/logging"
)

// Upload is one uploaded file: its client-supplied name and its bytes.
type Upload struct {
	Filename string
	Data     []byte
}

// ImageStore owns the directory of sighting photos. Records reference files
// here by bare filename; every path stays inside the configured directory.
type ImageStore struct {
	dir     string
	allowed map[string]struct{}
}

// NewImageStore ensures the upload directory exists and returns the store.
func NewImageStore(dir string, allowedExtensions []string) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}

	allowed := make(map[string]struct{}, len(allowedExtensions))
	for _, ext := range allowedExtensions {
		allowed[strings.ToLower(ext)] = struct{}{}
	}

	return &ImageStore{dir: dir, allowed: allowed}, nil
}

// Allowed reports whether the filename carries a permitted image extension.
func (s *ImageStore) Allowed(filename string) bool {
	i := strings.LastIndex(filename, ".")
	if i < 0 || i == len(filename)-1 {
		return false
	}
	_, ok := s.allowed[strings.ToLower(filename[i+1:])]
	return ok
}

// SanitizeFilename strips any path components and reduces the name to a
// safe character set. Spaces become underscores, anything else outside
// [A-Za-z0-9._-] is dropped.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}

	out := strings.Trim(b.String(), "._")
	return out
}

// SightingFilename derives the stored name for a sighting's photo. The id
// prefix keeps uploads from different records from colliding and lets the
// bulk importer match files back to records.
func SightingFilename(sightingID int64, original string) string {
	return fmt.Sprintf("sighting_%d_%s", sightingID, SanitizeFilename(original))
}

// Save writes an upload for the given sighting and returns the stored
// filename. The caller is responsible for checking Allowed first.
func (s *ImageStore) Save(sightingID int64, up Upload) (string, error) {
	filename := SightingFilename(sightingID, up.Filename)
	if err := s.Write(filename, up.Data); err != nil {
		return "", err
	}
	return filename, nil
}

// Write stores data under an already-derived filename, overwriting any
// existing file. Used by the bulk importer to refresh known images.
func (s *ImageStore) Write(filename string, data []byte) error {
	path, err := s.Resolve(filename)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write image %s: %w", filename, err)
	}
	return nil
}

// Delete removes a stored image, best-effort. Failures are logged and
// reported, never escalated; a missing file counts as not deleted.
func (s *ImageStore) Delete(filename string) bool {
	path, err := s.Resolve(filename)
	if err != nil {
		logging.Warn("image delete rejected", "filename", filename, "error", err.Error())
		return false
	}
	if _, err := os.Stat(path); err != nil {
		return false
	}
	if err := os.Remove(path); err != nil {
		logging.Warn("image delete failed", "filename", filename, "error", err.Error())
		return false
	}
	return true
}

// Exists reports whether the backing file for a stored filename is present.
func (s *ImageStore) Exists(filename string) bool {
	path, err := s.Resolve(filename)
	if err != nil {
		return false
	}
	_, statErr := os.Stat(path)
	return statErr == nil
}

// Resolve maps a stored filename to its absolute path, rejecting anything
// that would escape the upload directory.
func (s *ImageStore) Resolve(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		return "", fmt.Errorf("invalid image filename %q", filename)
	}
	return filepath.Join(s.dir, filename), nil
}

// Dir returns the upload directory path.
func (s *ImageStore) Dir() string {
	return s.dir
}
