// Package upload persists multipart image files to the shared upload
// directory.
package upload

import (
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var allowedTypes = map[string]bool{
	"image/png":  true,
	"image/jpg":  true,
	"image/jpeg": true,
}

// Saver writes accepted image uploads into Dir. Files are named
// <UTC timestamp>-<original filename>; collisions within the same
// nanosecond are not guarded against.
type Saver struct {
	Dir string
}

func NewSaver(dir string) (*Saver, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Saver{Dir: dir}, nil
}

// Accepted reports whether the part's declared MIME type is an allowed
// image type. Disallowed files are dropped silently, not rejected with an
// error; the create flow later reports the missing file.
func Accepted(header *multipart.FileHeader) bool {
	contentType := strings.ToLower(strings.TrimSpace(header.Header.Get("Content-Type")))
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	return allowedTypes[contentType]
}

// Save writes the uploaded file to disk and returns the stored filename
// (relative to Dir).
func (s *Saver) Save(header *multipart.FileHeader) (string, error) {
	src, err := header.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	name := time.Now().UTC().Format(time.RFC3339Nano) + "-" + sanitizeFilename(header.Filename)
	dst, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(dst.Name())
		return "", err
	}
	return name, nil
}

// Remove deletes a stored file by name. Missing files are not an error.
func (s *Saver) Remove(name string) error {
	if name == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.Dir, filepath.Base(name)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// sanitizeFilename strips any path components and characters that are
// unsafe in a shared directory.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, string(os.PathSeparator), "_")
	if name == "" || name == "." {
		name = "upload"
	}
	return name
}
