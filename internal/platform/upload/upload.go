// Package upload enforces the file-upload policy (extension and content-type
// allow-list, size cap) and stores accepted files on disk under generated
// names. Stored files are served from a static path keyed by that name.
package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/medidesk/medidesk/internal/platform/apperr"
)

// allowedExtensions and allowedContentTypes restrict ultrasound image uploads.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// Saver validates and persists uploaded files.
type Saver struct {
	dir      string
	maxBytes int64
}

func NewSaver(dir string, maxBytes int64) *Saver {
	return &Saver{dir: dir, maxBytes: maxBytes}
}

// EnsureDir creates the upload directory if missing. Called once at startup.
func (s *Saver) EnsureDir() error {
	return os.MkdirAll(s.dir, 0o755)
}

// Save checks the upload policy and writes the file under a generated
// filename, which it returns. Policy violations map to UploadRejected.
func (s *Saver) Save(fh *multipart.FileHeader) (string, error) {
	if fh.Size > s.maxBytes {
		return "", apperr.UploadRejected(fmt.Sprintf("file exceeds the %d-byte limit", s.maxBytes))
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExtensions[ext] {
		return "", apperr.UploadRejected("file type is not allowed")
	}
	if ct := fh.Header.Get("Content-Type"); ct != "" && !allowedContentTypes[ct] {
		return "", apperr.UploadRejected("content type is not allowed")
	}

	src, err := fh.Open()
	if err != nil {
		return "", apperr.Internal("open uploaded file", err)
	}
	defer src.Close()

	name := uuid.New().String() + ext
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", apperr.Internal("create upload target", err)
	}
	defer dst.Close()

	// Cap the copy as well; the size header is client-supplied.
	n, err := io.Copy(dst, io.LimitReader(src, s.maxBytes+1))
	if err != nil {
		os.Remove(dst.Name())
		return "", apperr.Internal("write uploaded file", err)
	}
	if n > s.maxBytes {
		os.Remove(dst.Name())
		return "", apperr.UploadRejected(fmt.Sprintf("file exceeds the %d-byte limit", s.maxBytes))
	}

	return name, nil
}
