package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Uploader stores an uploaded file and returns a URL for it. The commission
// workflow only ever persists the returned URL.
type Uploader interface {
	Upload(dir string, file *multipart.FileHeader) (string, error)
}

// LocalStorage writes uploads under a base path on disk and serves them
// through the API's static file route.
type LocalStorage struct {
	basePath string
	baseURL  string
	maxSize  int64
}

// NewLocalStorage creates a local disk uploader.
func NewLocalStorage(basePath, baseURL string, maxSize int64) *LocalStorage {
	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxSize:  maxSize,
	}
}

// Upload saves the file under basePath/dir with a generated name and returns
// its public URL.
func (s *LocalStorage) Upload(dir string, file *multipart.FileHeader) (string, error) {
	if s.maxSize > 0 && file.Size > s.maxSize {
		return "", fmt.Errorf("storage: file exceeds maximum size of %d bytes", s.maxSize)
	}

	ext := filepath.Ext(file.Filename)
	name := fmt.Sprintf("%s-%s%s", time.Now().UTC().Format("20060102"), uuid.New().String()[:8], ext)

	targetDir := filepath.Join(s.basePath, dir)
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return "", fmt.Errorf("storage: create directory: %w", err)
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("storage: open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(targetDir, name))
	if err != nil {
		return "", fmt.Errorf("storage: create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("storage: write file: %w", err)
	}

	return fmt.Sprintf("%s/%s/%s", s.baseURL, dir, name), nil
}
