package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mikepea/astroclub/pkg/astroclub/logger"
)

// LocalStorage handles saving files to the local filesystem
type LocalStorage struct {
	basePath string // directory files are written to
	baseURL  string // URL prefix the directory is served under
}

// NewLocalStorage creates basePath if needed. Files are reachable at
// baseURL + "/" + name.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

func (ls *LocalStorage) Put(_ context.Context, name string, r io.Reader, _ int64, _ string) (string, error) {
	dstPath := filepath.Join(ls.basePath, filepath.Base(name))

	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	return ls.baseURL + "/" + filepath.Base(name), nil
}

// Remove deletes a file stored by Put. URLs outside baseURL are ignored.
func (ls *LocalStorage) Remove(_ context.Context, url string) error {
	if !strings.HasPrefix(url, ls.baseURL+"/") {
		return nil
	}
	filename := filepath.Base(url)
	if filename == "" || filename == "." || filename == "/" {
		return fmt.Errorf("invalid file path: %s", url)
	}

	err := os.Remove(filepath.Join(ls.basePath, filename))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Dir returns the directory files are written to
func (ls *LocalStorage) Dir() string {
	return ls.basePath
}
