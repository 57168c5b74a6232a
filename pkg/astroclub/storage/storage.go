// Package storage saves uploaded images to a local directory or an S3
// bucket and hands back the public URL of each stored file.
package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/mikepea/astroclub/pkg/astroclub/apperrors"
	"github.com/mikepea/astroclub/pkg/astroclub/logger"
)

// allowedTypes maps accepted file extensions to their content types
var allowedTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// FileStorage is a place files can be written to and removed from
type FileStorage interface {
	// Put stores r under name and returns its public URL
	Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
	// Remove deletes the file behind a URL returned by Put. Missing files
	// are not an error.
	Remove(ctx context.Context, url string) error
}

// Uploads validates uploaded images and saves them to a FileStorage
type Uploads struct {
	backend  FileStorage
	maxBytes int64
}

func NewUploads(backend FileStorage, maxBytes int64) *Uploads {
	return &Uploads{backend: backend, maxBytes: maxBytes}
}

// Save validates and stores a single upload
func (u *Uploads) Save(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	if fh.Size > u.maxBytes {
		return "", apperrors.Validation("file %s is larger than %d MB", fh.Filename, u.maxBytes>>20)
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	contentType, ok := allowedTypes[ext]
	if !ok {
		return "", apperrors.Validation("file %s must be a jpg, jpeg, png, gif or webp image", fh.Filename)
	}

	file, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	detected, err := mimetype.DetectReader(file)
	if err != nil {
		return "", fmt.Errorf("detect upload type: %w", err)
	}
	if !detected.Is(contentType) {
		return "", apperrors.Validation("file %s is not a valid image", fh.Filename)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	name := uuid.New().String() + ext
	url, err := u.backend.Put(ctx, name, file, fh.Size, contentType)
	if err != nil {
		return "", err
	}

	logger.Debug().Str("filename", fh.Filename).Str("url", url).Msg("Stored upload")
	return url, nil
}

// SaveAll stores every upload. If one fails, the ones already stored are
// removed again.
func (u *Uploads) SaveAll(ctx context.Context, files []*multipart.FileHeader) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, fh := range files {
		url, err := u.Save(ctx, fh)
		if err != nil {
			u.RemoveAll(ctx, urls)
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// RemoveAll deletes stored files, logging failures
func (u *Uploads) RemoveAll(ctx context.Context, urls []string) {
	for _, url := range urls {
		if err := u.backend.Remove(ctx, url); err != nil {
			logger.Warn().Err(err).Str("url", url).Msg("Failed to remove stored file")
		}
	}
}
