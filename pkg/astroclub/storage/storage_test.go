package storage

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/mikepea/astroclub/pkg/astroclub/apperrors"
	"github.com/mikepea/astroclub/pkg/astroclub/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 32)...)

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	return form.File["file"][0]
}

func newLocal(t *testing.T) (*Uploads, string) {
	dir := t.TempDir()
	local, err := NewLocalStorage(dir, "http://localhost:3000/uploads/")
	require.NoError(t, err)
	return NewUploads(local, 10<<20), dir
}

func TestSaveLocal(t *testing.T) {
	uploads, dir := newLocal(t)

	url, err := uploads.Save(context.Background(), fileHeader(t, "Saturn.PNG", pngBytes))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "http://localhost:3000/uploads/"), url)
	assert.True(t, strings.HasSuffix(url, ".png"), url)

	stored, err := os.ReadFile(filepath.Join(dir, filepath.Base(url)))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, stored)
}

func TestSaveRejectsInvalidFiles(t *testing.T) {
	uploads, dir := newLocal(t)
	ctx := context.Background()

	cases := map[string]*multipart.FileHeader{
		"extension": fileHeader(t, "notes.txt", []byte("hello")),
		"content":   fileHeader(t, "fake.png", []byte("definitely not an image")),
	}
	for name, fh := range cases {
		_, err := uploads.Save(ctx, fh)
		assert.True(t, errors.Is(err, apperrors.ErrValidation), "%s: %v", name, err)
	}

	small := NewUploads(uploads.backend, 8)
	_, err := small.Save(ctx, fileHeader(t, "big.png", pngBytes))
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

func TestSaveAllRollsBack(t *testing.T) {
	uploads, dir := newLocal(t)

	_, err := uploads.SaveAll(context.Background(), []*multipart.FileHeader{
		fileHeader(t, "a.png", pngBytes),
		fileHeader(t, "b.gif", []byte("GIF89a-------")),
		fileHeader(t, "c.exe", []byte("MZ")),
	})
	require.Error(t, err)

	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

func TestLocalRemove(t *testing.T) {
	uploads, dir := newLocal(t)
	ctx := context.Background()

	urls, err := uploads.SaveAll(ctx, []*multipart.FileHeader{fileHeader(t, "a.png", pngBytes)})
	require.NoError(t, err)
	require.Len(t, urls, 1)

	uploads.RemoveAll(ctx, urls)
	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)

	assert.NoError(t, uploads.backend.Remove(ctx, urls[0]))

	kept, err := uploads.Save(ctx, fileHeader(t, "b.png", pngBytes))
	require.NoError(t, err)
	assert.NoError(t, uploads.backend.Remove(ctx, "https://elsewhere.example/"+filepath.Base(kept)))
	entries, _ = os.ReadDir(dir)
	assert.Len(t, entries, 1)
}

func TestS3Storage(t *testing.T) {
	var mu sync.Mutex
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls = append(calls, r.Method+" "+r.URL.Path)
		mu.Unlock()
		switch r.Method {
		case http.MethodPut:
			w.Header().Set("ETag", `"abc"`)
			w.WriteHeader(http.StatusOK)
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	backend, err := NewS3Storage(ctx, config.UploadsConfig{
		Driver:      "s3",
		S3Bucket:    "astro",
		S3Region:    "us-east-1",
		S3Endpoint:  srv.URL,
		S3AccessKey: "key",
		S3SecretKey: "secret",
	})
	require.NoError(t, err)

	uploads := NewUploads(backend, 10<<20)
	url, err := uploads.Save(ctx, fileHeader(t, "m42.png", pngBytes))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, srv.URL+"/astro/"), url)

	require.NoError(t, backend.Remove(ctx, url))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, calls, 2)
	key := filepath.Base(url)
	assert.Equal(t, "PUT /astro/"+key, calls[0])
	assert.Equal(t, "DELETE /astro/"+key, calls[1])
}

func TestNewSelectsDriver(t *testing.T) {
	ctx := context.Background()

	local, err := New(ctx, config.UploadsConfig{Driver: "local", Dir: t.TempDir()}, "http://example.com")
	require.NoError(t, err)
	assert.IsType(t, &LocalStorage{}, local)

	_, err = New(ctx, config.UploadsConfig{Driver: "ftp"}, "")
	assert.Error(t, err)
}
