// Package testutil holds fixtures shared by the handler tests
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/astroclub/pkg/astroclub/auth"
	"github.com/mikepea/astroclub/pkg/astroclub/config"
	"github.com/mikepea/astroclub/pkg/astroclub/database"
	"github.com/mikepea/astroclub/pkg/astroclub/models"
	"github.com/mikepea/astroclub/pkg/astroclub/storage"
	"github.com/mikepea/astroclub/pkg/astroclub/validation"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Password is the plain password of every user made by CreateUser
const Password = "password123"

// JWT is the token configuration used in tests
var JWT = config.JWTConfig{Secret: "test-secret", TTL: time.Hour, Issuer: "astroclub"}

// PNG is a minimal payload that sniffs as image/png
var PNG = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 32)...)

func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.OpenMemory()
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	return db
}

func Tokens() *auth.TokenManager {
	return auth.NewTokenManager(JWT)
}

// Router returns a bare gin engine in test mode with validation rules installed
func Router() *gin.Engine {
	gin.SetMode(gin.TestMode)
	validation.Register()
	return gin.New()
}

// Uploads returns local upload storage in a temporary directory
func Uploads(t testing.TB) (*storage.Uploads, string) {
	t.Helper()
	dir := t.TempDir()
	local, err := storage.NewLocalStorage(dir, "http://localhost:3000/uploads")
	if err != nil {
		t.Fatalf("Failed to create local storage: %v", err)
	}
	return storage.NewUploads(local, 10<<20), dir
}

// CountFiles returns the number of files in dir
func CountFiles(t testing.TB, dir string) int {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "*"))
	if err != nil {
		t.Fatalf("Failed to list %s: %v", dir, err)
	}
	return len(matches)
}

func CreateUser(t testing.TB, db *gorm.DB, email string, role models.Role) models.User {
	t.Helper()
	hash, _ := auth.HashPassword(Password, bcrypt.MinCost)
	user := models.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Test",
		LastName:     "User",
		Role:         role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

// AuthHeader returns a bearer header value for user
func AuthHeader(user models.User) string {
	token, _ := Tokens().Generate(user)
	return "Bearer " + token
}

// DoJSON sends body as JSON. authHeader may be empty.
func DoJSON(r http.Handler, method, path string, body interface{}, authHeader string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		reader = bytes.NewBuffer(jsonBody)
	}
	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

// File is one file part of a multipart request
type File struct {
	Field   string
	Name    string
	Content []byte
}

// DoMultipart sends fields and files as multipart/form-data
func DoMultipart(r http.Handler, method, path string, fields map[string]string, files []File, authHeader string) *httptest.ResponseRecorder {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		_ = w.WriteField(k, v)
	}
	for _, f := range files {
		part, _ := w.CreateFormFile(f.Field, f.Name)
		_, _ = part.Write(f.Content)
	}
	_ = w.Close()

	req, _ := http.NewRequest(method, path, body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

// Decode unmarshals a response body into v
func Decode(t testing.TB, resp *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(resp.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to decode response %q: %v", resp.Body.String(), err)
	}
}
