package images

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/astroclub/pkg/astroclub/auth"
	"github.com/mikepea/astroclub/pkg/astroclub/models"
	"github.com/mikepea/astroclub/pkg/astroclub/testutil"
	"gorm.io/gorm"
)

func setupTestRouter(t *testing.T, db *gorm.DB) (*gin.Engine, string) {
	uploads, dir := testutil.Uploads(t)
	r := testutil.Router()
	NewHandler(NewService(db, uploads), auth.Middleware(testutil.Tokens())).RegisterRoutes(r.Group("/images"))
	return r, dir
}

func upload(t *testing.T, router *gin.Engine, user models.User, fields map[string]string) models.Image {
	t.Helper()
	files := []testutil.File{{Field: "file", Name: "m31.png", Content: testutil.PNG}}
	resp := testutil.DoMultipart(router, "POST", "/images/create", fields, files, testutil.AuthHeader(user))
	if resp.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var image models.Image
	testutil.Decode(t, resp, &image)
	return image
}

func TestCreateImage(t *testing.T) {
	db := testutil.NewDB(t)
	router, dir := setupTestRouter(t, db)
	user := testutil.CreateUser(t, db, "test@example.com", models.RoleMember)

	image := upload(t, router, user, map[string]string{"title": "Andromeda"})
	if image.Category != models.ImageCategoryOther {
		t.Errorf("Expected default category OTHER, got %s", image.Category)
	}
	if image.UserID == nil || *image.UserID != user.ID {
		t.Errorf("Expected uploader to be recorded, got %v", image.UserID)
	}
	if !strings.HasPrefix(image.URL, "http://localhost:3000/uploads/") {
		t.Errorf("Expected local upload URL, got %s", image.URL)
	}
	if testutil.CountFiles(t, dir) != 1 {
		t.Errorf("Expected one stored file, got %d", testutil.CountFiles(t, dir))
	}

	resp := testutil.DoJSON(router, "GET", "/images/"+image.ID, nil, "")
	if resp.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.Code)
	}
}

func TestCreateImageValidation(t *testing.T) {
	db := testutil.NewDB(t)
	router, dir := setupTestRouter(t, db)
	user := testutil.CreateUser(t, db, "test@example.com", models.RoleMember)
	header := testutil.AuthHeader(user)
	png := []testutil.File{{Field: "file", Name: "m31.png", Content: testutil.PNG}}

	resp := testutil.DoMultipart(router, "POST", "/images/create", map[string]string{"title": "nothing"}, nil, header)
	if resp.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 without a file, got %d", resp.Code)
	}

	resp = testutil.DoMultipart(router, "POST", "/images/create", map[string]string{"category": "NEBULA"}, png, header)
	if resp.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for unknown category, got %d", resp.Code)
	}

	resp = testutil.DoMultipart(router, "POST", "/images/create", map[string]string{"category": "GROUP", "group_id": "missing"}, png, header)
	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for unknown group, got %d", resp.Code)
	}

	resp = testutil.DoMultipart(router, "POST", "/images/create", nil, png, "")
	if resp.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 without token, got %d", resp.Code)
	}

	var count int64
	db.Model(&models.Image{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected no image rows, got %d", count)
	}
	if n := testutil.CountFiles(t, dir); n != 0 {
		t.Errorf("Expected no stored files, got %d", n)
	}
}

func TestImagesByCategory(t *testing.T) {
	db := testutil.NewDB(t)
	router, _ := setupTestRouter(t, db)
	user := testutil.CreateUser(t, db, "test@example.com", models.RoleMember)

	group := models.Group{Name: "Imagers"}
	db.Create(&group)
	obs := models.Observation{Title: "Orion", Date: time.Now(), UserID: user.ID}
	db.Create(&obs)
	event := models.Event{Title: "Star party", Date: time.Now()}
	db.Create(&event)

	groupImage := upload(t, router, user, map[string]string{"category": "GROUP", "group_id": group.ID})
	obsImage := upload(t, router, user, map[string]string{"category": "OBSERVATION", "observation_id": obs.ID})
	eventImage := upload(t, router, user, map[string]string{"category": "EVENT", "event_id": event.ID})
	otherImage := upload(t, router, user, nil)

	tests := []struct {
		path string
		want string
	}{
		{"/images/category/GROUP/" + group.ID, groupImage.ID},
		{"/images/category/OBSERVATION/" + obs.ID, obsImage.ID},
		{"/images/category/EVENT/" + event.ID, eventImage.ID},
		{"/images/category/OTHER/anything", otherImage.ID},
		{"/images/category/UNKNOWN/" + group.ID, otherImage.ID},
	}
	for _, tt := range tests {
		resp := testutil.DoJSON(router, "GET", tt.path, nil, "")
		if resp.Code != http.StatusOK {
			t.Errorf("%s: expected status 200, got %d", tt.path, resp.Code)
			continue
		}
		var images []models.Image
		testutil.Decode(t, resp, &images)
		if len(images) != 1 || images[0].ID != tt.want {
			t.Errorf("%s: expected only image %s, got %+v", tt.path, tt.want, images)
		}
	}

	resp := testutil.DoJSON(router, "GET", "/images/category/GROUP/missing", nil, "")
	if resp.Body.String() != "[]" {
		t.Errorf("Expected empty array for a group without images, got %s", resp.Body.String())
	}

	var all []models.Image
	testutil.Decode(t, testutil.DoJSON(router, "GET", "/images", nil, ""), &all)
	if len(all) != 4 {
		t.Errorf("Expected 4 images, got %d", len(all))
	}
}

func TestDeleteImage(t *testing.T) {
	db := testutil.NewDB(t)
	router, dir := setupTestRouter(t, db)
	user := testutil.CreateUser(t, db, "test@example.com", models.RoleMember)
	image := upload(t, router, user, nil)

	resp := testutil.DoJSON(router, "DELETE", "/images/delete/"+image.ID, nil, "")
	if resp.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 without token, got %d", resp.Code)
	}

	resp = testutil.DoJSON(router, "DELETE", "/images/delete/"+image.ID, nil, testutil.AuthHeader(user))
	if resp.Code != http.StatusNoContent {
		t.Fatalf("Expected status 204, got %d", resp.Code)
	}
	if n := testutil.CountFiles(t, dir); n != 0 {
		t.Errorf("Expected stored file to be removed, got %d", n)
	}

	resp = testutil.DoJSON(router, "DELETE", "/images/delete/"+image.ID, nil, testutil.AuthHeader(user))
	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for second delete, got %d", resp.Code)
	}
	resp = testutil.DoJSON(router, "GET", "/images/"+image.ID, nil, "")
	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 after delete, got %d", resp.Code)
	}
}
