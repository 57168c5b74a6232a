package users

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/astroclub/pkg/astroclub/auth"
	"github.com/mikepea/astroclub/pkg/astroclub/models"
	"github.com/mikepea/astroclub/pkg/astroclub/testutil"
	"gorm.io/gorm"
)

func setupTestRouter(t *testing.T, db *gorm.DB) (*gin.Engine, string) {
	uploads, dir := testutil.Uploads(t)
	r := testutil.Router()
	rg := r.Group("/users", auth.Middleware(testutil.Tokens()))
	NewHandler(NewService(db, uploads), auth.RequireAdmin()).RegisterRoutes(rg)
	return r, dir
}

func TestListUsersHidesPasswords(t *testing.T) {
	db := testutil.NewDB(t)
	router, _ := setupTestRouter(t, db)
	user := testutil.CreateUser(t, db, "one@example.com", models.RoleUser)
	testutil.CreateUser(t, db, "two@example.com", models.RoleMember)

	resp := testutil.DoJSON(router, "GET", "/users", nil, testutil.AuthHeader(user))
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.Code)
	}
	if strings.Contains(strings.ToLower(resp.Body.String()), "password") {
		t.Errorf("Expected no password fields, got %s", resp.Body.String())
	}
	var users []models.PublicUser
	testutil.Decode(t, resp, &users)
	if len(users) != 2 {
		t.Errorf("Expected 2 users, got %d", len(users))
	}

	resp = testutil.DoJSON(router, "GET", "/users", nil, "")
	if resp.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 without token, got %d", resp.Code)
	}
}

func TestMe(t *testing.T) {
	db := testutil.NewDB(t)
	router, _ := setupTestRouter(t, db)
	user := testutil.CreateUser(t, db, "me@example.com", models.RoleMember)

	resp := testutil.DoJSON(router, "GET", "/users/me", nil, testutil.AuthHeader(user))
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.Code)
	}
	var me models.PublicUser
	testutil.Decode(t, resp, &me)
	if me.ID != user.ID || me.Email != "me@example.com" || me.Role != models.RoleMember {
		t.Errorf("Unexpected profile: %+v", me)
	}

	ghost := models.User{ID: "00000000-0000-0000-0000-000000000000", Email: "ghost@example.com", Role: models.RoleUser}
	resp = testutil.DoJSON(router, "GET", "/users/me", nil, testutil.AuthHeader(ghost))
	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for a deleted user, got %d", resp.Code)
	}
}

func TestUpdateProfile(t *testing.T) {
	db := testutil.NewDB(t)
	router, dir := setupTestRouter(t, db)
	user := testutil.CreateUser(t, db, "me@example.com", models.RoleMember)
	testutil.CreateUser(t, db, "taken@example.com", models.RoleMember)
	header := testutil.AuthHeader(user)
	avatar := []testutil.File{{Field: "file", Name: "me.png", Content: testutil.PNG}}

	resp := testutil.DoMultipart(router, "PATCH", "/users/update", map[string]string{"first_name": "Vera"}, avatar, header)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var updated models.PublicUser
	testutil.Decode(t, resp, &updated)
	if updated.FirstName != "Vera" || updated.LastName != "User" {
		t.Errorf("Expected only first name to change, got %+v", updated)
	}
	if !strings.HasPrefix(updated.Avatar, "http://localhost:3000/uploads/") {
		t.Errorf("Expected avatar URL, got %q", updated.Avatar)
	}

	resp = testutil.DoMultipart(router, "PATCH", "/users/update", nil, avatar, header)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.Code)
	}
	if n := testutil.CountFiles(t, dir); n != 1 {
		t.Errorf("Expected the old avatar to be replaced, got %d files", n)
	}

	resp = testutil.DoJSON(router, "PATCH", "/users/update", map[string]string{"email": "Taken@Example.com"}, header)
	if resp.Code != http.StatusForbidden {
		t.Errorf("Expected status 403 for a taken email, got %d", resp.Code)
	}

	resp = testutil.DoJSON(router, "PATCH", "/users/update", map[string]string{"email": "not-an-email"}, header)
	if resp.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for an invalid email, got %d", resp.Code)
	}
}

func TestUpdateRole(t *testing.T) {
	db := testutil.NewDB(t)
	router, _ := setupTestRouter(t, db)
	admin := testutil.CreateUser(t, db, "admin@example.com", models.RoleAdmin)
	user := testutil.CreateUser(t, db, "user@example.com", models.RoleUser)

	resp := testutil.DoJSON(router, "PATCH", "/users/"+user.ID+"/role", UpdateRoleRequest{Role: models.RoleAdmin}, testutil.AuthHeader(user))
	if resp.Code != http.StatusForbidden {
		t.Errorf("Expected status 403 for a non-admin, got %d", resp.Code)
	}

	resp = testutil.DoJSON(router, "PATCH", "/users/"+user.ID+"/role", UpdateRoleRequest{Role: models.RoleMember}, testutil.AuthHeader(admin))
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var updated models.PublicUser
	testutil.Decode(t, resp, &updated)
	if updated.Role != models.RoleMember {
		t.Errorf("Expected role MEMBER, got %s", updated.Role)
	}

	resp = testutil.DoJSON(router, "PATCH", "/users/"+user.ID+"/role", map[string]string{"role": "OWNER"}, testutil.AuthHeader(admin))
	if resp.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for unknown role, got %d", resp.Code)
	}

	resp = testutil.DoJSON(router, "PATCH", "/users/missing/role", UpdateRoleRequest{Role: models.RoleGuest}, testutil.AuthHeader(admin))
	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.Code)
	}
}
