package groups

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/astroclub/pkg/astroclub/auth"
	"github.com/mikepea/astroclub/pkg/astroclub/models"
	"github.com/mikepea/astroclub/pkg/astroclub/testutil"
	"gorm.io/gorm"
)

func setupTestRouter(db *gorm.DB) *gin.Engine {
	r := testutil.Router()
	handler := NewHandler(NewService(db), auth.Middleware(testutil.Tokens()))
	handler.RegisterRoutes(r.Group("/groups"))
	return r
}

func createGroup(t *testing.T, router *gin.Engine, user models.User, name string) GroupResponse {
	t.Helper()
	resp := testutil.DoJSON(router, "POST", "/groups/create", CreateGroupRequest{Name: name, Description: "stargazers"}, testutil.AuthHeader(user))
	if resp.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var group GroupResponse
	testutil.Decode(t, resp, &group)
	return group
}

func TestCreateGroup(t *testing.T) {
	db := testutil.NewDB(t)
	router := setupTestRouter(db)
	user := testutil.CreateUser(t, db, "test@example.com", models.RoleUser)

	group := createGroup(t, router, user, "Deep Sky")

	if group.Name != "Deep Sky" {
		t.Errorf("Expected name Deep Sky, got %s", group.Name)
	}
	if group.Status != models.GroupStatusActive {
		t.Errorf("Expected status ACTIVE, got %s", group.Status)
	}
	if len(group.Members) != 1 || group.Members[0].Role != models.GroupRoleAdmin {
		t.Fatalf("Expected creator as the only admin member, got %+v", group.Members)
	}
	if group.Leader == nil || group.Leader.UserID != user.ID {
		t.Errorf("Expected creator to lead, got %+v", group.Leader)
	}
	if group.Leader.User == nil || group.Leader.User.Email != "test@example.com" {
		t.Error("Expected leader user to be loaded")
	}
}

func TestCreateGroupValidation(t *testing.T) {
	db := testutil.NewDB(t)
	router := setupTestRouter(db)
	user := testutil.CreateUser(t, db, "test@example.com", models.RoleUser)

	bodies := []map[string]interface{}{
		{},
		{"name": "   "},
		{"name": "x", "status": "DISSOLVED"},
		{"name": "x", "rating": 9},
	}
	for _, body := range bodies {
		resp := testutil.DoJSON(router, "POST", "/groups/create", body, testutil.AuthHeader(user))
		if resp.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400 for %v, got %d", body, resp.Code)
		}
	}

	resp := testutil.DoJSON(router, "POST", "/groups/create", CreateGroupRequest{Name: "x"}, "")
	if resp.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 without token, got %d", resp.Code)
	}

	var count int64
	db.Model(&models.Group{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected no groups, got %d", count)
	}
}

func TestCreateGroupUnknownCreator(t *testing.T) {
	db := testutil.NewDB(t)
	router := setupTestRouter(db)
	ghost := models.User{ID: "ghost", Email: "ghost@example.com", Role: models.RoleUser}

	resp := testutil.DoJSON(router, "POST", "/groups/create", CreateGroupRequest{Name: "Phantom"}, testutil.AuthHeader(ghost))
	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.Code)
	}

	var count int64
	db.Model(&models.Group{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected no group to be written, got %d", count)
	}
}

func TestGetGroup(t *testing.T) {
	db := testutil.NewDB(t)
	router := setupTestRouter(db)
	user := testutil.CreateUser(t, db, "test@example.com", models.RoleUser)
	created := createGroup(t, router, user, "Planetary")

	resp := testutil.DoJSON(router, "GET", "/groups/"+created.ID, nil, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.Code)
	}
	var got GroupResponse
	testutil.Decode(t, resp, &got)
	if got.ID != created.ID || got.Name != "Planetary" {
		t.Errorf("Expected the created group back, got %+v", got.Group)
	}

	resp = testutil.DoJSON(router, "GET", "/groups/does-not-exist", nil, "")
	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d: %s", resp.Code, resp.Body.String())
	}
	if resp.Body.String() == "null" {
		t.Error("Missing group must not return null")
	}
}

func TestListGroups(t *testing.T) {
	db := testutil.NewDB(t)
	router := setupTestRouter(db)
	user := testutil.CreateUser(t, db, "test@example.com", models.RoleUser)
	createGroup(t, router, user, "One")
	createGroup(t, router, user, "Two")

	resp := testutil.DoJSON(router, "GET", "/groups/all", nil, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.Code)
	}
	var groups []GroupResponse
	testutil.Decode(t, resp, &groups)
	if len(groups) != 2 {
		t.Errorf("Expected 2 groups, got %d", len(groups))
	}
}

func TestGetByAdmin(t *testing.T) {
	db := testutil.NewDB(t)
	router := setupTestRouter(db)
	admin := testutil.CreateUser(t, db, "admin@example.com", models.RoleUser)
	member := testutil.CreateUser(t, db, "member@example.com", models.RoleUser)
	group := createGroup(t, router, admin, "Solar Watchers")
	db.Create(&models.GroupMember{UserID: member.ID, GroupID: group.ID, Role: models.GroupRoleMember})

	resp := testutil.DoJSON(router, "GET", "/groups/admin/"+admin.ID, nil, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.Code)
	}
	var got GroupResponse
	testutil.Decode(t, resp, &got)
	if got.ID != group.ID || len(got.Members) != 2 {
		t.Errorf("Expected %s with 2 members, got %s with %d", group.ID, got.ID, len(got.Members))
	}

	resp = testutil.DoJSON(router, "GET", "/groups/admin/"+member.ID, nil, "")
	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for a plain member, got %d", resp.Code)
	}
}

func TestLeaderIsEarliestAdmin(t *testing.T) {
	db := testutil.NewDB(t)
	router := setupTestRouter(db)
	creator := testutil.CreateUser(t, db, "creator@example.com", models.RoleUser)
	veteran := testutil.CreateUser(t, db, "veteran@example.com", models.RoleUser)
	group := createGroup(t, router, creator, "Old Timers")

	db.Create(&models.GroupMember{
		UserID:   veteran.ID,
		GroupID:  group.ID,
		Role:     models.GroupRoleAdmin,
		JoinedAt: time.Now().Add(-24 * time.Hour),
	})

	resp := testutil.DoJSON(router, "GET", "/groups/"+group.ID, nil, "")
	var got GroupResponse
	testutil.Decode(t, resp, &got)
	if got.Leader == nil || got.Leader.UserID != veteran.ID {
		t.Errorf("Expected veteran to lead, got %+v", got.Leader)
	}
}

func TestUpdateGroup(t *testing.T) {
	db := testutil.NewDB(t)
	router := setupTestRouter(db)
	owner := testutil.CreateUser(t, db, "owner@example.com", models.RoleUser)
	other := testutil.CreateUser(t, db, "other@example.com", models.RoleUser)
	sysAdmin := testutil.CreateUser(t, db, "root@example.com", models.RoleAdmin)
	group := createGroup(t, router, owner, "Before")

	name := "After"
	resp := testutil.DoJSON(router, "PATCH", "/groups/update/"+group.ID, UpdateGroupRequest{Name: &name}, testutil.AuthHeader(other))
	if resp.Code != http.StatusForbidden {
		t.Errorf("Expected status 403 for non-admin, got %d", resp.Code)
	}

	resp = testutil.DoJSON(router, "PATCH", "/groups/update/"+group.ID, UpdateGroupRequest{Name: &name}, testutil.AuthHeader(owner))
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var got GroupResponse
	testutil.Decode(t, resp, &got)
	if got.Name != "After" || got.Description != "stargazers" {
		t.Errorf("Expected partial update, got %+v", got.Group)
	}

	status := models.GroupStatusArchived
	resp = testutil.DoJSON(router, "PATCH", "/groups/update/"+group.ID, UpdateGroupRequest{Status: &status}, testutil.AuthHeader(sysAdmin))
	if resp.Code != http.StatusOK {
		t.Errorf("Expected system admin to update, got %d", resp.Code)
	}

	resp = testutil.DoJSON(router, "PATCH", "/groups/update/missing", UpdateGroupRequest{Name: &name}, testutil.AuthHeader(sysAdmin))
	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.Code)
	}
}

func TestDeleteGroup(t *testing.T) {
	db := testutil.NewDB(t)
	router := setupTestRouter(db)
	owner := testutil.CreateUser(t, db, "owner@example.com", models.RoleUser)
	other := testutil.CreateUser(t, db, "other@example.com", models.RoleUser)
	group := createGroup(t, router, owner, "Doomed")
	gid := group.ID
	db.Create(&models.Image{URL: "http://x/uploads/a.png", Category: models.ImageCategoryGroup, GroupID: &gid})

	resp := testutil.DoJSON(router, "DELETE", "/groups/delete/"+group.ID, nil, testutil.AuthHeader(other))
	if resp.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", resp.Code)
	}

	resp = testutil.DoJSON(router, "DELETE", "/groups/delete/"+group.ID, nil, testutil.AuthHeader(owner))
	if resp.Code != http.StatusNoContent {
		t.Fatalf("Expected status 204, got %d: %s", resp.Code, resp.Body.String())
	}

	var members, images int64
	db.Model(&models.GroupMember{}).Count(&members)
	db.Model(&models.Image{}).Count(&images)
	if members != 0 || images != 0 {
		t.Errorf("Expected members and images to be removed, got %d and %d", members, images)
	}

	resp = testutil.DoJSON(router, "DELETE", "/groups/delete/"+group.ID, nil, testutil.AuthHeader(owner))
	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for second delete, got %d", resp.Code)
	}
}
