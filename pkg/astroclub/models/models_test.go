package models

import (
	"errors"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate failed: %v", err)
	}
	return db
}

func TestAutoMigrate(t *testing.T) {
	db := setupTestDB(t)

	tables := []string{"users", "groups", "group_members", "articles", "events", "observations", "images", "tasks"}
	for _, table := range tables {
		if !db.Migrator().HasTable(table) {
			t.Errorf("Expected table %s to exist", table)
		}
	}
}

func TestUserModel(t *testing.T) {
	db := setupTestDB(t)

	user := User{Email: "vega@example.com", PasswordHash: "hashed_password", FirstName: "Vega"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	if user.ID == "" {
		t.Error("Expected user ID to be set after create")
	}

	var loaded User
	db.First(&loaded, "id = ?", user.ID)
	if loaded.Role != RoleUser {
		t.Errorf("Expected default role USER, got %s", loaded.Role)
	}

	dup := User{Email: "vega@example.com", PasswordHash: "other"}
	if err := db.Create(&dup).Error; !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("Expected ErrDuplicatedKey for duplicate email, got %v", err)
	}
}

func TestPublicUserHasNoPassword(t *testing.T) {
	u := User{ID: "u1", Email: "a@b.c", PasswordHash: "secret", Role: RoleAdmin}
	p := u.Public()
	if p.ID != "u1" || p.Email != "a@b.c" || p.Role != RoleAdmin {
		t.Errorf("Unexpected projection: %+v", p)
	}
}

func TestGroupMembersAndLeader(t *testing.T) {
	db := setupTestDB(t)

	alice := User{Email: "alice@example.com"}
	bob := User{Email: "bob@example.com"}
	db.Create(&alice)
	db.Create(&bob)

	group := Group{Name: "Deep Sky"}
	if err := db.Create(&group).Error; err != nil {
		t.Fatalf("Failed to create group: %v", err)
	}
	if group.Status != GroupStatusActive {
		t.Errorf("Expected default status ACTIVE, got %s", group.Status)
	}

	early := time.Now().Add(-time.Hour)
	db.Create(&GroupMember{UserID: bob.ID, GroupID: group.ID, Role: GroupRoleAdmin})
	db.Create(&GroupMember{UserID: alice.ID, GroupID: group.ID, Role: GroupRoleAdmin, JoinedAt: early})

	if err := db.Create(&GroupMember{UserID: alice.ID, GroupID: group.ID}).Error; err == nil {
		t.Error("Expected error for duplicate membership")
	}

	var loaded Group
	db.Preload("Members").First(&loaded, "id = ?", group.ID)
	if len(loaded.Members) != 2 {
		t.Fatalf("Expected 2 members, got %d", len(loaded.Members))
	}
	leader := loaded.Leader()
	if leader == nil || leader.UserID != alice.ID {
		t.Errorf("Expected earliest admin to lead, got %+v", leader)
	}

	if (Group{}).Leader() != nil {
		t.Error("Expected no leader for a group without members")
	}
}

func TestArticleTagsRoundTrip(t *testing.T) {
	db := setupTestDB(t)

	author := User{Email: "writer@example.com"}
	db.Create(&author)

	article := Article{Title: "M31", Content: "Andromeda", AuthorID: author.ID, Tags: []string{"galaxy", "local group"}}
	if err := db.Create(&article).Error; err != nil {
		t.Fatalf("Failed to create article: %v", err)
	}

	var loaded Article
	db.Preload("Author").First(&loaded, "id = ?", article.ID)
	if len(loaded.Tags) != 2 || loaded.Tags[1] != "local group" {
		t.Errorf("Expected tags to round trip, got %v", loaded.Tags)
	}
	if loaded.Status != ArticleStatusDraft {
		t.Errorf("Expected default status DRAFT, got %s", loaded.Status)
	}
	if loaded.Author == nil || loaded.Author.Email != "writer@example.com" {
		t.Error("Expected author to be preloaded")
	}
}

func TestImageDefaultsToOther(t *testing.T) {
	db := setupTestDB(t)

	img := Image{URL: "http://localhost/uploads/x.png"}
	if err := db.Create(&img).Error; err != nil {
		t.Fatalf("Failed to create image: %v", err)
	}
	if img.Category != ImageCategoryOther {
		t.Errorf("Expected OTHER category, got %s", img.Category)
	}
}

func TestEnumValidity(t *testing.T) {
	if !RoleAdmin.Valid() || Role("ROOT").Valid() {
		t.Error("Role validity is wrong")
	}
	if !RoleAdmin.IsAdmin() || RoleMember.IsAdmin() {
		t.Error("IsAdmin is wrong")
	}
	if !CategoryBlackHoles.Valid() || Category("PLANETS").Valid() {
		t.Error("Category validity is wrong")
	}
	if !TaskStatusInProgress.Valid() || TaskStatus("DONE").Valid() {
		t.Error("TaskStatus validity is wrong")
	}
	if !ImageCategoryEvent.Valid() || ImageCategory("").Valid() {
		t.Error("ImageCategory validity is wrong")
	}
	if !MemberStatusAway.Valid() || !GroupRoleMember.Valid() || !GroupStatusPending.Valid() || !ArticleStatusPublished.Valid() {
		t.Error("Expected known values to be valid")
	}
}
