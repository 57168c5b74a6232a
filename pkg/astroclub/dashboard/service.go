// Package dashboard serves read-only aggregates for the club overview page
package dashboard

import (
	"context"
	"time"

	"github.com/mikepea/astroclub/pkg/astroclub/apperrors"
	"github.com/mikepea/astroclub/pkg/astroclub/models"
	"gorm.io/gorm"
)

// Window is how far back "new" reaches
const Window = 30 * 24 * time.Hour

type MemberGrowth struct {
	Total      int64 `json:"total"`
	NewMembers int64 `json:"new_members"`
}

type LatestArticles struct {
	Total    int              `json:"total"`
	Articles []models.Article `json:"articles"`
}

type Service struct {
	db  *gorm.DB
	now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// ActiveGroup returns the oldest ACTIVE group with its members
func (s *Service) ActiveGroup(ctx context.Context) (models.Group, error) {
	var group models.Group
	err := s.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("joined_at ASC") }).
		Preload("Members.User").
		Where("status = ?", models.GroupStatusActive).
		Order("created_at ASC").
		First(&group).Error
	if err != nil {
		return group, apperrors.FromDB(err, "active group")
	}
	return group, nil
}

// MemberGrowth counts all memberships and those that started within Window
func (s *Service) MemberGrowth(ctx context.Context) (MemberGrowth, error) {
	var growth MemberGrowth
	db := s.db.WithContext(ctx)
	if err := db.Model(&models.GroupMember{}).Count(&growth.Total).Error; err != nil {
		return growth, err
	}
	since := s.now().Add(-Window)
	if err := db.Model(&models.GroupMember{}).Where("joined_at >= ?", since).Count(&growth.NewMembers).Error; err != nil {
		return growth, err
	}
	return growth, nil
}

// LatestArticles returns the articles created within Window, newest first
func (s *Service) LatestArticles(ctx context.Context) (LatestArticles, error) {
	articles := []models.Article{}
	since := s.now().Add(-Window)
	err := s.db.WithContext(ctx).
		Preload("Author").
		Where("created_at >= ?", since).
		Order("created_at DESC").
		Find(&articles).Error
	if err != nil {
		return LatestArticles{}, err
	}
	return LatestArticles{Total: len(articles), Articles: articles}, nil
}
