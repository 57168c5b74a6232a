package groups

import (
	"context"

	"github.com/mikepea/astroclub/pkg/astroclub/apperrors"
	"github.com/mikepea/astroclub/pkg/astroclub/auth"
	"github.com/mikepea/astroclub/pkg/astroclub/models"
	"github.com/mikepea/astroclub/pkg/astroclub/resource"
	"gorm.io/gorm"
)

// CreateGroupRequest represents the request to create a group
type CreateGroupRequest struct {
	Name        string             `json:"name" binding:"required,notblank,max=191"`
	Description string             `json:"description"`
	Image       string             `json:"image"`
	Status      models.GroupStatus `json:"status" binding:"omitempty,oneof=ACTIVE INACTIVE ARCHIVED PENDING"`
	Rating      float64            `json:"rating" binding:"min=0,max=5"`
}

// UpdateGroupRequest represents the request to update a group.
// Only the fields present are changed.
type UpdateGroupRequest struct {
	Name        *string             `json:"name" binding:"omitempty,notblank,max=191"`
	Description *string             `json:"description"`
	Image       *string             `json:"image"`
	Status      *models.GroupStatus `json:"status" binding:"omitempty,oneof=ACTIVE INACTIVE ARCHIVED PENDING"`
	Rating      *float64            `json:"rating" binding:"omitempty,min=0,max=5"`
}

// GroupResponse is a group with its members and current leader
type GroupResponse struct {
	models.Group
	Leader *models.GroupMember `json:"leader"`
}

func newResponse(g models.Group) GroupResponse {
	return GroupResponse{Group: g, Leader: g.Leader()}
}

// Service owns every change to groups
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func withMembers(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("joined_at ASC") }).
		Preload("Members.User")
}

// List returns every group with its members
func (s *Service) List(ctx context.Context) ([]GroupResponse, error) {
	var groups []models.Group
	if err := withMembers(s.db.WithContext(ctx)).Order("created_at ASC").Find(&groups).Error; err != nil {
		return nil, err
	}

	out := make([]GroupResponse, len(groups))
	for i, g := range groups {
		out[i] = newResponse(g)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (GroupResponse, error) {
	var group models.Group
	if err := withMembers(s.db.WithContext(ctx)).First(&group, "id = ?", id).Error; err != nil {
		return GroupResponse{}, apperrors.FromDB(err, "group")
	}
	return newResponse(group), nil
}

// GetByAdmin returns the first group in which userID is an ADMIN member
func (s *Service) GetByAdmin(ctx context.Context, userID string) (GroupResponse, error) {
	var group models.Group
	err := withMembers(s.db.WithContext(ctx)).
		Where("id IN (?)", s.db.Model(&models.GroupMember{}).
			Select("group_id").
			Where("user_id = ? AND role = ?", userID, models.GroupRoleAdmin)).
		Order("created_at ASC").
		First(&group).Error
	if err != nil {
		return GroupResponse{}, apperrors.FromDB(err, "group")
	}
	return newResponse(group), nil
}

// Create stores a group and makes creatorID its ADMIN member
func (s *Service) Create(ctx context.Context, req CreateGroupRequest, creatorID string) (GroupResponse, error) {
	status := req.Status
	if status == "" {
		status = models.GroupStatusActive
	}

	group := models.Group{
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
		Status:      status,
		Rating:      req.Rating,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := resource.Exists[models.User](ctx, tx, creatorID, "user"); err != nil {
			return err
		}
		if err := tx.Create(&group).Error; err != nil {
			return err
		}

		membership := models.GroupMember{
			UserID:  creatorID,
			GroupID: group.ID,
			Role:    models.GroupRoleAdmin,
			Status:  models.MemberStatusOnline,
		}
		return tx.Create(&membership).Error
	})
	if err != nil {
		return GroupResponse{}, err
	}

	return s.Get(ctx, group.ID)
}

// Update changes the fields present in req. Only group admins and system
// admins may do this.
func (s *Service) Update(ctx context.Context, id string, req UpdateGroupRequest, actor auth.Identity) (GroupResponse, error) {
	if err := s.authorize(ctx, id, actor); err != nil {
		return GroupResponse{}, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Image != nil {
		updates["image"] = *req.Image
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.Rating != nil {
		updates["rating"] = *req.Rating
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&models.Group{ID: id}).Updates(updates).Error; err != nil {
			return GroupResponse{}, apperrors.FromDB(err, "group")
		}
	}

	return s.Get(ctx, id)
}

// Delete removes a group together with its members and images
func (s *Service) Delete(ctx context.Context, id string, actor auth.Identity) error {
	if err := s.authorize(ctx, id, actor); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", id).Delete(&models.Image{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", id).Delete(&models.GroupMember{}).Error; err != nil {
			return err
		}
		return resource.Delete[models.Group](ctx, tx, id, "group")
	})
}

// authorize checks that the group exists and actor may manage it
func (s *Service) authorize(ctx context.Context, groupID string, actor auth.Identity) error {
	db := s.db.WithContext(ctx)
	if err := resource.Exists[models.Group](ctx, db, groupID, "group"); err != nil {
		return err
	}
	if actor.IsAdmin() {
		return nil
	}

	var count int64
	err := db.Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ? AND role = ?", groupID, actor.UserID, models.GroupRoleAdmin).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return apperrors.Forbidden("Only group admins can modify this group")
	}
	return nil
}
