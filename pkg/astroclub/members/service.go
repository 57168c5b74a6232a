package members

import (
	"context"

	"github.com/mikepea/astroclub/pkg/astroclub/apperrors"
	"github.com/mikepea/astroclub/pkg/astroclub/auth"
	"github.com/mikepea/astroclub/pkg/astroclub/events"
	"github.com/mikepea/astroclub/pkg/astroclub/models"
	"github.com/mikepea/astroclub/pkg/astroclub/resource"
	"gorm.io/gorm"
)

// CreateMemberRequest adds a user to a group
type CreateMemberRequest struct {
	UserID  string              `json:"user_id" binding:"required,notblank"`
	GroupID string              `json:"group_id" binding:"required,notblank"`
	Role    models.GroupRole    `json:"role" binding:"omitempty,oneof=ADMIN MEMBER"`
	Status  models.MemberStatus `json:"status" binding:"omitempty,oneof=ONLINE OFFLINE AWAY BUSY"`
}

// UpdateMemberRequest changes a membership. Only the fields present are changed.
type UpdateMemberRequest struct {
	Role   *models.GroupRole    `json:"role" binding:"omitempty,oneof=ADMIN MEMBER"`
	Status *models.MemberStatus `json:"status" binding:"omitempty,oneof=ONLINE OFFLINE AWAY BUSY"`
}

// Filter narrows List. Empty fields match everything.
type Filter struct {
	GroupID string `form:"group_id"`
	UserID  string `form:"user_id"`
}

type Service struct {
	db     *gorm.DB
	events events.Publisher
}

func NewService(db *gorm.DB, pub events.Publisher) *Service {
	return &Service{db: db, events: pub}
}

// Create adds a membership. Both the user and the group must exist.
// Anyone may join a group themselves as a plain member. Adding other users
// or granting ADMIN needs a group admin or a system admin.
func (s *Service) Create(ctx context.Context, req CreateMemberRequest, actor auth.Identity) (models.GroupMember, error) {
	role := req.Role
	if role == "" {
		role = models.GroupRoleMember
	}
	status := req.Status
	if status == "" {
		status = models.MemberStatusOffline
	}

	member := models.GroupMember{
		UserID:  req.UserID,
		GroupID: req.GroupID,
		Role:    role,
		Status:  status,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := resource.Exists[models.User](ctx, tx, req.UserID, "user"); err != nil {
			return err
		}
		if err := resource.Exists[models.Group](ctx, tx, req.GroupID, "group"); err != nil {
			return err
		}
		if req.UserID != actor.UserID || role != models.GroupRoleMember {
			if err := authorize(ctx, tx, req.GroupID, actor); err != nil {
				return err
			}
		}

		var existing int64
		if err := tx.Model(&models.GroupMember{}).
			Where("user_id = ? AND group_id = ?", req.UserID, req.GroupID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return apperrors.Conflict("User is already a member of this group")
		}

		if err := tx.Create(&member).Error; err != nil {
			return apperrors.FromDB(err, "member")
		}
		return nil
	})
	if err != nil {
		return models.GroupMember{}, err
	}

	events.Emit(ctx, s.events, events.MemberJoined, member)
	return s.Get(ctx, member.ID)
}

func (s *Service) List(ctx context.Context, f Filter) ([]models.GroupMember, error) {
	q := s.db.WithContext(ctx).Preload("User").Order("joined_at ASC")
	if f.GroupID != "" {
		q = q.Where("group_id = ?", f.GroupID)
	}
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}

	var members []models.GroupMember
	if err := q.Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (s *Service) Get(ctx context.Context, id string) (models.GroupMember, error) {
	return resource.Get[models.GroupMember](ctx, s.db, id, "member", "User")
}

// Update changes a membership. Members may change their own status, anything
// else needs a group admin.
func (s *Service) Update(ctx context.Context, id string, req UpdateMemberRequest, actor auth.Identity) (models.GroupMember, error) {
	db := s.db.WithContext(ctx)
	member, err := resource.Get[models.GroupMember](ctx, db, id, "member")
	if err != nil {
		return models.GroupMember{}, err
	}
	if member.UserID != actor.UserID || req.Role != nil {
		if err := authorize(ctx, db, member.GroupID, actor); err != nil {
			return models.GroupMember{}, err
		}
	}

	updates := map[string]interface{}{}
	if req.Role != nil {
		updates["role"] = *req.Role
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if len(updates) > 0 {
		if err := db.Model(&models.GroupMember{ID: id}).Updates(updates).Error; err != nil {
			return models.GroupMember{}, apperrors.FromDB(err, "member")
		}
	}

	return s.Get(ctx, id)
}

// Delete removes a membership. Members may leave on their own.
func (s *Service) Delete(ctx context.Context, id string, actor auth.Identity) error {
	db := s.db.WithContext(ctx)
	member, err := resource.Get[models.GroupMember](ctx, db, id, "member")
	if err != nil {
		return err
	}
	if member.UserID != actor.UserID {
		if err := authorize(ctx, db, member.GroupID, actor); err != nil {
			return err
		}
	}
	return resource.Delete[models.GroupMember](ctx, db, id, "member")
}

// authorize passes system admins and ADMIN members of the group
func authorize(ctx context.Context, db *gorm.DB, groupID string, actor auth.Identity) error {
	if actor.IsAdmin() {
		return nil
	}

	var count int64
	err := db.WithContext(ctx).Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ? AND role = ?", groupID, actor.UserID, models.GroupRoleAdmin).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return apperrors.Forbidden("Only group admins can manage members of this group")
	}
	return nil
}
