package users

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"

	"github.com/mikepea/astroclub/pkg/astroclub/apperrors"
	"github.com/mikepea/astroclub/pkg/astroclub/auth"
	"github.com/mikepea/astroclub/pkg/astroclub/models"
	"github.com/mikepea/astroclub/pkg/astroclub/resource"
	"github.com/mikepea/astroclub/pkg/astroclub/storage"
	"gorm.io/gorm"
)

// UpdateProfileRequest is sent as JSON or multipart, with an optional
// avatar image in "file"
type UpdateProfileRequest struct {
	Email     *string `json:"email" form:"email" binding:"omitempty,email"`
	FirstName *string `json:"first_name" form:"first_name" binding:"omitempty,max=100"`
	LastName  *string `json:"last_name" form:"last_name" binding:"omitempty,max=100"`
}

type UpdateRoleRequest struct {
	Role models.Role `json:"role" binding:"required,oneof=ADMIN MEMBER GUEST USER"`
}

type Service struct {
	db      *gorm.DB
	uploads *storage.Uploads
}

func NewService(db *gorm.DB, uploads *storage.Uploads) *Service {
	return &Service{db: db, uploads: uploads}
}

func (s *Service) List(ctx context.Context) ([]models.PublicUser, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("created_at").Find(&users).Error; err != nil {
		return nil, err
	}

	out := make([]models.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (models.PublicUser, error) {
	user, err := resource.Get[models.User](ctx, s.db, id, "user")
	if err != nil {
		return models.PublicUser{}, err
	}
	return user.Public(), nil
}

// UpdateProfile changes the caller's own profile. A new avatar replaces
// the stored one.
func (s *Service) UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest, avatar *multipart.FileHeader) (models.PublicUser, error) {
	user, err := resource.Get[models.User](ctx, s.db, id, "user")
	if err != nil {
		return models.PublicUser{}, err
	}

	oldAvatar := user.Avatar
	updates := map[string]interface{}{}
	if req.Email != nil {
		updates["email"] = auth.NormalizeEmail(*req.Email)
	}
	if req.FirstName != nil {
		updates["first_name"] = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		updates["last_name"] = strings.TrimSpace(*req.LastName)
	}

	var uploaded string
	if avatar != nil {
		url, err := s.uploads.Save(ctx, avatar)
		if err != nil {
			return models.PublicUser{}, err
		}
		uploaded = url
		updates["avatar"] = url
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
			if uploaded != "" {
				s.uploads.RemoveAll(ctx, []string{uploaded})
			}
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return models.PublicUser{}, apperrors.Conflict("Email already exists")
			}
			return models.PublicUser{}, apperrors.FromDB(err, "user")
		}
	}

	if uploaded != "" && oldAvatar != "" {
		s.uploads.RemoveAll(ctx, []string{oldAvatar})
	}
	return s.Get(ctx, id)
}

// SetRole changes a user's system role
func (s *Service) SetRole(ctx context.Context, id string, role models.Role) (models.PublicUser, error) {
	if !role.Valid() {
		return models.PublicUser{}, apperrors.Validation("unknown role %q", role)
	}
	if err := resource.Exists[models.User](ctx, s.db, id, "user"); err != nil {
		return models.PublicUser{}, err
	}
	if err := s.db.WithContext(ctx).Model(&models.User{ID: id}).Update("role", role).Error; err != nil {
		return models.PublicUser{}, apperrors.FromDB(err, "user")
	}
	return s.Get(ctx, id)
}
