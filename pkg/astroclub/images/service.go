package images

import (
	"context"
	"mime/multipart"
	"strings"

	"github.com/mikepea/astroclub/pkg/astroclub/apperrors"
	"github.com/mikepea/astroclub/pkg/astroclub/models"
	"github.com/mikepea/astroclub/pkg/astroclub/resource"
	"github.com/mikepea/astroclub/pkg/astroclub/storage"
	"gorm.io/gorm"
)

// CreateImageRequest is sent as multipart form fields next to the image in
// "file". URL may reference an already hosted image instead of a file.
type CreateImageRequest struct {
	Title         string               `form:"title" json:"title" binding:"max=191"`
	URL           string               `form:"url" json:"url" binding:"omitempty,url"`
	Category      models.ImageCategory `form:"category" json:"category" binding:"omitempty,oneof=GROUP OBSERVATION EVENT OTHER"`
	GroupID       *string              `form:"group_id" json:"group_id"`
	ObservationID *string              `form:"observation_id" json:"observation_id"`
	EventID       *string              `form:"event_id" json:"event_id"`
}

type Service struct {
	db      *gorm.DB
	uploads *storage.Uploads
}

func NewService(db *gorm.DB, uploads *storage.Uploads) *Service {
	return &Service{db: db, uploads: uploads}
}

func (s *Service) List(ctx context.Context) ([]models.Image, error) {
	var images []models.Image
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

func (s *Service) Get(ctx context.Context, id string) (models.Image, error) {
	return resource.Get[models.Image](ctx, s.db, id, "image")
}

// ByCategory returns the images attached to one owner. GROUP, EVENT and
// OBSERVATION select by the matching owner id. Any other name returns the
// uncategorised images and ignores ownerID.
func (s *Service) ByCategory(ctx context.Context, name, ownerID string) ([]models.Image, error) {
	q := s.db.WithContext(ctx).Order("created_at")
	switch models.ImageCategory(strings.ToUpper(name)) {
	case models.ImageCategoryGroup:
		q = q.Where("group_id = ?", ownerID)
	case models.ImageCategoryEvent:
		q = q.Where("event_id = ?", ownerID)
	case models.ImageCategoryObservation:
		q = q.Where("observation_id = ?", ownerID)
	default:
		q = q.Where("category = ?", models.ImageCategoryOther)
	}

	images := []models.Image{}
	if err := q.Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

// Create stores file, or records req.URL when there is no file, as an
// image uploaded by userID
func (s *Service) Create(ctx context.Context, req CreateImageRequest, userID string, file *multipart.FileHeader) (models.Image, error) {
	if file == nil && req.URL == "" {
		return models.Image{}, apperrors.Validation("file is required")
	}
	if err := resource.ExistsIfSet[models.Group](ctx, s.db, req.GroupID, "group"); err != nil {
		return models.Image{}, err
	}
	if err := resource.ExistsIfSet[models.Observation](ctx, s.db, req.ObservationID, "observation"); err != nil {
		return models.Image{}, err
	}
	if err := resource.ExistsIfSet[models.Event](ctx, s.db, req.EventID, "event"); err != nil {
		return models.Image{}, err
	}

	image := models.Image{
		URL:           req.URL,
		Title:         req.Title,
		Category:      req.Category,
		GroupID:       nonEmpty(req.GroupID),
		ObservationID: nonEmpty(req.ObservationID),
		EventID:       nonEmpty(req.EventID),
	}
	if userID != "" {
		image.UserID = &userID
	}

	var uploaded string
	if file != nil {
		url, err := s.uploads.Save(ctx, file)
		if err != nil {
			return models.Image{}, err
		}
		uploaded = url
		image.URL = url
	}

	if err := s.db.WithContext(ctx).Create(&image).Error; err != nil {
		if uploaded != "" {
			s.uploads.RemoveAll(ctx, []string{uploaded})
		}
		return models.Image{}, apperrors.FromDB(err, "image")
	}
	return image, nil
}

// Delete removes the image row and its stored file
func (s *Service) Delete(ctx context.Context, id string) error {
	image, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := resource.Delete[models.Image](ctx, s.db, id, "image"); err != nil {
		return err
	}
	s.uploads.RemoveAll(ctx, []string{image.URL})
	return nil
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
