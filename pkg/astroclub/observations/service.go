package observations

import (
	"context"
	"mime/multipart"
	"time"

	"github.com/mikepea/astroclub/pkg/astroclub/apperrors"
	"github.com/mikepea/astroclub/pkg/astroclub/events"
	"github.com/mikepea/astroclub/pkg/astroclub/models"
	"github.com/mikepea/astroclub/pkg/astroclub/resource"
	"github.com/mikepea/astroclub/pkg/astroclub/storage"
	"gorm.io/gorm"
)

// MaxFiles is the number of images accepted per request
const MaxFiles = 10

// CreateObservationRequest is sent as multipart form fields alongside the
// images in "files". JSON is accepted when there are no images.
type CreateObservationRequest struct {
	Title    string    `json:"title" form:"title" binding:"required,notblank,max=191"`
	Details  string    `json:"details" form:"details"`
	Location string    `json:"location" form:"location"`
	Date     time.Time `json:"date" form:"date" binding:"required"`
}

type UpdateObservationRequest struct {
	Title    *string    `json:"title" form:"title" binding:"omitempty,notblank,max=191"`
	Details  *string    `json:"details" form:"details"`
	Location *string    `json:"location" form:"location"`
	Date     *time.Time `json:"date" form:"date"`
}

type Filter struct {
	UserID string `form:"user_id"`
}

type Service struct {
	db      *gorm.DB
	uploads *storage.Uploads
	events  events.Publisher
}

func NewService(db *gorm.DB, uploads *storage.Uploads, pub events.Publisher) *Service {
	return &Service{db: db, uploads: uploads, events: pub}
}

func withImages(db *gorm.DB) *gorm.DB {
	return db.Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at")
	}).Preload("User")
}

func (s *Service) List(ctx context.Context, f Filter) ([]models.Observation, error) {
	q := withImages(s.db.WithContext(ctx)).Order("date DESC")
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}

	var observations []models.Observation
	if err := q.Find(&observations).Error; err != nil {
		return nil, err
	}
	return observations, nil
}

func (s *Service) Get(ctx context.Context, id string) (models.Observation, error) {
	var obs models.Observation
	if err := withImages(s.db.WithContext(ctx)).First(&obs, "id = ?", id).Error; err != nil {
		return obs, apperrors.FromDB(err, "observation")
	}
	return obs, nil
}

// Create stores an observation by userID with its images. The files are
// stored first, then the observation and its image rows are written in one
// transaction. If that fails the stored files are removed again.
func (s *Service) Create(ctx context.Context, req CreateObservationRequest, userID string, files []*multipart.FileHeader) (models.Observation, error) {
	if req.Date.IsZero() {
		return models.Observation{}, apperrors.Validation("date is required")
	}
	if err := resource.Exists[models.User](ctx, s.db, userID, "user"); err != nil {
		return models.Observation{}, err
	}

	urls, err := s.uploads.SaveAll(ctx, files)
	if err != nil {
		return models.Observation{}, err
	}

	obs := models.Observation{
		Title:    req.Title,
		Details:  req.Details,
		Location: req.Location,
		Date:     req.Date,
		UserID:   userID,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&obs).Error; err != nil {
			return err
		}
		return addImages(tx, obs.ID, urls)
	})
	if err != nil {
		s.uploads.RemoveAll(ctx, urls)
		return models.Observation{}, apperrors.FromDB(err, "observation")
	}

	events.Emit(ctx, s.events, events.ObservationCreated, map[string]interface{}{
		"id":      obs.ID,
		"user_id": userID,
		"images":  len(urls),
	})
	return s.Get(ctx, obs.ID)
}

// Update changes the fields present and attaches any new images
func (s *Service) Update(ctx context.Context, id string, req UpdateObservationRequest, files []*multipart.FileHeader) (models.Observation, error) {
	if err := resource.Exists[models.Observation](ctx, s.db, id, "observation"); err != nil {
		return models.Observation{}, err
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Details != nil {
		updates["details"] = *req.Details
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.Date != nil {
		updates["date"] = *req.Date
	}

	urls, err := s.uploads.SaveAll(ctx, files)
	if err != nil {
		return models.Observation{}, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&models.Observation{ID: id}).Updates(updates).Error; err != nil {
				return err
			}
		}
		return addImages(tx, id, urls)
	})
	if err != nil {
		s.uploads.RemoveAll(ctx, urls)
		return models.Observation{}, apperrors.FromDB(err, "observation")
	}
	return s.Get(ctx, id)
}

// Delete removes an observation, its image rows and the stored files
func (s *Service) Delete(ctx context.Context, id string) error {
	var urls []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Image{}).Where("observation_id = ?", id).Pluck("url", &urls).Error; err != nil {
			return err
		}
		if err := tx.Where("observation_id = ?", id).Delete(&models.Image{}).Error; err != nil {
			return err
		}
		return resource.Delete[models.Observation](ctx, tx, id, "observation")
	})
	if err != nil {
		return err
	}

	s.uploads.RemoveAll(ctx, urls)
	return nil
}

func addImages(tx *gorm.DB, observationID string, urls []string) error {
	if len(urls) == 0 {
		return nil
	}
	images := make([]models.Image, 0, len(urls))
	for _, url := range urls {
		id := observationID
		images = append(images, models.Image{
			URL:           url,
			Category:      models.ImageCategoryObservation,
			ObservationID: &id,
		})
	}
	return tx.Create(&images).Error
}
