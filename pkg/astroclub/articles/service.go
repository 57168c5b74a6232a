package articles

import (
	"context"
	"mime/multipart"

	"github.com/mikepea/astroclub/pkg/astroclub/apperrors"
	"github.com/mikepea/astroclub/pkg/astroclub/auth"
	"github.com/mikepea/astroclub/pkg/astroclub/events"
	"github.com/mikepea/astroclub/pkg/astroclub/models"
	"github.com/mikepea/astroclub/pkg/astroclub/resource"
	"github.com/mikepea/astroclub/pkg/astroclub/storage"
	"gorm.io/gorm"
)

// CreateArticleRequest is accepted as JSON or as multipart form fields
type CreateArticleRequest struct {
	Title    string               `json:"title" form:"title" binding:"required,notblank"`
	Content  string               `json:"content" form:"content" binding:"required,notblank"`
	Image    string               `json:"image" form:"image" binding:"omitempty,url"`
	Category models.Category      `json:"category" form:"category" binding:"omitempty,oneof=SOLAR_SYSTEM GALAXIES STARS EXOPLANETS BLACK_HOLES COSMOLOGY ASTROBIOLOGY TELESCOPES SPACE_MISSIONS"`
	Tags     []string             `json:"tags" form:"tags"`
	Status   models.ArticleStatus `json:"status" form:"status" binding:"omitempty,oneof=DRAFT PUBLISHED"`
}

// UpdateArticleRequest changes the fields present
type UpdateArticleRequest struct {
	Title    *string               `json:"title" form:"title" binding:"omitempty,notblank"`
	Content  *string               `json:"content" form:"content" binding:"omitempty,notblank"`
	Image    *string               `json:"image" form:"image" binding:"omitempty,url"`
	Category *models.Category      `json:"category" form:"category" binding:"omitempty,oneof=SOLAR_SYSTEM GALAXIES STARS EXOPLANETS BLACK_HOLES COSMOLOGY ASTROBIOLOGY TELESCOPES SPACE_MISSIONS"`
	Tags     *[]string             `json:"tags" form:"tags"`
	Status   *models.ArticleStatus `json:"status" form:"status" binding:"omitempty,oneof=DRAFT PUBLISHED"`
}

// Filter narrows List
type Filter struct {
	Category models.Category      `form:"category" binding:"omitempty,oneof=SOLAR_SYSTEM GALAXIES STARS EXOPLANETS BLACK_HOLES COSMOLOGY ASTROBIOLOGY TELESCOPES SPACE_MISSIONS"`
	Status   models.ArticleStatus `form:"status" binding:"omitempty,oneof=DRAFT PUBLISHED"`
	AuthorID string               `form:"author_id"`
}

type Service struct {
	db      *gorm.DB
	uploads *storage.Uploads
	events  events.Publisher
}

func NewService(db *gorm.DB, uploads *storage.Uploads, pub events.Publisher) *Service {
	return &Service{db: db, uploads: uploads, events: pub}
}

// List returns articles newest first, with their authors
func (s *Service) List(ctx context.Context, f Filter) ([]models.Article, error) {
	q := s.db.WithContext(ctx).Preload("Author").Order("created_at DESC")
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.AuthorID != "" {
		q = q.Where("author_id = ?", f.AuthorID)
	}

	var articles []models.Article
	if err := q.Find(&articles).Error; err != nil {
		return nil, err
	}
	return articles, nil
}

func (s *Service) Get(ctx context.Context, id string) (models.Article, error) {
	return resource.Get[models.Article](ctx, s.db, id, "article", "Author")
}

// Create stores an article written by authorID. When file is set it is
// uploaded and used as the article image.
func (s *Service) Create(ctx context.Context, req CreateArticleRequest, authorID string, file *multipart.FileHeader) (models.Article, error) {
	if err := resource.Exists[models.User](ctx, s.db, authorID, "author"); err != nil {
		return models.Article{}, err
	}

	status := req.Status
	if status == "" {
		status = models.ArticleStatusDraft
	}
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	article := models.Article{
		Title:    req.Title,
		Content:  req.Content,
		Image:    req.Image,
		Category: req.Category,
		Tags:     tags,
		Status:   status,
		AuthorID: authorID,
	}

	var uploaded string
	if file != nil {
		url, err := s.uploads.Save(ctx, file)
		if err != nil {
			return models.Article{}, err
		}
		uploaded = url
		article.Image = url
	}

	if err := s.db.WithContext(ctx).Create(&article).Error; err != nil {
		if uploaded != "" {
			s.uploads.RemoveAll(ctx, []string{uploaded})
		}
		return models.Article{}, apperrors.FromDB(err, "article")
	}

	events.Emit(ctx, s.events, events.ArticleCreated, map[string]string{
		"id":        article.ID,
		"title":     article.Title,
		"author_id": article.AuthorID,
	})
	return s.Get(ctx, article.ID)
}

// Update changes an article. Only its author or an admin may do this.
func (s *Service) Update(ctx context.Context, id string, req UpdateArticleRequest, actor auth.Identity, file *multipart.FileHeader) (models.Article, error) {
	if err := s.authorize(ctx, id, actor); err != nil {
		return models.Article{}, err
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Content != nil {
		updates["content"] = *req.Content
	}
	if req.Image != nil {
		updates["image"] = *req.Image
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}

	var uploaded string
	if file != nil {
		url, err := s.uploads.Save(ctx, file)
		if err != nil {
			return models.Article{}, err
		}
		uploaded = url
		updates["image"] = url
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&models.Article{ID: id}).Updates(updates).Error; err != nil {
				return err
			}
		}
		if req.Tags != nil {
			// serializer fields need a struct update
			article := models.Article{ID: id, Tags: *req.Tags}
			if err := tx.Model(&article).Select("tags").Updates(&article).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if uploaded != "" {
			s.uploads.RemoveAll(ctx, []string{uploaded})
		}
		return models.Article{}, apperrors.FromDB(err, "article")
	}

	return s.Get(ctx, id)
}

// Delete removes an article. Only its author or an admin may do this.
func (s *Service) Delete(ctx context.Context, id string, actor auth.Identity) error {
	if err := s.authorize(ctx, id, actor); err != nil {
		return err
	}
	return resource.Delete[models.Article](ctx, s.db, id, "article")
}

func (s *Service) authorize(ctx context.Context, id string, actor auth.Identity) error {
	var article models.Article
	if err := s.db.WithContext(ctx).Select("id", "author_id").First(&article, "id = ?", id).Error; err != nil {
		return apperrors.FromDB(err, "article")
	}
	if article.AuthorID != actor.UserID && !actor.IsAdmin() {
		return apperrors.Forbidden("Only the author can modify this article")
	}
	return nil
}
