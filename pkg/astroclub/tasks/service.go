package tasks

import (
	"context"

	"github.com/mikepea/astroclub/pkg/astroclub/apperrors"
	"github.com/mikepea/astroclub/pkg/astroclub/models"
	"github.com/mikepea/astroclub/pkg/astroclub/resource"
	"gorm.io/gorm"
)

type CreateTaskRequest struct {
	Title        string            `json:"title" binding:"required,notblank,max=191"`
	Description  string            `json:"description"`
	Status       models.TaskStatus `json:"status" binding:"omitempty,oneof=PENDING IN_PROGRESS COMPLETED"`
	AssignedToID *string           `json:"assigned_to_id"`
}

// UpdateTaskRequest changes the fields present. An empty assigned_to_id
// unassigns the task.
type UpdateTaskRequest struct {
	Title        *string            `json:"title" binding:"omitempty,notblank,max=191"`
	Description  *string            `json:"description"`
	Status       *models.TaskStatus `json:"status" binding:"omitempty,oneof=PENDING IN_PROGRESS COMPLETED"`
	AssignedToID *string            `json:"assigned_to_id"`
}

type Filter struct {
	Status       models.TaskStatus `form:"status" binding:"omitempty,oneof=PENDING IN_PROGRESS COMPLETED"`
	AssignedToID string            `form:"assigned_to_id"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) List(ctx context.Context, f Filter) ([]models.Task, error) {
	q := s.db.WithContext(ctx).Preload("AssignedTo").Order("created_at")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.AssignedToID != "" {
		q = q.Where("assigned_to_id = ?", f.AssignedToID)
	}

	var tasks []models.Task
	if err := q.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *Service) Get(ctx context.Context, id string) (models.Task, error) {
	return resource.Get[models.Task](ctx, s.db, id, "task", "AssignedTo")
}

func (s *Service) Create(ctx context.Context, req CreateTaskRequest) (models.Task, error) {
	if err := resource.ExistsIfSet[models.User](ctx, s.db, req.AssignedToID, "assigned user"); err != nil {
		return models.Task{}, err
	}

	status := req.Status
	if status == "" {
		status = models.TaskStatusPending
	}
	task := models.Task{
		Title:        req.Title,
		Description:  req.Description,
		Status:       status,
		AssignedToID: nonEmpty(req.AssignedToID),
	}
	if err := s.db.WithContext(ctx).Create(&task).Error; err != nil {
		return models.Task{}, apperrors.FromDB(err, "task")
	}
	return s.Get(ctx, task.ID)
}

func (s *Service) Update(ctx context.Context, id string, req UpdateTaskRequest) (models.Task, error) {
	if err := resource.Exists[models.Task](ctx, s.db, id, "task"); err != nil {
		return models.Task{}, err
	}
	if err := resource.ExistsIfSet[models.User](ctx, s.db, req.AssignedToID, "assigned user"); err != nil {
		return models.Task{}, err
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.AssignedToID != nil {
		updates["assigned_to_id"] = nonEmpty(req.AssignedToID)
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&models.Task{ID: id}).Updates(updates).Error; err != nil {
			return models.Task{}, apperrors.FromDB(err, "task")
		}
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return resource.Delete[models.Task](ctx, s.db, id, "task")
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
