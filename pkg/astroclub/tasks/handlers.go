package tasks

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/astroclub/pkg/astroclub/apperrors"
	"github.com/mikepea/astroclub/pkg/astroclub/validation"
)

// Handler handles task requests. Authentication is applied by the caller.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// List returns tasks
// @Summary List tasks
// @Tags tasks
// @Produce json
// @Param status query string false "PENDING, IN_PROGRESS or COMPLETED"
// @Param assigned_to_id query string false "Assignee ID"
// @Success 200 {array} models.Task
// @Security BearerAuth
// @Router /tasks [get]
func (h *Handler) List(c *gin.Context) {
	var f Filter
	if err := c.ShouldBindQuery(&f); err != nil {
		apperrors.Respond(c, validation.BindError(err))
		return
	}

	tasks, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// Get returns a specific task
// @Summary Get a task
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} models.Task
// @Failure 404 {object} map[string]string "Task not found"
// @Security BearerAuth
// @Router /tasks/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	task, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Create creates a task
// @Summary Create a task
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body CreateTaskRequest true "Task details"
// @Success 201 {object} models.Task
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 404 {object} map[string]string "Assigned user not found"
// @Security BearerAuth
// @Router /tasks/create [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, validation.BindError(err))
		return
	}

	task, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// Update updates a task
// @Summary Update a task
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body UpdateTaskRequest true "Fields to change"
// @Success 200 {object} models.Task
// @Failure 404 {object} map[string]string "Task or assigned user not found"
// @Security BearerAuth
// @Router /tasks/update/{id} [patch]
func (h *Handler) Update(c *gin.Context) {
	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, validation.BindError(err))
		return
	}

	task, err := h.svc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Delete deletes a task
// @Summary Delete a task
// @Tags tasks
// @Param id path string true "Task ID"
// @Success 204
// @Failure 404 {object} map[string]string "Task not found"
// @Security BearerAuth
// @Router /tasks/delete/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RegisterRoutes registers task routes on the given router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.POST("/create", h.Create)
	rg.PATCH("/update/:id", h.Update)
	rg.DELETE("/delete/:id", h.Delete)
}
