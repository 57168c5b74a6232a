package observations

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/astroclub/pkg/astroclub/apperrors"
	"github.com/mikepea/astroclub/pkg/astroclub/auth"
	"github.com/mikepea/astroclub/pkg/astroclub/storage"
	"github.com/mikepea/astroclub/pkg/astroclub/validation"
)

// Handler handles observation requests. Authentication is applied by the caller.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// List returns observations with their images
// @Summary List observations
// @Tags observations
// @Produce json
// @Param user_id query string false "Observer ID"
// @Success 200 {array} models.Observation
// @Security BearerAuth
// @Router /observations [get]
func (h *Handler) List(c *gin.Context) {
	var f Filter
	if err := c.ShouldBindQuery(&f); err != nil {
		apperrors.Respond(c, validation.BindError(err))
		return
	}

	observations, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, observations)
}

// Get returns a specific observation
// @Summary Get an observation
// @Tags observations
// @Produce json
// @Param id path string true "Observation ID"
// @Success 200 {object} models.Observation
// @Failure 404 {object} map[string]string "Observation not found"
// @Security BearerAuth
// @Router /observations/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	obs, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, obs)
}

// Create logs an observation for the current user
// @Summary Create an observation
// @Description Multipart form with up to 10 images in "files"
// @Tags observations
// @Accept mpfd
// @Produce json
// @Param title formData string true "Title"
// @Param details formData string false "Details"
// @Param location formData string false "Location"
// @Param date formData string true "RFC 3339 date"
// @Param files formData file false "Images"
// @Success 201 {object} models.Observation
// @Failure 400 {object} map[string]string "Validation error"
// @Security BearerAuth
// @Router /observations/create [post]
func (h *Handler) Create(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req CreateObservationRequest
	if err := c.ShouldBind(&req); err != nil {
		apperrors.Respond(c, validation.BindError(err))
		return
	}
	files, err := storage.FormFiles(c, "files", MaxFiles)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	obs, err := h.svc.Create(c.Request.Context(), req, userID, files)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, obs)
}

// Update changes an observation and attaches new images
// @Summary Update an observation
// @Tags observations
// @Accept mpfd
// @Produce json
// @Param id path string true "Observation ID"
// @Param files formData file false "Additional images"
// @Success 200 {object} models.Observation
// @Failure 404 {object} map[string]string "Observation not found"
// @Security BearerAuth
// @Router /observations/update/{id} [patch]
func (h *Handler) Update(c *gin.Context) {
	var req UpdateObservationRequest
	if err := c.ShouldBind(&req); err != nil {
		apperrors.Respond(c, validation.BindError(err))
		return
	}
	files, err := storage.FormFiles(c, "files", MaxFiles)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	obs, err := h.svc.Update(c.Request.Context(), c.Param("id"), req, files)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, obs)
}

// Delete deletes an observation and its images
// @Summary Delete an observation
// @Tags observations
// @Param id path string true "Observation ID"
// @Success 204
// @Failure 404 {object} map[string]string "Observation not found"
// @Security BearerAuth
// @Router /observations/delete/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RegisterRoutes registers observation routes on the given router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.POST("/create", h.Create)
	rg.PATCH("/update/:id", h.Update)
	rg.DELETE("/delete/:id", h.Delete)
}
