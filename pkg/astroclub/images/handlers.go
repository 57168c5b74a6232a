package images

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/astroclub/pkg/astroclub/apperrors"
	"github.com/mikepea/astroclub/pkg/astroclub/auth"
	"github.com/mikepea/astroclub/pkg/astroclub/storage"
	"github.com/mikepea/astroclub/pkg/astroclub/validation"
)

// Handler handles image requests
type Handler struct {
	svc         *Service
	requireAuth gin.HandlerFunc
}

// NewHandler creates a new images handler. requireAuth guards the write routes.
func NewHandler(svc *Service, requireAuth gin.HandlerFunc) *Handler {
	return &Handler{svc: svc, requireAuth: requireAuth}
}

// List returns all images
// @Summary List images
// @Tags images
// @Produce json
// @Success 200 {array} models.Image
// @Router /images [get]
func (h *Handler) List(c *gin.Context) {
	images, err := h.svc.List(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, images)
}

// Get returns a specific image
// @Summary Get an image
// @Tags images
// @Produce json
// @Param id path string true "Image ID"
// @Success 200 {object} models.Image
// @Failure 404 {object} map[string]string "Image not found"
// @Router /images/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	image, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, image)
}

// ByCategory returns the images of one group, event or observation
// @Summary List images by owner
// @Description GROUP, EVENT and OBSERVATION select by owner id. Any other category returns OTHER images.
// @Tags images
// @Produce json
// @Param categoryName path string true "GROUP, EVENT, OBSERVATION or OTHER"
// @Param categoryId path string true "Owner ID"
// @Success 200 {array} models.Image
// @Router /images/category/{categoryName}/{categoryId} [get]
func (h *Handler) ByCategory(c *gin.Context) {
	images, err := h.svc.ByCategory(c.Request.Context(), c.Param("categoryName"), c.Param("categoryId"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, images)
}

// Create uploads an image
// @Summary Upload an image
// @Tags images
// @Accept mpfd
// @Produce json
// @Param file formData file true "Image"
// @Param category formData string false "GROUP, OBSERVATION, EVENT or OTHER"
// @Param group_id formData string false "Group ID"
// @Param observation_id formData string false "Observation ID"
// @Param event_id formData string false "Event ID"
// @Success 201 {object} models.Image
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 404 {object} map[string]string "Owner not found"
// @Security BearerAuth
// @Router /images/create [post]
func (h *Handler) Create(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req CreateImageRequest
	if err := c.ShouldBind(&req); err != nil {
		apperrors.Respond(c, validation.BindError(err))
		return
	}
	file, err := storage.FormFile(c, "file")
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	image, err := h.svc.Create(c.Request.Context(), req, userID, file)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, image)
}

// Delete deletes an image and its stored file
// @Summary Delete an image
// @Tags images
// @Param id path string true "Image ID"
// @Success 204
// @Failure 404 {object} map[string]string "Image not found"
// @Security BearerAuth
// @Router /images/delete/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RegisterRoutes registers image routes on the given router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/category/:categoryName/:categoryId", h.ByCategory)
	rg.GET("/:id", h.Get)
	rg.POST("/create", h.requireAuth, h.Create)
	rg.DELETE("/delete/:id", h.requireAuth, h.Delete)
}
