package articles

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/astroclub/pkg/astroclub/apperrors"
	"github.com/mikepea/astroclub/pkg/astroclub/auth"
	"github.com/mikepea/astroclub/pkg/astroclub/storage"
	"github.com/mikepea/astroclub/pkg/astroclub/validation"
)

// Handler handles article requests
type Handler struct {
	svc         *Service
	requireAuth gin.HandlerFunc
}

// NewHandler creates a new articles handler. requireAuth guards the write routes.
func NewHandler(svc *Service, requireAuth gin.HandlerFunc) *Handler {
	return &Handler{svc: svc, requireAuth: requireAuth}
}

// List returns articles
// @Summary List articles
// @Tags articles
// @Produce json
// @Param category query string false "Category"
// @Param status query string false "DRAFT or PUBLISHED"
// @Param author_id query string false "Author ID"
// @Success 200 {array} models.Article
// @Router /articles [get]
func (h *Handler) List(c *gin.Context) {
	var f Filter
	if err := c.ShouldBindQuery(&f); err != nil {
		apperrors.Respond(c, validation.BindError(err))
		return
	}

	articles, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, articles)
}

// Get returns a specific article
// @Summary Get an article
// @Tags articles
// @Produce json
// @Param id path string true "Article ID"
// @Success 200 {object} models.Article
// @Failure 404 {object} map[string]string "Article not found"
// @Router /articles/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	article, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

// Create creates an article by the current user
// @Summary Create an article
// @Description Accepts JSON, or multipart form fields with an optional image in "file"
// @Tags articles
// @Accept json,mpfd
// @Produce json
// @Param request body CreateArticleRequest true "Article details"
// @Success 201 {object} models.Article
// @Failure 400 {object} map[string]string "Validation error"
// @Security BearerAuth
// @Router /articles/create [post]
func (h *Handler) Create(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req CreateArticleRequest
	if err := c.ShouldBind(&req); err != nil {
		apperrors.Respond(c, validation.BindError(err))
		return
	}
	file, err := storage.FormFile(c, "file")
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	article, err := h.svc.Create(c.Request.Context(), req, userID, file)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, article)
}

// Update updates an article (author or admin)
// @Summary Update an article
// @Tags articles
// @Accept json,mpfd
// @Produce json
// @Param id path string true "Article ID"
// @Param request body UpdateArticleRequest true "Fields to change"
// @Success 200 {object} models.Article
// @Failure 403 {object} map[string]string "Not the author"
// @Failure 404 {object} map[string]string "Article not found"
// @Security BearerAuth
// @Router /articles/update/{id} [patch]
func (h *Handler) Update(c *gin.Context) {
	identity, _ := auth.CurrentIdentity(c)

	var req UpdateArticleRequest
	if err := c.ShouldBind(&req); err != nil {
		apperrors.Respond(c, validation.BindError(err))
		return
	}
	file, err := storage.FormFile(c, "file")
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	article, err := h.svc.Update(c.Request.Context(), c.Param("id"), req, identity, file)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

// Delete deletes an article (author or admin)
// @Summary Delete an article
// @Tags articles
// @Param id path string true "Article ID"
// @Success 204
// @Failure 403 {object} map[string]string "Not the author"
// @Failure 404 {object} map[string]string "Article not found"
// @Security BearerAuth
// @Router /articles/delete/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	identity, _ := auth.CurrentIdentity(c)

	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), identity); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RegisterRoutes registers article routes on the given router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.POST("/create", h.requireAuth, h.Create)
	rg.PATCH("/update/:id", h.requireAuth, h.Update)
	rg.DELETE("/delete/:id", h.requireAuth, h.Delete)
}
