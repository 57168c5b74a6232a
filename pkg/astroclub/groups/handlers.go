package groups

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/astroclub/pkg/astroclub/apperrors"
	"github.com/mikepea/astroclub/pkg/astroclub/auth"
	"github.com/mikepea/astroclub/pkg/astroclub/validation"
)

// Handler handles group-related requests
type Handler struct {
	svc         *Service
	requireAuth gin.HandlerFunc
}

// NewHandler creates a new groups handler. requireAuth guards the write routes.
func NewHandler(svc *Service, requireAuth gin.HandlerFunc) *Handler {
	return &Handler{svc: svc, requireAuth: requireAuth}
}

// List returns all groups
// @Summary List groups
// @Description Get all groups with their members and leader
// @Tags groups
// @Produce json
// @Success 200 {array} GroupResponse
// @Router /groups/all [get]
func (h *Handler) List(c *gin.Context) {
	groups, err := h.svc.List(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

// Get returns a specific group
// @Summary Get a group
// @Tags groups
// @Produce json
// @Param id path string true "Group ID"
// @Success 200 {object} GroupResponse
// @Failure 404 {object} map[string]string "Group not found"
// @Router /groups/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	group, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

// GetByAdmin returns the group administered by a user
// @Summary Get a user's group
// @Description Get the group in which the given user is an ADMIN member
// @Tags groups
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} GroupResponse
// @Failure 404 {object} map[string]string "Group not found"
// @Router /groups/admin/{id} [get]
func (h *Handler) GetByAdmin(c *gin.Context) {
	group, err := h.svc.GetByAdmin(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

// Create creates a new group and adds the creator as admin
// @Summary Create a group
// @Tags groups
// @Accept json
// @Produce json
// @Param request body CreateGroupRequest true "Group details"
// @Success 201 {object} GroupResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Security BearerAuth
// @Router /groups/create [post]
func (h *Handler) Create(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, validation.BindError(err))
		return
	}

	group, err := h.svc.Create(c.Request.Context(), req, userID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, group)
}

// Update updates a group (group admin only)
// @Summary Update a group
// @Tags groups
// @Accept json
// @Produce json
// @Param id path string true "Group ID"
// @Param request body UpdateGroupRequest true "Fields to change"
// @Success 200 {object} GroupResponse
// @Failure 403 {object} map[string]string "Not a group admin"
// @Failure 404 {object} map[string]string "Group not found"
// @Security BearerAuth
// @Router /groups/update/{id} [patch]
func (h *Handler) Update(c *gin.Context) {
	identity, _ := auth.CurrentIdentity(c)

	var req UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, validation.BindError(err))
		return
	}

	group, err := h.svc.Update(c.Request.Context(), c.Param("id"), req, identity)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

// Delete deletes a group (group admin only)
// @Summary Delete a group
// @Tags groups
// @Param id path string true "Group ID"
// @Success 204
// @Failure 403 {object} map[string]string "Not a group admin"
// @Failure 404 {object} map[string]string "Group not found"
// @Security BearerAuth
// @Router /groups/delete/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	identity, _ := auth.CurrentIdentity(c)

	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), identity); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RegisterRoutes registers group routes on the given router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/all", h.List)
	rg.GET("/admin/:id", h.GetByAdmin)
	rg.GET("/:id", h.Get)
	rg.POST("/create", h.requireAuth, h.Create)
	rg.PATCH("/update/:id", h.requireAuth, h.Update)
	rg.DELETE("/delete/:id", h.requireAuth, h.Delete)
}
