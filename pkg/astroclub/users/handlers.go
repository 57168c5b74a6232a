package users

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/astroclub/pkg/astroclub/apperrors"
	"github.com/mikepea/astroclub/pkg/astroclub/auth"
	"github.com/mikepea/astroclub/pkg/astroclub/storage"
	"github.com/mikepea/astroclub/pkg/astroclub/validation"
)

// Handler handles user profile requests. Authentication is applied by the caller.
type Handler struct {
	svc          *Service
	requireAdmin gin.HandlerFunc
}

func NewHandler(svc *Service, requireAdmin gin.HandlerFunc) *Handler {
	return &Handler{svc: svc, requireAdmin: requireAdmin}
}

// List returns all users
// @Summary List users
// @Tags users
// @Produce json
// @Success 200 {array} models.PublicUser
// @Security BearerAuth
// @Router /users [get]
func (h *Handler) List(c *gin.Context) {
	users, err := h.svc.List(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// Me returns the current user's profile
// @Summary Get own profile
// @Tags users
// @Produce json
// @Success 200 {object} models.PublicUser
// @Failure 404 {object} map[string]string "User not found"
// @Security BearerAuth
// @Router /users/me [get]
func (h *Handler) Me(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	user, err := h.svc.Get(c.Request.Context(), userID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Update changes the current user's profile
// @Summary Update own profile
// @Tags users
// @Accept json,mpfd
// @Produce json
// @Param request body UpdateProfileRequest true "Fields to change"
// @Success 200 {object} models.PublicUser
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 403 {object} map[string]string "Email already exists"
// @Security BearerAuth
// @Router /users/update [patch]
func (h *Handler) Update(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req UpdateProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		apperrors.Respond(c, validation.BindError(err))
		return
	}
	avatar, err := storage.FormFile(c, "file")
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	user, err := h.svc.UpdateProfile(c.Request.Context(), userID, req, avatar)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateRole changes a user's system role (admin only)
// @Summary Change a user's role
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body UpdateRoleRequest true "New role"
// @Success 200 {object} models.PublicUser
// @Failure 403 {object} map[string]string "Admins only"
// @Failure 404 {object} map[string]string "User not found"
// @Security BearerAuth
// @Router /users/{id}/role [patch]
func (h *Handler) UpdateRole(c *gin.Context) {
	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, validation.BindError(err))
		return
	}

	user, err := h.svc.SetRole(c.Request.Context(), c.Param("id"), req.Role)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// RegisterRoutes registers user routes on the given router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/me", h.Me)
	rg.PATCH("/update", h.Update)
	rg.PATCH("/:id/role", h.requireAdmin, h.UpdateRole)
}
