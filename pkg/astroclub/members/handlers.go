package members

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/astroclub/pkg/astroclub/apperrors"
	"github.com/mikepea/astroclub/pkg/astroclub/auth"
	"github.com/mikepea/astroclub/pkg/astroclub/validation"
)

// Handler handles group membership requests
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Create adds a user to a group
// @Summary Add a member
// @Tags members
// @Accept json
// @Produce json
// @Param request body CreateMemberRequest true "Membership"
// @Success 201 {object} models.GroupMember
// @Failure 403 {object} map[string]string "Already a member or not a group admin"
// @Failure 404 {object} map[string]string "User or group not found"
// @Security BearerAuth
// @Router /members/create [post]
func (h *Handler) Create(c *gin.Context) {
	identity, _ := auth.CurrentIdentity(c)

	var req CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, validation.BindError(err))
		return
	}

	member, err := h.svc.Create(c.Request.Context(), req, identity)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

// List returns memberships, optionally filtered by group_id or user_id
// @Summary List members
// @Tags members
// @Produce json
// @Param group_id query string false "Group ID"
// @Param user_id query string false "User ID"
// @Success 200 {array} models.GroupMember
// @Security BearerAuth
// @Router /members [get]
func (h *Handler) List(c *gin.Context) {
	var f Filter
	if err := c.ShouldBindQuery(&f); err != nil {
		apperrors.Respond(c, validation.BindError(err))
		return
	}

	members, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

// @Summary Get a member
// @Tags members
// @Produce json
// @Param id path string true "Member ID"
// @Success 200 {object} models.GroupMember
// @Failure 404 {object} map[string]string "Member not found"
// @Security BearerAuth
// @Router /members/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	member, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

// @Summary Update a member
// @Tags members
// @Accept json
// @Produce json
// @Param id path string true "Member ID"
// @Param request body UpdateMemberRequest true "Fields to change"
// @Success 200 {object} models.GroupMember
// @Failure 403 {object} map[string]string "Not a group admin"
// @Security BearerAuth
// @Router /members/{id} [patch]
func (h *Handler) Update(c *gin.Context) {
	identity, _ := auth.CurrentIdentity(c)

	var req UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, validation.BindError(err))
		return
	}

	member, err := h.svc.Update(c.Request.Context(), c.Param("id"), req, identity)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

// @Summary Remove a member
// @Tags members
// @Param id path string true "Member ID"
// @Success 204
// @Failure 403 {object} map[string]string "Not a group admin"
// @Failure 404 {object} map[string]string "Member not found"
// @Security BearerAuth
// @Router /members/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	identity, _ := auth.CurrentIdentity(c)

	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), identity); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RegisterRoutes registers member routes. The caller applies auth.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/create", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PATCH("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.DELETE("/delete/:id", h.Delete)
}
