package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/astroclub/pkg/astroclub/apperrors"
	"github.com/mikepea/astroclub/pkg/astroclub/validation"
)

// Handler handles authentication requests
type Handler struct {
	svc    *Service
	tokens *TokenManager
}

// NewHandler creates a new auth handler
func NewHandler(svc *Service, tokens *TokenManager) *Handler {
	return &Handler{svc: svc, tokens: tokens}
}

// Signup handles account creation
// @Summary Sign up
// @Description Create a new account. The password is never returned.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignupInput true "Signup details"
// @Success 201 {object} models.PublicUser
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 403 {object} map[string]string "Email already exists"
// @Router /auth/signup [post]
func (h *Handler) Signup(c *gin.Context) {
	var req SignupInput
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, validation.BindError(err))
		return
	}

	user, err := h.svc.Signup(c.Request.Context(), req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, user.Public())
}

// Login handles user login
// @Summary Login
// @Description Authenticate with email and password to receive an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginInput true "Login credentials"
// @Success 200 {object} LoginResult
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Router /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, validation.BindError(err))
		return
	}

	result, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// UpdatePassword changes the caller's password
// @Summary Change password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ChangePasswordInput true "Current and new password"
// @Success 200 {object} map[string]string
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /auth/updatePassword [patch]
func (h *Handler) UpdatePassword(c *gin.Context) {
	userID, ok := GetUserID(c)
	if !ok {
		unauthorized(c)
		return
	}

	var req ChangePasswordInput
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, validation.BindError(err))
		return
	}

	if err := h.svc.ChangePassword(c.Request.Context(), userID, req); err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

// RegisterRoutes registers auth routes on the given router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/signup", h.Signup)
	rg.POST("/login", h.Login)
	rg.PATCH("/updatePassword", Middleware(h.tokens), h.UpdatePassword)
}
