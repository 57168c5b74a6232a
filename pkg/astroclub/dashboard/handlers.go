package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/astroclub/pkg/astroclub/apperrors"
)

// Handler handles dashboard requests. Authentication is applied by the caller.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// ActiveGroup returns the current active group
// @Summary Active group
// @Tags dashboard
// @Produce json
// @Success 200 {object} models.Group
// @Failure 404 {object} map[string]string "No active group"
// @Security BearerAuth
// @Router /dashboard/activeGroup [get]
func (h *Handler) ActiveGroup(c *gin.Context) {
	group, err := h.svc.ActiveGroup(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

// Members returns membership totals
// @Summary Member growth
// @Tags dashboard
// @Produce json
// @Success 200 {object} MemberGrowth
// @Security BearerAuth
// @Router /dashboard/members [get]
func (h *Handler) Members(c *gin.Context) {
	growth, err := h.svc.MemberGrowth(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, growth)
}

// LatestArticles returns the articles of the last 30 days
// @Summary Latest articles
// @Tags dashboard
// @Produce json
// @Success 200 {object} LatestArticles
// @Security BearerAuth
// @Router /dashboard/latestArticles [get]
func (h *Handler) LatestArticles(c *gin.Context) {
	latest, err := h.svc.LatestArticles(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, latest)
}

// RegisterRoutes registers dashboard routes on the given router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/activeGroup", h.ActiveGroup)
	rg.GET("/members", h.Members)
	rg.GET("/latestArticles", h.LatestArticles)
}
