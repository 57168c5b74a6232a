package cache

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/astroclub/pkg/astroclub/apperrors"
	"github.com/mikepea/astroclub/pkg/astroclub/validation"
)

// Handler serves the /redis passthrough routes
type Handler struct {
	store      Store
	defaultTTL time.Duration
}

func NewHandler(store Store, defaultTTL time.Duration) *Handler {
	return &Handler{store: store, defaultTTL: defaultTTL}
}

// SetRequest represents the set request body. TTL is in seconds; 0 means
// no expiry and a missing TTL uses the default.
type SetRequest struct {
	Key   string          `json:"key" binding:"required,notblank"`
	Value json.RawMessage `json:"value" binding:"required"`
	TTL   *int            `json:"ttl" binding:"omitempty,min=0"`
}

// ValueResponse is returned by Get. Value is null for unknown keys.
type ValueResponse struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// Set stores a value
// @Summary Set a cache value
// @Tags redis
// @Accept json
// @Produce json
// @Param request body SetRequest true "Key, value and optional TTL in seconds"
// @Success 200 {object} map[string]string
// @Router /redis/set [post]
func (h *Handler) Set(c *gin.Context) {
	var req SetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, validation.BindError(err))
		return
	}

	ttl := h.defaultTTL
	if req.TTL != nil {
		ttl = time.Duration(*req.TTL) * time.Second
	}

	if err := h.store.Set(c.Request.Context(), req.Key, req.Value, ttl); err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Value set successfully"})
}

// Get reads a value
// @Summary Get a cache value
// @Tags redis
// @Produce json
// @Param key path string true "Key"
// @Success 200 {object} ValueResponse
// @Router /redis/get/{key} [get]
func (h *Handler) Get(c *gin.Context) {
	key := c.Param("key")

	value, err := h.store.Get(c.Request.Context(), key)
	if errors.Is(err, ErrMiss) {
		c.JSON(http.StatusOK, ValueResponse{Key: key, Value: json.RawMessage("null")})
		return
	}
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	if !json.Valid(value) {
		// written by something other than this API
		raw, _ := json.Marshal(string(value))
		value = raw
	}
	c.JSON(http.StatusOK, ValueResponse{Key: key, Value: value})
}

// Delete removes a value
// @Summary Delete a cache value
// @Tags redis
// @Produce json
// @Param key path string true "Key"
// @Success 200 {object} map[string]string
// @Router /redis/delete/{key} [delete]
func (h *Handler) Delete(c *gin.Context) {
	if err := h.store.Delete(c.Request.Context(), c.Param("key")); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Value deleted successfully"})
}

// RegisterRoutes registers cache routes on the given router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/set", h.Set)
	rg.GET("/get/:key", h.Get)
	rg.DELETE("/delete/:key", h.Delete)
}
