package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/astroclub/pkg/astroclub/models"
)

// ContextKeyIdentity is the key for the verified Identity in gin context
const ContextKeyIdentity = "identity"

const bearerPrefix = "Bearer "

// Identity is the caller resolved from a verified token
type Identity struct {
	UserID string
	Email  string
	Role   models.Role
}

// IsAdmin reports whether the caller holds the system ADMIN role
func (i Identity) IsAdmin() bool {
	return i.Role.IsAdmin()
}

// Middleware validates the bearer token and stores the caller's Identity
// in the context. Every failure gets the same 401 response.
func Middleware(tokens *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			unauthorized(c)
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
		if tokenString == "" {
			unauthorized(c)
			return
		}

		claims, err := tokens.Validate(tokenString)
		if err != nil {
			unauthorized(c)
			return
		}

		c.Set(ContextKeyIdentity, Identity{
			UserID: claims.Subject,
			Email:  claims.Email,
			Role:   claims.Role,
		})

		c.Next()
	}
}

// RequireAdmin rejects callers without the ADMIN role. It must run after
// Middleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			unauthorized(c)
			return
		}

		if !identity.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admins only"})
			return
		}

		c.Next()
	}
}

// CurrentIdentity returns the Identity stored by Middleware
func CurrentIdentity(c *gin.Context) (Identity, bool) {
	v, exists := c.Get(ContextKeyIdentity)
	if !exists {
		return Identity{}, false
	}
	identity, ok := v.(Identity)
	return identity, ok
}

// GetUserID returns the caller's user id from the gin context
func GetUserID(c *gin.Context) (string, bool) {
	identity, ok := CurrentIdentity(c)
	if !ok {
		return "", false
	}
	return identity.UserID, true
}

func unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
}
