package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/comptoir-lab/salesboard/internal/access"
	"github.com/comptoir-lab/salesboard/internal/config"
	"github.com/comptoir-lab/salesboard/internal/models"
	"github.com/comptoir-lab/salesboard/internal/security"
)

// profileContextKey stores the resolved profile in the gin context.
const profileContextKey = "profile"

// AuthMiddleware validates the bearer token, resolves the caller's profile
// (creating it lazily for pre-existing identities) and stores it in the
// context. Banned profiles are rejected here, before any handler runs.
func AuthMiddleware(guard *access.Guard, jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		token = strings.TrimSpace(token)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "empty token"})
			return
		}

		claims, errJWT := security.ParseToken(jwtCfg.Secret, token)
		if errJWT != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		profile, errResolve := guard.ResolveProfile(c.Request.Context(), access.Identity{
			Subject: claims.Subject,
			Email:   claims.Email,
		})
		if errResolve != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "profile not found"})
			return
		}
		if profile.Banned {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Non autorisé"})
			return
		}

		c.Set(profileContextKey, profile)
		c.Next()
	}
}

// RequireOperation gates a route on the capability table.
func RequireOperation(op access.Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile := ProfileFromContext(c)
		if profile == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing profile"})
			return
		}
		if !access.Allowed(profile.Role, op) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Accès réservé aux administrateurs."})
			return
		}
		c.Next()
	}
}

// ProfileFromContext returns the resolved profile, or nil outside the
// authenticated group.
func ProfileFromContext(c *gin.Context) *models.Profile {
	value, ok := c.Get(profileContextKey)
	if !ok {
		return nil
	}
	profile, ok := value.(*models.Profile)
	if !ok {
		return nil
	}
	return profile
}
