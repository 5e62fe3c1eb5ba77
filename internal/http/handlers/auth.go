package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/comptoir-lab/salesboard/internal/config"
	"github.com/comptoir-lab/salesboard/internal/models"
	"github.com/comptoir-lab/salesboard/internal/security"
)

// AuthHandler handles session-establishing endpoints.
type AuthHandler struct {
	db     *gorm.DB
	jwtCfg config.JWTConfig
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, jwtCfg config.JWTConfig) *AuthHandler {
	return &AuthHandler{db: db, jwtCfg: jwtCfg}
}

// loginRequest defines the request body for login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates a seller and issues a JWT.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	email := strings.TrimSpace(body.Email)
	if email == "" || body.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing email or password"})
		return
	}

	var profile models.Profile
	if errFind := h.db.WithContext(c.Request.Context()).Where("email = ?", email).First(&profile).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Identifiants invalides"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	// The password is compared exactly as stored at creation time, whitespace
	// included.
	if !security.CheckPassword(profile.Password, body.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Identifiants invalides"})
		return
	}
	if profile.Banned {
		c.JSON(http.StatusForbidden, gin.H{"error": "Non autorisé"})
		return
	}

	token, errToken := security.GenerateToken(h.jwtCfg.Secret, profile.ID, profile.Email, h.jwtCfg.Expiry())
	if errToken != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "generate token failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"profile": gin.H{
			"id":    profile.ID,
			"email": profile.Email,
			"role":  profile.Role,
		},
	})
}

// Logout acknowledges a logout. Sessions are stateless JWTs; the client
// discards the token.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
