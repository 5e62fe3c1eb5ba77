package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ProfileHandler serves the caller's own profile.
type ProfileHandler struct{}

// NewProfileHandler constructs a ProfileHandler.
func NewProfileHandler() *ProfileHandler {
	return &ProfileHandler{}
}

// Get returns the resolved profile of the authenticated caller.
func (h *ProfileHandler) Get(c *gin.Context) {
	profile := currentProfile(c)
	if profile == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":     profile.ID,
		"email":  profile.Email,
		"role":   profile.Role,
		"banned": profile.Banned,
	})
}
