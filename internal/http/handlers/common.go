package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/comptoir-lab/salesboard/internal/models"
)

// currentProfile extracts the resolved profile from gin context.
func currentProfile(c *gin.Context) *models.Profile {
	value, exists := c.Get("profile")
	if !exists {
		return nil
	}
	profile, ok := value.(*models.Profile)
	if !ok {
		return nil
	}
	return profile
}
