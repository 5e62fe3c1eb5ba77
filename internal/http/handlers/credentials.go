package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/comptoir-lab/salesboard/internal/models"
	"github.com/comptoir-lab/salesboard/internal/util"
)

// CredentialHandler manages the payment credential pool, admin only.
type CredentialHandler struct {
	db *gorm.DB
}

// NewCredentialHandler constructs a CredentialHandler.
func NewCredentialHandler(db *gorm.DB) *CredentialHandler {
	return &CredentialHandler{db: db}
}

// credentialItem is one pool entry. Tokens are masked; the full values never
// leave the store once created.
type credentialItem struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	VendorToken     string `json:"vendor_token"`
	APIToken        string `json:"api_token"`
	IsActive        bool   `json:"is_active"`
	DailyUsageCount int    `json:"daily_usage_count"`
	MaxDailyUsage   int    `json:"max_daily_usage"`
	CreatedAt       string `json:"created_at"`
}

// List returns the credential pool, oldest first.
func (h *CredentialHandler) List(c *gin.Context) {
	var credentials []models.PaymentCredential
	if errFind := h.db.WithContext(c.Request.Context()).
		Order("created_at ASC").
		Find(&credentials).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list credentials failed"})
		return
	}

	items := make([]credentialItem, 0, len(credentials))
	for _, credential := range credentials {
		items = append(items, credentialItem{
			ID:              credential.ID,
			Name:            credential.Name,
			VendorToken:     util.MaskToken(credential.VendorToken),
			APIToken:        util.MaskToken(credential.APIToken),
			IsActive:        credential.IsActive,
			DailyUsageCount: credential.DailyUsageCount,
			MaxDailyUsage:   credential.MaxDailyUsage,
			CreatedAt:       credential.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, gin.H{"apis": items})
}

// createCredentialRequest defines the request body for credential creation.
type createCredentialRequest struct {
	Name          string `json:"name"`
	VendorToken   string `json:"vendor_token"`
	APIToken      string `json:"api_token"`
	MaxDailyUsage *int   `json:"max_daily_usage"`
}

// Create adds a credential to the pool, rejecting duplicate tokens.
func (h *CredentialHandler) Create(c *gin.Context) {
	var body createCredentialRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	name := strings.TrimSpace(body.Name)
	vendorToken := strings.TrimSpace(body.VendorToken)
	apiToken := strings.TrimSpace(body.APIToken)
	if name == "" || vendorToken == "" || apiToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tous les champs sont requis."})
		return
	}

	var duplicates int64
	if errCount := h.db.WithContext(c.Request.Context()).
		Model(&models.PaymentCredential{}).
		Where("vendor_token = ? OR api_token = ?", vendorToken, apiToken).
		Count(&duplicates).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la vérification des doublons."})
		return
	}
	if duplicates > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Cette API est déjà enregistrée dans votre dashboard."})
		return
	}

	maxDailyUsage := models.DefaultMaxDailyUsage
	if body.MaxDailyUsage != nil && *body.MaxDailyUsage > 0 {
		maxDailyUsage = *body.MaxDailyUsage
	}
	credential := models.PaymentCredential{
		ID:              uuid.NewString(),
		Name:            name,
		VendorToken:     vendorToken,
		APIToken:        apiToken,
		IsActive:        true,
		DailyUsageCount: 0,
		MaxDailyUsage:   maxDailyUsage,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&credential).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de l'ajout de l'API."})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": credential.ID, "name": credential.Name})
}

// Toggle flips a credential's active flag.
func (h *CredentialHandler) Toggle(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing id"})
		return
	}
	res := h.db.WithContext(c.Request.Context()).
		Model(&models.PaymentCredential{}).
		Where("id = ?", id).
		Update("is_active", gorm.Expr("NOT is_active"))
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "toggle failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "credential not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Delete removes a credential from the pool. Past sales keep referencing it.
func (h *CredentialHandler) Delete(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing id"})
		return
	}
	res := h.db.WithContext(c.Request.Context()).Delete(&models.PaymentCredential{}, "id = ?", id)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "credential not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
