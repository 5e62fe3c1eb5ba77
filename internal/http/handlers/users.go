package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	dbutil "github.com/comptoir-lab/salesboard/internal/db"
	"github.com/comptoir-lab/salesboard/internal/models"
	"github.com/comptoir-lab/salesboard/internal/security"
)

// minPasswordLength is the minimum admin-chosen password length.
const minPasswordLength = 6

// UserHandler manages profiles, admin only.
type UserHandler struct {
	db *gorm.DB
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

// profileItem is one profile row of the listing.
type profileItem struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Banned    bool   `json:"banned"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// List returns all profiles, newest first, with an optional email filter.
func (h *UserHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Model(&models.Profile{})
	if emailQ := strings.TrimSpace(c.Query("email")); emailQ != "" {
		pattern := dbutil.NormalizeLikePattern(h.db, "%"+emailQ+"%")
		q = q.Where(dbutil.CaseInsensitiveLikeExpr(h.db, "email"), pattern)
	}

	var profiles []models.Profile
	if errFind := q.Order("created_at DESC").Find(&profiles).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list profiles failed"})
		return
	}

	users := make([]profileItem, 0, len(profiles))
	for _, profile := range profiles {
		users = append(users, profileItem{
			ID:        profile.ID,
			Email:     profile.Email,
			Role:      profile.Role,
			Banned:    profile.Banned,
			CreatedAt: profile.CreatedAt.UTC().Format(time.RFC3339),
			UpdatedAt: profile.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// createUserRequest defines the request body for user creation.
type createUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Create creates a profile with an admin-chosen password and role.
func (h *UserHandler) Create(c *gin.Context) {
	var body createUserRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	email := strings.TrimSpace(body.Email)
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "L'email est requis."})
		return
	}
	if len(body.Password) < minPasswordLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le mot de passe doit faire au moins 6 caractères."})
		return
	}
	role := body.Role
	if role == "" {
		role = models.RoleUser
	}
	if !models.ValidRole(role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rôle invalide."})
		return
	}

	if exists, errCheck := h.emailTaken(c, email); errCheck != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	} else if exists {
		c.JSON(http.StatusConflict, gin.H{"error": "Un compte existe déjà avec cet email."})
		return
	}

	hash, errHash := security.HashPassword(body.Password)
	if errHash != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "hash password failed"})
		return
	}

	profile := models.Profile{
		ID:       uuid.NewString(),
		Email:    email,
		Password: hash,
		Role:     role,
		Banned:   false,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&profile).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la création de l'utilisateur."})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": profile.ID, "email": profile.Email, "role": profile.Role})
}

// updateRoleRequest defines the request body for role changes.
type updateRoleRequest struct {
	Role string `json:"role"`
}

// UpdateRole changes a profile's role.
func (h *UserHandler) UpdateRole(c *gin.Context) {
	var body updateRoleRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if !models.ValidRole(body.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rôle invalide."})
		return
	}
	h.updateProfile(c, map[string]any{"role": body.Role})
}

// setBannedRequest defines the request body for ban toggles.
type setBannedRequest struct {
	Banned *bool `json:"banned"`
}

// SetBanned bans or unbans a profile.
func (h *UserHandler) SetBanned(c *gin.Context) {
	var body setBannedRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil || body.Banned == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	h.updateProfile(c, map[string]any{"banned": *body.Banned})
}

// createSellerRequest defines the request body for seller creation.
type createSellerRequest struct {
	Email string `json:"email"`
}

// CreateSeller creates a seller profile with an auto-generated password and
// returns the password once for the admin to hand over.
func (h *UserHandler) CreateSeller(c *gin.Context) {
	var body createSellerRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	email := strings.TrimSpace(body.Email)
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "L'email est requis."})
		return
	}

	if exists, errCheck := h.emailTaken(c, email); errCheck != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	} else if exists {
		c.JSON(http.StatusConflict, gin.H{"error": "Un compte existe déjà avec cet email."})
		return
	}

	password, errGenerate := security.GeneratePassword()
	if errGenerate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "generate password failed"})
		return
	}
	hash, errHash := security.HashPassword(password)
	if errHash != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "hash password failed"})
		return
	}

	profile := models.Profile{
		ID:       uuid.NewString(),
		Email:    email,
		Password: hash,
		Role:     models.RoleUser,
		Banned:   false,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&profile).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la création du commercial."})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": profile.ID, "email": profile.Email, "password": password})
}

// updateProfile applies updates to the profile named by the :id param.
func (h *UserHandler) updateProfile(c *gin.Context, updates map[string]any) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing id"})
		return
	}
	updates["updated_at"] = time.Now().UTC()
	res := h.db.WithContext(c.Request.Context()).
		Model(&models.Profile{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		log.WithError(res.Error).WithField("profile_id", id).Error("update profile failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// emailTaken reports whether a profile already uses the email.
func (h *UserHandler) emailTaken(c *gin.Context, email string) (bool, error) {
	var existing models.Profile
	errFind := h.db.WithContext(c.Request.Context()).
		Select("id").
		Where("email = ?", email).
		First(&existing).Error
	if errFind == nil {
		return true, nil
	}
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, errFind
}
