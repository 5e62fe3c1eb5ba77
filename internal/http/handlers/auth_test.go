package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/comptoir-lab/salesboard/internal/config"
	"github.com/comptoir-lab/salesboard/internal/models"
	"github.com/comptoir-lab/salesboard/internal/security"
)

func newAuthRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(db, config.JWTConfig{Secret: "test-secret", ExpiryHours: 1})
	router := gin.New()
	router.POST("/api/auth/login", handler.Login)
	router.POST("/api/auth/logout", handler.Logout)
	return router
}

func seedLoginProfile(t *testing.T, db *gorm.DB, banned bool) {
	t.Helper()
	hash, errHash := security.HashPassword("s3cret-pass")
	if errHash != nil {
		t.Fatalf("hash password: %v", errHash)
	}
	profile := models.Profile{ID: "profile-1", Email: "seller@comptoir.fr", Password: hash, Role: models.RoleUser, Banned: banned}
	if errCreate := db.Create(&profile).Error; errCreate != nil {
		t.Fatalf("seed profile: %v", errCreate)
	}
}

func TestLoginIssuesTokenForValidCredentials(t *testing.T) {
	db := openHandlerTestDB(t)
	seedLoginProfile(t, db, false)
	router := newAuthRouter(t, db)

	recorder := doJSON(t, router, http.MethodPost, "/api/auth/login", gin.H{"email": "seller@comptoir.fr", "password": "s3cret-pass"})
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	body := decodeResponse(t, recorder)
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("expected token in response")
	}
	claims, errParse := security.ParseToken("test-secret", token)
	if errParse != nil {
		t.Fatalf("parse issued token: %v", errParse)
	}
	if claims.Subject != "profile-1" {
		t.Fatalf("expected subject profile-1, got %s", claims.Subject)
	}
}

func TestLoginAcceptsPasswordWithSurroundingWhitespace(t *testing.T) {
	db := openHandlerTestDB(t)
	hash, errHash := security.HashPassword("  padded-pass  ")
	if errHash != nil {
		t.Fatalf("hash password: %v", errHash)
	}
	profile := models.Profile{ID: "profile-1", Email: "seller@comptoir.fr", Password: hash, Role: models.RoleUser}
	if errCreate := db.Create(&profile).Error; errCreate != nil {
		t.Fatalf("seed profile: %v", errCreate)
	}
	router := newAuthRouter(t, db)

	recorder := doJSON(t, router, http.MethodPost, "/api/auth/login", gin.H{"email": "seller@comptoir.fr", "password": "  padded-pass  "})
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	db := openHandlerTestDB(t)
	seedLoginProfile(t, db, false)
	router := newAuthRouter(t, db)

	recorder := doJSON(t, router, http.MethodPost, "/api/auth/login", gin.H{"email": "seller@comptoir.fr", "password": "wrong"})
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", recorder.Code)
	}
}

func TestLoginRejectsUnknownEmailWithSameMessage(t *testing.T) {
	db := openHandlerTestDB(t)
	router := newAuthRouter(t, db)

	recorder := doJSON(t, router, http.MethodPost, "/api/auth/login", gin.H{"email": "nobody@comptoir.fr", "password": "whatever"})
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", recorder.Code)
	}
	body := decodeResponse(t, recorder)
	if body["error"] != "Identifiants invalides" {
		t.Fatalf("unexpected error %v", body["error"])
	}
}

func TestLoginRejectsBannedProfile(t *testing.T) {
	db := openHandlerTestDB(t)
	seedLoginProfile(t, db, true)
	router := newAuthRouter(t, db)

	recorder := doJSON(t, router, http.MethodPost, "/api/auth/login", gin.H{"email": "seller@comptoir.fr", "password": "s3cret-pass"})
	if recorder.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", recorder.Code)
	}
}

func TestLogoutAlwaysSucceeds(t *testing.T) {
	router := newAuthRouter(t, openHandlerTestDB(t))
	recorder := doJSON(t, router, http.MethodPost, "/api/auth/logout", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}
}
