package http

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/comptoir-lab/salesboard/internal/access"
	"github.com/comptoir-lab/salesboard/internal/config"
	"github.com/comptoir-lab/salesboard/internal/models"
	"github.com/comptoir-lab/salesboard/internal/security"
)

func openMiddlewareTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:middleware_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, errOpen := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := db.AutoMigrate(&models.Profile{}); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return db
}

func middlewareTestJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", ExpiryHours: 1}
}

func runAuthenticated(t *testing.T, db *gorm.DB, authorization string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(AuthMiddleware(access.NewGuard(db), middlewareTestJWTConfig()))
	router.GET("/probe", func(c *gin.Context) {
		profile := ProfileFromContext(c)
		if profile == nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": profile.ID})
	})

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	router.ServeHTTP(recorder, req)
	return recorder
}

func signTestToken(t *testing.T, profileID, email string) string {
	t.Helper()
	token, errToken := security.GenerateToken("test-secret", profileID, email, time.Hour)
	if errToken != nil {
		t.Fatalf("generate token: %v", errToken)
	}
	return token
}

func TestAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	recorder := runAuthenticated(t, openMiddlewareTestDB(t), "")
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", recorder.Code)
	}
}

func TestAuthMiddlewareRejectsNonBearerHeader(t *testing.T) {
	recorder := runAuthenticated(t, openMiddlewareTestDB(t), "Basic abc123")
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", recorder.Code)
	}
}

func TestAuthMiddlewareRejectsInvalidToken(t *testing.T) {
	recorder := runAuthenticated(t, openMiddlewareTestDB(t), "Bearer not-a-token")
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", recorder.Code)
	}
}

func TestAuthMiddlewareRejectsBannedProfile(t *testing.T) {
	db := openMiddlewareTestDB(t)
	if errCreate := db.Create(&models.Profile{ID: "sub-1", Email: "banni@comptoir.fr", Role: models.RoleUser, Banned: true}).Error; errCreate != nil {
		t.Fatalf("seed profile: %v", errCreate)
	}

	recorder := runAuthenticated(t, db, "Bearer "+signTestToken(t, "sub-1", "banni@comptoir.fr"))
	if recorder.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", recorder.Code)
	}
}

func TestAuthMiddlewareResolvesProfileAndLazilyCreatesIt(t *testing.T) {
	db := openMiddlewareTestDB(t)

	recorder := runAuthenticated(t, db, "Bearer "+signTestToken(t, "sub-new", "new@comptoir.fr"))
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}

	var profile models.Profile
	if errFind := db.First(&profile, "id = ?", "sub-new").Error; errFind != nil {
		t.Fatalf("expected lazily created profile: %v", errFind)
	}
	if profile.Role != models.RoleUser {
		t.Fatalf("expected default role user, got %s", profile.Role)
	}
}

func TestRequireOperationForbidsInsufficientRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(profileContextKey, &models.Profile{ID: "sub-1", Role: models.RoleUser})
	})
	router.GET("/admin", RequireOperation(access.OpManageUsers), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/admin", nil))
	if recorder.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", recorder.Code)
	}
}

func TestRequireOperationPassesAllowedRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(profileContextKey, &models.Profile{ID: "sub-1", Role: models.RoleAdmin})
	})
	router.GET("/admin", RequireOperation(access.OpManageUsers), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/admin", nil))
	if recorder.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", recorder.Code)
	}
}
