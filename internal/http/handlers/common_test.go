package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/comptoir-lab/salesboard/internal/models"
)

func openHandlerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:handlers_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, errOpen := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := db.AutoMigrate(&models.Profile{}, &models.PaymentCredential{}, &models.Sale{}); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return db
}

// asProfile injects a resolved profile, standing in for the auth middleware.
func asProfile(profile *models.Profile) gin.HandlerFunc {
	return func(c *gin.Context) {
		if profile != nil {
			c.Set("profile", profile)
		}
		c.Next()
	}
}

func jsonBody(t *testing.T, payload any) *bytes.Reader {
	t.Helper()
	raw, errEncode := json.Marshal(payload)
	if errEncode != nil {
		t.Fatalf("encode body: %v", errEncode)
	}
	return bytes.NewReader(raw)
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if payload != nil {
		req = httptest.NewRequest(method, path, jsonBody(t, payload))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func decodeResponse(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if errDecode := json.Unmarshal(recorder.Body.Bytes(), &out); errDecode != nil {
		t.Fatalf("decode response: %v", errDecode)
	}
	return out
}
