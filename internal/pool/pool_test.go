package pool

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/comptoir-lab/salesboard/internal/models"
)

func openPoolTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:pool_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, errOpen := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := db.AutoMigrate(&models.PaymentCredential{}); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return db
}

func seedCredential(t *testing.T, db *gorm.DB, credential models.PaymentCredential) {
	t.Helper()
	if credential.MaxDailyUsage == 0 {
		credential.MaxDailyUsage = models.DefaultMaxDailyUsage
	}
	if errCreate := db.Create(&credential).Error; errCreate != nil {
		t.Fatalf("seed credential %s: %v", credential.ID, errCreate)
	}
}

func TestSelectPicksLowestDailyUsage(t *testing.T) {
	db := openPoolTestDB(t)
	base := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	today := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	seedCredential(t, db, models.PaymentCredential{ID: "c-busy", Name: "busy", VendorToken: "vt-1", APIToken: "at-1", IsActive: true, DailyUsageCount: 1, UsageDate: &today, CreatedAt: base})
	seedCredential(t, db, models.PaymentCredential{ID: "c-idle", Name: "idle", VendorToken: "vt-2", APIToken: "at-2", IsActive: true, DailyUsageCount: 0, CreatedAt: base.Add(time.Hour)})

	manager := NewManager(db)
	manager.now = func() time.Time { return base }
	credential, errSelect := manager.Select(context.Background())

	if errSelect != nil {
		t.Fatalf("select: %v", errSelect)
	}
	if credential.ID != "c-idle" {
		t.Fatalf("expected c-idle, got %s", credential.ID)
	}
}

func TestSelectBreaksTiesByCreationOrder(t *testing.T) {
	db := openPoolTestDB(t)
	base := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	seedCredential(t, db, models.PaymentCredential{ID: "c-newer", Name: "newer", VendorToken: "vt-1", APIToken: "at-1", IsActive: true, CreatedAt: base.Add(time.Hour)})
	seedCredential(t, db, models.PaymentCredential{ID: "c-older", Name: "older", VendorToken: "vt-2", APIToken: "at-2", IsActive: true, CreatedAt: base})

	manager := NewManager(db)
	credential, errSelect := manager.Select(context.Background())

	if errSelect != nil {
		t.Fatalf("select: %v", errSelect)
	}
	if credential.ID != "c-older" {
		t.Fatalf("expected c-older, got %s", credential.ID)
	}
}

func TestSelectSkipsInactiveCredentials(t *testing.T) {
	db := openPoolTestDB(t)
	seedCredential(t, db, models.PaymentCredential{ID: "c-off", Name: "off", VendorToken: "vt-1", APIToken: "at-1", IsActive: false})
	seedCredential(t, db, models.PaymentCredential{ID: "c-on", Name: "on", VendorToken: "vt-2", APIToken: "at-2", IsActive: true, DailyUsageCount: 1})

	manager := NewManager(db)
	credential, errSelect := manager.Select(context.Background())

	if errSelect != nil {
		t.Fatalf("select: %v", errSelect)
	}
	if credential.ID != "c-on" {
		t.Fatalf("expected c-on, got %s", credential.ID)
	}
}

func TestSelectReturnsNoneAvailableWhenAllAtQuota(t *testing.T) {
	db := openPoolTestDB(t)
	today := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	seedCredential(t, db, models.PaymentCredential{ID: "c-1", Name: "one", VendorToken: "vt-1", APIToken: "at-1", IsActive: true, DailyUsageCount: 2, UsageDate: &today})
	seedCredential(t, db, models.PaymentCredential{ID: "c-2", Name: "two", VendorToken: "vt-2", APIToken: "at-2", IsActive: false})

	manager := NewManager(db)
	manager.now = func() time.Time { return today.Add(12 * time.Hour) }

	_, errSelect := manager.Select(context.Background())
	if !errors.Is(errSelect, ErrNoneAvailable) {
		t.Fatalf("expected ErrNoneAvailable, got %v", errSelect)
	}
}

func TestSelectResetsCountersFromEarlierDays(t *testing.T) {
	db := openPoolTestDB(t)
	yesterday := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)
	seedCredential(t, db, models.PaymentCredential{ID: "c-stale", Name: "stale", VendorToken: "vt-1", APIToken: "at-1", IsActive: true, DailyUsageCount: 2, UsageDate: &yesterday})

	manager := NewManager(db)
	manager.now = func() time.Time { return time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC) }

	credential, errSelect := manager.Select(context.Background())
	if errSelect != nil {
		t.Fatalf("select: %v", errSelect)
	}
	if credential.ID != "c-stale" {
		t.Fatalf("expected c-stale, got %s", credential.ID)
	}
	if credential.DailyUsageCount != 0 {
		t.Fatalf("expected reset counter, got %d", credential.DailyUsageCount)
	}
}

func TestSelectResetsNonzeroCounterWithoutUsageDate(t *testing.T) {
	db := openPoolTestDB(t)
	seedCredential(t, db, models.PaymentCredential{ID: "c-legacy", Name: "legacy", VendorToken: "vt-1", APIToken: "at-1", IsActive: true, DailyUsageCount: 2})

	manager := NewManager(db)
	manager.now = func() time.Time { return time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC) }

	credential, errSelect := manager.Select(context.Background())
	if errSelect != nil {
		t.Fatalf("select: %v", errSelect)
	}
	if credential.ID != "c-legacy" {
		t.Fatalf("expected c-legacy, got %s", credential.ID)
	}
	if credential.DailyUsageCount != 0 {
		t.Fatalf("expected reset counter, got %d", credential.DailyUsageCount)
	}
}

func TestRecordUseIncrementsCounterAndStampsDay(t *testing.T) {
	db := openPoolTestDB(t)
	seedCredential(t, db, models.PaymentCredential{ID: "c-1", Name: "one", VendorToken: "vt-1", APIToken: "at-1", IsActive: true, DailyUsageCount: 1})

	manager := NewManager(db)
	manager.now = func() time.Time { return time.Date(2026, 8, 28, 15, 30, 0, 0, time.UTC) }

	if errUse := manager.RecordUse(context.Background(), "c-1"); errUse != nil {
		t.Fatalf("record use: %v", errUse)
	}

	var credential models.PaymentCredential
	if errFind := db.First(&credential, "id = ?", "c-1").Error; errFind != nil {
		t.Fatalf("reload: %v", errFind)
	}
	if credential.DailyUsageCount != 2 {
		t.Fatalf("expected count 2, got %d", credential.DailyUsageCount)
	}
	if credential.UsageDate == nil {
		t.Fatalf("expected usage date to be set")
	}
	want := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	if !credential.UsageDate.UTC().Equal(want) {
		t.Fatalf("expected usage date %v, got %v", want, credential.UsageDate.UTC())
	}
}

func TestRecordUseFailsOnUnknownCredential(t *testing.T) {
	db := openPoolTestDB(t)
	manager := NewManager(db)

	if errUse := manager.RecordUse(context.Background(), "missing"); errUse == nil {
		t.Fatalf("expected error for unknown credential")
	}
}
