package pool

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/comptoir-lab/salesboard/internal/models"
)

// ErrNoneAvailable indicates every credential is inactive or at its daily quota.
var ErrNoneAvailable = errors.New("no payment credential available")

// Manager owns the pool of payment credentials and their daily quotas.
type Manager struct {
	db *gorm.DB

	// now is swappable in tests.
	now func() time.Time
}

// NewManager constructs a Manager.
func NewManager(db *gorm.DB) *Manager {
	return &Manager{db: db, now: time.Now}
}

// Select picks the eligible credential with the lowest daily usage. Eligible
// means active and under its daily quota. Spreading across the least-used
// credential gives a round-robin-like distribution over the pool.
//
// Stale counters from earlier days are reset first, so the quota is per
// UTC calendar day.
func (m *Manager) Select(ctx context.Context) (*models.PaymentCredential, error) {
	if errReset := m.resetStaleCounters(ctx); errReset != nil {
		return nil, errReset
	}

	var credential models.PaymentCredential
	errFind := m.db.WithContext(ctx).
		Where("is_active = ? AND daily_usage_count < max_daily_usage", true).
		Order("daily_usage_count ASC, created_at ASC").
		First(&credential).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrNoneAvailable
		}
		return nil, fmt.Errorf("pool: select credential: %w", errFind)
	}
	return &credential, nil
}

// RecordUse increments a credential's daily usage counter by one. The
// increment is a single atomic UPDATE, so concurrent requests cannot lose
// counts; the check in Select and the increment here are still two separate
// statements, so a pair of concurrent requests may push a credential slightly
// past its quota.
func (m *Manager) RecordUse(ctx context.Context, credentialID string) error {
	today := m.todayUTC()
	res := m.db.WithContext(ctx).
		Model(&models.PaymentCredential{}).
		Where("id = ?", credentialID).
		Updates(map[string]any{
			"daily_usage_count": gorm.Expr("daily_usage_count + 1"),
			"usage_date":        today,
		})
	if res.Error != nil {
		return fmt.Errorf("pool: record use: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("pool: record use: credential %s not found", credentialID)
	}
	return nil
}

// resetStaleCounters zeroes usage counters whose usage_date is before today.
// A nonzero counter with no usage_date at all counts as stale too, so rows
// imported from an older schema cannot stay at quota forever.
func (m *Manager) resetStaleCounters(ctx context.Context) error {
	today := m.todayUTC()
	errUpdate := m.db.WithContext(ctx).
		Model(&models.PaymentCredential{}).
		Where("(usage_date IS NULL OR usage_date < ?) AND daily_usage_count > 0", today).
		Updates(map[string]any{
			"daily_usage_count": 0,
			"usage_date":        today,
		}).Error
	if errUpdate != nil {
		return fmt.Errorf("pool: reset stale counters: %w", errUpdate)
	}
	return nil
}

// todayUTC returns midnight of the current UTC day.
func (m *Manager) todayUTC() time.Time {
	return m.now().UTC().Truncate(24 * time.Hour)
}
