package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/comptoir-lab/salesboard/internal/models"
)

// dashboardCacheKey stores the rendered admin dashboard payload.
const dashboardCacheKey = "salesboard:admin:dashboard"

// dashboardCacheTTL bounds how stale a cached dashboard may get.
const dashboardCacheTTL = 60 * time.Second

// Service loads sales and profiles and serves the aggregates. A nil cache
// disables caching; cache failures fall through to a fresh compute.
type Service struct {
	db    *gorm.DB
	cache *redis.Client

	// now is swappable in tests.
	now func() time.Time
}

// NewService constructs a Service. cache may be nil.
func NewService(db *gorm.DB, cache *redis.Client) *Service {
	return &Service{db: db, cache: cache, now: time.Now}
}

// Dashboard returns the admin dashboard, cached for up to a minute when a
// cache backend is configured.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	if s.cache != nil {
		cached, errGet := s.cache.Get(ctx, dashboardCacheKey).Bytes()
		if errGet == nil {
			var out Dashboard
			if errDecode := json.Unmarshal(cached, &out); errDecode == nil {
				return out, nil
			}
		} else if errGet != redis.Nil {
			log.WithError(errGet).Warn("dashboard cache read failed")
		}
	}

	now := s.now().UTC()
	windowStart := now.AddDate(0, 0, -ChartDays)

	var saleModels []models.Sale
	if errFind := s.db.WithContext(ctx).
		Where("created_at >= ?", windowStart).
		Find(&saleModels).Error; errFind != nil {
		return Dashboard{}, fmt.Errorf("stats: load sales: %w", errFind)
	}

	emails, errEmails := s.loadEmails(ctx)
	if errEmails != nil {
		return Dashboard{}, errEmails
	}

	out := Compute(toRows(saleModels), emails, now)

	if s.cache != nil {
		if payload, errEncode := json.Marshal(out); errEncode == nil {
			if errSet := s.cache.Set(ctx, dashboardCacheKey, payload, dashboardCacheTTL).Err(); errSet != nil {
				log.WithError(errSet).Warn("dashboard cache write failed")
			}
		}
	}
	return out, nil
}

// Team returns the all-time per-seller performance table.
func (s *Service) Team(ctx context.Context) ([]TeamPerformanceRow, error) {
	var saleModels []models.Sale
	if errFind := s.db.WithContext(ctx).
		Where("status = ?", models.SaleStatusPaid).
		Find(&saleModels).Error; errFind != nil {
		return nil, fmt.Errorf("stats: load paid sales: %w", errFind)
	}
	emails, errEmails := s.loadEmails(ctx)
	if errEmails != nil {
		return nil, errEmails
	}
	return TeamPerformance(toRows(saleModels), emails), nil
}

// SellerStats are the dashboard numbers a seller sees.
type SellerStats struct {
	TotalRevenue     float64 `json:"totalRevenue"`     // Paid revenue this month.
	TransactionCount int     `json:"transactionCount"` // Paid sales this month.
	ActiveClients    int     `json:"activeClients"`    // All recorded sales, any status.
}

// Seller computes the seller dashboard stats. Sellers with the user role only
// see their own sales; moderators and admins see the whole team's.
func (s *Service) Seller(ctx context.Context, profile *models.Profile) (SellerStats, error) {
	now := s.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	scoped := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&models.Sale{})
		if profile.Role == models.RoleUser {
			q = q.Where("user_id = ?", profile.ID)
		}
		return q
	}

	var monthAgg struct {
		Total float64
		Count int64
	}
	if errScan := scoped().
		Where("status = ? AND created_at >= ? AND created_at < ?", models.SaleStatusPaid, monthStart, monthEnd).
		Select("COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Scan(&monthAgg).Error; errScan != nil {
		return SellerStats{}, fmt.Errorf("stats: month aggregate: %w", errScan)
	}

	var allCount int64
	if errCount := scoped().Count(&allCount).Error; errCount != nil {
		return SellerStats{}, fmt.Errorf("stats: count sales: %w", errCount)
	}

	return SellerStats{
		TotalRevenue:     monthAgg.Total,
		TransactionCount: int(monthAgg.Count),
		ActiveClients:    int(allCount),
	}, nil
}

// loadEmails maps profile IDs to display emails.
func (s *Service) loadEmails(ctx context.Context) (map[string]string, error) {
	var profiles []models.Profile
	if errFind := s.db.WithContext(ctx).
		Select("id", "email").
		Find(&profiles).Error; errFind != nil {
		return nil, fmt.Errorf("stats: load profiles: %w", errFind)
	}
	out := make(map[string]string, len(profiles))
	for _, profile := range profiles {
		out[profile.ID] = profile.Email
	}
	return out, nil
}

// toRows projects sale models onto aggregation rows.
func toRows(saleModels []models.Sale) []SaleRow {
	rows := make([]SaleRow, 0, len(saleModels))
	for _, sale := range saleModels {
		rows = append(rows, SaleRow{
			ID:            sale.ID,
			UserID:        sale.UserID,
			Amount:        sale.Amount,
			Status:        sale.Status,
			CustomerEmail: sale.CustomerEmail,
			CreatedAt:     sale.CreatedAt,
		})
	}
	return rows
}
