// Package stats computes dashboard rollups over recorded sales.
//
// The aggregation functions are pure: they take the loaded rows and a single
// "now" instant, so results are deterministic and testable without a store.
package stats

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Window and feed sizes for the admin dashboard.
const (
	// ChartDays is the revenue chart lookback, in calendar days.
	ChartDays = 30
	// TopPerformerLimit caps the top performers table.
	TopPerformerLimit = 10
	// ActivityLimit caps the recent activity feed.
	ActivityLimit = 25
)

// Activity feed entry types.
const (
	ActivitySalePaid      = "sale_paid"
	ActivityLinkGenerated = "link_generated"
)

// UnattributedLabel labels sales with no owning profile.
const UnattributedLabel = "— (non attribuée)"

// unknownEmail is displayed when an owner has no resolvable email.
const unknownEmail = "—"

// SaleRow is the slice of a sale the aggregator needs.
type SaleRow struct {
	ID            string
	UserID        *string
	Amount        float64
	Status        string
	CustomerEmail *string
	CreatedAt     time.Time
}

// KPIs are the four dashboard headline numbers.
type KPIs struct {
	CAToday float64 `json:"caToday"` // Paid revenue today.
	// CATodayChangePercent is nil when yesterday had no revenue and today has
	// none either: no baseline, not a 0% change.
	CATodayChangePercent  *int    `json:"caTodayChangePercent"`
	ActiveSellersToday    int     `json:"activeSellersToday"`    // Distinct sellers with any sale today.
	ConversionRatePercent int     `json:"conversionRatePercent"` // Paid share of this month's sales.
	CAMonthTotal          float64 `json:"caMonthTotal"`          // Paid revenue this month.
}

// ChartPoint is one calendar day of paid revenue.
type ChartPoint struct {
	Date   string  `json:"date"` // UTC day, YYYY-MM-DD.
	Amount float64 `json:"amount"`
}

// TopPerformer is one row of the monthly leaderboard.
type TopPerformer struct {
	Email      string  `json:"email"`
	Revenue    float64 `json:"revenue"`
	SalesCount int     `json:"salesCount"`
}

// Activity is one entry of the recent activity feed.
type Activity struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"` // sale_paid or link_generated.
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Dashboard is the full admin dashboard payload.
type Dashboard struct {
	KPIs          KPIs           `json:"kpis"`
	ChartData     []ChartPoint   `json:"chartData"`
	TopPerformers []TopPerformer `json:"topPerformers"`
	Activities    []Activity     `json:"activities"`
}

// TeamPerformanceRow aggregates one seller's all-time paid sales.
type TeamPerformanceRow struct {
	Email          string  `json:"email"`
	ValidatedSales int     `json:"validatedSales"`
	Revenue        float64 `json:"revenue"`
	LastSale       string  `json:"lastSale,omitempty"` // RFC3339, empty when unknown.
}

// Compute builds the admin dashboard from the sales of the 30-day window.
// Day boundaries are UTC calendar days derived from now.
func Compute(sales []SaleRow, emailByProfileID map[string]string, now time.Time) Dashboard {
	now = now.UTC()
	today := truncateDay(now)
	yesterday := today.AddDate(0, 0, -1)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	var (
		caToday, caYesterday, caMonth float64
		monthTotal, monthPaid         int
	)
	sellersToday := make(map[string]struct{})
	paidByDay := make(map[string]float64)

	for _, sale := range sales {
		created := sale.CreatedAt.UTC()
		day := truncateDay(created)
		paid := sale.Status == "paid"
		amount := sale.Amount

		if paid {
			paidByDay[dayKey(day)] += amount
			if day.Equal(today) {
				caToday += amount
			}
			if day.Equal(yesterday) {
				caYesterday += amount
			}
		}
		if day.Equal(today) && sale.UserID != nil {
			sellersToday[*sale.UserID] = struct{}{}
		}
		if !created.Before(monthStart) && !created.After(now) {
			monthTotal++
			if paid {
				monthPaid++
				caMonth += amount
			}
		}
	}

	kpis := KPIs{
		CAToday:            caToday,
		ActiveSellersToday: len(sellersToday),
		CAMonthTotal:       caMonth,
	}
	kpis.CATodayChangePercent = changePercent(caToday, caYesterday)
	if monthTotal > 0 {
		kpis.ConversionRatePercent = roundPercent(float64(monthPaid) / float64(monthTotal) * 100)
	}

	return Dashboard{
		KPIs:          kpis,
		ChartData:     buildChart(paidByDay, today),
		TopPerformers: topPerformers(sales, emailByProfileID, monthStart, now),
		Activities:    recentActivities(sales, emailByProfileID),
	}
}

// changePercent computes the day-over-day revenue change. With no baseline it
// returns nil for a no-revenue day and 100 for revenue out of nowhere.
func changePercent(today, yesterday float64) *int {
	var pct int
	switch {
	case yesterday > 0:
		pct = roundPercent((today - yesterday) / yesterday * 100)
	case today > 0:
		pct = 100
	default:
		return nil
	}
	return &pct
}

// buildChart materializes one point per calendar day of the window, zero
// filled and sorted ascending. Sparse days are present, not omitted.
func buildChart(paidByDay map[string]float64, today time.Time) []ChartPoint {
	points := make([]ChartPoint, 0, ChartDays)
	for i := ChartDays - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		key := dayKey(day)
		points = append(points, ChartPoint{Date: key, Amount: paidByDay[key]})
	}
	return points
}

// topPerformers ranks this month's paid revenue by owner. Unattributed sales
// are excluded here; they surface in the team performance table instead.
func topPerformers(sales []SaleRow, emailByProfileID map[string]string, monthStart, now time.Time) []TopPerformer {
	type agg struct {
		revenue float64
		count   int
	}
	byOwner := make(map[string]*agg)
	for _, sale := range sales {
		if sale.Status != "paid" || sale.UserID == nil {
			continue
		}
		created := sale.CreatedAt.UTC()
		if created.Before(monthStart) || created.After(now) {
			continue
		}
		entry := byOwner[*sale.UserID]
		if entry == nil {
			entry = &agg{}
			byOwner[*sale.UserID] = entry
		}
		entry.revenue += sale.Amount
		entry.count++
	}

	rows := make([]TopPerformer, 0, len(byOwner))
	for ownerID, entry := range byOwner {
		email := emailByProfileID[ownerID]
		if email == "" {
			email = unknownEmail
		}
		rows = append(rows, TopPerformer{Email: email, Revenue: entry.revenue, SalesCount: entry.count})
	}
	sort.Slice(rows, func(a, b int) bool {
		if rows[a].Revenue != rows[b].Revenue {
			return rows[a].Revenue > rows[b].Revenue
		}
		return rows[a].Email < rows[b].Email
	})
	if len(rows) > TopPerformerLimit {
		rows = rows[:TopPerformerLimit]
	}
	return rows
}

// recentActivities renders the newest sales of the window as feed entries.
func recentActivities(sales []SaleRow, emailByProfileID map[string]string) []Activity {
	ordered := make([]SaleRow, len(sales))
	copy(ordered, sales)
	sort.Slice(ordered, func(a, b int) bool {
		return ordered[a].CreatedAt.After(ordered[b].CreatedAt)
	})
	if len(ordered) > ActivityLimit {
		ordered = ordered[:ActivityLimit]
	}

	activities := make([]Activity, 0, len(ordered))
	for _, sale := range ordered {
		email := unknownEmail
		if sale.UserID != nil {
			if resolved := emailByProfileID[*sale.UserID]; resolved != "" {
				email = resolved
			}
		}
		entry := Activity{ID: sale.ID, CreatedAt: sale.CreatedAt}
		if sale.Status == "paid" {
			entry.Type = ActivitySalePaid
			entry.Message = fmt.Sprintf("Vente validée de %.0f € par %s", sale.Amount, email)
		} else {
			entry.Type = ActivityLinkGenerated
			entry.Message = fmt.Sprintf("%s a généré un lien", email)
		}
		activities = append(activities, entry)
	}
	return activities
}

// TeamPerformance groups all-time paid sales by owner. Ownerless sales land
// in the unattributed bucket. The most recent sale is the lexicographic max
// of the RFC3339 timestamps, which orders chronologically.
func TeamPerformance(sales []SaleRow, emailByProfileID map[string]string) []TeamPerformanceRow {
	type agg struct {
		count    int
		revenue  float64
		lastSale string
	}
	byOwner := make(map[string]*agg)
	for _, sale := range sales {
		if sale.Status != "paid" {
			continue
		}
		ownerID := ""
		if sale.UserID != nil {
			ownerID = *sale.UserID
		}
		entry := byOwner[ownerID]
		if entry == nil {
			entry = &agg{}
			byOwner[ownerID] = entry
		}
		entry.count++
		entry.revenue += sale.Amount
		createdAt := sale.CreatedAt.UTC().Format(time.RFC3339)
		if createdAt > entry.lastSale {
			entry.lastSale = createdAt
		}
	}

	rows := make([]TeamPerformanceRow, 0, len(byOwner))
	for ownerID, entry := range byOwner {
		email := UnattributedLabel
		if ownerID != "" {
			email = emailByProfileID[ownerID]
			if email == "" {
				email = unknownEmail
			}
		}
		rows = append(rows, TeamPerformanceRow{
			Email:          email,
			ValidatedSales: entry.count,
			Revenue:        entry.revenue,
			LastSale:       entry.lastSale,
		})
	}
	sort.Slice(rows, func(a, b int) bool {
		if rows[a].Revenue != rows[b].Revenue {
			return rows[a].Revenue > rows[b].Revenue
		}
		return rows[a].Email < rows[b].Email
	})
	return rows
}

// roundPercent rounds half away from zero.
func roundPercent(value float64) int {
	return int(math.Round(value))
}

// truncateDay returns midnight of a UTC instant's calendar day.
func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// dayKey formats a day as YYYY-MM-DD.
func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
