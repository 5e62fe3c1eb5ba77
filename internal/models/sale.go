package models

import (
	"time"

	"gorm.io/datatypes"
)

// Sale statuses. Only pending is ever written here; the rest are advanced by
// the provider reconciliation flow.
const (
	SaleStatusPending   = "pending"
	SaleStatusPaid      = "paid"
	SaleStatusFailed    = "failed"
	SaleStatusCancelled = "cancelled"
)

// Sale records one payment-link issuance and its lifecycle status.
type Sale struct {
	ID string `gorm:"type:text;primaryKey"` // Sale ID.

	UserID *string `gorm:"type:text;index"` // Owning profile ID, nil for unattributed sales.

	Amount float64 `gorm:"type:decimal(10,2);not null"` // Amount in EUR, within (0, 1000].

	PaymentAPIID string `gorm:"type:text;not null;index"` // Servicing credential ID.

	PaymentLink   *string `gorm:"type:text"` // Provider payment URL.
	CustomerEmail *string `gorm:"type:text"` // Optional customer email.

	Status string `gorm:"type:text;not null;default:pending;index"` // pending, paid, failed or cancelled.

	ProviderResponse datatypes.JSON `gorm:"type:jsonb"` // Raw provider payload, kept for reconciliation.

	CreatedAt time.Time `gorm:"not null;index"` // Creation timestamp.
}

// TableName overrides the default table name.
func (Sale) TableName() string {
	return "sales"
}
