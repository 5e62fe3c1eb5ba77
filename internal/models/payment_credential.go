package models

import "time"

// DefaultMaxDailyUsage caps how many payment links a credential may issue per day.
const DefaultMaxDailyUsage = 2

// PaymentCredential represents one payment-provider account usable to request
// a payment link. Each credential carries its own daily quota.
type PaymentCredential struct {
	ID string `gorm:"type:text;primaryKey"` // Credential ID.

	Name string `gorm:"type:text;not null"` // Display name.

	VendorToken string `gorm:"type:text;not null;uniqueIndex"` // Provider sender identity, secret.
	APIToken    string `gorm:"type:text;not null;uniqueIndex"` // Provider API token, stored but unused in calls.

	IsActive bool `gorm:"not null;default:true"` // Inactive credentials are never selected.

	DailyUsageCount int        `gorm:"not null;default:0"` // Links issued today.
	MaxDailyUsage   int        `gorm:"not null;default:2"` // Daily quota.
	UsageDate       *time.Time // UTC day the counter belongs to; counters from earlier days are reset.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}

// TableName overrides the default table name.
func (PaymentCredential) TableName() string {
	return "payment_apis"
}
