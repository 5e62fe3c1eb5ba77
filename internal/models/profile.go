package models

import "time"

// Roles assignable to a profile.
const (
	// RoleAdmin grants every operation, including user and credential management.
	RoleAdmin = "admin"
	// RoleModerator sees team-wide transactions but cannot administrate.
	RoleModerator = "moderator"
	// RoleUser is the default seller role, scoped to its own sales.
	RoleUser = "user"
)

// ValidRole reports whether role is one of the known role names.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleModerator, RoleUser:
		return true
	}
	return false
}

// Profile represents an application identity with its role and ban status.
// The ID equals the identity subject and is created lazily for identities
// that predate role-based access.
type Profile struct {
	ID string `gorm:"type:text;primaryKey"` // Identity subject ID.

	Email    string `gorm:"type:text;uniqueIndex"` // Email address.
	Password string `gorm:"type:text"`             // Hashed password.

	Role   string `gorm:"type:text;not null;default:user"` // One of admin, moderator, user.
	Banned bool   `gorm:"not null;default:false"`          // Banned profiles are denied everything.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// TableName overrides the default table name.
func (Profile) TableName() string {
	return "profiles"
}
