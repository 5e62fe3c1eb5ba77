package access

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/comptoir-lab/salesboard/internal/models"
)

// Access errors.
var (
	// ErrUnauthorized indicates no resolvable identity.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden indicates a resolved identity whose role is insufficient
	// or whose profile is banned.
	ErrForbidden = errors.New("forbidden")
)

// Identity is a verified caller identity from the token layer.
type Identity struct {
	Subject string // Identity provider subject, equals the profile ID.
	Email   string // Email carried by the token.
}

// Guard resolves identities to profiles and enforces role gating.
type Guard struct {
	db *gorm.DB
}

// NewGuard constructs a Guard.
func NewGuard(db *gorm.DB) *Guard {
	return &Guard{db: db}
}

// ResolveProfile looks up the profile matching an identity, creating it with
// the default role when absent. The lazy insert keeps identities that predate
// role-based access working.
func (g *Guard) ResolveProfile(ctx context.Context, identity Identity) (*models.Profile, error) {
	subject := strings.TrimSpace(identity.Subject)
	if subject == "" {
		return nil, ErrUnauthorized
	}

	var profile models.Profile
	errFind := g.db.WithContext(ctx).First(&profile, "id = ?", subject).Error
	if errFind == nil {
		if profile.Email == "" {
			profile.Email = identity.Email
		}
		return &profile, nil
	}
	if !errors.Is(errFind, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("access: lookup profile: %w", errFind)
	}

	profile = models.Profile{
		ID:     subject,
		Email:  strings.TrimSpace(identity.Email),
		Role:   models.RoleUser,
		Banned: false,
	}
	if errCreate := g.db.WithContext(ctx).Create(&profile).Error; errCreate != nil {
		return nil, fmt.Errorf("access: create profile: %w", errCreate)
	}
	log.WithFields(log.Fields{"profile_id": subject}).Info("lazily created profile")
	return &profile, nil
}

// Require resolves the identity and checks it against the capability table.
// Banned profiles are denied every operation regardless of role.
func (g *Guard) Require(ctx context.Context, identity Identity, op Operation) (*models.Profile, error) {
	profile, err := g.ResolveProfile(ctx, identity)
	if err != nil {
		return nil, err
	}
	if profile.Banned {
		return nil, ErrForbidden
	}
	if !Allowed(profile.Role, op) {
		return nil, ErrForbidden
	}
	return profile, nil
}
