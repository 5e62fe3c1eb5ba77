package payment

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/comptoir-lab/salesboard/internal/models"
	"github.com/comptoir-lab/salesboard/internal/pool"
)

// MaxAmount is the largest amount accepted for one payment link, in EUR.
const MaxAmount = 1000

// Validation errors, each with its user-facing message.
var (
	// ErrInvalidAmount indicates the amount is not a positive finite number.
	ErrInvalidAmount = errors.New("Le montant doit être valide et supérieur à 0.")
	// ErrAmountTooHigh indicates the amount exceeds MaxAmount.
	ErrAmountTooHigh = errors.New("Le montant ne peut pas dépasser 1000€.")
	// ErrUnauthorized indicates the caller has no usable profile.
	ErrUnauthorized = errors.New("Non autorisé")
	// ErrVendorTokenMissing indicates the selected credential is misconfigured.
	ErrVendorTokenMissing = errors.New("Le vendor_token de l'API n'est pas configuré")
)

// LinkRequester submits one payment request to the provider.
type LinkRequester interface {
	CreatePaymentRequest(ctx context.Context, vendorToken string, amount float64, recipient string) (link string, raw []byte, err error)
}

// Issuer validates payment-link requests, picks a credential from the pool,
// calls the provider and records the resulting sale.
type Issuer struct {
	db               *gorm.DB
	pool             *pool.Manager
	provider         LinkRequester
	defaultRecipient string
}

// NewIssuer constructs an Issuer. defaultRecipient receives the payment
// request when the seller gives no customer email.
func NewIssuer(db *gorm.DB, pool *pool.Manager, provider LinkRequester, defaultRecipient string) *Issuer {
	return &Issuer{db: db, pool: pool, provider: provider, defaultRecipient: defaultRecipient}
}

// ParseAmount parses a submitted amount and checks it is a positive finite
// number no greater than MaxAmount.
func ParseAmount(raw string) (float64, error) {
	amount, errParse := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if errParse != nil || math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return 0, ErrInvalidAmount
	}
	if amount > MaxAmount {
		return 0, ErrAmountTooHigh
	}
	return amount, nil
}

// Issue creates one payment link for the given profile.
//
// The provider call is the point of no return: once a link exists, the usage
// increment and the sale insert are best effort. Their failures are logged
// and the link is still returned, accepting a provider-side request with no
// local record over a seller losing a link that was already created.
func (i *Issuer) Issue(ctx context.Context, profile *models.Profile, rawAmount, customerEmail string) (string, error) {
	amount, errAmount := ParseAmount(rawAmount)
	if errAmount != nil {
		return "", errAmount
	}
	if profile == nil || profile.Banned {
		return "", ErrUnauthorized
	}

	credential, errSelect := i.pool.Select(ctx)
	if errSelect != nil {
		return "", errSelect
	}
	if strings.TrimSpace(credential.VendorToken) == "" {
		return "", ErrVendorTokenMissing
	}

	customerEmail = strings.TrimSpace(customerEmail)
	recipient := customerEmail
	if recipient == "" {
		recipient = i.defaultRecipient
	}

	link, raw, errRequest := i.provider.CreatePaymentRequest(ctx, credential.VendorToken, amount, recipient)
	if errRequest != nil {
		return "", errRequest
	}

	if errUse := i.pool.RecordUse(ctx, credential.ID); errUse != nil {
		log.WithError(errUse).WithField("credential_id", credential.ID).Error("record credential use failed")
	}

	ownerID := profile.ID
	sale := models.Sale{
		ID:           uuid.NewString(),
		UserID:       &ownerID,
		Amount:       amount,
		PaymentAPIID: credential.ID,
		PaymentLink:  &link,
		Status:       models.SaleStatusPending,
		CreatedAt:    time.Now().UTC(),
	}
	if customerEmail != "" {
		sale.CustomerEmail = &customerEmail
	}
	if len(raw) > 0 {
		sale.ProviderResponse = datatypes.JSON(raw)
	}
	if errInsert := i.db.WithContext(ctx).Create(&sale).Error; errInsert != nil {
		log.WithError(errInsert).WithField("credential_id", credential.ID).Error("record sale failed")
	}

	return link, nil
}

// QuotaExceededMessage is the user-facing message when the pool is exhausted.
const QuotaExceededMessage = "Quota journalier atteint pour tous les comptes"

// UserMessage maps an Issue error to its user-facing message.
func UserMessage(err error) string {
	if errors.Is(err, pool.ErrNoneAvailable) {
		return QuotaExceededMessage
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
