package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/comptoir-lab/salesboard/internal/models"
)

// Transaction listing limits.
const (
	defaultTransactionLimit = 5
	historyTransactionLimit = 100
)

// TransactionHandler lists recorded sales. The user role only sees its own;
// moderators and admins see the whole team's.
type TransactionHandler struct {
	db *gorm.DB
}

// NewTransactionHandler constructs a TransactionHandler.
func NewTransactionHandler(db *gorm.DB) *TransactionHandler {
	return &TransactionHandler{db: db}
}

// transactionItem is one sale row of a listing.
type transactionItem struct {
	ID            string  `json:"id"`
	UserID        *string `json:"user_id"`
	Amount        float64 `json:"amount"`
	PaymentAPIID  string  `json:"payment_api_id"`
	PaymentLink   *string `json:"payment_link"`
	CustomerEmail *string `json:"customer_email"`
	Status        string  `json:"status"`
	CreatedAt     string  `json:"created_at"`
}

// List returns the caller's latest transactions, newest first.
func (h *TransactionHandler) List(c *gin.Context) {
	limit := defaultTransactionLimit
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		parsed, errParse := strconv.Atoi(raw)
		if errParse == nil && parsed > 0 && parsed <= historyTransactionLimit {
			limit = parsed
		}
	}
	h.list(c, limit)
}

// History returns the transaction history page listing.
func (h *TransactionHandler) History(c *gin.Context) {
	h.list(c, historyTransactionLimit)
}

func (h *TransactionHandler) list(c *gin.Context, limit int) {
	profile := currentProfile(c)
	if profile == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing profile"})
		return
	}

	q := h.db.WithContext(c.Request.Context()).
		Model(&models.Sale{}).
		Order("created_at DESC").
		Limit(limit)
	if profile.Role == models.RoleUser {
		q = q.Where("user_id = ?", profile.ID)
	}

	var sales []models.Sale
	if errFind := q.Find(&sales).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la récupération des transactions"})
		return
	}

	items := make([]transactionItem, 0, len(sales))
	for _, sale := range sales {
		items = append(items, transactionItem{
			ID:            sale.ID,
			UserID:        sale.UserID,
			Amount:        sale.Amount,
			PaymentAPIID:  sale.PaymentAPIID,
			PaymentLink:   sale.PaymentLink,
			CustomerEmail: sale.CustomerEmail,
			Status:        sale.Status,
			CreatedAt:     sale.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	c.JSON(http.StatusOK, gin.H{"transactions": items})
}
