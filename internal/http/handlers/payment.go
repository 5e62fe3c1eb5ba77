package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/comptoir-lab/salesboard/internal/payment"
	"github.com/comptoir-lab/salesboard/internal/pool"
	"github.com/comptoir-lab/salesboard/internal/provider"
)

// PaymentHandler creates payment links through the issuer.
type PaymentHandler struct {
	issuer *payment.Issuer
}

// NewPaymentHandler constructs a PaymentHandler.
func NewPaymentHandler(issuer *payment.Issuer) *PaymentHandler {
	return &PaymentHandler{issuer: issuer}
}

// createPaymentLinkRequest defines the request body for link creation. The
// amount arrives as a string, the way the dashboard form submits it.
type createPaymentLinkRequest struct {
	Amount        string `json:"amount"`
	CustomerEmail string `json:"customer_email"`
}

// Create validates the request and issues one payment link.
func (h *PaymentHandler) Create(c *gin.Context) {
	var body createPaymentLinkRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	profile := currentProfile(c)
	link, errIssue := h.issuer.Issue(c.Request.Context(), profile, body.Amount, strings.TrimSpace(body.CustomerEmail))
	if errIssue != nil {
		c.JSON(statusForIssueError(errIssue), gin.H{"error": payment.UserMessage(errIssue)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment_link": link})
}

// statusForIssueError maps issuer errors onto HTTP status codes.
func statusForIssueError(err error) int {
	switch {
	case errors.Is(err, payment.ErrInvalidAmount), errors.Is(err, payment.ErrAmountTooHigh):
		return http.StatusBadRequest
	case errors.Is(err, payment.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, pool.ErrNoneAvailable):
		return http.StatusConflict
	}
	var providerErr *provider.Error
	if errors.As(err, &providerErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
