package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comptoir-lab/salesboard/internal/stats"
)

// StatsHandler serves the dashboard aggregates.
type StatsHandler struct {
	svc *stats.Service
}

// NewStatsHandler constructs a StatsHandler.
func NewStatsHandler(svc *stats.Service) *StatsHandler {
	return &StatsHandler{svc: svc}
}

// SellerDashboard returns the seller stats cards.
func (h *StatsHandler) SellerDashboard(c *gin.Context) {
	profile := currentProfile(c)
	if profile == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing profile"})
		return
	}
	out, errCompute := h.svc.Seller(c.Request.Context(), profile)
	if errCompute != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors du calcul des statistiques"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": out})
}

// AdminDashboard returns KPIs, the revenue chart, top performers and the
// activity feed.
func (h *StatsHandler) AdminDashboard(c *gin.Context) {
	out, errCompute := h.svc.Dashboard(c.Request.Context())
	if errCompute != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de charger les données."})
		return
	}
	c.JSON(http.StatusOK, out)
}

// TeamPerformance returns the all-time per-seller performance table.
func (h *StatsHandler) TeamPerformance(c *gin.Context) {
	rows, errCompute := h.svc.Team(c.Request.Context())
	if errCompute != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors du chargement des performances."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}
