// Package http wires the JSON API: route registration, token validation and
// role gating in front of the sales dashboard handlers.
package http

import (
	nethttp "net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/comptoir-lab/salesboard/internal/access"
	"github.com/comptoir-lab/salesboard/internal/config"
	"github.com/comptoir-lab/salesboard/internal/http/handlers"
	"github.com/comptoir-lab/salesboard/internal/payment"
	"github.com/comptoir-lab/salesboard/internal/pool"
	"github.com/comptoir-lab/salesboard/internal/provider"
	"github.com/comptoir-lab/salesboard/internal/stats"
)

// NewRouter builds the gin engine with all routes registered. cache may be
// nil when Redis is not configured.
func NewRouter(db *gorm.DB, cache *redis.Client, cfg config.Config) *gin.Engine {
	guard := access.NewGuard(db)
	credentialPool := pool.NewManager(db)
	providerClient := provider.NewClient(
		cfg.Provider.Endpoint,
		cfg.Provider.Message,
		time.Duration(cfg.Provider.TimeoutSeconds)*time.Second,
	)
	issuer := payment.NewIssuer(db, credentialPool, providerClient, cfg.Provider.DefaultRecipient)
	statsService := stats.NewService(db, cache)

	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(nethttp.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api")

	authHandler := handlers.NewAuthHandler(db, cfg.JWT)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/logout", authHandler.Logout)

	authed := api.Group("")
	authed.Use(AuthMiddleware(guard, cfg.JWT))

	profileHandler := handlers.NewProfileHandler()
	authed.GET("/profile", profileHandler.Get)

	paymentHandler := handlers.NewPaymentHandler(issuer)
	authed.POST("/payment-links", paymentHandler.Create)

	transactionHandler := handlers.NewTransactionHandler(db)
	authed.GET("/transactions", transactionHandler.List)
	authed.GET("/transactions/history", transactionHandler.History)

	statsHandler := handlers.NewStatsHandler(statsService)
	authed.GET("/stats/dashboard", statsHandler.SellerDashboard)

	admin := authed.Group("/admin")

	users := handlers.NewUserHandler(db)
	admin.GET("/users", RequireOperation(access.OpManageUsers), users.List)
	admin.POST("/users", RequireOperation(access.OpManageUsers), users.Create)
	admin.PUT("/users/:id/role", RequireOperation(access.OpManageUsers), users.UpdateRole)
	admin.PUT("/users/:id/banned", RequireOperation(access.OpManageUsers), users.SetBanned)
	admin.POST("/sellers", RequireOperation(access.OpManageUsers), users.CreateSeller)

	admin.GET("/dashboard", RequireOperation(access.OpViewAdminDashboard), statsHandler.AdminDashboard)
	admin.GET("/team-performance", RequireOperation(access.OpViewTeamPerformance), statsHandler.TeamPerformance)

	credentials := handlers.NewCredentialHandler(db)
	admin.GET("/payment-apis", RequireOperation(access.OpManageCredentials), credentials.List)
	admin.POST("/payment-apis", RequireOperation(access.OpManageCredentials), credentials.Create)
	admin.PUT("/payment-apis/:id/toggle", RequireOperation(access.OpManageCredentials), credentials.Toggle)
	admin.DELETE("/payment-apis/:id", RequireOperation(access.OpManageCredentials), credentials.Delete)

	return engine
}
