// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"posledger/internal/domain/closing"
	"posledger/internal/domain/item"
	"posledger/internal/domain/movement"
	"posledger/internal/domain/reconciliation"
	"posledger/internal/domain/returns"
	"posledger/internal/domain/sales"
	"posledger/internal/domain/wallet"
	"posledger/internal/infrastructure/http/v1/handlers"
	"posledger/internal/infrastructure/http/v1/middleware"

	"posledger/internal/core/tx"
	"posledger/pkg/logger"
)

// RouterConfig carries the wired services and repositories the API
// exposes.
type RouterConfig struct {
	Logger *logger.Logger

	// Pool is nil when running on the in-memory store; health checks
	// then skip the database probe.
	Pool *pgxpool.Pool

	TxManager tx.Manager

	ItemService           *item.Service
	MovementService       *movement.Service
	ReturnService         *returns.Service
	ReconciliationService *reconciliation.Service
	ClosingService        *closing.Service

	WalletRepo wallet.Repository
	SalesRepo  sales.Repository
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters)
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.Metrics())
	router.Use(middleware.ErrorHandler())

	// Health and metrics endpoints
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	base := handlers.NewBaseHandler()

	api := router.Group("/api/v1")
	{
		handlers.NewItemHandler(base, cfg.ItemService).
			RegisterRoutes(api.Group("/items"))

		handlers.NewMovementHandler(base, cfg.MovementService).
			RegisterRoutes(api.Group("/movements"))

		handlers.NewReturnHandler(base, cfg.ReturnService).
			RegisterRoutes(api.Group("/returns"))

		handlers.NewReconciliationHandler(base, cfg.ReconciliationService).
			RegisterRoutes(api.Group("/reconciliation"))

		handlers.NewClosingHandler(base, cfg.ClosingService).
			RegisterRoutes(api.Group("/closing"))

		handlers.NewWalletHandler(base, cfg.WalletRepo).
			RegisterRoutes(api.Group("/wallets"))

		handlers.NewSalesHandler(base, cfg.SalesRepo, cfg.TxManager).
			RegisterRoutes(api.Group("/sales"))
	}

	return router
}
