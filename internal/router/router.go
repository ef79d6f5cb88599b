package router

import (
	"github.com/Jacket-69/Necronomics/internal/config"
	"github.com/Jacket-69/Necronomics/internal/handler"
	"github.com/Jacket-69/Necronomics/internal/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter configures the gin engine and registers all routes.
func SetupRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	api := r.Group("/api")

	jwtSecret := cfg.JWT.Secret

	// no auth required
	authHandler := handler.NewAuthHandler(db, jwtSecret, cfg.JWT.ExpireHours)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(
		middleware.AuthMiddleware(jwtSecret, db),
		middleware.AuditMiddleware(db),
	)

	protected.GET("/me", handler.GetMe)

	accountHandler := handler.NewAccountHandler(db)
	protected.GET("/accounts", accountHandler.ListAccounts)
	protected.GET("/accounts/:id", accountHandler.GetAccount)
	protected.POST("/accounts", accountHandler.CreateAccount)
	protected.PUT("/accounts/:id", accountHandler.UpdateAccount)
	protected.POST("/accounts/:id/archive", accountHandler.ArchiveAccount)
	protected.DELETE("/accounts/:id", accountHandler.DeleteAccount)
	protected.GET("/currencies", accountHandler.ListCurrencies)

	categoryHandler := handler.NewCategoryHandler(db)
	protected.GET("/categories", categoryHandler.ListCategories)
	protected.GET("/categories/:id", categoryHandler.GetCategory)
	protected.POST("/categories", categoryHandler.CreateCategory)
	protected.PUT("/categories/:id", categoryHandler.UpdateCategory)
	protected.DELETE("/categories/:id", categoryHandler.DeleteCategory)

	transactionHandler := handler.NewTransactionHandler(db, cfg.App.BaseCurrencyID)
	protected.GET("/transactions", transactionHandler.ListTransactions)
	protected.POST("/transactions", transactionHandler.CreateTransaction)
	protected.PUT("/transactions/:id", transactionHandler.UpdateTransaction)
	protected.DELETE("/transactions/:id", transactionHandler.DeleteTransaction)
	protected.GET("/balance-summary", transactionHandler.GetBalanceSummary)

	debtHandler := handler.NewDebtHandler(db)
	protected.GET("/debts", debtHandler.ListDebts)
	protected.GET("/debts/credit-utilization", debtHandler.GetCreditUtilization)
	protected.GET("/debts/projections", debtHandler.GetPaymentProjections)
	protected.GET("/debts/:id", debtHandler.GetDebtDetail)
	protected.POST("/debts", debtHandler.CreateDebt)
	protected.PUT("/debts/:id", debtHandler.UpdateDebt)
	protected.DELETE("/debts/:id", debtHandler.DeleteDebt)
	protected.POST("/installments/:id/pay", debtHandler.MarkInstallmentPaid)

	dashboardHandler := handler.NewDashboardHandler(db, cfg.App.BaseCurrencyID)
	protected.GET("/dashboard", dashboardHandler.GetDashboardData)

	exportHandler := handler.NewExportHandler(db)
	protected.GET("/export/csv", exportHandler.ExportCSV)
	protected.GET("/export/xlsx", exportHandler.ExportXLSX)

	logHandler := handler.NewLogHandler(db)
	protected.GET("/logs", logHandler.ListLogs)

	return r
}
