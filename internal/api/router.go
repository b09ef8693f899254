package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/atlasbank-portal/internal/api/handler"
	"github.com/atlasbank-portal/internal/api/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	ledgerHandler *handler.LedgerHandler,
	loanHandler *handler.LoanHandler,
	lifecycleHandler *handler.LifecycleHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints, all behind the identity headers
	v1 := r.Group("/api/v1")
	v1.Use(middleware.Principal())
	{
		// Account lifecycle and money movement
		accounts := v1.Group("/accounts")
		{
			accounts.POST("", lifecycleHandler.OpenAccount)
			accounts.POST("/deposit", ledgerHandler.Deposit)
			accounts.POST("/withdraw", ledgerHandler.Withdraw)
			accounts.POST("/transfer", ledgerHandler.Transfer)
			accounts.GET("/:id/transactions", ledgerHandler.History)
			accounts.POST("/:id/close", lifecycleHandler.RequestClosure)
		}

		// Pending closure approval workflow
		closures := v1.Group("/closures")
		{
			closures.POST("/:id/decide", lifecycleHandler.DecideClosure)
		}

		// Loan operations
		loans := v1.Group("/loans")
		{
			loans.POST("", loanHandler.Create)
			loans.GET("/:id", loanHandler.GetByID)
			loans.GET("/:id/schedule", loanHandler.Schedule)
			loans.POST("/:id/repay", loanHandler.Repay)
			loans.PUT("/:id/status", loanHandler.UpdateStatus)
			loans.DELETE("/:id", lifecycleHandler.DeleteLoan)
		}

		// Verification gate for destructive operations
		v1.POST("/verification", lifecycleHandler.StartVerification)
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
