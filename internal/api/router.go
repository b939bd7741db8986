// Package api exposes the transaction store and assistant over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/dvloznov/expense-tracker/internal/api/handlers"
	"github.com/dvloznov/expense-tracker/internal/api/middleware"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Dependencies are the components served by the router.
type Dependencies struct {
	Ledger handlers.Ledger
	// Assistant may be nil; the assistant endpoints then answer 503.
	Assistant handlers.Assistant
	Location  *time.Location
}

// NewRouter builds the gin engine with middleware and all routes.
func NewRouter(deps Dependencies, log zerolog.Logger) *gin.Engine {
	handlers.RegisterValidators()

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(log),
		middleware.Recovery(log),
		middleware.CORS(),
	)
	_ = r.SetTrustedProxies(nil)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	transactions := handlers.NewTransactionsHandler(deps.Ledger, deps.Location)
	assist := handlers.NewAssistantHandler(deps.Ledger, deps.Assistant)

	api := r.Group("/api")
	{
		api.GET("/transactions", transactions.ListTransactions)
		api.POST("/transactions", transactions.CreateTransaction)
		api.POST("/transactions/parse", assist.ParseTransaction)
		api.GET("/balance", transactions.GetBalance)

		api.POST("/assistant/insights", assist.Insights)
		api.POST("/assistant/budget", assist.Budget)
		api.POST("/assistant/ask", assist.Ask)

		api.GET("/reports/daily", transactions.DailyReport)
		api.GET("/reports/monthly", transactions.MonthlyReport)
	}

	return r
}
