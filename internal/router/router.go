// Package router assembles the Gin engine that serves the ledger API.
package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "budgetledger/internal/docs" // registers the Swagger document
	"budgetledger/internal/handlers"
	"budgetledger/internal/middleware"
	"budgetledger/internal/services"
)

// Deps are the services behind the HTTP surface. Ping is optional and
// backs the health check.
type Deps struct {
	Categories   services.CategoryServicer
	Transactions services.TransactionServicer
	Summaries    services.SummaryServicer
	Ping         func(ctx context.Context) error
}

// New builds the engine with logging, error handling, CORS, Swagger,
// the health check and the /api/v1/budget routes.
func New(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogging())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORS())

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/api/health", func(c *gin.Context) {
		if deps.Ping != nil {
			if err := deps.Ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	categoryHandler := handlers.NewCategoryHandler(deps.Categories)
	transactionHandler := handlers.NewTransactionHandler(deps.Transactions)
	summaryHandler := handlers.NewSummaryHandler(deps.Summaries)

	budget := r.Group("/api/v1/budget")

	categories := budget.Group("/categories")
	categories.GET("", categoryHandler.ListCategories)
	categories.POST("", categoryHandler.CreateCategory)
	categories.POST("/defaults", categoryHandler.InitializeDefaults)
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	transactions := budget.Group("/transactions")
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.GET("/search", transactionHandler.SearchTransactions)
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	budget.GET("/summary", summaryHandler.GetSummary)
	budget.GET("/summary/yearly", summaryHandler.GetYearlySummary)
	budget.GET("/export", summaryHandler.Export)

	return r
}
