package handler

import (
	"github.com/dafibh/vendas/vendas-backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// Handlers groups every HTTP handler registered by RegisterRoutes
type Handlers struct {
	Health    *HealthHandler
	Dashboard *DashboardHandler
	Sale      *SaleHandler
	Expense   *ExpenseHandler
	Product   *ProductHandler
	Export    *ExportHandler
}

// RegisterRoutes sets up all API routes. exportLimiter applies to the download endpoints.
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, exportLimiter *middleware.RateLimiter, h Handlers) {
	e.GET("/health", h.Health.GetHealth)

	// API version 1
	api := e.Group("/api/v1")
	api.Use(authMiddleware.Authenticate())

	limitExports := middleware.RateLimitMiddleware(exportLimiter)

	// Dashboard routes (protected)
	dashboard := api.Group("/dashboard")
	dashboard.GET("/summary", h.Dashboard.GetSummary)
	dashboard.GET("/goals", h.Dashboard.GetGoalProgress)
	dashboard.PUT("/goals", h.Dashboard.UpsertGoal)
	dashboard.GET("/export/:format", h.Dashboard.ExportDashboard, limitExports)

	// Sale routes (protected)
	sales := api.Group("/sales")
	sales.GET("", h.Sale.GetSales)
	sales.POST("", h.Sale.CreateSale)
	sales.PATCH("/status", h.Sale.UpdateStatus)
	sales.GET("/export/:format", h.Sale.ExportSales, limitExports)
	sales.PUT("/:id", h.Sale.UpdateSale)
	sales.DELETE("/:id", h.Sale.DeleteSale)

	// Expense routes (protected)
	expenses := api.Group("/expenses")
	expenses.GET("", h.Expense.GetExpenses)
	expenses.POST("", h.Expense.CreateExpense)
	expenses.PUT("/:id", h.Expense.UpdateExpense)
	expenses.DELETE("/:id", h.Expense.DeleteExpense)

	// Product routes (protected)
	api.GET("/products", h.Product.GetProducts)

	// Archived exports (protected)
	api.GET("/exports", h.Export.GetRecent)
}
