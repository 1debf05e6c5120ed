package handler

import (
	"net/http"
	"time"

	"github.com/dafibh/vendas/vendas-backend/internal/domain"
	"github.com/dafibh/vendas/vendas-backend/internal/middleware"
	"github.com/dafibh/vendas/vendas-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// DashboardHandler handles dashboard-related HTTP requests
type DashboardHandler struct {
	dashboardService *service.DashboardService
	goalService      *service.GoalService
	exportService    *service.ExportService
	loc              *time.Location
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(
	dashboardService *service.DashboardService,
	goalService *service.GoalService,
	exportService *service.ExportService,
	loc *time.Location,
) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		goalService:      goalService,
		exportService:    exportService,
		loc:              loc,
	}
}

// DashboardSummaryResponse represents the dashboard summary API response
type DashboardSummaryResponse struct {
	From           string                 `json:"from,omitempty"`
	To             string                 `json:"to,omitempty"`
	TotalSales     string                 `json:"totalSales"`
	TotalExpenses  string                 `json:"totalExpenses"`
	Balance        string                 `json:"balance"`
	Sales          []SaleResponse         `json:"sales"`
	Expenses       []ExpenseResponse      `json:"expenses"`
	SkippedRecords int                    `json:"skippedRecords"`
	Failures       []domain.SourceFailure `json:"failures,omitempty"`
}

// GoalRequest represents the upsert goal request body
type GoalRequest struct {
	Month       int    `json:"month"`
	Year        int    `json:"year"`
	SalesTarget string `json:"salesTarget"`
	UnitsTarget int    `json:"unitsTarget"`
}

// GoalResponse represents a goal in API responses
type GoalResponse struct {
	Month       int    `json:"month"`
	Year        int    `json:"year"`
	SalesTarget string `json:"salesTarget"`
	UnitsTarget int    `json:"unitsTarget"`
}

// GoalProgressResponse represents the goal progress API response
type GoalProgressResponse struct {
	GoalResponse
	HasGoal       bool   `json:"hasGoal"`
	SalesActual   string `json:"salesActual"`
	SalesProgress string `json:"salesProgress"`
	UnitsActual   string `json:"unitsActual"`
	UnitsProgress string `json:"unitsProgress"`
}

// GetSummary handles GET /api/v1/dashboard/summary
// Accepts optional from and to query params; without both every record counts
func (h *DashboardHandler) GetSummary(c echo.Context) error {
	period, errs := parsePeriod(c, h.loc)
	if len(errs) > 0 {
		return NewValidationError(c, "Invalid period", errs)
	}

	summary, err := h.dashboardService.Summary(c.Request().Context(), middleware.GetToken(c), period)
	if err != nil {
		return handleServiceError(c, err, "Load dashboard")
	}

	response := DashboardSummaryResponse{
		From:           summary.From,
		To:             summary.To,
		TotalSales:     summary.TotalSales.StringFixed(2),
		TotalExpenses:  summary.TotalExpenses.StringFixed(2),
		Balance:        summary.Balance.StringFixed(2),
		Sales:          make([]SaleResponse, 0, len(summary.Sales)),
		Expenses:       make([]ExpenseResponse, 0, len(summary.Expenses)),
		SkippedRecords: summary.SkippedRecords,
		Failures:       summary.Failures,
	}
	for _, s := range summary.Sales {
		response.Sales = append(response.Sales, toSaleResponse(s))
	}
	for _, e := range summary.Expenses {
		response.Expenses = append(response.Expenses, toExpenseResponse(e))
	}
	return c.JSON(http.StatusOK, response)
}

// GetGoalProgress handles GET /api/v1/dashboard/goals
// Accepts optional month and year query params (default to current)
func (h *DashboardHandler) GetGoalProgress(c echo.Context) error {
	month, year, errs := parseMonthYear(c, h.loc)
	if len(errs) > 0 {
		return NewValidationError(c, "Invalid month", errs)
	}

	progress, err := h.goalService.Progress(c.Request().Context(), middleware.GetToken(c), month, year)
	if err != nil {
		return handleServiceError(c, err, "Load goal progress")
	}

	return c.JSON(http.StatusOK, GoalProgressResponse{
		GoalResponse:  toGoalResponse(progress.Goal),
		HasGoal:       progress.HasGoal,
		SalesActual:   progress.SalesActual.StringFixed(2),
		SalesProgress: progress.SalesProgress.StringFixed(1),
		UnitsActual:   progress.UnitsActual.StringFixed(0),
		UnitsProgress: progress.UnitsProgress.StringFixed(1),
	})
}

// UpsertGoal handles PUT /api/v1/dashboard/goals
func (h *DashboardHandler) UpsertGoal(c echo.Context) error {
	var req GoalRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	target, err := parseDecimal(req.SalesTarget)
	if err != nil {
		return NewValidationError(c, "Invalid request body", []ValidationError{
			{Field: "salesTarget", Message: "Must be a valid decimal number"},
		})
	}

	goal := &domain.Goal{
		Month:       req.Month,
		Year:        req.Year,
		SalesTarget: target,
		UnitsTarget: req.UnitsTarget,
	}
	saved, err := h.goalService.Upsert(c.Request().Context(), middleware.GetToken(c), goal)
	if err != nil {
		return handleServiceError(c, err, "Save goal")
	}
	return c.JSON(http.StatusOK, toGoalResponse(*saved))
}

// ExportDashboard handles GET /api/v1/dashboard/export/:format
// Accepts from, to, goals=true and an optional goal month/year
func (h *DashboardHandler) ExportDashboard(c echo.Context) error {
	format, err := domain.ParseExportFormat(c.Param("format"))
	if err != nil {
		return handleServiceError(c, err, "Export dashboard")
	}
	period, errs := parsePeriod(c, h.loc)
	opts := service.ReportOptions{
		Period:       period,
		IncludeGoals: c.QueryParam("goals") == "true",
	}
	if c.QueryParam("month") != "" || c.QueryParam("year") != "" {
		var monthErrs []ValidationError
		opts.Month, opts.Year, monthErrs = parseMonthYear(c, h.loc)
		errs = append(errs, monthErrs...)
	}
	if len(errs) > 0 {
		return NewValidationError(c, "Invalid export parameters", errs)
	}

	m, err := h.dashboardService.Report(c.Request().Context(), middleware.GetToken(c), opts)
	if err != nil {
		return handleServiceError(c, err, "Export dashboard")
	}
	artifact, err := h.exportService.Export(m, format)
	if err != nil {
		return handleServiceError(c, err, "Export dashboard")
	}

	log.Info().Str("format", string(format)).Str("period", m.PeriodLabel).Msg("Dashboard exported")
	return sendArtifact(c, artifact)
}

func toGoalResponse(g domain.Goal) GoalResponse {
	return GoalResponse{
		Month:       g.Month,
		Year:        g.Year,
		SalesTarget: g.SalesTarget.StringFixed(2),
		UnitsTarget: g.UnitsTarget,
	}
}
