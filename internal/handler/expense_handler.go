package handler

import (
	"net/http"
	"time"

	"github.com/dafibh/vendas/vendas-backend/internal/domain"
	"github.com/dafibh/vendas/vendas-backend/internal/middleware"
	"github.com/dafibh/vendas/vendas-backend/internal/service"
	"github.com/dafibh/vendas/vendas-backend/internal/util"
	"github.com/labstack/echo/v4"
)

// ExpenseHandler handles expense-related HTTP requests
type ExpenseHandler struct {
	expenseService *service.ExpenseService
	loc            *time.Location
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(expenseService *service.ExpenseService, loc *time.Location) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService, loc: loc}
}

// ExpenseRequest represents the create/update expense request body
type ExpenseRequest struct {
	Date        string `json:"date"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

// ExpenseResponse represents an expense in API responses
type ExpenseResponse struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

// GetExpenses handles GET /api/v1/expenses
func (h *ExpenseHandler) GetExpenses(c echo.Context) error {
	expenses, err := h.expenseService.List(c.Request().Context(), middleware.GetToken(c))
	if err != nil {
		return handleServiceError(c, err, "List expenses")
	}

	response := make([]ExpenseResponse, 0, len(expenses))
	for _, e := range expenses {
		response = append(response, toExpenseResponse(e))
	}
	return c.JSON(http.StatusOK, response)
}

// CreateExpense handles POST /api/v1/expenses
func (h *ExpenseHandler) CreateExpense(c echo.Context) error {
	expense, errs := h.bindExpense(c)
	if len(errs) > 0 {
		return NewValidationError(c, "Invalid request body", errs)
	}

	created, err := h.expenseService.Create(c.Request().Context(), middleware.GetToken(c), expense)
	if err != nil {
		return handleServiceError(c, err, "Create expense")
	}
	return c.JSON(http.StatusCreated, toExpenseResponse(*created))
}

// UpdateExpense handles PUT /api/v1/expenses/:id
func (h *ExpenseHandler) UpdateExpense(c echo.Context) error {
	expense, errs := h.bindExpense(c)
	if len(errs) > 0 {
		return NewValidationError(c, "Invalid request body", errs)
	}

	updated, err := h.expenseService.Update(c.Request().Context(), middleware.GetToken(c), c.Param("id"), expense)
	if err != nil {
		return handleServiceError(c, err, "Update expense")
	}
	return c.JSON(http.StatusOK, toExpenseResponse(*updated))
}

// DeleteExpense handles DELETE /api/v1/expenses/:id
func (h *ExpenseHandler) DeleteExpense(c echo.Context) error {
	if err := h.expenseService.Delete(c.Request().Context(), middleware.GetToken(c), c.Param("id")); err != nil {
		return handleServiceError(c, err, "Delete expense")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ExpenseHandler) bindExpense(c echo.Context) (*domain.Expense, []ValidationError) {
	var req ExpenseRequest
	if err := c.Bind(&req); err != nil {
		return nil, []ValidationError{{Field: "body", Message: "Must be valid JSON"}}
	}

	var errs []ValidationError
	expense := &domain.Expense{Description: req.Description}
	date, err := util.ParseDate(req.Date, h.loc)
	if err != nil {
		errs = append(errs, ValidationError{Field: "date", Message: dateFormatMessage})
	} else if date != nil {
		expense.Date = *date
	}
	amount, err := parseDecimal(req.Amount)
	if err != nil {
		errs = append(errs, ValidationError{Field: "amount", Message: "Must be a valid decimal number"})
	}
	expense.Amount = amount
	return expense, errs
}

func toExpenseResponse(e domain.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          e.ID,
		Date:        formatDate(e.Date),
		Amount:      e.Amount.StringFixed(2),
		Description: e.Description,
	}
}
