package gateway

import (
	"context"
	"net/http"

	"github.com/dafibh/vendas/vendas-backend/internal/domain"
)

type expenseDTO struct {
	ID        string `json:"_id,omitempty"`
	Descricao string `json:"descricao"`
	Valor     amount `json:"valor"`
	Data      string `json:"data"`
}

func (c *Client) expenseFromDTO(d expenseDTO) domain.Expense {
	return domain.Expense{
		ID:          d.ID,
		Date:        c.parseDate(d.Data, "expense", d.ID),
		Amount:      d.Valor.Decimal,
		Description: d.Descricao,
	}
}

func expenseToDTO(e *domain.Expense) expenseDTO {
	return expenseDTO{
		Descricao: e.Description,
		Valor:     amount{e.Amount},
		Data:      formatDate(e.Date),
	}
}

// ListExpenses fetches GET /despesas
func (c *Client) ListExpenses(ctx context.Context, token string) ([]domain.Expense, error) {
	var dtos []expenseDTO
	if err := c.do(ctx, http.MethodGet, "/despesas", nil, token, nil, &dtos); err != nil {
		return nil, err
	}
	expenses := make([]domain.Expense, 0, len(dtos))
	for _, d := range dtos {
		expenses = append(expenses, c.expenseFromDTO(d))
	}
	return expenses, nil
}

// CreateExpense posts to /despesas
func (c *Client) CreateExpense(ctx context.Context, token string, expense *domain.Expense) (*domain.Expense, error) {
	var out expenseDTO
	if err := c.do(ctx, http.MethodPost, "/despesas", nil, token, expenseToDTO(expense), &out); err != nil {
		return nil, err
	}
	created := c.expenseFromDTO(out)
	return &created, nil
}

// UpdateExpense puts to /despesas/{id}
func (c *Client) UpdateExpense(ctx context.Context, token string, id string, expense *domain.Expense) (*domain.Expense, error) {
	var out expenseDTO
	if err := c.do(ctx, http.MethodPut, pathf("/despesas/%s", id), nil, token, expenseToDTO(expense), &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		out.ID = id
	}
	updated := c.expenseFromDTO(out)
	return &updated, nil
}

// DeleteExpense deletes /despesas/{id}
func (c *Client) DeleteExpense(ctx context.Context, token string, id string) error {
	return c.do(ctx, http.MethodDelete, pathf("/despesas/%s", id), nil, token, nil, nil)
}
