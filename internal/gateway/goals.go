package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/dafibh/vendas/vendas-backend/internal/domain"
)

type goalDTO struct {
	Mes          int    `json:"mes"`
	Ano          int    `json:"ano"`
	MetaVendas   amount `json:"metaVendas"`
	MetaProdutos int    `json:"metaProdutos"`
}

type monthlyDTO struct {
	Mes   int    `json:"mes"`
	Ano   int    `json:"ano"`
	Total amount `json:"total"`
}

// monthlySeries accepts either an array of totals or a single total object
type monthlySeries []monthlyDTO

func (s *monthlySeries) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var one monthlyDTO
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		*s = monthlySeries{one}
		return nil
	}
	var many []monthlyDTO
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*s = many
	return nil
}

// GetGoal fetches GET /metas/{mes}/{ano}. A missing goal is domain.ErrGoalNotFound.
func (c *Client) GetGoal(ctx context.Context, token string, month, year int) (*domain.Goal, error) {
	var out *goalDTO
	if err := c.do(ctx, http.MethodGet, pathf("/metas/%d/%d", month, year), nil, token, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, domain.ErrGoalNotFound
	}
	if out.Mes == 0 {
		out.Mes, out.Ano = month, year
	}
	return &domain.Goal{
		Month:       out.Mes,
		Year:        out.Ano,
		SalesTarget: out.MetaVendas.Decimal,
		UnitsTarget: out.MetaProdutos,
	}, nil
}

// UpsertGoal posts to /metas; the server replaces any goal of the same month
func (c *Client) UpsertGoal(ctx context.Context, token string, goal *domain.Goal) (*domain.Goal, error) {
	in := goalDTO{Mes: goal.Month, Ano: goal.Year, MetaVendas: amount{goal.SalesTarget}, MetaProdutos: goal.UnitsTarget}
	var out *goalDTO
	if err := c.do(ctx, http.MethodPost, "/metas", nil, token, in, &out); err != nil {
		return nil, err
	}
	if out == nil || out.Mes == 0 {
		out = &in
	}
	return &domain.Goal{
		Month:       out.Mes,
		Year:        out.Ano,
		SalesTarget: out.MetaVendas.Decimal,
		UnitsTarget: out.MetaProdutos,
	}, nil
}

// MonthlySales fetches GET /vendas/mensais/{mes}/{ano}
func (c *Client) MonthlySales(ctx context.Context, token string, month, year int) ([]domain.MonthlyTotal, error) {
	return c.monthly(ctx, token, pathf("/vendas/mensais/%d/%d", month, year))
}

// MonthlyUnits fetches GET /vendas/produtos/mensais/{mes}/{ano}
func (c *Client) MonthlyUnits(ctx context.Context, token string, month, year int) ([]domain.MonthlyTotal, error) {
	return c.monthly(ctx, token, pathf("/vendas/produtos/mensais/%d/%d", month, year))
}

func (c *Client) monthly(ctx context.Context, token, path string) ([]domain.MonthlyTotal, error) {
	var series monthlySeries
	if err := c.do(ctx, http.MethodGet, path, nil, token, nil, &series); err != nil {
		return nil, err
	}
	totals := make([]domain.MonthlyTotal, 0, len(series))
	for _, m := range series {
		totals = append(totals, domain.MonthlyTotal{Month: m.Mes, Year: m.Ano, Total: m.Total.Decimal})
	}
	return totals, nil
}

var (
	_ domain.SaleGateway    = (*Client)(nil)
	_ domain.ExpenseGateway = (*Client)(nil)
	_ domain.ProductGateway = (*Client)(nil)
	_ domain.GoalGateway    = (*Client)(nil)
)
