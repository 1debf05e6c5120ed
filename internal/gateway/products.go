package gateway

import (
	"context"
	"net/http"

	"github.com/dafibh/vendas/vendas-backend/internal/domain"
)

type productDTO struct {
	ID    string `json:"_id"`
	Nome  string `json:"nome"`
	Preco amount `json:"preco"`
}

// ListProducts fetches GET /produtos
func (c *Client) ListProducts(ctx context.Context, token string) ([]domain.Product, error) {
	var dtos []productDTO
	if err := c.do(ctx, http.MethodGet, "/produtos", nil, token, nil, &dtos); err != nil {
		return nil, err
	}
	products := make([]domain.Product, 0, len(dtos))
	for _, d := range dtos {
		products = append(products, domain.Product{ID: d.ID, Name: d.Nome, Price: d.Preco.Decimal})
	}
	return products, nil
}
