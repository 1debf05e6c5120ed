package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// Product is a catalogue entry referenced by sale line items
type Product struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// ProductGateway lists the product catalogue
type ProductGateway interface {
	ListProducts(ctx context.Context, token string) ([]Product, error)
}

// ProductIndex maps product IDs to products
func ProductIndex(products []Product) map[string]Product {
	index := make(map[string]Product, len(products))
	for _, p := range products {
		index[p.ID] = p
	}
	return index
}
