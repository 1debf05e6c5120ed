package service

import (
	"context"

	"github.com/dafibh/vendas/vendas-backend/internal/domain"
)

// ProductService exposes the product catalogue
type ProductService struct {
	products domain.ProductGateway
}

// NewProductService creates a new ProductService
func NewProductService(products domain.ProductGateway) *ProductService {
	return &ProductService{products: products}
}

// List returns the catalogue
func (s *ProductService) List(ctx context.Context, token string) ([]domain.Product, error) {
	products, err := s.products.ListProducts(ctx, token)
	if err != nil {
		return nil, err
	}
	return nonNil(products), nil
}
