package handler

import (
	"net/http"

	"github.com/dafibh/vendas/vendas-backend/internal/middleware"
	"github.com/dafibh/vendas/vendas-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// ProductHandler serves the product catalogue
type ProductHandler struct {
	productService *service.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
}

// GetProducts handles GET /api/v1/products
func (h *ProductHandler) GetProducts(c echo.Context) error {
	products, err := h.productService.List(c.Request().Context(), middleware.GetToken(c))
	if err != nil {
		return handleServiceError(c, err, "List products")
	}

	response := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		response = append(response, ProductResponse{ID: p.ID, Name: p.Name, Price: p.Price.StringFixed(2)})
	}
	return c.JSON(http.StatusOK, response)
}
