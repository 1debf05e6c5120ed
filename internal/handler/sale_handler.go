package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/dafibh/vendas/vendas-backend/internal/domain"
	"github.com/dafibh/vendas/vendas-backend/internal/middleware"
	"github.com/dafibh/vendas/vendas-backend/internal/service"
	"github.com/dafibh/vendas/vendas-backend/internal/util"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// SaleHandler handles sale-related HTTP requests
type SaleHandler struct {
	saleService   *service.SaleService
	exportService *service.ExportService
	loc           *time.Location
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(saleService *service.SaleService, exportService *service.ExportService, loc *time.Location) *SaleHandler {
	return &SaleHandler{
		saleService:   saleService,
		exportService: exportService,
		loc:           loc,
	}
}

// LineItemRequest is one item of a sale request. An empty unitPrice takes the catalogue price.
type LineItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unitPrice,omitempty"`
}

// SaleRequest represents the create/update sale request body.
// The amount is always recomputed from the items.
type SaleRequest struct {
	Date          string            `json:"date"`
	Payer         string            `json:"payer"`
	PaymentMethod string            `json:"paymentMethod"`
	Status        string            `json:"status,omitempty"`
	Notes         string            `json:"notes,omitempty"`
	Items         []LineItemRequest `json:"items"`
}

// BulkStatusRequest represents the bulk status change request body
type BulkStatusRequest struct {
	IDs    []string `json:"ids"`
	Status string   `json:"status"`
}

// LineItemResponse represents a sale item in API responses
type LineItemResponse struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
	Subtotal  string `json:"subtotal"`
}

// SaleResponse represents a sale in API responses
type SaleResponse struct {
	ID            string             `json:"id"`
	Date          string             `json:"date"`
	Amount        string             `json:"amount"`
	Payer         string             `json:"payer"`
	PaymentMethod string             `json:"paymentMethod"`
	Status        string             `json:"status"`
	Notes         string             `json:"notes"`
	Items         []LineItemResponse `json:"items"`
}

// SaleListResponse represents a filtered sales listing
type SaleListResponse struct {
	Sales          []SaleResponse `json:"sales"`
	Total          string         `json:"total"`
	OpenSubtotal   string         `json:"openSubtotal"`
	Count          int            `json:"count"`
	Units          int            `json:"units"`
	SkippedRecords int            `json:"skippedRecords"`
}

// GetSales handles GET /api/v1/sales
func (h *SaleHandler) GetSales(c echo.Context) error {
	filter, errs := parseSaleFilter(c, h.loc)
	if len(errs) > 0 {
		return NewValidationError(c, "Invalid filter", errs)
	}

	list, err := h.saleService.List(c.Request().Context(), middleware.GetToken(c), filter)
	if err != nil {
		return handleServiceError(c, err, "List sales")
	}

	response := SaleListResponse{
		Sales:          make([]SaleResponse, 0, len(list.Sales)),
		Total:          list.Total.StringFixed(2),
		OpenSubtotal:   list.OpenSubtotal.StringFixed(2),
		Count:          list.Count,
		Units:          list.Units,
		SkippedRecords: list.SkippedRecords,
	}
	for _, s := range list.Sales {
		response.Sales = append(response.Sales, toSaleResponse(s))
	}
	return c.JSON(http.StatusOK, response)
}

// CreateSale handles POST /api/v1/sales
func (h *SaleHandler) CreateSale(c echo.Context) error {
	sale, errs := h.bindSale(c)
	if len(errs) > 0 {
		return NewValidationError(c, "Invalid request body", errs)
	}

	created, err := h.saleService.Create(c.Request().Context(), middleware.GetToken(c), sale)
	if err != nil {
		return handleServiceError(c, err, "Create sale")
	}
	return c.JSON(http.StatusCreated, toSaleResponse(*created))
}

// UpdateSale handles PUT /api/v1/sales/:id
func (h *SaleHandler) UpdateSale(c echo.Context) error {
	id := c.Param("id")
	sale, errs := h.bindSale(c)
	if len(errs) > 0 {
		return NewValidationError(c, "Invalid request body", errs)
	}

	updated, err := h.saleService.Update(c.Request().Context(), middleware.GetToken(c), id, sale)
	if err != nil {
		return handleServiceError(c, err, "Update sale")
	}
	log.Info().Str("sale_id", id).Msg("Sale updated")
	return c.JSON(http.StatusOK, toSaleResponse(*updated))
}

// DeleteSale handles DELETE /api/v1/sales/:id
func (h *SaleHandler) DeleteSale(c echo.Context) error {
	if err := h.saleService.Delete(c.Request().Context(), middleware.GetToken(c), c.Param("id")); err != nil {
		return handleServiceError(c, err, "Delete sale")
	}
	return c.NoContent(http.StatusNoContent)
}

// UpdateStatus handles PATCH /api/v1/sales/status
func (h *SaleHandler) UpdateStatus(c echo.Context) error {
	var req BulkStatusRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if len(req.IDs) == 0 {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "ids", Message: "At least one sale is required"},
		})
	}

	result, err := h.saleService.UpdateStatus(c.Request().Context(), middleware.GetToken(c), req.IDs, domain.SaleStatus(req.Status))
	if err != nil {
		return handleServiceError(c, err, "Update sale status")
	}

	status := http.StatusOK
	if len(result.Failed) > 0 {
		status = http.StatusMultiStatus
	}
	return c.JSON(status, result)
}

// ExportSales handles GET /api/v1/sales/export/:format
func (h *SaleHandler) ExportSales(c echo.Context) error {
	format, err := domain.ParseExportFormat(c.Param("format"))
	if err != nil {
		return handleServiceError(c, err, "Export sales")
	}
	filter, errs := parseSaleFilter(c, h.loc)
	if len(errs) > 0 {
		return NewValidationError(c, "Invalid filter", errs)
	}

	m, err := h.saleService.Report(c.Request().Context(), middleware.GetToken(c), filter)
	if err != nil {
		return handleServiceError(c, err, "Export sales")
	}
	artifact, err := h.exportService.Export(m, format)
	if err != nil {
		return handleServiceError(c, err, "Export sales")
	}
	return sendArtifact(c, artifact)
}

func (h *SaleHandler) bindSale(c echo.Context) (*domain.Sale, []ValidationError) {
	var req SaleRequest
	if err := c.Bind(&req); err != nil {
		return nil, []ValidationError{{Field: "body", Message: "Must be valid JSON"}}
	}

	var errs []ValidationError
	date, err := util.ParseDate(req.Date, h.loc)
	if err != nil {
		errs = append(errs, ValidationError{Field: "date", Message: dateFormatMessage})
	}

	sale := &domain.Sale{
		Payer:         strings.TrimSpace(req.Payer),
		PaymentMethod: domain.PaymentMethod(strings.TrimSpace(req.PaymentMethod)),
		Status:        domain.SaleStatus(req.Status),
		Notes:         strings.TrimSpace(req.Notes),
		Items:         make([]domain.LineItem, 0, len(req.Items)),
	}
	if date != nil {
		sale.Date = *date
	}
	for _, item := range req.Items {
		price, err := parseDecimal(item.UnitPrice)
		if err != nil {
			errs = append(errs, ValidationError{Field: "items.unitPrice", Message: "Must be a valid decimal number"})
			continue
		}
		sale.Items = append(sale.Items, domain.LineItem{
			ProductID: strings.TrimSpace(item.ProductID),
			Quantity:  item.Quantity,
			UnitPrice: price,
		})
	}
	return sale, errs
}

func toSaleResponse(s domain.Sale) SaleResponse {
	status := s.Status
	if status == "" {
		status = domain.SaleStatusPending
	}
	items := make([]LineItemResponse, 0, len(s.Items))
	for _, item := range s.Items {
		items = append(items, LineItemResponse{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.StringFixed(2),
			Subtotal:  item.Subtotal().StringFixed(2),
		})
	}
	return SaleResponse{
		ID:            s.ID,
		Date:          formatDate(s.Date),
		Amount:        s.Amount.StringFixed(2),
		Payer:         s.Payer,
		PaymentMethod: string(s.PaymentMethod),
		Status:        string(status),
		Notes:         s.Notes,
		Items:         items,
	}
}
