package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dafibh/vendas/vendas-backend/internal/domain"
	"github.com/dafibh/vendas/vendas-backend/internal/report"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// bulkStatusConcurrency bounds the upstream updates of one bulk status change
const bulkStatusConcurrency = 4

// SaleService handles sales business logic
type SaleService struct {
	sales    domain.SaleGateway
	products domain.ProductGateway
	loc      *time.Location
	now      func() time.Time
}

// NewSaleService creates a new SaleService
func NewSaleService(sales domain.SaleGateway, products domain.ProductGateway, loc *time.Location) *SaleService {
	if loc == nil {
		loc = time.UTC
	}
	return &SaleService{
		sales:    sales,
		products: products,
		loc:      loc,
		now:      time.Now,
	}
}

// List returns the sales matching filter with their totals.
// The filter is applied locally even when the server narrows the list itself.
func (s *SaleService) List(ctx context.Context, token string, filter *domain.SaleFilter) (*domain.SaleList, error) {
	all, err := s.sales.ListSales(ctx, token, filter)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list sales")
		return nil, err
	}
	sales, skipped := report.FilterSales(all, filter)
	totals := report.ComputeSalesTotals(sales)
	return &domain.SaleList{
		Sales:          nonNil(sales),
		Total:          totals.Total,
		OpenSubtotal:   totals.OpenSubtotal,
		Count:          totals.Count,
		Units:          totals.Units,
		SkippedRecords: skipped,
	}, nil
}

// Create validates a sale, prices its items and sends it upstream
func (s *SaleService) Create(ctx context.Context, token string, sale *domain.Sale) (*domain.Sale, error) {
	if err := s.prepare(ctx, token, sale); err != nil {
		return nil, err
	}
	created, err := s.sales.CreateSale(ctx, token, sale)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create sale")
		return nil, err
	}
	log.Info().Str("sale_id", created.ID).Str("amount", created.Amount.StringFixed(2)).Msg("Sale created")
	return created, nil
}

// Update validates a sale and replaces it upstream
func (s *SaleService) Update(ctx context.Context, token string, id string, sale *domain.Sale) (*domain.Sale, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrSaleNotFound
	}
	if err := s.prepare(ctx, token, sale); err != nil {
		return nil, err
	}
	updated, err := s.sales.UpdateSale(ctx, token, id, sale)
	if err != nil {
		log.Error().Err(err).Str("sale_id", id).Msg("Failed to update sale")
		return nil, err
	}
	return updated, nil
}

// Delete removes a sale upstream
func (s *SaleService) Delete(ctx context.Context, token string, id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.ErrSaleNotFound
	}
	if err := s.sales.DeleteSale(ctx, token, id); err != nil {
		log.Error().Err(err).Str("sale_id", id).Msg("Failed to delete sale")
		return err
	}
	log.Info().Str("sale_id", id).Msg("Sale deleted")
	return nil
}

// UpdateStatus moves every listed sale to status. The upstream API only replaces
// whole sales, so the current list is fetched once and each sale is re-sent with
// the new status. Per-sale failures are reported in the result.
func (s *SaleService) UpdateStatus(ctx context.Context, token string, ids []string, status domain.SaleStatus) (*domain.BulkStatusResult, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, domain.ErrInvalidInput
	}

	all, err := s.sales.ListSales(ctx, token, nil)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Sale, len(all))
	for _, sale := range all {
		byID[sale.ID] = sale
	}

	errs := make([]error, len(ids))
	var g errgroup.Group
	g.SetLimit(bulkStatusConcurrency)
	for i, id := range ids {
		sale, ok := byID[id]
		if !ok {
			errs[i] = domain.ErrSaleNotFound
			continue
		}
		g.Go(func() error {
			sale.Status = status
			_, errs[i] = s.sales.UpdateSale(ctx, token, id, &sale)
			return errs[i]
		})
	}
	_ = g.Wait()

	result := &domain.BulkStatusResult{Status: status, Updated: []string{}}
	for i, id := range ids {
		if errs[i] == nil {
			result.Updated = append(result.Updated, id)
			continue
		}
		if errors.Is(errs[i], domain.ErrUnauthorized) {
			return nil, errs[i]
		}
		if result.Failed == nil {
			result.Failed = make(map[string]string)
		}
		result.Failed[id] = errs[i].Error()
	}

	log.Info().
		Str("status", string(status)).
		Int("updated", len(result.Updated)).
		Int("failed", len(result.Failed)).
		Msg("Bulk sale status change")
	return result, nil
}

// Report builds the sales report. Products only label line items, so a failed
// catalogue fetch falls back to product IDs.
func (s *SaleService) Report(ctx context.Context, token string, filter *domain.SaleFilter) (*report.Model, error) {
	var (
		sales       []domain.Sale
		products    []domain.Product
		salesErr    error
		productsErr error
	)
	var g errgroup.Group
	g.Go(func() error {
		sales, salesErr = s.sales.ListSales(ctx, token, filter)
		return salesErr
	})
	g.Go(func() error {
		products, productsErr = s.products.ListProducts(ctx, token)
		return productsErr
	})
	_ = g.Wait()

	if salesErr != nil {
		return nil, salesErr
	}
	if productsErr != nil {
		if errors.Is(productsErr, domain.ErrUnauthorized) {
			return nil, productsErr
		}
		log.Warn().Err(productsErr).Msg("Failed to load products; items will show product IDs")
	}

	m := report.BuildSales(report.SalesConfig{
		Filter:   filter,
		Sales:    sales,
		Products: products,
		Now:      s.now().In(s.loc),
	})
	if m.SkippedRecords > 0 {
		log.Warn().Int("skipped", m.SkippedRecords).Msg("Sales without a usable date were left out of the report")
	}
	return m, nil
}

// prepare validates locally, fills missing unit prices from the catalogue and
// sets the amount to the sum of the item subtotals.
func (s *SaleService) prepare(ctx context.Context, token string, sale *domain.Sale) error {
	if err := sale.Validate(); err != nil {
		return err
	}

	needsPrice := false
	for _, item := range sale.Items {
		if item.UnitPrice.IsZero() {
			needsPrice = true
			break
		}
	}
	if needsPrice {
		products, err := s.products.ListProducts(ctx, token)
		if err != nil {
			return fmt.Errorf("load product prices: %w", err)
		}
		index := domain.ProductIndex(products)
		for i, item := range sale.Items {
			if !item.UnitPrice.IsZero() {
				continue
			}
			p, ok := index[item.ProductID]
			if !ok {
				return fmt.Errorf("%w: unknown product %q", domain.ErrInvalidLineItem, item.ProductID)
			}
			sale.Items[i].UnitPrice = p.Price
		}
	}

	sale.Amount = sale.ItemsTotal()
	return nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
