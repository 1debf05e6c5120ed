package domain

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SaleStatus is the delivery/settlement state of a sale
type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "Pendente"
	SaleStatusDelivered SaleStatus = "Entregue"
	SaleStatusSettled   SaleStatus = "Acertado"
)

// Valid reports whether s is one of the known statuses
func (s SaleStatus) Valid() bool {
	switch s {
	case SaleStatusPending, SaleStatusDelivered, SaleStatusSettled:
		return true
	}
	return false
}

// IsOpen reports whether the sale still has money to collect
func (s SaleStatus) IsOpen() bool {
	return s == SaleStatusPending || s == SaleStatusDelivered
}

// PaymentMethod is kept as free text; these are the values the sales form offers.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "Dinheiro"
	PaymentCreditCard   PaymentMethod = "Cartão de Crédito"
	PaymentDebitCard    PaymentMethod = "Cartão de Débito"
	PaymentPix          PaymentMethod = "PIX"
	PaymentBankTransfer PaymentMethod = "Transferência"
)

// LineItem is a product line owned by a sale
type LineItem struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// Subtotal returns quantity × unit price
func (i LineItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Sale is a revenue transaction
type Sale struct {
	ID            string          `json:"id"`
	Date          time.Time       `json:"date"`
	Amount        decimal.Decimal `json:"amount"`
	Payer         string          `json:"payer"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	Status        SaleStatus      `json:"status"`
	Notes         string          `json:"notes"`
	Items         []LineItem      `json:"items"`
}

// RecordDate implements the dated-record contract used by the report pipeline
func (s Sale) RecordDate() time.Time { return s.Date }

// RecordAmount returns the sale value
func (s Sale) RecordAmount() decimal.Decimal { return s.Amount }

// RecordDescription returns the free-text notes
func (s Sale) RecordDescription() string { return s.Notes }

// ItemsTotal sums the subtotals of all line items
func (s Sale) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Units sums item quantities
func (s Sale) Units() int {
	units := 0
	for _, item := range s.Items {
		units += item.Quantity
	}
	return units
}

// Validate checks a sale before it is sent upstream. Status defaults to Pendente.
func (s *Sale) Validate() error {
	if len(s.Items) == 0 {
		return ErrSaleWithoutItems
	}
	for _, item := range s.Items {
		if strings.TrimSpace(item.ProductID) == "" || item.Quantity <= 0 {
			return ErrInvalidLineItem
		}
		if item.UnitPrice.IsNegative() {
			return ErrInvalidLineItem
		}
	}
	if strings.TrimSpace(s.Payer) == "" {
		return ErrPayerRequired
	}
	if s.Date.IsZero() {
		return ErrDateRequired
	}
	if s.Status == "" {
		s.Status = SaleStatusPending
	}
	if !s.Status.Valid() {
		return ErrInvalidStatus
	}
	if len(s.Notes) > MaxDescriptionLength {
		return ErrInvalidInput
	}
	return nil
}

// SaleGateway is the remote store of sales
type SaleGateway interface {
	ListSales(ctx context.Context, token string, filter *SaleFilter) ([]Sale, error)
	CreateSale(ctx context.Context, token string, sale *Sale) (*Sale, error)
	UpdateSale(ctx context.Context, token string, id string, sale *Sale) (*Sale, error)
	DeleteSale(ctx context.Context, token string, id string) error
}
