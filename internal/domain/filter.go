package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SaleFilter holds the optional criteria of the sales screen. A nil or empty field means no constraint.
type SaleFilter struct {
	DateFrom      *time.Time
	DateTo        *time.Time
	PayerContains string
	PaymentMethod PaymentMethod
	Status        SaleStatus
	MinAmount     *decimal.Decimal
	MaxAmount     *decimal.Decimal
}

// IsEmpty reports whether no criterion is set
func (f *SaleFilter) IsEmpty() bool {
	if f == nil {
		return true
	}
	return f.DateFrom == nil && f.DateTo == nil && f.PayerContains == "" &&
		f.PaymentMethod == "" && f.Status == "" && f.MinAmount == nil && f.MaxAmount == nil
}

// MatchesFields applies every non-date criterion to s
func (f *SaleFilter) MatchesFields(s Sale) bool {
	if f == nil {
		return true
	}
	if f.PayerContains != "" && !strings.Contains(strings.ToLower(s.Payer), strings.ToLower(f.PayerContains)) {
		return false
	}
	if f.PaymentMethod != "" && s.PaymentMethod != f.PaymentMethod {
		return false
	}
	if f.Status != "" && s.Status != f.Status {
		return false
	}
	if f.MinAmount != nil && s.Amount.LessThan(*f.MinAmount) {
		return false
	}
	if f.MaxAmount != nil && s.Amount.GreaterThan(*f.MaxAmount) {
		return false
	}
	return true
}
