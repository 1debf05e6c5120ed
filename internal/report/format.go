package report

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DateLayout is the dd/MM/yyyy layout used in every rendered artifact
	DateLayout = "02/01/2006"
	// CurrencySymbol prefixes money values
	CurrencySymbol = "R$"
)

// FormatCurrency renders d with two fractional digits, e.g. "R$ 100.00"
func FormatCurrency(d decimal.Decimal) string {
	return CurrencySymbol + " " + d.StringFixed(2)
}

// FormatPercent renders d with one fractional digit, e.g. "25.0%"
func FormatPercent(d decimal.Decimal) string {
	return d.StringFixed(1) + "%"
}

// FormatDate renders t as dd/MM/yyyy; the zero time renders empty
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
