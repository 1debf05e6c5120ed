package report

import (
	"github.com/dafibh/vendas/vendas-backend/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Sum totals amountOf over records; an empty input yields zero
func Sum[T any](records []T, amountOf func(T) decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(amountOf(r))
	}
	return total
}

// SumWhere totals amountOf over the records accepted by keep
func SumWhere[T any](records []T, amountOf func(T) decimal.Decimal, keep func(T) bool) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		if keep(r) {
			total = total.Add(amountOf(r))
		}
	}
	return total
}

// SumUnits counts the product units sold across the line items of sales
func SumUnits(sales []domain.Sale) int {
	units := 0
	for _, s := range sales {
		for _, item := range s.Items {
			units += item.Quantity
		}
	}
	return units
}

// Balance is sales minus expenses and may be negative
func Balance(salesTotal, expenseTotal decimal.Decimal) decimal.Decimal {
	return salesTotal.Sub(expenseTotal)
}

// Progress returns actual/target as a percentage capped at 100.
// A non-positive target yields zero.
func Progress(actual, target decimal.Decimal) decimal.Decimal {
	if !target.IsPositive() {
		return decimal.Zero
	}
	pct := actual.Div(target).Mul(hundred)
	if pct.GreaterThan(hundred) {
		return hundred
	}
	return pct
}
