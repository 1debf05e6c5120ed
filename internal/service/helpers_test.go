package service

import (
	"time"

	"github.com/dafibh/vendas/vendas-backend/internal/domain"
	"github.com/dafibh/vendas/vendas-backend/internal/report"
	"github.com/dafibh/vendas/vendas-backend/internal/testutil"
	"github.com/shopspring/decimal"
)

const testToken = "token-123"

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func january2024() report.Period {
	from, to := day(2024, 1, 1), day(2024, 1, 31)
	return report.Period{From: &from, To: &to}
}

// seedScenario loads two sales and one expense; only the January sale falls in january2024
func seedScenario(gw *testutil.MockGateway) {
	gw.AddSale(domain.Sale{ID: "s1", Date: day(2024, 1, 5), Amount: decimal.NewFromInt(100), Payer: "Ana", Status: domain.SaleStatusPending})
	gw.AddSale(domain.Sale{ID: "s2", Date: day(2024, 2, 10), Amount: decimal.NewFromInt(50), Payer: "Bia", Status: domain.SaleStatusSettled})
	gw.AddExpense(domain.Expense{ID: "e1", Date: day(2024, 1, 20), Amount: decimal.NewFromInt(30), Description: "Aluguel"})
}
