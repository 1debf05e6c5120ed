package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dafibh/vendas/vendas-backend/internal/domain"
	"github.com/dafibh/vendas/vendas-backend/internal/export"
	"github.com/dafibh/vendas/vendas-backend/internal/middleware"
	"github.com/dafibh/vendas/vendas-backend/internal/service"
	"github.com/dafibh/vendas/vendas-backend/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

const testToken = "upstream-token"

var saoPaulo = time.FixedZone("BRT", -3*60*60)

type testEnv struct {
	gw        *testutil.MockGateway
	dashboard *DashboardHandler
	sale      *SaleHandler
	expense   *ExpenseHandler
	product   *ProductHandler
	export    *ExportHandler
}

func newTestEnv() *testEnv {
	gw := testutil.NewMockGateway()
	goals := service.NewGoalService(gw)
	exports := service.NewExportService(export.NewDefaultRegistry(), nil)
	return &testEnv{
		gw:        gw,
		dashboard: NewDashboardHandler(service.NewDashboardService(gw, gw, goals, saoPaulo), goals, exports, saoPaulo),
		sale:      NewSaleHandler(service.NewSaleService(gw, gw, saoPaulo), exports, saoPaulo),
		expense:   NewExpenseHandler(service.NewExpenseService(gw), saoPaulo),
		product:   NewProductHandler(service.NewProductService(gw)),
		export:    NewExportHandler(exports, 0),
	}
}

// newContext builds an authenticated echo context
func newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	req = req.WithContext(context.WithValue(req.Context(), middleware.TokenKey, testToken))
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("Failed to unmarshal response: %v (%s)", err, rec.Body.String())
	}
	return out
}

func bday(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, saoPaulo)
}

func seedDashboard(gw *testutil.MockGateway) {
	gw.AddSale(domain.Sale{ID: "s1", Date: bday(2024, 1, 5), Amount: decimal.NewFromInt(100), Payer: "Ana", Status: domain.SaleStatusPending, Notes: "venda s1"})
	gw.AddSale(domain.Sale{ID: "s2", Date: bday(2024, 2, 10), Amount: decimal.NewFromInt(50), Payer: "Bia", Status: domain.SaleStatusSettled})
	gw.AddExpense(domain.Expense{ID: "e1", Date: bday(2024, 1, 20), Amount: decimal.NewFromInt(30), Description: "Aluguel"})
}
