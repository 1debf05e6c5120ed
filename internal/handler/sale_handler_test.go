package handler

import (
	"net/http"
	"strings"
	"testing"

	"github.com/dafibh/vendas/vendas-backend/internal/domain"
	"github.com/dafibh/vendas/vendas-backend/internal/gateway"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func TestCreateSale_Success(t *testing.T) {
	env := newTestEnv()
	env.gw.Products = []domain.Product{{ID: "p1", Name: "Bolo", Price: decimal.RequireFromString("12.50")}}

	reqBody := `{"date": "2024-01-05", "payer": " Ana ", "paymentMethod": "PIX", "items": [
		{"productId": "p1", "quantity": 2},
		{"productId": "p2", "quantity": 1, "unitPrice": "3.10"}
	]}`
	c, rec := newContext(http.MethodPost, "/api/v1/sales", reqBody)
	if err := env.sale.CreateSale(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	response := decode[SaleResponse](t, rec)
	if response.Amount != "28.10" {
		t.Errorf("Expected amount '28.10', got %s", response.Amount)
	}
	if response.Payer != "Ana" || response.Status != "Pendente" || response.Date != "2024-01-05" {
		t.Errorf("Unexpected sale: %+v", response)
	}
	if response.Items[0].UnitPrice != "12.50" || response.Items[0].Subtotal != "25.00" {
		t.Errorf("Expected catalogue price on first item, got %+v", response.Items[0])
	}
}

func TestCreateSale_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"no items", `{"date": "2024-01-05", "payer": "Ana", "items": []}`, "items"},
		{"zero quantity", `{"date": "2024-01-05", "payer": "Ana", "items": [{"productId": "p1", "quantity": 0, "unitPrice": "1"}]}`, "items"},
		{"no payer", `{"date": "2024-01-05", "items": [{"productId": "p1", "quantity": 1, "unitPrice": "1"}]}`, "payer"},
		{"bad date", `{"date": "ontem", "payer": "Ana", "items": [{"productId": "p1", "quantity": 1, "unitPrice": "1"}]}`, "date"},
		{"bad price", `{"date": "2024-01-05", "payer": "Ana", "items": [{"productId": "p1", "quantity": 1, "unitPrice": "x"}]}`, "items.unitPrice"},
		{"bad status", `{"date": "2024-01-05", "payer": "Ana", "status": "Perdida", "items": [{"productId": "p1", "quantity": 1, "unitPrice": "1"}]}`, "status"},
		{"malformed json", `{"date":`, "body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			c, rec := newContext(http.MethodPost, "/api/v1/sales", tt.body)
			_ = env.sale.CreateSale(c)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("Expected status 400, got %d: %s", rec.Code, rec.Body.String())
			}
			problem := decode[ProblemDetails](t, rec)
			if len(problem.Errors) == 0 || problem.Errors[0].Field != tt.field {
				t.Errorf("Expected error on %s, got %+v", tt.field, problem.Errors)
			}
			if env.gw.CallCount("CreateSale") != 0 {
				t.Error("Upstream should not be called for an invalid sale")
			}
		})
	}
}

func TestCreateSale_UpstreamRejects(t *testing.T) {
	env := newTestEnv()
	env.gw.CreateErr = &gateway.APIError{StatusCode: http.StatusBadRequest, Message: "Cliente inválido"}

	c, rec := newContext(http.MethodPost, "/api/v1/sales", `{"date": "2024-01-05", "payer": "Ana", "items": [{"productId": "p1", "quantity": 1, "unitPrice": "1"}]}`)
	_ = env.sale.CreateSale(c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}
	if detail := decode[ProblemDetails](t, rec).Detail; detail != "Cliente inválido" {
		t.Errorf("Expected server message, got %q", detail)
	}
}

func TestGetSales_Filtered(t *testing.T) {
	env := newTestEnv()
	seedDashboard(env.gw)

	c, rec := newContext(http.MethodGet, "/api/v1/sales?payer=an&min=10&status=Pendente", "")
	_ = env.sale.GetSales(c)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	response := decode[SaleListResponse](t, rec)
	if response.Count != 1 || response.Sales[0].ID != "s1" {
		t.Errorf("Expected only s1, got %+v", response.Sales)
	}
	if response.Total != "100.00" || response.OpenSubtotal != "100.00" {
		t.Errorf("Unexpected totals: %+v", response)
	}
	if env.gw.LastSaleQ == nil || env.gw.LastSaleQ.MinAmount == nil {
		t.Error("Expected the filter to be forwarded upstream")
	}
}

func TestGetSales_InvalidFilter(t *testing.T) {
	env := newTestEnv()
	c, rec := newContext(http.MethodGet, "/api/v1/sales?min=abc&status=Perdida", "")
	_ = env.sale.GetSales(c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}
	if n := len(decode[ProblemDetails](t, rec).Errors); n != 2 {
		t.Errorf("Expected 2 field errors, got %d", n)
	}
}

func TestUpdateAndDeleteSale(t *testing.T) {
	env := newTestEnv()
	seedDashboard(env.gw)

	c, rec := newContext(http.MethodPut, "/api/v1/sales/s1", `{"date": "05/01/2024", "payer": "Ana", "status": "Entregue", "items": [{"productId": "p1", "quantity": 4, "unitPrice": "5"}]}`)
	c.SetParamNames("id")
	c.SetParamValues("s1")
	_ = env.sale.UpdateSale(c)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if response := decode[SaleResponse](t, rec); response.Amount != "20.00" || response.Status != "Entregue" {
		t.Errorf("Unexpected sale: %+v", response)
	}

	c, rec = newContext(http.MethodDelete, "/api/v1/sales/s1", "")
	c.SetParamNames("id")
	c.SetParamValues("s1")
	_ = env.sale.DeleteSale(c)
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}

	c, rec = newContext(http.MethodDelete, "/api/v1/sales/s1", "")
	c.SetParamNames("id")
	c.SetParamValues("s1")
	_ = env.sale.DeleteSale(c)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 on second delete, got %d", rec.Code)
	}
}

func TestUpdateStatus(t *testing.T) {
	env := newTestEnv()
	seedDashboard(env.gw)

	c, rec := newContext(http.MethodPatch, "/api/v1/sales/status", `{"ids": ["s1", "s2"], "status": "Acertado"}`)
	_ = env.sale.UpdateStatus(c)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	c, rec = newContext(http.MethodPatch, "/api/v1/sales/status", `{"ids": ["s1", "ghost"], "status": "Entregue"}`)
	_ = env.sale.UpdateStatus(c)
	if rec.Code != http.StatusMultiStatus {
		t.Fatalf("Expected status 207, got %d", rec.Code)
	}
	result := decode[domain.BulkStatusResult](t, rec)
	if len(result.Updated) != 1 || result.Failed["ghost"] == "" {
		t.Errorf("Unexpected result: %+v", result)
	}

	c, rec = newContext(http.MethodPatch, "/api/v1/sales/status", `{"ids": [], "status": "Entregue"}`)
	_ = env.sale.UpdateStatus(c)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 without ids, got %d", rec.Code)
	}
}

func TestExportSales_XLSX(t *testing.T) {
	env := newTestEnv()
	env.gw.Products = []domain.Product{{ID: "p1", Name: "Bolo de Cenoura"}}
	env.gw.AddSale(domain.Sale{
		ID: "s1", Date: bday(2024, 1, 5), Amount: decimal.NewFromInt(25), Payer: "Ana", Status: domain.SaleStatusPending,
		Items: []domain.LineItem{{ProductID: "p1", Quantity: 2, UnitPrice: decimal.RequireFromString("12.50")}},
	})

	c, rec := newContext(http.MethodGet, "/api/v1/sales/export/xlsx?payer=ana", "")
	c.SetParamNames("format")
	c.SetParamValues("xlsx")
	_ = env.sale.ExportSales(c)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("Unexpected content type %q", ct)
	}

	f, err := excelize.OpenReader(rec.Body)
	if err != nil {
		t.Fatalf("Failed to open workbook: %v", err)
	}
	defer f.Close()
	found := false
	for _, sheet := range f.GetSheetList() {
		rows, _ := f.GetRows(sheet)
		for _, row := range rows {
			for _, cell := range row {
				if cell == "Bolo de Cenoura" {
					found = true
				}
			}
		}
	}
	if !found {
		t.Error("Expected product name in the items sheet")
	}
}
