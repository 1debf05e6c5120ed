package handler

import (
	"net/http"
	"strings"
	"testing"

	"github.com/dafibh/vendas/vendas-backend/internal/domain"
	"github.com/dafibh/vendas/vendas-backend/internal/gateway"
	"github.com/shopspring/decimal"
)

func TestGetSummary_Success(t *testing.T) {
	env := newTestEnv()
	seedDashboard(env.gw)

	c, rec := newContext(http.MethodGet, "/api/v1/dashboard/summary?from=2024-01-01&to=31/01/2024", "")
	if err := env.dashboard.GetSummary(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	response := decode[DashboardSummaryResponse](t, rec)
	if response.TotalSales != "100.00" || response.TotalExpenses != "30.00" || response.Balance != "70.00" {
		t.Errorf("Unexpected totals: %+v", response)
	}
	if len(response.Sales) != 1 || response.Sales[0].Date != "2024-01-05" {
		t.Errorf("Expected only the January sale, got %+v", response.Sales)
	}
	if response.From != "2024-01-01" || response.To != "2024-01-31" {
		t.Errorf("Unexpected period %s..%s", response.From, response.To)
	}
	if env.gw.Tokens[0] != testToken {
		t.Errorf("Expected token to be forwarded, got %q", env.gw.Tokens[0])
	}
}

func TestGetSummary_InvalidPeriod(t *testing.T) {
	tests := []struct {
		name  string
		query string
		field string
	}{
		{"bad from", "from=yesterday", "from"},
		{"bad to", "to=2024-13-45", "to"},
		{"reversed", "from=2024-02-01&to=2024-01-01", "from"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			c, rec := newContext(http.MethodGet, "/api/v1/dashboard/summary?"+tt.query, "")
			_ = env.dashboard.GetSummary(c)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("Expected status 400, got %d", rec.Code)
			}
			problem := decode[ProblemDetails](t, rec)
			if len(problem.Errors) == 0 || problem.Errors[0].Field != tt.field {
				t.Errorf("Expected error on %s, got %+v", tt.field, problem.Errors)
			}
			if env.gw.CallCount("ListSales") != 0 {
				t.Error("Upstream should not be called for an invalid period")
			}
		})
	}
}

func TestGetSummary_PartialFailure(t *testing.T) {
	env := newTestEnv()
	seedDashboard(env.gw)
	env.gw.ListExpensesErr = &gateway.APIError{StatusCode: http.StatusInternalServerError, Message: "db down"}

	c, rec := newContext(http.MethodGet, "/api/v1/dashboard/summary", "")
	_ = env.dashboard.GetSummary(c)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	response := decode[DashboardSummaryResponse](t, rec)
	if response.TotalSales != "150.00" {
		t.Errorf("Expected sales to load, got %s", response.TotalSales)
	}
	if len(response.Failures) != 1 || response.Failures[0].Source != "expenses" {
		t.Errorf("Expected an expenses failure, got %+v", response.Failures)
	}
}

func TestGetSummary_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{"unauthorized", &gateway.APIError{StatusCode: 401, Message: "token expired"}, http.StatusUnauthorized, "token expired"},
		{"server error", &gateway.APIError{StatusCode: 500, Message: "db down"}, http.StatusBadGateway, "db down"},
		{"transport", domain.ErrUpstream, http.StatusBadGateway, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			env.gw.ListSalesErr = tt.err
			env.gw.ListExpensesErr = tt.err

			c, rec := newContext(http.MethodGet, "/api/v1/dashboard/summary", "")
			_ = env.dashboard.GetSummary(c)

			if rec.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if tt.wantDetail != "" && decode[ProblemDetails](t, rec).Detail != tt.wantDetail {
				t.Errorf("Expected detail %q, got %s", tt.wantDetail, rec.Body.String())
			}
		})
	}
}

func TestGetGoalProgress(t *testing.T) {
	env := newTestEnv()
	env.gw.AddGoal(domain.Goal{Month: 1, Year: 2024, SalesTarget: decimal.NewFromInt(1000), UnitsTarget: 20})
	env.gw.MonthlySalesSeries = []domain.MonthlyTotal{{Month: 1, Year: 2024, Total: decimal.NewFromInt(250)}}
	env.gw.MonthlyUnitsSeries = []domain.MonthlyTotal{{Month: 1, Year: 2024, Total: decimal.NewFromInt(5)}}

	c, rec := newContext(http.MethodGet, "/api/v1/dashboard/goals?month=1&year=2024", "")
	_ = env.dashboard.GetGoalProgress(c)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	response := decode[GoalProgressResponse](t, rec)
	if !response.HasGoal || response.SalesProgress != "25.0" || response.UnitsProgress != "25.0" {
		t.Errorf("Unexpected progress: %+v", response)
	}
	if response.SalesTarget != "1000.00" || response.UnitsActual != "5" {
		t.Errorf("Unexpected figures: %+v", response)
	}
}

func TestGetGoalProgress_InvalidMonth(t *testing.T) {
	env := newTestEnv()
	c, rec := newContext(http.MethodGet, "/api/v1/dashboard/goals?month=13", "")
	_ = env.dashboard.GetGoalProgress(c)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestUpsertGoal(t *testing.T) {
	env := newTestEnv()

	c, rec := newContext(http.MethodPut, "/api/v1/dashboard/goals", `{"month": 3, "year": 2024, "salesTarget": "1500.5", "unitsTarget": 30}`)
	_ = env.dashboard.UpsertGoal(c)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	response := decode[GoalResponse](t, rec)
	if response.SalesTarget != "1500.50" || response.UnitsTarget != 30 {
		t.Errorf("Unexpected goal: %+v", response)
	}

	c, rec = newContext(http.MethodPut, "/api/v1/dashboard/goals", `{"month": 0, "year": 2024, "salesTarget": "10"}`)
	_ = env.dashboard.UpsertGoal(c)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for month 0, got %d", rec.Code)
	}

	c, rec = newContext(http.MethodPut, "/api/v1/dashboard/goals", `{"month": 1, "year": 2024, "salesTarget": "abc"}`)
	_ = env.dashboard.UpsertGoal(c)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for bad target, got %d", rec.Code)
	}
	if env.gw.CallCount("UpsertGoal") != 1 {
		t.Errorf("Expected one upstream upsert, got %d", env.gw.CallCount("UpsertGoal"))
	}
}

func TestExportDashboard(t *testing.T) {
	env := newTestEnv()
	seedDashboard(env.gw)

	c, rec := newContext(http.MethodGet, "/api/v1/dashboard/export/txt?from=2024-01-01&to=2024-01-31", "")
	c.SetParamNames("format")
	c.SetParamValues("txt")
	if err := env.dashboard.ExportDashboard(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	disposition := rec.Header().Get("Content-Disposition")
	if !strings.HasPrefix(disposition, "attachment;") || !strings.Contains(disposition, "dashboard_") {
		t.Errorf("Unexpected Content-Disposition %q", disposition)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Saldo: R$ 70.00") {
		t.Errorf("Expected balance in export, got:\n%s", body)
	}
	if !strings.Contains(body, "01/01/2024 a 31/01/2024") {
		t.Errorf("Expected period label in export, got:\n%s", body)
	}
}

func TestExportDashboard_Errors(t *testing.T) {
	tests := []struct {
		name       string
		format     string
		setup      func(env *testEnv)
		wantStatus int
	}{
		{"unsupported format", "docx", func(*testEnv) {}, http.StatusBadRequest},
		{"partial data", "pdf", func(env *testEnv) { env.gw.ListExpensesErr = domain.ErrUpstream }, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			tt.setup(env)

			c, rec := newContext(http.MethodGet, "/api/v1/dashboard/export/"+tt.format, "")
			c.SetParamNames("format")
			c.SetParamValues(tt.format)
			_ = env.dashboard.ExportDashboard(c)

			if rec.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}
