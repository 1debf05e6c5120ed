package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dafibh/vendas/vendas-backend/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var saoPaulo = time.FixedZone("BRT", -3*60*60)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/api/", 2*time.Second, WithLocation(saoPaulo))
}

func TestListSales_DecodesUpstreamFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/vendas", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "2024-01-01", r.URL.Query().Get("dataInicio"))
		assert.Equal(t, "Pendente", r.URL.Query().Get("status"))
		_, _ = io.WriteString(w, `[
			{"_id":"v1","cliente":"Ana","data":"2024-01-05T00:00:00.000Z","valor":30.5,
			 "formaPagamento":"PIX","status":"Pendente","observacoes":"entrega",
			 "itens":[{"produto":{"_id":"p1","nome":"Água"},"quantidade":2,"preco":"15.25"},
			          {"produto":"p2","quantidade":1,"preco":0}]},
			{"_id":"v2","cliente":"Bia","data":"not a date","valor":10,"itens":[]}
		]`)
	})

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, saoPaulo)
	sales, err := client.ListSales(context.Background(), "tok", &domain.SaleFilter{DateFrom: &from, Status: domain.SaleStatusPending})
	require.NoError(t, err)
	require.Len(t, sales, 2)

	s := sales[0]
	assert.Equal(t, "v1", s.ID)
	assert.Equal(t, "Ana", s.Payer)
	assert.Equal(t, domain.PaymentPix, s.PaymentMethod)
	assert.Equal(t, domain.SaleStatusPending, s.Status)
	assert.Equal(t, "entrega", s.Notes)
	assert.True(t, s.Amount.Equal(decimal.RequireFromString("30.5")))
	// a UTC midnight keeps its calendar day in the report location
	assert.True(t, time.Date(2024, 1, 5, 0, 0, 0, 0, saoPaulo).Equal(s.Date))
	assert.Equal(t, 5, s.Date.Day())
	require.Len(t, s.Items, 2)
	assert.Equal(t, "p1", s.Items[0].ProductID)
	assert.Equal(t, 2, s.Items[0].Quantity)
	assert.Equal(t, "30.5", s.Items[0].Subtotal().String())
	assert.Equal(t, "p2", s.Items[1].ProductID)

	assert.True(t, sales[1].Date.IsZero())
}

func TestCreateSale_SendsUpstreamPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Ana", body["cliente"])
		assert.Equal(t, "2024-03-10", body["data"])
		assert.Equal(t, 40.0, body["valor"])
		assert.Nil(t, body["_id"])
		items := body["itens"].([]any)
		require.Len(t, items, 1)
		item := items[0].(map[string]any)
		assert.Equal(t, "p1", item["produto"])
		assert.Equal(t, 4.0, item["quantidade"])

		w.WriteHeader(http.StatusCreated)
		body["_id"] = "new-id"
		_ = json.NewEncoder(w).Encode(body)
	})

	created, err := client.CreateSale(context.Background(), "tok", &domain.Sale{
		Date:   time.Date(2024, 3, 10, 0, 0, 0, 0, saoPaulo),
		Amount: decimal.NewFromInt(40),
		Payer:  "Ana",
		Status: domain.SaleStatusPending,
		Items:  []domain.LineItem{{ProductID: "p1", Quantity: 4, UnitPrice: decimal.NewFromInt(10)}},
	})
	require.NoError(t, err)
	assert.Equal(t, "new-id", created.ID)
	assert.True(t, time.Date(2024, 3, 10, 0, 0, 0, 0, saoPaulo).Equal(created.Date))
}

func TestUpdateAndDelete_EscapeID(t *testing.T) {
	var paths []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.EscapedPath())
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_, _ = io.WriteString(w, `{"descricao":"Luz","valor":12,"data":"2024-01-02"}`)
	})

	updated, err := client.UpdateExpense(context.Background(), "tok", "a/b", &domain.Expense{Amount: decimal.NewFromInt(12)})
	require.NoError(t, err)
	assert.Equal(t, "a/b", updated.ID)
	require.NoError(t, client.DeleteSale(context.Background(), "tok", "v1"))

	assert.Equal(t, []string{"PUT /api/despesas/a%2Fb", "DELETE /api/vendas/v1"}, paths)
}

func TestAPIError_Mapping(t *testing.T) {
	tests := []struct {
		status int
		target error
	}{
		{http.StatusUnauthorized, domain.ErrUnauthorized},
		{http.StatusForbidden, domain.ErrUnauthorized},
		{http.StatusNotFound, domain.ErrNotFound},
		{http.StatusBadRequest, domain.ErrInvalidInput},
		{http.StatusUnprocessableEntity, domain.ErrInvalidInput},
		{http.StatusInternalServerError, domain.ErrUpstream},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, `{"message":"Venda inválida"}`)
			})

			_, err := client.ListExpenses(context.Background(), "tok")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
			assert.ErrorIs(t, err, domain.ErrUpstream)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, "Venda inválida", apiErr.Message)
		})
	}
}

func TestNewAPIError_MessageFallbacks(t *testing.T) {
	assert.Equal(t, "boom", newAPIError(500, []byte(`{"error":"boom"}`)).Message)
	assert.Equal(t, "Bad Gateway", newAPIError(502, []byte("Bad Gateway\n")).Message)
	assert.Equal(t, "upstream returned 503", newAPIError(503, nil).Error())
}

func TestDo_TransportFailureIsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second).ListProducts(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestDo_HonoursContextCancellation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ListProducts(ctx, "tok")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestListProducts_NoTokenSendsNoHeader(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `[{"_id":"p1","nome":"Gás","preco":110}]`)
	})

	products, err := client.ListProducts(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Gás", products[0].Name)
	assert.Equal(t, "110", products[0].Price.String())
}
