package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUpstream serves the sales API paths the commands read
type fakeUpstream struct {
	mu         sync.Mutex
	authHeader string
	postedGoal map[string]any
}

func (f *fakeUpstream) handler() http.Handler {
	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}
	mux.HandleFunc("GET /vendas", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.authHeader = r.Header.Get("Authorization")
		f.mu.Unlock()
		writeJSON(w, []map[string]any{
			{"_id": "s1", "cliente": "Ana", "data": "2024-01-05", "valor": 100, "formaPagamento": "Pix", "status": "Pendente",
				"itens": []map[string]any{{"produto": "p1", "quantidade": 2, "preco": 50}}},
			{"_id": "s2", "cliente": "Bruno", "data": "2024-02-10T00:00:00.000Z", "valor": 50, "formaPagamento": "Dinheiro", "status": "Acertado",
				"itens": []map[string]any{}},
		})
	})
	mux.HandleFunc("GET /despesas", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]any{
			{"_id": "e1", "descricao": "Gasolina", "valor": 30, "data": "2024-01-20"},
		})
	})
	mux.HandleFunc("GET /produtos", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]any{{"_id": "p1", "nome": "Bolo", "preco": 50}})
	})
	mux.HandleFunc("GET /metas/{mes}/{ano}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"mes": 1, "ano": 2024, "metaVendas": 400, "metaProdutos": 10})
	})
	mux.HandleFunc("POST /metas", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.postedGoal = body
		f.mu.Unlock()
		writeJSON(w, body)
	})
	mux.HandleFunc("GET /vendas/mensais/{mes}/{ano}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]any{{"mes": 1, "ano": 2024, "total": 100}})
	})
	mux.HandleFunc("GET /vendas/produtos/mensais/{mes}/{ano}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"mes": 1, "ano": 2024, "total": 2})
	})
	return mux
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func newUpstream(t *testing.T) (*fakeUpstream, string) {
	t.Helper()
	f := &fakeUpstream{}
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	return f, srv.URL
}

func TestExportDashboard_Text(t *testing.T) {
	f, url := newUpstream(t)
	dir := t.TempDir()

	out, err := runCLI(t, "export", "dashboard",
		"--api-url", url, "--token", "tok", "--timezone", "UTC",
		"--format", "txt", "--from", "2024-01-01", "--to", "31/01/2024",
		"--goals", "--out", dir)
	require.NoError(t, err, out)

	path := strings.TrimSpace(out)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "dashboard_"))
	assert.Equal(t, ".txt", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "Total de Vendas: R$ 100.00")
	assert.Contains(t, text, "Total de Despesas: R$ 30.00")
	assert.Contains(t, text, "Saldo: R$ 70.00")
	assert.Contains(t, text, "Progresso Vendas: 25.0%")
	assert.NotContains(t, text, "Bruno")

	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Equal(t, "Bearer tok", f.authHeader)
}

func TestExportSales_Filters(t *testing.T) {
	_, url := newUpstream(t)
	dir := t.TempDir()

	out, err := runCLI(t, "export", "sales",
		"--api-url", url, "--timezone", "UTC",
		"-f", "txt", "--payer", "ana", "-o", dir)
	require.NoError(t, err, out)

	data, err := os.ReadFile(strings.TrimSpace(out))
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "Ana")
	assert.Contains(t, text, "Bolo")
	assert.NotContains(t, text, "Bruno")
}

func TestExport_InvalidInput(t *testing.T) {
	_, url := newUpstream(t)

	tests := []struct {
		name string
		args []string
	}{
		{"unknown format", []string{"export", "dashboard", "--format", "doc", "--from", "2024-01-01", "--to", "2024-01-31"}},
		{"bad date", []string{"export", "dashboard", "--format", "txt", "--from", "2024-13-01", "--to", "2024-01-31"}},
		{"reversed period", []string{"export", "dashboard", "--format", "txt", "--from", "2024-02-01", "--to", "2024-01-01"}},
		{"bad status", []string{"export", "sales", "--format", "txt", "--status", "Cancelado"}},
		{"bad amount", []string{"export", "sales", "--format", "txt", "--min", "abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(append([]string{}, tt.args...), "--api-url", url, "--timezone", "UTC", "--out", t.TempDir())
			_, err := runCLI(t, args...)
			assert.Error(t, err)
		})
	}
}

func TestGoalGet(t *testing.T) {
	_, url := newUpstream(t)

	out, err := runCLI(t, "goal", "get", "--api-url", url, "--timezone", "UTC", "--month", "1", "--year", "2024")
	require.NoError(t, err, out)

	assert.Contains(t, out, "Meta 01/2024")
	assert.Contains(t, out, "100.00 de 400.00 (25.0%)")
	assert.Contains(t, out, "2 de 10 (20.0%)")
	assert.NotContains(t, out, "sem meta")
}

func TestGoalSet(t *testing.T) {
	f, url := newUpstream(t)

	out, err := runCLI(t, "goal", "set", "--api-url", url, "--timezone", "UTC",
		"--month", "3", "--year", "2024", "--sales", "1500.50", "--units", "40")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Meta 03/2024 salva")

	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotNil(t, f.postedGoal)
	assert.EqualValues(t, 3, f.postedGoal["mes"])
	assert.EqualValues(t, 2024, f.postedGoal["ano"])
	assert.EqualValues(t, 1500.5, f.postedGoal["metaVendas"])
	assert.EqualValues(t, 40, f.postedGoal["metaProdutos"])
}

func TestGoalSet_InvalidTarget(t *testing.T) {
	_, url := newUpstream(t)

	_, err := runCLI(t, "goal", "set", "--api-url", url, "--sales", "lots")
	assert.Error(t, err)
}
