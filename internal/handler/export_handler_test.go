package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dafibh/vendas/vendas-backend/internal/config"
	"github.com/dafibh/vendas/vendas-backend/internal/domain"
	"github.com/dafibh/vendas/vendas-backend/internal/export"
	"github.com/dafibh/vendas/vendas-backend/internal/middleware"
	"github.com/dafibh/vendas/vendas-backend/internal/service"
	"github.com/dafibh/vendas/vendas-backend/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRecent_WithoutArchive(t *testing.T) {
	env := newTestEnv()

	c, rec := newContext(http.MethodGet, "/api/v1/exports", "")
	require.NoError(t, env.export.GetRecent(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	response := decode[RecentExportsResponse](t, rec)
	assert.False(t, response.ArchiveEnabled)
	assert.NotNil(t, response.Exports)
	assert.Empty(t, response.Exports)
}

func TestGetRecent_ArchivedExports(t *testing.T) {
	archive := testutil.NewMockArchiveRepository()
	logRepo := testutil.NewMockExportLogRepository()
	worker := service.NewArchiveWorker(archive, logRepo, zerolog.Nop(), service.DefaultArchiveWorkerConfig())
	exports := service.NewExportService(export.NewDefaultRegistry(), worker)

	gw := testutil.NewMockGateway()
	seedDashboard(gw)
	dashboard := NewDashboardHandler(service.NewDashboardService(gw, gw, service.NewGoalService(gw), saoPaulo), service.NewGoalService(gw), exports, saoPaulo)

	c, rec := newContext(http.MethodGet, "/api/v1/dashboard/export/pdf", "")
	c.SetParamNames("format")
	c.SetParamValues("pdf")
	require.NoError(t, dashboard.ExportDashboard(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))

	// the queued job is archived when the worker drains on stop
	worker.Start(context.Background())
	worker.Stop()

	handler := NewExportHandler(exports, 10)
	c, rec = newContext(http.MethodGet, "/api/v1/exports?topic=dashboard", "")
	require.NoError(t, handler.GetRecent(c))

	response := decode[RecentExportsResponse](t, rec)
	assert.True(t, response.ArchiveEnabled)
	require.Len(t, response.Exports, 1)
	assert.Equal(t, string(domain.ExportFormatPDF), response.Exports[0].Format)
	assert.Contains(t, response.Exports[0].DownloadURL, "https://archive.test/exports/dashboard/")

	c, rec = newContext(http.MethodGet, "/api/v1/exports?limit=500", "")
	require.NoError(t, handler.GetRecent(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRoutes(t *testing.T) {
	gw := testutil.NewMockGateway()
	seedDashboard(gw)
	goals := service.NewGoalService(gw)
	exports := service.NewExportService(export.NewDefaultRegistry(), nil)

	auth, err := middleware.NewAuthMiddleware(config.JWTConfig{})
	require.NoError(t, err)
	limiter := middleware.NewRateLimiter(0.01, 1)
	defer limiter.Stop()

	e := echo.New()
	RegisterRoutes(e, auth, limiter, Handlers{
		Health:    NewHealthHandler(false),
		Dashboard: NewDashboardHandler(service.NewDashboardService(gw, gw, goals, saoPaulo), goals, exports, saoPaulo),
		Sale:      NewSaleHandler(service.NewSaleService(gw, gw, saoPaulo), exports, saoPaulo),
		Expense:   NewExpenseHandler(service.NewExpenseService(gw), saoPaulo),
		Product:   NewProductHandler(service.NewProductService(gw)),
		Export:    NewExportHandler(exports, 20),
	})

	serve := func(method, target, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, target, nil)
		if token != "" {
			req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, serve(http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(http.MethodGet, "/api/v1/sales", "").Code)

	for _, target := range []string{
		"/api/v1/dashboard/summary",
		"/api/v1/dashboard/goals",
		"/api/v1/sales",
		"/api/v1/expenses",
		"/api/v1/products",
		"/api/v1/exports",
	} {
		assert.Equal(t, http.StatusOK, serve(http.MethodGet, target, testToken).Code, target)
	}

	// exports share one budget per token
	first := serve(http.MethodGet, "/api/v1/sales/export/txt", testToken)
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Contains(t, first.Header().Get(echo.HeaderContentDisposition), "vendas_")
	assert.Equal(t, http.StatusTooManyRequests, serve(http.MethodGet, "/api/v1/dashboard/export/txt", testToken).Code)
	assert.Equal(t, http.StatusOK, serve(http.MethodGet, "/api/v1/dashboard/export/txt", "another-token").Code)
}

func TestSendArtifact(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/", "")
	artifact := &export.Artifact{
		Filename:    "vendas_2024_01_31.txt",
		ContentType: "text/plain; charset=utf-8",
		Data:        []byte("Relatório"),
	}
	require.NoError(t, sendArtifact(c, artifact))

	assert.Equal(t, `attachment; filename=vendas_2024_01_31.txt`, rec.Header().Get(echo.HeaderContentDisposition))
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "Relatório", rec.Body.String())
}
