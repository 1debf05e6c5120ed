package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dafibh/vendas/vendas-backend/internal/config"
	"github.com/dafibh/vendas/vendas-backend/internal/export"
	"github.com/dafibh/vendas/vendas-backend/internal/gateway"
	"github.com/dafibh/vendas/vendas-backend/internal/handler"
	"github.com/dafibh/vendas/vendas-backend/internal/middleware"
	"github.com/dafibh/vendas/vendas-backend/internal/repository/postgres"
	"github.com/dafibh/vendas/vendas-backend/internal/repository/storage"
	"github.com/dafibh/vendas/vendas-backend/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Upstream API client
	upstream := gateway.NewClient(cfg.UpstreamURL, cfg.UpstreamTimeout, gateway.WithLocation(cfg.Timezone))
	log.Info().Str("upstream", cfg.UpstreamURL).Str("timezone", cfg.Timezone.String()).Msg("Upstream API configured")

	// Exporters
	var pdfOpts []export.PDFOption
	if cfg.LogoPath != "" {
		if logo, err := loadLogo(cfg.LogoPath); err != nil {
			log.Warn().Err(err).Str("path", cfg.LogoPath).Msg("Failed to load report logo, continuing without it")
		} else {
			pdfOpts = append(pdfOpts, export.WithLogo(logo))
		}
	}
	registry := export.NewDefaultRegistry(pdfOpts...)

	// Optional export archive
	var archiveWorker *service.ArchiveWorker
	if cfg.ArchiveEnabled() {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer pool.Close()

		// Verify database connection
		if err := pool.Ping(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to ping database")
		}
		log.Info().Msg("Connected to database")

		exportLogRepo := postgres.NewExportLogRepository(pool)
		if err := exportLogRepo.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to prepare export log table")
		}

		archiveRepo, err := storage.NewS3ArchiveRepository(ctx, cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize export archive")
		}

		archiveWorker = service.NewArchiveWorker(archiveRepo, exportLogRepo, log.Logger, service.ArchiveWorkerConfig{
			QueueSize: cfg.ArchiveQueueSize,
		})
		archiveWorker.Start(ctx)
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Export archive enabled")
	}

	// Initialize services
	goalService := service.NewGoalService(upstream)
	dashboardService := service.NewDashboardService(upstream, upstream, goalService, cfg.Timezone)
	saleService := service.NewSaleService(upstream, upstream, cfg.Timezone)
	expenseService := service.NewExpenseService(upstream)
	productService := service.NewProductService(upstream)
	exportService := service.NewExportService(registry, archiveWorker)

	// Initialize auth middleware
	authMiddleware, err := middleware.NewAuthMiddleware(cfg.JWT)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create auth middleware")
	}
	if !authMiddleware.Verifies() {
		log.Warn().Msg("JWT_SECRET not set; bearer tokens are forwarded upstream unverified")
	}

	exportLimiter := middleware.NewRateLimiter(cfg.ExportRateLimit, cfg.ExportBurst)
	defer exportLimiter.Stop()

	// Initialize handlers
	handlers := handler.Handlers{
		Health:    handler.NewHealthHandler(exportService.ArchiveEnabled()),
		Dashboard: handler.NewDashboardHandler(dashboardService, goalService, exportService, cfg.Timezone),
		Sale:      handler.NewSaleHandler(saleService, exportService, cfg.Timezone),
		Expense:   handler.NewExpenseHandler(expenseService, cfg.Timezone),
		Product:   handler.NewProductHandler(productService),
		Export:    handler.NewExportHandler(exportService, cfg.ArchiveListLimit),
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		ExposeHeaders:    []string{echo.HeaderContentDisposition, "Retry-After", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Register routes
	handler.RegisterRoutes(e, authMiddleware, exportLimiter, handlers)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Flush queued archive uploads before the pool closes
	if archiveWorker != nil {
		archiveWorker.Stop()
	}

	log.Info().Msg("Server exited")
}

func loadLogo(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return export.PrepareLogo(raw)
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Int64("bytes", res.Size).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
