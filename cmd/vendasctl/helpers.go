package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dafibh/vendas/vendas-backend/internal/domain"
	"github.com/dafibh/vendas/vendas-backend/internal/export"
	"github.com/dafibh/vendas/vendas-backend/internal/gateway"
	"github.com/dafibh/vendas/vendas-backend/internal/util"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// settings is the resolved configuration shared by every command
type settings struct {
	apiURL  string
	token   string
	timeout time.Duration
	loc     *time.Location
	logo    string
}

func loadSettings() (*settings, error) {
	loc, err := time.LoadLocation(viper.GetString("report.timezone"))
	if err != nil {
		return nil, fmt.Errorf("invalid timezone: %w", err)
	}
	s := &settings{
		apiURL:  strings.TrimRight(viper.GetString("api.url"), "/"),
		token:   viper.GetString("api.token"),
		timeout: viper.GetDuration("api.timeout"),
		loc:     loc,
		logo:    viper.GetString("report.logo"),
	}
	if s.apiURL == "" {
		return nil, fmt.Errorf("api url is required (--api-url or VENDAS_API_URL)")
	}
	if s.timeout <= 0 {
		s.timeout = 15 * time.Second
	}
	return s, nil
}

func (s *settings) client() *gateway.Client {
	return gateway.NewClient(s.apiURL, s.timeout, gateway.WithLocation(s.loc))
}

// registry builds the exporters, adding the logo to PDFs when one is configured
func (s *settings) registry() (*export.Registry, error) {
	if s.logo == "" {
		return export.NewDefaultRegistry(), nil
	}
	raw, err := os.ReadFile(s.logo)
	if err != nil {
		return nil, fmt.Errorf("failed to read logo: %w", err)
	}
	logo, err := export.PrepareLogo(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare logo: %w", err)
	}
	return export.NewDefaultRegistry(export.WithLogo(logo)), nil
}

// saleFilterFlags are the sales screen criteria as given on the command line
type saleFilterFlags struct {
	from, to      string
	payer         string
	status        string
	paymentMethod string
	min, max      string
}

func (f saleFilterFlags) build(loc *time.Location) (*domain.SaleFilter, error) {
	from, err := util.ParseDate(f.from, loc)
	if err != nil {
		return nil, fmt.Errorf("--from: %w", err)
	}
	to, err := util.ParseDate(f.to, loc)
	if err != nil {
		return nil, fmt.Errorf("--to: %w", err)
	}
	filter := &domain.SaleFilter{
		DateFrom:      from,
		DateTo:        to,
		PayerContains: f.payer,
		PaymentMethod: domain.PaymentMethod(f.paymentMethod),
		Status:        domain.SaleStatus(f.status),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("--status: %w", domain.ErrInvalidStatus)
	}
	if filter.MinAmount, err = optionalDecimal(f.min); err != nil {
		return nil, fmt.Errorf("--min: %w", err)
	}
	if filter.MaxAmount, err = optionalDecimal(f.max); err != nil {
		return nil, fmt.Errorf("--max: %w", err)
	}
	return filter, nil
}

func optionalDecimal(raw string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// writeArtifact saves the artifact under dir and returns its path
func writeArtifact(dir string, a *export.Artifact) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, a.Filename)
	if err := os.WriteFile(path, a.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
