package service

import (
	"context"
	"errors"
	"time"

	"github.com/dafibh/vendas/vendas-backend/internal/domain"
	"github.com/dafibh/vendas/vendas-backend/internal/report"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Upstream collections, as named in failures
const (
	SourceSales    = "sales"
	SourceExpenses = "expenses"
)

// DashboardService handles dashboard-related business logic
type DashboardService struct {
	sales    domain.SaleGateway
	expenses domain.ExpenseGateway
	goals    *GoalService
	loc      *time.Location
	now      func() time.Time
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	sales domain.SaleGateway,
	expenses domain.ExpenseGateway,
	goals *GoalService,
	loc *time.Location,
) *DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardService{
		sales:    sales,
		expenses: expenses,
		goals:    goals,
		loc:      loc,
		now:      time.Now,
	}
}

// DashboardSnapshot holds the records fetched for one dashboard view.
// Each collection carries its own error.
type DashboardSnapshot struct {
	Sales       []domain.Sale
	Expenses    []domain.Expense
	SalesErr    error
	ExpensesErr error
}

// Err joins both load errors
func (s *DashboardSnapshot) Err() error {
	return errors.Join(s.SalesErr, s.ExpensesErr)
}

// Failures lists the collections that could not be loaded
func (s *DashboardSnapshot) Failures() []domain.SourceFailure {
	var failures []domain.SourceFailure
	if s.SalesErr != nil {
		failures = append(failures, domain.SourceFailure{Source: SourceSales, Message: s.SalesErr.Error()})
	}
	if s.ExpensesErr != nil {
		failures = append(failures, domain.SourceFailure{Source: SourceExpenses, Message: s.ExpensesErr.Error()})
	}
	return failures
}

// Load fetches sales and expenses concurrently. A failure in one does not cancel the other.
func (s *DashboardService) Load(ctx context.Context, token string) *DashboardSnapshot {
	snap := &DashboardSnapshot{}

	var g errgroup.Group
	g.Go(func() error {
		snap.Sales, snap.SalesErr = s.sales.ListSales(ctx, token, nil)
		return snap.SalesErr
	})
	g.Go(func() error {
		snap.Expenses, snap.ExpensesErr = s.expenses.ListExpenses(ctx, token)
		return snap.ExpensesErr
	})
	_ = g.Wait()

	if snap.SalesErr != nil {
		log.Warn().Err(snap.SalesErr).Msg("Failed to load sales for dashboard")
	}
	if snap.ExpensesErr != nil {
		log.Warn().Err(snap.ExpensesErr).Msg("Failed to load expenses for dashboard")
	}
	return snap
}

// Summary returns totals and the filtered records of the period.
// A single failed collection is reported in Failures; auth failures and a total
// failure are returned as errors.
func (s *DashboardService) Summary(ctx context.Context, token string, period report.Period) (*domain.DashboardSummary, error) {
	snap := s.Load(ctx, token)
	if err := snap.Err(); err != nil {
		if errors.Is(err, domain.ErrUnauthorized) || (snap.SalesErr != nil && snap.ExpensesErr != nil) {
			return nil, err
		}
	}

	sales, skippedSales := report.FilterByPeriod(snap.Sales, period)
	expenses, skippedExpenses := report.FilterByPeriod(snap.Expenses, period)
	if skipped := skippedSales + skippedExpenses; skipped > 0 {
		log.Warn().Int("skipped", skipped).Msg("Records without a usable date were left out of the dashboard")
	}

	totalSales := report.Sum(sales, domain.Sale.RecordAmount)
	totalExpenses := report.Sum(expenses, domain.Expense.RecordAmount)

	summary := &domain.DashboardSummary{
		TotalSales:     totalSales,
		TotalExpenses:  totalExpenses,
		Balance:        report.Balance(totalSales, totalExpenses),
		Sales:          nonNil(sales),
		Expenses:       nonNil(expenses),
		SkippedRecords: skippedSales + skippedExpenses,
		Failures:       snap.Failures(),
	}
	if period.IsBounded() {
		summary.From = period.From.Format(time.DateOnly)
		summary.To = period.To.Format(time.DateOnly)
	}
	return summary, nil
}

// ReportOptions selects what goes into the dashboard report
type ReportOptions struct {
	Period       report.Period
	IncludeGoals bool
	// Goal month; zero means the month of Period.From, or the current month
	Month int
	Year  int
}

// Report builds the dashboard report model. Exports need complete data, so any
// load failure is returned.
func (s *DashboardService) Report(ctx context.Context, token string, opts ReportOptions) (*report.Model, error) {
	snap := s.Load(ctx, token)
	if err := snap.Err(); err != nil {
		return nil, err
	}

	cfg := report.DashboardConfig{
		Period:   opts.Period,
		Sales:    snap.Sales,
		Expenses: snap.Expenses,
		Now:      s.now().In(s.loc),
	}

	if opts.IncludeGoals {
		month, year := s.goalMonth(opts)
		data, err := s.goals.load(ctx, token, month, year)
		if err != nil {
			return nil, err
		}
		goal := data.goal
		cfg.Goal = &goal
		cfg.MonthlySales = data.sales
		cfg.MonthlyUnits = data.units
	}

	m := report.BuildDashboard(cfg)
	if m.SkippedRecords > 0 {
		log.Warn().Int("skipped", m.SkippedRecords).Msg("Records without a usable date were left out of the report")
	}
	return m, nil
}

func (s *DashboardService) goalMonth(opts ReportOptions) (int, int) {
	if opts.Month != 0 && opts.Year != 0 {
		return opts.Month, opts.Year
	}
	ref := s.now().In(s.loc)
	if opts.Period.From != nil {
		ref = opts.Period.From.In(s.loc)
	}
	return int(ref.Month()), ref.Year()
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
