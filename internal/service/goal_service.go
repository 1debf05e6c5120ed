package service

import (
	"context"
	"errors"

	"github.com/dafibh/vendas/vendas-backend/internal/domain"
	"github.com/dafibh/vendas/vendas-backend/internal/report"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// GoalService handles monthly goals and their progress
type GoalService struct {
	gateway domain.GoalGateway
}

// NewGoalService creates a new GoalService
func NewGoalService(gateway domain.GoalGateway) *GoalService {
	return &GoalService{gateway: gateway}
}

// Get returns the goal of month/year
func (s *GoalService) Get(ctx context.Context, token string, month, year int) (*domain.Goal, error) {
	if err := validateMonth(month, year); err != nil {
		return nil, err
	}
	return s.gateway.GetGoal(ctx, token, month, year)
}

// Upsert validates and stores a goal, replacing the one of the same month
func (s *GoalService) Upsert(ctx context.Context, token string, goal *domain.Goal) (*domain.Goal, error) {
	if err := goal.Validate(); err != nil {
		return nil, err
	}
	saved, err := s.gateway.UpsertGoal(ctx, token, goal)
	if err != nil {
		log.Error().Err(err).Int("month", goal.Month).Int("year", goal.Year).Msg("Failed to upsert goal")
		return nil, err
	}
	log.Info().Int("month", saved.Month).Int("year", saved.Year).Msg("Goal saved")
	return saved, nil
}

// goalData is the goal of a month plus both monthly series
type goalData struct {
	goal    domain.Goal
	hasGoal bool
	sales   []domain.MonthlyTotal
	units   []domain.MonthlyTotal
}

// load fetches the goal and both monthly series concurrently.
// A missing goal is a zero goal; every other failure is returned joined.
func (s *GoalService) load(ctx context.Context, token string, month, year int) (*goalData, error) {
	data := &goalData{goal: domain.Goal{Month: month, Year: year}}
	var goalErr, salesErr, unitsErr error

	var g errgroup.Group
	g.Go(func() error {
		goal, err := s.gateway.GetGoal(ctx, token, month, year)
		switch {
		case errors.Is(err, domain.ErrGoalNotFound), errors.Is(err, domain.ErrNotFound):
		case err != nil:
			goalErr = err
		default:
			data.goal, data.hasGoal = *goal, true
		}
		return goalErr
	})
	g.Go(func() error {
		data.sales, salesErr = s.gateway.MonthlySales(ctx, token, month, year)
		return salesErr
	})
	g.Go(func() error {
		data.units, unitsErr = s.gateway.MonthlyUnits(ctx, token, month, year)
		return unitsErr
	})
	_ = g.Wait()

	if err := errors.Join(goalErr, salesErr, unitsErr); err != nil {
		return nil, err
	}
	return data, nil
}

// Progress compares the goal of month/year with the monthly totals
func (s *GoalService) Progress(ctx context.Context, token string, month, year int) (*domain.GoalProgress, error) {
	if err := validateMonth(month, year); err != nil {
		return nil, err
	}
	data, err := s.load(ctx, token, month, year)
	if err != nil {
		log.Error().Err(err).Int("month", month).Int("year", year).Msg("Failed to load goal progress")
		return nil, err
	}
	figures := report.ComputeGoalFigures(data.goal, data.sales, data.units)
	return &domain.GoalProgress{
		Goal:          data.goal,
		HasGoal:       data.hasGoal,
		SalesActual:   figures.SalesActual,
		SalesProgress: figures.SalesProgress,
		UnitsActual:   figures.UnitsActual,
		UnitsProgress: figures.UnitsProgress,
	}, nil
}

func validateMonth(month, year int) error {
	if month < 1 || month > 12 || year < domain.MinGoalYear || year > domain.MaxGoalYear {
		return domain.ErrInvalidPeriod
	}
	return nil
}
