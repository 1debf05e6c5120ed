package service

import (
	"context"
	"strings"

	"github.com/dafibh/vendas/vendas-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// ExpenseService handles expense business logic
type ExpenseService struct {
	expenses domain.ExpenseGateway
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(expenses domain.ExpenseGateway) *ExpenseService {
	return &ExpenseService{expenses: expenses}
}

// List returns every expense
func (s *ExpenseService) List(ctx context.Context, token string) ([]domain.Expense, error) {
	expenses, err := s.expenses.ListExpenses(ctx, token)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list expenses")
		return nil, err
	}
	return nonNil(expenses), nil
}

// Create validates and stores an expense
func (s *ExpenseService) Create(ctx context.Context, token string, expense *domain.Expense) (*domain.Expense, error) {
	if err := expense.Validate(); err != nil {
		return nil, err
	}
	created, err := s.expenses.CreateExpense(ctx, token, expense)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create expense")
		return nil, err
	}
	log.Info().Str("expense_id", created.ID).Msg("Expense created")
	return created, nil
}

// Update validates and replaces an expense
func (s *ExpenseService) Update(ctx context.Context, token string, id string, expense *domain.Expense) (*domain.Expense, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrExpenseNotFound
	}
	if err := expense.Validate(); err != nil {
		return nil, err
	}
	updated, err := s.expenses.UpdateExpense(ctx, token, id, expense)
	if err != nil {
		log.Error().Err(err).Str("expense_id", id).Msg("Failed to update expense")
		return nil, err
	}
	return updated, nil
}

// Delete removes an expense
func (s *ExpenseService) Delete(ctx context.Context, token string, id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.ErrExpenseNotFound
	}
	if err := s.expenses.DeleteExpense(ctx, token, id); err != nil {
		log.Error().Err(err).Str("expense_id", id).Msg("Failed to delete expense")
		return err
	}
	return nil
}
