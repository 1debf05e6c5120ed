package domain

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a cost transaction
type Expense struct {
	ID          string          `json:"id"`
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// RecordDate implements the dated-record contract used by the report pipeline
func (e Expense) RecordDate() time.Time { return e.Date }

// RecordAmount returns the expense value
func (e Expense) RecordAmount() decimal.Decimal { return e.Amount }

// RecordDescription returns the expense description
func (e Expense) RecordDescription() string { return e.Description }

// Validate checks an expense before it is sent upstream
func (e *Expense) Validate() error {
	if e.Date.IsZero() {
		return ErrDateRequired
	}
	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	e.Description = strings.TrimSpace(e.Description)
	if len(e.Description) > MaxDescriptionLength {
		return ErrInvalidInput
	}
	return nil
}

// ExpenseGateway is the remote store of expenses
type ExpenseGateway interface {
	ListExpenses(ctx context.Context, token string) ([]Expense, error)
	CreateExpense(ctx context.Context, token string, expense *Expense) (*Expense, error)
	UpdateExpense(ctx context.Context, token string, id string, expense *Expense) (*Expense, error)
	DeleteExpense(ctx context.Context, token string, id string) error
}
