package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// Goal is the monthly target for sales revenue and units sold
type Goal struct {
	Month       int             `json:"month"`
	Year        int             `json:"year"`
	SalesTarget decimal.Decimal `json:"salesTarget"`
	UnitsTarget int             `json:"unitsTarget"`
}

// Validate checks a goal before upsert
func (g *Goal) Validate() error {
	if g.Month < 1 || g.Month > 12 {
		return ErrInvalidGoal
	}
	if g.Year < MinGoalYear || g.Year > MaxGoalYear {
		return ErrInvalidGoal
	}
	if g.SalesTarget.IsNegative() || g.UnitsTarget < 0 {
		return ErrInvalidGoal
	}
	return nil
}

// MonthlyTotal is one element of a server-computed monthly series.
// Month and Year are zero when the server does not say which period the total belongs to.
type MonthlyTotal struct {
	Month int             `json:"month"`
	Year  int             `json:"year"`
	Total decimal.Decimal `json:"total"`
}

// CurrentTotal picks the element of series that belongs to month/year.
// Elements without period info are matched positionally: the first one wins.
func CurrentTotal(series []MonthlyTotal, month, year int) decimal.Decimal {
	for _, m := range series {
		if m.Month == month && m.Year == year {
			return m.Total
		}
	}
	for _, m := range series {
		if m.Month == 0 && m.Year == 0 {
			return m.Total
		}
	}
	return decimal.Zero
}

// GoalGateway reads and writes goals and the monthly series used to track them
type GoalGateway interface {
	GetGoal(ctx context.Context, token string, month, year int) (*Goal, error)
	UpsertGoal(ctx context.Context, token string, goal *Goal) (*Goal, error)
	MonthlySales(ctx context.Context, token string, month, year int) ([]MonthlyTotal, error)
	MonthlyUnits(ctx context.Context, token string, month, year int) ([]MonthlyTotal, error)
}
