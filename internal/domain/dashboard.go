package domain

import "github.com/shopspring/decimal"

// SourceFailure reports one upstream collection that could not be loaded
type SourceFailure struct {
	Source  string `json:"source"`
	Message string `json:"message"`
}

// DashboardSummary represents the dashboard totals for a period
type DashboardSummary struct {
	From           string          `json:"from,omitempty"`
	To             string          `json:"to,omitempty"`
	TotalSales     decimal.Decimal `json:"totalSales"`
	TotalExpenses  decimal.Decimal `json:"totalExpenses"`
	Balance        decimal.Decimal `json:"balance"`
	Sales          []Sale          `json:"sales"`
	Expenses       []Expense       `json:"expenses"`
	SkippedRecords int             `json:"skippedRecords"`
	Failures       []SourceFailure `json:"failures,omitempty"`
}

// GoalProgress compares a monthly goal with the server-computed monthly totals
type GoalProgress struct {
	Goal          Goal            `json:"goal"`
	HasGoal       bool            `json:"hasGoal"`
	SalesActual   decimal.Decimal `json:"salesActual"`
	SalesProgress decimal.Decimal `json:"salesProgress"`
	UnitsActual   decimal.Decimal `json:"unitsActual"`
	UnitsProgress decimal.Decimal `json:"unitsProgress"`
}

// SaleList is a filtered sales listing with its totals
type SaleList struct {
	Sales          []Sale          `json:"sales"`
	Total          decimal.Decimal `json:"total"`
	OpenSubtotal   decimal.Decimal `json:"openSubtotal"`
	Count          int             `json:"count"`
	Units          int             `json:"units"`
	SkippedRecords int             `json:"skippedRecords"`
}

// BulkStatusResult reports a bulk status change sale by sale
type BulkStatusResult struct {
	Status  SaleStatus        `json:"status"`
	Updated []string          `json:"updated"`
	Failed  map[string]string `json:"failed,omitempty"`
}
