package domain

import "errors"

// Domain errors
var (
	ErrNotFound          = errors.New("resource not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrUpstream          = errors.New("upstream request failed")
	ErrSaleNotFound      = errors.New("sale not found")
	ErrExpenseNotFound   = errors.New("expense not found")
	ErrGoalNotFound      = errors.New("goal not found")
	ErrSaleWithoutItems  = errors.New("sale must have at least one item")
	ErrInvalidLineItem   = errors.New("every item needs a product and a positive quantity")
	ErrInvalidStatus     = errors.New("invalid sale status")
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrDateRequired      = errors.New("date is required")
	ErrPayerRequired     = errors.New("payer is required")
	ErrInvalidGoal       = errors.New("invalid goal")
	ErrInvalidPeriod     = errors.New("invalid period")
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrExportFailed      = errors.New("export failed")
)

// Validation constants
const (
	MaxDescriptionLength = 500
	MinGoalYear          = 2000
	MaxGoalYear          = 2100
)
