package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/dafibh/vendas/vendas-backend/internal/domain"
	"github.com/dafibh/vendas/vendas-backend/internal/report"
	"github.com/dafibh/vendas/vendas-backend/internal/util"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

const dateFormatMessage = "Must be a date in yyyy-MM-dd or dd/MM/yyyy format"

// parsePeriod reads the from/to query params
func parsePeriod(c echo.Context, loc *time.Location) (report.Period, []ValidationError) {
	var errs []ValidationError
	from, err := util.ParseDate(c.QueryParam("from"), loc)
	if err != nil {
		errs = append(errs, ValidationError{Field: "from", Message: dateFormatMessage})
	}
	to, err := util.ParseDate(c.QueryParam("to"), loc)
	if err != nil {
		errs = append(errs, ValidationError{Field: "to", Message: dateFormatMessage})
	}
	if len(errs) > 0 {
		return report.Period{}, errs
	}
	period, err := report.NewPeriod(from, to)
	if err != nil {
		return report.Period{}, []ValidationError{{Field: "from", Message: "Must not be after to"}}
	}
	return period, nil
}

// parseSaleFilter reads the sales screen criteria from the query string
func parseSaleFilter(c echo.Context, loc *time.Location) (*domain.SaleFilter, []ValidationError) {
	period, errs := parsePeriod(c, loc)
	filter := &domain.SaleFilter{
		DateFrom:      period.From,
		DateTo:        period.To,
		PayerContains: strings.TrimSpace(c.QueryParam("payer")),
		PaymentMethod: domain.PaymentMethod(strings.TrimSpace(c.QueryParam("paymentMethod"))),
		Status:        domain.SaleStatus(strings.TrimSpace(c.QueryParam("status"))),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		errs = append(errs, ValidationError{Field: "status", Message: "Must be one of: Pendente, Entregue, Acertado"})
	}
	for _, p := range []struct {
		name string
		dst  **decimal.Decimal
	}{
		{"min", &filter.MinAmount},
		{"max", &filter.MaxAmount},
	} {
		raw := strings.TrimSpace(c.QueryParam(p.name))
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			errs = append(errs, ValidationError{Field: p.name, Message: "Must be a valid decimal number"})
			continue
		}
		*p.dst = &d
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return filter, nil
}

// parseMonthYear reads optional month/year query params, defaulting to the current month in loc
func parseMonthYear(c echo.Context, loc *time.Location) (int, int, []ValidationError) {
	month, year := util.CurrentMonth(time.Now(), loc)
	var errs []ValidationError

	if yearStr := c.QueryParam("year"); yearStr != "" {
		parsed, err := strconv.Atoi(yearStr)
		if err != nil || parsed < domain.MinGoalYear || parsed > domain.MaxGoalYear {
			errs = append(errs, ValidationError{Field: "year", Message: "Must be between 2000 and 2100"})
		} else {
			year = parsed
		}
	}
	if monthStr := c.QueryParam("month"); monthStr != "" {
		parsed, err := strconv.Atoi(monthStr)
		if err != nil || parsed < 1 || parsed > 12 {
			errs = append(errs, ValidationError{Field: "month", Message: "Must be between 1 and 12"})
		} else {
			month = parsed
		}
	}
	return month, year, errs
}

// parseDecimal parses an optional money field; empty yields zero
func parseDecimal(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}
