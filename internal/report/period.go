package report

import (
	"time"

	"github.com/dafibh/vendas/vendas-backend/internal/domain"
)

// Dated is any record with a calendar date
type Dated interface {
	RecordDate() time.Time
}

// Period is an inclusive calendar-date range. Either bound may be nil.
type Period struct {
	From *time.Time
	To   *time.Time
}

// NewPeriod validates that from is not after to when both are set
func NewPeriod(from, to *time.Time) (Period, error) {
	p := Period{From: from, To: to}
	if from != nil && to != nil && calendarDate(*from, from.Location()).After(calendarDate(*to, from.Location())) {
		return Period{}, domain.ErrInvalidPeriod
	}
	return p, nil
}

// IsBounded reports whether both bounds are set
func (p Period) IsBounded() bool {
	return p.From != nil && p.To != nil
}

// Label renders "dd/MM/yyyy a dd/MM/yyyy", or "" when the period is not bounded
func (p Period) Label() string {
	if !p.IsBounded() {
		return ""
	}
	return FormatDate(*p.From) + " a " + FormatDate(*p.To)
}

// Contains reports whether t falls on a calendar day within the bounds that are set.
// A zero t is never contained.
func (p Period) Contains(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	loc := p.location()
	day := calendarDate(t, loc)
	if p.From != nil && day.Before(calendarDate(*p.From, loc)) {
		return false
	}
	if p.To != nil && day.After(calendarDate(*p.To, loc)) {
		return false
	}
	return true
}

func (p Period) location() *time.Location {
	if p.From != nil {
		return p.From.Location()
	}
	if p.To != nil {
		return p.To.Location()
	}
	return time.UTC
}

// FilterByPeriod keeps the records whose date lies in p.
// When p is not bounded on both sides the input is returned unchanged.
// Records without a date are dropped and counted in skipped.
func FilterByPeriod[T Dated](records []T, p Period) (kept []T, skipped int) {
	if !p.IsBounded() {
		return records, 0
	}
	return filterDates(records, p)
}

// FilterSales applies the sales screen criteria. Unlike FilterByPeriod each date
// bound applies on its own.
func FilterSales(sales []domain.Sale, f *domain.SaleFilter) (kept []domain.Sale, skipped int) {
	if f.IsEmpty() {
		return sales, 0
	}
	p := Period{From: f.DateFrom, To: f.DateTo}
	kept = make([]domain.Sale, 0, len(sales))
	for _, s := range sales {
		if p.From != nil || p.To != nil {
			if s.Date.IsZero() {
				skipped++
				continue
			}
			if !p.Contains(s.Date) {
				continue
			}
		}
		if !f.MatchesFields(s) {
			continue
		}
		kept = append(kept, s)
	}
	return kept, skipped
}

func filterDates[T Dated](records []T, p Period) ([]T, int) {
	kept := make([]T, 0, len(records))
	skipped := 0
	for _, r := range records {
		d := r.RecordDate()
		if d.IsZero() {
			skipped++
			continue
		}
		if p.Contains(d) {
			kept = append(kept, r)
		}
	}
	return kept, skipped
}

func calendarDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
