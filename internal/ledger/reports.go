package ledger

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/expense-tracker/internal/domain"
	"github.com/shopspring/decimal"
)

// DailyTotal is the sum of expenses recorded on one calendar day.
type DailyTotal struct {
	Day   civil.Date      `json:"day"`
	Total decimal.Decimal `json:"total"`
}

// MonthSummary aggregates the expenses of one calendar month.
// Months that only contain income are present with a zero total.
type MonthSummary struct {
	Month      string                              `json:"month"` // YYYY-MM
	Total      decimal.Decimal                     `json:"total"`
	Categories map[domain.Category]decimal.Decimal `json:"categories"`
}

// DailyExpenses returns the expense total of each day in [from, to] that has
// at least one expense, oldest first. Both bounds are whole days in the
// store's location.
func (s *Store) DailyExpenses(ctx context.Context, from, to civil.Date) ([]DailyTotal, error) {
	if to.Before(from) {
		return []DailyTotal{}, nil
	}

	start := from.In(s.location())
	end := to.AddDays(1).In(s.location()).Add(-time.Nanosecond)
	expense := domain.TransactionTypeExpense

	txs, err := s.List(ctx, domain.Filter{Start: &start, End: &end, Type: &expense})
	if err != nil {
		return nil, err
	}

	byDay := make(map[civil.Date]decimal.Decimal)
	for _, tx := range txs {
		day := civil.DateOf(tx.Date.In(s.location()))
		byDay[day] = byDay[day].Add(tx.Amount)
	}

	out := make([]DailyTotal, 0, len(byDay))
	for day, total := range byDay {
		out = append(out, DailyTotal{Day: day, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}

// MonthlySummary summarizes every stored transaction by month.
func (s *Store) MonthlySummary(ctx context.Context) ([]MonthSummary, error) {
	txs, err := s.List(ctx, domain.Filter{})
	if err != nil {
		return nil, err
	}
	return SummarizeMonths(txs, s.location()), nil
}

// SummarizeMonths groups txs by calendar month in loc, summing expenses overall
// and per category. The result is ordered by month.
func SummarizeMonths(txs []domain.Transaction, loc *time.Location) []MonthSummary {
	if loc == nil {
		loc = time.Local
	}

	months := make(map[string]*MonthSummary)
	for _, tx := range txs {
		key := tx.Date.In(loc).Format("2006-01")
		m, ok := months[key]
		if !ok {
			m = &MonthSummary{Month: key, Categories: make(map[domain.Category]decimal.Decimal)}
			months[key] = m
		}
		if tx.Type != domain.TransactionTypeExpense {
			continue
		}
		m.Total = m.Total.Add(tx.Amount)
		m.Categories[tx.Category] = m.Categories[tx.Category].Add(tx.Amount)
	}

	out := make([]MonthSummary, 0, len(months))
	for _, m := range months {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

func (s *Store) location() *time.Location {
	if s.loc == nil {
		return time.Local
	}
	return s.loc
}
