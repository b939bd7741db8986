package ledger

import (
	"context"

	"github.com/dvloznov/expense-tracker/internal/domain"
	"github.com/shopspring/decimal"
)

// Totals are the per-type sums of every stored transaction.
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// Balance returns income minus expense.
func (t Totals) Balance() decimal.Decimal {
	return t.Income.Sub(t.Expense)
}

// Repository defines the persistence operations the store needs.
// This abstraction allows for different backends (memory, Postgres, BigQuery).
type Repository interface {
	// Insert persists tx and returns the id the backend assigned to it.
	// Ids are unique and strictly increasing in insertion order.
	Insert(ctx context.Context, tx domain.Transaction) (int64, error)

	// List returns the transactions matching filter ordered by id ascending.
	List(ctx context.Context, filter domain.Filter) ([]domain.Transaction, error)

	// Totals returns the income and expense sums over all transactions.
	Totals(ctx context.Context) (Totals, error)

	// Close releases backend resources.
	Close() error
}

// Notifier is told about every transaction after it has been persisted.
// Returned errors are logged by the store and never fail the write.
type Notifier interface {
	TransactionAdded(ctx context.Context, tx domain.Transaction, balance decimal.Decimal) error
}
