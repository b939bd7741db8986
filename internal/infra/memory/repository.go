package memory

import (
	"context"
	"sync"

	"github.com/dvloznov/expense-tracker/internal/domain"
	"github.com/dvloznov/expense-tracker/internal/ledger"
	"github.com/shopspring/decimal"
)

// Repository is an in-memory implementation of ledger.Repository.
// It is safe for concurrent use. Data is lost when the process exits.
type Repository struct {
	mu     sync.RWMutex
	txs    []domain.Transaction
	nextID int64
	closed bool
}

// NewRepository creates an empty in-memory repository.
func NewRepository() *Repository {
	return &Repository{nextID: 1}
}

// Insert implements ledger.Repository.
func (r *Repository) Insert(ctx context.Context, tx domain.Transaction) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return 0, errClosed
	}

	tx.ID = r.nextID
	r.nextID++
	r.txs = append(r.txs, tx)
	return tx.ID, nil
}

// List implements ledger.Repository.
// Transactions are kept in insertion order, which is also id order.
func (r *Repository) List(ctx context.Context, filter domain.Filter) ([]domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, errClosed
	}

	result := make([]domain.Transaction, 0, len(r.txs))
	for _, tx := range r.txs {
		if filter.Matches(tx) {
			result = append(result, tx)
		}
	}
	return result, nil
}

// Totals implements ledger.Repository.
func (r *Repository) Totals(ctx context.Context) (ledger.Totals, error) {
	if err := ctx.Err(); err != nil {
		return ledger.Totals{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return ledger.Totals{}, errClosed
	}

	totals := ledger.Totals{Income: decimal.Zero, Expense: decimal.Zero}
	for _, tx := range r.txs {
		switch tx.Type {
		case domain.TransactionTypeIncome:
			totals.Income = totals.Income.Add(tx.Amount)
		case domain.TransactionTypeExpense:
			totals.Expense = totals.Expense.Add(tx.Amount)
		}
	}
	return totals, nil
}

// Close implements ledger.Repository. Further calls fail.
func (r *Repository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

var _ ledger.Repository = (*Repository)(nil)
