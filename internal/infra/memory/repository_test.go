package memory

import (
	"context"
	"testing"
	"time"

	"github.com/dvloznov/expense-tracker/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tx(amount string, typ domain.TransactionType, date time.Time) domain.Transaction {
	return domain.Transaction{
		Amount:   decimal.RequireFromString(amount),
		Type:     typ,
		Category: domain.CategoryOther,
		Date:     date,
	}
}

func TestRepository_InsertAssignsIncreasingIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()
	now := time.Now()

	var ids []int64
	for i := 0; i < 3; i++ {
		id, err := repo.Insert(ctx, tx("1", domain.TransactionTypeExpense, now))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	assert.Equal(t, []int64{1, 2, 3}, ids)
}

func TestRepository_ListFiltersAndKeepsOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	_, _ = repo.Insert(ctx, tx("10", domain.TransactionTypeIncome, base))
	_, _ = repo.Insert(ctx, tx("3", domain.TransactionTypeExpense, base.AddDate(0, 0, 1)))
	_, _ = repo.Insert(ctx, tx("4", domain.TransactionTypeExpense, base.AddDate(0, 0, 2)))

	all, err := repo.List(ctx, domain.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, int64(1), all[0].ID)
	assert.Equal(t, int64(3), all[2].ID)

	expense := domain.TransactionTypeExpense
	start := base.AddDate(0, 0, 2)
	filtered, err := repo.List(ctx, domain.Filter{Type: &expense, Start: &start})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, int64(3), filtered[0].ID)
}

func TestRepository_Totals(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()

	totals, err := repo.Totals(ctx)
	require.NoError(t, err)
	assert.True(t, totals.Income.IsZero())
	assert.True(t, totals.Expense.IsZero())

	_, _ = repo.Insert(ctx, tx("100.10", domain.TransactionTypeIncome, time.Now()))
	_, _ = repo.Insert(ctx, tx("0.10", domain.TransactionTypeExpense, time.Now()))
	_, _ = repo.Insert(ctx, tx("0.20", domain.TransactionTypeExpense, time.Now()))

	totals, err = repo.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, "100.1", totals.Income.String())
	assert.Equal(t, "0.3", totals.Expense.String())
	assert.Equal(t, "99.8", totals.Balance().String())
}

func TestRepository_Closed(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()
	require.NoError(t, repo.Close())

	_, err := repo.Insert(ctx, tx("1", domain.TransactionTypeIncome, time.Now()))
	assert.ErrorIs(t, err, errClosed)

	_, err = repo.List(ctx, domain.Filter{})
	assert.ErrorIs(t, err, errClosed)
}

func TestRepository_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRepository().Insert(ctx, tx("1", domain.TransactionTypeIncome, time.Now()))
	assert.ErrorIs(t, err, context.Canceled)
}
