package postgres

import (
	"context"
	"errors"
	"io/fs"
	"testing"
	"time"

	"github.com/dvloznov/expense-tracker/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildListQuery(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 31, 23, 59, 0, 0, time.UTC)
	expense := domain.TransactionTypeExpense
	food := domain.CategoryFood

	tests := []struct {
		name      string
		filter    domain.Filter
		wantQuery string
		wantArgs  []any
	}{
		{
			name:      "no filter",
			filter:    domain.Filter{},
			wantQuery: "SELECT id, amount, transaction_type, category, description, date FROM transactions WHERE 1=1 ORDER BY id ASC",
		},
		{
			name:      "date range",
			filter:    domain.Filter{Start: &start, End: &end},
			wantQuery: "SELECT id, amount, transaction_type, category, description, date FROM transactions WHERE 1=1 AND date >= $1 AND date <= $2 ORDER BY id ASC",
			wantArgs:  []any{start, end},
		},
		{
			name:      "type and category",
			filter:    domain.Filter{Type: &expense, Category: &food},
			wantQuery: "SELECT id, amount, transaction_type, category, description, date FROM transactions WHERE 1=1 AND transaction_type = $1 AND category = $2 ORDER BY id ASC",
			wantArgs:  []any{"expense", "food"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := buildListQuery(tt.filter)
			assert.Equal(t, tt.wantQuery, query)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

type fakeRow struct {
	scan func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error { return r.scan(dest...) }

type fakeQuerier struct {
	QueryRowFunc func(ctx context.Context, sql string, args ...any) pgx.Row
}

func (f *fakeQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return f.QueryRowFunc(ctx, sql, args...)
}

func (f *fakeQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func TestRepository_InsertPassesColumns(t *testing.T) {
	date := time.Date(2025, 1, 14, 18, 30, 0, 0, time.UTC)
	var gotArgs []any
	repo := &Repository{db: &fakeQuerier{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			gotArgs = args
			return fakeRow{scan: func(dest ...any) error {
				*(dest[0].(*int64)) = 42
				return nil
			}}
		},
	}}

	id, err := repo.Insert(context.Background(), domain.Transaction{
		Amount:      decimal.RequireFromString("15.50"),
		Type:        domain.TransactionTypeExpense,
		Category:    domain.CategoryFood,
		Description: "lunch",
		Date:        date,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	require.Len(t, gotArgs, 5)
	assert.True(t, gotArgs[0].(decimal.Decimal).Equal(decimal.RequireFromString("15.5")))
	assert.Equal(t, "expense", gotArgs[1])
	assert.Equal(t, "food", gotArgs[2])
	assert.Equal(t, "lunch", gotArgs[3])
	assert.Equal(t, date, gotArgs[4])
}

func TestRepository_InsertError(t *testing.T) {
	cause := errors.New("connection reset")
	repo := &Repository{db: &fakeQuerier{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return fakeRow{scan: func(dest ...any) error { return cause }}
		},
	}}

	_, err := repo.Insert(context.Background(), domain.Transaction{})
	assert.ErrorIs(t, err, cause)
}

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "000001_create_transactions.up.sql")
	assert.Contains(t, names, "000001_create_transactions.down.sql")
}
