package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/dvloznov/expense-tracker/internal/domain"
	"github.com/dvloznov/expense-tracker/internal/ledger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// querier is the subset of pgxpool.Pool the repository uses.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repository stores transactions in the PostgreSQL table created by Migrate.
type Repository struct {
	db    querier
	close func()
}

// NewRepository creates a repository backed by pool. Close closes the pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool, close: pool.Close}
}

var _ ledger.Repository = (*Repository)(nil)

const insertTransactionSQL = `
INSERT INTO transactions (amount, transaction_type, category, description, date)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`

// Insert implements ledger.Repository. The id comes from the identity column.
func (r *Repository) Insert(ctx context.Context, tx domain.Transaction) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, insertTransactionSQL,
		tx.Amount,
		string(tx.Type),
		string(tx.Category),
		tx.Description,
		tx.Date,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("Insert: inserting transaction: %w", err)
	}
	return id, nil
}

// List implements ledger.Repository.
func (r *Repository) List(ctx context.Context, filter domain.Filter) ([]domain.Transaction, error) {
	query, args := buildListQuery(filter)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("List: querying transactions: %w", err)
	}
	defer rows.Close()

	txs := []domain.Transaction{}
	for rows.Next() {
		var (
			tx       domain.Transaction
			typ, cat string
		)
		if err := rows.Scan(&tx.ID, &tx.Amount, &typ, &cat, &tx.Description, &tx.Date); err != nil {
			return nil, fmt.Errorf("List: scanning transaction: %w", err)
		}
		tx.Type = domain.TransactionType(typ)
		tx.Category = domain.Category(cat)
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: iterating transactions: %w", err)
	}
	return txs, nil
}

const totalsSQL = `
SELECT
    COALESCE(SUM(amount) FILTER (WHERE transaction_type = 'income'), 0),
    COALESCE(SUM(amount) FILTER (WHERE transaction_type = 'expense'), 0)
FROM transactions`

// Totals implements ledger.Repository.
func (r *Repository) Totals(ctx context.Context) (ledger.Totals, error) {
	var income, expense decimal.Decimal
	if err := r.db.QueryRow(ctx, totalsSQL).Scan(&income, &expense); err != nil {
		return ledger.Totals{}, fmt.Errorf("Totals: querying totals: %w", err)
	}
	return ledger.Totals{Income: income, Expense: expense}, nil
}

// Close implements ledger.Repository.
func (r *Repository) Close() error {
	if r.close != nil {
		r.close()
	}
	return nil
}

// buildListQuery renders the filtered SELECT with positional arguments.
func buildListQuery(filter domain.Filter) (string, []any) {
	var (
		b    strings.Builder
		args []any
	)
	b.WriteString("SELECT id, amount, transaction_type, category, description, date FROM transactions WHERE 1=1")

	add := func(clause string, arg any) {
		args = append(args, arg)
		fmt.Fprintf(&b, " AND %s $%d", clause, len(args))
	}
	if filter.Start != nil {
		add("date >=", *filter.Start)
	}
	if filter.End != nil {
		add("date <=", *filter.End)
	}
	if filter.Type != nil {
		add("transaction_type =", string(*filter.Type))
	}
	if filter.Category != nil {
		add("category =", string(*filter.Category))
	}

	b.WriteString(" ORDER BY id ASC")
	return b.String(), args
}
