package bigquery

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/expense-tracker/internal/domain"
	"github.com/dvloznov/expense-tracker/internal/ledger"
	"github.com/dvloznov/expense-tracker/internal/logger"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
)

const transactionsTable = "transactions"

// Repository stores transactions in a BigQuery table.
// BigQuery has no sequences, so ids are allocated in-process starting after
// the largest stored id. Only one writer process may use a table at a time.
type Repository struct {
	client    *bigquery.Client
	projectID string
	datasetID string

	mu     sync.Mutex
	nextID int64
}

var _ ledger.Repository = (*Repository)(nil)

// NewRepository opens a BigQuery client and reads the current maximum id.
func NewRepository(ctx context.Context, projectID, datasetID string) (*Repository, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewRepository: creating client: %w", err)
	}

	r := &Repository{client: client, projectID: projectID, datasetID: datasetID}
	maxID, err := r.maxID(ctx)
	if err != nil {
		client.Close()
		return nil, err
	}
	r.nextID = maxID + 1
	return r, nil
}

// EnsureTable creates the transactions table if it does not exist yet.
func EnsureTable(ctx context.Context, projectID, datasetID string) error {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return fmt.Errorf("EnsureTable: creating client: %w", err)
	}
	defer client.Close()

	schema, err := bigquery.InferSchema(TransactionRow{})
	if err != nil {
		return fmt.Errorf("EnsureTable: inferring schema: %w", err)
	}

	table := client.DatasetInProject(projectID, datasetID).Table(transactionsTable)
	err = table.Create(ctx, &bigquery.TableMetadata{Schema: schema})
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusConflict {
		logger.FromContext(ctx).Info().Str("table", transactionsTable).Msg("Table already exists")
		return nil
	}
	if err != nil {
		return fmt.Errorf("EnsureTable: creating table: %w", err)
	}

	logger.FromContext(ctx).Info().Str("table", transactionsTable).Msg("Table created")
	return nil
}

// Insert implements ledger.Repository.
func (r *Repository) Insert(ctx context.Context, tx domain.Transaction) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx.ID = r.nextID
	inserter := r.client.DatasetInProject(r.projectID, r.datasetID).Table(transactionsTable).Inserter()
	if err := inserter.Put(ctx, []*TransactionRow{toRow(tx)}); err != nil {
		return 0, fmt.Errorf("Insert: inserting row: %w", err)
	}

	r.nextID++
	return tx.ID, nil
}

// List implements ledger.Repository.
func (r *Repository) List(ctx context.Context, filter domain.Filter) ([]domain.Transaction, error) {
	sql, params := buildListQuery(r.tableRef(), filter)
	q := r.client.Query(sql)
	q.Parameters = params

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("List: query read: %w", err)
	}

	txs := []domain.Transaction{}
	for {
		var row TransactionRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("List: iter next: %w", err)
		}
		tx, err := fromRow(&row)
		if err != nil {
			return nil, fmt.Errorf("List: converting row %d: %w", row.ID, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

type totalsRow struct {
	Income  *big.Rat `bigquery:"income"`
	Expense *big.Rat `bigquery:"expense"`
}

// Totals implements ledger.Repository.
func (r *Repository) Totals(ctx context.Context) (ledger.Totals, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT
			COALESCE(SUM(IF(transaction_type = 'income', amount, 0)), 0) AS income,
			COALESCE(SUM(IF(transaction_type = 'expense', amount, 0)), 0) AS expense
		FROM %s`, r.tableRef()))

	it, err := q.Read(ctx)
	if err != nil {
		return ledger.Totals{}, fmt.Errorf("Totals: query read: %w", err)
	}

	var row totalsRow
	if err := it.Next(&row); err != nil {
		return ledger.Totals{}, fmt.Errorf("Totals: iter next: %w", err)
	}

	income, err := ratToDecimal(row.Income)
	if err != nil {
		return ledger.Totals{}, fmt.Errorf("Totals: converting income: %w", err)
	}
	expense, err := ratToDecimal(row.Expense)
	if err != nil {
		return ledger.Totals{}, fmt.Errorf("Totals: converting expense: %w", err)
	}
	return ledger.Totals{Income: income, Expense: expense}, nil
}

// Close implements ledger.Repository.
func (r *Repository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

func (r *Repository) maxID(ctx context.Context) (int64, error) {
	q := r.client.Query(fmt.Sprintf("SELECT COALESCE(MAX(id), 0) AS max_id FROM %s", r.tableRef()))
	it, err := q.Read(ctx)
	if err != nil {
		return 0, fmt.Errorf("maxID: query read: %w", err)
	}

	var row struct {
		MaxID int64 `bigquery:"max_id"`
	}
	if err := it.Next(&row); err != nil {
		return 0, fmt.Errorf("maxID: iter next: %w", err)
	}
	return row.MaxID, nil
}

func (r *Repository) tableRef() string {
	return fmt.Sprintf("`%s.%s.%s`", r.projectID, r.datasetID, transactionsTable)
}

// buildListQuery renders the filtered SELECT with named parameters.
func buildListQuery(table string, filter domain.Filter) (string, []bigquery.QueryParameter) {
	var (
		clauses []string
		params  []bigquery.QueryParameter
	)
	if filter.Start != nil {
		clauses = append(clauses, "date >= @start_date")
		params = append(params, bigquery.QueryParameter{Name: "start_date", Value: *filter.Start})
	}
	if filter.End != nil {
		clauses = append(clauses, "date <= @end_date")
		params = append(params, bigquery.QueryParameter{Name: "end_date", Value: *filter.End})
	}
	if filter.Type != nil {
		clauses = append(clauses, "transaction_type = @transaction_type")
		params = append(params, bigquery.QueryParameter{Name: "transaction_type", Value: string(*filter.Type)})
	}
	if filter.Category != nil {
		clauses = append(clauses, "category = @category")
		params = append(params, bigquery.QueryParameter{Name: "category", Value: string(*filter.Category)})
	}

	sql := "SELECT id, amount, transaction_type, category, description, date FROM " + table
	if len(clauses) > 0 {
		sql += " WHERE " + strings.Join(clauses, " AND ")
	}
	sql += " ORDER BY id"
	return sql, params
}
