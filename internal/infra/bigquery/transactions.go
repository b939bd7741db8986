package bigquery

import (
	"math/big"
	"time"

	"github.com/dvloznov/expense-tracker/internal/domain"
	"github.com/shopspring/decimal"
)

// TransactionRow mirrors one row of the transactions table.
type TransactionRow struct {
	ID              int64     `bigquery:"id"`               // REQUIRED
	Amount          *big.Rat  `bigquery:"amount"`           // REQUIRED NUMERIC
	TransactionType string    `bigquery:"transaction_type"` // REQUIRED: expense | income
	Category        string    `bigquery:"category"`         // REQUIRED
	Description     string    `bigquery:"description"`      // REQUIRED, may be empty
	Date            time.Time `bigquery:"date"`             // REQUIRED TIMESTAMP
}

// numericScale is the number of fractional digits a BigQuery NUMERIC holds.
const numericScale = 9

func toRow(tx domain.Transaction) *TransactionRow {
	return &TransactionRow{
		ID:              tx.ID,
		Amount:          tx.Amount.Rat(),
		TransactionType: string(tx.Type),
		Category:        string(tx.Category),
		Description:     tx.Description,
		Date:            tx.Date,
	}
}

func fromRow(r *TransactionRow) (domain.Transaction, error) {
	amount, err := ratToDecimal(r.Amount)
	if err != nil {
		return domain.Transaction{}, err
	}
	return domain.Transaction{
		ID:          r.ID,
		Amount:      amount,
		Type:        domain.TransactionType(r.TransactionType),
		Category:    domain.Category(r.Category),
		Description: r.Description,
		Date:        r.Date,
	}, nil
}

// ratToDecimal converts a NUMERIC value to a decimal without going through float64.
func ratToDecimal(r *big.Rat) (decimal.Decimal, error) {
	if r == nil {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(r.FloatString(numericScale))
}
