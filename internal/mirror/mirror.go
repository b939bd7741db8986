package mirror

import (
	"context"
	"strconv"

	"github.com/dvloznov/expense-tracker/internal/domain"
	"github.com/shopspring/decimal"
)

// DateLayout is how transaction dates are rendered in mirrored rows.
const DateLayout = "2006-01-02 15:04"

// Header is the first row of a mirrored sheet.
var Header = []string{"ID", "Date", "Type", "Category", "Amount", "Description", "Balance"}

// Mirror replicates stored transactions to an external destination.
// Implementations must tolerate EnsureSchema being called repeatedly.
type Mirror interface {
	// EnsureSchema makes sure the destination carries the expected header or columns.
	EnsureSchema(ctx context.Context) error

	// Mirror appends one transaction together with the balance after it.
	Mirror(ctx context.Context, tx domain.Transaction, balance decimal.Decimal) error
}

// Row renders tx as the cell values of one mirrored row, in Header order.
// Amounts are written as exact decimal strings.
func Row(tx domain.Transaction, balance decimal.Decimal) []string {
	return []string{
		strconv.FormatInt(tx.ID, 10),
		tx.Date.Format(DateLayout),
		string(tx.Type),
		string(tx.Category),
		tx.Amount.String(),
		tx.Description,
		balance.String(),
	}
}
