package backup

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dvloznov/expense-tracker/internal/domain"
	"github.com/shopspring/decimal"
)

// csvHeader lists the snapshot columns. Balance is the running balance after each row.
var csvHeader = []string{"id", "date", "transaction_type", "category", "amount", "description", "balance"}

// WriteCSV writes txs in the given order as CSV with a header row.
// Dates are RFC 3339 and amounts exact decimal strings, so the file can be
// loaded back without loss.
func WriteCSV(w io.Writer, txs []domain.Transaction) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("WriteCSV: writing header: %w", err)
	}

	balance := decimal.Zero
	for _, tx := range txs {
		balance = balance.Add(tx.SignedAmount())
		record := []string{
			strconv.FormatInt(tx.ID, 10),
			tx.Date.Format(time.RFC3339),
			string(tx.Type),
			string(tx.Category),
			tx.Amount.String(),
			tx.Description,
			balance.String(),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("WriteCSV: writing transaction %d: %w", tx.ID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("WriteCSV: flushing: %w", err)
	}
	return nil
}
