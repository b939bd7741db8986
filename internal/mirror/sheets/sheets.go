package sheets

import (
	"context"
	"fmt"
	"os"

	"github.com/dvloznov/expense-tracker/internal/domain"
	"github.com/dvloznov/expense-tracker/internal/logger"
	"github.com/dvloznov/expense-tracker/internal/mirror"
	"github.com/shopspring/decimal"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

const (
	headerRange = "A1:G1"
	appendRange = "A:G"

	valueInputRaw     = "RAW"
	insertDataOptRows = "INSERT_ROWS"
)

// ValuesService is the subset of the Sheets values API the mirror needs.
// This interface enables testing without a live spreadsheet.
type ValuesService interface {
	// Update overwrites the cells of rng with values.
	Update(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) error

	// Append inserts values as new rows after the last row of rng.
	Append(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) error
}

// Mirror writes transactions as rows of a Google Sheets spreadsheet.
type Mirror struct {
	values        ValuesService
	spreadsheetID string
}

var _ mirror.Mirror = (*Mirror)(nil)

// New authenticates with the service account in credentialsFile and
// returns a mirror for spreadsheetID.
func New(ctx context.Context, spreadsheetID, credentialsFile string) (*Mirror, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("New: reading credentials file: %w", err)
	}

	creds, err := google.CredentialsFromJSON(ctx, data, gsheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("New: parsing credentials: %w", err)
	}

	srv, err := gsheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("New: creating sheets service: %w", err)
	}

	return NewWithService(&apiValues{svc: srv.Spreadsheets.Values}, spreadsheetID), nil
}

// NewWithService creates a mirror on top of an existing ValuesService.
func NewWithService(values ValuesService, spreadsheetID string) *Mirror {
	return &Mirror{values: values, spreadsheetID: spreadsheetID}
}

// EnsureSchema writes the header row. Rewriting it is harmless.
func (m *Mirror) EnsureSchema(ctx context.Context) error {
	if err := m.values.Update(ctx, m.spreadsheetID, headerRange, [][]interface{}{cells(mirror.Header)}); err != nil {
		return fmt.Errorf("EnsureSchema: writing header: %w", err)
	}
	logger.FromContext(ctx).Info().Str("spreadsheet_id", m.spreadsheetID).Msg("Spreadsheet header ready")
	return nil
}

// Mirror appends one row for tx.
func (m *Mirror) Mirror(ctx context.Context, tx domain.Transaction, balance decimal.Decimal) error {
	row := cells(mirror.Row(tx, balance))
	if err := m.values.Append(ctx, m.spreadsheetID, appendRange, [][]interface{}{row}); err != nil {
		return fmt.Errorf("Mirror: appending row: %w", err)
	}
	return nil
}

func cells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// apiValues adapts the generated Sheets client to ValuesService.
type apiValues struct {
	svc *gsheets.SpreadsheetsValuesService
}

func (a *apiValues) Update(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) error {
	_, err := a.svc.Update(spreadsheetID, rng, &gsheets.ValueRange{Values: values}).
		ValueInputOption(valueInputRaw).
		Context(ctx).
		Do()
	return err
}

func (a *apiValues) Append(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) error {
	_, err := a.svc.Append(spreadsheetID, rng, &gsheets.ValueRange{Values: values}).
		ValueInputOption(valueInputRaw).
		InsertDataOption(insertDataOptRows).
		Context(ctx).
		Do()
	return err
}
