package sheets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dvloznov/expense-tracker/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockValues struct {
	mock.Mock
}

func (m *mockValues) Update(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) error {
	args := m.Called(ctx, spreadsheetID, rng, values)
	return args.Error(0)
}

func (m *mockValues) Append(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) error {
	args := m.Called(ctx, spreadsheetID, rng, values)
	return args.Error(0)
}

func TestMirror_EnsureSchemaWritesHeader(t *testing.T) {
	values := new(mockValues)
	header := [][]interface{}{{"ID", "Date", "Type", "Category", "Amount", "Description", "Balance"}}
	values.On("Update", mock.Anything, "sheet-1", "A1:G1", header).Return(nil).Twice()

	m := NewWithService(values, "sheet-1")
	require.NoError(t, m.EnsureSchema(context.Background()))
	require.NoError(t, m.EnsureSchema(context.Background()))

	values.AssertExpectations(t)
}

func TestMirror_AppendsRow(t *testing.T) {
	values := new(mockValues)
	want := [][]interface{}{{"3", "2025-01-14 18:30", "income", "salary", "1000", "pay", "1250.75"}}
	values.On("Append", mock.Anything, "sheet-1", "A:G", want).Return(nil).Once()

	m := NewWithService(values, "sheet-1")
	err := m.Mirror(context.Background(), domain.Transaction{
		ID:          3,
		Amount:      decimal.RequireFromString("1000.00"),
		Type:        domain.TransactionTypeIncome,
		Category:    domain.CategorySalary,
		Description: "pay",
		Date:        time.Date(2025, 1, 14, 18, 30, 0, 0, time.UTC),
	}, decimal.RequireFromString("1250.75"))

	require.NoError(t, err)
	values.AssertExpectations(t)
}

func TestMirror_PropagatesErrors(t *testing.T) {
	cause := errors.New("403 forbidden")
	values := new(mockValues)
	values.On("Append", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(cause)
	values.On("Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(cause)

	m := NewWithService(values, "sheet-1")
	assert.ErrorIs(t, m.Mirror(context.Background(), domain.Transaction{ID: 1}, decimal.Zero), cause)
	assert.ErrorIs(t, m.EnsureSchema(context.Background()), cause)
}

func TestNew_MissingCredentialsFile(t *testing.T) {
	_, err := New(context.Background(), "sheet-1", "/nonexistent/credentials.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading credentials file")
}
