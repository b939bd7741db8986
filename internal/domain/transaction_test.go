package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTransactionType(t *testing.T) {
	tests := []struct {
		in      string
		want    TransactionType
		wantErr bool
	}{
		{in: "expense", want: TransactionTypeExpense},
		{in: " Income ", want: TransactionTypeIncome},
		{in: "EXPENSE", want: TransactionTypeExpense},
		{in: "refund", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTransactionType(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrValidation))
				var verr *ValidationError
				require.True(t, errors.As(err, &verr))
				assert.Equal(t, "transaction_type", verr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCategory(t *testing.T) {
	for _, c := range Categories() {
		got, err := ParseCategory("  " + string(c) + "\n")
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	_, err := ParseCategory("groceries")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "food, transportation")
}

func TestCategoriesReturnsCopy(t *testing.T) {
	cs := Categories()
	cs[0] = "mutated"
	assert.Equal(t, CategoryFood, Categories()[0])
	assert.Len(t, Categories(), 8)
	assert.Equal(t, []TransactionType{TransactionTypeExpense, TransactionTypeIncome}, TransactionTypes())
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "15.50", want: "15.5"},
		{in: " 0 ", want: "0"},
		{in: "0.1", want: "0.1"},
		{in: "-3", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestTransactionValidate(t *testing.T) {
	valid := Transaction{
		Amount:   decimal.RequireFromString("12.00"),
		Type:     TransactionTypeExpense,
		Category: CategoryFood,
	}
	require.NoError(t, valid.Validate())

	negative := valid
	negative.Amount = decimal.NewFromInt(-1)
	assert.ErrorIs(t, negative.Validate(), ErrValidation)

	badType := valid
	badType.Type = "transfer"
	assert.ErrorIs(t, badType.Validate(), ErrValidation)

	badCategory := valid
	badCategory.Category = "rent"
	err := badCategory.Validate()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "category", verr.Field)
	assert.Equal(t, "rent", verr.Value)
}

func TestSignedAmount(t *testing.T) {
	tx := Transaction{Amount: decimal.RequireFromString("2.50"), Type: TransactionTypeExpense}
	assert.True(t, tx.SignedAmount().Equal(decimal.RequireFromString("-2.5")))

	tx.Type = TransactionTypeIncome
	assert.True(t, tx.SignedAmount().Equal(decimal.RequireFromString("2.5")))
}

func TestFilterMatches(t *testing.T) {
	day := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	tx := Transaction{Type: TransactionTypeExpense, Category: CategoryFood, Date: day}

	before := day.Add(-time.Hour)
	after := day.Add(time.Hour)
	expense := TransactionTypeExpense
	income := TransactionTypeIncome
	food := CategoryFood
	other := CategoryOther

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{name: "empty filter", filter: Filter{}, want: true},
		{name: "inside range", filter: Filter{Start: &before, End: &after}, want: true},
		{name: "inclusive bounds", filter: Filter{Start: &day, End: &day}, want: true},
		{name: "before start", filter: Filter{Start: &after}, want: false},
		{name: "after end", filter: Filter{End: &before}, want: false},
		{name: "start after end", filter: Filter{Start: &after, End: &before}, want: false},
		{name: "type match", filter: Filter{Type: &expense}, want: true},
		{name: "type mismatch", filter: Filter{Type: &income}, want: false},
		{name: "category match", filter: Filter{Category: &food}, want: true},
		{name: "category mismatch", filter: Filter{Category: &other}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(tx))
		})
	}
}

func TestErrorsUnwrap(t *testing.T) {
	cause := errors.New("connection refused")

	serr := &StorageError{Op: "insert", Err: cause}
	assert.ErrorIs(t, serr, ErrStorage)
	assert.ErrorIs(t, serr, cause)
	assert.Equal(t, "storage: insert: connection refused", serr.Error())

	perr := &ParseFailure{Input: "x", Reason: "model call failed", Err: cause}
	assert.ErrorIs(t, perr, cause)
	assert.Contains(t, perr.Error(), "could not interpret input")

	mf := &MirrorFailure{TransactionID: 3, Err: cause}
	assert.ErrorIs(t, mf, cause)
	assert.Equal(t, "mirror transaction 3: connection refused", mf.Error())

	af := &AssistantFailure{Mode: "insights", Err: cause}
	assert.ErrorIs(t, af, cause)
}
