package notion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dvloznov/expense-tracker/internal/domain"
	"github.com/jomei/notionapi"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockService is a hand-written mock of Service.
type mockService struct {
	GetDatabaseFunc   func(ctx context.Context, databaseID string) (*notionapi.Database, error)
	CreatePageFunc    func(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error)
	QueryDatabaseFunc func(ctx context.Context, databaseID string, query *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)

	created []notionapi.Properties
}

func (m *mockService) GetDatabase(ctx context.Context, databaseID string) (*notionapi.Database, error) {
	return m.GetDatabaseFunc(ctx, databaseID)
}

func (m *mockService) CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error) {
	m.created = append(m.created, properties)
	if m.CreatePageFunc != nil {
		return m.CreatePageFunc(ctx, databaseID, properties)
	}
	return &notionapi.Page{ID: "page-1"}, nil
}

func (m *mockService) QueryDatabase(ctx context.Context, databaseID string, query *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	if m.QueryDatabaseFunc != nil {
		return m.QueryDatabaseFunc(ctx, databaseID, query)
	}
	return &notionapi.DatabaseQueryResponse{}, nil
}

func sampleTx() domain.Transaction {
	return domain.Transaction{
		ID:          5,
		Amount:      decimal.RequireFromString("42.10"),
		Type:        domain.TransactionTypeExpense,
		Category:    domain.CategoryEntertainment,
		Description: "cinema",
		Date:        time.Date(2025, 1, 14, 20, 0, 0, 0, time.UTC),
	}
}

func TestTransactionToProperties(t *testing.T) {
	props := TransactionToProperties(sampleTx(), decimal.RequireFromString("100.5"))

	title, ok := props["ID"].(notionapi.TitleProperty)
	require.True(t, ok)
	assert.Equal(t, "5", title.Title[0].Text.Content)

	amount, ok := props["Amount"].(notionapi.RichTextProperty)
	require.True(t, ok)
	assert.Equal(t, "42.1", amount.RichText[0].Text.Content)

	balance, ok := props["Balance"].(notionapi.RichTextProperty)
	require.True(t, ok)
	assert.Equal(t, "100.5", balance.RichText[0].Text.Content)

	category, ok := props["Category"].(notionapi.SelectProperty)
	require.True(t, ok)
	assert.Equal(t, "entertainment", category.Select.Name)

	date, ok := props["Date"].(notionapi.DateProperty)
	require.True(t, ok)
	assert.True(t, time.Time(*date.Date.Start).Equal(sampleTx().Date))

	noDesc := sampleTx()
	noDesc.Description = ""
	_, ok = TransactionToProperties(noDesc, decimal.Zero)["Description"]
	assert.False(t, ok)
}

func TestMirror_CreatesPage(t *testing.T) {
	svc := &mockService{}
	m := New(svc, "db-1")

	require.NoError(t, m.Mirror(context.Background(), sampleTx(), decimal.NewFromInt(10)))
	assert.Len(t, svc.created, 1)
}

func TestMirror_SkipsExistingPage(t *testing.T) {
	var gotQuery *notionapi.DatabaseQueryRequest
	svc := &mockService{
		QueryDatabaseFunc: func(ctx context.Context, databaseID string, query *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
			gotQuery = query
			return &notionapi.DatabaseQueryResponse{Results: []notionapi.Page{{ID: "existing"}}}, nil
		},
	}
	m := New(svc, "db-1")

	require.NoError(t, m.Mirror(context.Background(), sampleTx(), decimal.Zero))
	assert.Empty(t, svc.created)

	require.NotNil(t, gotQuery)
	filter, ok := gotQuery.Filter.(*notionapi.PropertyFilter)
	require.True(t, ok)
	assert.Equal(t, "ID", filter.Property)
	assert.Equal(t, "5", filter.Title.Equals)
}

func TestMirror_CreateError(t *testing.T) {
	cause := errors.New("rate limited")
	svc := &mockService{
		CreatePageFunc: func(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error) {
			return nil, cause
		},
	}

	err := New(svc, "db-1").Mirror(context.Background(), sampleTx(), decimal.Zero)
	assert.ErrorIs(t, err, cause)
}

func TestMirror_EnsureSchema(t *testing.T) {
	full := notionapi.PropertyConfigs{}
	for _, name := range []string{"ID", "Date", "Type", "Category", "Amount", "Description", "Balance"} {
		full[name] = &notionapi.RichTextPropertyConfig{}
	}

	tests := []struct {
		name    string
		props   notionapi.PropertyConfigs
		wantErr string
	}{
		{name: "all present", props: full},
		{name: "missing columns", props: notionapi.PropertyConfigs{"ID": &notionapi.TitlePropertyConfig{}}, wantErr: "Amount, Balance, Category, Date, Description, Type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{
				GetDatabaseFunc: func(ctx context.Context, databaseID string) (*notionapi.Database, error) {
					return &notionapi.Database{Properties: tt.props}, nil
				},
			}
			err := New(svc, "db-1").EnsureSchema(context.Background())
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
