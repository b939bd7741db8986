package app

import (
	"context"
	"testing"
	"time"

	"github.com/dvloznov/expense-tracker/internal/config"
	"github.com/dvloznov/expense-tracker/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Storage: config.StorageConfig{Driver: config.DriverMemory},
		Mirror:  config.MirrorConfig{Target: config.MirrorNone, Timeout: time.Second},
	}
}

func TestNew_MemoryWithoutAssistant(t *testing.T) {
	ctx := context.Background()

	a, err := New(ctx, memoryConfig())
	require.NoError(t, err)
	assert.Nil(t, a.Assistant)
	assert.NotNil(t, a.Exporter)

	id, err := a.Store.Add(ctx, domain.Transaction{
		Amount:   decimal.RequireFromString("12.00"),
		Type:     domain.TransactionTypeIncome,
		Category: domain.CategorySalary,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	balance, err := a.Store.Balance(ctx)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("12").Equal(balance))

	require.NoError(t, a.Close(ctx))
}

func TestNew_WithAssistant(t *testing.T) {
	cfg := memoryConfig()
	cfg.Gemini = config.GeminiConfig{APIKey: "test-key", Model: "gemini-2.5-flash", Timeout: time.Second}

	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.NotNil(t, a.Assistant)
	require.NoError(t, a.Close(context.Background()))
}

func TestNew_SheetsMirrorMissingCredentials(t *testing.T) {
	cfg := memoryConfig()
	cfg.Mirror.Target = config.MirrorSheets
	cfg.Sheets = config.SheetsConfig{SpreadsheetID: "sheet", CredentialsFile: t.TempDir() + "/missing.json"}

	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}

func TestOpenRepository_UnknownDriver(t *testing.T) {
	_, err := OpenRepository(context.Background(), config.StorageConfig{Driver: "sqlite"})
	assert.ErrorContains(t, err, `unknown storage driver "sqlite"`)
}
