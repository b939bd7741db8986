package notion

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dvloznov/expense-tracker/internal/domain"
	"github.com/dvloznov/expense-tracker/internal/logger"
	"github.com/dvloznov/expense-tracker/internal/mirror"
	"github.com/jomei/notionapi"
	"github.com/shopspring/decimal"
)

// Mirror writes each transaction as a page of a Notion database whose
// properties are named after mirror.Header.
type Mirror struct {
	service    Service
	databaseID string
}

var _ mirror.Mirror = (*Mirror)(nil)

// New creates a Notion mirror for databaseID.
func New(service Service, databaseID string) *Mirror {
	return &Mirror{service: service, databaseID: databaseID}
}

// EnsureSchema checks that the database has a property for every header column.
// Notion databases are set up by hand, so missing columns are reported, not created.
func (m *Mirror) EnsureSchema(ctx context.Context) error {
	db, err := m.service.GetDatabase(ctx, m.databaseID)
	if err != nil {
		return fmt.Errorf("EnsureSchema: fetching database: %w", err)
	}

	var missing []string
	for _, name := range mirror.Header {
		if _, ok := db.Properties[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("EnsureSchema: database %s is missing properties: %s", m.databaseID, strings.Join(missing, ", "))
	}

	logger.FromContext(ctx).Info().Str("database_id", m.databaseID).Msg("Notion database schema ready")
	return nil
}

// Mirror creates a page for tx unless one with the same ID already exists.
func (m *Mirror) Mirror(ctx context.Context, tx domain.Transaction, balance decimal.Decimal) error {
	log := logger.FromContext(ctx)
	id := strconv.FormatInt(tx.ID, 10)

	existing, err := m.service.QueryDatabase(ctx, m.databaseID, &notionapi.DatabaseQueryRequest{
		Filter: &notionapi.PropertyFilter{
			Property: "ID",
			Title:    &notionapi.TextFilterCondition{Equals: id},
		},
		PageSize: 1,
	})
	if err != nil {
		return fmt.Errorf("Mirror: querying existing page: %w", err)
	}
	if existing != nil && len(existing.Results) > 0 {
		log.Info().
			Int64("transaction_id", tx.ID).
			Str("page_id", string(existing.Results[0].ID)).
			Msg("Notion page already exists, skipping")
		return nil
	}

	page, err := m.service.CreatePage(ctx, m.databaseID, TransactionToProperties(tx, balance))
	if err != nil {
		return fmt.Errorf("Mirror: creating page: %w", err)
	}

	log.Debug().
		Int64("transaction_id", tx.ID).
		Str("page_id", string(page.ID)).
		Msg("Created Notion page")
	return nil
}

// TransactionToProperties converts a transaction to Notion page properties.
// Amount and Balance are rich text so the exact decimal value survives.
func TransactionToProperties(tx domain.Transaction, balance decimal.Decimal) notionapi.Properties {
	date := notionapi.Date(tx.Date)

	props := notionapi.Properties{
		"ID": notionapi.TitleProperty{
			Title: richText(strconv.FormatInt(tx.ID, 10)),
		},
		"Date": notionapi.DateProperty{
			Date: &notionapi.DateObject{Start: &date},
		},
		"Type": notionapi.SelectProperty{
			Select: notionapi.Option{Name: string(tx.Type)},
		},
		"Category": notionapi.SelectProperty{
			Select: notionapi.Option{Name: string(tx.Category)},
		},
		"Amount": notionapi.RichTextProperty{
			RichText: richText(tx.Amount.String()),
		},
		"Balance": notionapi.RichTextProperty{
			RichText: richText(balance.String()),
		},
	}

	if tx.Description != "" {
		props["Description"] = notionapi.RichTextProperty{
			RichText: richText(tx.Description),
		}
	}

	return props
}

func richText(content string) []notionapi.RichText {
	return []notionapi.RichText{
		{
			Type: notionapi.ObjectTypeText,
			Text: &notionapi.Text{Content: content},
		},
	}
}
