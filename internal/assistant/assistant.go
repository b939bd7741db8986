package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dvloznov/expense-tracker/internal/domain"
	"github.com/dvloznov/expense-tracker/internal/ledger"
	"github.com/dvloznov/expense-tracker/internal/logger"
	"github.com/shopspring/decimal"
)

// Mode selects what Summarize produces.
type Mode string

const (
	ModeInsights Mode = "insights"
	ModeBudget   Mode = "budget_recommendation"
	ModeQuestion Mode = "free_question"
)

const defaultTimeout = 60 * time.Second

// Query is a summarization request. Question is only used by ModeQuestion.
type Query struct {
	Mode     Mode
	Question string
}

// Assistant turns free text into transaction candidates and transaction
// history into prose, using a language model.
type Assistant struct {
	gen     Generator
	timeout time.Duration
	now     func() time.Time
	loc     *time.Location
}

// Option configures an Assistant.
type Option func(*Assistant)

// WithTimeout bounds every model call.
func WithTimeout(d time.Duration) Option {
	return func(a *Assistant) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithClock sets the clock used to date parsed candidates.
func WithClock(now func() time.Time) Option {
	return func(a *Assistant) {
		a.now = now
	}
}

// WithLocation sets the time zone used to group transactions by month.
func WithLocation(loc *time.Location) Option {
	return func(a *Assistant) {
		a.loc = loc
	}
}

// New creates an Assistant that calls gen.
func New(gen Generator, opts ...Option) *Assistant {
	a := &Assistant{
		gen:     gen,
		timeout: defaultTimeout,
		now:     time.Now,
		loc:     time.Local,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// candidate is the JSON object the parse prompt asks the model for.
type candidate struct {
	Type        *string     `json:"type"`
	Amount      json.Number `json:"amount"`
	Category    *string     `json:"category"`
	Description *string     `json:"description"`
}

// Parse asks the model to interpret text as a single transaction.
// The result is a candidate dated now; it is not stored.
// Every failure, including values outside the closed type and category
// sets, is returned as *domain.ParseFailure.
func (a *Assistant) Parse(ctx context.Context, text string) (domain.Transaction, error) {
	log := logger.FromContext(ctx)

	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Transaction{}, &domain.ParseFailure{Input: text, Reason: "empty input"}
	}

	raw, err := a.generate(ctx, buildParsePrompt(text))
	if err != nil {
		log.Warn().Err(err).Msg("Model call failed while parsing transaction")
		return domain.Transaction{}, &domain.ParseFailure{Input: text, Reason: "model call failed", Err: err}
	}

	tx, err := decodeCandidate(raw)
	if err != nil {
		log.Warn().Err(err).Str("raw_response", raw).Msg("Could not decode model response")
		return domain.Transaction{}, &domain.ParseFailure{Input: text, Reason: "unusable model response", Err: err}
	}
	tx.Date = a.now()

	log.Debug().
		Str("transaction_type", string(tx.Type)).
		Str("category", string(tx.Category)).
		Str("amount", tx.Amount.String()).
		Msg("Parsed transaction candidate")
	return tx, nil
}

func decodeCandidate(raw string) (domain.Transaction, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(cleanModelJSON(raw))))
	dec.UseNumber()

	var c candidate
	if err := dec.Decode(&c); err != nil {
		return domain.Transaction{}, fmt.Errorf("decodeCandidate: unmarshal JSON: %w", err)
	}

	if c.Type == nil {
		return domain.Transaction{}, fmt.Errorf("decodeCandidate: missing type")
	}
	if c.Amount == "" {
		return domain.Transaction{}, fmt.Errorf("decodeCandidate: missing amount")
	}
	if c.Category == nil {
		return domain.Transaction{}, fmt.Errorf("decodeCandidate: missing category")
	}
	if c.Description == nil {
		return domain.Transaction{}, fmt.Errorf("decodeCandidate: missing description")
	}

	typ, err := domain.ParseTransactionType(*c.Type)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("decodeCandidate: %w", err)
	}
	amount, err := domain.ParseAmount(c.Amount.String())
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("decodeCandidate: %w", err)
	}
	cat, err := domain.ParseCategory(*c.Category)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("decodeCandidate: %w", err)
	}

	return domain.Transaction{
		Amount:      amount,
		Type:        typ,
		Category:    cat,
		Description: strings.TrimSpace(*c.Description),
	}, nil
}

// Summarize produces free text about txs. It never fails: model errors are
// returned as a readable error message.
func (a *Assistant) Summarize(ctx context.Context, txs []domain.Transaction, q Query) string {
	var (
		prompt string
		label  string
	)

	switch q.Mode {
	case ModeInsights:
		label = "generating insights"
		prompt = buildInsightsPrompt(txs)
	case ModeBudget:
		label = "generating budget recommendations"
		summary, err := a.summaryJSON(txs)
		if err != nil {
			return a.failure(ctx, q.Mode, label, err)
		}
		prompt = buildBudgetPrompt(summary)
	case ModeQuestion:
		label = "answering question"
		if strings.TrimSpace(q.Question) == "" {
			return a.failure(ctx, q.Mode, label, fmt.Errorf("question is empty"))
		}
		summary, err := a.summaryJSON(txs)
		if err != nil {
			return a.failure(ctx, q.Mode, label, err)
		}
		prompt = buildQuestionPrompt(q.Question, summary)
	default:
		return a.failure(ctx, q.Mode, "summarizing", fmt.Errorf("unknown mode %q", q.Mode))
	}

	text, err := a.generate(ctx, prompt)
	if err != nil {
		return a.failure(ctx, q.Mode, label, err)
	}
	return strings.TrimSpace(text)
}

func (a *Assistant) failure(ctx context.Context, mode Mode, label string, err error) string {
	af := &domain.AssistantFailure{Mode: string(mode), Err: err}
	logger.FromContext(ctx).Warn().Err(af).Msg("Assistant summary failed")
	return fmt.Sprintf("Error %s: %v", label, err)
}

// monthJSON is the wire shape of one month in the summary prompts.
type monthJSON struct {
	Total      decimal.Decimal            `json:"total"`
	Categories map[string]decimal.Decimal `json:"categories"`
}

func (a *Assistant) summaryJSON(txs []domain.Transaction) (string, error) {
	months := ledger.SummarizeMonths(txs, a.loc)

	out := make(map[string]monthJSON, len(months))
	for _, m := range months {
		cats := make(map[string]decimal.Decimal, len(m.Categories))
		for c, v := range m.Categories {
			cats[string(c)] = v
		}
		out[m.Month] = monthJSON{Total: m.Total, Categories: cats}
	}

	data, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("summaryJSON: marshal: %w", err)
	}
	return string(data), nil
}

func (a *Assistant) generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	return a.gen.Generate(ctx, prompt)
}

// cleanModelJSON strips Markdown fences and any text around the JSON object.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}
