package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/expense-tracker/internal/assistant"
	"github.com/dvloznov/expense-tracker/internal/domain"
	"github.com/dvloznov/expense-tracker/internal/logger"
	"github.com/shopspring/decimal"
)

const (
	listDateLayout = "2006-01-02 15:04"
	plotBarWidth   = 50
)

func (s *Shell) add(ctx context.Context, arg string) {
	args := splitArgs(arg, 4)
	if len(args) != 4 {
		s.println("Usage: add <amount> <type> <category> <description>")
		s.println(`Example: add 50.00 expense food "Lunch at cafe"`)
		return
	}

	tx, err := parseManual(args)
	if err == nil {
		var id int64
		id, err = s.ledger.Add(ctx, tx)
		if err == nil {
			s.printf("Transaction added successfully with ID: %d\n", id)
			return
		}
	}

	s.printf("Error: %v\n", err)
	if errors.Is(err, domain.ErrValidation) {
		s.printf("\nAvailable categories: %s\n", strings.Join(categoryNames(), ", "))
		s.printf("Transaction types: %s\n", strings.Join(typeNames(), ", "))
	}
}

func parseManual(args []string) (domain.Transaction, error) {
	amount, err := domain.ParseAmount(args[0])
	if err != nil {
		return domain.Transaction{}, err
	}
	txType, err := domain.ParseTransactionType(args[1])
	if err != nil {
		return domain.Transaction{}, err
	}
	category, err := domain.ParseCategory(args[2])
	if err != nil {
		return domain.Transaction{}, err
	}
	return domain.Transaction{
		Amount:      amount,
		Type:        txType,
		Category:    category,
		Description: strings.Trim(args[3], `"`),
	}, nil
}

func (s *Shell) quick(ctx context.Context, arg string) {
	if arg == "" {
		s.println("Please provide a description of your transaction.")
		return
	}
	if !s.requireAssistant() {
		return
	}

	tx, err := s.assistant.Parse(ctx, arg)
	if err != nil {
		logger.FromContext(ctx).Debug().Err(err).Msg("Failed to parse transaction")
		s.println(err.Error())
		s.println("Please try again or use the 'add' command.")
		return
	}

	s.println("\nInterpreted as:")
	s.printf("Type: %s\n", tx.Type)
	s.printf("Amount: $%s\n", tx.Amount.StringFixed(2))
	s.printf("Category: %s\n", tx.Category)
	s.printf("Description: %s\n", tx.Description)
	s.printf("\nIs this correct? (y/n): ")

	answer, _ := s.readLine()
	if !strings.EqualFold(strings.TrimSpace(answer), "y") {
		s.println("Transaction cancelled")
		return
	}

	id, err := s.ledger.Add(ctx, tx)
	if err != nil {
		s.printf("Error: %v\n", err)
		return
	}
	s.printf("Transaction added successfully with ID: %d\n", id)
}

func (s *Shell) balance(ctx context.Context) {
	balance, err := s.ledger.Balance(ctx)
	if err != nil {
		s.printf("Error: %v\n", err)
		return
	}
	s.printf("Current balance: $%s\n", balance.StringFixed(2))
}

func (s *Shell) list(ctx context.Context) {
	txs, ok := s.allTransactions(ctx)
	if !ok {
		return
	}
	WriteTransactions(s.out, txs)
}

// WriteTransactions prints txs in the shell's list format.
func WriteTransactions(w io.Writer, txs []domain.Transaction) {
	if len(txs) == 0 {
		fmt.Fprintln(w, "No transactions found")
		return
	}

	fmt.Fprintln(w, "\nTransaction History:")
	fmt.Fprintln(w, rule)
	for _, tx := range txs {
		fmt.Fprintf(w, "ID: %d\n", tx.ID)
		fmt.Fprintf(w, "Date: %s\n", tx.Date.Local().Format(listDateLayout))
		fmt.Fprintf(w, "Type: %s\n", tx.Type)
		fmt.Fprintf(w, "Category: %s\n", tx.Category)
		fmt.Fprintf(w, "Amount: $%s\n", tx.Amount.StringFixed(2))
		fmt.Fprintf(w, "Description: %s\n", tx.Description)
		fmt.Fprintln(w, rule)
	}
}

func (s *Shell) analyze(ctx context.Context) {
	if !s.requireAssistant() {
		return
	}
	txs, ok := s.allTransactions(ctx)
	if !ok {
		return
	}
	if len(txs) == 0 {
		s.println("No transactions found to analyze.")
		return
	}
	s.framed("Financial Insights:", s.assistant.Summarize(ctx, txs, assistant.Query{Mode: assistant.ModeInsights}))
}

func (s *Shell) ask(ctx context.Context, question string) {
	if question == "" {
		s.println("Please ask a question about your finances.")
		return
	}
	if !s.requireAssistant() {
		return
	}
	txs, ok := s.allTransactions(ctx)
	if !ok {
		return
	}
	if len(txs) == 0 {
		s.println("No transaction data available.")
		return
	}
	s.framed("Answer:", s.assistant.Summarize(ctx, txs, assistant.Query{Mode: assistant.ModeQuestion, Question: question}))
}

func (s *Shell) budget(ctx context.Context) {
	if !s.requireAssistant() {
		return
	}
	txs, ok := s.allTransactions(ctx)
	if !ok {
		return
	}
	if len(txs) == 0 {
		s.println("No transaction history available for budget recommendations.")
		return
	}
	s.framed("Budget Recommendations:", s.assistant.Summarize(ctx, txs, assistant.Query{Mode: assistant.ModeBudget}))
}

func (s *Shell) plot(ctx context.Context, arg string) {
	fields := strings.Fields(arg)
	if len(fields) != 2 {
		s.println("Invalid input format. Please use 'plot <date_from> <date_to>' with format YYYY-MM-DD.")
		return
	}
	from, errFrom := civil.ParseDate(fields[0])
	to, errTo := civil.ParseDate(fields[1])
	if errFrom != nil || errTo != nil {
		s.println("Invalid input format. Please use 'plot <date_from> <date_to>' with format YYYY-MM-DD.")
		return
	}

	days, err := s.ledger.DailyExpenses(ctx, from, to)
	if err != nil {
		s.printf("Error: %v\n", err)
		return
	}
	if len(days) == 0 {
		s.println("No transactions found in this date range.")
		return
	}

	peak := decimal.Zero
	for _, d := range days {
		if d.Total.GreaterThan(peak) {
			peak = d.Total
		}
	}

	s.printf("\nDaily Expenses (%s to %s):\n", from, to)
	s.println(rule)
	for _, d := range days {
		s.printf("%s | %-*s $%s\n", d.Day, plotBarWidth, bar(d.Total, peak), d.Total.StringFixed(2))
	}
	s.println(rule)
}

// bar renders total as a run of '#' scaled so that peak fills plotBarWidth.
func bar(total, peak decimal.Decimal) string {
	if !peak.IsPositive() || !total.IsPositive() {
		return ""
	}
	n := total.Mul(decimal.NewFromInt(plotBarWidth)).Div(peak).Round(0).IntPart()
	if n < 1 {
		n = 1
	}
	return strings.Repeat("#", int(n))
}

func (s *Shell) export(ctx context.Context, dest string) {
	if dest == "" {
		s.println("Usage: export <file path | gs://bucket/object>")
		return
	}
	if s.exporter == nil {
		s.println("Export is not available.")
		return
	}
	txs, ok := s.allTransactions(ctx)
	if !ok {
		return
	}
	where, err := s.exporter.Export(ctx, txs, dest)
	if err != nil {
		s.printf("Error: %v\n", err)
		return
	}
	s.printf("Exported %d transactions to %s\n", len(txs), where)
}

func (s *Shell) allTransactions(ctx context.Context) ([]domain.Transaction, bool) {
	txs, err := s.ledger.List(ctx, domain.Filter{})
	if err != nil {
		s.printf("Error: %v\n", err)
		return nil, false
	}
	return txs, true
}

func (s *Shell) requireAssistant() bool {
	if s.assistant == nil {
		s.println("The assistant is not configured. Set EXPENSE_GEMINI_API_KEY to enable it.")
		return false
	}
	return true
}

func (s *Shell) framed(title, body string) {
	s.println("\n" + title)
	s.println(rule)
	s.println(body)
	s.println(rule)
}

func categoryNames() []string {
	var names []string
	for _, c := range domain.Categories() {
		names = append(names, string(c))
	}
	return names
}

func typeNames() []string {
	var names []string
	for _, t := range domain.TransactionTypes() {
		names = append(names, string(t))
	}
	return names
}
