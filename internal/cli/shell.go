// Package cli implements the interactive expense-tracker shell.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/expense-tracker/internal/assistant"
	"github.com/dvloznov/expense-tracker/internal/domain"
	"github.com/dvloznov/expense-tracker/internal/ledger"
	"github.com/shopspring/decimal"
)

// Prompt is printed before every command read by Run.
const Prompt = "(expense-tracker) "

// Intro is printed once when Run starts.
const Intro = `
Welcome to the Smart Expense Tracker!
Available commands:
    add      - Add transaction manually
    quick    - Add transaction using natural language
    balance  - Show current balance
    list     - List all transactions
    analyze  - Get spending insights
    ask      - Ask questions about your finances
    budget   - Get budget recommendations
    plot     - Chart daily expenses between two dates
    export   - Save a CSV snapshot of all transactions
    help     - Show this help message
    quit     - Exit the program
`

var rule = strings.Repeat("-", 80)

// Ledger is the part of the transaction store the shell uses.
type Ledger interface {
	Add(ctx context.Context, tx domain.Transaction) (int64, error)
	List(ctx context.Context, filter domain.Filter) ([]domain.Transaction, error)
	Balance(ctx context.Context) (decimal.Decimal, error)
	DailyExpenses(ctx context.Context, from, to civil.Date) ([]ledger.DailyTotal, error)
}

// Assistant parses free text and summarizes transaction history.
type Assistant interface {
	Parse(ctx context.Context, text string) (domain.Transaction, error)
	Summarize(ctx context.Context, txs []domain.Transaction, q assistant.Query) string
}

// Exporter writes a snapshot of the transaction log to dest.
type Exporter interface {
	Export(ctx context.Context, txs []domain.Transaction, dest string) (string, error)
}

var (
	_ Ledger    = (*ledger.Store)(nil)
	_ Assistant = (*assistant.Assistant)(nil)
)

// Shell reads commands line by line and writes results to out.
type Shell struct {
	ledger    Ledger
	assistant Assistant
	exporter  Exporter

	in  *bufio.Reader
	out io.Writer
}

// Option configures a Shell.
type Option func(*Shell)

// WithAssistant enables the quick, analyze, ask and budget commands.
func WithAssistant(a Assistant) Option {
	return func(s *Shell) {
		s.assistant = a
	}
}

// WithExporter enables the export command.
func WithExporter(e Exporter) Option {
	return func(s *Shell) {
		s.exporter = e
	}
}

// New creates a shell over l reading from in and writing to out.
func New(l Ledger, in io.Reader, out io.Writer, opts ...Option) *Shell {
	s := &Shell{
		ledger: l,
		in:     bufio.NewReader(in),
		out:    out,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run prints the intro and executes commands until quit, end of input or
// cancellation of ctx.
func (s *Shell) Run(ctx context.Context) error {
	fmt.Fprint(s.out, Intro)
	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(s.out, Prompt)

		line, err := s.readLine()
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("Run: reading input: %w", err)
		}
		if errors.Is(err, io.EOF) && line == "" {
			fmt.Fprintln(s.out)
			return nil
		}
		if s.Execute(ctx, line) {
			return nil
		}
	}
}

// Execute runs a single command line and reports whether the shell should exit.
func (s *Shell) Execute(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	name, arg := splitCommand(line)
	switch strings.ToLower(name) {
	case "add":
		s.add(ctx, arg)
	case "quick":
		s.quick(ctx, arg)
	case "balance":
		s.balance(ctx)
	case "list":
		s.list(ctx)
	case "analyze":
		s.analyze(ctx)
	case "ask":
		s.ask(ctx, arg)
	case "budget":
		s.budget(ctx)
	case "plot":
		s.plot(ctx, arg)
	case "export":
		s.export(ctx, arg)
	case "help", "?":
		fmt.Fprint(s.out, Intro)
	case "quit", "exit", "eof":
		fmt.Fprintln(s.out, "Thank you for using Expense Tracker!")
		return true
	default:
		fmt.Fprintf(s.out, "Unknown command: %s\n", line)
		fmt.Fprintln(s.out, "Type 'help' for available commands.")
	}
	return false
}

func (s *Shell) readLine() (string, error) {
	line, err := s.in.ReadString('\n')
	return strings.TrimRight(line, "\r\n"), err
}

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *Shell) println(args ...any) {
	fmt.Fprintln(s.out, args...)
}

// splitCommand separates the command word from the rest of the line.
func splitCommand(line string) (string, string) {
	idx := strings.IndexFunc(line, unicode.IsSpace)
	if idx < 0 {
		return line, ""
	}
	return line[:idx], strings.TrimSpace(line[idx:])
}

// splitArgs splits s on whitespace into at most n fields; the last field
// keeps its inner whitespace.
func splitArgs(s string, n int) []string {
	var fields []string
	for len(fields) < n-1 {
		s = strings.TrimLeftFunc(s, unicode.IsSpace)
		if s == "" {
			return fields
		}
		idx := strings.IndexFunc(s, unicode.IsSpace)
		if idx < 0 {
			return append(fields, s)
		}
		fields = append(fields, s[:idx])
		s = s[idx:]
	}
	if rest := strings.TrimSpace(s); rest != "" {
		fields = append(fields, rest)
	}
	return fields
}
