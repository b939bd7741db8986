package main

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/expense-tracker/internal/cli"
	"github.com/dvloznov/expense-tracker/internal/domain"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:     "add <amount> <type> <category> <description>",
	Short:   "Add a transaction",
	Example: `  expense-tracker add 50.00 expense food "Lunch at cafe"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLine(cmd, "add", args)
	},
}

var quickCmd = &cobra.Command{
	Use:   "quick <free text>",
	Short: "Add a transaction described in natural language",
	Example: `  expense-tracker quick Spent $25 on lunch today
  expense-tracker quick Received $1000 salary`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLine(cmd, "quick", args)
	},
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show the current balance",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLine(cmd, "balance", nil)
	},
}

var listFlags struct {
	from, to, txType, category string
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List transactions, optionally filtered",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := buildFilter()
		if err != nil {
			return err
		}
		txs, err := application.Store.List(cmd.Context(), filter)
		if err != nil {
			return err
		}
		cli.WriteTransactions(cmd.OutOrStdout(), txs)
		return nil
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Get insights about your spending",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLine(cmd, "analyze", nil)
	},
}

var askCmd = &cobra.Command{
	Use:     "ask <question>",
	Short:   "Ask a question about your finances",
	Example: `  expense-tracker ask How much did I spend on food last month?`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLine(cmd, "ask", args)
	},
}

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Get budget recommendations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLine(cmd, "budget", nil)
	},
}

var plotCmd = &cobra.Command{
	Use:     "plot <date_from> <date_to>",
	Short:   "Chart daily expenses between two dates",
	Example: `  expense-tracker plot 2025-01-01 2025-01-14`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLine(cmd, "plot", args)
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <path | gs://bucket/object>",
	Short: "Write a CSV snapshot of all transactions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLine(cmd, "export", args)
	},
}

func init() {
	listCmd.Flags().StringVar(&listFlags.from, "from", "", "first day to include (YYYY-MM-DD)")
	listCmd.Flags().StringVar(&listFlags.to, "to", "", "last day to include (YYYY-MM-DD)")
	listCmd.Flags().StringVar(&listFlags.txType, "type", "", "only expense or income")
	listCmd.Flags().StringVar(&listFlags.category, "category", "", "only this category")

	rootCmd.AddCommand(addCmd, quickCmd, balanceCmd, listCmd, analyzeCmd, askCmd, budgetCmd, plotCmd, exportCmd)
}

func buildFilter() (domain.Filter, error) {
	var filter domain.Filter
	if listFlags.from != "" {
		d, err := civil.ParseDate(listFlags.from)
		if err != nil {
			return filter, fmt.Errorf("invalid --from date %q, expected YYYY-MM-DD", listFlags.from)
		}
		start := d.In(time.Local)
		filter.Start = &start
	}
	if listFlags.to != "" {
		d, err := civil.ParseDate(listFlags.to)
		if err != nil {
			return filter, fmt.Errorf("invalid --to date %q, expected YYYY-MM-DD", listFlags.to)
		}
		end := d.AddDays(1).In(time.Local).Add(-time.Nanosecond)
		filter.End = &end
	}
	if listFlags.txType != "" {
		t, err := domain.ParseTransactionType(listFlags.txType)
		if err != nil {
			return filter, err
		}
		filter.Type = &t
	}
	if listFlags.category != "" {
		c, err := domain.ParseCategory(listFlags.category)
		if err != nil {
			return filter, err
		}
		filter.Category = &c
	}
	return filter, nil
}
