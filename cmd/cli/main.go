package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dvloznov/expense-tracker/internal/app"
	"github.com/dvloznov/expense-tracker/internal/cli"
	"github.com/dvloznov/expense-tracker/internal/config"
	"github.com/dvloznov/expense-tracker/internal/logger"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

var (
	configPath  string
	application *app.App
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "expense-tracker",
	Short: "Track income and expenses from the command line",
	Long: `Expense Tracker records income and expense transactions, keeps a running
balance and can mirror every transaction to Google Sheets or Notion.
Free-text entry, spending insights and budget advice are available when a
Gemini API key is configured.

Run without a command to start the interactive shell.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
	RunE: func(cmd *cobra.Command, args []string) error {
		return newShell(cmd, cmd.InOrStdin()).Run(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a TOML or YAML config file")
}

// setup loads configuration and wires the application before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log := logger.NewWithOptions(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	ctx := logger.WithContext(cmd.Context(), log)

	application, err = app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	cmd.SetContext(ctx)
	return nil
}

// teardown flushes pending mirror rows and closes storage.
func teardown(cmd *cobra.Command, args []string) error {
	if application == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), shutdownTimeout)
	defer cancel()
	if err := application.Close(ctx); err != nil {
		logger.FromContext(ctx).Error().Err(err).Msg("Failed to shut down cleanly")
	}
	return nil
}

func newShell(cmd *cobra.Command, in io.Reader) *cli.Shell {
	opts := []cli.Option{cli.WithExporter(application.Exporter)}
	if application.Assistant != nil {
		opts = append(opts, cli.WithAssistant(application.Assistant))
	}
	return cli.New(application.Store, in, cmd.OutOrStdout(), opts...)
}

// runLine executes a single shell command built from name and args.
func runLine(cmd *cobra.Command, name string, args []string) error {
	line := strings.TrimSpace(name + " " + strings.Join(args, " "))
	newShell(cmd, cmd.InOrStdin()).Execute(cmd.Context(), line)
	return nil
}
