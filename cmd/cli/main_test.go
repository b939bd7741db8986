package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	assert.NotNil(t, rootCmd, "rootCmd should be defined")
	assert.Equal(t, "expense-tracker", rootCmd.Use)
	assert.Contains(t, rootCmd.Short, "income and expenses")
	assert.Contains(t, rootCmd.Long, "Expense Tracker")
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
}

func TestSubcommands(t *testing.T) {
	for _, name := range []string{"add", "quick", "balance", "list", "analyze", "ask", "budget", "plot", "export"} {
		t.Run(name, func(t *testing.T) {
			cmd, _, err := rootCmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, cmd.Name())
		})
	}
}

func TestBuildFilter(t *testing.T) {
	t.Cleanup(func() { listFlags.from, listFlags.to, listFlags.txType, listFlags.category = "", "", "", "" })

	listFlags.from, listFlags.to, listFlags.txType, listFlags.category = "2025-01-01", "2025-01-31", "Expense", "food"
	filter, err := buildFilter()
	require.NoError(t, err)
	require.NotNil(t, filter.Start)
	require.NotNil(t, filter.End)
	assert.Equal(t, 1, filter.Start.Day())
	assert.Equal(t, 31, filter.End.Day())
	assert.Equal(t, "expense", string(*filter.Type))
	assert.Equal(t, "food", string(*filter.Category))

	listFlags.from = "01/01/2025"
	_, err = buildFilter()
	assert.ErrorContains(t, err, "invalid --from date")

	listFlags.from, listFlags.category = "", "pets"
	_, err = buildFilter()
	assert.ErrorContains(t, err, "invalid category")
}
