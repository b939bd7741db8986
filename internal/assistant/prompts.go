package assistant

import (
	"fmt"
	"strings"

	"github.com/dvloznov/expense-tracker/internal/domain"
)

// insightsWindow is how many of the most recent transactions the insights prompt shows.
const insightsWindow = 10

func buildParsePrompt(text string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Extract transaction details from: %q\n\n", text)
	b.WriteString("Return a JSON object with:\n")
	b.WriteString("- \"type\": either \"expense\" or \"income\"\n")
	b.WriteString("- \"amount\": a non-negative number\n")
	b.WriteString("- \"category\": one of " + quotedCategories() + "\n")
	b.WriteString("- \"description\": short summary\n\n")
	b.WriteString("Example:\n")
	b.WriteString("Input: \"Spent $50 on groceries at Walmart\"\n")
	b.WriteString("Output: {\"type\": \"expense\", \"amount\": 50, \"category\": \"food\", \"description\": \"Groceries at Walmart\"}\n\n")
	b.WriteString("Return ONLY valid raw JSON.\n")
	b.WriteString("Do NOT wrap the response in code fences.\n")
	return b.String()
}

func buildInsightsPrompt(txs []domain.Transaction) string {
	var b strings.Builder
	b.WriteString("Analyze these recent transactions and provide financial insights:\n")
	writeTransactionLines(&b, lastN(txs, insightsWindow))
	b.WriteString("\nProvide:\n")
	b.WriteString("1. Spending trends\n")
	b.WriteString("2. High expenditure areas\n")
	b.WriteString("3. Savings opportunities\n")
	b.WriteString("4. Budget recommendations\n\n")
	b.WriteString("Keep it clear and actionable.\n")
	return b.String()
}

func buildBudgetPrompt(summaryJSON string) string {
	var b strings.Builder
	b.WriteString("Based on this monthly spending summary, suggest a personal monthly budget.\n\n")
	b.WriteString("Spending summary (expenses per month and per category):\n")
	b.WriteString(summaryJSON + "\n\n")
	b.WriteString("Provide:\n")
	b.WriteString("1. A recommended monthly limit for each category\n")
	b.WriteString("2. Categories where spending should be reduced\n")
	b.WriteString("3. A realistic monthly savings target\n\n")
	b.WriteString("Keep it concise and specific to the data.\n")
	return b.String()
}

func buildQuestionPrompt(question, summaryJSON string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Answer this finance question: %q\n\n", question)
	b.WriteString("Transaction data:\n")
	b.WriteString(summaryJSON + "\n\n")
	b.WriteString("Provide a clear answer based on data.\n")
	return b.String()
}

func writeTransactionLines(b *strings.Builder, txs []domain.Transaction) {
	for _, tx := range txs {
		fmt.Fprintf(b, "- %s: %s $%s on %s", tx.Date.Format("2006-01-02"), tx.Type, tx.Amount.StringFixed(2), tx.Category)
		if tx.Description != "" {
			fmt.Fprintf(b, " (%s)", tx.Description)
		}
		b.WriteString("\n")
	}
}

func lastN(txs []domain.Transaction, n int) []domain.Transaction {
	if len(txs) <= n {
		return txs
	}
	return txs[len(txs)-n:]
}

func quotedCategories() string {
	cats := domain.Categories()
	quoted := make([]string, len(cats))
	for i, c := range cats {
		quoted[i] = fmt.Sprintf("%q", string(c))
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
