package handlers

import (
	"context"
	"net/http"

	"github.com/dvloznov/expense-tracker/internal/api/middleware"
	"github.com/dvloznov/expense-tracker/internal/assistant"
	"github.com/dvloznov/expense-tracker/internal/domain"
	"github.com/dvloznov/expense-tracker/internal/logger"
	"github.com/gin-gonic/gin"
)

// Assistant parses free text and summarizes transaction history.
type Assistant interface {
	Parse(ctx context.Context, text string) (domain.Transaction, error)
	Summarize(ctx context.Context, txs []domain.Transaction, q assistant.Query) string
}

var _ Assistant = (*assistant.Assistant)(nil)

// AssistantHandler handles the natural-language endpoints.
type AssistantHandler struct {
	ledger    Ledger
	assistant Assistant
}

// NewAssistantHandler creates a new assistant handler. a may be nil, in which
// case every endpoint answers 503.
func NewAssistantHandler(l Ledger, a Assistant) *AssistantHandler {
	return &AssistantHandler{ledger: l, assistant: a}
}

type parseRequest struct {
	Text string `json:"text" binding:"required"`
}

type askRequest struct {
	Question string `json:"question" binding:"required"`
}

// ParseTransaction handles POST /api/transactions/parse. The candidate is
// returned for confirmation and not stored.
func (h *AssistantHandler) ParseTransaction(c *gin.Context) {
	if !h.available(c) {
		return
	}

	var req parseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.WriteError(c, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	tx, err := h.assistant.Parse(c.Request.Context(), req.Text)
	if err != nil {
		logger.FromContext(c.Request.Context()).Warn().Err(err).Msg("Failed to parse transaction text")
		writeDomainError(c, err, "Failed to parse transaction")
		return
	}

	c.JSON(http.StatusOK, gin.H{"candidate": tx})
}

// Insights handles POST /api/assistant/insights
func (h *AssistantHandler) Insights(c *gin.Context) {
	h.summarize(c, assistant.Query{Mode: assistant.ModeInsights}, "No transactions found to analyze.")
}

// Budget handles POST /api/assistant/budget
func (h *AssistantHandler) Budget(c *gin.Context) {
	h.summarize(c, assistant.Query{Mode: assistant.ModeBudget}, "No transaction history available for budget recommendations.")
}

// Ask handles POST /api/assistant/ask
func (h *AssistantHandler) Ask(c *gin.Context) {
	if !h.available(c) {
		return
	}

	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.WriteError(c, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}
	h.summarize(c, assistant.Query{Mode: assistant.ModeQuestion, Question: req.Question}, "No transaction data available.")
}

func (h *AssistantHandler) summarize(c *gin.Context, q assistant.Query, emptyText string) {
	if !h.available(c) {
		return
	}
	ctx := c.Request.Context()

	txs, err := h.ledger.List(ctx, domain.Filter{})
	if err != nil {
		logger.FromContext(ctx).Error().Err(err).Msg("Failed to list transactions")
		writeDomainError(c, err, "Failed to list transactions")
		return
	}
	if len(txs) == 0 {
		c.JSON(http.StatusOK, gin.H{"mode": q.Mode, "text": emptyText})
		return
	}

	c.JSON(http.StatusOK, gin.H{"mode": q.Mode, "text": h.assistant.Summarize(ctx, txs, q)})
}

func (h *AssistantHandler) available(c *gin.Context) bool {
	if h.assistant == nil {
		middleware.WriteError(c, http.StatusServiceUnavailable, "Assistant is not configured")
		return false
	}
	return true
}
