package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/expense-tracker/internal/api/middleware"
	"github.com/dvloznov/expense-tracker/internal/domain"
	"github.com/dvloznov/expense-tracker/internal/ledger"
	"github.com/dvloznov/expense-tracker/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// Ledger is the transaction store as seen by the HTTP handlers.
type Ledger interface {
	Add(ctx context.Context, tx domain.Transaction) (int64, error)
	List(ctx context.Context, filter domain.Filter) ([]domain.Transaction, error)
	Balance(ctx context.Context) (decimal.Decimal, error)
	DailyExpenses(ctx context.Context, from, to civil.Date) ([]ledger.DailyTotal, error)
	MonthlySummary(ctx context.Context) ([]ledger.MonthSummary, error)
}

var _ Ledger = (*ledger.Store)(nil)

// TransactionsHandler handles transaction and report endpoints.
type TransactionsHandler struct {
	ledger Ledger
	loc    *time.Location
}

// NewTransactionsHandler creates a new transactions handler. Query dates are
// interpreted in loc; nil means local time.
func NewTransactionsHandler(l Ledger, loc *time.Location) *TransactionsHandler {
	if loc == nil {
		loc = time.Local
	}
	return &TransactionsHandler{ledger: l, loc: loc}
}

type createTransactionRequest struct {
	Amount      *decimal.Decimal `json:"amount" binding:"required"`
	Type        string           `json:"transaction_type" binding:"required,transaction_type"`
	Category    string           `json:"category" binding:"required,category"`
	Description string           `json:"description"`
	Date        *time.Time       `json:"date"`
}

type listTransactionsQuery struct {
	Start    string `form:"start"`
	End      string `form:"end"`
	Type     string `form:"type" binding:"omitempty,transaction_type"`
	Category string `form:"category" binding:"omitempty,category"`
}

// ListTransactions handles GET /api/transactions
func (h *TransactionsHandler) ListTransactions(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.FromContext(ctx)

	var q listTransactionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.WriteError(c, http.StatusBadRequest, "Invalid query: "+err.Error())
		return
	}

	var filter domain.Filter
	if q.Start != "" {
		d, err := civil.ParseDate(q.Start)
		if err != nil {
			middleware.WriteError(c, http.StatusBadRequest, "Invalid start date, expected YYYY-MM-DD")
			return
		}
		start := d.In(h.loc)
		filter.Start = &start
	}
	if q.End != "" {
		d, err := civil.ParseDate(q.End)
		if err != nil {
			middleware.WriteError(c, http.StatusBadRequest, "Invalid end date, expected YYYY-MM-DD")
			return
		}
		end := d.AddDays(1).In(h.loc).Add(-time.Nanosecond)
		filter.End = &end
	}
	if q.Type != "" {
		t, _ := domain.ParseTransactionType(q.Type)
		filter.Type = &t
	}
	if q.Category != "" {
		cat, _ := domain.ParseCategory(q.Category)
		filter.Category = &cat
	}

	transactions, err := h.ledger.List(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list transactions")
		writeDomainError(c, err, "Failed to list transactions")
		return
	}
	if transactions == nil {
		transactions = []domain.Transaction{}
	}

	c.JSON(http.StatusOK, gin.H{
		"transactions": transactions,
		"count":        len(transactions),
	})
}

// CreateTransaction handles POST /api/transactions
func (h *TransactionsHandler) CreateTransaction(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.FromContext(ctx)

	var req createTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Failed to bind transaction request")
		middleware.WriteError(c, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	// Membership was checked during binding; parsing only normalizes case.
	txType, _ := domain.ParseTransactionType(req.Type)
	category, _ := domain.ParseCategory(req.Category)

	tx := domain.Transaction{
		Amount:      *req.Amount,
		Type:        txType,
		Category:    category,
		Description: req.Description,
	}
	if req.Date != nil {
		tx.Date = *req.Date
	}

	id, err := h.ledger.Add(ctx, tx)
	if err != nil {
		writeDomainError(c, err, "Failed to store transaction")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// GetBalance handles GET /api/balance
func (h *TransactionsHandler) GetBalance(c *gin.Context) {
	balance, err := h.ledger.Balance(c.Request.Context())
	if err != nil {
		logger.FromContext(c.Request.Context()).Error().Err(err).Msg("Failed to compute balance")
		writeDomainError(c, err, "Failed to compute balance")
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

// DailyReport handles GET /api/reports/daily?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *TransactionsHandler) DailyReport(c *gin.Context) {
	from, errFrom := civil.ParseDate(c.Query("from"))
	to, errTo := civil.ParseDate(c.Query("to"))
	if errFrom != nil || errTo != nil {
		middleware.WriteError(c, http.StatusBadRequest, "from and to are required, format YYYY-MM-DD")
		return
	}

	days, err := h.ledger.DailyExpenses(c.Request.Context(), from, to)
	if err != nil {
		logger.FromContext(c.Request.Context()).Error().Err(err).Msg("Failed to build daily report")
		writeDomainError(c, err, "Failed to build daily report")
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": days})
}

// MonthlyReport handles GET /api/reports/monthly
func (h *TransactionsHandler) MonthlyReport(c *gin.Context) {
	months, err := h.ledger.MonthlySummary(c.Request.Context())
	if err != nil {
		logger.FromContext(c.Request.Context()).Error().Err(err).Msg("Failed to build monthly report")
		writeDomainError(c, err, "Failed to build monthly report")
		return
	}
	if months == nil {
		months = []ledger.MonthSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"months": months})
}

// writeDomainError maps the domain error taxonomy onto HTTP statuses.
// Storage details are not exposed to the client.
func writeDomainError(c *gin.Context, err error, fallback string) {
	var parseErr *domain.ParseFailure
	switch {
	case errors.Is(err, domain.ErrValidation):
		middleware.WriteError(c, http.StatusBadRequest, err.Error())
	case errors.As(err, &parseErr):
		middleware.WriteError(c, http.StatusUnprocessableEntity, err.Error())
	default:
		middleware.WriteError(c, http.StatusInternalServerError, fallback)
	}
}
