package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dvloznov/expense-tracker/internal/domain"
	"github.com/dvloznov/expense-tracker/internal/logger"
	"github.com/shopspring/decimal"
)

// Store is the single authority over the transaction log.
// It validates, persists, computes the balance and notifies observers.
// Writes are serialized so the balance handed to notifiers reflects
// exactly the transactions stored up to and including the new one.
type Store struct {
	repo      Repository
	notifiers []Notifier
	now       func() time.Time
	loc       *time.Location

	mu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithNotifier registers n to be called after every successful Add.
func WithNotifier(n Notifier) Option {
	return func(s *Store) {
		if n != nil {
			s.notifiers = append(s.notifiers, n)
		}
	}
}

// WithClock replaces the wall clock used to date transactions without one.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithLocation sets the time zone used to bucket transactions into days and months.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		s.loc = loc
	}
}

// NewStore creates a store on top of repo.
func NewStore(repo Repository, opts ...Option) *Store {
	s := &Store{
		repo: repo,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add validates and persists tx and returns its new id.
// A zero Date is replaced with the current time. Nothing is written when
// validation fails. Notifier failures are logged and do not affect the result.
func (s *Store) Add(ctx context.Context, tx domain.Transaction) (int64, error) {
	log := logger.FromContext(ctx)

	if tx.ID != 0 {
		return 0, &domain.ValidationError{Field: "id", Value: fmt.Sprint(tx.ID), Reason: "already persisted"}
	}
	if tx.Date.IsZero() {
		tx.Date = s.now()
	}
	if err := tx.Validate(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.repo.Insert(ctx, tx)
	if err != nil {
		return 0, wrapStorage("insert", err)
	}
	tx.ID = id

	log.Info().
		Int64("transaction_id", id).
		Str("transaction_type", string(tx.Type)).
		Str("category", string(tx.Category)).
		Str("amount", tx.Amount.String()).
		Msg("Transaction stored")

	if len(s.notifiers) == 0 {
		return id, nil
	}

	totals, err := s.repo.Totals(ctx)
	if err != nil {
		log.Error().Err(err).Int64("transaction_id", id).Msg("Failed to compute balance for notification")
		return id, nil
	}
	balance := totals.Balance()

	for _, n := range s.notifiers {
		if err := n.TransactionAdded(ctx, tx, balance); err != nil {
			mf := &domain.MirrorFailure{TransactionID: id, Err: err}
			log.Warn().Err(mf).Int64("transaction_id", id).Msg("Notifier failed")
		}
	}

	return id, nil
}

// List returns the transactions matching filter in insertion order.
// The returned slice is owned by the caller.
func (s *Store) List(ctx context.Context, filter domain.Filter) ([]domain.Transaction, error) {
	txs, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, wrapStorage("list", err)
	}

	out := make([]domain.Transaction, len(txs))
	copy(out, txs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Balance returns total income minus total expense. An empty store has balance zero.
func (s *Store) Balance(ctx context.Context) (decimal.Decimal, error) {
	totals, err := s.repo.Totals(ctx)
	if err != nil {
		return decimal.Zero, wrapStorage("balance", err)
	}
	return totals.Balance(), nil
}

// Close releases the underlying repository.
func (s *Store) Close() error {
	if err := s.repo.Close(); err != nil {
		return wrapStorage("close", err)
	}
	return nil
}

func wrapStorage(op string, err error) error {
	var serr *domain.StorageError
	if errors.As(err, &serr) {
		return err
	}
	return &domain.StorageError{Op: op, Err: err}
}
