package mirror

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dvloznov/expense-tracker/internal/domain"
	"github.com/dvloznov/expense-tracker/internal/ledger"
	"github.com/dvloznov/expense-tracker/internal/logger"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ErrDispatcherClosed is returned when a transaction is handed to a closed Dispatcher.
var ErrDispatcherClosed = errors.New("mirror dispatcher is closed")

const (
	defaultQueueSize = 64
	defaultTimeout   = 15 * time.Second
)

type mirrorJob struct {
	tx      domain.Transaction
	balance decimal.Decimal
	log     zerolog.Logger
}

// Dispatcher feeds stored transactions to a Mirror from a single background
// worker, so rows reach the destination in the order they were stored.
// Failed jobs are logged and dropped.
type Dispatcher struct {
	mirror  Mirror
	timeout time.Duration

	jobChan chan mirrorJob
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
}

// DispatcherOptions tunes a Dispatcher. Zero values pick defaults.
type DispatcherOptions struct {
	// QueueSize is how many rows can wait before TransactionAdded blocks.
	QueueSize int
	// Timeout bounds each individual Mirror call.
	Timeout time.Duration
}

// NewDispatcher creates a dispatcher for m and starts its worker.
func NewDispatcher(m Mirror, opts DispatcherOptions) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	d := &Dispatcher{
		mirror:  m,
		timeout: opts.Timeout,
		jobChan: make(chan mirrorJob, opts.QueueSize),
	}
	d.wg.Add(1)
	go d.worker()
	return d
}

// TransactionAdded implements ledger.Notifier. It only enqueues the row;
// the outcome of the mirror call is logged by the worker.
func (d *Dispatcher) TransactionAdded(ctx context.Context, tx domain.Transaction, balance decimal.Decimal) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrDispatcherClosed
	}

	job := mirrorJob{tx: tx, balance: balance, log: logger.FromContext(ctx)}
	select {
	case d.jobChan <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()

	for job := range d.jobChan {
		d.process(job)
	}
}

// process runs one mirror call. It is detached from the caller's context
// because the write that produced the job may have returned long ago.
func (d *Dispatcher) process(job mirrorJob) {
	ctx, cancel := context.WithTimeout(logger.WithContext(context.Background(), job.log), d.timeout)
	defer cancel()

	if err := d.mirror.Mirror(ctx, job.tx, job.balance); err != nil {
		mf := &domain.MirrorFailure{TransactionID: job.tx.ID, Err: err}
		job.log.Error().Err(mf).Int64("transaction_id", job.tx.ID).Msg("Failed to mirror transaction")
		return
	}
	job.log.Debug().Int64("transaction_id", job.tx.ID).Msg("Mirrored transaction")
}

// Close stops accepting rows and waits until the queued ones are processed
// or ctx is done.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.jobChan)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ ledger.Notifier = (*Dispatcher)(nil)
