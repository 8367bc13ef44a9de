// Package anchor runs best-effort hash anchoring as an explicit background
// job, decoupled from the request path. A failed anchor leaves the
// verification record without a ledger reference; it never fails the
// submission that produced it.
package anchor

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/yourorg/attendzk/pkg/ledger"
)

// RefSink receives the ledger transaction reference once a hash is anchored.
type RefSink interface {
	AttachLedgerTxRef(zkID, txRef string) error
}

type job struct {
	zkID string
	hash [ledger.HashSize]byte
}

type Worker struct {
	ledger  ledger.HashLedger
	records RefSink
	log     zerolog.Logger

	attempts int
	timeout  time.Duration
	backoff  time.Duration

	jobs chan job
	wg   sync.WaitGroup
	once sync.Once
}

type Option func(*Worker)

// WithRetry overrides attempt count and initial backoff (doubles per retry).
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(w *Worker) {
		w.attempts = attempts
		w.backoff = backoff
	}
}

// WithTimeout sets the per-attempt ledger call timeout.
func WithTimeout(d time.Duration) Option {
	return func(w *Worker) { w.timeout = d }
}

func NewWorker(hl ledger.HashLedger, records RefSink, log zerolog.Logger, opts ...Option) *Worker {
	w := &Worker{
		ledger:   hl,
		records:  records,
		log:      log.With().Str("component", "anchor").Logger(),
		attempts: 3,
		timeout:  5 * time.Second,
		backoff:  500 * time.Millisecond,
		jobs:     make(chan job, 64),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Worker) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for j := range w.jobs {
			w.anchor(j)
		}
	}()
}

// Enqueue hands a hash to the worker. Never blocks the caller: if the queue
// is full the job is dropped with a log line, consistent with anchoring
// being best-effort.
func (w *Worker) Enqueue(zkID string, hash [ledger.HashSize]byte) {
	select {
	case w.jobs <- job{zkID: zkID, hash: hash}:
	default:
		w.log.Warn().Str("zk_id", zkID).Msg("anchor queue full, dropping job")
	}
}

// Close stops accepting jobs and drains the queue.
func (w *Worker) Close() {
	w.once.Do(func() { close(w.jobs) })
	w.wg.Wait()
}

func (w *Worker) anchor(j job) {
	delay := w.backoff
	for attempt := 1; attempt <= w.attempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		txRef, err := w.ledger.AddHash(ctx, []byte(j.zkID), j.hash)
		cancel()

		if err == nil {
			if aerr := w.records.AttachLedgerTxRef(j.zkID, txRef); aerr != nil {
				w.log.Error().Err(aerr).Str("zk_id", j.zkID).Msg("anchored but could not attach ledger ref")
				return
			}
			w.log.Info().Str("zk_id", j.zkID).Str("tx_ref", txRef).Int("attempt", attempt).Msg("hash anchored")
			return
		}

		w.log.Warn().Err(err).Str("zk_id", j.zkID).Int("attempt", attempt).Msg("anchor attempt failed")
		if attempt < w.attempts {
			time.Sleep(delay)
			delay *= 2
		}
	}
	w.log.Error().Str("zk_id", j.zkID).Msg("anchoring abandoned; record keeps no ledger ref")
}
