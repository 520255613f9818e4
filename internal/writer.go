package internal

import (
	"context"
	"sync"
	"time"

	"github.com/lychee-technology/rowbase"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// WriterStats is the observability snapshot SPEC_FULL.md §12 adds on top of
// the base spec: how many rows the Writer has flushed, the longest it has
// ever seen a transaction wait in queue, and the wall-clock time of the
// last successful flush.
type WriterStats struct {
	WrittenCount int64
	MaxSeenDelay time.Duration
	LastFlush    time.Time
}

// Writer is the background flusher described in spec §4.4: it drains a
// TransactionLog into a target Table in batches, honoring a threshold
// (flush once the queue reaches this size) and a bounded wait window
// (flush at least this often even under the threshold, and no more often
// than the minimum wait between flushes).
type Writer struct {
	log    *TransactionLog
	target rowbase.Table
	logger *zap.Logger

	threshold  int
	minWait    time.Duration
	maxWait    time.Duration
	flushCount int
	flags      rowbase.WriterFlags

	mu        sync.Mutex
	stats     WriterStats
	faults    error
	exiting   bool
	flushNow  chan struct{}
	flushDone chan struct{}
	eg        *errgroup.Group
	cancel    context.CancelFunc
	started   bool
}

// WriterOption configures a Writer at construction time.
type WriterOption func(*Writer)

func WithWriterLogger(logger *zap.Logger) WriterOption {
	return func(w *Writer) { w.logger = logger }
}

// NewWriter builds a Writer over log, flushing into target per cfg. Call
// Start to launch the background worker.
func NewWriter(log *TransactionLog, target rowbase.Table, cfg rowbase.WriterConfig, opts ...WriterOption) *Writer {
	w := &Writer{
		log:        log,
		target:     target,
		logger:     zap.NewNop(),
		threshold:  cfg.CacheFlushThreshold,
		minWait:    cfg.CacheFlushMinWait,
		maxWait:    cfg.CacheFlushMaxWait,
		flushCount: cfg.FlushCount,
		flags:      cfg.Flags,
		flushNow:   make(chan struct{}, 1),
		flushDone:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start launches the worker goroutine via an errgroup so a terminal fault
// is returned by Close.
func (w *Writer) Start() {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return
	}
	w.started = true
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	eg, egCtx := errgroup.WithContext(ctx)
	w.eg = eg
	w.mu.Unlock()

	eg.Go(func() error { return w.run(egCtx) })
}

// run is the main loop, spec §4.4 steps 1-6:
//  1. queue empty -> reset the maxWait deadline, block until signaled
//  2. queue non-empty -> sleep minWait unless a Flush is explicitly pending
//  3. skip the flush unless threshold or the maxWait deadline is reached
//  4. dequeue up to flushCount entries and Commit them
//  5. on success, advance writtenCount/lastFlush
//  6. on failure: requeue-at-head and continue (AllowRequeue), or
//     propagate and terminate (ThrowExceptions), or log and continue
//
// flushNow is drained every iteration, regardless of which branch the
// iteration otherwise takes, so a pending Flush() is never stranded behind
// an empty-queue wait — Flush() must return promptly even when queued == 0.
func (w *Writer) run(ctx context.Context) error {
	deadline := time.Now().Add(w.maxWait)
	for {
		if w.isExiting(ctx) {
			w.drainOnce()
			return nil
		}

		explicitFlush := false
		select {
		case <-w.flushNow:
			explicitFlush = true
		default:
		}

		if !explicitFlush && w.log.Len() == 0 {
			deadline = time.Now().Add(w.maxWait)
			w.log.Wait(200 * time.Millisecond)
			continue
		}

		if !explicitFlush {
			time.Sleep(w.minWait)
			thresholdHit := w.threshold > 0 && w.log.Len() >= w.threshold
			deadlineHit := time.Now().After(deadline)
			if !thresholdHit && !deadlineHit {
				continue
			}
		}

		err := w.flushOnce()
		if err != nil {
			w.recordFault(err)
		}
		deadline = time.Now().Add(w.maxWait)

		if explicitFlush {
			select {
			case w.flushDone <- struct{}{}:
			default:
			}
		}

		if err != nil && w.flags.Has(rowbase.FlagThrowExceptions) {
			return err
		}
	}
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}

func (w *Writer) isExiting(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.exiting
}

// drainOnce flushes whatever remains before the worker exits.
func (w *Writer) drainOnce() {
	for w.log.Len() > 0 {
		if err := w.flushOnce(); err != nil {
			w.recordFault(err)
			return
		}
	}
}

func (w *Writer) flushOnce() error {
	txs := w.log.TryDequeue(w.flushCount)
	if len(txs) == 0 {
		return nil
	}

	oldest := txs[0].CreatedAt
	delay := time.Since(oldest)

	applied, failedIdx, err := w.target.Commit(txs, w.flags)
	w.mu.Lock()
	w.stats.WrittenCount += int64(applied)
	if delay > w.stats.MaxSeenDelay {
		w.stats.MaxSeenDelay = delay
	}
	w.stats.LastFlush = time.Now()
	w.mu.Unlock()

	if err == nil {
		return nil
	}

	failed := txs[failedIdx:]
	w.logger.Warn("commit failed, requeuing remainder",
		zap.Int("applied", applied),
		zap.Int("failedIdx", failedIdx),
		zap.Int("remaining", len(failed)),
		zap.Error(err))

	if w.flags.Has(rowbase.FlagAllowRequeue) {
		w.log.RequeueRange(true, failed)
		return nil
	}
	return err
}

func (w *Writer) recordFault(err error) {
	w.mu.Lock()
	w.faults = multierr.Append(w.faults, err)
	w.mu.Unlock()
}

// Flush requests an out-of-band flush and blocks until it completes.
func (w *Writer) Flush() {
	select {
	case w.flushNow <- struct{}{}:
	default:
	}
	w.log.Pulse()
	<-w.flushDone
}

// Close requests the worker exit after draining the log, then waits for it
// to finish. It returns every fault recorded by the worker, combined with
// the error the worker stopped on, if any.
func (w *Writer) Close() error {
	w.mu.Lock()
	w.exiting = true
	eg := w.eg
	cancel := w.cancel
	w.mu.Unlock()

	w.log.Pulse()
	if cancel != nil {
		defer cancel()
	}
	var runErr error
	if eg != nil {
		runErr = eg.Wait()
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return multierr.Append(w.faults, runErr)
}

// Stats returns a snapshot of the Writer's flush observability counters.
func (w *Writer) Stats() WriterStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}
