package internal

import (
	"sync"
	"time"

	"github.com/lychee-technology/rowbase"
)

// TransactionLog is a thread-safe FIFO of pending Transactions sitting
// between a ConcurrentMemoryTable's mutators and the background Writer
// (spec §4.4). Ordering is preserved except that Requeue(atHead=true)
// reinserts a transaction at the front, ahead of everything enqueued since
// it was first dequeued.
type TransactionLog struct {
	mu      sync.Mutex
	cond    *sync.Cond
	entries []rowbase.Transaction
}

// NewTransactionLog builds an empty log.
func NewTransactionLog() *TransactionLog {
	tl := &TransactionLog{}
	tl.cond = sync.NewCond(&tl.mu)
	return tl
}

// Enqueue appends tx to the tail and wakes one waiter.
func (tl *TransactionLog) Enqueue(tx rowbase.Transaction) {
	tl.mu.Lock()
	tl.entries = append(tl.entries, tx)
	tl.mu.Unlock()
	tl.cond.Signal()
}

// AddRange appends every transaction in txs, preserving their relative
// order, and wakes any waiters once.
func (tl *TransactionLog) AddRange(txs []rowbase.Transaction) {
	if len(txs) == 0 {
		return
	}
	tl.mu.Lock()
	tl.entries = append(tl.entries, txs...)
	tl.mu.Unlock()
	tl.cond.Broadcast()
}

// Len reports the number of pending transactions.
func (tl *TransactionLog) Len() int {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return len(tl.entries)
}

// Peek returns the head transaction without removing it, and false if the
// log is empty.
func (tl *TransactionLog) Peek() (rowbase.Transaction, bool) {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	if len(tl.entries) == 0 {
		return rowbase.Transaction{}, false
	}
	return tl.entries[0], true
}

// TryDequeue removes and returns up to max transactions from the head,
// without blocking.
func (tl *TransactionLog) TryDequeue(max int) []rowbase.Transaction {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	if max <= 0 || len(tl.entries) == 0 {
		return nil
	}
	if max > len(tl.entries) {
		max = len(tl.entries)
	}
	out := make([]rowbase.Transaction, max)
	copy(out, tl.entries[:max])
	tl.entries = tl.entries[max:]
	return out
}

// Requeue reinserts tx; atHead puts it back at the front (a failed flush
// being retried), otherwise at the tail.
func (tl *TransactionLog) Requeue(atHead bool, tx rowbase.Transaction) {
	tl.mu.Lock()
	if atHead {
		tl.entries = append([]rowbase.Transaction{tx}, tl.entries...)
	} else {
		tl.entries = append(tl.entries, tx)
	}
	tl.mu.Unlock()
	tl.cond.Signal()
}

// RequeueRange reinserts txs as a contiguous block, preserving their
// relative order; used by the Writer to put an entire failed batch back at
// the head in one step.
func (tl *TransactionLog) RequeueRange(atHead bool, txs []rowbase.Transaction) {
	if len(txs) == 0 {
		return
	}
	tl.mu.Lock()
	if atHead {
		tl.entries = append(append([]rowbase.Transaction(nil), txs...), tl.entries...)
	} else {
		tl.entries = append(tl.entries, txs...)
	}
	tl.mu.Unlock()
	tl.cond.Broadcast()
}

// Wait blocks until the log is non-empty or timeout elapses, returning
// false on timeout. timeout <= 0 waits indefinitely.
func (tl *TransactionLog) Wait(timeout time.Duration) bool {
	done := make(chan struct{})
	if timeout > 0 {
		timer := time.AfterFunc(timeout, func() {
			tl.mu.Lock()
			close(done)
			tl.mu.Unlock()
			tl.cond.Broadcast()
		})
		defer timer.Stop()
	}

	tl.mu.Lock()
	defer tl.mu.Unlock()
	for len(tl.entries) == 0 {
		select {
		case <-done:
			return false
		default:
		}
		tl.cond.Wait()
		select {
		case <-done:
			return len(tl.entries) > 0
		default:
		}
	}
	return true
}

// Pulse wakes every goroutine blocked in Wait, used by Close/Flush to force
// a re-check of the exit/flush flags.
func (tl *TransactionLog) Pulse() {
	tl.cond.Broadcast()
}
