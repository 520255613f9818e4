package internal

import (
	"sync"
	"time"

	"github.com/lychee-technology/rowbase"
)

// ConcurrentMemoryTable decorates a MemoryTable with the readers-writer
// discipline spec §5 requires: any number of simultaneous readers, and a
// writer that waits up to maxWaitTime for readers to drain before seizing
// exclusivity. A read ticket underflow (Release called without a matching
// Acquire) is a programming-invariant violation and panics rather than
// silently corrupting the count.
type ConcurrentMemoryTable struct {
	core        *MemoryTable
	mu          sync.Mutex
	cond        *sync.Cond
	readers     int
	writing     bool
	maxWaitTime time.Duration
}

// NewConcurrentMemoryTable wraps core with the readers-writer gate.
// maxWaitTime <= 0 uses the spec's documented default of 100ms.
func NewConcurrentMemoryTable(core *MemoryTable, maxWaitTime time.Duration) *ConcurrentMemoryTable {
	if maxWaitTime <= 0 {
		maxWaitTime = 100 * time.Millisecond
	}
	ct := &ConcurrentMemoryTable{core: core, maxWaitTime: maxWaitTime}
	ct.cond = sync.NewCond(&ct.mu)
	return ct
}

func (ct *ConcurrentMemoryTable) acquireRead() {
	ct.mu.Lock()
	for ct.writing {
		ct.cond.Wait()
	}
	ct.readers++
	ct.mu.Unlock()
}

func (ct *ConcurrentMemoryTable) releaseRead() {
	ct.mu.Lock()
	ct.readers--
	if ct.readers < 0 {
		ct.mu.Unlock()
		panic("rowbase: read ticket released without a matching acquire")
	}
	if ct.readers == 0 {
		ct.cond.Broadcast()
	}
	ct.mu.Unlock()
}

// acquireWrite waits up to maxWaitTime for outstanding readers to drain
// under contention, then sets writing=true so no new reader can acquire —
// at that point the bounded wait is over and the writer blocks, however
// long it takes, for the readers already in flight to return their
// tickets. It never seizes the table out from under a reader still
// executing against it; maxWaitTime only bounds how long new readers keep
// arriving ahead of a waiting writer, not how long a reader may run.
func (ct *ConcurrentMemoryTable) acquireWrite() {
	ct.mu.Lock()
	for ct.writing {
		ct.cond.Wait()
	}
	deadline := time.Now().Add(ct.maxWaitTime)
	for ct.readers > 0 && time.Now().Before(deadline) {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		ct.waitWithTimeout(remaining)
	}
	ct.writing = true
	for ct.readers > 0 {
		ct.cond.Wait()
	}
	ct.mu.Unlock()
}

// waitWithTimeout is sync.Cond.Wait bounded by a timer; it must be called
// with ct.mu held, and returns with ct.mu held again.
func (ct *ConcurrentMemoryTable) waitWithTimeout(d time.Duration) {
	timer := time.AfterFunc(d, func() { ct.cond.Broadcast() })
	defer timer.Stop()
	ct.cond.Wait()
}

func (ct *ConcurrentMemoryTable) releaseWrite() {
	ct.mu.Lock()
	ct.writing = false
	ct.mu.Unlock()
	ct.cond.Broadcast()
}

func (ct *ConcurrentMemoryTable) Layout() *rowbase.RowLayout { return ct.core.Layout() }

func (ct *ConcurrentMemoryTable) Insert(row *rowbase.Row) (int64, error) {
	ct.acquireWrite()
	defer ct.releaseWrite()
	return ct.core.Insert(row)
}

func (ct *ConcurrentMemoryTable) Update(row *rowbase.Row) error {
	ct.acquireWrite()
	defer ct.releaseWrite()
	return ct.core.Update(row)
}

func (ct *ConcurrentMemoryTable) Replace(row *rowbase.Row) error {
	ct.acquireWrite()
	defer ct.releaseWrite()
	return ct.core.Replace(row)
}

func (ct *ConcurrentMemoryTable) Delete(id int64) error {
	ct.acquireWrite()
	defer ct.releaseWrite()
	return ct.core.Delete(id)
}

func (ct *ConcurrentMemoryTable) TryDelete(search *rowbase.Search) (int, error) {
	ct.acquireWrite()
	defer ct.releaseWrite()
	return ct.core.TryDelete(search)
}

func (ct *ConcurrentMemoryTable) Clear(resetIds bool) error {
	ct.acquireWrite()
	defer ct.releaseWrite()
	return ct.core.Clear(resetIds)
}

func (ct *ConcurrentMemoryTable) GetRow(id int64) (*rowbase.Row, error) {
	ct.acquireRead()
	defer ct.releaseRead()
	return ct.core.GetRow(id)
}

func (ct *ConcurrentMemoryTable) Exist(id int64) bool {
	ct.acquireRead()
	defer ct.releaseRead()
	return ct.core.Exist(id)
}

func (ct *ConcurrentMemoryTable) GetRowAt(positionalIndex int) (*rowbase.Row, error) {
	ct.acquireRead()
	defer ct.releaseRead()
	return ct.core.GetRowAt(positionalIndex)
}

func (ct *ConcurrentMemoryTable) Count() int {
	ct.acquireRead()
	defer ct.releaseRead()
	return ct.core.Count()
}

func (ct *ConcurrentMemoryTable) IDs() []int64 {
	ct.acquireRead()
	defer ct.releaseRead()
	return ct.core.IDs()
}

func (ct *ConcurrentMemoryTable) SortedIDs() []int64 {
	ct.acquireRead()
	defer ct.releaseRead()
	return ct.core.SortedIDs()
}

func (ct *ConcurrentMemoryTable) GetRawValues(field string, ids ...int64) ([]any, error) {
	ct.acquireRead()
	defer ct.releaseRead()
	return ct.core.GetRawValues(field, ids...)
}

func (ct *ConcurrentMemoryTable) SetValue(field string, value any) error {
	ct.acquireWrite()
	defer ct.releaseWrite()
	return ct.core.SetValue(field, value)
}

func (ct *ConcurrentMemoryTable) Find(search *rowbase.Search, opts *rowbase.ResultOption) ([]*rowbase.Row, error) {
	ct.acquireRead()
	defer ct.releaseRead()
	return ct.core.Find(search, opts)
}

func (ct *ConcurrentMemoryTable) Freeze() {
	ct.acquireWrite()
	defer ct.releaseWrite()
	ct.core.Freeze()
}

func (ct *ConcurrentMemoryTable) IsReadOnly() bool {
	ct.acquireRead()
	defer ct.releaseRead()
	return ct.core.IsReadOnly()
}

func (ct *ConcurrentMemoryTable) SequenceNumber() uint64 {
	ct.acquireRead()
	defer ct.releaseRead()
	return ct.core.SequenceNumber()
}

func (ct *ConcurrentMemoryTable) Commit(txs []rowbase.Transaction, flags rowbase.WriterFlags) (int, int, error) {
	ct.acquireWrite()
	defer ct.releaseWrite()
	return ct.core.Commit(txs, flags)
}

var _ rowbase.Table = (*ConcurrentMemoryTable)(nil)
var _ rowbase.Table = (*MemoryTable)(nil)
