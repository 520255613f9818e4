package internal

import (
	"sync"
	"testing"
	"time"

	"github.com/lychee-technology/rowbase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConcurrentWidgets(t *testing.T) *ConcurrentMemoryTable {
	t.Helper()
	return NewConcurrentMemoryTable(NewMemoryTable(widgetLayout(t)), 50*time.Millisecond)
}

// =============================================================================
// Basic delegation Tests
// =============================================================================

func TestConcurrentMemoryTable_InsertGetRow(t *testing.T) {
	ct := newConcurrentWidgets(t)
	id, err := ct.Insert(mustRow(t, ct.Layout(), int64(0), "gizmo", 1.0))
	require.NoError(t, err)

	row, err := ct.GetRow(id)
	require.NoError(t, err)
	assert.Equal(t, "gizmo", row.Get(1))
}

func TestConcurrentMemoryTable_DefaultsMaxWaitTime(t *testing.T) {
	ct := NewConcurrentMemoryTable(NewMemoryTable(widgetLayout(t)), 0)
	assert.Equal(t, 100*time.Millisecond, ct.maxWaitTime)
}

// =============================================================================
// Concurrent readers Tests
// =============================================================================

func TestConcurrentMemoryTable_ConcurrentReadersDoNotBlockEachOther(t *testing.T) {
	ct := newConcurrentWidgets(t)
	_, err := ct.Insert(mustRow(t, ct.Layout(), int64(0), "gizmo", 1.0))
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ct.GetRow(1); err != nil {
				errs <- err
			}
		}()
	}
	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("concurrent readers did not complete promptly")
	}
	close(errs)
	for err := range errs {
		t.Errorf("unexpected read error: %v", err)
	}
}

// =============================================================================
// Writer mutual exclusion Tests
// =============================================================================

func TestConcurrentMemoryTable_WriterExcludesWriter(t *testing.T) {
	ct := newConcurrentWidgets(t)
	var mu sync.Mutex
	var concurrentWrites int
	var maxConcurrent int

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			ct.acquireWrite()
			mu.Lock()
			concurrentWrites++
			if concurrentWrites > maxConcurrent {
				maxConcurrent = concurrentWrites
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			concurrentWrites--
			mu.Unlock()
			ct.releaseWrite()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, maxConcurrent)
}

// =============================================================================
// Writer waits past maxWaitTime for a still-running reader Tests
// =============================================================================

func TestConcurrentMemoryTable_WriterWaitsForSlowReaderPastMaxWaitTime(t *testing.T) {
	ct := newConcurrentWidgets(t) // maxWaitTime: 50ms
	_, err := ct.Insert(mustRow(t, ct.Layout(), int64(0), "gizmo", 1.0))
	require.NoError(t, err)

	readerDone := make(chan struct{})
	readerReleased := false
	var mu sync.Mutex

	ct.acquireRead()
	go func() {
		time.Sleep(150 * time.Millisecond) // outlives maxWaitTime
		mu.Lock()
		readerReleased = true
		mu.Unlock()
		ct.releaseRead()
		close(readerDone)
	}()

	writerAcquired := make(chan struct{})
	go func() {
		ct.acquireWrite()
		mu.Lock()
		assert.True(t, readerReleased, "writer must not acquire while the reader is still in flight")
		mu.Unlock()
		ct.releaseWrite()
		close(writerAcquired)
	}()

	select {
	case <-writerAcquired:
	case <-time.After(2 * time.Second):
		t.Fatal("writer never acquired after the reader released")
	}
	<-readerDone
}

// =============================================================================
// Read-ticket invariant Tests
// =============================================================================

func TestConcurrentMemoryTable_ReleaseReadUnderflowPanics(t *testing.T) {
	ct := newConcurrentWidgets(t)
	assert.Panics(t, func() {
		ct.releaseRead()
	})
}

// =============================================================================
// Table interface compliance
// =============================================================================

func TestConcurrentMemoryTable_ImplementsTable(t *testing.T) {
	var _ rowbase.Table = newConcurrentWidgets(t)
}
