// Package factory wires the internal engine implementations to the public
// rowbase.Table contract. External callers should construct tables through
// this package rather than reaching into internal directly.
package factory

import (
	"github.com/lychee-technology/rowbase"
	"github.com/lychee-technology/rowbase/internal"
	"go.uber.org/zap"
)

// NewTable builds a non-concurrent in-memory table bound to layout. Use
// this for single-goroutine callers, or as the core a NewConcurrentTable
// wraps.
func NewTable(layout *rowbase.RowLayout, opts ...internal.MemoryTableOption) rowbase.Table {
	return internal.NewMemoryTable(layout, opts...)
}

// NewConcurrentTable builds a table bound to layout with the readers-writer
// discipline spec §5 describes, tuned by cfg.MaxWriterWaitTime.
func NewConcurrentTable(layout *rowbase.RowLayout, cfg rowbase.TableConfig, opts ...internal.MemoryTableOption) rowbase.Table {
	core := internal.NewMemoryTable(layout, opts...)
	zap.S().Debugw("table created", "table", layout.TableName, "maxWriterWaitTime", cfg.MaxWriterWaitTime)
	return internal.NewConcurrentMemoryTable(core, cfg.MaxWriterWaitTime)
}

// NewTransactionLog builds the FIFO a Writer drains.
func NewTransactionLog() *internal.TransactionLog {
	return internal.NewTransactionLog()
}

// NewWriter builds a background Writer flushing log into target per cfg,
// and starts its worker goroutine.
func NewWriter(log *internal.TransactionLog, target rowbase.Table, cfg rowbase.WriterConfig, logger *zap.Logger) *internal.Writer {
	var opts []internal.WriterOption
	if logger != nil {
		opts = append(opts, internal.WithWriterLogger(logger))
	}
	w := internal.NewWriter(log, target, cfg, opts...)
	w.Start()
	zap.S().Infow("writer started", "threshold", cfg.CacheFlushThreshold, "flushCount", cfg.FlushCount)
	return w
}

// LoadTable bulk-copies rows from source into target, bypassing the
// transaction log (spec §6).
func LoadTable(target, source rowbase.Table, search *rowbase.Search, storage rowbase.Storage, progress rowbase.ProgressFunc) error {
	return internal.LoadTable(target, source, search, storage, progress)
}
