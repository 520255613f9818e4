package rowbase

// WriterFlags controls the async Writer's failure policy (spec §4.4).
type WriterFlags uint8

const (
	FlagAllowRequeue WriterFlags = 1 << iota
	FlagThrowExceptions
	FlagDefault WriterFlags = 0
)

func (f WriterFlags) Has(bit WriterFlags) bool { return f&bit != 0 }

// Table is the public contract of the in-memory table (spec §4.3). All
// mutating operations are atomic with respect to other callers.
type Table interface {
	Layout() *RowLayout

	// Insert assigns row.id when it is <= 0, otherwise honors the supplied
	// positive id and advances the free-id counter. Fails with DuplicateId
	// when a positive id already exists.
	Insert(row *Row) (int64, error)

	// Update requires a positive identifier present in storage; fails with
	// NotFound if missing.
	Update(row *Row) error

	// Replace inserts if absent, otherwise updates; always requires a
	// positive identifier.
	Replace(row *Row) error

	// Delete removes the row at id; fails with NotFound if missing.
	Delete(id int64) error

	// TryDelete evaluates search and deletes every match, returning the
	// count. It never fails for "no match".
	TryDelete(search *Search) (int, error)

	// Clear empties storage and indices. If resetIds, the free-id counter
	// returns to 1.
	Clear(resetIds bool) error

	GetRow(id int64) (*Row, error)
	Exist(id int64) bool
	GetRowAt(positionalIndex int) (*Row, error)

	Count() int
	IDs() []int64       // insertion order
	SortedIDs() []int64 // ascending

	// GetRawValues returns distinct raw values for field across a candidate
	// id set (empty ids means "all rows"). Use the package-level GetValues
	// generic helper for a typed view.
	GetRawValues(field string, ids ...int64) ([]any, error)

	// SetValue rewrites every row's field to value; forbidden on the
	// identifier field.
	SetValue(field string, value any) error

	// Find evaluates search (nil means None) and applies opts (nil means
	// no shaping), returning the resulting rows.
	Find(search *Search, opts *ResultOption) ([]*Row, error)

	// Freeze latches the table read-only; it is one-way for the instance's
	// lifetime.
	Freeze()
	IsReadOnly() bool

	// SequenceNumber is the linearization timestamp: it strictly increases
	// by one per successful mutation and is unchanged across reads.
	SequenceNumber() uint64

	// Commit applies transactions sequentially. It returns the number
	// successfully applied and, if a failure occurred, the index of the
	// first failing transaction and its error — spec §4.4's Commit
	// semantics: earlier successes are not rolled back, and the caller
	// (the Writer) uses failedIdx to know which transaction, and which
	// suffix of the batch, to requeue.
	Commit(txs []Transaction, flags WriterFlags) (applied int, failedIdx int, err error)
}

// GetValues is a typed view over Table.GetRawValues.
func GetValues[T any](t Table, field string, ids ...int64) ([]T, error) {
	raw, err := t.GetRawValues(field, ids...)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raw))
	for _, v := range raw {
		tv, ok := v.(T)
		if !ok {
			return nil, NewSchemaError("value for field " + field + " is not the requested type")
		}
		out = append(out, tv)
	}
	return out, nil
}

// LoadProgress reports bulk-load status to a ProgressFunc.
type LoadProgress struct {
	Current int
	Total   int
}

// ProgressFunc is invoked by LoadTable after each transaction-sized window;
// returning true requests the load stop early.
type ProgressFunc func(LoadProgress) (breakRequested bool)
