package internal

import (
	"sort"

	"github.com/lychee-technology/rowbase"
	"go.uber.org/zap"
)

// MemoryTable is the non-concurrent core of the in-memory table (spec
// §4.3). It implements rowbase.Table directly; ConcurrentMemoryTable
// decorates it with the readers-writer discipline spec §5 requires.
// Callers that don't need concurrent access may use it standalone.
type MemoryTable struct {
	layout *rowbase.RowLayout
	logger *zap.Logger
	txlog  *TransactionLog // optional; nil means mutations are not logged

	rows      map[int64]*rowbase.Row
	order     []int64 // insertion order
	sortedIds []int64 // ascending

	indices map[int]*FieldIndex // fieldIdx -> index (excludes the ID field)

	nextFreeId int64
	seq        uint64
	readonly   bool
}

// MemoryTableOption configures a new MemoryTable.
type MemoryTableOption func(*MemoryTable)

// WithTransactionLog attaches a TransactionLog; every successful Insert,
// Update, Replace and Delete appends one Transaction to it. Clear, SetValue
// and inserts that Commit applies with an already-assigned id are not logged.
func WithTransactionLog(log *TransactionLog) MemoryTableOption {
	return func(mt *MemoryTable) { mt.txlog = log }
}

// WithLogger injects a structured logger; defaults to a no-op logger.
func WithLogger(logger *zap.Logger) MemoryTableOption {
	return func(mt *MemoryTable) { mt.logger = logger }
}

// NewMemoryTable builds an empty table bound to layout, with a secondary
// index created for every field carrying the Index flag (except the ID
// field, which is never separately indexed — GetRow already does O(1) id
// lookup).
func NewMemoryTable(layout *rowbase.RowLayout, opts ...MemoryTableOption) *MemoryTable {
	mt := &MemoryTable{
		layout:     layout,
		logger:     zap.NewNop(),
		rows:       make(map[int64]*rowbase.Row),
		indices:    make(map[int]*FieldIndex),
		nextFreeId: 1,
	}
	for i, f := range layout.Fields {
		if f.Flags.Has(rowbase.FlagIndex) && i != layout.IDIndex() {
			mt.indices[i] = NewFieldIndex(i)
		}
	}
	for _, opt := range opts {
		opt(mt)
	}
	return mt
}

func (mt *MemoryTable) Layout() *rowbase.RowLayout { return mt.layout }

func (mt *MemoryTable) IsReadOnly() bool { return mt.readonly }

func (mt *MemoryTable) Freeze() { mt.readonly = true }

func (mt *MemoryTable) SequenceNumber() uint64 { return mt.seq }

func (mt *MemoryTable) Count() int { return len(mt.rows) }

func (mt *MemoryTable) IDs() []int64 {
	out := make([]int64, len(mt.order))
	copy(out, mt.order)
	return out
}

func (mt *MemoryTable) SortedIDs() []int64 {
	out := make([]int64, len(mt.sortedIds))
	copy(out, mt.sortedIds)
	return out
}

func (mt *MemoryTable) GetRow(id int64) (*rowbase.Row, error) {
	row, ok := mt.rows[id]
	if !ok {
		return nil, rowbase.NewNotFoundError(id)
	}
	return row.Clone(), nil
}

func (mt *MemoryTable) Exist(id int64) bool {
	_, ok := mt.rows[id]
	return ok
}

func (mt *MemoryTable) GetRowAt(positionalIndex int) (*rowbase.Row, error) {
	if positionalIndex < 0 || positionalIndex >= len(mt.sortedIds) {
		return nil, rowbase.NewNotFoundError(int64(positionalIndex))
	}
	return mt.GetRow(mt.sortedIds[positionalIndex])
}

func (mt *MemoryTable) requireWritable() error {
	if mt.readonly {
		return rowbase.NewReadOnlyError(mt.layout.TableName)
	}
	return nil
}

func (mt *MemoryTable) insertSortedId(id int64) {
	i := sort.Search(len(mt.sortedIds), func(i int) bool { return mt.sortedIds[i] >= id })
	mt.sortedIds = append(mt.sortedIds, 0)
	copy(mt.sortedIds[i+1:], mt.sortedIds[i:])
	mt.sortedIds[i] = id
}

func (mt *MemoryTable) removeSortedId(id int64) {
	i := sort.Search(len(mt.sortedIds), func(i int) bool { return mt.sortedIds[i] >= id })
	if i < len(mt.sortedIds) && mt.sortedIds[i] == id {
		mt.sortedIds = append(mt.sortedIds[:i], mt.sortedIds[i+1:]...)
	}
}

func (mt *MemoryTable) addToIndices(row *rowbase.Row, id int64) {
	for fieldIdx, idx := range mt.indices {
		idx.Add(row.Values[fieldIdx], id)
	}
}

func (mt *MemoryTable) removeFromIndices(row *rowbase.Row, id int64) {
	for fieldIdx, idx := range mt.indices {
		idx.Remove(row.Values[fieldIdx], id)
	}
}

func (mt *MemoryTable) moveInIndices(oldRow, newRow *rowbase.Row, id int64) {
	for fieldIdx, idx := range mt.indices {
		idx.Move(oldRow.Values[fieldIdx], newRow.Values[fieldIdx], id)
	}
}

func (mt *MemoryTable) logTx(txType rowbase.TxType, id int64, row *rowbase.Row) {
	if mt.txlog == nil {
		return
	}
	mt.txlog.Enqueue(rowbase.NewTransaction(txType, id, row))
}

// Insert assigns row.ID() when it is <= 0, otherwise honors the supplied
// positive id and advances nextFreeId. Fails with DuplicateId when a
// positive id already exists (spec §4.3).
func (mt *MemoryTable) Insert(row *rowbase.Row) (int64, error) {
	if err := mt.requireWritable(); err != nil {
		return 0, err
	}
	if !mt.layout.Equal(row.Layout) {
		return 0, rowbase.NewLayoutMismatchError("row layout does not match table layout")
	}

	idIdx := mt.layout.IDIndex()
	var id int64
	if idIdx >= 0 {
		existingID, _ := row.ID()
		if existingID <= 0 {
			id = mt.nextFreeId
			mt.nextFreeId++
		} else {
			if _, exists := mt.rows[existingID]; exists {
				return 0, rowbase.NewDuplicateIdError(existingID)
			}
			id = existingID
			if id+1 > mt.nextFreeId {
				mt.nextFreeId = id + 1
			}
		}
	} else {
		id = int64(len(mt.rows) + 1)
	}

	stored := row.Clone()
	if idIdx >= 0 {
		stored.Values[idIdx] = id
	}

	mt.rows[id] = stored
	mt.order = append(mt.order, id)
	mt.insertSortedId(id)
	mt.addToIndices(stored, id)
	mt.seq++

	mt.logTx(rowbase.TxInserted, id, stored)
	mt.logger.Debug("row inserted", zap.Int64("id", id), zap.String("table", mt.layout.TableName))
	return id, nil
}

// Update requires a positive identifier present in storage; replaces the
// row and updates every secondary index at the same slot.
func (mt *MemoryTable) Update(row *rowbase.Row) error {
	if err := mt.requireWritable(); err != nil {
		return err
	}
	if !mt.layout.Equal(row.Layout) {
		return rowbase.NewLayoutMismatchError("row layout does not match table layout")
	}
	id, err := row.ID()
	if err != nil {
		return err
	}
	if id <= 0 {
		return rowbase.NewInvalidOperationError("Update requires a positive identifier")
	}
	old, ok := mt.rows[id]
	if !ok {
		return rowbase.NewNotFoundError(id)
	}

	stored := row.Clone()
	mt.rows[id] = stored
	mt.moveInIndices(old, stored, id)
	mt.seq++

	mt.logTx(rowbase.TxUpdated, id, stored)
	mt.logger.Debug("row updated", zap.Int64("id", id), zap.String("table", mt.layout.TableName))
	return nil
}

// Replace inserts if absent, otherwise updates; always requires a positive
// identifier.
func (mt *MemoryTable) Replace(row *rowbase.Row) error {
	id, err := row.ID()
	if err != nil {
		return err
	}
	if id <= 0 {
		return rowbase.NewInvalidOperationError("Replace requires a positive identifier")
	}
	if mt.Exist(id) {
		txlog := mt.txlog
		mt.txlog = nil // Replace logs its own tag below
		err := mt.Update(row)
		mt.txlog = txlog
		if err != nil {
			return err
		}
	} else {
		if err := mt.requireWritable(); err != nil {
			return err
		}
		if _, err := mt.insertWithKnownId(row, id); err != nil {
			return err
		}
	}
	mt.logTx(rowbase.TxReplaced, id, row.Clone())
	return nil
}

// insertWithKnownId is Insert's body specialized for Replace, which must
// not emit a duplicate Inserted transaction (Replace logs its own tag).
func (mt *MemoryTable) insertWithKnownId(row *rowbase.Row, id int64) (int64, error) {
	if _, exists := mt.rows[id]; exists {
		return 0, rowbase.NewDuplicateIdError(id)
	}
	if id+1 > mt.nextFreeId {
		mt.nextFreeId = id + 1
	}
	stored := row.Clone()
	idIdx := mt.layout.IDIndex()
	if idIdx >= 0 {
		stored.Values[idIdx] = id
	}
	mt.rows[id] = stored
	mt.order = append(mt.order, id)
	mt.insertSortedId(id)
	mt.addToIndices(stored, id)
	mt.seq++
	return id, nil
}

// Delete removes the row and its index entries; fails with NotFound if
// missing.
func (mt *MemoryTable) Delete(id int64) error {
	if err := mt.requireWritable(); err != nil {
		return err
	}
	row, ok := mt.rows[id]
	if !ok {
		return rowbase.NewNotFoundError(id)
	}
	delete(mt.rows, id)
	mt.removeFromIndices(row, id)
	mt.removeSortedId(id)
	for i, oid := range mt.order {
		if oid == id {
			mt.order = append(mt.order[:i], mt.order[i+1:]...)
			break
		}
	}
	mt.seq++

	mt.logTx(rowbase.TxDeleted, id, nil)
	mt.logger.Debug("row deleted", zap.Int64("id", id), zap.String("table", mt.layout.TableName))
	return nil
}

// TryDelete evaluates search and deletes every match; it never fails for
// "no match".
func (mt *MemoryTable) TryDelete(search *rowbase.Search) (int, error) {
	if err := mt.requireWritable(); err != nil {
		return 0, err
	}
	rows, err := mt.Find(search, nil)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, row := range rows {
		id, err := row.ID()
		if err != nil {
			return count, err
		}
		if err := mt.Delete(id); err != nil {
			if rowbase.ErrorKindOf(err) == rowbase.KindNotFound {
				continue
			}
			return count, err
		}
		count++
	}
	return count, nil
}

// Clear empties storage and indices; if resetIds, nextFreeId returns to 1.
func (mt *MemoryTable) Clear(resetIds bool) error {
	if err := mt.requireWritable(); err != nil {
		return err
	}
	mt.rows = make(map[int64]*rowbase.Row)
	mt.order = nil
	mt.sortedIds = nil
	for _, idx := range mt.indices {
		idx.Clear()
	}
	if resetIds {
		mt.nextFreeId = 1
	}
	mt.seq++
	return nil
}

// GetRawValues returns distinct raw values for field across ids (empty ids
// means "all rows").
func (mt *MemoryTable) GetRawValues(field string, ids ...int64) ([]any, error) {
	idx := mt.layout.GetFieldIndex(field)
	if idx < 0 {
		return nil, rowbase.NewSchemaError("unknown field: " + field)
	}
	candidates := ids
	if len(candidates) == 0 {
		candidates = mt.order
	}

	seen := make([]any, 0)
	isDup := func(v any) bool {
		for _, s := range seen {
			if rowbase.ValuesEqual(s, v) {
				return true
			}
		}
		return false
	}
	for _, id := range candidates {
		row, ok := mt.rows[id]
		if !ok {
			continue
		}
		v := row.Values[idx]
		if !isDup(v) {
			seen = append(seen, v)
		}
	}
	return seen, nil
}

// SetValue forbids rewriting the identifier field; it rewrites every row's
// field to value.
func (mt *MemoryTable) SetValue(field string, value any) error {
	if err := mt.requireWritable(); err != nil {
		return err
	}
	idx := mt.layout.GetFieldIndex(field)
	if idx < 0 {
		return rowbase.NewSchemaError("unknown field: " + field)
	}
	if idx == mt.layout.IDIndex() {
		return rowbase.NewInvalidOperationError("SetValue may not rewrite the identifier field")
	}

	for id, row := range mt.rows {
		old := row.Values[idx]
		row.Values[idx] = value
		if fidx, ok := mt.indices[idx]; ok {
			fidx.Move(old, value, id)
		}
	}
	mt.seq++
	return nil
}

// Find evaluates search (nil means None) and applies opts (nil means no
// shaping).
func (mt *MemoryTable) Find(search *rowbase.Search, opts *rowbase.ResultOption) ([]*rowbase.Row, error) {
	if search == nil {
		search = rowbase.None
	}
	bound, err := search.Bind(mt.layout)
	if err != nil {
		return nil, err
	}
	rows, err := Evaluate(bound, mt)
	if err != nil {
		return nil, err
	}
	return ApplyResultOption(rows, mt.layout, opts)
}

// Commit applies transactions sequentially. On the first error it stops
// and returns the applied count and the failing index, matching spec
// §4.4's Commit semantics.
func (mt *MemoryTable) Commit(txs []rowbase.Transaction, flags rowbase.WriterFlags) (int, int, error) {
	for i, tx := range txs {
		var err error
		switch tx.Type {
		case rowbase.TxInserted:
			_, err = mt.insertCommitted(tx)
		case rowbase.TxUpdated:
			err = mt.Update(tx.Row)
		case rowbase.TxReplaced:
			err = mt.Replace(tx.Row)
		case rowbase.TxDeleted:
			err = mt.Delete(tx.ID)
		default:
			err = rowbase.NewInvalidOperationError("unknown transaction type")
		}
		if err != nil {
			return i, i, err
		}
	}
	return len(txs), -1, nil
}

// insertCommitted applies a replayed Insert transaction, honoring the row's
// already-assigned id rather than re-deriving one (the id was assigned the
// first time the row was queued).
func (mt *MemoryTable) insertCommitted(tx rowbase.Transaction) (int64, error) {
	if err := mt.requireWritable(); err != nil {
		return 0, err
	}
	id := tx.ID
	if id <= 0 {
		return mt.Insert(tx.Row)
	}
	got, err := mt.insertWithKnownId(tx.Row, id)
	if err != nil {
		return 0, err
	}
	mt.logger.Debug("transaction committed", zap.Int64("id", got), zap.String("table", mt.layout.TableName))
	return got, nil
}

// rowsByIDs returns the stored rows (not clones) for the given ids, in the
// order given, skipping ids that no longer exist. Used internally by the
// evaluator to avoid per-row cloning during predicate scans.
func (mt *MemoryTable) rowsByIDs(ids []int64) []*rowbase.Row {
	out := make([]*rowbase.Row, 0, len(ids))
	for _, id := range ids {
		if row, ok := mt.rows[id]; ok {
			out = append(out, row)
		}
	}
	return out
}
