package rowbase

// Row is an immutable logical tuple: a reference to its Layout plus a value
// array of length equal to FieldCount (spec §3).
type Row struct {
	Layout *RowLayout
	Values []any
}

// NewRow constructs a Row bound to layout from an already-ordered value
// slice. The slice is cloned so the Row shares no storage with the caller.
func NewRow(layout *RowLayout, values []any) (*Row, error) {
	if len(values) != layout.FieldCount() {
		return nil, NewSchemaError("value count does not match field count")
	}
	cloned := make([]any, len(values))
	copy(cloned, values)
	return &Row{Layout: layout, Values: cloned}, nil
}

// NewRowFromStruct builds a Row from a host-schema struct via the layout's
// typed GetValues conversion.
func NewRowFromStruct(layout *RowLayout, item any) (*Row, error) {
	values, err := layout.GetValues(item)
	if err != nil {
		return nil, err
	}
	return &Row{Layout: layout, Values: values}, nil
}

// ToStruct marshals the row back into a pointer-to-struct of the layout's
// host type via SetValues.
func (r *Row) ToStruct(out any) error {
	return r.Layout.SetValues(out, r.Values)
}

// Clone returns a Row with an independently-allocated value slice, sharing
// the same Layout pointer (layouts are immutable and safely shared).
func (r *Row) Clone() *Row {
	values := make([]any, len(r.Values))
	copy(values, r.Values)
	return &Row{Layout: r.Layout, Values: values}
}

// Get returns the value at fieldIdx.
func (r *Row) Get(fieldIdx int) any {
	return r.Values[fieldIdx]
}

// GetByName returns the value of the named field, or nil and false if the
// name does not resolve on the row's layout.
func (r *Row) GetByName(name string) (any, bool) {
	idx := r.Layout.GetFieldIndex(name)
	if idx < 0 {
		return nil, false
	}
	return r.Values[idx], true
}

// WithValue returns a new Row with fieldIdx replaced by value; the receiver
// is left unmodified (Rows are immutable after construction).
func (r *Row) WithValue(fieldIdx int, value any) *Row {
	next := r.Clone()
	next.Values[fieldIdx] = value
	return next
}

// ID returns the row's identifier via the layout's ID field, or
// NoIdentifierField if the layout declares none.
func (r *Row) ID() (int64, error) {
	return r.Layout.GetID(r)
}

// Equal reports value-equality: the row is equal when all slots compare
// equal under the default comparer, which recurses into byte-slice arrays.
func (r *Row) Equal(other *Row) bool {
	if other == nil || !r.Layout.Equal(other.Layout) {
		return false
	}
	if len(r.Values) != len(other.Values) {
		return false
	}
	for i := range r.Values {
		if !ValuesEqual(r.Values[i], other.Values[i]) {
			return false
		}
	}
	return true
}
