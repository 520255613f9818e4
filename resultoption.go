package rowbase

// sortDir is the direction of a single sort clause.
type sortDir int

const (
	sortAsc sortDir = iota
	sortDesc
)

type sortClause struct {
	field string
	dir   sortDir
}

// ResultOption is an ordered composition of Group/Sort/Limit/Offset
// operators (spec §4.2). Build one with NewResultOption and chain the
// Group, SortAsc, SortDesc, Limit and Offset methods; each returns a new
// ResultOption, leaving the receiver untouched.
type ResultOption struct {
	groupField string
	hasGroup   bool
	sorts      []sortClause
	limit      int
	hasLimit   bool
	offset     int
	hasOffset  bool
}

// NewResultOption returns the empty (no-op) result shaping.
func NewResultOption() *ResultOption {
	return &ResultOption{}
}

func (r *ResultOption) clone() *ResultOption {
	next := *r
	next.sorts = append([]sortClause(nil), r.sorts...)
	return &next
}

// Group groups rows by field, keeping the first-encountered row per group
// (insertion order). Grouping is applied before sorting.
func (r *ResultOption) Group(field string) *ResultOption {
	next := r.clone()
	next.groupField = field
	next.hasGroup = true
	return next
}

// SortAsc appends an ascending sort clause. Multiple sort clauses apply in
// declaration order with the LAST clause as the primary sort (a stable sort
// composes right-to-left).
func (r *ResultOption) SortAsc(field string) *ResultOption {
	next := r.clone()
	next.sorts = append(next.sorts, sortClause{field: field, dir: sortAsc})
	return next
}

// SortDesc appends a descending sort clause.
func (r *ResultOption) SortDesc(field string) *ResultOption {
	next := r.clone()
	next.sorts = append(next.sorts, sortClause{field: field, dir: sortDesc})
	return next
}

// Limit sets the result cap. At most one Limit may be set; a duplicate
// fails with InvalidResultOption.
func (r *ResultOption) Limit(n int) (*ResultOption, error) {
	if r.hasLimit {
		return nil, NewInvalidResultOptionError("duplicate Limit")
	}
	next := r.clone()
	next.limit = n
	next.hasLimit = true
	return next, nil
}

// Offset sets the result skip count. At most one Offset may be set; a
// duplicate fails with InvalidResultOption.
func (r *ResultOption) Offset(n int) (*ResultOption, error) {
	if r.hasOffset {
		return nil, NewInvalidResultOptionError("duplicate Offset")
	}
	next := r.clone()
	next.offset = n
	next.hasOffset = true
	return next, nil
}

// HasGroup, GroupField, Sorts, LimitValue and OffsetValue are the
// read-only accessors the evaluator (internal package) uses to apply
// shaping; they are exported so internal can consume them without a cyclic
// import.
func (r *ResultOption) HasGroup() bool       { return r.hasGroup }
func (r *ResultOption) GroupField() string   { return r.groupField }
func (r *ResultOption) LimitValue() (int, bool)  { return r.limit, r.hasLimit }
func (r *ResultOption) OffsetValue() (int, bool) { return r.offset, r.hasOffset }

// SortClause is a single exported sort step (field + ascending flag), in
// declaration order.
type SortClause struct {
	Field string
	Asc   bool
}

// Sorts returns the declared sort clauses in declaration order. Per spec
// §4.2 the LAST declared clause is the primary sort; callers that need to
// build a single comparator should fold the slice right-to-left.
func (r *ResultOption) Sorts() []SortClause {
	out := make([]SortClause, len(r.sorts))
	for i, s := range r.sorts {
		out[i] = SortClause{Field: s.field, Asc: s.dir == sortAsc}
	}
	return out
}
