package internal

import (
	"github.com/lychee-technology/rowbase"
)

// rowSource is the minimal surface the evaluator needs from a table: the
// full insertion-ordered id set, row lookup by id, and the secondary
// indices built for Index-flagged fields. MemoryTable satisfies it
// directly; ConcurrentMemoryTable delegates to its wrapped core.
type rowSource interface {
	IDs() []int64
	rowsByIDs(ids []int64) []*rowbase.Row
	indexFor(fieldIdx int) (*FieldIndex, bool)
}

func (mt *MemoryTable) indexFor(fieldIdx int) (*FieldIndex, bool) {
	idx, ok := mt.indices[fieldIdx]
	return idx, ok
}

// Evaluate walks a Search already bound to src's layout and returns the
// matching rows in the table's insertion order, except that an Or lists the
// left operand's matches before the right-only ones. Equality against an
// indexed field
// uses the index's bucket directly; every other leaf scans the preselected
// candidate set (spec §4.2).
func Evaluate(search *rowbase.Search, src rowSource) ([]*rowbase.Row, error) {
	ids, err := evaluateIDs(search, src, src.IDs())
	if err != nil {
		return nil, err
	}
	return src.rowsByIDs(ids), nil
}

func evaluateIDs(search *rowbase.Search, src rowSource, universe []int64) ([]int64, error) {
	if search == nil || search.Mode == rowbase.ModeNone {
		return universe, nil
	}
	if search.Negate && (search.Mode == rowbase.ModeAnd || search.Mode == rowbase.ModeOr) {
		positive := *search
		positive.Negate = false
		matched, err := evaluateIDs(&positive, src, universe)
		if err != nil {
			return nil, err
		}
		return setDifference(universe, matched), nil
	}

	switch search.Mode {
	case rowbase.ModeAnd:
		left, err := evaluateIDs(search.Left, src, universe)
		if err != nil {
			return nil, err
		}
		return evaluateIDs(search.Right, src, left)
	case rowbase.ModeOr:
		left, err := evaluateIDs(search.Left, src, universe)
		if err != nil {
			return nil, err
		}
		right, err := evaluateIDs(search.Right, src, universe)
		if err != nil {
			return nil, err
		}
		return unionIDs(left, right), nil
	default:
		matched, err := evaluateLeaf(search, src, universe)
		if err != nil {
			return nil, err
		}
		if search.Negate {
			return setDifference(universe, matched), nil
		}
		return matched, nil
	}
}

func evaluateLeaf(search *rowbase.Search, src rowSource, universe []int64) ([]int64, error) {
	fieldIdx := search.FieldIndex()

	if search.Mode == rowbase.ModeEquals {
		if idx, ok := src.indexFor(fieldIdx); ok {
			return intersectIDs(universe, idx.Lookup(search.Operand)), nil
		}
	}
	if search.Mode == rowbase.ModeIn {
		if idx, ok := src.indexFor(fieldIdx); ok {
			var acc []int64
			for _, v := range search.Operands {
				acc = unionIDs(acc, idx.Lookup(v))
			}
			return intersectIDs(universe, acc), nil
		}
	}

	rows := src.rowsByIDs(universe)
	out := make([]int64, 0, len(rows))
	for _, row := range rows {
		ok, err := leafMatches(search, row, fieldIdx)
		if err != nil {
			return nil, err
		}
		if ok {
			id, err := row.ID()
			if err != nil {
				return nil, err
			}
			out = append(out, id)
		}
	}
	return out, nil
}

func leafMatches(search *rowbase.Search, row *rowbase.Row, fieldIdx int) (bool, error) {
	value := row.Values[fieldIdx]
	switch search.Mode {
	case rowbase.ModeEquals:
		return rowbase.ValuesEqual(value, search.Operand), nil
	case rowbase.ModeLike:
		s, ok := value.(string)
		if !ok {
			return false, nil
		}
		return MatchLike(search.Pattern, s), nil
	case rowbase.ModeGreater:
		return rowbase.CompareValues(search.BoundLayout().Fields[fieldIdx].DataType, value, search.Operand) > 0, nil
	case rowbase.ModeSmaller:
		return rowbase.CompareValues(search.BoundLayout().Fields[fieldIdx].DataType, value, search.Operand) < 0, nil
	case rowbase.ModeGreaterOrEqual:
		return rowbase.CompareValues(search.BoundLayout().Fields[fieldIdx].DataType, value, search.Operand) >= 0, nil
	case rowbase.ModeSmallerOrEqual:
		return rowbase.CompareValues(search.BoundLayout().Fields[fieldIdx].DataType, value, search.Operand) <= 0, nil
	case rowbase.ModeIn:
		for _, want := range search.Operands {
			if rowbase.ValuesEqual(value, want) {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, rowbase.NewSearchError("unsupported predicate mode in evaluator")
	}
}

func unionIDs(a, b []int64) []int64 {
	seen := make(map[int64]struct{}, len(a)+len(b))
	out := make([]int64, 0, len(a)+len(b))
	for _, id := range a {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	for _, id := range b {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

func intersectIDs(a, b []int64) []int64 {
	set := make(map[int64]struct{}, len(b))
	for _, id := range b {
		set[id] = struct{}{}
	}
	out := make([]int64, 0, len(a))
	for _, id := range a {
		if _, ok := set[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

func setDifference(universe, remove []int64) []int64 {
	set := make(map[int64]struct{}, len(remove))
	for _, id := range remove {
		set[id] = struct{}{}
	}
	out := make([]int64, 0, len(universe))
	for _, id := range universe {
		if _, ok := set[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
