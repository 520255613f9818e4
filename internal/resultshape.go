package internal

import (
	"sort"

	"github.com/lychee-technology/rowbase"
)

// ApplyResultOption shapes rows per opts: Group first (first-encountered
// wins, insertion order preserved), then Sort (declared order, last clause
// is primary — implemented as a stable left-to-right fold), then
// Offset/Limit (spec §4.2).
func ApplyResultOption(rows []*rowbase.Row, layout *rowbase.RowLayout, opts *rowbase.ResultOption) ([]*rowbase.Row, error) {
	if opts == nil {
		return rows, nil
	}

	shaped := rows
	if opts.HasGroup() {
		grouped, err := groupRows(shaped, layout, opts.GroupField())
		if err != nil {
			return nil, err
		}
		shaped = grouped
	}

	shaped = sortRows(shaped, layout, opts.Sorts())

	if offset, ok := opts.OffsetValue(); ok {
		if offset < 0 {
			offset = 0
		}
		if offset >= len(shaped) {
			shaped = nil
		} else {
			shaped = shaped[offset:]
		}
	}
	if limit, ok := opts.LimitValue(); ok {
		if limit < len(shaped) {
			shaped = shaped[:limit]
		}
	}
	return shaped, nil
}

func groupRows(rows []*rowbase.Row, layout *rowbase.RowLayout, field string) ([]*rowbase.Row, error) {
	idx := layout.GetFieldIndex(field)
	if idx < 0 {
		return nil, rowbase.NewInvalidResultOptionError("Group references unknown field: " + field)
	}
	seen := make([]any, 0, len(rows))
	out := make([]*rowbase.Row, 0, len(rows))
	for _, row := range rows {
		v := row.Values[idx]
		dup := false
		for _, s := range seen {
			if rowbase.ValuesEqual(s, v) {
				dup = true
				break
			}
		}
		if !dup {
			seen = append(seen, v)
			out = append(out, row)
		}
	}
	return out, nil
}

// sortRows applies each declared clause as a stable sort, folding
// left-to-right so the last declared clause ends up the primary key: each
// later stable sort takes priority over the previous one, while ties within
// that later sort still resolve according to the order already established.
func sortRows(rows []*rowbase.Row, layout *rowbase.RowLayout, clauses []rowbase.SortClause) []*rowbase.Row {
	if len(clauses) == 0 {
		return rows
	}
	out := append([]*rowbase.Row(nil), rows...)
	for i := 0; i < len(clauses); i++ {
		clause := clauses[i]
		idx := layout.GetFieldIndex(clause.Field)
		if idx < 0 {
			continue
		}
		dt := layout.Fields[idx].DataType
		sort.SliceStable(out, func(a, b int) bool {
			cmp := rowbase.CompareValues(dt, out[a].Values[idx], out[b].Values[idx])
			if clause.Asc {
				return cmp < 0
			}
			return cmp > 0
		})
	}
	return out
}
