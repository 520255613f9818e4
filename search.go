package rowbase

import (
	"reflect"
	"strings"
)

// Mode is the predicate kind carried by a Search node.
type Mode int

const (
	ModeNone Mode = iota
	ModeAnd
	ModeOr
	ModeEquals
	ModeLike
	ModeGreater
	ModeSmaller
	ModeGreaterOrEqual
	ModeSmallerOrEqual
	ModeIn
)

// Search is an immutable predicate tree (spec §4.2). The zero value (Mode
// ModeNone) is the identity under And and Or.
type Search struct {
	Mode     Mode
	Negate   bool
	Field    string
	Operand  any   // comparand for Equals/Like/Greater/Smaller/...
	Operands []any // comparand set for In
	Pattern  string
	Left     *Search
	Right    *Search

	// bound state, populated on first Bind
	fieldIdx int
	layout   *RowLayout
	bound    bool
}

// None is the identity predicate: it matches every row.
var None = &Search{Mode: ModeNone}

// FieldIndex returns the resolved field index after Bind; valid only when
// IsBound reports true.
func (s *Search) FieldIndex() int { return s.fieldIdx }

// IsBound reports whether Bind has resolved this node against a layout.
func (s *Search) IsBound() bool { return s.bound }

// BoundLayout returns the layout this node was bound to, or nil.
func (s *Search) BoundLayout() *RowLayout { return s.layout }

// Not inverts s. Inverting None is an error (spec §4.2: "!None is an
// error").
func (s *Search) Not() (*Search, error) {
	if s.Mode == ModeNone {
		return nil, NewSearchError("cannot invert the empty predicate")
	}
	return &Search{Mode: s.Mode, Negate: !s.Negate, Field: s.Field, Operand: s.Operand,
		Operands: s.Operands, Pattern: s.Pattern, Left: s.Left, Right: s.Right}, nil
}

// And combines s with other; None is the identity and short-circuits.
func (s *Search) And(other *Search) *Search {
	if s.Mode == ModeNone {
		return other
	}
	if other.Mode == ModeNone {
		return s
	}
	return &Search{Mode: ModeAnd, Left: s, Right: other}
}

// Or combines s with other; None is the identity and short-circuits.
func (s *Search) Or(other *Search) *Search {
	if s.Mode == ModeNone {
		return other
	}
	if other.Mode == ModeNone {
		return s
	}
	return &Search{Mode: ModeOr, Left: s, Right: other}
}

// Equals builds a leaf equality predicate against field.
func Equals(field string, value any) *Search {
	return &Search{Mode: ModeEquals, Field: field, Operand: value}
}

// Like builds a leaf wildcard predicate. '%' matches zero-or-more
// characters, '_' matches exactly one. Consecutive '%' are collapsed.
func Like(field, pattern string) *Search {
	return &Search{Mode: ModeLike, Field: field, Pattern: normalizeLikePattern(pattern)}
}

// Greater, Smaller, GreaterOrEqual, SmallerOrEqual build ordered comparison leaves.
func Greater(field string, value any) *Search {
	return &Search{Mode: ModeGreater, Field: field, Operand: value}
}

func Smaller(field string, value any) *Search {
	return &Search{Mode: ModeSmaller, Field: field, Operand: value}
}

func GreaterOrEqual(field string, value any) *Search {
	return &Search{Mode: ModeGreaterOrEqual, Field: field, Operand: value}
}

func SmallerOrEqual(field string, value any) *Search {
	return &Search{Mode: ModeSmallerOrEqual, Field: field, Operand: value}
}

// In builds a leaf membership predicate against a set of comparands.
func In(field string, values ...any) *Search {
	return &Search{Mode: ModeIn, Field: field, Operands: values}
}

func normalizeLikePattern(pattern string) string {
	var b strings.Builder
	var lastPercent bool
	for _, r := range pattern {
		if r == '%' {
			if lastPercent {
				continue
			}
			lastPercent = true
		} else {
			lastPercent = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Bind resolves field names to indices and converts comparands to the
// layout's declared ValueType. Re-binding to a different layout fails with
// LayoutMismatch. DateTime comparands keep their location; ValuesEqual and
// CompareValues compare them in UTC.
func (s *Search) Bind(layout *RowLayout) (*Search, error) {
	if s.Mode == ModeNone {
		return s, nil
	}
	if s.bound {
		if !s.layout.Equal(layout) {
			return nil, NewLayoutMismatchError("search already bound to a different layout")
		}
		return s, nil
	}

	bound := &Search{Mode: s.Mode, Negate: s.Negate, Field: s.Field, Pattern: s.Pattern}
	switch s.Mode {
	case ModeAnd, ModeOr:
		left, err := s.Left.Bind(layout)
		if err != nil {
			return nil, err
		}
		right, err := s.Right.Bind(layout)
		if err != nil {
			return nil, err
		}
		bound.Left, bound.Right = left, right
	default:
		idx := layout.GetFieldIndex(s.Field)
		if idx < 0 {
			return nil, NewSearchError("unknown field in search: " + s.Field)
		}
		bound.fieldIdx = idx
		bound.layout = layout
		bound.bound = true
		dt := layout.Fields[idx].DataType

		if s.Mode == ModeIn {
			operands := make([]any, len(s.Operands))
			for i, v := range s.Operands {
				conv, err := convertComparand(dt, v)
				if err != nil {
					return nil, err
				}
				operands[i] = conv
			}
			bound.Operands = operands
		} else if s.Mode != ModeLike {
			conv, err := convertComparand(dt, s.Operand)
			if err != nil {
				return nil, err
			}
			bound.Operand = conv
		}
	}
	bound.layout = layout
	bound.bound = true
	return bound, nil
}

// dataTypeGoType gives the canonical Go representation for a DataType, used
// to coerce a raw comparand into the field's declared ValueType at bind
// time (the same small conversion matrix CreateTyped uses).
var dataTypeGoType = map[DataType]reflect.Type{
	Bool:     reflect.TypeOf(false),
	Int8:     reflect.TypeOf(int8(0)),
	Int16:    reflect.TypeOf(int16(0)),
	Int32:    reflect.TypeOf(int32(0)),
	Int64:    reflect.TypeOf(int64(0)),
	UInt8:    reflect.TypeOf(uint8(0)),
	UInt16:   reflect.TypeOf(uint16(0)),
	UInt32:   reflect.TypeOf(uint32(0)),
	UInt64:   reflect.TypeOf(uint64(0)),
	Char:     reflect.TypeOf(byte(0)),
	Single:   reflect.TypeOf(float32(0)),
	Double:   reflect.TypeOf(float64(0)),
	Decimal:  reflect.TypeOf(float64(0)),
	String:   reflect.TypeOf(""),
	Binary:   bytesType,
	DateTime: timeType,
	TimeSpan: durationType,
	Enum:     reflect.TypeOf(int32(0)),
}

func convertComparand(dt DataType, v any) (any, error) {
	target, ok := dataTypeGoType[dt]
	if !ok {
		// User/Unknown types carry their own ValueType; accept as-is.
		return v, nil
	}
	coerced, err := coerceValue(v, target)
	if err != nil {
		return nil, NewSearchError(err.Error())
	}
	return coerced, nil
}
