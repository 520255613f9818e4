package rowbase

import (
	"bytes"
	"reflect"
	"time"
)

var (
	zeroTime     = time.Time{}
	zeroDuration = time.Duration(0)
)

// ValuesEqual implements the default comparer used for Row equality and for
// index bucket membership. It recurses into byte slices (Binary) so two
// independently-allocated slices with the same content compare equal, and
// normalizes DateTime comparisons to UTC as required by spec §4.2.
func ValuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch av := a.(type) {
	case []byte:
		bv, ok := b.([]byte)
		return ok && bytes.Equal(av, bv)
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.UTC().Equal(bv.UTC())
	default:
		return reflect.DeepEqual(a, b)
	}
}

// CompareValues orders two values of the same declared DataType. It returns
// a negative number, zero, or a positive number the way bytes.Compare does.
// User values order as strings. Binary and other unlisted types support
// only equality: they compare as 0 when equal and 1 otherwise. Neither
// Search construction nor Bind rejects ordered comparisons on such fields.
func CompareValues(dt DataType, a, b any) int {
	switch dt {
	case Bool:
		av, bv := a.(bool), b.(bool)
		if av == bv {
			return 0
		}
		if !av && bv {
			return -1
		}
		return 1
	case Int8, Int16, Int32, Int64, Enum:
		av, bv := toInt64(a), toInt64(b)
		return cmpOrdered(av, bv)
	case UInt8, UInt16, UInt32, UInt64:
		av, bv := toUint64(a), toUint64(b)
		return cmpOrdered(av, bv)
	case Single, Double, Decimal:
		av, bv := toFloat64(a), toFloat64(b)
		return cmpOrdered(av, bv)
	case Char:
		av, bv := toUint64(a), toUint64(b)
		return cmpOrdered(av, bv)
	case String, User:
		av, _ := a.(string)
		bv, _ := b.(string)
		return cmpOrdered(av, bv)
	case DateTime:
		av, _ := a.(time.Time)
		bv, _ := b.(time.Time)
		switch {
		case av.UTC().Before(bv.UTC()):
			return -1
		case av.UTC().After(bv.UTC()):
			return 1
		default:
			return 0
		}
	case TimeSpan:
		av, _ := a.(time.Duration)
		bv, _ := b.(time.Duration)
		return cmpOrdered(av, bv)
	default:
		if ValuesEqual(a, b) {
			return 0
		}
		return 1
	}
}

type ordered interface {
	~int64 | ~uint64 | ~float64 | ~string
}

func cmpOrdered[T ordered](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	}
	return 0
}

func toUint64(v any) uint64 {
	switch n := v.(type) {
	case uint8:
		return uint64(n)
	case uint16:
		return uint64(n)
	case uint32:
		return uint64(n)
	case uint64:
		return n
	case uint:
		return uint64(n)
	}
	return 0
}

func toFloat64(v any) float64 {
	switch n := v.(type) {
	case float32:
		return float64(n)
	case float64:
		return n
	}
	return 0
}
