package rowbase

import "fmt"

// DataType is the closed enumeration of value kinds a Row slot may hold.
type DataType int

const (
	Unknown DataType = iota
	Bool
	Int8
	Int16
	Int32
	Int64
	UInt8
	UInt16
	UInt32
	UInt64
	Char
	Single
	Double
	Decimal
	String
	Binary
	DateTime
	TimeSpan
	Enum
	User
)

var dataTypeNames = map[DataType]string{
	Unknown:  "Unknown",
	Bool:     "Bool",
	Int8:     "Int8",
	Int16:    "Int16",
	Int32:    "Int32",
	Int64:    "Int64",
	UInt8:    "UInt8",
	UInt16:   "UInt16",
	UInt32:   "UInt32",
	UInt64:   "UInt64",
	Char:     "Char",
	Single:   "Single",
	Double:   "Double",
	Decimal:  "Decimal",
	String:   "String",
	Binary:   "Binary",
	DateTime: "DateTime",
	TimeSpan: "TimeSpan",
	Enum:     "Enum",
	User:     "User",
}

func (dt DataType) String() string {
	if name, ok := dataTypeNames[dt]; ok {
		return name
	}
	return fmt.Sprintf("DataType(%d)", int(dt))
}

// IsNumeric reports whether dt is one of the integer or floating-point kinds.
func (dt DataType) IsNumeric() bool {
	switch dt {
	case Int8, Int16, Int32, Int64, UInt8, UInt16, UInt32, UInt64, Single, Double, Decimal:
		return true
	default:
		return false
	}
}

// IsSumCompatible reports whether values of dt may be combined with the
// aggregate sum operator. Strings, binary blobs and datetimes are not.
func (dt DataType) IsSumCompatible() bool {
	switch dt {
	case Int8, Int16, Int32, Int64, UInt8, UInt16, UInt32, UInt64, Single, Double, Decimal, TimeSpan:
		return true
	default:
		return false
	}
}

// Zero returns the canonical default (zero-element) value for dt, used by
// codecs when saveDefaults is false and by auto-generated field values.
func (dt DataType) Zero() any {
	switch dt {
	case Bool:
		return false
	case Int8:
		return int8(0)
	case Int16:
		return int16(0)
	case Int32:
		return int32(0)
	case Int64:
		return int64(0)
	case UInt8:
		return uint8(0)
	case UInt16:
		return uint16(0)
	case UInt32:
		return uint32(0)
	case UInt64:
		return uint64(0)
	case Char:
		return byte(0)
	case Single:
		return float32(0)
	case Double:
		return float64(0)
	case Decimal:
		return float64(0)
	case String:
		return ""
	case Binary:
		return []byte(nil)
	case DateTime:
		return zeroTime
	case TimeSpan:
		return zeroDuration
	case Enum:
		return int32(0)
	case User, Unknown:
		return nil
	default:
		return nil
	}
}
