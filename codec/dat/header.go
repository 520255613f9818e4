// Package dat implements the binary "dat" row codec (spec §4.5.2): a
// version byte, a self-describing layout header, then a sequence of row
// records. A record is the row's field values in layout order with no
// length prefix, so a reader cannot skip bytes it does not understand.
package dat

import (
	"github.com/lychee-technology/rowbase"
)

// CurrentVersion is the version this writer stamps onto every file it
// produces. Readers accept every version in KnownVersions.
const CurrentVersion uint8 = 1

// KnownVersions lists every version this reader understands. A reader
// encountering a version outside this set fails immediately rather than
// guessing at a layout it cannot frame correctly.
var KnownVersions = map[uint8]bool{1: true}

// fieldTypeCode is the on-disk tag for a FieldProperties' DataType. It is
// deliberately independent from rowbase.DataType's int values so the wire
// format doesn't silently shift if the Go enum is reordered.
type fieldTypeCode uint8

const (
	codeBool fieldTypeCode = iota
	codeInt8
	codeInt16
	codeInt32
	codeInt64
	codeUInt8
	codeUInt16
	codeUInt32
	codeUInt64
	codeChar
	codeSingle
	codeDouble
	codeDecimal
	codeString
	codeBinary
	codeDateTime
	codeTimeSpan
	codeEnum
	codeUser
	codeUnknown
)

var dataTypeToCode = map[rowbase.DataType]fieldTypeCode{
	rowbase.Bool:     codeBool,
	rowbase.Int8:     codeInt8,
	rowbase.Int16:    codeInt16,
	rowbase.Int32:    codeInt32,
	rowbase.Int64:    codeInt64,
	rowbase.UInt8:    codeUInt8,
	rowbase.UInt16:   codeUInt16,
	rowbase.UInt32:   codeUInt32,
	rowbase.UInt64:   codeUInt64,
	rowbase.Char:     codeChar,
	rowbase.Single:   codeSingle,
	rowbase.Double:   codeDouble,
	rowbase.Decimal:  codeDecimal,
	rowbase.String:   codeString,
	rowbase.Binary:   codeBinary,
	rowbase.DateTime: codeDateTime,
	rowbase.TimeSpan: codeTimeSpan,
	rowbase.Enum:     codeEnum,
	rowbase.User:     codeUser,
	rowbase.Unknown:  codeUnknown,
}

var codeToDataType = func() map[fieldTypeCode]rowbase.DataType {
	out := make(map[fieldTypeCode]rowbase.DataType, len(dataTypeToCode))
	for dt, code := range dataTypeToCode {
		out[code] = dt
	}
	return out
}()

// fieldFlagsMask is the bit layout persisted for FieldProperties.Flags; it
// mirrors rowbase.FieldFlag directly since that type is itself a stable
// on-disk-shaped bitset.
type fieldFlagsMask = rowbase.FieldFlag
