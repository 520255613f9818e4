package rowbase

import "reflect"

// FieldFlag is a bit in the Flags set carried by FieldProperties.
type FieldFlag uint8

const (
	FlagID FieldFlag = 1 << iota
	FlagIndex
	FlagAutoIncrement
	FlagUnique
	FlagNullable
)

func (f FieldFlag) Has(bit FieldFlag) bool { return f&bit != 0 }

// Display format tags carried in FieldProperties.DisplayFormat (spec §4.1).
// The codecs store them but do not change their encoding because of them.
const (
	FormatTimeSpan      = "FormatTimeSpan"
	FormatValue         = "FormatValue"
	FormatBinaryValue   = "FormatBinaryValue"
)

// FieldProperties is the metadata for one column.
type FieldProperties struct {
	Name          string
	AltNames      []string
	DataType      DataType
	ValueType     reflect.Type
	Flags         FieldFlag
	DisplayFormat string
	AltDiskName   string
}

// Equal implements the structural equality spec §3 requires: (Name,
// DataType, Flags, ValueType) must match; alternative names and display
// format are metadata, not identity.
func (f FieldProperties) Equal(other FieldProperties) bool {
	return f.Name == other.Name &&
		f.DataType == other.DataType &&
		f.Flags == other.Flags &&
		f.ValueType == other.ValueType
}

func (f FieldProperties) hasName(name string) bool {
	if f.Name == name {
		return true
	}
	for _, alt := range f.AltNames {
		if alt == name {
			return true
		}
	}
	return false
}

// diskName returns AltDiskName, falling back to Name when no alternate disk
// name is configured. The dat codec header stores Name and AltDiskName
// separately and does not call it.
func (f FieldProperties) diskName() string {
	if f.AltDiskName != "" {
		return f.AltDiskName
	}
	return f.Name
}
