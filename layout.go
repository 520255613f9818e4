package rowbase

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var safeNameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// RowLayout is ordered field metadata describing a row shape, plus a table
// name and optional identifier-field index (spec §3).
type RowLayout struct {
	TableName string
	Fields    []FieldProperties
	idIndex   int // -1 when no ID field
	hostType  reflect.Type
	typed     bool
}

// FieldCount returns the number of fields in the layout.
func (l *RowLayout) FieldCount() int { return len(l.Fields) }

// IDIndex returns the index of the ID field, or -1 if none is declared.
func (l *RowLayout) IDIndex() int { return l.idIndex }

// Typed reports whether the layout is bound to a host Go struct type and so
// supports GetValues/SetValues.
func (l *RowLayout) Typed() bool { return l.typed }

// Equal implements the layout equality spec §3 requires: field counts
// match and each FieldProperties pair is equal, in order.
func (l *RowLayout) Equal(other *RowLayout) bool {
	if other == nil || len(l.Fields) != len(other.Fields) {
		return false
	}
	for i := range l.Fields {
		if !l.Fields[i].Equal(other.Fields[i]) {
			return false
		}
	}
	return true
}

// GetFieldIndex returns the field index for name, or -1 if not found.
// Lookup is case-sensitive on the primary name first, then falls through to
// each field's alternative-name list.
func (l *RowLayout) GetFieldIndex(name string) int {
	for i, f := range l.Fields {
		if f.Name == name {
			return i
		}
	}
	for i, f := range l.Fields {
		for _, alt := range f.AltNames {
			if alt == name {
				return i
			}
		}
	}
	return -1
}

// CreateUntyped builds a layout not bound to any host schema. Struct
// materialization operations (GetValues/SetValues) are unavailable on it.
// A field with no ValueType gets the Go type of its DataType's zero value.
func CreateUntyped(name string, fields ...FieldProperties) (*RowLayout, error) {
	filled := make([]FieldProperties, len(fields))
	copy(filled, fields)
	for i := range filled {
		if filled[i].ValueType == nil {
			filled[i].ValueType = reflect.TypeOf(filled[i].DataType.Zero())
		}
	}
	layout := &RowLayout{TableName: name, Fields: filled, typed: false}
	if err := validateLayout(layout); err != nil {
		return nil, err
	}
	return layout, nil
}

// rowTag is the parsed content of a `row:"..."` struct tag.
type rowTag struct {
	skip    bool
	name    string
	alts    []string
	typ     string
	flags   FieldFlag
	format  string
	disk    string
}

func parseRowTag(raw string) rowTag {
	var t rowTag
	if raw == "-" {
		t.skip = true
		return t
	}
	parts := strings.Split(raw, ",")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if i == 0 && !strings.Contains(p, "=") {
			t.name = p
			continue
		}
		kv := strings.SplitN(p, "=", 2)
		key := kv[0]
		val := ""
		if len(kv) == 2 {
			val = kv[1]
		}
		switch key {
		case "id":
			t.flags |= FlagID
		case "index":
			t.flags |= FlagIndex
		case "auto":
			t.flags |= FlagAutoIncrement
		case "unique":
			t.flags |= FlagUnique
		case "nullable":
			t.flags |= FlagNullable
		case "type":
			t.typ = val
		case "alt":
			t.alts = strings.Split(val, "|")
		case "format":
			t.format = val
		case "disk":
			t.disk = val
		}
	}
	return t
}

var goTypeToDataType = map[reflect.Kind]DataType{
	reflect.Bool:    Bool,
	reflect.Int8:    Int8,
	reflect.Int16:   Int16,
	reflect.Int32:   Int32,
	reflect.Int64:   Int64,
	reflect.Int:     Int64,
	reflect.Uint8:   UInt8,
	reflect.Uint16:  UInt16,
	reflect.Uint32:  UInt32,
	reflect.Uint64:  UInt64,
	reflect.Uint:    UInt64,
	reflect.Float32: Single,
	reflect.Float64: Double,
	reflect.String:  String,
}

var namedDataTypes = map[string]DataType{
	"bool": Bool, "int8": Int8, "int16": Int16, "int32": Int32, "int64": Int64,
	"uint8": UInt8, "uint16": UInt16, "uint32": UInt32, "uint64": UInt64,
	"char": Char, "single": Single, "double": Double, "decimal": Decimal,
	"string": String, "binary": Binary, "datetime": DateTime, "timespan": TimeSpan,
	"enum": Enum, "user": User,
}

var (
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
	bytesType    = reflect.TypeOf([]byte(nil))
)

func inferDataType(t reflect.Type, explicit string) (DataType, error) {
	if explicit != "" {
		dt, ok := namedDataTypes[strings.ToLower(explicit)]
		if !ok {
			return Unknown, NewSchemaError("unknown explicit data type: " + explicit)
		}
		return dt, nil
	}
	switch {
	case t == timeType:
		return DateTime, nil
	case t == durationType:
		return TimeSpan, nil
	case t == bytesType:
		return Binary, nil
	case t.Kind() == reflect.Ptr:
		return inferDataType(t.Elem(), explicit)
	}
	if dt, ok := goTypeToDataType[t.Kind()]; ok {
		return dt, nil
	}
	return Unknown, NewSchemaError("cannot infer DataType from field type " + t.String())
}

// CreateTyped derives a Layout from an annotated Go struct type. schema may
// be a struct value or pointer to struct; fails with SchemaError if schema
// is not a value-aggregate, if multiple ID fields are declared, if the
// table name is unsafe, or if a field's DataType cannot be inferred.
func CreateTyped(schema any, nameOverride string, excludedFields ...string) (*RowLayout, error) {
	t := reflect.TypeOf(schema)
	if t == nil {
		return nil, NewSchemaError("schema must not be nil")
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, NewSchemaError("schema must be a struct (value-aggregate)")
	}

	excluded := make(map[string]struct{}, len(excludedFields))
	for _, e := range excludedFields {
		excluded[e] = struct{}{}
	}

	name := nameOverride
	if name == "" {
		name = t.Name()
	}

	var fields []FieldProperties
	idSeen := false
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		if _, skip := excluded[sf.Name]; skip {
			continue
		}
		tag := parseRowTag(sf.Tag.Get("row"))
		if tag.skip {
			continue
		}
		fieldName := sf.Name
		if tag.name != "" {
			fieldName = tag.name
		}
		dt, err := inferDataType(sf.Type, tag.typ)
		if err != nil {
			return nil, err
		}
		if tag.flags.Has(FlagID) {
			if idSeen {
				return nil, NewSchemaError("layout declares more than one ID field")
			}
			idSeen = true
		}
		fields = append(fields, FieldProperties{
			Name:          fieldName,
			AltNames:      tag.alts,
			DataType:      dt,
			ValueType:     sf.Type,
			Flags:         tag.flags,
			DisplayFormat: tag.format,
			AltDiskName:   tag.disk,
		})
	}

	layout := &RowLayout{TableName: name, Fields: fields, hostType: t, typed: true}
	if err := validateLayout(layout); err != nil {
		return nil, err
	}
	return layout, nil
}

// CreateAlien builds a best-effort Layout from a schema without explicit
// field annotations, skipping array-typed fields.
func CreateAlien(schema any) (*RowLayout, error) {
	t := reflect.TypeOf(schema)
	if t == nil {
		return nil, NewSchemaError("schema must not be nil")
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, NewSchemaError("schema must be a struct (value-aggregate)")
	}

	var fields []FieldProperties
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		ft := sf.Type
		if ft.Kind() == reflect.Ptr {
			ft = ft.Elem()
		}
		if ft.Kind() == reflect.Slice && ft != bytesType {
			continue // array-typed fields are skipped in best-effort mode
		}
		if ft.Kind() == reflect.Array {
			continue
		}
		dt, err := inferDataType(sf.Type, "")
		if err != nil {
			continue // best-effort: silently skip fields we can't infer
		}
		fields = append(fields, FieldProperties{
			Name:      sf.Name,
			DataType:  dt,
			ValueType: sf.Type,
		})
	}

	layout := &RowLayout{TableName: t.Name(), Fields: fields, hostType: t, typed: true}
	if err := validateLayout(layout); err != nil {
		return nil, err
	}
	return layout, nil
}

func validateLayout(l *RowLayout) error {
	if !safeNameRe.MatchString(l.TableName) {
		return NewSchemaError("table name contains invalid characters: " + l.TableName)
	}
	idIdx := -1
	for i, f := range l.Fields {
		if f.Flags.Has(FlagID) {
			if idIdx != -1 {
				return NewSchemaError("layout declares more than one ID field")
			}
			idIdx = i
		}
	}
	l.idIndex = idIdx
	return nil
}

// GetID returns the identifier carried by row, or NoIdentifierField if the
// layout declares no ID field.
func (l *RowLayout) GetID(row *Row) (int64, error) {
	if l.idIndex < 0 {
		return 0, NoIdentifierField
	}
	v := row.Values[l.idIndex]
	if v == nil {
		return 0, nil
	}
	switch n := v.(type) {
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	case int:
		return int64(n), nil
	default:
		return 0, NewSchemaError("ID field is not an integer type")
	}
}

// GetValues marshals a host-schema record into a value slice ordered by the
// layout's fields. item must be a struct or pointer to struct of the
// layout's host type.
func (l *RowLayout) GetValues(item any) ([]any, error) {
	if !l.typed {
		return nil, NewInvalidOperationError("GetValues requires a typed layout")
	}
	v := reflect.ValueOf(item)
	for v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Type() != l.hostType {
		return nil, NewSchemaError("item type does not match layout host type")
	}

	values := make([]any, len(l.Fields))
	for i, f := range l.Fields {
		sf := hostField(v, f.Name)
		if !sf.IsValid() {
			values[i] = f.DataType.Zero()
			continue
		}
		values[i] = sf.Interface()
	}
	return values, nil
}

// SetValues marshals a value slice back into a host-schema record. item must
// be a pointer to a struct of the layout's host type.
func (l *RowLayout) SetValues(item any, values []any) error {
	if !l.typed {
		return NewInvalidOperationError("SetValues requires a typed layout")
	}
	if len(values) != len(l.Fields) {
		return NewSchemaError("value count does not match field count")
	}
	v := reflect.ValueOf(item)
	if v.Kind() != reflect.Ptr || v.Elem().Type() != l.hostType {
		return NewSchemaError("item must be a pointer to the layout's host type")
	}
	v = v.Elem()

	for i, f := range l.Fields {
		sf := hostField(v, f.Name)
		if !sf.IsValid() || !sf.CanSet() {
			continue
		}
		coerced, err := coerceValue(values[i], sf.Type())
		if err != nil {
			return NewSchemaError("field " + f.Name + ": " + err.Error())
		}
		sf.Set(reflect.ValueOf(coerced))
	}
	return nil
}

// hostField returns the struct field of v backing the layout field name:
// the field whose row tag names it, or else the Go field of that name.
func hostField(v reflect.Value, name string) reflect.Value {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if tag := parseRowTag(t.Field(i).Tag.Get("row")); !tag.skip && tag.name == name {
			return v.Field(i)
		}
	}
	return v.FieldByName(name)
}

// coerceValue widens/narrows a raw value to the host field's Go type using
// Go's value conversion rules only (reflect ConvertibleTo); it does not
// resolve enum names or parse strings into other types.
func coerceValue(val any, target reflect.Type) (any, error) {
	if val == nil {
		return reflect.Zero(target).Interface(), nil
	}
	rv := reflect.ValueOf(val)
	if rv.Type() == target {
		return val, nil
	}
	if rv.Type().ConvertibleTo(target) {
		return rv.Convert(target).Interface(), nil
	}
	return nil, NewSchemaError("cannot coerce " + rv.Type().String() + " to " + target.String())
}

// ParseValue parses text into the declared ValueType of the field at
// fieldIdx, the inverse of the textual codec's encoding (spec §4.5.1).
// culture is not applied: floating-point text must use a period as the
// decimal separator, and DateTime text must be RFC 3339.
func (l *RowLayout) ParseValue(fieldIdx int, text string, stringMarker byte, culture string) (any, error) {
	if fieldIdx < 0 || fieldIdx >= len(l.Fields) {
		return nil, NewSchemaError("field index out of range")
	}
	f := l.Fields[fieldIdx]
	if text == "" {
		return f.DataType.Zero(), nil
	}

	switch f.DataType {
	case Bool:
		return strconv.ParseBool(text)
	case Int8:
		n, err := strconv.ParseInt(text, 10, 8)
		return int8(n), err
	case Int16:
		n, err := strconv.ParseInt(text, 10, 16)
		return int16(n), err
	case Int32, Enum:
		n, err := strconv.ParseInt(text, 10, 32)
		return int32(n), err
	case Int64:
		return strconv.ParseInt(text, 10, 64)
	case UInt8:
		n, err := strconv.ParseUint(text, 10, 8)
		return uint8(n), err
	case UInt16:
		n, err := strconv.ParseUint(text, 10, 16)
		return uint16(n), err
	case UInt32:
		n, err := strconv.ParseUint(text, 10, 32)
		return uint32(n), err
	case UInt64:
		return strconv.ParseUint(text, 10, 64)
	case Char:
		n, err := strconv.ParseUint(text, 10, 8)
		return byte(n), err
	case Single:
		n, err := strconv.ParseFloat(text, 32)
		return float32(n), err
	case Double, Decimal:
		return strconv.ParseFloat(text, 64)
	case String, User:
		return unescapeString(text, stringMarker), nil
	case Binary:
		return parseBase64(text)
	case DateTime:
		return time.Parse(time.RFC3339Nano, text)
	case TimeSpan:
		return time.ParseDuration(text)
	default:
		return nil, NewSchemaError("unsupported data type for ParseValue")
	}
}
