package dat

import (
	"bufio"
	"io"
	"reflect"
	"time"

	"github.com/lychee-technology/rowbase"
)

// AdjustFieldFunc lets a caller tolerate benign rename or
// display-format-only differences between the layout on disk and the
// layout it expects, before CheckLayout runs (spec §4.5.2).
type AdjustFieldFunc func(onDisk rowbase.FieldProperties) rowbase.FieldProperties

// Reader streams rows out of a dat stream lazily.
type Reader struct {
	br      *bufio.Reader
	base    io.Closer
	version uint8
	layout  *rowbase.RowLayout
	done    bool
}

// NewReader opens r, reading the version byte and self-describing layout
// header immediately; both are available via Version/Layout before the
// first row is read.
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReader(r)
	versionByte, err := br.ReadByte()
	if err != nil {
		return nil, rowbase.NewIoError("read dat version", err)
	}
	if !KnownVersions[versionByte] {
		return nil, rowbase.NewIoError("unsupported dat version", nil).WithDetail("version", versionByte)
	}

	layout, err := readLayoutHeader(br)
	if err != nil {
		return nil, err
	}

	reader := &Reader{br: br, version: versionByte, layout: layout}
	if closer, ok := r.(io.Closer); ok {
		reader.base = closer
	}
	return reader, nil
}

// Version returns the dat format version the stream was written with.
func (r *Reader) Version() uint8 { return r.version }

// Layout returns the layout read from the stream's self-describing header.
func (r *Reader) Layout() *rowbase.RowLayout { return r.layout }

// CheckLayout validates that r's on-disk layout is compatible with
// expected. adjust, if non-nil, is applied to each on-disk field before
// comparison, to tolerate benign rename/display-format differences.
func (r *Reader) CheckLayout(expected *rowbase.RowLayout, adjust AdjustFieldFunc) error {
	actual := r.layout
	if adjust != nil {
		adjusted := make([]rowbase.FieldProperties, len(actual.Fields))
		for i, f := range actual.Fields {
			adjusted[i] = adjust(f)
		}
		var err error
		actual, err = rowbase.CreateUntyped(actual.TableName, adjusted...)
		if err != nil {
			return err
		}
	}
	if !expected.Equal(actual) {
		return rowbase.NewLayoutMismatchError("dat codec: on-disk layout does not match expected layout")
	}
	return nil
}

// ReadRow reads the next row, or (nil, nil) at end-of-stream. The row is
// always decoded against and bound to r.Layout(); checkLayout is ignored.
func (r *Reader) ReadRow(checkLayout bool) (*rowbase.Row, error) {
	if r.done {
		return nil, nil
	}
	_ = checkLayout // the reader always frames rows against its own on-disk layout; this flag exists for API symmetry with the spec's readRow(layout, checkLayout) surface.

	values := make([]any, r.layout.FieldCount())
	for i, f := range r.layout.Fields {
		v, err := readValue(r.br, f.DataType)
		if err != nil {
			if err == io.EOF && i == 0 {
				r.done = true
				return nil, nil
			}
			return nil, rowbase.NewIoError("read dat row field "+f.Name, err)
		}
		values[i] = v
	}
	return rowbase.NewRow(r.layout, values)
}

// Rows drains every remaining row eagerly into a slice.
func (r *Reader) Rows() ([]*rowbase.Row, error) {
	var rows []*rowbase.Row
	for {
		row, err := r.ReadRow(true)
		if err != nil {
			return nil, err
		}
		if row == nil {
			return rows, nil
		}
		rows = append(rows, row)
	}
}

// Close closes the underlying stream if it implements io.Closer.
func (r *Reader) Close() error {
	if r.base != nil {
		return r.base.Close()
	}
	return nil
}

func readLayoutHeader(br *bufio.Reader) (*rowbase.RowLayout, error) {
	fieldCount, err := readVarint(br)
	if err != nil {
		return nil, rowbase.NewIoError("read dat field count", err)
	}
	tableName, err := readString(br)
	if err != nil {
		return nil, rowbase.NewIoError("read dat table name", err)
	}

	fields := make([]rowbase.FieldProperties, 0, fieldCount)
	for i := int64(0); i < fieldCount; i++ {
		f, err := readFieldHeader(br)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return rowbase.CreateUntyped(tableName, fields...)
}

func readFieldHeader(br *bufio.Reader) (rowbase.FieldProperties, error) {
	name, err := readString(br)
	if err != nil {
		return rowbase.FieldProperties{}, rowbase.NewIoError("read dat field name", err)
	}
	codeByte, err := br.ReadByte()
	if err != nil {
		return rowbase.FieldProperties{}, rowbase.NewIoError("read dat field type", err)
	}
	dt, ok := codeToDataType[fieldTypeCode(codeByte)]
	if !ok {
		return rowbase.FieldProperties{}, rowbase.NewSchemaError("dat codec: unknown on-disk field type code")
	}
	flagsRaw, err := readFixed(br, 1)
	if err != nil {
		return rowbase.FieldProperties{}, rowbase.NewIoError("read dat field flags", err)
	}

	altCount, err := readVarint(br)
	if err != nil {
		return rowbase.FieldProperties{}, rowbase.NewIoError("read dat field alt-name count", err)
	}
	alts := make([]string, 0, altCount)
	for i := int64(0); i < altCount; i++ {
		alt, err := readString(br)
		if err != nil {
			return rowbase.FieldProperties{}, rowbase.NewIoError("read dat field alt name", err)
		}
		alts = append(alts, alt)
	}

	displayFormat, err := readString(br)
	if err != nil {
		return rowbase.FieldProperties{}, rowbase.NewIoError("read dat field display format", err)
	}
	altDiskName, err := readString(br)
	if err != nil {
		return rowbase.FieldProperties{}, rowbase.NewIoError("read dat field alt disk name", err)
	}

	return rowbase.FieldProperties{
		Name:          name,
		AltNames:      alts,
		DataType:      dt,
		ValueType:     valueTypeFor(dt),
		Flags:         fieldFlagsMask(flagsRaw),
		DisplayFormat: displayFormat,
		AltDiskName:   altDiskName,
	}, nil
}

var (
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
)

func valueTypeFor(dt rowbase.DataType) reflect.Type {
	switch dt {
	case rowbase.DateTime:
		return timeType
	case rowbase.TimeSpan:
		return durationType
	default:
		return reflect.TypeOf(dt.Zero())
	}
}
