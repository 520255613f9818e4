package text

import (
	"bufio"
	"encoding/base64"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/lychee-technology/rowbase"
)

// WriteTable encodes every row currently in table through w, honoring
// properties (spec §6's textual CSV surface).
func WriteTable(table rowbase.Table, w io.Writer, properties *Properties) error {
	rows, err := table.Find(nil, nil)
	if err != nil {
		return err
	}
	return writeRows(table.Layout(), rows, w, properties)
}

// WriteRows encodes rows (already materialized as *rowbase.Row) through w.
// The generic spec surface WriteRows<T> is realized here against Row
// rather than an arbitrary host struct: callers with typed records should
// convert via rowbase.NewRowFromStruct first.
func WriteRows(layout *rowbase.RowLayout, rows []*rowbase.Row, w io.Writer, properties *Properties) error {
	return writeRows(layout, rows, w, properties)
}

func writeRows(layout *rowbase.RowLayout, rows []*rowbase.Row, w io.Writer, properties *Properties) error {
	if properties == nil {
		properties = NewProperties()
	}
	if err := properties.Validate(); err != nil {
		return err
	}

	compressed, err := openWriter(w, properties.Compression)
	if err != nil {
		return rowbase.NewIoError("open compression stream", err)
	}
	defer compressed.Close()

	bw := bufio.NewWriter(compressed)
	defer bw.Flush()

	if !properties.NoHeader {
		if err := writeHeader(layout, bw, properties); err != nil {
			return err
		}
	}
	for _, row := range rows {
		line, err := RowToString(properties, layout, row)
		if err != nil {
			return err
		}
		if _, err := bw.WriteString(line); err != nil {
			return rowbase.NewIoError("write row", err)
		}
		if _, err := bw.WriteString(properties.newline()); err != nil {
			return rowbase.NewIoError("write row terminator", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return rowbase.NewIoError("flush textual codec buffer", err)
	}
	return nil
}

func writeHeader(layout *rowbase.RowLayout, bw *bufio.Writer, properties *Properties) error {
	var b strings.Builder
	for i, f := range layout.Fields {
		if i > 0 {
			b.WriteRune(properties.Separator)
		}
		b.WriteString(quoteIfNeeded(f.Name, properties))
	}
	if _, err := bw.WriteString(b.String()); err != nil {
		return rowbase.NewIoError("write header", err)
	}
	_, err := bw.WriteString(properties.newline())
	if err != nil {
		return rowbase.NewIoError("write header terminator", err)
	}
	return nil
}

func quoteIfNeeded(s string, properties *Properties) string {
	if !properties.HasStringMarker {
		return s
	}
	marker := string(properties.StringMarker)
	if strings.ContainsRune(s, properties.StringMarker) || strings.ContainsRune(s, properties.Separator) {
		return marker + strings.ReplaceAll(s, marker, marker+marker) + marker
	}
	return s
}

// RowToString renders one row as a single encoded line (no terminator),
// applying the per-field rules of spec §4.5.1.
func RowToString(properties *Properties, layout *rowbase.RowLayout, row *rowbase.Row) (string, error) {
	if properties == nil {
		properties = NewProperties()
	}
	if err := properties.Validate(); err != nil {
		return "", err
	}

	var b strings.Builder
	for i, f := range layout.Fields {
		if i > 0 {
			b.WriteRune(properties.Separator)
		}
		encoded, err := encodeField(properties, f, row.Values[i])
		if err != nil {
			return "", err
		}
		b.WriteString(encoded)
	}
	return b.String(), nil
}

func encodeField(properties *Properties, f rowbase.FieldProperties, v any) (string, error) {
	if !properties.SaveDefaultValues && rowbase.ValuesEqual(v, f.DataType.Zero()) {
		return "", nil
	}

	switch f.DataType {
	case rowbase.Bool:
		b, _ := v.(bool)
		return strconv.FormatBool(b), nil
	case rowbase.Int8, rowbase.Int16, rowbase.Int32, rowbase.Int64, rowbase.Enum,
		rowbase.UInt8, rowbase.UInt16, rowbase.UInt32, rowbase.UInt64, rowbase.Char:
		return formatIntLike(f.DataType, v), nil
	case rowbase.Single:
		f32, _ := v.(float32)
		return formatFloat(properties.Culture, float64(f32), 32), nil
	case rowbase.Double, rowbase.Decimal:
		f64, _ := v.(float64)
		return formatFloat(properties.Culture, f64, 64), nil
	case rowbase.TimeSpan:
		d, _ := v.(time.Duration)
		return d.String(), nil
	case rowbase.DateTime:
		t, _ := v.(time.Time)
		return t.UTC().Format(properties.DateTimeFormat), nil
	case rowbase.String, rowbase.User:
		s, _ := v.(string)
		marker := byte(0)
		if properties.HasStringMarker {
			marker = byte(properties.StringMarker)
		}
		return rowbase.EscapeString(s, marker), nil
	case rowbase.Binary:
		b, _ := v.([]byte)
		return base64.StdEncoding.EncodeToString(b), nil
	default:
		return "", rowbase.NewSchemaError("textual codec: unsupported data type for encoding")
	}
}

func formatIntLike(dt rowbase.DataType, v any) string {
	switch n := v.(type) {
	case int8:
		return strconv.FormatInt(int64(n), 10)
	case int16:
		return strconv.FormatInt(int64(n), 10)
	case int32:
		return strconv.FormatInt(int64(n), 10)
	case int64:
		return strconv.FormatInt(n, 10)
	case uint8:
		return strconv.FormatUint(uint64(n), 10)
	case uint16:
		return strconv.FormatUint(uint64(n), 10)
	case uint32:
		return strconv.FormatUint(uint64(n), 10)
	case uint64:
		return strconv.FormatUint(n, 10)
	default:
		return "0"
	}
}

