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

// ReadTable decodes every row from r into a freshly built slice of Rows
// bound to layout, the inverse of WriteTable/WriteRows.
func ReadTable(layout *rowbase.RowLayout, r io.Reader, properties *Properties) ([]*rowbase.Row, error) {
	if properties == nil {
		properties = NewProperties()
	}
	if err := properties.Validate(); err != nil {
		return nil, err
	}

	decompressed, err := openReader(r, properties.Compression)
	if err != nil {
		return nil, rowbase.NewIoError("open decompression stream", err)
	}
	defer decompressed.Close()

	scanner := bufio.NewScanner(decompressed)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var rows []*rowbase.Row
	first := true
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" && !first {
			continue
		}
		if first && !properties.NoHeader {
			first = false
			continue
		}
		first = false

		row, err := RowFromString(properties, layout, line)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, rowbase.NewIoError("read textual codec stream", err)
	}
	return rows, nil
}

// RowFromString decodes one already-split line into a Row bound to layout,
// the inverse of RowToString.
func RowFromString(properties *Properties, layout *rowbase.RowLayout, line string) (*rowbase.Row, error) {
	if properties == nil {
		properties = NewProperties()
	}
	fields := splitFields(line, properties)
	if len(fields) != layout.FieldCount() {
		return nil, rowbase.NewSchemaError("textual codec: field count does not match layout")
	}

	values := make([]any, len(fields))
	for i, f := range layout.Fields {
		v, err := decodeField(properties, f, fields[i])
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return rowbase.NewRow(layout, values)
}

// splitFields tokenizes line on properties.Separator, treating any run
// that begins with the configured string marker as a quoted span in which
// separators don't terminate the field and a doubled marker does not end
// the span (standard CSV-style quoting). Fields are returned still escaped;
// decodeField unescapes them.
func splitFields(line string, properties *Properties) []string {
	var fields []string
	var cur strings.Builder
	runes := []rune(line)
	inQuotes := false

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case properties.HasStringMarker && r == properties.StringMarker:
			if inQuotes && i+1 < len(runes) && runes[i+1] == properties.StringMarker {
				cur.WriteRune(r)
				cur.WriteRune(r)
				i++
				continue
			}
			inQuotes = !inQuotes
			cur.WriteRune(r)
		case r == properties.Separator && !inQuotes:
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	fields = append(fields, cur.String())
	return fields
}

func decodeField(properties *Properties, f rowbase.FieldProperties, text string) (any, error) {
	if text == "" && !properties.SaveDefaultValues {
		return f.DataType.Zero(), nil
	}

	switch f.DataType {
	case rowbase.Bool:
		return strconv.ParseBool(text)
	case rowbase.Int8:
		n, err := strconv.ParseInt(text, 10, 8)
		return int8(n), err
	case rowbase.Int16:
		n, err := strconv.ParseInt(text, 10, 16)
		return int16(n), err
	case rowbase.Int32, rowbase.Enum:
		n, err := strconv.ParseInt(text, 10, 32)
		return int32(n), err
	case rowbase.Int64:
		return strconv.ParseInt(text, 10, 64)
	case rowbase.UInt8:
		n, err := strconv.ParseUint(text, 10, 8)
		return uint8(n), err
	case rowbase.UInt16:
		n, err := strconv.ParseUint(text, 10, 16)
		return uint16(n), err
	case rowbase.UInt32:
		n, err := strconv.ParseUint(text, 10, 32)
		return uint32(n), err
	case rowbase.UInt64:
		return strconv.ParseUint(text, 10, 64)
	case rowbase.Char:
		if text == "" {
			return byte(0), nil
		}
		n, err := strconv.ParseUint(text, 10, 8)
		return uint8(n), err
	case rowbase.Single:
		v, err := parseFloat(properties.Culture, text, 32)
		return float32(v), err
	case rowbase.Double, rowbase.Decimal:
		return parseFloat(properties.Culture, text, 64)
	case rowbase.TimeSpan:
		if text == "" {
			return time.Duration(0), nil
		}
		return time.ParseDuration(text)
	case rowbase.DateTime:
		if text == "" {
			return time.Time{}, nil
		}
		return time.Parse(properties.DateTimeFormat, text)
	case rowbase.String, rowbase.User:
		marker := byte(0)
		if properties.HasStringMarker {
			marker = byte(properties.StringMarker)
		}
		return rowbase.UnescapeString(text, marker), nil
	case rowbase.Binary:
		if text == "" {
			return []byte(nil), nil
		}
		return base64.StdEncoding.DecodeString(text)
	default:
		return nil, rowbase.NewSchemaError("textual codec: unsupported data type for decoding")
	}
}
