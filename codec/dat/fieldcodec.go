package dat

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"time"

	"github.com/lychee-technology/rowbase"
)

func writeVarint(w *bufio.Writer, n int64) error {
	var buf [binary.MaxVarintLen64]byte
	k := binary.PutVarint(buf[:], n)
	_, err := w.Write(buf[:k])
	return err
}

func readVarint(r io.ByteReader) (int64, error) {
	return binary.ReadVarint(r)
}

func writeString(w *bufio.Writer, s string) error {
	if err := writeVarint(w, int64(len(s))); err != nil {
		return err
	}
	_, err := w.WriteString(s)
	return err
}

func readString(r *bufio.Reader) (string, error) {
	n, err := readVarint(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func writeBytes(w *bufio.Writer, b []byte) error {
	if err := writeVarint(w, int64(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func readBytes(r *bufio.Reader) ([]byte, error) {
	n, err := readVarint(r)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// writeValue encodes one row value in its fixed- or length-prefixed binary
// form (spec §4.5.2: fixed-width integers/floats, length-prefixed
// strings/binary, ticks-based time types).
func writeValue(w *bufio.Writer, dt rowbase.DataType, v any) error {
	switch dt {
	case rowbase.Bool:
		b, _ := v.(bool)
		val := byte(0)
		if b {
			val = 1
		}
		return w.WriteByte(val)
	case rowbase.Int8:
		n, _ := v.(int8)
		return w.WriteByte(byte(n))
	case rowbase.UInt8:
		n, _ := v.(uint8)
		return w.WriteByte(n)
	case rowbase.Char:
		n, _ := v.(byte)
		return w.WriteByte(n)
	case rowbase.Int16:
		n, _ := v.(int16)
		return writeFixed(w, uint64(uint16(n)), 2)
	case rowbase.UInt16:
		n, _ := v.(uint16)
		return writeFixed(w, uint64(n), 2)
	case rowbase.Int32, rowbase.Enum:
		n, _ := v.(int32)
		return writeFixed(w, uint64(uint32(n)), 4)
	case rowbase.UInt32:
		n, _ := v.(uint32)
		return writeFixed(w, uint64(n), 4)
	case rowbase.Int64:
		n, _ := v.(int64)
		return writeFixed(w, uint64(n), 8)
	case rowbase.UInt64:
		n, _ := v.(uint64)
		return writeFixed(w, n, 8)
	case rowbase.Single:
		f, _ := v.(float32)
		return writeFixed(w, uint64(math.Float32bits(f)), 4)
	case rowbase.Double, rowbase.Decimal:
		f, _ := v.(float64)
		return writeFixed(w, math.Float64bits(f), 8)
	case rowbase.String, rowbase.User:
		s, _ := v.(string)
		return writeString(w, s)
	case rowbase.Binary:
		b, _ := v.([]byte)
		return writeBytes(w, b)
	case rowbase.DateTime:
		t, _ := v.(time.Time)
		return writeFixed(w, uint64(t.UTC().UnixNano()), 8)
	case rowbase.TimeSpan:
		d, _ := v.(time.Duration)
		return writeFixed(w, uint64(int64(d)), 8)
	default:
		return rowbase.NewSchemaError("dat codec: unsupported data type for encoding")
	}
}

func readValue(r *bufio.Reader, dt rowbase.DataType) (any, error) {
	switch dt {
	case rowbase.Bool:
		b, err := r.ReadByte()
		return b != 0, err
	case rowbase.Int8:
		b, err := r.ReadByte()
		return int8(b), err
	case rowbase.UInt8:
		b, err := r.ReadByte()
		return b, err
	case rowbase.Char:
		b, err := r.ReadByte()
		return b, err
	case rowbase.Int16:
		n, err := readFixed(r, 2)
		return int16(n), err
	case rowbase.UInt16:
		n, err := readFixed(r, 2)
		return uint16(n), err
	case rowbase.Int32, rowbase.Enum:
		n, err := readFixed(r, 4)
		return int32(n), err
	case rowbase.UInt32:
		n, err := readFixed(r, 4)
		return uint32(n), err
	case rowbase.Int64:
		n, err := readFixed(r, 8)
		return int64(n), err
	case rowbase.UInt64:
		return readFixed(r, 8)
	case rowbase.Single:
		n, err := readFixed(r, 4)
		return math.Float32frombits(uint32(n)), err
	case rowbase.Double, rowbase.Decimal:
		n, err := readFixed(r, 8)
		return math.Float64frombits(n), err
	case rowbase.String, rowbase.User:
		return readString(r)
	case rowbase.Binary:
		return readBytes(r)
	case rowbase.DateTime:
		n, err := readFixed(r, 8)
		return time.Unix(0, int64(n)).UTC(), err
	case rowbase.TimeSpan:
		n, err := readFixed(r, 8)
		return time.Duration(int64(n)), err
	default:
		return nil, rowbase.NewSchemaError("dat codec: unsupported data type for decoding")
	}
}

func writeFixed(w *bufio.Writer, v uint64, width int) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:width])
	return err
}

func readFixed(r *bufio.Reader, width int) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:width]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}
