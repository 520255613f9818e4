package dat

import (
	"bufio"
	"io"

	"github.com/lychee-technology/rowbase"
)

// Writer streams rows of a single layout out to an underlying stream in
// the dat binary format: version byte, layout header, then row records
// (spec §4.5.2).
type Writer struct {
	bw              *bufio.Writer
	layout          *rowbase.RowLayout
	closeBaseStream bool
	base            io.Closer
	headerWritten   bool
}

// WriterOption configures a Writer at construction time.
type WriterOption func(*Writer)

// WithCloseBaseStream makes Close() also close the underlying stream, for
// callers that hand the Writer exclusive ownership of it (spec §5's
// "codecs own their underlying stream only when the caller opts in").
func WithCloseBaseStream() WriterOption {
	return func(w *Writer) { w.closeBaseStream = true }
}

// NewWriter opens a dat writer over w, bound to layout.
func NewWriter(w io.Writer, layout *rowbase.RowLayout, opts ...WriterOption) *Writer {
	writer := &Writer{bw: bufio.NewWriter(w), layout: layout}
	if closer, ok := w.(io.Closer); ok {
		writer.base = closer
	}
	for _, opt := range opts {
		opt(writer)
	}
	return writer
}

func (w *Writer) ensureHeader() error {
	if w.headerWritten {
		return nil
	}
	if err := w.bw.WriteByte(CurrentVersion); err != nil {
		return rowbase.NewIoError("write dat version", err)
	}
	if err := writeLayoutHeader(w.bw, w.layout); err != nil {
		return err
	}
	w.headerWritten = true
	return nil
}

// WriteRow writes a single row record. The caller is responsible for
// ensuring row.Layout matches the Writer's bound layout.
func (w *Writer) WriteRow(row *rowbase.Row) error {
	if err := w.ensureHeader(); err != nil {
		return err
	}
	for i, f := range w.layout.Fields {
		if err := writeValue(w.bw, f.DataType, row.Values[i]); err != nil {
			return rowbase.NewIoError("write dat row field "+f.Name, err)
		}
	}
	return nil
}

// WriteTable writes the version, layout, and every row in rows.
func (w *Writer) WriteTable(rows []*rowbase.Row) error {
	if err := w.ensureHeader(); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.WriteRow(row); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes buffered output and, if WithCloseBaseStream was supplied,
// closes the underlying stream too.
func (w *Writer) Close() error {
	if err := w.ensureHeader(); err != nil {
		return err
	}
	if err := w.bw.Flush(); err != nil {
		return rowbase.NewIoError("flush dat writer", err)
	}
	if w.closeBaseStream && w.base != nil {
		return w.base.Close()
	}
	return nil
}

func writeLayoutHeader(w *bufio.Writer, layout *rowbase.RowLayout) error {
	if err := writeVarint(w, int64(layout.FieldCount())); err != nil {
		return rowbase.NewIoError("write dat field count", err)
	}
	if err := writeString(w, layout.TableName); err != nil {
		return rowbase.NewIoError("write dat table name", err)
	}
	for _, f := range layout.Fields {
		if err := writeFieldHeader(w, f); err != nil {
			return err
		}
	}
	return nil
}

func writeFieldHeader(w *bufio.Writer, f rowbase.FieldProperties) error {
	if err := writeString(w, f.Name); err != nil {
		return rowbase.NewIoError("write dat field name", err)
	}
	code, ok := dataTypeToCode[f.DataType]
	if !ok {
		return rowbase.NewSchemaError("dat codec: unknown data type for field " + f.Name)
	}
	if err := w.WriteByte(byte(code)); err != nil {
		return rowbase.NewIoError("write dat field type", err)
	}
	if err := writeFixed(w, uint64(f.Flags), 1); err != nil {
		return rowbase.NewIoError("write dat field flags", err)
	}
	if err := writeVarint(w, int64(len(f.AltNames))); err != nil {
		return rowbase.NewIoError("write dat field alt-name count", err)
	}
	for _, alt := range f.AltNames {
		if err := writeString(w, alt); err != nil {
			return rowbase.NewIoError("write dat field alt name", err)
		}
	}
	if err := writeString(w, f.DisplayFormat); err != nil {
		return rowbase.NewIoError("write dat field display format", err)
	}
	if err := writeString(w, f.AltDiskName); err != nil {
		return rowbase.NewIoError("write dat field alt disk name", err)
	}
	return nil
}
