package text

import (
	"bytes"
	"testing"
	"time"

	"github.com/lychee-technology/rowbase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLayout(t *testing.T) *rowbase.RowLayout {
	t.Helper()
	layout, err := rowbase.CreateUntyped("items",
		rowbase.FieldProperties{Name: "id", DataType: rowbase.Int64, Flags: rowbase.FlagID},
		rowbase.FieldProperties{Name: "label", DataType: rowbase.String},
		rowbase.FieldProperties{Name: "price", DataType: rowbase.Double},
		rowbase.FieldProperties{Name: "created", DataType: rowbase.DateTime},
		rowbase.FieldProperties{Name: "blob", DataType: rowbase.Binary},
	)
	require.NoError(t, err)
	return layout
}

// =============================================================================
// Round-trip Tests
// =============================================================================

func TestEncodeDecode_RoundTrip(t *testing.T) {
	layout := sampleLayout(t)
	props := NewProperties()
	now := time.Now().UTC().Truncate(time.Second)
	row, err := rowbase.NewRow(layout, []any{int64(7), "hello world", 3.25, now, []byte{1, 2, 3}})
	require.NoError(t, err)

	line, err := RowToString(props, layout, row)
	require.NoError(t, err)

	decoded, err := RowFromString(props, layout, line)
	require.NoError(t, err)
	assert.True(t, row.Equal(decoded), "round trip mismatch: %q", line)
}

// TestEncodeDecode_QuotedStringWithEmbeddedQuoteAndNewline mirrors the
// spec's own worked scenario: a string containing both an embedded quote
// and a literal newline must survive unchanged.
func TestEncodeDecode_QuotedStringWithEmbeddedQuoteAndNewline(t *testing.T) {
	layout, err := rowbase.CreateUntyped("t",
		rowbase.FieldProperties{Name: "id", DataType: rowbase.Int64, Flags: rowbase.FlagID},
		rowbase.FieldProperties{Name: "note", DataType: rowbase.String},
	)
	require.NoError(t, err)
	props := NewProperties()

	original := "he said \"hi\"\nbye"
	row, err := rowbase.NewRow(layout, []any{int64(7), original})
	require.NoError(t, err)

	line, err := RowToString(props, layout, row)
	require.NoError(t, err)
	assert.Equal(t, `7,"he said ""hi""\nbye"`, line)

	decoded, err := RowFromString(props, layout, line)
	require.NoError(t, err)
	got, _ := decoded.GetByName("note")
	assert.Equal(t, original, got)
}

// =============================================================================
// WriteTable / ReadTable Tests
// =============================================================================

type fakeTable struct {
	layout *rowbase.RowLayout
	rows   []*rowbase.Row
}

func (f *fakeTable) Layout() *rowbase.RowLayout { return f.layout }
func (f *fakeTable) Find(search *rowbase.Search, opts *rowbase.ResultOption) ([]*rowbase.Row, error) {
	return f.rows, nil
}
func (f *fakeTable) Insert(row *rowbase.Row) (int64, error)   { return 0, nil }
func (f *fakeTable) Update(row *rowbase.Row) error            { return nil }
func (f *fakeTable) Replace(row *rowbase.Row) error           { return nil }
func (f *fakeTable) Delete(id int64) error                    { return nil }
func (f *fakeTable) TryDelete(search *rowbase.Search) (int, error) { return 0, nil }
func (f *fakeTable) Clear(resetIds bool) error                { return nil }
func (f *fakeTable) GetRow(id int64) (*rowbase.Row, error)    { return nil, nil }
func (f *fakeTable) Exist(id int64) bool                      { return false }
func (f *fakeTable) GetRowAt(i int) (*rowbase.Row, error)     { return nil, nil }
func (f *fakeTable) Count() int                               { return len(f.rows) }
func (f *fakeTable) IDs() []int64                             { return nil }
func (f *fakeTable) SortedIDs() []int64                       { return nil }
func (f *fakeTable) GetRawValues(field string, ids ...int64) ([]any, error) { return nil, nil }
func (f *fakeTable) SetValue(field string, value any) error   { return nil }
func (f *fakeTable) Freeze()                                  {}
func (f *fakeTable) IsReadOnly() bool                         { return false }
func (f *fakeTable) SequenceNumber() uint64                   { return 0 }
func (f *fakeTable) Commit(txs []rowbase.Transaction, flags rowbase.WriterFlags) (int, int, error) {
	return 0, -1, nil
}

var _ rowbase.Table = (*fakeTable)(nil)

func TestWriteTable_ReadTable_RoundTrip(t *testing.T) {
	layout := sampleLayout(t)
	now := time.Now().UTC().Truncate(time.Second)
	row1, err := rowbase.NewRow(layout, []any{int64(1), "alpha", 1.5, now, []byte("a")})
	require.NoError(t, err)
	row2, err := rowbase.NewRow(layout, []any{int64(2), "beta", 2.5, now, []byte("b")})
	require.NoError(t, err)
	table := &fakeTable{layout: layout, rows: []*rowbase.Row{row1, row2}}

	var buf bytes.Buffer
	require.NoError(t, WriteTable(table, &buf, NewProperties()))

	decoded, err := ReadTable(layout, &buf, NewProperties())
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	assert.True(t, row1.Equal(decoded[0]))
	assert.True(t, row2.Equal(decoded[1]))
}

func TestWriteTable_NoHeader(t *testing.T) {
	layout, err := rowbase.CreateUntyped("t", rowbase.FieldProperties{Name: "id", DataType: rowbase.Int64, Flags: rowbase.FlagID})
	require.NoError(t, err)
	row, err := rowbase.NewRow(layout, []any{int64(1)})
	require.NoError(t, err)
	table := &fakeTable{layout: layout, rows: []*rowbase.Row{row}}

	props := NewProperties()
	props.NoHeader = true
	var buf bytes.Buffer
	require.NoError(t, WriteTable(table, &buf, props))

	decoded, err := ReadTable(layout, &buf, props)
	require.NoError(t, err)
	require.Len(t, decoded, 1)
}

// =============================================================================
// SaveDefaultValues Tests
// =============================================================================

func TestEncode_SaveDefaultValuesFalse_OmitsZero(t *testing.T) {
	layout, err := rowbase.CreateUntyped("t",
		rowbase.FieldProperties{Name: "id", DataType: rowbase.Int64, Flags: rowbase.FlagID},
		rowbase.FieldProperties{Name: "n", DataType: rowbase.Int64},
	)
	require.NoError(t, err)
	props := NewProperties()
	props.SaveDefaultValues = false

	row, err := rowbase.NewRow(layout, []any{int64(1), int64(0)})
	require.NoError(t, err)
	line, err := RowToString(props, layout, row)
	require.NoError(t, err)
	assert.Equal(t, "1,", line)
}

// =============================================================================
// Validate Tests
// =============================================================================

func TestProperties_Validate_RejectsSeparatorMarkerCollision(t *testing.T) {
	props := NewProperties()
	props.StringMarker = props.Separator
	err := props.Validate()
	require.Error(t, err)
	assert.Equal(t, rowbase.KindInvalidProperties, rowbase.ErrorKindOf(err))
}

func TestProperties_Validate_RejectsZeroSeparator(t *testing.T) {
	props := NewProperties()
	props.Separator = 0
	require.Error(t, props.Validate())
}

// =============================================================================
// Culture Tests
// =============================================================================

func TestFormatFloat_PeriodForEnUS(t *testing.T) {
	assert.Equal(t, "3.25", formatFloat("en-US", 3.25, 64))
}

func TestFormatFloat_CommaForDeDE(t *testing.T) {
	assert.Equal(t, "3,25", formatFloat("de-DE", 3.25, 64))
}

func TestParseFloat_RoundTripsCulture(t *testing.T) {
	v, err := parseFloat("de-DE", "3,25", 64)
	require.NoError(t, err)
	assert.Equal(t, 3.25, v)
}

func TestFormatFloat_Unparseable_FallsBackToPeriod(t *testing.T) {
	assert.Equal(t, "3.25", formatFloat("not-a-culture!!", 3.25, 64))
}

// =============================================================================
// Compression Tests
// =============================================================================

func TestWriteReadTable_GZipCompression(t *testing.T) {
	layout, err := rowbase.CreateUntyped("t", rowbase.FieldProperties{Name: "id", DataType: rowbase.Int64, Flags: rowbase.FlagID})
	require.NoError(t, err)
	row, err := rowbase.NewRow(layout, []any{int64(42)})
	require.NoError(t, err)
	table := &fakeTable{layout: layout, rows: []*rowbase.Row{row}}

	props := NewProperties()
	props.Compression = rowbase.CompressionGZip
	var buf bytes.Buffer
	require.NoError(t, WriteTable(table, &buf, props))

	decoded, err := ReadTable(layout, &buf, props)
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.Equal(t, int64(42), decoded[0].Get(0))
}
