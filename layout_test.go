package rowbase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widgetSchema struct {
	ID    int64  `row:"id,id,auto"`
	Name  string `row:"name,index"`
	Price float64
	Tags  []string `row:"-"`
}

// =============================================================================
// CreateTyped Tests
// =============================================================================

func TestCreateTyped(t *testing.T) {
	layout, err := CreateTyped(widgetSchema{}, "")
	require.NoError(t, err)
	assert.Equal(t, "widgetSchema", layout.TableName)
	assert.Equal(t, 0, layout.IDIndex())
	assert.True(t, layout.Fields[0].Flags.Has(FlagID))
	assert.True(t, layout.Fields[1].Flags.Has(FlagIndex))
}

func TestCreateTyped_NameOverride(t *testing.T) {
	layout, err := CreateTyped(widgetSchema{}, "widgets")
	require.NoError(t, err)
	assert.Equal(t, "widgets", layout.TableName)
}

func TestCreateTyped_MultipleIDFields(t *testing.T) {
	type badSchema struct {
		A int64 `row:"a,id"`
		B int64 `row:"b,id"`
	}
	_, err := CreateTyped(badSchema{}, "")
	require.Error(t, err)
	var ee *EngineError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, KindSchemaError, ee.Kind)
}

func TestCreateTyped_NotAStruct(t *testing.T) {
	_, err := CreateTyped(42, "")
	require.Error(t, err)
}

// =============================================================================
// CreateAlien Tests
// =============================================================================

func TestCreateAlien_SkipsSlices(t *testing.T) {
	layout, err := CreateAlien(widgetSchema{})
	require.NoError(t, err)
	assert.Equal(t, -1, layout.GetFieldIndex("Tags"))
	assert.NotEqual(t, -1, layout.GetFieldIndex("Name"))
}

// =============================================================================
// CreateUntyped / GetFieldIndex Tests
// =============================================================================

func TestCreateUntyped_GetFieldIndex(t *testing.T) {
	layout, err := CreateUntyped("things",
		FieldProperties{Name: "id", DataType: Int64, Flags: FlagID},
		FieldProperties{Name: "label", DataType: String, AltNames: []string{"name"}},
	)
	require.NoError(t, err)
	assert.Equal(t, 1, layout.GetFieldIndex("label"))
	assert.Equal(t, 1, layout.GetFieldIndex("name"))
	assert.Equal(t, -1, layout.GetFieldIndex("missing"))
}

func TestCreateUntyped_UnsafeName(t *testing.T) {
	_, err := CreateUntyped("bad name!", FieldProperties{Name: "x", DataType: String})
	require.Error(t, err)
}

// =============================================================================
// GetID Tests
// =============================================================================

func TestRowLayout_GetID(t *testing.T) {
	layout, err := CreateTyped(widgetSchema{}, "")
	require.NoError(t, err)
	row, err := NewRow(layout, []any{int64(7), "widget", 1.5})
	require.NoError(t, err)
	id, err := layout.GetID(row)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
}

func TestRowLayout_GetID_NoIdentifierField(t *testing.T) {
	layout, err := CreateUntyped("noid", FieldProperties{Name: "x", DataType: String})
	require.NoError(t, err)
	row, err := NewRow(layout, []any{"a"})
	require.NoError(t, err)
	_, err = layout.GetID(row)
	assert.ErrorIs(t, err, NoIdentifierField)
}

// =============================================================================
// GetValues / SetValues Tests
// =============================================================================

func TestRowLayout_GetValues_SetValues(t *testing.T) {
	layout, err := CreateTyped(widgetSchema{}, "")
	require.NoError(t, err)

	src := widgetSchema{ID: 3, Name: "gizmo", Price: 9.99}
	values, err := layout.GetValues(src)
	require.NoError(t, err)
	assert.Equal(t, int64(3), values[0])
	assert.Equal(t, "gizmo", values[1])

	var dst widgetSchema
	require.NoError(t, layout.SetValues(&dst, values))
	assert.Equal(t, src.ID, dst.ID)
	assert.Equal(t, src.Name, dst.Name)
	assert.Equal(t, src.Price, dst.Price)
}

// =============================================================================
// ParseValue Tests
// =============================================================================

func TestRowLayout_ParseValue(t *testing.T) {
	layout, err := CreateUntyped("t",
		FieldProperties{Name: "n", DataType: Int32},
		FieldProperties{Name: "s", DataType: String},
		FieldProperties{Name: "d", DataType: DateTime},
	)
	require.NoError(t, err)

	n, err := layout.ParseValue(0, "42", '"', "en-US")
	require.NoError(t, err)
	assert.Equal(t, int32(42), n)

	s, err := layout.ParseValue(1, `"hi""there"`, '"', "en-US")
	require.NoError(t, err)
	assert.Equal(t, `hi"there`, s)

	d, err := layout.ParseValue(2, time.Now().UTC().Format(time.RFC3339Nano), '"', "en-US")
	require.NoError(t, err)
	_, ok := d.(time.Time)
	assert.True(t, ok)
}

// =============================================================================
// Equal Tests
// =============================================================================

func TestRowLayout_Equal(t *testing.T) {
	a, err := CreateUntyped("t", FieldProperties{Name: "x", DataType: String})
	require.NoError(t, err)
	b, err := CreateUntyped("t", FieldProperties{Name: "x", DataType: String})
	require.NoError(t, err)
	c, err := CreateUntyped("t", FieldProperties{Name: "y", DataType: String})
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))
}
