package rowbase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func searchTestLayout(t *testing.T) *RowLayout {
	t.Helper()
	layout, err := CreateUntyped("t",
		FieldProperties{Name: "id", DataType: Int64, Flags: FlagID},
		FieldProperties{Name: "name", DataType: String},
		FieldProperties{Name: "created", DataType: DateTime},
	)
	require.NoError(t, err)
	return layout
}

// =============================================================================
// None identity Tests
// =============================================================================

func TestSearch_None_IsIdentity(t *testing.T) {
	eq := Equals("name", "x")
	assert.Same(t, eq, eq.And(None))
	assert.Same(t, eq, None.And(eq))
	assert.Same(t, eq, eq.Or(None))
	assert.Same(t, eq, None.Or(eq))
}

func TestSearch_Not_OnNone_Errors(t *testing.T) {
	_, err := None.Not()
	require.Error(t, err)
}

func TestSearch_Not_InvertsNegate(t *testing.T) {
	eq := Equals("name", "x")
	inv, err := eq.Not()
	require.NoError(t, err)
	assert.True(t, inv.Negate)
	assert.False(t, eq.Negate)
}

// =============================================================================
// And / Or composition Tests
// =============================================================================

func TestSearch_And_Or_BuildTree(t *testing.T) {
	combined := Equals("name", "x").And(Greater("id", int64(1)))
	assert.Equal(t, ModeAnd, combined.Mode)
	assert.Equal(t, ModeEquals, combined.Left.Mode)
	assert.Equal(t, ModeGreater, combined.Right.Mode)

	alt := Equals("name", "x").Or(Smaller("id", int64(1)))
	assert.Equal(t, ModeOr, alt.Mode)
}

// =============================================================================
// Like pattern normalization Tests
// =============================================================================

func TestLike_CollapsesConsecutivePercent(t *testing.T) {
	s := Like("name", "a%%%b")
	assert.Equal(t, "a%b", s.Pattern)
}

// =============================================================================
// Bind Tests
// =============================================================================

func TestSearch_Bind_ResolvesFieldIndex(t *testing.T) {
	layout := searchTestLayout(t)
	bound, err := Equals("name", "x").Bind(layout)
	require.NoError(t, err)
	assert.True(t, bound.IsBound())
	assert.Equal(t, 1, bound.FieldIndex())
}

func TestSearch_Bind_UnknownField(t *testing.T) {
	layout := searchTestLayout(t)
	_, err := Equals("nope", "x").Bind(layout)
	require.Error(t, err)
	var ee *EngineError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, KindSearchError, ee.Kind)
}

func TestSearch_Bind_ConvertsComparandType(t *testing.T) {
	layout := searchTestLayout(t)
	bound, err := Equals("id", int(7)).Bind(layout)
	require.NoError(t, err)
	assert.IsType(t, int64(0), bound.Operand)
	assert.Equal(t, int64(7), bound.Operand)
}

func TestSearch_Bind_RebindSameLayoutOk(t *testing.T) {
	layout := searchTestLayout(t)
	bound, err := Equals("name", "x").Bind(layout)
	require.NoError(t, err)
	rebind, err := bound.Bind(layout)
	require.NoError(t, err)
	assert.Same(t, bound, rebind)
}

func TestSearch_Bind_RebindDifferentLayoutFails(t *testing.T) {
	layout := searchTestLayout(t)
	other, err := CreateUntyped("other", FieldProperties{Name: "name", DataType: String})
	require.NoError(t, err)

	bound, err := Equals("name", "x").Bind(layout)
	require.NoError(t, err)
	_, err = bound.Bind(other)
	require.Error(t, err)
	var ee *EngineError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, KindLayoutMismatch, ee.Kind)
}

func TestSearch_Bind_And_BindsBothSides(t *testing.T) {
	layout := searchTestLayout(t)
	combined := Equals("name", "x").And(Equals("id", int64(1)))
	bound, err := combined.Bind(layout)
	require.NoError(t, err)
	assert.True(t, bound.Left.IsBound())
	assert.True(t, bound.Right.IsBound())
}

func TestSearch_Bind_In_ConvertsEachOperand(t *testing.T) {
	layout := searchTestLayout(t)
	bound, err := In("id", int(1), int(2)).Bind(layout)
	require.NoError(t, err)
	require.Len(t, bound.Operands, 2)
	assert.Equal(t, int64(1), bound.Operands[0])
	assert.Equal(t, int64(2), bound.Operands[1])
}

func TestSearch_Bind_DateTime_PreservesInstant(t *testing.T) {
	layout := searchTestLayout(t)
	loc := time.FixedZone("X", 3600)
	local := time.Date(2024, 1, 1, 13, 0, 0, 0, loc)
	bound, err := Equals("created", local).Bind(layout)
	require.NoError(t, err)
	tv, ok := bound.Operand.(time.Time)
	require.True(t, ok)
	assert.True(t, tv.Equal(local))
}

func TestSearch_Bind_None_ReturnsSelf(t *testing.T) {
	layout := searchTestLayout(t)
	bound, err := None.Bind(layout)
	require.NoError(t, err)
	assert.Same(t, None, bound)
}
