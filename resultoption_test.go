package rowbase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Immutability Tests
// =============================================================================

func TestResultOption_ChainingDoesNotMutateReceiver(t *testing.T) {
	base := NewResultOption()
	grouped := base.Group("name")
	assert.False(t, base.HasGroup())
	assert.True(t, grouped.HasGroup())
	assert.Equal(t, "name", grouped.GroupField())
}

func TestResultOption_SortOrder_LastClauseIsPrimary(t *testing.T) {
	opt := NewResultOption().SortAsc("a").SortDesc("b")
	sorts := opt.Sorts()
	require.Len(t, sorts, 2)
	assert.Equal(t, "a", sorts[0].Field)
	assert.True(t, sorts[0].Asc)
	assert.Equal(t, "b", sorts[1].Field)
	assert.False(t, sorts[1].Asc)
}

// =============================================================================
// Limit / Offset Tests
// =============================================================================

func TestResultOption_Limit_Once(t *testing.T) {
	opt, err := NewResultOption().Limit(10)
	require.NoError(t, err)
	n, ok := opt.LimitValue()
	assert.True(t, ok)
	assert.Equal(t, 10, n)
}

func TestResultOption_Limit_DuplicateFails(t *testing.T) {
	opt, err := NewResultOption().Limit(10)
	require.NoError(t, err)
	_, err = opt.Limit(20)
	require.Error(t, err)
	var ee *EngineError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, KindInvalidResultOption, ee.Kind)
}

func TestResultOption_Offset_Once(t *testing.T) {
	opt, err := NewResultOption().Offset(5)
	require.NoError(t, err)
	n, ok := opt.OffsetValue()
	assert.True(t, ok)
	assert.Equal(t, 5, n)
}

func TestResultOption_Offset_DuplicateFails(t *testing.T) {
	opt, err := NewResultOption().Offset(5)
	require.NoError(t, err)
	_, err = opt.Offset(6)
	require.Error(t, err)
}

func TestResultOption_NoLimitNoOffset_DefaultsAbsent(t *testing.T) {
	opt := NewResultOption()
	_, ok := opt.LimitValue()
	assert.False(t, ok)
	_, ok = opt.OffsetValue()
	assert.False(t, ok)
}
