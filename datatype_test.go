package rowbase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// DataType Tests
// =============================================================================

func TestDataType_String(t *testing.T) {
	tests := []struct {
		name string
		dt   DataType
		want string
	}{
		{"known", Int64, "Int64"},
		{"unknown", DataType(99), "DataType(99)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.dt.String())
		})
	}
}

func TestDataType_IsNumeric(t *testing.T) {
	assert.True(t, Int32.IsNumeric())
	assert.True(t, Double.IsNumeric())
	assert.False(t, String.IsNumeric())
	assert.False(t, DateTime.IsNumeric())
}

func TestDataType_IsSumCompatible(t *testing.T) {
	assert.True(t, Int64.IsSumCompatible())
	assert.True(t, TimeSpan.IsSumCompatible())
	assert.False(t, String.IsSumCompatible())
	assert.False(t, DateTime.IsSumCompatible())
	assert.False(t, Binary.IsSumCompatible())
}

func TestDataType_Zero(t *testing.T) {
	assert.Equal(t, false, Bool.Zero())
	assert.Equal(t, int64(0), Int64.Zero())
	assert.Equal(t, "", String.Zero())
	assert.Equal(t, []byte(nil), Binary.Zero())
	assert.Equal(t, int32(0), Enum.Zero())
	assert.Nil(t, User.Zero())
}
