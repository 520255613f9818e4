package rowbase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// ValuesEqual Tests
// =============================================================================

func TestValuesEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"both nil", nil, nil, true},
		{"one nil", nil, int64(1), false},
		{"equal ints", int64(5), int64(5), true},
		{"unequal ints", int64(5), int64(6), false},
		{"equal byte slices, distinct backing arrays", []byte("abc"), []byte("abc"), true},
		{"unequal byte slices", []byte("abc"), []byte("abd"), false},
		{"datetime across zones", time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 1, 13, 0, 0, 0, time.FixedZone("X", 3600)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValuesEqual(tt.a, tt.b))
		})
	}
}

// =============================================================================
// CompareValues Tests
// =============================================================================

func TestCompareValues_Int64(t *testing.T) {
	assert.Equal(t, -1, CompareValues(Int64, int64(1), int64(2)))
	assert.Equal(t, 1, CompareValues(Int64, int64(2), int64(1)))
	assert.Equal(t, 0, CompareValues(Int64, int64(2), int64(2)))
}

func TestCompareValues_String(t *testing.T) {
	assert.Equal(t, -1, CompareValues(String, "a", "b"))
	assert.Equal(t, 1, CompareValues(String, "b", "a"))
}

func TestCompareValues_DateTime(t *testing.T) {
	early := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, -1, CompareValues(DateTime, early, late))
	assert.Equal(t, 1, CompareValues(DateTime, late, early))
}

func TestCompareValues_Bool(t *testing.T) {
	assert.Equal(t, -1, CompareValues(Bool, false, true))
	assert.Equal(t, 1, CompareValues(Bool, true, false))
	assert.Equal(t, 0, CompareValues(Bool, true, true))
}
