package internal

import "github.com/lychee-technology/rowbase"

// nullKey is the sentinel bucket key for nil field values. The spec leaves
// null-indexing semantics unspecified (§9 Open Questions); this
// implementation assumes a single sentinel null bucket, as the spec's
// provided design note suggests.
type nullKey struct{}

// FieldIndex is a per-field secondary index: value -> insertion-ordered
// bucket of row ids (spec §4.3).
type FieldIndex struct {
	field   int
	buckets map[any][]int64
}

// NewFieldIndex creates an index over the field at fieldIdx.
func NewFieldIndex(fieldIdx int) *FieldIndex {
	return &FieldIndex{field: fieldIdx, buckets: make(map[any][]int64)}
}

func indexKey(value any) any {
	if value == nil {
		return nullKey{}
	}
	switch v := value.(type) {
	case []byte:
		return string(v) // []byte is not comparable; key on its string form
	default:
		return v
	}
}

// Add appends id to the bucket for value.
func (fi *FieldIndex) Add(value any, id int64) {
	key := indexKey(value)
	fi.buckets[key] = append(fi.buckets[key], id)
}

// Remove deletes id from the bucket for value, preserving the remaining
// bucket's insertion order.
func (fi *FieldIndex) Remove(value any, id int64) {
	key := indexKey(value)
	bucket := fi.buckets[key]
	for i, bid := range bucket {
		if bid == id {
			fi.buckets[key] = append(bucket[:i], bucket[i+1:]...)
			break
		}
	}
	if len(fi.buckets[key]) == 0 {
		delete(fi.buckets, key)
	}
}

// Move atomically relocates id from oldValue's bucket to newValue's bucket,
// used by Update to keep the index consistent in one step.
func (fi *FieldIndex) Move(oldValue, newValue any, id int64) {
	if rowbase.ValuesEqual(oldValue, newValue) {
		return
	}
	fi.Remove(oldValue, id)
	fi.Add(newValue, id)
}

// Lookup returns the bucket for value (insertion order), or nil if empty.
func (fi *FieldIndex) Lookup(value any) []int64 {
	return fi.buckets[indexKey(value)]
}

// BucketSum returns the total number of ids across every bucket, used by
// the invariant checks in tests (spec §8: "Σ bucket sizes == rowCount").
func (fi *FieldIndex) BucketSum() int {
	n := 0
	for _, b := range fi.buckets {
		n += len(b)
	}
	return n
}

// Clear empties the index.
func (fi *FieldIndex) Clear() {
	fi.buckets = make(map[any][]int64)
}
