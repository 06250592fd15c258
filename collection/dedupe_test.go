package collection

import (
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func TestDedupe_FirstOccurrenceWins(t *testing.T) {
	refs := []string{"a", "b", "a", "", "c", "b"}

	got := Dedupe(refs)

	assert.DeepEqual(t, got, []DisplayItem{
		{Reference: "a", OriginIndex: 0},
		{Reference: "b", OriginIndex: 1},
		{Reference: "c", OriginIndex: 4},
	})
}

func TestDedupe_OriginIndexResolves(t *testing.T) {
	lists := [][]string{
		nil,
		{""},
		{"x"},
		{"x", "x", "x"},
		{"a", "", "b", "a", "c", "", "c"},
	}
	for _, refs := range lists {
		got := Dedupe(refs)
		assert.Assert(t, len(got) <= len(refs))
		for _, d := range got {
			assert.Equal(t, refs[d.OriginIndex], d.Reference)
		}
	}
}

func TestDedupe_Idempotent(t *testing.T) {
	refs := []string{"u1", "u2", "u1", "u3", "u2", "u4"}

	once := References(Dedupe(refs))
	twice := References(Dedupe(once))

	assert.DeepEqual(t, once, twice)
}

func TestDedupeWithIDs(t *testing.T) {
	refs := []string{"a", "b", "a"}
	ids := []string{"p|main|0", "p|main|1", "p|side|0"}

	got, err := DedupeWithIDs(refs, ids)
	assert.NilError(t, err)
	assert.DeepEqual(t, got, []DisplayItem{
		{Reference: "a", OriginIndex: 0, StableID: "p|main|0"},
		{Reference: "b", OriginIndex: 1, StableID: "p|main|1"},
	})
	assert.Equal(t, got[0].Key(PerProduct), "p|main|0")
	assert.Equal(t, got[0].Key(PerImage), "a")
}

func TestDedupeWithIDs_LengthMismatch(t *testing.T) {
	_, err := DedupeWithIDs([]string{"a", "b"}, []string{"id"})
	assert.ErrorIs(t, err, ErrStableIDLength)
}

func TestAssignStableIDs(t *testing.T) {
	entries := AssignStableIDs("sku1", []string{"a", "b", "a"}, []string{"main", "side", "main"})

	assert.Check(t, is.Len(entries, 3))
	assert.Equal(t, entries[0].StableID, "sku1|main|0")
	assert.Equal(t, entries[1].StableID, "sku1|side|0")
	assert.Equal(t, entries[2].StableID, "sku1|main|1")
}

func TestEntryIdentity_ReusedStableIDIsNewIdentity(t *testing.T) {
	before := AssignStableIDs("sku1", []string{"m0"}, []string{"main"})
	after := AssignStableIDs("sku1", []string{"x"}, []string{"main"})

	assert.Equal(t, before[0].StableID, after[0].StableID)
	assert.Assert(t, before[0].Identity(PerProduct) != after[0].Identity(PerProduct))
	assert.Equal(t, after[0].Identity(PerImage), "x")
	assert.Equal(t, Diff(
		[]string{before[0].Identity(PerProduct)},
		[]string{after[0].Identity(PerProduct)},
	), ContentChanged)
}
