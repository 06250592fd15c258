package service

import (
	"testing"

	"gotest.tools/v3/assert"

	"product-image-studio/collection"
)

func TestBuildRows(t *testing.T) {
	entries := []collection.Entry{
		{Reference: "m1", Category: "main"},
		{Reference: "x1", Category: "extra"},
		{Reference: "m2", Category: "main"},
		{Reference: "m1", Category: "main"},
	}

	payload := BuildRows(entries, []string{"main", "side"})

	assert.DeepEqual(t, payload.Rows, [][]string{
		{"main 1", "main 2", "main 3", "side 1", "extra 1"},
		{"m1", "m2", "m1", "", "x1"},
	})
}

func TestBuildAIRows_DropsDisplayOnly(t *testing.T) {
	cache := collection.NewFetchCache()
	cache.Put("ok", collection.CacheEntry{Artifact: &collection.Artifact{Reference: "ok", Data: []byte{1}}, SourceReference: "ok"})
	cache.Put("broken", collection.CacheEntry{Artifact: collection.DisplayOnlyArtifact("broken"), SourceReference: "broken"})
	entries := []collection.Entry{
		{Reference: "ok", Category: "main"},
		{Reference: "broken", Category: "main"},
		{Reference: "pending", Category: "main"},
	}

	payload := BuildAIRows(entries, []string{"main"}, cache, collection.PerImage)

	assert.DeepEqual(t, payload.Rows[1], []string{"ok", "pending"})
}
