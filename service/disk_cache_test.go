package service

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestDiskCache(t *testing.T) {
	cache := NewDiskCache(t.TempDir(), 1<<20)
	ref := "https://cdn.example.com/a.jpg"

	_, ok := cache.Get(ref)
	assert.Assert(t, !ok)

	assert.NilError(t, cache.Put(ref, []byte("bytes")))
	assert.Assert(t, cache.Has(ref))
	data, ok := cache.Get(ref)
	assert.Assert(t, ok)
	assert.Equal(t, string(data), "bytes")

	assert.NilError(t, cache.Delete(ref))
	assert.Assert(t, !cache.Has(ref))
	assert.NilError(t, cache.Delete(ref))
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, len(CacheKey("a")), 64)
	assert.Assert(t, CacheKey("a") != CacheKey("b"))
}
