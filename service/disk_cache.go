package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/peterbourgon/diskv/v3"
)

// DiskCache stores fetched image bytes on disk, keyed by the sha256 of the
// reference, so restarts and prefetches skip the network.
type DiskCache struct {
	d *diskv.Diskv
}

// NewDiskCache creates a cache rooted at basePath.
func NewDiskCache(basePath string, memoryBytes uint64) *DiskCache {
	return &DiskCache{d: diskv.New(diskv.Options{
		BasePath:     basePath,
		Transform:    shardTransform,
		CacheSizeMax: memoryBytes,
	})}
}

// shardTransform spreads keys over two directory levels.
func shardTransform(key string) []string {
	if len(key) < 4 {
		return []string{}
	}
	return []string{key[0:2], key[2:4]}
}

// CacheKey returns the disk key of a reference.
func CacheKey(ref string) string {
	sum := sha256.Sum256([]byte(ref))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached bytes of ref.
func (c *DiskCache) Get(ref string) ([]byte, bool) {
	key := CacheKey(ref)
	if !c.d.Has(key) {
		return nil, false
	}
	data, err := c.d.Read(key)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Has reports whether ref is cached.
func (c *DiskCache) Has(ref string) bool {
	return c.d.Has(CacheKey(ref))
}

// Put stores the bytes of ref.
func (c *DiskCache) Put(ref string, data []byte) error {
	if err := c.d.Write(CacheKey(ref), data); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	return nil
}

// Delete removes ref.
func (c *DiskCache) Delete(ref string) error {
	key := CacheKey(ref)
	if !c.d.Has(key) {
		return nil
	}
	return c.d.Erase(key)
}

// Clear removes every cached file.
func (c *DiskCache) Clear() error {
	return c.d.EraseAll()
}
