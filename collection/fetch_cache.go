package collection

import (
	"context"
	"sync"
)

// Artifact is a resolved image. Display-only artifacts can be shown but carry no
// payload usable for generation.
type Artifact struct {
	Reference   string `json:"reference"`
	ContentType string `json:"contentType,omitempty"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	Data        []byte `json:"-"`
	Thumbnail   []byte `json:"-"`
	DisplayOnly bool   `json:"displayOnly"`
}

// DisplayOnlyArtifact is the placeholder cached when fetching ref fails.
func DisplayOnlyArtifact(ref string) *Artifact {
	return &Artifact{Reference: ref, DisplayOnly: true}
}

// CacheEntry is one resolved artifact stored under a collection key.
type CacheEntry struct {
	Key             string    `json:"key"`
	Artifact        *Artifact `json:"artifact"`
	SourceReference string    `json:"sourceReference"`
}

// DisplayOnly reports whether the entry must be excluded from generation exports.
func (e CacheEntry) DisplayOnly() bool {
	return e.Artifact == nil || e.Artifact.DisplayOnly
}

// FetchRequest asks for the artifact of Reference to be stored under Key.
type FetchRequest struct {
	Key       string
	Reference string
}

// BatchFunc loads artifacts for refs, one result per ref in the same order. A nil
// slot or an error marks a failed fetch.
type BatchFunc func(ctx context.Context, refs []string) ([]*Artifact, error)

type inflight struct {
	done  chan struct{}
	entry CacheEntry
}

// FetchCache stores resolved artifacts for one collection. Each collection owns its
// own cache, so keyspaces never mix between source and target.
type FetchCache struct {
	mu         sync.RWMutex
	entries    map[string]CacheEntry
	pending    map[string]*inflight
	generation uint64
}

// NewFetchCache creates an empty cache.
func NewFetchCache() *FetchCache {
	return &FetchCache{
		entries: make(map[string]CacheEntry),
		pending: make(map[string]*inflight),
	}
}

// Get returns the entry stored under key.
func (c *FetchCache) Get(key string) (CacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok
}

// Put stores entry under key.
func (c *FetchCache) Put(key string, entry CacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry.Key = key
	c.entries[key] = entry
}

// Delete removes key.
func (c *FetchCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear drops every entry and starts a new generation. Fetches still in flight
// from the previous generation are not written back.
func (c *FetchCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]CacheEntry)
	c.pending = make(map[string]*inflight)
	c.generation++
}

// Len returns the number of cached entries.
func (c *FetchCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Generation returns the current generation token.
func (c *FetchCache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// Resolve splits keys into those already cached and those still missing,
// preserving order. Repeated keys are reported once.
func (c *FetchCache) Resolve(keys []string) (cached, missing []string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		if _, ok := c.entries[k]; ok {
			cached = append(cached, k)
		} else {
			missing = append(missing, k)
		}
	}
	return cached, missing
}

// FetchMany returns one entry per request, in request order. Cached keys are served
// directly, keys already being fetched wait for that fetch, and the rest are loaded
// with a single call to fetch. Failed loads become display-only entries.
func (c *FetchCache) FetchMany(ctx context.Context, reqs []FetchRequest, fetch BatchFunc) []CacheEntry {
	results := make([]CacheEntry, len(reqs))
	waits := make([]*inflight, len(reqs))
	var owned []FetchRequest
	var calls []*inflight

	c.mu.Lock()
	gen := c.generation
	for i, r := range reqs {
		if e, ok := c.entries[r.Key]; ok {
			results[i] = e
			continue
		}
		if call, ok := c.pending[r.Key]; ok {
			waits[i] = call
			continue
		}
		call := &inflight{done: make(chan struct{})}
		c.pending[r.Key] = call
		waits[i] = call
		owned = append(owned, r)
		calls = append(calls, call)
	}
	c.mu.Unlock()

	if len(owned) > 0 {
		refs := make([]string, len(owned))
		for i, r := range owned {
			refs[i] = r.Reference
		}
		artifacts, err := fetch(ctx, refs)
		cancelled := ctx.Err() != nil

		c.mu.Lock()
		store := c.generation == gen && !cancelled
		for i, r := range owned {
			var a *Artifact
			if err == nil && i < len(artifacts) {
				a = artifacts[i]
			}
			if a == nil {
				a = DisplayOnlyArtifact(r.Reference)
			}
			entry := CacheEntry{Key: r.Key, Artifact: a, SourceReference: r.Reference}
			calls[i].entry = entry
			if store {
				c.entries[r.Key] = entry
			}
			if c.pending[r.Key] == calls[i] {
				delete(c.pending, r.Key)
			}
			close(calls[i].done)
		}
		c.mu.Unlock()
	}

	for i, call := range waits {
		if call == nil {
			continue
		}
		select {
		case <-call.done:
			results[i] = call.entry
		case <-ctx.Done():
			results[i] = CacheEntry{Key: reqs[i].Key, Artifact: DisplayOnlyArtifact(reqs[i].Reference), SourceReference: reqs[i].Reference}
		}
	}
	return results
}

// Entries returns the cached entries for keys in order, skipping missing keys.
func (c *FetchCache) Entries(keys []string) []CacheEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]CacheEntry, 0, len(keys))
	for _, k := range keys {
		if e, ok := c.entries[k]; ok {
			out = append(out, e)
		}
	}
	return out
}
