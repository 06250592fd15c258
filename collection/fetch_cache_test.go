package collection

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"gotest.tools/v3/assert"
)

func artifactsFor(refs []string) []*Artifact {
	out := make([]*Artifact, len(refs))
	for i, ref := range refs {
		out[i] = &Artifact{Reference: ref, ContentType: "image/jpeg", Data: []byte(ref)}
	}
	return out
}

func requestsFor(refs ...string) []FetchRequest {
	reqs := make([]FetchRequest, len(refs))
	for i, ref := range refs {
		reqs[i] = FetchRequest{Key: ref, Reference: ref}
	}
	return reqs
}

func TestFetchCache_StoresResultsAndServesFromCache(t *testing.T) {
	cache := NewFetchCache()
	var calls atomic.Int32
	fetch := func(_ context.Context, refs []string) ([]*Artifact, error) {
		calls.Add(1)
		out := artifactsFor(refs)
		out[len(out)-1] = nil
		return out, nil
	}

	got := cache.FetchMany(context.Background(), requestsFor("a", "b"), fetch)

	assert.Equal(t, len(got), 2)
	assert.Assert(t, !got[0].DisplayOnly())
	assert.Assert(t, got[1].DisplayOnly())
	assert.Equal(t, got[1].SourceReference, "b")
	assert.Equal(t, cache.Len(), 2)

	again := cache.FetchMany(context.Background(), requestsFor("b", "a"), fetch)
	assert.Equal(t, calls.Load(), int32(1))
	assert.Equal(t, again[0].Key, "b")
	assert.Equal(t, again[1].Key, "a")
}

func TestFetchCache_ErrorBecomesDisplayOnly(t *testing.T) {
	cache := NewFetchCache()
	fetch := func(context.Context, []string) ([]*Artifact, error) {
		return nil, errors.New("boom")
	}

	got := cache.FetchMany(context.Background(), requestsFor("a", "b"), fetch)

	for _, e := range got {
		assert.Assert(t, e.DisplayOnly())
	}
	cached, missing := cache.Resolve([]string{"a", "b"})
	assert.DeepEqual(t, cached, []string{"a", "b"})
	assert.Equal(t, len(missing), 0)
}

func TestFetchCache_ClearDiscardsInFlightResults(t *testing.T) {
	cache := NewFetchCache()
	fetch := func(_ context.Context, refs []string) ([]*Artifact, error) {
		cache.Clear()
		return artifactsFor(refs), nil
	}

	got := cache.FetchMany(context.Background(), requestsFor("a"), fetch)

	assert.Equal(t, got[0].SourceReference, "a")
	assert.Equal(t, cache.Len(), 0)
	assert.Equal(t, cache.Generation(), uint64(1))
}

func TestFetchCache_CancelledFetchIsNotStored(t *testing.T) {
	cache := NewFetchCache()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fetch := func(ctx context.Context, _ []string) ([]*Artifact, error) {
		return nil, ctx.Err()
	}

	got := cache.FetchMany(ctx, requestsFor("a"), fetch)

	assert.Assert(t, got[0].DisplayOnly())
	assert.Equal(t, cache.Len(), 0)
}

func TestFetchCache_SharesInFlightFetch(t *testing.T) {
	cache := NewFetchCache()
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	fetch := func(_ context.Context, refs []string) ([]*Artifact, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		return artifactsFor(refs), nil
	}

	var wg sync.WaitGroup
	results := make([][]CacheEntry, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0] = cache.FetchMany(context.Background(), requestsFor("a"), fetch)
	}()
	<-started
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1] = cache.FetchMany(context.Background(), requestsFor("a"), fetch)
	}()
	close(release)
	wg.Wait()

	assert.Equal(t, calls.Load(), int32(1))
	assert.Equal(t, string(results[0][0].Artifact.Data), "a")
	assert.Equal(t, string(results[1][0].Artifact.Data), "a")
}

func TestFetchCache_DuplicateKeysInOneBatch(t *testing.T) {
	cache := NewFetchCache()
	var fetched []string
	fetch := func(_ context.Context, refs []string) ([]*Artifact, error) {
		fetched = append(fetched, refs...)
		return artifactsFor(refs), nil
	}

	got := cache.FetchMany(context.Background(), requestsFor("a", "a"), fetch)

	assert.DeepEqual(t, fetched, []string{"a"})
	assert.Equal(t, got[1].SourceReference, "a")
}
