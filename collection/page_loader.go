package collection

import (
	"context"
	"sync"

	"product-image-studio/logging"
)

// DefaultSilentThreshold is the largest number of missing artifacts fetched in
// the background once a page has loaded for the current product.
const DefaultSilentThreshold = 2

// ArtifactLoader is the external fetch/decode pipeline. It returns one result per
// reference, in order; nil slots are failures.
type ArtifactLoader interface {
	LoadArtifacts(ctx context.Context, refs []string) ([]*Artifact, error)
}

// LoadState is the visible state of a page loader.
type LoadState int

const (
	Idle LoadState = iota
	BlockingLoad
	SilentLoad
)

func (s LoadState) String() string {
	switch s {
	case BlockingLoad:
		return "blocking"
	case SilentLoad:
		return "silent"
	default:
		return "idle"
	}
}

// LoadEvent drives the loader's transitions.
type LoadEvent int

const (
	ProductChanged LoadEvent = iota
	PageChanged
	ListContentChanged
	ListVisibilityChanged
)

// LoadStrategy is the work needed to materialize a page.
type LoadStrategy int

const (
	// LoadEmpty: the page has no items.
	LoadEmpty LoadStrategy = iota
	// LoadCached: every artifact is cached.
	LoadCached
	// LoadSilent: a few artifacts are missing after a page already loaded; they
	// are fetched in the background.
	LoadSilent
	// LoadBlocking: the page waits for all missing artifacts.
	LoadBlocking
)

// ClassifyLoad picks the strategy for a page of pageSize items with missing
// uncached artifacts. Once a page has loaded, up to threshold missing artifacts
// are fetched silently, but the limit is capped at half the page (never below
// one): on a 3-item page with 2 missing the load blocks even though the default
// threshold is 2, so a mostly unresolved page never renders without a loading
// state.
func ClassifyLoad(missing, pageSize int, loadedOnce bool, threshold int) LoadStrategy {
	switch {
	case pageSize == 0:
		return LoadEmpty
	case missing == 0:
		return LoadCached
	}
	limit := threshold
	if half := pageSize / 2; half < limit {
		limit = half
	}
	if limit < 1 {
		limit = 1
	}
	if loadedOnce && missing <= limit {
		return LoadSilent
	}
	return LoadBlocking
}

// Page is a materialized page: the display items and their cached entries in
// display order. In silent mode entries may lag behind items.
type Page struct {
	Items   []DisplayItem `json:"displayItems"`
	Entries []CacheEntry  `json:"entries"`
	Loading bool          `json:"loading"`
}

// PageLoaderOptions configures a PageLoader.
type PageLoaderOptions struct {
	Mode            KeyMode
	SilentThreshold int
	// OnPage receives pages built by blocking loads and the first fully cached
	// page of a product.
	OnPage func(Page)
	// OnRefresh signals that a silent fetch finished and the page can be re-read.
	OnRefresh func()
	Logger    *logging.Logger
}

// PageLoader decides how the in-view items of a collection are resolved and
// drives the collection's FetchCache.
type PageLoader struct {
	cache  *FetchCache
	loader ArtifactLoader
	opts   PageLoaderOptions
	log    *logging.Logger

	mu         sync.Mutex
	state      LoadState
	loadedOnce bool
	emitted    bool
	epoch      uint64
	background sync.WaitGroup
}

// NewPageLoader creates a loader bound to cache.
func NewPageLoader(cache *FetchCache, loader ArtifactLoader, opts PageLoaderOptions) *PageLoader {
	if opts.SilentThreshold <= 0 {
		opts.SilentThreshold = DefaultSilentThreshold
	}
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	if loader == nil {
		loader = displayOnlyLoader{}
	}
	return &PageLoader{cache: cache, loader: loader, opts: opts, log: log}
}

// Handle applies an event.
func (p *PageLoader) Handle(ev LoadEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch ev {
	case ProductChanged, ListContentChanged:
		p.epoch++
		p.loadedOnce = false
		p.emitted = false
		p.state = Idle
	}
}

// State returns the current state.
func (p *PageLoader) State() LoadState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Loading reports whether a blocking load is in progress.
func (p *PageLoader) Loading() bool {
	return p.State() == BlockingLoad
}

// Wait blocks until background fetches have finished.
func (p *PageLoader) Wait() {
	p.background.Wait()
}

// Load materializes items.
func (p *PageLoader) Load(ctx context.Context, items []DisplayItem) Page {
	if len(items) == 0 {
		page := Page{Items: []DisplayItem{}, Entries: []CacheEntry{}}
		p.emit(page)
		return page
	}

	keys := make([]string, len(items))
	for i, item := range items {
		keys[i] = item.Key(p.opts.Mode)
	}
	_, missing := p.cache.Resolve(keys)

	p.mu.Lock()
	strategy := ClassifyLoad(len(missing), len(items), p.loadedOnce, p.opts.SilentThreshold)
	epoch := p.epoch
	switch strategy {
	case LoadCached:
		first := !p.emitted
		p.emitted = true
		p.loadedOnce = true
		p.state = Idle
		p.mu.Unlock()

		page := Page{Items: items, Entries: p.cache.Entries(keys)}
		if first {
			p.emit(page)
		}
		return page

	case LoadSilent:
		p.state = SilentLoad
		p.mu.Unlock()

		reqs := p.requests(items, missing)
		p.log.Debugf("🔄 Silent fetch of %d artifacts", len(reqs))
		p.background.Add(1)
		go func() {
			defer p.background.Done()
			p.cache.FetchMany(context.WithoutCancel(ctx), reqs, p.loader.LoadArtifacts)
			p.mu.Lock()
			current := p.epoch == epoch
			if current && p.state == SilentLoad {
				p.state = Idle
			}
			p.mu.Unlock()
			if current && p.opts.OnRefresh != nil {
				p.opts.OnRefresh()
			}
		}()
		return Page{Items: items, Entries: p.cache.Entries(keys)}

	default:
		p.state = BlockingLoad
		p.mu.Unlock()

		p.log.Debugf("🔄 Blocking fetch of %d artifacts", len(missing))
		entries := p.cache.FetchMany(ctx, p.requests(items, nil), p.loader.LoadArtifacts)

		p.mu.Lock()
		if p.epoch != epoch {
			p.mu.Unlock()
			p.log.Debugf("⏭️  Discarding page of a previous product")
			return Page{Items: items, Entries: []CacheEntry{}, Loading: true}
		}
		p.state = Idle
		p.loadedOnce = true
		p.emitted = true
		p.mu.Unlock()

		page := Page{Items: items, Entries: entries}
		p.emit(page)
		return page
	}
}

// requests builds fetch requests for items, restricted to only when non-nil.
func (p *PageLoader) requests(items []DisplayItem, only []string) []FetchRequest {
	var allow map[string]struct{}
	if only != nil {
		allow = make(map[string]struct{}, len(only))
		for _, k := range only {
			allow[k] = struct{}{}
		}
	}
	reqs := make([]FetchRequest, 0, len(items))
	for _, item := range items {
		key := item.Key(p.opts.Mode)
		if allow != nil {
			if _, ok := allow[key]; !ok {
				continue
			}
		}
		reqs = append(reqs, FetchRequest{Key: key, Reference: item.Reference})
	}
	return reqs
}

func (p *PageLoader) emit(page Page) {
	if p.opts.OnPage != nil {
		p.opts.OnPage(page)
	}
}

// displayOnlyLoader resolves nothing, so every artifact becomes display-only.
type displayOnlyLoader struct{}

func (displayOnlyLoader) LoadArtifacts(_ context.Context, refs []string) ([]*Artifact, error) {
	return make([]*Artifact, len(refs)), nil
}
