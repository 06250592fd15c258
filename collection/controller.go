package collection

import (
	"context"
	"sync"

	"product-image-studio/logging"
)

// DefaultPageSize is the number of display items per page.
const DefaultPageSize = 12

// PersistOptions describes the transfer being persisted.
type PersistOptions struct {
	Mode          TransferMode
	Category      string
	Position      int
	Selected      []string
	SourceProduct string
}

// Persister writes a transfer result to durable storage.
type Persister interface {
	PersistTransfer(ctx context.Context, productKey string, images, categories []string, opts PersistOptions) error
}

// ControllerOptions configures a Controller.
type ControllerOptions struct {
	// Name labels the collection in logs and owns its edits in the Session.
	Name            string
	Mode            KeyMode
	Order           []string
	PageSize        int
	SilentThreshold int
	DefaultCategory string
	Loader          ArtifactLoader
	Persister       Persister
	Session         *Session
	// OnActiveChange receives the active references whenever the active
	// projection changes. It is called without locks held.
	OnActiveChange func(refs []string)
	OnPage         func(Page)
	OnRefresh      func()
	Logger         *logging.Logger
}

// TransferOptions are the placement arguments of Controller.Transfer.
type TransferOptions struct {
	Position      int
	Category      string
	SourceProduct string
}

// PageView is a page of a collection ready for rendering.
type PageView struct {
	ProductKey string          `json:"productKey"`
	Page       int             `json:"page"`
	PageCount  int             `json:"pageCount"`
	Items      []DisplayItem   `json:"displayItems"`
	Entries    []CacheEntry    `json:"entries"`
	Groups     []CategoryGroup `json:"groups"`
	Loading    bool            `json:"loading"`
}

// Controller owns one collection: its authoritative list, hidden set, fetch cache
// and page loader.
type Controller struct {
	opts    ControllerOptions
	log     *logging.Logger
	cache   *FetchCache
	loader  *PageLoader
	session *Session

	transferMu sync.Mutex

	mu         sync.Mutex
	productKey string
	entries    []Entry
	hidden     map[string]struct{}
	active     []Entry
	display    []DisplayItem
	page       int
	watcher    Watcher
}

// NewController creates a controller with its own FetchCache.
func NewController(opts ControllerOptions) *Controller {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.DefaultCategory == "" {
		opts.DefaultCategory = DefaultCategory
	}
	if opts.Session == nil {
		opts.Session = NewSession()
	}
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	cache := NewFetchCache()
	return &Controller{
		opts:    opts,
		log:     log,
		cache:   cache,
		session: opts.Session,
		hidden:  make(map[string]struct{}),
		loader: NewPageLoader(cache, opts.Loader, PageLoaderOptions{
			Mode:            opts.Mode,
			SilentThreshold: opts.SilentThreshold,
			OnPage:          opts.OnPage,
			OnRefresh:       opts.OnRefresh,
			Logger:          log,
		}),
	}
}

// Cache returns the collection's fetch cache.
func (c *Controller) Cache() *FetchCache { return c.cache }

// Mode returns the key mode.
func (c *Controller) Mode() KeyMode { return c.opts.Mode }

// Order returns the template column order.
func (c *Controller) Order() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.opts.Order...)
}

// SetOrder replaces the template column order.
func (c *Controller) SetOrder(order []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opts.Order = append([]string(nil), order...)
}

// ProductKey returns the loaded product, empty before SetProduct.
func (c *Controller) ProductKey() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.productKey
}

// SetProduct switches the collection to another product. The cache is dropped and
// in-flight fetches of the previous product are discarded when they complete.
func (c *Controller) SetProduct(productKey string, entries []Entry) {
	c.mu.Lock()
	c.productKey = productKey
	c.entries = c.normalize(productKey, entries)
	c.hidden = make(map[string]struct{})
	c.page = 0
	c.watcher.Reset()
	c.watcher.Observe(c.keysLocked())
	c.cache.Clear()
	c.loader.Handle(ProductChanged)
	c.recomputeLocked()
	refs := c.activeRefsLocked()
	c.mu.Unlock()

	c.session.MarkClean(c.opts.Name)

	c.log.Infof("✓ %s collection switched to product %s (%d images)", c.opts.Name, productKey, len(entries))
	c.notify(refs)
}

// ReplaceEntries updates the authoritative list of the current product and
// reports whether its content or only its visibility changed.
func (c *Controller) ReplaceEntries(entries []Entry) (ChangeKind, error) {
	c.mu.Lock()
	if c.productKey == "" {
		c.mu.Unlock()
		return VisibilityOnly, ErrNoProduct
	}
	kind := c.replaceLocked(entries)
	refs := c.activeRefsLocked()
	c.mu.Unlock()

	c.notify(refs)
	return kind, nil
}

func (c *Controller) replaceLocked(entries []Entry) ChangeKind {
	pinned := c.pinHiddenLocked()
	c.entries = c.normalize(c.productKey, entries)
	c.rebindHiddenLocked(pinned)
	kind := c.watcher.Observe(c.keysLocked())
	if kind == ContentChanged {
		c.log.Infof("🔄 %s collection content changed, dropping %d cached artifacts", c.opts.Name, c.cache.Len())
		c.cache.Clear()
		c.loader.Handle(ListContentChanged)
	} else {
		c.loader.Handle(ListVisibilityChanged)
	}
	c.recomputeLocked()
	return kind
}

// Hide excludes a reference or stable id from the active projection. It reports
// whether anything matched.
func (c *Controller) Hide(key string) bool {
	c.mu.Lock()
	if !c.matchesLocked(key) {
		c.mu.Unlock()
		return false
	}
	c.hidden[key] = struct{}{}
	c.watcher.Observe(c.keysLocked())
	c.loader.Handle(ListVisibilityChanged)
	c.recomputeLocked()
	refs := c.activeRefsLocked()
	c.mu.Unlock()

	c.session.MarkDirty(c.opts.Name)
	c.notify(refs)
	return true
}

// Unhide restores a single hidden key.
func (c *Controller) Unhide(key string) bool {
	c.mu.Lock()
	if _, ok := c.hidden[key]; !ok {
		c.mu.Unlock()
		return false
	}
	delete(c.hidden, key)
	c.loader.Handle(ListVisibilityChanged)
	c.recomputeLocked()
	clean := len(c.hidden) == 0
	refs := c.activeRefsLocked()
	c.mu.Unlock()

	if clean {
		c.session.MarkClean(c.opts.Name)
	}
	c.notify(refs)
	return true
}

// RestoreAll clears the hidden set. Pending edits of other collections sharing
// the session are left alone.
func (c *Controller) RestoreAll() {
	c.mu.Lock()
	c.hidden = make(map[string]struct{})
	c.watcher.Observe(c.keysLocked())
	c.loader.Handle(ListVisibilityChanged)
	c.recomputeLocked()
	refs := c.activeRefsLocked()
	c.mu.Unlock()

	c.session.MarkClean(c.opts.Name)
	c.notify(refs)
}

// Entries returns a copy of the authoritative list.
func (c *Controller) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Entry(nil), c.entries...)
}

// Active returns a copy of the active projection.
func (c *Controller) Active() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Entry(nil), c.active...)
}

// DisplayItems returns the deduplicated active projection.
func (c *Controller) DisplayItems() []DisplayItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]DisplayItem(nil), c.display...)
}

// Groups groups the whole active projection by category in template order.
func (c *Controller) Groups() []CategoryGroup {
	c.mu.Lock()
	defer c.mu.Unlock()
	categorized := make([]Categorized, len(c.display))
	for i, item := range c.display {
		categorized[i] = Categorized{Item: item, Category: c.active[item.OriginIndex].Category}
	}
	return Group(categorized, c.opts.Order)
}

// ResolveReferences maps stable ids to their references; other keys pass through.
func (c *Controller) ResolveReferences(keys []string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	byID := make(map[string]string, len(c.entries))
	for _, e := range c.entries {
		if e.StableID != "" {
			byID[e.StableID] = e.Reference
		}
	}
	refs := make([]string, 0, len(keys))
	for _, k := range keys {
		if ref, ok := byID[k]; ok {
			refs = append(refs, ref)
			continue
		}
		refs = append(refs, k)
	}
	return refs
}

// SetPage moves to page n (0-based, clamped) and loads it.
func (c *Controller) SetPage(ctx context.Context, n int) (PageView, error) {
	c.mu.Lock()
	c.page = clampPage(n, c.pageCountLocked())
	c.mu.Unlock()
	c.loader.Handle(PageChanged)
	return c.Page(ctx)
}

// Page loads the current page.
func (c *Controller) Page(ctx context.Context) (PageView, error) {
	c.mu.Lock()
	if c.productKey == "" {
		c.mu.Unlock()
		return PageView{}, ErrNoProduct
	}
	productKey := c.productKey
	pageNo := c.page
	pageCount := c.pageCountLocked()
	start := pageNo * c.opts.PageSize
	end := start + c.opts.PageSize
	if end > len(c.display) {
		end = len(c.display)
	}
	if start > end {
		start = end
	}
	items := append([]DisplayItem(nil), c.display[start:end]...)
	categorized := make([]Categorized, len(items))
	for i, item := range items {
		categorized[i] = Categorized{Item: item, Category: c.active[item.OriginIndex].Category}
	}
	populated := make(map[string]bool)
	for _, e := range c.active {
		populated[e.Category] = true
	}
	order := append([]string(nil), c.opts.Order...)
	c.mu.Unlock()

	page := c.loader.Load(ctx, items)
	return PageView{
		ProductKey: productKey,
		Page:       pageNo,
		PageCount:  pageCount,
		Items:      page.Items,
		Entries:    page.Entries,
		Groups:     GroupPage(categorized, order, populated),
		Loading:    page.Loading || c.loader.Loading(),
	}, nil
}

// Transfer places selected references into this collection, persists the result
// and only then adopts it as the new authoritative list.
func (c *Controller) Transfer(ctx context.Context, selected []string, mode TransferMode, opts TransferOptions) (TransferResult, error) {
	c.transferMu.Lock()
	defer c.transferMu.Unlock()

	c.mu.Lock()
	if c.productKey == "" {
		c.mu.Unlock()
		return TransferResult{}, ErrNoProduct
	}
	productKey := c.productKey
	images, categories := Split(c.entries)
	req := TransferRequest{
		Images:       images,
		Categories:   categories,
		Selected:     selected,
		Mode:         mode,
		Position:     opts.Position,
		Category:     opts.Category,
		PerCategory:  c.opts.Mode == PerProduct,
		Order:        append([]string(nil), c.opts.Order...),
		DefaultToken: c.opts.DefaultCategory,
	}
	c.mu.Unlock()

	result, err := Transfer(req)
	if err != nil {
		return TransferResult{}, err
	}

	if c.opts.Persister != nil {
		err := c.opts.Persister.PersistTransfer(ctx, productKey, result.Images, result.Categories, PersistOptions{
			Mode:          mode,
			Category:      result.Category,
			Position:      opts.Position,
			Selected:      selected,
			SourceProduct: opts.SourceProduct,
		})
		if err != nil {
			c.log.Errorf("❌ Persisting transfer into %s failed: %v", productKey, err)
			return TransferResult{}, &PersistError{ProductKey: productKey, Err: err}
		}
	}

	c.mu.Lock()
	if c.productKey != productKey {
		c.mu.Unlock()
		c.log.Warnf("⚠️  Product switched during transfer into %s, not folding result", productKey)
		return result, nil
	}
	entries := make([]Entry, len(result.Images))
	for i := range result.Images {
		entries[i] = Entry{Reference: result.Images[i], Category: result.Categories[i]}
	}
	c.replaceLocked(entries)
	refs := c.activeRefsLocked()
	clean := len(c.hidden) == 0
	c.mu.Unlock()

	// Hides are never persisted, so they stay pending across a transfer.
	if clean {
		c.session.MarkClean(c.opts.Name)
	}
	c.notify(refs)
	c.log.Infof("✅ Transferred %d images into %s (%s, category %s)", len(selected), productKey, mode, result.Category)
	return result, nil
}

// normalize copies entries and assigns stable ids for per-product collections.
func (c *Controller) normalize(productKey string, entries []Entry) []Entry {
	if c.opts.Mode != PerProduct {
		out := make([]Entry, len(entries))
		copy(out, entries)
		return out
	}
	refs, cats := Split(entries)
	return AssignStableIDs(productKey, refs, cats)
}

// keysLocked returns the identities the watcher compares.
func (c *Controller) keysLocked() []string {
	keys := make([]string, len(c.entries))
	for i, e := range c.entries {
		keys[i] = e.Identity(c.opts.Mode)
	}
	return keys
}

// occurrence locates an entry by the n-th appearance of its reference within its
// category, which survives the renumbering of stable ids.
type occurrence struct {
	reference string
	category  string
	n         int
}

// pinHiddenLocked moves hidden stable ids out of the hidden set, recording which
// entries they hid.
func (c *Controller) pinHiddenLocked() map[occurrence]struct{} {
	if c.opts.Mode != PerProduct {
		return nil
	}
	pinned := make(map[occurrence]struct{})
	seen := make(map[occurrence]int)
	for _, e := range c.entries {
		base := occurrence{reference: e.Reference, category: e.Category}
		at := base
		at.n = seen[base]
		seen[base]++
		if e.StableID == "" {
			continue
		}
		if _, ok := c.hidden[e.StableID]; ok {
			delete(c.hidden, e.StableID)
			pinned[at] = struct{}{}
		}
	}
	return pinned
}

// rebindHiddenLocked hides the new stable ids of the pinned entries. Entries
// that no longer exist stay visible.
func (c *Controller) rebindHiddenLocked(pinned map[occurrence]struct{}) {
	if len(pinned) == 0 {
		return
	}
	seen := make(map[occurrence]int)
	for _, e := range c.entries {
		base := occurrence{reference: e.Reference, category: e.Category}
		at := base
		at.n = seen[base]
		seen[base]++
		if _, ok := pinned[at]; ok && e.StableID != "" {
			c.hidden[e.StableID] = struct{}{}
		}
	}
}

func (c *Controller) matchesLocked(key string) bool {
	for _, e := range c.entries {
		if e.Reference == key || (e.StableID != "" && e.StableID == key) {
			return true
		}
	}
	return false
}

func (c *Controller) recomputeLocked() {
	active := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		if _, ok := c.hidden[e.Reference]; ok {
			continue
		}
		if _, ok := c.hidden[e.StableID]; ok && e.StableID != "" {
			continue
		}
		active = append(active, e)
	}
	c.active = active

	refs := make([]string, len(active))
	ids := make([]string, len(active))
	for i, e := range active {
		refs[i] = e.Reference
		ids[i] = e.StableID
	}
	if c.opts.Mode == PerProduct {
		c.display, _ = DedupeWithIDs(refs, ids)
	} else {
		c.display = Dedupe(refs)
	}
	c.page = clampPage(c.page, c.pageCountLocked())
}

func (c *Controller) pageCountLocked() int {
	if len(c.display) == 0 {
		return 1
	}
	return (len(c.display) + c.opts.PageSize - 1) / c.opts.PageSize
}

func (c *Controller) activeRefsLocked() []string {
	refs := make([]string, len(c.active))
	for i, e := range c.active {
		refs[i] = e.Reference
	}
	return refs
}

func (c *Controller) notify(refs []string) {
	if c.opts.OnActiveChange != nil {
		c.opts.OnActiveChange(refs)
	}
}

func clampPage(n, count int) int {
	if n < 0 {
		return 0
	}
	if n >= count {
		return count - 1
	}
	return n
}
