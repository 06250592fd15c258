package collection

// ChangeKind classifies an update of an authoritative list.
type ChangeKind int

const (
	// VisibilityOnly means no new identities appeared (hide/restore); cached
	// artifacts stay valid.
	VisibilityOnly ChangeKind = iota
	// ContentChanged means new identities appeared; the cache must be dropped and
	// the page reloaded in blocking mode.
	ContentChanged
)

func (k ChangeKind) String() string {
	if k == ContentChanged {
		return "content-changed"
	}
	return "visibility-only"
}

// Diff compares two key snapshots. Only a non-empty prev with at least one key in
// next that prev lacks counts as a content change.
func Diff(prev, next []string) ChangeKind {
	if len(prev) == 0 {
		return VisibilityOnly
	}
	prevSet := make(map[string]struct{}, len(prev))
	for _, k := range prev {
		prevSet[k] = struct{}{}
	}
	for _, k := range next {
		if _, ok := prevSet[k]; !ok {
			return ContentChanged
		}
	}
	return VisibilityOnly
}

// Watcher keeps the previous snapshot of one cache's keys across updates.
type Watcher struct {
	prev []string
}

// Observe classifies next against the retained snapshot and retains next.
func (w *Watcher) Observe(next []string) ChangeKind {
	kind := Diff(w.prev, next)
	w.prev = append(w.prev[:0:0], next...)
	return kind
}

// Reset forgets the snapshot; called when the owning product changes.
func (w *Watcher) Reset() {
	w.prev = nil
}
