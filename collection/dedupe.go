package collection

// DisplayItem is one unique reference of the active projection, pointing back to
// the position of its first occurrence.
type DisplayItem struct {
	Reference   string `json:"reference"`
	OriginIndex int    `json:"originIndex"`
	StableID    string `json:"stableId,omitempty"`
}

// Key returns the cache key of the item for the given mode.
func (d DisplayItem) Key(mode KeyMode) string {
	if mode == PerProduct && d.StableID != "" {
		return d.StableID
	}
	return d.Reference
}

// Dedupe collapses repeated references, keeping the first occurrence of each.
// Empty references are skipped.
func Dedupe(refs []string) []DisplayItem {
	return dedupe(refs, nil)
}

// DedupeWithIDs is Dedupe for per-product collections where every position also
// carries a stable id. ids must be parallel to refs.
func DedupeWithIDs(refs, ids []string) ([]DisplayItem, error) {
	if len(ids) != len(refs) {
		return nil, ErrStableIDLength
	}
	return dedupe(refs, ids), nil
}

func dedupe(refs, ids []string) []DisplayItem {
	seen := make(map[string]struct{}, len(refs))
	items := make([]DisplayItem, 0, len(refs))
	for i, ref := range refs {
		if ref == "" {
			continue
		}
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		item := DisplayItem{Reference: ref, OriginIndex: i}
		if ids != nil {
			item.StableID = ids[i]
		}
		items = append(items, item)
	}
	return items
}

// References returns the reference sequence of items.
func References(items []DisplayItem) []string {
	refs := make([]string, len(items))
	for i, item := range items {
		refs[i] = item.Reference
	}
	return refs
}
