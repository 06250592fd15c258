package collection

import (
	"fmt"
	"strconv"
	"strings"
)

// KeyMode selects which identity keys the fetch cache of a collection.
type KeyMode int

const (
	// PerImage collections key the cache by reference.
	PerImage KeyMode = iota
	// PerProduct collections key the cache by stable item id, because a reference
	// may repeat across categories.
	PerProduct
)

func (m KeyMode) String() string {
	switch m {
	case PerImage:
		return "per_image"
	case PerProduct:
		return "per_product"
	default:
		return "unknown"
	}
}

// ParseKeyMode accepts "per_image" and "per_product" (case-insensitive, dashes allowed).
func ParseKeyMode(s string) (KeyMode, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_") {
	case "", "per_image":
		return PerImage, nil
	case "per_product":
		return PerProduct, nil
	default:
		return PerImage, fmt.Errorf("unknown collection mode %q", s)
	}
}

// Entry is one position of an authoritative list.
type Entry struct {
	Reference string `json:"reference"`
	Category  string `json:"category"`
	StableID  string `json:"stableId,omitempty"`
}

// Key returns the identity of the entry for the given mode.
func (e Entry) Key(mode KeyMode) string {
	if mode == PerProduct && e.StableID != "" {
		return e.StableID
	}
	return e.Reference
}

// Identity is what the differ compares for the entry. A per-product stable id is
// positional and is reused when another image takes its slot, so the reference
// bound to it is part of the identity.
func (e Entry) Identity(mode KeyMode) string {
	if mode == PerProduct && e.StableID != "" {
		return e.StableID + "\x00" + e.Reference
	}
	return e.Reference
}

// StableID builds the identity of the index-th member of category within a product.
func StableID(productKey, category string, index int) string {
	return productKey + "|" + category + "|" + strconv.Itoa(index)
}

// AssignStableIDs builds entries from parallel reference/category arrays, numbering
// members within each category in order of appearance.
func AssignStableIDs(productKey string, refs, categories []string) []Entry {
	counts := make(map[string]int)
	entries := make([]Entry, len(refs))
	for i, ref := range refs {
		category := ""
		if i < len(categories) {
			category = categories[i]
		}
		entries[i] = Entry{
			Reference: ref,
			Category:  category,
			StableID:  StableID(productKey, category, counts[category]),
		}
		counts[category]++
	}
	return entries
}

// Split returns the parallel reference and category arrays of entries.
func Split(entries []Entry) (refs, categories []string) {
	refs = make([]string, len(entries))
	categories = make([]string, len(entries))
	for i, e := range entries {
		refs[i] = e.Reference
		categories[i] = e.Category
	}
	return refs, categories
}
