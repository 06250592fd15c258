package collection

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultCategory is used when a category-aware target has no category to fall back to.
const DefaultCategory = "main"

// TransferMode is the placement policy of a transfer.
type TransferMode int

const (
	// AddToEnd appends the selection.
	AddToEnd TransferMode = iota
	// AddBefore inserts the selection before the n-th member of the target category.
	AddBefore
	// ReplaceFrom overwrites members of the target category starting at the n-th,
	// growing the category when the selection runs past its end.
	ReplaceFrom
	// ReplaceAll replaces every member of the target category, or the whole list
	// for flat collections.
	ReplaceAll
)

var transferModeNames = map[TransferMode]string{
	AddToEnd:    "add_to_end",
	AddBefore:   "add_before",
	ReplaceFrom: "replace_from",
	ReplaceAll:  "replace_all",
}

func (m TransferMode) String() string {
	if name, ok := transferModeNames[m]; ok {
		return name
	}
	return "unknown"
}

// ParseTransferMode accepts the names returned by String, dashes allowed.
func ParseTransferMode(s string) (TransferMode, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for mode, name := range transferModeNames {
		if name == norm {
			return mode, nil
		}
	}
	return AddToEnd, fmt.Errorf("unknown transfer mode %q", s)
}

// TransferRequest describes one transfer into a target collection.
type TransferRequest struct {
	// Images and Categories are the parallel arrays of the target collection.
	Images     []string
	Categories []string
	// Selected is the source selection in the order the user picked it.
	Selected []string
	Mode     TransferMode
	// Position is 1-based and relative to the target category's own members.
	Position int
	// Category is the target category token; empty falls back to the first
	// existing category, then DefaultToken.
	Category string
	// PerCategory marks a category-aware (per-product) target.
	PerCategory bool
	// Order is the template column order used to canonicalize the result.
	Order []string
	// DefaultToken overrides DefaultCategory.
	DefaultToken string
}

// TransferResult is the new content of the target collection.
type TransferResult struct {
	Images     []string `json:"newImages"`
	Categories []string `json:"newCategories"`
	// Category is the token the selection was placed under.
	Category string `json:"category"`
}

// Transfer computes the target collection after placing the selection.
func Transfer(req TransferRequest) (TransferResult, error) {
	if len(req.Selected) == 0 {
		return TransferResult{}, ErrEmptySelection
	}
	if len(req.Categories) != len(req.Images) {
		return TransferResult{}, fmt.Errorf("images and categories differ in length: %d != %d", len(req.Images), len(req.Categories))
	}

	images := append([]string(nil), req.Images...)
	cats := append([]string(nil), req.Categories...)
	token := resolveCategory(req)
	pos := req.Position
	if pos < 1 {
		pos = 1
	}

	if !req.PerCategory {
		images, cats = transferFlat(images, cats, req.Selected, req.Mode, pos, token)
		return TransferResult{Images: images, Categories: cats, Category: token}, nil
	}

	switch req.Mode {
	case AddToEnd:
		images, cats = appendSelection(images, cats, req.Selected, token)
	case AddBefore:
		members := memberIndices(cats, token)
		at := len(images)
		if len(members) > 0 {
			if pos-1 < len(members) {
				at = members[pos-1]
			} else {
				at = members[len(members)-1] + 1
			}
		}
		images, cats = insertAt(images, cats, at, req.Selected, token)
	case ReplaceFrom:
		members := memberIndices(cats, token)
		for i, ref := range req.Selected {
			local := pos - 1 + i
			if local < len(members) {
				images[members[local]] = ref
				continue
			}
			at := len(images)
			if len(members) > 0 {
				at = members[len(members)-1] + 1
			}
			images, cats = insertAt(images, cats, at, []string{ref}, token)
			members = append(members, at)
		}
	case ReplaceAll:
		images, cats = replaceCategory(images, cats, req.Selected, token)
	default:
		return TransferResult{}, fmt.Errorf("unsupported transfer mode %d", req.Mode)
	}

	images, cats = Canonicalize(images, cats, req.Order)
	return TransferResult{Images: images, Categories: cats, Category: token}, nil
}

// transferFlat handles targets without categories, where positions index the
// whole list.
func transferFlat(images, cats, selected []string, mode TransferMode, pos int, token string) ([]string, []string) {
	switch mode {
	case AddBefore:
		at := pos - 1
		if at > len(images) {
			at = len(images)
		}
		return insertAt(images, cats, at, selected, token)
	case ReplaceFrom:
		for i, ref := range selected {
			idx := pos - 1 + i
			if idx < len(images) {
				images[idx] = ref
				continue
			}
			images = append(images, ref)
			cats = append(cats, token)
		}
		return images, cats
	case ReplaceAll:
		images = append([]string(nil), selected...)
		cats = make([]string, len(selected))
		for i := range cats {
			cats[i] = token
		}
		return images, cats
	default:
		return appendSelection(images, cats, selected, token)
	}
}

func resolveCategory(req TransferRequest) string {
	if req.Category != "" {
		return req.Category
	}
	for _, c := range req.Categories {
		if c != "" {
			return c
		}
	}
	if req.DefaultToken != "" {
		return req.DefaultToken
	}
	return DefaultCategory
}

func memberIndices(cats []string, token string) []int {
	var idx []int
	for i, c := range cats {
		if c == token {
			idx = append(idx, i)
		}
	}
	return idx
}

func appendSelection(images, cats, selected []string, token string) ([]string, []string) {
	for _, ref := range selected {
		images = append(images, ref)
		cats = append(cats, token)
	}
	return images, cats
}

func insertAt(images, cats []string, at int, refs []string, token string) ([]string, []string) {
	newImages := make([]string, 0, len(images)+len(refs))
	newImages = append(newImages, images[:at]...)
	newImages = append(newImages, refs...)
	newImages = append(newImages, images[at:]...)

	newCats := make([]string, 0, len(cats)+len(refs))
	newCats = append(newCats, cats[:at]...)
	for range refs {
		newCats = append(newCats, token)
	}
	newCats = append(newCats, cats[at:]...)
	return newImages, newCats
}

func replaceCategory(images, cats, selected []string, token string) ([]string, []string) {
	first := -1
	keptImages := make([]string, 0, len(images))
	keptCats := make([]string, 0, len(cats))
	for i, c := range cats {
		if c == token {
			if first < 0 {
				first = len(keptImages)
			}
			continue
		}
		keptImages = append(keptImages, images[i])
		keptCats = append(keptCats, c)
	}
	if first < 0 {
		return appendSelection(keptImages, keptCats, selected, token)
	}
	return insertAt(keptImages, keptCats, first, selected, token)
}

// Canonicalize stably sorts parallel arrays by category rank in order, keeping the
// relative order of members within each category.
func Canonicalize(images, cats, order []string) ([]string, []string) {
	ranking := NewCategoryOrder(order)
	idx := make([]int, len(images))
	ranks := make([]int, len(images))
	for i := range idx {
		idx[i] = i
		ranks[i] = ranking.Rank(cats[i])
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return ranks[idx[a]] < ranks[idx[b]]
	})
	outImages := make([]string, len(images))
	outCats := make([]string, len(cats))
	for i, j := range idx {
		outImages[i] = images[j]
		outCats[i] = cats[j]
	}
	return outImages, outCats
}
