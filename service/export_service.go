package service

import (
	"fmt"

	"product-image-studio/collection"
	"product-image-studio/models"
)

// BuildRows builds the spreadsheet payload of a product: a header row with one
// numbered slot per member ("main 1", "main 2", ...) and a row of references.
// Template columns without members get one empty slot. Duplicates are kept.
func BuildRows(entries []collection.Entry, order []string) models.ExportPayload {
	tokens := make([]string, 0, len(order))
	seen := make(map[string]bool, len(order))
	for _, token := range order {
		if seen[token] {
			continue
		}
		seen[token] = true
		tokens = append(tokens, token)
	}

	buckets := make(map[string][]string)
	for _, e := range entries {
		if !seen[e.Category] {
			seen[e.Category] = true
			tokens = append(tokens, e.Category)
		}
		buckets[e.Category] = append(buckets[e.Category], e.Reference)
	}

	header := []string{}
	values := []string{}
	for _, token := range tokens {
		refs := buckets[token]
		if len(refs) == 0 {
			header = append(header, fmt.Sprintf("%s 1", token))
			values = append(values, "")
			continue
		}
		for i, ref := range refs {
			header = append(header, fmt.Sprintf("%s %d", token, i+1))
			values = append(values, ref)
		}
	}

	return models.ExportPayload{Rows: [][]string{header, values}}
}

// BuildAIRows is BuildRows without entries whose cached artifact is display-only.
// Entries not fetched yet are kept.
func BuildAIRows(entries []collection.Entry, order []string, cache *collection.FetchCache, mode collection.KeyMode) models.ExportPayload {
	usable := make([]collection.Entry, 0, len(entries))
	for _, e := range entries {
		if cached, ok := cache.Get(e.Key(mode)); ok && cached.DisplayOnly() {
			continue
		}
		usable = append(usable, e)
	}
	return BuildRows(usable, order)
}
