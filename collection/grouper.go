package collection

// CategoryOrder ranks category tokens: tokens of the template order rank by their
// index, any other token ranks after all of them in first-seen order.
type CategoryOrder struct {
	rank map[string]int
	next int
}

// NewCategoryOrder creates a ranking for the template column order.
func NewCategoryOrder(order []string) *CategoryOrder {
	o := &CategoryOrder{rank: make(map[string]int, len(order))}
	for _, token := range order {
		if _, ok := o.rank[token]; ok {
			continue
		}
		o.rank[token] = o.next
		o.next++
	}
	return o
}

// Rank returns the position of token, registering unknown tokens as they are seen.
func (o *CategoryOrder) Rank(token string) int {
	if r, ok := o.rank[token]; ok {
		return r
	}
	o.rank[token] = o.next
	o.next++
	return o.rank[token]
}

// CategoryGroup is the members of one category in display order.
type CategoryGroup struct {
	Category string        `json:"category"`
	Members  []DisplayItem `json:"members"`
}

// Categorized pairs a display item with its category.
type Categorized struct {
	Item     DisplayItem
	Category string
}

// Group buckets items by category. Every token of order gets a group, empty or not,
// followed by the remaining tokens in first-seen order.
func Group(items []Categorized, order []string) []CategoryGroup {
	return group(items, order, func(string) bool { return true })
}

// GroupPage groups the items of one page. A template token without members on
// the page only gets an empty placeholder when populated reports it has no
// members anywhere in the active projection.
func GroupPage(items []Categorized, order []string, populated map[string]bool) []CategoryGroup {
	return group(items, order, func(token string) bool { return !populated[token] })
}

func group(items []Categorized, order []string, placeholder func(string) bool) []CategoryGroup {
	buckets := make(map[string][]DisplayItem)
	var extra []string
	known := make(map[string]struct{}, len(order))
	for _, token := range order {
		known[token] = struct{}{}
	}
	for _, it := range items {
		if _, ok := buckets[it.Category]; !ok {
			if _, isKnown := known[it.Category]; !isKnown {
				extra = append(extra, it.Category)
			}
		}
		buckets[it.Category] = append(buckets[it.Category], it.Item)
	}

	groups := make([]CategoryGroup, 0, len(order)+len(extra))
	emitted := make(map[string]struct{}, len(order))
	for _, token := range order {
		if _, dup := emitted[token]; dup {
			continue
		}
		emitted[token] = struct{}{}
		members, ok := buckets[token]
		if !ok && !placeholder(token) {
			continue
		}
		if members == nil {
			members = []DisplayItem{}
		}
		groups = append(groups, CategoryGroup{Category: token, Members: members})
	}
	for _, token := range extra {
		groups = append(groups, CategoryGroup{Category: token, Members: buckets[token]})
	}
	return groups
}
