package content

import (
	"sort"
)

// Sort orders a collection in place. Featured items come first in every
// collection. Work is then ordered by year descending, everything else by
// date newest first. Ties keep their file order.
func Sort(collection string, items []*Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Featured() != b.Featured() {
			return a.Featured()
		}
		if collection == "work" {
			return a.Year() > b.Year()
		}
		return a.Date().After(b.Date())
	})
}

// FilterByTag returns the items carrying tag. An empty tag or "all" returns
// the input unchanged.
func FilterByTag(items []*Item, tag string) []*Item {
	if tag == "" || tag == "all" {
		return items
	}
	var out []*Item
	for _, it := range items {
		if it.HasTag(tag) {
			out = append(out, it)
		}
	}
	return out
}

// AllTags returns the unique tags of items, sorted.
func AllTags(items []*Item) []string {
	seen := map[string]bool{}
	var tags []string
	for _, it := range items {
		for _, t := range it.Tags() {
			if !seen[t] {
				seen[t] = true
				tags = append(tags, t)
			}
		}
	}
	sort.Strings(tags)
	return tags
}

// FilterByType returns the items whose type field equals typ.
func FilterByType(items []*Item, typ string) []*Item {
	var out []*Item
	for _, it := range items {
		if it.WorkType() == typ {
			out = append(out, it)
		}
	}
	return out
}

// Featured returns the items marked featured: true.
func Featured(items []*Item) []*Item {
	var out []*Item
	for _, it := range items {
		if it.Featured() {
			out = append(out, it)
		}
	}
	return out
}
