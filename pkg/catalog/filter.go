package catalog

import (
	"sort"
	"strings"
)

// FilterAll is the sentinel meaning "no constraint" for the category and
// subcategory filters.
const FilterAll = "All"

// Filter holds the operator-visible constraints over one category bucket.
// Construct with NewFilter and mutate through the setters: changing the main
// category must reset the subcategory, a stale subcategory from a different
// main category is invalid.
type Filter struct {
	Query       string
	Category    string
	SubCategory string
}

func NewFilter() Filter {
	return Filter{Category: FilterAll, SubCategory: FilterAll}
}

// SetCategory changes the main-category constraint and resets the
// subcategory to FilterAll.
func (f *Filter) SetCategory(category string) {
	if category == "" {
		category = FilterAll
	}
	f.Category = category
	f.SubCategory = FilterAll
}

// SetSubCategory changes the subcategory constraint. Call after SetCategory.
func (f *Filter) SetSubCategory(sub string) {
	if sub == "" {
		sub = FilterAll
	}
	f.SubCategory = sub
}

// Apply computes the visible subset of items. excluded holds catalog ids
// already bundled for this category's item type; it must be recomputed from
// the authoritative line-item list after every mutation. Order of items is
// preserved.
func (f Filter) Apply(items []Item, excluded map[string]bool) []Item {
	var out []Item
	for _, it := range items {
		if excluded[it.ID] {
			continue
		}
		if f.Category != FilterAll && !strings.EqualFold(it.Category, f.Category) {
			continue
		}
		if f.SubCategory != FilterAll && !strings.EqualFold(it.EffectiveSubCategory(), f.SubCategory) {
			continue
		}
		if f.Query != "" && !strings.Contains(strings.ToLower(it.Name), strings.ToLower(f.Query)) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// AvailableSubCategories derives the subcategory options for the current
// main category: the statically known names from the category mapping,
// unioned with subcategories actually observed among the filtered items so
// ad-hoc/custom labels still show up. Sorted, deduplicated case-insensitively.
func AvailableSubCategories(mapping SubCategoryMapping, mainCategory string, filtered []Item) []string {
	seen := make(map[string]string)

	add := func(name string) {
		if name == "" {
			return
		}
		lower := strings.ToLower(name)
		if _, ok := seen[lower]; !ok {
			seen[lower] = name
		}
	}

	for name, subs := range mapping {
		if mainCategory != FilterAll && !strings.EqualFold(name, mainCategory) {
			continue
		}
		for _, s := range subs {
			add(s)
		}
	}
	for _, it := range filtered {
		add(it.EffectiveSubCategory())
	}

	out := make([]string, 0, len(seen))
	for _, name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
