// Package selection tracks which catalog items the operator has chosen per
// category, independent of what the current filter makes visible.
package selection

import (
	"sort"

	"github.com/edulabs-io/planctl/pkg/catalog"
)

// Set maps each category key to the chosen catalog item ids. The zero value
// is not usable; construct with New.
type Set map[catalog.CategoryKey]map[string]bool

func New() Set {
	s := make(Set, len(catalog.Keys()))
	for _, k := range catalog.Keys() {
		s[k] = make(map[string]bool)
	}
	return s
}

// Toggle flips membership of id under key. Applying the same toggle twice
// restores the original state.
func (s Set) Toggle(key catalog.CategoryKey, id string) {
	if s[key][id] {
		delete(s[key], id)
		return
	}
	s[key][id] = true
}

// SelectAllVisible unions visibleIds into key's set. Ids selected earlier
// under a different filter are never removed.
func (s Set) SelectAllVisible(key catalog.CategoryKey, visibleIds []string) {
	for _, id := range visibleIds {
		s[key][id] = true
	}
}

// Clear empties exactly key's set, leaving the other keys untouched.
func (s Set) Clear(key catalog.CategoryKey) {
	s[key] = make(map[string]bool)
}

// ClearAll empties every key's set.
func (s Set) ClearAll() {
	for _, k := range catalog.Keys() {
		s[k] = make(map[string]bool)
	}
}

func (s Set) Has(key catalog.CategoryKey, id string) bool {
	return s[key][id]
}

// Count returns the number of selected ids under key.
func (s Set) Count(key catalog.CategoryKey) int {
	return len(s[key])
}

// TotalCount is the operator-facing "items selected" number: the sum of the
// four per-key set sizes.
func (s Set) TotalCount() int {
	n := 0
	for _, k := range catalog.Keys() {
		n += len(s[k])
	}
	return n
}

// IDs returns key's selected ids sorted, for deterministic iteration.
func (s Set) IDs(key catalog.CategoryKey) []string {
	ids := make([]string, 0, len(s[key]))
	for id := range s[key] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
