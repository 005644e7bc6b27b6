package plan

import (
	"fmt"

	"github.com/edulabs-io/planctl/pkg/catalog"
	"github.com/edulabs-io/planctl/pkg/selection"
)

// AddSelected pushes every selected item into a persisted plan, one call at
// a time. Each response carries the authoritative item list and is folded
// into the running state before the next call goes out; issuing the calls
// concurrently would let an earlier response's stale list overwrite a later
// one's.
//
// The operation is deliberately non-atomic: on a mid-sequence failure the
// items already added stay committed, the returned list reflects the last
// successful call, and added reports how many calls went through. The
// caller clears the selection only when err is nil.
func (c *Client) AddSelected(planID string, sel selection.Set, idx catalog.Index, current []LineItem) (items []LineItem, added int, err error) {
	pending := AssembleItems(sel, idx)
	items = current

	for _, li := range pending {
		list, callErr := c.AddItem(planID, li)
		if callErr != nil {
			return items, added, fmt.Errorf("adding %s %s: %w", li.ItemType, li.ReferenceID, callErr)
		}
		items = list
		added++
	}
	return items, added, nil
}
