// Package plan implements the credit-recharge-plan draft, its line-item
// assembly, and the client for the plan store collaborator.
package plan

import (
	"strconv"
	"strings"

	"github.com/edulabs-io/planctl/internal/validate"
	"github.com/edulabs-io/planctl/pkg/catalog"
	"github.com/edulabs-io/planctl/pkg/selection"
)

// LineItem is the persisted association between a plan and one catalog
// item. ReferenceID points into an external catalog and is never validated
// beyond pick-time exclusion; Name is copied at bundling time, not joined
// live.
type LineItem struct {
	ID              string `json:"_id,omitempty"`
	ItemType        string `json:"itemType"`
	ReferenceID     string `json:"referenceId"`
	Name            string `json:"name"`
	Quantity        int    `json:"quantity"`
	ExpiresWithPlan bool   `json:"expiresWithPlan"`
}

// Draft holds the in-progress plan's scalar attributes. Duration and
// Credits stay raw strings so "unset" survives until submission, where
// blanks coerce to 0 (the store treats 0 as no-expiry / no-credits).
type Draft struct {
	PlanID      string  `json:"-"` // non-empty in edit mode
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description" validate:"required"`
	Duration    string  `json:"duration" validate:"omitempty,number"`
	Credits     string  `json:"credits" validate:"omitempty,number"`
	MRP         float64 `json:"mrp" validate:"gte=0"`
	OfferPrice  float64 `json:"offerPrice" validate:"gte=0"`
	Category    string  `json:"category" validate:"required,oneof=Basic Premium Enterprise"`
}

// Normalize trims the free-text fields before validation.
func (d *Draft) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Description = strings.TrimSpace(d.Description)
	d.Duration = strings.TrimSpace(d.Duration)
	d.Credits = strings.TrimSpace(d.Credits)
	d.Category = strings.TrimSpace(d.Category)
}

// Validate checks the submission preconditions. Runs client-side, before
// any network call.
func (d Draft) Validate() error {
	return validate.Struct(d)
}

// DurationDays returns the submitted duration, blank coerced to 0.
func (d Draft) DurationDays() int {
	return coerceInt(d.Duration)
}

// CreditCount returns the submitted credits, blank coerced to 0.
func (d Draft) CreditCount() int {
	return coerceInt(d.Credits)
}

func coerceInt(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// AssembleItems materializes the selection into line items, in the fixed
// category-key order with ids sorted inside each key. The item-type tag
// comes from the single static table in the catalog package; names are
// looked up from the index with the stale-selection fallback.
func AssembleItems(sel selection.Set, idx catalog.Index) []LineItem {
	var items []LineItem
	for _, key := range catalog.Keys() {
		for _, id := range sel.IDs(key) {
			items = append(items, LineItem{
				ItemType:        key.ItemType(),
				ReferenceID:     id,
				Name:            idx.NameOf(key, id),
				Quantity:        1,
				ExpiresWithPlan: true,
			})
		}
	}
	return items
}

// ExcludedIDs collects the reference ids already bundled for key's item
// type. Feed the result to catalog.Filter.Apply so an already-bundled item
// cannot be picked again; recompute after every successful mutation.
func ExcludedIDs(items []LineItem, key catalog.CategoryKey) map[string]bool {
	out := make(map[string]bool)
	tag := key.ItemType()
	for _, li := range items {
		if li.ItemType == tag {
			out[li.ReferenceID] = true
		}
	}
	return out
}
