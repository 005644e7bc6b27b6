package catalog

import "strings"

// CategoryKey partitions catalog and selection state into the four content
// sources an operator can bundle from.
type CategoryKey string

const (
	KeyBook           CategoryKey = "book"
	KeyWorkbook       CategoryKey = "workbook"
	KeyTestObjective  CategoryKey = "testObjective"
	KeyTestSubjective CategoryKey = "testSubjective"
)

// itemTypeMap is the source of truth mapping each category key to the
// backend item-type tag. Both the create path and the add-item path must go
// through this table; never duplicate it at a call site.
var itemTypeMap = map[CategoryKey]string{
	KeyBook:           "book",
	KeyWorkbook:       "workbook",
	KeyTestObjective:  "objective-test",
	KeyTestSubjective: "subjective-test",
}

// keyMap is a reverse map generated from itemTypeMap for efficient lookups.
var keyMap map[string]CategoryKey

func init() {
	keyMap = make(map[string]CategoryKey)
	for key, tag := range itemTypeMap {
		keyMap[tag] = key
	}
}

// Keys returns the four category keys in stable order.
func Keys() []CategoryKey {
	return []CategoryKey{KeyBook, KeyWorkbook, KeyTestObjective, KeyTestSubjective}
}

// ParseKey resolves operator input (case-insensitive) to a CategoryKey.
func ParseKey(s string) (CategoryKey, bool) {
	for _, k := range Keys() {
		if strings.EqualFold(s, string(k)) {
			return k, true
		}
	}
	return "", false
}

func (k CategoryKey) Valid() bool {
	_, ok := itemTypeMap[k]
	return ok
}

// ItemType returns the backend item-type tag for this key.
func (k CategoryKey) ItemType() string {
	return itemTypeMap[k]
}

// KeyForItemType resolves a backend item-type tag back to its category key.
func KeyForItemType(tag string) (CategoryKey, bool) {
	k, ok := keyMap[tag]
	return k, ok
}

// Item is the normalized representation of one sellable content unit.
// IDs are unique within their category key only; the same id string under
// "book" and "workbook" refers to two different items.
type Item struct {
	ID                string
	Name              string
	ImageURL          string
	Category          string
	SubCategory       string
	CustomSubCategory string
}

// EffectiveSubCategory resolves the display subcategory: the custom label
// wins when the item sits in the "Other" bucket and a custom value exists.
func (it Item) EffectiveSubCategory() string {
	if strings.EqualFold(it.SubCategory, "Other") && it.CustomSubCategory != "" {
		return it.CustomSubCategory
	}
	return it.SubCategory
}

// Index caches the normalized catalog per category key. Loading a key
// replaces its bucket wholesale; buckets are never merged.
type Index map[CategoryKey][]Item

// Lookup finds an item by id within one category bucket.
func (idx Index) Lookup(key CategoryKey, id string) (Item, bool) {
	for _, it := range idx[key] {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// NameOf returns the display name for an id, falling back to "Item" when the
// selection is stale (e.g. the catalog was refreshed underneath it).
func (idx Index) NameOf(key CategoryKey, id string) string {
	if it, ok := idx.Lookup(key, id); ok {
		return it.Name
	}
	return "Item"
}
