package catalog

import "github.com/tidwall/gjson"

// ExtractItems pulls the raw item array out of a collection response body.
// The backends are inconsistent: some return a bare JSON array, others wrap
// it under "data" or a collection-specific field ("books", "tests", ...).
// Fallback order: bare array, "data", then the wrapper field.
func ExtractItems(body, wrapperField string) []gjson.Result {
	root := gjson.Parse(body)
	if root.IsArray() {
		return root.Array()
	}
	if data := root.Get("data"); data.IsArray() {
		return data.Array()
	}
	if wrapperField != "" {
		if wrapped := root.Get(wrapperField); wrapped.IsArray() {
			return wrapped.Array()
		}
	}
	return nil
}

// NormalizeItem maps one raw catalog object to an Item. Field names drift
// across the four collections, so every field has an explicit fallback order.
func NormalizeItem(raw gjson.Result) Item {
	return Item{
		ID:                firstString(raw, "_id", "id"),
		Name:              firstStringDefault(raw, "Untitled", "title", "name"),
		ImageURL:          firstString(raw, "coverImageUrl", "imageUrl"),
		Category:          firstStringDefault(raw, "General", "mainCategory", "category"),
		SubCategory:       firstStringDefault(raw, "Other", "subCategory"),
		CustomSubCategory: raw.Get("customSubCategory").Str,
	}
}

// NormalizeItems runs NormalizeItem over a raw array, skipping entries with
// no usable id.
func NormalizeItems(raw []gjson.Result) []Item {
	items := make([]Item, 0, len(raw))
	for _, r := range raw {
		it := NormalizeItem(r)
		if it.ID == "" {
			continue
		}
		items = append(items, it)
	}
	return items
}

func firstString(raw gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := raw.Get(p); v.Exists() && v.Str != "" {
			return v.Str
		}
	}
	return ""
}

func firstStringDefault(raw gjson.Result, fallback string, paths ...string) string {
	if s := firstString(raw, paths...); s != "" {
		return s
	}
	return fallback
}
