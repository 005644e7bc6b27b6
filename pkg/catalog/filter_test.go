package catalog

import "testing"

func sampleItems() []Item {
	return []Item{
		{ID: "b1", Name: "Algebra Basics", Category: "Math", SubCategory: "Algebra"},
		{ID: "b2", Name: "Geometry Primer", Category: "Math", SubCategory: "Geometry"},
		{ID: "b3", Name: "Organic Chemistry", Category: "Science", SubCategory: "Chemistry"},
		{ID: "b4", Name: "Mystery Novel", Category: "Science", SubCategory: "Other", CustomSubCategory: "Fiction"},
	}
}

func TestFilter_Exclusion(t *testing.T) {
	f := NewFilter()
	got := f.Apply(sampleItems(), map[string]bool{"b1": true})

	for _, it := range got {
		if it.ID == "b1" {
			t.Fatalf("excluded id b1 must never be visible, got %#v", got)
		}
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 visible items, got %d", len(got))
	}
}

func TestFilter_MainCategoryCaseInsensitive(t *testing.T) {
	f := NewFilter()
	f.SetCategory("math")

	got := f.Apply(sampleItems(), nil)
	if len(got) != 2 {
		t.Fatalf("expected 2 math items, got %d", len(got))
	}
}

func TestFilter_EffectiveSubCategory(t *testing.T) {
	f := NewFilter()
	f.SetCategory("Science")
	f.SetSubCategory("fiction")

	got := f.Apply(sampleItems(), nil)
	if len(got) != 1 || got[0].ID != "b4" {
		t.Fatalf("expected the custom-subcategory item only, got %#v", got)
	}
}

func TestFilter_SearchSubstring(t *testing.T) {
	f := NewFilter()
	f.Query = "PRIMER"

	got := f.Apply(sampleItems(), nil)
	if len(got) != 1 || got[0].ID != "b2" {
		t.Fatalf("expected b2 for case-insensitive substring search, got %#v", got)
	}
}

func TestFilter_SetCategoryResetsSubCategory(t *testing.T) {
	f := NewFilter()
	f.SetCategory("Math")
	f.SetSubCategory("Algebra")

	f.SetCategory("Science")
	if f.SubCategory != FilterAll {
		t.Fatalf("changing main category must reset subcategory to %q, got %q", FilterAll, f.SubCategory)
	}

	// Even a shared subcategory name must not survive the switch.
	f.SetCategory("Math")
	f.SetSubCategory("Shared")
	f.SetCategory("Science")
	if f.SubCategory != FilterAll {
		t.Fatalf("shared subcategory name must not survive a category switch, got %q", f.SubCategory)
	}
}

func TestFilter_CombinedConstraints(t *testing.T) {
	f := NewFilter()
	f.SetCategory("Math")
	f.Query = "geometry"

	got := f.Apply(sampleItems(), map[string]bool{"b1": true})
	if len(got) != 1 || got[0].ID != "b2" {
		t.Fatalf("expected only b2, got %#v", got)
	}
}

func TestAvailableSubCategories_Union(t *testing.T) {
	mapping := SubCategoryMapping{
		"Math":    {"Algebra", "Geometry", "Calculus"},
		"Science": {"Chemistry"},
	}

	f := NewFilter()
	f.SetCategory("Math")
	filtered := f.Apply(sampleItems(), nil)

	got := AvailableSubCategories(mapping, f.Category, filtered)
	want := []string{"Algebra", "Calculus", "Geometry"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestAvailableSubCategories_IncludesObservedCustom(t *testing.T) {
	mapping := SubCategoryMapping{"Science": {"Chemistry"}}

	f := NewFilter()
	f.SetCategory("Science")
	filtered := f.Apply(sampleItems(), nil)

	got := AvailableSubCategories(mapping, f.Category, filtered)
	found := false
	for _, s := range got {
		if s == "Fiction" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected ad-hoc custom subcategory 'Fiction' among options, got %v", got)
	}
}
