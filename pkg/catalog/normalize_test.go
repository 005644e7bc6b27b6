package catalog

import "testing"

func TestExtractItems_ResponseShapes(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wrapper string
		want    int
	}{
		{
			name:    "bare array",
			body:    `[{"_id":"a"},{"_id":"b"}]`,
			wrapper: "books",
			want:    2,
		},
		{
			name:    "wrapped under data",
			body:    `{"data":[{"_id":"a"}]}`,
			wrapper: "books",
			want:    1,
		},
		{
			name:    "wrapped under collection field",
			body:    `{"books":[{"_id":"a"},{"_id":"b"},{"_id":"c"}]}`,
			wrapper: "books",
			want:    3,
		},
		{
			name:    "tests wrapper",
			body:    `{"tests":[{"_id":"t1"}]}`,
			wrapper: "tests",
			want:    1,
		},
		{
			name:    "data wins over collection field",
			body:    `{"data":[{"_id":"a"}],"books":[{"_id":"x"},{"_id":"y"}]}`,
			wrapper: "books",
			want:    1,
		},
		{
			name:    "unrecognized shape",
			body:    `{"weird":true}`,
			wrapper: "books",
			want:    0,
		},
		{
			name:    "not json",
			body:    `<html><title>502 Bad Gateway</title></html>`,
			wrapper: "books",
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractItems(tt.body, tt.wrapper)
			if len(got) != tt.want {
				t.Fatalf("expected %d raw items, got %d", tt.want, len(got))
			}
		})
	}
}

func TestNormalizeItem_FieldFallbacks(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Item
	}{
		{
			name: "underscore id and title",
			raw:  `{"_id":"b1","title":"Algebra","coverImageUrl":"http://x/a.png","mainCategory":"Math","subCategory":"Basics"}`,
			want: Item{ID: "b1", Name: "Algebra", ImageURL: "http://x/a.png", Category: "Math", SubCategory: "Basics"},
		},
		{
			name: "plain id and name",
			raw:  `{"id":"w1","name":"Fractions","imageUrl":"http://x/w.png","category":"Math","subCategory":"Basics"}`,
			want: Item{ID: "w1", Name: "Fractions", ImageURL: "http://x/w.png", Category: "Math", SubCategory: "Basics"},
		},
		{
			name: "all defaults",
			raw:  `{"_id":"t1"}`,
			want: Item{ID: "t1", Name: "Untitled", Category: "General", SubCategory: "Other"},
		},
		{
			name: "custom subcategory passthrough",
			raw:  `{"_id":"t2","name":"Essay","subCategory":"Other","customSubCategory":"Creative Writing"}`,
			want: Item{ID: "t2", Name: "Essay", Category: "General", SubCategory: "Other", CustomSubCategory: "Creative Writing"},
		},
		{
			name: "underscore id preferred over id",
			raw:  `{"_id":"real","id":"legacy","name":"X"}`,
			want: Item{ID: "real", Name: "X", Category: "General", SubCategory: "Other"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeItem(parseOne(t, tt.raw))
			if got != tt.want {
				t.Fatalf("normalized item mismatch:\n got  %#v\n want %#v", got, tt.want)
			}
		})
	}
}

func TestNormalizeItems_SkipsIDless(t *testing.T) {
	raw := ExtractItems(`[{"name":"no id"},{"_id":"ok","name":"fine"}]`, "")
	got := NormalizeItems(raw)
	if len(got) != 1 {
		t.Fatalf("expected 1 item, got %d", len(got))
	}
	if got[0].ID != "ok" {
		t.Fatalf("expected id 'ok', got %q", got[0].ID)
	}
}

func TestEffectiveSubCategory(t *testing.T) {
	it := Item{SubCategory: "Other", CustomSubCategory: "Creative Writing"}
	if got := it.EffectiveSubCategory(); got != "Creative Writing" {
		t.Fatalf("expected custom label, got %q", got)
	}

	it = Item{SubCategory: "Basics", CustomSubCategory: "ignored"}
	if got := it.EffectiveSubCategory(); got != "Basics" {
		t.Fatalf("custom label must only apply to the Other bucket, got %q", got)
	}

	it = Item{SubCategory: "Other"}
	if got := it.EffectiveSubCategory(); got != "Other" {
		t.Fatalf("expected Other when no custom label set, got %q", got)
	}
}
