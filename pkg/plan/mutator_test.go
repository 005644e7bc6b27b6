package plan

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/edulabs-io/planctl/pkg/catalog"
	"github.com/edulabs-io/planctl/pkg/selection"
)

func TestAddSelected_FullSuccess(t *testing.T) {
	var calls int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/client/credit-recharge-plans/p1/items" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		calls++
		// Each response is the authoritative full list so far.
		switch calls {
		case 1:
			w.Write([]byte(`{"success":true,"data":{"items":[{"_id":"li1","itemType":"book","referenceId":"a","name":"A","quantity":1,"expiresWithPlan":true}]}}`))
		case 2:
			w.Write([]byte(`{"success":true,"data":{"items":[{"_id":"li1","itemType":"book","referenceId":"a","name":"A","quantity":1,"expiresWithPlan":true},{"_id":"li2","itemType":"book","referenceId":"b","name":"B","quantity":1,"expiresWithPlan":true}]}}`))
		default:
			t.Fatalf("unexpected extra call %d", calls)
		}
	}))
	defer srv.Close()

	idx := catalog.Index{catalog.KeyBook: {{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}}
	sel := selection.New()
	sel.Toggle(catalog.KeyBook, "a")
	sel.Toggle(catalog.KeyBook, "b")

	client := NewClient(srv.URL, "tok")
	items, added, err := client.AddSelected("p1", sel, idx, nil)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if added != 2 {
		t.Fatalf("expected 2 added, got %d", added)
	}
	if len(items) != 2 {
		t.Fatalf("expected authoritative list of 2, got %d", len(items))
	}
}

func TestAddSelected_PartialFailure(t *testing.T) {
	var calls int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Write([]byte(`{"success":true,"data":{"items":[{"_id":"li1","itemType":"book","referenceId":"a","name":"A","quantity":1,"expiresWithPlan":true}]}}`))
			return
		}
		w.WriteHeader(500)
		w.Write([]byte(`{"success":false,"message":"storage unavailable"}`))
	}))
	defer srv.Close()

	idx := catalog.Index{catalog.KeyBook: {{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}}
	sel := selection.New()
	sel.Toggle(catalog.KeyBook, "a")
	sel.Toggle(catalog.KeyBook, "b")

	client := NewClient(srv.URL, "tok")
	items, added, err := client.AddSelected("p1", sel, idx, nil)
	if err == nil {
		t.Fatal("expected mid-sequence failure to surface")
	}

	// Non-atomic by design: the first add stays committed.
	if added != 1 {
		t.Fatalf("expected 1 committed add, got %d", added)
	}
	if len(items) != 1 {
		t.Fatalf("local list must reflect the last successful call (1 item), got %d", len(items))
	}

	// The selection is the caller's to clear, and only on full success.
	if sel.TotalCount() != 2 {
		t.Fatalf("selection must stay intact after a partial failure, got %d", sel.TotalCount())
	}
}

func TestAddSelected_StopsAfterFailure(t *testing.T) {
	var calls int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(500)
		w.Write([]byte(`{"success":false,"message":"nope"}`))
	}))
	defer srv.Close()

	idx := catalog.Index{catalog.KeyBook: {{ID: "a"}, {ID: "b"}, {ID: "c"}}}
	sel := selection.New()
	for _, id := range []string{"a", "b", "c"} {
		sel.Toggle(catalog.KeyBook, id)
	}

	client := NewClient(srv.URL, "tok")
	_, added, err := client.AddSelected("p1", sel, idx, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if added != 0 {
		t.Fatalf("expected 0 added, got %d", added)
	}
	if calls != 1 {
		t.Fatalf("processing must stop at the first failure, got %d calls", calls)
	}
}

func TestRemoveItem_ServerListReplacesLocal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "DELETE" || r.URL.Path != "/api/client/credit-recharge-plans/p1/items/li1" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		// The store recomputed the list; the response wins over any local state.
		w.Write([]byte(`{"success":true,"data":{"items":[{"_id":"li2","itemType":"workbook","referenceId":"w1","name":"W","quantity":1,"expiresWithPlan":true}]}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "tok")
	items, err := client.RemoveItem("p1", "li1")
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if len(items) != 1 || items[0].ID != "li2" {
		t.Fatalf("expected the server's list verbatim, got %#v", items)
	}
}

func TestRemoveItem_MakesItemPickableAgain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":{"items":[]}}`))
	}))
	defer srv.Close()

	bundled := []LineItem{{ID: "li1", ItemType: "book", ReferenceID: "B1"}}

	f := catalog.NewFilter()
	books := []catalog.Item{{ID: "B1", Name: "Algebra", Category: "Math", SubCategory: "Algebra"}}

	if got := f.Apply(books, ExcludedIDs(bundled, catalog.KeyBook)); len(got) != 0 {
		t.Fatalf("bundled item must be hidden before removal, got %#v", got)
	}

	client := NewClient(srv.URL, "tok")
	updated, err := client.RemoveItem("p1", "li1")
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	// Exclusion recomputed from the updated list: the item is pickable again.
	got := f.Apply(books, ExcludedIDs(updated, catalog.KeyBook))
	if len(got) != 1 || got[0].ID != "B1" {
		t.Fatalf("removed item must reappear as pickable, got %#v", got)
	}
}

func TestAddSelected_ErrorNamesTheItem(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
		w.Write([]byte(`{"success":false,"message":"boom"}`))
	}))
	defer srv.Close()

	idx := catalog.Index{catalog.KeyBook: {{ID: "a"}}}
	sel := selection.New()
	sel.Toggle(catalog.KeyBook, "a")

	client := NewClient(srv.URL, "tok")
	_, _, err := client.AddSelected("p1", sel, idx, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	want := fmt.Sprintf("adding %s %s: %s", "book", "a", "boom")
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
}
