package scope

import "testing"

func TestSingle(t *testing.T) {
	sel, err := Single("book-a")
	if err != nil {
		t.Fatalf("Single: %v", err)
	}
	if !sel.IsSingle() || sel.Book() != "book-a" || sel.Size() != 1 {
		t.Errorf("unexpected selector: %v", sel.Collections())
	}
}

func TestSingle_Empty(t *testing.T) {
	if _, err := Single(""); err == nil {
		t.Error("expected error for empty book")
	}
}

func TestBooks_SortsAndDedupes(t *testing.T) {
	sel, err := Books([]string{"zeta", "alpha", "zeta", "mid"})
	if err != nil {
		t.Fatalf("Books: %v", err)
	}
	got := sel.Collections()
	want := []string{"alpha", "mid", "zeta"}
	if len(got) != len(want) {
		t.Fatalf("collections = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("collections = %v, want %v", got, want)
			break
		}
	}
}

func TestBooks_Empty(t *testing.T) {
	if _, err := Books(nil); err == nil {
		t.Error("expected error for empty list")
	}
	if _, err := Books([]string{"a", ""}); err == nil {
		t.Error("expected error for blank identifier")
	}
}

func TestBook_WideScope(t *testing.T) {
	sel, err := Books([]string{"a", "b"})
	if err != nil {
		t.Fatalf("Books: %v", err)
	}
	if sel.IsSingle() {
		t.Error("two-book scope reported single")
	}
	if sel.Book() != "" {
		t.Errorf("Book() = %q, want empty for wide scope", sel.Book())
	}
}

func TestContains(t *testing.T) {
	sel, err := Books([]string{"a", "b"})
	if err != nil {
		t.Fatalf("Books: %v", err)
	}
	if !sel.Contains("a") || sel.Contains("c") {
		t.Error("Contains mismatch")
	}
}

// Collections returns a copy; mutating it does not corrupt the selector.
func TestCollections_Copy(t *testing.T) {
	sel, err := Books([]string{"a", "b"})
	if err != nil {
		t.Fatalf("Books: %v", err)
	}
	sel.Collections()[0] = "mutated"
	if sel.Collections()[0] != "a" {
		t.Error("selector leaked internal slice")
	}
}
