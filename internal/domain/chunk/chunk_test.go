package chunk

import "testing"

func TestNew_Validation(t *testing.T) {
	if _, err := New("", "ml-basics", "text", 0, "", false, nil); err == nil {
		t.Error("New() with empty id succeeded")
	}
	if _, err := New("c1", "", "text", 0, "", false, nil); err == nil {
		t.Error("New() with empty book succeeded")
	}
	if _, err := New("c1", "ml-basics", "", 0, "", false, nil); err == nil {
		t.Error("New() with empty text succeeded")
	}
}

func TestNew_Accessors(t *testing.T) {
	c, err := New("c1", "ml-basics", "Gradient descent.", 42, "Optimization", true, []float32{0.1})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if c.ID() != "c1" || c.Book() != "ml-basics" || c.Text() != "Gradient descent." {
		t.Errorf("identity accessors = %q/%q/%q", c.ID(), c.Book(), c.Text())
	}
	if c.Page() != 42 || c.Section() != "Optimization" || !c.IsTOC() {
		t.Errorf("metadata accessors = %d/%q/%v", c.Page(), c.Section(), c.IsTOC())
	}
}

func TestHit_WithScore(t *testing.T) {
	c, err := New("c1", "ml-basics", "text", 0, "", false, nil)
	if err != nil {
		t.Fatal(err)
	}

	h := NewHit(c, 0.5, "ml-basics", 2)
	boosted := h.WithScore(0.9)

	if boosted.Score() != 0.9 {
		t.Errorf("WithScore() = %f", boosted.Score())
	}
	if h.Score() != 0.5 {
		t.Error("WithScore() mutated the original hit")
	}
	if boosted.Collection() != "ml-basics" || boosted.Rank() != 2 {
		t.Errorf("provenance lost: %q/%d", boosted.Collection(), boosted.Rank())
	}
}
