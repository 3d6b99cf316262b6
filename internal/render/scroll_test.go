package render

import "testing"

func linesOf(n int) []Line {
	out := make([]Line, n)
	for i := range out {
		out[i] = Line{Value: "line"}
	}
	return out
}

func TestReviewerSaturatesAtBothEnds(t *testing.T) {
	r := NewReviewer(linesOf(3))
	if r.Cursor() != 0 {
		t.Fatalf("expected initial cursor 0, got %d", r.Cursor())
	}

	r.Up()
	if r.Cursor() != 0 {
		t.Fatalf("expected Up at top to saturate at 0, got %d", r.Cursor())
	}

	r.Down()
	r.Down()
	if r.Cursor() != 2 {
		t.Fatalf("expected cursor 2, got %d", r.Cursor())
	}
	r.Down()
	if r.Cursor() != 2 {
		t.Fatalf("expected Down at bottom to saturate at MaxScroll=2, got %d", r.Cursor())
	}

	r.Up()
	if r.Cursor() != 1 {
		t.Fatalf("expected cursor 1 after Up, got %d", r.Cursor())
	}
}

func TestReviewerEmptyLines(t *testing.T) {
	r := NewReviewer(nil)
	if r.MaxScroll() != 0 {
		t.Fatalf("expected MaxScroll 0 for empty lines, got %d", r.MaxScroll())
	}
	r.Down()
	r.Up()
	if r.Cursor() != 0 {
		t.Fatalf("expected cursor to remain 0 on empty lines, got %d", r.Cursor())
	}
}

func TestReviewerSingleLine(t *testing.T) {
	r := NewReviewer(linesOf(1))
	if r.MaxScroll() != 0 {
		t.Fatalf("expected MaxScroll 0 for single line, got %d", r.MaxScroll())
	}
	r.Down()
	if r.Cursor() != 0 {
		t.Fatalf("expected cursor to stay 0, got %d", r.Cursor())
	}
}
