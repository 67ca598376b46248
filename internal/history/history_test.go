package history

import (
	"testing"

	"arena/internal/rules"
)

func TestMovetextRendersMoveNumbersOnWhiteOnly(t *testing.T) {
	b := rules.NewBoard()
	h := New()

	for _, san := range []string{"e4", "e5", "Nf3", "Nc6"} {
		m, err := b.Execute(san)
		if err != nil {
			t.Fatalf("Execute(%q) failed: %v", san, err)
		}
		h.Append(san, m)
	}

	want := "1. e4 e5 2. Nf3 Nc6"
	if got := h.Movetext(); got != want {
		t.Fatalf("Movetext() = %q, want %q", got, want)
	}
	if h.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", h.Len())
	}
}

func TestMovetextOddPlyCount(t *testing.T) {
	b := rules.NewBoard()
	h := New()
	for _, san := range []string{"e4", "e5", "Nf3"} {
		m, err := b.Execute(san)
		if err != nil {
			t.Fatalf("Execute(%q) failed: %v", san, err)
		}
		h.Append(san, m)
	}
	want := "1. e4 e5 2. Nf3"
	if got := h.Movetext(); got != want {
		t.Fatalf("Movetext() = %q, want %q", got, want)
	}
}

func TestLastSANEmptyHistory(t *testing.T) {
	h := New()
	if _, ok := h.LastSAN(); ok {
		t.Fatalf("expected LastSAN to report false on an empty history")
	}
}
