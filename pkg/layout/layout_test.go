package layout

import (
	"math/rand"
	"testing"

	"marginalia/pkg/models"
)

func card(id string, start int, expanded bool) models.Annotation {
	return models.Annotation{ID: id, FileID: "f", StartLine: start, EndLine: start, IsExpanded: expanded}
}

func TestComputeEmpty(t *testing.T) {
	if got := Compute(nil, 21); len(got) != 0 {
		t.Fatalf("expected empty layout, got %d placements", len(got))
	}
}

func TestComputeSingleCardAtIdeal(t *testing.T) {
	out := Compute([]models.Annotation{card("a", 5, false)}, 21)
	want := 4*21.0 + PaddingTop
	if len(out) != 1 || out[0].Top != want {
		t.Fatalf("single card top = %v, want %v", out[0].Top, want)
	}
	if out[0].Height != CollapsedHeight {
		t.Fatalf("collapsed height = %v, want %v", out[0].Height, CollapsedHeight)
	}
}

func TestComputeClampsCollidingCards(t *testing.T) {
	// two expanded cards on adjacent lines cannot both sit at their ideal
	// offsets with a 21px line height
	out := Compute([]models.Annotation{card("a", 1, true), card("b", 2, true)}, 21)
	if out[0].Top != PaddingTop {
		t.Fatalf("first card top = %v, want %v", out[0].Top, PaddingTop)
	}
	wantSecond := out[0].Top + ExpandedHeight + Gap
	if out[1].Top != wantSecond {
		t.Fatalf("second card top = %v, want clamp to %v", out[1].Top, wantSecond)
	}
}

func TestComputeNonOverlapProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 50; trial++ {
		var notes []models.Annotation
		n := rng.Intn(30)
		for i := 0; i < n; i++ {
			notes = append(notes, card(string(rune('a'+i%26)), 1+rng.Intn(100), rng.Intn(2) == 0))
		}
		out := Compute(notes, 21)
		for i := 1; i < len(out); i++ {
			lowerBound := out[i-1].Top + out[i-1].Height + Gap
			if out[i].Top < lowerBound {
				t.Fatalf("trial %d: card %d at %v overlaps previous (bound %v)",
					trial, i, out[i].Top, lowerBound)
			}
		}
	}
}

func TestComputeOutputOrderedByLine(t *testing.T) {
	out := Compute([]models.Annotation{card("z", 9, false), card("a", 2, false), card("m", 5, true)}, 21)
	for i := 1; i < len(out); i++ {
		if out[i].Annotation.StartLine < out[i-1].Annotation.StartLine {
			t.Fatalf("output not line-ascending: %v then %v",
				out[i-1].Annotation.StartLine, out[i].Annotation.StartLine)
		}
	}
}

func TestComputeDeterministicAcrossCalls(t *testing.T) {
	notes := []models.Annotation{card("b", 3, true), card("a", 3, false), card("c", 1, false)}
	first := Compute(notes, 21)
	for i := 0; i < 10; i++ {
		again := Compute(notes, 21)
		for j := range first {
			if again[j].Top != first[j].Top || again[j].Annotation.ID != first[j].Annotation.ID {
				t.Fatalf("layout not deterministic on call %d", i)
			}
		}
	}
}

func TestComputeStableForEqualStartLines(t *testing.T) {
	notes := []models.Annotation{card("first", 4, false), card("second", 4, false)}
	out := Compute(notes, 21)
	if out[0].Annotation.ID != "first" || out[1].Annotation.ID != "second" {
		t.Fatalf("tie on StartLine must keep input order, got %s then %s",
			out[0].Annotation.ID, out[1].Annotation.ID)
	}
}
