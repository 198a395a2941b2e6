// Package layout computes vertical positions for annotation cards so each
// card sits beside its anchor line without overlapping its neighbours.
package layout

import (
	"math"
	"sort"

	"marginalia/pkg/models"
)

// Display constants shared with the exported viewer. PaddingTop matches the
// code pane's top inset so an uncontested card aligns exactly with its
// anchor line.
const (
	PaddingTop      = 16.0
	Gap             = 20.0
	ExpandedHeight  = 200.0
	CollapsedHeight = 60.0
)

// Placement is one positioned annotation card.
type Placement struct {
	Annotation models.Annotation `json:"annotation"`
	Top        float64           `json:"top"`
	Height     float64           `json:"height"`
}

// EstimateHeight returns the card height heuristic for an annotation's
// display state. Heights are fixed estimates, not DOM measurements; layout
// is recomputed on every state change so the approximation self-corrects.
func EstimateHeight(a models.Annotation) float64 {
	if a.IsExpanded {
		return ExpandedHeight
	}
	return CollapsedHeight
}

// Compute lays out annotations for a pane rendered at lineHeight units per
// line. Cards are ordered ascending by StartLine (stable for ties), each
// placed at its ideal anchor-aligned offset unless that would close within
// Gap of the previous card, in which case it is clamped below it.
//
// Single greedy pass: deterministic, never pulls an earlier card back, and
// output depends only on the current annotation set, not creation history.
func Compute(annotations []models.Annotation, lineHeight float64) []Placement {
	ordered := make([]models.Annotation, len(annotations))
	copy(ordered, annotations)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].StartLine < ordered[j].StartLine
	})

	out := make([]Placement, 0, len(ordered))
	lastBottom := math.Inf(-1) // no previous card
	for _, a := range ordered {
		top := float64(a.StartLine-1)*lineHeight + PaddingTop
		if top < lastBottom+Gap {
			top = lastBottom + Gap
		}
		h := EstimateHeight(a)
		out = append(out, Placement{Annotation: a, Top: top, Height: h})
		lastBottom = top + h
	}
	return out
}
