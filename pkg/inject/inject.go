// Package inject renders annotations as comment blocks inside source text.
//
// The transform never drops or reorders original lines; it only inserts
// self-contained comment blocks immediately above each annotation's anchor
// line. Stripping every injected line from the output recovers the input
// exactly.
package inject

import (
	"sort"
	"strconv"
	"strings"

	"marginalia/pkg/comment"
	"marginalia/pkg/models"
)

const (
	headerRule = "------------------"
	footerRule = "-----------------------------------------------------------"
	bodyMark   = "[NOTE]"
)

// Inject returns content with each annotation rendered as a comment block
// above its anchor line, using the comment syntax resolved from filename.
//
// Annotations sharing an anchor are emitted in ascending StartLine order with
// ties broken by ascending ID, so output is reproducible for a given input
// set. An anchor past the end of the file appends the block after the last
// line. An empty annotation set returns content unchanged.
func Inject(content string, annotations []models.Annotation, filename string) string {
	if len(annotations) == 0 {
		return content
	}
	syn := comment.Resolve(filename)
	lines := strings.Split(content, "\n")

	ordered := make([]models.Annotation, len(annotations))
	copy(ordered, annotations)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].StartLine != ordered[j].StartLine {
			return ordered[i].StartLine < ordered[j].StartLine
		}
		return ordered[i].ID < ordered[j].ID
	})

	// blocks[i] holds every injected line to emit before original line i;
	// blocks[len(lines)] collects past-EOF anchors.
	blocks := make(map[int][]string)
	for _, a := range ordered {
		idx := a.StartLine - 1
		if idx < 0 {
			idx = 0
		}
		if idx > len(lines) {
			idx = len(lines)
		}
		blocks[idx] = append(blocks[idx], renderBlock(a, syn)...)
	}

	out := make([]string, 0, len(lines)+4*len(ordered))
	for i, line := range lines {
		out = append(out, blocks[i]...)
		out = append(out, line)
	}
	out = append(out, blocks[len(lines)]...)
	return strings.Join(out, "\n")
}

func renderBlock(a models.Annotation, syn comment.Syntax) []string {
	var b []string
	b = append(b, decorate(syn, headerRule+" NOTE (L"+strconv.Itoa(a.StartLine)+") "+headerRule))
	for _, cl := range strings.Split(a.Content, "\n") {
		b = append(b, decorate(syn, bodyMark+" "+cl))
	}
	b = append(b, decorate(syn, footerRule))
	return b
}

func decorate(syn comment.Syntax, body string) string {
	if syn.End == "" {
		return syn.Start + " " + body
	}
	return syn.Start + " " + body + " " + syn.End
}

// Strip removes every line Inject emitted for filename's comment syntax and
// returns the remaining text. Applying Strip to Inject output recovers the
// original content.
func Strip(content, filename string) string {
	syn := comment.Resolve(filename)
	prefixes := []string{
		syn.Start + " " + headerRule + " NOTE (L",
		syn.Start + " " + bodyMark,
		syn.Start + " " + footerRule,
	}
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
lineLoop:
	for _, line := range lines {
		for _, p := range prefixes {
			if strings.HasPrefix(line, p) {
				continue lineLoop
			}
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
