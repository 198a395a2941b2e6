// Package export renders annotated files for use outside the service. Two
// shapes are supported: the source text with annotations injected as native
// comments, and a standalone HTML document that embeds the source, the
// annotation margin with precomputed positions, and the viewer behavior.
package export

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"marginalia/pkg/inject"
	"marginalia/pkg/layout"
	"marginalia/pkg/models"
)

//go:embed template.html
var htmlTemplate string

var tmpl = template.Must(template.New("export").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(htmlTemplate))

// CommentedSource returns content with every annotation rendered as a
// comment block in the file's own comment syntax. Previously injected blocks
// are stripped first, so re-exporting an already exported file stays stable.
func CommentedSource(content string, annotations []models.Annotation, filename string) string {
	return inject.Inject(inject.Strip(content, filename), annotations, filename)
}

// Document is the input to the HTML export.
type Document struct {
	Filename    string
	Content     string
	Annotations []models.Annotation
	LineHeight  float64
	GeneratedAt time.Time
}

type noteView struct {
	ID        string
	Top       float64
	Height    float64
	StartLine int
	EndLine   int
	Content   string
	Expanded  bool
	Lines     string
}

type htmlData struct {
	Filename    string
	GeneratedAt string
	Lines       []string
	LineHeight  float64
	Notes       []noteView
	CodeHeight  float64
	NotesHeight float64
}

// HTML renders a self-contained document for the file. Margin positions are
// computed server-side with the viewer's layout rules; the inlined script
// only handles expand toggling and scroll mirroring.
func HTML(doc Document) ([]byte, error) {
	lh := doc.LineHeight
	if lh <= 0 {
		lh = 21
	}
	when := doc.GeneratedAt
	if when.IsZero() {
		when = time.Now()
	}

	lines := strings.Split(doc.Content, "\n")
	placements := layout.Compute(doc.Annotations, lh)

	notes := make([]noteView, 0, len(placements))
	var notesHeight float64
	for _, p := range placements {
		rng := fmt.Sprintf("L%d", p.Annotation.StartLine)
		if p.Annotation.EndLine > p.Annotation.StartLine {
			rng = fmt.Sprintf("L%d-L%d", p.Annotation.StartLine, p.Annotation.EndLine)
		}
		notes = append(notes, noteView{
			ID:        p.Annotation.ID,
			Top:       p.Top,
			Height:    p.Height,
			StartLine: p.Annotation.StartLine,
			EndLine:   p.Annotation.EndLine,
			Content:   p.Annotation.Content,
			Expanded:  p.Annotation.IsExpanded,
			Lines:     rng,
		})
		if bottom := p.Top + p.Height; bottom > notesHeight {
			notesHeight = bottom
		}
	}
	notesHeight += layout.Gap

	data := htmlData{
		Filename:    doc.Filename,
		GeneratedAt: when.UTC().Format(time.RFC3339),
		Lines:       lines,
		LineHeight:  lh,
		Notes:       notes,
		CodeHeight:  float64(len(lines))*lh + layout.PaddingTop,
		NotesHeight: notesHeight,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render export document: %w", err)
	}
	return buf.Bytes(), nil
}
