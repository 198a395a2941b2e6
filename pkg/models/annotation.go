package models

// Annotation is a markdown note anchored to a line range within a file.
type Annotation struct {
	// ID is assigned at creation and never reused.
	ID string `json:"id"`
	// FileID is the owning file's id: a relative path in workspace mode,
	// a content hash (git blob sha) in remote mode.
	FileID string `json:"fileId"`
	// StartLine and EndLine are 1-based inclusive; StartLine <= EndLine.
	StartLine int `json:"startLine"`
	EndLine   int `json:"endLine"`
	// Content is free-form markdown. Empty renders as a placeholder, never an error.
	Content string `json:"content"`
	// IsExpanded only affects layout height estimation and body visibility.
	IsExpanded bool `json:"isExpanded"`
	// CreatedAt (ns) is a stable tiebreak for listings; never displayed.
	CreatedAt int64 `json:"createdAt"`
}

// SingleLine reports whether the annotation anchors a single line.
func (a *Annotation) SingleLine() bool {
	return a.StartLine == a.EndLine
}
