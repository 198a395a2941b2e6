// Package comment resolves per-language comment delimiters from file names.
package comment

import (
	"path/filepath"
	"strings"
)

// Syntax is a comment delimiter pair. End is empty for line comments.
type Syntax struct {
	Start string
	End   string
}

var byExtension = map[string]Syntax{
	"html":       {"<!--", "-->"},
	"xml":        {"<!--", "-->"},
	"svg":        {"<!--", "-->"},
	"css":        {"/*", "*/"},
	"py":         {"#", ""},
	"sh":         {"#", ""},
	"yaml":       {"#", ""},
	"yml":        {"#", ""},
	"dockerfile": {"#", ""},
}

// Resolve maps a file name to its comment syntax by extension
// (case-insensitive). Unknown or missing extensions fall back to the
// line-comment style used by the C family; that is a default, not an error.
func Resolve(filename string) Syntax {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if s, ok := byExtension[ext]; ok {
		return s
	}
	return Syntax{"//", ""}
}
