package workspace

import (
	"path/filepath"
	"strings"
)

var languageByExt = map[string]string{
	"go":   "go",
	"js":   "javascript",
	"jsx":  "javascript",
	"ts":   "typescript",
	"tsx":  "typescript",
	"py":   "python",
	"rb":   "ruby",
	"rs":   "rust",
	"java": "java",
	"c":    "c",
	"h":    "c",
	"cpp":  "cpp",
	"cc":   "cpp",
	"hpp":  "cpp",
	"cs":   "csharp",
	"sh":   "shell",
	"html": "html",
	"xml":  "xml",
	"svg":  "xml",
	"css":  "css",
	"json": "json",
	"yaml": "yaml",
	"yml":  "yaml",
	"md":   "markdown",
	"sql":  "sql",
}

// languageFor derives a display language tag from a file name; empty for
// unrecognized extensions.
func languageFor(name string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	return languageByExt[ext]
}
