package models

// FileNode is a file or folder in the workspace tree. ID is the join key
// annotations reference as FileID: the slash-separated path relative to the
// workspace root. Content is populated lazily for files.
type FileNode struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	IsFolder bool        `json:"isFolder"`
	Children []*FileNode `json:"children,omitempty"`
	Content  string      `json:"content,omitempty"`
	// Language is derived from the file extension; informational only.
	Language string `json:"language,omitempty"`
}
