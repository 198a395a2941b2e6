package models

// RemoteEntry is one entry of a remote repository directory listing.
// ID is the blob sha reported by the hosting API; for files it doubles as
// the content-addressed FileID annotations attach to in remote mode.
type RemoteEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	IsFolder    bool   `json:"isFolder"`
	Path        string `json:"path"`
	DownloadURL string `json:"downloadUrl,omitempty"`
}
