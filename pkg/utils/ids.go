package utils

import "github.com/google/uuid"

// GenNoteID returns a fresh opaque annotation id. IDs are never reused.
func GenNoteID() string {
	return "note-" + uuid.NewString()
}
