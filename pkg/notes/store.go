// Package notes persists annotations behind a backend-agnostic Store.
//
// Two backends exist: a pebble-backed store for session mode and a
// single-JSON-document store for workspace mode. Both hold whole-record
// JSON values; mutations replace the entire record.
package notes

import (
	"errors"
	"sort"

	"marginalia/pkg/models"
)

// ErrNotFound is returned when an annotation id does not exist.
var ErrNotFound = errors.New("annotation not found")

// Store is the persistence contract both backends satisfy.
type Store interface {
	// Put inserts or replaces an annotation record.
	Put(a models.Annotation) error
	// Get returns the annotation with the given id or ErrNotFound.
	Get(id string) (models.Annotation, error)
	// ListFile returns all annotations owned by fileID.
	ListFile(fileID string) ([]models.Annotation, error)
	// ListAll returns every stored annotation.
	ListAll() ([]models.Annotation, error)
	// Delete removes an annotation; deleting a missing id is a no-op.
	Delete(id string) error
	// Close flushes and releases the backend.
	Close() error
}

// sortAnnotations orders records ascending by StartLine, ties by CreatedAt
// then ID, so listings are stable regardless of backend iteration order.
func sortAnnotations(list []models.Annotation) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.StartLine != b.StartLine {
			return a.StartLine < b.StartLine
		}
		if a.CreatedAt != b.CreatedAt {
			return a.CreatedAt < b.CreatedAt
		}
		return a.ID < b.ID
	})
}
