package notes

import (
	"time"

	"marginalia/pkg/logger"
	"marginalia/pkg/models"
	"marginalia/pkg/utils"
	"marginalia/pkg/validation"
)

// Service applies annotation policy on top of a Store.
type Service struct {
	store Store
}

// NewService wraps a Store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Store exposes the underlying backend (for export and sweep consumers).
func (s *Service) Store() Store { return s.store }

// CreateOrFocus implements the duplicate-anchor policy: requesting an
// annotation at a (fileID, startLine) pair that already has one does not
// create a second record, it expands the existing one. The bool result is
// true when a new record was created.
func (s *Service) CreateOrFocus(fileID string, startLine, endLine int, content string) (models.Annotation, bool, error) {
	existing, err := s.store.ListFile(fileID)
	if err != nil {
		return models.Annotation{}, false, err
	}
	for _, a := range existing {
		if a.StartLine == startLine {
			if !a.IsExpanded {
				a.IsExpanded = true
				if err := s.store.Put(a); err != nil {
					return models.Annotation{}, false, err
				}
			}
			logger.Debug("note_focused", "file", fileID, "line", startLine, "id", a.ID)
			return a, false, nil
		}
	}

	if endLine < startLine {
		endLine = startLine
	}
	a := models.Annotation{
		ID:         utils.GenNoteID(),
		FileID:     fileID,
		StartLine:  startLine,
		EndLine:    endLine,
		Content:    content,
		IsExpanded: true,
		CreatedAt:  time.Now().UTC().UnixNano(),
	}
	if err := validation.ValidateAnnotation(a); err != nil {
		return models.Annotation{}, false, err
	}
	if err := s.store.Put(a); err != nil {
		return models.Annotation{}, false, err
	}
	logger.Info("note_created", "file", fileID, "line", startLine, "id", a.ID)
	return a, true, nil
}

// UpdateContent replaces an annotation's markdown body.
func (s *Service) UpdateContent(id, content string) (models.Annotation, error) {
	a, err := s.store.Get(id)
	if err != nil {
		return a, err
	}
	a.Content = content
	if err := validation.ValidateAnnotation(a); err != nil {
		return a, err
	}
	if err := s.store.Put(a); err != nil {
		return a, err
	}
	return a, nil
}

// SetExpanded sets the display toggle. It never affects anchoring.
func (s *Service) SetExpanded(id string, expanded bool) (models.Annotation, error) {
	a, err := s.store.Get(id)
	if err != nil {
		return a, err
	}
	a.IsExpanded = expanded
	if err := s.store.Put(a); err != nil {
		return a, err
	}
	return a, nil
}

// Delete removes an annotation explicitly. There is no cascading deletion
// when a file goes away; orphaned records persist until swept.
func (s *Service) Delete(id string) error {
	return s.store.Delete(id)
}

// ListFile returns a file's annotations in line order.
func (s *Service) ListFile(fileID string) ([]models.Annotation, error) {
	return s.store.ListFile(fileID)
}

// Get returns one annotation by id.
func (s *Service) Get(id string) (models.Annotation, error) {
	return s.store.Get(id)
}
