package notes

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"marginalia/pkg/logger"
	"marginalia/pkg/models"
)

// DocumentName is the fixed hidden filename holding the annotation document
// at the root of an opened workspace.
const DocumentName = ".marginalia.notes.json"

// saveDebounce coalesces a burst of edits into a single rewrite.
const saveDebounce = 500 * time.Millisecond

// FileStore is the workspace-mode backend: the whole annotation set lives in
// one JSON array document that is read fully on open and rewritten fully
// (never appended) on every debounced save.
type FileStore struct {
	path string

	mu    sync.Mutex
	byID  map[string]models.Annotation
	timer *time.Timer
	dirty bool
}

// OpenFile loads the annotation document under root. A missing document is
// an empty annotation set, not an error.
func OpenFile(root string) (*FileStore, error) {
	s := &FileStore{
		path: filepath.Join(root, DocumentName),
		byID: map[string]models.Annotation{},
	}
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("note_document_missing", "path", s.path)
			return s, nil
		}
		return nil, fmt.Errorf("failed to read note document: %w", err)
	}
	var list []models.Annotation
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, fmt.Errorf("invalid note document %s: %w", s.path, err)
	}
	for _, a := range list {
		s.byID[a.ID] = a
	}
	logger.Info("note_document_loaded", "path", s.path, "count", len(list))
	return s, nil
}

// Put inserts or replaces an annotation record and schedules a save.
func (s *FileStore) Put(a models.Annotation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[a.ID] = a
	s.scheduleSaveLocked()
	return nil
}

// Get returns the annotation with the given id or ErrNotFound.
func (s *FileStore) Get(id string) (models.Annotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id]
	if !ok {
		return models.Annotation{}, ErrNotFound
	}
	return a, nil
}

// ListFile returns all annotations for fileID in line order.
func (s *FileStore) ListFile(fileID string) ([]models.Annotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Annotation
	for _, a := range s.byID {
		if a.FileID == fileID {
			out = append(out, a)
		}
	}
	sortAnnotations(out)
	return out, nil
}

// ListAll returns every stored annotation.
func (s *FileStore) ListAll() ([]models.Annotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Annotation, 0, len(s.byID))
	for _, a := range s.byID {
		out = append(out, a)
	}
	sortAnnotations(out)
	return out, nil
}

// Delete removes an annotation; deleting a missing id is a no-op.
func (s *FileStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return nil
	}
	delete(s.byID, id)
	s.scheduleSaveLocked()
	return nil
}

// scheduleSaveLocked arms (or re-arms) the debounce timer. Caller holds mu.
func (s *FileStore) scheduleSaveLocked() {
	s.dirty = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(saveDebounce, func() {
		if err := s.Flush(); err != nil {
			logger.Error("note_document_save_failed", "path", s.path, "error", err)
		}
	})
}

// Flush writes the document immediately if there are unsaved changes. The
// write replaces the whole document atomically (temp file + rename) so a
// crash never leaves a partially written note set.
func (s *FileStore) Flush() error {
	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return nil
	}
	list := make([]models.Annotation, 0, len(s.byID))
	for _, a := range s.byID {
		list = append(list, a)
	}
	s.dirty = false
	path := s.path
	s.mu.Unlock()

	sortAnnotations(list)
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal note document: %w", err)
	}
	if err := writeFileAtomic(path, data, 0o644); err != nil {
		return err
	}
	logger.Debug("note_document_saved", "path", path, "count", len(list))
	return nil
}

// Close stops the debounce timer and flushes pending changes.
func (s *FileStore) Close() error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	return s.Flush()
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it over filename.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(filename)
	tmp, err := os.CreateTemp(dir, ".marginalia-tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), perm); err != nil {
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", filename, err)
	}
	return nil
}
