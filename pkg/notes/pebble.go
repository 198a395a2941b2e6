package notes

import (
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/pebble"

	"marginalia/pkg/logger"
	"marginalia/pkg/models"
)

// PebbleStore keeps annotations in an embedded pebble database. This is the
// session-mode backend: annotations survive restarts without requiring an
// opened workspace directory.
//
// Key layout:
//
//	note:<fileID>:<noteID> -> annotation JSON
//	noteid:<noteID>        -> note:<fileID>:<noteID> (id index)
type PebbleStore struct {
	db *pebble.DB
}

// OpenPebble opens (or creates) the pebble database at path.
func OpenPebble(path string) (*PebbleStore, error) {
	logger.Info("opening_note_db", "path", path)
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		logger.Error("note_db_open_failed", "path", path, "error", err)
		return nil, err
	}
	return &PebbleStore{db: db}, nil
}

// Close closes the underlying database.
func (s *PebbleStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	logger.Info("note_db_closed")
	return err
}

func noteKey(fileID, noteID string) []byte {
	return []byte("note:" + fileID + ":" + noteID)
}

func idKey(noteID string) []byte {
	return []byte("noteid:" + noteID)
}

// Put inserts or replaces an annotation record.
func (s *PebbleStore) Put(a models.Annotation) error {
	if s.db == nil {
		return fmt.Errorf("note db not opened")
	}
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal annotation: %w", err)
	}
	key := noteKey(a.FileID, a.ID)
	// A re-keyed record (fileId changed in place) would leave the old row
	// behind; drop it via the id index first.
	if old, closer, err := s.db.Get(idKey(a.ID)); err == nil {
		if string(old) != string(key) {
			_ = s.db.Delete(append([]byte(nil), old...), pebble.Sync)
		}
		_ = closer.Close()
	}
	if err := s.db.Set(key, data, pebble.Sync); err != nil {
		logger.Error("note_save_failed", "file", a.FileID, "id", a.ID, "error", err)
		return err
	}
	if err := s.db.Set(idKey(a.ID), key, pebble.Sync); err != nil {
		return err
	}
	logger.Debug("note_saved", "file", a.FileID, "id", a.ID)
	return nil
}

// Get returns the annotation with the given id or ErrNotFound.
func (s *PebbleStore) Get(id string) (models.Annotation, error) {
	var a models.Annotation
	if s.db == nil {
		return a, fmt.Errorf("note db not opened")
	}
	ref, closer, err := s.db.Get(idKey(id))
	if err != nil {
		return a, ErrNotFound
	}
	key := append([]byte(nil), ref...)
	_ = closer.Close()
	data, closer, err := s.db.Get(key)
	if err != nil {
		return a, ErrNotFound
	}
	defer closer.Close()
	if err := json.Unmarshal(data, &a); err != nil {
		return a, fmt.Errorf("invalid stored annotation %s: %w", id, err)
	}
	return a, nil
}

// ListFile returns all annotations for fileID in line order.
func (s *PebbleStore) ListFile(fileID string) ([]models.Annotation, error) {
	return s.scan([]byte("note:" + fileID + ":"))
}

// ListAll returns every stored annotation.
func (s *PebbleStore) ListAll() ([]models.Annotation, error) {
	return s.scan([]byte("note:"))
}

func (s *PebbleStore) scan(prefix []byte) ([]models.Annotation, error) {
	if s.db == nil {
		return nil, fmt.Errorf("note db not opened")
	}
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: upperBound(prefix),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out []models.Annotation
	for iter.First(); iter.Valid(); iter.Next() {
		var a models.Annotation
		if err := json.Unmarshal(iter.Value(), &a); err != nil {
			logger.Warn("note_decode_failed", "key", string(iter.Key()), "error", err)
			continue
		}
		out = append(out, a)
	}
	sortAnnotations(out)
	return out, nil
}

// Delete removes an annotation; deleting a missing id is a no-op.
func (s *PebbleStore) Delete(id string) error {
	if s.db == nil {
		return fmt.Errorf("note db not opened")
	}
	ref, closer, err := s.db.Get(idKey(id))
	if err != nil {
		return nil
	}
	key := append([]byte(nil), ref...)
	_ = closer.Close()
	if err := s.db.Delete(key, pebble.Sync); err != nil {
		return err
	}
	if err := s.db.Delete(idKey(id), pebble.Sync); err != nil {
		return err
	}
	logger.Debug("note_deleted", "id", id)
	return nil
}

// upperBound returns the smallest key greater than every key with prefix.
func upperBound(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
