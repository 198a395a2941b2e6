package notes

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	st, err := OpenFile(dir)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return NewService(st), dir
}

func TestCreateOrFocusCreates(t *testing.T) {
	svc, _ := newTestService(t)
	a, created, err := svc.CreateOrFocus("src/main.go", 3, 5, "check this")
	if err != nil {
		t.Fatalf("CreateOrFocus: %v", err)
	}
	if !created {
		t.Fatal("expected a new record")
	}
	if a.ID == "" || a.FileID != "src/main.go" || a.StartLine != 3 || a.EndLine != 5 {
		t.Fatalf("unexpected record: %+v", a)
	}
	if !a.IsExpanded {
		t.Fatal("new annotations start expanded")
	}
}

func TestCreateOrFocusDuplicateAnchorFocusesExisting(t *testing.T) {
	svc, _ := newTestService(t)
	first, _, err := svc.CreateOrFocus("f.go", 7, 7, "original")
	if err != nil {
		t.Fatalf("CreateOrFocus: %v", err)
	}
	// collapse, then request the same anchor again
	if _, err := svc.SetExpanded(first.ID, false); err != nil {
		t.Fatalf("SetExpanded: %v", err)
	}

	again, created, err := svc.CreateOrFocus("f.go", 7, 7, "ignored")
	if err != nil {
		t.Fatalf("CreateOrFocus: %v", err)
	}
	if created {
		t.Fatal("duplicate anchor must not create a second record")
	}
	if again.ID != first.ID {
		t.Fatalf("focused id %s, want %s", again.ID, first.ID)
	}
	if !again.IsExpanded {
		t.Fatal("focusing must flip isExpanded to true")
	}
	if again.Content != "original" {
		t.Fatalf("focus must not overwrite content, got %q", again.Content)
	}

	list, _ := svc.ListFile("f.go")
	if len(list) != 1 {
		t.Fatalf("expected 1 record, got %d", len(list))
	}
}

func TestCreateOrFocusDifferentFilesSameLine(t *testing.T) {
	svc, _ := newTestService(t)
	if _, created, _ := svc.CreateOrFocus("a.go", 1, 1, ""); !created {
		t.Fatal("first file should create")
	}
	if _, created, _ := svc.CreateOrFocus("b.go", 1, 1, ""); !created {
		t.Fatal("same line in another file should create")
	}
}

func TestUpdateAndDelete(t *testing.T) {
	svc, _ := newTestService(t)
	a, _, err := svc.CreateOrFocus("f.go", 2, 2, "v1")
	if err != nil {
		t.Fatalf("CreateOrFocus: %v", err)
	}
	upd, err := svc.UpdateContent(a.ID, "v2")
	if err != nil {
		t.Fatalf("UpdateContent: %v", err)
	}
	if upd.Content != "v2" {
		t.Fatalf("content = %q, want v2", upd.Content)
	}
	if err := svc.Delete(a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(a.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	// deleting again is a no-op
	if err := svc.Delete(a.ID); err != nil {
		t.Fatalf("second delete must be a no-op: %v", err)
	}
}

func TestFileStorePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	st, err := OpenFile(dir)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	svc := NewService(st)
	a, _, err := svc.CreateOrFocus("pkg/x.go", 9, 9, "persisted")
	if err != nil {
		t.Fatalf("CreateOrFocus: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, DocumentName)); err != nil {
		t.Fatalf("note document not written: %v", err)
	}

	st2, err := OpenFile(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st2.Close()
	got, err := st2.Get(a.ID)
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if got.Content != "persisted" || got.StartLine != 9 {
		t.Fatalf("unexpected record after reopen: %+v", got)
	}
}

func TestOpenFileMissingDocumentIsEmpty(t *testing.T) {
	st, err := OpenFile(t.TempDir())
	if err != nil {
		t.Fatalf("missing document must not error: %v", err)
	}
	defer st.Close()
	all, err := st.ListAll()
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("expected empty set, got %d", len(all))
	}
}
