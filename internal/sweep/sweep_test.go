package sweep

import (
	"testing"

	"marginalia/pkg/models"
	"marginalia/pkg/notes"
)

func seedStore(t *testing.T) notes.Store {
	t.Helper()
	store, err := notes.OpenFile(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	for _, a := range []models.Annotation{
		{ID: "n1", FileID: "alive.go", StartLine: 1, EndLine: 1, Content: "ok"},
		{ID: "n2", FileID: "gone.go", StartLine: 2, EndLine: 2, Content: "orphan"},
		{ID: "n3", FileID: "gone.go", StartLine: 5, EndLine: 5, Content: "orphan too"},
	} {
		if err := store.Put(a); err != nil {
			t.Fatal(err)
		}
	}
	return store
}

func alive(fileID string) bool { return fileID == "alive.go" }

func TestRunOnceReportOnly(t *testing.T) {
	store := seedStore(t)
	s := New(store, alive, false)

	orphans, err := s.RunOnce()
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if orphans != 2 {
		t.Fatalf("orphans = %d", orphans)
	}
	all, err := store.ListAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("report-only sweep must not delete, have %d records", len(all))
	}
}

func TestRunOncePrune(t *testing.T) {
	store := seedStore(t)
	s := New(store, alive, true)

	orphans, err := s.RunOnce()
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if orphans != 2 {
		t.Fatalf("orphans = %d", orphans)
	}
	all, err := store.ListAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || all[0].ID != "n1" {
		t.Fatalf("prune left %+v", all)
	}
}

func TestRunOnceEmptyStore(t *testing.T) {
	store, err := notes.OpenFile(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	orphans, err := New(store, alive, true).RunOnce()
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if orphans != 0 {
		t.Fatalf("orphans = %d", orphans)
	}
}
