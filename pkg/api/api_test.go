package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"marginalia/pkg/github"
	"marginalia/pkg/models"
	"marginalia/pkg/notes"
	"marginalia/pkg/validation"
	"marginalia/pkg/workspace"
)

func newTestServer(t *testing.T) (*testClient, string) {
	t.Helper()
	validation.SetRules(validation.Rules{})
	dir := t.TempDir()
	mustWrite := func(rel, content string) {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	mustWrite("main.js", "const a = 1;\nconst b = 2;\n")
	mustWrite("src/app.py", "import os\n")

	tree, err := workspace.Open(dir)
	if err != nil {
		t.Fatalf("workspace.Open: %v", err)
	}
	store, err := notes.OpenFile(dir)
	if err != nil {
		t.Fatalf("notes.OpenFile: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	r := NewRouter(Deps{
		Notes:      notes.NewService(store),
		Tree:       tree,
		LineHeight: 21,
		Sweep:      func() (int, error) { return 3, nil },
	})
	return &testClient{r}, dir
}

// testClient wraps the router with a request helper.
type testClient struct{ h http.Handler }

func (m *testClient) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	rec := httptest.NewRecorder()
	m.h.ServeHTTP(rec, req)
	return rec
}

func decodeAnnotation(t *testing.T, rec *httptest.ResponseRecorder) models.Annotation {
	t.Helper()
	var a models.Annotation
	if err := json.Unmarshal(rec.Body.Bytes(), &a); err != nil {
		t.Fatalf("decode annotation: %v (%s)", err, rec.Body.String())
	}
	return a
}

func TestTreeEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := srv.do(t, http.MethodGet, "/v1/files", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var root models.FileNode
	if err := json.Unmarshal(rec.Body.Bytes(), &root); err != nil {
		t.Fatal(err)
	}
	if !root.IsFolder || len(root.Children) == 0 {
		t.Fatalf("unexpected root: %+v", root)
	}
}

func TestContentEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := srv.do(t, http.MethodGet, "/v1/files/src/app.py/content", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var got struct {
		ID       string `json:"id"`
		Language string `json:"language"`
		Content  string `json:"content"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Language != "python" || got.Content != "import os\n" {
		t.Fatalf("got %+v", got)
	}
	if rec := srv.do(t, http.MethodGet, "/v1/files/nope.go/content", nil); rec.Code != http.StatusNotFound {
		t.Errorf("missing file status = %d", rec.Code)
	}
}

func TestAnnotationLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/v1/files/main.js/annotations",
		map[string]interface{}{"startLine": 1, "endLine": 1, "content": "first note"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}
	created := decodeAnnotation(t, rec)
	if created.ID == "" || !created.IsExpanded {
		t.Fatalf("created = %+v", created)
	}

	// same anchor again: focus toggle, not a duplicate
	rec = srv.do(t, http.MethodPost, "/v1/files/main.js/annotations",
		map[string]interface{}{"startLine": 1, "endLine": 1, "content": "ignored"})
	if rec.Code != http.StatusOK {
		t.Fatalf("focus status = %d", rec.Code)
	}
	focused := decodeAnnotation(t, rec)
	if focused.ID != created.ID {
		t.Fatal("focus must reuse the existing annotation")
	}
	if focused.Content != "first note" {
		t.Error("focus must not overwrite content")
	}

	rec = srv.do(t, http.MethodPatch, "/v1/annotations/"+created.ID,
		map[string]interface{}{"content": "edited"})
	if rec.Code != http.StatusOK {
		t.Fatalf("patch status = %d", rec.Code)
	}
	if got := decodeAnnotation(t, rec); got.Content != "edited" {
		t.Fatalf("patched = %+v", got)
	}

	rec = srv.do(t, http.MethodGet, "/v1/files/main.js/annotations", nil)
	var list []models.Annotation
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("list = %+v", list)
	}

	if rec := srv.do(t, http.MethodDelete, "/v1/annotations/"+created.ID, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if rec := srv.do(t, http.MethodGet, "/v1/annotations/"+created.ID, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete = %d", rec.Code)
	}
}

func TestCreateValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := srv.do(t, http.MethodPost, "/v1/files/main.js/annotations",
		map[string]interface{}{"startLine": 0, "content": "x"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "error") {
		t.Errorf("error body = %s", rec.Body.String())
	}
}

func TestLayoutEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.do(t, http.MethodPost, "/v1/files/main.js/annotations",
		map[string]interface{}{"startLine": 1, "content": "a"})
	srv.do(t, http.MethodPost, "/v1/files/main.js/annotations",
		map[string]interface{}{"startLine": 2, "content": "b"})

	rec := srv.do(t, http.MethodGet, "/v1/files/main.js/layout", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var placements []struct {
		Top    float64 `json:"top"`
		Height float64 `json:"height"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &placements); err != nil {
		t.Fatal(err)
	}
	if len(placements) != 2 {
		t.Fatalf("placements = %+v", placements)
	}
	if placements[1].Top < placements[0].Top+placements[0].Height {
		t.Error("placements must not overlap")
	}
}

func TestExportSource(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.do(t, http.MethodPost, "/v1/files/main.js/annotations",
		map[string]interface{}{"startLine": 2, "content": "about b"})

	rec := srv.do(t, http.MethodGet, "/v1/files/main.js/export/source", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "// [NOTE] about b") {
		t.Fatalf("export body:\n%s", rec.Body.String())
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "annotated-main.js") {
		t.Errorf("disposition = %q", cd)
	}
}

func TestExportHTML(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.do(t, http.MethodPost, "/v1/files/main.js/annotations",
		map[string]interface{}{"startLine": 1, "content": "hello"})

	rec := srv.do(t, http.MethodGet, "/v1/files/main.js/export/html", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<!DOCTYPE html>") || !strings.Contains(body, "hello") {
		t.Error("html export missing document or note content")
	}
}

func TestExportSourcePost(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.do(t, http.MethodPost, "/v1/files/sess-1/annotations",
		map[string]interface{}{"startLine": 1, "content": "session note"})

	rec := srv.do(t, http.MethodPost, "/v1/export/source", map[string]interface{}{
		"fileId":   "sess-1",
		"filename": "remote.py",
		"content":  "x = 1\n",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "# [NOTE] session note") {
		t.Fatalf("body:\n%s", rec.Body.String())
	}
}

func TestRemoteProxyErrorMapping(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "missing"):
			w.WriteHeader(http.StatusNotFound)
		case strings.Contains(r.URL.Path, "limited"):
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer remote.Close()

	srv, _ := newTestServer(t)
	// swap in a remote-enabled router
	store, err := notes.OpenFile(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	srv.h = NewRouter(Deps{
		Notes:  notes.NewService(store),
		Remote: github.New(github.Options{BaseURL: remote.URL, RPS: 1000, Burst: 1000}),
	})

	if rec := srv.do(t, http.MethodGet, "/v1/remote/o/missing/contents", nil); rec.Code != http.StatusNotFound {
		t.Errorf("missing repo status = %d", rec.Code)
	}
	if rec := srv.do(t, http.MethodGet, "/v1/remote/o/limited/contents", nil); rec.Code != http.StatusTooManyRequests {
		t.Errorf("limited repo status = %d", rec.Code)
	}
	if rec := srv.do(t, http.MethodGet, "/v1/remote/o/broken/contents", nil); rec.Code != http.StatusBadGateway {
		t.Errorf("broken repo status = %d", rec.Code)
	}
}

func TestRemoteNotConfigured(t *testing.T) {
	srv, _ := newTestServer(t)
	if rec := srv.do(t, http.MethodGet, "/v1/remote/o/r/contents", nil); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestSweepEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := srv.do(t, http.MethodPost, "/v1/admin/sweep", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"orphans":3`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}
