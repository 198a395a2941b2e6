// Package api is the HTTP surface: file tree and content, annotation CRUD,
// layout positions, exports and remote repository browsing.
package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"marginalia/pkg/github"
	"marginalia/pkg/notes"
	"marginalia/pkg/telemetry"
	"marginalia/pkg/workspace"
)

// Deps carries everything the handlers need. Tree is nil in session mode and
// Remote is nil when no remote access is configured; the affected endpoints
// answer 404 in those cases.
type Deps struct {
	Notes      *notes.Service
	Tree       *workspace.Tree
	Remote     *github.Client
	LineHeight float64
	Sweep      func() (int, error)
}

type server struct {
	deps Deps
}

// NewRouter builds the /v1 API router.
func NewRouter(deps Deps) *mux.Router {
	s := &server{deps: deps}
	r := mux.NewRouter()
	r.Use(telemetry.Middleware)

	v1 := r.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/files", s.handleTree).Methods(http.MethodGet)
	v1.HandleFunc("/files/{fileID:.+}/content", s.handleContent).Methods(http.MethodGet)
	v1.HandleFunc("/files/{fileID:.+}/annotations", s.handleListAnnotations).Methods(http.MethodGet)
	v1.HandleFunc("/files/{fileID:.+}/annotations", s.handleCreateAnnotation).Methods(http.MethodPost)
	v1.HandleFunc("/files/{fileID:.+}/layout", s.handleLayout).Methods(http.MethodGet)
	v1.HandleFunc("/files/{fileID:.+}/export/source", s.handleExportSource).Methods(http.MethodGet)
	v1.HandleFunc("/files/{fileID:.+}/export/html", s.handleExportHTML).Methods(http.MethodGet)

	v1.HandleFunc("/annotations/{id}", s.handleGetAnnotation).Methods(http.MethodGet)
	v1.HandleFunc("/annotations/{id}", s.handlePatchAnnotation).Methods(http.MethodPatch)
	v1.HandleFunc("/annotations/{id}", s.handleDeleteAnnotation).Methods(http.MethodDelete)

	v1.HandleFunc("/export/source", s.handleExportSourcePost).Methods(http.MethodPost)

	v1.HandleFunc("/remote/{owner}/{repo}/contents", s.handleRemoteList).Methods(http.MethodGet)
	v1.HandleFunc("/remote/content", s.handleRemoteContent).Methods(http.MethodGet)

	v1.HandleFunc("/admin/sweep", s.handleSweep).Methods(http.MethodPost)

	return r
}
