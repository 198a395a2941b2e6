package api

import (
	"encoding/json"
	"net/http"
	"path"

	"github.com/gorilla/mux"

	"marginalia/pkg/export"
	"marginalia/pkg/logger"
	"marginalia/pkg/utils"
)

func (s *server) handleExportSource(w http.ResponseWriter, r *http.Request) {
	fileID := mux.Vars(r)["fileID"]
	content, name, ok := s.workspaceFile(w, fileID)
	if !ok {
		return
	}
	anns, err := s.deps.Notes.ListFile(fileID)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := export.CommentedSource(content, anns, name)
	logger.Info("export_source", "file", fileID, "annotations", len(anns))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="annotated-`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out))
}

func (s *server) handleExportHTML(w http.ResponseWriter, r *http.Request) {
	fileID := mux.Vars(r)["fileID"]
	content, name, ok := s.workspaceFile(w, fileID)
	if !ok {
		return
	}
	anns, err := s.deps.Notes.ListFile(fileID)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	doc, err := export.HTML(export.Document{
		Filename:    name,
		Content:     content,
		Annotations: anns,
		LineHeight:  s.deps.LineHeight,
	})
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	logger.Info("export_html", "file", fileID, "annotations", len(anns))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`.annotated.html"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

type exportSourceReq struct {
	FileID   string `json:"fileId"`
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// handleExportSourcePost serves session mode, where file content lives with
// the caller and only the annotations live here.
func (s *server) handleExportSourcePost(w http.ResponseWriter, r *http.Request) {
	var req exportSourceReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.FileID == "" || req.Filename == "" {
		utils.JSONError(w, http.StatusBadRequest, "fileId and filename required")
		return
	}
	anns, err := s.deps.Notes.ListFile(req.FileID)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := export.CommentedSource(req.Content, anns, req.Filename)
	logger.Info("export_source", "file", req.FileID, "annotations", len(anns))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="annotated-`+req.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out))
}

// workspaceFile loads a workspace file's content and basename, writing the
// error response itself when the file is unavailable.
func (s *server) workspaceFile(w http.ResponseWriter, fileID string) (string, string, bool) {
	if s.deps.Tree == nil {
		utils.JSONError(w, http.StatusNotFound, "no workspace open")
		return "", "", false
	}
	content, err := s.deps.Tree.Content(fileID)
	if err != nil {
		utils.JSONError(w, http.StatusNotFound, "file not found")
		return "", "", false
	}
	return content, path.Base(fileID), true
}
