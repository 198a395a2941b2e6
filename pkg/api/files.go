package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"marginalia/pkg/logger"
	"marginalia/pkg/utils"
)

func (s *server) handleTree(w http.ResponseWriter, r *http.Request) {
	if s.deps.Tree == nil {
		utils.JSONError(w, http.StatusNotFound, "no workspace open")
		return
	}
	utils.JSONWrite(w, http.StatusOK, s.deps.Tree.Top())
}

func (s *server) handleContent(w http.ResponseWriter, r *http.Request) {
	if s.deps.Tree == nil {
		utils.JSONError(w, http.StatusNotFound, "no workspace open")
		return
	}
	fileID := mux.Vars(r)["fileID"]
	content, err := s.deps.Tree.Content(fileID)
	if err != nil {
		utils.JSONError(w, http.StatusNotFound, "file not found")
		return
	}
	node := s.deps.Tree.Node(fileID)
	logger.Debug("content_served", "file", fileID, "bytes", len(content))
	utils.JSONWrite(w, http.StatusOK, struct {
		ID       string `json:"id"`
		Language string `json:"language"`
		Content  string `json:"content"`
	}{ID: fileID, Language: node.Language, Content: content})
}
