package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"marginalia/pkg/github"
	"marginalia/pkg/logger"
	"marginalia/pkg/utils"
)

func (s *server) handleRemoteList(w http.ResponseWriter, r *http.Request) {
	if s.deps.Remote == nil {
		utils.JSONError(w, http.StatusNotFound, "remote access not configured")
		return
	}
	vars := mux.Vars(r)
	entries, err := s.deps.Remote.List(r.Context(), vars["owner"], vars["repo"], r.URL.Query().Get("path"))
	if err != nil {
		s.remoteError(w, err)
		return
	}
	utils.JSONWrite(w, http.StatusOK, entries)
}

func (s *server) handleRemoteContent(w http.ResponseWriter, r *http.Request) {
	if s.deps.Remote == nil {
		utils.JSONError(w, http.StatusNotFound, "remote access not configured")
		return
	}
	url := r.URL.Query().Get("url")
	if url == "" {
		utils.JSONError(w, http.StatusBadRequest, "url query parameter required")
		return
	}
	content, err := s.deps.Remote.FetchContent(r.Context(), url)
	if err != nil {
		s.remoteError(w, err)
		return
	}
	utils.JSONWrite(w, http.StatusOK, struct {
		Content string `json:"content"`
	}{Content: content})
}

func (s *server) remoteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, github.ErrNotFound):
		utils.JSONError(w, http.StatusNotFound, "not found on remote")
	case errors.Is(err, github.ErrRateLimited):
		utils.JSONError(w, http.StatusTooManyRequests, "remote rate limit exceeded")
	default:
		logger.Warn("remote_request_failed", "error", err)
		utils.JSONError(w, http.StatusBadGateway, "remote request failed")
	}
}
