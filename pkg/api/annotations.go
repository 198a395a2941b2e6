package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"marginalia/pkg/layout"
	"marginalia/pkg/logger"
	"marginalia/pkg/models"
	"marginalia/pkg/notes"
	"marginalia/pkg/telemetry"
	"marginalia/pkg/utils"
	"marginalia/pkg/validation"
)

type createAnnotationReq struct {
	StartLine int    `json:"startLine"`
	EndLine   int    `json:"endLine"`
	Content   string `json:"content"`
}

func (s *server) handleListAnnotations(w http.ResponseWriter, r *http.Request) {
	fileID := mux.Vars(r)["fileID"]
	list, err := s.deps.Notes.ListFile(fileID)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSONWrite(w, http.StatusOK, list)
}

// handleCreateAnnotation creates an annotation, or flips the expansion of the
// existing one when the anchor already carries an annotation. 201 signals a
// fresh record, 200 a focused existing one.
func (s *server) handleCreateAnnotation(w http.ResponseWriter, r *http.Request) {
	fileID := mux.Vars(r)["fileID"]
	var req createAnnotationReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.EndLine == 0 {
		req.EndLine = req.StartLine
	}
	candidate := models.Annotation{
		FileID:    fileID,
		StartLine: req.StartLine,
		EndLine:   req.EndLine,
		Content:   req.Content,
	}
	if err := validation.ValidateAnnotation(candidate); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	ann, created, err := s.deps.Notes.CreateOrFocus(fileID, req.StartLine, req.EndLine, req.Content)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if created {
		telemetry.CountAnnotationOp("created")
		logger.Info("annotation_created", "id", ann.ID, "file", fileID, "line", ann.StartLine)
		utils.JSONWrite(w, http.StatusCreated, ann)
		return
	}
	telemetry.CountAnnotationOp("focused")
	logger.Info("annotation_focused", "id", ann.ID, "file", fileID, "line", ann.StartLine)
	utils.JSONWrite(w, http.StatusOK, ann)
}

func (s *server) handleGetAnnotation(w http.ResponseWriter, r *http.Request) {
	ann, err := s.deps.Notes.Get(mux.Vars(r)["id"])
	if err != nil {
		s.annotationError(w, err)
		return
	}
	utils.JSONWrite(w, http.StatusOK, ann)
}

type patchAnnotationReq struct {
	Content    *string `json:"content"`
	IsExpanded *bool   `json:"isExpanded"`
}

func (s *server) handlePatchAnnotation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req patchAnnotationReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Content == nil && req.IsExpanded == nil {
		utils.JSONError(w, http.StatusBadRequest, "nothing to update")
		return
	}

	var (
		ann models.Annotation
		err error
	)
	if req.Content != nil {
		ann, err = s.deps.Notes.UpdateContent(id, *req.Content)
		if err != nil {
			s.annotationError(w, err)
			return
		}
	}
	if req.IsExpanded != nil {
		ann, err = s.deps.Notes.SetExpanded(id, *req.IsExpanded)
		if err != nil {
			s.annotationError(w, err)
			return
		}
	}
	telemetry.CountAnnotationOp("updated")
	logger.Info("annotation_updated", "id", id)
	utils.JSONWrite(w, http.StatusOK, ann)
}

func (s *server) handleDeleteAnnotation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.deps.Notes.Delete(id); err != nil {
		s.annotationError(w, err)
		return
	}
	telemetry.CountAnnotationOp("deleted")
	logger.Info("annotation_deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleLayout(w http.ResponseWriter, r *http.Request) {
	fileID := mux.Vars(r)["fileID"]
	list, err := s.deps.Notes.ListFile(fileID)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	lh := s.deps.LineHeight
	if lh <= 0 {
		lh = 21
	}
	placements := layout.Compute(list, lh)
	utils.JSONWrite(w, http.StatusOK, placements)
}

func (s *server) annotationError(w http.ResponseWriter, err error) {
	if errors.Is(err, notes.ErrNotFound) {
		utils.JSONError(w, http.StatusNotFound, "annotation not found")
		return
	}
	utils.JSONError(w, http.StatusInternalServerError, err.Error())
}
