package api

import (
	"net/http"

	"marginalia/pkg/logger"
	"marginalia/pkg/utils"
)

// handleSweep triggers an orphan sweep outside the cron schedule.
func (s *server) handleSweep(w http.ResponseWriter, r *http.Request) {
	if s.deps.Sweep == nil {
		utils.JSONError(w, http.StatusNotFound, "sweep not available")
		return
	}
	orphans, err := s.deps.Sweep()
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	logger.Info("sweep_triggered", "orphans", orphans)
	utils.JSONWrite(w, http.StatusOK, struct {
		Orphans int `json:"orphans"`
	}{Orphans: orphans})
}
