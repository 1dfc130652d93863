package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mvvmshift/mvvmshift/internal/history"
)

// listRuns lists persisted scan runs, newest first
func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "scan history not available")
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	offset := 0
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	runs, err := s.store.ListScanRuns(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list scan runs")
		return
	}
	if runs == nil {
		runs = []history.ScanRun{}
	}

	writeJSON(w, http.StatusOK, runs)
}

// getRun gets one persisted scan run
func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "scan history not available")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "runID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid run ID")
		return
	}

	run, err := s.store.GetScanRun(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get scan run")
		return
	}
	if run == nil {
		writeError(w, http.StatusNotFound, "scan run not found")
		return
	}

	writeJSON(w, http.StatusOK, run)
}
