package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/Rudrajiii/leetcode-status-tracker-extension/pkg/presence"
)

type updateStatusRequest struct {
	Status     string `json:"status"`
	LastOnline *int64 `json:"last_online"`
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid status"})
		return
	}
	status, err := presence.ParseStatus(req.Status)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid status"})
		return
	}
	st, err := s.tracker.Report(status, req.LastOnline)
	if err != nil {
		log.Printf("status update failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to update status"})
		return
	}
	log.Printf("status updated: %s, last online: %v", st.Status, formatLastOnline(st.LastOnline))
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Current())
}

func (s *Server) handleTimeStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.stats.Stats())
}

func (s *Server) handleHistory(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.stats.History())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func formatLastOnline(ms *int64) any {
	if ms == nil {
		return nil
	}
	return *ms
}
