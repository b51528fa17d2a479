package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/banshee-data/odometry.sim/internal/report"
)

// runsHandler routes /api/runs and its steps/summary/endpoints subresources.
func (s *Server) runsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Content-Type", "application/json")
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if s.db == nil {
		w.Header().Set("Content-Type", "application/json")
		s.writeJSONError(w, http.StatusServiceUnavailable, "Trial database not configured")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/runs")
	rest = strings.TrimPrefix(rest, "/")
	id, sub, _ := strings.Cut(rest, "/")

	if id == "" {
		s.listRuns(w, r)
		return
	}

	switch sub {
	case "steps":
		s.showRunSteps(w, id)
	case "summary":
		s.showRunSummary(w, id)
	case "endpoints":
		s.showRunEndpoints(w, id)
	default:
		w.Header().Set("Content-Type", "application/json")
		s.writeJSONError(w, http.StatusNotFound, fmt.Sprintf("Unknown resource %q", sub))
	}
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	limit := 100
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 1 {
			s.writeJSONError(w, http.StatusBadRequest, "Invalid 'limit' parameter")
			return
		}
		limit = parsed
	}

	runs, err := s.db.Runs(limit)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve runs: %v", err))
		return
	}
	if err := json.NewEncoder(w).Encode(runs); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write runs")
	}
}

func (s *Server) showRunSteps(w http.ResponseWriter, runID string) {
	w.Header().Set("Content-Type", "application/json")

	steps, err := s.db.RunSteps(runID)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve steps: %v", err))
		return
	}
	if err := json.NewEncoder(w).Encode(steps); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write steps")
	}
}

func (s *Server) showRunSummary(w http.ResponseWriter, runID string) {
	w.Header().Set("Content-Type", "application/json")

	summary, err := s.db.Summary(runID)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to summarise run: %v", err))
		return
	}
	if err := json.NewEncoder(w).Encode(summary); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write summary")
	}
}

// showRunEndpoints renders the run's final poses as an HTML scatter chart.
func (s *Server) showRunEndpoints(w http.ResponseWriter, runID string) {
	steps, err := s.db.RunSteps(runID)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve steps: %v", err))
		return
	}
	finals := report.FinalSteps(steps)
	if len(finals) == 0 {
		w.Header().Set("Content-Type", "application/json")
		s.writeJSONError(w, http.StatusNotFound, fmt.Sprintf("No steps recorded for run %q", runID))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	subtitle := fmt.Sprintf("run=%s trials=%d", runID, len(finals))
	if err := report.EndpointScatter(w, "Trial Endpoints", subtitle, finals); err != nil {
		w.Header().Set("Content-Type", "application/json")
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to render endpoints: %v", err))
	}
}
