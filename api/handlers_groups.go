package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"gorm.io/gorm"
)

// handleGetCityRollups serves the aggregated city rollups
func (s *Server) handleGetCityRollups(w http.ResponseWriter, r *http.Request) {
	s.serveSnapshotSection(w, r, func(view *snapshotView) json.RawMessage {
		return view.Cities
	})
}

// handleGetPageRollups serves the aggregated page rollups
func (s *Server) handleGetPageRollups(w http.ResponseWriter, r *http.Request) {
	s.serveSnapshotSection(w, r, func(view *snapshotView) json.RawMessage {
		return view.Pages
	})
}

// handleMarkOptimized stamps a group's cooldown. The group drops out of
// the prioritized output on the next refresh and stays out for the
// configured cooldown window.
func (s *Server) handleMarkOptimized(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid group id", err)
		return
	}

	now := time.Now()
	if err := s.deps.Groups.MarkOptimized(id, now); err != nil {
		if err == gorm.ErrRecordNotFound {
			respondWithError(w, http.StatusNotFound, "Group not found", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to mark group optimized", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"group_id":     id,
		"optimized_at": now,
	})
}

// handleGetDailyTotals serves the whole-dataset daily aggregates,
// newest first.
func (s *Server) handleGetDailyTotals(w http.ResponseWriter, r *http.Request) {
	maxDays := 365
	days := getIntParam(r, "days", 90, nil, &maxDays)

	totals, err := s.deps.Metrics.DailyTotals(days)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load daily totals", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"days":   days,
		"totals": totals,
	})
}

// handleGetKeywordSamples serves a keyword's recent sample series,
// newest first.
func (s *Server) handleGetKeywordSamples(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid keyword id", err)
		return
	}

	kw, err := s.deps.Keywords.GetKeyword(id)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load keyword", err)
		return
	}
	if kw == nil {
		respondWithError(w, http.StatusNotFound, "Keyword not found", nil)
		return
	}

	maxDays := 365
	days := getIntParam(r, "days", 90, nil, &maxDays)

	samples, err := s.deps.Keywords.GetSamplesSince(id, time.Now().AddDate(0, 0, -days))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load samples", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"keyword": kw,
		"samples": samples,
	})
}
