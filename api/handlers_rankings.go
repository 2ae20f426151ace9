package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// snapshotCacheKey mirrors the refresher's Redis key
const snapshotCacheKey = "rankings:latest"

// snapshotView is the API-side decoding of a stored snapshot. The
// payload is produced by the refresher; the API only ever reads it.
type snapshotView struct {
	ComputedAt time.Time `json:"computed_at"`
	Rankings   struct {
		Top     json.RawMessage `json:"top"`
		Improve json.RawMessage `json:"improve"`
	} `json:"rankings"`
	Cities         json.RawMessage `json:"cities"`
	Pages          json.RawMessage `json:"pages"`
	PagePriorities json.RawMessage `json:"page_priorities"`
}

// latestSnapshot loads the snapshot from Redis, falling back to the
// database when the cache is cold or Redis is down. Returns nil when no
// ranking run has completed yet.
func (s *Server) latestSnapshot(ctx context.Context) (*snapshotView, error) {
	var view snapshotView

	if s.deps.Redis != nil {
		if err := s.deps.Redis.Get(ctx, snapshotCacheKey, &view); err == nil {
			return &view, nil
		}
	}

	snap, err := s.deps.Snapshots.GetLatest()
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, nil
	}

	if err := json.Unmarshal(snap.Payload, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// handleGetRankings serves the full latest snapshot
func (s *Server) handleGetRankings(w http.ResponseWriter, r *http.Request) {
	view, err := s.latestSnapshot(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load rankings", err)
		return
	}
	if view == nil {
		respondWithError(w, http.StatusNotFound, "No ranking snapshot available yet", nil)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleGetTopKeywords serves the "top performers" list
func (s *Server) handleGetTopKeywords(w http.ResponseWriter, r *http.Request) {
	s.serveSnapshotSection(w, r, func(view *snapshotView) json.RawMessage {
		return view.Rankings.Top
	})
}

// handleGetImproveKeywords serves the "needs improvement" list
func (s *Server) handleGetImproveKeywords(w http.ResponseWriter, r *http.Request) {
	s.serveSnapshotSection(w, r, func(view *snapshotView) json.RawMessage {
		return view.Rankings.Improve
	})
}

// handleGetPagePriorities serves the normalized page priority scores
func (s *Server) handleGetPagePriorities(w http.ResponseWriter, r *http.Request) {
	s.serveSnapshotSection(w, r, func(view *snapshotView) json.RawMessage {
		return view.PagePriorities
	})
}

// serveSnapshotSection serves one section of the latest snapshot
func (s *Server) serveSnapshotSection(w http.ResponseWriter, r *http.Request, section func(*snapshotView) json.RawMessage) {
	view, err := s.latestSnapshot(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load rankings", err)
		return
	}
	if view == nil {
		respondWithError(w, http.StatusNotFound, "No ranking snapshot available yet", nil)
		return
	}

	payload := section(view)
	if payload == nil {
		payload = json.RawMessage("[]")
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"computed_at": view.ComputedAt,
		"data":        payload,
	})
}
