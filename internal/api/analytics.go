package api

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/inversion-lab/inversion/internal/analytics"
)

type eventRequest struct {
	Event *analytics.Event `json:"event"`
}

func (s *Server) recordEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Event == nil || req.Event.SessionID == "" {
		writeError(w, http.StatusBadRequest, "invalid event data")
		return
	}
	if !req.Event.EventType.Valid() {
		writeError(w, http.StatusBadRequest, "unknown event type")
		return
	}

	if err := s.recorder.Record(r.Context(), *req.Event); err != nil {
		s.logger.Error("failed to record event", "type", req.Event.EventType, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to process analytics")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type analyticsResponse struct {
	Aggregated  analytics.Aggregated          `json:"aggregated"`
	Sessions    []*analytics.SessionAnalytics `json:"sessions"`
	LastUpdated int64                         `json:"lastUpdated"`
}

// readAnalytics returns the full rollup plus raw sessions. Guarded by the
// shared-secret query parameter; no other auth exists on this surface.
func (s *Server) readAnalytics(w http.ResponseWriter, r *http.Request) {
	if s.secretKey == "" || r.URL.Query().Get("key") != s.secretKey {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	doc, err := s.recorder.Load(r.Context())
	if err != nil {
		s.logger.Error("failed to load analytics", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to retrieve analytics")
		return
	}

	sessions := make([]*analytics.SessionAnalytics, 0, len(doc.Sessions))
	for _, session := range doc.Sessions {
		sessions = append(sessions, session)
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].StartTime > sessions[j].StartTime })

	writeJSON(w, http.StatusOK, analyticsResponse{
		Aggregated:  analytics.Aggregate(doc),
		Sessions:    sessions,
		LastUpdated: doc.LastUpdated,
	})
}
