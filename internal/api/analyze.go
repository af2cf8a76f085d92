package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/inversion-lab/inversion/internal/analysis"
	"github.com/inversion-lab/inversion/internal/jsonext"
)

type analyzeRequest struct {
	Action     string          `json:"action,omitempty"`
	Situations json.RawMessage `json:"situations"`
}

// analyze dispatches on the action field: absent for the primary analysis
// (situations is a list of strings), "feathers" or "activities" for the
// follow-up calls (situations carry their prior analyses).
func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	switch req.Action {
	case "":
		var texts []string
		if err := json.Unmarshal(req.Situations, &texts); err != nil {
			writeError(w, http.StatusBadRequest, "situations must be a list of strings")
			return
		}
		situations := make([]analysis.Situation, len(texts))
		for i, text := range texts {
			situations[i] = analysis.Situation{ID: i + 1, Text: text}
		}
		result, err := s.analyzer.Analyze(r.Context(), situations)
		if err != nil {
			s.writeAnalysisError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)

	case "feathers", "activities":
		var situations []analysis.Situation
		if err := json.Unmarshal(req.Situations, &situations); err != nil {
			writeError(w, http.StatusBadRequest, "situations must be a list of situation objects")
			return
		}
		var (
			insight *analysis.FeatherInsight
			err     error
		)
		if req.Action == "feathers" {
			insight, err = s.analyzer.Feathers(r.Context(), situations)
		} else {
			insight, err = s.analyzer.Activities(r.Context(), situations)
		}
		if err != nil {
			s.writeAnalysisError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, insight)

	default:
		writeError(w, http.StatusBadRequest, "unknown action "+req.Action)
	}
}

func (s *Server) writeAnalysisError(w http.ResponseWriter, err error) {
	var validationErr *analysis.ValidationError
	var upstreamErr *analysis.UpstreamError
	var extractionErr *jsonext.ExtractionError

	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, validationErr.Msg)
	case errors.As(err, &upstreamErr):
		s.logger.Error("llm provider failed", "error", err)
		writeError(w, http.StatusBadGateway, "analysis provider error: "+upstreamErr.Err.Error())
	case errors.As(err, &extractionErr):
		s.logger.Error("llm reply unusable", "error", err)
		writeError(w, http.StatusBadGateway, "analysis provider returned no usable result")
	default:
		s.logger.Error("analysis failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to analyze situations")
	}
}
