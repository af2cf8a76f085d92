package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/inversion-lab/inversion/internal/analysis"
	"github.com/inversion-lab/inversion/internal/wizard"
)

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.wizard.Create()
	if err != nil {
		s.logger.Error("failed to create session", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.wizard.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeWizardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.wizard.Start(chi.URLParam(r, "id"))
	if err != nil {
		s.writeWizardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

type situationRequest struct {
	Text  string `json:"text"`
	Index int    `json:"index"`
}

func (s *Server) saveSituation(w http.ResponseWriter, r *http.Request) {
	var req situationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	session, err := s.wizard.AddOrUpdateSituation(chi.URLParam(r, "id"), req.Text, req.Index)
	if err != nil {
		s.writeWizardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// analyzeSession runs the primary analysis for a wizard session: it enters
// the processing step, calls the model, and lands on results or falls back to
// input with all situations intact.
func (s *Server) analyzeSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	session, err := s.wizard.BeginProcessing(id)
	if err != nil {
		s.writeWizardError(w, err)
		return
	}

	result, err := s.analyzer.Analyze(r.Context(), session.Situations)
	if err != nil {
		if _, failErr := s.wizard.FailProcessing(id); failErr != nil {
			s.logger.Error("failed to revert session", "session", id, "error", failErr)
		}
		s.writeAnalysisError(w, err)
		return
	}

	session, err = s.wizard.CompleteProcessing(id, result)
	if err != nil {
		s.writeWizardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) sessionFeathers(w http.ResponseWriter, r *http.Request) {
	s.sessionFollowUp(w, r, s.analyzer.Feathers)
}

func (s *Server) sessionActivities(w http.ResponseWriter, r *http.Request) {
	s.sessionFollowUp(w, r, s.analyzer.Activities)
}

// sessionFollowUp runs a follow-up call over the session's analyzed
// situations and merges the result into its insight bag. A failed call
// leaves the session exactly as it was.
func (s *Server) sessionFollowUp(w http.ResponseWriter, r *http.Request, call func(context.Context, []analysis.Situation) (*analysis.FeatherInsight, error)) {
	id := chi.URLParam(r, "id")

	session, err := s.wizard.Get(id)
	if err != nil {
		s.writeWizardError(w, err)
		return
	}

	insight, err := call(r.Context(), session.Situations)
	if err != nil {
		s.writeAnalysisError(w, err)
		return
	}

	session, err = s.wizard.MergeInsight(id, insight)
	if err != nil {
		s.writeWizardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) restartSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.wizard.Restart(chi.URLParam(r, "id"))
	if err != nil {
		s.writeWizardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) writeWizardError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, wizard.ErrNotFound):
		writeError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, wizard.ErrTooShort),
		errors.Is(err, wizard.ErrBadIndex),
		errors.Is(err, wizard.ErrNotEnough),
		errors.Is(err, wizard.ErrBadStep):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("session operation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "session operation failed")
	}
}
