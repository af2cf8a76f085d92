package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/inversion-lab/inversion/internal/analysis"
	"github.com/inversion-lab/inversion/internal/analytics"
	"github.com/inversion-lab/inversion/internal/wizard"
)

// Analyzer is the LLM orchestration surface the handlers need; tests swap in
// a fake without an upstream call.
type Analyzer interface {
	Analyze(ctx context.Context, situations []analysis.Situation) (*analysis.AnalysisResult, error)
	Feathers(ctx context.Context, situations []analysis.Situation) (*analysis.FeatherInsight, error)
	Activities(ctx context.Context, situations []analysis.Situation) (*analysis.FeatherInsight, error)
}

type Server struct {
	router    *chi.Mux
	port      int
	analyzer  Analyzer
	recorder  *analytics.Recorder
	wizard    *wizard.Manager
	secretKey string
	logger    *slog.Logger
}

func NewServer(port int, analyzer Analyzer, recorder *analytics.Recorder, wiz *wizard.Manager, secretKey string, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:    router,
		port:      port,
		analyzer:  analyzer,
		recorder:  recorder,
		wizard:    wiz,
		secretKey: secretKey,
		logger:    logger,
	}

	router.Get("/health", s.health)
	router.Post("/api/analyze", s.analyze)
	router.Post("/api/analytics", s.recordEvent)
	router.Get("/api/analytics", s.readAnalytics)

	router.Route("/api/session", func(r chi.Router) {
		r.Post("/", s.createSession)
		r.Get("/{id}", s.getSession)
		r.Post("/{id}/start", s.startSession)
		r.Post("/{id}/situations", s.saveSituation)
		r.Post("/{id}/analyze", s.analyzeSession)
		r.Post("/{id}/feathers", s.sessionFeathers)
		r.Post("/{id}/activities", s.sessionActivities)
		r.Post("/{id}/restart", s.restartSession)
	})

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
