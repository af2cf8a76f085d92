// Package wizard holds the multi-step self-reflection flow state. The
// original UI kept this in browser localStorage; here each session lives in
// one JSON file so a page reload (or a service restart) resumes mid-flow.
package wizard

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/inversion-lab/inversion/internal/analysis"
)

type Step string

const (
	StepIntro      Step = "intro"
	StepInput      Step = "input"
	StepProcessing Step = "processing"
	StepResults    Step = "results"
)

const minSituationLength = 10

var (
	ErrNotFound  = errors.New("session not found")
	ErrTooShort  = errors.New("situation text too short")
	ErrBadIndex  = errors.New("situation index out of range")
	ErrNotEnough = errors.New("at least 2 situations required")
	ErrBadStep   = errors.New("operation not allowed in current step")
)

// Session is one user's flow state.
type Session struct {
	ID             string                   `json:"id"`
	Step           Step                     `json:"step"`
	Situations     []analysis.Situation     `json:"situations"`
	QualityRatings []analysis.QualityRating `json:"qualityRatings,omitempty"`
	Insight        *analysis.FeatherInsight `json:"insight,omitempty"`
	UpdatedAt      time.Time                `json:"updatedAt"`
}

// Manager owns all wizard sessions. Mutations go through one mutex and are
// persisted before they are visible.
type Manager struct {
	dir    string
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(dir string, logger *slog.Logger) *Manager {
	return &Manager{dir: dir, logger: logger, sessions: make(map[string]*Session)}
}

// Create starts a fresh session at the intro step.
func (m *Manager) Create() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session := &Session{
		ID:         uuid.NewString(),
		Step:       StepIntro,
		Situations: []analysis.Situation{},
	}
	if err := m.persist(session); err != nil {
		return nil, err
	}
	m.sessions[session.ID] = session
	m.logger.Info("session created", "session", session.ID)
	return snapshot(session), nil
}

// Get returns the session, reloading it from disk when the in-memory map
// does not have it (restore after restart).
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, err := m.locked(id)
	if err != nil {
		return nil, err
	}
	return snapshot(session), nil
}

// Start moves intro → input.
func (m *Manager) Start(id string) (*Session, error) {
	return m.mutate(id, func(s *Session) error {
		if s.Step != StepIntro && s.Step != StepInput {
			return ErrBadStep
		}
		s.Step = StepInput
		return nil
	})
}

// AddOrUpdateSituation appends when index equals the current length,
// otherwise overwrites in place. Text under 10 characters is rejected
// before anything is persisted.
func (m *Manager) AddOrUpdateSituation(id, text string, index int) (*Session, error) {
	return m.mutate(id, func(s *Session) error {
		if s.Step != StepInput {
			return ErrBadStep
		}
		trimmed := strings.TrimSpace(text)
		if len([]rune(trimmed)) < minSituationLength {
			return ErrTooShort
		}
		switch {
		case index == len(s.Situations):
			s.Situations = append(s.Situations, analysis.Situation{ID: index + 1, Text: trimmed})
		case index >= 0 && index < len(s.Situations):
			s.Situations[index].Text = trimmed
			s.Situations[index].Analysis = nil
		default:
			return ErrBadIndex
		}
		return nil
	})
}

// BeginProcessing moves input → processing once at least two situations exist.
func (m *Manager) BeginProcessing(id string) (*Session, error) {
	return m.mutate(id, func(s *Session) error {
		if s.Step != StepInput {
			return ErrBadStep
		}
		if len(s.Situations) < 2 {
			return ErrNotEnough
		}
		s.Step = StepProcessing
		return nil
	})
}

// CompleteProcessing attaches the analyses and advances to results.
func (m *Manager) CompleteProcessing(id string, result *analysis.AnalysisResult) (*Session, error) {
	return m.mutate(id, func(s *Session) error {
		if s.Step != StepProcessing {
			return ErrBadStep
		}
		if len(result.Analyses) != len(s.Situations) {
			return fmt.Errorf("got %d analyses for %d situations", len(result.Analyses), len(s.Situations))
		}
		for i := range s.Situations {
			an := result.Analyses[i]
			s.Situations[i].Analysis = &an
		}
		s.QualityRatings = result.QualityRatings
		s.Step = StepResults
		return nil
	})
}

// FailProcessing reverts to input, keeping all entered situations.
func (m *Manager) FailProcessing(id string) (*Session, error) {
	return m.mutate(id, func(s *Session) error {
		if s.Step != StepProcessing {
			return ErrBadStep
		}
		s.Step = StepInput
		return nil
	})
}

// MergeInsight folds a follow-up call's result into the session's insight bag
// without overwriting anything already obtained. The merge goes into a fresh
// value: snapshots handed to callers share the previous Insight pointer, and
// those are read outside the manager mutex.
func (m *Manager) MergeInsight(id string, insight *analysis.FeatherInsight) (*Session, error) {
	return m.mutate(id, func(s *Session) error {
		merged := &analysis.FeatherInsight{}
		merged.Merge(s.Insight)
		merged.Merge(insight)
		s.Insight = merged
		return nil
	})
}

// Restart wipes the session back to a pristine intro state and removes its
// persisted file.
func (m *Manager) Restart(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, err := m.locked(id)
	if err != nil {
		return nil, err
	}

	if err := os.Remove(m.path(id)); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("remove session file: %w", err)
	}

	session.Step = StepIntro
	session.Situations = []analysis.Situation{}
	session.QualityRatings = nil
	session.Insight = nil
	session.UpdatedAt = time.Now().UTC()
	m.logger.Info("session restarted", "session", id)
	return snapshot(session), nil
}

func (m *Manager) mutate(id string, fn func(*Session) error) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, err := m.locked(id)
	if err != nil {
		return nil, err
	}
	if err := fn(session); err != nil {
		return nil, err
	}
	if err := m.persist(session); err != nil {
		return nil, err
	}
	return snapshot(session), nil
}

// locked returns the live session; callers must hold m.mu.
func (m *Manager) locked(id string) (*Session, error) {
	if session, ok := m.sessions[id]; ok {
		return session, nil
	}

	data, err := os.ReadFile(m.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	m.sessions[id] = &session
	return &session, nil
}

func (m *Manager) persist(session *Session) error {
	session.UpdatedAt = time.Now().UTC()

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return os.WriteFile(m.path(session.ID), data, 0o644)
}

func (m *Manager) path(id string) string {
	return filepath.Join(m.dir, id+".json")
}

// snapshot copies the session for return to callers, who read it outside the
// manager mutex. Slices are copied; the Insight and per-situation Analysis
// pointers may be shared because mutations always install fresh values.
func snapshot(s *Session) *Session {
	copied := *s
	copied.Situations = append([]analysis.Situation(nil), s.Situations...)
	copied.QualityRatings = append([]analysis.QualityRating(nil), s.QualityRatings...)
	return &copied
}
